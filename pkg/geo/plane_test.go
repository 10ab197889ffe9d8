package geo_test

import (
	"math"
	"testing"

	"github.com/ctessum/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/purlin/pkg/geo"
)

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func vecAlmost(a, b v3.Vec) bool {
	return almost(a.X, b.X) && almost(a.Y, b.Y) && almost(a.Z, b.Z)
}

func TestPlaneFromPoints(t *testing.T) {
	// Counterclockwise loop in the XY plane faces up.
	pl, err := geo.PlaneFromPoints([]v3.Vec{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5}, {X: 0, Y: 5},
	})
	if err != nil {
		t.Fatalf("PlaneFromPoints: %v", err)
	}
	if !vecAlmost(pl.N, v3.Vec{Z: 1}) {
		t.Errorf("normal = %+v, want +Z", pl.N)
	}

	// Clockwise loop faces down.
	pl, err = geo.PlaneFromPoints([]v3.Vec{
		{X: 0, Y: 5}, {X: 10, Y: 5}, {X: 10, Y: 0}, {X: 0, Y: 0},
	})
	if err != nil {
		t.Fatalf("PlaneFromPoints: %v", err)
	}
	if !vecAlmost(pl.N, v3.Vec{Z: -1}) {
		t.Errorf("normal = %+v, want -Z", pl.N)
	}

	if _, err := geo.PlaneFromPoints([]v3.Vec{{X: 0}, {X: 1}, {X: 2}}); err == nil {
		t.Error("expected error for collinear points")
	}
	if _, err := geo.PlaneFromPoints([]v3.Vec{{X: 0}, {X: 1}}); err == nil {
		t.Error("expected error for too few points")
	}
}

func TestPlaneZ(t *testing.T) {
	// Slope rising north: z = y.
	pl, err := geo.PlaneFromPoints([]v3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}, {X: 10, Y: 5, Z: 5}, {X: 0, Y: 5, Z: 5},
	})
	if err != nil {
		t.Fatalf("PlaneFromPoints: %v", err)
	}

	tests := []struct {
		x, y, want float64
	}{
		{0, 0, 0},
		{10, 5, 5},
		{3, 2.5, 2.5},
		{-4, 1, 1},
	}
	for _, tt := range tests {
		z, err := pl.Z(tt.x, tt.y)
		if err != nil {
			t.Fatalf("Z(%g, %g): %v", tt.x, tt.y, err)
		}
		if !almost(z, tt.want) {
			t.Errorf("Z(%g, %g) = %g, want %g", tt.x, tt.y, z, tt.want)
		}
	}

	lifted, err := pl.LiftPoint(geom.Point{X: 2, Y: 4})
	if err != nil {
		t.Fatalf("LiftPoint: %v", err)
	}
	if !vecAlmost(lifted, v3.Vec{X: 2, Y: 4, Z: 4}) {
		t.Errorf("LiftPoint = %+v", lifted)
	}

	vertical, err := geo.NewPlane(v3.Vec{Y: 1}, v3.Vec{})
	if err != nil {
		t.Fatalf("NewPlane: %v", err)
	}
	if _, err := vertical.Z(1, 1); err == nil {
		t.Error("expected ErrVerticalPlane for a vertical plane")
	}
}

func TestPlaneProjectAlong(t *testing.T) {
	pl, err := geo.NewPlane(v3.Vec{Z: 1}, v3.Vec{Z: 2})
	if err != nil {
		t.Fatalf("NewPlane: %v", err)
	}

	got, err := pl.ProjectAlong(v3.Vec{Z: -1}, v3.Vec{X: 1, Y: 1, Z: 10})
	if err != nil {
		t.Fatalf("ProjectAlong: %v", err)
	}
	if !vecAlmost(got, v3.Vec{X: 1, Y: 1, Z: 2}) {
		t.Errorf("ProjectAlong = %+v", got)
	}

	if _, err := pl.ProjectAlong(v3.Vec{X: 1}, v3.Vec{}); err == nil {
		t.Error("expected error for direction parallel to plane")
	}
}

func TestPlaneCoplanar(t *testing.T) {
	base, _ := geo.NewPlane(v3.Vec{Z: 1}, v3.Vec{})
	angTol := math.Pi / 180

	tests := []struct {
		name string
		n, o v3.Vec
		want bool
	}{
		{"same", v3.Vec{Z: 1}, v3.Vec{X: 5, Y: 5}, true},
		{"flipped normal", v3.Vec{Z: -1}, v3.Vec{}, true},
		{"offset", v3.Vec{Z: 1}, v3.Vec{Z: 0.5}, false},
		{"tilted", v3.Vec{X: 0.2, Z: 1}, v3.Vec{}, false},
		{"within offset tol", v3.Vec{Z: 1}, v3.Vec{Z: 0.005}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other, err := geo.NewPlane(tt.n, tt.o)
			if err != nil {
				t.Fatalf("NewPlane: %v", err)
			}
			if got := base.Coplanar(other, 0.01, angTol); got != tt.want {
				t.Errorf("Coplanar = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlaneTransforms(t *testing.T) {
	pl, _ := geo.NewPlane(v3.Vec{Z: 1}, v3.Vec{X: 1, Y: 2, Z: 3})

	moved := pl.Move(v3.Vec{X: 1, Y: 1, Z: 1})
	if !vecAlmost(moved.O, v3.Vec{X: 2, Y: 3, Z: 4}) || !vecAlmost(moved.N, pl.N) {
		t.Errorf("Move: %+v", moved)
	}

	rot := pl.RotateXY(90, v3.Vec{})
	if !vecAlmost(rot.O, v3.Vec{X: -2, Y: 1, Z: 3}) {
		t.Errorf("RotateXY origin: %+v", rot.O)
	}

	mirror, _ := geo.NewPlane(v3.Vec{X: 1}, v3.Vec{})
	ref := pl.Reflect(mirror)
	if !vecAlmost(ref.O, v3.Vec{X: -1, Y: 2, Z: 3}) {
		t.Errorf("Reflect origin: %+v", ref.O)
	}

	sc := pl.Scale(2, v3.Vec{})
	if !vecAlmost(sc.O, v3.Vec{X: 2, Y: 4, Z: 6}) || !vecAlmost(sc.N, pl.N) {
		t.Errorf("Scale: %+v", sc)
	}
}
