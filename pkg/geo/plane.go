package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrVerticalPlane is returned when a vertical projection is requested
// against a plane whose normal has no Z component.
var ErrVerticalPlane = errors.New("geo: plane is vertical")

// epsilon below which a vector length or denominator is treated as zero.
const epsilon = 1e-12

// Plane is an oriented plane defined by a unit normal and a point on it.
type Plane struct {
	N v3.Vec // unit normal
	O v3.Vec // a point on the plane
}

// NewPlane creates a plane from a normal and an origin point. The normal
// is normalized; a zero-length normal is an error.
func NewPlane(n, o v3.Vec) (Plane, error) {
	l := n.Length()
	if l < epsilon {
		return Plane{}, errors.New("geo: plane normal has zero length")
	}
	return Plane{N: n.MulScalar(1 / l), O: o}, nil
}

// PlaneFromPoints derives a plane from an ordered loop of points using
// Newell's method. A counterclockwise loop viewed from above yields an
// upward-facing normal. The loop must contain at least three points
// that are not all collinear.
func PlaneFromPoints(pts []v3.Vec) (Plane, error) {
	if len(pts) < 3 {
		return Plane{}, fmt.Errorf("geo: need at least 3 points for a plane, got %d", len(pts))
	}
	var n, o v3.Vec
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
		o = o.Add(p)
	}
	o = o.MulScalar(1 / float64(len(pts)))
	pl, err := NewPlane(n, o)
	if err != nil {
		return Plane{}, errors.New("geo: loop points are collinear")
	}
	return pl, nil
}

// DistanceTo returns the signed distance from pt to the plane.
// Points on the normal side are positive.
func (p Plane) DistanceTo(pt v3.Vec) float64 {
	return p.N.Dot(pt.Sub(p.O))
}

// ClosestPoint returns the orthogonal projection of pt onto the plane.
func (p Plane) ClosestPoint(pt v3.Vec) v3.Vec {
	return pt.Sub(p.N.MulScalar(p.DistanceTo(pt)))
}

// Z returns the height of the plane above the plan point (x, y).
func (p Plane) Z(x, y float64) (float64, error) {
	if math.Abs(p.N.Z) < epsilon {
		return 0, ErrVerticalPlane
	}
	z := p.O.Z - (p.N.X*(x-p.O.X)+p.N.Y*(y-p.O.Y))/p.N.Z
	return z, nil
}

// LiftPoint projects the plan point vertically onto the plane.
func (p Plane) LiftPoint(pt geom.Point) (v3.Vec, error) {
	z, err := p.Z(pt.X, pt.Y)
	if err != nil {
		return v3.Vec{}, err
	}
	return v3.Vec{X: pt.X, Y: pt.Y, Z: z}, nil
}

// ProjectAlong projects pt along dir onto the plane. An error is
// returned when dir is parallel to the plane.
func (p Plane) ProjectAlong(dir, pt v3.Vec) (v3.Vec, error) {
	den := p.N.Dot(dir)
	if math.Abs(den) < epsilon {
		return v3.Vec{}, errors.New("geo: direction is parallel to plane")
	}
	t := p.N.Dot(p.O.Sub(pt)) / den
	return pt.Add(dir.MulScalar(t)), nil
}

// Coplanar reports whether o lies in the same plane as p. Normals are
// compared within angTol radians regardless of orientation, and o's
// origin must lie within tol of p.
func (p Plane) Coplanar(o Plane, tol, angTol float64) bool {
	ang := math.Acos(clamp(math.Abs(p.N.Dot(o.N)), -1, 1))
	if ang > angTol {
		return false
	}
	return math.Abs(p.DistanceTo(o.O)) <= tol
}

// Move returns the plane translated by v.
func (p Plane) Move(v v3.Vec) Plane {
	return Plane{N: p.N, O: p.O.Add(v)}
}

// RotateXY returns the plane rotated counterclockwise around the
// vertical axis through origin by the given angle in degrees.
func (p Plane) RotateXY(degrees float64, origin v3.Vec) Plane {
	s, c := math.Sincos(degrees * math.Pi / 180)
	return Plane{
		N: rotateXY(p.N, s, c, v3.Vec{}),
		O: rotateXY(p.O, s, c, origin),
	}
}

// Reflect returns the plane mirrored across m.
func (p Plane) Reflect(m Plane) Plane {
	n := p.N.Sub(m.N.MulScalar(2 * p.N.Dot(m.N)))
	return Plane{N: n, O: reflectPoint(p.O, m)}
}

// Scale returns the plane scaled by factor from origin.
func (p Plane) Scale(factor float64, origin v3.Vec) Plane {
	n := p.N
	if factor < 0 {
		n = n.MulScalar(-1)
	}
	return Plane{N: n, O: origin.Add(p.O.Sub(origin).MulScalar(factor))}
}

// rotateXY rotates pt around the vertical axis through origin.
// s and c are the sine and cosine of the rotation angle.
func rotateXY(pt v3.Vec, s, c float64, origin v3.Vec) v3.Vec {
	x := pt.X - origin.X
	y := pt.Y - origin.Y
	return v3.Vec{
		X: origin.X + x*c - y*s,
		Y: origin.Y + x*s + y*c,
		Z: pt.Z,
	}
}

// reflectPoint mirrors pt across the plane m.
func reflectPoint(pt v3.Vec, m Plane) v3.Vec {
	return pt.Sub(m.N.MulScalar(2 * m.DistanceTo(pt)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
