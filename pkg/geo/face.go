package geo

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Face is a planar 3D polygon with an outer boundary and optional holes.
// The plane carries the face orientation; all vertices lie on it.
type Face struct {
	Boundary []v3.Vec
	Holes    [][]v3.Vec
	Plane    Plane
}

// NewFace creates a face from a boundary loop and optional holes,
// deriving the plane from the boundary via Newell's method.
func NewFace(boundary []v3.Vec, holes [][]v3.Vec) (Face, error) {
	pl, err := PlaneFromPoints(boundary)
	if err != nil {
		return Face{}, fmt.Errorf("geo: face boundary: %w", err)
	}
	return Face{Boundary: boundary, Holes: holes, Plane: pl}, nil
}

// NewFaceOnPlane creates a face with an explicit plane, checking that
// every boundary and hole vertex lies on it within tol.
func NewFaceOnPlane(boundary []v3.Vec, holes [][]v3.Vec, pl Plane, tol float64) (Face, error) {
	if len(boundary) < 3 {
		return Face{}, fmt.Errorf("geo: face boundary has %d vertices, need at least 3", len(boundary))
	}
	for i, v := range boundary {
		if d := math.Abs(pl.DistanceTo(v)); d > tol {
			return Face{}, fmt.Errorf("geo: boundary vertex %d is %g from the face plane (tolerance %g)", i, d, tol)
		}
	}
	for h, loop := range holes {
		for i, v := range loop {
			if d := math.Abs(pl.DistanceTo(v)); d > tol {
				return Face{}, fmt.Errorf("geo: hole %d vertex %d is %g from the face plane (tolerance %g)", h, i, d, tol)
			}
		}
	}
	return Face{Boundary: boundary, Holes: holes, Plane: pl}, nil
}

// Area returns the surface area of the face with hole areas subtracted.
func (f Face) Area() float64 {
	a := loopArea(f.Boundary)
	for _, h := range f.Holes {
		a -= loopArea(h)
	}
	return a
}

// Center returns the mean of the boundary vertices.
func (f Face) Center() v3.Vec {
	var c v3.Vec
	for _, v := range f.Boundary {
		c = c.Add(v)
	}
	return c.MulScalar(1 / float64(len(f.Boundary)))
}

// Centroid returns the area centroid of the face. Vertical faces fall
// back to the vertex mean.
func (f Face) Centroid() v3.Vec {
	c := RingCentroid(dropZ(f.Boundary))
	z, err := f.Plane.Z(c.X, c.Y)
	if err != nil {
		return f.Center()
	}
	return v3.Vec{X: c.X, Y: c.Y, Z: z}
}

// Min returns the componentwise minimum over all face vertices.
func (f Face) Min() v3.Vec {
	mn := f.Boundary[0]
	f.eachVertex(func(v v3.Vec) {
		mn.X = math.Min(mn.X, v.X)
		mn.Y = math.Min(mn.Y, v.Y)
		mn.Z = math.Min(mn.Z, v.Z)
	})
	return mn
}

// Max returns the componentwise maximum over all face vertices.
func (f Face) Max() v3.Vec {
	mx := f.Boundary[0]
	f.eachVertex(func(v v3.Vec) {
		mx.X = math.Max(mx.X, v.X)
		mx.Y = math.Max(mx.Y, v.Y)
		mx.Z = math.Max(mx.Z, v.Z)
	})
	return mx
}

// Azimuth returns the compass direction of the upward face normal in
// degrees clockwise from north (+Y). Flat faces return 0.
func (f Face) Azimuth() float64 {
	n := f.upNormal()
	if math.Hypot(n.X, n.Y) < 1e-9 {
		return 0
	}
	deg := math.Atan2(n.X, n.Y) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Tilt returns the angle between the face and the horizontal in degrees.
func (f Face) Tilt() float64 {
	return math.Acos(clamp(f.upNormal().Z, -1, 1)) * 180 / math.Pi
}

// Plan returns the vertical projection of the face onto the XY plane,
// boundary ring first and hole rings after.
func (f Face) Plan() geom.Polygon {
	poly := geom.Polygon{dropZ(f.Boundary)}
	for _, h := range f.Holes {
		poly = append(poly, dropZ(h))
	}
	return poly
}

// Move returns the face translated by v.
func (f Face) Move(v v3.Vec) Face {
	return f.transform(func(pt v3.Vec) v3.Vec { return pt.Add(v) }, f.Plane.Move(v))
}

// RotateXY returns the face rotated counterclockwise around the
// vertical axis through origin by the given angle in degrees.
func (f Face) RotateXY(degrees float64, origin v3.Vec) Face {
	s, c := math.Sincos(degrees * math.Pi / 180)
	return f.transform(func(pt v3.Vec) v3.Vec {
		return rotateXY(pt, s, c, origin)
	}, f.Plane.RotateXY(degrees, origin))
}

// Reflect returns the face mirrored across the plane m.
func (f Face) Reflect(m Plane) Face {
	return f.transform(func(pt v3.Vec) v3.Vec {
		return reflectPoint(pt, m)
	}, f.Plane.Reflect(m))
}

// Scale returns the face scaled by factor from origin.
func (f Face) Scale(factor float64, origin v3.Vec) Face {
	return f.transform(func(pt v3.Vec) v3.Vec {
		return origin.Add(pt.Sub(origin).MulScalar(factor))
	}, f.Plane.Scale(factor, origin))
}

// Copy returns a deep copy of the face.
func (f Face) Copy() Face {
	return f.transform(func(pt v3.Vec) v3.Vec { return pt }, f.Plane)
}

// LiftPolygon rebuilds a face from a plan polygon on pl, boundary ring
// first and holes after. Collinear vertices are removed per ring; ok is
// false when the boundary ring degenerates, and degenerate hole rings
// are dropped.
func LiftPolygon(poly geom.Polygon, pl Plane, tol float64) (Face, bool, error) {
	rings := make([][]v3.Vec, 0, len(poly))
	for _, ring := range poly {
		clean, ok := RemoveCollinear(ring, tol)
		if !ok {
			if len(rings) == 0 {
				return Face{}, false, nil
			}
			continue
		}
		loop := make([]v3.Vec, len(clean))
		for i, p := range clean {
			v, err := pl.LiftPoint(p)
			if err != nil {
				return Face{}, false, err
			}
			loop[i] = v
		}
		rings = append(rings, loop)
	}
	if len(rings) == 0 {
		return Face{}, false, nil
	}
	f := Face{Boundary: rings[0], Plane: pl}
	if len(rings) > 1 {
		f.Holes = rings[1:]
	}
	return f, true, nil
}

// transform applies fn to every vertex and installs the given plane.
func (f Face) transform(fn func(v3.Vec) v3.Vec, pl Plane) Face {
	out := Face{
		Boundary: make([]v3.Vec, len(f.Boundary)),
		Plane:    pl,
	}
	for i, v := range f.Boundary {
		out.Boundary[i] = fn(v)
	}
	if len(f.Holes) > 0 {
		out.Holes = make([][]v3.Vec, len(f.Holes))
		for h, loop := range f.Holes {
			out.Holes[h] = make([]v3.Vec, len(loop))
			for i, v := range loop {
				out.Holes[h][i] = fn(v)
			}
		}
	}
	return out
}

// eachVertex visits every boundary and hole vertex.
func (f Face) eachVertex(fn func(v3.Vec)) {
	for _, v := range f.Boundary {
		fn(v)
	}
	for _, loop := range f.Holes {
		for _, v := range loop {
			fn(v)
		}
	}
}

func (f Face) upNormal() v3.Vec {
	if f.Plane.N.Z < 0 {
		return f.Plane.N.MulScalar(-1)
	}
	return f.Plane.N
}

// loopArea returns the unsigned area of a closed planar 3D loop.
func loopArea(pts []v3.Vec) float64 {
	var s v3.Vec
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		s = s.Add(p.Cross(q))
	}
	return s.Length() / 2
}

// dropZ flattens a 3D loop to plan coordinates.
func dropZ(pts []v3.Vec) []geom.Point {
	out := make([]geom.Point, len(pts))
	for i, v := range pts {
		out[i] = geom.Point{X: v.X, Y: v.Y}
	}
	return out
}
