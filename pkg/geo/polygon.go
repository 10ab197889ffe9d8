package geo

import (
	"math"

	"github.com/ctessum/geom"
)

// RingArea returns the signed area of a 2D ring, positive when the
// vertices wind counterclockwise.
func RingArea(ring []geom.Point) float64 {
	var s float64
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		s += p.X*q.Y - q.X*p.Y
	}
	return s / 2
}

// RingPerimeter returns the total edge length of a closed ring.
func RingPerimeter(ring []geom.Point) float64 {
	var s float64
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		s += math.Hypot(q.X-p.X, q.Y-p.Y)
	}
	return s
}

// RingCentroid returns the area centroid of a 2D ring. Rings with
// near-zero area fall back to the vertex mean.
func RingCentroid(ring []geom.Point) geom.Point {
	var cx, cy, a float64
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		w := p.X*q.Y - q.X*p.Y
		cx += (p.X + q.X) * w
		cy += (p.Y + q.Y) * w
		a += w
	}
	if math.Abs(a) < epsilon {
		var c geom.Point
		for _, p := range ring {
			c.X += p.X
			c.Y += p.Y
		}
		n := float64(len(ring))
		return geom.Point{X: c.X / n, Y: c.Y / n}
	}
	return geom.Point{X: cx / (3 * a), Y: cy / (3 * a)}
}

// RemoveCollinear returns the ring without vertices whose triangle with
// their neighbors has area below tol. ok is false when fewer than three
// vertices remain.
func RemoveCollinear(ring []geom.Point, tol float64) (out []geom.Point, ok bool) {
	out = make([]geom.Point, 0, len(ring))
	for i, p := range ring {
		prev := ring[(i+len(ring)-1)%len(ring)]
		next := ring[(i+1)%len(ring)]
		cross := (p.X-prev.X)*(next.Y-prev.Y) - (p.Y-prev.Y)*(next.X-prev.X)
		if math.Abs(cross)/2 >= tol {
			out = append(out, p)
		}
	}
	return out, len(out) >= 3
}

// PointInRing reports whether pt is inside the ring by the even-odd
// rule. Points exactly on an edge may land on either side.
func PointInRing(pt geom.Point, ring []geom.Point) bool {
	in := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		pi, pj := ring[i], ring[j]
		if (pi.Y > pt.Y) != (pj.Y > pt.Y) {
			x := pi.X + (pt.Y-pi.Y)/(pj.Y-pi.Y)*(pj.X-pi.X)
			if pt.X < x {
				in = !in
			}
		}
		j = i
	}
	return in
}

// DistanceToSegment returns the distance from pt to the segment ab.
func DistanceToSegment(pt, a, b geom.Point) float64 {
	c := Segment{A: a, B: b}.ClosestPoint(pt)
	return math.Hypot(pt.X-c.X, pt.Y-c.Y)
}

// Linear is a 2D target that vertices can be pulled onto.
type Linear interface {
	ClosestPoint(geom.Point) geom.Point
}

// Segment is a finite 2D line segment.
type Segment struct {
	A, B geom.Point
}

var _ Linear = Segment{}
var _ Linear = Ray{}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return math.Hypot(s.B.X-s.A.X, s.B.Y-s.A.Y)
}

// Direction returns the unit direction from A to B, or the zero point
// for a degenerate segment.
func (s Segment) Direction() geom.Point {
	l := s.Length()
	if l < epsilon {
		return geom.Point{}
	}
	return geom.Point{X: (s.B.X - s.A.X) / l, Y: (s.B.Y - s.A.Y) / l}
}

// ClosestPoint returns the point on the segment closest to pt.
func (s Segment) ClosestPoint(pt geom.Point) geom.Point {
	t := s.project(pt)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return geom.Point{X: s.A.X + t*(s.B.X-s.A.X), Y: s.A.Y + t*(s.B.Y-s.A.Y)}
}

// DistanceTo returns the distance from pt to the segment.
func (s Segment) DistanceTo(pt geom.Point) float64 {
	c := s.ClosestPoint(pt)
	return math.Hypot(pt.X-c.X, pt.Y-c.Y)
}

// LineDistanceTo returns the distance from pt to the infinite line
// through the segment.
func (s Segment) LineDistanceTo(pt geom.Point) float64 {
	t := s.project(pt)
	cx := s.A.X + t*(s.B.X-s.A.X)
	cy := s.A.Y + t*(s.B.Y-s.A.Y)
	return math.Hypot(pt.X-cx, pt.Y-cy)
}

// project returns the line parameter of pt along AB, unclamped.
func (s Segment) project(pt geom.Point) float64 {
	dx := s.B.X - s.A.X
	dy := s.B.Y - s.A.Y
	den := dx*dx + dy*dy
	if den < epsilon {
		return 0
	}
	return ((pt.X-s.A.X)*dx + (pt.Y-s.A.Y)*dy) / den
}

// Ray is a 2D half-line from O in direction D.
type Ray struct {
	O, D geom.Point
}

// ClosestPoint returns the point on the ray closest to pt.
func (r Ray) ClosestPoint(pt geom.Point) geom.Point {
	den := r.D.X*r.D.X + r.D.Y*r.D.Y
	if den < epsilon {
		return r.O
	}
	t := ((pt.X-r.O.X)*r.D.X + (pt.Y-r.O.Y)*r.D.Y) / den
	if t < 0 {
		t = 0
	}
	return geom.Point{X: r.O.X + t*r.D.X, Y: r.O.Y + t*r.D.Y}
}

// LineIntersection returns the intersection of the infinite lines
// through a1-a2 and b1-b2. ok is false when the lines are parallel.
func LineIntersection(a1, a2, b1, b2 geom.Point) (geom.Point, bool) {
	d1x, d1y := a2.X-a1.X, a2.Y-a1.Y
	d2x, d2y := b2.X-b1.X, b2.Y-b1.Y
	den := d1x*d2y - d1y*d2x
	scale := math.Abs(d1x*d2x) + math.Abs(d1y*d2y) + math.Abs(d1x*d2y) + math.Abs(d1y*d2x)
	if math.Abs(den) < 1e-9*math.Max(scale, 1) {
		return geom.Point{}, false
	}
	t := ((b1.X-a1.X)*d2y - (b1.Y-a1.Y)*d2x) / den
	return geom.Point{X: a1.X + t*d1x, Y: a1.Y + t*d1y}, true
}

// RoundTo returns v rounded to the nearest multiple of inc. A
// non-positive increment returns v unchanged.
func RoundTo(v, inc float64) float64 {
	if inc <= 0 {
		return v
	}
	return math.Round(v/inc) * inc
}
