package planar

import (
	"math"

	"github.com/ctessum/geom"

	"github.com/chazu/purlin/pkg/geo"
)

// jointSides is the vertex count of the polygon approximating the round
// joint between thick polyline segments.
const jointSides = 16

// SplitWithPolygon splits f into its pieces inside and outside the plan
// polygon. The face comes back unchanged when the polygon misses it or
// covers it entirely.
func (k *PlanarKernel) SplitWithPolygon(f geo.Face, poly geom.Polygon, tol float64) ([]geo.Face, error) {
	plan := f.Plan()
	inside, err := k.Intersection(plan, poly, tol)
	if err != nil {
		return nil, err
	}
	if len(inside) == 0 {
		return []geo.Face{f}, nil
	}
	outside, err := k.Difference(plan, poly, tol)
	if err != nil {
		return nil, err
	}
	if len(outside) == 0 {
		return []geo.Face{f}, nil
	}
	return liftAll(append(inside, outside...), f.Plane, tol, f)
}

// SplitWithLines cuts f by each segment's infinite line. A segment with
// an endpoint strictly inside the face plan cannot fully traverse it
// and is skipped for this face.
func (k *PlanarKernel) SplitWithLines(f geo.Face, lines []geo.Segment, tol float64) ([]geo.Face, error) {
	plan := f.Plan()
	pieces := []geom.Polygon{plan}
	for _, seg := range lines {
		if seg.Length() < tol {
			continue
		}
		if strictlyInside(plan, seg.A, tol) || strictlyInside(plan, seg.B, tol) {
			continue
		}
		halves, ok := halfPlanes(plan, seg)
		if !ok {
			continue
		}
		var next []geom.Polygon
		for _, piece := range pieces {
			for _, half := range halves {
				parts, err := k.Intersection(piece, half, tol)
				if err != nil {
					return nil, err
				}
				next = append(next, parts...)
			}
		}
		pieces = next
	}
	return liftAll(pieces, f.Plane, tol, f)
}

// SplitWithThickLine removes a strip of the given thickness around the
// segment from f and returns the remaining pieces.
func (k *PlanarKernel) SplitWithThickLine(f geo.Face, line geo.Segment, thickness, tol float64) ([]geo.Face, error) {
	if line.Length() < tol || thickness <= 0 {
		return []geo.Face{f}, nil
	}
	return k.cutAway(f, []geom.Polygon{segmentRect(line, thickness)}, tol)
}

// SplitWithThickPolyline removes a strip of the given thickness around
// the polyline from f, with round joints at interior vertices, and
// returns the remaining pieces.
func (k *PlanarKernel) SplitWithThickPolyline(f geo.Face, pts []geom.Point, thickness, tol float64) ([]geo.Face, error) {
	if len(pts) < 2 || thickness <= 0 {
		return []geo.Face{f}, nil
	}
	var cutters []geom.Polygon
	for i := 0; i+1 < len(pts); i++ {
		seg := geo.Segment{A: pts[i], B: pts[i+1]}
		if seg.Length() < tol {
			continue
		}
		cutters = append(cutters, segmentRect(seg, thickness))
	}
	if len(cutters) == 0 {
		return []geo.Face{f}, nil
	}
	for i := 1; i+1 < len(pts); i++ {
		cutters = append(cutters, approximateCircle(pts[i], thickness/2, jointSides))
	}
	return k.cutAway(f, cutters, tol)
}

// SplitThroughHoles cuts a holed face into hole-free pieces using
// vertical plan lines through each hole's centroid.
func (k *PlanarKernel) SplitThroughHoles(f geo.Face, tol float64) ([]geo.Face, error) {
	if len(f.Holes) == 0 {
		return []geo.Face{f}, nil
	}
	pieces := []geom.Polygon{f.Plan()}
	// Each pass cuts one holed piece; the cut line crosses the hole it
	// aims at, so the hole count drops every pass. The guard bounds the
	// loop if clipping ever fails to remove one.
	for guard := 0; guard < 2*len(f.Holes)+2; guard++ {
		idx := -1
		for i, p := range pieces {
			if len(p) > 1 {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}
		holed := pieces[idx]
		c := geo.RingCentroid(holed[1])
		seg := geo.Segment{A: geom.Point{X: c.X, Y: c.Y - 1}, B: geom.Point{X: c.X, Y: c.Y + 1}}
		halves, ok := halfPlanes(holed, seg)
		if !ok {
			break
		}
		var cut []geom.Polygon
		for _, half := range halves {
			parts, err := k.Intersection(holed, half, tol)
			if err != nil {
				return nil, err
			}
			cut = append(cut, parts...)
		}
		next := make([]geom.Polygon, 0, len(pieces)-1+len(cut))
		next = append(next, pieces[:idx]...)
		next = append(next, cut...)
		next = append(next, pieces[idx+1:]...)
		pieces = next
	}
	return liftAll(pieces, f.Plane, tol, f)
}

// cutAway subtracts each cutter from f's plan in turn and lifts the
// remaining pieces back onto f's plane.
func (k *PlanarKernel) cutAway(f geo.Face, cutters []geom.Polygon, tol float64) ([]geo.Face, error) {
	pieces := []geom.Polygon{f.Plan()}
	for _, cutter := range cutters {
		var next []geom.Polygon
		for _, piece := range pieces {
			parts, err := k.Difference(piece, cutter, tol)
			if err != nil {
				return nil, err
			}
			next = append(next, parts...)
		}
		pieces = next
	}
	return liftAll(pieces, f.Plane, tol, f)
}

// liftAll rebuilds faces from plan regions on pl, dropping degenerate
// regions. When every region degenerates the original face is kept.
func liftAll(pieces []geom.Polygon, pl geo.Plane, tol float64, orig geo.Face) ([]geo.Face, error) {
	out := make([]geo.Face, 0, len(pieces))
	for _, p := range pieces {
		f, ok, err := geo.LiftPolygon(p, pl, tol)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return []geo.Face{orig}, nil
	}
	return out, nil
}

// strictlyInside reports whether pt lies in the plan interior farther
// than tol from every edge.
func strictlyInside(plan geom.Polygon, pt geom.Point, tol float64) bool {
	if !geo.PointInRing(pt, plan[0]) {
		return false
	}
	for _, hole := range plan[1:] {
		if geo.PointInRing(pt, hole) {
			return false
		}
	}
	for _, ring := range plan {
		for i := range ring {
			if geo.DistanceToSegment(pt, ring[i], ring[(i+1)%len(ring)]) <= tol {
				return false
			}
		}
	}
	return true
}

// halfPlanes returns two rectangles covering each side of the segment's
// infinite line, large enough to span the plan polygon's extent.
func halfPlanes(plan geom.Polygon, seg geo.Segment) ([2]geom.Polygon, bool) {
	d := seg.Direction()
	if d.X == 0 && d.Y == 0 {
		return [2]geom.Polygon{}, false
	}
	n := geom.Point{X: -d.Y, Y: d.X}
	minX, minY, maxX, maxY := ringBounds(plan[0])
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	diag := math.Hypot(maxX-minX, maxY-minY)
	// Anchor at the line's closest point to the plan center so a
	// rectangle of side 2l is guaranteed to cover the whole plan.
	t := (cx-seg.A.X)*d.X + (cy-seg.A.Y)*d.Y
	px, py := seg.A.X+t*d.X, seg.A.Y+t*d.Y
	l := diag + math.Hypot(cx-px, cy-py) + 1
	rect := func(side float64) geom.Polygon {
		return geom.Polygon{{
			{X: px - d.X*l, Y: py - d.Y*l},
			{X: px + d.X*l, Y: py + d.Y*l},
			{X: px + (d.X+side*n.X)*l, Y: py + (d.Y+side*n.Y)*l},
			{X: px + (-d.X+side*n.X)*l, Y: py + (-d.Y+side*n.Y)*l},
		}}
	}
	return [2]geom.Polygon{rect(1), rect(-1)}, true
}

// segmentRect returns the rectangle of the given total thickness
// centered on the segment.
func segmentRect(seg geo.Segment, thickness float64) geom.Polygon {
	d := seg.Direction()
	h := thickness / 2
	n := geom.Point{X: -d.Y * h, Y: d.X * h}
	return geom.Polygon{{
		{X: seg.A.X - n.X, Y: seg.A.Y - n.Y},
		{X: seg.B.X - n.X, Y: seg.B.Y - n.Y},
		{X: seg.B.X + n.X, Y: seg.B.Y + n.Y},
		{X: seg.A.X + n.X, Y: seg.A.Y + n.Y},
	}}
}

// approximateCircle returns a regular polygon inscribed in the circle
// of the given radius around c.
func approximateCircle(c geom.Point, radius float64, sides int) geom.Polygon {
	ring := make([]geom.Point, sides)
	for i := 0; i < sides; i++ {
		a := 2 * math.Pi * float64(i) / float64(sides)
		ring[i] = geom.Point{X: c.X + radius*math.Cos(a), Y: c.Y + radius*math.Sin(a)}
	}
	return geom.Polygon{ring}
}
