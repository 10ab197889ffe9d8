package roof

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/geom"

	"github.com/chazu/purlin/pkg/geo"
)

// SnapToGrid moves the selected faces' vertices onto multiples of the
// grid increment. A face whose constrained vertices share a single
// axis-aligned ridge direction translates rigidly so its first
// constrained vertex lands on the grid and every ridge stays intact;
// any other face rounds each vertex independently and re-projects onto
// its plane, which can break ridges that are not axis-aligned. A nil
// selection snaps every face.
func (rs *RoofSpecification) SnapToGrid(increment float64, selected []int, tol float64) error {
	if increment <= 0 {
		return fmt.Errorf("roof: grid increment must be positive, got %g", increment)
	}
	tol = orDefault(tol, DefaultTolerance)
	sel, err := rs.selection(selected)
	if err != nil {
		return err
	}
	info := rs.RidgeLineInfo(tol)
	for _, idx := range sel {
		snapped, ok := snapFace(rs.faces[idx], info[idx], increment, tol)
		if !ok {
			rs.log.Warn("grid snap skipped a face", "face", idx)
			continue
		}
		rs.faces[idx] = snapped
	}
	return nil
}

// Align pulls every plan vertex (boundary and holes, every face) lying
// within distance of the target line onto its closest point there,
// then reconstructs the edges around each pulled run so that unpulled
// seams stay straight.
func (rs *RoofSpecification) Align(line geo.Linear, distance, tol float64) error {
	if line == nil {
		return errors.New("roof: align target line is nil")
	}
	if distance <= 0 {
		return fmt.Errorf("roof: align distance must be positive, got %g", distance)
	}
	tol = orDefault(tol, DefaultTolerance)
	pull := func(pt geom.Point) (geom.Point, bool) {
		cp := line.ClosestPoint(pt)
		if math.Hypot(cp.X-pt.X, cp.Y-pt.Y) <= distance {
			return cp, true
		}
		return pt, false
	}
	for idx := range rs.faces {
		rs.faces[idx] = rs.pullFace(rs.faces[idx], pull, tol, idx)
	}
	return nil
}

// PullToSegments pulls each plan vertex of the selected faces to the
// globally closest of the target segments when within distance. With
// snapVertices, a vertex additionally snaps to the nearest segment
// endpoint within distance of its pulled position. Edges around pulled
// runs are reconstructed per polygon. A nil selection pulls every
// face.
func (rs *RoofSpecification) PullToSegments(segs []geo.Segment, distance float64, snapVertices bool, selected []int, tol float64) error {
	if len(segs) == 0 {
		return errors.New("roof: pull requires at least one target segment")
	}
	if distance <= 0 {
		return fmt.Errorf("roof: pull distance must be positive, got %g", distance)
	}
	tol = orDefault(tol, DefaultTolerance)
	sel, err := rs.selection(selected)
	if err != nil {
		return err
	}
	pull := func(pt geom.Point) (geom.Point, bool) {
		best := pt
		bestDist := math.Inf(1)
		for _, s := range segs {
			cp := s.ClosestPoint(pt)
			if d := math.Hypot(cp.X-pt.X, cp.Y-pt.Y); d < bestDist {
				best, bestDist = cp, d
			}
		}
		if bestDist > distance {
			return pt, false
		}
		if snapVertices {
			endBest := best
			endDist := math.Inf(1)
			for _, s := range segs {
				for _, end := range [2]geom.Point{s.A, s.B} {
					if d := math.Hypot(end.X-best.X, end.Y-best.Y); d < endDist {
						endBest, endDist = end, d
					}
				}
			}
			if endDist <= distance {
				best = endBest
			}
		}
		return best, true
	}
	for _, idx := range sel {
		rs.faces[idx] = rs.pullFace(rs.faces[idx], pull, tol, idx)
	}
	return nil
}

// pullFace applies the pull function to every ring vertex of f and
// rebuilds the face with edge reconstruction, returning f unchanged
// when nothing moved or the result degenerates.
func (rs *RoofSpecification) pullFace(f geo.Face, pull func(geom.Point) (geom.Point, bool), tol float64, idx int) geo.Face {
	plan := f.Plan()
	out := make(geom.Polygon, len(plan))
	changed := false
	for ri, ring := range plan {
		pulled := make([]geom.Point, len(ring))
		moved := make([]bool, len(ring))
		anyMoved := false
		for i, pt := range ring {
			p, m := pull(pt)
			pulled[i], moved[i] = p, m
			anyMoved = anyMoved || m
		}
		if anyMoved {
			changed = true
			out[ri] = reconstructEdges(ring, pulled, moved)
		} else {
			out[ri] = ring
		}
	}
	if !changed {
		return f
	}
	nf, ok := liftFace(out, f.Plane, tol)
	if !ok {
		rs.log.Warn("pull degenerated a face, keeping original", "face", idx)
		return f
	}
	return nf
}

// reconstructEdges restores straight seams around pulled vertices. For
// each maximal run of two or more consecutive moved vertices bounded
// by unmoved vertices, the original edges entering and leaving the run
// are extended and intersected with the run's new end lines; an
// intersection within ten bounding-box diagonals of the pulled corner
// replaces it. Isolated moved vertices and fully-moved rings stay as
// pulled.
func reconstructEdges(orig, pulled []geom.Point, moved []bool) []geom.Point {
	n := len(orig)
	out := make([]geom.Point, n)
	copy(out, pulled)
	allMoved := true
	for _, m := range moved {
		allMoved = allMoved && m
	}
	if allMoved {
		return out
	}
	limit := 10 * bboxDiagonal(orig)
	for s := 0; s < n; s++ {
		if !moved[s] || moved[(s+n-1)%n] {
			continue // not the start of a run
		}
		e := s
		for moved[(e+1)%n] {
			e = (e + 1) % n
		}
		if (e-s+n)%n+1 < 2 {
			continue
		}
		// Head: the original edge into the run meets the run's first
		// new edge.
		prev := (s + n - 1) % n
		second := (s + 1) % n
		if x, ok := geo.LineIntersection(orig[prev], orig[s], pulled[s], pulled[second]); ok {
			if math.Hypot(x.X-pulled[s].X, x.Y-pulled[s].Y) <= limit {
				out[s] = x
			}
		}
		// Tail: the original edge out of the run meets the run's last
		// new edge.
		after := (e + 1) % n
		penult := (e + n - 1) % n
		if x, ok := geo.LineIntersection(orig[after], orig[e], pulled[e], pulled[penult]); ok {
			if math.Hypot(x.X-pulled[e].X, x.Y-pulled[e].Y) <= limit {
				out[e] = x
			}
		}
	}
	return out
}

// snapFace snaps one face's vertices to the grid, choosing between a
// rigid translation and independent rounding by the face's ridge
// constraints.
func snapFace(f geo.Face, recs []RidgeRecord, increment, tol float64) (geo.Face, bool) {
	plan := f.Plan()
	first := -1
	var dirs []geom.Point
	for vi, rec := range recs {
		if len(rec.Ridges) == 0 {
			continue
		}
		if first < 0 {
			first = vi
		}
		for _, seg := range rec.Ridges {
			dirs = appendDirection(dirs, seg.Direction())
		}
	}
	if first >= 0 && len(dirs) == 1 && axisAligned(dirs[0]) {
		v := plan[0][first]
		dx := geo.RoundTo(v.X, increment) - v.X
		dy := geo.RoundTo(v.Y, increment) - v.Y
		return liftFace(translatePolygon(plan, dx, dy), f.Plane, tol)
	}
	rounded := make(geom.Polygon, len(plan))
	for ri, ring := range plan {
		rounded[ri] = make([]geom.Point, len(ring))
		for i, p := range ring {
			rounded[ri][i] = geom.Point{X: geo.RoundTo(p.X, increment), Y: geo.RoundTo(p.Y, increment)}
		}
	}
	return liftFace(rounded, f.Plane, tol)
}

// liftFace rebuilds a face from a plan polygon on pl, reporting false
// when the polygon degenerates or the plane is vertical.
func liftFace(poly geom.Polygon, pl geo.Plane, tol float64) (geo.Face, bool) {
	f, ok, err := geo.LiftPolygon(poly, pl, tol)
	if err != nil || !ok {
		return geo.Face{}, false
	}
	return f, true
}

// appendDirection adds d, canonicalized to a half-plane, unless an
// equivalent direction is already present.
func appendDirection(dirs []geom.Point, d geom.Point) []geom.Point {
	if d.X == 0 && d.Y == 0 {
		return dirs
	}
	if d.X < 0 || (d.X == 0 && d.Y < 0) {
		d = geom.Point{X: -d.X, Y: -d.Y}
	}
	for _, e := range dirs {
		if math.Abs(d.X*e.Y-d.Y*e.X) < 1e-9 {
			return dirs
		}
	}
	return append(dirs, d)
}

// axisAligned reports whether the unit direction lies along X or Y.
func axisAligned(d geom.Point) bool {
	return math.Abs(d.X) < 1e-9 || math.Abs(d.Y) < 1e-9
}

// translatePolygon shifts every ring of poly by (dx, dy).
func translatePolygon(poly geom.Polygon, dx, dy float64) geom.Polygon {
	out := make(geom.Polygon, len(poly))
	for ri, ring := range poly {
		out[ri] = make([]geom.Point, len(ring))
		for i, p := range ring {
			out[ri][i] = geom.Point{X: p.X + dx, Y: p.Y + dy}
		}
	}
	return out
}

// bboxDiagonal returns the diagonal length of the ring's bounding box.
func bboxDiagonal(ring []geom.Point) float64 {
	minX, minY := ring[0].X, ring[0].Y
	maxX, maxY := minX, minY
	for _, p := range ring[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return math.Hypot(maxX-minX, maxY-minY)
}
