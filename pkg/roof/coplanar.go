package roof

import (
	"math"

	"github.com/ctessum/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/purlin/pkg/geo"
	"github.com/chazu/purlin/pkg/kernel"
)

// UnionCoplanar merges coplanar faces whose plan regions overlap into
// single faces covering the same area, rebuilding the face sequence.
// Groups whose union fails keep their original faces.
func (rs *RoofSpecification) UnionCoplanar(tol, angTol float64) error {
	return rs.mergeCoplanar(orDefault(tol, DefaultTolerance), orDefault(angTol, DefaultAngleTolerance), false)
}

// JoinCoplanar merges coplanar faces that overlap or merely touch in
// plan. Merged boundaries are projected onto the group's area-weighted
// average plane, with holes separated from outer boundaries when the
// union leaves multiple loops.
func (rs *RoofSpecification) JoinCoplanar(tol, angTol float64) error {
	return rs.mergeCoplanar(orDefault(tol, DefaultTolerance), orDefault(angTol, DefaultAngleTolerance), true)
}

func (rs *RoofSpecification) mergeCoplanar(tol, angTol float64, join bool) error {
	// Bucket faces by plane against one representative per bucket; a
	// face joins the first compatible bucket found.
	type bucket struct {
		rep     geo.Plane
		members []int
	}
	var buckets []bucket
	for i, f := range rs.faces {
		placed := false
		for b := range buckets {
			if rs.kern.Coplanar(f.Plane, buckets[b].rep, tol, angTol) {
				buckets[b].members = append(buckets[b].members, i)
				placed = true
				break
			}
		}
		if !placed {
			buckets = append(buckets, bucket{rep: f.Plane, members: []int{i}})
		}
	}

	plans := make([]geom.Polygon, len(rs.faces))
	for i, f := range rs.faces {
		plans[i] = f.Plan()
	}

	var out []geo.Face
	for _, b := range buckets {
		for _, group := range rs.adjacencyGroups(b.members, plans, tol, join) {
			out = append(out, rs.mergeGroup(group, plans, tol, join)...)
		}
	}
	if len(out) == 0 {
		return ErrEmptyGeometry
	}
	rs.faces = out
	return nil
}

// adjacencyGroups partitions bucket members into connected groups by
// plan overlap, additionally treating touching boundaries as connected
// when touching is true.
func (rs *RoofSpecification) adjacencyGroups(members []int, plans []geom.Polygon, tol float64, touching bool) [][]int {
	adjacent := func(a, b int) bool {
		small, large := plans[a], plans[b]
		if math.Abs(geo.RingArea(small[0])) > math.Abs(geo.RingArea(large[0])) {
			small, large = large, small
		}
		rel, err := rs.kern.Relationship(small, large, tol)
		if err != nil {
			rs.log.Warn("adjacency classification failed, treating pair as separate", "pair", [2]int{a, b}, "error", err)
			return false
		}
		if rel != kernel.Disjoint {
			return true
		}
		return touching && plansTouch(plans[a], plans[b], tol)
	}

	visited := make([]bool, len(members))
	var groups [][]int
	for s := range members {
		if visited[s] {
			continue
		}
		visited[s] = true
		comp := []int{members[s]}
		for qi := 0; qi < len(comp); qi++ {
			for t := range members {
				if !visited[t] && adjacent(comp[qi], members[t]) {
					visited[t] = true
					comp = append(comp, members[t])
				}
			}
		}
		groups = append(groups, comp)
	}
	return groups
}

// mergeGroup unions one adjacency group's plans into merged faces,
// keeping the group's original faces when the union fails.
func (rs *RoofSpecification) mergeGroup(group []int, plans []geom.Polygon, tol float64, join bool) []geo.Face {
	if len(group) == 1 {
		return []geo.Face{rs.faces[group[0]].Copy()}
	}
	gplans := make([]geom.Polygon, len(group))
	gfaces := make([]geo.Face, len(group))
	for gi, idx := range group {
		gplans[gi] = plans[idx]
		gfaces[gi] = rs.faces[idx]
	}
	merged, err := rs.kern.UnionAll(gplans, tol)
	if err != nil || len(merged) == 0 {
		rs.log.Warn("coplanar union failed, keeping the group's faces", "faces", group, "error", err)
		return copyFaces(gfaces)
	}

	pl := gfaces[0].Plane
	if join {
		pl = joinedPlane(gfaces)
		// Re-classify the result loops into boundaries and holes when
		// the union left several.
		if loops := allRings(merged); len(loops) > 1 {
			re, merr := rs.kern.MergeBoundariesAndHoles(loops, tol)
			if merr != nil {
				rs.log.Warn("boundary/hole merge failed, using raw union output", "error", merr)
			} else {
				merged = re
			}
		}
	}

	out := make([]geo.Face, 0, len(merged))
	for _, region := range merged {
		f, ok, lerr := geo.LiftPolygon(region, pl, tol)
		if lerr != nil || !ok {
			rs.log.Warn("dropping degenerate union region", "error", lerr)
			continue
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return copyFaces(gfaces)
	}
	return out
}

// joinedPlane returns the area-weighted average plane of the faces,
// with normals aligned to the first face's orientation.
func joinedPlane(faces []geo.Face) geo.Plane {
	ref := faces[0].Plane.N
	var n, o v3.Vec
	var total float64
	for _, f := range faces {
		a := f.Area()
		fn := f.Plane.N
		if fn.Dot(ref) < 0 {
			fn = fn.MulScalar(-1)
		}
		n = n.Add(fn.MulScalar(a))
		o = o.Add(f.Center().MulScalar(a))
		total += a
	}
	if total == 0 {
		return faces[0].Plane
	}
	pl, err := geo.NewPlane(n, o.MulScalar(1/total))
	if err != nil {
		return faces[0].Plane
	}
	return pl
}

// plansTouch reports whether any vertex of one polygon lies within tol
// of the other polygon's edges, in either direction.
func plansTouch(a, b geom.Polygon, tol float64) bool {
	return polyVertexNear(a, b, tol) || polyVertexNear(b, a, tol)
}

// polyVertexNear reports whether some vertex of a is within tol of one
// of b's edges.
func polyVertexNear(a, b geom.Polygon, tol float64) bool {
	for _, ring := range a {
		for _, pt := range ring {
			for _, bring := range b {
				for i := range bring {
					if geo.DistanceToSegment(pt, bring[i], bring[(i+1)%len(bring)]) <= tol {
						return true
					}
				}
			}
		}
	}
	return false
}

// allRings flattens region polygons into their component loops.
func allRings(polys []geom.Polygon) [][]geom.Point {
	var out [][]geom.Point
	for _, p := range polys {
		out = append(out, p...)
	}
	return out
}
