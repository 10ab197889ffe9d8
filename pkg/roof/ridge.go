package roof

import (
	"fmt"
	"math"
	"sort"

	"github.com/ctessum/geom"

	"github.com/chazu/purlin/pkg/geo"
)

// VertexConstraint classifies how free a boundary vertex is during
// structure-preserving edits.
type VertexConstraint int

const (
	// VertexFree vertices carry no ridge constraint.
	VertexFree VertexConstraint = iota
	// VertexSlides vertices may move along their single ridge line.
	VertexSlides
	// VertexFixed vertices are held in place by two or more ridges.
	VertexFixed
)

// String returns a human-readable constraint name.
func (c VertexConstraint) String() string {
	switch c {
	case VertexFree:
		return "free"
	case VertexSlides:
		return "slides"
	case VertexFixed:
		return "fixed"
	default:
		return fmt.Sprintf("VertexConstraint(%d)", int(c))
	}
}

// RidgeRecord lists the plan ridge lines passing within tolerance of
// one boundary vertex.
type RidgeRecord struct {
	Ridges []geo.Segment
}

// Constraint classifies the vertex by its ridge count.
func (r RidgeRecord) Constraint() VertexConstraint {
	switch len(r.Ridges) {
	case 0:
		return VertexFree
	case 1:
		return VertexSlides
	default:
		return VertexFixed
	}
}

// RidgeLineInfo classifies every boundary vertex of every face by the
// ridge lines constraining it. Boundaries are flattened to plan, edges
// physically shared between two or more faces become ridges, and each
// vertex collects every ridge whose infinite line passes within tol.
// The records parallel the face boundaries one to one.
func (rs *RoofSpecification) RidgeLineInfo(tol float64) [][]RidgeRecord {
	tol = orDefault(tol, DefaultTolerance)
	ridges := rs.ridgeSegments(tol)
	out := make([][]RidgeRecord, len(rs.faces))
	for fi, f := range rs.faces {
		// The raw projection keeps vertex indices aligned with the 3D
		// boundary.
		ring := f.Plan()[0]
		recs := make([]RidgeRecord, len(ring))
		for vi, pt := range ring {
			for _, seg := range ridges {
				if seg.LineDistanceTo(pt) <= tol {
					recs[vi].Ridges = append(recs[vi].Ridges, seg)
				}
			}
		}
		out[fi] = recs
	}
	return out
}

// ridgeSegments returns the plan edges shared by two or more faces.
// Naked edges, used by a single face, form the building perimeter and
// are not constraints.
func (rs *RoofSpecification) ridgeSegments(tol float64) []geo.Segment {
	type edgeUse struct {
		seg   geo.Segment
		faces map[int]struct{}
	}
	uses := make(map[[4]int64]*edgeUse)
	for fi, f := range rs.faces {
		ring := f.Plan()[0]
		for i := range ring {
			a, b := ring[i], ring[(i+1)%len(ring)]
			key := edgeKey(a, b, tol)
			u, ok := uses[key]
			if !ok {
				u = &edgeUse{seg: geo.Segment{A: a, B: b}, faces: map[int]struct{}{}}
				uses[key] = u
			}
			u.faces[fi] = struct{}{}
		}
	}
	var ridges []geo.Segment
	for _, u := range uses {
		if len(u.faces) >= 2 {
			ridges = append(ridges, u.seg)
		}
	}
	sort.Slice(ridges, func(i, j int) bool {
		a, b := ridges[i], ridges[j]
		if a.A.X != b.A.X {
			return a.A.X < b.A.X
		}
		if a.A.Y != b.A.Y {
			return a.A.Y < b.A.Y
		}
		if a.B.X != b.B.X {
			return a.B.X < b.B.X
		}
		return a.B.Y < b.B.Y
	})
	return ridges
}

// edgeKey quantizes an undirected edge to the tolerance grid so that
// physically shared edges between faces collapse to one logical edge.
func edgeKey(a, b geom.Point, tol float64) [4]int64 {
	ax, ay := int64(math.Round(a.X/tol)), int64(math.Round(a.Y/tol))
	bx, by := int64(math.Round(b.X/tol)), int64(math.Round(b.Y/tol))
	if ax > bx || (ax == bx && ay > by) {
		ax, ay, bx, by = bx, by, ax, ay
	}
	return [4]int64{ax, ay, bx, by}
}
