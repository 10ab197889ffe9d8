package roof

import (
	"math"
	"sort"

	"github.com/ctessum/geom"

	"github.com/chazu/purlin/pkg/geo"
	"github.com/chazu/purlin/pkg/kernel"
)

// workPiece is one plan polygon flowing through a resolution pass.
type workPiece struct {
	ring    []geom.Point
	plane   geo.Plane
	src     int // index into the hole-free face list
	touched bool
	removed bool
}

// ResolvedGeometry returns the faces with mutually-overlapping plan
// regions resolved by elevation priority: where two faces overlap in
// plan, the overlap is kept by the face whose plane is lower over the
// piece's centroid and carved out of the higher one. The pass visits
// every pair once; pieces split off during the pass are not
// re-compared, so heavily-stacked inputs may need another call (see
// ResolveToFixpoint). The store itself is not mutated.
func (rs *RoofSpecification) ResolvedGeometry(tol float64) ([]geo.Face, error) {
	return rs.resolveOnce(rs.faces, orDefault(tol, DefaultTolerance))
}

// ResolveToFixpoint repeats resolution passes until the result is
// overlap-free or maxIter passes have run. ResolvedGeometry's single
// pass is the compatible default; this is the stricter mode for inputs
// where resolving one overlap uncovers another. A non-positive maxIter
// runs up to three passes.
func (rs *RoofSpecification) ResolveToFixpoint(tol float64, maxIter int) ([]geo.Face, error) {
	tol = orDefault(tol, DefaultTolerance)
	if maxIter <= 0 {
		maxIter = 3
	}
	faces := rs.faces
	for iter := 0; iter < maxIter; iter++ {
		out, err := rs.resolveOnce(faces, tol)
		if err != nil {
			return nil, err
		}
		faces = out
		if len(faces) == 0 || rs.overlapCountOf(faces, tol) == 0 {
			break
		}
	}
	return faces, nil
}

// OverlapCount returns the number of face pairs whose plan boundaries
// overlap or contain one another within tol. It is a read-only
// diagnostic over faces in boundary order; a pair whose classification
// fails is logged and skipped.
func (rs *RoofSpecification) OverlapCount(tol float64) int {
	return rs.overlapCountOf(rs.faces, orDefault(tol, DefaultTolerance))
}

// resolveOnce runs one resolution pass over faces.
func (rs *RoofSpecification) resolveOnce(faces []geo.Face, tol float64) ([]geo.Face, error) {
	if len(faces) == 1 {
		return []geo.Face{faces[0].Copy()}, nil
	}

	// Faces with holes are cut into hole-free pieces first so the plan
	// algorithms work on plain rings.
	flat := make([]geo.Face, 0, len(faces))
	for i, f := range faces {
		pieces, err := rs.kern.SplitThroughHoles(f, tol)
		if err != nil {
			rs.log.Warn("hole pre-split failed, keeping face", "face", i, "error", err)
			pieces = []geo.Face{f}
		}
		flat = append(flat, pieces...)
	}

	work := make([]workPiece, 0, len(flat))
	for i, f := range flat {
		ring, ok := projectBoundary(f, tol)
		if !ok {
			rs.log.Debug("dropping degenerate plan projection", "face", i)
			continue
		}
		work = append(work, workPiece{ring: ring, plane: f.Plane, src: i})
	}

	// Largest plan footprint first, stably, so smaller faces carve into
	// larger ones rather than vice versa.
	sort.SliceStable(work, func(i, j int) bool {
		return math.Abs(geo.RingArea(work[i].ring)) > math.Abs(geo.RingArea(work[j].ring))
	})

	// One pass over the original extent; pieces appended during the
	// pass take no further part in it.
	n := len(work)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			rs.resolvePair(&work, i, j, tol)
		}
	}

	out := make([]geo.Face, 0, len(work))
	for _, w := range work {
		if w.removed {
			continue
		}
		if !w.touched {
			// Untouched entries keep their original face values.
			out = append(out, flat[w.src].Copy())
			continue
		}
		f, ok, err := liftRing(w.ring, w.plane, tol)
		if err != nil || !ok {
			rs.log.Warn("dropping unrebuildable resolved piece", "source", w.src, "error", err)
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// resolvePair classifies work[i] against work[j] and resolves any plan
// overlap between them. Splits may append to work.
func (rs *RoofSpecification) resolvePair(work *[]workPiece, i, j int, tol float64) {
	w := *work
	if w[i].removed || w[j].removed {
		return
	}
	// Classify the smaller polygon against the larger one.
	small, large := i, j
	if math.Abs(geo.RingArea(w[small].ring)) > math.Abs(geo.RingArea(w[large].ring)) {
		small, large = large, small
	}
	rel, err := rs.kern.Relationship(geom.Polygon{w[small].ring}, geom.Polygon{w[large].ring}, tol)
	if err != nil {
		rs.log.Warn("classification failed, leaving pair unresolved", "pair", [2]int{i, j}, "error", err)
		return
	}
	switch rel {
	case kernel.Disjoint:
	case kernel.Contained:
		w[small].removed = true
	case kernel.Overlap:
		rs.resolveOverlap(work, i, j, tol)
	}
}

// resolveOverlap carves each disjoint intersection piece of work[i] and
// work[j] out of the entry whose plane is higher over the piece's
// centroid. Equal elevations carve the second entry.
func (rs *RoofSpecification) resolveOverlap(work *[]workPiece, i, j int, tol float64) {
	w := *work
	pieces, err := rs.intersectWithRetry(geom.Polygon{w[i].ring}, geom.Polygon{w[j].ring}, tol)
	if err != nil {
		rs.log.Warn("intersection failed, leaving overlap unresolved", "pair", [2]int{i, j}, "tolerance", tol, "error", err)
		return
	}
	for _, piece := range pieces {
		w = *work // reacquire after a possible append
		if w[i].removed || w[j].removed {
			return
		}
		c := geo.RingCentroid(piece[0])
		zi, errI := w[i].plane.Z(c.X, c.Y)
		zj, errJ := w[j].plane.Z(c.X, c.Y)
		if errI != nil || errJ != nil {
			rs.log.Debug("skipping overlap piece over a vertical plane", "pair", [2]int{i, j})
			continue
		}
		loser := j
		if zi > zj {
			loser = i
		}
		rs.subtractPiece(work, loser, piece, tol)
	}
}

// subtractPiece removes the cutter region from work[idx]. The first
// remainder stays in place; extra disjoint remainders are appended as
// new work pieces.
func (rs *RoofSpecification) subtractPiece(work *[]workPiece, idx int, cutter geom.Polygon, tol float64) {
	w := *work
	diff, err := rs.differenceWithRetry(geom.Polygon{w[idx].ring}, cutter, tol)
	if err != nil {
		rs.log.Warn("subtraction failed, leaving piece in place", "face", idx, "tolerance", tol, "error", err)
		return
	}
	if len(diff) == 0 {
		w[idx].removed = true
		return
	}
	if len(diff[0]) > 1 {
		rs.log.Debug("discarding hole rings from a subtraction result", "face", idx)
	}
	plane, src := w[idx].plane, w[idx].src
	w[idx].ring = diff[0][0]
	w[idx].touched = true
	for _, extra := range diff[1:] {
		*work = append(*work, workPiece{ring: extra[0], plane: plane, src: src, touched: true})
	}
}

// intersectWithRetry runs a kernel intersection with one retry at a
// tenth of the tolerance.
func (rs *RoofSpecification) intersectWithRetry(a, b geom.Polygon, tol float64) ([]geom.Polygon, error) {
	out, err := rs.kern.Intersection(a, b, tol)
	if err == nil {
		return out, nil
	}
	rs.log.Debug("retrying intersection at reduced tolerance", "tolerance", tol/10, "error", err)
	return rs.kern.Intersection(a, b, tol/10)
}

// differenceWithRetry runs a kernel difference with one retry at a
// tenth of the tolerance.
func (rs *RoofSpecification) differenceWithRetry(a, b geom.Polygon, tol float64) ([]geom.Polygon, error) {
	out, err := rs.kern.Difference(a, b, tol)
	if err == nil {
		return out, nil
	}
	rs.log.Debug("retrying difference at reduced tolerance", "tolerance", tol/10, "error", err)
	return rs.kern.Difference(a, b, tol/10)
}

func (rs *RoofSpecification) overlapCountOf(faces []geo.Face, tol float64) int {
	rings := make([][]geom.Point, 0, len(faces))
	for _, f := range faces {
		if ring, ok := projectBoundary(f, tol); ok {
			rings = append(rings, ring)
		}
	}
	count := 0
	for i := 0; i < len(rings); i++ {
		for j := i + 1; j < len(rings); j++ {
			small, large := rings[i], rings[j]
			if math.Abs(geo.RingArea(small)) > math.Abs(geo.RingArea(large)) {
				small, large = large, small
			}
			rel, err := rs.kern.Relationship(geom.Polygon{small}, geom.Polygon{large}, tol)
			if err != nil {
				rs.log.Warn("overlap count skipping pair", "pair", [2]int{i, j}, "error", err)
				continue
			}
			if rel != kernel.Disjoint {
				count++
			}
		}
	}
	return count
}
