package roof

import (
	"fmt"

	"github.com/ctessum/geom"

	"github.com/chazu/purlin/pkg/geo"
)

// SplitWithPolygon splits the selected faces along the boundary of a
// plan polygon. Faces the polygon misses or fully covers are left
// whole. A nil selection splits every face.
func (rs *RoofSpecification) SplitWithPolygon(poly geom.Polygon, selected []int, tol float64) error {
	tol = orDefault(tol, DefaultTolerance)
	sel, err := rs.selection(selected)
	if err != nil {
		return err
	}
	rs.splitFaces(sel, "polygon", func(f geo.Face) ([]geo.Face, error) {
		return rs.kern.SplitWithPolygon(f, poly, tol)
	})
	return nil
}

// SplitWithLines splits the selected faces along the infinite lines
// through the given segments. A segment with an endpoint strictly
// inside a face's plan leaves that face whole, so lines can be aimed
// at individual faces of a shared plan. A nil selection splits every
// face.
func (rs *RoofSpecification) SplitWithLines(lines []geo.Segment, selected []int, tol float64) error {
	tol = orDefault(tol, DefaultTolerance)
	sel, err := rs.selection(selected)
	if err != nil {
		return err
	}
	rs.splitFaces(sel, "lines", func(f geo.Face) ([]geo.Face, error) {
		return rs.kern.SplitWithLines(f, lines, tol)
	})
	return nil
}

// SplitWithThickLine removes a straight band of the given thickness
// from the selected faces, splitting each into the pieces on either
// side. A nil selection splits every face.
func (rs *RoofSpecification) SplitWithThickLine(line geo.Segment, thickness float64, selected []int, tol float64) error {
	tol = orDefault(tol, DefaultTolerance)
	sel, err := rs.selection(selected)
	if err != nil {
		return err
	}
	rs.splitFaces(sel, "thick line", func(f geo.Face) ([]geo.Face, error) {
		return rs.kern.SplitWithThickLine(f, line, thickness, tol)
	})
	return nil
}

// SplitWithThickPolyline removes a thick polyline from the selected
// faces, with rounded joints at the polyline's interior vertices. A
// nil selection splits every face.
func (rs *RoofSpecification) SplitWithThickPolyline(pts []geom.Point, thickness float64, selected []int, tol float64) error {
	tol = orDefault(tol, DefaultTolerance)
	sel, err := rs.selection(selected)
	if err != nil {
		return err
	}
	rs.splitFaces(sel, "thick polyline", func(f geo.Face) ([]geo.Face, error) {
		return rs.kern.SplitWithThickPolyline(f, pts, thickness, tol)
	})
	return nil
}

// splitFaces applies cut to each selected face and splices the pieces
// into the face list in order. A face whose cut fails is kept whole.
func (rs *RoofSpecification) splitFaces(sel []int, op string, cut func(geo.Face) ([]geo.Face, error)) {
	chosen := make(map[int]bool, len(sel))
	for _, idx := range sel {
		chosen[idx] = true
	}
	out := make([]geo.Face, 0, len(rs.faces))
	for idx, f := range rs.faces {
		if !chosen[idx] {
			out = append(out, f)
			continue
		}
		pieces, err := cut(f)
		if err != nil {
			rs.log.Warn("split failed, keeping face whole", "op", op, "face", idx, "error", err)
			out = append(out, f)
			continue
		}
		out = append(out, pieces...)
	}
	rs.faces = out
}

// SubtractRoofs subtracts the plan footprints of the subtrahend faces
// from the minuend face, replacing it in place with the remaining
// pieces lifted back onto its plane. A nil subtrahend selection
// subtracts every other face. A subtrahend whose subtraction fails is
// skipped.
func (rs *RoofSpecification) SubtractRoofs(minuend int, subtrahends []int, tol float64) error {
	if minuend < 0 || minuend >= len(rs.faces) {
		return fmt.Errorf("%w: %d with %d faces", ErrIndexRange, minuend, len(rs.faces))
	}
	tol = orDefault(tol, DefaultTolerance)
	subs, err := rs.selection(subtrahends)
	if err != nil {
		return err
	}
	mf := rs.faces[minuend]
	pieces := []geom.Polygon{mf.Plan()}
	for _, si := range subs {
		if si == minuend {
			continue
		}
		cutter := rs.faces[si].Plan()
		next := make([]geom.Polygon, 0, len(pieces))
		failed := false
		for _, piece := range pieces {
			diff, err := rs.differenceWithRetry(piece, cutter, tol)
			if err != nil {
				rs.log.Warn("subtraction failed, skipping subtrahend", "minuend", minuend, "subtrahend", si, "error", err)
				failed = true
				break
			}
			next = append(next, diff...)
		}
		if !failed {
			pieces = next
		}
	}
	rebuilt := make([]geo.Face, 0, len(pieces))
	for _, piece := range pieces {
		nf, ok, err := geo.LiftPolygon(piece, mf.Plane, tol)
		if err != nil || !ok {
			continue
		}
		rebuilt = append(rebuilt, nf)
	}
	out := make([]geo.Face, 0, len(rs.faces)-1+len(rebuilt))
	out = append(out, rs.faces[:minuend]...)
	out = append(out, rebuilt...)
	out = append(out, rs.faces[minuend+1:]...)
	if len(out) == 0 {
		return ErrEmptyGeometry
	}
	rs.faces = out
	return nil
}
