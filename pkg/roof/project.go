package roof

import (
	"github.com/ctessum/geom"

	"github.com/chazu/purlin/pkg/geo"
)

// projectBoundary flattens a face boundary to its plan ring and removes
// collinear vertices. ok is false when the projection degenerates to
// fewer than three vertices.
func projectBoundary(f geo.Face, tol float64) ([]geom.Point, bool) {
	return geo.RemoveCollinear(f.Plan()[0], tol)
}

// liftRing rebuilds a boundary-only face from a plan ring projected
// vertically onto pl.
func liftRing(ring []geom.Point, pl geo.Plane, tol float64) (geo.Face, bool, error) {
	return geo.LiftPolygon(geom.Polygon{ring}, pl, tol)
}
