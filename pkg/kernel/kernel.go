// Package kernel defines the abstract planar geometry kernel interface.
// Implementations provide plan-space polygon classification, boolean
// operations, and face splitting behind this interface. The kernel
// abstraction allows swapping clipping backends without changing the
// rest of the system.
package kernel

import (
	"fmt"

	"github.com/ctessum/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/purlin/pkg/geo"
)

// Relationship classifies how one plan polygon sits relative to another.
type Relationship int

const (
	Disjoint  Relationship = iota // no shared interior
	Overlap                       // interiors partially intersect
	Contained                     // the first polygon lies inside the second
)

func (r Relationship) String() string {
	switch r {
	case Disjoint:
		return "disjoint"
	case Overlap:
		return "overlap"
	case Contained:
		return "contained"
	default:
		return fmt.Sprintf("Relationship(%d)", int(r))
	}
}

// Kernel is the abstract planar geometry kernel interface. Polygons are
// plan (XY) geometry with the outer ring first and hole rings after.
// Boolean results are disjoint regions in the same form. Methods return
// errors instead of panicking when the underlying clipper fails.
type Kernel interface {
	// Relationship classifies small against large. Polygons touching
	// only along edges within tol are disjoint; containment tolerates a
	// tol-wide rim.
	Relationship(small, large geom.Polygon, tol float64) (Relationship, error)

	// Boolean operations
	Intersection(a, b geom.Polygon, tol float64) ([]geom.Polygon, error)
	Difference(a, b geom.Polygon, tol float64) ([]geom.Polygon, error)
	UnionAll(polys []geom.Polygon, tol float64) ([]geom.Polygon, error)

	// Plane queries
	Coplanar(a, b geo.Plane, tol, angTol float64) bool
	ProjectPointAlong(pt, dir v3.Vec, pl geo.Plane) (v3.Vec, error)

	// Face splitting. One resulting face means no effective split.
	SplitWithPolygon(f geo.Face, poly geom.Polygon, tol float64) ([]geo.Face, error)
	SplitWithLines(f geo.Face, lines []geo.Segment, tol float64) ([]geo.Face, error)
	SplitWithThickLine(f geo.Face, line geo.Segment, thickness, tol float64) ([]geo.Face, error)
	SplitWithThickPolyline(f geo.Face, pts []geom.Point, thickness, tol float64) ([]geo.Face, error)
	SplitThroughHoles(f geo.Face, tol float64) ([]geo.Face, error)

	// MergeBoundariesAndHoles classifies a set of closed 2D loops into
	// boundary-with-holes polygons by containment.
	MergeBoundariesAndHoles(loops [][]geom.Point, tol float64) ([]geom.Polygon, error)
}
