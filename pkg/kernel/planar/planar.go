// Package planar implements the kernel.Kernel interface using the
// github.com/ctessum/geom polygon clipping library.
package planar

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ctessum/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/purlin/pkg/geo"
	"github.com/chazu/purlin/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*PlanarKernel)(nil)

// minRingArea is the absolute area below which a clipper output ring is
// numerical noise regardless of tolerance.
const minRingArea = 1e-12

// PlanarKernel implements kernel.Kernel using ctessum/geom.
type PlanarKernel struct{}

// New returns a new PlanarKernel.
func New() *PlanarKernel {
	return &PlanarKernel{}
}

// clip runs one clipping operation, converting panics in the underlying
// library into errors.
func clip(op string, fn func() geom.Polygon) (p geom.Polygon, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("planar: %s failed: %v", op, r)
		}
	}()
	return fn(), nil
}

// Relationship classifies small against large. Edge contact within tol
// stays disjoint: a shared strip no wider than tol has at most the area
// of tol times half the smaller polygon's perimeter.
func (k *PlanarKernel) Relationship(small, large geom.Polygon, tol float64) (kernel.Relationship, error) {
	if len(small) == 0 || len(large) == 0 {
		return kernel.Disjoint, nil
	}
	if !boundsOverlap(small[0], large[0], tol) {
		return kernel.Disjoint, nil
	}
	raw, err := clip("intersection", func() geom.Polygon { return small.Intersection(large) })
	if err != nil {
		return kernel.Disjoint, err
	}
	rim := tol * geo.RingPerimeter(small[0]) / 2
	ai := raw.Area()
	switch {
	case ai <= rim:
		return kernel.Disjoint, nil
	case ai >= small.Area()-rim:
		return kernel.Contained, nil
	default:
		return kernel.Overlap, nil
	}
}

// Intersection returns the shared regions of a and b.
func (k *PlanarKernel) Intersection(a, b geom.Polygon, tol float64) ([]geom.Polygon, error) {
	raw, err := clip("intersection", func() geom.Polygon { return a.Intersection(b) })
	if err != nil {
		return nil, err
	}
	return regions(raw, tol), nil
}

// Difference returns the regions of a not covered by b.
func (k *PlanarKernel) Difference(a, b geom.Polygon, tol float64) ([]geom.Polygon, error) {
	raw, err := clip("difference", func() geom.Polygon { return a.Difference(b) })
	if err != nil {
		return nil, err
	}
	return regions(raw, tol), nil
}

// UnionAll merges the polygons into their union regions.
func (k *PlanarKernel) UnionAll(polys []geom.Polygon, tol float64) ([]geom.Polygon, error) {
	if len(polys) == 0 {
		return nil, nil
	}
	acc := polys[0]
	for _, p := range polys[1:] {
		next, err := clip("union", func() geom.Polygon { return acc.Union(p) })
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return regions(acc, tol), nil
}

// Coplanar reports whether the two planes coincide within the linear
// and angular tolerances.
func (k *PlanarKernel) Coplanar(a, b geo.Plane, tol, angTol float64) bool {
	return a.Coplanar(b, tol, angTol)
}

// ProjectPointAlong projects pt along dir onto the plane.
func (k *PlanarKernel) ProjectPointAlong(pt, dir v3.Vec, pl geo.Plane) (v3.Vec, error) {
	return pl.ProjectAlong(dir, pt)
}

// MergeBoundariesAndHoles classifies closed 2D loops into
// boundary-with-holes polygons by containment.
func (k *PlanarKernel) MergeBoundariesAndHoles(loops [][]geom.Point, tol float64) ([]geom.Polygon, error) {
	out := regions(geom.Polygon(loops), tol)
	if len(out) == 0 && len(loops) > 0 {
		return nil, errors.New("planar: all loops are degenerate")
	}
	return out, nil
}

// regions splits raw clipper output into disjoint boundary-with-holes
// polygons. Rings are nested by containment: even-depth rings are
// boundaries, odd-depth rings are holes of their enclosing boundary.
func regions(raw geom.Polygon, tol float64) []geom.Polygon {
	minArea := math.Max(tol*tol, minRingArea)
	type ringInfo struct {
		ring  []geom.Point
		area  float64
		depth int
	}
	var rings []ringInfo
	for _, r := range raw {
		if len(r) >= 3 {
			if a := math.Abs(geo.RingArea(r)); a > minArea {
				rings = append(rings, ringInfo{ring: r, area: a})
			}
		}
	}
	if len(rings) == 0 {
		return nil
	}
	// Largest first so every ring's enclosing candidates precede it.
	sort.SliceStable(rings, func(i, j int) bool { return rings[i].area > rings[j].area })

	var out []geom.Polygon
	regionOf := make([]int, len(rings))
	for i := range rings {
		parent := -1
		// Walk from the smallest larger ring upward; the first ring
		// containing this one is its immediate parent.
		for j := i - 1; j >= 0; j-- {
			if ringContains(rings[j].ring, rings[i].ring) {
				parent = j
				break
			}
		}
		if parent < 0 {
			rings[i].depth = 0
		} else {
			rings[i].depth = rings[parent].depth + 1
		}
		if rings[i].depth%2 == 0 {
			regionOf[i] = len(out)
			out = append(out, geom.Polygon{rings[i].ring})
		} else {
			r := regionOf[parent]
			out[r] = append(out[r], rings[i].ring)
			regionOf[i] = r
		}
	}
	return out
}

// ringContains reports whether inner lies inside outer. Clipper output
// rings never cross, so a single interior representative point decides;
// a vertex majority vote covers rings whose centroid falls outside
// themselves.
func ringContains(outer, inner []geom.Point) bool {
	c := geo.RingCentroid(inner)
	if geo.PointInRing(c, inner) {
		return geo.PointInRing(c, outer)
	}
	in := 0
	for _, p := range inner {
		if geo.PointInRing(p, outer) {
			in++
		}
	}
	return in*2 > len(inner)
}

// ringBounds returns the axis-aligned bounds of a ring.
func ringBounds(ring []geom.Point) (minX, minY, maxX, maxY float64) {
	minX, minY = ring[0].X, ring[0].Y
	maxX, maxY = minX, minY
	for _, p := range ring[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}

// boundsOverlap reports whether the bounds of two rings overlap when
// inflated by tol.
func boundsOverlap(a, b []geom.Point, tol float64) bool {
	aMinX, aMinY, aMaxX, aMaxY := ringBounds(a)
	bMinX, bMinY, bMaxX, bMaxY := ringBounds(b)
	return aMinX <= bMaxX+tol && bMinX <= aMaxX+tol &&
		aMinY <= bMaxY+tol && bMinY <= aMaxY+tol
}
