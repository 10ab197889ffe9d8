package roof

import (
	"math"

	"github.com/ctessum/geom"
	"github.com/dhconnelly/rtreego"

	"github.com/chazu/purlin/pkg/geo"
)

// GapPoint marks a plan vertex of one face that sits near, but not
// on, the boundary of another face.
type GapPoint struct {
	// Face is the index of the face owning the vertex.
	Face int
	// Other is the index of the face the vertex almost touches.
	Other int
	// Point is the vertex location in plan.
	Point geom.Point
}

// gapEntry indexes one face's plan bounding box in the R-tree.
type gapEntry struct {
	idx  int
	rect *rtreego.Rect
}

func (e *gapEntry) Bounds() *rtreego.Rect { return e.rect }

// FindGaps reports plan vertices that lie within gapDistance of
// another face's boundary but farther than the tolerance from it.
// Such near-misses usually mean two faces were meant to share an edge
// and drifted apart. Candidate face pairs are found through an R-tree
// over the plan bounding boxes, so distant faces are never compared.
func (rs *RoofSpecification) FindGaps(gapDistance, tol float64) []GapPoint {
	gapDistance = orDefault(gapDistance, DefaultGapDistance)
	tol = orDefault(tol, DefaultTolerance)
	rings := make([][]geom.Point, len(rs.faces))
	tree := rtreego.NewTree(2, 25, 50)
	for i, f := range rs.faces {
		rings[i] = f.Plan()[0]
		tree.Insert(&gapEntry{idx: i, rect: ringRect(rings[i], tol)})
	}
	var out []GapPoint
	for i, ring := range rings {
		for _, hit := range tree.SearchIntersect(ringRect(ring, gapDistance)) {
			j := hit.(*gapEntry).idx
			if j <= i {
				continue
			}
			out = append(out, gapsBetween(i, j, ring, rings[j], gapDistance, tol)...)
			out = append(out, gapsBetween(j, i, rings[j], ring, gapDistance, tol)...)
		}
	}
	return out
}

// gapsBetween reports the vertices of ringA falling in the open band
// (tol, gapDist) around ringB's edges.
func gapsBetween(owner, other int, ringA, ringB []geom.Point, gapDist, tol float64) []GapPoint {
	var out []GapPoint
	for _, pt := range ringA {
		d := math.Inf(1)
		for k := range ringB {
			a, b := ringB[k], ringB[(k+1)%len(ringB)]
			d = math.Min(d, geo.DistanceToSegment(pt, a, b))
		}
		if d > tol && d < gapDist {
			out = append(out, GapPoint{Face: owner, Other: other, Point: pt})
		}
	}
	return out
}

// ringRect returns the ring's plan bounding box grown by pad on every
// side. The padding keeps degenerate boxes of vertical faces valid.
func ringRect(ring []geom.Point, pad float64) *rtreego.Rect {
	minX, minY := ring[0].X, ring[0].Y
	maxX, maxY := minX, minY
	for _, p := range ring[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	rect, err := rtreego.NewRect(
		rtreego.Point{minX - pad, minY - pad},
		[]float64{maxX - minX + 2*pad, maxY - minY + 2*pad},
	)
	if err != nil {
		rect, _ = rtreego.NewRect(rtreego.Point{minX, minY}, []float64{1e-9, 1e-9})
	}
	return rect
}
