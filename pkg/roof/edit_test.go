package roof_test

import (
	"testing"

	"github.com/ctessum/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/purlin/pkg/geo"
	"github.com/chazu/purlin/pkg/roof"
)

func TestAlignPullsVerticesToLine(t *testing.T) {
	faces := gableFaces(t)
	rs := newRoof(t, faces...)

	// A vertical line just east of the roof: only the x=10 eave and
	// ridge vertices are within reach, and the east edges of both
	// slopes move out to x=12.
	line := geo.Segment{A: geom.Point{X: 12, Y: 10}, B: geom.Point{X: 12, Y: 0}}
	require.NoError(t, rs.Align(line, 3.0, tol))

	south := rs.Face(0)
	assertVec(t, v3.Vec{X: 0, Y: 0, Z: 0}, south.Boundary[0], 1e-6)
	assertVec(t, v3.Vec{X: 12, Y: 0, Z: 0}, south.Boundary[1], 1e-6)
	assertVec(t, v3.Vec{X: 12, Y: 5, Z: 5}, south.Boundary[2], 1e-6)
	assertVec(t, v3.Vec{X: 0, Y: 5, Z: 5}, south.Boundary[3], 1e-6)

	north := rs.Face(1)
	assertVec(t, v3.Vec{X: 12, Y: 5, Z: 5}, north.Boundary[1], 1e-6)
	assertVec(t, v3.Vec{X: 12, Y: 10, Z: 0}, north.Boundary[2], 1e-6)
}

func TestAlignValidatesArguments(t *testing.T) {
	rs := gabledRoof(t)
	assert.Error(t, rs.Align(nil, 1.0, tol))
	assert.Error(t, rs.Align(geo.Segment{B: geom.Point{X: 1}}, 0, tol))
}

func TestPullToSegmentsReconstructsSeams(t *testing.T) {
	faces := gableFaces(t)
	rs := newRoof(t, faces...)

	// A slanted segment clipping the east side of the gable. Pulled
	// runs get their entry and exit edges re-intersected, so the eave
	// stays on y=0 and the ridge stays on y=5.
	segs := []geo.Segment{{A: geom.Point{X: 10, Y: 10}, B: geom.Point{X: 14, Y: 0}}}
	require.NoError(t, rs.PullToSegments(segs, 4.5, false, nil, tol))

	south := rs.Face(0)
	require.Len(t, south.Boundary, 4)
	assertVec(t, v3.Vec{X: 0, Y: 0, Z: 0}, south.Boundary[0], 1e-6)
	assertVec(t, v3.Vec{X: 14, Y: 0, Z: 0}, south.Boundary[1], 1e-6)
	assertVec(t, v3.Vec{X: 12, Y: 5, Z: 5}, south.Boundary[2], 1e-6)
	assertVec(t, v3.Vec{X: 0, Y: 5, Z: 5}, south.Boundary[3], 1e-6)

	// The north slope's far eave corner sits on the segment at zero
	// distance; reconstruction walks it back to where it started.
	north := rs.Face(1)
	require.Len(t, north.Boundary, 4)
	assertVec(t, v3.Vec{X: 12, Y: 5, Z: 5}, north.Boundary[1], 1e-6)
	assertVec(t, v3.Vec{X: 10, Y: 10, Z: 0}, north.Boundary[2], 1e-6)
}

func TestPullToSegmentsRespectsSelection(t *testing.T) {
	rs := gabledRoof(t)

	segs := []geo.Segment{{A: geom.Point{X: 10, Y: 10}, B: geom.Point{X: 14, Y: 0}}}
	require.NoError(t, rs.PullToSegments(segs, 4.5, false, []int{0, 1}, tol))

	// The apron's (10, 0) corner is in reach but was not selected.
	apron := rs.Face(2)
	assert.Equal(t, v3.Vec{X: 10, Y: 0, Z: 0}, apron.Boundary[1])
}

func TestPullToSegmentsSnapsToEndpoints(t *testing.T) {
	segs := []geo.Segment{{A: geom.Point{X: 12, Y: 9}, B: geom.Point{X: 12, Y: 20}}}

	rs := newRoof(t, flatRect(t, 0, 0, 10, 10, 0))
	require.NoError(t, rs.PullToSegments(segs, 3.0, false, nil, tol))
	assertVec(t, v3.Vec{X: 12, Y: 10, Z: 0}, rs.Face(0).Boundary[2], 1e-6)

	rs = newRoof(t, flatRect(t, 0, 0, 10, 10, 0))
	require.NoError(t, rs.PullToSegments(segs, 3.0, true, nil, tol))
	assertVec(t, v3.Vec{X: 12, Y: 9, Z: 0}, rs.Face(0).Boundary[2], 1e-6)
}

func TestPullToSegmentsValidatesArguments(t *testing.T) {
	rs := gabledRoof(t)
	segs := []geo.Segment{{B: geom.Point{X: 1}}}

	assert.Error(t, rs.PullToSegments(nil, 1.0, false, nil, tol))
	assert.Error(t, rs.PullToSegments(segs, 0, false, nil, tol))
	assert.ErrorIs(t, rs.PullToSegments(segs, 1.0, false, []int{3}, tol), roof.ErrIndexRange)
}

func TestSnapToGridTranslatesRidgedFaces(t *testing.T) {
	faces := gableFaces(t)
	rs := newRoof(t, faces...)
	rs.Move(v3.Vec{X: 0.3})

	// Both slopes share one axis-aligned ridge, so each snaps by rigid
	// translation and the ridge survives intact.
	require.NoError(t, rs.SnapToGrid(1.0, nil, tol))

	for fi, want := range faces {
		got := rs.Face(fi)
		require.Len(t, got.Boundary, len(want.Boundary))
		for vi := range want.Boundary {
			assertVec(t, want.Boundary[vi], got.Boundary[vi], 1e-9)
		}
	}
}

func TestSnapToGridRoundsFreeFaces(t *testing.T) {
	rs := newRoof(t, flatRect(t, 0.3, 0.4, 9.7, 9.6, 0))
	require.NoError(t, rs.SnapToGrid(1.0, nil, tol))

	f := rs.Face(0)
	assertVec(t, v3.Vec{X: 0, Y: 0, Z: 0}, f.Boundary[0], 1e-9)
	assertVec(t, v3.Vec{X: 10, Y: 0, Z: 0}, f.Boundary[1], 1e-9)
	assertVec(t, v3.Vec{X: 10, Y: 10, Z: 0}, f.Boundary[2], 1e-9)
	assertVec(t, v3.Vec{X: 0, Y: 10, Z: 0}, f.Boundary[3], 1e-9)
}

func TestSnapToGridValidatesIncrement(t *testing.T) {
	rs := gabledRoof(t)
	assert.Error(t, rs.SnapToGrid(0, nil, tol))
	assert.Error(t, rs.SnapToGrid(-1, nil, tol))
	assert.ErrorIs(t, rs.SnapToGrid(1.0, []int{5}, tol), roof.ErrIndexRange)
}
