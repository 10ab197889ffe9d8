package roof_test

import (
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/purlin/pkg/roof"
)

// roomStub satisfies roof.Room in tests.
type roomStub struct {
	id       string
	exposed  bool
	boundary geom.Polygon
	height   float64
	plenum   bool
}

func (r roomStub) Identifier() string               { return r.id }
func (r roomStub) IsTopExposed() bool               { return r.exposed }
func (r roomStub) FloorBoundary() geom.Polygon      { return r.boundary }
func (r roomStub) RequiredClearanceHeight() float64 { return r.height }
func (r roomStub) HasCeilingPlenum() bool           { return r.plenum }

func footprint(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	}}
}

func TestCheckRoofsAboveRooms(t *testing.T) {
	rs := gabledRoof(t)

	// All footprints sit under the south slope, where the roof rises
	// from z=1 at y=1 to z=4 at y=4.
	under := footprint(1, 1, 9, 4)
	rooms := []roof.Room{
		roomStub{id: "low", exposed: true, boundary: under, height: 3.0},
		roomStub{id: "ok", exposed: true, boundary: under, height: 0.5},
		roomStub{id: "outside", exposed: true, boundary: footprint(20, 20, 25, 25), height: 3.0},
		roomStub{id: "basement", exposed: false, boundary: under, height: 99},
		roomStub{id: "plenum", exposed: true, boundary: under, height: 3.0, plenum: true},
	}

	diags, err := rs.CheckRoofsAboveRooms(rooms, tol)
	require.NoError(t, err)
	require.Len(t, diags, 3)

	byRoom := make(map[string]roof.Diagnostic, len(diags))
	for _, d := range diags {
		byRoom[d.RoomID] = d
	}

	low := byRoom["low"]
	assert.Equal(t, roof.SeverityError, low.Severity)
	assert.Equal(t, `roof height 1.000 is at or below the required clearance 3.000 for room "low"`, low.Message)

	outside := byRoom["outside"]
	assert.Equal(t, roof.SeverityWarning, outside.Severity)
	assert.Contains(t, outside.Message, "no roof face covers")

	plenum := byRoom["plenum"]
	assert.Equal(t, roof.SeverityError, plenum.Severity)
	assert.Contains(t, plenum.Message, "(including ceiling plenum)")
}

func TestCheckResolvesOverlapsFirst(t *testing.T) {
	// The low face is fully contained in the main sheet's plan, so
	// resolution drops it. Against the raw faces the room would fail
	// at z=2; against the resolved roof it clears at z=5.
	rs := newRoof(t,
		flatRect(t, 0, 0, 10, 10, 5),
		flatRect(t, 2, 2, 6, 6, 2))

	rooms := []roof.Room{
		roomStub{id: "attic", exposed: true, boundary: footprint(3, 3, 5, 5), height: 3.0},
	}

	diags, err := rs.CheckRoofsAboveRooms(rooms, tol)
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", roof.SeverityInfo.String())
	assert.Equal(t, "warning", roof.SeverityWarning.String())
	assert.Equal(t, "error", roof.SeverityError.String())
	assert.Equal(t, "Severity(9)", roof.Severity(9).String())
}
