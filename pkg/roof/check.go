package roof

import (
	"fmt"

	"github.com/ctessum/geom"

	"github.com/chazu/purlin/pkg/geo"
)

// Severity classifies a diagnostic.
type Severity int

const (
	// SeverityInfo marks advisory output.
	SeverityInfo Severity = iota
	// SeverityWarning marks a suspicious condition worth reviewing.
	SeverityWarning
	// SeverityError marks a condition that violates a hard
	// requirement.
	SeverityError
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Diagnostic is one finding from a roof check.
type Diagnostic struct {
	// Severity classifies the finding.
	Severity Severity
	// Message describes the finding in plain language.
	Message string
	// RoomID identifies the room the finding concerns.
	RoomID string
}

// Room exposes the floor-plan information the clearance check needs
// from a building's rooms.
type Room interface {
	// Identifier returns the room's unique name.
	Identifier() string
	// IsTopExposed reports whether the room's ceiling faces the roof
	// rather than another storey.
	IsTopExposed() bool
	// FloorBoundary returns the room's footprint in plan, boundary
	// ring first.
	FloorBoundary() geom.Polygon
	// RequiredClearanceHeight returns the minimum roof height over
	// the room's footprint.
	RequiredClearanceHeight() float64
	// HasCeilingPlenum reports whether the clearance already includes
	// a service space above the ceiling.
	HasCeilingPlenum() bool
}

// CheckRoofsAboveRooms verifies that the resolved roof clears every
// top-exposed room's required height. The roof is sampled at each
// room footprint's centroid and boundary vertices; a room with no
// covering face gets a warning, and a covering face at or below the
// required height gets an error.
func (rs *RoofSpecification) CheckRoofsAboveRooms(rooms []Room, tol float64) ([]Diagnostic, error) {
	tol = orDefault(tol, DefaultTolerance)
	resolved, err := rs.ResolvedGeometry(tol)
	if err != nil {
		return nil, err
	}
	var out []Diagnostic
	for _, room := range rooms {
		if !room.IsTopExposed() {
			continue
		}
		boundary := room.FloorBoundary()[0]
		samples := make([]geom.Point, 0, len(boundary)+1)
		samples = append(samples, geo.RingCentroid(boundary))
		samples = append(samples, boundary...)
		lowest := 0.0
		covered := false
		for _, sample := range samples {
			for _, f := range resolved {
				if !geo.PointInRing(sample, f.Plan()[0]) {
					continue
				}
				z, err := f.Plane.Z(sample.X, sample.Y)
				if err != nil {
					continue // vertical face, no height at this point
				}
				if !covered || z < lowest {
					lowest = z
				}
				covered = true
			}
		}
		if !covered {
			out = append(out, Diagnostic{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("room %q is exposed to the roof but no roof face covers its footprint", room.Identifier()),
				RoomID:   room.Identifier(),
			})
			continue
		}
		required := room.RequiredClearanceHeight()
		if lowest <= required+tol {
			msg := fmt.Sprintf("roof height %.3f is at or below the required clearance %.3f for room %q",
				lowest, required, room.Identifier())
			if room.HasCeilingPlenum() {
				msg += " (including ceiling plenum)"
			}
			out = append(out, Diagnostic{
				Severity: SeverityError,
				Message:  msg,
				RoomID:   room.Identifier(),
			})
		}
	}
	return out, nil
}
