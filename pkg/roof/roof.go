package roof

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/ctessum/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/purlin/pkg/geo"
	"github.com/chazu/purlin/pkg/kernel"
	"github.com/chazu/purlin/pkg/kernel/planar"
)

// Defaults substituted when an operation receives a zero value.
const (
	// DefaultTolerance is the linear tolerance in model units.
	DefaultTolerance = 0.01
	// DefaultAngleTolerance is the angular tolerance in radians (one degree).
	DefaultAngleTolerance = math.Pi / 180
	// DefaultGapDistance is the search distance for FindGaps.
	DefaultGapDistance = 0.1
)

// Sentinel errors returned by input validation.
var (
	// ErrEmptyGeometry reports a roof with no faces.
	ErrEmptyGeometry = errors.New("roof: geometry must contain at least one face")
	// ErrIndexRange reports a face index outside the store.
	ErrIndexRange = errors.New("roof: face index out of range")
)

// Parent identifies the story containing a roof. The reference is
// non-owning: a RoofSpecification is destructible independent of it.
type Parent interface {
	Identifier() string
}

// RoofSpecification is an ordered, index-addressed collection of
// planar roof faces. Indices are stable for the duration of one call;
// operations that change cardinality (splits, union/join, subtract)
// rebuild the sequence and invalidate previously-held indices. The
// value is mutated in place with no internal locking; callers
// serialize mutation.
type RoofSpecification struct {
	faces  []geo.Face
	parent Parent
	kern   kernel.Kernel
	log    *slog.Logger
}

// New returns a roof over the given faces using the default planar
// kernel and logger. The faces are deep-copied.
func New(faces []geo.Face) (*RoofSpecification, error) {
	if len(faces) == 0 {
		return nil, ErrEmptyGeometry
	}
	rs := &RoofSpecification{faces: copyFaces(faces)}
	rs.ensureDefaults()
	return rs, nil
}

// SetKernel replaces the geometry kernel. A nil kernel restores the
// default planar backend.
func (rs *RoofSpecification) SetKernel(k kernel.Kernel) {
	rs.kern = k
	rs.ensureDefaults()
}

// SetLogger replaces the logger. A nil logger restores slog.Default.
func (rs *RoofSpecification) SetLogger(l *slog.Logger) {
	rs.log = l
	rs.ensureDefaults()
}

// Len returns the number of faces.
func (rs *RoofSpecification) Len() int {
	return len(rs.faces)
}

// Face returns a copy of the face at index i. Like a slice access, an
// out-of-range index panics.
func (rs *RoofSpecification) Face(i int) geo.Face {
	return rs.faces[i].Copy()
}

// Geometry returns a deep copy of the ordered face sequence.
func (rs *RoofSpecification) Geometry() []geo.Face {
	return copyFaces(rs.faces)
}

// BoundaryGeometry2D returns every face's plan boundary polygon,
// ignoring holes.
func (rs *RoofSpecification) BoundaryGeometry2D() []geom.Polygon {
	out := make([]geom.Polygon, len(rs.faces))
	for i, f := range rs.faces {
		out[i] = geom.Polygon{f.Plan()[0]}
	}
	return out
}

// Planes returns the plane of every face in order.
func (rs *RoofSpecification) Planes() []geo.Plane {
	out := make([]geo.Plane, len(rs.faces))
	for i, f := range rs.faces {
		out[i] = f.Plane
	}
	return out
}

// Min returns the componentwise minimum over all face vertices.
func (rs *RoofSpecification) Min() v3.Vec {
	mn := rs.faces[0].Min()
	for _, f := range rs.faces[1:] {
		m := f.Min()
		mn.X = math.Min(mn.X, m.X)
		mn.Y = math.Min(mn.Y, m.Y)
		mn.Z = math.Min(mn.Z, m.Z)
	}
	return mn
}

// Max returns the componentwise maximum over all face vertices.
func (rs *RoofSpecification) Max() v3.Vec {
	mx := rs.faces[0].Max()
	for _, f := range rs.faces[1:] {
		m := f.Max()
		mx.X = math.Max(mx.X, m.X)
		mx.Y = math.Max(mx.Y, m.Y)
		mx.Z = math.Max(mx.Z, m.Z)
	}
	return mx
}

// MinHeight returns the lowest vertex elevation of the roof.
func (rs *RoofSpecification) MinHeight() float64 {
	return rs.Min().Z
}

// MaxHeight returns the highest vertex elevation of the roof.
func (rs *RoofSpecification) MaxHeight() float64 {
	return rs.Max().Z
}

// CenterHeights returns each face's bounding-box center elevation.
func (rs *RoofSpecification) CenterHeights() []float64 {
	out := make([]float64, len(rs.faces))
	for i, f := range rs.faces {
		out[i] = (f.Min().Z + f.Max().Z) / 2
	}
	return out
}

// Azimuths returns each face's compass direction in degrees clockwise
// from north. Flat faces report 0.
func (rs *RoofSpecification) Azimuths() []float64 {
	out := make([]float64, len(rs.faces))
	for i, f := range rs.faces {
		out[i] = f.Azimuth()
	}
	return out
}

// Tilts returns each face's angle from the horizontal in degrees.
func (rs *RoofSpecification) Tilts() []float64 {
	out := make([]float64, len(rs.faces))
	for i, f := range rs.faces {
		out[i] = f.Tilt()
	}
	return out
}

// Move translates every face by v.
func (rs *RoofSpecification) Move(v v3.Vec) {
	for i, f := range rs.faces {
		rs.faces[i] = f.Move(v)
	}
}

// RotateXY rotates every face counterclockwise around the vertical
// axis through origin by the given angle in degrees.
func (rs *RoofSpecification) RotateXY(degrees float64, origin v3.Vec) {
	for i, f := range rs.faces {
		rs.faces[i] = f.RotateXY(degrees, origin)
	}
}

// Reflect mirrors every face across the plane m.
func (rs *RoofSpecification) Reflect(m geo.Plane) {
	for i, f := range rs.faces {
		rs.faces[i] = f.Reflect(m)
	}
}

// Scale scales every face by factor from origin.
func (rs *RoofSpecification) Scale(factor float64, origin v3.Vec) {
	for i, f := range rs.faces {
		rs.faces[i] = f.Scale(factor, origin)
	}
}

// Copy returns a deep copy sharing the parent, kernel, and logger.
func (rs *RoofSpecification) Copy() *RoofSpecification {
	return &RoofSpecification{
		faces:  copyFaces(rs.faces),
		parent: rs.parent,
		kern:   rs.kern,
		log:    rs.log,
	}
}

// Parent returns the containing story, or nil.
func (rs *RoofSpecification) Parent() Parent {
	return rs.parent
}

// SetParent records the containing story. Nil clears it.
func (rs *RoofSpecification) SetParent(p Parent) {
	rs.parent = p
}

// HasParent reports whether a containing story is set.
func (rs *RoofSpecification) HasParent() bool {
	return rs.parent != nil
}

// ensureDefaults installs the default kernel and logger when unset, so
// zero-value and deserialized roofs behave like constructed ones.
func (rs *RoofSpecification) ensureDefaults() {
	if rs.kern == nil {
		rs.kern = planar.New()
	}
	if rs.log == nil {
		rs.log = slog.Default()
	}
}

// selection expands an index list, nil meaning every face, and
// validates that each index is in range.
func (rs *RoofSpecification) selection(selected []int) ([]int, error) {
	if selected == nil {
		all := make([]int, len(rs.faces))
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	for _, i := range selected {
		if i < 0 || i >= len(rs.faces) {
			return nil, fmt.Errorf("%w: %d with %d faces", ErrIndexRange, i, len(rs.faces))
		}
	}
	return selected, nil
}

// orDefault substitutes def for a zero or negative tolerance.
func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

func copyFaces(faces []geo.Face) []geo.Face {
	out := make([]geo.Face, len(faces))
	for i, f := range faces {
		out[i] = f.Copy()
	}
	return out
}
