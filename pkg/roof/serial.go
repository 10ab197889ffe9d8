package roof

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/purlin/pkg/geo"
)

// ErrBadRecord reports a JSON document that does not describe a roof.
var ErrBadRecord = errors.New("roof: malformed record")

// roofTypeTag tags the top-level dictionary of a serialized roof.
const roofTypeTag = "RoofSpecification"

// FaceFactory decodes one tagged geometry record into faces. A record
// may expand to several faces, as a mesh record does.
type FaceFactory func(json.RawMessage) ([]geo.Face, error)

// faceRegistry maps geometry type tags to their decoders.
var faceRegistry = map[string]FaceFactory{}

// RegisterFaceType makes a geometry type tag loadable. Registering an
// already-known tag replaces its decoder.
func RegisterFaceType(tag string, fn FaceFactory) {
	faceRegistry[tag] = fn
}

func init() {
	RegisterFaceType("Face3D", decodeFace3D)
	RegisterFaceType("Mesh3D", decodeMesh3D)
}

// roofRecord is the serialized form of a RoofSpecification.
type roofRecord struct {
	Type     string            `json:"type"`
	Geometry []json.RawMessage `json:"geometry"`
}

// face3DRecord is the serialized form of a single face.
type face3DRecord struct {
	Type     string         `json:"type"`
	Boundary [][3]float64   `json:"boundary"`
	Holes    [][][3]float64 `json:"holes,omitempty"`
}

// mesh3DRecord is the serialized form of an indexed mesh.
type mesh3DRecord struct {
	Type     string       `json:"type"`
	Vertices [][3]float64 `json:"vertices"`
	Faces    [][]int      `json:"faces"`
}

// MarshalJSON implements json.Marshaler. Every face serializes as a
// Face3D record regardless of how it was loaded.
func (rs *RoofSpecification) MarshalJSON() ([]byte, error) {
	recs := make([]json.RawMessage, len(rs.faces))
	for i, f := range rs.faces {
		raw, err := encodeFace3D(f)
		if err != nil {
			return nil, fmt.Errorf("roof: face %d: %w", i, err)
		}
		recs[i] = raw
	}
	return json.Marshal(roofRecord{Type: roofTypeTag, Geometry: recs})
}

// UnmarshalJSON implements json.Unmarshaler, decoding each geometry
// record through the registered factory for its type tag.
func (rs *RoofSpecification) UnmarshalJSON(data []byte) error {
	var rec roofRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	if rec.Type != roofTypeTag {
		return fmt.Errorf("%w: expected a %s dictionary, got type %q", ErrBadRecord, roofTypeTag, rec.Type)
	}
	if len(rec.Geometry) == 0 {
		return ErrEmptyGeometry
	}
	var faces []geo.Face
	for i, raw := range rec.Geometry {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return fmt.Errorf("%w: geometry %d: %v", ErrBadRecord, i, err)
		}
		factory, ok := faceRegistry[head.Type]
		if !ok {
			return fmt.Errorf("%w: geometry %d has unknown type %q", ErrBadRecord, i, head.Type)
		}
		decoded, err := factory(raw)
		if err != nil {
			return fmt.Errorf("roof: geometry %d: %w", i, err)
		}
		faces = append(faces, decoded...)
	}
	if len(faces) == 0 {
		return ErrEmptyGeometry
	}
	rs.faces = faces
	rs.ensureDefaults()
	return nil
}

func encodeFace3D(f geo.Face) (json.RawMessage, error) {
	rec := face3DRecord{Type: "Face3D", Boundary: encodeLoop(f.Boundary)}
	for _, hole := range f.Holes {
		rec.Holes = append(rec.Holes, encodeLoop(hole))
	}
	return json.Marshal(rec)
}

func decodeFace3D(raw json.RawMessage) ([]geo.Face, error) {
	var rec face3DRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	if len(rec.Boundary) < 3 {
		return nil, fmt.Errorf("%w: face boundary has %d vertices, need at least 3", ErrBadRecord, len(rec.Boundary))
	}
	holes := make([][]v3.Vec, len(rec.Holes))
	for i, hole := range rec.Holes {
		holes[i] = decodeLoop(hole)
	}
	f, err := geo.NewFace(decodeLoop(rec.Boundary), holes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	return []geo.Face{f}, nil
}

func decodeMesh3D(raw json.RawMessage) ([]geo.Face, error) {
	var rec mesh3DRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	verts := decodeLoop(rec.Vertices)
	var out []geo.Face
	for i, idxs := range rec.Faces {
		if len(idxs) != 3 && len(idxs) != 4 {
			return nil, fmt.Errorf("%w: mesh face %d has %d vertices, need 3 or 4", ErrBadRecord, i, len(idxs))
		}
		loop := make([]v3.Vec, len(idxs))
		for k, vi := range idxs {
			if vi < 0 || vi >= len(verts) {
				return nil, fmt.Errorf("%w: mesh face %d refers to vertex %d of %d", ErrBadRecord, i, vi, len(verts))
			}
			loop[k] = verts[vi]
		}
		faces, err := facesFromMeshLoop(loop)
		if err != nil {
			return nil, fmt.Errorf("%w: mesh face %d: %v", ErrBadRecord, i, err)
		}
		out = append(out, faces...)
	}
	return out, nil
}

// facesFromMeshLoop turns one mesh face into roof faces. A planar quad
// stays one face; a skew quad splits into two triangles.
func facesFromMeshLoop(loop []v3.Vec) ([]geo.Face, error) {
	if len(loop) == 4 {
		pl, err := geo.PlaneFromPoints(loop)
		if err == nil {
			planar := true
			for _, p := range loop {
				if math.Abs(pl.DistanceTo(p)) > DefaultTolerance {
					planar = false
					break
				}
			}
			if planar {
				f, err := geo.NewFace(loop, nil)
				if err != nil {
					return nil, err
				}
				return []geo.Face{f}, nil
			}
		}
		a, err := geo.NewFace([]v3.Vec{loop[0], loop[1], loop[2]}, nil)
		if err != nil {
			return nil, err
		}
		b, err := geo.NewFace([]v3.Vec{loop[0], loop[2], loop[3]}, nil)
		if err != nil {
			return nil, err
		}
		return []geo.Face{a, b}, nil
	}
	f, err := geo.NewFace(loop, nil)
	if err != nil {
		return nil, err
	}
	return []geo.Face{f}, nil
}

func encodeLoop(loop []v3.Vec) [][3]float64 {
	out := make([][3]float64, len(loop))
	for i, p := range loop {
		out[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return out
}

func decodeLoop(loop [][3]float64) []v3.Vec {
	out := make([]v3.Vec, len(loop))
	for i, p := range loop {
		out[i] = v3.Vec{X: p[0], Y: p[1], Z: p[2]}
	}
	return out
}
