package roof_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/ctessum/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/purlin/pkg/geo"
	"github.com/chazu/purlin/pkg/roof"
)

func TestJSONRoundTrip(t *testing.T) {
	faces := gableFaces(t)
	holed, err := geo.NewFace(
		[]v3.Vec{{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}, {X: 10, Y: 10, Z: 0}, {X: 0, Y: 10, Z: 0}},
		[][]v3.Vec{{{X: 4, Y: 4, Z: 0}, {X: 6, Y: 4, Z: 0}, {X: 6, Y: 6, Z: 0}, {X: 4, Y: 6, Z: 0}}})
	require.NoError(t, err)
	rs := newRoof(t, faces[0], faces[1], holed)

	data, err := json.Marshal(rs)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"RoofSpecification"`)

	var back roof.RoofSpecification
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, rs.Len(), back.Len())
	for i := 0; i < rs.Len(); i++ {
		want, got := rs.Face(i), back.Face(i)
		require.Len(t, got.Boundary, len(want.Boundary), "face %d", i)
		for vi := range want.Boundary {
			assertVec(t, want.Boundary[vi], got.Boundary[vi], 1e-12)
		}
	}
	require.Len(t, back.Face(2).Holes, 1)
	assert.InDelta(t, 96.0, back.Face(2).Area(), 1e-9)
}

func TestUnmarshalRejectsBadRecords(t *testing.T) {
	docs := map[string]string{
		"wrong root tag": `{"type":"Building","geometry":[{"type":"Face3D","boundary":[[0,0,0],[1,0,0],[1,1,0]]}]}`,
		"unknown tag":    `{"type":"RoofSpecification","geometry":[{"type":"Blob"}]}`,
		"short boundary": `{"type":"RoofSpecification","geometry":[{"type":"Face3D","boundary":[[0,0,0],[1,0,0]]}]}`,
		"truncated":      `{"type":`,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			var rs roof.RoofSpecification
			assert.ErrorIs(t, json.Unmarshal([]byte(doc), &rs), roof.ErrBadRecord)
		})
	}
}

func TestUnmarshalRejectsEmptyGeometry(t *testing.T) {
	var rs roof.RoofSpecification
	err := json.Unmarshal([]byte(`{"type":"RoofSpecification","geometry":[]}`), &rs)
	assert.ErrorIs(t, err, roof.ErrEmptyGeometry)
}

func TestUnmarshalMesh3D(t *testing.T) {
	// The first mesh quad is planar and loads as one face; the second
	// is folded along its diagonal and splits into two triangles.
	doc := `{"type":"RoofSpecification","geometry":[
		{"type":"Mesh3D","vertices":[[0,0,0],[10,0,0],[10,5,5],[0,5,5]],"faces":[[0,1,2,3]]},
		{"type":"Mesh3D","vertices":[[0,0,0],[10,0,0],[10,10,5],[0,10,0]],"faces":[[0,1,2,3]]}]}`

	var rs roof.RoofSpecification
	require.NoError(t, json.Unmarshal([]byte(doc), &rs))
	require.Equal(t, 3, rs.Len())
	assert.InDelta(t, 10*math.Sqrt(50), rs.Face(0).Area(), 1e-6)

	// Saving always writes Face3D records, whatever was loaded.
	data, err := json.Marshal(&rs)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Mesh3D")
	assert.Contains(t, string(data), "Face3D")
}

func TestUnmarshalMeshRejectsBadIndices(t *testing.T) {
	docs := map[string]string{
		"out of range": `{"type":"RoofSpecification","geometry":[{"type":"Mesh3D","vertices":[[0,0,0],[1,0,0],[1,1,0]],"faces":[[0,1,5]]}]}`,
		"wrong arity":  `{"type":"RoofSpecification","geometry":[{"type":"Mesh3D","vertices":[[0,0,0],[1,0,0],[1,1,0]],"faces":[[0,1]]}]}`,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			var rs roof.RoofSpecification
			assert.ErrorIs(t, json.Unmarshal([]byte(doc), &rs), roof.ErrBadRecord)
		})
	}
}

func TestRegisterFaceType(t *testing.T) {
	roof.RegisterFaceType("UnitTri", func(json.RawMessage) ([]geo.Face, error) {
		f, err := geo.NewFace([]v3.Vec{{}, {X: 1}, {X: 1, Y: 1}}, nil)
		if err != nil {
			return nil, err
		}
		return []geo.Face{f}, nil
	})

	var rs roof.RoofSpecification
	doc := `{"type":"RoofSpecification","geometry":[{"type":"UnitTri"}]}`
	require.NoError(t, json.Unmarshal([]byte(doc), &rs))
	require.Equal(t, 1, rs.Len())
	assert.InDelta(t, 0.5, rs.Face(0).Area(), 1e-9)
}

func TestUnmarshalThenSplit(t *testing.T) {
	doc := `{
		"type": "RoofSpecification",
		"geometry": [
			{
				"type": "Face3D",
				"boundary": [
					[7.0619315174376345, -3.4035939785815463, 2.2000000000000837],
					[13.061931517437632, -3.4035939785815463, 2.2000000000000837],
					[13.061931517437632, -15.201593978581808, 2.2000000000000837],
					[7.0619315174376345, -15.201593978581808, 2.2000000000000837]
				]
			}
		]
	}`

	var rs roof.RoofSpecification
	require.NoError(t, json.Unmarshal([]byte(doc), &rs))
	require.Equal(t, 1, rs.Len())
	before := sumAreas(rs.Geometry())

	lines := []geo.Segment{{
		A: geom.Point{X: 16.26167736358605, Y: -11.045644087390255},
		B: geom.Point{X: 5.753788558176589, Y: -7.5595438697731},
	}}
	require.NoError(t, rs.SplitWithLines(lines, nil, 0))

	assert.Equal(t, 2, rs.Len())
	assert.InDelta(t, before, sumAreas(rs.Geometry()), 1e-3)
}
