package layer

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerLifecycle(t *testing.T) {
	l := New("zones", "Fußgängerzonen", false)

	st := l.Status()
	assert.Equal(t, StatePending, st.State)
	assert.Equal(t, 0, st.Count)
	assert.Nil(t, st.LoadedAt)

	require.NoError(t, l.Begin())
	state, _ := l.State()
	assert.Equal(t, StateLoading, state)
	assert.ErrorIs(t, l.Begin(), ErrAlreadyLoaded)

	l.Commit([]Element{
		{Kind: KindShape, Geometry: orb.Polygon{}, Popup: "a"},
		{Kind: KindShape, Geometry: orb.Polygon{}, Popup: "b"},
	}, 1)

	st = l.Status()
	assert.Equal(t, StateLoaded, st.State)
	assert.Equal(t, 2, st.Count)
	assert.Equal(t, 1, st.Skipped)
	assert.NotNil(t, st.LoadedAt)
	assert.Equal(t, 2, l.Len())
	assert.ErrorIs(t, l.Begin(), ErrAlreadyLoaded, "layers are populated once")
}

func TestLayerFailure(t *testing.T) {
	l := New("hotels", "Hotels", false)
	require.NoError(t, l.Begin())

	cause := errors.New("connection refused")
	l.Fail(cause)

	state, err := l.State()
	assert.Equal(t, StateFailed, state)
	assert.ErrorIs(t, err, cause)

	st := l.Status()
	assert.Equal(t, "connection refused", st.Error)
	assert.Equal(t, 0, st.Count)
	assert.Empty(t, l.Elements())
}

func TestElementsReturnsCopy(t *testing.T) {
	l := New("stops", "Stops", false)
	require.NoError(t, l.Begin())
	l.Commit([]Element{{Kind: KindMarker, Geometry: orb.Point{1, 2}, Popup: "x"}}, 0)

	els := l.Elements()
	els[0].Popup = "changed"
	assert.Equal(t, "x", l.Elements()[0].Popup)
}

func TestFeatureCollection(t *testing.T) {
	l := New("sights", "Sehenswürdigkeiten", true)
	require.NoError(t, l.Begin())
	l.Commit([]Element{
		{
			Kind:      KindMarker,
			Geometry:  orb.Point{16.37, 48.2},
			FeatureID: "SEHENSWUERDIGOGD.1",
			Icon:      &Icon{URL: "/icons/photo.svg", Anchor: [2]int{16, 37}, PopupAnchor: [2]int{0, -37}},
			Popup:     "<h4>Stephansdom</h4>",
		},
		{
			Kind:     KindShape,
			Geometry: orb.LineString{{16.3, 48.2}, {16.4, 48.2}},
			Style:    &Style{Color: "#FF4136"},
			Popup:    "<h4>Red Line</h4>",
		},
	}, 0)

	fc := l.FeatureCollection()
	require.Len(t, fc.Features, 2)

	marker := fc.Features[0]
	assert.Equal(t, "SEHENSWUERDIGOGD.1", marker.ID)
	assert.Equal(t, KindMarker, marker.Properties["kind"])
	assert.Equal(t, "<h4>Stephansdom</h4>", marker.Properties["popup"])
	assert.NotNil(t, marker.Properties["icon"])
	assert.NotContains(t, marker.Properties, "style")

	shape := fc.Features[1]
	assert.Nil(t, shape.ID)
	assert.Equal(t, &Style{Color: "#FF4136"}, shape.Properties["style"])
	assert.NotContains(t, shape.Properties, "icon")

	data, err := fc.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"color":"#FF4136"`)
	assert.Contains(t, string(data), `"iconAnchor":[16,37]`)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(New("sights", "Sights", true)))
	require.NoError(t, r.Add(New("lines", "Lines", false)))
	assert.Error(t, r.Add(New("sights", "Again", false)))

	l, ok := r.Get("lines")
	require.True(t, ok)
	assert.Equal(t, "Lines", l.Title())

	_, ok = r.Get("hotels")
	assert.False(t, ok)

	statuses := r.Statuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, "sights", statuses[0].Name)
	assert.True(t, statuses[0].Visible)
	assert.Equal(t, "lines", statuses[1].Name)
}

func TestWireKeepsGeometry(t *testing.T) {
	l := New("sights", "Sights", true)
	require.NoError(t, l.Begin())
	l.Commit([]Element{
		{Kind: KindMarker, FeatureID: "S.1", Geometry: orb.Point{16.373118, 48.208493}, Popup: "a"},
		{Kind: KindShape, Geometry: orb.LineString{{16.1, 48.1}, {16.2, 48.2}}, Style: &Style{Color: "red"}},
	}, 0)

	wire := l.Wire()
	require.Len(t, wire, 2)
	assert.Equal(t, "S.1", wire[0].ID)
	assert.Equal(t, "Point", wire[0].Type)
	assert.Equal(t, "LineString", wire[1].Type)

	data, err := json.Marshal(wire)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []any{16.373118, 48.208493}, decoded[0]["coordinates"])
	assert.Equal(t, []any{[]any{16.1, 48.1}, []any{16.2, 48.2}}, decoded[1]["coordinates"])
}
