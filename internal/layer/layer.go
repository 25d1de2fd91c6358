// Package layer holds the thematic overlay groups and their rendered elements.
package layer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrAlreadyLoaded is returned when a load is started on a layer that was already populated.
var ErrAlreadyLoaded = errors.New("layer already loaded")

// Kind is the rendered element type.
type Kind string

// Element kinds.
const (
	KindMarker Kind = "marker"
	KindShape  Kind = "shape"
)

// State is the load state of a thematic layer.
type State string

// Load states.
const (
	StatePending State = "pending"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateFailed  State = "failed"
)

// Style is the vector style applied to shapes.
type Style struct {
	Color       string  `json:"color,omitempty" yaml:"color,omitempty" msgpack:"color,omitempty"`
	Weight      float64 `json:"weight,omitempty" yaml:"weight,omitempty" msgpack:"weight,omitempty"`
	Opacity     float64 `json:"opacity,omitempty" yaml:"opacity,omitempty" msgpack:"opacity,omitempty"`
	FillOpacity float64 `json:"fillOpacity,omitempty" yaml:"fill_opacity,omitempty" msgpack:"fillOpacity,omitempty"`
}

// Icon is a custom marker icon.
type Icon struct {
	URL         string `json:"iconUrl" yaml:"url" msgpack:"iconUrl"`
	Anchor      [2]int `json:"iconAnchor" yaml:"anchor" msgpack:"iconAnchor"`
	PopupAnchor [2]int `json:"popupAnchor" yaml:"popup_anchor" msgpack:"popupAnchor"`
}

// Element is one rendered map element derived from exactly one feature.
type Element struct {
	Geometry  orb.Geometry `json:"-" yaml:"-" msgpack:"-"`
	Style     *Style       `json:"style,omitempty" yaml:"style,omitempty" msgpack:"style,omitempty"`
	Icon      *Icon        `json:"icon,omitempty" yaml:"icon,omitempty" msgpack:"icon,omitempty"`
	FeatureID string       `json:"id,omitempty" yaml:"id,omitempty" msgpack:"id,omitempty"`
	Kind      Kind         `json:"kind" yaml:"kind" msgpack:"kind"`
	Popup     string       `json:"popup" yaml:"popup" msgpack:"popup"`
}

// Status is a snapshot of a layer's load state.
type Status struct {
	LoadedAt *time.Time `json:"loaded_at,omitempty" yaml:"loaded_at,omitempty"`
	Name     string     `json:"name" yaml:"name"`
	Title    string     `json:"title" yaml:"title"`
	State    State      `json:"state" yaml:"state"`
	Error    string     `json:"error,omitempty" yaml:"error,omitempty"`
	Count    int        `json:"count" yaml:"count"`
	Skipped  int        `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Visible  bool       `json:"visible" yaml:"visible"`
}

// ThematicLayer is a named group of rendered elements.
// It is created empty and populated at most once.
type ThematicLayer struct {
	loadedAt time.Time
	err      error
	name     string
	title    string
	state    State
	elements []Element
	skipped  int
	mu       sync.RWMutex
	visible  bool
}

// New creates an empty pending layer.
func New(name, title string, visible bool) *ThematicLayer {
	return &ThematicLayer{
		name:    name,
		title:   title,
		visible: visible,
		state:   StatePending,
	}
}

// Name returns the layer identity.
func (l *ThematicLayer) Name() string { return l.name }

// Title returns the display title.
func (l *ThematicLayer) Title() string { return l.title }

// Visible reports whether the layer is shown by default.
func (l *ThematicLayer) Visible() bool { return l.visible }

// Begin marks the layer as loading.
func (l *ThematicLayer) Begin() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == StateLoading || l.state == StateLoaded {
		return fmt.Errorf("%w: %s", ErrAlreadyLoaded, l.name)
	}

	l.state = StateLoading
	l.err = nil
	return nil
}

// Commit appends the elements and marks the layer as loaded.
func (l *ThematicLayer) Commit(elements []Element, skipped int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.elements = append(l.elements, elements...)
	l.skipped = skipped
	l.state = StateLoaded
	l.loadedAt = time.Now()
}

// Fail marks the layer as failed, leaving it empty.
func (l *ThematicLayer) Fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state = StateFailed
	l.err = err
}

// State returns the current load state and the failure, if any.
func (l *ThematicLayer) State() (State, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.state, l.err
}

// Len returns the number of elements.
func (l *ThematicLayer) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.elements)
}

// Elements returns a copy of the rendered elements.
func (l *ThematicLayer) Elements() []Element {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Element, len(l.elements))
	copy(out, l.elements)
	return out
}

// Status returns a snapshot of the layer state.
func (l *ThematicLayer) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()

	st := Status{
		Name:    l.name,
		Title:   l.title,
		Visible: l.visible,
		State:   l.state,
		Count:   len(l.elements),
		Skipped: l.skipped,
	}
	if l.err != nil {
		st.Error = l.err.Error()
	}
	if l.state == StateLoaded {
		t := l.loadedAt
		st.LoadedAt = &t
	}

	return st
}

// FeatureCollection renders the layer as GeoJSON. Each feature carries
// the element kind, popup, style and icon in its properties.
func (l *ThematicLayer) FeatureCollection() *geojson.FeatureCollection {
	elements := l.Elements()

	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, 0, len(elements))

	for _, e := range elements {
		f := geojson.NewFeature(e.Geometry)
		if e.FeatureID != "" {
			f.ID = e.FeatureID
		}
		f.Properties["kind"] = e.Kind
		f.Properties["popup"] = e.Popup
		if e.Style != nil {
			f.Properties["style"] = e.Style
		}
		if e.Icon != nil {
			f.Properties["icon"] = e.Icon
		}
		fc.Append(f)
	}

	return fc
}

// WireElement is the serialized form of an element with its geometry
// as GeoJSON type and coordinates.
type WireElement struct {
	Coordinates orb.Geometry `json:"coordinates" yaml:"coordinates" msgpack:"coordinates"`
	Style       *Style       `json:"style,omitempty" yaml:"style,omitempty" msgpack:"style,omitempty"`
	Icon        *Icon        `json:"icon,omitempty" yaml:"icon,omitempty" msgpack:"icon,omitempty"`
	ID          string       `json:"id,omitempty" yaml:"id,omitempty" msgpack:"id,omitempty"`
	Kind        Kind         `json:"kind" yaml:"kind" msgpack:"kind"`
	Type        string       `json:"type" yaml:"type" msgpack:"type"`
	Popup       string       `json:"popup" yaml:"popup" msgpack:"popup"`
}

// Wire returns the elements in their serialized form.
func (l *ThematicLayer) Wire() []WireElement {
	elements := l.Elements()

	out := make([]WireElement, 0, len(elements))
	for _, e := range elements {
		out = append(out, WireElement{
			ID:          e.FeatureID,
			Kind:        e.Kind,
			Type:        e.Geometry.GeoJSONType(),
			Coordinates: e.Geometry,
			Style:       e.Style,
			Icon:        e.Icon,
			Popup:       e.Popup,
		})
	}
	return out
}
