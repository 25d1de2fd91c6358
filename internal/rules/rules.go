// Package rules defines how features of each thematic layer are presented:
// shape style, marker icon and popup content.
package rules

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/woozymasta/wienmap/internal/geo"
	"github.com/woozymasta/wienmap/internal/layer"
	"github.com/woozymasta/wienmap/internal/popup"

	"github.com/paulmach/orb/geojson"
)

// ErrUnknownRule is returned by New for rule names with no definition.
var ErrUnknownRule = errors.New("unknown presentation rule")

// Rule maps a feature to its presentation.
type Rule interface {
	Name() string
	Style(f *geojson.Feature) *layer.Style
	Icon(f *geojson.Feature) *layer.Icon
	Popup(f *geojson.Feature) (string, error)
}

// Options tune rule construction.
type Options struct {
	// IconURL is the photo pin used for sights.
	IconURL string
	// ThumbnailURL is the thumbnail proxy endpoint. Sight thumbnails are
	// linked directly when empty.
	ThumbnailURL string
}

// DefaultIconURL is the photo pin served by the web server.
const DefaultIconURL = "/icons/photo.svg"

// ZoneStyle is the fixed translucent style of pedestrian zones.
var ZoneStyle = layer.Style{
	Color:       "#F012BE",
	Weight:      1,
	Opacity:     0.4,
	FillOpacity: 0.1,
}

// Names lists the known rule names.
var Names = []string{"sights", "lines", "stops", "zones", "hotels"}

type rule struct {
	builder *popup.Builder
	tmpl    *popup.Template
	style   func(f *geojson.Feature) *layer.Style
	icon    *layer.Icon
	rewrite func(v popup.Values)
	name    string
}

// New returns the named presentation rule.
func New(name string, b *popup.Builder, opts Options) (Rule, error) {
	if opts.IconURL == "" {
		opts.IconURL = DefaultIconURL
	}

	r := &rule{name: name, builder: b}

	switch name {
	case "sights":
		r.tmpl = sightsPopup
		r.icon = &layer.Icon{
			URL:         opts.IconURL,
			Anchor:      [2]int{16, 37},
			PopupAnchor: [2]int{0, -37},
		}
		if opts.ThumbnailURL != "" {
			r.rewrite = thumbnailRewriter(opts.ThumbnailURL)
		}
	case "lines":
		r.tmpl = linesPopup
		r.style = func(f *geojson.Feature) *layer.Style {
			name, _ := geo.Property(f.Properties, "LINE_NAME")
			return &layer.Style{Color: LineColor(name)}
		}
	case "stops":
		r.tmpl = stopsPopup
	case "zones":
		r.tmpl = zonesPopup
		r.style = func(*geojson.Feature) *layer.Style {
			s := ZoneStyle
			return &s
		}
	case "hotels":
		r.tmpl = hotelsPopup
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
	}

	return r, nil
}

func (r *rule) Name() string { return r.name }

func (r *rule) Style(f *geojson.Feature) *layer.Style {
	if r.style == nil {
		return nil
	}
	return r.style(f)
}

func (r *rule) Icon(*geojson.Feature) *layer.Icon {
	if r.icon == nil {
		return nil
	}
	icon := *r.icon
	return &icon
}

func (r *rule) Popup(f *geojson.Feature) (string, error) {
	values, err := r.builder.Resolve(r.tmpl, f.Properties)
	if err != nil {
		return "", err
	}
	if r.rewrite != nil {
		r.rewrite(values)
	}

	return r.builder.Execute(r.tmpl, values)
}

// thumbnailRewriter points THUMBNAIL at the thumbnail proxy.
func thumbnailRewriter(endpoint string) func(popup.Values) {
	return func(v popup.Values) {
		src := v["THUMBNAIL"]
		if src == "" {
			return
		}
		v["THUMBNAIL"] = endpoint + "?src=" + url.QueryEscape(src)
	}
}
