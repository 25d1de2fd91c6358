package rules

import (
	"testing"

	"github.com/woozymasta/wienmap/internal/config"
	"github.com/woozymasta/wienmap/internal/popup"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feature(g orb.Geometry, props geojson.Properties) *geojson.Feature {
	f := geojson.NewFeature(g)
	f.Properties = props
	return f
}

func newRule(t *testing.T, name, missing string, opts Options) Rule {
	t.Helper()
	r, err := New(name, popup.NewBuilder(missing), opts)
	require.NoError(t, err)
	return r
}

func TestLineColor(t *testing.T) {
	tests := map[string]string{
		"Red Line":    "#FF4136",
		"Yellow Line": "#FFDC00",
		"Blue Line":   "#0074D9",
		"Green Line":  "#2ECC40",
		"Grey Line":   "#AAAAAA",
		"Orange Line": "#FF851B",
		"Purple Line": "black",
		"red line":    "black",
		"":            "black",
	}

	for name, want := range tests {
		assert.Equal(t, want, LineColor(name), name)
	}
}

func TestLinesStyle(t *testing.T) {
	r := newRule(t, "lines", config.MissingFallback, Options{})
	line := orb.LineString{{16.36, 48.2}, {16.37, 48.21}}

	a := r.Style(feature(line, geojson.Properties{"LINE_NAME": "Blue Line"}))
	b := r.Style(feature(line, geojson.Properties{"LINE_NAME": "Blue Line"}))
	require.NotNil(t, a)
	assert.Equal(t, "#0074D9", a.Color)
	assert.Equal(t, a, b, "same line name, same style")

	unknown := r.Style(feature(line, geojson.Properties{"LINE_NAME": "Night Line"}))
	assert.Equal(t, DefaultLineColor, unknown.Color)

	missing := r.Style(feature(line, geojson.Properties{}))
	assert.Equal(t, DefaultLineColor, missing.Color)
}

func TestLinesPopup(t *testing.T) {
	r := newRule(t, "lines", config.MissingFallback, Options{})

	out, err := r.Popup(feature(orb.LineString{{0, 0}, {1, 1}}, geojson.Properties{
		"LINE_NAME": "Red Line",
		"FROM_NAME": "Staatsoper",
		"TO_NAME":   "Prater",
	}))
	require.NoError(t, err)

	assert.Contains(t, out, "fa-bus")
	assert.Contains(t, out, "Red Line")
	assert.Contains(t, out, "Staatsoper")
	assert.Contains(t, out, "Prater")
}

func TestZonesStyleAndFallbacks(t *testing.T) {
	r := newRule(t, "zones", config.MissingFallback, Options{})
	f := feature(orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, geojson.Properties{
		"ADRESSE": "Graben",
	})

	style := r.Style(f)
	require.NotNil(t, style)
	assert.Equal(t, ZoneStyle, *style)

	out, err := r.Popup(f)
	require.NoError(t, err)
	assert.Contains(t, out, "Fußgängerzone Graben")
	assert.Contains(t, out, "dauerhaft")
	assert.Contains(t, out, "ohne Ausnahme")
	assert.NotContains(t, out, "undefined")
}

func TestZonesPresentValues(t *testing.T) {
	r := newRule(t, "zones", config.MissingFallback, Options{})

	out, err := r.Popup(feature(orb.Polygon{}, geojson.Properties{
		"ADRESSE":   "Kärntner Straße",
		"ZEITRAUM":  "10:30-24:00",
		"AUSN_TEXT": "Lieferverkehr",
	}))
	require.NoError(t, err)
	assert.Contains(t, out, "10:30-24:00")
	assert.Contains(t, out, "Lieferverkehr")
	assert.NotContains(t, out, "dauerhaft")
}

func TestZonesRawPolicy(t *testing.T) {
	r := newRule(t, "zones", config.MissingRaw, Options{})

	out, err := r.Popup(feature(orb.Polygon{}, geojson.Properties{"ADRESSE": "Graben"}))
	require.NoError(t, err)
	assert.NotContains(t, out, "dauerhaft")
	assert.NotContains(t, out, "ohne Ausnahme")
	assert.NotContains(t, out, "undefined")
}

func TestSightsPopupRoundTrip(t *testing.T) {
	r := newRule(t, "sights", config.MissingFallback, Options{})
	f := feature(orb.Point{16.373118, 48.208493}, geojson.Properties{
		"NAME":        "Stephansdom",
		"ADRESSE":     "1., Stephansplatz 3",
		"WEITERE_INF": "https://www.wien.gv.at/stephansdom",
		"THUMBNAIL":   "https://www.wien.gv.at/thumb.jpg",
	})

	out, err := r.Popup(f)
	require.NoError(t, err)
	assert.Contains(t, out, "Stephansdom")
	assert.Contains(t, out, "1., Stephansplatz 3")
	assert.Contains(t, out, "https://www.wien.gv.at/stephansdom")
	assert.Contains(t, out, "https://www.wien.gv.at/thumb.jpg")

	icon := r.Icon(f)
	require.NotNil(t, icon)
	assert.Equal(t, DefaultIconURL, icon.URL)
	assert.Equal(t, [2]int{16, 37}, icon.Anchor)
	assert.Equal(t, [2]int{0, -37}, icon.PopupAnchor)
	assert.Nil(t, r.Style(f))
}

func TestSightsThumbnailRewrite(t *testing.T) {
	r := newRule(t, "sights", config.MissingFallback, Options{ThumbnailURL: "/thumbs", IconURL: "/pin.svg"})

	out, err := r.Popup(feature(orb.Point{0, 0}, geojson.Properties{
		"NAME":      "Albertina",
		"THUMBNAIL": "https://www.wien.gv.at/thumb.jpg",
	}))
	require.NoError(t, err)
	assert.Contains(t, out, "/thumbs?src=https%3A%2F%2Fwww.wien.gv.at%2Fthumb.jpg")
	assert.Equal(t, "/pin.svg", r.Icon(feature(orb.Point{0, 0}, nil)).URL)
}

func TestSightsWithoutOptionalProperties(t *testing.T) {
	r := newRule(t, "sights", config.MissingFallback, Options{ThumbnailURL: "/thumbs"})

	out, err := r.Popup(feature(orb.Point{0, 0}, geojson.Properties{"NAME": "Hofburg"}))
	require.NoError(t, err)
	assert.Contains(t, out, "Hofburg")
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "<a")
	assert.NotContains(t, out, "<address")
}

func TestStopsPopupNumericID(t *testing.T) {
	r := newRule(t, "stops", config.MissingFallback, Options{})
	f := feature(orb.Point{0, 0}, geojson.Properties{
		"LINE_NAME": "Yellow Line",
		"STAT_ID":   float64(12),
		"STAT_NAME": "Oper",
	})

	out, err := r.Popup(f)
	require.NoError(t, err)
	assert.Contains(t, out, "12 Oper")
	assert.Nil(t, r.Icon(f), "stops use the default marker")
	assert.Nil(t, r.Style(f))
}

func TestHotelsPopupLinks(t *testing.T) {
	r := newRule(t, "hotels", config.MissingFallback, Options{})

	out, err := r.Popup(feature(orb.Point{0, 0}, geojson.Properties{
		"BETRIEB":         "Hotel Sacher",
		"BETRIEBSART_TXT": "Hotel",
		"KATEGORIE_TXT":   "5*",
		"ADRESSE":         "Philharmoniker Straße 4",
		"KONTAKT_TEL":     "+43151456",
		"KONTAKT_EMAIL":   "wien@sacher.com",
		"WEBLINK1":        "https://www.sacher.com",
	}))
	require.NoError(t, err)

	assert.Contains(t, out, "Hotel Sacher")
	assert.Contains(t, out, "Hotel 5*")
	assert.Contains(t, out, "Philharmoniker Straße 4")
	assert.Contains(t, out, `href="tel:+43151456"`)
	assert.Contains(t, out, `href="mailto:wien@sacher.com"`)
	assert.Contains(t, out, `href="https://www.sacher.com"`)
}

func TestRequiredProperties(t *testing.T) {
	tests := map[string]geojson.Properties{
		"sights": {"ADRESSE": "x"},
		"lines":  {"FROM_NAME": "x"},
		"stops":  {"LINE_NAME": "x"},
		"zones":  {"ZEITRAUM": "x"},
		"hotels": {"ADRESSE": "x"},
	}

	for name, props := range tests {
		t.Run(name, func(t *testing.T) {
			r := newRule(t, name, config.MissingFallback, Options{})
			_, err := r.Popup(feature(orb.Point{0, 0}, props))
			assert.ErrorIs(t, err, popup.ErrMissingProperty)
		})
	}
}

func TestNewUnknownRule(t *testing.T) {
	_, err := New("museums", popup.NewBuilder(config.MissingFallback), Options{})
	assert.ErrorIs(t, err, ErrUnknownRule)

	for _, name := range Names {
		r, err := New(name, popup.NewBuilder(config.MissingFallback), Options{})
		require.NoError(t, err, name)
		assert.Equal(t, name, r.Name())
	}
}

func TestIconIsCopied(t *testing.T) {
	r := newRule(t, "sights", config.MissingFallback, Options{})
	a := r.Icon(nil)
	a.URL = "changed"
	assert.Equal(t, DefaultIconURL, r.Icon(nil).URL)
}
