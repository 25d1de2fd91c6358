// Package popup renders feature properties into escaped HTML popup fragments.
//
// Templates are html/template, so every property value is escaped for the
// context it lands in: text, attribute or URL. URL attributes only accept
// http, https and mailto values at their start; anything else is replaced
// by a harmless placeholder.
package popup

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/woozymasta/wienmap/internal/config"
	"github.com/woozymasta/wienmap/internal/geo"

	"github.com/paulmach/orb/geojson"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

// ErrMissingProperty is returned when a required property is absent.
var ErrMissingProperty = errors.New("missing required property")

// Field declares a feature property used by a template.
type Field struct {
	Key      string
	Default  string // rendered under the fallback policy when absent
	Required bool
}

// Values maps property keys to their resolved display text.
type Values map[string]string

// Template is a parsed popup template and the properties it reads.
type Template struct {
	tmpl   *template.Template
	name   string
	fields []Field
}

// Parse parses a popup template. The template sees every declared field
// as {{.KEY}}; referencing an undeclared key fails at render time.
func Parse(name, text string, fields ...Field) (*Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse popup template %s: %w", name, err)
	}

	return &Template{tmpl: tmpl, name: name, fields: fields}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(name, text string, fields ...Field) *Template {
	t, err := Parse(name, text, fields...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the template name.
func (t *Template) Name() string { return t.name }

// Builder resolves properties and executes templates.
type Builder struct {
	min     *minify.M
	missing string
}

// NewBuilder creates a builder using the given missing-property policy
// (config.MissingFallback or config.MissingRaw).
func NewBuilder(missing string) *Builder {
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepDefaultAttrVals: true,
		KeepEndTags:         true,
		KeepQuotes:          true,
	})

	if missing != config.MissingRaw {
		missing = config.MissingFallback
	}

	return &Builder{min: m, missing: missing}
}

// Resolve looks up every declared field of t in props.
func (b *Builder) Resolve(t *Template, props geojson.Properties) (Values, error) {
	values := make(Values, len(t.fields))

	for _, f := range t.fields {
		v, ok := geo.Property(props, f.Key)
		switch {
		case ok:
			values[f.Key] = v
		case f.Required:
			return nil, fmt.Errorf("%w: %s", ErrMissingProperty, f.Key)
		case b.missing == config.MissingFallback:
			values[f.Key] = f.Default
		default:
			values[f.Key] = ""
		}
	}

	return values, nil
}

// Execute renders t with already resolved values.
func (b *Builder) Execute(t *Template, values Values) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, values); err != nil {
		return "", fmt.Errorf("render popup %s: %w", t.name, err)
	}

	out, err := b.min.String("text/html", buf.String())
	if err != nil {
		return "", fmt.Errorf("minify popup %s: %w", t.name, err)
	}

	return strings.TrimSpace(out), nil
}

// Render resolves props and renders t.
func (b *Builder) Render(t *Template, props geojson.Properties) (string, error) {
	values, err := b.Resolve(t, props)
	if err != nil {
		return "", err
	}

	return b.Execute(t, values)
}
