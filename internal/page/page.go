// Package page renders the map application page from the embedded assets.
package page

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/woozymasta/wienmap/assets"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
)

// Data is the template input of the page.
type Data struct {
	Title string
	CSS   template.CSS
	JS    template.JS
}

// Minifier returns a minifier for the page asset types.
func Minifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)
	return m
}

// Render builds the minified index page.
func Render(title string) ([]byte, error) {
	m := Minifier()

	cssMin, err := m.String("text/css", assets.Style)
	if err != nil {
		return nil, fmt.Errorf("minify css: %w", err)
	}

	jsMin, err := m.String("text/javascript", assets.Script)
	if err != nil {
		return nil, fmt.Errorf("minify js: %w", err)
	}

	tmpl, err := template.New("index").Parse(assets.IndexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, Data{
		Title: title,
		CSS:   template.CSS(cssMin),
		JS:    template.JS(jsMin),
	})
	if err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	out, err := m.Bytes("text/html", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("minify html: %w", err)
	}

	return out, nil
}

// Icon returns the minified sight marker icon.
func Icon() ([]byte, error) {
	return Minifier().Bytes("image/svg+xml", assets.PhotoIcon)
}
