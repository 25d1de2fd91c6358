// Package assets embeds the web frontend sources.
package assets

import _ "embed"

// IndexTemplate is the HTML page template.
//
//go:embed index.html.tpl
var IndexTemplate string

// Style is the page stylesheet.
//
//go:embed style.css
var Style string

// Script is the map application.
//
//go:embed script.js
var Script string

// PhotoIcon is the marker pin used for sights.
//
//go:embed photo.svg
var PhotoIcon []byte
