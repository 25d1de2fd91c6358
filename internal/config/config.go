// Package config handles configuration loading and shared data structures.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Missing-property policies for popup rendering.
const (
	MissingFallback = "fallback"
	MissingRaw      = "raw"
)

const wfsBase = "https://data.wien.gv.at/daten/geo?service=WFS&request=GetFeature&version=1.1.0&srsName=EPSG:4326&outputFormat=json&typeName="

// ErrInvalid is returned by Validate for unusable configurations.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the root configuration file structure.
type Config struct {
	Attribution string        `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	View        View          `yaml:"view" json:"view"`
	BaseLayers  []BaseLayer   `yaml:"base_layers" json:"base_layers"`
	Layers      []Layer       `yaml:"layers" json:"layers"`
	Popups      Popups        `yaml:"popups" json:"-"`
	Thumbnails  Thumbnails    `yaml:"thumbnails" json:"-"`
	Timeout     time.Duration `yaml:"timeout,omitempty" json:"-"`
}

// View is the initial map viewport.
type View struct {
	Title string  `yaml:"title" json:"title"`
	Lat   float64 `yaml:"lat" json:"lat"`
	Lng   float64 `yaml:"lng" json:"lng"`
	Zoom  int     `yaml:"zoom" json:"zoom"`
}

// BaseLayer is a background tile layer resolved by leaflet-providers.
type BaseLayer struct {
	Title    string `yaml:"title" json:"title"`
	Provider string `yaml:"provider" json:"provider"`
}

// Layer describes one thematic overlay and where its features come from.
type Layer struct {
	Name    string `yaml:"name" json:"name"`
	Title   string `yaml:"title" json:"title"`
	Rule    string `yaml:"rule,omitempty" json:"-"` // presentation rule, defaults to Name
	Source  string `yaml:"source" json:"-"`
	Visible bool   `yaml:"visible,omitempty" json:"visible"`
}

// Popups controls popup rendering.
type Popups struct {
	// Missing selects what optional properties render as when absent:
	// "fallback" substitutes the defined default text, "raw" leaves them empty.
	Missing string `yaml:"missing,omitempty"`
}

// Thumbnails controls the sight thumbnail proxy.
type Thumbnails struct {
	AllowedHosts []string `yaml:"allowed_hosts,omitempty"`
	Enabled      bool     `yaml:"enabled"`
	Width        int      `yaml:"width,omitempty"`
	Quality      float32  `yaml:"quality,omitempty"`
}

// RuleName returns the presentation rule used for the layer.
func (l Layer) RuleName() string {
	if l.Rule != "" {
		return l.Rule
	}
	return l.Name
}

// Default returns the built-in Vienna sightseeing configuration.
func Default() *Config {
	return &Config{
		Attribution: `Datenquelle: <a href="https://data.wien.gv.at">Stadt Wien</a>`,
		View: View{
			Title: "Vienna Sightseeing",
			Lat:   48.208493,
			Lng:   16.373118,
			Zoom:  12,
		},
		BaseLayers: []BaseLayer{
			{Title: "BasemapAT Grau", Provider: "BasemapAT.grau"},
			{Title: "BasemapAT Standard", Provider: "BasemapAT.basemap"},
			{Title: "BasemapAT High-DPI", Provider: "BasemapAT.highdpi"},
			{Title: "BasemapAT Gelände", Provider: "BasemapAT.terrain"},
			{Title: "BasemapAT Oberfläche", Provider: "BasemapAT.surface"},
			{Title: "BasemapAT Orthofoto", Provider: "BasemapAT.orthofoto"},
			{Title: "BasemapAT Beschriftung", Provider: "BasemapAT.overlay"},
			{Title: "Stadia StamenWatercolor", Provider: "Stadia.StamenWatercolor"},
		},
		Layers: []Layer{
			{Name: "sights", Title: "Sehenswürdigkeiten", Source: wfsBase + "ogdwien:SEHENSWUERDIGOGD", Visible: true},
			{Name: "lines", Title: "Vienna Sightseeing Linien", Source: wfsBase + "ogdwien:TOURISTIKLINIEVSLOGD"},
			{Name: "stops", Title: "Vienna Sightseeing Stops", Source: wfsBase + "ogdwien:TOURISTIKHTSVSLOGD"},
			{Name: "zones", Title: "Fußgängerzonen", Source: wfsBase + "ogdwien:FUSSGEHERZONEOGD"},
			{Name: "hotels", Title: "Hotels & Unterkünfte", Source: wfsBase + "ogdwien:UNTERKUNFTOGD"},
		},
		Popups: Popups{Missing: MissingFallback},
		Thumbnails: Thumbnails{
			Enabled:      true,
			Width:        160,
			Quality:      80,
			AllowedHosts: []string{"www.wien.gv.at", "data.wien.gv.at"},
		},
		Timeout: 30 * time.Second,
	}
}

// Load reads and parses the YAML configuration file from the specified path.
// Fields omitted in the file keep their built-in defaults; an empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) normalize() {
	def := Default()
	if c.Popups.Missing == "" {
		c.Popups.Missing = def.Popups.Missing
	}
	if c.Thumbnails.Width <= 0 {
		c.Thumbnails.Width = def.Thumbnails.Width
	}
	if c.Thumbnails.Quality <= 0 || c.Thumbnails.Quality > 100 {
		c.Thumbnails.Quality = def.Thumbnails.Quality
	}
	if c.Timeout < 0 {
		c.Timeout = 0
	}
	for i := range c.Layers {
		if c.Layers[i].Title == "" {
			c.Layers[i].Title = c.Layers[i].Name
		}
	}
}

// Validate checks the configuration for values the server cannot work with.
func (c *Config) Validate() error {
	if c.Popups.Missing != MissingFallback && c.Popups.Missing != MissingRaw {
		return fmt.Errorf("%w: popups.missing must be %q or %q, got %q",
			ErrInvalid, MissingFallback, MissingRaw, c.Popups.Missing)
	}

	seen := make(map[string]bool, len(c.Layers))
	for i, l := range c.Layers {
		if l.Name == "" {
			return fmt.Errorf("%w: layers[%d] has no name", ErrInvalid, i)
		}
		if l.Source == "" {
			return fmt.Errorf("%w: layer %q has no source", ErrInvalid, l.Name)
		}
		if seen[l.Name] {
			return fmt.Errorf("%w: duplicate layer %q", ErrInvalid, l.Name)
		}
		seen[l.Name] = true
	}

	for i, b := range c.BaseLayers {
		if b.Provider == "" {
			return fmt.Errorf("%w: base_layers[%d] has no provider", ErrInvalid, i)
		}
	}

	return nil
}
