package server

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/woozymasta/wienmap/internal/config"
	"github.com/woozymasta/wienmap/internal/layer"
	"github.com/woozymasta/wienmap/internal/page"
	"github.com/woozymasta/wienmap/internal/processor"

	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config      *config.Config
	Layers      *layer.Registry
	Thumbnailer *processor.Thumbnailer // nil disables the thumbnail proxy
	IndexHTML   []byte
	Icon        []byte
	indexETag   string
}

// NewServerContext renders the static page assets and wires the handlers
// to the layer registry.
func NewServerContext(cfg *config.Config, layers *layer.Registry, thumbs *processor.Thumbnailer) (*ServerContext, error) {
	index, err := page.Render(cfg.View.Title)
	if err != nil {
		return nil, fmt.Errorf("render index: %w", err)
	}

	icon, err := page.Icon()
	if err != nil {
		return nil, fmt.Errorf("render icon: %w", err)
	}

	log.Info().
		Int("layers", len(layers.Layers())).
		Int("base_layers", len(cfg.BaseLayers)).
		Bool("thumbnails", thumbs != nil).
		Int("index_bytes", len(index)).
		Msg("Server context initialized successfully")

	return &ServerContext{
		Config:      cfg,
		Layers:      layers,
		Thumbnailer: thumbs,
		IndexHTML:   index,
		Icon:        icon,
		indexETag:   contentETag(index),
	}, nil
}

// contentETag derives a strong ETag from a hash of the body.
func contentETag(data []byte) string {
	sum := sha256.Sum256(data)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}
