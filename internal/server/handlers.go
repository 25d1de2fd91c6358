// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/woozymasta/wienmap/internal/layer"
	"github.com/woozymasta/wienmap/internal/processor"

	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	etagCap         = 64
	contentGeoJSON  = "application/geo+json"
	contentMsgpack  = "application/msgpack"
	contentWebP     = "image/webp"
	contentSVG      = "image/svg+xml"
	contentHTMLUTF8 = "text/html; charset=utf-8"
)

// Routes registers all handlers on a new mux.
func (s *ServerContext) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/config", s.HandleConfig)
	mux.HandleFunc("GET /api/layers", s.HandleLayersList)
	mux.HandleFunc("GET /api/layers/{name}", s.HandleLayer)
	mux.HandleFunc("GET /icons/photo.svg", s.HandleIcon)
	mux.HandleFunc("GET /favicon.ico", s.HandleIcon)
	mux.HandleFunc("GET /thumbs", s.HandleThumbnail)
	mux.HandleFunc("GET /healthz", s.HandleHealth)
	mux.HandleFunc("GET /", s.HandleIndex)
	return mux
}

// HandleConfig serves the client map configuration: view, base layers and overlays.
func (s *ServerContext) HandleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(s.Config)
}

// HandleLayersList serves the load status of every thematic layer.
func (s *ServerContext) HandleLayersList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	_ = json.NewEncoder(w).Encode(s.Layers.Statuses())
}

// HandleLayer serves the rendered elements of one thematic layer.
func (s *ServerContext) HandleLayer(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	l, ok := s.Layers.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "layer not found: "+name, nil)
		return
	}

	state, loadErr := l.State()
	switch state {
	case layer.StatePending, layer.StateLoading:
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "LOADING", "layer is loading: "+name, nil)
		return
	case layer.StateFailed:
		writeError(w, http.StatusBadGateway, "LOAD_FAILED", "layer failed to load: "+name, loadErr)
		return
	}

	st := l.Status()
	etag := layerETag(st)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	w.Header().Set("Vary", "Accept")

	if strings.Contains(r.Header.Get("Accept"), contentMsgpack) {
		data, err := msgpack.Marshal(l.Wire())
		if err != nil {
			log.Error().Err(err).Str("layer", name).Msg("Failed to encode msgpack")
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to encode msgpack", err)
			return
		}
		w.Header().Set("Content-Type", contentMsgpack)
		_, _ = w.Write(data)
		return
	}

	data, err := l.FeatureCollection().MarshalJSON()
	if err != nil {
		log.Error().Err(err).Str("layer", name).Msg("Failed to encode GeoJSON")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to encode geojson", err)
		return
	}
	w.Header().Set("Content-Type", contentGeoJSON)
	_, _ = w.Write(data)
}

// HandleIcon serves the sight marker icon.
func (s *ServerContext) HandleIcon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", contentSVG)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.Icon)
}

// HandleThumbnail serves a downscaled WebP copy of an allow-listed image.
func (s *ServerContext) HandleThumbnail(w http.ResponseWriter, r *http.Request) {
	if s.Thumbnailer == nil {
		http.NotFound(w, r)
		return
	}

	src := r.URL.Query().Get("src")
	if src == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "missing src parameter", nil)
		return
	}

	data, err := s.Thumbnailer.Thumbnail(r.Context(), src)
	switch {
	case errors.Is(err, processor.ErrHostNotAllowed):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "image source not allowed", err)
		return
	case err != nil:
		log.Debug().Err(err).Str("src", src).Msg("Failed to build thumbnail")
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "failed to fetch image", err)
		return
	}

	w.Header().Set("Content-Type", contentWebP)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}

// HandleHealth reports liveness.
func (s *ServerContext) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if match := r.Header.Get("If-None-Match"); match == s.indexETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", contentHTMLUTF8)
	w.Header().Set("ETag", s.indexETag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// layerETag derives an ETag from the element count and load time.
func layerETag(st layer.Status) string {
	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, int64(st.Count), 16)
	buf = append(buf, '-')
	if st.LoadedAt != nil {
		buf = strconv.AppendInt(buf, st.LoadedAt.UnixNano(), 16)
	}
	buf = append(buf, '"')
	return string(buf)
}
