// Package processor handles the downloading and processing of map data.
package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/woozymasta/wienmap/internal/geo"
	"github.com/woozymasta/wienmap/internal/layer"
	"github.com/woozymasta/wienmap/internal/rules"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrStatus is returned when an upstream answers with a non-2xx status.
var ErrStatus = errors.New("unexpected upstream status")

// maxPayload caps the size of a feature collection document.
const maxPayload = 64 << 20

// Source binds a thematic layer to its feature source and presentation rule.
type Source struct {
	Layer *layer.ThematicLayer
	Rule  rules.Rule
	URL   string
}

// Result is the outcome of loading one layer.
type Result struct {
	Err      error
	Layer    string
	Count    int
	Skipped  int
	Duration time.Duration
}

// Loader fetches feature collections and renders them into thematic layers.
type Loader struct {
	client *http.Client
}

// NewLoader creates a loader using the given HTTP client.
func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{client: client}
}

// Load fetches the feature collection at sourceURL, renders every feature
// with rule and adds the elements to target. On failure target stays empty
// and is marked failed.
func (l *Loader) Load(ctx context.Context, sourceURL string, target *layer.ThematicLayer, rule rules.Rule) error {
	if err := target.Begin(); err != nil {
		return err
	}

	logger := log.With().
		Str("layer", target.Name()).
		Str("url", sourceURL).
		Logger()

	logger.Debug().Msg("Loading layer")

	fc, err := l.fetch(ctx, sourceURL)
	if err != nil {
		err = fmt.Errorf("load %s: %w", target.Name(), err)
		target.Fail(err)
		logger.Error().Err(err).Msg("Failed to load layer")
		return err
	}

	elements, skipped := Render(fc, rule, logger)
	target.Commit(elements, skipped)

	logger.Info().
		Int("features", len(fc.Features)).
		Int("elements", len(elements)).
		Int("skipped", skipped).
		Msg("Layer loaded")

	return nil
}

// LoadAll loads every source concurrently. Loads are independent: a
// failing source leaves only its own layer empty. The returned error joins
// all load failures.
func (l *Loader) LoadAll(ctx context.Context, sources []Source) ([]Result, error) {
	results := make([]Result, len(sources))

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)

	for i, src := range sources {
		g.Go(func() error {
			start := time.Now()
			err := l.Load(ctx, src.URL, src.Layer, src.Rule)
			st := src.Layer.Status()

			results[i] = Result{
				Layer:    src.Layer.Name(),
				Count:    st.Count,
				Skipped:  st.Skipped,
				Duration: time.Since(start),
				Err:      err,
			}

			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}

// fetch downloads and decodes a feature collection.
func (l *Loader) fetch(ctx context.Context, url string) (*geojson.FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload))
	if err != nil {
		return nil, err
	}

	return geo.Decode(data)
}

// Render converts every feature of fc into an element. Features without
// geometry or missing a required property are logged and skipped.
func Render(fc *geojson.FeatureCollection, rule rules.Rule, logger zerolog.Logger) ([]layer.Element, int) {
	elements := make([]layer.Element, 0, len(fc.Features))
	skipped := 0

	for i, f := range fc.Features {
		el, err := renderFeature(f, rule)
		if err != nil {
			logger.Warn().
				Err(err).
				Int("feature", i).
				Interface("id", f.ID).
				Msg("Skipping feature")
			skipped++
			continue
		}
		elements = append(elements, el)
	}

	return elements, skipped
}

func renderFeature(f *geojson.Feature, rule rules.Rule) (layer.Element, error) {
	if f == nil || f.Geometry == nil {
		return layer.Element{}, errors.New("feature has no geometry")
	}

	content, err := rule.Popup(f)
	if err != nil {
		return layer.Element{}, err
	}

	el := layer.Element{
		Geometry: f.Geometry,
		Popup:    content,
	}
	if f.ID != nil {
		el.FeatureID = fmt.Sprint(f.ID)
	}

	if geo.IsPoint(f.Geometry) {
		el.Kind = layer.KindMarker
		el.Icon = rule.Icon(f)
	} else {
		el.Kind = layer.KindShape
		el.Style = rule.Style(f)
	}

	return el, nil
}
