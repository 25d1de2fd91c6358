package processor

import (
	"fmt"
	"net/http"
	"time"

	"github.com/woozymasta/wienmap/internal/config"
	"github.com/woozymasta/wienmap/internal/layer"
	"github.com/woozymasta/wienmap/internal/popup"
	"github.com/woozymasta/wienmap/internal/rules"
)

// NewClient returns the HTTP client used for upstream requests.
// A zero timeout disables the client deadline.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: timeout,
	}
}

// Sources creates an empty thematic layer per configured layer, registers
// it in reg and binds it to its source URL and presentation rule.
func Sources(cfg *config.Config, reg *layer.Registry, opts rules.Options) ([]Source, error) {
	builder := popup.NewBuilder(cfg.Popups.Missing)
	sources := make([]Source, 0, len(cfg.Layers))

	for _, l := range cfg.Layers {
		rule, err := rules.New(l.RuleName(), builder, opts)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", l.Name, err)
		}

		tl := layer.New(l.Name, l.Title, l.Visible)
		if err := reg.Add(tl); err != nil {
			return nil, err
		}

		sources = append(sources, Source{
			Layer: tl,
			Rule:  rule,
			URL:   l.Source,
		})
	}

	return sources, nil
}
