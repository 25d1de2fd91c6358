package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/woozymasta/wienmap/internal/config"
	"github.com/woozymasta/wienmap/internal/layer"
	"github.com/woozymasta/wienmap/internal/logger"
	"github.com/woozymasta/wienmap/internal/processor"
	"github.com/woozymasta/wienmap/internal/rules"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string        `short:"c" long:"config"  env:"CONFIG_FILE" description:"Path to configuration file, built-in Vienna defaults if empty"`
	Limit      []string      `short:"l" long:"limit"   env:"LIMIT_NAMES" description:"Limit loading to specific layer names"`
	Output     string        `short:"o" long:"out"     description:"Output file path. Writes to stdout if empty"`
	Format     string        `short:"f" long:"format"  description:"Output format" choice:"summary" choice:"json" choice:"yaml" default:"summary"`
	Timeout    time.Duration `short:"t" long:"timeout" description:"Upstream request timeout, overrides config"`
}

// dumpLayer is the json/yaml output of one loaded layer.
type dumpLayer struct {
	Status   layer.Status        `json:"status" yaml:"status"`
	Elements []layer.WireElement `json:"elements" yaml:"elements"`
}

// formatOutput renders the load results as a summary table or dumps
// every registry layer with its geometry as json or yaml.
func formatOutput(format string, registry *layer.Registry, results []processor.Result) ([]byte, error) {
	switch format {
	case "json", "yaml":
		dump := make([]dumpLayer, 0, len(registry.Layers()))
		for _, l := range registry.Layers() {
			dump = append(dump, dumpLayer{Status: l.Status(), Elements: l.Wire()})
		}
		if format == "yaml" {
			return yaml.Marshal(dump)
		}
		return json.MarshalIndent(dump, "", "  ")
	}

	var out []byte
	for _, res := range results {
		line := fmt.Sprintf("%-10s %6d elements %4d skipped %8s", res.Layer, res.Count, res.Skipped, res.Duration.Round(time.Millisecond))
		if res.Err != nil {
			line += "  FAILED: " + res.Err.Error()
		}
		out = append(out, line+"\n"...)
	}
	return out, nil
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if opts.Timeout > 0 {
		cfg.Timeout = opts.Timeout
	}

	// Filter layers if limit is set
	if len(opts.Limit) > 0 {
		available := make(map[string]config.Layer, len(cfg.Layers))
		for _, l := range cfg.Layers {
			available[l.Name] = l
		}

		selected := make([]config.Layer, 0, len(opts.Limit))
		seen := make(map[string]bool)
		for _, name := range opts.Limit {
			if seen[name] {
				continue
			}
			seen[name] = true

			if l, ok := available[name]; ok {
				selected = append(selected, l)
			} else {
				log.Error().
					Str("name", name).
					Msg("Layer specified in --limit not found in configuration")
			}
		}
		cfg.Layers = selected
	}

	registry := layer.NewRegistry()
	sources, err := processor.Sources(cfg, registry, rules.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up layers")
	}

	log.Info().
		Int("layers_total", len(sources)).
		Dur("timeout", cfg.Timeout).
		Msg("Starting loader")

	loader := processor.NewLoader(processor.NewClient(cfg.Timeout))
	results, loadErr := loader.LoadAll(context.Background(), sources)

	out, err := formatOutput(opts.Format, registry, results)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal layers")
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, out, 0644); err != nil {
			log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output")
		}
	} else {
		_, _ = os.Stdout.Write(out)
	}

	if loadErr != nil {
		log.Error().Err(loadErr).Msg("Loader finished with errors")
		os.Exit(2)
	}

	log.Info().Msg("Loader finished successfully")
}
