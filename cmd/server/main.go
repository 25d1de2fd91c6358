package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/wienmap/internal/config"
	"github.com/woozymasta/wienmap/internal/layer"
	"github.com/woozymasta/wienmap/internal/logger"
	"github.com/woozymasta/wienmap/internal/processor"
	"github.com/woozymasta/wienmap/internal/rules"
	"github.com/woozymasta/wienmap/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string        `short:"c" long:"config"  env:"CONFIG_FILE"     description:"Path to configuration file, built-in Vienna defaults if empty"`
	Addr       string        `short:"a" long:"addr"    env:"LISTEN_ADDRESS"  description:"Address to listen on" default:"0.0.0.0"`
	Port       int           `short:"p" long:"port"    env:"LISTEN_PORT"     description:"Port to listen on"    default:"8080"`
	Timeout    time.Duration `short:"t" long:"timeout" env:"UPSTREAM_TIMEOUT" description:"Upstream request timeout, overrides config"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if opts.Timeout > 0 {
		cfg.Timeout = opts.Timeout
	}

	client := processor.NewClient(cfg.Timeout)

	ruleOpts := rules.Options{IconURL: rules.DefaultIconURL}
	var thumbs *processor.Thumbnailer
	if cfg.Thumbnails.Enabled {
		thumbs = processor.NewThumbnailer(client, cfg.Thumbnails)
		ruleOpts.ThumbnailURL = "/thumbs"
	}

	registry := layer.NewRegistry()
	sources, err := processor.Sources(cfg, registry, ruleOpts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up layers")
	}

	srvCtx, err := server.NewServerContext(cfg, registry, thumbs)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Layers load once in the background; handlers report the load state meanwhile.
	go func() {
		results, err := processor.NewLoader(client).LoadAll(ctx, sources)
		loaded := 0
		for _, res := range results {
			if res.Err == nil {
				loaded++
			}
		}
		ev := log.Info()
		if err != nil {
			ev = log.Warn().Err(err)
		}
		ev.Int("loaded", loaded).Int("total", len(results)).Msg("Layer loading finished")
	}()

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           server.RequestLogger(srvCtx.Routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("addr", listenAddr).
		Int("layers", len(sources)).
		Dur("timeout", cfg.Timeout).
		Msg("Web server started")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Web server stopped")
}
