package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rickgao/tfr-chart/internal/api"
	"github.com/rickgao/tfr-chart/internal/config"
	"github.com/rickgao/tfr-chart/internal/httpserve"
	"github.com/rickgao/tfr-chart/internal/loader"
	"github.com/rickgao/tfr-chart/internal/metrics"
	"github.com/rickgao/tfr-chart/internal/notify"
	"github.com/rickgao/tfr-chart/internal/poller"
	"github.com/rickgao/tfr-chart/internal/render"
	"github.com/rickgao/tfr-chart/internal/version"
	"github.com/rickgao/tfr-chart/internal/web"
)

func main() {
	configPath := flag.String("config", "configs/tfrchart.local.yaml", "path to config file")
	renderOut := flag.String("render", "", "render -input to this .html, .png or .svg file and exit")
	input := flag.String("input", "", "JSON file to render with -render")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting tfrchart",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *renderOut != "" {
		if err := renderOnce(cfg, *input, *renderOut, logger); err != nil {
			logger.Error("render failed", "error", err)
			os.Exit(1)
		}
		return
	}

	logger.Info("configuration loaded",
		"source", cfg.Source.BaseURL,
		"port", cfg.Server.Port,
		"refresh_interval", cfg.Chart.RefreshInterval,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.New()
	}

	// Create API client
	client := api.NewClient(
		cfg.Source.BaseURL,
		api.WithAPIKey(cfg.Source.APIKey),
		api.WithPaths(cfg.Source.FetchPath, cfg.Source.PredictPath),
		api.WithTimeout(cfg.Source.Timeout),
		api.WithBreaker(api.NewBreaker("tfr-source", cfg.Breaker.MaxFailures, cfg.Breaker.OpenTimeout)),
		api.WithLogger(logger),
	)

	hub := notify.NewHub(logger)
	defer hub.Close()

	display := render.NewDisplay(logger)
	adapter := render.NewAdapter(cfg.Chart.Title, display, notify.Multi{notify.NewLogNotifier(logger), hub})

	l := loader.New(loader.Config{
		HistoricalUntil: cfg.Chart.HistoricalUntil,
		MaxFileSize:     cfg.Source.MaxFileSize,
	}, client, adapter, reg, logger)

	// Initial load, as a browser opening the page would trigger.
	go func() {
		if _, err := l.LoadRemote(ctx); err != nil {
			logger.Warn("initial load failed", "error", err)
		}
	}()

	p := poller.New(poller.Config{
		Interval: cfg.Chart.RefreshInterval,
		Timeout:  cfg.Source.Timeout,
	}, l, logger)
	if err := p.Start(ctx); err != nil {
		logger.Error("failed to start poller", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		p.Stop(shutdownCtx)
	}()

	app := web.New(ctx, cfg, l, display, hub, reg, logger)

	logger.Info("tfrchart running",
		"url", fmt.Sprintf("http://%s:%d/", cfg.Server.Host, cfg.Server.Port),
	)

	if err := httpserve.ListenAndServe(ctx, cfg.Server, app.Handler(), logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("tfrchart stopped")
}

// renderOnce renders a local file to out, picking the format from its extension.
func renderOnce(cfg *config.Config, input, out string, logger *slog.Logger) error {
	if input == "" {
		return fmt.Errorf("-render requires -input")
	}

	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	display := render.NewDisplay(logger)
	l := loader.New(loader.Config{
		HistoricalUntil: cfg.Chart.HistoricalUntil,
		MaxFileSize:     cfg.Source.MaxFileSize,
	}, nil, render.NewAdapter(cfg.Chart.Title, display, notify.NewLogNotifier(logger)), nil, logger)

	chart, err := l.LoadFile(context.Background(), in)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(out))
	if ext == ".html" || ext == ".htm" {
		err = render.HTML(f, chart.Input, render.HTMLOptions{})
	} else {
		var format render.Format
		format, err = render.ParseFormat(ext)
		if err == nil {
			err = render.Image(f, chart.Input, format, render.ImageOptions{
				Width:  cfg.Chart.Width,
				Height: cfg.Chart.Height,
			})
		}
	}
	if err != nil {
		return err
	}

	logger.Info("chart rendered", "input", input, "output", out, "years", len(chart.Input.Labels))
	return f.Close()
}
