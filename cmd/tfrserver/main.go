package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rickgao/tfr-chart/internal/api"
	"github.com/rickgao/tfr-chart/internal/config"
	"github.com/rickgao/tfr-chart/internal/database"
	"github.com/rickgao/tfr-chart/internal/forecast"
	"github.com/rickgao/tfr-chart/internal/metrics"
	"github.com/rickgao/tfr-chart/internal/offline"
	"github.com/rickgao/tfr-chart/internal/render"
	"github.com/rickgao/tfr-chart/internal/server"
	"github.com/rickgao/tfr-chart/internal/store"
	"github.com/rickgao/tfr-chart/internal/version"
	"github.com/rickgao/tfr-chart/internal/worldbank"
)

// defaultPredictOutput is where -predict writes without -output.
const defaultPredictOutput = "data/fertility_predicted.json"

func main() {
	configPath := flag.String("config", "configs/tfrserver.local.yaml", "path to config file")
	seedPath := flag.String("seed", "", "load this JSON file into Postgres and exit")
	download := flag.Bool("download", false, "download the historical series from the World Bank and exit")
	predict := flag.Bool("predict", false, "forecast -input into -output and exit")
	input := flag.String("input", "", "historical JSON file for -predict (default: store.path)")
	output := flag.String("output", "", "output JSON file for -download or -predict")
	steps := flag.Int("steps", 0, "years to forecast with -predict (default: predict.steps)")
	plotFlag := flag.Bool("plot", false, "also plot the -predict result")
	plotOutput := flag.String("plot-output", "", "plot file (.png or .svg) for -plot (default: -output with .png)")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting tfrserver",
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

	logger.Info("configuration loaded",
		"store", cfg.Store.Driver,
		"port", cfg.Server.Port,
		"steps", cfg.Predict.Steps,
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

	if *predict {
		opts := predictOptions(cfg, *input, *output, *steps, *plotFlag, *plotOutput)
		if _, err := offline.Predict(ctx, opts, logger); err != nil {
			logger.Error("predict failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if *download {
		if err := runDownload(ctx, cfg, *output, logger); err != nil {
			logger.Error("download failed", "error", err)
			os.Exit(1)
		}
		return
	}

	st, closeStore, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	if *seedPath != "" {
		if err := seed(ctx, st, *seedPath, logger); err != nil {
			logger.Error("seed failed", "error", err)
			os.Exit(1)
		}
		return
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.New()
	}

	srv := server.New(cfg, st, reg, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("tfrserver stopped")
}

// seed copies a JSON file of observations into the Postgres store.
func seed(ctx context.Context, st store.Store, path string, logger *slog.Logger) error {
	pg, ok := st.(*database.PostgresStore)
	if !ok {
		return errors.New("-seed requires store.driver postgres")
	}

	ts, err := store.NewFileStore(path).Historical(ctx)
	if err != nil {
		return err
	}

	n, err := pg.Seed(ctx, ts)
	if err != nil {
		return err
	}
	logger.Info("seed complete", "file", path, "rows", n)
	return nil
}

func predictOptions(cfg *config.Config, input, output string, steps int, plot bool, plotOutput string) offline.PredictOptions {
	if input == "" {
		input = cfg.Store.Path
	}
	if output == "" {
		output = defaultPredictOutput
	}
	if steps <= 0 {
		steps = cfg.Predict.Steps
	}
	if plot && plotOutput == "" {
		plotOutput = offline.DefaultPlotOutput(output)
	}
	if !plot {
		plotOutput = ""
	}

	return offline.PredictOptions{
		Input:      input,
		Output:     output,
		PlotOutput: plotOutput,
		Forecast: forecast.Options{
			Steps:    steps,
			MinValue: cfg.Predict.MinValue,
			MaxValue: cfg.Predict.MaxValue,
		},
		Title: cfg.Chart.Title,
		Image: render.ImageOptions{Width: cfg.Chart.Width, Height: cfg.Chart.Height},
	}
}

// runDownload fetches the configured indicator into the data file, and into
// Postgres when that is the configured store.
func runDownload(ctx context.Context, cfg *config.Config, output string, logger *slog.Logger) error {
	if output == "" {
		output = cfg.Download.Output
	}

	var seeder offline.Seeder
	if cfg.Store.Driver == "postgres" {
		st, closeStore, err := store.Open(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()
		if pg, ok := st.(*database.PostgresStore); ok {
			seeder = pg
		}
	}

	client := worldbank.NewClient(
		cfg.Download.BaseURL,
		worldbank.WithTimeout(cfg.Download.Timeout),
		worldbank.WithBreaker(api.NewBreaker("worldbank", cfg.Breaker.MaxFailures, cfg.Breaker.OpenTimeout)),
		worldbank.WithLogger(logger),
	)

	_, err := offline.Download(ctx, client, offline.DownloadOptions{
		Query: worldbank.Query{
			Country:   cfg.Download.Country,
			Indicator: cfg.Download.Indicator,
			FromYear:  cfg.Download.FromYear,
			ToYear:    cfg.Download.ToYear,
		},
		Output: output,
	}, seeder, logger)
	return err
}
