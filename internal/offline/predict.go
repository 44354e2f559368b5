package offline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rickgao/tfr-chart/internal/forecast"
	"github.com/rickgao/tfr-chart/internal/model"
	"github.com/rickgao/tfr-chart/internal/render"
	"github.com/rickgao/tfr-chart/internal/series"
	"github.com/rickgao/tfr-chart/internal/store"
)

// PredictOptions configures Predict.
type PredictOptions struct {
	Input      string // Historical JSON file
	Output     string // Combined JSON file
	PlotOutput string // .png or .svg; empty skips the plot
	Forecast   forecast.Options
	Title      string
	Image      render.ImageOptions
}

// DefaultPlotOutput derives the plot path from the JSON output path.
func DefaultPlotOutput(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".png"
}

// Predict reads o.Input, appends the forecast and writes the combined series
// with predicted flags to o.Output.
func Predict(ctx context.Context, o PredictOptions, logger *slog.Logger) (model.TimeSeries, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if o.Input == "" || o.Output == "" {
		return model.TimeSeries{}, errors.New("predict needs both an input and an output file")
	}

	// Validate the plot format before doing any work.
	var format render.Format
	if o.PlotOutput != "" {
		f, err := render.ParseFormat(strings.ToLower(filepath.Ext(o.PlotOutput)))
		if err != nil {
			return model.TimeSeries{}, err
		}
		format = f
	}

	logger.Info("loading historical data", "path", o.Input)
	historical, err := store.NewFileStore(o.Input).Historical(ctx)
	if err != nil {
		return model.TimeSeries{}, err
	}

	extended, err := forecast.Extend(historical, o.Forecast)
	if err != nil {
		return model.TimeSeries{}, fmt.Errorf("forecast %s: %w", o.Input, err)
	}

	if err := store.WriteJSON(o.Output, extended.Records()); err != nil {
		return model.TimeSeries{}, err
	}
	logger.Info("prediction written",
		"path", o.Output,
		"historical", historical.Len(),
		"predicted", extended.Len()-historical.Len(),
	)

	if o.PlotOutput != "" {
		if err := plot(o, format, extended); err != nil {
			return model.TimeSeries{}, err
		}
		logger.Info("plot written", "path", o.PlotOutput)
	}

	return extended, nil
}

func plot(o PredictOptions, format render.Format, ts model.TimeSeries) error {
	in := render.ToRenderable(series.Reconcile(ts))
	in.Title = o.Title

	f, err := os.Create(o.PlotOutput)
	if err != nil {
		return fmt.Errorf("create plot: %w", err)
	}
	if err := render.Image(f, in, format, o.Image); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
