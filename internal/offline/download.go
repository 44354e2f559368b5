package offline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rickgao/tfr-chart/internal/model"
	"github.com/rickgao/tfr-chart/internal/store"
	"github.com/rickgao/tfr-chart/internal/worldbank"
)

// ErrNoDestination is returned when a download has nowhere to go.
var ErrNoDestination = errors.New("download needs an output file or a postgres store")

// Downloader fetches an indicator series. *worldbank.Client implements it.
type Downloader interface {
	Download(ctx context.Context, q worldbank.Query) (model.TimeSeries, []int, error)
}

// Seeder stores a series. *database.PostgresStore implements it.
type Seeder interface {
	Seed(ctx context.Context, ts model.TimeSeries) (int, error)
}

// DownloadOptions configures Download.
type DownloadOptions struct {
	Query  worldbank.Query
	Output string // JSON file to write; empty skips the file
}

// Download fetches o.Query and writes it to o.Output and, if seeder is set,
// to the database. An empty result is an error so a bad query never
// truncates an existing data file.
func Download(ctx context.Context, d Downloader, o DownloadOptions, seeder Seeder, logger *slog.Logger) (model.TimeSeries, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if o.Output == "" && seeder == nil {
		return model.TimeSeries{}, ErrNoDestination
	}

	ts, missing, err := d.Download(ctx, o.Query)
	if err != nil {
		return model.TimeSeries{}, fmt.Errorf("download %s/%s: %w", o.Query.Country, o.Query.Indicator, err)
	}
	if ts.Len() == 0 {
		return model.TimeSeries{}, fmt.Errorf("download %s/%s: no observations in %d..%d",
			o.Query.Country, o.Query.Indicator, o.Query.FromYear, o.Query.ToYear)
	}

	first := ts.At(0).Period
	last, _ := ts.LastPeriod()
	logger.Info("indicator downloaded",
		"country", o.Query.Country,
		"indicator", o.Query.Indicator,
		"observations", ts.Len(),
		"first_year", first,
		"last_year", last,
		"missing_years", len(missing),
	)

	if o.Output != "" {
		if err := store.NewFileStore(o.Output).Write(ts); err != nil {
			return model.TimeSeries{}, err
		}
		logger.Info("data file written", "path", o.Output)
	}

	if seeder != nil {
		n, err := seeder.Seed(ctx, ts)
		if err != nil {
			return model.TimeSeries{}, fmt.Errorf("seed: %w", err)
		}
		logger.Info("database seeded", "rows", n)
	}

	return ts, nil
}
