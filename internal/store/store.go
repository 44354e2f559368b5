// Package store selects where the data service reads historical
// observations from.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rickgao/tfr-chart/internal/config"
	"github.com/rickgao/tfr-chart/internal/database"
	"github.com/rickgao/tfr-chart/internal/model"
	"github.com/rickgao/tfr-chart/internal/series"
)

// Store provides the historical series.
type Store interface {
	Historical(ctx context.Context) (model.TimeSeries, error)
}

// FileStore reads historical observations from a JSON file on every call.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore for path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Historical reads and validates the file. Records flagged as predicted are
// dropped.
func (s *FileStore) Historical(ctx context.Context) (model.TimeSeries, error) {
	if err := ctx.Err(); err != nil {
		return model.TimeSeries{}, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return model.TimeSeries{}, fmt.Errorf("read %s: %w", s.path, err)
	}

	ts, err := series.Parse(data)
	if err != nil {
		return model.TimeSeries{}, fmt.Errorf("parse %s: %w", s.path, err)
	}

	return ts.Filter(func(p model.SeriesPoint) bool { return !p.Estimated }), nil
}

// Write replaces the file with the historical points of ts.
func (s *FileStore) Write(ts model.TimeSeries) error {
	historical := ts.Filter(func(p model.SeriesPoint) bool { return !p.Estimated })
	return WriteJSON(s.path, historical.HistoricalRecords())
}

// WriteJSON writes v as indented JSON to path. The file is written to a
// temporary sibling and renamed, so readers never see a partial file.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// Open returns the store selected by cfg.Store.Driver. The close function
// releases any database pool and is never nil on success.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, func(), error) {
	switch cfg.Store.Driver {
	case "file":
		return NewFileStore(cfg.Store.Path), func() {}, nil

	case "postgres":
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		pg := database.NewPostgresStore(pool, logger)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pg, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
