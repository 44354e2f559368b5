package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/tfr-chart/internal/model"
)

const (
	createTableSQL = `
		CREATE TABLE IF NOT EXISTS tfr_observations (
			year integer PRIMARY KEY,
			tfr  double precision NOT NULL
		)`

	selectSQL = `SELECT year, tfr FROM tfr_observations ORDER BY year`

	upsertSQL = `
		INSERT INTO tfr_observations (year, tfr)
		VALUES ($1, $2)
		ON CONFLICT (year) DO UPDATE SET tfr = EXCLUDED.tfr`
)

// DB is the subset of *pgxpool.Pool used by PostgresStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// PostgresStore serves historical observations from tfr_observations.
type PostgresStore struct {
	db     DB
	logger *slog.Logger
}

// NewPostgresStore creates a PostgresStore.
func NewPostgresStore(db DB, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{db: db, logger: logger}
}

// EnsureSchema creates the observations table if it is missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create tfr_observations: %w", err)
	}
	return nil
}

// Historical returns every stored observation, ordered by year.
func (s *PostgresStore) Historical(ctx context.Context) (model.TimeSeries, error) {
	rows, err := s.db.Query(ctx, selectSQL)
	if err != nil {
		return model.TimeSeries{}, fmt.Errorf("query observations: %w", err)
	}

	points, err := pgx.CollectRows(rows, scanPoint)
	if err != nil {
		return model.TimeSeries{}, fmt.Errorf("scan observations: %w", err)
	}

	for _, p := range points {
		if !model.IsFinite(p.Value) {
			return model.TimeSeries{}, fmt.Errorf("observation %d: non-finite tfr", p.Period)
		}
	}

	return model.NewTimeSeries(points), nil
}

// Seed upserts observations, replacing values for years already stored.
// Estimated points are skipped. It returns the number of rows written.
func (s *PostgresStore) Seed(ctx context.Context, ts model.TimeSeries) (int, error) {
	batch := seedBatch(ts)
	if batch.Len() == 0 {
		return 0, nil
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	written := 0
	for i := 0; i < batch.Len(); i++ {
		ct, err := results.Exec()
		if err != nil {
			return written, fmt.Errorf("upsert observation: %w", err)
		}
		written += int(ct.RowsAffected())
	}

	s.logger.Info("seeded observations", "rows", written)
	return written, nil
}

func seedBatch(ts model.TimeSeries) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, p := range ts.Points() {
		if p.Estimated {
			continue
		}
		batch.Queue(upsertSQL, p.Period, p.Value)
	}
	return batch
}

func scanPoint(row pgx.CollectableRow) (model.SeriesPoint, error) {
	var p model.SeriesPoint
	err := row.Scan(&p.Period, &p.Value)
	return p, err
}
