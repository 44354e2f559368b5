package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/tfr-chart/internal/api"
	"github.com/rickgao/tfr-chart/internal/fallback"
	"github.com/rickgao/tfr-chart/internal/metrics"
	"github.com/rickgao/tfr-chart/internal/model"
	"github.com/rickgao/tfr-chart/internal/notify"
	"github.com/rickgao/tfr-chart/internal/render"
	"github.com/rickgao/tfr-chart/internal/series"
)

// Load modes, used in statuses and metric labels.
const (
	ModeRemote  = "remote"
	ModePredict = "predict"
	ModeFile    = "file"
)

// ErrStale is returned when a newer load was displayed first.
var ErrStale = errors.New("load superseded by a newer load")

// Source acquires raw payloads from the data service. *api.Client implements it.
type Source interface {
	FetchRaw(ctx context.Context) ([]byte, error)
	PredictRaw(ctx context.Context, historical model.TimeSeries) ([]byte, error)
}

// DefaultMaxFileSize caps uploads when Config.MaxFileSize is unset.
const DefaultMaxFileSize = 1 << 20

// Config holds loader settings.
type Config struct {
	HistoricalUntil int   // Unflagged remote records after this year are estimated
	MaxFileSize     int64 // Upload cap in bytes
}

// Loader runs loads and installs their results.
type Loader struct {
	cfg     Config
	source  Source
	adapter *render.Adapter
	metrics *metrics.Registry
	logger  *slog.Logger

	gen atomic.Uint64
}

// New creates a Loader. reg may be nil.
func New(cfg Config, source Source, adapter *render.Adapter, reg *metrics.Registry, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	return &Loader{
		cfg:     cfg,
		source:  source,
		adapter: adapter,
		metrics: reg,
		logger:  logger,
	}
}

// attempt tracks one load from start to status.
type attempt struct {
	l     *Loader
	id    uuid.UUID
	gen   uint64
	mode  string
	start time.Time
}

func (l *Loader) begin(mode string) *attempt {
	a := &attempt{
		l:     l,
		id:    uuid.New(),
		gen:   l.gen.Add(1),
		mode:  mode,
		start: time.Now(),
	}
	l.adapter.Notify(a.status(notify.KindLoading, "Loading data...", false))
	return a
}

func (a *attempt) status(kind notify.Kind, msg string, fb bool) notify.Status {
	return notify.Status{
		LoadID:   a.id,
		Kind:     kind,
		Mode:     a.mode,
		Message:  msg,
		Fallback: fb,
		Time:     time.Now(),
	}
}

// fail ends the attempt with an error status. The displayed chart is kept.
func (a *attempt) fail(stage string, err error) error {
	err = fmt.Errorf("%s: %w", stage, err)
	a.l.logger.Warn("load failed",
		"load_id", a.id,
		"mode", a.mode,
		"error", err,
	)
	a.l.metrics.ObserveLoad(a.mode, "error", time.Since(a.start))
	a.l.adapter.Notify(a.status(notify.KindError, err.Error(), false))
	return err
}

// finish reconciles ts and installs it. msg is the success text; fb marks
// fallback data.
func (a *attempt) finish(ts model.TimeSeries, fb bool, msg string) (*render.Chart, error) {
	ds := series.Reconcile(ts)

	chart, ok := a.l.adapter.Present(a.gen, ds, fb)
	if !ok {
		a.l.metrics.ObserveStale()
		a.l.metrics.ObserveLoad(a.mode, "stale", time.Since(a.start))
		a.l.logger.Info("load discarded",
			"load_id", a.id,
			"mode", a.mode,
			"generation", a.gen,
		)
		st := a.status(notify.KindError, "Superseded by a newer load.", false)
		st.Superseded = true
		a.l.adapter.Notify(st)
		return nil, ErrStale
	}

	result := "success"
	if fb {
		result = "fallback"
	}
	a.l.metrics.ObserveLoad(a.mode, result, time.Since(a.start))
	a.l.logger.Info("load complete",
		"load_id", a.id,
		"mode", a.mode,
		"points", ts.Len(),
		"fallback", fb,
		"duration", time.Since(a.start),
	)
	a.l.adapter.Notify(a.status(notify.KindSuccess, msg, fb))
	return chart, nil
}

// LoadRemote fetches the precomputed series. Any failure is terminal.
func (l *Loader) LoadRemote(ctx context.Context) (*render.Chart, error) {
	a := l.begin(ModeRemote)

	raw, err := l.source.FetchRaw(ctx)
	if err != nil {
		return nil, a.fail("fetch", err)
	}

	ts, err := series.ParseWith(raw, series.Options{EstimatedAfter: l.cfg.HistoricalUntil})
	if err != nil {
		return nil, a.fail("validate response", err)
	}

	return a.finish(ts, false, "Data loaded.")
}

// LoadFile displays a user-supplied file. Read and validation failures are
// terminal.
func (l *Loader) LoadFile(ctx context.Context, file io.Reader) (*render.Chart, error) {
	a := l.begin(ModeFile)

	ts, err := l.readFile(file)
	if err != nil {
		return nil, a.fail("file", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, a.fail("file", err)
	}

	return a.finish(ts, false, "File loaded.")
}

// LoadPredict sends the file's historical records to the prediction service.
// File errors are terminal; a failed or unusable prediction is replaced by
// the static fallback tail.
func (l *Loader) LoadPredict(ctx context.Context, file io.Reader) (*render.Chart, error) {
	a := l.begin(ModePredict)

	input, err := l.readFile(file)
	if err != nil {
		return nil, a.fail("file", err)
	}
	historical := input.Filter(func(p model.SeriesPoint) bool { return !p.Estimated })

	ts, err := l.predict(ctx, historical)
	if err == nil {
		return a.finish(ts, false, "Prediction loaded.")
	}

	// Shutdown or caller cancellation is not a service failure.
	if ctx.Err() != nil {
		return nil, a.fail("predict", ctx.Err())
	}

	res := fallback.Resolve(historical, err)
	l.metrics.ObserveFallback(string(res.Cause))
	l.logger.Warn("prediction failed, using fallback",
		"load_id", a.id,
		"cause", res.Cause,
		"error", err,
	)
	return a.finish(res.Series, true, res.Message)
}

func (l *Loader) predict(ctx context.Context, historical model.TimeSeries) (model.TimeSeries, error) {
	raw, err := l.source.PredictRaw(ctx, historical)
	if err != nil {
		return model.TimeSeries{}, err
	}

	// Services that omit the predicted flag are read by year instead.
	cutoff := l.cfg.HistoricalUntil
	if last, ok := historical.LastPeriod(); ok {
		cutoff = last
	}
	return series.ParseWith(raw, series.Options{EstimatedAfter: cutoff})
}

func (l *Loader) readFile(file io.Reader) (model.TimeSeries, error) {
	data, err := api.ReadLocalFile(file, l.cfg.MaxFileSize)
	if err != nil {
		return model.TimeSeries{}, err
	}
	return series.Parse(data)
}

// Generation returns the number of loads started so far.
func (l *Loader) Generation() uint64 {
	return l.gen.Load()
}
