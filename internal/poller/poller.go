package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/tfr-chart/internal/loader"
	"github.com/rickgao/tfr-chart/internal/render"
)

// Refresher runs a remote load. *loader.Loader implements it.
type Refresher interface {
	LoadRemote(ctx context.Context) (*render.Chart, error)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Refresh interval
	Timeout  time.Duration // Per-refresh timeout (default: 30s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 10 * time.Minute,
		Timeout:  30 * time.Second,
	}
}

// Poller periodically reloads the chart from the data service.
type Poller struct {
	cfg       Config
	refresher Refresher
	logger    *slog.Logger

	refreshes atomic.Int64
	failures  atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, refresher Refresher, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Poller{
		cfg:       cfg,
		refresher: refresher,
		logger:    logger,
	}
}

// Start begins the refresh loop. A non-positive interval disables it.
func (p *Poller) Start(ctx context.Context) error {
	if p.cfg.Interval <= 0 {
		p.logger.Info("chart refresh disabled")
		return nil
	}

	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("chart refresh started", "interval", p.cfg.Interval)
	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("chart refresh stopped",
			"refreshes", p.refreshes.Load(),
			"failures", p.failures.Load(),
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main refresh loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.refresh()
		}
	}
}

// refresh runs one remote load.
func (p *Poller) refresh() {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	p.refreshes.Add(1)
	_, err := p.refresher.LoadRemote(ctx)
	switch {
	case err == nil:
	case errors.Is(err, loader.ErrStale):
		p.logger.Debug("refresh superseded by a newer load")
	default:
		p.failures.Add(1)
		p.logger.Warn("chart refresh failed", "error", err)
	}
}

// Stats returns the number of refreshes attempted and failed.
func (p *Poller) Stats() (refreshes, failures int64) {
	return p.refreshes.Load(), p.failures.Load()
}
