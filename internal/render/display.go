package render

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Chart is the handle for one displayed chart. It is disposed when a newer
// chart replaces it.
type Chart struct {
	ID         uuid.UUID
	Generation uint64
	Input      ChartInput
	Fallback   bool
	CreatedAt  time.Time

	disposed atomic.Bool
}

// Dispose releases the chart. Idempotent.
func (c *Chart) Dispose() {
	c.disposed.Store(true)
}

// Disposed reports whether the chart has been replaced.
func (c *Chart) Disposed() bool {
	return c.disposed.Load()
}

// Display holds the chart currently on screen.
// It is empty until the first successful load; Current reports ok=false then.
type Display struct {
	logger *slog.Logger

	mu        sync.RWMutex
	current   *Chart
	installed uint64 // generation of current
}

// NewDisplay creates an empty Display.
func NewDisplay(logger *slog.Logger) *Display {
	if logger == nil {
		logger = slog.Default()
	}
	return &Display{logger: logger}
}

// Install replaces the current chart with input produced by load generation
// gen. A generation older than the installed one is stale: nothing changes
// and ok is false. The replaced chart is disposed.
func (d *Display) Install(gen uint64, input ChartInput, fallback bool) (*Chart, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current != nil && gen < d.installed {
		d.logger.Info("discarding stale load",
			"generation", gen,
			"installed", d.installed,
		)
		return nil, false
	}

	next := &Chart{
		ID:         uuid.New(),
		Generation: gen,
		Input:      input,
		Fallback:   fallback,
		CreatedAt:  time.Now(),
	}

	if d.current != nil {
		d.current.Dispose()
	}
	d.current = next
	d.installed = gen

	return next, true
}

// Current returns the displayed chart, or false before the first install.
func (d *Display) Current() (*Chart, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.current == nil {
		return nil, false
	}
	return d.current, true
}
