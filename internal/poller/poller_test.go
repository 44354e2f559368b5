package poller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rickgao/tfr-chart/internal/api"
	"github.com/rickgao/tfr-chart/internal/loader"
	"github.com/rickgao/tfr-chart/internal/render"
)

func newTestLoader(t *testing.T, handler http.HandlerFunc) (*loader.Loader, *render.Display) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := api.NewClient(server.URL, api.WithTimeout(5*time.Second))
	display := render.NewDisplay(nil)
	l := loader.New(loader.Config{HistoricalUntil: 2023}, client, render.NewAdapter("", display, nil), nil, nil)
	return l, display
}

func TestPoller_Refresh(t *testing.T) {
	l, display := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getData" {
			t.Errorf("path = %s, want /getData", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"year":2023,"tfr":1.158},{"year":2024,"tfr":1.1,"predicted":true}]`))
	})

	p := New(Config{Interval: time.Hour}, l, nil)
	p.ctx = context.Background()

	p.refresh()

	chart, ok := display.Current()
	if !ok {
		t.Fatal("refresh did not install a chart")
	}
	if len(chart.Input.Labels) != 2 {
		t.Errorf("Labels = %v, want 2 years", chart.Input.Labels)
	}
	if refreshes, failures := p.Stats(); refreshes != 1 || failures != 0 {
		t.Errorf("Stats() = %d, %d; want 1, 0", refreshes, failures)
	}
}

func TestPoller_RefreshFailureKeepsChart(t *testing.T) {
	var fail atomic.Bool
	l, display := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"year":2023,"tfr":1.158}]`))
	})

	p := New(Config{Interval: time.Hour}, l, nil)
	p.ctx = context.Background()

	p.refresh()
	before, _ := display.Current()

	fail.Store(true)
	p.refresh()

	after, ok := display.Current()
	if !ok || after != before {
		t.Error("failed refresh replaced the chart")
	}
	if _, failures := p.Stats(); failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}
}

func TestPoller_StartStop(t *testing.T) {
	var calls atomic.Int32
	l, _ := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[{"year":2023,"tfr":1.158}]`))
	})

	p := New(Config{Interval: 50 * time.Millisecond}, l, nil)

	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Wait for at least one tick.
	time.Sleep(150 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if calls.Load() == 0 {
		t.Error("data service was never called")
	}
}

func TestPoller_Disabled(t *testing.T) {
	p := New(Config{Interval: 0}, nil, nil)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}
