package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for one process. Each process gets its own
// prometheus.Registry so tests can create registries freely.
type Registry struct {
	reg *prometheus.Registry

	Loads        *prometheus.CounterVec
	LoadDuration *prometheus.HistogramVec
	Fallbacks    *prometheus.CounterVec
	StaleLoads   prometheus.Counter
	HTTPRequests *prometheus.CounterVec
	Predictions  *prometheus.CounterVec
}

// New creates and registers all metrics.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		Loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tfr_loads_total",
				Help: "Load attempts by mode and result",
			},
			[]string{"mode", "result"},
		),

		LoadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tfr_load_duration_seconds",
				Help:    "Duration of load attempts in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"mode"},
		),

		Fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tfr_fallback_total",
				Help: "Fallback substitutions by cause",
			},
			[]string{"cause"},
		),

		StaleLoads: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tfr_stale_loads_total",
				Help: "Completed loads discarded because a newer load was already displayed",
			},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tfr_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),

		Predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tfr_predictions_total",
				Help: "Forecast requests served by result",
			},
			[]string{"result"},
		),
	}

	r.reg.MustRegister(
		r.Loads,
		r.LoadDuration,
		r.Fallbacks,
		r.StaleLoads,
		r.HTTPRequests,
		r.Predictions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveLoad records one finished load attempt. Safe on a nil Registry.
func (r *Registry) ObserveLoad(mode, result string, d time.Duration) {
	if r == nil {
		return
	}
	r.Loads.WithLabelValues(mode, result).Inc()
	r.LoadDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// ObserveFallback records a fallback substitution. Safe on a nil Registry.
func (r *Registry) ObserveFallback(cause string) {
	if r == nil {
		return
	}
	r.Fallbacks.WithLabelValues(cause).Inc()
}

// ObserveStale records a discarded stale load. Safe on a nil Registry.
func (r *Registry) ObserveStale() {
	if r == nil {
		return
	}
	r.StaleLoads.Inc()
}

// ObserveRequest records an HTTP request. Safe on a nil Registry.
func (r *Registry) ObserveRequest(route string, code int) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// ObservePrediction records a forecast request. Safe on a nil Registry.
func (r *Registry) ObservePrediction(result string) {
	if r == nil {
		return
	}
	r.Predictions.WithLabelValues(result).Inc()
}
