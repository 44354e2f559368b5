package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/rickgao/tfr-chart/internal/config"
	"github.com/rickgao/tfr-chart/internal/forecast"
	"github.com/rickgao/tfr-chart/internal/httpserve"
	"github.com/rickgao/tfr-chart/internal/metrics"
	"github.com/rickgao/tfr-chart/internal/middleware"
	"github.com/rickgao/tfr-chart/internal/model"
	"github.com/rickgao/tfr-chart/internal/store"
)

// Server serves historical and forecast TFR data.
type Server struct {
	cfg      *config.Config
	store    store.Store
	metrics  *metrics.Registry
	logger   *slog.Logger
	forecast forecast.Options
	router   *mux.Router

	mu     sync.Mutex
	cached []model.Record // /getData response, built on first success
}

// New creates a Server. reg may be nil.
func New(cfg *config.Config, st store.Store, reg *metrics.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		store:   st,
		metrics: reg,
		logger:  logger,
		forecast: forecast.Options{
			Steps:    cfg.Predict.Steps,
			MinValue: cfg.Predict.MinValue,
			MaxValue: cfg.Predict.MaxValue,
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := mux.NewRouter()
	r.Use(middleware.WithRequestID)
	r.Use(middleware.Logging(s.logger))
	r.Use(middleware.Instrument(s.metrics))
	r.Use(middleware.CORS(s.cfg.Server.AllowOrigin))

	r.HandleFunc("/getData", s.handleGetData).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/getUnpredictedData", s.handleGetUnpredicted).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	predict := r.Path("/predictData").Subrouter()
	predict.Use(middleware.RateLimit(rate.NewLimiter(rate.Limit(s.cfg.RateLimit.RPS), s.cfg.RateLimit.Burst)))
	predict.Methods(http.MethodPost, http.MethodOptions).HandlerFunc(s.handlePredict)

	if s.cfg.Metrics.Enabled && s.metrics != nil {
		r.Handle(s.cfg.Metrics.Path, s.metrics.Handler()).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "not found")
	})

	s.router = r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	return httpserve.ListenAndServe(ctx, s.cfg.Server, s.Handler(), s.logger)
}

// extended returns the historical series plus its forecast, computing it on
// first use. Failures are not cached.
func (s *Server) extended(ctx context.Context) ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return s.cached, nil
	}

	historical, err := s.store.Historical(ctx)
	if err != nil {
		return nil, fmt.Errorf("load historical: %w", err)
	}

	ts, err := forecast.Extend(historical, s.forecast)
	if err != nil {
		s.metrics.ObservePrediction("error")
		return nil, fmt.Errorf("forecast: %w", err)
	}
	s.metrics.ObservePrediction("ok")

	s.cached = ts.Records()
	s.logger.Info("forecast cached",
		"historical", historical.Len(),
		"predicted", ts.Len()-historical.Len(),
	)
	return s.cached, nil
}

// Invalidate drops the cached /getData response.
func (s *Server) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}
