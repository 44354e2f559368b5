package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rickgao/tfr-chart/internal/forecast"
	"github.com/rickgao/tfr-chart/internal/middleware"
	"github.com/rickgao/tfr-chart/internal/model"
	"github.com/rickgao/tfr-chart/internal/series"
	"github.com/rickgao/tfr-chart/internal/version"
)

// maxPredictBody caps POST /predictData bodies.
const maxPredictBody = 1 << 20

func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	records, err := s.extended(r.Context())
	if err != nil {
		s.logger.Error("getData failed", "error", err, "request_id", middleware.RequestID(r.Context()))
		middleware.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetUnpredicted(w http.ResponseWriter, r *http.Request) {
	historical, err := s.store.Historical(r.Context())
	if err != nil {
		s.logger.Error("getUnpredictedData failed", "error", err, "request_id", middleware.RequestID(r.Context()))
		middleware.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, historical.HistoricalRecords())
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPredictBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	input, err := series.Parse(body)
	if err != nil {
		s.metrics.ObservePrediction("invalid")
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if input.Len() == 0 {
		s.metrics.ObservePrediction("invalid")
		middleware.WriteError(w, http.StatusBadRequest, "input must contain at least one record")
		return
	}

	// Everything the caller sends is history, whatever it was flagged.
	points := input.Points()
	for i := range points {
		points[i].Estimated = false
	}
	historical := model.NewTimeSeries(points)

	extended, err := forecast.Extend(historical, s.forecast)
	if err != nil {
		s.metrics.ObservePrediction("error")
		s.logger.Error("forecast failed", "error", err, "request_id", middleware.RequestID(r.Context()))
		middleware.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.ObservePrediction("ok")

	s.logger.Info("prediction served",
		"request_id", middleware.RequestID(r.Context()),
		"historical", historical.Len(),
		"steps", s.forecast.Steps,
	)
	middleware.WriteJSON(w, http.StatusOK, extended.Records())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := struct {
		Status     string         `json:"status"`
		Version    version.Info   `json:"version"`
		Components map[string]any `json:"components"`
	}{
		Status:     "healthy",
		Version:    version.Get(),
		Components: make(map[string]any),
	}

	historical, err := s.store.Historical(ctx)
	switch {
	case err != nil:
		health.Status = "unhealthy"
		health.Components["store"] = map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		}
	case historical.Len() == 0:
		health.Status = "degraded"
		health.Components["store"] = map[string]any{"observations": 0}
	default:
		last, _ := historical.LastPeriod()
		health.Components["store"] = map[string]any{
			"observations": historical.Len(),
			"last_year":    last,
		}
	}

	status := http.StatusOK
	if health.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	middleware.WriteJSON(w, status, health)
}
