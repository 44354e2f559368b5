package web

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/rickgao/tfr-chart/internal/api"
	"github.com/rickgao/tfr-chart/internal/config"
	"github.com/rickgao/tfr-chart/internal/loader"
	"github.com/rickgao/tfr-chart/internal/metrics"
	"github.com/rickgao/tfr-chart/internal/middleware"
	"github.com/rickgao/tfr-chart/internal/notify"
	"github.com/rickgao/tfr-chart/internal/render"
	"github.com/rickgao/tfr-chart/internal/series"
	"github.com/rickgao/tfr-chart/internal/version"
)

// Server serves the chart app.
type Server struct {
	cfg     *config.Config
	loader  *loader.Loader
	display *render.Display
	hub     *notify.Hub
	metrics *metrics.Registry
	logger  *slog.Logger
	router  *mux.Router

	// base outlives individual requests so a closed browser tab does not
	// abort a load; it is cancelled on shutdown.
	base context.Context
}

// New creates a Server. Loads triggered over HTTP run under base.
func New(
	base context.Context,
	cfg *config.Config,
	l *loader.Loader,
	display *render.Display,
	hub *notify.Hub,
	reg *metrics.Registry,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		loader:  l,
		display: display,
		hub:     hub,
		metrics: reg,
		logger:  logger,
		base:    base,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := mux.NewRouter()
	r.Use(middleware.WithRequestID)
	r.Use(middleware.Logging(s.logger))
	r.Use(middleware.Instrument(s.metrics))

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/chart", s.handleChartHTML).Methods(http.MethodGet)
	r.HandleFunc("/chart.{format:png|svg}", s.handleChartImage).Methods(http.MethodGet)
	r.HandleFunc("/api/dataset", s.handleDataset).Methods(http.MethodGet)

	load := r.PathPrefix("/load").Subrouter()
	load.HandleFunc("/remote", s.handleLoadRemote).Methods(http.MethodPost)
	load.HandleFunc("/file", s.handleLoadUpload(s.loader.LoadFile)).Methods(http.MethodPost)
	load.HandleFunc("/predict", s.handleLoadUpload(s.loader.LoadPredict)).Methods(http.MethodPost)

	r.Handle("/ws", s.hub).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	if s.cfg.Metrics.Enabled && s.metrics != nil {
		r.Handle(s.cfg.Metrics.Path, s.metrics.Handler()).Methods(http.MethodGet)
	}

	s.router = r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		Title:  s.cfg.Chart.Title,
		Status: "No data loaded yet.",
	}
	if _, ok := s.display.Current(); ok {
		data.HasChart = true
	}
	if st, ok := s.hub.Last(); ok {
		data.Status = st.Message
		data.Kind = string(st.Kind)
		data.Fallback = st.Fallback
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, data); err != nil {
		s.logger.Error("render index", "error", err)
	}
}

func (s *Server) handleChartHTML(w http.ResponseWriter, r *http.Request) {
	chart, ok := s.display.Current()
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "no chart loaded")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := render.HTML(w, chart.Input, render.HTMLOptions{Height: "540px"})
	if err != nil {
		s.logger.Error("render chart html", "error", err)
	}
}

func (s *Server) handleChartImage(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	chart, ok := s.display.Current()
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "no chart loaded")
		return
	}

	var buf bytes.Buffer
	err = render.Image(&buf, chart.Input, format, render.ImageOptions{
		Width:  s.cfg.Chart.Width,
		Height: s.cfg.Chart.Height,
	})
	if errors.Is(err, render.ErrNoData) {
		middleware.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("render chart image", "format", format, "error", err)
		middleware.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	buf.WriteTo(w)
}

type datasetResponse struct {
	ID         string            `json:"id"`
	Generation uint64            `json:"generation"`
	Fallback   bool              `json:"fallback"`
	CreatedAt  time.Time         `json:"created_at"`
	Chart      render.ChartInput `json:"chart"`
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	chart, ok := s.display.Current()
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "no chart loaded")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, datasetResponse{
		ID:         chart.ID.String(),
		Generation: chart.Generation,
		Fallback:   chart.Fallback,
		CreatedAt:  chart.CreatedAt,
		Chart:      chart.Input,
	})
}

func (s *Server) handleLoadRemote(w http.ResponseWriter, r *http.Request) {
	chart, err := s.loader.LoadRemote(s.base)
	s.respondLoad(w, r, chart, err)
}

func (s *Server) handleLoadUpload(load func(context.Context, io.Reader) (*render.Chart, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, err := s.formFile(w, r)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer file.Close()

		chart, err := load(s.base, file)
		s.respondLoad(w, r, chart, err)
	}
}

func (s *Server) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, error) {
	// Leave room for multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Source.MaxFileSize+64<<10)
	if err := r.ParseMultipartForm(s.cfg.Source.MaxFileSize); err != nil {
		return nil, errors.New("expected a multipart upload with a \"file\" field")
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("missing \"file\" field")
	}
	return file, nil
}

type loadResponse struct {
	Status   string `json:"status"`
	ChartID  string `json:"chart_id,omitempty"`
	Fallback bool   `json:"fallback"`
	Error    string `json:"error,omitempty"`
}

// respondLoad reports a load result. Browsers posting the index forms are
// redirected back to the page, which picks the status up over /ws.
func (s *Server) respondLoad(w http.ResponseWriter, r *http.Request, chart *render.Chart, err error) {
	if wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err != nil {
		middleware.WriteJSON(w, loadErrorStatus(err), loadResponse{Status: "error", Error: err.Error()})
		return
	}
	middleware.WriteJSON(w, http.StatusOK, loadResponse{
		Status:   "success",
		ChartID:  chart.ID.String(),
		Fallback: chart.Fallback,
	})
}

func loadErrorStatus(err error) int {
	var (
		vErr *series.ValidationError
		pErr *series.ParseError
	)
	switch {
	case errors.Is(err, loader.ErrStale):
		return http.StatusConflict
	case errors.Is(err, api.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &vErr), errors.As(err, &pErr):
		return http.StatusBadRequest
	case api.IsNetworkError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := struct {
		Status     string         `json:"status"`
		Version    version.Info   `json:"version"`
		Components map[string]any `json:"components"`
	}{
		Status:     "healthy",
		Version:    version.Get(),
		Components: make(map[string]any),
	}

	if chart, ok := s.display.Current(); ok {
		health.Components["chart"] = map[string]any{
			"id":         chart.ID.String(),
			"generation": chart.Generation,
			"fallback":   chart.Fallback,
			"years":      len(chart.Input.Labels),
		}
	} else {
		health.Status = "degraded"
		health.Components["chart"] = "not loaded"
	}

	if st, ok := s.hub.Last(); ok {
		health.Components["last_status"] = st
	}
	health.Components["subscribers"] = s.hub.Subscribers()

	middleware.WriteJSON(w, http.StatusOK, health)
}
