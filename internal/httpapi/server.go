package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"stockperf/internal/domain"
	"stockperf/internal/store"
	"stockperf/internal/view"
)

// ChartServer serves chart slices computed from a shared data set. The data
// set is swapped wholesale on reload and never mutated in place.
type ChartServer struct {
	source store.DataSetSource
	log    *slog.Logger

	mu       sync.RWMutex
	data     domain.DataSet
	loadedAt time.Time
}

// NewChartServer creates a server reading from source. Call Reload (or
// SetData) before serving.
func NewChartServer(source store.DataSetSource, log *slog.Logger) *ChartServer {
	return &ChartServer{
		source: source,
		log:    log,
	}
}

// Reload loads a fresh data set from the source and swaps it in. On failure
// the previous data set stays in place.
func (s *ChartServer) Reload(ctx context.Context) (domain.DataSet, error) {
	if s.source == nil {
		return nil, errors.New("no data source configured")
	}
	ds, err := s.source.LoadDataSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading data set: %w", err)
	}
	s.SetData(ds)
	s.log.Info("data set loaded", "periods", len(ds), "records", ds.Len())
	return ds, nil
}

// SetData replaces the served data set.
func (s *ChartServer) SetData(ds domain.DataSet) {
	s.mu.Lock()
	s.data = ds
	s.loadedAt = time.Now()
	s.mu.Unlock()
}

// Data returns the current data set and its load time.
func (s *ChartServer) Data() (domain.DataSet, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data, s.loadedAt
}

// Chart computes the display slice for a selection against the current data
// set.
func (s *ChartServer) Chart(p domain.Period, g domain.Grouping) view.State {
	ds, _ := s.Data()
	return view.Select(ds, p, g)
}

// RegisterRoutes registers all API routes on the given router.
func (s *ChartServer) RegisterRoutes(r chi.Router) {
	r.Get("/api/health", s.handleHealth)
	r.Get("/api/periods", s.handlePeriods)
	r.Get("/api/chart", s.handleChart)
	r.Post("/api/reload", s.handleReload)
}

// Handler returns an http.Handler with request ID, recovery, logging and CORS
// middleware.
func (s *ChartServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	s.RegisterRoutes(r)
	return r
}

func (s *ChartServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"requestID", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *ChartServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ds, loadedAt := s.Data()
	resp := HealthResponse{Status: "ok", Records: ds.Len()}
	if !loadedAt.IsZero() {
		resp.LoadedAt = loadedAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, resp)
}

func (s *ChartServer) handlePeriods(w http.ResponseWriter, r *http.Request) {
	ds, _ := s.Data()
	available := ds.Available()
	if available == nil {
		available = []domain.Period{}
	}
	writeJSON(w, PeriodsResponse{
		Periods:   domain.Periods,
		Groupings: domain.Groupings,
		Available: available,
	})
}

func (s *ChartServer) handleChart(w http.ResponseWriter, r *http.Request) {
	p, g, err := ParseSelection(r.URL.Query().Get("period"), r.URL.Query().Get("grouping"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, NewChartResponse(s.Chart(p, g)))
}

func (s *ChartServer) handleReload(w http.ResponseWriter, r *http.Request) {
	ds, err := s.Reload(r.Context())
	if err != nil {
		s.log.Error("reloading data set", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNoData) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}
	_, loadedAt := s.Data()
	writeJSON(w, ReloadResponse{
		Periods:  len(ds),
		Records:  ds.Len(),
		LoadedAt: loadedAt.UTC().Format(time.RFC3339),
	})
}

// ParseSelection validates period and grouping strings. Empty values select
// the defaults, "1 month" and "company".
func ParseSelection(period, grouping string) (domain.Period, domain.Grouping, error) {
	p := domain.Period1Month
	if period != "" {
		p = domain.Period(period)
		if !p.Valid() {
			return "", "", fmt.Errorf("unknown period %q", period)
		}
	}
	g := domain.GroupByCompany
	if grouping != "" {
		g = domain.Grouping(grouping)
		if !g.Valid() {
			return "", "", fmt.Errorf("unknown grouping %q", grouping)
		}
	}
	return p, g, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
