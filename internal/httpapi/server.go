// Package httpapi exposes series building over HTTP together with health and
// Prometheus metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/huangsam/tally/core"
	"github.com/huangsam/tally/internal/contract"
	"github.com/huangsam/tally/internal/source"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes caps the size of one series request.
const maxBodyBytes = 32 << 20

// Error kinds reported in responses and the errors_total metric.
const (
	kindBadRequest = "bad_request"
	kindConfig     = "config"
	kindTimestamp  = "timestamp"
	kindBuild      = "build"
)

// SeriesRequest is the body of POST /v1/series. Unset settings fall back to
// the server configuration.
type SeriesRequest struct {
	Points             json.RawMessage `json:"points"`
	Fields             []string        `json:"fields,omitempty"`
	Granularity        string          `json:"granularity,omitempty"`
	IntervalUnit       string          `json:"interval_unit,omitempty"`
	IntervalLength     int             `json:"interval_length,omitempty"`
	Aggregation        string          `json:"aggregation,omitempty"`
	StorageAggregation string          `json:"storage_aggregation,omitempty"`
	Accumulation       string          `json:"accumulation,omitempty"`
	Historical         *bool           `json:"historical,omitempty"`
	Locale             string          `json:"locale,omitempty"`
	Now                string          `json:"now,omitempty"`
}

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Server serves the series API.
type Server struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
	metrics *Metrics
	router  *mux.Router
	wall    func() time.Time
}

// NewServer wires the routes. reg receives the API collectors and is also
// what GET /metrics exposes.
func NewServer(baseCfg *contract.Config, mgr contract.CacheManager, reg *prometheus.Registry) *Server {
	s := &Server{
		baseCfg: baseCfg,
		mgr:     mgr,
		metrics: NewMetrics(reg),
		router:  mux.NewRouter(),
		wall:    time.Now,
	}

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/series", s.handleSeries).Methods(http.MethodPost)
	s.router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})).Methods(http.MethodGet)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	var req SeriesRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, kindBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if len(req.Points) == 0 {
		s.fail(w, http.StatusBadRequest, kindBadRequest, errors.New("points are required"))
		return
	}

	cfg := s.baseCfg.Clone()
	if err := contract.ProcessSeriesInputs(cfg, s.overlay(req), s.wall()); err != nil {
		s.fail(w, http.StatusBadRequest, kindConfig, err)
		return
	}

	points, err := source.DecodeJSON(req.Points)
	if err != nil {
		s.fail(w, http.StatusBadRequest, kindBadRequest, fmt.Errorf("invalid points: %w", err))
		return
	}
	s.metrics.PointsIngested.Add(float64(len(points)))

	granularity := string(cfg.Series.Granularity)
	start := time.Now()
	result, err := core.BuildFromPoints(core.WithSuppressHeader(r.Context()), cfg, s.mgr, points, "http "+r.RemoteAddr)
	s.metrics.BuildDuration.WithLabelValues(granularity).Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, core.ErrInvalidTimestamp) {
			s.fail(w, http.StatusUnprocessableEntity, kindTimestamp, err)
			return
		}
		s.fail(w, http.StatusInternalServerError, kindBuild, err)
		return
	}

	s.metrics.SeriesBuilt.WithLabelValues(granularity).Inc()
	writeJSON(w, http.StatusOK, result)
}

// overlay layers the request's settings over the server configuration.
func (s *Server) overlay(req SeriesRequest) *contract.ConfigRawInput {
	raw := s.baseCfg.SeriesRawInput()
	if len(req.Fields) > 0 {
		raw.Fields = strings.Join(req.Fields, ",")
	}
	if req.Granularity != "" {
		raw.Granularity = req.Granularity
	}
	if req.IntervalUnit != "" {
		raw.IntervalUnit = req.IntervalUnit
	}
	if req.IntervalLength != 0 {
		raw.IntervalLength = req.IntervalLength
	}
	if req.Aggregation != "" {
		raw.Aggregation = req.Aggregation
	}
	if req.StorageAggregation != "" {
		raw.StorageAggregation = req.StorageAggregation
	}
	if req.Accumulation != "" {
		raw.Accumulation = req.Accumulation
	}
	if req.Historical != nil {
		raw.Historical = *req.Historical
	}
	if req.Locale != "" {
		raw.Locale = req.Locale
	}
	if req.Now != "" {
		raw.Now = req.Now
	}
	return raw
}

func (s *Server) fail(w http.ResponseWriter, status int, kind string, err error) {
	s.metrics.SeriesErrors.WithLabelValues(kind).Inc()
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contract.LogWarn("Failed to write response", err)
	}
}
