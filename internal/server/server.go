package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zgpcy/toutsurmoneau-exporter/internal/collector"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/config"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/logger"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/suez"
)

//go:embed templates/index.html
var indexTemplate string

var indexTmpl = template.Must(template.New("index").Parse(indexTemplate))

// HTTP server timeout constants
const (
	DefaultReadTimeout  = 15 * time.Second // Maximum duration for reading the entire request
	DefaultWriteTimeout = 15 * time.Second // Maximum duration before timing out writes of the response
	DefaultIdleTimeout  = 60 * time.Second // Maximum amount of time to wait for the next request
)

// indexPageData holds template data for the index page
type indexPageData struct {
	StatusClass     string
	StatusText      string
	LastScrape      string
	LastError       string
	RefreshInterval int
	Provider        string
	CounterID       string
	Uptodate        bool
	Attribution     string
	Sensors         []collector.SensorReading
}

// snapshotResponse is the body of /api/snapshot
type snapshotResponse struct {
	Snapshot *suez.Snapshot            `json:"snapshot"`
	Sensors  []collector.SensorReading `json:"sensors"`
}

// Server represents the HTTP server
type Server struct {
	server    *http.Server
	collector *collector.WaterCollector
	cfg       *config.Config
	logger    *logger.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, collector *collector.WaterCollector, log *logger.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler:      mux,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
		},
		collector: collector,
		cfg:       cfg,
		logger:    log,
	}

	// Register handlers
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/api/snapshot", s.handleSnapshot)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "address", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// handleIndex serves a simple landing page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	ready := s.collector.IsReady()
	statusClass := "not-ready"
	statusText := "Not Ready"
	if ready {
		statusClass = "ready"
		statusText = "Ready"
	}

	lastScrape := s.collector.LastScrapeTime()
	lastScrapeText := "Never"
	if !lastScrape.IsZero() {
		lastScrapeText = lastScrape.Format("2006-01-02 15:04:05 MST")
	}

	data := indexPageData{
		StatusClass:     statusClass,
		StatusText:      statusText,
		LastScrape:      lastScrapeText,
		RefreshInterval: s.cfg.RefreshInterval,
		Provider:        s.cfg.Provider,
		CounterID:       s.cfg.CounterID,
		Sensors:         s.collector.SensorReadings(),
	}
	if err := s.collector.LastError(); err != nil {
		data.LastError = err.Error()
	}
	if snap := s.collector.Snapshot(); snap != nil {
		data.CounterID = snap.CounterID
		data.Uptodate = snap.Uptodate
		data.Attribution = snap.Attribution
	}

	w.Header().Set("Content-Type", "text/html")
	if err := indexTmpl.Execute(w, data); err != nil {
		s.logger.Error("Failed to execute index template", "error", err)
	}
}

// handleHealth handles health check requests (always returns 200 for liveness)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"healthy"}`)); err != nil {
		s.logger.Error("Failed to write health response", "error", err)
	}
}

// handleReady handles readiness check requests (returns 200 only when data is loaded
// and the last update succeeded)
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := s.collector.LastError(); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		body, _ := json.Marshal(map[string]string{"status": "not ready", "error": err.Error()})
		if _, writeErr := w.Write(body); writeErr != nil {
			s.logger.Error("Failed to write ready response", "error", writeErr)
		}
		return
	}

	if !s.collector.IsReady() {
		w.WriteHeader(http.StatusServiceUnavailable)
		if _, err := w.Write([]byte(`{"status":"not ready","message":"waiting for initial data fetch"}`)); err != nil {
			s.logger.Error("Failed to write ready response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"ready"}`)); err != nil {
		s.logger.Error("Failed to write ready response", "error", err)
	}
}

// handleSnapshot returns the last successful snapshot and the held sensor values as JSON
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	snap := s.collector.Snapshot()
	if snap == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		if _, err := w.Write([]byte(`{"status":"not ready","message":"no snapshot yet"}`)); err != nil {
			s.logger.Error("Failed to write snapshot response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(snapshotResponse{Snapshot: snap, Sensors: s.collector.SensorReadings()}); err != nil {
		s.logger.Error("Failed to write snapshot response", "error", err)
	}
}
