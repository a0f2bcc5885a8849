package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"demandcli/internal/dataset"
)

// CacheStatsProvider exposes the dataset cache counters.
type CacheStatsProvider interface {
	CacheStats() dataset.CacheStats
	DatasetKeys() []string
}

// ClientCounter reports the number of connected WebSocket clients.
type ClientCounter interface {
	ClientCount() int
}

// MetricsHandler serves an operational snapshot of the data layer: cache
// hit/miss counters and connected clients. Prometheus exposition lives at
// the root /metrics endpoint; this is the JSON view the dashboard polls.
type MetricsHandler struct {
	data   CacheStatsProvider
	hub    ClientCounter
	logger *slog.Logger
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(data CacheStatsProvider, hub ClientCounter, logger *slog.Logger) *MetricsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetricsHandler{
		data:   data,
		hub:    hub,
		logger: logger.With(slog.String("handler", "metrics")),
	}
}

// Routes sets up the metrics routes.
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetMetrics)
	r.Get("/cache", h.GetCacheStats)
	return r
}

// GetMetrics handles GET /api/metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	stats := h.data.CacheStats()

	clients := 0
	if h.hub != nil {
		clients = h.hub.ClientCount()
	}

	render.JSON(w, r, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"metrics": map[string]interface{}{
			"datasets_registered": len(h.data.DatasetKeys()),
			"cache":               stats,
			"websocket_clients":   clients,
		},
	})
}

// GetCacheStats handles GET /api/metrics/cache
func (h *MetricsHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "ok",
		"data":   h.data.CacheStats(),
	})
}
