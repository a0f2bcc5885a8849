package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demandcli/internal/config"
	"demandcli/internal/infrastructure"
	"demandcli/internal/services"
	ws "demandcli/internal/websocket"
)

// newTestApplication wires an application by hand: no environment, no
// exporters, artifact directories pointing at empty temp dirs so every
// load takes the synthetic branch.
func newTestApplication(t *testing.T) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.Data.Dir = t.TempDir()
	cfg.Data.ResultsDir = t.TempDir()
	cfg.Data.WarmCache = false

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:    "demand-pulse-test",
		ServiceVersion: config.AppVersion,
		Environment:    "test",
		TraceExporter:  "none",
		MetricExporter: "none",
		EnableTracing:  false,
		EnableMetrics:  false,
	}, logger)
	require.NoError(t, err)

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
	}
	require.NoError(t, app.initializeServices())
	app.setupRouter()
	app.createServer()

	t.Cleanup(app.Hub.Stop)

	return app
}

func decodeJSONBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestApplicationRoutes(t *testing.T) {
	app := newTestApplication(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "health", method: http.MethodGet, path: "/api/health", wantStatus: http.StatusOK},
		{name: "liveness", method: http.MethodGet, path: "/api/health/live", wantStatus: http.StatusOK},
		{name: "readiness", method: http.MethodGet, path: "/api/health/ready", wantStatus: http.StatusOK},
		{name: "version", method: http.MethodGet, path: "/api/version", wantStatus: http.StatusOK},
		{name: "metrics snapshot", method: http.MethodGet, path: "/api/metrics", wantStatus: http.StatusOK},
		{name: "cache stats", method: http.MethodGet, path: "/api/metrics/cache", wantStatus: http.StatusOK},
		{name: "dataset", method: http.MethodGet, path: "/api/datasets/calendar", wantStatus: http.StatusOK},
		{name: "refresh", method: http.MethodPost, path: "/api/datasets/refresh", wantStatus: http.StatusOK},
		{name: "summary", method: http.MethodGet, path: "/api/summary", wantStatus: http.StatusOK},
		{name: "stores", method: http.MethodGet, path: "/api/catalog/stores", wantStatus: http.StatusOK},
		{name: "products", method: http.MethodGet, path: "/api/catalog/products", wantStatus: http.StatusOK},
		{name: "date range", method: http.MethodGet, path: "/api/catalog/date-range", wantStatus: http.StatusOK},
		{name: "models", method: http.MethodGet, path: "/api/models", wantStatus: http.StatusOK},
		{name: "best models", method: http.MethodGet, path: "/api/models/best", wantStatus: http.StatusOK},
		{name: "tests", method: http.MethodGet, path: "/api/tests", wantStatus: http.StatusOK},
		{name: "patterns", method: http.MethodGet, path: "/api/patterns/seasonal", wantStatus: http.StatusOK},
		{name: "unknown dataset", method: http.MethodGet, path: "/api/datasets/nonsense", wantStatus: http.StatusNotFound},
		{name: "unknown pattern", method: http.MethodGet, path: "/api/patterns/nonsense", wantStatus: http.StatusNotFound},
		{name: "unknown route", method: http.MethodGet, path: "/api/nonsense", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code, "body: %s", rec.Body.String())
		})
	}
}

func TestApplicationDatasetProvenance(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/test_results", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSONBody(t, rec)
	assert.Equal(t, "success", body["status"])

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	provenance, ok := data["provenance"].(map[string]interface{})
	require.True(t, ok)

	// No artifact files exist, so the loader must have synthesized.
	assert.Equal(t, "synthetic", provenance["source"])
	assert.Equal(t, "source_unavailable", provenance["status"])
}

func TestApplicationProblemResponse(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/nonsense", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")

	body := decodeJSONBody(t, rec)
	assert.NotEmpty(t, body["title"])
	assert.EqualValues(t, http.StatusNotFound, body["status"])
}

func TestApplicationExport(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/export/test_results?format=csv", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "synthetic", rec.Header().Get("X-Data-Source"))
	assert.Contains(t, rec.Body.String(), "test_name")
}

func TestApplicationWebSocketRefreshBroadcast(t *testing.T) {
	app := newTestApplication(t)

	srv := httptest.NewServer(app.Router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Registration happens on the hub goroutine.
	require.Eventually(t, func() bool {
		return app.Hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	app.DataService.Refresh(context.Background())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		if strings.Contains(string(msg), "data:refresh") {
			break
		}
	}
}

func TestApplicationStop(t *testing.T) {
	app := newTestApplication(t)

	require.NoError(t, app.Stop(context.Background()))
}

func TestApplicationServiceWiring(t *testing.T) {
	app := newTestApplication(t)

	require.NotNil(t, app.DataService)
	require.NotNil(t, app.HealthService)
	require.NotNil(t, app.Hub)
	require.NotNil(t, app.Router)
	require.NotNil(t, app.Server)

	// The hub is wired as the data service broadcaster.
	var _ services.Broadcaster = app.Hub
	var _ *ws.Hub = app.Hub

	assert.Len(t, app.DataService.DatasetKeys(), 11)
}
