package services

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClientCounter struct {
	clients int
}

func (s *stubClientCounter) ClientCount() int { return s.clients }

func newTestHealthService(t *testing.T) (*HealthService, *DataService) {
	t.Helper()
	cfg := testConfig(t)
	data := NewDataServiceWithLogger(cfg, testLogger())
	hs := NewHealthServiceWithBuildInfo("1.2.0", "2026-08-21T00:00:00Z", "abc123", cfg, data, testLogger())
	return hs, data
}

func TestHealthCheck(t *testing.T) {
	hs, _ := newTestHealthService(t)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.0", status.Version)
	assert.False(t, status.Timestamp.IsZero())
}

func TestReadinessCheck(t *testing.T) {
	t.Run("Not ready without hub", func(t *testing.T) {
		hs, _ := newTestHealthService(t)

		status := hs.ReadinessCheck(context.Background())
		assert.Equal(t, "not_ready", status.Status)

		ws, ok := status.Services["websocket"].(ServiceHealth)
		require.True(t, ok)
		assert.Equal(t, "not_ready", ws.Status)
	})

	t.Run("Ready with hub wired", func(t *testing.T) {
		hs, _ := newTestHealthService(t)
		hs.SetHub(&stubClientCounter{clients: 2})

		status := hs.ReadinessCheck(context.Background())
		assert.Equal(t, "ready", status.Status)

		for name, svc := range status.Services {
			sh, ok := svc.(ServiceHealth)
			require.True(t, ok, "service %s", name)
			assert.Equal(t, "ready", sh.Status, "service %s", name)
		}
	})

	t.Run("Missing data directory stays ready", func(t *testing.T) {
		hs, _ := newTestHealthService(t)
		hs.SetHub(&stubClientCounter{})

		status := hs.ReadinessCheck(context.Background())
		assert.Equal(t, "ready", status.Status)

		data, ok := status.Services["data"].(ServiceHealth)
		require.True(t, ok)
		assert.Contains(t, data.Message, "synthetic")
	})

	t.Run("Cache check reports counters", func(t *testing.T) {
		hs, data := newTestHealthService(t)
		hs.SetHub(&stubClientCounter{})
		_, err := data.Dataset(context.Background(), "calendar", 1, 0)
		require.NoError(t, err)

		status := hs.ReadinessCheck(context.Background())
		cache, ok := status.Services["cache"].(ServiceHealth)
		require.True(t, ok)
		assert.Equal(t, "ready", cache.Status)
		assert.Contains(t, cache.Message, "1 of 11")
	})
}

func TestLivenessCheck(t *testing.T) {
	hs, _ := newTestHealthService(t)

	status := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", status.Status)
	require.NotNil(t, status.Runtime)
	assert.Equal(t, runtime.Version(), status.Runtime["go_version"])
	assert.Contains(t, status.Runtime, "goroutines")
}

func TestVersionInfo(t *testing.T) {
	hs, _ := newTestHealthService(t)

	info := hs.Version()
	assert.Equal(t, "1.2.0", info["version"])
	assert.Equal(t, runtime.Version(), info["go_version"])
	assert.Equal(t, "2026-08-21T00:00:00Z", info["build_time"])
	assert.Equal(t, "abc123", info["build_id"])
	assert.Contains(t, info, "uptime")
}

func TestSystemStats(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.Data.Dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Data.Dir, "calendar.csv"), []byte("d,date\n"), 0644))

	data := NewDataServiceWithLogger(cfg, testLogger())
	hs := NewHealthService("1.2.0", cfg, data, testLogger())
	hs.SetHub(&stubClientCounter{clients: 3})

	stats, err := hs.SystemStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalFiles)
	assert.Greater(t, stats.TotalSizeBytes, int64(0))
	assert.Equal(t, 3, stats.WebSocketClients)
	assert.Equal(t, 11, stats.Datasets)
	assert.Equal(t, runtime.Version(), stats.GoVersion)
}

func TestGetDetailedHealth(t *testing.T) {
	hs, _ := newTestHealthService(t)
	hs.SetHub(&stubClientCounter{})

	detail := hs.GetDetailedHealth(context.Background())
	assert.Contains(t, detail, "health")
	assert.Contains(t, detail, "readiness")
	assert.Contains(t, detail, "liveness")
	assert.Contains(t, detail, "stats")
}
