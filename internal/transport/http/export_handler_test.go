package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "demandcli/internal/errors"
	"demandcli/internal/exporter"
	"demandcli/internal/services"
	"demandcli/pkg/contracts/domain"
)

func exportFixtureFrame(t *testing.T, rows int) *domain.Frame {
	t.Helper()
	frame := domain.NewFrame("test_name", "status", "score")
	for i := 0; i < rows; i++ {
		require.NoError(t, frame.AppendRow([]string{
			fmt.Sprintf("test_%d", i+1), "PASS", "0.9",
		}))
	}
	return frame
}

func newExportHandler(service DataServiceInterface, limit int) *ExportHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	exp := exporter.NewDatasetExporter(limit, logger)
	return NewExportHandler(service, exp, logger, apierrors.NewErrorHandler(logger, false))
}

func TestExportHandlerCSV(t *testing.T) {
	service := &stubDataService{
		frame:      exportFixtureFrame(t, 2),
		provenance: services.Provenance{Source: "real", Status: "ok"},
	}
	h := newExportHandler(service, 100)

	req := httptest.NewRequest(http.MethodGet, "/test_results?format=csv", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "test_results")
	assert.Equal(t, "real", rec.Header().Get("X-Data-Source"))
	assert.Contains(t, rec.Body.String(), "test_name,status,score")
	assert.Contains(t, rec.Body.String(), "test_2,PASS,0.9")
}

func TestExportHandlerXLSX(t *testing.T) {
	service := &stubDataService{
		frame:      exportFixtureFrame(t, 1),
		provenance: services.Provenance{Source: "synthetic", Status: "source_unavailable"},
	}
	h := newExportHandler(service, 100)

	req := httptest.NewRequest(http.MethodGet, "/test_results?format=xlsx", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Equal(t, "synthetic", rec.Header().Get("X-Data-Source"))
	assert.NotZero(t, rec.Body.Len())
}

func TestExportHandlerDefaultsToCSV(t *testing.T) {
	service := &stubDataService{frame: exportFixtureFrame(t, 1)}
	h := newExportHandler(service, 100)

	req := httptest.NewRequest(http.MethodGet, "/test_results", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
}

func TestExportHandlerErrors(t *testing.T) {
	tests := []struct {
		name       string
		service    *stubDataService
		limit      int
		path       string
		wantStatus int
	}{
		{
			name:       "unknown dataset",
			service:    &stubDataService{frameErr: fmt.Errorf("%w: nonsense", services.ErrUnknownDataset)},
			limit:      100,
			path:       "/nonsense?format=csv",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unsupported format",
			service:    &stubDataService{frame: exportFixtureFrame(t, 1)},
			limit:      100,
			path:       "/test_results?format=pdf",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "row cap exceeded",
			service:    &stubDataService{frame: exportFixtureFrame(t, 5)},
			limit:      2,
			path:       "/test_results?format=csv",
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newExportHandler(tt.service, tt.limit)
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, "body: %s", rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
		})
	}
}
