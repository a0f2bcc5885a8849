package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demandcli/internal/shared/testutil"
)

func TestNewErrorHandler(t *testing.T) {
	tests := []struct {
		name         string
		includeStack bool
	}{
		{"with stack traces", true},
		{"without stack traces", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)

			handler := NewErrorHandler(logger, tt.includeStack)

			assert.NotNil(t, handler)
			assert.Equal(t, tt.includeStack, handler.includeStack)
			assert.NotNil(t, handler.logger)
		})
	}
}

func TestErrorHandlerHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "context canceled",
			err:        context.Canceled,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "api error maps by code",
			err:        ErrDatasetNotFound,
			wantStatus: http.StatusNotFound,
			wantType:   TypeDatasetUnknown,
		},
		{
			name:       "wrapped api error unwraps",
			err:        fmt.Errorf("while serving: %w", ExportTooLargeError(200000, 100000)),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypeExportTooLarge,
		},
		{
			name:       "unknown dataset by message",
			err:        errors.New(`unknown dataset "phases"`),
			wantStatus: http.StatusNotFound,
			wantType:   TypeDatasetUnknown,
		},
		{
			name:       "unknown pattern by message",
			err:        errors.New(`unknown pattern type "lunar"`),
			wantStatus: http.StatusNotFound,
			wantType:   TypePatternUnknown,
		},
		{
			name:       "generic not found by message",
			err:        errors.New("store not found"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "rate limit by message",
			err:        errors.New("rate limit exceeded for client"),
			wantStatus: http.StatusTooManyRequests,
			wantType:   TypeRateLimit,
		},
		{
			name:       "opaque error becomes internal",
			err:        errors.New("database on fire"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/datasets/calendar", nil)

			handler.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var problem map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, tt.wantType, problem["type"])
			assert.Equal(t, float64(tt.wantStatus), problem["status"])
			assert.Equal(t, "/api/datasets/calendar", problem["instance"])
			assert.Contains(t, problem, "trace_id")
		})
	}
}

func TestErrorHandlerNilError(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	errHandler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)

	errHandler.HandleError(rec, req, nil)

	assert.Equal(t, http.StatusOK, rec.Code, "nil error writes nothing")
	assert.Zero(t, rec.Body.Len())
	assert.Zero(t, handler.Count())
}

func TestErrorHandlerIncludesStack(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	t.Run("development includes stack", func(t *testing.T) {
		handler := NewErrorHandler(logger, true)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)

		handler.HandleError(rec, req, errors.New("boom"))

		var problem map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
		assert.Contains(t, problem, "stack")
	})

	t.Run("production omits stack", func(t *testing.T) {
		handler := NewErrorHandler(logger, false)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)

		handler.HandleError(rec, req, errors.New("boom"))

		var problem map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
		assert.NotContains(t, problem, "stack")
	})
}

func TestErrorHandlerHandlePanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/datasets/refresh", nil)

	handler.HandlePanic(rec, req, "runtime gone wrong")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, TypeInternal, problem["type"])
	assert.True(t, logs.ContainsMessage("panic recovered"))
}

func TestErrorHandlerNotFound(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)

	handler.NotFound(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, TypeNotFound, problem["type"])
	assert.Equal(t, "/api/nope", problem["instance"])
}

func TestErrorHandlerMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/summary", nil)

	handler.MethodNotAllowed(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Contains(t, problem["detail"], "DELETE")
}

func TestRecoveryMiddleware(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)

	RecoveryMiddleware(handler)(panicky).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, logs.ContainsMessage("panic recovered"))
}

func TestErrorMiddlewareLogsRequest(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)
	mw := NewErrorMiddleware(handler, logger)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/catalog/stores", nil)

	mw.Handler(ok).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, logs.ContainsMessage("http request"))
}
