package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingAPIMetrics captures RecordRequest calls for assertions.
type recordingAPIMetrics struct {
	methods       []string
	routes        []string
	statusClasses []string
	durations     []time.Duration
	bodyTooLarge  int
}

func (r *recordingAPIMetrics) RecordRequest(_ context.Context, method, route, statusClass string, duration time.Duration) {
	r.methods = append(r.methods, method)
	r.routes = append(r.routes, route)
	r.statusClasses = append(r.statusClasses, statusClass)
	r.durations = append(r.durations, duration)
}

func (r *recordingAPIMetrics) RecordRequestBodyTooLarge(_ context.Context) {
	r.bodyTooLarge++
}

func TestMetricsMiddleware(t *testing.T) {
	t.Run("records method, normalized route, and status class", func(t *testing.T) {
		metrics := &recordingAPIMetrics{}

		handler := Metrics(metrics)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		req := httptest.NewRequest(http.MethodGet, "/v1/items/lost/550e8400-e29b-41d4-a716-446655440000", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.Len(t, metrics.methods, 1)
		assert.Equal(t, http.MethodGet, metrics.methods[0])
		assert.Equal(t, "/v1/items/lost/{id}", metrics.routes[0])
		assert.Equal(t, "4xx", metrics.statusClasses[0])
		assert.GreaterOrEqual(t, metrics.durations[0], time.Duration(0))
	})

	t.Run("defaults to 2xx when the handler never writes a header", func(t *testing.T) {
		metrics := &recordingAPIMetrics{}

		handler := Metrics(metrics)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.Len(t, metrics.statusClasses, 1)
		assert.Equal(t, "2xx", metrics.statusClasses[0])
		assert.Equal(t, "/health", metrics.routes[0])
	})

	t.Run("nil metrics passes through without recording", func(t *testing.T) {
		var called bool

		handler := Metrics(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			called = true
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.True(t, called)
	})
}

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"uuid suffix", "/v1/items/lost/550e8400-e29b-41d4-a716-446655440000", "/v1/items/lost/{id}"},
		{"uuid mid-path", "/v1/items/550e8400-e29b-41d4-a716-446655440000/images", "/v1/items/{id}/images"},
		{"no uuid", "/v1/notifications", "/v1/notifications"},
		{"root", "/", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeRoute(tt.path))
		})
	}
}

func TestStatusToClass(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{http.StatusOK, "2xx"},
		{http.StatusNoContent, "2xx"},
		{http.StatusMovedPermanently, "3xx"},
		{http.StatusBadRequest, "4xx"},
		{http.StatusInternalServerError, "5xx"},
		{http.StatusContinue, "1xx"},
		{42, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, statusToClass(tt.status), "status %d", tt.status)
	}
}

func TestMaxBody_RecordsBodyTooLarge(t *testing.T) {
	metrics := &recordingAPIMetrics{}

	handler := MaxBody(8, metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/items/lost", strings.NewReader(strings.Repeat("x", 64)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, 1, metrics.bodyTooLarge)
}
