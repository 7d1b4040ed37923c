package observability

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewMeterProvider_ExposesRecordedMetrics(t *testing.T) {
	ctx := context.Background()

	provider, handler, meter, err := NewMeterProvider(ctx, MeterProviderConfig{ServiceName: "trove-test"})
	if err != nil {
		t.Fatalf("NewMeterProvider: %v", err)
	}
	defer func() {
		if err := provider.Shutdown(ctx); err != nil {
			t.Errorf("provider shutdown: %v", err)
		}
	}()

	apiMetrics, err := NewAPIMetrics(meter)
	if err != nil {
		t.Fatalf("NewAPIMetrics: %v", err)
	}

	embeddingMetrics, err := NewEmbeddingMetrics(meter)
	if err != nil {
		t.Fatalf("NewEmbeddingMetrics: %v", err)
	}

	cacheMetrics, err := NewCacheMetrics(meter)
	if err != nil {
		t.Fatalf("NewCacheMetrics: %v", err)
	}

	apiMetrics.RecordRequest(ctx, "GET", "/v1/notifications", "2xx", 25*time.Millisecond)
	embeddingMetrics.RecordEmbedding(ctx, "success", 120*time.Millisecond)
	cacheMetrics.RecordHit(ctx, "lost_embeddings")
	cacheMetrics.RecordMiss(ctx, "lost_embeddings")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		MetricNameRequestCount,
		MetricNameEmbeddingRequests,
		MetricNameCacheHits,
		MetricNameCacheMisses,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNewAPIMetrics_NilMeter(t *testing.T) {
	m, err := NewAPIMetrics(nil)
	if err != nil {
		t.Fatalf("NewAPIMetrics(nil): %v", err)
	}
	if m != nil {
		t.Errorf("NewAPIMetrics(nil) = %v, want nil", m)
	}
}

func TestNormalizeEmbeddingStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"success", "success", "success"},
		{"error", "error", "error"},
		{"rate_limited", "rate_limited", "rate_limited"},
		{"other empty", "", "other"},
		{"other random", "timeout", "other"},
		{"other typo", "succes", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeEmbeddingStatus(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeEmbeddingStatus(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeCacheName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lost_embeddings", "lost_embeddings", "lost_embeddings"},
		{"other empty", "", "other"},
		{"other random", "sessions", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCacheName(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeCacheName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
