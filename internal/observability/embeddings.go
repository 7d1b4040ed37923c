package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EmbeddingMetrics records embedding pipeline metrics (inference client, job queue).
// Methods accept ctx for future exemplar support.
type EmbeddingMetrics interface {
	RecordEmbedding(ctx context.Context, status string, duration time.Duration)
	RecordJobsEnqueued(ctx context.Context, count int64)
}

// embeddingMetrics implements EmbeddingMetrics.
type embeddingMetrics struct {
	requests     metric.Int64Counter
	duration     metric.Float64Histogram
	jobsEnqueued metric.Int64Counter
}

// NewEmbeddingMetrics creates EmbeddingMetrics. Returns (nil, nil) when meter is nil (metrics disabled).
func NewEmbeddingMetrics(meter metric.Meter) (EmbeddingMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	requests, err := meter.Int64Counter(
		MetricNameEmbeddingRequests,
		metric.WithDescription("Total embedding inference requests by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding requests counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		MetricNameEmbeddingDuration,
		metric.WithDescription("Embedding inference request duration (seconds)"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding duration histogram: %w", err)
	}

	jobsEnqueued, err := meter.Int64Counter(
		MetricNameEmbeddingJobsEnqueued,
		metric.WithDescription("Total embedding jobs enqueued"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding jobs enqueued counter: %w", err)
	}

	return &embeddingMetrics{
		requests:     requests,
		duration:     duration,
		jobsEnqueued: jobsEnqueued,
	}, nil
}

func (e *embeddingMetrics) RecordEmbedding(ctx context.Context, status string, duration time.Duration) {
	status = NormalizeEmbeddingStatus(status)
	e.requests.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStatus, status)))
	e.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String(AttrStatus, status)))
}

func (e *embeddingMetrics) RecordJobsEnqueued(ctx context.Context, count int64) {
	e.jobsEnqueued.Add(ctx, count)
}
