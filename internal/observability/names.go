package observability

// Metric names (Prometheus / OpenTelemetry).
const (
	MetricNameRequestCount          = "trove_http_requests_total"
	MetricNameRequestDuration       = "trove_http_request_duration_seconds"
	MetricNameRequestBodyTooLarge   = "trove_request_body_too_large_total"
	MetricNameEmbeddingRequests     = "trove_embedding_requests_total"
	MetricNameEmbeddingDuration     = "trove_embedding_request_duration_seconds"
	MetricNameEmbeddingJobsEnqueued = "trove_embedding_jobs_enqueued_total"
	MetricNameCacheHits             = "trove_cache_hits_total"
	MetricNameCacheMisses           = "trove_cache_misses_total"
)

// Attribute keys.
const (
	AttrStatus      = "status"
	AttrCache       = "cache"
	AttrMethod      = "method"
	AttrRoute       = "route"
	AttrStatusClass = "status_class"
)

// AllowedEmbeddingStatuses for trove_embedding_requests_total and
// trove_embedding_request_duration_seconds.
var AllowedEmbeddingStatuses = map[string]bool{
	"success":      true,
	"error":        true,
	"rate_limited": true,
}

// AllowedCacheNames for trove_cache_hits_total / trove_cache_misses_total.
var AllowedCacheNames = map[string]bool{
	"lost_embeddings": true,
}

// NormalizeEmbeddingStatus returns status if allowed, otherwise "other".
func NormalizeEmbeddingStatus(status string) string {
	if AllowedEmbeddingStatuses[status] {
		return status
	}

	return "other"
}

// NormalizeCacheName returns name if allowed, otherwise "other".
func NormalizeCacheName(name string) string {
	if AllowedCacheNames[name] {
		return name
	}

	return "other"
}
