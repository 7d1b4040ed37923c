package embeddings

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/trovehq/trove/internal/observability"
	pkgembeddings "github.com/trovehq/trove/pkg/embeddings"
)

// ClipClientOptions configures the CLIP inference client.
type ClipClientOptions struct {
	// BaseURL is the base URL of the CLIP inference service.
	BaseURL string
	// RetryMax is the maximum number of retries (default: 3)
	RetryMax int
	// Timeout is the HTTP client timeout (default: 30 seconds)
	Timeout time.Duration
	// RateLimiter optionally caps requests to the inference service.
	RateLimiter *rate.Limiter
	// Metrics optionally records inference request counts and durations.
	Metrics observability.EmbeddingMetrics
}

// ClipClient implements Client against a CLIP inference service speaking
// JSON over HTTP (POST /v1/embeddings/image with a base64 image payload).
// The underlying HTTP client is constructed once on first use.
type ClipClient struct {
	opts ClipClientOptions

	initOnce   sync.Once
	httpClient *retryablehttp.Client
}

var _ Client = (*ClipClient)(nil)

// NewClipClient creates a CLIP inference client. Panics if BaseURL is empty.
func NewClipClient(opts ClipClientOptions) *ClipClient {
	if opts.BaseURL == "" {
		panic("embeddings: CLIP base URL cannot be empty")
	}

	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	if opts.RetryMax == 0 {
		opts.RetryMax = 3
	}

	return &ClipClient{opts: opts}
}

// client returns the lazily constructed HTTP client. Construction happens at
// most once; concurrent first callers block until it completes.
func (c *ClipClient) client() *retryablehttp.Client {
	c.initOnce.Do(func() {
		retryClient := retryablehttp.NewClient()
		retryClient.RetryMax = c.opts.RetryMax
		retryClient.HTTPClient.Timeout = c.opts.Timeout
		retryClient.Logger = nil

		c.httpClient = retryClient
	})

	return c.httpClient
}

type embedImageRequest struct {
	Image string `json:"image"` // base64-encoded image bytes
}

type embedImageResponse struct {
	Embedding []float32 `json:"embedding"`
}

// record reports the request outcome to the configured metrics, if any.
func (c *ClipClient) record(ctx context.Context, status string, start time.Time) {
	if c.opts.Metrics == nil {
		return
	}

	c.opts.Metrics.RecordEmbedding(ctx, status, time.Since(start))
}

// EmbedImage resolves the image reference to bytes, sends it to the
// inference service, and returns the L2-normalized embedding.
func (c *ClipClient) EmbedImage(ctx context.Context, ref ImageRef) ([]float32, error) {
	data, err := ref.Bytes()
	if err != nil {
		return nil, err
	}

	start := time.Now()

	if c.opts.RateLimiter != nil {
		if err := c.opts.RateLimiter.Wait(ctx); err != nil {
			c.record(ctx, "rate_limited", start)

			return nil, fmt.Errorf("embedding rate limit: %w", err)
		}
	}

	body, err := json.Marshal(embedImageRequest{
		Image: base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(
		ctx, http.MethodPost, c.opts.BaseURL+"/v1/embeddings/image", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client().Do(req)
	if err != nil {
		c.record(ctx, "error", start)

		return nil, fmt.Errorf("embed image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.record(ctx, "error", start)

		return nil, fmt.Errorf("embed image: unexpected status %d: %s", resp.StatusCode, respBody)
	}

	var out embedImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.record(ctx, "error", start)

		return nil, fmt.Errorf("decode embed response: %w", err)
	}

	if len(out.Embedding) == 0 {
		c.record(ctx, "error", start)

		return nil, fmt.Errorf("embed image: empty embedding returned")
	}

	pkgembeddings.NormalizeL2(out.Embedding)
	c.record(ctx, "success", start)

	return out.Embedding, nil
}
