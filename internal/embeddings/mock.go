package embeddings

import (
	"context"
	"crypto/sha256"

	pkgembeddings "github.com/trovehq/trove/pkg/embeddings"
)

// MockClient implements the Client interface for testing and for running
// without an inference service. It generates deterministic embeddings from
// a hash of the image bytes, so identical images always embed identically.
type MockClient struct {
	dimensions int
}

// NewMockClient creates a mock embedding client with 512 dimensions
// (matching CLIP ViT-B/32 output).
func NewMockClient() *MockClient {
	return &MockClient{dimensions: 512}
}

// NewMockClientWithDimensions creates a mock client with custom dimensions.
func NewMockClientWithDimensions(dimensions int) *MockClient {
	return &MockClient{dimensions: dimensions}
}

var _ Client = (*MockClient)(nil)

// EmbedImage generates a deterministic normalized embedding from the image bytes.
func (c *MockClient) EmbedImage(ctx context.Context, ref ImageRef) ([]float32, error) {
	data, err := ref.Bytes()
	if err != nil {
		return nil, err
	}

	hash := sha256.Sum256(data)
	embedding := make([]float32, c.dimensions)

	for i := range embedding {
		b := hash[i%len(hash)]
		// Map each hash byte into [-1, 1].
		embedding[i] = (float32(b) / 127.5) - 1.0
	}

	pkgembeddings.NormalizeL2(embedding)

	return embedding, nil
}
