// Package embeddings provides image embedding clients for visual matching.
package embeddings

import "context"

// Client generates embedding vectors for item images.
type Client interface {
	// EmbedImage generates an embedding vector for the given image reference.
	// Returns a fixed-length slice of float32 values in cosine space.
	EmbedImage(ctx context.Context, ref ImageRef) ([]float32, error)
}
