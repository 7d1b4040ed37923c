// Package embeddings provides utilities for embedding vectors (e.g. L2 normalization).
package embeddings

import (
	"math"
)

// NormalizeL2 normalizes an embedding vector to unit length in-place.
// Cosine distance over unit vectors stays in [0, 2], which keeps the
// visual similarity threshold meaningful regardless of provider output scale.
func NormalizeL2(vector []float32) {
	var sumSquares float64

	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}

	if sumSquares == 0 {
		return
	}

	magnitude := math.Sqrt(sumSquares)

	for i := range vector {
		vector[i] = float32(float64(vector[i]) / magnitude)
	}
}
