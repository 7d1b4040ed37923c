package embeddings

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageRef_Bytes(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a} // PNG signature

	t.Run("raw bytes pass through", func(t *testing.T) {
		data, err := RefFromBytes(raw).Bytes()
		require.NoError(t, err)
		assert.Equal(t, raw, data)
	})

	t.Run("file path is read", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "item.png")
		require.NoError(t, os.WriteFile(path, raw, 0o600))

		data, err := ImageRef{Path: path}.Bytes()
		require.NoError(t, err)
		assert.Equal(t, raw, data)
	})

	t.Run("data-URI header is stripped", func(t *testing.T) {
		encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

		data, err := ImageRef{Encoded: encoded}.Bytes()
		require.NoError(t, err)
		assert.Equal(t, raw, data)
	})

	t.Run("bare base64 decodes", func(t *testing.T) {
		data, err := ImageRef{Encoded: base64.StdEncoding.EncodeToString(raw)}.Bytes()
		require.NoError(t, err)
		assert.Equal(t, raw, data)
	})

	t.Run("garbage payload returns ErrUnparsableImage", func(t *testing.T) {
		_, err := ImageRef{Encoded: "not base64 at all!!!"}.Bytes()
		assert.ErrorIs(t, err, ErrUnparsableImage)
	})

	t.Run("empty ref returns ErrUnparsableImage", func(t *testing.T) {
		_, err := ImageRef{}.Bytes()
		assert.ErrorIs(t, err, ErrUnparsableImage)
	})
}

func TestRefFromString(t *testing.T) {
	t.Run("data URI is classified as encoded", func(t *testing.T) {
		ref := RefFromString("data:image/jpeg;base64,AAAA")
		assert.NotEmpty(t, ref.Encoded)
		assert.Empty(t, ref.Path)
	})

	t.Run("existing file is classified as path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "photo.jpg")
		require.NoError(t, os.WriteFile(path, []byte("jpg"), 0o600))

		ref := RefFromString(path)
		assert.Equal(t, path, ref.Path)
	})

	t.Run("non-file string falls back to encoded", func(t *testing.T) {
		ref := RefFromString("QUJD")
		assert.Equal(t, "QUJD", ref.Encoded)
	})
}

func TestMockClient_Deterministic(t *testing.T) {
	client := NewMockClientWithDimensions(64)
	ctx := context.Background()

	first, err := client.EmbedImage(ctx, RefFromBytes([]byte("same image")))
	require.NoError(t, err)
	require.Len(t, first, 64)

	second, err := client.EmbedImage(ctx, RefFromBytes([]byte("same image")))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := client.EmbedImage(ctx, RefFromBytes([]byte("different image")))
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	// Mock embeddings are unit-length so cosine distances behave.
	var sumSquares float64
	for _, v := range first {
		sumSquares += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, sumSquares, 1e-5)
}
