package embeddings

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnparsableImage is returned when an image reference cannot be resolved
// to image bytes in any supported form.
var ErrUnparsableImage = errors.New("image reference could not be parsed")

// ImageRef is a reference to an image in one of three forms: a filesystem
// path, raw bytes, or a base64-encoded string optionally prefixed with a
// data-URI header. Exactly one field should be set.
type ImageRef struct {
	Path    string
	Data    []byte
	Encoded string
}

// RefFromBytes wraps raw image bytes.
func RefFromBytes(data []byte) ImageRef {
	return ImageRef{Data: data}
}

// RefFromString classifies a string image reference as stored on item records:
// a data-URI or base64 payload, or a filesystem path. Bare base64 without a
// header is only assumed when the string is not an existing file.
func RefFromString(s string) ImageRef {
	if strings.HasPrefix(s, "data:image") || strings.Contains(s, ";base64,") {
		return ImageRef{Encoded: s}
	}

	if _, err := os.Stat(s); err == nil {
		return ImageRef{Path: s}
	}

	return ImageRef{Encoded: s}
}

// Bytes resolves the reference to raw image bytes.
func (r ImageRef) Bytes() ([]byte, error) {
	switch {
	case len(r.Data) > 0:
		return r.Data, nil

	case r.Path != "":
		data, err := os.ReadFile(r.Path)
		if err != nil {
			return nil, fmt.Errorf("read image file: %w", err)
		}

		return data, nil

	case r.Encoded != "":
		encoded := r.Encoded
		// Strip a data-URI header ("data:image/png;base64,...") when present.
		if idx := strings.IndexByte(encoded, ','); idx >= 0 && strings.Contains(encoded[:idx], ";base64") {
			encoded = encoded[idx+1:]
		}

		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnparsableImage, err)
		}

		return data, nil

	default:
		return nil, ErrUnparsableImage
	}
}

// IsZero reports whether the reference is empty.
func (r ImageRef) IsZero() bool {
	return r.Path == "" && len(r.Data) == 0 && r.Encoded == ""
}
