// ABOUTME: Binary codec between float32 vectors and fixed-width storage blobs
// ABOUTME: Vectors are D little-endian 4-byte floats, total blob length 4*D
package vector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// DefaultDimension is the process-wide vector dimension unless overridden by
// configuration.
const DefaultDimension = 384

var (
	// ErrMalformedBlob indicates a stored blob whose length is not 4*D
	ErrMalformedBlob = errors.New("malformed vector blob")
	// ErrDimensionMismatch indicates a vector whose length is not D
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Codec converts between vectors of a fixed dimension and their binary form
type Codec struct {
	dim int
}

// NewCodec creates a Codec for the given dimension
func NewCodec(dim int) (*Codec, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid vector dimension %d", dim)
	}
	return &Codec{dim: dim}, nil
}

// Dimension returns the codec's fixed vector dimension
func (c *Codec) Dimension() int {
	return c.dim
}

// BlobSize returns the exact byte length of every encoded vector
func (c *Codec) BlobSize() int {
	return c.dim * 4
}

// Encode serializes a vector as little-endian 4-byte floats. No compression,
// no header; length alone identifies validity.
func (c *Codec) Encode(v []float32) ([]byte, error) {
	if len(v) != c.dim {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, c.dim, len(v))
	}
	blob := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(f))
	}
	return blob, nil
}

// Decode deserializes a blob back into a vector. Fails with ErrMalformedBlob
// if the length is not a multiple of 4 or does not equal 4*D. Round-trip with
// Encode is bit-exact.
func (c *Codec) Decode(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of 4", ErrMalformedBlob, len(blob))
	}
	if len(blob) != c.BlobSize() {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformedBlob, c.BlobSize(), len(blob))
	}
	v := make([]float32, c.dim)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return v, nil
}

// CosineDistance returns 1 - cosine similarity between two vectors. Lower is
// more similar. Mismatched or zero-norm vectors yield the maximum distance.
func CosineDistance(a, b []float32) float64 {
	return 1.0 - CosineSimilarity(a, b)
}

// CosineSimilarity calculates cosine similarity between two vectors
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
