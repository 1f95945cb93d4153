package store

import (
	"fmt"
	"math"
)

// SerializeVector converts a float32 slice to a little-endian byte blob.
func SerializeVector(vec []float32) []byte {
	blob := make([]byte, len(vec)*4)
	for i, v := range vec {
		bits := math.Float32bits(v)
		blob[i*4] = byte(bits)
		blob[i*4+1] = byte(bits >> 8)
		blob[i*4+2] = byte(bits >> 16)
		blob[i*4+3] = byte(bits >> 24)
	}
	return blob
}

// DeserializeVector converts a little-endian byte blob back to float32s.
// The blob must be exactly dim*4 bytes; anything else is row corruption,
// not a value to guess at.
func DeserializeVector(blob []byte, dim int) ([]float32, error) {
	if len(blob) != dim*4 {
		return nil, fmt.Errorf("store: vector blob is %d bytes, want %d (dim %d)", len(blob), dim*4, dim)
	}
	vec := make([]float32, dim)
	for i := 0; i < dim; i++ {
		bits := uint32(blob[i*4]) | uint32(blob[i*4+1])<<8 | uint32(blob[i*4+2])<<16 | uint32(blob[i*4+3])<<24
		vec[i] = math.Float32frombits(bits)
	}
	return vec, nil
}

// CosineDistance returns 1 - cosine similarity. Zero-norm vectors get the
// maximum distance 1 so degenerate rows sort last instead of erroring a
// whole query.
func CosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
