package normalize

import (
	"log/slog"
	"math"
)

// L2Norm computes the Euclidean norm of a vector.
func L2Norm(vec []float64) float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// L2Normalize returns a unit-length copy of vec. A zero or non-finite norm
// cannot define a direction; in that case the input is returned unchanged
// and a degradation warning is logged — callers downstream treat the
// all-zero case as "contributes nothing to cosine similarity".
func L2Normalize(vec []float64) []float64 {
	norm := L2Norm(vec)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		slog.Warn("l2 normalize skipped: degenerate norm", "norm", norm, "dims", len(vec))
		out := make([]float64, len(vec))
		copy(out, vec)
		return out
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = v / norm
	}
	return out
}

// L2NormalizeF32 is L2Normalize for float32 vectors, accumulating in
// float64 like the rest of the vector math.
func L2NormalizeF32(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		slog.Warn("l2 normalize skipped: degenerate norm", "norm", norm, "dims", len(vec))
		copy(out, vec)
		return out
	}
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
