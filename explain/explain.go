// Package explain decomposes cosine similarity between two interpretable
// vectors into per-dimension contributions, so a similarity score can be
// answered with "similar because of these attributes".
package explain

import (
	"fmt"
	"math"
	"sort"
)

// Attribution names one dimension's role in the comparison. Weight is a raw
// contribution or difference value, deliberately not a percentage: signed
// contributions can be negative and do not sum to 1.
type Attribution struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
	Index   int     `json:"index"`
}

// Explanation is the full similarity breakdown between two vectors.
type Explanation struct {
	Cosine float64       `json:"cosine"`
	Top    []Attribution `json:"top"`    // largest signed contributions to the cosine
	Bottom []Attribution `json:"bottom"` // largest raw per-dimension differences
}

// Explain compares two vectors of identical dimensionality. u and v are the
// stored per-feature normalized values (pre-L2); Explain L2-normalizes
// internally so contributions sum exactly to the cosine, while the Bottom
// list ranks differences on the values as given.
//
// k is capped at the dimension count. Length mismatches and zero-norm
// inputs are errors: a zero vector has no direction to compare.
func Explain(u, v []float64, names []string, k int) (*Explanation, error) {
	if len(u) != len(v) {
		return nil, fmt.Errorf("explain: vector lengths differ: %d vs %d", len(u), len(v))
	}
	if len(names) != len(u) {
		return nil, fmt.Errorf("explain: %d feature names for %d dimensions", len(names), len(u))
	}
	if len(u) == 0 {
		return nil, fmt.Errorf("explain: empty vectors")
	}
	if k < 1 {
		return nil, fmt.Errorf("explain: k must be positive, got %d", k)
	}
	if k > len(u) {
		k = len(u)
	}

	un, err := unit(u, "first")
	if err != nil {
		return nil, err
	}
	vn, err := unit(v, "second")
	if err != nil {
		return nil, err
	}

	contrib := make([]Attribution, len(u))
	diff := make([]Attribution, len(u))
	var cosine float64
	for i := range un {
		c := un[i] * vn[i]
		cosine += c
		contrib[i] = Attribution{Feature: names[i], Weight: c, Index: i}
		diff[i] = Attribution{Feature: names[i], Weight: math.Abs(u[i] - v[i]), Index: i}
	}

	sort.SliceStable(contrib, func(a, b int) bool { return contrib[a].Weight > contrib[b].Weight })
	sort.SliceStable(diff, func(a, b int) bool { return diff[a].Weight > diff[b].Weight })

	return &Explanation{
		Cosine: cosine,
		Top:    contrib[:k],
		Bottom: diff[:k],
	}, nil
}

func unit(vec []float64, which string) ([]float64, error) {
	var ss float64
	for _, x := range vec {
		ss += x * x
	}
	norm := math.Sqrt(ss)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, fmt.Errorf("explain: %s vector has degenerate norm %g", which, norm)
	}
	out := make([]float64, len(vec))
	for i, x := range vec {
		out[i] = x / norm
	}
	return out, nil
}
