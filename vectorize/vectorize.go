// Package vectorize builds the fixed-dimension feature vectors for a
// captured page: the page-level global style vector and the primary
// call-to-action vector.
//
// Each builder is a pure function over the typed token/report documents
// (plus optional raw layout nodes for the layout-derived features). The
// feature ordering is part of the storage and explanation contract:
// consumers assume positional correspondence between feature names and
// vector dimensions, so reordering or resizing a feature list is a breaking
// schema change that requires a new vector-kind generation and a column
// migration.
package vectorize

import (
	"fmt"

	"github.com/hazyhaar/stylevec/normalize"
)

// Dimension constants for the current vector-kind generation. Earlier
// generations used different shapes (64D interpretable, 192D combined);
// exactly one generation is compiled in, never several at once.
const (
	// GlobalInterpretableDim is the page-level interpretable vector length.
	GlobalInterpretableDim = 55

	// CTAInterpretableDim is the primary-CTA interpretable vector length.
	CTAInterpretableDim = 26

	// EmbeddingDim is the visual-embedding section length. A run without
	// an embedding stores a zero section of this exact size so combined
	// dimensionality never varies.
	EmbeddingDim = 256

	// GlobalCombinedDim = GlobalInterpretableDim + EmbeddingDim.
	GlobalCombinedDim = GlobalInterpretableDim + EmbeddingDim

	// CTACombinedDim = CTAInterpretableDim + EmbeddingDim.
	CTACombinedDim = CTAInterpretableDim + EmbeddingDim
)

// Kind names a vector family. The kind selects the feature ordering, the
// dimension constants and the storage column.
type Kind string

const (
	KindGlobal Kind = "global"
	KindCTA    Kind = "cta"
)

// InterpretableDim returns the interpretable length for a kind.
func (k Kind) InterpretableDim() (int, error) {
	switch k {
	case KindGlobal:
		return GlobalInterpretableDim, nil
	case KindCTA:
		return CTAInterpretableDim, nil
	}
	return 0, fmt.Errorf("vectorize: unknown vector kind %q", k)
}

// CombinedDim returns the combined length for a kind.
func (k Kind) CombinedDim() (int, error) {
	switch k {
	case KindGlobal:
		return GlobalCombinedDim, nil
	case KindCTA:
		return CTACombinedDim, nil
	}
	return 0, fmt.Errorf("vectorize: unknown vector kind %q", k)
}

// FeatureNames returns the fixed feature ordering for a kind.
func (k Kind) FeatureNames() ([]string, error) {
	switch k {
	case KindGlobal:
		return GlobalFeatureNames(), nil
	case KindCTA:
		return CTAFeatureNames(), nil
	}
	return nil, fmt.Errorf("vectorize: unknown vector kind %q", k)
}

// NamedVector is an ordered (featureName, value) sequence of a declared
// fixed length. Values are per-feature normalized ([0,1], or [-1,1] for
// the circular cos/sin pairs) but not yet L2-normalized.
type NamedVector struct {
	Kind  Kind
	Names []string
	Raw   []float64
}

// Combined L2-normalizes the interpretable section and an embedding
// section independently, then concatenates them into the fixed-length
// combined vector. A nil embedding becomes a zero section of EmbeddingDim
// (zero contributes nothing to any dot product); a non-nil embedding of
// the wrong length is a precondition error, never silently truncated or
// padded.
func (v *NamedVector) Combined(embedding []float32) ([]float32, error) {
	wantInterp, err := v.Kind.InterpretableDim()
	if err != nil {
		return nil, err
	}
	if len(v.Raw) != wantInterp {
		return nil, fmt.Errorf("vectorize: %s interpretable vector has %d dims, schema requires %d",
			v.Kind, len(v.Raw), wantInterp)
	}

	if embedding == nil {
		embedding = make([]float32, EmbeddingDim)
	} else if len(embedding) != EmbeddingDim {
		return nil, fmt.Errorf("vectorize: embedding has %d dims, schema requires %d",
			len(embedding), EmbeddingDim)
	}

	interp := normalize.L2Normalize(v.Raw)
	emb := normalize.L2NormalizeF32(embedding)

	wantCombined, _ := v.Kind.CombinedDim()
	out := make([]float32, 0, wantCombined)
	for _, x := range interp {
		out = append(out, float32(x))
	}
	out = append(out, emb...)
	if len(out) != wantCombined {
		return nil, fmt.Errorf("vectorize: %s combined vector has %d dims, schema requires %d",
			v.Kind, len(out), wantCombined)
	}
	return out, nil
}
