// Package normalize converts raw scalar feature values into a canonical
// [0,1] range using a declarative per-feature bounds table.
//
// The bounds table is built once at process start and validated eagerly
// against every feature name the vector builders reference; it is never
// mutated afterwards. A missing entry is a configuration error, not a
// runtime default.
//
// Usage:
//
//	table := normalize.NewTable([]normalize.Bounds{
//	    {Name: "typo_size_count", Strategy: normalize.LogMinMax, Min: 0, Max: 20},
//	})
//	if err := table.Validate(featureNames); err != nil { ... }
//	v, err := table.Normalize(7, "typo_size_count")
package normalize

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Strategy selects the scaling formula for a feature.
type Strategy string

const (
	// MinMax scales linearly between Min and Max, clamped to [0,1].
	MinMax Strategy = "minmax"

	// LogMinMax applies ln(x+1) to the value and both bounds before
	// min-max scaling. Used for skewed distributions such as counts.
	LogMinMax Strategy = "log-minmax"

	// Absolute uses the same math as MinMax but documents that the range
	// is a fixed theoretical one (e.g. lightness 0..100), not an
	// empirically tuned one.
	Absolute Strategy = "absolute"

	// Circular marks angular features. They are never scalar-normalized:
	// the caller must pre-encode them as a (cos, sin) pair. Asking the
	// table to normalize a circular feature is a usage error.
	Circular Strategy = "circular"
)

// Bounds declares the normalization contract for one named feature.
type Bounds struct {
	Name     string   `json:"name" yaml:"name"`
	Strategy Strategy `json:"strategy" yaml:"strategy"`
	Min      float64  `json:"min" yaml:"min"`
	Max      float64  `json:"max" yaml:"max"`
}

// Table is an immutable set of feature bounds keyed by feature name.
type Table struct {
	entries map[string]Bounds
}

// NewTable builds a Table from a bounds list. Later duplicates win.
func NewTable(bounds []Bounds) *Table {
	entries := make(map[string]Bounds, len(bounds))
	for _, b := range bounds {
		entries[b.Name] = b
	}
	return &Table{entries: entries}
}

// Lookup returns the bounds entry for a feature, if declared.
func (t *Table) Lookup(feature string) (Bounds, bool) {
	b, ok := t.entries[feature]
	return b, ok
}

// Len returns the number of declared features.
func (t *Table) Len() int { return len(t.entries) }

// ValidationError reports every configuration gap found by Validate in a
// single error, so missing bounds surface before any vector is built.
type ValidationError struct {
	Missing  []string // referenced features with no bounds entry
	BadEntry []string // entries with an unknown strategy or inverted range
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing bounds for %d feature(s): %s",
			len(e.Missing), strings.Join(e.Missing, ", ")))
	}
	if len(e.BadEntry) > 0 {
		parts = append(parts, fmt.Sprintf("invalid bounds for: %s", strings.Join(e.BadEntry, ", ")))
	}
	return "normalize: " + strings.Join(parts, "; ")
}

// Validate checks that every referenced feature has a usable bounds entry.
// All problems are collected and reported in one error; a nil return means
// the table fully covers the feature set.
func (t *Table) Validate(features []string) error {
	verr := &ValidationError{}
	for _, name := range features {
		b, ok := t.entries[name]
		if !ok {
			verr.Missing = append(verr.Missing, name)
			continue
		}
		switch b.Strategy {
		case MinMax, LogMinMax, Absolute, Circular:
		default:
			verr.BadEntry = append(verr.BadEntry, name+" (strategy "+string(b.Strategy)+")")
			continue
		}
		if b.Strategy != Circular && b.Max < b.Min {
			verr.BadEntry = append(verr.BadEntry, name+" (max < min)")
		}
	}
	if len(verr.Missing) == 0 && len(verr.BadEntry) == 0 {
		return nil
	}
	sort.Strings(verr.Missing)
	sort.Strings(verr.BadEntry)
	return verr
}

// Normalize scales a raw value into [0,1] according to the feature's
// declared strategy. Degenerate bounds (min == max) map every value to the
// midpoint 0.5 instead of dividing by zero.
func (t *Table) Normalize(value float64, feature string) (float64, error) {
	b, ok := t.entries[feature]
	if !ok {
		return 0, fmt.Errorf("normalize: no bounds declared for feature %q", feature)
	}

	switch b.Strategy {
	case MinMax, Absolute:
		return scale(value, b.Min, b.Max), nil

	case LogMinMax:
		// ln(x+1) keeps 0 at 0 and compresses heavy tails. Values at or
		// below -1 would hit ln(0) or a negative argument; clamp to the
		// lower bound instead.
		if value <= -1 {
			return 0, nil
		}
		lmin, lmax := b.Min, b.Max
		if lmin <= -1 {
			lmin = -1 + 1e-12
		}
		return scale(math.Log1p(value), math.Log1p(lmin), math.Log1p(lmax)), nil

	case Circular:
		return 0, fmt.Errorf("normalize: feature %q is circular and must be pre-encoded as (cos, sin)", feature)

	default:
		return 0, fmt.Errorf("normalize: feature %q has unknown strategy %q", feature, b.Strategy)
	}
}

// scale is clamped min-max scaling with midpoint fallback for a degenerate
// range.
func scale(v, min, max float64) float64 {
	if min == max {
		return 0.5
	}
	s := (v - min) / (max - min)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// Clamp01 clamps a value to [0,1]. Shared by callers that compute ratios
// directly rather than through a bounds entry.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
