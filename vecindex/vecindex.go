// Package vecindex wraps the horosvec ANN engine (Vamana+RaBitQ) as an
// optional acceleration layer over the brute-force scan.
//
// The index is advisory: it is populated on ingest and consulted only once
// a kind's row count crosses the brute-force cutover. The exhaustive scan
// in the store remains the correctness reference, so a stale or missing
// index degrades latency, never results.
//
// Usage:
//
//	idx, err := vecindex.NewFromDB(db, horosvec.Config{})
//	defer idx.Close()
//	idx.Add(profileID, combined)
//	matches, err := idx.Search(ref, 10)
package vecindex

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/horosvec"
)

// Index wraps a horosvec.Index keyed by style-profile id.
type Index struct {
	idx    *horosvec.Index
	logger *slog.Logger
}

// Match is one ANN result.
type Match struct {
	ProfileID string  `json:"profileId"`
	Score     float64 `json:"score"`
}

// NewFromDB creates or loads the ANN index in the given database. The
// index shares the vector store's SQLite file so there is one artifact to
// back up.
func NewFromDB(db *sql.DB, cfg horosvec.Config, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}
	idx, err := horosvec.New(db, cfg)
	if err != nil {
		return nil, fmt.Errorf("vecindex: open: %w", err)
	}
	return &Index{idx: idx, logger: logger}, nil
}

// Add inserts or re-inserts one profile's combined vector.
func (x *Index) Add(profileID string, vec []float32) error {
	if err := x.idx.Insert([][]float32{vec}, [][]byte{[]byte(profileID)}); err != nil {
		return fmt.Errorf("vecindex: insert %s: %w", profileID, err)
	}
	return nil
}

// Search returns up to topK matches for a query vector. The caller filters
// out the reference id; the index does not know which entry the query came
// from.
func (x *Index) Search(vec []float32, topK int) ([]Match, error) {
	results, err := x.idx.Search(vec, topK)
	if err != nil {
		return nil, fmt.Errorf("vecindex: search: %w", err)
	}
	out := make([]Match, len(results))
	for i, r := range results {
		out[i] = Match{ProfileID: string(r.ID), Score: float64(r.Score)}
	}
	return out, nil
}

// Count returns the number of indexed vectors.
func (x *Index) Count() int { return x.idx.Count() }

// NeedsRebuild reports whether enough churn accumulated that the graph
// should be rebuilt offline.
func (x *Index) NeedsRebuild() bool { return x.idx.NeedsRebuild() }

// Close flushes and closes the index.
func (x *Index) Close() error { return x.idx.Close() }
