package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/hazyhaar/stylevec/vectorize"
)

// BruteForceMaxRows is the deployment cutover: at or below this row count
// the exhaustive scan is fast enough that no ANN index is consulted. The
// scan stays available above the cutover as the correctness reference.
const BruteForceMaxRows = 10000

// Neighbor is one ranked result of a nearest-neighbor query.
type Neighbor struct {
	StyleProfileID string  `json:"styleProfileId"`
	RunID          string  `json:"runId"`
	SourceURL      string  `json:"sourceUrl"`
	Distance       float64 `json:"distance"` // 1 - cosine similarity
}

// FindNearest ranks stored combined vectors of the given kind by cosine
// distance to the reference profile's vector. The reference itself is
// excluded; ties keep insertion order (stable sort). An unknown reference
// id returns ErrNotFound — distinct from a known reference with no
// neighbors, which returns an empty slice.
func (s *Store) FindNearest(ctx context.Context, referenceID string, kind vectorize.Kind, limit int) ([]Neighbor, error) {
	if limit < 1 {
		return nil, fmt.Errorf("store: limit must be positive, got %d", limit)
	}
	dim, err := kind.CombinedDim()
	if err != nil {
		return nil, err
	}

	ref, err := s.CombinedVector(ctx, referenceID, kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, neighborQuery(kind))
	if err != nil {
		return nil, fmt.Errorf("store: scan %s vectors: %w", kind, err)
	}
	defer rows.Close()

	var out []Neighbor
	for rows.Next() {
		var n Neighbor
		var blob []byte
		if err := rows.Scan(&n.StyleProfileID, &n.RunID, &n.SourceURL, &blob); err != nil {
			return nil, err
		}
		if n.StyleProfileID == referenceID {
			continue
		}
		vec, err := DeserializeVector(blob, dim)
		if err != nil {
			return nil, fmt.Errorf("store: profile %s: %w", n.StyleProfileID, err)
		}
		n.Distance = CosineDistance(ref, vec)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func neighborQuery(kind vectorize.Kind) string {
	if kind == vectorize.KindCTA {
		return `SELECT p.id, c.run_id, c.source_url, v.combined
			FROM primary_cta_vectors v
			JOIN style_profiles p ON p.id = v.style_profile_id
			JOIN captures c ON c.id = p.capture_id`
	}
	return `SELECT p.id, c.run_id, c.source_url, p.combined
		FROM style_profiles p
		JOIN captures c ON c.id = p.capture_id`
}

// CombinedVector loads the stored combined vector for a profile id.
// ErrNotFound for unknown ids or a cta kind with no CTA row.
func (s *Store) CombinedVector(ctx context.Context, profileID string, kind vectorize.Kind) ([]float32, error) {
	dim, err := kind.CombinedDim()
	if err != nil {
		return nil, err
	}
	query := `SELECT combined FROM style_profiles WHERE id = ?`
	if kind == vectorize.KindCTA {
		query = `SELECT combined FROM primary_cta_vectors WHERE style_profile_id = ?`
	}
	var blob []byte
	switch err := s.DB.QueryRowContext(ctx, query, profileID).Scan(&blob); {
	case err == sql.ErrNoRows:
		return nil, fmt.Errorf("%w: %s vector for profile %s", ErrNotFound, kind, profileID)
	case err != nil:
		return nil, err
	}
	return DeserializeVector(blob, dim)
}

// ResolveNeighbors turns an ANN shortlist of candidate profile ids into
// ranked Neighbors with exact distances, re-ranking against the reference
// vector. Candidate ids without a stored row are skipped silently: the ANN
// index may lag behind deletes, and staleness must degrade recall, not
// fail the query.
func (s *Store) ResolveNeighbors(ctx context.Context, ref []float32, ids []string, kind vectorize.Kind) ([]Neighbor, error) {
	dim, err := kind.CombinedDim()
	if err != nil {
		return nil, err
	}
	query := `SELECT p.id, c.run_id, c.source_url, p.combined
		FROM style_profiles p
		JOIN captures c ON c.id = p.capture_id
		WHERE p.id = ?`
	if kind == vectorize.KindCTA {
		query = `SELECT p.id, c.run_id, c.source_url, v.combined
			FROM primary_cta_vectors v
			JOIN style_profiles p ON p.id = v.style_profile_id
			JOIN captures c ON c.id = p.capture_id
			WHERE p.id = ?`
	}

	out := make([]Neighbor, 0, len(ids))
	for _, id := range ids {
		var n Neighbor
		var blob []byte
		switch err := s.DB.QueryRowContext(ctx, query, id).Scan(
			&n.StyleProfileID, &n.RunID, &n.SourceURL, &blob); {
		case err == sql.ErrNoRows:
			continue
		case err != nil:
			return nil, err
		}
		vec, err := DeserializeVector(blob, dim)
		if err != nil {
			return nil, fmt.Errorf("store: profile %s: %w", id, err)
		}
		n.Distance = CosineDistance(ref, vec)
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}

// CountVectors returns the stored row count for a kind, used to decide
// whether a query crosses the brute-force cutover.
func (s *Store) CountVectors(ctx context.Context, kind vectorize.Kind) (int, error) {
	table := "style_profiles"
	if kind == vectorize.KindCTA {
		table = "primary_cta_vectors"
	}
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	return n, err
}
