package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hazyhaar/stylevec/vectorize"
)

// RunView is the read model for one stored run: the capture row, the
// profile summary and the optional CTA report columns. Vector blobs are
// not included; they are fetched through the vector accessors.
type RunView struct {
	Capture Capture     `json:"capture"`
	Profile ProfileView `json:"profile"`
	CTA     *CTAView    `json:"cta,omitempty"`
}

// ProfileView is the non-vector projection of a style profile.
type ProfileView struct {
	ID               string  `json:"id"`
	ContrastPassRate float64 `json:"contrastPassRate"`
	BrandTone        string  `json:"brandTone"`
	Maturity         string  `json:"maturity"`
	ConsistencyScore float64 `json:"consistencyScore"`
	EmbeddingModel   string  `json:"embeddingModel"`
	Degraded         bool    `json:"degraded"`
	UpdatedAt        int64   `json:"updatedAt"`
}

// CTAView is the non-vector projection of a primary CTA row.
type CTAView struct {
	ID            string  `json:"id"`
	Confidence    float64 `json:"confidence"`
	ContrastRatio float64 `json:"contrastRatio"`
	Tier          string  `json:"tier"`
	MinTapSide    float64 `json:"minTapSide"`
	Prominence    float64 `json:"prominence"`
}

// GetRun loads the full read model for a run id. ErrNotFound when the run
// was never ingested.
func (s *Store) GetRun(ctx context.Context, runID string) (*RunView, error) {
	var v RunView
	err := s.DB.QueryRowContext(ctx,
		`SELECT c.id, c.run_id, c.source_url, c.viewport_w, c.viewport_h,
		c.captured_at, c.dom_uri, c.css_uri, c.screenshot_uri, c.created_at, c.updated_at,
		p.id, p.contrast_pass_rate, p.brand_tone, p.maturity, p.consistency_score,
		p.embedding_model, p.degraded, p.updated_at
		FROM captures c
		JOIN style_profiles p ON p.capture_id = c.id
		WHERE c.run_id = ?`, runID).Scan(
		&v.Capture.ID, &v.Capture.RunID, &v.Capture.SourceURL,
		&v.Capture.ViewportW, &v.Capture.ViewportH, &v.Capture.CapturedAt,
		&v.Capture.DomURI, &v.Capture.CSSURI, &v.Capture.ScreenshotURI,
		&v.Capture.CreatedAt, &v.Capture.UpdatedAt,
		&v.Profile.ID, &v.Profile.ContrastPassRate, &v.Profile.BrandTone,
		&v.Profile.Maturity, &v.Profile.ConsistencyScore,
		&v.Profile.EmbeddingModel, &v.Profile.Degraded, &v.Profile.UpdatedAt,
	)
	switch {
	case err == sql.ErrNoRows:
		return nil, fmt.Errorf("%w: run %s", ErrNotFound, runID)
	case err != nil:
		return nil, err
	}

	var cta CTAView
	err = s.DB.QueryRowContext(ctx,
		`SELECT id, confidence, contrast_ratio, tier, min_tap_side, prominence
		FROM primary_cta_vectors WHERE style_profile_id = ?`, v.Profile.ID).Scan(
		&cta.ID, &cta.Confidence, &cta.ContrastRatio, &cta.Tier, &cta.MinTapSide, &cta.Prominence,
	)
	switch {
	case err == sql.ErrNoRows:
		// No CTA is a valid page shape.
	case err != nil:
		return nil, err
	default:
		v.CTA = &cta
	}
	return &v, nil
}

// InterpretableVector loads the stored per-feature normalized (pre-L2)
// interpretable vector for a profile as float64s, the form the explainer
// consumes. ErrNotFound for unknown ids or a cta kind with no CTA row.
func (s *Store) InterpretableVector(ctx context.Context, profileID string, kind vectorize.Kind) ([]float64, error) {
	dim, err := kind.InterpretableDim()
	if err != nil {
		return nil, err
	}
	query := `SELECT interpretable FROM style_profiles WHERE id = ?`
	if kind == vectorize.KindCTA {
		query = `SELECT interpretable FROM primary_cta_vectors WHERE style_profile_id = ?`
	}
	var blob []byte
	switch err := s.DB.QueryRowContext(ctx, query, profileID).Scan(&blob); {
	case err == sql.ErrNoRows:
		return nil, fmt.Errorf("%w: %s interpretable vector for profile %s", ErrNotFound, kind, profileID)
	case err != nil:
		return nil, err
	}
	vec32, err := DeserializeVector(blob, dim)
	if err != nil {
		return nil, fmt.Errorf("store: profile %s: %w", profileID, err)
	}
	out := make([]float64, len(vec32))
	for i, x := range vec32 {
		out[i] = float64(x)
	}
	return out, nil
}

// Counts aggregates stored row counts for the stats surface.
type Counts struct {
	Captures int `json:"captures"`
	Profiles int `json:"profiles"`
	CTAs     int `json:"ctas"`
	Degraded int `json:"degraded"`
}

// GetCounts returns table counts plus the number of degraded profiles.
func (s *Store) GetCounts(ctx context.Context) (*Counts, error) {
	var c Counts
	row := s.DB.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM captures),
		(SELECT COUNT(*) FROM style_profiles),
		(SELECT COUNT(*) FROM primary_cta_vectors),
		(SELECT COUNT(*) FROM style_profiles WHERE degraded = 1)`)
	if err := row.Scan(&c.Captures, &c.Profiles, &c.CTAs, &c.Degraded); err != nil {
		return nil, err
	}
	return &c, nil
}
