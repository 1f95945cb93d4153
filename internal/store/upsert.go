package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazyhaar/stylevec/dbopen"
	"github.com/hazyhaar/stylevec/idgen"
)

// StoreVectors persists one run in a single transaction: capture keyed by
// run_id, style profile keyed by capture_id, CTA keyed by style_profile_id
// (skipped when the run has none). Re-running the same run_id updates every
// row in place with the new call's content; row ids are stable across
// re-runs. Any failure rolls the whole run back; SQLITE_BUSY is retried by
// dbopen.RunTx.
func (s *Store) StoreVectors(ctx context.Context, run *Run) (*StoreResult, error) {
	now := time.Now().UnixMilli()

	var captureID, profileID string
	var ctaID *string
	err := dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		var err error
		captureID, err = upsertCapture(ctx, tx, &run.Capture, now)
		if err != nil {
			return fmt.Errorf("store: capture %s: %w", run.Capture.RunID, err)
		}

		profileID, err = upsertProfile(ctx, tx, captureID, &run.Profile, now)
		if err != nil {
			return fmt.Errorf("store: profile for capture %s: %w", captureID, err)
		}

		ctaID = nil
		if run.CTA != nil {
			id, err := upsertCTA(ctx, tx, profileID, run.CTA, now)
			if err != nil {
				return fmt.Errorf("store: cta for profile %s: %w", profileID, err)
			}
			ctaID = &id
			return nil
		}
		// A re-run that lost its CTA must not keep the stale row around.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM primary_cta_vectors WHERE style_profile_id = ?`, profileID); err != nil {
			return fmt.Errorf("store: clear stale cta: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &StoreResult{
		CaptureID:      captureID,
		StyleProfileID: profileID,
		PrimaryCtaID:   ctaID,
		Stats: Stats{
			GlobalCombinedDim: len(run.Profile.Combined),
			TokenBytes:        len(run.Profile.TokensJSON),
			CTAProduced:       run.CTA != nil,
			Degraded:          run.Profile.Degraded,
		},
	}
	if run.CTA != nil {
		res.Stats.CTACombinedDim = len(run.CTA.Combined)
	}
	return res, nil
}

func upsertCapture(ctx context.Context, tx *sql.Tx, c *Capture, now int64) (string, error) {
	id := c.ID
	if id == "" {
		id = idgen.NewCaptureID()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO captures (id, run_id, source_url, viewport_w, viewport_h,
		captured_at, dom_uri, css_uri, screenshot_uri, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			source_url=excluded.source_url, viewport_w=excluded.viewport_w,
			viewport_h=excluded.viewport_h, captured_at=excluded.captured_at,
			dom_uri=excluded.dom_uri, css_uri=excluded.css_uri,
			screenshot_uri=excluded.screenshot_uri, updated_at=excluded.updated_at`,
		id, c.RunID, c.SourceURL, c.ViewportW, c.ViewportH,
		c.CapturedAt, c.DomURI, c.CSSURI, c.ScreenshotURI, now, now,
	)
	if err != nil {
		return "", err
	}
	// The conflict path keeps the original id; read it back.
	var got string
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM captures WHERE run_id = ?`, c.RunID).Scan(&got); err != nil {
		return "", err
	}
	return got, nil
}

func upsertProfile(ctx context.Context, tx *sql.Tx, captureID string, p *StyleProfile, now int64) (string, error) {
	var existing string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM style_profiles WHERE capture_id = ?`, captureID).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		id := p.ID
		if id == "" {
			id = idgen.NewProfileID()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO style_profiles (id, capture_id, tokens_json,
			interpretable, embedding, combined,
			contrast_pass_rate, brand_tone, maturity, consistency_score,
			embedding_model, degraded, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, captureID, p.TokensJSON,
			SerializeVector(p.Interpretable), SerializeVector(p.Embedding), SerializeVector(p.Combined),
			p.ContrastPassRate, p.BrandTone, p.Maturity, p.ConsistencyScore,
			p.EmbeddingModel, p.Degraded, now, now,
		)
		return id, err
	case err != nil:
		return "", err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE style_profiles SET tokens_json=?,
		interpretable=?, embedding=?, combined=?,
		contrast_pass_rate=?, brand_tone=?, maturity=?, consistency_score=?,
		embedding_model=?, degraded=?, updated_at=?
		WHERE id=?`,
		p.TokensJSON,
		SerializeVector(p.Interpretable), SerializeVector(p.Embedding), SerializeVector(p.Combined),
		p.ContrastPassRate, p.BrandTone, p.Maturity, p.ConsistencyScore,
		p.EmbeddingModel, p.Degraded, now, existing,
	)
	return existing, err
}

func upsertCTA(ctx context.Context, tx *sql.Tx, profileID string, c *PrimaryCTA, now int64) (string, error) {
	var existing string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM primary_cta_vectors WHERE style_profile_id = ?`, profileID).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		id := c.ID
		if id == "" {
			id = idgen.NewCTAID()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO primary_cta_vectors (id, style_profile_id,
			interpretable, embedding, combined,
			confidence, contrast_ratio, tier, min_tap_side, prominence,
			created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, profileID,
			SerializeVector(c.Interpretable), SerializeVector(c.Embedding), SerializeVector(c.Combined),
			c.Confidence, c.ContrastRatio, c.Tier, c.MinTapSide, c.Prominence,
			now, now,
		)
		return id, err
	case err != nil:
		return "", err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE primary_cta_vectors SET
		interpretable=?, embedding=?, combined=?,
		confidence=?, contrast_ratio=?, tier=?, min_tap_side=?, prominence=?,
		updated_at=?
		WHERE id=?`,
		SerializeVector(c.Interpretable), SerializeVector(c.Embedding), SerializeVector(c.Combined),
		c.Confidence, c.ContrastRatio, c.Tier, c.MinTapSide, c.Prominence,
		now, existing,
	)
	return existing, err
}
