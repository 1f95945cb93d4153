// Package stylevec turns captured web-page design-token and style-report
// documents into fixed-dimension feature vectors, persists them in SQLite
// and answers similarity queries over them: nearest neighbors by cosine
// distance, plus per-dimension explanations of why two pages score the way
// they do.
//
// Two vector kinds exist per page: the global style vector (page-level
// palette, typography, spacing, shape and layout features) and the primary
// call-to-action vector. Each combines a normalized interpretable section
// with an optional visual-embedding section into one fixed-length vector.
//
// Usage:
//
//	db, _ := dbopen.Open("stylevec.db")
//	svc, err := stylevec.New(db, stylevec.Config{})
//	defer svc.Close()
//	res, err := svc.Ingest(ctx, input)
//	neighbors, err := svc.FindSimilar(ctx, res.StyleProfileID, vectorize.KindGlobal, 10)
package stylevec

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/hazyhaar/horosvec"

	"github.com/hazyhaar/stylevec/explain"
	"github.com/hazyhaar/stylevec/idgen"
	"github.com/hazyhaar/stylevec/internal/store"
	"github.com/hazyhaar/stylevec/tokens"
	"github.com/hazyhaar/stylevec/vecindex"
	"github.com/hazyhaar/stylevec/vectorize"
	"github.com/hazyhaar/stylevec/visembed"
)

// Service is the vectorization and similarity engine. Safe for concurrent
// use; all methods honor context cancellation.
type Service struct {
	store    *store.Store
	embedder visembed.Embedder
	index    *vecindex.Index
	logger   *slog.Logger
}

// New builds a Service over an open database. The schema is applied
// idempotently; the bounds table is self-checked so a drifted feature list
// fails startup instead of producing silently wrong vectors.
func New(db *sql.DB, cfg Config) (*Service, error) {
	cfg.defaults()

	if err := vectorize.ValidateBounds(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := store.ApplySchema(db); err != nil {
		return nil, fmt.Errorf("%w: apply schema: %v", ErrConfig, err)
	}

	if cfg.Embedding.Logger == nil {
		cfg.Embedding.Logger = cfg.Logger
	}
	s := &Service{
		store:    store.NewStore(db),
		embedder: visembed.New(cfg.Embedding),
		logger:   cfg.Logger,
	}
	if cfg.Index.Enabled {
		idx, err := vecindex.NewFromDB(db, horosvec.DefaultConfig(), cfg.Logger)
		if err != nil {
			return nil, fmt.Errorf("%w: open ann index: %v", ErrConfig, err)
		}
		s.index = idx
	}
	return s, nil
}

// Close releases the ANN index. The database handle belongs to the caller.
func (s *Service) Close() error {
	if s.index != nil {
		return s.index.Close()
	}
	return nil
}

// Ingest runs the full pipeline for one capture: decode and validate the
// documents, build both vectors, attempt the visual embedding, persist
// everything in one transaction. Re-submitting a RunID updates the stored
// run in place.
//
// Embedding failure never fails the ingest: the run persists with a zero
// embedding section and Degraded set. Missing required token fields abort
// before persistence with a precondition error naming every gap.
func (s *Service) Ingest(ctx context.Context, input *IngestInput) (*IngestResult, error) {
	if input.SourceURL == "" {
		return nil, fmt.Errorf("%w: sourceUrl is required", ErrInvalidInput)
	}

	var doc *tokens.TokenDocument
	var rep *tokens.StyleReport
	if input.Tokens != nil {
		d, err := tokens.DecodeTokenDocument(input.Tokens)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		doc = d
	}
	if input.Report != nil {
		r, err := tokens.DecodeStyleReport(input.Report)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		rep = r
	}
	var snap *tokens.LayoutSnapshot
	if input.Layout != nil {
		sn, err := tokens.DecodeLayoutSnapshot(input.Layout)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		snap = sn
	}

	globalVec, summary, err := vectorize.BuildGlobalStyleVector(doc, rep, snap)
	if err != nil {
		return nil, err
	}
	ctaVec, ctaReport, hasCTA, err := vectorize.BuildPrimaryCTAVector(doc, rep)
	if err != nil {
		return nil, err
	}

	emb, model, degraded, err := s.embedding(ctx, input)
	if err != nil {
		return nil, err
	}

	globalCombined, err := globalVec.Combined(emb)
	if err != nil {
		return nil, err
	}

	runID := input.RunID
	if runID == "" {
		runID = idgen.NewRunID(hostOf(input.SourceURL))
	}
	capturedAt := input.CapturedAt
	if capturedAt == 0 {
		capturedAt = time.Now().UnixMilli()
	}

	run := &store.Run{
		Capture: store.Capture{
			RunID:         runID,
			SourceURL:     input.SourceURL,
			ViewportW:     input.ViewportW,
			ViewportH:     input.ViewportH,
			CapturedAt:    capturedAt,
			DomURI:        input.DomURI,
			CSSURI:        input.CSSURI,
			ScreenshotURI: input.ScreenshotURI,
		},
		Profile: store.StyleProfile{
			TokensJSON:       string(input.Tokens),
			Interpretable:    toFloat32(globalVec.Raw),
			Embedding:        emb,
			Combined:         globalCombined,
			ContrastPassRate: summary.ContrastPassRate,
			BrandTone:        summary.BrandTone,
			Maturity:         summary.Maturity,
			ConsistencyScore: summary.ConsistencyScore,
			EmbeddingModel:   model,
			Degraded:         degraded,
		},
	}
	if hasCTA {
		ctaCombined, err := ctaVec.Combined(emb)
		if err != nil {
			return nil, err
		}
		run.CTA = &store.PrimaryCTA{
			Interpretable: toFloat32(ctaVec.Raw),
			Embedding:     emb,
			Combined:      ctaCombined,
			Confidence:    ctaReport.Confidence,
			ContrastRatio: ctaReport.ContrastRatio,
			Tier:          ctaReport.Tier,
			MinTapSide:    ctaReport.MinTapSide,
			Prominence:    ctaReport.Prominence,
		}
	}

	stored, err := s.store.StoreVectors(ctx, run)
	if err != nil {
		return nil, err
	}

	// Index insertion is best effort: the brute-force scan remains the
	// correctness reference, so a failed insert costs latency, not results.
	if s.index != nil {
		if err := s.index.Add(stored.StyleProfileID, globalCombined); err != nil {
			s.logger.Warn("ann index insert failed",
				"profile_id", stored.StyleProfileID, "error", err)
		}
	}

	s.logger.Info("run ingested",
		"run_id", runID,
		"profile_id", stored.StyleProfileID,
		"cta", hasCTA,
		"degraded", degraded)

	res := &IngestResult{
		RunID:          runID,
		CaptureID:      stored.CaptureID,
		StyleProfileID: stored.StyleProfileID,
		PrimaryCtaID:   stored.PrimaryCtaID,
		Summary:        summary,
		Degraded:       degraded,
		EmbeddingModel: model,
		Stats: IngestStats{
			GlobalCombinedDim: stored.Stats.GlobalCombinedDim,
			CTACombinedDim:    stored.Stats.CTACombinedDim,
			TokenBytes:        stored.Stats.TokenBytes,
			CTAProduced:       stored.Stats.CTAProduced,
		},
	}
	if hasCTA {
		res.CTA = ctaReport
	}
	return res, nil
}

// embedding resolves the visual-embedding section: a caller-supplied
// vector is validated and used as-is; otherwise the embedding server is
// attempted with failure degrading to zeros.
func (s *Service) embedding(ctx context.Context, input *IngestInput) ([]float32, string, bool, error) {
	if input.Embedding != nil {
		if len(input.Embedding) != vectorize.EmbeddingDim {
			return nil, "", false, fmt.Errorf("%w: embedding has %d dims, want %d",
				ErrInvalidInput, len(input.Embedding), vectorize.EmbeddingDim)
		}
		return input.Embedding, input.EmbeddingModel, false, nil
	}

	res := visembed.Attempt(ctx, s.embedder, string(input.Tokens))
	if res.Degraded {
		s.logger.Warn("embedding degraded to zero vector",
			"source_url", input.SourceURL, "error", res.Err)
	}
	return res.Vector, res.Model, res.Degraded, nil
}

// FindSimilar ranks stored pages of a kind by cosine distance to the
// reference profile, nearest first, excluding the reference itself. Below
// the brute-force cutover every query is an exhaustive scan; above it the
// ANN index (when enabled) provides a shortlist that is re-ranked with
// exact distances, falling back to the scan on any index failure.
func (s *Service) FindSimilar(ctx context.Context, profileID string, kind vectorize.Kind, limit int) ([]Neighbor, error) {
	if _, err := kind.CombinedDim(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	if s.index != nil && kind == vectorize.KindGlobal {
		count, err := s.store.CountVectors(ctx, kind)
		if err != nil {
			return nil, err
		}
		if count > store.BruteForceMaxRows {
			neighbors, err := s.annSimilar(ctx, profileID, kind, limit)
			if err == nil {
				return neighbors, nil
			}
			s.logger.Warn("ann search failed, falling back to exhaustive scan",
				"profile_id", profileID, "error", err)
		}
	}

	found, err := s.store.FindNearest(ctx, profileID, kind, limit)
	if err != nil {
		return nil, err
	}
	return toNeighbors(found), nil
}

func (s *Service) annSimilar(ctx context.Context, profileID string, kind vectorize.Kind, limit int) ([]Neighbor, error) {
	ref, err := s.store.CombinedVector(ctx, profileID, kind)
	if err != nil {
		return nil, err
	}
	matches, err := s.index.Search(ref, limit+1)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.ProfileID == profileID {
			continue
		}
		ids = append(ids, m.ProfileID)
	}
	found, err := s.store.ResolveNeighbors(ctx, ref, ids, kind)
	if err != nil {
		return nil, err
	}
	if len(found) > limit {
		found = found[:limit]
	}
	return toNeighbors(found), nil
}

// Explain compares two stored profiles dimension by dimension: the cosine
// over the interpretable sections, the top-k signed contributions to it,
// and the k largest per-feature differences. Both profiles must have a
// stored vector of the requested kind.
func (s *Service) Explain(ctx context.Context, a, b string, kind vectorize.Kind, k int) (*explain.Explanation, error) {
	names, err := kind.FeatureNames()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if k <= 0 {
		k = 10
	}

	u, err := s.store.InterpretableVector(ctx, a, kind)
	if err != nil {
		return nil, err
	}
	v, err := s.store.InterpretableVector(ctx, b, kind)
	if err != nil {
		return nil, err
	}

	exp, err := explain.Explain(u, v, names, k)
	if err != nil {
		return nil, fmt.Errorf("explain %s vs %s: %w", a, b, err)
	}
	return exp, nil
}

// Run returns the stored read model for a capture run id.
func (s *Service) Run(ctx context.Context, runID string) (*RunDetail, error) {
	view, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	detail := &RunDetail{
		Capture: CaptureInfo{
			RunID:         view.Capture.RunID,
			SourceURL:     view.Capture.SourceURL,
			ViewportW:     view.Capture.ViewportW,
			ViewportH:     view.Capture.ViewportH,
			CapturedAt:    view.Capture.CapturedAt,
			DomURI:        view.Capture.DomURI,
			CSSURI:        view.Capture.CSSURI,
			ScreenshotURI: view.Capture.ScreenshotURI,
		},
		Profile: ProfileInfo{
			ID:               view.Profile.ID,
			ContrastPassRate: view.Profile.ContrastPassRate,
			BrandTone:        view.Profile.BrandTone,
			Maturity:         view.Profile.Maturity,
			ConsistencyScore: view.Profile.ConsistencyScore,
			EmbeddingModel:   view.Profile.EmbeddingModel,
			Degraded:         view.Profile.Degraded,
			UpdatedAt:        view.Profile.UpdatedAt,
		},
	}
	if view.CTA != nil {
		detail.CTA = &CTAInfo{
			ID:            view.CTA.ID,
			Confidence:    view.CTA.Confidence,
			ContrastRatio: view.CTA.ContrastRatio,
			Tier:          view.CTA.Tier,
			MinTapSide:    view.CTA.MinTapSide,
			Prominence:    view.CTA.Prominence,
		}
	}
	return detail, nil
}

// Stats aggregates store counts and index status.
func (s *Service) Stats(ctx context.Context) (*StatsReport, error) {
	counts, err := s.store.GetCounts(ctx)
	if err != nil {
		return nil, err
	}
	report := &StatsReport{
		Captures:          counts.Captures,
		Profiles:          counts.Profiles,
		CTAs:              counts.CTAs,
		Degraded:          counts.Degraded,
		GlobalCombinedDim: vectorize.GlobalCombinedDim,
		CTACombinedDim:    vectorize.CTACombinedDim,
		BruteForceMaxRows: store.BruteForceMaxRows,
	}
	if s.index != nil {
		report.IndexEnabled = true
		report.IndexedVectors = s.index.Count()
		report.IndexNeedsRebuild = s.index.NeedsRebuild()
	}
	return report, nil
}

func toNeighbors(in []store.Neighbor) []Neighbor {
	out := make([]Neighbor, len(in))
	for i, n := range in {
		out[i] = Neighbor{
			StyleProfileID: n.StyleProfileID,
			RunID:          n.RunID,
			SourceURL:      n.SourceURL,
			Distance:       n.Distance,
		}
	}
	return out
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, x := range in {
		out[i] = float32(x)
	}
	return out
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}
