package store

import (
	"context"
	"errors"
	"math"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/stylevec/dbopen"
	"github.com/hazyhaar/stylevec/vectorize"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db := dbopen.OpenMemory(t)
	if err := ApplySchema(db); err != nil {
		t.Fatalf("ApplySchema: %v", err)
	}
	return NewStore(db)
}

// makeCombined builds a unit-ish combined vector whose direction depends
// on seed, so distances between different seeds are nonzero.
func makeCombined(dim int, seed float64) []float32 {
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = float32(math.Sin(seed + float64(i)*0.01))
	}
	return vec
}

func testRun(runID string, seed float64, withCTA bool) *Run {
	run := &Run{
		Capture: Capture{
			RunID:      runID,
			SourceURL:  "https://example.com",
			ViewportW:  1280,
			ViewportH:  800,
			CapturedAt: 1700000000000,
		},
		Profile: StyleProfile{
			TokensJSON:       `{"colors":{}}`,
			Interpretable:    makeCombined(vectorize.GlobalInterpretableDim, seed),
			Embedding:        makeCombined(vectorize.EmbeddingDim, seed),
			Combined:         makeCombined(vectorize.GlobalCombinedDim, seed),
			ContrastPassRate: 0.9,
			BrandTone:        "professional",
			Maturity:         "systematic",
			ConsistencyScore: 0.8,
		},
	}
	if withCTA {
		run.CTA = &PrimaryCTA{
			Interpretable: makeCombined(vectorize.CTAInterpretableDim, seed),
			Embedding:     makeCombined(vectorize.EmbeddingDim, seed),
			Combined:      makeCombined(vectorize.CTACombinedDim, seed),
			Confidence:    0.7,
			ContrastRatio: 8.1,
			Tier:          "AAA",
			MinTapSide:    43.2,
			Prominence:    0.8,
		}
	}
	return run
}

// WHAT: float32 vectors survive a serialize/deserialize round trip; a
// truncated blob is rejected as corruption.
func TestVectorCodec(t *testing.T) {
	vec := []float32{0.5, -1.25, 3.75, 0}
	blob := SerializeVector(vec)
	got, err := DeserializeVector(blob, len(vec))
	if err != nil {
		t.Fatalf("DeserializeVector: %v", err)
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Fatalf("dim %d: got %g, want %g", i, got[i], vec[i])
		}
	}
	if _, err := DeserializeVector(blob[:len(blob)-1], len(vec)); err == nil {
		t.Fatal("expected corruption error for truncated blob")
	}
}

// WHAT: StoreVectors writes all three tables in one call and returns the
// row ids.
func TestStoreVectors(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	res, err := s.StoreVectors(ctx, testRun("run-a", 1, true))
	if err != nil {
		t.Fatalf("StoreVectors: %v", err)
	}
	if res.CaptureID == "" || res.StyleProfileID == "" || res.PrimaryCtaID == nil {
		t.Fatalf("missing ids in result: %+v", res)
	}
	if !res.Stats.CTAProduced || res.Stats.GlobalCombinedDim != vectorize.GlobalCombinedDim {
		t.Fatalf("unexpected stats: %+v", res.Stats)
	}
}

// WHAT: re-running the same run_id updates rows in place — one row per
// table, stable ids, second call's content wins.
// WHY: ingest is retried by upstream pipelines; duplicates would skew
// every nearest-neighbor ranking.
func TestStoreVectorsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.StoreVectors(ctx, testRun("run-a", 1, true))
	if err != nil {
		t.Fatalf("first StoreVectors: %v", err)
	}
	rerun := testRun("run-a", 2, true)
	rerun.Profile.BrandTone = "bold"
	second, err := s.StoreVectors(ctx, rerun)
	if err != nil {
		t.Fatalf("second StoreVectors: %v", err)
	}

	if first.CaptureID != second.CaptureID || first.StyleProfileID != second.StyleProfileID {
		t.Fatalf("row ids changed across re-run: %+v vs %+v", first, second)
	}
	if *first.PrimaryCtaID != *second.PrimaryCtaID {
		t.Fatalf("cta id changed across re-run")
	}

	counts, err := s.GetCounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts.Captures != 1 || counts.Profiles != 1 || counts.CTAs != 1 {
		t.Fatalf("counts after re-run: %+v", counts)
	}

	view, err := s.GetRun(ctx, "run-a")
	if err != nil {
		t.Fatal(err)
	}
	if view.Profile.BrandTone != "bold" {
		t.Fatalf("brand_tone = %q, want second call's content", view.Profile.BrandTone)
	}
}

// WHAT: a re-run without a CTA removes the stale CTA row.
func TestStoreVectorsClearsStaleCTA(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.StoreVectors(ctx, testRun("run-a", 1, true)); err != nil {
		t.Fatal(err)
	}
	res, err := s.StoreVectors(ctx, testRun("run-a", 1, false))
	if err != nil {
		t.Fatal(err)
	}
	if res.PrimaryCtaID != nil {
		t.Fatalf("expected nil cta id, got %v", *res.PrimaryCtaID)
	}
	counts, _ := s.GetCounts(ctx)
	if counts.CTAs != 0 {
		t.Fatalf("stale cta row survived: %+v", counts)
	}
}

// WHAT: deleting a capture cascades to its profile and CTA rows.
func TestCascadeDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	res, err := s.StoreVectors(ctx, testRun("run-a", 1, true))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM captures WHERE id = ?`, res.CaptureID); err != nil {
		t.Fatal(err)
	}
	counts, _ := s.GetCounts(ctx)
	if counts.Profiles != 0 || counts.CTAs != 0 {
		t.Fatalf("cascade failed: %+v", counts)
	}
}

// WHAT: FindNearest ranks by cosine distance ascending and excludes the
// reference row.
func TestFindNearest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ref, err := s.StoreVectors(ctx, testRun("run-ref", 1, false))
	if err != nil {
		t.Fatal(err)
	}
	near, err := s.StoreVectors(ctx, testRun("run-near", 1.05, false))
	if err != nil {
		t.Fatal(err)
	}
	far, err := s.StoreVectors(ctx, testRun("run-far", 3, false))
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.FindNearest(ctx, ref.StyleProfileID, vectorize.KindGlobal, 10)
	if err != nil {
		t.Fatalf("FindNearest: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d neighbors, want 2", len(got))
	}
	if got[0].StyleProfileID != near.StyleProfileID || got[1].StyleProfileID != far.StyleProfileID {
		t.Fatalf("ranking wrong: %+v", got)
	}
	if got[0].Distance > got[1].Distance {
		t.Fatalf("distances not ascending: %+v", got)
	}
	for _, n := range got {
		if n.StyleProfileID == ref.StyleProfileID {
			t.Fatal("reference row included in its own neighbors")
		}
	}
}

// WHAT: an unknown reference id is ErrNotFound; a known reference with no
// neighbors returns an empty slice and no error.
// WHY: callers map these to 404 vs an empty 200 list.
func TestFindNearestNotFoundVsEmpty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.FindNearest(ctx, "sp_missing", vectorize.KindGlobal, 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	only, err := s.StoreVectors(ctx, testRun("run-solo", 1, false))
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.FindNearest(ctx, only.StyleProfileID, vectorize.KindGlobal, 5)
	if err != nil {
		t.Fatalf("FindNearest: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d neighbors, want empty", len(got))
	}
}

// WHAT: the cta kind searches the CTA table keyed by profile id, and a
// profile without a CTA row is ErrNotFound for that kind.
func TestFindNearestCTAKind(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	withCTA, err := s.StoreVectors(ctx, testRun("run-a", 1, true))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.StoreVectors(ctx, testRun("run-b", 1.2, true)); err != nil {
		t.Fatal(err)
	}
	noCTA, err := s.StoreVectors(ctx, testRun("run-c", 2, false))
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.FindNearest(ctx, withCTA.StyleProfileID, vectorize.KindCTA, 5)
	if err != nil {
		t.Fatalf("FindNearest cta: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d cta neighbors, want 1", len(got))
	}

	if _, err := s.FindNearest(ctx, noCTA.StyleProfileID, vectorize.KindCTA, 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound for profile without cta", err)
	}
}

// WHAT: GetRun returns ErrNotFound for unknown runs and includes the CTA
// view only when a CTA row exists.
func TestGetRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.GetRun(ctx, "never-ingested"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	if _, err := s.StoreVectors(ctx, testRun("run-a", 1, false)); err != nil {
		t.Fatal(err)
	}
	view, err := s.GetRun(ctx, "run-a")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if view.CTA != nil {
		t.Fatalf("unexpected cta view: %+v", view.CTA)
	}
	if view.Capture.SourceURL != "https://example.com" || view.Profile.BrandTone != "professional" {
		t.Fatalf("unexpected view: %+v", view)
	}
}

// WHAT: InterpretableVector returns the stored pre-L2 values as float64s.
// WHY: the explainer's bottom-k list is defined on these exact values.
func TestInterpretableVector(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	res, err := s.StoreVectors(ctx, testRun("run-a", 1, true))
	if err != nil {
		t.Fatal(err)
	}

	vec, err := s.InterpretableVector(ctx, res.StyleProfileID, vectorize.KindGlobal)
	if err != nil {
		t.Fatalf("InterpretableVector: %v", err)
	}
	if len(vec) != vectorize.GlobalInterpretableDim {
		t.Fatalf("got %d dims, want %d", len(vec), vectorize.GlobalInterpretableDim)
	}
	want := makeCombined(vectorize.GlobalInterpretableDim, 1)
	for i := range vec {
		if math.Abs(vec[i]-float64(want[i])) > 1e-6 {
			t.Fatalf("dim %d: got %g, want %g", i, vec[i], want[i])
		}
	}

	ctaVec, err := s.InterpretableVector(ctx, res.StyleProfileID, vectorize.KindCTA)
	if err != nil {
		t.Fatalf("InterpretableVector cta: %v", err)
	}
	if len(ctaVec) != vectorize.CTAInterpretableDim {
		t.Fatalf("got %d cta dims, want %d", len(ctaVec), vectorize.CTAInterpretableDim)
	}
}
