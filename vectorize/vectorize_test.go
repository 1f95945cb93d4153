package vectorize

import (
	"strings"
	"testing"

	"github.com/hazyhaar/stylevec/tokens"
)

func testDoc() *tokens.TokenDocument {
	return &tokens.TokenDocument{
		Colors: tokens.Colors{
			Primary:    []string{"#2563eb", "#1e40af"},
			Neutral:    []string{"#f8fafc", "#64748b", "#0f172a"},
			Semantic:   map[string]string{"success": "#16a34a", "error": "#dc2626"},
			Background: "#ffffff",
			Link:       "#2563eb",
		},
		Typography: tokens.Typography{
			Families:    []string{"Inter", "Georgia"},
			Sizes:       []float64{14, 16, 20, 28, 40},
			Weights:     []int{400, 600, 700},
			LineHeights: []float64{1.4, 1.6},
		},
		Spacing: []float64{4, 8, 16, 24, 32},
		Radii:   []float64{4, 8},
		Shadows: []string{"0px 1px 3px rgba(0,0,0,0.1)"},
		Buttons: tokens.Buttons{Variants: []tokens.ButtonVariant{
			{
				Type: "primary", Background: "#2563eb", Foreground: "#ffffff",
				Padding: "12px 24px", FontSize: 16, FontWeight: 600,
				BorderRadius: 8, Label: "Get started", Prominence: 0.8, AboveFold: true,
			},
			{Type: "secondary", Background: "#f1f5f9", Foreground: "#0f172a"},
		}},
	}
}

func testReport() *tokens.StyleReport {
	return &tokens.StyleReport{
		ContrastPassRate: 0.9,
		Brand: tokens.BrandPersonality{
			Tone: "professional", Energy: "calm", TrustLevel: "modern", Confidence: 0.75,
		},
		Layout: tokens.LayoutMetrics{
			DensityScore: 0.4, WhitespaceRatio: 0.6, PaddingConsistency: 0.8,
			ImageTextBalance: 0.3, GroupingStrength: 0.5, CompositionalComplexity: 0.45,
			BorderHeaviness: 0.1, ShadowDepth: 0.2, ElementScale: 0.35,
			GridRegularity: 0.7, VerticalRhythm: 0.65,
		},
		Maturity:         tokens.Maturity{Level: "systematic", Score: 0.8},
		ConsistencyScore: 0.82,
	}
}

// WHAT: the bounds table covers every feature of both vector kinds.
// WHY: a missing entry would only surface on the first ingest that touches
// it; startup validation has to catch the gap before any traffic.
func TestValidateBoundsCoversAllFeatures(t *testing.T) {
	if err := ValidateBounds(); err != nil {
		t.Fatalf("ValidateBounds: %v", err)
	}
}

// WHAT: the global builder emits exactly 55 dimensions in the frozen order.
// WHY: dimension position is the storage and explanation contract.
func TestBuildGlobalStyleVectorShape(t *testing.T) {
	vec, sum, err := BuildGlobalStyleVector(testDoc(), testReport(), nil)
	if err != nil {
		t.Fatalf("BuildGlobalStyleVector: %v", err)
	}
	if len(vec.Raw) != GlobalInterpretableDim || len(vec.Names) != GlobalInterpretableDim {
		t.Fatalf("got %d dims / %d names, want %d", len(vec.Raw), len(vec.Names), GlobalInterpretableDim)
	}
	want := GlobalFeatureNames()
	for i := range want {
		if vec.Names[i] != want[i] {
			t.Fatalf("dim %d: got %q, want %q", i, vec.Names[i], want[i])
		}
	}
	if sum.BrandTone != "professional" || sum.Maturity != "systematic" {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	for i, v := range vec.Raw {
		if strings.HasSuffix(vec.Names[i], "_cos") || strings.HasSuffix(vec.Names[i], "_sin") {
			if v < -1 || v > 1 {
				t.Fatalf("%s = %g out of [-1,1]", vec.Names[i], v)
			}
			continue
		}
		if v < 0 || v > 1 {
			t.Fatalf("%s = %g out of [0,1]", vec.Names[i], v)
		}
	}
}

// WHAT: an unrecognized brand tone encodes as an all-zero one-hot block.
// WHY: classifier drift must not break ingestion; it degrades encoding
// instead.
func TestBuildGlobalUnknownBrandToneZeroes(t *testing.T) {
	rep := testReport()
	rep.Brand.Tone = "galactic"
	vec, _, err := BuildGlobalStyleVector(testDoc(), rep, nil)
	if err != nil {
		t.Fatalf("BuildGlobalStyleVector: %v", err)
	}
	for i, name := range vec.Names {
		if strings.HasPrefix(name, "brand_tone_") && vec.Raw[i] != 0 {
			t.Fatalf("%s = %g, want 0 for unknown tone", name, vec.Raw[i])
		}
	}
}

// WHAT: missing required document fields abort the build with a
// precondition error listing every gap.
// WHY: a garbage vector would silently poison similarity search.
func TestBuildGlobalMissingFields(t *testing.T) {
	doc := testDoc()
	doc.Colors.Primary = nil
	doc.Spacing = nil
	_, _, err := BuildGlobalStyleVector(doc, testReport(), nil)
	if err == nil {
		t.Fatal("expected precondition error")
	}
	msg := err.Error()
	for _, field := range []string{"tokens.colors.primary", "tokens.spacing"} {
		if !strings.Contains(msg, field) {
			t.Errorf("error %q does not name %s", msg, field)
		}
	}
}

// WHAT: a page without a primary button variant yields ok=false, no error.
// WHY: absence of a CTA is an expected page shape, not a failure.
func TestBuildPrimaryCTAVectorAbsent(t *testing.T) {
	doc := testDoc()
	doc.Buttons.Variants = doc.Buttons.Variants[1:] // secondary only
	vec, rep, ok, err := BuildPrimaryCTAVector(doc, testReport())
	if err != nil {
		t.Fatalf("BuildPrimaryCTAVector: %v", err)
	}
	if ok || vec != nil || rep != nil {
		t.Fatalf("got ok=%v vec=%v rep=%v, want absent", ok, vec, rep)
	}
}

// WHAT: the CTA builder emits 26 dimensions and a coherent sub-report.
// WHY: report and vector are persisted together; their tier/confidence
// values must agree with the encoded one-hots.
func TestBuildPrimaryCTAVectorShape(t *testing.T) {
	vec, rep, ok, err := BuildPrimaryCTAVector(testDoc(), testReport())
	if err != nil || !ok {
		t.Fatalf("BuildPrimaryCTAVector: ok=%v err=%v", ok, err)
	}
	if len(vec.Raw) != CTAInterpretableDim {
		t.Fatalf("got %d dims, want %d", len(vec.Raw), CTAInterpretableDim)
	}
	if rep.ContrastRatio < 1 || rep.ContrastRatio > 21 {
		t.Fatalf("contrast ratio %g out of WCAG range", rep.ContrastRatio)
	}
	if rep.Tier != "AAA" && rep.Tier != "AA" && rep.Tier != "fail" {
		t.Fatalf("unexpected tier %q", rep.Tier)
	}
	hot := 0.0
	for i, name := range vec.Names {
		if strings.HasPrefix(name, "cta_tier_") {
			hot += vec.Raw[i]
		}
	}
	if hot != 1 {
		t.Fatalf("tier one-hot sums to %g, want 1", hot)
	}
	if rep.Confidence < 0 || rep.Confidence > 1 {
		t.Fatalf("confidence %g out of [0,1]", rep.Confidence)
	}
}

// WHAT: Combined pads a missing embedding with a zero section and keeps the
// combined length fixed.
// WHY: combined dimensionality may never vary between degraded and full
// runs or cosine search breaks.
func TestCombinedZeroFillsMissingEmbedding(t *testing.T) {
	vec, _, err := BuildGlobalStyleVector(testDoc(), testReport(), nil)
	if err != nil {
		t.Fatalf("BuildGlobalStyleVector: %v", err)
	}
	combined, err := vec.Combined(nil)
	if err != nil {
		t.Fatalf("Combined: %v", err)
	}
	if len(combined) != GlobalCombinedDim {
		t.Fatalf("got %d dims, want %d", len(combined), GlobalCombinedDim)
	}
	for i := GlobalInterpretableDim; i < GlobalCombinedDim; i++ {
		if combined[i] != 0 {
			t.Fatalf("dim %d = %g, want zero embedding section", i, combined[i])
		}
	}
}

// WHAT: a wrong-length embedding is rejected, never truncated or padded.
// WHY: silent resizing would store a vector whose tail means nothing.
func TestCombinedRejectsWrongEmbeddingLength(t *testing.T) {
	vec, _, err := BuildGlobalStyleVector(testDoc(), testReport(), nil)
	if err != nil {
		t.Fatalf("BuildGlobalStyleVector: %v", err)
	}
	if _, err := vec.Combined(make([]float32, 128)); err == nil {
		t.Fatal("expected dimension error for 128-dim embedding")
	}
}

// WHAT: layout features computed from a raw snapshot land in range and
// differ from the report fallback when geometry differs.
// WHY: both computation paths must fill the same dimensions.
func TestBuildGlobalWithLayoutSnapshot(t *testing.T) {
	snap := &tokens.LayoutSnapshot{
		Viewport: tokens.Viewport{Width: 1280, Height: 800},
		Nodes: []tokens.LayoutNode{
			{Tag: "header", BBox: tokens.BBox{X: 0, Y: 0, W: 1280, H: 80}, TextContent: "Acme"},
			{Tag: "img", BBox: tokens.BBox{X: 40, Y: 120, W: 600, H: 400}},
			{Tag: "p", BBox: tokens.BBox{X: 680, Y: 120, W: 560, H: 200}, TextContent: "Hello",
				Styles: tokens.NodeStyles{Padding: "16px"}},
			{Tag: "p", BBox: tokens.BBox{X: 680, Y: 360, W: 560, H: 160}, TextContent: "World",
				Styles: tokens.NodeStyles{Padding: "16px"}},
			{Tag: "button", BBox: tokens.BBox{X: 680, Y: 560, W: 180, H: 48}, TextContent: "Go",
				Styles: tokens.NodeStyles{BoxShadow: "0px 2px 8px rgba(0,0,0,0.2)"}},
		},
	}
	vec, _, err := BuildGlobalStyleVector(testDoc(), testReport(), snap)
	if err != nil {
		t.Fatalf("BuildGlobalStyleVector: %v", err)
	}
	get := func(name string) float64 {
		for i, n := range vec.Names {
			if n == name {
				return vec.Raw[i]
			}
		}
		t.Fatalf("feature %q not emitted", name)
		return 0
	}
	if v := get("spacing_image_text_balance"); v <= 0 || v >= 1 {
		t.Fatalf("image/text balance %g, want interior value for mixed content", v)
	}
	if v := get("spacing_whitespace_ratio"); v <= 0 {
		t.Fatalf("whitespace ratio %g, want > 0 for sparse page", v)
	}
	if v := get("shape_shadow_depth"); v <= 0 {
		t.Fatalf("shadow depth %g, want > 0 with a shadowed node", v)
	}
}
