package vectorize

import (
	"fmt"
	"math"
	"sort"

	"github.com/hazyhaar/stylevec/normalize"
	"github.com/hazyhaar/stylevec/tokens"
)

// Summary is the page-level UX digest persisted next to the global vector.
type Summary struct {
	ContrastPassRate float64 `json:"contrastPassRate"`
	BrandTone        string  `json:"brandTone"`
	Maturity         string  `json:"maturity"`
	ConsistencyScore float64 `json:"consistencyScore"`
}

// vecBuilder appends features in declared order and fails fast on the first
// bounds or ordering problem. The final vector is checked positionally
// against the kind's frozen name list.
type vecBuilder struct {
	kind  Kind
	names []string
	vals  []float64
	err   error
}

// raw pushes a value through the bounds table.
func (b *vecBuilder) raw(name string, v float64) {
	if b.err != nil {
		return
	}
	n, err := boundsTable.Normalize(v, name)
	if err != nil {
		b.err = err
		return
	}
	b.names = append(b.names, name)
	b.vals = append(b.vals, n)
}

// score appends a value the caller already computed in [0,1].
func (b *vecBuilder) score(name string, v float64) {
	if b.err != nil {
		return
	}
	b.names = append(b.names, name)
	b.vals = append(b.vals, normalize.Clamp01(v))
}

// pair appends a pre-encoded circular (cos, sin) pair; values stay in [-1,1].
func (b *vecBuilder) pair(cosName, sinName string, cos, sin float64) {
	if b.err != nil {
		return
	}
	b.names = append(b.names, cosName, sinName)
	b.vals = append(b.vals, cos, sin)
}

func (b *vecBuilder) finish() (*NamedVector, error) {
	if b.err != nil {
		return nil, b.err
	}
	want, err := b.kind.FeatureNames()
	if err != nil {
		return nil, err
	}
	if len(b.names) != len(want) {
		return nil, fmt.Errorf("vectorize: %s builder emitted %d features, schema requires %d",
			b.kind, len(b.names), len(want))
	}
	for i := range want {
		if b.names[i] != want[i] {
			return nil, fmt.Errorf("vectorize: %s builder emitted %q at dim %d, schema requires %q",
				b.kind, b.names[i], i, want[i])
		}
	}
	return &NamedVector{Kind: b.kind, Names: b.names, Raw: b.vals}, nil
}

// BuildGlobalStyleVector computes the 55-dimension page-level vector and the
// UX summary. A nil snap falls back to the report's precomputed layout
// metrics, so a tokens+report-only ingest still fills every dimension.
func BuildGlobalStyleVector(doc *tokens.TokenDocument, rep *tokens.StyleReport, snap *tokens.LayoutSnapshot) (*NamedVector, *Summary, error) {
	if err := tokens.Validate(doc, rep); err != nil {
		return nil, nil, err
	}

	var ls layoutScores
	if snap != nil {
		ls = layoutFromSnapshot(snap)
	} else {
		ls = layoutFromReport(rep.Layout)
	}

	pal := paletteStats(doc)
	b := &vecBuilder{kind: KindGlobal}

	// Color
	b.raw("color_palette_size", float64(len(doc.AllColors())))
	b.raw("color_primary_count", float64(len(doc.Colors.Primary)))
	b.raw("color_neutral_count", float64(len(doc.Colors.Neutral)))
	b.raw("color_semantic_count", float64(len(doc.Colors.Semantic)))
	b.score("color_contrast_pass_rate", rep.ContrastPassRate)
	b.pair("color_dominant_hue_cos", "color_dominant_hue_sin", pal.hueCos, pal.hueSin)
	b.score("color_saturation_mean", pal.satMean)
	b.score("color_saturation_energy", pal.satEnergy)
	b.score("color_lightness_mean", pal.lightMean)
	b.score("color_role_distinction", pal.roleDistinction)
	b.score("color_harmony_score", pal.harmony)
	b.score("color_background_lightness", pal.bgLightness)
	b.score("color_link_accent_presence", pal.linkAccent)
	b.score("color_brand_saturation", pal.brandSat)
	b.raw("color_button_palette_size", float64(buttonPaletteSize(doc)))

	// Typography
	sizes := doc.Typography.Sizes
	b.raw("typo_family_count", float64(len(doc.Typography.Families)))
	b.raw("typo_size_count", float64(len(sizes)))
	b.raw("typo_size_range", spread(sizes))
	b.raw("typo_weight_count", float64(len(doc.Typography.Weights)))
	b.score("typo_weight_contrast", weightContrast(doc.Typography.Weights))
	b.raw("typo_hierarchy_depth", hierarchyDepth(sizes))
	b.raw("typo_lineheight_count", float64(len(doc.Typography.LineHeights)))
	b.score("typo_coherence", scaleCoherence(sizes))

	// Spacing
	b.raw("spacing_scale_length", float64(len(doc.Spacing)))
	b.raw("spacing_median", medianOf(doc.Spacing))
	b.score("spacing_consistency", scaleCoherence(doc.Spacing))
	b.score("spacing_density_score", ls.Density)
	b.score("spacing_whitespace_ratio", ls.Whitespace)
	b.score("spacing_padding_consistency", ls.PaddingConsist)
	b.score("spacing_image_text_balance", ls.ImageTextBal)
	b.score("spacing_vertical_rhythm", ls.VerticalRhythm)

	// Shape
	b.raw("shape_radius_count", float64(len(doc.Radii)))
	b.raw("shape_radius_median", medianOf(doc.Radii))
	b.raw("shape_shadow_count", float64(len(doc.Shadows)))
	b.score("shape_border_heaviness", ls.BorderHeavy)
	b.score("shape_shadow_depth", ls.ShadowDepth)
	b.score("shape_grouping_strength", ls.Grouping)
	b.score("shape_compositional_complexity", ls.Complexity)

	// Brand personality
	appendOneHot(b, "brand_tone_", BrandTones, rep.Brand.Tone)
	appendOneHot(b, "brand_energy_", BrandEnergies, rep.Brand.Energy)
	appendOneHot(b, "brand_trust_", BrandTrustLevels, rep.Brand.TrustLevel)
	b.score("brand_confidence", rep.Brand.Confidence)

	// Layout
	if ls.MedianArea >= 0 {
		b.raw("layout_element_scale", ls.MedianArea)
	} else {
		// Report fallback carries this score pre-normalized.
		b.score("layout_element_scale", rep.Layout.ElementScale)
	}
	b.score("layout_grid_regularity", ls.GridRegularity)

	vec, err := b.finish()
	if err != nil {
		return nil, nil, err
	}
	sum := &Summary{
		ContrastPassRate: rep.ContrastPassRate,
		BrandTone:        rep.Brand.Tone,
		Maturity:         rep.Maturity.Level,
		ConsistencyScore: rep.ConsistencyScore,
	}
	return vec, sum, nil
}

func appendOneHot(b *vecBuilder, prefix string, categories []string, value string) {
	hot := oneHot(categories, value)
	for i, c := range categories {
		b.score(prefix+c, hot[i])
	}
}

type palette struct {
	hueCos, hueSin  float64
	satMean         float64
	satEnergy       float64
	lightMean       float64
	roleDistinction float64
	harmony         float64
	bgLightness     float64
	linkAccent      float64
	brandSat        float64
}

// paletteStats derives the aggregate color features. Unparseable palette
// entries are skipped; only a fully unparseable palette degrades to neutral
// defaults (achromatic, mid lightness).
func paletteStats(doc *tokens.TokenDocument) palette {
	p := palette{hueCos: 1, bgLightness: 1, lightMean: 0.5}

	var hues, sats, lights []float64
	collect := func(colors []string) (hs, ss, ll []float64) {
		for _, raw := range colors {
			c, err := tokens.ParseHex(raw)
			if err != nil {
				continue
			}
			h, s, l := c.HSL()
			hs = append(hs, h)
			ss = append(ss, s)
			ll = append(ll, l)
		}
		return
	}

	ph, ps, pl := collect(doc.Colors.Primary)
	nh, ns, nl := collect(doc.Colors.Neutral)
	var semColors []string
	for _, c := range doc.Colors.Semantic {
		semColors = append(semColors, c)
	}
	sh, ss2, sl := collect(semColors)

	hues = append(append(append(hues, ph...), nh...), sh...)
	sats = append(append(append(sats, ps...), ns...), ss2...)
	lights = append(append(append(lights, pl...), nl...), sl...)

	if len(sats) > 0 {
		p.satMean = mean(sats)
		p.satEnergy = normalize.Clamp01(math.Sqrt(meanSq(sats)))
		p.lightMean = mean(lights)
	}

	// Dominant hue: most saturated primary color, falling back to the first
	// parseable palette entry. Achromatic palettes keep the (1, 0) default.
	if idx := mostSaturated(ps); idx >= 0 {
		p.hueCos, p.hueSin = tokens.HueCosSin(ph[idx])
		p.brandSat = ps[idx]
	} else if len(hues) > 0 {
		p.hueCos, p.hueSin = tokens.HueCosSin(hues[0])
	}

	// Role distinction: how far the primary role sits from the neutral role
	// in (saturation, lightness) space.
	if len(ps) > 0 && len(ns) > 0 {
		ds := mean(ps) - mean(ns)
		dl := mean(pl) - mean(nl)
		p.roleDistinction = normalize.Clamp01(math.Hypot(ds, dl))
	}

	// Harmony: circular concentration of saturated hues. A single-hue
	// palette scores 1; scattered hues approach 0.
	p.harmony = hueConcentration(hues, sats)

	if bg, err := tokens.ParseHex(doc.Colors.Background); err == nil {
		_, _, l := bg.HSL()
		p.bgLightness = l
	}
	if doc.Colors.Link != "" {
		if link, err := tokens.ParseHex(doc.Colors.Link); err == nil {
			bg := tokens.RGB{R: 1, G: 1, B: 1}
			if c, err := tokens.ParseHex(doc.Colors.Background); err == nil {
				bg = c
			}
			// A link color that actually stands out from the background
			// counts as an accent.
			if tokens.ContrastRatio(link, bg) >= 3 {
				p.linkAccent = 1
			}
		}
	}
	return p
}

func mostSaturated(sats []float64) int {
	best, idx := -1.0, -1
	for i, s := range sats {
		if s > best {
			best, idx = s, i
		}
	}
	if best < 0.05 {
		return -1
	}
	return idx
}

// hueConcentration is the length of the mean resultant vector over hues,
// weighted by saturation so near-grays don't dilute the signal.
func hueConcentration(hues, sats []float64) float64 {
	var cx, cy, w float64
	for i, h := range hues {
		s := sats[i]
		if s < 0.05 {
			continue
		}
		rad := h * math.Pi / 180
		cx += s * math.Cos(rad)
		cy += s * math.Sin(rad)
		w += s
	}
	if w == 0 {
		return 0
	}
	return normalize.Clamp01(math.Hypot(cx, cy) / w)
}

func buttonPaletteSize(doc *tokens.TokenDocument) int {
	seen := make(map[string]struct{})
	for _, v := range doc.Buttons.Variants {
		if v.Background != "" {
			seen[v.Background] = struct{}{}
		}
	}
	return len(seen)
}

func weightContrast(weights []int) float64 {
	if len(weights) < 2 {
		return 0
	}
	min, max := weights[0], weights[0]
	for _, w := range weights[1:] {
		if w < min {
			min = w
		}
		if w > max {
			max = w
		}
	}
	return normalize.Clamp01(float64(max-min) / 600)
}

// hierarchyDepth counts distinct size tiers, capped at the four levels the
// bounds table anchors (body, subhead, head, display).
func hierarchyDepth(sizes []float64) float64 {
	distinct := make(map[float64]struct{}, len(sizes))
	for _, s := range sizes {
		distinct[s] = struct{}{}
	}
	d := len(distinct)
	if d > 4 {
		d = 4
	}
	if d < 1 {
		d = 1
	}
	return float64(d)
}

// scaleCoherence scores how geometric a sorted scale is: 1 - CV of the
// consecutive ratios. Short scales have no dispersion to judge and score the
// neutral midpoint.
func scaleCoherence(scale []float64) float64 {
	vals := make([]float64, 0, len(scale))
	for _, v := range scale {
		if v > 0 {
			vals = append(vals, v)
		}
	}
	if len(vals) < 3 {
		return 0.5
	}
	sort.Float64s(vals)
	ratios := make([]float64, 0, len(vals)-1)
	for i := 1; i < len(vals); i++ {
		ratios = append(ratios, vals[i]/vals[i-1])
	}
	return normalize.Clamp01(1 - coefVariation(ratios))
}

func spread(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	min, max := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return max - min
}

func medianOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func meanSq(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v * v
	}
	return sum / float64(len(vals))
}
