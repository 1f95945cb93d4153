package vectorize

import (
	"strings"

	"github.com/hazyhaar/stylevec/normalize"
	"github.com/hazyhaar/stylevec/tokens"
)

// CTAReport is the accessibility sub-report derived alongside the CTA
// vector and persisted with it.
type CTAReport struct {
	ContrastRatio float64 `json:"contrastRatio"`
	Tier          string  `json:"tier"` // "AAA", "AA" or "fail"
	MinTapSide    float64 `json:"minTapSide"`
	Prominence    float64 `json:"prominence"`
	Confidence    float64 `json:"confidence"`
}

// Contrast tier thresholds (WCAG 2.x, normal text).
const (
	tierAAAMin = 7.0
	tierAAMin  = 4.5
)

// BuildPrimaryCTAVector computes the 26-dimension vector for the page's
// primary call-to-action. A page without a primary button variant returns
// (nil, nil, false, nil): absence is an expected condition, not an error.
//
// Unparseable button colors fall back to black-on-white so the contrast
// math stays defined; the fallback is visible in the report as a maximal
// contrast ratio, not hidden.
func BuildPrimaryCTAVector(doc *tokens.TokenDocument, rep *tokens.StyleReport) (*NamedVector, *CTAReport, bool, error) {
	btn, ok := doc.PrimaryButton()
	if !ok {
		return nil, nil, false, nil
	}

	bg := tokens.RGB{} // black
	if c, err := tokens.ParseHex(btn.Background); err == nil {
		bg = c
	}
	fg := tokens.RGB{R: 1, G: 1, B: 1} // white
	if c, err := tokens.ParseHex(btn.Foreground); err == nil {
		fg = c
	}

	bgHue, bgSat, bgLight := bg.HSL()
	_, _, fgLight := fg.HSL()
	hueCos, hueSin := tokens.HueCosSin(bgHue)

	ratio := tokens.ContrastRatio(bg, fg)
	tier := "fail"
	switch {
	case ratio >= tierAAAMin:
		tier = "AAA"
	case ratio >= tierAAMin:
		tier = "AA"
	}

	padV, padH := tokens.ParsePadding(btn.Padding)
	fontSize := btn.FontSize
	if fontSize <= 0 {
		fontSize = 16
	}
	// Tap-target estimate: line box plus vertical padding. Width is almost
	// always the larger side, so the height estimate is the binding one.
	minTapSide := fontSize*1.2 + 2*padV

	prominence := normalize.Clamp01(btn.Prominence)
	contrastScore := normalize.Clamp01(ratio / tierAAAMin)
	confidence := normalize.Clamp01((contrastScore + prominence) / 2)

	shadow := ShadowBlurScore(btn.BoxShadow)

	// Aspect ratio estimated from label metrics; avoids needing the
	// rendered box for a tokens-only ingest.
	height := minTapSide
	width := float64(len(btn.Label))*fontSize*0.6 + 2*padH
	aspect := 1.0
	if height > 0 && width > height {
		aspect = width / height
	}

	b := &vecBuilder{kind: KindCTA}
	b.score("cta_bg_lightness", bgLight)
	b.score("cta_fg_lightness", fgLight)
	b.raw("cta_contrast_ratio", ratio)
	b.pair("cta_hue_cos", "cta_hue_sin", hueCos, hueSin)
	b.score("cta_saturation", bgSat)
	b.raw("cta_border_radius", btn.BorderRadius)
	b.raw("cta_border_width", btn.BorderWidth)
	b.score("cta_has_border", boolFeature(btn.BorderWidth > 0))
	b.raw("cta_padding_x", padH)
	b.raw("cta_padding_y", padV)
	b.raw("cta_min_tap_side", minTapSide)
	b.raw("cta_font_size", fontSize)
	b.raw("cta_font_weight", float64(btn.FontWeight))
	b.score("cta_is_uppercase", boolFeature(strings.EqualFold(btn.TextTransform, "uppercase")))
	b.score("cta_has_shadow", boolFeature(shadow > 0))
	b.score("cta_shadow_depth", shadow)
	b.score("cta_prominence", prominence)
	b.score("cta_above_fold", boolFeature(btn.AboveFold))
	b.raw("cta_aspect_ratio", aspect)
	b.raw("cta_text_length", float64(len(btn.Label)))
	b.score("cta_tier_aaa", boolFeature(tier == "AAA"))
	b.score("cta_tier_aa", boolFeature(tier == "AA"))
	b.score("cta_tier_fail", boolFeature(tier == "fail"))
	b.score("cta_confidence", confidence)
	b.raw("cta_secondary_count", float64(doc.SecondaryCount()))

	vec, err := b.finish()
	if err != nil {
		return nil, nil, false, err
	}
	report := &CTAReport{
		ContrastRatio: ratio,
		Tier:          tier,
		MinTapSide:    minTapSide,
		Prominence:    prominence,
		Confidence:    confidence,
	}
	return vec, report, true, nil
}

func boolFeature(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
