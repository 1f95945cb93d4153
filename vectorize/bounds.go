package vectorize

import "github.com/hazyhaar/stylevec/normalize"

// boundsTable declares the normalization contract for every feature both
// builders emit. Strategy choice per feature:
//
//   - log-minmax for counts and other heavy-tailed raw values,
//   - minmax for empirically ranged pixel values,
//   - absolute for theoretically fixed ranges (scores already in [0,1],
//     indicator features, lightness/saturation fractions),
//   - circular for the (cos, sin) hue pairs, which the builders pre-encode
//     and never push through scalar normalization.
//
// The table is package state constructed once; ValidateBounds runs at
// service startup and fails readiness on any gap.
var boundsTable = normalize.NewTable([]normalize.Bounds{
	// Color
	{Name: "color_palette_size", Strategy: normalize.LogMinMax, Min: 0, Max: 32},
	{Name: "color_primary_count", Strategy: normalize.LogMinMax, Min: 0, Max: 12},
	{Name: "color_neutral_count", Strategy: normalize.LogMinMax, Min: 0, Max: 12},
	{Name: "color_semantic_count", Strategy: normalize.LogMinMax, Min: 0, Max: 8},
	{Name: "color_contrast_pass_rate", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "color_dominant_hue_cos", Strategy: normalize.Circular},
	{Name: "color_dominant_hue_sin", Strategy: normalize.Circular},
	{Name: "color_saturation_mean", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "color_saturation_energy", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "color_lightness_mean", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "color_role_distinction", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "color_harmony_score", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "color_background_lightness", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "color_link_accent_presence", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "color_brand_saturation", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "color_button_palette_size", Strategy: normalize.LogMinMax, Min: 0, Max: 8},

	// Typography
	{Name: "typo_family_count", Strategy: normalize.LogMinMax, Min: 0, Max: 6},
	{Name: "typo_size_count", Strategy: normalize.LogMinMax, Min: 0, Max: 16},
	{Name: "typo_size_range", Strategy: normalize.MinMax, Min: 0, Max: 60},
	{Name: "typo_weight_count", Strategy: normalize.LogMinMax, Min: 0, Max: 8},
	{Name: "typo_weight_contrast", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "typo_hierarchy_depth", Strategy: normalize.MinMax, Min: 1, Max: 4},
	{Name: "typo_lineheight_count", Strategy: normalize.LogMinMax, Min: 0, Max: 8},
	{Name: "typo_coherence", Strategy: normalize.Absolute, Min: 0, Max: 1},

	// Spacing
	{Name: "spacing_scale_length", Strategy: normalize.LogMinMax, Min: 0, Max: 12},
	{Name: "spacing_median", Strategy: normalize.LogMinMax, Min: 0, Max: 64},
	{Name: "spacing_consistency", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "spacing_density_score", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "spacing_whitespace_ratio", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "spacing_padding_consistency", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "spacing_image_text_balance", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "spacing_vertical_rhythm", Strategy: normalize.Absolute, Min: 0, Max: 1},

	// Shape
	{Name: "shape_radius_count", Strategy: normalize.LogMinMax, Min: 0, Max: 8},
	{Name: "shape_radius_median", Strategy: normalize.MinMax, Min: 0, Max: 32},
	{Name: "shape_shadow_count", Strategy: normalize.LogMinMax, Min: 0, Max: 8},
	{Name: "shape_border_heaviness", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "shape_shadow_depth", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "shape_grouping_strength", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "shape_compositional_complexity", Strategy: normalize.Absolute, Min: 0, Max: 1},

	// Brand personality one-hots + confidence
	{Name: "brand_tone_professional", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "brand_tone_playful", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "brand_tone_elegant", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "brand_tone_bold", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "brand_tone_minimal", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "brand_energy_calm", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "brand_energy_energetic", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "brand_energy_sophisticated", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "brand_energy_dynamic", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "brand_trust_conservative", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "brand_trust_modern", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "brand_trust_innovative", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "brand_trust_experimental", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "brand_confidence", Strategy: normalize.Absolute, Min: 0, Max: 1},

	// Layout
	{Name: "layout_element_scale", Strategy: normalize.LogMinMax, Min: 0, Max: 200_000},
	{Name: "layout_grid_regularity", Strategy: normalize.Absolute, Min: 0, Max: 1},

	// CTA
	{Name: "cta_bg_lightness", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "cta_fg_lightness", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "cta_contrast_ratio", Strategy: normalize.LogMinMax, Min: 1, Max: 21},
	{Name: "cta_hue_cos", Strategy: normalize.Circular},
	{Name: "cta_hue_sin", Strategy: normalize.Circular},
	{Name: "cta_saturation", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "cta_border_radius", Strategy: normalize.MinMax, Min: 0, Max: 32},
	{Name: "cta_border_width", Strategy: normalize.MinMax, Min: 0, Max: 4},
	{Name: "cta_has_border", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "cta_padding_x", Strategy: normalize.MinMax, Min: 0, Max: 48},
	{Name: "cta_padding_y", Strategy: normalize.MinMax, Min: 0, Max: 32},
	{Name: "cta_min_tap_side", Strategy: normalize.MinMax, Min: 0, Max: 80},
	{Name: "cta_font_size", Strategy: normalize.MinMax, Min: 8, Max: 32},
	{Name: "cta_font_weight", Strategy: normalize.MinMax, Min: 300, Max: 900},
	{Name: "cta_is_uppercase", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "cta_has_shadow", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "cta_shadow_depth", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "cta_prominence", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "cta_above_fold", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "cta_aspect_ratio", Strategy: normalize.MinMax, Min: 1, Max: 8},
	{Name: "cta_text_length", Strategy: normalize.LogMinMax, Min: 0, Max: 40},
	{Name: "cta_tier_aaa", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "cta_tier_aa", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "cta_tier_fail", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "cta_confidence", Strategy: normalize.Absolute, Min: 0, Max: 1},
	{Name: "cta_secondary_count", Strategy: normalize.LogMinMax, Min: 0, Max: 6},
})

// Bounds exposes the table read-only (for audit endpoints and tests).
func Bounds() *normalize.Table { return boundsTable }

// ValidateBounds checks the bounds table against every feature name of
// both vector kinds. All gaps are reported in a single error; call this
// before serving — a partial table must block process readiness.
func ValidateBounds() error {
	features := append(GlobalFeatureNames(), CTAFeatureNames()...)
	return boundsTable.Validate(features)
}
