package vectorize

// Feature orderings are frozen per vector-kind generation. Append-only is
// not enough: any change here changes dimension meaning positionally and
// requires a new generation plus a vector-column migration.

// Brand-personality category lists. One-hot encoding spans the full list;
// an unrecognized label encodes as all zeros rather than erroring.
var (
	BrandTones       = []string{"professional", "playful", "elegant", "bold", "minimal"}
	BrandEnergies    = []string{"calm", "energetic", "sophisticated", "dynamic"}
	BrandTrustLevels = []string{"conservative", "modern", "innovative", "experimental"}
)

var globalFeatureNames = []string{
	// Color (16)
	"color_palette_size",
	"color_primary_count",
	"color_neutral_count",
	"color_semantic_count",
	"color_contrast_pass_rate",
	"color_dominant_hue_cos",
	"color_dominant_hue_sin",
	"color_saturation_mean",
	"color_saturation_energy",
	"color_lightness_mean",
	"color_role_distinction",
	"color_harmony_score",
	"color_background_lightness",
	"color_link_accent_presence",
	"color_brand_saturation",
	"color_button_palette_size",

	// Typography (8)
	"typo_family_count",
	"typo_size_count",
	"typo_size_range",
	"typo_weight_count",
	"typo_weight_contrast",
	"typo_hierarchy_depth",
	"typo_lineheight_count",
	"typo_coherence",

	// Spacing (8)
	"spacing_scale_length",
	"spacing_median",
	"spacing_consistency",
	"spacing_density_score",
	"spacing_whitespace_ratio",
	"spacing_padding_consistency",
	"spacing_image_text_balance",
	"spacing_vertical_rhythm",

	// Shape (7)
	"shape_radius_count",
	"shape_radius_median",
	"shape_shadow_count",
	"shape_border_heaviness",
	"shape_shadow_depth",
	"shape_grouping_strength",
	"shape_compositional_complexity",

	// Brand personality (14): 5 + 4 + 4 one-hot + confidence
	"brand_tone_professional",
	"brand_tone_playful",
	"brand_tone_elegant",
	"brand_tone_bold",
	"brand_tone_minimal",
	"brand_energy_calm",
	"brand_energy_energetic",
	"brand_energy_sophisticated",
	"brand_energy_dynamic",
	"brand_trust_conservative",
	"brand_trust_modern",
	"brand_trust_innovative",
	"brand_trust_experimental",
	"brand_confidence",

	// Layout (2)
	"layout_element_scale",
	"layout_grid_regularity",
}

var ctaFeatureNames = []string{
	"cta_bg_lightness",
	"cta_fg_lightness",
	"cta_contrast_ratio",
	"cta_hue_cos",
	"cta_hue_sin",
	"cta_saturation",
	"cta_border_radius",
	"cta_border_width",
	"cta_has_border",
	"cta_padding_x",
	"cta_padding_y",
	"cta_min_tap_side",
	"cta_font_size",
	"cta_font_weight",
	"cta_is_uppercase",
	"cta_has_shadow",
	"cta_shadow_depth",
	"cta_prominence",
	"cta_above_fold",
	"cta_aspect_ratio",
	"cta_text_length",
	"cta_tier_aaa",
	"cta_tier_aa",
	"cta_tier_fail",
	"cta_confidence",
	"cta_secondary_count",
}

// GlobalFeatureNames returns a copy of the global feature ordering.
func GlobalFeatureNames() []string {
	out := make([]string, len(globalFeatureNames))
	copy(out, globalFeatureNames)
	return out
}

// CTAFeatureNames returns a copy of the CTA feature ordering.
func CTAFeatureNames() []string {
	out := make([]string, len(ctaFeatureNames))
	copy(out, ctaFeatureNames)
	return out
}

// oneHot encodes value across categories; unknown values yield all zeros.
func oneHot(categories []string, value string) []float64 {
	out := make([]float64, len(categories))
	for i, c := range categories {
		if c == value {
			out[i] = 1
			break
		}
	}
	return out
}
