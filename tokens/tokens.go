// Package tokens defines the typed view over the design-token and
// style-report documents produced by the capture/extraction collaborators.
//
// Both documents arrive as JSON. Instead of free-form dynamic lookups, every
// value the vector builders consume goes through a typed accessor with a
// documented default, and the fields a builder cannot work without are
// checked up front by Validate — absence is a named precondition error, not
// a silent zero.
package tokens

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TokenDocument is the structured design-token description of one captured
// page: colors, typography, spacing, shapes and button variants.
type TokenDocument struct {
	Colors     Colors     `json:"colors"`
	Typography Typography `json:"typography"`
	Spacing    []float64  `json:"spacing"`      // spacing scale, px
	Radii      []float64  `json:"borderRadius"` // border-radius scale, px
	Shadows    []string   `json:"boxShadow"`    // raw box-shadow values
	Buttons    Buttons    `json:"buttons"`
}

// Colors groups the extracted palette by role.
type Colors struct {
	Primary    []string          `json:"primary"`
	Neutral    []string          `json:"neutral"`
	Semantic   map[string]string `json:"semantic"` // e.g. "success" -> "#16a34a"
	Background string            `json:"background"`
	Link       string            `json:"link"`
}

// Typography holds the page's font metrics.
type Typography struct {
	Families    []string  `json:"fontFamilies"`
	Sizes       []float64 `json:"fontSizes"` // px, ascending not guaranteed
	Weights     []int     `json:"fontWeights"`
	LineHeights []float64 `json:"lineHeights"`
}

// Buttons lists the extracted button variants. The "primary" variant, when
// present, is the page's principal call-to-action.
type Buttons struct {
	Variants []ButtonVariant `json:"variants"`
}

// ButtonVariant is one extracted button style.
type ButtonVariant struct {
	Type          string  `json:"type"` // "primary", "secondary", "ghost", ...
	Background    string  `json:"backgroundColor"`
	Foreground    string  `json:"color"`
	Padding       string  `json:"padding"` // CSS shorthand, px
	FontSize      float64 `json:"fontSize"`
	FontWeight    int     `json:"fontWeight"`
	BorderRadius  float64 `json:"borderRadius"`
	BorderWidth   float64 `json:"borderWidth"`
	TextTransform string  `json:"textTransform"`
	BoxShadow     string  `json:"boxShadow"`
	Label         string  `json:"label"`
	Prominence    float64 `json:"prominence"` // 0..1, from the capture analyzer
	AboveFold     bool    `json:"aboveFold"`
}

// StyleReport is the derived analysis document layered on the token
// document: contrast, brand personality, layout metrics, maturity.
type StyleReport struct {
	ContrastPassRate float64          `json:"contrastPassRate"` // 0..1
	Brand            BrandPersonality `json:"brandPersonality"`
	Layout           LayoutMetrics    `json:"layoutFeatures"`
	Maturity         Maturity         `json:"designSystemMaturity"`
	ConsistencyScore float64          `json:"consistencyScore"` // 0..1
}

// BrandPersonality is the classifier output over the page's visual tone.
type BrandPersonality struct {
	Tone       string  `json:"tone"`       // professional|playful|elegant|bold|minimal
	Energy     string  `json:"energy"`     // calm|energetic|sophisticated|dynamic
	TrustLevel string  `json:"trustLevel"` // conservative|modern|innovative|experimental
	Confidence float64 `json:"confidence"` // 0..1
}

// LayoutMetrics carries report-level layout scores, used as the fallback
// when raw layout nodes are not supplied with the run.
type LayoutMetrics struct {
	DensityScore            float64 `json:"densityScore"`
	WhitespaceRatio         float64 `json:"whitespaceRatio"`
	PaddingConsistency      float64 `json:"paddingConsistency"`
	ImageTextBalance        float64 `json:"imageTextBalance"`
	GroupingStrength        float64 `json:"groupingStrength"`
	CompositionalComplexity float64 `json:"compositionalComplexity"`
	BorderHeaviness         float64 `json:"borderHeaviness"`
	ShadowDepth             float64 `json:"shadowDepth"`
	ElementScale            float64 `json:"elementScale"`
	GridRegularity          float64 `json:"gridRegularity"`
	VerticalRhythm          float64 `json:"verticalRhythm"`
}

// Maturity is the design-system maturity classification.
type Maturity struct {
	Level string  `json:"level"` // "ad-hoc", "emerging", "systematic", ...
	Score float64 `json:"score"`
}

// DecodeTokenDocument parses a token document from JSON.
func DecodeTokenDocument(raw []byte) (*TokenDocument, error) {
	var doc TokenDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("tokens: decode token document: %w", err)
	}
	return &doc, nil
}

// DecodeStyleReport parses a style report from JSON.
func DecodeStyleReport(raw []byte) (*StyleReport, error) {
	var rep StyleReport
	if err := json.Unmarshal(raw, &rep); err != nil {
		return nil, fmt.Errorf("tokens: decode style report: %w", err)
	}
	return &rep, nil
}

// PreconditionError enumerates every required field missing from the input
// documents. One error carries the full list so a caller sees all gaps at
// once.
type PreconditionError struct {
	Fields []string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("tokens: %d required field(s) missing: %s",
		len(e.Fields), strings.Join(e.Fields, ", "))
}

// Validate checks the fields the vector builders cannot work without.
// A garbage-in vector would silently corrupt similarity search, so absence
// of any of these aborts the run before persistence.
func Validate(doc *TokenDocument, rep *StyleReport) error {
	var missing []string
	if doc == nil {
		missing = append(missing, "tokens")
	} else {
		if len(doc.Colors.Primary) == 0 {
			missing = append(missing, "tokens.colors.primary")
		}
		if len(doc.Typography.Sizes) == 0 {
			missing = append(missing, "tokens.typography.fontSizes")
		}
		if len(doc.Spacing) == 0 {
			missing = append(missing, "tokens.spacing")
		}
	}
	if rep == nil {
		missing = append(missing, "report")
	} else if rep.Brand == (BrandPersonality{}) {
		missing = append(missing, "report.brandPersonality")
	}
	if len(missing) > 0 {
		return &PreconditionError{Fields: missing}
	}
	return nil
}

// PrimaryButton returns the first variant tagged "primary", which the
// token extractor uses for the page's principal call-to-action. The second
// return is false when no primary variant exists — an absence condition,
// not an error.
func (d *TokenDocument) PrimaryButton() (*ButtonVariant, bool) {
	for i := range d.Buttons.Variants {
		if d.Buttons.Variants[i].Type == "primary" {
			return &d.Buttons.Variants[i], true
		}
	}
	return nil, false
}

// SecondaryCount counts the non-primary button variants.
func (d *TokenDocument) SecondaryCount() int {
	n := 0
	for _, v := range d.Buttons.Variants {
		if v.Type != "primary" {
			n++
		}
	}
	return n
}

// AllColors returns every palette color across roles, primary first.
func (d *TokenDocument) AllColors() []string {
	out := make([]string, 0, len(d.Colors.Primary)+len(d.Colors.Neutral)+len(d.Colors.Semantic))
	out = append(out, d.Colors.Primary...)
	out = append(out, d.Colors.Neutral...)
	for _, c := range d.Colors.Semantic {
		out = append(out, c)
	}
	return out
}

// ParsePadding parses a CSS padding shorthand ("12px", "8px 16px",
// "8px 16px 8px 16px") into vertical and horizontal components in px.
// Unparseable input returns (0, 0) — padding-derived features then fall
// back to their bounds minimum.
func ParsePadding(s string) (vertical, horizontal float64) {
	fields := strings.Fields(s)
	vals := make([]float64, 0, 4)
	for _, f := range fields {
		f = strings.TrimSuffix(f, "px")
		var v float64
		if _, err := fmt.Sscanf(f, "%g", &v); err != nil {
			continue
		}
		vals = append(vals, v)
	}
	switch len(vals) {
	case 1:
		return vals[0], vals[0]
	case 2:
		return vals[0], vals[1]
	case 3:
		return (vals[0] + vals[2]) / 2, vals[1]
	case 4:
		return (vals[0] + vals[2]) / 2, (vals[1] + vals[3]) / 2
	}
	return 0, 0
}
