package stylevec

import (
	"encoding/json"

	"github.com/hazyhaar/stylevec/vectorize"
)

// IngestInput is one capture run submitted for vectorization. Tokens and
// Report are required; Layout and Embedding are optional enrichments.
type IngestInput struct {
	// RunID identifies the capture run. Empty generates one from the
	// source URL; re-submitting an existing RunID updates the stored run
	// in place.
	RunID string `json:"runId,omitempty"`

	SourceURL  string `json:"sourceUrl"`
	ViewportW  int    `json:"viewportWidth,omitempty"`
	ViewportH  int    `json:"viewportHeight,omitempty"`
	CapturedAt int64  `json:"capturedAt,omitempty"` // unix millis; 0 means now

	// Artifact pointers from the capture pipeline, stored verbatim.
	DomURI        string `json:"domUri,omitempty"`
	CSSURI        string `json:"cssUri,omitempty"`
	ScreenshotURI string `json:"screenshotUri,omitempty"`

	// Tokens is the design-token document JSON.
	Tokens json.RawMessage `json:"tokens"`

	// Report is the style-report document JSON.
	Report json.RawMessage `json:"report"`

	// Layout is the optional raw layout snapshot JSON. When present, the
	// layout features are computed from it instead of the report's
	// pre-aggregated scores.
	Layout json.RawMessage `json:"layout,omitempty"`

	// Embedding is an optional precomputed visual embedding. When set it
	// must match the embedding dimension exactly; the embedding server is
	// then not consulted.
	Embedding      []float32 `json:"embedding,omitempty"`
	EmbeddingModel string    `json:"embeddingModel,omitempty"`
}

// IngestStats summarizes what one ingest wrote.
type IngestStats struct {
	GlobalCombinedDim int  `json:"globalCombinedDim"`
	CTACombinedDim    int  `json:"ctaCombinedDim,omitempty"`
	TokenBytes        int  `json:"tokenBytes"`
	CTAProduced       bool `json:"ctaProduced"`
}

// IngestResult reports one completed ingest: the stored row identities,
// the derived summaries and whether the embedding degraded to zeros.
type IngestResult struct {
	RunID          string               `json:"runId"`
	CaptureID      string               `json:"captureId"`
	StyleProfileID string               `json:"styleProfileId"`
	PrimaryCtaID   *string              `json:"primaryCtaId,omitempty"`
	Summary        *vectorize.Summary   `json:"summary"`
	CTA            *vectorize.CTAReport `json:"cta,omitempty"`
	Degraded       bool                 `json:"degraded"`
	EmbeddingModel string               `json:"embeddingModel,omitempty"`
	Stats          IngestStats          `json:"stats"`
}

// Neighbor is one ranked similarity result.
type Neighbor struct {
	StyleProfileID string  `json:"styleProfileId"`
	RunID          string  `json:"runId"`
	SourceURL      string  `json:"sourceUrl"`
	Distance       float64 `json:"distance"` // 1 - cosine similarity
}

// RunDetail is the read model for one stored run.
type RunDetail struct {
	Capture CaptureInfo `json:"capture"`
	Profile ProfileInfo `json:"profile"`
	CTA     *CTAInfo    `json:"cta,omitempty"`
}

// CaptureInfo is the capture row without internal timestamps.
type CaptureInfo struct {
	RunID         string `json:"runId"`
	SourceURL     string `json:"sourceUrl"`
	ViewportW     int    `json:"viewportWidth"`
	ViewportH     int    `json:"viewportHeight"`
	CapturedAt    int64  `json:"capturedAt"`
	DomURI        string `json:"domUri,omitempty"`
	CSSURI        string `json:"cssUri,omitempty"`
	ScreenshotURI string `json:"screenshotUri,omitempty"`
}

// ProfileInfo is the non-vector projection of a stored style profile.
type ProfileInfo struct {
	ID               string  `json:"id"`
	ContrastPassRate float64 `json:"contrastPassRate"`
	BrandTone        string  `json:"brandTone"`
	Maturity         string  `json:"maturity"`
	ConsistencyScore float64 `json:"consistencyScore"`
	EmbeddingModel   string  `json:"embeddingModel,omitempty"`
	Degraded         bool    `json:"degraded"`
	UpdatedAt        int64   `json:"updatedAt"`
}

// CTAInfo is the non-vector projection of a stored primary CTA.
type CTAInfo struct {
	ID            string  `json:"id"`
	Confidence    float64 `json:"confidence"`
	ContrastRatio float64 `json:"contrastRatio"`
	Tier          string  `json:"tier"`
	MinTapSide    float64 `json:"minTapSide"`
	Prominence    float64 `json:"prominence"`
}

// StatsReport is the aggregate view of the store and index.
type StatsReport struct {
	Captures          int  `json:"captures"`
	Profiles          int  `json:"profiles"`
	CTAs              int  `json:"ctas"`
	Degraded          int  `json:"degraded"`
	GlobalCombinedDim int  `json:"globalCombinedDim"`
	CTACombinedDim    int  `json:"ctaCombinedDim"`
	BruteForceMaxRows int  `json:"bruteForceMaxRows"`
	IndexEnabled      bool `json:"indexEnabled"`
	IndexedVectors    int  `json:"indexedVectors,omitempty"`
	IndexNeedsRebuild bool `json:"indexNeedsRebuild,omitempty"`
}
