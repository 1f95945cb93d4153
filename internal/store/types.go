package store

// Capture is one row of the captures table: the identity and artifact
// pointers of a page run.
type Capture struct {
	ID            string
	RunID         string
	SourceURL     string
	ViewportW     int
	ViewportH     int
	CapturedAt    int64
	DomURI        string
	CSSURI        string
	ScreenshotURI string
	CreatedAt     int64
	UpdatedAt     int64
}

// StyleProfile is one row of style_profiles: the page-level vectors plus
// the UX summary columns.
type StyleProfile struct {
	ID               string
	CaptureID        string
	TokensJSON       string
	Interpretable    []float32
	Embedding        []float32
	Combined         []float32
	ContrastPassRate float64
	BrandTone        string
	Maturity         string
	ConsistencyScore float64
	EmbeddingModel   string
	Degraded         bool
	CreatedAt        int64
	UpdatedAt        int64
}

// PrimaryCTA is one row of primary_cta_vectors.
type PrimaryCTA struct {
	ID             string
	StyleProfileID string
	Interpretable  []float32
	Embedding      []float32
	Combined       []float32
	Confidence     float64
	ContrastRatio  float64
	Tier           string
	MinTapSide     float64
	Prominence     float64
	CreatedAt      int64
	UpdatedAt      int64
}

// Run bundles everything StoreVectors persists in one transaction. CTA is
// nil when the page has no primary call-to-action.
type Run struct {
	Capture Capture
	Profile StyleProfile
	CTA     *PrimaryCTA
}

// Stats summarizes what one StoreVectors call wrote.
type Stats struct {
	GlobalCombinedDim int  `json:"globalCombinedDim"`
	CTACombinedDim    int  `json:"ctaCombinedDim"`
	TokenBytes        int  `json:"tokenBytes"`
	CTAProduced       bool `json:"ctaProduced"`
	Degraded          bool `json:"degraded"`
}

// StoreResult carries the persisted row identities. PrimaryCtaID is nil
// when the run had no CTA.
type StoreResult struct {
	CaptureID      string  `json:"captureId"`
	StyleProfileID string  `json:"styleProfileId"`
	PrimaryCtaID   *string `json:"primaryCtaId,omitempty"`
	Stats          Stats   `json:"stats"`
}
