// Package visembed produces the visual-embedding section of the combined
// vectors via any OpenAI-compatible embedding server.
//
// The embedding input is a textual style fingerprint of the page (the
// canonical token JSON); the server side decides how to project it. The
// package never fails an ingest: Attempt converts any embedding failure
// into a degraded Result carrying the zero vector.
//
// Usage:
//
//	emb := visembed.New(visembed.Config{
//	    Endpoint: "http://localhost:8003",
//	    Model:    "style-e5-256",
//	})
//	res := visembed.Attempt(ctx, emb, fingerprint)
//	// res.Vector is always usable; res.Err records a degradation, if any.
package visembed

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Embedder converts a style fingerprint to a vector.
type Embedder interface {
	// Embed returns the embedding vector for a single fingerprint.
	Embed(ctx context.Context, input string) ([]float32, error)

	// Dimension returns the vector dimension the client is configured for.
	Dimension() int

	// Model returns the model name.
	Model() string
}

// Config configures the embedding client.
type Config struct {
	// Endpoint is the base URL of the embedding server. If empty, New
	// returns a noop embedder producing zero vectors.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Model is the model name sent in the request.
	Model string `json:"model" yaml:"model"`

	// Dimension is the required vector dimension. Responses of any other
	// length are rejected.
	Dimension int `json:"dimension" yaml:"dimension"`

	// Timeout per HTTP request. Default: 30s.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Logger for degradation warnings. Defaults to slog.Default().
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.Dimension <= 0 {
		c.Dimension = 256
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// New creates an Embedder from config. An empty Endpoint yields a noop
// embedder, so local and test deployments run without an embedding server.
func New(cfg Config) Embedder {
	cfg.defaults()
	if cfg.Endpoint == "" {
		return &noopEmbedder{dim: cfg.Dimension, model: cfg.Model}
	}
	return newOpenAIClient(cfg)
}

// Result is the outcome of one embedding attempt. Vector is always
// non-nil and correctly sized; Err, when set, records why the vector is a
// zero fill.
type Result struct {
	Vector   []float32
	Model    string
	Degraded bool
	Err      error
}

// Attempt runs one embedding call and absorbs failure: an error or a
// wrong-length response degrades to the zero vector instead of propagating.
// The vector pipeline treats a zero embedding section as "no visual
// signal", which keeps combined dimensionality fixed across degraded and
// healthy runs.
func Attempt(ctx context.Context, emb Embedder, input string) Result {
	vec, err := emb.Embed(ctx, input)
	if err == nil && len(vec) != emb.Dimension() {
		err = fmt.Errorf("visembed: server returned %d dims, want %d", len(vec), emb.Dimension())
	}
	if err != nil {
		return Result{
			Vector:   make([]float32, emb.Dimension()),
			Model:    emb.Model(),
			Degraded: true,
			Err:      err,
		}
	}
	return Result{Vector: vec, Model: emb.Model()}
}

type noopEmbedder struct {
	dim   int
	model string
}

func (n *noopEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return make([]float32, n.dim), nil
}

func (n *noopEmbedder) Dimension() int { return n.dim }
func (n *noopEmbedder) Model() string  { return n.model }
