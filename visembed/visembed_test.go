package visembed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// WHAT: an empty endpoint yields a noop embedder producing zero vectors of
// the configured dimension.
// WHY: local and test deployments must run without an embedding server.
func TestNewEmptyEndpointIsNoop(t *testing.T) {
	emb := New(Config{Dimension: 8})
	vec, err := emb.Embed(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 8 {
		t.Fatalf("got %d dims, want 8", len(vec))
	}
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("dim %d = %g, want 0", i, v)
		}
	}
}

// WHAT: the client parses an OpenAI-format response.
func TestOpenAIClientEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"model": "style-e5-256",
			"data": []map[string]any{
				{"embedding": []float32{0.1, 0.2, 0.3}, "index": 0},
			},
		})
	}))
	defer srv.Close()

	emb := New(Config{Endpoint: srv.URL, Model: "style-e5-256", Dimension: 3})
	vec, err := emb.Embed(context.Background(), "fingerprint")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 || vec[1] != 0.2 {
		t.Fatalf("unexpected vector %v", vec)
	}
}

// WHAT: Attempt degrades to a zero vector on server failure instead of
// returning an error.
// WHY: a missing embedding must never fail the ingest; it is recorded as a
// degradation and the run proceeds.
func TestAttemptDegradesOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	emb := New(Config{Endpoint: srv.URL, Dimension: 4})
	res := Attempt(context.Background(), emb, "fingerprint")
	if !res.Degraded || res.Err == nil {
		t.Fatalf("expected degraded result, got %+v", res)
	}
	if len(res.Vector) != 4 {
		t.Fatalf("degraded vector has %d dims, want 4", len(res.Vector))
	}
	for i, v := range res.Vector {
		if v != 0 {
			t.Fatalf("dim %d = %g, want zero fill", i, v)
		}
	}
}

// WHAT: a wrong-length server response also degrades.
// WHY: a 128-dim vector in a 256-dim column would corrupt cosine search;
// zero fill is the safe substitute.
func TestAttemptDegradesOnWrongDimension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{1, 2}, "index": 0}},
		})
	}))
	defer srv.Close()

	emb := New(Config{Endpoint: srv.URL, Dimension: 4})
	res := Attempt(context.Background(), emb, "fingerprint")
	if !res.Degraded {
		t.Fatalf("expected degraded result for 2-dim response, got %+v", res)
	}
	if len(res.Vector) != 4 {
		t.Fatalf("degraded vector has %d dims, want 4", len(res.Vector))
	}
}
