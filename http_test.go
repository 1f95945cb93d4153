package stylevec

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) (*Service, *httptest.Server) {
	t.Helper()
	svc := newTestService(t)
	srv := httptest.NewServer(svc.Routes())
	t.Cleanup(srv.Close)
	return svc, srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// WHAT: the happy path across the HTTP surface: ingest, read back, find
// neighbors, explain.
func TestHTTPRoundTrip(t *testing.T) {
	_, srv := newTestServer(t)

	var a, b IngestResult
	resp := postJSON(t, srv.URL+"/api/v1/ingest", testInput("run-a", "#2563eb"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ingest status = %d", resp.StatusCode)
	}
	decodeBody(t, resp, &a)

	resp = postJSON(t, srv.URL+"/api/v1/ingest", testInput("run-b", "#2563eb"))
	decodeBody(t, resp, &b)

	resp, err := http.Get(srv.URL + "/api/v1/runs/run-a")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("runs status = %d", resp.StatusCode)
	}
	var detail RunDetail
	decodeBody(t, resp, &detail)
	if detail.Profile.ID != a.StyleProfileID {
		t.Fatalf("run detail profile = %s, want %s", detail.Profile.ID, a.StyleProfileID)
	}

	resp, err = http.Get(srv.URL + "/api/v1/profiles/" + a.StyleProfileID + "/similar?limit=5")
	if err != nil {
		t.Fatal(err)
	}
	var similar struct {
		Neighbors []Neighbor `json:"neighbors"`
	}
	decodeBody(t, resp, &similar)
	if len(similar.Neighbors) != 1 || similar.Neighbors[0].StyleProfileID != b.StyleProfileID {
		t.Fatalf("unexpected neighbors: %+v", similar.Neighbors)
	}

	resp, err = http.Get(srv.URL + "/api/v1/explain?a=" + a.StyleProfileID + "&b=" + b.StyleProfileID + "&k=3")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("explain status = %d", resp.StatusCode)
	}
	var exp struct {
		Cosine float64 `json:"cosine"`
	}
	decodeBody(t, resp, &exp)
	if exp.Cosine < 0.999 {
		t.Fatalf("cosine = %g, want ~1 for identical pages", exp.Cosine)
	}
}

// WHAT: error conditions map to the documented status codes.
// WHY: clients branch on 404 vs 422 vs 400; a blanket 500 would hide
// caller-fixable problems.
func TestHTTPStatusMapping(t *testing.T) {
	_, srv := newTestServer(t)

	// Malformed body: 400.
	resp, err := http.Post(srv.URL+"/api/v1/ingest", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatal(err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d, want 400", resp.StatusCode)
	}

	// Missing required token fields: 422.
	input := testInput("run-a", "#2563eb")
	input.Tokens = json.RawMessage(`{"colors": {}}`)
	resp = postJSON(t, srv.URL+"/api/v1/ingest", input)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("precondition status = %d, want 422", resp.StatusCode)
	}

	// Unknown run: 404.
	resp, err = http.Get(srv.URL + "/api/v1/runs/never-ingested")
	if err != nil {
		t.Fatal(err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown run status = %d, want 404", resp.StatusCode)
	}

	// Unknown kind: 400.
	resp, err = http.Get(srv.URL + "/api/v1/profiles/sp_x/similar?kind=bogus")
	if err != nil {
		t.Fatal(err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown kind status = %d, want 400", resp.StatusCode)
	}

	// Explain without both ids: 400.
	resp, err = http.Get(srv.URL + "/api/v1/explain?a=sp_x")
	if err != nil {
		t.Fatal(err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("explain status = %d, want 400", resp.StatusCode)
	}
}

// WHAT: a known reference with no stored neighbors returns 200 and an
// empty list, not 404.
func TestHTTPSimilarEmptyList(t *testing.T) {
	_, srv := newTestServer(t)

	var only IngestResult
	resp := postJSON(t, srv.URL+"/api/v1/ingest", testInput("run-solo", "#2563eb"))
	decodeBody(t, resp, &only)

	resp, err := http.Get(srv.URL + "/api/v1/profiles/" + only.StyleProfileID + "/similar")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var similar struct {
		Neighbors []Neighbor `json:"neighbors"`
	}
	decodeBody(t, resp, &similar)
	if similar.Neighbors == nil || len(similar.Neighbors) != 0 {
		t.Fatalf("neighbors = %v, want empty non-nil list", similar.Neighbors)
	}
}

// WHAT: the bcrypt basic-auth middleware rejects missing and wrong
// credentials and passes correct ones through.
func TestBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	handler := BasicAuth("ops", hash)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no credentials status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.SetBasicAuth("ops", "wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want 401", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL, nil)
	req.SetBasicAuth("ops", "hunter2")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("valid credentials status = %d, want 200", resp.StatusCode)
	}
}
