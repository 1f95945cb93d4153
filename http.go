package stylevec

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hazyhaar/stylevec/tokens"
	"github.com/hazyhaar/stylevec/vectorize"
)

// Routes returns the HTTP API router.
func (s *Service) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ingest", s.handleIngest)
		r.Get("/profiles/{profileID}/similar", s.handleSimilar)
		r.Get("/explain", s.handleExplain)
		r.Get("/runs/{runID}", s.handleRun)
		r.Get("/stats", s.handleStats)
	})

	return r
}

func (s *Service) handleIngest(w http.ResponseWriter, r *http.Request) {
	var input IngestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	res, err := s.Ingest(r.Context(), &input)
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) handleSimilar(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileID")
	kind := queryKind(r)
	limit := queryInt(r, "limit", 10)

	neighbors, err := s.FindSimilar(r.Context(), profileID, kind, limit)
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	if neighbors == nil {
		neighbors = []Neighbor{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profileId": profileID,
		"kind":      kind,
		"neighbors": neighbors,
	})
}

func (s *Service) handleExplain(w http.ResponseWriter, r *http.Request) {
	a := r.URL.Query().Get("a")
	b := r.URL.Query().Get("b")
	if a == "" || b == "" {
		writeError(w, http.StatusBadRequest, "query parameters a and b are required")
		return
	}
	kind := queryKind(r)
	k := queryInt(r, "k", 10)

	exp, err := s.Explain(r.Context(), a, b, kind, k)
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (s *Service) handleRun(w http.ResponseWriter, r *http.Request) {
	detail, err := s.Run(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	report, err := s.Stats(r.Context())
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// errStatus maps service errors to HTTP status codes. Missing required
// document fields are the caller's data problem (422); unknown ids are
// 404; malformed requests are 400.
func errStatus(err error) int {
	var precond *tokens.PreconditionError
	switch {
	case errors.As(err, &precond):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func queryKind(r *http.Request) vectorize.Kind {
	if k := r.URL.Query().Get("kind"); k != "" {
		return vectorize.Kind(k)
	}
	return vectorize.KindGlobal
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// BasicAuth returns a middleware enforcing HTTP Basic Auth against a
// bcrypt password hash. The username is compared in constant time; any
// username is accepted when expectedUser is empty. /healthz stays open so
// liveness probes work without credentials.
func BasicAuth(expectedUser string, passwordHash []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" {
				next.ServeHTTP(w, r)
				return
			}
			user, pass, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="stylevec"`)
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			userOK := expectedUser == "" ||
				subtle.ConstantTimeCompare([]byte(user), []byte(expectedUser)) == 1
			passOK := bcrypt.CompareHashAndPassword(passwordHash, []byte(pass)) == nil
			if !userOK || !passOK {
				w.Header().Set("WWW-Authenticate", `Basic realm="stylevec"`)
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
