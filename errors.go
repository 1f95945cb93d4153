package stylevec

import (
	"errors"

	"github.com/hazyhaar/stylevec/internal/store"
)

// Sentinel errors of the service surface. Transport layers map these to
// status codes; everything else is a 500.
var (
	// ErrNotFound marks a reference to a run, profile or vector that was
	// never stored. Distinct from an empty result set, which is a valid
	// answer.
	ErrNotFound = store.ErrNotFound

	// ErrInvalidInput marks a request the caller can fix: an unknown
	// vector kind, a non-positive limit, an embedding of the wrong length.
	ErrInvalidInput = errors.New("stylevec: invalid input")

	// ErrConfig marks a startup configuration problem, including a bounds
	// table that fails its self-check. The process must not serve with a
	// broken normalization table.
	ErrConfig = errors.New("stylevec: invalid configuration")
)
