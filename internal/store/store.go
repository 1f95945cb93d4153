// Package store is the data access layer for captured runs and their
// vectors. It receives an already-opened *sql.DB (dbopen owns pragmas and
// retry behavior) and keeps all SQL behind typed methods.
package store

import (
	"database/sql"
	"errors"
)

// ErrNotFound marks a lookup whose reference id does not exist. Distinct
// from an empty result set: a valid reference with no neighbors returns an
// empty slice and no error.
var ErrNotFound = errors.New("store: not found")

// Store wraps the vector database.
type Store struct {
	DB *sql.DB
}

// NewStore creates a Store from an already-opened database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}
