// Package idgen provides ID generation for the vector store.
//
// Row identifiers are prefixed UUIDv7 (time-sortable, globally unique);
// capture run ids follow the artifact naming convention shared with the
// capture pipeline so a run can be correlated with its on-disk artifacts.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator that produces RFC 9562 UUID v7 strings.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Default is the base generator: UUIDv7.
var Default Generator = UUIDv7()

// Row-id generators, one prefix per table.
var (
	NewCaptureID = Prefixed("cap_", Default)
	NewProfileID = Prefixed("sp_", Default)
	NewCTAID     = Prefixed("cta_", Default)
)

// NewRunID builds a capture run id: UTC timestamp with millisecond
// precision, 8 hex chars of entropy, and a slug derived from the source
// host. Example: 2026-08-30T14-02-11-382Z_9f3ac1d2_example-com
func NewRunID(slug string) string {
	ts := time.Now().UTC().Format("2006-01-02T15-04-05.000Z07")
	ts = strings.ReplaceAll(ts, ".", "-")
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		panic("idgen: crypto/rand failed: " + err.Error())
	}
	return fmt.Sprintf("%s_%s_%s", ts, hex.EncodeToString(buf), Slugify(slug))
}

// Slugify lowercases and collapses non-alphanumerics to single dashes,
// trimming to 40 chars. An empty result becomes "page".
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > 40 {
		out = out[:40]
	}
	if out == "" {
		return "page"
	}
	return out
}

// Parse validates a UUID string and returns it or an error.
func Parse(s string) (string, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid UUID: %w", err)
	}
	return u.String(), nil
}
