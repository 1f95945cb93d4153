package store

import "database/sql"

// Schema is the complete vector-store schema. Vector BLOB columns hold
// float32 little-endian data sized to the compiled-in dimension constants;
// changing a dimension constant means dropping and recreating the affected
// column, never reinterpreting old blobs.
const Schema = `
-- One row per captured page run
CREATE TABLE IF NOT EXISTS captures (
    id              TEXT PRIMARY KEY,
    run_id          TEXT NOT NULL UNIQUE,
    source_url      TEXT NOT NULL DEFAULT '',
    viewport_w      INTEGER NOT NULL DEFAULT 0,
    viewport_h      INTEGER NOT NULL DEFAULT 0,
    captured_at     INTEGER NOT NULL DEFAULT 0,
    dom_uri         TEXT NOT NULL DEFAULT '',
    css_uri         TEXT NOT NULL DEFAULT '',
    screenshot_uri  TEXT NOT NULL DEFAULT '',
    created_at      INTEGER NOT NULL,
    updated_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_captures_url ON captures(source_url);

-- Page-level vectors and UX summary, one per capture
CREATE TABLE IF NOT EXISTS style_profiles (
    id                 TEXT PRIMARY KEY,
    capture_id         TEXT NOT NULL UNIQUE REFERENCES captures(id) ON DELETE CASCADE,
    tokens_json        TEXT NOT NULL DEFAULT '{}',
    interpretable      BLOB NOT NULL,
    embedding          BLOB NOT NULL,
    combined           BLOB NOT NULL,
    contrast_pass_rate REAL NOT NULL DEFAULT 0,
    brand_tone         TEXT NOT NULL DEFAULT '',
    maturity           TEXT NOT NULL DEFAULT '',
    consistency_score  REAL NOT NULL DEFAULT 0,
    embedding_model    TEXT NOT NULL DEFAULT '',
    degraded           INTEGER NOT NULL DEFAULT 0,
    created_at         INTEGER NOT NULL,
    updated_at         INTEGER NOT NULL
);

-- Primary call-to-action vectors, at most one per profile
CREATE TABLE IF NOT EXISTS primary_cta_vectors (
    id               TEXT PRIMARY KEY,
    style_profile_id TEXT NOT NULL UNIQUE REFERENCES style_profiles(id) ON DELETE CASCADE,
    interpretable    BLOB NOT NULL,
    embedding        BLOB NOT NULL,
    combined         BLOB NOT NULL,
    confidence       REAL NOT NULL DEFAULT 0,
    contrast_ratio   REAL NOT NULL DEFAULT 0,
    tier             TEXT NOT NULL DEFAULT '',
    min_tap_side     REAL NOT NULL DEFAULT 0,
    prominence       REAL NOT NULL DEFAULT 0,
    created_at       INTEGER NOT NULL,
    updated_at       INTEGER NOT NULL
);
`

// Migration001Degraded backfills the degraded flag on databases created
// before embedding degradation was tracked.
const Migration001Degraded = `
ALTER TABLE style_profiles ADD COLUMN degraded INTEGER NOT NULL DEFAULT 0;
`

// ApplySchema creates all tables and indexes on the given database.
func ApplySchema(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return err
	}
	applyColumnMigration(db, "style_profiles", "degraded", Migration001Degraded)
	return nil
}

// applyColumnMigration adds a column if it doesn't exist (idempotent).
func applyColumnMigration(db *sql.DB, table, column, ddl string) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&count)
	if err != nil || count > 0 {
		return
	}
	db.Exec(ddl)
}
