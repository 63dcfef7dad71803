package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	stmts   []string
}

// schemaVersionTable is created before any migration runs.
const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
)`

// migrations is the ordered list of schema migrations. Each migration's
// version must be sequential starting from 1. The SQL is kept to the
// subset shared by SQLite and PostgreSQL.
var migrations = []migration{
	{
		version: 1,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP,
	since       TIMESTAMP NOT NULL,
	watermark   TIMESTAMP NOT NULL,
	found       INTEGER NOT NULL DEFAULT 0,
	parsed      INTEGER NOT NULL DEFAULT 0,
	rejected    INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT ''
)`,
			`CREATE TABLE IF NOT EXISTS listings (
	id          TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	message_id  TEXT NOT NULL DEFAULT '',
	uid         BIGINT NOT NULL DEFAULT 0,
	received_at TIMESTAMP NOT NULL,
	vin         TEXT NOT NULL,
	mileage     DOUBLE PRECISION NOT NULL,
	color       TEXT NOT NULL,
	year        TEXT NOT NULL DEFAULT '',
	make        TEXT NOT NULL DEFAULT '',
	model       TEXT NOT NULL DEFAULT '',
	source_link TEXT NOT NULL DEFAULT '',
	lifecycle   TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS idx_listings_run_id ON listings(run_id)`,
			`CREATE INDEX IF NOT EXISTS idx_listings_vin ON listings(vin)`,
			`CREATE INDEX IF NOT EXISTS idx_listings_lifecycle ON listings(lifecycle)`,
			`INSERT INTO schema_version (version) VALUES (1)`,
		},
	},
	{
		version: 2,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS rejections (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	message_id TEXT NOT NULL DEFAULT '',
	uid        BIGINT NOT NULL DEFAULT 0,
	subject    TEXT NOT NULL DEFAULT '',
	kind       TEXT NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS idx_rejections_run_id ON rejections(run_id)`,
			`INSERT INTO schema_version (version) VALUES (2)`,
		},
	},
}
