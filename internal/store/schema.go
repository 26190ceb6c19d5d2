package store

// The schema sticks to types both SQLite and Postgres accept. Booleans are
// stored as 0/1 and timestamps as fixed-width UTC text (timeLayout), so
// string order is time order.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS scans (
    id              TEXT PRIMARY KEY,
    root            TEXT NOT NULL,
    created_at      TEXT NOT NULL,
    passed          INTEGER NOT NULL,
    strict          INTEGER NOT NULL DEFAULT 0,
    total_carbon    DOUBLE PRECISION NOT NULL,
    total_cost      DOUBLE PRECISION NOT NULL,
    files_scanned   INTEGER NOT NULL,
    api_calls       INTEGER NOT NULL,
    errors          INTEGER NOT NULL,
    warnings        INTEGER NOT NULL,
    intensity       DOUBLE PRECISION NOT NULL DEFAULT 0,
    report_hash     TEXT NOT NULL,
    score           INTEGER NOT NULL DEFAULT 0,
    points          INTEGER NOT NULL DEFAULT 0,
    badges          TEXT NOT NULL DEFAULT '',
    under_budget    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_scans_root_created ON scans(root, created_at);
`

const scanColumns = `id, root, created_at, passed, strict, total_carbon, total_cost,
    files_scanned, api_calls, errors, warnings, intensity, report_hash, score, points, badges,
    under_budget`

// migrations bring databases created by older releases up to schemaSQL.
// Errors reporting an existing column are ignored.
var migrations = []string{
	`ALTER TABLE scans ADD COLUMN under_budget INTEGER NOT NULL DEFAULT 0`,
}

// timeLayout is RFC 3339 with a fixed nine-digit fraction.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
