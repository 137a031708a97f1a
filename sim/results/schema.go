package results

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TEXT NOT NULL,
    policy TEXT NOT NULL,       -- 'random', 'af', 'localized'
    size INTEGER NOT NULL,
    u REAL NOT NULL,
    t REAL NOT NULL,
    requested_electrons INTEGER NOT NULL,
    field_strength REAL NOT NULL,
    seed INTEGER,               -- NULL for wall-clock seeded runs
    ensemble TEXT NOT NULL DEFAULT '',
    replica INTEGER NOT NULL DEFAULT 0,

    steps INTEGER NOT NULL,
    accepted INTEGER NOT NULL,
    acceptance_rate REAL NOT NULL,
    flux INTEGER NOT NULL,
    flux_percentage REAL NOT NULL,

    total_electrons INTEGER NOT NULL,
    total_paired INTEGER NOT NULL,
    pairing_events INTEGER NOT NULL,
    unpairing_events INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_ensemble ON runs(ensemble, replica);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);
`

// InitSchema creates the tables if missing and records the schema version.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_version`).Scan(&count); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if count == 0 {
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, SchemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	}
	return nil
}
