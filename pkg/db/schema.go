package db

import (
	"context"
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 2

// Schema SQL for version 1
const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
    version     INTEGER PRIMARY KEY,
    applied_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

-- Profiles (one per installation or site)
CREATE TABLE IF NOT EXISTS profiles (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    is_active   INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS api_servers (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    profile_id    INTEGER NOT NULL UNIQUE REFERENCES profiles(id) ON DELETE CASCADE,
    host          TEXT NOT NULL DEFAULT '0.0.0.0',
    port          INTEGER NOT NULL DEFAULT 8080,
    allow_origins TEXT NOT NULL DEFAULT '',
    created_at    TEXT NOT NULL DEFAULT (datetime('now'))
);

-- Displays and their session configuration
CREATE TABLE IF NOT EXISTS displays (
    id            TEXT PRIMARY KEY,
    profile_id    INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    name          TEXT NOT NULL,
    host          TEXT NOT NULL,
    port          INTEGER,
    device_id     INTEGER,
    transport     TEXT NOT NULL DEFAULT 'tcp',
    reconnect     TEXT NOT NULL DEFAULT '',
    max_attempts  INTEGER NOT NULL DEFAULT 0,
    base_delay_ms INTEGER NOT NULL DEFAULT 0,
    submit        TEXT NOT NULL DEFAULT '',
    created_at    TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at    TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_profiles_active ON profiles(is_active);
CREATE INDEX IF NOT EXISTS idx_displays_profile ON displays(profile_id);
CREATE INDEX IF NOT EXISTS idx_displays_name ON displays(name);
`

// Version 2 adds status polling and fills the connection defaults that
// version 1 left nullable.
const schemaV2 = `
ALTER TABLE displays ADD COLUMN poll_ms INTEGER NOT NULL DEFAULT 0;
UPDATE displays SET port = 1515 WHERE transport = 'tcp' AND (port IS NULL OR port = 0);
UPDATE displays SET port = 9600 WHERE transport = 'serial' AND (port IS NULL OR port = 0);
UPDATE displays SET device_id = 1 WHERE device_id IS NULL;
`

// Migrate runs database migrations to bring the schema up to date.
func (db *DB) Migrate(ctx context.Context) error {
	version, err := db.getSchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	if version >= currentSchemaVersion {
		return nil
	}

	if version < 1 {
		if err := db.applySchema(ctx, 1, schemaV1); err != nil {
			return fmt.Errorf("failed to apply schema v1: %w", err)
		}
	}
	if version < 2 {
		if err := db.applySchema(ctx, 2, schemaV2); err != nil {
			return fmt.Errorf("failed to apply schema v2: %w", err)
		}
	}

	return nil
}

// getSchemaVersion returns the current schema version, or 0 if no schema exists.
func (db *DB) getSchemaVersion(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&count)
	if err != nil {
		return 0, err
	}

	if count == 0 {
		return 0, nil
	}

	var version int
	err = db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, err
	}

	return version, nil
}

// applySchema runs one migration step and records its version.
func (db *DB) applySchema(ctx context.Context, version int, ddl string) error {
	return db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to execute schema: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}

		return nil
	})
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	return db.getSchemaVersion(ctx)
}
