package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Default API listen address created on first run.
const (
	defaultAPIHost = "0.0.0.0"
	defaultAPIPort = 8080
)

// Bootstrap creates the default profile and its API server on first run.
// Both rows are written in one transaction.
func (db *DB) Bootstrap(ctx context.Context) error {
	empty, err := db.NeedsBootstrap(ctx)
	if err != nil {
		return fmt.Errorf("failed to check profiles: %w", err)
	}
	if !empty {
		return nil
	}

	return db.Tx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO profiles (name, description, is_active) VALUES (?, ?, 1)`,
			"default", "Default display wall")
		if err != nil {
			return fmt.Errorf("failed to create default profile: %w", err)
		}
		profileID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get profile ID: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO api_servers (profile_id, host, port, allow_origins) VALUES (?, ?, ?, '')`,
			profileID, defaultAPIHost, defaultAPIPort)
		if err != nil {
			return fmt.Errorf("failed to create default API server: %w", err)
		}
		return nil
	})
}

// NeedsBootstrap reports whether no profile exists yet.
func (db *DB) NeedsBootstrap(ctx context.Context) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
