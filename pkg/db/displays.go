package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/urmzd/lfdctl/pkg/device"
	"github.com/urmzd/lfdctl/pkg/session"
)

var ErrDisplayNotFound = errors.New("display not found")

// DisplayStore persists the display specs of one profile. It satisfies
// display.Store.
type DisplayStore struct {
	db        *DB
	profileID int64
}

// Displays returns the display store of a profile.
func (db *DB) Displays(profileID int64) *DisplayStore {
	return &DisplayStore{db: db, profileID: profileID}
}

const displayColumns = `id, name, host, port, device_id, transport, reconnect, max_attempts, base_delay_ms, submit, poll_ms`

func scanDisplay(row rowScanner) (device.Spec, error) {
	var (
		spec     device.Spec
		port, id sql.NullInt64
		pollMs   int64
	)
	err := row.Scan(&spec.ID, &spec.Name, &spec.Config.Host, &port, &id, &spec.Config.Transport,
		&spec.Reconnect, &spec.MaxAttempts, &spec.BaseDelayMs, &spec.Submit, &pollMs)
	if err != nil {
		return device.Spec{}, err
	}
	spec.Config.Port = int(port.Int64)
	spec.Config.DeviceID = int(id.Int64)
	if !id.Valid {
		spec.Config.DeviceID = 1
	}
	if spec.Config.Transport == session.TransportTCP {
		spec.Config.Transport = ""
	}
	spec.PollInterval = time.Duration(pollMs) * time.Millisecond
	return spec, nil
}

// List returns every display of the profile ordered by name.
func (s *DisplayStore) List(ctx context.Context) ([]device.Spec, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+displayColumns+` FROM displays WHERE profile_id = ? ORDER BY name, id`, s.profileID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var specs []device.Spec
	for rows.Next() {
		spec, err := scanDisplay(rows)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, rows.Err()
}

// Get returns one display spec.
func (s *DisplayStore) Get(ctx context.Context, id string) (device.Spec, error) {
	spec, err := scanDisplay(s.db.QueryRowContext(ctx,
		`SELECT `+displayColumns+` FROM displays WHERE profile_id = ? AND id = ?`, s.profileID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return device.Spec{}, fmt.Errorf("%w: %s", ErrDisplayNotFound, id)
	}
	return spec, err
}

// SaveDisplay inserts or updates a display spec.
func (s *DisplayStore) SaveDisplay(ctx context.Context, spec device.Spec) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO displays (id, profile_id, name, host, port, device_id, transport,
			reconnect, max_attempts, base_delay_ms, submit, poll_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			host = excluded.host,
			port = excluded.port,
			device_id = excluded.device_id,
			transport = excluded.transport,
			reconnect = excluded.reconnect,
			max_attempts = excluded.max_attempts,
			base_delay_ms = excluded.base_delay_ms,
			submit = excluded.submit,
			poll_ms = excluded.poll_ms,
			updated_at = datetime('now')
	`, spec.ID, s.profileID, spec.Name, spec.Config.Host, spec.Config.Port, spec.Config.DeviceID,
		spec.Config.TransportKind(), spec.Reconnect, spec.MaxAttempts, spec.BaseDelayMs, spec.Submit,
		spec.PollInterval.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to save display %s: %w", spec.ID, err)
	}
	return nil
}

// DeleteDisplay removes a display spec.
func (s *DisplayStore) DeleteDisplay(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM displays WHERE profile_id = ? AND id = ?`, s.profileID, id)
	if err != nil {
		return err
	}
	return expectRow(result, fmt.Errorf("%w: %s", ErrDisplayNotFound, id))
}
