package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

var ErrAPIServerNotFound = errors.New("api server config not found")

// APIServer is the HTTP listener configuration of a profile.
type APIServer struct {
	ID           int64
	ProfileID    int64
	Host         string
	Port         int
	AllowOrigins []string // CORS origins; empty allows any
	CreatedAt    time.Time
}

// Address returns the API server listen address (host:port).
func (a *APIServer) Address() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// APIServerStore provides API server config operations.
type APIServerStore interface {
	Get(ctx context.Context, profileID int64) (*APIServer, error)
	Save(ctx context.Context, a *APIServer) error
	Delete(ctx context.Context, profileID int64) error
}

// APIServers returns an APIServerStore for this database.
func (db *DB) APIServers() APIServerStore {
	return &apiServerStore{db: db}
}

type apiServerStore struct {
	db *DB
}

func (s *apiServerStore) Get(ctx context.Context, profileID int64) (*APIServer, error) {
	a := &APIServer{}
	var origins, createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, profile_id, host, port, allow_origins, created_at
		FROM api_servers WHERE profile_id = ?
	`, profileID).Scan(&a.ID, &a.ProfileID, &a.Host, &a.Port, &origins, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAPIServerNotFound
	}
	if err != nil {
		return nil, err
	}
	a.AllowOrigins = splitList(origins)
	a.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	return a, nil
}

// Save inserts or replaces the listener of a.ProfileID.
func (s *apiServerStore) Save(ctx context.Context, a *APIServer) error {
	if a.Port < 1 || a.Port > 65535 {
		return fmt.Errorf("invalid api port %d", a.Port)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_servers (profile_id, host, port, allow_origins)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET
			host = excluded.host,
			port = excluded.port,
			allow_origins = excluded.allow_origins
	`, a.ProfileID, a.Host, a.Port, strings.Join(a.AllowOrigins, ","))
	if err != nil {
		return fmt.Errorf("failed to save API server config: %w", err)
	}
	return s.db.QueryRowContext(ctx, `SELECT id FROM api_servers WHERE profile_id = ?`, a.ProfileID).Scan(&a.ID)
}

func (s *apiServerStore) Delete(ctx context.Context, profileID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM api_servers WHERE profile_id = ?`, profileID)
	if err != nil {
		return err
	}
	return expectRow(result, ErrAPIServerNotFound)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
