package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/urmzd/lfdctl/pkg/device"
)

var ErrNoActiveProfile = errors.New("no active profile found")

// Config represents the complete runtime configuration loaded from the database.
type Config struct {
	Profile   *Profile
	APIServer *APIServer
	Displays  []device.Spec
}

// APIAddress returns the API server listen address.
func (c *Config) APIAddress() string {
	if c.APIServer == nil {
		return "0.0.0.0:8080"
	}
	return c.APIServer.Address()
}

// AllowOrigins returns the configured CORS origins.
func (c *Config) AllowOrigins() []string {
	if c.APIServer == nil {
		return nil
	}
	return c.APIServer.AllowOrigins
}

// ActiveConfig loads the complete configuration for the active profile.
func (db *DB) ActiveConfig(ctx context.Context) (*Config, error) {
	profile, err := db.Profiles().GetActive(ctx)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrNoActiveProfile
		}
		return nil, fmt.Errorf("failed to get active profile: %w", err)
	}

	config := &Config{
		Profile: profile,
	}

	apiServer, err := db.APIServers().Get(ctx, profile.ID)
	if err != nil && !errors.Is(err, ErrAPIServerNotFound) {
		return nil, fmt.Errorf("failed to get API server config: %w", err)
	}
	config.APIServer = apiServer

	displays, err := db.Displays(profile.ID).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load displays: %w", err)
	}
	config.Displays = displays

	return config, nil
}
