package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/urmzd/lfdctl/pkg/device"
	"github.com/urmzd/lfdctl/pkg/session"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Init(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBootstrapCreatesDefaults(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	version, err := db.SchemaVersion(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if version != currentSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, currentSchemaVersion)
	}

	cfg, err := db.ActiveConfig(ctx)
	if err != nil {
		t.Fatalf("ActiveConfig: %v", err)
	}
	if cfg.Profile.Name != "default" || !cfg.Profile.IsActive {
		t.Errorf("profile = %+v", cfg.Profile)
	}
	if got := cfg.APIAddress(); got != "0.0.0.0:8080" {
		t.Errorf("APIAddress = %q", got)
	}
	if len(cfg.Displays) != 0 {
		t.Errorf("displays = %v, want none", cfg.Displays)
	}

	// A second bootstrap is a no-op.
	if err := db.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	profiles, err := db.Profiles().List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 1 {
		t.Errorf("profiles = %d, want 1", len(profiles))
	}
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := db.Profiles()

	lobby := &Profile{Name: "lobby", Description: "Lobby wall"}
	if err := store.Create(ctx, lobby); err != nil {
		t.Fatal(err)
	}
	if err := store.SetActive(ctx, lobby.ID); err != nil {
		t.Fatal(err)
	}
	active, err := store.GetActive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if active.ID != lobby.ID || active.Description != "Lobby wall" {
		t.Errorf("active = %+v", active)
	}
	def, err := store.GetByName(ctx, "default")
	if err != nil {
		t.Fatal(err)
	}
	if def.IsActive {
		t.Error("default profile still active")
	}

	lobby.Name = "atrium"
	if err := store.Update(ctx, lobby); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetByName(ctx, "atrium"); err != nil {
		t.Errorf("GetByName after rename: %v", err)
	}

	if err := store.Delete(ctx, lobby.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, lobby.ID); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("Get after delete: %v", err)
	}
	if err := store.SetActive(ctx, 999); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("SetActive unknown: %v", err)
	}
}

func TestAPIServers(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	cfg, err := db.ActiveConfig(ctx)
	if err != nil {
		t.Fatal(err)
	}

	api := &APIServer{ProfileID: cfg.Profile.ID, Host: "127.0.0.1", Port: 9090, AllowOrigins: []string{"http://a", "http://b"}}
	if err := db.APIServers().Save(ctx, api); err != nil {
		t.Fatal(err)
	}
	got, err := db.APIServers().Get(ctx, cfg.Profile.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Address() != "127.0.0.1:9090" || len(got.AllowOrigins) != 2 || got.AllowOrigins[1] != "http://b" {
		t.Errorf("api server = %+v", got)
	}

	if err := db.APIServers().Save(ctx, &APIServer{ProfileID: cfg.Profile.ID, Port: 0}); err == nil {
		t.Error("expected error for port 0")
	}
	if err := db.APIServers().Delete(ctx, cfg.Profile.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := db.APIServers().Get(ctx, cfg.Profile.ID); !errors.Is(err, ErrAPIServerNotFound) {
		t.Errorf("Get after delete: %v", err)
	}
}

func TestDisplays(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	cfg, err := db.ActiveConfig(ctx)
	if err != nil {
		t.Fatal(err)
	}
	store := db.Displays(cfg.Profile.ID)

	lobby := device.Spec{
		ID:           "lobby",
		Name:         "Lobby",
		Config:       session.Config{Host: "10.0.0.20", Port: 1515, DeviceID: 1},
		Reconnect:    "backoff",
		MaxAttempts:  3,
		BaseDelayMs:  500,
		Submit:       "queue",
		PollInterval: 30 * time.Second,
	}
	wall := device.Spec{
		ID:     "wall",
		Name:   "All Panels",
		Config: session.Config{Host: "/dev/ttyUSB0", Port: 9600, DeviceID: session.BroadcastID, Transport: session.TransportSerial},
	}
	for _, spec := range []device.Spec{wall, lobby} {
		if err := store.SaveDisplay(ctx, spec); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.Get(ctx, "lobby")
	if err != nil {
		t.Fatal(err)
	}
	if got != lobby {
		t.Errorf("Get = %+v, want %+v", got, lobby)
	}

	specs, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 2 || specs[0].ID != "wall" || specs[1].ID != "lobby" {
		t.Fatalf("List = %+v", specs)
	}
	if specs[0].Config != wall.Config {
		t.Errorf("serial config = %+v", specs[0].Config)
	}

	lobby.Name = "Lobby East"
	lobby.Config.Port = 1516
	if err := store.SaveDisplay(ctx, lobby); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.Get(ctx, "lobby"); got.Name != "Lobby East" || got.Config.Port != 1516 {
		t.Errorf("after update = %+v", got)
	}

	if err := store.DeleteDisplay(ctx, "lobby"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "lobby"); !errors.Is(err, ErrDisplayNotFound) {
		t.Errorf("Get after delete: %v", err)
	}
	if err := store.DeleteDisplay(ctx, "lobby"); !errors.Is(err, ErrDisplayNotFound) {
		t.Errorf("second delete: %v", err)
	}

	// Another profile sees none of them.
	other := &Profile{Name: "other"}
	if err := db.Profiles().Create(ctx, other); err != nil {
		t.Fatal(err)
	}
	if specs, _ := db.Displays(other.ID).List(ctx); len(specs) != 0 {
		t.Errorf("other profile displays = %v", specs)
	}
}

func TestMigrateFromV1(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "v1.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.applySchema(ctx, 1, schemaV1); err != nil {
		t.Fatal(err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO profiles (name, is_active) VALUES ('site', 1)`); err != nil {
		t.Fatal(err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO displays (id, profile_id, name, host, transport)
		VALUES ('old', 1, 'Old', '10.0.0.9', 'tcp'), ('rs', 1, 'Serial', '/dev/ttyS0', 'serial')
	`)
	if err != nil {
		t.Fatal(err)
	}

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if v, _ := db.SchemaVersion(ctx); v != 2 {
		t.Errorf("version = %d, want 2", v)
	}

	store := db.Displays(1)
	old, err := store.Get(ctx, "old")
	if err != nil {
		t.Fatal(err)
	}
	if old.Config.Port != 1515 || old.Config.DeviceID != 1 || old.PollInterval != 0 {
		t.Errorf("migrated tcp display = %+v", old)
	}
	rs, err := store.Get(ctx, "rs")
	if err != nil {
		t.Fatal(err)
	}
	if rs.Config.Port != 9600 || rs.Config.Transport != session.TransportSerial {
		t.Errorf("migrated serial display = %+v", rs)
	}

	// Migrating again changes nothing.
	if err := db.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
}
