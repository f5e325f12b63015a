package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/urmzd/lfdctl/pkg/db"
	"github.com/urmzd/lfdctl/pkg/device/schema"
	"github.com/urmzd/lfdctl/pkg/display"
	lfdmcp "github.com/urmzd/lfdctl/pkg/mcp"
	"github.com/urmzd/lfdctl/pkg/transport"
)

var version = "dev"

func main() {
	// Logging must go to stderr; stdout is the MCP transport.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	dbPath := flag.String("db", "", "Path to database file (default: ~/.config/lfdctl/lfdctl.db)")
	flag.Parse()

	ctx := context.Background()

	database, err := db.Init(ctx, *dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()
	log.Info().Str("path", database.Path()).Msg("Database opened")

	cfg, err := database.ActiveConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	validator := schema.NewValidator()
	manager := display.NewManager(display.Options{
		Validator: validator,
		Factory:   transport.Factory,
		Store:     database.Displays(cfg.Profile.ID),
	})
	defer manager.Close()
	manager.Restore(cfg.Displays)

	mcpServer := lfdmcp.NewServer(manager, validator, version)

	log.Info().Str("profile", cfg.Profile.Name).Int("displays", len(cfg.Displays)).Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(); err != nil {
		log.Fatal().Err(err).Msg("MCP server failed")
	}
}
