package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/urmzd/lfdctl/pkg/api"
	"github.com/urmzd/lfdctl/pkg/bridge"
	"github.com/urmzd/lfdctl/pkg/db"
	"github.com/urmzd/lfdctl/pkg/device/schema"
	"github.com/urmzd/lfdctl/pkg/display"
	"github.com/urmzd/lfdctl/pkg/transport"

	_ "github.com/urmzd/lfdctl/docs"
)

// @title           lfdctl API
// @version         1.0
// @description     REST API for controlling Samsung LFD displays over MDC

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	dbPath := flag.String("db", "", "Path to database file (default: ~/.config/lfdctl/lfdctl.db)")
	addr := flag.String("addr", "", "Listen address (overrides the profile's API server config)")
	dialTimeout := flag.Duration("dial-timeout", 5*time.Second, "TCP connect timeout per attempt")
	debug := flag.Bool("debug", false, "Log MDC traffic")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	listen := cfg.APIAddress()
	if *addr != "" {
		listen = *addr
	}
	log.Info().
		Str("profile", cfg.Profile.Name).
		Int("displays", len(cfg.Displays)).
		Str("api_address", listen).
		Msg("Configuration loaded")

	opts := transport.DefaultOptions()
	opts.DialTimeout = *dialTimeout
	validator := schema.NewValidator()
	manager := display.NewManager(display.Options{
		Validator: validator,
		Factory:   transport.NewFactory(opts),
		Store:     database.Displays(cfg.Profile.ID),
	})
	defer manager.Close()
	manager.Restore(cfg.Displays)

	bridges, err := bridge.Open(ctx, bridge.LoadConfig(), manager)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start bridges")
	}
	defer bridges.Close()
	go bridges.Run(ctx)
	if names := bridges.Names(); len(names) > 0 {
		log.Info().Strs("bridges", names).Msg("Bridges running")
	}

	router := api.NewRouter(manager, validator, cfg.AllowOrigins())
	server := &http.Server{
		Addr:              listen,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shut down API server")
		}
	}()

	log.Info().Str("address", listen).Msg("Starting API server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
