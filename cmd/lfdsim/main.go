// Command lfdsim serves a simulated Samsung display speaking MDC over TCP,
// for trying lfdctl without hardware.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/urmzd/lfdctl/pkg/lfd"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	listen := flag.String("listen", ":1515", "TCP listen address")
	id := flag.Int("id", 1, "MDC display ID to answer to")
	reject := flag.String("reject", "", "Comma-separated fields to NAK (e.g. volume,input)")
	debug := flag.Bool("debug", false, "Log every connection")
	flag.Parse()

	if !*debug {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	sim := lfd.NewSimulator(lfd.DefaultDescriptor(), *id)
	for _, name := range strings.Split(*reject, ",") {
		if name = strings.TrimSpace(name); name != "" {
			sim.Reject(name)
		}
	}

	ln, err := net.Listen("tcp", *listen)
	if err != nil {
		log.Fatal().Err(err).Str("address", *listen).Msg("Failed to listen")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("address", ln.Addr().String()).Int("id", *id).Msg("Simulated display ready")
	if err := sim.Serve(ctx, ln); err != nil {
		log.Fatal().Err(err).Msg("Simulator failed")
	}
	log.Info().Int("requests", sim.Requests()).Msg("Simulator stopped")
}
