package transport

import (
	"fmt"
	"time"

	"github.com/urmzd/lfdctl/pkg/session"
)

// Options tunes the transports built by NewFactory.
type Options struct {
	DialTimeout time.Duration
	KeepAlive   time.Duration
}

// DefaultOptions returns the options used by Factory.
func DefaultOptions() Options {
	return Options{
		DialTimeout: 5 * time.Second,
		KeepAlive:   30 * time.Second,
	}
}

// NewFactory returns a session.TransportFactory choosing TCP or serial by
// the configured transport kind.
func NewFactory(opts Options) session.TransportFactory {
	return func(cfg session.Config, sink session.Sink) (session.Transport, error) {
		switch cfg.TransportKind() {
		case session.TransportTCP:
			return NewTCP(cfg.Address(), opts.DialTimeout, opts.KeepAlive, sink), nil
		case session.TransportSerial:
			return NewSerial(cfg.Host, cfg.Port, sink), nil
		}
		return nil, fmt.Errorf("unsupported transport %q", cfg.Transport)
	}
}

// Factory builds transports with DefaultOptions.
var Factory = NewFactory(DefaultOptions())
