package transport

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/urmzd/lfdctl/pkg/session"
)

// DefaultTCPPort is the MDC control port of Samsung displays.
const DefaultTCPPort = 1515

// NewTCP creates a transport dialing addr ("host:port").
func NewTCP(addr string, dialTimeout, keepAlive time.Duration, sink session.Sink) *Stream {
	d := &net.Dialer{Timeout: dialTimeout, KeepAlive: keepAlive}
	return newStream(addr, func(ctx context.Context) (io.ReadWriteCloser, error) {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.SetNoDelay(true)
		}
		return conn, nil
	}, sink)
}
