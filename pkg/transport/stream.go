// Package transport provides the byte-stream connections sessions use to
// reach displays: MDC over TCP (port 1515) and over RS-232.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/lfdctl/pkg/session"
)

var (
	ErrNotConnected = errors.New("transport not connected")
	ErrClosed       = errors.New("transport closed")
)

const readBufferSize = 1024

// opener establishes the underlying connection. It may block until ctx is
// canceled.
type opener func(ctx context.Context) (io.ReadWriteCloser, error)

// Stream is a session.Transport over any io.ReadWriteCloser. Opening and
// reading happen on one goroutine, so the sink sees Connected, then Data,
// then Error/Closed in order. Once Close is called no further events are
// delivered.
type Stream struct {
	addr string
	open opener
	sink session.Sink

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	rwc     io.ReadWriteCloser
	started bool
	closed  bool
}

func newStream(addr string, open opener, sink session.Sink) *Stream {
	ctx, cancel := context.WithCancel(context.Background())
	return &Stream{addr: addr, open: open, sink: sink, ctx: ctx, cancel: cancel}
}

// Connect starts the connection attempt in the background.
func (s *Stream) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.started {
		return nil
	}
	s.started = true
	go s.run()
	return nil
}

// Write sends p to the display.
func (s *Stream) Write(p []byte) error {
	s.mu.Lock()
	rwc := s.rwc
	s.mu.Unlock()

	if rwc == nil {
		return ErrNotConnected
	}
	if _, err := rwc.Write(p); err != nil {
		return fmt.Errorf("write %s: %w", s.addr, err)
	}
	return nil
}

// Close tears down the connection without delivering further events. It
// does not wait for the reader goroutine.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	if s.rwc != nil {
		return s.rwc.Close()
	}
	return nil
}

func (s *Stream) run() {
	rwc, err := s.open(s.ctx)
	if err != nil {
		if s.isClosed() {
			return
		}
		log.Debug().Err(err).Str("addr", s.addr).Msg("Connect failed")
		s.sink.Error(err)
		s.sink.Closed()
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = rwc.Close()
		return
	}
	s.rwc = rwc
	s.mu.Unlock()

	s.sink.Connected()

	buf := make([]byte, readBufferSize)
	for {
		n, err := rwc.Read(buf)
		if n > 0 && !s.isClosed() {
			p := make([]byte, n)
			copy(p, buf[:n])
			s.sink.Data(p)
		}
		if err != nil {
			if s.isClosed() {
				return
			}
			if !errors.Is(err, io.EOF) {
				log.Debug().Err(err).Str("addr", s.addr).Msg("Read failed")
				s.sink.Error(err)
			}
			s.markClosed()
			s.sink.Closed()
			return
		}
	}
}

func (s *Stream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// markClosed releases the connection after the remote end went away.
func (s *Stream) markClosed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rwc != nil {
		_ = s.rwc.Close()
		s.rwc = nil
	}
}
