package session

import "time"

// Sink receives the events of one transport. Each transport gets its own
// sink; events delivered after the transport was superseded are ignored.
type Sink interface {
	Connected()
	Data(p []byte)
	Closed()
	Error(err error)
}

// Transport is a byte-stream connection to a display. Connect starts the
// connection attempt and reports its outcome through the Sink; it must not
// deliver events synchronously.
type Transport interface {
	Connect() error
	Write(p []byte) error
	Close() error
}

// TransportFactory builds the transport for a configuration.
type TransportFactory func(cfg Config, sink Sink) (Transport, error)

// Timer is a cancelable pending callback.
type Timer interface {
	Stop() bool
}

// Scheduler arms reconnect timers.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ChangeNotifier is told which facets a merge touched.
type ChangeNotifier interface {
	Notify(changed []string)
}

type boundSink struct {
	s   *Session
	gen uint64
}

func (b boundSink) Connected()      { b.s.handleConnected(b.gen) }
func (b boundSink) Data(p []byte)   { b.s.handleData(b.gen, p) }
func (b boundSink) Closed()         { b.s.handleClosed(b.gen) }
func (b boundSink) Error(err error) { b.s.handleError(b.gen, err) }
