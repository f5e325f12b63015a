package session

import (
	"errors"
	"fmt"
)

var (
	// ErrBadConfig indicates the session configuration failed validation
	ErrBadConfig = errors.New("bad configuration")

	// ErrTransport indicates a connection-level failure
	ErrTransport = errors.New("transport error")

	// ErrDecode indicates a malformed or unexpected response frame
	ErrDecode = errors.New("decode error")

	// ErrCommandDropped indicates a command was submitted while not connected
	ErrCommandDropped = errors.New("command dropped")
)

// ConfigurationError describes the first invalid field of a Config.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrBadConfig }

// TransportError wraps an error reported by the transport.
type TransportError struct {
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Addr, e.Err)
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError wraps a failure to split or decode an inbound frame.
type DecodeError struct {
	Frame []byte
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode % X: %v", e.Frame, e.Err)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func (e *DecodeError) Unwrap() error { return e.Err }

// CommandDroppedError records a command that was not sent because the
// session was not connected. It is logged, never returned to callers.
type CommandDroppedError struct {
	Command string
	State   State
	Reason  string // set when the drop is not caused by the connection state
}

func (e *CommandDroppedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("command %q dropped: %s", e.Command, e.Reason)
	}
	return fmt.Sprintf("command %q dropped: session is %s", e.Command, e.State)
}

func (e *CommandDroppedError) Unwrap() error { return ErrCommandDropped }
