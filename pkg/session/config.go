package session

import (
	"fmt"
	"strings"
)

// BroadcastID addresses every display on the bus. Displays never answer
// broadcast frames, so sessions using it expect no feedback.
const BroadcastID = 254

// MaxDeviceID is the highest addressable display ID.
const MaxDeviceID = 254

// Transport kinds
const (
	TransportTCP    = "tcp"
	TransportSerial = "serial"
)

// Config is the immutable configuration of one session.
// For serial sessions Host is the device path and Port is the baud rate.
type Config struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	DeviceID  int    `json:"device_id"`
	Transport string `json:"transport,omitempty"`
}

// Validate checks the configuration before any connection attempt.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return &ConfigurationError{Field: "host", Reason: "host is required"}
	}
	switch c.TransportKind() {
	case TransportTCP:
		if c.Port < 1 || c.Port > 65535 {
			return &ConfigurationError{Field: "port", Reason: fmt.Sprintf("port %d out of range 1-65535", c.Port)}
		}
	case TransportSerial:
		if c.Port < 0 {
			return &ConfigurationError{Field: "port", Reason: fmt.Sprintf("invalid baud rate %d", c.Port)}
		}
	default:
		return &ConfigurationError{Field: "transport", Reason: fmt.Sprintf("unknown transport %q", c.Transport)}
	}
	if c.DeviceID < 0 || c.DeviceID > MaxDeviceID {
		return &ConfigurationError{Field: "device_id", Reason: fmt.Sprintf("device id %d out of range 0-%d", c.DeviceID, MaxDeviceID)}
	}
	return nil
}

// TransportKind returns the configured transport, defaulting to TCP.
func (c Config) TransportKind() string {
	if c.Transport == "" {
		return TransportTCP
	}
	return c.Transport
}

// Broadcast reports whether the session addresses all displays at once.
func (c Config) Broadcast() bool {
	return c.DeviceID == BroadcastID
}

// Address returns host:port for TCP sessions and the device path for serial ones.
func (c Config) Address() string {
	if c.TransportKind() == TransportSerial {
		return c.Host
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
