package transport

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"

	"github.com/urmzd/lfdctl/pkg/session"
)

// DefaultBaudRate is the MDC RS-232 line speed.
const DefaultBaudRate = 9600

// NewSerial creates a transport on the RS-232 port at path, 8N1. A zero
// baud rate selects DefaultBaudRate.
func NewSerial(path string, baud int, sink session.Sink) *Stream {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	return newStream(path, func(ctx context.Context) (io.ReadWriteCloser, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		port, err := serial.Open(path, mode)
		if err != nil {
			return nil, fmt.Errorf("open serial port %s: %w", path, err)
		}
		log.Info().Str("port", path).Int("baud", baud).Msg("Serial port opened")
		return port, nil
	}, sink)
}

// ListPorts returns the serial ports available on this host.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}
