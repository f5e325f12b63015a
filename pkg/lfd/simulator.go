package lfd

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/rs/zerolog/log"
)

// Simulator answers MDC requests the way a display does. It backs the
// lfdsim binary and integration tests.
type Simulator struct {
	desc  Descriptor
	codec *Codec

	mu       sync.Mutex
	values   map[string]byte
	text     map[string]string
	rejected map[string]bool
	requests int
}

// NewSimulator creates a powered-off display answering to deviceID.
func NewSimulator(desc Descriptor, deviceID int) *Simulator {
	return &Simulator{
		desc:  desc,
		codec: NewCodec(desc, deviceID, nil),
		values: map[string]byte{
			"power":    0x00,
			"volume":   10,
			"mute":     0x00,
			"input":    0x21,
			"wallMode": 0x00,
			"wallOn":   0x00,
			"panel":    0x00,
		},
		text: map[string]string{
			"model":     "QM55B",
			"sernum":    "0TEY3HBN500042",
			"swversion": "T-KTM2ELAKUC-1240.5",
		},
		rejected: make(map[string]bool),
	}
}

// Reject makes the simulator NAK every request for the named field.
func (s *Simulator) Reject(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejected[name] = true
}

// Value returns the stored data byte of a field.
func (s *Simulator) Value(name string) byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[name]
}

// Requests returns how many frames addressed to this display were handled.
func (s *Simulator) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// Respond handles one request frame and returns the reply, or nil when no
// reply is due (broadcast or another display's ID).
func (s *Simulator) Respond(frame []byte) []byte {
	if len(frame) < headerLen+1 {
		return nil
	}
	cmd, id, n := frame[1], frame[2], int(frame[3])
	if len(frame) < headerLen+n+1 {
		return nil
	}
	data := frame[headerLen : headerLen+n]

	broadcast := id == 0xFE
	if !broadcast && id != s.codec.id {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++

	field, ok := s.desc.FieldByCode(cmd)
	if !ok || s.rejected[field.Name] {
		return s.nak(cmd, broadcast)
	}

	if field.Kind == KindStatus {
		if broadcast {
			return nil
		}
		return s.ack(cmd, []byte{
			s.values["power"], s.values["volume"], s.values["mute"], s.values["input"],
			0x10, 0x00, 0x00,
		})
	}
	if field.Kind == KindText {
		if n > 0 {
			return s.nak(cmd, broadcast)
		}
		if broadcast {
			return nil
		}
		return s.ack(cmd, []byte(s.text[field.Name]))
	}

	if n > 0 {
		s.values[field.Name] = data[0]
	}
	if broadcast {
		return nil
	}
	return s.ack(cmd, []byte{s.values[field.Name]})
}

func (s *Simulator) ack(cmd byte, payload []byte) []byte {
	return Frame(responseCode, s.codec.id, append([]byte{ackByte, cmd}, payload...))
}

func (s *Simulator) nak(cmd byte, broadcast bool) []byte {
	if broadcast {
		return nil
	}
	return Frame(responseCode, s.codec.id, []byte{nakByte, cmd, 0x01})
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Simulator) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("Simulator accepted connection")
		go s.serveConn(ctx, conn)
	}
}

func (s *Simulator) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	var pending []byte
	buf := make([]byte, 512)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		pending = append(pending, buf[:n]...)
		for len(pending) > 0 {
			frame, rest, err := s.codec.Split(pending)
			pending = rest
			if err != nil {
				continue
			}
			if frame == nil {
				break
			}
			if reply := s.Respond(frame); reply != nil {
				if _, err := conn.Write(reply); err != nil {
					return
				}
			}
		}
	}
}
