package lfd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/urmzd/lfdctl/pkg/device/schema"
	"github.com/urmzd/lfdctl/pkg/session"
)

// MDC framing constants
const (
	frameHeader  byte = 0xAA
	responseCode byte = 0xFF
	ackByte      byte = 'A'
	nakByte      byte = 'N'
)

const (
	headerLen      = 4 // header, cmd, id, len
	minResponseLen = 2 // ack/nak + rcmd
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNotSettable    = errors.New("command is read-only")
	ErrInvalidValue   = errors.New("invalid value")
	ErrBadChecksum    = errors.New("bad checksum")
	ErrShortFrame     = errors.New("short frame")
	ErrNotResponse    = errors.New("not a response frame")
	ErrWrongDevice    = errors.New("response from another device")
	ErrGarbage        = errors.New("bytes before frame header")
)

// Codec encodes semantic commands into MDC frames for one device ID and
// decodes the display's ACK/NAK frames.
type Codec struct {
	desc      Descriptor
	id        byte
	validator *schema.Validator
}

// NewCodec creates a Codec addressing deviceID. A nil validator skips
// argument schema validation.
func NewCodec(desc Descriptor, deviceID int, v *schema.Validator) *Codec {
	return &Codec{desc: desc, id: byte(deviceID), validator: v}
}

// CodecFactory returns a session.CodecFactory that builds a Codec for the
// device ID of each configuration. The validator is shared.
func (d Descriptor) CodecFactory(v *schema.Validator) session.CodecFactory {
	return func(cfg session.Config) session.Codec {
		return NewCodec(d, cfg.DeviceID, v)
	}
}

// Encode builds the frame for a command. Queries ("power?") carry no data;
// set commands carry one data byte taken from args["value"].
func (c *Codec) Encode(name string, args map[string]any) ([]byte, error) {
	query := strings.HasSuffix(name, "?")
	field, ok := c.desc.Field(strings.TrimSuffix(name, "?"))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	if query {
		return Frame(field.Code, c.id, nil), nil
	}
	if !field.Settable {
		return nil, fmt.Errorf("%w: %s", ErrNotSettable, name)
	}

	if c.validator != nil {
		if err := c.validator.Validate(field.ArgsSchema(), args); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, name, err)
		}
	}
	b, err := field.encodeValue(args["value"])
	if err != nil {
		return nil, err
	}
	return Frame(field.Code, c.id, []byte{b}), nil
}

// Frame assembles a raw MDC frame: header, cmd, id, len, data, checksum.
func Frame(cmd, id byte, data []byte) []byte {
	frame := make([]byte, 0, headerLen+len(data)+1)
	frame = append(frame, frameHeader, cmd, id, byte(len(data)))
	frame = append(frame, data...)
	return append(frame, Checksum(frame[1:]))
}

// Checksum is the sum of every byte after the header, modulo 256.
func Checksum(b []byte) byte {
	var sum byte
	for _, x := range b {
		sum += x
	}
	return sum
}

// Split extracts the first complete frame from buf. Leading bytes that
// are not a frame header are reported as ErrGarbage and skipped; a frame
// with a bad checksum is reported and only its header byte is consumed so
// the stream can resynchronize.
func (c *Codec) Split(buf []byte) ([]byte, []byte, error) {
	if len(buf) == 0 {
		return nil, buf, nil
	}
	if buf[0] != frameHeader {
		i := bytes.IndexByte(buf, frameHeader)
		if i < 0 {
			return buf, nil, ErrGarbage
		}
		return buf[:i], buf[i:], ErrGarbage
	}
	if len(buf) < headerLen {
		return nil, buf, nil
	}

	n := headerLen + int(buf[3]) + 1
	if len(buf) < n {
		return nil, buf, nil
	}
	frame := buf[:n]
	if Checksum(frame[1:n-1]) != frame[n-1] {
		return frame, buf[1:], fmt.Errorf("%w: got 0x%02x want 0x%02x", ErrBadChecksum, frame[n-1], Checksum(frame[1:n-1]))
	}
	return frame, buf[n:], nil
}

// Decode parses one complete response frame.
func (c *Codec) Decode(frame []byte) (session.Response, error) {
	if len(frame) < headerLen+minResponseLen+1 {
		return session.Response{}, ErrShortFrame
	}
	if frame[0] != frameHeader || frame[1] != responseCode {
		return session.Response{}, ErrNotResponse
	}
	if c.id != session.BroadcastID && frame[2] != c.id {
		return session.Response{}, fmt.Errorf("%w: id %d", ErrWrongDevice, frame[2])
	}

	n := int(frame[3])
	if len(frame) != headerLen+n+1 || n < minResponseLen {
		return session.Response{}, ErrShortFrame
	}
	data := frame[headerLen : headerLen+n]
	status, rcmd, payload := data[0], data[1], data[2:]

	field, ok := c.desc.FieldByCode(rcmd)
	if !ok {
		return session.Response{
			RequestKey: fmt.Sprintf("0x%02x?", rcmd),
			Status:     session.StatusUnsupported,
			Err:        fmt.Errorf("%w: 0x%02x", ErrUnknownCommand, rcmd),
		}, nil
	}
	resp := session.Response{RequestKey: field.Name + "?"}

	switch status {
	case ackByte:
	case nakByte:
		resp.Status = session.StatusNAK
		resp.Err = nakError(payload)
		return resp, nil
	default:
		return session.Response{}, fmt.Errorf("%w: status byte 0x%02x", ErrNotResponse, status)
	}

	if field.Kind == KindStatus {
		v, err := c.decodeStatus(payload)
		if err != nil {
			return session.Response{}, err
		}
		resp.Value = v
		return resp, nil
	}

	v, err := field.decodeValue(payload)
	if err != nil {
		return session.Response{}, err
	}
	resp.Value = v
	return resp, nil
}

// decodeStatus unpacks the status block: power, volume, mute, input, ...
func (c *Codec) decodeStatus(payload []byte) (map[string]any, error) {
	keys := []string{"power", "volume", "mute", "input"}
	if len(payload) < len(keys) {
		return nil, fmt.Errorf("%w: status block has %d bytes", ErrShortFrame, len(payload))
	}

	out := make(map[string]any, len(keys))
	for i, k := range keys {
		f, ok := c.desc.Field(k)
		if !ok {
			continue
		}
		v, err := f.decodeValue(payload[i : i+1])
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func nakError(payload []byte) error {
	if len(payload) == 0 {
		return errors.New("display rejected command")
	}
	return fmt.Errorf("display rejected command: error code 0x%02x", payload[0])
}
