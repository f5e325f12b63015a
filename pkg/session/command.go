package session

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is a semantic request independent of wire encoding.
// Queries carry a trailing "?" in Name and no arguments.
type Command struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// IsQuery reports whether the command reads state rather than setting it.
func (c Command) IsQuery() bool {
	return strings.HasSuffix(c.Name, "?")
}

func (c Command) String() string {
	if v, ok := c.Args["value"]; ok {
		return fmt.Sprintf("%s %v", c.Name, v)
	}
	return c.Name
}

// ParseCommand parses command text such as "power on", "volume 50" or
// "model?". Numeric arguments are parsed as integers.
func ParseCommand(text string) (Command, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	cmd := Command{Name: fields[0]}
	args := fields[1:]
	if cmd.IsQuery() {
		if len(args) > 0 {
			return Command{}, fmt.Errorf("query %q takes no arguments", cmd.Name)
		}
		return cmd, nil
	}

	switch len(args) {
	case 0:
	case 1:
		cmd.Args = map[string]any{"value": parseArg(args[0])}
	default:
		values := make([]any, 0, len(args))
		for _, a := range args {
			values = append(values, parseArg(a))
		}
		cmd.Args = map[string]any{"value": values[0], "values": values}
	}
	return cmd, nil
}

func parseArg(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return strings.ToLower(s)
}

// ResponseStatus is the outcome reported by the device for one request.
type ResponseStatus int

const (
	StatusOK ResponseStatus = iota
	StatusNAK
	StatusUnsupported
)

func (s ResponseStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNAK:
		return "nak"
	default:
		return "unsupported"
	}
}

// Response is one decoded device reply. Value is either a scalar, merged
// under the facet named by RequestKey, or a map merged key by key.
type Response struct {
	RequestKey string
	Status     ResponseStatus
	Value      any
	Err        error
}

// Facet returns the snapshot key a scalar response is stored under.
func (r Response) Facet() string {
	return FacetForKey(r.RequestKey)
}

// FacetForKey strips the query marker from a request key ("volume?" -> "volume").
func FacetForKey(key string) string {
	return strings.TrimSuffix(strings.TrimSpace(key), "?")
}

// Encoder maps a semantic command to a wire frame.
type Encoder interface {
	Encode(name string, args map[string]any) ([]byte, error)
}

// Decoder reassembles frames from a byte stream and decodes them.
// Split returns a nil frame when buf holds no complete frame yet; on error
// rest must be shorter than buf.
type Decoder interface {
	Split(buf []byte) (frame []byte, rest []byte, err error)
	Decode(frame []byte) (Response, error)
}

// Codec combines both directions of a device protocol.
type Codec interface {
	Encoder
	Decoder
}

// CodecFactory builds the codec for a configuration; the device ID is
// part of every frame.
type CodecFactory func(cfg Config) Codec
