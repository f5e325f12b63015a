// Package bridge mirrors display events onto message systems and accepts
// commands from them. Each bridge is a Sink fed by Run; bridges that take
// commands route them to a Host.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/lfdctl/pkg/device"
)

var ErrEmptyCommand = errors.New("empty command")

// handleTimeout bounds one sink delivery.
const handleTimeout = 5 * time.Second

// Host is the display side of a bridge.
type Host interface {
	device.EventSubscriber
	SendCommand(ctx context.Context, id, command string) error
	RunAction(ctx context.Context, id, action string, values map[string]any) (string, error)
	Variables(ctx context.Context, id string) (map[string]string, error)
}

// Sink receives every display event.
type Sink interface {
	Name() string
	Handle(ctx context.Context, evt device.Event) error
}

// Run delivers host events to sinks until ctx is canceled.
func Run(ctx context.Context, h Host, sinks ...Sink) {
	if len(sinks) == 0 {
		return
	}
	events := h.Subscribe()
	defer h.Unsubscribe(events)

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			for _, s := range sinks {
				hctx, cancel := context.WithTimeout(ctx, handleTimeout)
				if err := s.Handle(hctx, evt); err != nil {
					log.Warn().Err(err).
						Str("bridge", s.Name()).
						Str("display", evt.Device).
						Str("event", evt.Type).
						Msg("Bridge delivery failed")
				}
				cancel()
			}
		}
	}
}

// Command is a downlink request. Payloads are either plain command text
// ("power on") or a JSON object carrying a command or an action.
type Command struct {
	Command string         `json:"command,omitempty"`
	Action  string         `json:"action,omitempty"`
	Values  map[string]any `json:"values,omitempty"`
}

// ParseCommand decodes a downlink payload.
func ParseCommand(payload []byte) (Command, error) {
	text := strings.TrimSpace(string(payload))
	if text == "" {
		return Command{}, ErrEmptyCommand
	}
	if !strings.HasPrefix(text, "{") {
		return Command{Command: text}, nil
	}

	var cmd Command
	if err := json.Unmarshal([]byte(text), &cmd); err != nil {
		return Command{}, fmt.Errorf("invalid command payload: %w", err)
	}
	if cmd.Command == "" && cmd.Action == "" {
		return Command{}, ErrEmptyCommand
	}
	return cmd, nil
}

// dispatch runs a downlink payload against display id and returns the
// command text that was submitted.
func dispatch(ctx context.Context, h Host, id string, payload []byte) (string, error) {
	cmd, err := ParseCommand(payload)
	if err != nil {
		return "", err
	}
	if cmd.Action != "" {
		return h.RunAction(ctx, id, cmd.Action, cmd.Values)
	}
	return cmd.Command, h.SendCommand(ctx, id, cmd.Command)
}

func marshalEvent(evt device.Event) []byte {
	data, err := json.Marshal(evt)
	if err != nil {
		// Unencodable state value; send the envelope only.
		data, _ = json.Marshal(device.Event{Type: evt.Type, Device: evt.Device, Timestamp: evt.Timestamp})
	}
	return data
}
