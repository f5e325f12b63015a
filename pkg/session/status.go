package session

import (
	"encoding/json"
	"fmt"
)

// State is the connection state of a session.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateDisconnected
	StateError
	StateBadConfig
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateError:
		return "error"
	case StateBadConfig:
		return "bad_config"
	default:
		return "idle"
	}
}

// MarshalJSON encodes the state by name.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a state name.
func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for st := StateIdle; st <= StateBadConfig; st++ {
		if st.String() == name {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", name)
}

// Status is the externally observable connection status.
// Reason is set for StateError and StateBadConfig.
type Status struct {
	State  State  `json:"state"`
	Reason string `json:"reason,omitempty"`
}

func (s Status) String() string {
	if s.Reason == "" {
		return s.State.String()
	}
	return s.State.String() + ": " + s.Reason
}

// Snapshot maps facet names to their last known values.
type Snapshot map[string]any

// Clone returns a shallow copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
