package session

import (
	"fmt"
	"time"
)

// ReconnectMode selects what a session does after the transport closes.
type ReconnectMode int

const (
	ReconnectImmediate ReconnectMode = iota
	ReconnectNone
	ReconnectBackoff
)

func (m ReconnectMode) String() string {
	switch m {
	case ReconnectNone:
		return "none"
	case ReconnectBackoff:
		return "backoff"
	default:
		return "immediate"
	}
}

// ParseReconnectMode parses the persisted name of a reconnect mode.
func ParseReconnectMode(s string) (ReconnectMode, error) {
	switch s {
	case "", "immediate", "immediate-retry":
		return ReconnectImmediate, nil
	case "none":
		return ReconnectNone, nil
	case "backoff":
		return ReconnectBackoff, nil
	}
	return ReconnectImmediate, fmt.Errorf("unknown reconnect mode %q", s)
}

// ReconnectPolicy decides whether and when to reconnect after a close.
// Attempts count closes since the last successful connect.
type ReconnectPolicy struct {
	Mode        ReconnectMode `json:"mode"`
	MaxAttempts int           `json:"max_attempts,omitempty"`
	BaseDelay   time.Duration `json:"base_delay,omitempty"`
	MaxDelay    time.Duration `json:"max_delay,omitempty"`
}

// DefaultReconnectPolicy retries once, immediately.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{Mode: ReconnectImmediate, MaxAttempts: 1}
}

// BackoffPolicy returns an exponential backoff policy.
func BackoffPolicy(maxAttempts int, baseDelay time.Duration) ReconnectPolicy {
	return ReconnectPolicy{
		Mode:        ReconnectBackoff,
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		MaxDelay:    baseDelay << 6,
	}
}

// Next returns the delay before reconnect attempt n (1-based) and whether
// the attempt should be made at all.
func (p ReconnectPolicy) Next(attempt int) (time.Duration, bool) {
	switch p.Mode {
	case ReconnectNone:
		return 0, false
	case ReconnectBackoff:
		if p.MaxAttempts > 0 && attempt > p.MaxAttempts {
			return 0, false
		}
		delay := p.BaseDelay
		for i := 1; i < attempt; i++ {
			delay *= 2
			if p.MaxDelay > 0 && delay >= p.MaxDelay {
				return p.MaxDelay, true
			}
		}
		return delay, true
	default:
		max := p.MaxAttempts
		if max <= 0 {
			max = 1
		}
		return 0, attempt <= max
	}
}

// SubmitPolicy selects what happens to commands submitted while not connected.
type SubmitPolicy int

const (
	SubmitDrop SubmitPolicy = iota
	SubmitQueue
)

func (p SubmitPolicy) String() string {
	if p == SubmitQueue {
		return "queue"
	}
	return "drop"
}

// ParseSubmitPolicy parses the persisted name of a submit policy.
func ParseSubmitPolicy(s string) (SubmitPolicy, error) {
	switch s {
	case "", "drop":
		return SubmitDrop, nil
	case "queue":
		return SubmitQueue, nil
	}
	return SubmitDrop, fmt.Errorf("unknown submit policy %q", s)
}

// FollowUp submits Commands when a merge moves TriggerField to TriggerValue.
type FollowUp struct {
	TriggerField string   `json:"trigger_field"`
	TriggerValue any      `json:"trigger_value"`
	Commands     []string `json:"commands"`
}

func (f FollowUp) matches(v any) bool {
	return valuesEqual(v, f.TriggerValue)
}

func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
