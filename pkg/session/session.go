package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Event types
const (
	EventStatus = "status"
	EventState  = "state"
)

// Event is published to subscribers on status changes and snapshot merges.
type Event struct {
	Type      string    `json:"type"`
	Session   string    `json:"session"`
	Status    Status    `json:"status"`
	Changed   []string  `json:"changed,omitempty"`
	State     Snapshot  `json:"state,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Options configures a Session. Codec and Factory are required.
type Options struct {
	Name       string
	Codec      CodecFactory
	Factory    TransportFactory
	Notifier   ChangeNotifier
	Scheduler  Scheduler
	Reconnect  ReconnectPolicy
	Submit     SubmitPolicy
	QueueLimit int
	Baseline   []string
	FollowUps  []FollowUp
}

const defaultQueueLimit = 32

// Session drives the connection lifecycle of one display and folds its
// decoded responses into a snapshot.
type Session struct {
	opts Options

	mu          sync.Mutex
	cfg         Config
	codec       Codec
	status      Status
	snapshot    Snapshot
	transport   Transport
	gen         uint64
	pending     []byte
	attempts    int
	timer       Timer
	queue       []Command
	lastFailure *Response

	subscribers   []chan Event
	subscribersMu sync.Mutex
}

// effects are collected under the lock and dispatched after it is released,
// so watchers and subscribers may read the session.
type effects struct {
	events   []Event
	commands []string
}

// New creates an idle session.
func New(opts Options) *Session {
	if opts.Scheduler == nil {
		opts.Scheduler = wallClock{}
	}
	if opts.QueueLimit <= 0 {
		opts.QueueLimit = defaultQueueLimit
	}
	return &Session{
		opts:     opts,
		status:   Status{State: StateIdle},
		snapshot: make(Snapshot),
	}
}

// Name returns the session name used in logs and events.
func (s *Session) Name() string {
	return s.opts.Name
}

// Configure validates cfg and, when valid, replaces the running transport
// with a new one. The snapshot is discarded.
func (s *Session) Configure(cfg Config) error {
	var eff effects

	s.mu.Lock()
	if err := cfg.Validate(); err != nil {
		s.stopLocked()
		s.setStatusLocked(&eff, Status{State: StateBadConfig, Reason: err.Error()})
		s.mu.Unlock()
		log.Warn().Err(err).Str("session", s.opts.Name).Msg("Rejected session configuration")
		s.dispatch(eff)
		return err
	}

	s.stopLocked()
	s.cfg = cfg
	s.codec = s.opts.Codec(cfg)
	s.snapshot = make(Snapshot)
	s.lastFailure = nil
	s.queue = nil
	s.attempts = 0
	err := s.connectLocked(&eff)
	s.mu.Unlock()

	s.dispatch(eff)
	return err
}

// Teardown closes the transport and cancels any pending reconnect.
func (s *Session) Teardown() {
	var eff effects

	s.mu.Lock()
	s.stopLocked()
	s.queue = nil
	s.setStatusLocked(&eff, Status{State: StateIdle})
	s.mu.Unlock()

	s.dispatch(eff)
	log.Info().Str("session", s.opts.Name).Msg("Session torn down")
}

// Submit sends command text such as "power on". Commands submitted while
// the session is not connected are dropped, or queued under SubmitQueue.
// Failures are logged and never returned.
func (s *Session) Submit(text string) {
	cmd, err := ParseCommand(text)
	if err != nil {
		log.Warn().Err(err).Str("session", s.opts.Name).Str("command", text).Msg("Ignoring unparsable command")
		return
	}
	s.SubmitCommand(cmd)
}

// SubmitCommand sends an already parsed command.
func (s *Session) SubmitCommand(cmd Command) {
	var eff effects

	s.mu.Lock()
	s.submitLocked(&eff, cmd)
	s.mu.Unlock()

	s.dispatch(eff)
}

// HandleResponse folds one decoded response into the snapshot.
func (s *Session) HandleResponse(resp Response) {
	var eff effects

	s.mu.Lock()
	s.applyLocked(&eff, resp)
	s.mu.Unlock()

	s.dispatch(eff)
}

// Status returns the current connection status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Config returns the active configuration.
func (s *Session) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Snapshot returns a copy of the device state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone()
}

// Value returns a single facet value.
func (s *Session) Value(facet string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.snapshot[facet]
	return v, ok
}

// LastFailure returns the most recent non-OK response since the last OK one.
func (s *Session) LastFailure() (Response, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastFailure == nil {
		return Response{}, false
	}
	return *s.lastFailure, true
}

// --- transport events ---

func (s *Session) handleConnected(gen uint64) {
	var eff effects

	s.mu.Lock()
	if !s.currentLocked(gen) {
		s.mu.Unlock()
		return
	}
	s.attempts = 0
	s.setStatusLocked(&eff, Status{State: StateConnected})

	queued := s.queue
	s.queue = nil
	for _, cmd := range queued {
		s.submitLocked(&eff, cmd)
	}
	if !s.cfg.Broadcast() {
		eff.commands = append(eff.commands, s.opts.Baseline...)
	}
	log.Info().Str("session", s.opts.Name).Str("addr", s.cfg.Address()).Int("queued", len(queued)).Msg("Session connected")
	s.mu.Unlock()

	s.dispatch(eff)
}

func (s *Session) handleClosed(gen uint64) {
	var eff effects

	s.mu.Lock()
	if !s.currentLocked(gen) {
		s.mu.Unlock()
		return
	}
	s.closeTransportLocked()
	s.setStatusLocked(&eff, Status{State: StateDisconnected})

	s.attempts++
	delay, retry := s.opts.Reconnect.Next(s.attempts)
	if retry {
		armed := s.gen
		s.timer = s.opts.Scheduler.AfterFunc(delay, func() { s.reconnect(armed) })
		log.Info().
			Str("session", s.opts.Name).
			Int("attempt", s.attempts).
			Dur("delay", delay).
			Str("policy", s.opts.Reconnect.Mode.String()).
			Msg("Session closed, reconnect scheduled")
	} else {
		log.Info().Str("session", s.opts.Name).Int("attempts", s.attempts).Msg("Session closed, not reconnecting")
	}
	s.mu.Unlock()

	s.dispatch(eff)
}

func (s *Session) handleError(gen uint64, err error) {
	var eff effects

	s.mu.Lock()
	if !s.currentLocked(gen) {
		s.mu.Unlock()
		return
	}
	terr := &TransportError{Addr: s.cfg.Address(), Err: err}
	s.setStatusLocked(&eff, Status{State: StateError, Reason: err.Error()})
	s.mu.Unlock()

	log.Error().Err(terr).Str("session", s.opts.Name).Msg("Transport error")
	s.dispatch(eff)
}

func (s *Session) handleData(gen uint64, p []byte) {
	var eff effects

	s.mu.Lock()
	if !s.currentLocked(gen) {
		s.mu.Unlock()
		return
	}
	s.pending = append(s.pending, p...)
	for len(s.pending) > 0 {
		frame, rest, err := s.codec.Split(s.pending)
		if err != nil && len(rest) >= len(s.pending) {
			rest = s.pending[1:]
		}
		s.pending = rest
		if err != nil {
			log.Warn().Err(&DecodeError{Frame: frame, Err: err}).Str("session", s.opts.Name).Msg("Discarding malformed frame")
			continue
		}
		if frame == nil {
			break
		}

		log.Debug().Str("session", s.opts.Name).Hex("frame", frame).Msg("RX")
		resp, err := s.codec.Decode(frame)
		if err != nil {
			log.Warn().Err(&DecodeError{Frame: frame, Err: err}).Str("session", s.opts.Name).Msg("Discarding undecodable frame")
			continue
		}
		s.applyLocked(&eff, resp)
	}
	s.mu.Unlock()

	s.dispatch(eff)
}

func (s *Session) reconnect(gen uint64) {
	var eff effects

	s.mu.Lock()
	if gen != s.gen || s.transport != nil {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	log.Info().Str("session", s.opts.Name).Int("attempt", s.attempts).Msg("Reconnecting")
	_ = s.connectLocked(&eff)
	s.mu.Unlock()

	s.dispatch(eff)
}

// --- locked helpers ---

func (s *Session) currentLocked(gen uint64) bool {
	return gen == s.gen && s.transport != nil
}

// connectLocked starts a new transport generation.
func (s *Session) connectLocked(eff *effects) error {
	s.gen++
	s.pending = nil
	s.setStatusLocked(eff, Status{State: StateConnecting})

	t, err := s.opts.Factory(s.cfg, boundSink{s: s, gen: s.gen})
	if err != nil {
		terr := &TransportError{Addr: s.cfg.Address(), Err: err}
		s.setStatusLocked(eff, Status{State: StateError, Reason: err.Error()})
		log.Error().Err(terr).Str("session", s.opts.Name).Msg("Failed to create transport")
		return terr
	}
	s.transport = t

	if err := t.Connect(); err != nil {
		terr := &TransportError{Addr: s.cfg.Address(), Err: err}
		s.closeTransportLocked()
		s.setStatusLocked(eff, Status{State: StateError, Reason: err.Error()})
		log.Error().Err(terr).Str("session", s.opts.Name).Msg("Failed to start connection")
		return terr
	}

	log.Info().Str("session", s.opts.Name).Str("addr", s.cfg.Address()).Int("device_id", s.cfg.DeviceID).Msg("Connecting")
	return nil
}

// stopLocked cancels the reconnect timer and closes the transport,
// invalidating every event of the current generation.
func (s *Session) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.closeTransportLocked()
	s.gen++
	s.pending = nil
}

func (s *Session) closeTransportLocked() {
	if s.transport == nil {
		return
	}
	if err := s.transport.Close(); err != nil {
		log.Warn().Err(err).Str("session", s.opts.Name).Msg("Failed to close transport")
	}
	s.transport = nil
}

func (s *Session) setStatusLocked(eff *effects, st Status) {
	if st == s.status {
		return
	}
	log.Debug().Str("session", s.opts.Name).Str("from", s.status.String()).Str("to", st.String()).Msg("Status change")
	s.status = st
	eff.events = append(eff.events, Event{
		Type:      EventStatus,
		Session:   s.opts.Name,
		Status:    st,
		Timestamp: time.Now(),
	})
}

func (s *Session) submitLocked(eff *effects, cmd Command) {
	if cmd.IsQuery() && s.cfg.Broadcast() {
		log.Warn().
			Err(&CommandDroppedError{Command: cmd.String(), State: s.status.State, Reason: "broadcast sessions get no replies"}).
			Str("session", s.opts.Name).
			Msg("Dropping query on broadcast session")
		return
	}
	if s.status.State != StateConnected || s.transport == nil {
		if s.opts.Submit == SubmitQueue && s.status.State != StateIdle && s.status.State != StateBadConfig && len(s.queue) < s.opts.QueueLimit {
			s.queue = append(s.queue, cmd)
			log.Debug().Str("session", s.opts.Name).Str("command", cmd.String()).Int("queued", len(s.queue)).Msg("Queued command until connected")
			return
		}
		log.Warn().
			Err(&CommandDroppedError{Command: cmd.String(), State: s.status.State}).
			Str("session", s.opts.Name).
			Msg("Dropping command")
		return
	}

	frame, err := s.codec.Encode(cmd.Name, cmd.Args)
	if err != nil {
		log.Warn().Err(err).Str("session", s.opts.Name).Str("command", cmd.String()).Msg("Failed to encode command")
		return
	}

	log.Debug().Str("session", s.opts.Name).Str("command", cmd.String()).Hex("frame", frame).Msg("TX")
	if err := s.transport.Write(frame); err != nil {
		terr := &TransportError{Addr: s.cfg.Address(), Err: err}
		s.setStatusLocked(eff, Status{State: StateError, Reason: err.Error()})
		log.Error().Err(terr).Str("session", s.opts.Name).Str("command", cmd.String()).Msg("Failed to write command")
	}
}

func (s *Session) applyLocked(eff *effects, resp Response) {
	if resp.Status != StatusOK {
		failed := resp
		s.lastFailure = &failed
		ev := log.Warn().Str("session", s.opts.Name).Str("request", resp.RequestKey).Str("status", resp.Status.String())
		if resp.Err != nil {
			ev = ev.Err(resp.Err)
		}
		ev.Msg("Device rejected request")
		return
	}

	var update map[string]any
	switch v := resp.Value.(type) {
	case map[string]any:
		update = v
	case Snapshot:
		update = v
	default:
		facet := resp.Facet()
		if facet == "" {
			log.Warn().Err(fmt.Errorf("%w: response without request key", ErrDecode)).Str("session", s.opts.Name).Msg("Skipping response")
			return
		}
		update = map[string]any{facet: v}
	}
	if len(update) == 0 {
		return
	}
	s.lastFailure = nil

	keys := make([]string, 0, len(update))
	for k := range update {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := update[k]
		prev, had := s.snapshot[k]
		s.snapshot[k] = v

		if s.cfg.Broadcast() {
			continue
		}
		for _, f := range s.opts.FollowUps {
			if f.TriggerField != k || !f.matches(v) {
				continue
			}
			if had && f.matches(prev) {
				continue
			}
			eff.commands = append(eff.commands, f.Commands...)
		}
	}

	eff.events = append(eff.events, Event{
		Type:      EventState,
		Session:   s.opts.Name,
		Status:    s.status,
		Changed:   keys,
		State:     s.snapshot.Clone(),
		Timestamp: time.Now(),
	})
}

// dispatch runs the effects collected under the lock. Each merge batch
// notifies once.
func (s *Session) dispatch(eff effects) {
	for _, evt := range eff.events {
		s.publishEvent(evt)
	}
	if s.opts.Notifier != nil {
		for _, evt := range eff.events {
			if evt.Type == EventState {
				s.opts.Notifier.Notify(evt.Changed)
			}
		}
	}
	for _, text := range eff.commands {
		s.Submit(text)
	}
}

// --- subscriptions ---

// Subscribe returns a channel receiving status and state events.
func (s *Session) Subscribe() chan Event {
	ch := make(chan Event, 16)
	s.subscribersMu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.subscribersMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscription.
func (s *Session) Unsubscribe(ch chan Event) {
	s.subscribersMu.Lock()
	defer s.subscribersMu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

func (s *Session) publishEvent(evt Event) {
	s.subscribersMu.Lock()
	defer s.subscribersMu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}
