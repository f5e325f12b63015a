package display

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/lfdctl/pkg/device"
	"github.com/urmzd/lfdctl/pkg/host"
	"github.com/urmzd/lfdctl/pkg/notify"
	"github.com/urmzd/lfdctl/pkg/session"
)

// pollCommand is submitted every poll interval while connected.
const pollCommand = "status?"

type display struct {
	spec      device.Spec
	session   *session.Session
	notifier  *notify.Notifier
	feedbacks map[string]*host.Feedback
	events    chan session.Event
	stopPoll  chan struct{}
	done      chan struct{}
}

// start builds the session, binds feedback watchers and begins forwarding
// events. The session is left idle; callers configure it.
func (m *Manager) start(spec device.Spec) (*display, error) {
	reconnect, err := spec.ReconnectPolicy()
	if err != nil {
		return nil, err
	}
	submit, err := spec.SubmitPolicy()
	if err != nil {
		return nil, err
	}

	n := notify.New()
	s := session.New(session.Options{
		Name:      spec.ID,
		Codec:     m.desc.CodecFactory(m.validator),
		Factory:   m.factory,
		Notifier:  n,
		Scheduler: m.scheduler,
		Reconnect: reconnect,
		Submit:    submit,
		Baseline:  m.desc.Baseline,
		FollowUps: m.desc.FollowUps,
	})

	d := &display{
		spec:      spec,
		session:   s,
		notifier:  n,
		feedbacks: make(map[string]*host.Feedback, len(m.meta.Feedbacks)),
		events:    s.Subscribe(),
		done:      make(chan struct{}),
	}
	for _, def := range m.meta.Feedbacks {
		fb := def.Bind(s, m.feedbackChanged(spec.ID))
		d.feedbacks[def.ID] = fb
		n.Register(fb)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		s.Unsubscribe(d.events)
		return nil, device.ErrClosed
	}
	if _, exists := m.displays[spec.ID]; exists {
		m.mu.Unlock()
		s.Unsubscribe(d.events)
		return nil, fmt.Errorf("%w: %s", device.ErrExists, spec.ID)
	}
	m.displays[spec.ID] = d
	m.mu.Unlock()

	go m.forward(d)
	if spec.PollInterval > 0 {
		d.stopPoll = make(chan struct{})
		go poll(d, spec.PollInterval)
	}

	log.Info().
		Str("display", spec.ID).
		Str("name", spec.Name).
		Str("reconnect", reconnect.Mode.String()).
		Dur("poll", spec.PollInterval).
		Msg("Display session created")
	return d, nil
}

// stop tears down and forgets a display.
func (m *Manager) stop(id string) {
	m.mu.Lock()
	d, ok := m.displays[id]
	delete(m.displays, id)
	m.mu.Unlock()
	if !ok {
		return
	}

	if d.stopPoll != nil {
		close(d.stopPoll)
	}
	d.session.Teardown()
	d.session.Unsubscribe(d.events)
	<-d.done
	log.Info().Str("display", id).Msg("Display session removed")
}

// forward converts session events into device events until the
// subscription is closed.
func (m *Manager) forward(d *display) {
	defer close(d.done)

	for evt := range d.events {
		out := device.Event{
			Device:    d.spec.ID,
			Timestamp: evt.Timestamp,
		}
		switch evt.Type {
		case session.EventStatus:
			st := evt.Status
			out.Type = device.EventStatus
			out.Status = &st
		case session.EventState:
			out.Type = device.EventState
			out.Changed = evt.Changed
			out.State = device.DeviceState(evt.State)
		default:
			continue
		}
		m.publish(out)
	}
}

func (m *Manager) feedbackChanged(id string) func(string, host.Style) {
	return func(fid string, st host.Style) {
		m.publish(device.Event{
			Type:      device.EventFeedback,
			Device:    id,
			Feedback:  fid,
			Active:    st.Active,
			Text:      st.Text,
			Timestamp: time.Now(),
		})
	}
}

// poll refreshes the status block while the session is connected.
// Broadcast sessions are never polled since nothing answers them.
func poll(d *display, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if d.session.Config().Broadcast() {
				continue
			}
			if d.session.Status().State == session.StateConnected {
				d.session.Submit(pollCommand)
			}
		case <-d.stopPoll:
			return
		}
	}
}
