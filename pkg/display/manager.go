// Package display owns the control session of every configured display and
// exposes them through device.Controller.
package display

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/lfdctl/pkg/device"
	"github.com/urmzd/lfdctl/pkg/device/schema"
	"github.com/urmzd/lfdctl/pkg/host"
	"github.com/urmzd/lfdctl/pkg/lfd"
	"github.com/urmzd/lfdctl/pkg/session"
)

// Store persists display specs. pkg/db implements it.
type Store interface {
	SaveDisplay(ctx context.Context, spec device.Spec) error
	DeleteDisplay(ctx context.Context, id string) error
}

// Options configures a Manager. Factory is required.
type Options struct {
	Descriptor lfd.Descriptor
	Validator  *schema.Validator
	Factory    session.TransportFactory
	Scheduler  session.Scheduler
	Store      Store
}

// Manager owns one session per display.
type Manager struct {
	desc      lfd.Descriptor
	meta      host.Metadata
	validator *schema.Validator
	factory   session.TransportFactory
	scheduler session.Scheduler
	store     Store

	mu       sync.RWMutex
	displays map[string]*display
	closed   bool

	subscribers   []chan device.Event
	subscribersMu sync.Mutex
}

// NewManager creates a Manager with no displays. A zero Descriptor selects
// lfd.DefaultDescriptor.
func NewManager(opts Options) *Manager {
	if len(opts.Descriptor.Fields) == 0 {
		opts.Descriptor = lfd.DefaultDescriptor()
	}
	if opts.Validator == nil {
		opts.Validator = schema.NewValidator()
	}
	return &Manager{
		desc:      opts.Descriptor,
		meta:      host.Build(opts.Descriptor),
		validator: opts.Validator,
		factory:   opts.Factory,
		scheduler: opts.Scheduler,
		store:     opts.Store,
		displays:  make(map[string]*display),
	}
}

// Metadata returns the host metadata shared by every display.
func (m *Manager) Metadata() host.Metadata {
	return m.meta
}

// Descriptor returns the capability descriptor of the managed displays.
func (m *Manager) Descriptor() lfd.Descriptor {
	return m.desc
}

// Restore starts sessions for persisted specs. Specs with an invalid
// configuration are kept so their BadConfig status stays visible.
func (m *Manager) Restore(specs []device.Spec) {
	for _, spec := range specs {
		d, err := m.start(spec)
		if err != nil {
			log.Warn().Err(err).Str("display", spec.ID).Msg("Failed to restore display")
			continue
		}
		if err := d.session.Configure(spec.Config); err != nil {
			log.Warn().Err(err).Str("display", spec.ID).Msg("Restored display has invalid configuration")
		}
	}
}

// --- device.Controller ---

// ListDevices returns every display sorted by ID.
func (m *Manager) ListDevices(ctx context.Context) ([]device.Device, error) {
	m.mu.RLock()
	out := make([]device.Device, 0, len(m.displays))
	for _, d := range m.displays {
		out = append(out, m.describe(d))
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetDevice returns a display by ID or friendly name.
func (m *Manager) GetDevice(ctx context.Context, id string) (*device.Device, error) {
	d, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	dev := m.describe(d)
	m.mu.RUnlock()
	return &dev, nil
}

// AddDevice validates spec, persists it and starts its session. A display
// whose transport cannot be built is forgotten again.
func (m *Manager) AddDevice(ctx context.Context, spec device.Spec) (*device.Device, error) {
	spec.ID = strings.TrimSpace(spec.ID)
	if spec.ID == "" {
		return nil, fmt.Errorf("%w: id is required", device.ErrValidation)
	}
	if spec.Name == "" {
		spec.Name = spec.ID
	}
	if err := spec.Config.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	_, exists := m.displays[spec.ID]
	m.mu.RUnlock()
	if exists {
		return nil, fmt.Errorf("%w: %s", device.ErrExists, spec.ID)
	}

	d, err := m.start(spec)
	if err != nil {
		return nil, err
	}
	if m.store != nil {
		if err := m.store.SaveDisplay(ctx, spec); err != nil {
			m.stop(spec.ID)
			return nil, fmt.Errorf("failed to persist display: %w", err)
		}
	}
	if err := d.session.Configure(spec.Config); err != nil {
		m.stop(spec.ID)
		if m.store != nil {
			if derr := m.store.DeleteDisplay(ctx, spec.ID); derr != nil {
				log.Error().Err(derr).Str("display", spec.ID).Msg("Failed to roll back display")
			}
		}
		return nil, err
	}

	m.publish(device.Event{Type: device.EventDeviceAdded, Device: spec.ID, Timestamp: time.Now()})
	m.mu.RLock()
	dev := m.describe(d)
	m.mu.RUnlock()
	return &dev, nil
}

// RenameDevice changes a display's friendly name.
func (m *Manager) RenameDevice(ctx context.Context, id, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("%w: name is required", device.ErrValidation)
	}
	d, err := m.lookup(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	d.spec.Name = newName
	spec := d.spec
	m.mu.Unlock()

	return m.save(ctx, spec)
}

// RemoveDevice tears down a display's session and forgets it.
func (m *Manager) RemoveDevice(ctx context.Context, id string) error {
	d, err := m.lookup(id)
	if err != nil {
		return err
	}
	m.stop(d.spec.ID)

	if m.store != nil {
		if err := m.store.DeleteDisplay(ctx, d.spec.ID); err != nil {
			return fmt.Errorf("failed to delete display: %w", err)
		}
	}
	m.publish(device.Event{Type: device.EventDeviceRemoved, Device: d.spec.ID, Timestamp: time.Now()})
	return nil
}

// Configure replaces a display's configuration. An invalid configuration
// leaves the display in BadConfig and is returned.
func (m *Manager) Configure(ctx context.Context, id string, cfg session.Config) error {
	d, err := m.lookup(id)
	if err != nil {
		return err
	}
	if err := d.session.Configure(cfg); err != nil {
		return err
	}

	m.mu.Lock()
	d.spec.Config = cfg
	spec := d.spec
	m.mu.Unlock()

	return m.save(ctx, spec)
}

// Teardown closes a display's session; it stays listed as idle.
func (m *Manager) Teardown(ctx context.Context, id string) error {
	d, err := m.lookup(id)
	if err != nil {
		return err
	}
	d.session.Teardown()
	return nil
}

// GetDeviceState returns the display's snapshot.
func (m *Manager) GetDeviceState(ctx context.Context, id string) (device.DeviceState, error) {
	d, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return device.DeviceState(d.session.Snapshot()), nil
}

// SetDeviceState validates state against the display's state schema and
// submits one set command per key, in key order. The returned state is the
// snapshot at submission time; acknowledgements arrive as state events.
// A display that is not connected accepts state only under the queue
// submit policy.
func (m *Manager) SetDeviceState(ctx context.Context, id string, state map[string]any) (device.DeviceState, error) {
	d, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := m.validator.Validate(m.desc.StateSchema(), state); err != nil {
		return nil, fmt.Errorf("%w: %v", device.ErrValidation, err)
	}
	if !m.accepts(d) {
		return nil, device.ErrNotConnected
	}

	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d.session.SubmitCommand(session.Command{Name: k, Args: map[string]any{"value": state[k]}})
	}
	return device.DeviceState(d.session.Snapshot()), nil
}

// accepts reports whether a submission would reach the display now or be
// queued for the next connection.
func (m *Manager) accepts(d *display) bool {
	switch d.session.Status().State {
	case session.StateConnected:
		return true
	case session.StateIdle, session.StateBadConfig:
		return false
	}
	m.mu.RLock()
	spec := d.spec
	m.mu.RUnlock()
	policy, err := spec.SubmitPolicy()
	return err == nil && policy == session.SubmitQueue
}

// SendCommand parses and submits command text. Submission is
// fire-and-forget: commands sent while disconnected are dropped or queued
// by the display's submit policy.
func (m *Manager) SendCommand(ctx context.Context, id, command string) error {
	d, err := m.lookup(id)
	if err != nil {
		return err
	}
	cmd, err := session.ParseCommand(command)
	if err != nil {
		return fmt.Errorf("%w: %v", device.ErrValidation, err)
	}
	if _, ok := m.desc.Field(strings.TrimSuffix(cmd.Name, "?")); !ok {
		return fmt.Errorf("%w: unknown command %s", device.ErrUnsupported, cmd.Name)
	}
	d.session.SubmitCommand(cmd)
	return nil
}

// RunAction renders a host action and submits it.
func (m *Manager) RunAction(ctx context.Context, id, action string, values map[string]any) (string, error) {
	a, ok := m.meta.Action(action)
	if !ok {
		return "", fmt.Errorf("%w: unknown action %s", device.ErrUnsupported, action)
	}
	text, err := a.Command(values)
	if err != nil {
		return "", fmt.Errorf("%w: %v", device.ErrValidation, err)
	}
	return text, m.SendCommand(ctx, id, text)
}

// Variables returns the display's snapshot projected to host variables.
func (m *Manager) Variables(ctx context.Context, id string) (map[string]string, error) {
	d, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return m.meta.VariableValues(d.session.Snapshot()), nil
}

// Feedbacks returns the current style of every feedback of a display.
func (m *Manager) Feedbacks(ctx context.Context, id string) (map[string]host.Style, error) {
	d, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	out := make(map[string]host.Style, len(d.feedbacks))
	for fid, fb := range d.feedbacks {
		out[fid] = fb.Style()
	}
	return out, nil
}

// LastFailure returns the most recent rejected request of a display.
func (m *Manager) LastFailure(ctx context.Context, id string) (*session.Response, error) {
	d, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	if resp, ok := d.session.LastFailure(); ok {
		return &resp, nil
	}
	return nil, nil
}

// IsConnected reports whether any display session is connected.
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.displays {
		if d.session.Status().State == session.StateConnected {
			return true
		}
	}
	return false
}

// Close tears down every session and closes subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	ids := make([]string, 0, len(m.displays))
	for id := range m.displays {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.stop(id)
	}

	m.subscribersMu.Lock()
	for _, ch := range m.subscribers {
		close(ch)
	}
	m.subscribers = nil
	m.subscribersMu.Unlock()

	log.Info().Int("displays", len(ids)).Msg("Display manager closed")
}

// --- device.EventSubscriber ---

// Subscribe returns a channel that receives display events.
func (m *Manager) Subscribe() chan device.Event {
	ch := make(chan device.Event, 64)
	m.subscribersMu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.subscribersMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscription.
func (m *Manager) Unsubscribe(ch chan device.Event) {
	m.subscribersMu.Lock()
	defer m.subscribersMu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

func (m *Manager) publish(evt device.Event) {
	m.subscribersMu.Lock()
	defer m.subscribersMu.Unlock()

	for _, ch := range m.subscribers {
		select {
		case ch <- evt:
		default:
			log.Debug().Str("display", evt.Device).Str("type", evt.Type).Msg("Subscriber full, dropping event")
		}
	}
}

// --- internals ---

func (m *Manager) lookup(id string) (*display, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, device.ErrClosed
	}
	if d, ok := m.displays[id]; ok {
		return d, nil
	}
	for _, d := range m.displays {
		if d.spec.Name == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", device.ErrNotFound, id)
}

// describe must be called with m.mu held.
func (m *Manager) describe(d *display) device.Device {
	model := ""
	if v, ok := d.session.Value("model"); ok {
		model = fmt.Sprint(v)
	}
	return device.Device{
		ID:           d.spec.ID,
		Name:         d.spec.Name,
		Type:         device.DeviceTypeDisplay,
		Protocol:     device.ProtocolMDC,
		Manufacturer: "Samsung",
		Model:        model,
		Config:       d.session.Config(),
		Status:       d.session.Status(),
		Capabilities: []string{device.CapabilityConfigure, device.CapabilityTeardown},
		StateSchema:  m.desc.StateSchema(),
	}
}

func (m *Manager) save(ctx context.Context, spec device.Spec) error {
	if m.store == nil {
		return nil
	}
	if err := m.store.SaveDisplay(ctx, spec); err != nil {
		return fmt.Errorf("failed to persist display: %w", err)
	}
	return nil
}
