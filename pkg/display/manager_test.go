package display

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/urmzd/lfdctl/pkg/device"
	"github.com/urmzd/lfdctl/pkg/lfd"
	"github.com/urmzd/lfdctl/pkg/session"
	"github.com/urmzd/lfdctl/pkg/transport"
)

type memStore struct {
	mu    sync.Mutex
	specs map[string]device.Spec
}

func newMemStore() *memStore {
	return &memStore{specs: make(map[string]device.Spec)}
}

func (s *memStore) SaveDisplay(ctx context.Context, spec device.Spec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs[spec.ID] = spec
	return nil
}

func (s *memStore) DeleteDisplay(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.specs, id)
	return nil
}

func (s *memStore) get(id string) (device.Spec, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spec, ok := s.specs[id]
	return spec, ok
}

// startSimulator serves a simulated display on a loopback port.
func startSimulator(t *testing.T, id int) (*lfd.Simulator, session.Config) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	sim := lfd.NewSimulator(lfd.DefaultDescriptor(), id)
	go sim.Serve(ctx, ln)

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return sim, session.Config{Host: host, Port: port, DeviceID: id}
}

func newTestManager(t *testing.T, store Store) *Manager {
	t.Helper()
	m := NewManager(Options{Factory: transport.Factory, Store: store})
	t.Cleanup(m.Close)
	return m
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func stateOf(t *testing.T, m *Manager, id string) device.DeviceState {
	t.Helper()
	st, err := m.GetDeviceState(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func TestManager_AddConnectsAndRunsBaseline(t *testing.T) {
	_, cfg := startSimulator(t, 1)
	store := newMemStore()
	m := newTestManager(t, store)
	ctx := context.Background()

	d, err := m.AddDevice(ctx, device.Spec{ID: "lobby", Name: "Lobby", Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	if d.Protocol != device.ProtocolMDC || len(d.Capabilities) != 2 {
		t.Errorf("device = %+v", d)
	}
	if _, ok := store.get("lobby"); !ok {
		t.Error("spec not persisted")
	}

	eventually(t, "baseline state", func() bool {
		st := stateOf(t, m, "lobby")
		return st["power"] == "off" && st["volume"] == 10 && st["input"] == "hdmi1"
	})
	if !m.IsConnected() {
		t.Error("manager should report a connected display")
	}
}

func TestManager_PowerOnTriggersFollowUps(t *testing.T) {
	sim, cfg := startSimulator(t, 1)
	m := newTestManager(t, nil)
	ctx := context.Background()

	if _, err := m.AddDevice(ctx, device.Spec{ID: "lobby", Config: cfg}); err != nil {
		t.Fatal(err)
	}
	eventually(t, "connected", func() bool { return stateOf(t, m, "lobby")["power"] == "off" })

	if err := m.SendCommand(ctx, "lobby", "power on"); err != nil {
		t.Fatal(err)
	}
	eventually(t, "follow-up queries", func() bool {
		vars, err := m.Variables(ctx, "lobby")
		return err == nil && vars["power"] == "on" && vars["model"] == "QM55B" && vars["sernum"] != ""
	})
	if sim.Value("power") != 0x01 {
		t.Error("simulator was not powered on")
	}

	dev, err := m.GetDevice(ctx, "lobby")
	if err != nil {
		t.Fatal(err)
	}
	if dev.Model != "QM55B" {
		t.Errorf("model = %q", dev.Model)
	}

	fbs, err := m.Feedbacks(ctx, "lobby")
	if err != nil {
		t.Fatal(err)
	}
	if !fbs["power"].Active {
		t.Error("power feedback should be active")
	}
	if !fbs["input_hdmi1"].Active || fbs["input_hdmi2"].Active {
		t.Errorf("input feedbacks = %+v / %+v", fbs["input_hdmi1"], fbs["input_hdmi2"])
	}
}

func TestManager_SetDeviceState(t *testing.T) {
	sim, cfg := startSimulator(t, 1)
	m := newTestManager(t, nil)
	ctx := context.Background()

	if _, err := m.AddDevice(ctx, device.Spec{ID: "lobby", Config: cfg}); err != nil {
		t.Fatal(err)
	}
	eventually(t, "connected", func() bool { return stateOf(t, m, "lobby")["power"] != nil })

	if _, err := m.SetDeviceState(ctx, "lobby", map[string]any{"volume": 200}); !errors.Is(err, device.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
	if _, err := m.SetDeviceState(ctx, "lobby", map[string]any{"volume": 35, "input": "hdmi2"}); err != nil {
		t.Fatal(err)
	}
	eventually(t, "state applied", func() bool {
		st := stateOf(t, m, "lobby")
		return st["volume"] == 35 && st["input"] == "hdmi2"
	})
	if sim.Value("input") != 0x23 {
		t.Errorf("simulator input = 0x%02X, want 0x23", sim.Value("input"))
	}
}

func TestManager_RunAction(t *testing.T) {
	_, cfg := startSimulator(t, 1)
	m := newTestManager(t, nil)
	ctx := context.Background()

	if _, err := m.AddDevice(ctx, device.Spec{ID: "lobby", Config: cfg}); err != nil {
		t.Fatal(err)
	}
	eventually(t, "connected", func() bool { return stateOf(t, m, "lobby")["mute"] != nil })

	text, err := m.RunAction(ctx, "lobby", "muteOn", nil)
	if err != nil {
		t.Fatal(err)
	}
	if text != "mute on" {
		t.Errorf("command = %q", text)
	}
	eventually(t, "mute on", func() bool { return stateOf(t, m, "lobby")["mute"] == "on" })

	if _, err := m.RunAction(ctx, "lobby", "explode", nil); !errors.Is(err, device.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestManager_NakRecordsFailure(t *testing.T) {
	sim, cfg := startSimulator(t, 1)
	sim.Reject("volume")
	m := newTestManager(t, nil)
	ctx := context.Background()

	if _, err := m.AddDevice(ctx, device.Spec{ID: "lobby", Config: cfg}); err != nil {
		t.Fatal(err)
	}
	eventually(t, "connected", func() bool { return stateOf(t, m, "lobby")["power"] != nil })

	if err := m.SendCommand(ctx, "lobby", "volume?"); err != nil {
		t.Fatal(err)
	}
	eventually(t, "nak recorded", func() bool {
		resp, err := m.LastFailure(ctx, "lobby")
		return err == nil && resp != nil && resp.Status == session.StatusNAK
	})
}

func TestManager_AddRejectsInvalidAndDuplicate(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()

	_, err := m.AddDevice(ctx, device.Spec{ID: "bad", Config: session.Config{Host: "", Port: 1515, DeviceID: 1}})
	if !errors.Is(err, session.ErrBadConfig) {
		t.Errorf("err = %v, want ErrBadConfig", err)
	}
	if _, err := m.GetDevice(ctx, "bad"); !errors.Is(err, device.ErrNotFound) {
		t.Errorf("invalid display should not be added, err = %v", err)
	}

	cfg := session.Config{Host: "127.0.0.1", Port: 1, DeviceID: 1}
	if _, err := m.AddDevice(ctx, device.Spec{ID: "a", Config: cfg}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddDevice(ctx, device.Spec{ID: "a", Config: cfg}); !errors.Is(err, device.ErrExists) {
		t.Errorf("err = %v, want ErrExists", err)
	}
	if _, err := m.AddDevice(ctx, device.Spec{ID: "b", Config: cfg, Reconnect: "sometimes"}); !errors.Is(err, device.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestManager_ConfigureInvalidSetsBadConfig(t *testing.T) {
	_, cfg := startSimulator(t, 1)
	store := newMemStore()
	m := newTestManager(t, store)
	ctx := context.Background()

	if _, err := m.AddDevice(ctx, device.Spec{ID: "lobby", Config: cfg}); err != nil {
		t.Fatal(err)
	}
	err := m.Configure(ctx, "lobby", session.Config{Host: cfg.Host, Port: 0, DeviceID: 1})
	if !errors.Is(err, session.ErrBadConfig) {
		t.Fatalf("err = %v, want ErrBadConfig", err)
	}
	dev, _ := m.GetDevice(ctx, "lobby")
	if dev.Status.State != session.StateBadConfig {
		t.Errorf("state = %v, want BadConfig", dev.Status.State)
	}
	if spec, _ := store.get("lobby"); spec.Config.Port != cfg.Port {
		t.Error("invalid configuration should not be persisted")
	}
}

func TestManager_RenameAndLookupByName(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store)
	ctx := context.Background()

	cfg := session.Config{Host: "127.0.0.1", Port: 1, DeviceID: 1}
	if _, err := m.AddDevice(ctx, device.Spec{ID: "d1", Name: "Old", Config: cfg, Reconnect: "none"}); err != nil {
		t.Fatal(err)
	}
	if err := m.RenameDevice(ctx, "d1", "Boardroom"); err != nil {
		t.Fatal(err)
	}
	dev, err := m.GetDevice(ctx, "Boardroom")
	if err != nil {
		t.Fatal(err)
	}
	if dev.ID != "d1" {
		t.Errorf("id = %q", dev.ID)
	}
	if spec, _ := store.get("d1"); spec.Name != "Boardroom" {
		t.Errorf("persisted name = %q", spec.Name)
	}
}

func TestManager_RemoveAndTeardown(t *testing.T) {
	_, cfg := startSimulator(t, 1)
	store := newMemStore()
	m := newTestManager(t, store)
	ctx := context.Background()

	if _, err := m.AddDevice(ctx, device.Spec{ID: "lobby", Config: cfg}); err != nil {
		t.Fatal(err)
	}
	eventually(t, "connected", func() bool { return m.IsConnected() })

	if err := m.Teardown(ctx, "lobby"); err != nil {
		t.Fatal(err)
	}
	dev, _ := m.GetDevice(ctx, "lobby")
	if dev.Status.State != session.StateIdle {
		t.Errorf("state after teardown = %v, want Idle", dev.Status.State)
	}

	if err := m.RemoveDevice(ctx, "lobby"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.GetDevice(ctx, "lobby"); !errors.Is(err, device.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, ok := store.get("lobby"); ok {
		t.Error("spec should be deleted")
	}
}

func TestManager_EventsForwarded(t *testing.T) {
	_, cfg := startSimulator(t, 1)
	m := newTestManager(t, nil)
	ctx := context.Background()

	events := m.Subscribe()
	if _, err := m.AddDevice(ctx, device.Spec{ID: "lobby", Config: cfg}); err != nil {
		t.Fatal(err)
	}

	seen := make(map[string]bool)
	timeout := time.After(3 * time.Second)
	for !(seen[device.EventStatus] && seen[device.EventState] && seen[device.EventFeedback]) {
		select {
		case evt := <-events:
			if evt.Device == "lobby" {
				seen[evt.Type] = true
			}
		case <-timeout:
			t.Fatalf("timed out, saw %v", seen)
		}
	}
	m.Unsubscribe(events)
}

func TestManager_Restore(t *testing.T) {
	_, cfg := startSimulator(t, 1)
	m := newTestManager(t, nil)
	ctx := context.Background()

	m.Restore([]device.Spec{
		{ID: "good", Config: cfg},
		{ID: "bad", Config: session.Config{Host: "10.0.0.5", Port: 70000, DeviceID: 1}},
	})

	devs, err := m.ListDevices(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(devs) != 2 || devs[0].ID != "bad" || devs[1].ID != "good" {
		t.Fatalf("devices = %+v", devs)
	}
	if devs[0].Status.State != session.StateBadConfig {
		t.Errorf("bad state = %v, want BadConfig", devs[0].Status.State)
	}
	eventually(t, "good connected", func() bool { return stateOf(t, m, "good")["power"] != nil })
}

func TestManager_PollRefreshesStatus(t *testing.T) {
	sim, cfg := startSimulator(t, 1)
	m := newTestManager(t, nil)
	ctx := context.Background()

	if _, err := m.AddDevice(ctx, device.Spec{ID: "lobby", Config: cfg, PollInterval: 20 * time.Millisecond}); err != nil {
		t.Fatal(err)
	}
	eventually(t, "connected", func() bool { return stateOf(t, m, "lobby")["power"] != nil })
	before := sim.Requests()
	eventually(t, "polls", func() bool { return sim.Requests() >= before+3 })
}

func TestManager_ClosedRejectsCalls(t *testing.T) {
	m := NewManager(Options{Factory: transport.Factory})
	m.Close()
	m.Close()

	if _, err := m.GetDevice(context.Background(), "x"); !errors.Is(err, device.ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

// closedPortConfig returns a loopback address nothing listens on.
func closedPortConfig(t *testing.T) session.Config {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	_ = ln.Close()
	port, _ := strconv.Atoi(portStr)
	return session.Config{Host: "127.0.0.1", Port: port, DeviceID: 1}
}

func statusOf(t *testing.T, m *Manager, id string) session.State {
	t.Helper()
	d, err := m.GetDevice(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	return d.Status.State
}

func TestManager_SetDeviceStateFollowsSubmitPolicy(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()
	cfg := closedPortConfig(t)

	for _, spec := range []device.Spec{
		{ID: "queued", Config: cfg, Submit: "queue", Reconnect: "none"},
		{ID: "dropped", Config: cfg, Submit: "drop", Reconnect: "none"},
	} {
		if _, err := m.AddDevice(ctx, spec); err != nil {
			t.Fatal(err)
		}
		id := spec.ID
		eventually(t, id+" disconnected", func() bool { return statusOf(t, m, id) == session.StateDisconnected })
	}

	if err := m.SendCommand(ctx, "queued", "power on"); err != nil {
		t.Errorf("SendCommand on queued display: %v", err)
	}
	if _, err := m.SetDeviceState(ctx, "queued", map[string]any{"power": "on"}); err != nil {
		t.Errorf("SetDeviceState on queued display: %v", err)
	}
	if _, err := m.SetDeviceState(ctx, "dropped", map[string]any{"power": "on"}); !errors.Is(err, device.ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}

	if err := m.Teardown(ctx, "queued"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.SetDeviceState(ctx, "queued", map[string]any{"power": "on"}); !errors.Is(err, device.ErrNotConnected) {
		t.Errorf("idle display: err = %v, want ErrNotConnected", err)
	}
}

func TestManager_AddRollsBackWhenTransportFails(t *testing.T) {
	store := newMemStore()
	failing := func(session.Config, session.Sink) (session.Transport, error) {
		return nil, errors.New("no route to display")
	}
	m := NewManager(Options{Factory: failing, Store: store})
	t.Cleanup(m.Close)
	ctx := context.Background()

	_, err := m.AddDevice(ctx, device.Spec{ID: "lobby", Config: session.Config{Host: "10.0.0.20", Port: 1515, DeviceID: 1}})
	if !errors.Is(err, session.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	if _, err := m.GetDevice(ctx, "lobby"); !errors.Is(err, device.ErrNotFound) {
		t.Errorf("display still registered, err = %v", err)
	}
	if _, ok := store.get("lobby"); ok {
		t.Error("display still persisted")
	}
}

func TestManager_BroadcastDisplayIsNotPolled(t *testing.T) {
	sim, cfg := startSimulator(t, 1)
	cfg.DeviceID = session.BroadcastID
	m := newTestManager(t, nil)
	ctx := context.Background()

	if _, err := m.AddDevice(ctx, device.Spec{ID: "wall", Config: cfg, PollInterval: 10 * time.Millisecond}); err != nil {
		t.Fatal(err)
	}
	eventually(t, "connected", func() bool { return statusOf(t, m, "wall") == session.StateConnected })

	if err := m.SendCommand(ctx, "wall", "status?"); err != nil {
		t.Fatal(err)
	}
	if err := m.SendCommand(ctx, "wall", "power on"); err != nil {
		t.Fatal(err)
	}
	eventually(t, "power applied", func() bool { return sim.Value("power") == 0x01 })

	time.Sleep(100 * time.Millisecond)
	if got := sim.Requests(); got != 1 {
		t.Errorf("simulator handled %d frames, want only the power command", got)
	}
}
