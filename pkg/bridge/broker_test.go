package bridge

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/urmzd/lfdctl/pkg/device"
	"github.com/urmzd/lfdctl/pkg/session"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

type received struct {
	mu   sync.Mutex
	msgs map[string]string
}

func (r *received) add(topic string, payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs[topic] = string(payload)
}

func (r *received) get(topic string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.msgs[topic]
	return v, ok
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestBrokerURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":1883", "mqtt://127.0.0.1:1883"},
		{"0.0.0.0:1883", "mqtt://127.0.0.1:1883"},
		{"10.0.0.5:1884", "mqtt://10.0.0.5:1884"},
	}
	for _, tt := range tests {
		b := &Broker{addr: tt.addr}
		if got := b.URL(); got != tt.want {
			t.Errorf("URL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestMQTTBridgeThroughEmbeddedBroker(t *testing.T) {
	broker, err := StartBroker(freeAddr(t))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = broker.Close() }()

	got := &received{msgs: make(map[string]string)}
	if err := broker.Watch("lfd/#", 1, got.add); err != nil {
		t.Fatal(err)
	}

	h := newFakeHost()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m, err := ConnectMQTT(ctx, broker.URL(), "bridge-test", "lfd", h)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		dctx, dcancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer dcancel()
		_ = m.Disconnect(dctx)
	}()

	actx, acancel := context.WithTimeout(ctx, 5*time.Second)
	defer acancel()
	if err := m.cm.AwaitConnection(actx); err != nil {
		t.Fatalf("AwaitConnection: %v", err)
	}

	status := session.Status{State: session.StateConnected}
	if err := m.Handle(ctx, device.Event{Type: device.EventStatus, Device: "lobby", Status: &status}); err != nil {
		t.Fatalf("Handle status: %v", err)
	}
	if err := m.Handle(ctx, device.Event{Type: device.EventState, Device: "lobby", Changed: []string{"volume"}}); err != nil {
		t.Fatalf("Handle state: %v", err)
	}
	waitFor(t, "retained status", func() bool {
		v, ok := got.get("lfd/lobby/status")
		return ok && v == "connected"
	})
	waitFor(t, "volume variable", func() bool {
		v, ok := got.get("lfd/lobby/var/volume")
		return ok && v == "20"
	})

	// The command subscription is made once the connection is up, so keep
	// publishing until the host sees the command.
	waitFor(t, "command dispatch", func() bool {
		if err := broker.Publish("lfd/lobby/command", []byte("power?"), false); err != nil {
			t.Fatalf("Publish: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.commands) > 0
	})
	h.mu.Lock()
	first := h.commands[0]
	h.mu.Unlock()
	if first != "lobby:power?" {
		t.Errorf("command = %q", first)
	}
}

func TestOpenStartsEmbeddedBroker(t *testing.T) {
	cfg := Config{
		MQTTListen:   freeAddr(t),
		MQTTClientID: "open-test",
		MQTTPrefix:   "lfd",
	}
	b, err := Open(context.Background(), cfg, newFakeHost())
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if b.broker == nil {
		t.Fatal("embedded broker not started")
	}
	names := b.Names()
	if len(names) != 1 || names[0] != "mqtt" {
		t.Errorf("names = %v", names)
	}
}
