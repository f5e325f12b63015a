package transport

import (
	"bytes"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/urmzd/lfdctl/pkg/session"
)

type recordingSink struct {
	mu     sync.Mutex
	events []string
	data   []byte
	ch     chan string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{ch: make(chan string, 64)}
}

func (r *recordingSink) record(ev string) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	r.ch <- ev
}

func (r *recordingSink) Connected() { r.record("connected") }
func (r *recordingSink) Closed()    { r.record("closed") }
func (r *recordingSink) Error(error) {
	r.record("error")
}
func (r *recordingSink) Data(p []byte) {
	r.mu.Lock()
	r.data = append(r.data, p...)
	r.mu.Unlock()
	r.record("data")
}

func (r *recordingSink) wait(t *testing.T, want string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-r.ch:
			if ev == want {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q, got %v", want, r.snapshot())
		}
	}
}

func (r *recordingSink) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func listen(t *testing.T) (net.Listener, chan net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	conns := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		conns <- c
	}()
	return ln, conns
}

func TestTCP_ConnectWriteRead(t *testing.T) {
	ln, conns := listen(t)
	sink := newRecordingSink()

	tr := NewTCP(ln.Addr().String(), time.Second, 0, sink)
	if err := tr.Connect(); err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	sink.wait(t, "connected")
	server := <-conns
	defer server.Close()

	powerOn := []byte{0xAA, 0x11, 0x01, 0x01, 0x01, 0x14}
	if err := tr.Write(powerOn); err != nil {
		t.Fatal(err)
	}
	got := make([]byte, len(powerOn))
	server.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := server.Read(got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, powerOn) {
		t.Errorf("server got % X, want % X", got, powerOn)
	}

	ack := []byte{0xAA, 0xFF, 0x01, 0x03, 0x41, 0x11, 0x01, 0x56}
	if _, err := server.Write(ack); err != nil {
		t.Fatal(err)
	}
	sink.wait(t, "data")
}

func TestTCP_RemoteCloseDeliversClosed(t *testing.T) {
	ln, conns := listen(t)
	sink := newRecordingSink()

	tr := NewTCP(ln.Addr().String(), time.Second, 0, sink)
	if err := tr.Connect(); err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	sink.wait(t, "connected")
	server := <-conns
	server.Close()

	sink.wait(t, "closed")
	if err := tr.Write([]byte{0x00}); err == nil {
		t.Error("expected write after remote close to fail")
	}
}

func TestTCP_DialFailureDeliversErrorThenClosed(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	sink := newRecordingSink()
	tr := NewTCP(addr, time.Second, 0, sink)
	if err := tr.Connect(); err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	sink.wait(t, "closed")
	events := sink.snapshot()
	if len(events) != 2 || events[0] != "error" || events[1] != "closed" {
		t.Errorf("events = %v, want [error closed]", events)
	}
}

func TestTCP_CloseSuppressesEvents(t *testing.T) {
	ln, conns := listen(t)
	sink := newRecordingSink()

	tr := NewTCP(ln.Addr().String(), time.Second, 0, sink)
	if err := tr.Connect(); err != nil {
		t.Fatal(err)
	}
	sink.wait(t, "connected")
	server := <-conns
	defer server.Close()

	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	server.Write([]byte{0xAA})

	select {
	case ev := <-sink.ch:
		t.Errorf("unexpected event after Close: %s", ev)
	case <-time.After(200 * time.Millisecond):
	}

	if err := tr.Connect(); err != ErrClosed {
		t.Errorf("Connect after Close = %v, want ErrClosed", err)
	}
}

func TestWriteBeforeConnect(t *testing.T) {
	tr := NewTCP("127.0.0.1:1", time.Second, 0, newRecordingSink())
	if err := tr.Write([]byte{0x01}); err != ErrNotConnected {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
}

func TestSerial_OpenFailureDeliversErrorThenClosed(t *testing.T) {
	sink := newRecordingSink()
	tr := NewSerial("/dev/lfdctl-does-not-exist", 0, sink)
	if err := tr.Connect(); err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	sink.wait(t, "closed")
	events := sink.snapshot()
	if len(events) != 2 || events[0] != "error" {
		t.Errorf("events = %v, want [error closed]", events)
	}
}

func TestFactory_ChoosesTransport(t *testing.T) {
	sink := newRecordingSink()

	tr, err := Factory(session.Config{Host: "10.0.0.20", Port: 1515, DeviceID: 1}, sink)
	if err != nil {
		t.Fatal(err)
	}
	if s := tr.(*Stream); s.addr != "10.0.0.20:1515" {
		t.Errorf("tcp addr = %q", s.addr)
	}

	tr, err = Factory(session.Config{Host: "/dev/ttyUSB0", DeviceID: 1, Transport: session.TransportSerial}, sink)
	if err != nil {
		t.Fatal(err)
	}
	if s := tr.(*Stream); s.addr != "/dev/ttyUSB0" {
		t.Errorf("serial addr = %q", s.addr)
	}

	if _, err := Factory(session.Config{Host: "x", Port: 1, Transport: "udp"}, sink); err == nil {
		t.Error("expected error for unknown transport")
	}
}
