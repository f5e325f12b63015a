package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/urmzd/lfdctl/pkg/api/types"
	"github.com/urmzd/lfdctl/pkg/device/schema"
	"github.com/urmzd/lfdctl/pkg/display"
	"github.com/urmzd/lfdctl/pkg/lfd"
	"github.com/urmzd/lfdctl/pkg/transport"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	sim     *lfd.Simulator
	host    string
	port    int
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	sim := lfd.NewSimulator(lfd.DefaultDescriptor(), 1)
	go sim.Serve(ctx, ln)

	validator := schema.NewValidator()
	m := display.NewManager(display.Options{Validator: validator, Factory: transport.Factory})
	t.Cleanup(m.Close)

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return &testServer{
		t:       t,
		handler: NewRouter(m, validator, nil).Handler(),
		sim:     sim,
		host:    host,
		port:    port,
	}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) addLobby() {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/displays", map[string]any{
		"id":   "lobby",
		"name": "Lobby",
		"host": s.host,
		"port": s.port,
	})
	if rec.Code != http.StatusCreated {
		s.t.Fatalf("add display: %d %s", rec.Code, rec.Body)
	}
	s.eventually("connected", func() bool {
		var resp types.StateResponse
		rec := s.do(http.MethodGet, "/api/v1/displays/lobby/state", nil)
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		return resp.State["power"] == "off"
	})
}

func (s *testServer) eventually(what string, cond func() bool) {
	s.t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	s.t.Fatalf("timed out waiting for %s", what)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body, err)
	}
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("empty health = %d", rec.Code)
	}
	if got := decode[types.HealthResponse](t, rec); got.Status != "healthy" || got.Displays != 0 {
		t.Errorf("empty health = %+v", got)
	}

	s.addLobby()
	health := decode[types.HealthResponse](t, s.do(http.MethodGet, "/api/v1/health", nil))
	if health.Status != "healthy" || health.Displays != 1 || health.Connected != 1 {
		t.Errorf("health = %+v", health)
	}

	s.do(http.MethodPost, "/api/v1/displays/lobby/teardown", nil)
	rec = s.do(http.MethodGet, "/health", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("health after teardown = %d", rec.Code)
	}
	if got := decode[types.HealthResponse](t, rec); got.Status != "degraded" || got.Connected != 0 {
		t.Errorf("health after teardown = %+v", got)
	}
}

func TestDisplayLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.addLobby()

	list := decode[types.ListDisplaysResponse](t, s.do(http.MethodGet, "/api/v1/displays", nil))
	if list.Count != 1 || list.Displays[0].ID != "lobby" || list.Displays[0].Config.DeviceID != 1 {
		t.Fatalf("list = %+v", list)
	}

	rec := s.do(http.MethodPost, "/api/v1/displays", map[string]any{"id": "lobby", "host": s.host})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate add = %d", rec.Code)
	}
	rec = s.do(http.MethodPost, "/api/v1/displays", map[string]any{"id": "bad", "host": s.host, "device_id": 300})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid add = %d", rec.Code)
	}
	rec = s.do(http.MethodPost, "/api/v1/displays", map[string]any{"id": "nohost"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing host = %d", rec.Code)
	}

	rec = s.do(http.MethodPatch, "/api/v1/displays/Lobby", map[string]any{"name": "Foyer"})
	if rec.Code != http.StatusOK || decode[types.DisplayResponse](t, rec).Display.Name != "Foyer" {
		t.Errorf("rename = %d %s", rec.Code, rec.Body)
	}
	if rec := s.do(http.MethodGet, "/api/v1/displays/Foyer", nil); rec.Code != http.StatusOK {
		t.Errorf("get by new name = %d", rec.Code)
	}

	rec = s.do(http.MethodPut, "/api/v1/displays/lobby/config", map[string]any{"host": s.host, "port": 70000})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad configure = %d", rec.Code)
	}
	got := decode[types.DisplayResponse](t, s.do(http.MethodGet, "/api/v1/displays/lobby", nil))
	if got.Display.Status.State.String() != "bad_config" {
		t.Errorf("status after bad configure = %v", got.Display.Status)
	}

	rec = s.do(http.MethodPut, "/api/v1/displays/lobby/config", map[string]any{"host": s.host, "port": s.port})
	if rec.Code != http.StatusOK {
		t.Errorf("configure = %d %s", rec.Code, rec.Body)
	}

	if rec := s.do(http.MethodDelete, "/api/v1/displays/lobby", nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete = %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/api/v1/displays/lobby", nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d", rec.Code)
	}
}

func TestControl(t *testing.T) {
	s := newTestServer(t)
	s.addLobby()

	rec := s.do(http.MethodPost, "/api/v1/displays/lobby/state", map[string]any{"power": "on", "volume": 25})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("set state = %d %s", rec.Code, rec.Body)
	}
	s.eventually("power on", func() bool { return s.sim.Value("power") == 0x01 && s.sim.Value("volume") == 25 })

	rec = s.do(http.MethodPost, "/api/v1/displays/lobby/state", map[string]any{"volume": 101})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out of range state = %d", rec.Code)
	}

	rec = s.do(http.MethodPost, "/api/v1/displays/lobby/commands", types.CommandRequest{Command: "mute on"})
	if rec.Code != http.StatusAccepted {
		t.Errorf("command = %d %s", rec.Code, rec.Body)
	}
	rec = s.do(http.MethodPost, "/api/v1/displays/lobby/commands", types.CommandRequest{Command: "brightness 5"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported command = %d", rec.Code)
	}

	rec = s.do(http.MethodPost, "/api/v1/displays/lobby/actions/input", types.ActionRequest{Values: map[string]any{"value": "hdmi2"}})
	if rec.Code != http.StatusAccepted || decode[types.CommandResponse](t, rec).Command != "input hdmi2" {
		t.Errorf("action = %d %s", rec.Code, rec.Body)
	}
	if rec := s.do(http.MethodPost, "/api/v1/displays/lobby/actions/selfDestruct", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown action = %d", rec.Code)
	}

	s.eventually("variables", func() bool {
		vars := decode[types.VariablesResponse](t, s.do(http.MethodGet, "/api/v1/displays/lobby/variables", nil))
		return vars.Variables["input"] == "hdmi2" && vars.Variables["mute"] == "on" && vars.Variables["model"] == "QM55B"
	})
	s.eventually("feedbacks", func() bool {
		fbs := decode[types.FeedbacksResponse](t, s.do(http.MethodGet, "/api/v1/displays/lobby/feedbacks", nil))
		return fbs.Feedbacks["power"].Active && fbs.Feedbacks["mute"].Active
	})

	s.sim.Reject("volume")
	s.do(http.MethodPost, "/api/v1/displays/lobby/commands", types.CommandRequest{Command: "volume 30"})
	s.eventually("failure", func() bool {
		f := decode[types.FailureResponse](t, s.do(http.MethodGet, "/api/v1/displays/lobby/failure", nil))
		return f.RequestKey == "volume?" && f.Status == "nak"
	})
}

func TestMetadata(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/v1/metadata", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metadata = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`"powerOn"`, `"Basics"`, `"sernum"`} {
		if !strings.Contains(body, want) {
			t.Errorf("metadata missing %s", want)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/displays", nil)
	req.Header.Set("Origin", "http://panel.local")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin = %q", got)
	}
}
