package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/lfdctl/pkg/api/types"
)

func servePorts(t *testing.T, list func() ([]string, error)) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/serial-ports", NewPortsHandler(list).SerialPorts)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/serial-ports", nil))
	return w
}

func TestSerialPorts(t *testing.T) {
	w := servePorts(t, func() ([]string, error) {
		return []string{"/dev/ttyUSB0", "/dev/ttyUSB1"}, nil
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp types.SerialPortsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Ports) != 2 || resp.Ports[0] != "/dev/ttyUSB0" {
		t.Errorf("ports = %v", resp.Ports)
	}
	if resp.DefaultBaudRate != 9600 || resp.DefaultTCPPort != 1515 {
		t.Errorf("defaults = %+v", resp)
	}
}

func TestSerialPorts_NoneFound(t *testing.T) {
	w := servePorts(t, func() ([]string, error) { return nil, nil })
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Body.String(); got != `{"ports":[],"default_baud_rate":9600,"default_tcp_port":1515}` {
		t.Errorf("body = %s", got)
	}
}

func TestSerialPorts_Error(t *testing.T) {
	w := servePorts(t, func() ([]string, error) { return nil, errors.New("no sysfs") })
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}
