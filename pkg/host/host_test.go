package host

import (
	"sync"
	"testing"

	"github.com/urmzd/lfdctl/pkg/lfd"
	"github.com/urmzd/lfdctl/pkg/notify"
	"github.com/urmzd/lfdctl/pkg/session"
)

type mapSource struct {
	mu   sync.Mutex
	snap session.Snapshot
}

func (m *mapSource) Value(facet string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.snap[facet]
	return v, ok
}

func (m *mapSource) set(k string, v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap[k] = v
}

func TestBuild_Actions(t *testing.T) {
	m := Build(lfd.DefaultDescriptor())

	tests := []struct {
		action string
		values map[string]any
		want   string
	}{
		{"powerOn", nil, "power on"},
		{"powerOff", nil, "power off"},
		{"volume", map[string]any{"value": 40}, "volume 40"},
		{"input", map[string]any{"value": "hdmi2"}, "input hdmi2"},
		{"muteOn", nil, "mute on"},
		{SendCommandAction, map[string]any{"command": "model?"}, "model?"},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			a, ok := m.Action(tt.action)
			if !ok {
				t.Fatalf("action %s not found", tt.action)
			}
			got, err := a.Command(tt.values)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("command = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAction_MissingValue(t *testing.T) {
	m := Build(lfd.DefaultDescriptor())

	a, _ := m.Action("volume")
	if _, err := a.Command(nil); err == nil {
		t.Error("expected error for missing value")
	}
	s, _ := m.Action(SendCommandAction)
	if _, err := s.Command(map[string]any{"command": "  "}); err == nil {
		t.Error("expected error for blank command")
	}
}

func TestBuild_ReadOnlyFieldsHaveNoActions(t *testing.T) {
	m := Build(lfd.DefaultDescriptor())

	for _, id := range []string{"model", "sernum", "swversion", "status"} {
		if _, ok := m.Action(id); ok {
			t.Errorf("unexpected action for read-only field %s", id)
		}
	}
}

func TestBuild_Presets(t *testing.T) {
	m := Build(lfd.DefaultDescriptor())

	if len(m.Presets) < 2 {
		t.Fatalf("expected presets, got %d", len(m.Presets))
	}
	if p := m.Presets[0]; p.Category != "Basics" || p.Label != "Power On" || p.Action != "powerOn" {
		t.Errorf("first preset = %+v", p)
	}
	if p := m.Presets[1]; p.Label != "Power Off" {
		t.Errorf("second preset = %+v", p)
	}

	inputs := 0
	for _, p := range m.Presets {
		if p.Category == "Inputs" {
			inputs++
			if _, ok := m.Action(p.Action); !ok {
				t.Errorf("preset %s references missing action %s", p.Label, p.Action)
			}
		}
	}
	if inputs != len(lfd.Inputs) {
		t.Errorf("input presets = %d, want %d", inputs, len(lfd.Inputs))
	}
}

func TestVariableValues(t *testing.T) {
	m := Build(lfd.DefaultDescriptor())

	vals := m.VariableValues(session.Snapshot{"power": "on", "volume": 30, "model": "QM55B"})
	if vals["power"] != "on" || vals["volume"] != "30" || vals["model"] != "QM55B" {
		t.Errorf("variables = %v", vals)
	}
	if v, ok := vals["sernum"]; !ok || v != "" {
		t.Errorf("sernum = %q, %v; want empty", v, ok)
	}
	if _, ok := vals["status"]; ok {
		t.Error("status block should not be a variable")
	}
}

func TestFeedback_Reevaluate(t *testing.T) {
	src := &mapSource{snap: session.Snapshot{}}

	var changes []Style
	fb := FeedbackDef{ID: "power", Field: "power", Match: "on"}.Bind(src, func(_ string, st Style) {
		changes = append(changes, st)
	})

	fb.Reevaluate()
	if fb.Style().Active {
		t.Error("feedback active before any value")
	}
	if len(changes) != 0 {
		t.Errorf("changes = %d, want 0", len(changes))
	}

	src.set("power", "on")
	fb.Reevaluate()
	fb.Reevaluate()
	if !fb.Style().Active || fb.Style().Text != "on" {
		t.Errorf("style = %+v, want active on", fb.Style())
	}
	if len(changes) != 1 {
		t.Errorf("changes = %d, want 1", len(changes))
	}
	if fb.Evaluations() != 3 {
		t.Errorf("evaluations = %d, want 3", fb.Evaluations())
	}
}

func TestFeedback_NotifierRoutesByFacet(t *testing.T) {
	src := &mapSource{snap: session.Snapshot{}}
	n := notify.New()
	m := Build(lfd.DefaultDescriptor())

	bound := make(map[string]*Feedback)
	for _, def := range m.Feedbacks {
		fb := def.Bind(src, nil)
		bound[def.ID] = fb
		n.Register(fb)
	}

	src.set("input", "hdmi1")
	n.Notify([]string{"input"})

	if !bound["input_hdmi1"].Style().Active {
		t.Error("input_hdmi1 should be active")
	}
	if bound["input_hdmi2"].Style().Active {
		t.Error("input_hdmi2 should not be active")
	}
	if bound["input_hdmi2"].Evaluations() != 1 {
		t.Errorf("input_hdmi2 evaluations = %d, want 1", bound["input_hdmi2"].Evaluations())
	}
	if bound["power"].Evaluations() != 0 {
		t.Errorf("power evaluations = %d, want 0", bound["power"].Evaluations())
	}
}
