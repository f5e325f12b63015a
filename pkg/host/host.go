// Package host builds the metadata a control surface needs to drive a
// display: actions, feedbacks, presets and variables. Everything is derived
// once from an lfd.Descriptor and is immutable afterwards.
package host

import (
	"fmt"
	"strings"

	"github.com/urmzd/lfdctl/pkg/lfd"
	"github.com/urmzd/lfdctl/pkg/session"
)

// Option types
const (
	OptionDropdown = "dropdown"
	OptionNumber   = "number"
	OptionText     = "textinput"
)

// SendCommandAction submits free-form command text.
const SendCommandAction = "sendCommand"

// Option is one user-supplied parameter of an action.
type Option struct {
	ID      string       `json:"id"`
	Label   string       `json:"label"`
	Type    string       `json:"type"`
	Choices []lfd.Choice `json:"choices,omitempty"`
	Min     int          `json:"min,omitempty"`
	Max     int          `json:"max,omitempty"`
	Default any          `json:"default,omitempty"`
}

// Action maps user input to semantic command text.
type Action struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Field   string   `json:"field,omitempty"`
	Fixed   string   `json:"fixed,omitempty"`
	Options []Option `json:"options,omitempty"`
}

// Command renders the command text for the given option values.
func (a Action) Command(values map[string]any) (string, error) {
	if a.ID == SendCommandAction {
		text, _ := values["command"].(string)
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("action %s: command is required", a.ID)
		}
		return text, nil
	}
	if a.Fixed != "" {
		return a.Field + " " + a.Fixed, nil
	}
	v, ok := values["value"]
	if !ok || v == nil {
		return "", fmt.Errorf("action %s: value is required", a.ID)
	}
	return fmt.Sprintf("%s %v", a.Field, v), nil
}

// Preset is a ready-made button: an action with fixed option values and
// the feedback that lights it.
type Preset struct {
	Category string         `json:"category"`
	Label    string         `json:"label"`
	Action   string         `json:"action"`
	Values   map[string]any `json:"values,omitempty"`
	Feedback string         `json:"feedback,omitempty"`
}

// VariableDef names one snapshot facet exposed as a variable.
type VariableDef struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Metadata is everything a host publishes for one display family.
type Metadata struct {
	Actions   []Action      `json:"actions"`
	Feedbacks []FeedbackDef `json:"feedbacks"`
	Presets   []Preset      `json:"presets"`
	Variables []VariableDef `json:"variables"`
}

// Build derives host metadata from a descriptor.
func Build(d lfd.Descriptor) Metadata {
	var m Metadata

	for _, f := range d.Fields {
		if f.Kind != lfd.KindStatus {
			m.Variables = append(m.Variables, VariableDef{ID: f.Name, Label: f.Label})
		}
		if !f.Settable {
			continue
		}

		switch f.Kind {
		case lfd.KindToggle:
			m.Actions = append(m.Actions,
				Action{ID: f.Name + "On", Label: f.Label + " on", Field: f.Name, Fixed: "on"},
				Action{ID: f.Name + "Off", Label: f.Label + " off", Field: f.Name, Fixed: "off"},
			)
			m.Feedbacks = append(m.Feedbacks, FeedbackDef{ID: f.Name, Label: f.Label + " is on", Field: f.Name, Match: "on"})
		case lfd.KindRange:
			m.Actions = append(m.Actions, Action{
				ID: f.Name, Label: "Set " + strings.ToLower(f.Label), Field: f.Name,
				Options: []Option{{ID: "value", Label: f.Label, Type: OptionNumber, Min: f.Min, Max: f.Max, Default: f.Min}},
			})
			m.Feedbacks = append(m.Feedbacks, FeedbackDef{ID: f.Name, Label: f.Label, Field: f.Name})
		case lfd.KindChoice:
			var def any
			if len(f.Choices) > 0 {
				def = f.Choices[0].ID
			}
			m.Actions = append(m.Actions, Action{
				ID: f.Name, Label: "Select " + strings.ToLower(f.Label), Field: f.Name,
				Options: []Option{{ID: "value", Label: f.Label, Type: OptionDropdown, Choices: f.Choices, Default: def}},
			})
			m.Feedbacks = append(m.Feedbacks, FeedbackDef{ID: f.Name, Label: f.Label, Field: f.Name})
			for _, c := range f.Choices {
				m.Feedbacks = append(m.Feedbacks, FeedbackDef{
					ID: f.Name + "_" + c.ID, Label: f.Label + " is " + c.Label, Field: f.Name, Match: c.ID,
				})
			}
		}
	}

	m.Actions = append(m.Actions, Action{
		ID: SendCommandAction, Label: "Send command",
		Options: []Option{{ID: "command", Label: "Command", Type: OptionText}},
	})
	m.Presets = buildPresets(d)
	return m
}

func buildPresets(d lfd.Descriptor) []Preset {
	var presets []Preset

	if f, ok := d.Field("power"); ok && f.Settable {
		presets = append(presets,
			Preset{Category: "Basics", Label: "Power On", Action: "powerOn", Feedback: "power"},
			Preset{Category: "Basics", Label: "Power Off", Action: "powerOff"},
		)
	}
	if f, ok := d.Field("input"); ok && f.Settable {
		for _, c := range f.Choices {
			presets = append(presets, Preset{
				Category: "Inputs",
				Label:    c.Label,
				Action:   "input",
				Values:   map[string]any{"value": c.ID},
				Feedback: "input_" + c.ID,
			})
		}
	}
	return presets
}

// Action looks up an action by ID.
func (m Metadata) Action(id string) (Action, bool) {
	for _, a := range m.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// VariableValues projects a snapshot onto the variable definitions. Facets not
// yet reported are empty strings.
func (m Metadata) VariableValues(snap session.Snapshot) map[string]string {
	out := make(map[string]string, len(m.Variables))
	for _, v := range m.Variables {
		if val, ok := snap[v.ID]; ok && val != nil {
			out[v.ID] = fmt.Sprint(val)
		} else {
			out[v.ID] = ""
		}
	}
	return out
}
