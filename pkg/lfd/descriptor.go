package lfd

import (
	"encoding/json"
	"fmt"

	"github.com/urmzd/lfdctl/pkg/session"
)

// MDC command codes
const (
	cmdStatus    byte = 0x00
	cmdSerial    byte = 0x0B
	cmdSWVersion byte = 0x0E
	cmdPower     byte = 0x11
	cmdVolume    byte = 0x12
	cmdMute      byte = 0x13
	cmdInput     byte = 0x14
	cmdWallMode  byte = 0x5C
	cmdWallOn    byte = 0x84
	cmdModel     byte = 0x8A
	cmdPanel     byte = 0xF9
)

// Kind describes how a field's data byte maps to a semantic value.
type Kind string

const (
	KindToggle Kind = "toggle" // on/off
	KindRange  Kind = "range"  // integer between Min and Max
	KindChoice Kind = "choice" // one of Choices
	KindText   Kind = "text"   // read-only ASCII string
	KindStatus Kind = "status" // multi-key status block
)

// Choice is one selectable value of a choice field.
type Choice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Code  byte   `json:"code"`
}

// Field is one entry of the device command table.
type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Code     byte     `json:"code"`
	Kind     Kind     `json:"kind"`
	Settable bool     `json:"settable"`
	Min      int      `json:"min,omitempty"`
	Max      int      `json:"max,omitempty"`
	Choices  []Choice `json:"choices,omitempty"`
	// OnCode/OffCode are the data bytes for toggles. Some fields invert them.
	OnCode  byte `json:"on_code,omitempty"`
	OffCode byte `json:"off_code,omitempty"`
}

// Descriptor is the capability descriptor of a display family: its
// command table, the queries sent after every connect and the follow-up
// queries triggered by state transitions.
type Descriptor struct {
	Model     string             `json:"model"`
	Fields    []Field            `json:"fields"`
	Baseline  []string           `json:"baseline"`
	FollowUps []session.FollowUp `json:"follow_ups"`
}

// Inputs is the MDC input source choice set.
var Inputs = []Choice{
	{ID: "pc", Label: "PC", Code: 0x14},
	{ID: "dvi", Label: "DVI", Code: 0x18},
	{ID: "av", Label: "AV", Code: 0x0C},
	{ID: "component", Label: "Component", Code: 0x08},
	{ID: "magicinfo", Label: "MagicInfo", Code: 0x20},
	{ID: "hdmi1", Label: "HDMI 1", Code: 0x21},
	{ID: "hdmi1_pc", Label: "HDMI 1 (PC)", Code: 0x22},
	{ID: "hdmi2", Label: "HDMI 2", Code: 0x23},
	{ID: "hdmi2_pc", Label: "HDMI 2 (PC)", Code: 0x24},
	{ID: "displayport", Label: "DisplayPort", Code: 0x25},
	{ID: "hdmi3", Label: "HDMI 3", Code: 0x31},
	{ID: "hdmi4", Label: "HDMI 4", Code: 0x33},
	{ID: "dtv", Label: "DTV", Code: 0x40},
}

// DefaultDescriptor returns the descriptor for Samsung LFD displays
// speaking MDC over TCP port 1515 or RS-232.
func DefaultDescriptor() Descriptor {
	return Descriptor{
		Model: "samsung-lfd",
		Fields: []Field{
			{Name: "status", Label: "Status", Code: cmdStatus, Kind: KindStatus},
			{Name: "power", Label: "Power", Code: cmdPower, Kind: KindToggle, Settable: true, OnCode: 0x01, OffCode: 0x00},
			{Name: "volume", Label: "Volume", Code: cmdVolume, Kind: KindRange, Settable: true, Min: 0, Max: 100},
			{Name: "mute", Label: "Mute", Code: cmdMute, Kind: KindToggle, Settable: true, OnCode: 0x01, OffCode: 0x00},
			{Name: "input", Label: "Input Source", Code: cmdInput, Kind: KindChoice, Settable: true, Choices: Inputs},
			{Name: "wallMode", Label: "Video Wall Mode", Code: cmdWallMode, Kind: KindChoice, Settable: true, Choices: []Choice{
				{ID: "natural", Label: "Natural", Code: 0x00},
				{ID: "full", Label: "Full", Code: 0x01},
			}},
			{Name: "wallOn", Label: "Video Wall", Code: cmdWallOn, Kind: KindToggle, Settable: true, OnCode: 0x01, OffCode: 0x00},
			{Name: "panel", Label: "Panel", Code: cmdPanel, Kind: KindToggle, Settable: true, OnCode: 0x00, OffCode: 0x01},
			{Name: "sernum", Label: "Serial Number", Code: cmdSerial, Kind: KindText},
			{Name: "swversion", Label: "Software Version", Code: cmdSWVersion, Kind: KindText},
			{Name: "model", Label: "Model Name", Code: cmdModel, Kind: KindText},
		},
		Baseline: []string{"status?", "power?"},
		FollowUps: []session.FollowUp{
			{TriggerField: "power", TriggerValue: "on", Commands: []string{"model?", "sernum?", "swversion?"}},
		},
	}
}

// Field looks up a field by name.
func (d Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldByCode looks up a field by its MDC command code.
func (d Descriptor) FieldByCode(code byte) (Field, bool) {
	for _, f := range d.Fields {
		if f.Code == code {
			return f, true
		}
	}
	return Field{}, false
}

// Choice looks up a choice by ID.
func (f Field) Choice(id string) (Choice, bool) {
	for _, c := range f.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

// ChoiceByCode looks up a choice by its data byte.
func (f Field) ChoiceByCode(code byte) (Choice, bool) {
	for _, c := range f.Choices {
		if c.Code == code {
			return c, true
		}
	}
	return Choice{}, false
}

// ArgsSchema returns the JSON Schema the arguments of a set command must
// satisfy. Read-only fields return nil.
func (f Field) ArgsSchema() json.RawMessage {
	if !f.Settable {
		return nil
	}

	var value map[string]any
	switch f.Kind {
	case KindToggle:
		value = map[string]any{"type": "string", "enum": []string{"on", "off"}}
	case KindRange:
		value = map[string]any{"type": "integer", "minimum": f.Min, "maximum": f.Max}
	case KindChoice:
		ids := make([]string, 0, len(f.Choices))
		for _, c := range f.Choices {
			ids = append(ids, c.ID)
		}
		value = map[string]any{"type": "string", "enum": ids}
	default:
		return nil
	}

	doc := map[string]any{
		"type":       "object",
		"properties": map[string]any{"value": value},
		"required":   []string{"value"},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("lfd: marshal args schema for %s: %v", f.Name, err))
	}
	return raw
}

// StateSchema returns the JSON Schema of a settable-state document: one
// optional property per settable field.
func (d Descriptor) StateSchema() json.RawMessage {
	props := make(map[string]any)
	for _, f := range d.Fields {
		args := f.ArgsSchema()
		if args == nil {
			continue
		}
		var doc struct {
			Properties map[string]json.RawMessage `json:"properties"`
		}
		if err := json.Unmarshal(args, &doc); err != nil {
			continue
		}
		props[f.Name] = doc.Properties["value"]
	}

	raw, err := json.Marshal(map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
		"minProperties":        1,
	})
	if err != nil {
		panic(fmt.Sprintf("lfd: marshal state schema: %v", err))
	}
	return raw
}

// encodeValue maps a validated semantic value to the field's data byte.
func (f Field) encodeValue(v any) (byte, error) {
	switch f.Kind {
	case KindToggle:
		switch fmt.Sprint(v) {
		case "on":
			return f.OnCode, nil
		case "off":
			return f.OffCode, nil
		}
	case KindRange:
		n, ok := toInt(v)
		if ok && n >= f.Min && n <= f.Max {
			return byte(n), nil
		}
	case KindChoice:
		if c, ok := f.Choice(fmt.Sprint(v)); ok {
			return c.Code, nil
		}
	}
	return 0, fmt.Errorf("%w: %s %v", ErrInvalidValue, f.Name, v)
}

// decodeValue maps response data to the field's semantic value.
func (f Field) decodeValue(data []byte) (any, error) {
	if f.Kind == KindText {
		return decodeText(data), nil
	}
	if len(data) < 1 {
		return nil, fmt.Errorf("%w: %s response has no data", ErrShortFrame, f.Name)
	}
	b := data[0]
	switch f.Kind {
	case KindToggle:
		if b == f.OnCode {
			return "on", nil
		}
		return "off", nil
	case KindRange:
		return int(b), nil
	case KindChoice:
		if c, ok := f.ChoiceByCode(b); ok {
			return c.ID, nil
		}
		return fmt.Sprintf("0x%02x", b), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, f.Name)
}

func decodeText(data []byte) string {
	end := len(data)
	for end > 0 && (data[end-1] == 0x00 || data[end-1] == ' ') {
		end--
	}
	return string(data[:end])
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}
