package schema

import (
	"encoding/json"
	"testing"
)

func volumeArgsSchema() json.RawMessage {
	return json.RawMessage(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"properties": {
			"value": {"type": "integer", "minimum": 0, "maximum": 100}
		},
		"required": ["value"],
		"additionalProperties": false
	}`)
}

func powerArgsSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"value": {"type": "string", "enum": ["on", "off"]}
		},
		"required": ["value"]
	}`)
}

func TestValidate_ValidInt(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(volumeArgsSchema(), map[string]any{"value": 50}); err != nil {
		t.Errorf("expected valid payload, got: %v", err)
	}
}

func TestValidate_ValidFloatFromJSON(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(volumeArgsSchema(), map[string]any{"value": float64(75)}); err != nil {
		t.Errorf("expected valid payload, got: %v", err)
	}
}

func TestValidate_OutOfRange(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(volumeArgsSchema(), map[string]any{"value": 101}); err == nil {
		t.Error("expected validation error for out-of-range volume")
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(volumeArgsSchema(), nil); err == nil {
		t.Error("expected validation error for missing value")
	}
}

func TestValidate_InvalidEnum(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(powerArgsSchema(), map[string]any{"value": "standby"}); err == nil {
		t.Error("expected validation error for invalid enum value")
	}
}

func TestValidate_UnknownProperty(t *testing.T) {
	v := NewValidator()

	err := v.Validate(volumeArgsSchema(), map[string]any{
		"value":   10,
		"unknown": "value",
	})
	if err == nil {
		t.Error("expected validation error for unknown property")
	}
}

func TestValidate_WrongType(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(volumeArgsSchema(), map[string]any{"value": "loud"}); err == nil {
		t.Error("expected validation error for wrong type")
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(json.RawMessage(`{}`), map[string]any{"anything": "goes"}); err != nil {
		t.Errorf("empty schema should skip validation, got: %v", err)
	}
	if err := v.Validate(nil, nil); err != nil {
		t.Errorf("nil schema should skip validation, got: %v", err)
	}
}

func TestValidate_CachesSchema(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(powerArgsSchema(), map[string]any{"value": "on"}); err != nil {
		t.Fatal(err)
	}
	if err := v.Validate(powerArgsSchema(), map[string]any{"value": "off"}); err != nil {
		t.Fatal(err)
	}

	if v.Len() != 1 {
		t.Errorf("expected 1 cached schema, got %d", v.Len())
	}
}
