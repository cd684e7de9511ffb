package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ToCompleteJSON serializes the model to its complete document form.
//
// The emitted document always carries the seven top-level keys
// (experiment_session only when present), compilation_trace as an object or
// array per the stored variant, and execution_context as an array even for
// a single execution. Output is deterministic: the same model always
// produces identical bytes, and parse/re-serialize is byte-identical.
func (m Model) ToCompleteJSON() ([]byte, error) {
	normalized, err := NewModel(m)
	if err != nil {
		return nil, fmt.Errorf("to complete json: %w", err)
	}
	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("to complete json: %w", err)
	}
	return data, nil
}

// ToCompleteJSONIndent is ToCompleteJSON with two-space indentation, for
// documents meant to be read by people.
func (m Model) ToCompleteJSONIndent() ([]byte, error) {
	data, err := m.ToCompleteJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, fmt.Errorf("indent document: %w", err)
	}
	return buf.Bytes(), nil
}

// FromCompleteJSON rehydrates a model from its document form.
//
// Decoding is lenient about extra keys: real provider payloads carry
// fields this model does not track, and partial data is accepted rather
// than rejected. Use schema.Validate for strict document shape checking.
func FromCompleteJSON(data []byte) (Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return Model{}, fmt.Errorf("parse document: %w", err)
	}
	normalized, err := NewModel(m)
	if err != nil {
		return Model{}, fmt.Errorf("parse document: %w", err)
	}
	return normalized, nil
}
