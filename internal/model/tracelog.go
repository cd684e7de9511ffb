package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TraceLog holds the compilation_trace field's two storage forms: exactly
// one trace for simple runs, or an ordered sequence when JIT recompilation
// occurred mid-session. The serialized form follows the storage form (a
// bare object or an array); Traces always yields a sequence so consumers
// never branch on the shape.
type TraceLog struct {
	single *CompilationTrace
	list   []CompilationTrace
}

// SingleTrace wraps one compilation trace; it serializes as a bare object.
func SingleTrace(t CompilationTrace) TraceLog {
	return TraceLog{single: &t}
}

// TraceList wraps an ordered trace sequence; it serializes as an array.
func TraceList(ts []CompilationTrace) TraceLog {
	if ts == nil {
		ts = []CompilationTrace{}
	}
	return TraceLog{list: ts}
}

// IsList reports whether the stored form is a sequence.
func (l TraceLog) IsList() bool {
	return l.single == nil
}

// Traces returns the traces as a sequence regardless of storage form.
// The returned slice must not be mutated.
func (l TraceLog) Traces() []CompilationTrace {
	if l.single != nil {
		return []CompilationTrace{*l.single}
	}
	return l.list
}

// Find returns the trace with the given ID, if present.
func (l TraceLog) Find(traceID string) (CompilationTrace, bool) {
	for _, t := range l.Traces() {
		if t.TraceID == traceID {
			return t, true
		}
	}
	return CompilationTrace{}, false
}

// MarshalJSON emits a bare object for the single form, an array otherwise.
func (l TraceLog) MarshalJSON() ([]byte, error) {
	if l.single != nil {
		return json.Marshal(*l.single)
	}
	if l.list == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.list)
}

// UnmarshalJSON accepts both a bare trace object and an array of traces.
func (l *TraceLog) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("compilation_trace: empty JSON value")
	}

	switch trimmed[0] {
	case '{':
		var t CompilationTrace
		if err := json.Unmarshal(trimmed, &t); err != nil {
			return fmt.Errorf("compilation_trace: %w", err)
		}
		*l = TraceLog{single: &t}
		return nil
	case '[':
		var ts []CompilationTrace
		if err := json.Unmarshal(trimmed, &ts); err != nil {
			return fmt.Errorf("compilation_trace: %w", err)
		}
		if ts == nil {
			ts = []CompilationTrace{}
		}
		*l = TraceLog{list: ts}
		return nil
	default:
		return fmt.Errorf("compilation_trace: expected object or array, got %q", trimmed[0])
	}
}
