package model

import (
	"testing"
)

func TestObject_MarshalSortedKeys(t *testing.T) {
	obj := Object{
		"zeta":  String("last"),
		"alpha": Int(1),
		"mid":   Bool(true),
	}
	got, err := MarshalValue(obj)
	if err != nil {
		t.Fatalf("MarshalValue() failed: %v", err)
	}
	want := `{"alpha":1,"mid":true,"zeta":"last"}`
	if string(got) != want {
		t.Errorf("MarshalValue() = %s, want %s", got, want)
	}
}

func TestObject_MarshalNested(t *testing.T) {
	obj := Object{
		"gate_fidelities": Object{
			"q1": Float(0.999),
			"q0": Float(0.998),
		},
		"tags": Array{String("bell"), String("baseline")},
	}
	got, err := MarshalValue(obj)
	if err != nil {
		t.Fatalf("MarshalValue() failed: %v", err)
	}
	want := `{"gate_fidelities":{"q0":0.998,"q1":0.999},"tags":["bell","baseline"]}`
	if string(got) != want {
		t.Errorf("MarshalValue() = %s, want %s", got, want)
	}
}

func TestUnmarshalValue_NumberKinds(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{"42", Int(42)},
		{"-7", Int(-7)},
		{"0", Int(0)},
		{"0.998", Float(0.998)},
		{"1e3", Float(1000)},
		{"2.5E-4", Float(0.00025)},
	}

	for _, tt := range tests {
		got, err := UnmarshalValue([]byte(tt.input))
		if err != nil {
			t.Fatalf("UnmarshalValue(%q) failed: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("UnmarshalValue(%q) = %#v, want %#v", tt.input, got, tt.want)
		}
	}
}

func TestValue_RoundTripBytes(t *testing.T) {
	// Decode then re-encode must reproduce the original bytes: document
	// identity depends on it.
	inputs := []string{
		`{"a":1,"b":0.5,"c":"x","d":null,"e":true,"f":[1,2.5,"y"],"g":{"nested":0.001}}`,
		`{"t1_us":156.3,"readout_error":0.014}`,
		`{"counts":{"00":512,"11":512}}`,
		`{"big":1e+21,"tiny":1e-7}`,
		`{}`,
		`{"empty_list":[],"empty_obj":{}}`,
	}

	for _, input := range inputs {
		v, err := UnmarshalValue([]byte(input))
		if err != nil {
			t.Fatalf("UnmarshalValue(%s) failed: %v", input, err)
		}
		got, err := MarshalValue(v)
		if err != nil {
			t.Fatalf("MarshalValue(%s) failed: %v", input, err)
		}
		if string(got) != input {
			t.Errorf("round trip = %s, want %s", got, input)
		}
	}
}

func TestUnmarshalValue_Invalid(t *testing.T) {
	inputs := []string{"", "nul", "{broken", "'single'"}
	for _, input := range inputs {
		if _, err := UnmarshalValue([]byte(input)); err == nil {
			t.Errorf("UnmarshalValue(%q) succeeded, want error", input)
		}
	}
}

func TestAppendFloat_MatchesEncodingJSON(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.998, "0.998"},
		{100, "100"},
		{0.5, "0.5"},
		{1e21, "1e+21"},
		{1e-7, "1e-7"},
		{-3.25, "-3.25"},
		{0, "0"},
	}

	for _, tt := range tests {
		got, err := appendFloat(nil, tt.in)
		if err != nil {
			t.Fatalf("appendFloat(%v) failed: %v", tt.in, err)
		}
		if string(got) != tt.want {
			t.Errorf("appendFloat(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
