package workflow

import (
	"os"
	"path/filepath"
	"testing"
)

const validPlanYAML = `
name: bell-baseline
description: Bell state baseline run
device:
  backend_name: aer_simulator
  provider: local
  num_qubits: 2
circuit:
  name: bell
  algorithm_type: bell_state
  num_qubits: 2
  circuit_depth: 2
  num_gates: 2
execution:
  iterations: 1
  shots: 1024
`

func TestParsePlan_Valid(t *testing.T) {
	plan, err := ParsePlan([]byte(validPlanYAML))
	if err != nil {
		t.Fatalf("ParsePlan() failed: %v", err)
	}
	if plan.Name != "bell-baseline" {
		t.Errorf("Name = %q", plan.Name)
	}
	if plan.Execution.Shots != 1024 {
		t.Errorf("Shots = %d", plan.Execution.Shots)
	}
}

func TestParsePlan_RejectsUnknownFields(t *testing.T) {
	// Typos must fail loudly, not silently drop configuration.
	bad := validPlanYAML + "\nexecutoin_mode: fast\n"
	if _, err := ParsePlan([]byte(bad)); err == nil {
		t.Error("unknown top-level field accepted")
	}
}

func TestParsePlan_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing name", `
description: x
device: {backend_name: a, num_qubits: 2}
circuit: {name: c, num_qubits: 2}
execution: {iterations: 1, shots: 100}
`},
		{"zero device qubits", `
name: p
device: {backend_name: a, num_qubits: 0}
circuit: {name: c, num_qubits: 2}
execution: {iterations: 1, shots: 100}
`},
		{"circuit wider than device", `
name: p
device: {backend_name: a, num_qubits: 2}
circuit: {name: c, num_qubits: 5}
execution: {iterations: 1, shots: 100}
`},
		{"unknown policy", `
name: p
device: {backend_name: a, num_qubits: 2}
circuit: {name: c, num_qubits: 2}
execution: {iterations: 1, shots: 100, calibration_policy: hourly}
`},
		{"periodic without refresh interval", `
name: p
device: {backend_name: a, num_qubits: 2}
circuit: {name: c, num_qubits: 2}
execution: {iterations: 4, shots: 100, calibration_policy: periodic}
`},
		{"zero shots", `
name: p
device: {backend_name: a, num_qubits: 2}
circuit: {name: c, num_qubits: 2}
execution: {iterations: 1, shots: 0}
`},
		{"unknown technology", `
name: p
device: {backend_name: a, num_qubits: 2, technology: analog}
circuit: {name: c, num_qubits: 2}
execution: {iterations: 1, shots: 100}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePlan([]byte(tt.yaml)); err == nil {
				t.Error("invalid plan accepted")
			}
		})
	}
}

func TestLoadPlan_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(validPlanYAML), 0o644); err != nil {
		t.Fatalf("write plan: %v", err)
	}

	plan, err := LoadPlan(path)
	if err != nil {
		t.Fatalf("LoadPlan() failed: %v", err)
	}
	if plan.Device.BackendName != "aer_simulator" {
		t.Errorf("BackendName = %q", plan.Device.BackendName)
	}
}

func TestLoadPlan_MissingFile(t *testing.T) {
	if _, err := LoadPlan(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
