package workflow

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quantumprov/qprov/internal/model"
)

// Plan defines one experiment run: the device to describe, the circuit to
// compile, and the execution schedule. Plans are declarative; the runner
// turns a plan into a complete metadata document.
type Plan struct {
	// Name uniquely identifies this plan.
	Name string `yaml:"name"`

	// Description explains what this experiment measures.
	Description string `yaml:"description"`

	Device    DevicePlan    `yaml:"device"`
	Circuit   CircuitPlan   `yaml:"circuit"`
	Execution ExecutionPlan `yaml:"execution"`
}

// DevicePlan selects and describes the backend.
type DevicePlan struct {
	// BackendName is the provider's backend identifier (e.g. "aer_simulator").
	BackendName string `yaml:"backend_name"`

	// Provider names the backend's operator (e.g. "local", "ibm").
	Provider string `yaml:"provider"`

	// Technology is one of the device technology tags; defaults to
	// "simulator" when empty.
	Technology string `yaml:"technology,omitempty"`

	// NumQubits is the device width.
	NumQubits int `yaml:"num_qubits"`

	// CalibrationValidHours bounds each calibration snapshot's validity
	// window. Zero means the source's default.
	CalibrationValidHours float64 `yaml:"calibration_valid_hours,omitempty"`
}

// CircuitPlan describes the abstract circuit before compilation.
type CircuitPlan struct {
	Name          string   `yaml:"name"`
	AlgorithmType string   `yaml:"algorithm_type"`
	NumQubits     int      `yaml:"num_qubits"`
	CircuitDepth  int      `yaml:"circuit_depth"`
	NumGates      int      `yaml:"num_gates"`
	Description   string   `yaml:"description,omitempty"`
	Author        string   `yaml:"author,omitempty"`
	Tags          []string `yaml:"tags,omitempty"`

	// QASM is the circuit source, if available.
	QASM string `yaml:"qasm,omitempty"`
}

// ExecutionPlan describes the execution schedule. A single iteration
// produces a plain run (one trace, no session); more than one produces an
// experiment session.
type ExecutionPlan struct {
	// Iterations is the number of executions to run.
	Iterations int `yaml:"iterations"`

	// Shots is the shot count per execution.
	Shots int `yaml:"shots"`

	// CalibrationPolicy is one of "static", "periodic", "jit".
	// Defaults to "static" when empty.
	CalibrationPolicy string `yaml:"calibration_policy,omitempty"`

	// RefreshEvery is the snapshot refresh interval in iterations for the
	// periodic policy. Ignored by other policies.
	RefreshEvery int `yaml:"refresh_every,omitempty"`

	// Optimizer names the classical optimizer driving the loop, for
	// variational workloads.
	Optimizer string `yaml:"optimizer,omitempty"`

	// IterationDelaySeconds is the simulated wall-clock gap between
	// iterations. Lets a plan exercise calibration expiry deterministically.
	IterationDelaySeconds float64 `yaml:"iteration_delay_seconds,omitempty"`
}

// LoadPlan reads and parses a plan YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return ParsePlan(data)
}

// ParsePlan parses plan YAML with strict field validation.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&plan); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validatePlan(&plan); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	return &plan, nil
}

// validatePlan checks that required fields are present and valid.
func validatePlan(p *Plan) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}

	if p.Device.BackendName == "" {
		return fmt.Errorf("device.backend_name is required")
	}
	if p.Device.NumQubits <= 0 {
		return fmt.Errorf("device.num_qubits must be > 0, got %d", p.Device.NumQubits)
	}
	if p.Device.Technology != "" && !model.ValidTechnologies[p.Device.Technology] {
		return fmt.Errorf("device.technology: unknown tag %q", p.Device.Technology)
	}

	if p.Circuit.Name == "" {
		return fmt.Errorf("circuit.name is required")
	}
	if p.Circuit.NumQubits <= 0 {
		return fmt.Errorf("circuit.num_qubits must be > 0, got %d", p.Circuit.NumQubits)
	}
	if p.Circuit.NumQubits > p.Device.NumQubits {
		return fmt.Errorf("circuit.num_qubits %d exceeds device.num_qubits %d",
			p.Circuit.NumQubits, p.Device.NumQubits)
	}

	if p.Execution.Iterations <= 0 {
		return fmt.Errorf("execution.iterations must be > 0, got %d", p.Execution.Iterations)
	}
	if p.Execution.Shots <= 0 {
		return fmt.Errorf("execution.shots must be > 0, got %d", p.Execution.Shots)
	}
	if policy := p.Execution.CalibrationPolicy; policy != "" && !model.ValidCalibrationPolicies[policy] {
		return fmt.Errorf("execution.calibration_policy: unknown policy %q", policy)
	}
	if p.Execution.CalibrationPolicy == model.PolicyPeriodic && p.Execution.RefreshEvery <= 0 {
		return fmt.Errorf("execution.refresh_every must be > 0 for the periodic policy")
	}
	if p.Execution.IterationDelaySeconds < 0 {
		return fmt.Errorf("execution.iteration_delay_seconds must be >= 0")
	}

	return nil
}
