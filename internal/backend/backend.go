// Package backend defines the collaborator contracts the metadata core
// consumes: a device/calibration source, a compiler, and an execution
// backend. The core does not care whether the data behind these interfaces
// comes from real hardware APIs, a simulator, or fabricated placeholders,
// as long as it conforms to the record shapes.
//
// Synthetic implementations live here too. They produce deterministic
// placeholder telemetry in the shape real providers report, which is what
// the workflow runner and tests use.
package backend

import (
	"context"
	"time"

	"github.com/quantumprov/qprov/internal/model"
)

// DeviceSource supplies backend identity and calibration telemetry.
//
// Partial data is expected: simulators and NMR devices expose far less
// telemetry than superconducting QPUs, so empty noise characteristics and
// sparse qubit properties are valid responses, not errors.
type DeviceSource interface {
	// Describe returns the device record for this backend, stamped at now.
	Describe(ctx context.Context, now time.Time) (model.DeviceMetadata, error)

	// Snapshot captures a fresh calibration record for the device,
	// valid for a source-defined window starting at now.
	Snapshot(ctx context.Context, deviceID string, now time.Time) (model.CalibrationData, error)
}

// CompileResult is what a compiler must report: compiled gate count and
// depth at minimum. The pass list is optional (compiler transparency
// varies); an empty list is fine.
type CompileResult struct {
	NumGates            int
	CircuitDepth        int
	DurationMS          float64
	Passes              []model.CompilationPass
	OptimizationMetrics model.Object
	DecisionsMade       model.Object
	FinalCircuitQASM    *string
	Errors              []string
}

// Compiler translates an abstract circuit into a device-executable form
// against one calibration snapshot's noise model.
type Compiler interface {
	Name() string
	Version() string
	Compile(ctx context.Context, circuit model.CircuitMetadata, cal model.CalibrationData) (CompileResult, error)
}

// ExecuteResult is what an execution backend must report: a counts
// histogram summing to the shot count and a backend-assigned job ID.
// Queue telemetry and the environment snapshot are optional; simulators
// report zero queue and whatever host facts they have.
type ExecuteResult struct {
	JobID  string
	Counts map[string]int64
	Mode   string

	QueuePosition int
	QueueSeconds  float64
	Environment   model.Object
}

// ExecutionBackend runs a compiled circuit for a number of shots.
type ExecutionBackend interface {
	Execute(ctx context.Context, qasm string, shots int) (ExecuteResult, error)
}
