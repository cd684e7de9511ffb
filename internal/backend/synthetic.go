package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quantumprov/qprov/internal/model"
	"github.com/quantumprov/qprov/internal/timestamp"
)

// SyntheticDevice is a DeviceSource producing deterministic placeholder
// telemetry. Per-qubit coherence times, readout errors, and gate
// fidelities are derived from the qubit index with simple formulas, so two
// snapshots of the same device differ only in timestamps and IDs.
type SyntheticDevice struct {
	BackendName string
	Provider    string
	Technology  string
	NumQubits   int

	// ValidFor bounds each calibration snapshot's validity window.
	ValidFor time.Duration
}

// Describe returns the synthetic device record.
func (d *SyntheticDevice) Describe(ctx context.Context, now time.Time) (model.DeviceMetadata, error) {
	tech := d.Technology
	if tech == "" {
		tech = model.TechnologySimulator
	}
	return model.NewDeviceMetadata(model.DeviceMetadata{
		DeviceID:          d.BackendName,
		Provider:          d.Provider,
		Technology:        tech,
		BackendName:       d.BackendName,
		NumQubits:         d.NumQubits,
		Version:           "1.0",
		TimestampMetadata: timestamp.Format(now),
		Connectivity: model.Object{
			"topology": model.String("linear"),
		},
		// Simulators report no aggregate noise; leave it empty.
		NoiseCharacteristics: model.Object{},
		OperationalParameters: model.Object{
			"max_shots": model.Int(100000),
		},
	})
}

// Snapshot captures a synthetic calibration record valid for ValidFor
// starting at now.
func (d *SyntheticDevice) Snapshot(ctx context.Context, deviceID string, now time.Time) (model.CalibrationData, error) {
	validFor := d.ValidFor
	if validFor <= 0 {
		validFor = 4 * time.Hour
	}

	qubits := make(map[int]model.Object, d.NumQubits)
	for q := 0; q < d.NumQubits; q++ {
		qubits[q] = model.Object{
			"t1_us":         model.Float(100.0 + 5.0*float64(q)),
			"t2_us":         model.Float(80.0 + 3.0*float64(q)),
			"readout_error": model.Float(0.01 + 0.002*float64(q)),
			"frequency_ghz": model.Float(5.0 + 0.05*float64(q)),
		}
	}

	single := model.Object{}
	two := model.Object{}
	for q := 0; q < d.NumQubits; q++ {
		single[fmt.Sprintf("q%d", q)] = model.Float(0.999 - 0.0005*float64(q))
		if q+1 < d.NumQubits {
			two[fmt.Sprintf("q%d_q%d", q, q+1)] = model.Float(0.99 - 0.001*float64(q))
		}
	}

	return model.NewCalibrationData(model.CalibrationData{
		CalibrationID:      model.NewID(model.CalibrationPrefix),
		DeviceID:           deviceID,
		TimestampCaptured:  timestamp.Format(now),
		ValidUntil:         timestamp.Format(now.Add(validFor)),
		CalibrationMethod:  "synthetic",
		CalibrationVersion: "1.0",
		QubitProperties:    qubits,
		GateFidelities: model.GateFidelities{
			SingleQubit: single,
			TwoQubit:    two,
		},
	})
}

// SyntheticCompiler is a Compiler producing plausible pass traces. The
// compiled circuit grows by a fixed expansion factor, the way basis-gate
// decomposition inflates gate counts on real transpilers.
type SyntheticCompiler struct{}

// Name implements Compiler.
func (SyntheticCompiler) Name() string { return "synthetic-transpiler" }

// Version implements Compiler.
func (SyntheticCompiler) Version() string { return "0.3.0" }

// Compile implements Compiler.
func (SyntheticCompiler) Compile(ctx context.Context, circuit model.CircuitMetadata, cal model.CalibrationData) (CompileResult, error) {
	compiledGates := circuit.NumGates * 2
	compiledDepth := circuit.CircuitDepth + 3

	passes := []model.CompilationPass{
		{
			PassName:   "unroll",
			PassOrder:  1,
			Status:     "completed",
			DurationMS: 4.0,
			Parameters: model.Object{"basis_gates": model.Array{model.String("rz"), model.String("sx"), model.String("cx")}},
			CircuitState: model.CircuitState{
				NumGates:       compiledGates + 4,
				CircuitDepth:   compiledDepth + 2,
				EstimatedError: 0.08,
			},
		},
		{
			PassName:   "optimize_1q",
			PassOrder:  2,
			Status:     "completed",
			DurationMS: 2.5,
			Parameters: model.Object{},
			CircuitState: model.CircuitState{
				NumGates:       compiledGates,
				CircuitDepth:   compiledDepth,
				EstimatedError: 0.05,
			},
		},
	}

	qasm := compiledQASM(circuit)
	return CompileResult{
		NumGates:     compiledGates,
		CircuitDepth: compiledDepth,
		DurationMS:   6.5,
		Passes:       passes,
		OptimizationMetrics: model.Object{
			"gate_count_before": model.Int(int64(circuit.NumGates)),
			"gate_count_after":  model.Int(int64(compiledGates)),
			"depth_before":      model.Int(int64(circuit.CircuitDepth)),
			"depth_after":       model.Int(int64(compiledDepth)),
		},
		DecisionsMade: model.Object{
			"layout_method":  model.String("trivial"),
			"routing_method": model.String("none"),
		},
		FinalCircuitQASM: &qasm,
	}, nil
}

func compiledQASM(circuit model.CircuitMetadata) string {
	if circuit.CircuitQASM != nil {
		return *circuit.CircuitQASM
	}
	return fmt.Sprintf("OPENQASM 2.0;\nqreg q[%d];\ncreg c[%d];\n", circuit.NumQubits, circuit.NumQubits)
}

// SyntheticBackend is an ExecutionBackend returning a fixed-split counts
// histogram: shots divide between the all-zeros and all-ones bitstrings,
// the distribution an ideal GHZ-like circuit would produce.
type SyntheticBackend struct {
	// Qubits sets the bitstring width of the histogram.
	Qubits int

	// Mode tags the execution, e.g. "qasm_simulator".
	Mode string

	jobSeq int
}

// Execute implements ExecutionBackend.
func (b *SyntheticBackend) Execute(ctx context.Context, qasm string, shots int) (ExecuteResult, error) {
	if shots <= 0 {
		return ExecuteResult{}, fmt.Errorf("execute: shots must be > 0, got %d", shots)
	}

	width := b.Qubits
	if width <= 0 {
		width = 2
	}
	zeros := strings.Repeat("0", width)
	ones := strings.Repeat("1", width)

	half := int64(shots / 2)
	counts := map[string]int64{
		zeros: int64(shots) - half,
		ones:  half,
	}

	b.jobSeq++
	mode := b.Mode
	if mode == "" {
		mode = "qasm_simulator"
	}
	return ExecuteResult{
		JobID:  fmt.Sprintf("job_%06d", b.jobSeq),
		Counts: counts,
		Mode:   mode,
		Environment: model.Object{
			"host":           model.String("local"),
			"temperature_mk": model.Float(14.2),
		},
	}, nil
}
