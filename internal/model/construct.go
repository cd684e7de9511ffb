package model

import (
	"fmt"

	"github.com/quantumprov/qprov/internal/timestamp"
)

// Schema violations are rejected here, at the point of entity creation,
// never downstream: empty required IDs, numeric range violations (qubits or
// shots <= 0), unknown enum tags, and the calibration window invariant.
//
// Each constructor also normalizes nil maps and slices to their empty
// forms so the serialized document always carries {} and [] instead of
// null for accumulator fields.

// FieldError reports a construction-time schema violation.
type FieldError struct {
	Entity string // record kind, e.g. "CalibrationData"
	Field  string // offending field, snake_case as serialized
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Entity, e.Field, e.Reason)
}

func fieldErr(entity, field, format string, args ...any) error {
	return &FieldError{Entity: entity, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NewDeviceMetadata validates and normalizes a device record.
func NewDeviceMetadata(d DeviceMetadata) (DeviceMetadata, error) {
	if d.DeviceID == "" {
		return DeviceMetadata{}, fieldErr("DeviceMetadata", "device_id", "required")
	}
	if d.BackendName == "" {
		return DeviceMetadata{}, fieldErr("DeviceMetadata", "backend_name", "required")
	}
	if d.NumQubits <= 0 {
		return DeviceMetadata{}, fieldErr("DeviceMetadata", "num_qubits", "must be > 0, got %d", d.NumQubits)
	}
	if !ValidTechnologies[d.Technology] {
		return DeviceMetadata{}, fieldErr("DeviceMetadata", "technology", "unknown tag %q", d.Technology)
	}
	if _, err := timestamp.Parse(d.TimestampMetadata); err != nil {
		return DeviceMetadata{}, fieldErr("DeviceMetadata", "timestamp_metadata", "%v", err)
	}
	d.Connectivity = ensureObject(d.Connectivity)
	d.NoiseCharacteristics = ensureObject(d.NoiseCharacteristics)
	d.OperationalParameters = ensureObject(d.OperationalParameters)
	return d, nil
}

// NewCircuitMetadata validates and normalizes a circuit record.
func NewCircuitMetadata(c CircuitMetadata) (CircuitMetadata, error) {
	if c.CircuitID == "" {
		return CircuitMetadata{}, fieldErr("CircuitMetadata", "circuit_id", "required")
	}
	if c.CircuitName == "" {
		return CircuitMetadata{}, fieldErr("CircuitMetadata", "circuit_name", "required")
	}
	if c.NumQubits <= 0 {
		return CircuitMetadata{}, fieldErr("CircuitMetadata", "num_qubits", "must be > 0, got %d", c.NumQubits)
	}
	if c.CircuitDepth < 0 {
		return CircuitMetadata{}, fieldErr("CircuitMetadata", "circuit_depth", "must be >= 0, got %d", c.CircuitDepth)
	}
	if c.NumGates < 0 {
		return CircuitMetadata{}, fieldErr("CircuitMetadata", "num_gates", "must be >= 0, got %d", c.NumGates)
	}
	if _, err := timestamp.Parse(c.TimestampCreated); err != nil {
		return CircuitMetadata{}, fieldErr("CircuitMetadata", "timestamp_created", "%v", err)
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	c.AlgorithmParameters = ensureObject(c.AlgorithmParameters)
	return c, nil
}

// NewCalibrationData validates and normalizes a calibration snapshot.
// The validity window invariant (valid_until strictly after
// timestamp_captured) is enforced here; both timestamps must parse.
func NewCalibrationData(c CalibrationData) (CalibrationData, error) {
	if c.CalibrationID == "" {
		return CalibrationData{}, fieldErr("CalibrationData", "calibration_id", "required")
	}
	if c.DeviceID == "" {
		return CalibrationData{}, fieldErr("CalibrationData", "device_id", "required")
	}
	captured, err := timestamp.Parse(c.TimestampCaptured)
	if err != nil {
		return CalibrationData{}, fieldErr("CalibrationData", "timestamp_captured", "%v", err)
	}
	validUntil, err := timestamp.Parse(c.ValidUntil)
	if err != nil {
		return CalibrationData{}, fieldErr("CalibrationData", "valid_until", "%v", err)
	}
	if !validUntil.After(captured) {
		return CalibrationData{}, fieldErr("CalibrationData", "valid_until",
			"must be after timestamp_captured (%s <= %s)", c.ValidUntil, c.TimestampCaptured)
	}
	if c.QubitProperties == nil {
		c.QubitProperties = map[int]Object{}
	}
	c.GateFidelities.SingleQubit = ensureObject(c.GateFidelities.SingleQubit)
	c.GateFidelities.TwoQubit = ensureObject(c.GateFidelities.TwoQubit)
	c.CrosstalkMatrix = ensureObject(c.CrosstalkMatrix)
	c.AdditionalMetrics = ensureObject(c.AdditionalMetrics)
	return c, nil
}

// NewCompilationTrace validates and normalizes a compilation trace.
// An empty pass list is fine: compiler transparency is optional.
func NewCompilationTrace(t CompilationTrace) (CompilationTrace, error) {
	if t.TraceID == "" {
		return CompilationTrace{}, fieldErr("CompilationTrace", "trace_id", "required")
	}
	if t.CircuitID == "" {
		return CompilationTrace{}, fieldErr("CompilationTrace", "circuit_id", "required")
	}
	if t.DeviceID == "" {
		return CompilationTrace{}, fieldErr("CompilationTrace", "device_id", "required")
	}
	if t.CalibrationID == "" {
		return CompilationTrace{}, fieldErr("CompilationTrace", "calibration_id", "required")
	}
	if t.CompilationDurationMS < 0 {
		return CompilationTrace{}, fieldErr("CompilationTrace", "compilation_duration_ms",
			"must be >= 0, got %v", t.CompilationDurationMS)
	}
	if _, err := timestamp.Parse(t.TimestampCompilation); err != nil {
		return CompilationTrace{}, fieldErr("CompilationTrace", "timestamp_compilation", "%v", err)
	}
	if t.CompilationPasses == nil {
		t.CompilationPasses = []CompilationPass{}
	}
	for i := range t.CompilationPasses {
		t.CompilationPasses[i].Parameters = ensureObject(t.CompilationPasses[i].Parameters)
	}
	if t.CompilationErrors == nil {
		t.CompilationErrors = []string{}
	}
	t.OptimizationMetrics = ensureObject(t.OptimizationMetrics)
	t.DecisionsMade = ensureObject(t.DecisionsMade)
	return t, nil
}

// NewExecutionContext validates and normalizes an execution record.
//
// The three mirror fields must be supplied explicitly by the caller; this
// constructor checks only local shape, not consistency with the referenced
// trace. Drift detection is validate.Check's job.
func NewExecutionContext(e ExecutionContext) (ExecutionContext, error) {
	if e.ExecutionID == "" {
		return ExecutionContext{}, fieldErr("ExecutionContext", "execution_id", "required")
	}
	if e.TraceID == "" {
		return ExecutionContext{}, fieldErr("ExecutionContext", "trace_id", "required")
	}
	if e.DeviceID == "" {
		return ExecutionContext{}, fieldErr("ExecutionContext", "device_id", "required")
	}
	if e.CalibrationID == "" {
		return ExecutionContext{}, fieldErr("ExecutionContext", "calibration_id", "required")
	}
	if e.NumShots <= 0 {
		return ExecutionContext{}, fieldErr("ExecutionContext", "num_shots", "must be > 0, got %d", e.NumShots)
	}
	if _, err := timestamp.Parse(e.TimestampExecution); err != nil {
		return ExecutionContext{}, fieldErr("ExecutionContext", "timestamp_execution", "%v", err)
	}
	if e.TimestampCompilation == "" {
		return ExecutionContext{}, fieldErr("ExecutionContext", "timestamp_compilation", "required")
	}
	if e.Results != nil {
		var sum int64
		for _, n := range e.Results.Counts {
			if n < 0 {
				return ExecutionContext{}, fieldErr("ExecutionContext", "results", "negative count %d", n)
			}
			sum += n
		}
		if sum != int64(e.NumShots) {
			return ExecutionContext{}, fieldErr("ExecutionContext", "results",
				"counts sum %d != num_shots %d", sum, e.NumShots)
		}
		if e.Results.Counts == nil {
			e.Results.Counts = map[string]int64{}
		}
	}
	e.QueueInformation = ensureObject(e.QueueInformation)
	e.EnvironmentalContext = ensureObject(e.EnvironmentalContext)
	e.ExecutionParameters = ensureObject(e.ExecutionParameters)
	return e, nil
}

// NewModel validates container-level shape: the lists the document always
// carries are normalized to empty (never null), and execution_context is
// always an array no matter how many entries it holds.
func NewModel(m Model) (Model, error) {
	if m.ModelVersion == "" {
		return Model{}, fieldErr("Model", "model_version", "required")
	}
	if _, err := timestamp.Parse(m.TimestampModelCreated); err != nil {
		return Model{}, fieldErr("Model", "timestamp_model_created", "%v", err)
	}
	if m.CalibrationData == nil {
		m.CalibrationData = []CalibrationData{}
	}
	if m.ExecutionContext == nil {
		m.ExecutionContext = []ExecutionContext{}
	}
	if m.ProvenanceRecord.Relations == nil {
		m.ProvenanceRecord.Relations = []Relation{}
	}
	m.ProvenanceRecord.WorkflowGraph = ensureObject(m.ProvenanceRecord.WorkflowGraph)
	m.ProvenanceRecord.QualityAssessment = ensureObject(m.ProvenanceRecord.QualityAssessment)
	return m, nil
}

// AddExecutionContext appends an execution to the model, skipping an
// execution_id that is already present.
func (m *Model) AddExecutionContext(e ExecutionContext) {
	for _, existing := range m.ExecutionContext {
		if existing.ExecutionID == e.ExecutionID {
			return
		}
	}
	m.ExecutionContext = append(m.ExecutionContext, e)
}

// AddCalibration appends a calibration snapshot. Snapshots are
// chronological; a recalibration is always a new record, never an update.
func (m *Model) AddCalibration(c CalibrationData) {
	m.CalibrationData = append(m.CalibrationData, c)
}

func ensureObject(o Object) Object {
	if o == nil {
		return Object{}
	}
	return o
}
