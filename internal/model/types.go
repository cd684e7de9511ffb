package model

// Technology tags for DeviceMetadata. Simulators and NMR devices expose
// far less telemetry than superconducting QPUs; "unknown" covers providers
// that report nothing useful.
const (
	TechnologySuperconducting = "superconducting"
	TechnologyIonTrap         = "ion_trap"
	TechnologyNMR             = "nmr"
	TechnologySimulator       = "simulator"
	TechnologyUnknown         = "unknown"
)

// ValidTechnologies defines allowed device technology tags.
var ValidTechnologies = map[string]bool{
	TechnologySuperconducting: true,
	TechnologyIonTrap:         true,
	TechnologyNMR:             true,
	TechnologySimulator:       true,
	TechnologyUnknown:         true,
}

// Calibration refresh policies for ExperimentSession.
const (
	PolicyStatic   = "static"   // one snapshot for the whole session
	PolicyPeriodic = "periodic" // refresh every N iterations
	PolicyJIT      = "jit"      // refresh (and recompile) when expired
)

// ValidCalibrationPolicies defines allowed session calibration policies.
var ValidCalibrationPolicies = map[string]bool{
	PolicyStatic:   true,
	PolicyPeriodic: true,
	PolicyJIT:      true,
}

// Provenance relation types: the lean subset of W3C PROV this system records.
const (
	RelationWasDerivedFrom = "wasDerivedFrom"
	RelationUsed           = "used"
	RelationWasGeneratedBy = "wasGeneratedBy"
	RelationWasInformedBy  = "wasInformedBy"
)

// ValidRelationTypes defines the four admitted provenance relation kinds.
var ValidRelationTypes = map[string]bool{
	RelationWasDerivedFrom: true,
	RelationUsed:           true,
	RelationWasGeneratedBy: true,
	RelationWasInformedBy:  true,
}

// DeviceMetadata identifies a physical or simulated backend.
// Created once per backend lookup; never mutated.
type DeviceMetadata struct {
	DeviceID              string `json:"device_id"`
	Provider              string `json:"provider"`
	Technology            string `json:"technology"`
	BackendName           string `json:"backend_name"`
	NumQubits             int    `json:"num_qubits"`
	Version               string `json:"version"`
	TimestampMetadata     string `json:"timestamp_metadata"`
	Connectivity          Object `json:"connectivity"`
	NoiseCharacteristics  Object `json:"noise_characteristics"`
	OperationalParameters Object `json:"operational_parameters"`
}

// CircuitMetadata describes one circuit definition.
type CircuitMetadata struct {
	CircuitID           string   `json:"circuit_id"`
	CircuitName         string   `json:"circuit_name"`
	AlgorithmType       string   `json:"algorithm_type"`
	NumQubits           int      `json:"num_qubits"`
	CircuitDepth        int      `json:"circuit_depth"`
	NumGates            int      `json:"num_gates"`
	TimestampCreated    string   `json:"timestamp_created"`
	Description         string   `json:"description"`
	Author              string   `json:"author"`
	Tags                []string `json:"tags"`
	AlgorithmParameters Object   `json:"algorithm_parameters"`
	CircuitQASM         *string  `json:"circuit_qasm"`
}

// GateFidelities splits gate fidelity measurements by arity. Keys are gate
// or qubit-pair labels; values are provider-specific.
type GateFidelities struct {
	SingleQubit Object `json:"single_qubit"`
	TwoQubit    Object `json:"two_qubit"`
}

// CalibrationData is a timestamped snapshot of device noise and error
// parameters, valid for a bounded window.
//
// Staleness is a computed predicate (IsValid), never a state change: once
// now passes ValidUntil the record is logically stale but the record itself
// is immutable. A recalibration produces a new record with a new ID.
type CalibrationData struct {
	CalibrationID      string         `json:"calibration_id"`
	DeviceID           string         `json:"device_id"`
	TimestampCaptured  string         `json:"timestamp_captured"`
	ValidUntil         string         `json:"valid_until"`
	CalibrationMethod  string         `json:"calibration_method"`
	CalibrationVersion string         `json:"calibration_version"`
	QubitProperties    map[int]Object `json:"qubit_properties"`
	GateFidelities     GateFidelities `json:"gate_fidelities"`
	CrosstalkMatrix    Object         `json:"crosstalk_matrix"`
	AdditionalMetrics  Object         `json:"additional_metrics"`
}

// CircuitState snapshots circuit-level metrics after a compilation pass.
type CircuitState struct {
	NumGates       int     `json:"num_gates"`
	CircuitDepth   int     `json:"circuit_depth"`
	EstimatedError float64 `json:"estimated_error"`
}

// CompilationPass records one named pass of a compilation run.
type CompilationPass struct {
	PassName     string       `json:"pass_name"`
	PassOrder    int          `json:"pass_order"`
	Status       string       `json:"status"`
	DurationMS   float64      `json:"duration_ms"`
	Parameters   Object       `json:"parameters"`
	CircuitState CircuitState `json:"circuit_state"`
}

// CompilationTrace records one compilation run, pinned to the calibration
// snapshot that supplied its noise model. Immutable once created.
type CompilationTrace struct {
	TraceID               string            `json:"trace_id"`
	CircuitID             string            `json:"circuit_id"`
	DeviceID              string            `json:"device_id"`
	CalibrationID         string            `json:"calibration_id"`
	TimestampCompilation  string            `json:"timestamp_compilation"`
	CompilerName          string            `json:"compiler_name"`
	CompilerVersion       string            `json:"compiler_version"`
	CompilationDurationMS float64           `json:"compilation_duration_ms"`
	CompilationPasses     []CompilationPass `json:"compilation_passes"`
	OptimizationMetrics   Object            `json:"optimization_metrics"`
	DecisionsMade         Object            `json:"decisions_made"`
	FinalCircuitQASM      *string           `json:"final_circuit_qasm"`
	CompilationErrors     []string          `json:"compilation_errors"`
}

// FreshnessValidation reports whether the calibration used for an execution
// had already expired by execution time. calibration_expired is indexed by
// downstream dashboards; the field names are fixed.
type FreshnessValidation struct {
	CalibrationAgeSeconds float64 `json:"calibration_age_seconds"`
	CalibrationExpired    bool    `json:"calibration_expired"`
	ValidationTimestamp   string  `json:"validation_timestamp,omitempty"`
}

// Results holds the measurement payload returned by an execution backend:
// a bitstring counts histogram summing to the shot count, the backend's job
// identifier, and any derived metrics.
type Results struct {
	Counts         map[string]int64 `json:"counts"`
	JobID          string           `json:"job_id,omitempty"`
	DerivedMetrics Object           `json:"derived_metrics,omitempty"`
}

// ExecutionContext records one circuit execution.
//
// DeviceID, CalibrationID, and TimestampCompilation are MIRRORS of the
// fields on the CompilationTrace named by TraceID: denormalized copies for
// query convenience without a join. They are supplied explicitly at
// construction, never auto-copied, and validate.Check is the enforcement
// mechanism against drift.
type ExecutionContext struct {
	ExecutionID          string              `json:"execution_id"`
	TraceID              string              `json:"trace_id"`
	DeviceID             string              `json:"device_id"`
	CalibrationID        string              `json:"calibration_id"`
	TimestampExecution   string              `json:"timestamp_execution"`
	TimestampCompilation string              `json:"timestamp_compilation"`
	NumShots             int                 `json:"num_shots"`
	ExecutionMode        string              `json:"execution_mode"`
	ComputedFromTrace    bool                `json:"computed_from_trace"`
	QueueInformation     Object              `json:"queue_information"`
	EnvironmentalContext Object              `json:"environmental_context"`
	FreshnessValidation  FreshnessValidation `json:"freshness_validation"`
	ExecutionParameters  Object              `json:"execution_parameters"`
	Results              *Results            `json:"results"`
}

// Relation is one directed, typed provenance edge between entity IDs.
type Relation struct {
	RelationType string `json:"relation_type"`
	SourceID     string `json:"source_id"`
	TargetID     string `json:"target_id"`
	Timestamp    string `json:"timestamp"`
	Role         string `json:"role,omitempty"`
}

// ProvenanceRecordLean accumulates typed derivation/usage relations between
// entity IDs: a lean two-summary subset of full PROV. Relations form a
// directed multigraph; duplicates and self-loops are permitted because this
// is a trace log, not a deduplicated graph.
type ProvenanceRecordLean struct {
	ProvenanceID      string     `json:"provenance_id"`
	TimestampRecorded string     `json:"timestamp_recorded"`
	ProvMode          string     `json:"prov_mode"`
	Relations         []Relation `json:"relations"`
	WorkflowGraph     Object     `json:"workflow_graph"`
	QualityAssessment Object     `json:"quality_assessment"`
}

// Well-known workflow_graph keys written by the provenance builder.
const (
	WorkflowStartKey        = "workflow_start"
	WorkflowEndKey          = "workflow_end"
	TotalDurationSecondsKey = "total_duration_seconds"
	NumIterationsKey        = "num_iterations"
	JITRecompilationsKey    = "jit_recompilations"
)

// ExperimentSession aggregates repeated executions of one
// algorithm/circuit/device combination.
//
// Invariant: NumExecutions == len(ExecutionIDs), and TotalShotsUsed is the
// sum of shots over all added executions. The session aggregator enforces
// both; do not mutate these fields directly.
type ExperimentSession struct {
	SessionID         string   `json:"session_id"`
	AlgorithmType     string   `json:"algorithm_type"`
	TimestampStarted  string   `json:"timestamp_started"`
	CircuitID         string   `json:"circuit_id"`
	DeviceID          string   `json:"device_id"`
	Optimizer         string   `json:"optimizer"`
	MaxIterations     int      `json:"max_iterations"`
	ShotsDefault      int      `json:"shots_default"`
	CalibrationPolicy string   `json:"calibration_policy"`
	NumExecutions     int      `json:"num_executions"`
	TotalShotsUsed    int      `json:"total_shots_used"`
	ExecutionIDs      []string `json:"execution_ids"`
	SessionMetrics    Object   `json:"session_metrics"`
	EnvironmentalLog  []Object `json:"environmental_log"`
	TimestampEnded    *string  `json:"timestamp_ended"`
}

// Model is the top-level container binding one experiment run:
// one device, chronological calibration snapshots, one circuit, one or more
// compilation traces, executions (always a list), one provenance record,
// and an optional session.
type Model struct {
	ModelVersion          string               `json:"model_version"`
	TimestampModelCreated string               `json:"timestamp_model_created"`
	DeviceMetadata        DeviceMetadata       `json:"device_metadata"`
	CalibrationData       []CalibrationData    `json:"calibration_data"`
	CircuitMetadata       CircuitMetadata      `json:"circuit_metadata"`
	CompilationTrace      TraceLog             `json:"compilation_trace"`
	ExecutionContext      []ExecutionContext   `json:"execution_context"`
	ProvenanceRecord      ProvenanceRecordLean `json:"provenance_record"`
	ExperimentSession     *ExperimentSession   `json:"experiment_session,omitempty"`
}
