// Package session aggregates repeated executions of one
// algorithm/circuit/device combination into an experiment session with
// running totals.
package session

import (
	"fmt"
	"sync"

	"github.com/quantumprov/qprov/internal/clock"
	"github.com/quantumprov/qprov/internal/model"
	"github.com/quantumprov/qprov/internal/timestamp"
)

// Config describes a new session. SessionID may be empty to get a
// generated one.
type Config struct {
	SessionID         string
	AlgorithmType     string
	CircuitID         string
	DeviceID          string
	Optimizer         string
	MaxIterations     int
	ShotsDefault      int
	CalibrationPolicy string
}

// Aggregator owns one ExperimentSession and maintains its counters.
//
// AddExecution is the only concurrency-sensitive operation in the core: if
// the calling system runs executions in parallel, the counters and the
// execution-id list must move together. The aggregator serializes all
// mutation through one mutex; callers never lock.
type Aggregator struct {
	mu   sync.Mutex
	s    model.ExperimentSession
	seen map[string]bool
}

// New validates the config and starts a session at clk's current time.
func New(cfg Config, clk clock.Clock) (*Aggregator, error) {
	if cfg.CircuitID == "" {
		return nil, fmt.Errorf("new session: circuit ID is required")
	}
	if cfg.DeviceID == "" {
		return nil, fmt.Errorf("new session: device ID is required")
	}
	if cfg.ShotsDefault <= 0 {
		return nil, fmt.Errorf("new session: shots_default must be > 0, got %d", cfg.ShotsDefault)
	}
	if cfg.MaxIterations <= 0 {
		return nil, fmt.Errorf("new session: max_iterations must be > 0, got %d", cfg.MaxIterations)
	}
	if !model.ValidCalibrationPolicies[cfg.CalibrationPolicy] {
		return nil, fmt.Errorf("new session: unknown calibration policy %q", cfg.CalibrationPolicy)
	}

	id := cfg.SessionID
	if id == "" {
		id = model.NewID(model.SessionPrefix)
	}

	return &Aggregator{
		s: model.ExperimentSession{
			SessionID:         id,
			AlgorithmType:     cfg.AlgorithmType,
			TimestampStarted:  timestamp.Format(clk.Now()),
			CircuitID:         cfg.CircuitID,
			DeviceID:          cfg.DeviceID,
			Optimizer:         cfg.Optimizer,
			MaxIterations:     cfg.MaxIterations,
			ShotsDefault:      cfg.ShotsDefault,
			CalibrationPolicy: cfg.CalibrationPolicy,
			ExecutionIDs:      []string{},
			SessionMetrics:    model.Object{},
			EnvironmentalLog:  []model.Object{},
		},
		seen: map[string]bool{},
	}, nil
}

// AddExecution records one execution. A repeated execution_id is a no-op:
// the ID list, num_executions, and total_shots_used stay untouched.
// Idempotence here is a required property, not an optimization. Returns
// true when the execution was newly added.
//
// Calls after Finalize are permitted and still counted; the session log is
// intentionally permissive.
func (a *Aggregator) AddExecution(executionID string, shots int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.seen[executionID] {
		return false
	}
	a.seen[executionID] = true
	a.s.ExecutionIDs = append(a.s.ExecutionIDs, executionID)
	a.s.NumExecutions++
	a.s.TotalShotsUsed += shots
	return true
}

// LogEnvironment appends a timestamped environment snapshot.
func (a *Aggregator) LogEnvironment(snapshot model.Object) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.s.EnvironmentalLog = append(a.s.EnvironmentalLog, snapshot)
}

// SetMetric records a caller-defined session metric (convergence tracking,
// recompilation counts, and the like).
func (a *Aggregator) SetMetric(key string, v model.Value) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.s.SessionMetrics[key] = v
}

// Finalize stamps the session end time. Idempotent: a second call keeps
// the first end timestamp.
func (a *Aggregator) Finalize(clk clock.Clock) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.s.TimestampEnded != nil {
		return
	}
	ended := timestamp.Format(clk.Now())
	a.s.TimestampEnded = &ended
}

// Session returns a copy of the current session state, safe to hold across
// further aggregator mutation.
func (a *Aggregator) Session() model.ExperimentSession {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.s
	s.ExecutionIDs = append([]string(nil), a.s.ExecutionIDs...)
	if len(s.ExecutionIDs) == 0 {
		s.ExecutionIDs = []string{}
	}
	s.EnvironmentalLog = append([]model.Object(nil), a.s.EnvironmentalLog...)
	if len(s.EnvironmentalLog) == 0 {
		s.EnvironmentalLog = []model.Object{}
	}
	metrics := make(model.Object, len(a.s.SessionMetrics))
	for k, v := range a.s.SessionMetrics {
		metrics[k] = v
	}
	s.SessionMetrics = metrics
	if a.s.TimestampEnded != nil {
		ended := *a.s.TimestampEnded
		s.TimestampEnded = &ended
	}
	return s
}
