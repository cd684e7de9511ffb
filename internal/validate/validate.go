// Package validate checks the consistency of an assembled metadata model:
// the denormalized mirror fields on execution contexts against their
// compilation traces, and the referential integrity of the IDs that link
// independently-created records.
//
// All functions here are pure: no side effects, callable repeatedly, the
// result a function of model state alone.
package validate

import (
	"fmt"

	"github.com/quantumprov/qprov/internal/model"
)

// Result contains consistency analysis of a model.
//
// Violations lists every inconsistency found, in deterministic order.
// Empty when Consistent is true.
type Result struct {
	// Consistent indicates the model passed all mirror and referential
	// checks.
	Consistent bool

	// Violations lists human-readable descriptions of each failure.
	Violations []string
}

// Denormalized reports whether every execution context's mirror fields
// (device_id, calibration_id, timestamp_compilation) exactly equal the
// corresponding fields on its referenced compilation trace.
//
// A dangling trace_id is a hard inconsistency: the function returns false
// immediately. A single mismatch anywhere invalidates the whole model.
// Timestamps compare as strings, byte for byte; a semantically equal stamp
// written in a different dialect still counts as drift.
func Denormalized(m *model.Model) bool {
	for _, ec := range m.ExecutionContext {
		trace, ok := m.CompilationTrace.Find(ec.TraceID)
		if !ok {
			return false
		}
		if ec.DeviceID != trace.DeviceID {
			return false
		}
		if ec.CalibrationID != trace.CalibrationID {
			return false
		}
		if ec.TimestampCompilation != trace.TimestampCompilation {
			return false
		}
	}
	return true
}

// Check performs the full consistency analysis: the mirror checks of
// Denormalized plus referential integrity of trace, calibration, device,
// and session links. Unlike Denormalized it does not stop at the first
// failure; every violation is collected.
func Check(m *model.Model) Result {
	c := &checker{violations: []string{}}

	c.checkTraces(m)
	c.checkExecutions(m)
	c.checkSession(m)

	return Result{
		Consistent: len(c.violations) == 0,
		Violations: c.violations,
	}
}

// checker accumulates violations during traversal.
type checker struct {
	violations []string
}

func (c *checker) addViolation(format string, args ...any) {
	c.violations = append(c.violations, fmt.Sprintf(format, args...))
}

// checkTraces verifies each compilation trace references the model's device
// and a calibration snapshot present in the same model instance.
func (c *checker) checkTraces(m *model.Model) {
	calibrations := make(map[string]bool, len(m.CalibrationData))
	for _, cal := range m.CalibrationData {
		calibrations[cal.CalibrationID] = true
	}

	for _, trace := range m.CompilationTrace.Traces() {
		if trace.DeviceID != m.DeviceMetadata.DeviceID {
			c.addViolation("trace %s: device_id %q does not match model device %q",
				trace.TraceID, trace.DeviceID, m.DeviceMetadata.DeviceID)
		}
		if !calibrations[trace.CalibrationID] {
			c.addViolation("trace %s: calibration_id %q not found in model",
				trace.TraceID, trace.CalibrationID)
		}
		if trace.CircuitID != m.CircuitMetadata.CircuitID {
			c.addViolation("trace %s: circuit_id %q does not match model circuit %q",
				trace.TraceID, trace.CircuitID, m.CircuitMetadata.CircuitID)
		}
	}
}

// checkExecutions verifies each execution resolves its trace and that the
// three mirror fields carry exactly the trace's values.
func (c *checker) checkExecutions(m *model.Model) {
	for _, ec := range m.ExecutionContext {
		trace, ok := m.CompilationTrace.Find(ec.TraceID)
		if !ok {
			c.addViolation("execution %s: dangling trace_id %q", ec.ExecutionID, ec.TraceID)
			continue
		}
		if ec.DeviceID != trace.DeviceID {
			c.addViolation("execution %s: device_id mirror %q != trace %q",
				ec.ExecutionID, ec.DeviceID, trace.DeviceID)
		}
		if ec.CalibrationID != trace.CalibrationID {
			c.addViolation("execution %s: calibration_id mirror %q != trace %q",
				ec.ExecutionID, ec.CalibrationID, trace.CalibrationID)
		}
		if ec.TimestampCompilation != trace.TimestampCompilation {
			c.addViolation("execution %s: timestamp_compilation mirror %q != trace %q",
				ec.ExecutionID, ec.TimestampCompilation, trace.TimestampCompilation)
		}
	}
}

// checkSession verifies session counters and that every session execution
// ID resolves to an execution context in the model.
func (c *checker) checkSession(m *model.Model) {
	s := m.ExperimentSession
	if s == nil {
		return
	}

	if s.NumExecutions != len(s.ExecutionIDs) {
		c.addViolation("session %s: num_executions %d != len(execution_ids) %d",
			s.SessionID, s.NumExecutions, len(s.ExecutionIDs))
	}

	executions := make(map[string]bool, len(m.ExecutionContext))
	for _, ec := range m.ExecutionContext {
		executions[ec.ExecutionID] = true
	}
	for _, id := range s.ExecutionIDs {
		if !executions[id] {
			c.addViolation("session %s: execution_id %q not found in model", s.SessionID, id)
		}
	}
}
