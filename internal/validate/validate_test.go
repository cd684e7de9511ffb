package validate

import (
	"strings"
	"testing"

	"github.com/quantumprov/qprov/internal/model"
)

// consistentModel builds a small document whose mirrors and references all
// line up.
func consistentModel() model.Model {
	trace := model.CompilationTrace{
		TraceID:              "tr1",
		CircuitID:            "circ1",
		DeviceID:             "sim1",
		CalibrationID:        "cal1",
		TimestampCompilation: "2026-01-15T09:00:01.000000Z",
	}
	return model.Model{
		ModelVersion:          "1.0",
		TimestampModelCreated: "2026-01-15T09:00:00.000000Z",
		DeviceMetadata:        model.DeviceMetadata{DeviceID: "sim1"},
		CalibrationData:       []model.CalibrationData{{CalibrationID: "cal1", DeviceID: "sim1"}},
		CircuitMetadata:       model.CircuitMetadata{CircuitID: "circ1"},
		CompilationTrace:      model.SingleTrace(trace),
		ExecutionContext: []model.ExecutionContext{{
			ExecutionID:          "exec1",
			TraceID:              "tr1",
			DeviceID:             "sim1",
			CalibrationID:        "cal1",
			TimestampExecution:   "2026-01-15T09:00:02.000000Z",
			TimestampCompilation: "2026-01-15T09:00:01.000000Z",
			NumShots:             1024,
		}},
	}
}

func TestDenormalized_Consistent(t *testing.T) {
	m := consistentModel()
	if !Denormalized(&m) {
		t.Error("Denormalized() = false for a consistent model")
	}
}

func TestDenormalized_MirrorDrift(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Model)
	}{
		{"device_id drift", func(m *model.Model) { m.ExecutionContext[0].DeviceID = "sim2" }},
		{"calibration_id drift", func(m *model.Model) { m.ExecutionContext[0].CalibrationID = "cal2" }},
		{"timestamp drift", func(m *model.Model) {
			m.ExecutionContext[0].TimestampCompilation = "2026-01-15T09:00:01.000001Z"
		}},
		{"dangling trace", func(m *model.Model) { m.ExecutionContext[0].TraceID = "tr_missing" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := consistentModel()
			tt.mutate(&m)
			if Denormalized(&m) {
				t.Error("Denormalized() = true for a drifted model")
			}
		})
	}
}

// Same instant spelled in a different dialect is still drift: comparison is
// byte equality, never semantic.
func TestDenormalized_DialectMismatchIsDrift(t *testing.T) {
	m := consistentModel()
	m.ExecutionContext[0].TimestampCompilation = "2026-01-15T09:00:01.000000+00:00"
	if Denormalized(&m) {
		t.Error("Denormalized() = true for semantically-equal, byte-different timestamps")
	}
}

func TestCheck_CollectsAllViolations(t *testing.T) {
	m := consistentModel()
	m.ExecutionContext[0].DeviceID = "sim2"
	m.ExecutionContext[0].CalibrationID = "cal2"

	result := Check(&m)
	if result.Consistent {
		t.Fatal("Check() reports consistent for a drifted model")
	}
	if len(result.Violations) != 2 {
		t.Errorf("len(Violations) = %d, want 2:\n%v", len(result.Violations), result.Violations)
	}
}

func TestCheck_TraceReferences(t *testing.T) {
	m := consistentModel()
	trace := m.CompilationTrace.Traces()[0]
	trace.CalibrationID = "cal_missing"
	m.CompilationTrace = model.SingleTrace(trace)
	m.ExecutionContext = nil

	result := Check(&m)
	if result.Consistent {
		t.Fatal("Check() missed a dangling trace calibration reference")
	}
	if !strings.Contains(result.Violations[0], "cal_missing") {
		t.Errorf("violation does not name the missing calibration: %q", result.Violations[0])
	}
}

func TestCheck_SessionCounters(t *testing.T) {
	m := consistentModel()
	m.ExperimentSession = &model.ExperimentSession{
		SessionID:     "sess1",
		NumExecutions: 2,
		ExecutionIDs:  []string{"exec1"},
	}

	result := Check(&m)
	if result.Consistent {
		t.Fatal("Check() missed a session counter mismatch")
	}

	m.ExperimentSession.NumExecutions = 1
	result = Check(&m)
	if !result.Consistent {
		t.Errorf("Check() = %v for a consistent session", result.Violations)
	}
}

func TestCheck_SessionDanglingExecutionID(t *testing.T) {
	m := consistentModel()
	m.ExperimentSession = &model.ExperimentSession{
		SessionID:     "sess1",
		NumExecutions: 1,
		ExecutionIDs:  []string{"exec_ghost"},
	}

	result := Check(&m)
	if result.Consistent {
		t.Fatal("Check() missed a dangling session execution ID")
	}
}

func TestCheck_PureAndRepeatable(t *testing.T) {
	m := consistentModel()
	m.ExecutionContext[0].DeviceID = "sim2"

	first := Check(&m)
	second := Check(&m)
	if len(first.Violations) != len(second.Violations) {
		t.Error("repeated Check() calls disagree")
	}
	for i := range first.Violations {
		if first.Violations[i] != second.Violations[i] {
			t.Errorf("violation %d differs across calls", i)
		}
	}
}
