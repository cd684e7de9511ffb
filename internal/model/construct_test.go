package model

import (
	"errors"
	"testing"
)

func TestNewCalibrationData_WindowInvariant(t *testing.T) {
	base := CalibrationData{
		CalibrationID:     "cal1",
		DeviceID:          "sim1",
		TimestampCaptured: "2026-01-15T09:00:00.000000Z",
	}

	// valid_until before capture
	c := base
	c.ValidUntil = "2026-01-15T08:00:00.000000Z"
	if _, err := NewCalibrationData(c); err == nil {
		t.Error("valid_until before capture accepted, want error")
	}

	// valid_until equal to capture: the window must be non-empty
	c = base
	c.ValidUntil = base.TimestampCaptured
	if _, err := NewCalibrationData(c); err == nil {
		t.Error("valid_until equal to capture accepted, want error")
	}

	c = base
	c.ValidUntil = "2026-01-15T13:00:00.000000Z"
	if _, err := NewCalibrationData(c); err != nil {
		t.Errorf("valid window rejected: %v", err)
	}
}

func TestNewDeviceMetadata_Validation(t *testing.T) {
	valid := DeviceMetadata{
		DeviceID:          "sim1",
		BackendName:       "aer",
		NumQubits:         2,
		Technology:        TechnologySimulator,
		TimestampMetadata: "2026-01-15T09:00:00.000000Z",
	}

	tests := []struct {
		name   string
		mutate func(*DeviceMetadata)
		field  string
	}{
		{"empty device_id", func(d *DeviceMetadata) { d.DeviceID = "" }, "device_id"},
		{"zero qubits", func(d *DeviceMetadata) { d.NumQubits = 0 }, "num_qubits"},
		{"negative qubits", func(d *DeviceMetadata) { d.NumQubits = -1 }, "num_qubits"},
		{"unknown technology", func(d *DeviceMetadata) { d.Technology = "analog" }, "technology"},
		{"bad timestamp", func(d *DeviceMetadata) { d.TimestampMetadata = "yesterday" }, "timestamp_metadata"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			_, err := NewDeviceMetadata(d)
			if err == nil {
				t.Fatal("invalid device accepted")
			}
			var fieldErr *FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("error type = %T, want *FieldError", err)
			}
			if fieldErr.Field != tt.field {
				t.Errorf("FieldError.Field = %q, want %q", fieldErr.Field, tt.field)
			}
		})
	}

	if _, err := NewDeviceMetadata(valid); err != nil {
		t.Errorf("valid device rejected: %v", err)
	}
}

func TestNewDeviceMetadata_NormalizesNilObjects(t *testing.T) {
	d, err := NewDeviceMetadata(DeviceMetadata{
		DeviceID:          "sim1",
		BackendName:       "aer",
		NumQubits:         2,
		Technology:        TechnologySimulator,
		TimestampMetadata: "2026-01-15T09:00:00.000000Z",
	})
	if err != nil {
		t.Fatalf("NewDeviceMetadata() failed: %v", err)
	}
	if d.Connectivity == nil || d.NoiseCharacteristics == nil || d.OperationalParameters == nil {
		t.Error("nil accumulator maps survived construction")
	}
}

func TestNewExecutionContext_CountsMustSumToShots(t *testing.T) {
	base := ExecutionContext{
		ExecutionID:          "exec1",
		TraceID:              "tr1",
		DeviceID:             "sim1",
		CalibrationID:        "cal1",
		TimestampExecution:   "2026-01-15T09:00:02.000000Z",
		TimestampCompilation: "2026-01-15T09:00:01.000000Z",
		NumShots:             100,
	}

	e := base
	e.Results = &Results{Counts: map[string]int64{"00": 60, "11": 41}}
	if _, err := NewExecutionContext(e); err == nil {
		t.Error("counts sum 101 != shots 100 accepted, want error")
	}

	e = base
	e.Results = &Results{Counts: map[string]int64{"00": 60, "11": -1}}
	if _, err := NewExecutionContext(e); err == nil {
		t.Error("negative count accepted, want error")
	}

	e = base
	e.Results = &Results{Counts: map[string]int64{"00": 60, "11": 40}}
	if _, err := NewExecutionContext(e); err != nil {
		t.Errorf("valid counts rejected: %v", err)
	}

	// A pending execution has no results yet; that is legal.
	e = base
	e.Results = nil
	if _, err := NewExecutionContext(e); err != nil {
		t.Errorf("nil results rejected: %v", err)
	}
}

func TestNewExecutionContext_ShotsPositive(t *testing.T) {
	e := ExecutionContext{
		ExecutionID:          "exec1",
		TraceID:              "tr1",
		DeviceID:             "sim1",
		CalibrationID:        "cal1",
		TimestampExecution:   "2026-01-15T09:00:02.000000Z",
		TimestampCompilation: "2026-01-15T09:00:01.000000Z",
		NumShots:             0,
	}
	if _, err := NewExecutionContext(e); err == nil {
		t.Error("zero shots accepted, want error")
	}
}

func TestAddExecutionContext_SkipsDuplicateID(t *testing.T) {
	m := Model{}
	m.AddExecutionContext(ExecutionContext{ExecutionID: "exec1", NumShots: 100})
	m.AddExecutionContext(ExecutionContext{ExecutionID: "exec1", NumShots: 999})
	m.AddExecutionContext(ExecutionContext{ExecutionID: "exec2", NumShots: 100})

	if len(m.ExecutionContext) != 2 {
		t.Fatalf("len(ExecutionContext) = %d, want 2", len(m.ExecutionContext))
	}
	if m.ExecutionContext[0].NumShots != 100 {
		t.Error("duplicate add overwrote the original execution")
	}
}

func TestNewID_PrefixAndUniqueness(t *testing.T) {
	a := NewID(ExecutionPrefix)
	b := NewID(ExecutionPrefix)
	if a == b {
		t.Error("two generated IDs collide")
	}
	if a[:5] != "exec_" {
		t.Errorf("ID %q missing exec_ prefix", a)
	}
}
