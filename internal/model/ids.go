package model

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID generates a prefixed entity identifier, e.g. "exec_0192f3...".
// Uses UUIDv7 so IDs sort roughly by creation time.
func NewID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.Must(uuid.NewV7()).String())
}

// Conventional ID prefixes for the record kinds.
const (
	DevicePrefix      = "dev"
	CircuitPrefix     = "circ"
	CalibrationPrefix = "cal"
	TracePrefix       = "tr"
	ExecutionPrefix   = "exec"
	ProvenancePrefix  = "prov"
	SessionPrefix     = "sess"
)
