// Package model defines the record kinds that make up a quantum-circuit
// experiment metadata document: device, circuit, calibration snapshot,
// compilation trace, execution context, lean provenance record, and
// experiment session, bound together by Model.
//
// This package contains types, construction-time validation, and
// serialization only. All other internal packages import model; model
// imports nothing internal except timestamp. This keeps the record layer
// foundational with no circular dependencies.
//
// Key design constraints:
//   - All JSON tags use snake_case and are load-bearing: downstream
//     consumers index into the serialized document by these exact names.
//   - Records are immutable once constructed, except the documented
//     accumulators (provenance relations, session counters, the model's
//     calibration/trace/execution lists).
//   - Free-form provider-specific maps use the Object value union, which
//     marshals with sorted keys so serialization is deterministic and
//     round-trips byte for byte.
//   - Timestamps are ISO-8601 strings, never time.Time fields: the stored
//     string is the record of what the producer reported, and it must
//     survive a round trip unchanged.
package model
