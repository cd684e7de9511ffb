// Package provenance accumulates the lean provenance record for one
// experiment run: typed derivation/usage relations between entity IDs,
// workflow timing, and a quality assessment summary.
package provenance

import (
	"fmt"

	"github.com/quantumprov/qprov/internal/clock"
	"github.com/quantumprov/qprov/internal/model"
	"github.com/quantumprov/qprov/internal/timestamp"
)

// Builder accumulates relations into a ProvenanceRecordLean.
//
// Relations are append-only. Duplicate relations and self-loops are
// permitted: the record is a trace log of what happened, not a
// deduplicated graph. The workflow and quality summaries are computed once
// at finalization.
//
// Builder is not safe for concurrent use; each experiment run owns one.
type Builder struct {
	rec model.ProvenanceRecordLean
}

// NewBuilder creates a builder for a new provenance record. An empty
// provenanceID gets a generated one. The recorded timestamp comes from clk.
func NewBuilder(provenanceID string, clk clock.Clock) *Builder {
	if provenanceID == "" {
		provenanceID = model.NewID(model.ProvenancePrefix)
	}
	return &Builder{
		rec: model.ProvenanceRecordLean{
			ProvenanceID:      provenanceID,
			TimestampRecorded: timestamp.Format(clk.Now()),
			ProvMode:          "lean",
			Relations:         []model.Relation{},
			WorkflowGraph:     model.Object{},
			QualityAssessment: model.Object{},
		},
	}
}

// AddRelation appends a typed relation edge. relationType must be one of
// the four defined kinds (wasDerivedFrom, used, wasGeneratedBy,
// wasInformedBy); anything else is a caller error. role may be empty, in
// which case the serialized relation omits it.
func (b *Builder) AddRelation(relationType, sourceID, targetID, ts, role string) error {
	if !model.ValidRelationTypes[relationType] {
		return fmt.Errorf("add relation: unknown relation type %q", relationType)
	}
	if sourceID == "" || targetID == "" {
		return fmt.Errorf("add relation: source and target IDs are required")
	}
	b.rec.Relations = append(b.rec.Relations, model.Relation{
		RelationType: relationType,
		SourceID:     sourceID,
		TargetID:     targetID,
		Timestamp:    ts,
		Role:         role,
	})
	return nil
}

// FinalizeWorkflow computes the workflow timing summary from the designated
// terminal points: start is the circuit's creation timestamp; end is the
// session end or the last execution, whichever the caller designates as
// terminal. Returns the total elapsed seconds.
//
// Both timestamps must parse; workflow timing built on unparseable stamps
// would silently misreport the experiment.
func (b *Builder) FinalizeWorkflow(start, end string) (float64, error) {
	startT, err := timestamp.Parse(start)
	if err != nil {
		return 0, fmt.Errorf("finalize workflow: start: %w", err)
	}
	endT, err := timestamp.Parse(end)
	if err != nil {
		return 0, fmt.Errorf("finalize workflow: end: %w", err)
	}

	total := endT.Sub(startT).Seconds()
	b.rec.WorkflowGraph[model.WorkflowStartKey] = model.String(start)
	b.rec.WorkflowGraph[model.WorkflowEndKey] = model.String(end)
	b.rec.WorkflowGraph[model.TotalDurationSecondsKey] = model.Float(total)
	return total, nil
}

// SetWorkflowMetric records an additional workflow summary entry, such as
// num_iterations or jit_recompilations.
func (b *Builder) SetWorkflowMetric(key string, v model.Value) {
	b.rec.WorkflowGraph[key] = v
}

// SetQuality records a quality assessment entry.
func (b *Builder) SetQuality(key string, v model.Value) {
	b.rec.QualityAssessment[key] = v
}

// RelationCount returns the number of accumulated relations.
func (b *Builder) RelationCount() int {
	return len(b.rec.Relations)
}

// Record returns a copy of the accumulated provenance record.
func (b *Builder) Record() model.ProvenanceRecordLean {
	rec := b.rec
	rec.Relations = append([]model.Relation(nil), b.rec.Relations...)
	rec.WorkflowGraph = cloneObject(b.rec.WorkflowGraph)
	rec.QualityAssessment = cloneObject(b.rec.QualityAssessment)
	return rec
}

func cloneObject(o model.Object) model.Object {
	out := make(model.Object, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}
