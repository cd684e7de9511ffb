package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/quantumprov/qprov/internal/model"
)

// SaveDocument serializes and archives a metadata model.
//
// The document ID is the content hash of the serialized body, so saving
// the same model twice is idempotent: the second save inserts nothing and
// returns inserted=false. The document row, its flattened relations, and
// its execution index rows are written in one transaction for crash
// atomicity.
func (s *Store) SaveDocument(ctx context.Context, m model.Model) (id string, inserted bool, err error) {
	body, err := m.ToCompleteJSON()
	if err != nil {
		return "", false, fmt.Errorf("save document: %w", err)
	}
	id = model.DocumentID(body)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("save document: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO documents
		(id, device_id, circuit_id, model_version, created, body)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		m.DeviceMetadata.DeviceID,
		m.CircuitMetadata.CircuitID,
		m.ModelVersion,
		m.TimestampModelCreated,
		string(body),
	)
	if err != nil {
		return "", false, fmt.Errorf("save document: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("save document: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Identical document already archived; children exist too.
		if err := tx.Commit(); err != nil {
			return "", false, fmt.Errorf("save document: commit (existing): %w", err)
		}
		return id, false, nil
	}

	if err := insertRelations(ctx, tx, id, m.ProvenanceRecord.Relations); err != nil {
		return "", false, err
	}
	if err := insertExecutions(ctx, tx, id, m.ExecutionContext); err != nil {
		return "", false, err
	}

	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("save document: commit: %w", err)
	}

	return id, true, nil
}

// insertRelations flattens the provenance relation log into the relations
// table, preserving log order via position.
func insertRelations(ctx context.Context, tx *sql.Tx, docID string, relations []model.Relation) error {
	for i, rel := range relations {
		var role any
		if rel.Role != "" {
			role = rel.Role
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO relations
			(document_id, position, relation_type, source_id, target_id, timestamp, role)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(document_id, position) DO NOTHING
		`,
			docID, i, rel.RelationType, rel.SourceID, rel.TargetID, rel.Timestamp, role,
		)
		if err != nil {
			return fmt.Errorf("save document: insert relation %d: %w", i, err)
		}
	}
	return nil
}

// insertExecutions indexes each execution context for lineage queries.
func insertExecutions(ctx context.Context, tx *sql.Tx, docID string, executions []model.ExecutionContext) error {
	for _, ec := range executions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO executions
			(document_id, execution_id, trace_id, device_id, calibration_id, num_shots, timestamp_execution)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(document_id, execution_id) DO NOTHING
		`,
			docID, ec.ExecutionID, ec.TraceID, ec.DeviceID, ec.CalibrationID, ec.NumShots, ec.TimestampExecution,
		)
		if err != nil {
			return fmt.Errorf("save document: insert execution %s: %w", ec.ExecutionID, err)
		}
	}
	return nil
}
