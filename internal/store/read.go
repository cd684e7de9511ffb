package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quantumprov/qprov/internal/model"
)

// ErrNotFound is returned when no document matches the requested ID.
var ErrNotFound = errors.New("document not found")

// DocumentInfo summarizes one archived document.
type DocumentInfo struct {
	ID           string `json:"id"`
	DeviceID     string `json:"device_id"`
	CircuitID    string `json:"circuit_id"`
	ModelVersion string `json:"model_version"`
	Created      string `json:"created"`
}

// GetDocument rehydrates an archived document by content ID.
func (s *Store) GetDocument(ctx context.Context, id string) (model.Model, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT body FROM documents WHERE id = ?
	`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Model{}, fmt.Errorf("get document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Model{}, fmt.Errorf("get document %s: %w", id, err)
	}

	m, err := model.FromCompleteJSON([]byte(body))
	if err != nil {
		return model.Model{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return m, nil
}

// ListDocuments returns summaries of all archived documents, ordered by
// creation timestamp then ID for deterministic results.
func (s *Store) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, device_id, circuit_id, model_version, created
		FROM documents
		ORDER BY created ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	infos := []DocumentInfo{}
	for rows.Next() {
		var info DocumentInfo
		if err := rows.Scan(&info.ID, &info.DeviceID, &info.CircuitID, &info.ModelVersion, &info.Created); err != nil {
			return nil, fmt.Errorf("list documents: scan: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: iterate: %w", err)
	}

	return infos, nil
}

// RelationsFor returns every archived provenance relation in which the
// entity appears as source or target, ordered by document then log
// position.
func (s *Store) RelationsFor(ctx context.Context, entityID string) ([]model.Relation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT relation_type, source_id, target_id, timestamp, role
		FROM relations
		WHERE source_id = ? OR target_id = ?
		ORDER BY document_id ASC, position ASC
	`, entityID, entityID)
	if err != nil {
		return nil, fmt.Errorf("relations for %s: %w", entityID, err)
	}
	defer rows.Close()

	return scanRelations(rows)
}

// DerivedFrom returns the IDs of entities derived from the given entity
// (wasDerivedFrom edges pointing at it), deduplicated, in deterministic
// order.
func (s *Store) DerivedFrom(ctx context.Context, targetID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT source_id
		FROM relations
		WHERE target_id = ? AND relation_type = ?
		ORDER BY source_id ASC
	`, targetID, model.RelationWasDerivedFrom)
	if err != nil {
		return nil, fmt.Errorf("derived from %s: %w", targetID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("derived from %s: scan: %w", targetID, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("derived from %s: iterate: %w", targetID, err)
	}

	return ids, nil
}

// ExecutionsForTrace returns execution IDs recorded against a compilation
// trace across all archived documents.
func (s *Store) ExecutionsForTrace(ctx context.Context, traceID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT execution_id
		FROM executions
		WHERE trace_id = ?
		ORDER BY timestamp_execution ASC, execution_id ASC
	`, traceID)
	if err != nil {
		return nil, fmt.Errorf("executions for trace %s: %w", traceID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("executions for trace %s: scan: %w", traceID, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("executions for trace %s: iterate: %w", traceID, err)
	}

	return ids, nil
}

func scanRelations(rows *sql.Rows) ([]model.Relation, error) {
	relations := []model.Relation{}
	for rows.Next() {
		var rel model.Relation
		var role sql.NullString
		if err := rows.Scan(&rel.RelationType, &rel.SourceID, &rel.TargetID, &rel.Timestamp, &role); err != nil {
			return nil, fmt.Errorf("scan relation: %w", err)
		}
		if role.Valid {
			rel.Role = role.String
		}
		relations = append(relations, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate relations: %w", err)
	}
	return relations, nil
}
