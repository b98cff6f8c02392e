package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smd-api/internal/models"
)

// WorkflowRepository persists workflow transitions. The status update and
// its audit record are written in one database transaction so a status
// change can never become visible without its transition entry.
type WorkflowRepository struct {
	db *sqlx.DB
}

// NewWorkflowRepository constructs the repository.
func NewWorkflowRepository(db *sqlx.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

// TransitionParams groups the columns written by an accepted transition.
type TransitionParams struct {
	SyllabusID string
	FromStatus models.WorkflowStatus
	ToStatus   models.WorkflowStatus
	ActorID    string
	Comment    *string
}

// Transition updates the syllabus status and appends the transition record
// atomically. The update is guarded on FromStatus; when a concurrent writer
// already moved the syllabus the guard matches zero rows, the transaction
// rolls back, and sql.ErrNoRows is returned for the service to map to a
// conflict.
func (r *WorkflowRepository) Transition(ctx context.Context, params TransitionParams) (*models.WorkflowTransition, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transition tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`UPDATE syllabi SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		params.ToStatus, now, params.SyllabusID, params.FromStatus,
	)
	if err != nil {
		return nil, fmt.Errorf("update syllabus status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("check status update rows: %w", err)
	}
	if rows == 0 {
		return nil, sql.ErrNoRows
	}

	record := &models.WorkflowTransition{
		ID:         uuid.NewString(),
		SyllabusID: params.SyllabusID,
		FromStatus: params.FromStatus,
		ToStatus:   params.ToStatus,
		ActorID:    params.ActorID,
		Comment:    params.Comment,
		CreatedAt:  now,
	}
	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO workflow_transitions (id, syllabus_id, from_status, to_status, actor_id, comment, created_at)
		 VALUES (:id, :syllabus_id, :from_status, :to_status, :actor_id, :comment, :created_at)`,
		record,
	); err != nil {
		return nil, fmt.Errorf("append workflow transition: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transition tx: %w", err)
	}
	return record, nil
}

// ListBySyllabus returns the transition log, oldest first.
func (r *WorkflowRepository) ListBySyllabus(ctx context.Context, syllabusID string) ([]models.WorkflowTransition, error) {
	const query = `SELECT id, syllabus_id, from_status, to_status, actor_id, comment, created_at
	FROM workflow_transitions WHERE syllabus_id = $1 ORDER BY created_at ASC`
	var transitions []models.WorkflowTransition
	if err := r.db.SelectContext(ctx, &transitions, query, syllabusID); err != nil {
		return nil, fmt.Errorf("list workflow transitions: %w", err)
	}
	return transitions, nil
}
