package models

import "time"

// WorkflowTransition is one audit entry in the append-only transition log.
// FromStatus always equals the syllabus status immediately before the
// change and ToStatus the status immediately after; denied attempts leave
// no record.
type WorkflowTransition struct {
	ID         string         `db:"id" json:"id"`
	SyllabusID string         `db:"syllabus_id" json:"syllabus_id"`
	FromStatus WorkflowStatus `db:"from_status" json:"from_status"`
	ToStatus   WorkflowStatus `db:"to_status" json:"to_status"`
	ActorID    string         `db:"actor_id" json:"actor_id"`
	Comment    *string        `db:"comment" json:"comment,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}
