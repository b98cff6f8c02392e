package models

import "time"

// SyllabusVersion is an immutable content snapshot. Versions are an
// append-only log per syllabus; rows are never updated or deleted.
type SyllabusVersion struct {
	ID         string    `db:"id" json:"id"`
	SyllabusID string    `db:"syllabus_id" json:"syllabus_id"`
	Version    string    `db:"version" json:"version"`
	Content    []byte    `db:"content" json:"content"`
	ChangeLog  string    `db:"change_log" json:"change_log"`
	CreatedBy  string    `db:"created_by" json:"created_by"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// SyllabusContent is the stable serialized form captured by each version.
type SyllabusContent struct {
	CourseCode        string `json:"courseCode"`
	CourseName        string `json:"courseName"`
	Description       string `json:"description"`
	Objectives        string `json:"objectives"`
	Prerequisites     string `json:"prerequisites"`
	AssessmentMethods string `json:"assessmentMethods"`
	Textbooks         string `json:"textbooks"`
	References        string `json:"references"`
}
