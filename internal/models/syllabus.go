package models

import "time"

// WorkflowStatus enumerates the syllabus lifecycle states.
type WorkflowStatus string

const (
	StatusDraft           WorkflowStatus = "DRAFT"
	StatusPendingReview   WorkflowStatus = "PENDING_REVIEW"
	StatusPendingApproval WorkflowStatus = "PENDING_APPROVAL"
	StatusApproved        WorkflowStatus = "APPROVED"
	StatusPublished       WorkflowStatus = "PUBLISHED"
	StatusRejected        WorkflowStatus = "REJECTED"
)

// AllStatuses lists every workflow state.
var AllStatuses = []WorkflowStatus{
	StatusDraft,
	StatusPendingReview,
	StatusPendingApproval,
	StatusApproved,
	StatusPublished,
	StatusRejected,
}

// ValidStatus reports whether the value is a known workflow state.
func ValidStatus(status WorkflowStatus) bool {
	for _, s := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Editable reports whether syllabus content may change in this state.
// Editing a rejected syllabus does not itself transition the status.
func (s WorkflowStatus) Editable() bool {
	return s == StatusDraft || s == StatusRejected
}

// Syllabus is the aggregate root of the approval pipeline. Versions and
// transition records hang off it; content is mutable only while Editable.
type Syllabus struct {
	ID                string         `db:"id" json:"id"`
	CourseCode        string         `db:"course_code" json:"course_code"`
	CourseName        string         `db:"course_name" json:"course_name"`
	Department        string         `db:"department" json:"department"`
	Credits           int            `db:"credits" json:"credits"`
	Semester          string         `db:"semester" json:"semester"`
	AcademicYear      string         `db:"academic_year" json:"academic_year"`
	Description       string         `db:"description" json:"description"`
	Objectives        string         `db:"objectives" json:"objectives"`
	Prerequisites     string         `db:"prerequisites" json:"prerequisites"`
	AssessmentMethods string         `db:"assessment_methods" json:"assessment_methods"`
	Textbooks         string         `db:"textbooks" json:"textbooks"`
	References        string         `db:"reference_list" json:"references"`
	Status            WorkflowStatus `db:"status" json:"status"`
	CreatedBy         string         `db:"created_by" json:"created_by"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// SyllabusFilter constrains listing queries.
type SyllabusFilter struct {
	Statuses   []WorkflowStatus
	CreatedBy  string
	Department string
	Search     string
	Page       int
	PageSize   int
}
