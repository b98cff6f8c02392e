package dto

import "github.com/noah-isme/smd-api/internal/models"

// CreateSyllabusRequest is the payload for creating a draft syllabus.
type CreateSyllabusRequest struct {
	CourseCode        string `json:"course_code" binding:"required"`
	CourseName        string `json:"course_name" binding:"required"`
	Department        string `json:"department"`
	Credits           int    `json:"credits"`
	Semester          string `json:"semester"`
	AcademicYear      string `json:"academic_year"`
	Description       string `json:"description"`
	Objectives        string `json:"objectives"`
	Prerequisites     string `json:"prerequisites"`
	AssessmentMethods string `json:"assessment_methods"`
	Textbooks         string `json:"textbooks"`
	References        string `json:"references"`
}

// UpdateSyllabusRequest carries the editable content fields. Course code
// and department are fixed at creation.
type UpdateSyllabusRequest struct {
	CourseName        string `json:"course_name" binding:"required"`
	Credits           int    `json:"credits"`
	Semester          string `json:"semester"`
	AcademicYear      string `json:"academic_year"`
	Description       string `json:"description"`
	Objectives        string `json:"objectives"`
	Prerequisites     string `json:"prerequisites"`
	AssessmentMethods string `json:"assessment_methods"`
	Textbooks         string `json:"textbooks"`
	References        string `json:"references"`
}

// SyllabusQuery captures list filters from query parameters.
type SyllabusQuery struct {
	Statuses   []models.WorkflowStatus
	Department string
	Search     string
	Mine       bool
	Page       int
	PageSize   int
}
