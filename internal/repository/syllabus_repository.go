package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smd-api/internal/models"
)

const syllabusColumns = `id, course_code, course_name, department, credits, semester, academic_year,
       description, objectives, prerequisites, assessment_methods, textbooks, reference_list,
       status, created_by, created_at, updated_at`

// SyllabusRepository persists syllabus aggregates.
type SyllabusRepository struct {
	db *sqlx.DB
}

// NewSyllabusRepository constructs the repository.
func NewSyllabusRepository(db *sqlx.DB) *SyllabusRepository {
	return &SyllabusRepository{db: db}
}

// Create inserts a new syllabus row.
func (r *SyllabusRepository) Create(ctx context.Context, syllabus *models.Syllabus) error {
	if syllabus.ID == "" {
		syllabus.ID = uuid.NewString()
	}
	if syllabus.Status == "" {
		syllabus.Status = models.StatusDraft
	}
	now := time.Now().UTC()
	if syllabus.CreatedAt.IsZero() {
		syllabus.CreatedAt = now
	}
	syllabus.UpdatedAt = now
	const query = `INSERT INTO syllabi
	(id, course_code, course_name, department, credits, semester, academic_year, description,
	 objectives, prerequisites, assessment_methods, textbooks, reference_list, status, created_by, created_at, updated_at)
	VALUES (:id, :course_code, :course_name, :department, :credits, :semester, :academic_year, :description,
	 :objectives, :prerequisites, :assessment_methods, :textbooks, :reference_list, :status, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, syllabus); err != nil {
		return fmt.Errorf("create syllabus: %w", err)
	}
	return nil
}

// GetByID fetches a syllabus by identifier.
func (r *SyllabusRepository) GetByID(ctx context.Context, id string) (*models.Syllabus, error) {
	query := fmt.Sprintf("SELECT %s FROM syllabi WHERE id = $1", syllabusColumns)
	var syllabus models.Syllabus
	if err := r.db.GetContext(ctx, &syllabus, query, id); err != nil {
		return nil, err
	}
	return &syllabus, nil
}

// List returns syllabi matching the filter (latest updates first).
func (r *SyllabusRepository) List(ctx context.Context, filter models.SyllabusFilter) ([]models.Syllabus, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 6)
	builder.WriteString(fmt.Sprintf("SELECT %s FROM syllabi", syllabusColumns))

	conditions := make([]string, 0, 4)
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", len(args)))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(course_code ILIKE $%d OR course_name ILIKE $%d)", len(args), len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY updated_at DESC")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", size, (page-1)*size))

	var syllabi []models.Syllabus
	if err := r.db.SelectContext(ctx, &syllabi, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list syllabi: %w", err)
	}
	return syllabi, nil
}

// UpdateContent persists the editable fields. The guard on the previously
// read status keeps a racing transition from being silently overwritten:
// zero affected rows means the status moved under us.
func (r *SyllabusRepository) UpdateContent(ctx context.Context, syllabus *models.Syllabus, expectedStatus models.WorkflowStatus) error {
	syllabus.UpdatedAt = time.Now().UTC()
	const query = `UPDATE syllabi SET course_name = :course_name, credits = :credits, semester = :semester,
	 academic_year = :academic_year, description = :description, objectives = :objectives,
	 prerequisites = :prerequisites, assessment_methods = :assessment_methods, textbooks = :textbooks,
	 reference_list = :reference_list, updated_at = :updated_at
	WHERE id = :id AND status = :expected_status`
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":                 syllabus.ID,
		"course_name":        syllabus.CourseName,
		"credits":            syllabus.Credits,
		"semester":           syllabus.Semester,
		"academic_year":      syllabus.AcademicYear,
		"description":        syllabus.Description,
		"objectives":         syllabus.Objectives,
		"prerequisites":      syllabus.Prerequisites,
		"assessment_methods": syllabus.AssessmentMethods,
		"reference_list":     syllabus.References,
		"textbooks":          syllabus.Textbooks,
		"updated_at":         syllabus.UpdatedAt,
		"expected_status":    expectedStatus,
	})
	if err != nil {
		return fmt.Errorf("update syllabus content: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check syllabus update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
