package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smd-api/internal/models"
)

func TestSyllabusRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSyllabusRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO syllabi")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	syllabus := &models.Syllabus{
		CourseCode:   "CS101",
		CourseName:   "Introduction to Programming",
		Department:   "Computer Science",
		Credits:      3,
		Semester:     "Fall",
		AcademicYear: "2026/2027",
		CreatedBy:    "lecturer-1",
	}
	require.NoError(t, repo.Create(context.Background(), syllabus))
	require.NotEmpty(t, syllabus.ID)
	require.Equal(t, models.StatusDraft, syllabus.Status)

	rows := sqlmock.NewRows([]string{"id", "course_code", "course_name", "department", "credits", "semester",
		"academic_year", "description", "objectives", "prerequisites", "assessment_methods", "textbooks",
		"reference_list", "status", "created_by", "created_at", "updated_at"}).
		AddRow(syllabus.ID, "CS101", "Introduction to Programming", "Computer Science", 3, "Fall",
			"2026/2027", "", "", "", "", "", "", "DRAFT", "lecturer-1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_code, course_name")).
		WithArgs(syllabus.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), syllabus.ID)
	require.NoError(t, err)
	require.Equal(t, "CS101", found.CourseCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSyllabusRepositoryListStatusFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSyllabusRepository(db)
	rows := sqlmock.NewRows([]string{"id", "course_code", "course_name", "department", "credits", "semester",
		"academic_year", "description", "objectives", "prerequisites", "assessment_methods", "textbooks",
		"reference_list", "status", "created_by", "created_at", "updated_at"}).
		AddRow("syl-1", "CS101", "Introduction to Programming", "Computer Science", 3, "Fall",
			"2026/2027", "", "", "", "", "", "", "PENDING_REVIEW", "lecturer-1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_code, course_name")).
		WithArgs("PENDING_REVIEW", "PENDING_APPROVAL").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.SyllabusFilter{
		Statuses: []models.WorkflowStatus{models.StatusPendingReview, models.StatusPendingApproval},
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, models.StatusPendingReview, list[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSyllabusRepositoryUpdateContentGuard(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSyllabusRepository(db)
	syllabus := &models.Syllabus{ID: "syl-1", CourseName: "Algorithms", Credits: 4}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE syllabi SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateContent(context.Background(), syllabus, models.StatusDraft))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE syllabi SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateContent(context.Background(), syllabus, models.StatusDraft)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
