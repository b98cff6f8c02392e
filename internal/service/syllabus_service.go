package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/smd-api/internal/dto"
	"github.com/noah-isme/smd-api/internal/models"
	appErrors "github.com/noah-isme/smd-api/pkg/errors"
)

const (
	initialVersion     = "1.0"
	firstRevision      = "1.1"
	initialVersionNote = "Initial version"
	updatedContentNote = "Updated content"
)

type syllabusStore interface {
	Create(ctx context.Context, syllabus *models.Syllabus) error
	GetByID(ctx context.Context, id string) (*models.Syllabus, error)
	List(ctx context.Context, filter models.SyllabusFilter) ([]models.Syllabus, error)
	UpdateContent(ctx context.Context, syllabus *models.Syllabus, expectedStatus models.WorkflowStatus) error
}

type versionStore interface {
	Create(ctx context.Context, version *models.SyllabusVersion) error
	FindLatest(ctx context.Context, syllabusID string) (*models.SyllabusVersion, error)
	ListBySyllabus(ctx context.Context, syllabusID string) ([]models.SyllabusVersion, error)
}

// SyllabusService manages syllabus content and drives the versioning
// component: every content-affecting save appends an immutable snapshot.
type SyllabusService struct {
	repo     syllabusStore
	versions versionStore
	logger   *zap.Logger
}

// NewSyllabusService constructs the service.
func NewSyllabusService(repo syllabusStore, versions versionStore, logger *zap.Logger) *SyllabusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyllabusService{repo: repo, versions: versions, logger: logger}
}

// Create inserts a new draft syllabus and its initial "1.0" version.
func (s *SyllabusService) Create(ctx context.Context, req dto.CreateSyllabusRequest, actor *models.JWTClaims) (*models.Syllabus, error) {
	syllabus := &models.Syllabus{
		CourseCode:        strings.TrimSpace(req.CourseCode),
		CourseName:        strings.TrimSpace(req.CourseName),
		Department:        req.Department,
		Credits:           req.Credits,
		Semester:          req.Semester,
		AcademicYear:      req.AcademicYear,
		Description:       req.Description,
		Objectives:        req.Objectives,
		Prerequisites:     req.Prerequisites,
		AssessmentMethods: req.AssessmentMethods,
		Textbooks:         req.Textbooks,
		References:        req.References,
		Status:            models.StatusDraft,
		CreatedBy:         actor.UserID,
	}
	if err := s.repo.Create(ctx, syllabus); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create syllabus")
	}
	if err := s.appendVersion(ctx, syllabus, initialVersion, initialVersionNote, actor.UserID); err != nil {
		return nil, err
	}
	return syllabus, nil
}

// Update saves new content and appends the next minor version. Only the
// creator may edit, and only while the syllabus is in DRAFT or REJECTED;
// editing a rejected syllabus does not change its status.
func (s *SyllabusService) Update(ctx context.Context, id string, req dto.UpdateSyllabusRequest, actor *models.JWTClaims) (*models.Syllabus, error) {
	syllabus, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if syllabus.CreatedBy != actor.UserID && !actor.HasRole(models.RoleSystemAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the creator can update this syllabus")
	}
	if !syllabus.Status.Editable() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "cannot update syllabus in current status")
	}

	syllabus.CourseName = strings.TrimSpace(req.CourseName)
	syllabus.Credits = req.Credits
	syllabus.Semester = req.Semester
	syllabus.AcademicYear = req.AcademicYear
	syllabus.Description = req.Description
	syllabus.Objectives = req.Objectives
	syllabus.Prerequisites = req.Prerequisites
	syllabus.AssessmentMethods = req.AssessmentMethods
	syllabus.Textbooks = req.Textbooks
	syllabus.References = req.References

	if err := s.repo.UpdateContent(ctx, syllabus, syllabus.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "syllabus status changed concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update syllabus")
	}

	next, err := s.nextVersion(ctx, syllabus.ID)
	if err != nil {
		return nil, err
	}
	if err := s.appendVersion(ctx, syllabus, next, updatedContentNote, actor.UserID); err != nil {
		return nil, err
	}
	return syllabus, nil
}

// Get returns one syllabus by id.
func (s *SyllabusService) Get(ctx context.Context, id string) (*models.Syllabus, error) {
	syllabus, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "syllabus not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load syllabus")
	}
	return syllabus, nil
}

// List returns syllabi visible to the actor. Students only ever see
// published syllabi; other roles see whatever the filter selects.
func (s *SyllabusService) List(ctx context.Context, query dto.SyllabusQuery, actor *models.JWTClaims) ([]models.Syllabus, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.SyllabusFilter{
		Statuses:   query.Statuses,
		Department: query.Department,
		Search:     strings.TrimSpace(query.Search),
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if query.Mine {
		filter.CreatedBy = actor.UserID
	}
	if studentOnly(actor) {
		filter.Statuses = []models.WorkflowStatus{models.StatusPublished}
	}
	syllabi, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list syllabi")
	}
	return syllabi, nil
}

// ReviewQueue returns syllabi currently waiting on a reviewer decision.
func (s *SyllabusService) ReviewQueue(ctx context.Context, department string) ([]models.Syllabus, error) {
	syllabi, err := s.repo.List(ctx, models.SyllabusFilter{
		Statuses:   []models.WorkflowStatus{models.StatusPendingReview, models.StatusPendingApproval},
		Department: department,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list review queue")
	}
	return syllabi, nil
}

// Versions returns the snapshot history, newest first.
func (s *SyllabusService) Versions(ctx context.Context, syllabusID string) ([]models.SyllabusVersion, error) {
	if _, err := s.Get(ctx, syllabusID); err != nil {
		return nil, err
	}
	versions, err := s.versions.ListBySyllabus(ctx, syllabusID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list versions")
	}
	return versions, nil
}

// nextVersion computes the next "<major>.<minor>" identifier from the most
// recent snapshot. Content edits only ever bump the minor component.
func (s *SyllabusService) nextVersion(ctx context.Context, syllabusID string) (string, error) {
	latest, err := s.versions.FindLatest(ctx, syllabusID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return firstRevision, nil
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest version")
	}
	return incrementVersion(latest.Version), nil
}

func (s *SyllabusService) appendVersion(ctx context.Context, syllabus *models.Syllabus, version, note, actorID string) error {
	content, err := json.Marshal(models.SyllabusContent{
		CourseCode:        syllabus.CourseCode,
		CourseName:        syllabus.CourseName,
		Description:       syllabus.Description,
		Objectives:        syllabus.Objectives,
		Prerequisites:     syllabus.Prerequisites,
		AssessmentMethods: syllabus.AssessmentMethods,
		Textbooks:         syllabus.Textbooks,
		References:        syllabus.References,
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to serialize snapshot")
	}
	if err := s.versions.Create(ctx, &models.SyllabusVersion{
		SyllabusID: syllabus.ID,
		Version:    version,
		Content:    content,
		ChangeLog:  note,
		CreatedBy:  actorID,
	}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create version")
	}
	return nil
}

// incrementVersion bumps the minor component, defaulting a missing minor
// to 0. Malformed components are treated as 0 rather than failing a save.
func incrementVersion(current string) string {
	parts := strings.SplitN(current, ".", 2)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		major = 1
	}
	minor := 0
	if len(parts) > 1 {
		if parsed, err := strconv.Atoi(parts[1]); err == nil {
			minor = parsed
		}
	}
	return fmt.Sprintf("%d.%d", major, minor+1)
}

// studentOnly reports whether the actor holds the student role and none of
// the staff roles.
func studentOnly(actor *models.JWTClaims) bool {
	if !actor.HasRole(models.RoleStudent) {
		return false
	}
	for _, role := range actor.Roles {
		if role != models.RoleStudent {
			return false
		}
	}
	return true
}
