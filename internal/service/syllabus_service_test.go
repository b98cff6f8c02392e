package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smd-api/internal/dto"
	"github.com/noah-isme/smd-api/internal/models"
	appErrors "github.com/noah-isme/smd-api/pkg/errors"
)

type memorySyllabusStore struct {
	syllabi       map[string]*models.Syllabus
	lastFilter    models.SyllabusFilter
	updateErr     error
	updateGuarded models.WorkflowStatus
}

func newMemorySyllabusStore() *memorySyllabusStore {
	return &memorySyllabusStore{syllabi: make(map[string]*models.Syllabus)}
}

func (s *memorySyllabusStore) Create(ctx context.Context, syllabus *models.Syllabus) error {
	if syllabus.ID == "" {
		syllabus.ID = "syl-1"
	}
	clone := *syllabus
	s.syllabi[syllabus.ID] = &clone
	return nil
}

func (s *memorySyllabusStore) GetByID(ctx context.Context, id string) (*models.Syllabus, error) {
	syllabus, ok := s.syllabi[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *syllabus
	return &clone, nil
}

func (s *memorySyllabusStore) List(ctx context.Context, filter models.SyllabusFilter) ([]models.Syllabus, error) {
	s.lastFilter = filter
	result := make([]models.Syllabus, 0, len(s.syllabi))
	for _, syllabus := range s.syllabi {
		result = append(result, *syllabus)
	}
	return result, nil
}

func (s *memorySyllabusStore) UpdateContent(ctx context.Context, syllabus *models.Syllabus, expectedStatus models.WorkflowStatus) error {
	s.updateGuarded = expectedStatus
	if s.updateErr != nil {
		return s.updateErr
	}
	clone := *syllabus
	s.syllabi[syllabus.ID] = &clone
	return nil
}

type memoryVersionStore struct {
	versions  []*models.SyllabusVersion
	createErr error
}

func (s *memoryVersionStore) Create(ctx context.Context, version *models.SyllabusVersion) error {
	if s.createErr != nil {
		return s.createErr
	}
	clone := *version
	s.versions = append(s.versions, &clone)
	return nil
}

func (s *memoryVersionStore) FindLatest(ctx context.Context, syllabusID string) (*models.SyllabusVersion, error) {
	for i := len(s.versions) - 1; i >= 0; i-- {
		if s.versions[i].SyllabusID == syllabusID {
			clone := *s.versions[i]
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memoryVersionStore) ListBySyllabus(ctx context.Context, syllabusID string) ([]models.SyllabusVersion, error) {
	result := make([]models.SyllabusVersion, 0)
	for i := len(s.versions) - 1; i >= 0; i-- {
		if s.versions[i].SyllabusID == syllabusID {
			result = append(result, *s.versions[i])
		}
	}
	return result, nil
}

func createRequest() dto.CreateSyllabusRequest {
	return dto.CreateSyllabusRequest{
		CourseCode:  "CS101",
		CourseName:  "Intro to Computing",
		Department:  "Computer Science",
		Credits:     3,
		Description: "Fundamentals",
	}
}

func TestCreateSyllabusStartsAtVersionOne(t *testing.T) {
	store := newMemorySyllabusStore()
	versions := &memoryVersionStore{}
	svc := NewSyllabusService(store, versions, nil)

	syllabus, err := svc.Create(context.Background(), createRequest(), claimsFor("lecturer-1", models.RoleLecturer))
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, syllabus.Status)
	assert.Equal(t, "lecturer-1", syllabus.CreatedBy)

	require.Len(t, versions.versions, 1)
	first := versions.versions[0]
	assert.Equal(t, "1.0", first.Version)
	assert.Equal(t, "Initial version", first.ChangeLog)
	assert.Equal(t, "lecturer-1", first.CreatedBy)

	var content models.SyllabusContent
	require.NoError(t, json.Unmarshal(first.Content, &content))
	assert.Equal(t, "CS101", content.CourseCode)
	assert.Equal(t, "Intro to Computing", content.CourseName)
}

func TestUpdateSyllabusBumpsMinorVersion(t *testing.T) {
	store := newMemorySyllabusStore()
	versions := &memoryVersionStore{}
	svc := NewSyllabusService(store, versions, nil)
	actor := claimsFor("lecturer-1", models.RoleLecturer)

	syllabus, err := svc.Create(context.Background(), createRequest(), actor)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), syllabus.ID, dto.UpdateSyllabusRequest{
		CourseName:  "Intro to Computing",
		Credits:     4,
		Description: "Expanded fundamentals",
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Credits)
	assert.Equal(t, models.StatusDraft, updated.Status)

	require.Len(t, versions.versions, 2)
	assert.Equal(t, "1.1", versions.versions[1].Version)
	assert.Equal(t, "Updated content", versions.versions[1].ChangeLog)
}

func TestUpdateRejectedSyllabusKeepsStatus(t *testing.T) {
	store := newMemorySyllabusStore()
	versions := &memoryVersionStore{versions: []*models.SyllabusVersion{
		{SyllabusID: "syl-9", Version: "1.0"},
		{SyllabusID: "syl-9", Version: "1.1"},
		{SyllabusID: "syl-9", Version: "1.2"},
		{SyllabusID: "syl-9", Version: "1.3"},
	}}
	store.syllabi["syl-9"] = &models.Syllabus{
		ID:         "syl-9",
		CourseCode: "CS201",
		CourseName: "Data Structures",
		Status:     models.StatusRejected,
		CreatedBy:  "lecturer-1",
	}
	svc := NewSyllabusService(store, versions, nil)

	updated, err := svc.Update(context.Background(), "syl-9", dto.UpdateSyllabusRequest{
		CourseName: "Data Structures",
		Objectives: "Revised after rejection",
	}, claimsFor("lecturer-1", models.RoleLecturer))
	require.NoError(t, err)

	// Editing a rejected syllabus does not resubmit it.
	assert.Equal(t, models.StatusRejected, updated.Status)
	assert.Equal(t, models.StatusRejected, store.updateGuarded)
	assert.Equal(t, "1.4", versions.versions[len(versions.versions)-1].Version)
}

func TestUpdateDeniedWhileUnderReview(t *testing.T) {
	for _, status := range []models.WorkflowStatus{
		models.StatusPendingReview,
		models.StatusPendingApproval,
		models.StatusApproved,
		models.StatusPublished,
	} {
		store := newMemorySyllabusStore()
		store.syllabi["syl-1"] = &models.Syllabus{ID: "syl-1", Status: status, CreatedBy: "lecturer-1"}
		versions := &memoryVersionStore{}
		svc := NewSyllabusService(store, versions, nil)

		_, err := svc.Update(context.Background(), "syl-1", dto.UpdateSyllabusRequest{CourseName: "X"},
			claimsFor("lecturer-1", models.RoleLecturer))
		require.Errorf(t, err, "status %s", status)
		assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
		assert.Empty(t, versions.versions)
	}
}

func TestUpdateDeniedForNonCreator(t *testing.T) {
	store := newMemorySyllabusStore()
	store.syllabi["syl-1"] = &models.Syllabus{ID: "syl-1", Status: models.StatusDraft, CreatedBy: "lecturer-1"}
	svc := NewSyllabusService(store, &memoryVersionStore{}, nil)

	_, err := svc.Update(context.Background(), "syl-1", dto.UpdateSyllabusRequest{CourseName: "X"},
		claimsFor("lecturer-2", models.RoleLecturer))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestUpdateConflictOnConcurrentStatusChange(t *testing.T) {
	store := newMemorySyllabusStore()
	store.syllabi["syl-1"] = &models.Syllabus{ID: "syl-1", Status: models.StatusDraft, CreatedBy: "lecturer-1"}
	store.updateErr = sql.ErrNoRows
	versions := &memoryVersionStore{}
	svc := NewSyllabusService(store, versions, nil)

	_, err := svc.Update(context.Background(), "syl-1", dto.UpdateSyllabusRequest{CourseName: "X"},
		claimsFor("lecturer-1", models.RoleLecturer))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, versions.versions)
}

func TestGetSyllabusNotFound(t *testing.T) {
	svc := NewSyllabusService(newMemorySyllabusStore(), &memoryVersionStore{}, nil)
	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListForcesPublishedForStudents(t *testing.T) {
	store := newMemorySyllabusStore()
	svc := NewSyllabusService(store, &memoryVersionStore{}, nil)

	_, err := svc.List(context.Background(), dto.SyllabusQuery{
		Statuses: []models.WorkflowStatus{models.StatusDraft},
	}, claimsFor("student-1", models.RoleStudent))
	require.NoError(t, err)
	assert.Equal(t, []models.WorkflowStatus{models.StatusPublished}, store.lastFilter.Statuses)
}

func TestListKeepsFilterForStaffStudent(t *testing.T) {
	store := newMemorySyllabusStore()
	svc := NewSyllabusService(store, &memoryVersionStore{}, nil)

	// A student who is also a lecturer keeps the requested filter.
	_, err := svc.List(context.Background(), dto.SyllabusQuery{
		Statuses: []models.WorkflowStatus{models.StatusDraft},
		Mine:     true,
	}, claimsFor("user-1", models.RoleStudent, models.RoleLecturer))
	require.NoError(t, err)
	assert.Equal(t, []models.WorkflowStatus{models.StatusDraft}, store.lastFilter.Statuses)
	assert.Equal(t, "user-1", store.lastFilter.CreatedBy)
}

func TestReviewQueueFiltersPendingStatuses(t *testing.T) {
	store := newMemorySyllabusStore()
	svc := NewSyllabusService(store, &memoryVersionStore{}, nil)

	_, err := svc.ReviewQueue(context.Background(), "Computer Science")
	require.NoError(t, err)
	assert.Equal(t, []models.WorkflowStatus{models.StatusPendingReview, models.StatusPendingApproval},
		store.lastFilter.Statuses)
	assert.Equal(t, "Computer Science", store.lastFilter.Department)
}

func TestIncrementVersion(t *testing.T) {
	cases := []struct {
		current string
		want    string
	}{
		{"1.0", "1.1"},
		{"1.3", "1.4"},
		{"1.9", "1.10"},
		{"2.0", "2.1"},
		{"1", "1.1"},
		{"1.x", "1.1"},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, incrementVersion(tc.current), "from %s", tc.current)
	}
}
