package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smd-api/internal/models"
	"github.com/noah-isme/smd-api/internal/repository"
	appErrors "github.com/noah-isme/smd-api/pkg/errors"
)

type stubSyllabusStore struct {
	syllabus *models.Syllabus
	err      error
}

func (s *stubSyllabusStore) GetByID(ctx context.Context, id string) (*models.Syllabus, error) {
	if s.err != nil {
		return nil, s.err
	}
	clone := *s.syllabus
	return &clone, nil
}

type stubWorkflowStore struct {
	records       []repository.TransitionParams
	transitionErr error
	history       []models.WorkflowTransition
}

func (s *stubWorkflowStore) Transition(ctx context.Context, params repository.TransitionParams) (*models.WorkflowTransition, error) {
	if s.transitionErr != nil {
		return nil, s.transitionErr
	}
	s.records = append(s.records, params)
	return &models.WorkflowTransition{
		ID:         "t-1",
		SyllabusID: params.SyllabusID,
		FromStatus: params.FromStatus,
		ToStatus:   params.ToStatus,
		ActorID:    params.ActorID,
		Comment:    params.Comment,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func (s *stubWorkflowStore) ListBySyllabus(ctx context.Context, syllabusID string) ([]models.WorkflowTransition, error) {
	return s.history, nil
}

type stubNotifier struct {
	submitted       int
	pendingApproval int
	approved        int
	published       int
	rejected        int
}

func (n *stubNotifier) NotifySubmitted(ctx context.Context, syllabus *models.Syllabus) {
	n.submitted++
}

func (n *stubNotifier) NotifyPendingApproval(ctx context.Context, syllabus *models.Syllabus) {
	n.pendingApproval++
}

func (n *stubNotifier) NotifyApproved(ctx context.Context, syllabus *models.Syllabus) {
	n.approved++
}

func (n *stubNotifier) NotifyPublished(ctx context.Context, syllabus *models.Syllabus) {
	n.published++
}

func (n *stubNotifier) NotifyRejected(ctx context.Context, syllabus *models.Syllabus) {
	n.rejected++
}

type stubTransitionObserver struct {
	transitions []models.WorkflowStatus
}

func (o *stubTransitionObserver) RecordTransition(to models.WorkflowStatus) {
	o.transitions = append(o.transitions, to)
}

func claimsFor(userID string, roles ...models.UserRole) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Roles: roles}
}

func draftSyllabus(createdBy string) *models.Syllabus {
	return &models.Syllabus{
		ID:         "syl-1",
		CourseCode: "CS101",
		CourseName: "Intro to Computing",
		Status:     models.StatusDraft,
		CreatedBy:  createdBy,
	}
}

func newWorkflowFixture(syllabus *models.Syllabus) (*WorkflowService, *stubWorkflowStore, *stubNotifier, *stubTransitionObserver) {
	workflow := &stubWorkflowStore{}
	notifier := &stubNotifier{}
	observer := &stubTransitionObserver{}
	svc := NewWorkflowService(&stubSyllabusStore{syllabus: syllabus}, workflow, notifier, observer, nil)
	return svc, workflow, notifier, observer
}

func TestSubmitForReview(t *testing.T) {
	syllabus := draftSyllabus("lecturer-1")
	svc, workflow, notifier, observer := newWorkflowFixture(syllabus)

	result, err := svc.SubmitForReview(context.Background(), "syl-1", claimsFor("lecturer-1", models.RoleLecturer))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingReview, result.Status)

	require.Len(t, workflow.records, 1)
	record := workflow.records[0]
	assert.Equal(t, models.StatusDraft, record.FromStatus)
	assert.Equal(t, models.StatusPendingReview, record.ToStatus)
	assert.Equal(t, "lecturer-1", record.ActorID)
	require.NotNil(t, record.Comment)
	assert.Equal(t, "Submitted for review", *record.Comment)

	assert.Equal(t, 1, notifier.submitted)
	assert.Equal(t, []models.WorkflowStatus{models.StatusPendingReview}, observer.transitions)
}

func TestSubmitForReviewNotCreator(t *testing.T) {
	svc, workflow, _, _ := newWorkflowFixture(draftSyllabus("lecturer-1"))

	_, err := svc.SubmitForReview(context.Background(), "syl-1", claimsFor("lecturer-2", models.RoleLecturer))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, workflow.records)
}

func TestSubmitForReviewNotDraft(t *testing.T) {
	syllabus := draftSyllabus("lecturer-1")
	syllabus.Status = models.StatusPendingReview
	svc, workflow, _, _ := newWorkflowFixture(syllabus)

	_, err := svc.SubmitForReview(context.Background(), "syl-1", claimsFor("lecturer-1", models.RoleLecturer))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
	assert.Empty(t, workflow.records)
}

func TestApproveAdvancesOneStep(t *testing.T) {
	syllabus := draftSyllabus("lecturer-1")
	syllabus.Status = models.StatusPendingReview
	svc, workflow, notifier, _ := newWorkflowFixture(syllabus)

	result, err := svc.Approve(context.Background(), "syl-1", claimsFor("hod-1", models.RoleHOD), "looks good")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingApproval, result.Status)

	require.Len(t, workflow.records, 1)
	assert.Equal(t, models.StatusPendingReview, workflow.records[0].FromStatus)
	require.NotNil(t, workflow.records[0].Comment)
	assert.Equal(t, "looks good", *workflow.records[0].Comment)
	assert.Equal(t, 1, notifier.pendingApproval)
}

func TestApproveDeniedRoleWritesNothing(t *testing.T) {
	syllabus := draftSyllabus("lecturer-1")
	syllabus.Status = models.StatusPendingReview
	svc, workflow, notifier, observer := newWorkflowFixture(syllabus)

	_, err := svc.Approve(context.Background(), "syl-1", claimsFor("student-1", models.RoleStudent), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, workflow.records)
	assert.Zero(t, notifier.pendingApproval)
	assert.Empty(t, observer.transitions)
}

func TestApproveFinalStepNeedsAcademicAffairs(t *testing.T) {
	syllabus := draftSyllabus("lecturer-1")
	syllabus.Status = models.StatusPendingApproval
	svc, workflow, notifier, _ := newWorkflowFixture(syllabus)

	_, err := svc.Approve(context.Background(), "syl-1", claimsFor("hod-1", models.RoleHOD), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, workflow.records)

	result, err := svc.Approve(context.Background(), "syl-1", claimsFor("aa-1", models.RoleAcademicAffairs), "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, result.Status)
	assert.Equal(t, 1, notifier.approved)
	require.Len(t, workflow.records, 1)
	assert.Nil(t, workflow.records[0].Comment)
}

func TestApproveTerminalStatus(t *testing.T) {
	syllabus := draftSyllabus("lecturer-1")
	syllabus.Status = models.StatusPublished
	svc, workflow, _, _ := newWorkflowFixture(syllabus)

	_, err := svc.Approve(context.Background(), "syl-1", claimsFor("aa-1", models.RoleAcademicAffairs), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
	assert.Empty(t, workflow.records)
}

func TestRejectReturnsToCreator(t *testing.T) {
	syllabus := draftSyllabus("lecturer-1")
	syllabus.Status = models.StatusPendingApproval
	svc, workflow, notifier, _ := newWorkflowFixture(syllabus)

	result, err := svc.Reject(context.Background(), "syl-1", claimsFor("aa-1", models.RoleAcademicAffairs), "missing objectives")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, result.Status)
	assert.Equal(t, 1, notifier.rejected)
	require.Len(t, workflow.records, 1)
	require.NotNil(t, workflow.records[0].Comment)
	assert.Equal(t, "missing objectives", *workflow.records[0].Comment)
}

func TestRejectInvalidFromStatus(t *testing.T) {
	syllabus := draftSyllabus("lecturer-1")
	syllabus.Status = models.StatusApproved
	svc, workflow, _, _ := newWorkflowFixture(syllabus)

	_, err := svc.Reject(context.Background(), "syl-1", claimsFor("p-1", models.RolePrincipal), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
	assert.Empty(t, workflow.records)
}

func TestPublishRequiresApprovedStatus(t *testing.T) {
	syllabus := draftSyllabus("lecturer-1")
	syllabus.Status = models.StatusPendingApproval
	svc, workflow, _, _ := newWorkflowFixture(syllabus)

	_, err := svc.Publish(context.Background(), "syl-1", claimsFor("p-1", models.RolePrincipal))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
	assert.Empty(t, workflow.records)
}

func TestPublishHappyPath(t *testing.T) {
	syllabus := draftSyllabus("lecturer-1")
	syllabus.Status = models.StatusApproved
	svc, workflow, notifier, observer := newWorkflowFixture(syllabus)

	result, err := svc.Publish(context.Background(), "syl-1", claimsFor("p-1", models.RolePrincipal))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, result.Status)
	assert.Equal(t, 1, notifier.published)
	assert.Equal(t, []models.WorkflowStatus{models.StatusPublished}, observer.transitions)
	require.Len(t, workflow.records, 1)
	require.NotNil(t, workflow.records[0].Comment)
	assert.Equal(t, "Published", *workflow.records[0].Comment)
}

func TestTransitionConflictOnConcurrentChange(t *testing.T) {
	syllabus := draftSyllabus("lecturer-1")
	syllabus.Status = models.StatusPendingReview
	workflow := &stubWorkflowStore{transitionErr: sql.ErrNoRows}
	svc := NewWorkflowService(&stubSyllabusStore{syllabus: syllabus}, workflow, &stubNotifier{}, nil, nil)

	_, err := svc.Approve(context.Background(), "syl-1", claimsFor("hod-1", models.RoleHOD), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestTransitionSyllabusNotFound(t *testing.T) {
	svc := NewWorkflowService(&stubSyllabusStore{err: sql.ErrNoRows}, &stubWorkflowStore{}, &stubNotifier{}, nil, nil)

	_, err := svc.Approve(context.Background(), "missing", claimsFor("hod-1", models.RoleHOD), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTransitionNilActor(t *testing.T) {
	syllabus := draftSyllabus("lecturer-1")
	syllabus.Status = models.StatusPendingReview
	svc, _, _, _ := newWorkflowFixture(syllabus)

	_, err := svc.Transition(context.Background(), syllabus, models.StatusPendingApproval, nil, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestHistoryLoadsSyllabusFirst(t *testing.T) {
	svc := NewWorkflowService(&stubSyllabusStore{err: sql.ErrNoRows}, &stubWorkflowStore{}, &stubNotifier{}, nil, nil)
	_, err := svc.History(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestHistoryReturnsLog(t *testing.T) {
	syllabus := draftSyllabus("lecturer-1")
	workflow := &stubWorkflowStore{history: []models.WorkflowTransition{
		{ID: "t-1", FromStatus: models.StatusDraft, ToStatus: models.StatusPendingReview},
		{ID: "t-2", FromStatus: models.StatusPendingReview, ToStatus: models.StatusRejected},
	}}
	svc := NewWorkflowService(&stubSyllabusStore{syllabus: syllabus}, workflow, &stubNotifier{}, nil, nil)

	history, err := svc.History(context.Background(), "syl-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.StatusRejected, history[1].ToStatus)
}

func TestTransitionInternalErrorWrapped(t *testing.T) {
	syllabus := draftSyllabus("lecturer-1")
	syllabus.Status = models.StatusApproved
	workflow := &stubWorkflowStore{transitionErr: errors.New("connection reset")}
	svc := NewWorkflowService(&stubSyllabusStore{syllabus: syllabus}, workflow, &stubNotifier{}, nil, nil)

	_, err := svc.Publish(context.Background(), "syl-1", claimsFor("p-1", models.RolePrincipal))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
