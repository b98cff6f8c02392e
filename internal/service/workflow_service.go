package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/smd-api/internal/models"
	"github.com/noah-isme/smd-api/internal/repository"
	appErrors "github.com/noah-isme/smd-api/pkg/errors"
)

type workflowSyllabusStore interface {
	GetByID(ctx context.Context, id string) (*models.Syllabus, error)
}

type workflowStore interface {
	Transition(ctx context.Context, params repository.TransitionParams) (*models.WorkflowTransition, error)
	ListBySyllabus(ctx context.Context, syllabusID string) ([]models.WorkflowTransition, error)
}

// workflowNotifier fans a transition event out to its audience. Failures
// are the notifier's concern; the engine only hands the event off.
type workflowNotifier interface {
	NotifySubmitted(ctx context.Context, syllabus *models.Syllabus)
	NotifyPendingApproval(ctx context.Context, syllabus *models.Syllabus)
	NotifyApproved(ctx context.Context, syllabus *models.Syllabus)
	NotifyPublished(ctx context.Context, syllabus *models.Syllabus)
	NotifyRejected(ctx context.Context, syllabus *models.Syllabus)
}

type transitionObserver interface {
	RecordTransition(to models.WorkflowStatus)
}

// WorkflowService orchestrates syllabus status changes: it authorizes the
// requested move, persists the new status together with its audit record,
// and triggers notification fanout afterwards.
type WorkflowService struct {
	syllabi  workflowSyllabusStore
	workflow workflowStore
	notifier workflowNotifier
	metrics  transitionObserver
	logger   *zap.Logger
}

// NewWorkflowService constructs the service.
func NewWorkflowService(syllabi workflowSyllabusStore, workflow workflowStore, notifier workflowNotifier, metrics transitionObserver, logger *zap.Logger) *WorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkflowService{syllabi: syllabi, workflow: workflow, notifier: notifier, metrics: metrics, logger: logger}
}

// approveNext maps the current status to the single legal approval target.
var approveNext = map[models.WorkflowStatus]models.WorkflowStatus{
	models.StatusPendingReview:   models.StatusPendingApproval,
	models.StatusPendingApproval: models.StatusApproved,
}

// SubmitForReview moves a draft into the review chain. Submission is the
// creator's own move out of DRAFT, so it is gated on ownership and the
// draft precondition rather than the reviewer rule table.
func (s *WorkflowService) SubmitForReview(ctx context.Context, syllabusID string, actor *models.JWTClaims) (*models.Syllabus, error) {
	syllabus, err := s.load(ctx, syllabusID)
	if err != nil {
		return nil, err
	}
	if syllabus.CreatedBy != actor.UserID && !actor.HasRole(models.RoleSystemAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the creator can submit this syllabus")
	}
	if syllabus.Status != models.StatusDraft {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "can only submit draft syllabi for review")
	}
	comment := "Submitted for review"
	return s.execute(ctx, syllabus, models.StatusPendingReview, actor, &comment)
}

// Approve advances a syllabus one step along the review chain.
func (s *WorkflowService) Approve(ctx context.Context, syllabusID string, actor *models.JWTClaims, comment string) (*models.Syllabus, error) {
	syllabus, err := s.load(ctx, syllabusID)
	if err != nil {
		return nil, err
	}
	next, ok := approveNext[syllabus.Status]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "cannot approve syllabus in current status")
	}
	return s.Transition(ctx, syllabus, next, actor, optionalComment(comment))
}

// Reject sends a syllabus under review back to its creator.
func (s *WorkflowService) Reject(ctx context.Context, syllabusID string, actor *models.JWTClaims, comment string) (*models.Syllabus, error) {
	syllabus, err := s.load(ctx, syllabusID)
	if err != nil {
		return nil, err
	}
	if syllabus.Status != models.StatusPendingReview && syllabus.Status != models.StatusPendingApproval {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "cannot reject syllabus in current status")
	}
	return s.Transition(ctx, syllabus, models.StatusRejected, actor, optionalComment(comment))
}

// Publish makes an approved syllabus publicly available. PUBLISHED is
// terminal; there is no move out of it.
func (s *WorkflowService) Publish(ctx context.Context, syllabusID string, actor *models.JWTClaims) (*models.Syllabus, error) {
	syllabus, err := s.load(ctx, syllabusID)
	if err != nil {
		return nil, err
	}
	if syllabus.Status != models.StatusApproved {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "can only publish approved syllabi")
	}
	comment := "Published"
	return s.Transition(ctx, syllabus, models.StatusPublished, actor, &comment)
}

// Transition is the shared authorization-gated primitive. On deny nothing
// is written; on allow the status change and its transition record are
// persisted as one atomic unit and fanout runs afterwards.
func (s *WorkflowService) Transition(ctx context.Context, syllabus *models.Syllabus, to models.WorkflowStatus, actor *models.JWTClaims, comment *string) (*models.Syllabus, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !AuthorizeTransition(syllabus.Status, to, actor.Roles) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role not permitted for this status transition")
	}
	return s.execute(ctx, syllabus, to, actor, comment)
}

// History returns the append-only transition log for a syllabus.
func (s *WorkflowService) History(ctx context.Context, syllabusID string) ([]models.WorkflowTransition, error) {
	if _, err := s.load(ctx, syllabusID); err != nil {
		return nil, err
	}
	transitions, err := s.workflow.ListBySyllabus(ctx, syllabusID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list workflow history")
	}
	return transitions, nil
}

// execute persists the transition and fans out notifications. Fanout
// failures never roll back the status change: the recorded transition is
// the durable fact, notifications are best-effort enrichment.
func (s *WorkflowService) execute(ctx context.Context, syllabus *models.Syllabus, to models.WorkflowStatus, actor *models.JWTClaims, comment *string) (*models.Syllabus, error) {
	record, err := s.workflow.Transition(ctx, repository.TransitionParams{
		SyllabusID: syllabus.ID,
		FromStatus: syllabus.Status,
		ToStatus:   to,
		ActorID:    actor.UserID,
		Comment:    comment,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "syllabus status changed concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist status transition")
	}

	syllabus.Status = to
	syllabus.UpdatedAt = record.CreatedAt
	if s.metrics != nil {
		s.metrics.RecordTransition(to)
	}
	s.logger.Info("workflow transition",
		zap.String("syllabus_id", syllabus.ID),
		zap.String("from", string(record.FromStatus)),
		zap.String("to", string(record.ToStatus)),
		zap.String("actor_id", actor.UserID),
	)

	if s.notifier != nil {
		switch to {
		case models.StatusPendingReview:
			s.notifier.NotifySubmitted(ctx, syllabus)
		case models.StatusPendingApproval:
			s.notifier.NotifyPendingApproval(ctx, syllabus)
		case models.StatusApproved:
			s.notifier.NotifyApproved(ctx, syllabus)
		case models.StatusPublished:
			s.notifier.NotifyPublished(ctx, syllabus)
		case models.StatusRejected:
			s.notifier.NotifyRejected(ctx, syllabus)
		}
	}
	return syllabus, nil
}

func (s *WorkflowService) load(ctx context.Context, syllabusID string) (*models.Syllabus, error) {
	syllabus, err := s.syllabi.GetByID(ctx, syllabusID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "syllabus not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load syllabus")
	}
	return syllabus, nil
}

func optionalComment(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
