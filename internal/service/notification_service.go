package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/smd-api/internal/models"
	appErrors "github.com/noah-isme/smd-api/pkg/errors"
)

type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// audienceResolver resolves role-based audiences at dispatch time. Role
// membership is queried fresh on every fanout, never cached.
type audienceResolver interface {
	FindByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

type subscriberResolver interface {
	ListBySyllabus(ctx context.Context, syllabusID string) ([]models.Subscription, error)
}

// NotificationSink is the external real-time delivery channel. Delivery is
// fire-and-forget; errors are logged by the service and never surface to
// the triggering transition.
type NotificationSink interface {
	Deliver(ctx context.Context, recipientID string, payload interface{}) error
}

type fanoutObserver interface {
	RecordFanout(notificationType models.NotificationType, recipients int)
}

// NotificationService creates notifications for workflow events and serves
// each user's inbox.
type NotificationService struct {
	repo        notificationStore
	users       audienceResolver
	subscribers subscriberResolver
	sink        NotificationSink
	metrics     fanoutObserver
	logger      *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(repo notificationStore, users audienceResolver, subscribers subscriberResolver, sink NotificationSink, metrics fanoutObserver, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, users: users, subscribers: subscribers, sink: sink, metrics: metrics, logger: logger}
}

// NotifySubmitted tells every head of department a syllabus awaits review.
func (s *NotificationService) NotifySubmitted(ctx context.Context, syllabus *models.Syllabus) {
	recipients := s.roleAudience(ctx, models.RoleHOD)
	s.fanout(ctx, recipients,
		"New Syllabus for Review",
		fmt.Sprintf("Syllabus '%s' has been submitted for review", syllabus.CourseName),
		models.NotificationSyllabusSubmitted,
	)
}

// NotifyPendingApproval tells academic affairs a syllabus passed HoD review.
func (s *NotificationService) NotifyPendingApproval(ctx context.Context, syllabus *models.Syllabus) {
	recipients := s.roleAudience(ctx, models.RoleAcademicAffairs)
	s.fanout(ctx, recipients,
		"Syllabus Approved by HoD",
		fmt.Sprintf("Syllabus '%s' has been approved by HoD and needs final approval", syllabus.CourseName),
		models.NotificationSyllabusApproved,
	)
}

// NotifyApproved tells the principal a syllabus is ready for publication.
func (s *NotificationService) NotifyApproved(ctx context.Context, syllabus *models.Syllabus) {
	recipients := s.roleAudience(ctx, models.RolePrincipal)
	s.fanout(ctx, recipients,
		"Syllabus Ready for Final Approval",
		fmt.Sprintf("Syllabus '%s' has been approved and is ready for publication", syllabus.CourseName),
		models.NotificationSyllabusApproved,
	)
}

// NotifyPublished notifies the creator, the student broadcast audience and
// registered subscribers. Recipients are deduplicated within the call so a
// creator who is also subscribed receives exactly one notification.
func (s *NotificationService) NotifyPublished(ctx context.Context, syllabus *models.Syllabus) {
	seen := map[string]struct{}{syllabus.CreatedBy: {}}
	s.fanout(ctx, []string{syllabus.CreatedBy},
		"Syllabus Published",
		fmt.Sprintf("Your syllabus '%s' has been published", syllabus.CourseName),
		models.NotificationSyllabusPublished,
	)

	broadcast := make([]string, 0)
	for _, userID := range s.roleAudience(ctx, models.RoleStudent) {
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		broadcast = append(broadcast, userID)
	}
	if s.subscribers != nil {
		subscriptions, err := s.subscribers.ListBySyllabus(ctx, syllabus.ID)
		if err != nil {
			s.logger.Warn("failed to resolve subscribers", zap.String("syllabus_id", syllabus.ID), zap.Error(err))
		}
		for _, subscription := range subscriptions {
			if _, ok := seen[subscription.UserID]; ok {
				continue
			}
			seen[subscription.UserID] = struct{}{}
			broadcast = append(broadcast, subscription.UserID)
		}
	}
	s.fanout(ctx, broadcast,
		"New Syllabus Available",
		fmt.Sprintf("Syllabus '%s' has been published", syllabus.CourseName),
		models.NotificationSyllabusPublished,
	)
}

// NotifyRejected notifies only the creator.
func (s *NotificationService) NotifyRejected(ctx context.Context, syllabus *models.Syllabus) {
	s.fanout(ctx, []string{syllabus.CreatedBy},
		"Syllabus Rejected",
		fmt.Sprintf("Your syllabus '%s' has been rejected. Please review and resubmit.", syllabus.CourseName),
		models.NotificationSyllabusRejected,
	)
}

// List returns the user's notifications.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// UnreadCount returns how many notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread notifications")
	}
	return count, nil
}

// MarkRead flags one notification as read for its owner.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

// MarkAllRead flags every unread notification for the user.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return nil
}

// roleAudience resolves the current members of a role to recipient ids.
func (s *NotificationService) roleAudience(ctx context.Context, role models.UserRole) []string {
	users, err := s.users.FindByRole(ctx, role)
	if err != nil {
		s.logger.Warn("failed to resolve role audience", zap.String("role", string(role)), zap.Error(err))
		return nil
	}
	recipients := make([]string, 0, len(users))
	for _, user := range users {
		recipients = append(recipients, user.ID)
	}
	return recipients
}

// fanout persists one notification per recipient and hands each to the
// realtime sink. Sink failures are logged and swallowed.
func (s *NotificationService) fanout(ctx context.Context, recipients []string, title, message string, notificationType models.NotificationType) {
	delivered := 0
	for _, recipientID := range recipients {
		notification := &models.Notification{
			UserID:  recipientID,
			Title:   title,
			Message: message,
			Type:    notificationType,
		}
		if err := s.repo.Create(ctx, notification); err != nil {
			s.logger.Warn("failed to persist notification",
				zap.String("user_id", recipientID),
				zap.String("type", string(notificationType)),
				zap.Error(err),
			)
			continue
		}
		delivered++
		if s.sink != nil {
			if err := s.sink.Deliver(ctx, recipientID, notification); err != nil {
				s.logger.Warn("realtime delivery failed",
					zap.String("user_id", recipientID),
					zap.String("notification_id", notification.ID),
					zap.Error(err),
				)
			}
		}
	}
	if s.metrics != nil && delivered > 0 {
		s.metrics.RecordFanout(notificationType, delivered)
	}
}
