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

type subscriptionStore interface {
	Create(ctx context.Context, subscription *models.Subscription) error
	Delete(ctx context.Context, userID, syllabusID string) error
}

type subscriptionSyllabusStore interface {
	GetByID(ctx context.Context, id string) (*models.Syllabus, error)
}

// SubscriptionService manages per-user syllabus subscriptions. These are
// consulted by publication fanout, additively to the student broadcast.
type SubscriptionService struct {
	repo    subscriptionStore
	syllabi subscriptionSyllabusStore
	logger  *zap.Logger
}

// NewSubscriptionService constructs the service.
func NewSubscriptionService(repo subscriptionStore, syllabi subscriptionSyllabusStore, logger *zap.Logger) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{repo: repo, syllabi: syllabi, logger: logger}
}

// Subscribe registers the user for updates on a syllabus. A second
// subscribe on the same pair is a conflict.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, syllabusID string, email, push bool) (*models.Subscription, error) {
	if _, err := s.syllabi.GetByID(ctx, syllabusID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "syllabus not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load syllabus")
	}
	subscription := &models.Subscription{
		UserID:             userID,
		SyllabusID:         syllabusID,
		EmailNotifications: email,
		PushNotifications:  push,
	}
	if err := s.repo.Create(ctx, subscription); err != nil {
		if errors.Is(err, repository.ErrDuplicateSubscription) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "already subscribed to this syllabus")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subscription")
	}
	return subscription, nil
}

// Unsubscribe removes the user's subscription for a syllabus.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, syllabusID string) error {
	if err := s.repo.Delete(ctx, userID, syllabusID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "no subscription for this syllabus")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subscription")
	}
	return nil
}
