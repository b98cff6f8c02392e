package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/smd-api/internal/models"
)

// ErrDuplicateSubscription indicates the (user, syllabus) pair already has
// a subscription row.
var ErrDuplicateSubscription = errors.New("subscription already exists")

// SubscriptionRepository persists syllabus subscriptions. The table has a
// unique constraint on (user_id, syllabus_id).
type SubscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository constructs the repository.
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create inserts a subscription, translating the unique-violation error so
// callers do not depend on driver internals.
func (r *SubscriptionRepository) Create(ctx context.Context, subscription *models.Subscription) error {
	if subscription.ID == "" {
		subscription.ID = uuid.NewString()
	}
	if subscription.SubscribedAt.IsZero() {
		subscription.SubscribedAt = time.Now().UTC()
	}
	const query = `INSERT INTO syllabus_subscriptions (id, user_id, syllabus_id, email_notifications, push_notifications, subscribed_at)
	VALUES (:id, :user_id, :syllabus_id, :email_notifications, :push_notifications, :subscribed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subscription); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateSubscription
		}
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

// Get returns the subscription for a (user, syllabus) pair.
func (r *SubscriptionRepository) Get(ctx context.Context, userID, syllabusID string) (*models.Subscription, error) {
	const query = `SELECT id, user_id, syllabus_id, email_notifications, push_notifications, subscribed_at
	FROM syllabus_subscriptions WHERE user_id = $1 AND syllabus_id = $2`
	var subscription models.Subscription
	if err := r.db.GetContext(ctx, &subscription, query, userID, syllabusID); err != nil {
		return nil, err
	}
	return &subscription, nil
}

// Delete removes the subscription for a (user, syllabus) pair, returning
// sql.ErrNoRows when none exists.
func (r *SubscriptionRepository) Delete(ctx context.Context, userID, syllabusID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM syllabus_subscriptions WHERE user_id = $1 AND syllabus_id = $2", userID, syllabusID)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check subscription delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListBySyllabus returns every subscription for a syllabus.
func (r *SubscriptionRepository) ListBySyllabus(ctx context.Context, syllabusID string) ([]models.Subscription, error) {
	const query = `SELECT id, user_id, syllabus_id, email_notifications, push_notifications, subscribed_at
	FROM syllabus_subscriptions WHERE syllabus_id = $1 ORDER BY subscribed_at ASC`
	var subscriptions []models.Subscription
	if err := r.db.SelectContext(ctx, &subscriptions, query, syllabusID); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subscriptions, nil
}
