package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smd-api/internal/models"
	appErrors "github.com/noah-isme/smd-api/pkg/errors"
)

type memoryNotificationStore struct {
	created   []*models.Notification
	createErr error
	markErr   error
}

func (s *memoryNotificationStore) Create(ctx context.Context, notification *models.Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	clone := *notification
	s.created = append(s.created, &clone)
	return nil
}

func (s *memoryNotificationStore) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	result := make([]models.Notification, 0)
	for _, n := range s.created {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, *n)
	}
	return result, nil
}

func (s *memoryNotificationStore) CountUnread(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, n := range s.created {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *memoryNotificationStore) MarkRead(ctx context.Context, id, userID string) error {
	if s.markErr != nil {
		return s.markErr
	}
	for _, n := range s.created {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *memoryNotificationStore) MarkAllRead(ctx context.Context, userID string) error {
	for _, n := range s.created {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

type stubAudience struct {
	byRole map[models.UserRole][]models.User
}

func (s *stubAudience) FindByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	return s.byRole[role], nil
}

type stubSubscribers struct {
	subscriptions []models.Subscription
}

func (s *stubSubscribers) ListBySyllabus(ctx context.Context, syllabusID string) ([]models.Subscription, error) {
	return s.subscriptions, nil
}

type recordingSink struct {
	delivered  []string
	deliverErr error
}

func (s *recordingSink) Deliver(ctx context.Context, recipientID string, payload interface{}) error {
	if s.deliverErr != nil {
		return s.deliverErr
	}
	s.delivered = append(s.delivered, recipientID)
	return nil
}

type stubFanoutObserver struct {
	total int
}

func (o *stubFanoutObserver) RecordFanout(notificationType models.NotificationType, recipients int) {
	o.total += recipients
}

func usersWithIDs(ids ...string) []models.User {
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, models.User{ID: id})
	}
	return users
}

func publishedSyllabus() *models.Syllabus {
	return &models.Syllabus{
		ID:         "syl-1",
		CourseCode: "CS101",
		CourseName: "Intro to Computing",
		Status:     models.StatusPublished,
		CreatedBy:  "lecturer-1",
	}
}

func TestNotifySubmittedTargetsHODs(t *testing.T) {
	store := &memoryNotificationStore{}
	audience := &stubAudience{byRole: map[models.UserRole][]models.User{
		models.RoleHOD: usersWithIDs("hod-1", "hod-2"),
	}}
	svc := NewNotificationService(store, audience, &stubSubscribers{}, nil, nil, nil)

	svc.NotifySubmitted(context.Background(), publishedSyllabus())

	require.Len(t, store.created, 2)
	assert.Equal(t, "New Syllabus for Review", store.created[0].Title)
	assert.Equal(t, "Syllabus 'Intro to Computing' has been submitted for review", store.created[0].Message)
	assert.Equal(t, models.NotificationSyllabusSubmitted, store.created[0].Type)
}

func TestNotifyPendingApprovalTargetsAcademicAffairs(t *testing.T) {
	store := &memoryNotificationStore{}
	audience := &stubAudience{byRole: map[models.UserRole][]models.User{
		models.RoleAcademicAffairs: usersWithIDs("aa-1"),
	}}
	svc := NewNotificationService(store, audience, &stubSubscribers{}, nil, nil, nil)

	svc.NotifyPendingApproval(context.Background(), publishedSyllabus())

	require.Len(t, store.created, 1)
	assert.Equal(t, "aa-1", store.created[0].UserID)
	assert.Equal(t, "Syllabus Approved by HoD", store.created[0].Title)
	assert.Equal(t, "Syllabus 'Intro to Computing' has been approved by HoD and needs final approval", store.created[0].Message)
}

func TestNotifyApprovedTargetsPrincipal(t *testing.T) {
	store := &memoryNotificationStore{}
	audience := &stubAudience{byRole: map[models.UserRole][]models.User{
		models.RolePrincipal: usersWithIDs("p-1"),
	}}
	svc := NewNotificationService(store, audience, &stubSubscribers{}, nil, nil, nil)

	svc.NotifyApproved(context.Background(), publishedSyllabus())

	require.Len(t, store.created, 1)
	assert.Equal(t, "Syllabus Ready for Final Approval", store.created[0].Title)
	assert.Equal(t, "Syllabus 'Intro to Computing' has been approved and is ready for publication", store.created[0].Message)
}

func TestNotifyRejectedOnlyCreator(t *testing.T) {
	store := &memoryNotificationStore{}
	svc := NewNotificationService(store, &stubAudience{}, &stubSubscribers{}, nil, nil, nil)

	svc.NotifyRejected(context.Background(), publishedSyllabus())

	require.Len(t, store.created, 1)
	assert.Equal(t, "lecturer-1", store.created[0].UserID)
	assert.Equal(t, "Syllabus Rejected", store.created[0].Title)
	assert.Equal(t, "Your syllabus 'Intro to Computing' has been rejected. Please review and resubmit.", store.created[0].Message)
	assert.Equal(t, models.NotificationSyllabusRejected, store.created[0].Type)
}

func TestNotifyPublishedDeduplicatesRecipients(t *testing.T) {
	store := &memoryNotificationStore{}
	audience := &stubAudience{byRole: map[models.UserRole][]models.User{
		// The creator also appears in the student broadcast.
		models.RoleStudent: usersWithIDs("student-1", "student-2", "lecturer-1"),
	}}
	subscribers := &stubSubscribers{subscriptions: []models.Subscription{
		{UserID: "student-1", SyllabusID: "syl-1"},
		{UserID: "outsider-1", SyllabusID: "syl-1"},
		{UserID: "lecturer-1", SyllabusID: "syl-1"},
	}}
	sink := &recordingSink{}
	observer := &stubFanoutObserver{}
	svc := NewNotificationService(store, audience, subscribers, sink, observer, nil)

	svc.NotifyPublished(context.Background(), publishedSyllabus())

	// creator + two students + one outside subscriber, each exactly once
	require.Len(t, store.created, 4)
	counts := make(map[string]int)
	for _, n := range store.created {
		counts[n.UserID]++
	}
	assert.Equal(t, map[string]int{
		"lecturer-1": 1,
		"student-1":  1,
		"student-2":  1,
		"outsider-1": 1,
	}, counts)
	assert.Len(t, sink.delivered, 4)
	assert.Equal(t, 4, observer.total)

	// The creator gets the personal message, everyone else the broadcast.
	for _, n := range store.created {
		if n.UserID == "lecturer-1" {
			assert.Equal(t, "Syllabus Published", n.Title)
			assert.Equal(t, "Your syllabus 'Intro to Computing' has been published", n.Message)
		} else {
			assert.Equal(t, "New Syllabus Available", n.Title)
			assert.Equal(t, "Syllabus 'Intro to Computing' has been published", n.Message)
		}
		assert.Equal(t, models.NotificationSyllabusPublished, n.Type)
	}
}

func TestFanoutSinkFailureDoesNotLosePersistence(t *testing.T) {
	store := &memoryNotificationStore{}
	sink := &recordingSink{deliverErr: errors.New("redis down")}
	svc := NewNotificationService(store, &stubAudience{}, &stubSubscribers{}, sink, nil, nil)

	svc.NotifyRejected(context.Background(), publishedSyllabus())

	require.Len(t, store.created, 1)
	assert.Empty(t, sink.delivered)
}

func TestFanoutPersistFailureSkipsSink(t *testing.T) {
	store := &memoryNotificationStore{createErr: errors.New("insert failed")}
	sink := &recordingSink{}
	observer := &stubFanoutObserver{}
	svc := NewNotificationService(store, &stubAudience{}, &stubSubscribers{}, sink, observer, nil)

	svc.NotifyRejected(context.Background(), publishedSyllabus())

	assert.Empty(t, store.created)
	assert.Empty(t, sink.delivered)
	assert.Zero(t, observer.total)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	store := &memoryNotificationStore{created: []*models.Notification{
		{ID: "n-1", UserID: "user-1"},
	}}
	svc := NewNotificationService(store, &stubAudience{}, &stubSubscribers{}, nil, nil, nil)

	err := svc.MarkRead(context.Background(), "n-1", "user-2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.MarkRead(context.Background(), "n-1", "user-1"))
	count, err := svc.UnreadCount(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListUnreadOnly(t *testing.T) {
	store := &memoryNotificationStore{created: []*models.Notification{
		{ID: "n-1", UserID: "user-1", IsRead: true},
		{ID: "n-2", UserID: "user-1"},
		{ID: "n-3", UserID: "user-2"},
	}}
	svc := NewNotificationService(store, &stubAudience{}, &stubSubscribers{}, nil, nil, nil)

	unread, err := svc.List(context.Background(), "user-1", true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "n-2", unread[0].ID)

	all, err := svc.List(context.Background(), "user-1", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
