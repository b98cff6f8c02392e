package models

import "time"

// NotificationType tags the workflow event that produced a notification.
type NotificationType string

const (
	NotificationSyllabusSubmitted NotificationType = "SYLLABUS_SUBMITTED"
	NotificationSyllabusApproved  NotificationType = "SYLLABUS_APPROVED"
	NotificationSyllabusPublished NotificationType = "SYLLABUS_PUBLISHED"
	NotificationSyllabusRejected  NotificationType = "SYLLABUS_REJECTED"
)

// Notification is owned by its recipient, not by the syllabus. Rows are
// created only as a side effect of an accepted workflow transition.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Type      NotificationType `db:"type" json:"type"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}
