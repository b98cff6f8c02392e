package models

import "time"

// Subscription is a (user, syllabus) opt-in for publication updates,
// unique per pair and managed by the user independently of the workflow.
type Subscription struct {
	ID                 string    `db:"id" json:"id"`
	UserID             string    `db:"user_id" json:"user_id"`
	SyllabusID         string    `db:"syllabus_id" json:"syllabus_id"`
	EmailNotifications bool      `db:"email_notifications" json:"email_notifications"`
	PushNotifications  bool      `db:"push_notifications" json:"push_notifications"`
	SubscribedAt       time.Time `db:"subscribed_at" json:"subscribed_at"`
}
