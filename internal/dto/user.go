package dto

// CreateUserRequest is the admin payload for provisioning an account.
type CreateUserRequest struct {
	Email      string   `json:"email" binding:"required,email"`
	Password   string   `json:"password" binding:"required,min=8"`
	FullName   string   `json:"full_name" binding:"required"`
	Department string   `json:"department"`
	Roles      []string `json:"roles" binding:"required,min=1"`
}

// SubscriptionRequest tunes per-subscription delivery preferences.
type SubscriptionRequest struct {
	EmailNotifications *bool `json:"email_notifications"`
	PushNotifications  *bool `json:"push_notifications"`
}
