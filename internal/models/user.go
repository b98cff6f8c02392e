package models

import (
	"time"

	"github.com/lib/pq"
)

// UserRole represents the role tags used by the RBAC system and the
// workflow authorizer.
type UserRole string

const (
	RoleStudent         UserRole = "STUDENT"
	RoleLecturer        UserRole = "LECTURER"
	RoleHOD             UserRole = "HOD"
	RoleAcademicAffairs UserRole = "ACADEMIC_AFFAIRS"
	RolePrincipal       UserRole = "PRINCIPAL"
	RoleSystemAdmin     UserRole = "SYSTEM_ADMIN"
)

// AllRoles lists every known role tag.
var AllRoles = []UserRole{
	RoleStudent,
	RoleLecturer,
	RoleHOD,
	RoleAcademicAffairs,
	RolePrincipal,
	RoleSystemAdmin,
}

// ValidRole reports whether the tag is a known role.
func ValidRole(role UserRole) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents an application user. A user may hold several roles at
// once (a lecturer who is also head of department), stored as a text array.
type User struct {
	ID           string         `db:"id" json:"id"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	FullName     string         `db:"full_name" json:"full_name"`
	Department   string         `db:"department" json:"department"`
	Roles        pq.StringArray `db:"roles" json:"roles"`
	Active       bool           `db:"active" json:"active"`
	LastLogin    *time.Time     `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role UserRole) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if UserRole(r) == role {
			return true
		}
	}
	return false
}

// RoleSet returns the user's roles as typed tags.
func (u *User) RoleSet() []UserRole {
	if u == nil {
		return nil
	}
	roles := make([]UserRole, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, UserRole(r))
	}
	return roles
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role     *UserRole
	Active   *bool
	Search   string
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
