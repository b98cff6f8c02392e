package service

import "github.com/noah-isme/smd-api/internal/models"

// transitionRule annotates one legal status edge with the roles permitted
// to execute it. The review chain is a small fixed table, so authorization
// stays a pure lookup that can be tested exhaustively.
type transitionRule struct {
	from  models.WorkflowStatus
	to    models.WorkflowStatus
	roles []models.UserRole
}

var rejecterRoles = []models.UserRole{
	models.RoleHOD,
	models.RoleAcademicAffairs,
	models.RolePrincipal,
}

var transitionRules = []transitionRule{
	{from: models.StatusPendingReview, to: models.StatusPendingApproval, roles: []models.UserRole{models.RoleHOD}},
	{from: models.StatusPendingApproval, to: models.StatusApproved, roles: []models.UserRole{models.RoleAcademicAffairs}},
	{from: models.StatusApproved, to: models.StatusPublished, roles: []models.UserRole{models.RolePrincipal}},
	{from: models.StatusPendingReview, to: models.StatusRejected, roles: rejecterRoles},
	{from: models.StatusPendingApproval, to: models.StatusRejected, roles: rejecterRoles},
}

// AuthorizeTransition decides whether an actor holding the given roles may
// move a syllabus between the two states. System administrators may execute
// any pair. For everyone else the edge must be in the rule table and the
// actor must hold one of its roles; an edge without the required role is a
// deny, not a fallback allow. The function is pure so it can be verified
// against the full truth table.
func AuthorizeTransition(from, to models.WorkflowStatus, roles []models.UserRole) bool {
	for _, role := range roles {
		if role == models.RoleSystemAdmin {
			return true
		}
	}
	for _, rule := range transitionRules {
		if rule.from != from || rule.to != to {
			continue
		}
		for _, required := range rule.roles {
			for _, role := range roles {
				if role == required {
					return true
				}
			}
		}
		return false
	}
	return false
}
