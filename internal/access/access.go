// Package access decides whether the current user may change requirements.
package access

import "github.com/robby/reqboard/internal/domain"

// Predicate reports whether user may mutate requirements of project.
// It is evaluated on every render and never cached.
type Predicate func(project *domain.Project, user *domain.User) bool

// CanMutate is the default predicate: the project must be active, viewers never
// mutate, admins always may, and everybody else must own or belong to the project.
func CanMutate(project *domain.Project, user *domain.User) bool {
	if project == nil || user == nil {
		return false
	}
	if !project.IsActive() {
		return false
	}
	switch user.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleViewer:
		return false
	}
	return project.HasMember(user.ID)
}

// Deny never allows mutation.
func Deny(*domain.Project, *domain.User) bool { return false }
