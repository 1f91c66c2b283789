package access

import (
	"testing"

	"github.com/robby/reqboard/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCanMutate(t *testing.T) {
	active := &domain.Project{ID: "p1", Status: "active", OwnerID: "owner", Members: []string{"member"}}
	archived := &domain.Project{ID: "p2", Status: "archived", OwnerID: "owner"}

	tests := []struct {
		name    string
		project *domain.Project
		user    *domain.User
		want    bool
	}{
		{"no project", nil, &domain.User{ID: "owner", Role: domain.RoleAdmin}, false},
		{"no user", active, nil, false},
		{"admin outside project", active, &domain.User{ID: "x", Role: domain.RoleAdmin}, true},
		{"owner", active, &domain.User{ID: "owner", Role: domain.RoleManager}, true},
		{"member", active, &domain.User{ID: "member", Role: domain.RoleMember}, true},
		{"stranger", active, &domain.User{ID: "x", Role: domain.RoleMember}, false},
		{"viewer member", active, &domain.User{ID: "member", Role: domain.RoleViewer}, false},
		{"archived admin", archived, &domain.User{ID: "owner", Role: domain.RoleAdmin}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMutate(tt.project, tt.user))
		})
	}
}

func TestDeny(t *testing.T) {
	assert.False(t, Deny(&domain.Project{}, &domain.User{Role: domain.RoleAdmin}))
}
