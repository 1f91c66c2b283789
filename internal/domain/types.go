// Package domain defines the normalized domain types for project requirements.
// These types represent the core concepts independent of the GraphQL API structure.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Project represents the scope every requirement belongs to.
type Project struct {
	ID      string   // Project node ID
	Name    string   // Project display name
	Status  string   // Project activity state (e.g. "active", "archived")
	OwnerID string   // User ID of the project owner
	Members []string // User IDs of project members
}

// IsActive reports whether the project still accepts changes.
func (p Project) IsActive() bool {
	return p.Status == "" || strings.EqualFold(p.Status, ProjectStatusActive)
}

// HasMember reports whether userID owns or belongs to the project.
func (p Project) HasMember(userID string) bool {
	if userID == "" {
		return false
	}
	if p.OwnerID == userID {
		return true
	}
	for _, m := range p.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// User is the minimal user reference carried by requirements and the viewer.
type User struct {
	ID   string
	Name string
	Role Role
}

// Role is the coarse application role of a user.
type Role string

// Role constants.
const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
	RoleViewer  Role = "viewer"
)

// ProjectStatusActive is the only project status that allows mutation.
const ProjectStatusActive = "active"

// Status is the categorical state of a requirement.
type Status string

// Status values in board-column order.
const (
	StatusToDo       Status = "To do"
	StatusInProgress Status = "In progress"
	StatusReview     Status = "Review"
	StatusDone       Status = "Done"
)

var statuses = []Status{StatusToDo, StatusInProgress, StatusReview, StatusDone}

// Statuses returns the fixed, ordered list of statuses. The order defines
// board column order. The returned slice is a copy.
func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

// Valid reports whether s is one of the fixed status values.
func (s Status) Valid() bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Index returns the column position of s, or -1 for an unknown status.
func (s Status) Index() int {
	for i, v := range statuses {
		if v == s {
			return i
		}
	}
	return -1
}

// ParseStatus resolves a status name case-insensitively.
func ParseStatus(name string) (Status, error) {
	for _, v := range statuses {
		if strings.EqualFold(string(v), strings.TrimSpace(name)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", name)
}

// Record represents a requirement in a normalized format.
type Record struct {
	ID          string     // Stable node ID, immutable
	CustomID    string     // Human-readable code (e.g. "REQ-12"), immutable
	Title       string     // Short title
	Description string     // Free text body
	Status      Status     // Current categorical state
	Priority    string     // Free-form priority label
	AssignedTo  *User      // Assignee, nil when unassigned
	StartDate   *time.Time // Optional planned start
	DueDate     *time.Time // Optional deadline
	UpdatedAt   time.Time  // Set by the server on every successful update
	ProjectID   string     // Owning project
}

// Assignee returns the assignee display name, or "" when unassigned.
func (r Record) Assignee() string {
	if r.AssignedTo == nil {
		return ""
	}
	return r.AssignedTo.Name
}

// Page is one server-windowed slice of the collection.
type Page struct {
	Records []Record
	Total   int // Total matching records on the server, not len(Records)
}

// RecordPatch is the full mutable field set sent back on an update.
// Only Status differs from the stored record for a drag transition.
type RecordPatch struct {
	Title        string
	Description  string
	Status       Status
	Priority     string
	AssignedToID string // Empty when unassigned
	StartDate    *time.Time
	DueDate      *time.Time
	ProjectID    string
}

// PatchFrom builds a whole-record patch from r with the status replaced.
func PatchFrom(r Record, status Status) RecordPatch {
	p := RecordPatch{
		Title:       r.Title,
		Description: r.Description,
		Status:      status,
		Priority:    r.Priority,
		StartDate:   r.StartDate,
		DueDate:     r.DueDate,
		ProjectID:   r.ProjectID,
	}
	if r.AssignedTo != nil {
		p.AssignedToID = r.AssignedTo.ID
	}
	return p
}

// Validate checks the patch shape before it is sent.
func (p RecordPatch) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return NewGatewayError(KindValidation, "title is required", nil)
	}
	if !p.Status.Valid() {
		return NewGatewayError(KindValidation, fmt.Sprintf("invalid status %q", p.Status), nil)
	}
	if p.ProjectID == "" {
		return NewGatewayError(KindValidation, "project id is required", nil)
	}
	if p.StartDate != nil && p.DueDate != nil && p.DueDate.Before(*p.StartDate) {
		return NewGatewayError(KindValidation, "due date precedes start date", nil)
	}
	return nil
}
