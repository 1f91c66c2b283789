package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatuses_Order(t *testing.T) {
	assert.Equal(t, []Status{StatusToDo, StatusInProgress, StatusReview, StatusDone}, Statuses())

	// Mutating the returned slice must not leak into the enum
	s := Statuses()
	s[0] = "Bogus"
	assert.Equal(t, StatusToDo, Statuses()[0])
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("  done ")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, st)

	_, err = ParseStatus("Blocked")
	assert.Error(t, err)

	assert.Equal(t, 1, StatusInProgress.Index())
	assert.Equal(t, -1, Status("Blocked").Index())
}

func TestPatchFrom_CarriesWholeRecord(t *testing.T) {
	start := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	due := start.Add(48 * time.Hour)
	r := Record{
		ID:          "r1",
		CustomID:    "REQ-1",
		Title:       "Login",
		Description: "Users can log in",
		Status:      StatusToDo,
		Priority:    "high",
		AssignedTo:  &User{ID: "u1", Name: "Ana"},
		StartDate:   &start,
		DueDate:     &due,
		ProjectID:   "p1",
	}

	p := PatchFrom(r, StatusDone)
	assert.Equal(t, RecordPatch{
		Title:        "Login",
		Description:  "Users can log in",
		Status:       StatusDone,
		Priority:     "high",
		AssignedToID: "u1",
		StartDate:    &start,
		DueDate:      &due,
		ProjectID:    "p1",
	}, p)
	require.NoError(t, p.Validate())
}

func TestRecordPatch_Validate(t *testing.T) {
	start := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)

	cases := map[string]RecordPatch{
		"empty title":    {Status: StatusDone, ProjectID: "p"},
		"unknown status": {Title: "t", Status: "Blocked", ProjectID: "p"},
		"no project":     {Title: "t", Status: StatusDone},
		"dates reversed": {Title: "t", Status: StatusDone, ProjectID: "p", StartDate: &start, DueDate: &before},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			err := p.Validate()
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestGatewayError_Is(t *testing.T) {
	err := fmt.Errorf("fetch page: %w", NewGatewayError(KindNetwork, "dial", errors.New("refused")))
	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrServer)

	var gerr *GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, KindNetwork, gerr.Kind)
	assert.Contains(t, err.Error(), "network: dial: refused")
}

func TestProject_Membership(t *testing.T) {
	p := Project{ID: "p1", OwnerID: "u1", Members: []string{"u2"}, Status: "Active"}
	assert.True(t, p.IsActive())
	assert.True(t, p.HasMember("u1"))
	assert.True(t, p.HasMember("u2"))
	assert.False(t, p.HasMember("u3"))
	assert.False(t, p.HasMember(""))

	p.Status = "archived"
	assert.False(t, p.IsActive())
}
