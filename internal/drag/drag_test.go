package drag

import (
	"errors"
	"testing"

	"github.com/robby/reqboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLookup serves records from a map.
type fakeLookup map[string]domain.Record

func (f fakeLookup) Record(id string) (domain.Record, error) {
	r, ok := f[id]
	if !ok {
		return domain.Record{}, errors.New("record not found")
	}
	return r, nil
}

func createTestLookup() fakeLookup {
	return fakeLookup{
		"1": {ID: "1", Title: "Login", Description: "d", Status: domain.StatusToDo, ProjectID: "p1",
			AssignedTo: &domain.User{ID: "u1", Name: "Ana"}},
		"2": {ID: "2", Title: "Logout", Status: domain.StatusDone, ProjectID: "p1"},
	}
}

func recordTransitions(c *Controller) *[]Transition {
	var seen []Transition
	c.Subscribe(func(t Transition) { seen = append(seen, t) })
	return &seen
}

func states(ts []Transition) []State {
	out := make([]State, len(ts))
	for i, t := range ts {
		out[i] = t.To
	}
	return out
}

func TestDrop_ChangesColumn(t *testing.T) {
	c := New()
	seen := recordTransitions(c)

	require.NoError(t, c.Start("1"))
	assert.Equal(t, Dragging, c.State())
	assert.Equal(t, "1", c.Payload())

	req, err := c.Drop(domain.StatusDone, createTestLookup())
	require.NoError(t, err)
	require.NotNil(t, req)

	assert.Equal(t, Reconciling, c.State())
	assert.Equal(t, "1", req.RecordID)
	assert.Equal(t, "p1", req.ProjectID)
	assert.Equal(t, domain.StatusToDo, req.From)
	assert.Equal(t, domain.RecordPatch{
		Title:        "Login",
		Description:  "d",
		Status:       domain.StatusDone,
		AssignedToID: "u1",
		ProjectID:    "p1",
	}, req.Patch)

	require.NoError(t, c.Finish())
	assert.Equal(t, Idle, c.State())
	assert.Empty(t, c.Payload())

	assert.Equal(t, []State{Dragging, Dropped, Reconciling, Idle}, states(*seen))
	assert.Equal(t, domain.StatusDone, (*seen)[1].Target)
}

func TestDrop_SameColumnIsNoop(t *testing.T) {
	c := New()
	seen := recordTransitions(c)

	require.NoError(t, c.Start("2"))
	req, err := c.Drop(domain.StatusDone, createTestLookup())
	require.NoError(t, err)
	assert.Nil(t, req)
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, []State{Dragging, Dropped, Idle}, states(*seen))

	// Finish has nothing to finish
	assert.ErrorIs(t, c.Finish(), ErrNotReconciling)
}

func TestDrop_UnknownRecordReturnsToIdle(t *testing.T) {
	c := New()
	require.NoError(t, c.Start("ghost"))

	req, err := c.Drop(domain.StatusDone, createTestLookup())
	assert.Error(t, err)
	assert.Nil(t, req)
	assert.Equal(t, Idle, c.State())
}

func TestDrop_InvalidTargetKeepsDragging(t *testing.T) {
	c := New()
	require.NoError(t, c.Start("1"))

	_, err := c.Drop("Blocked", createTestLookup())
	assert.ErrorIs(t, err, ErrInvalidTarget)
	assert.Equal(t, Dragging, c.State())
}

func TestIllegalTransitions(t *testing.T) {
	c := New()

	_, err := c.Drop(domain.StatusDone, createTestLookup())
	assert.ErrorIs(t, err, ErrNotDragging)
	assert.ErrorIs(t, c.Cancel(), ErrNotDragging)
	assert.Error(t, c.Start(""))

	require.NoError(t, c.Start("1"))
	assert.ErrorIs(t, c.Start("2"), ErrBusy)

	_, err = c.Drop(domain.StatusReview, createTestLookup())
	require.NoError(t, err)

	// One update in flight at a time
	assert.ErrorIs(t, c.Start("2"), ErrBusy)
	assert.ErrorIs(t, c.Cancel(), ErrNotDragging)
}

func TestCancel(t *testing.T) {
	c := New()
	seen := recordTransitions(c)

	require.NoError(t, c.Start("1"))
	require.NoError(t, c.Cancel())
	assert.Equal(t, Idle, c.State())
	assert.Empty(t, c.Payload())
	assert.Equal(t, []State{Dragging, Idle}, states(*seen))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "reconciling", Reconciling.String())
	assert.Equal(t, "state(9)", State(9).String())
}
