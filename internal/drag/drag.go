// Package drag implements the state machine that turns a drag-and-drop gesture
// into a single status update request.
//
//	Idle -> Dragging(id) -> Dropped(id, target) -> Reconciling -> Idle
//	                     \-> Idle (cancel)      \-> Idle (same column)
//
// The controller never talks to the network and never touches the store; it
// only decides whether a request is needed and builds it. Visual feedback
// subscribes to transitions and is purely cosmetic.
package drag

import (
	"errors"
	"fmt"

	"github.com/robby/reqboard/internal/domain"
)

var (
	// ErrBusy indicates a drag is already in progress or awaiting confirmation.
	ErrBusy = errors.New("drag already in progress")
	// ErrNotDragging indicates a drop or cancel without a preceding drag start.
	ErrNotDragging = errors.New("nothing is being dragged")
	// ErrNotReconciling indicates Finish was called with no request in flight.
	ErrNotReconciling = errors.New("no update in flight")
	// ErrInvalidTarget indicates a drop target outside the status enum.
	ErrInvalidTarget = errors.New("invalid drop target")
)

// State is a drag controller state.
type State int

// Controller states.
const (
	Idle State = iota
	Dragging
	Dropped
	Reconciling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Dropped:
		return "dropped"
	case Reconciling:
		return "reconciling"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Transition describes one state change.
type Transition struct {
	From     State
	To       State
	RecordID string
	Target   domain.Status // Set once dropped
}

// Listener observes transitions.
type Listener func(Transition)

// RecordLookup resolves a record's current state by ID.
type RecordLookup interface {
	Record(id string) (domain.Record, error)
}

// Request is the update the caller must send after a non-trivial drop.
type Request struct {
	RecordID  string
	ProjectID string
	From      domain.Status
	Patch     domain.RecordPatch
}

// Controller is the drag-transition state machine. Not safe for concurrent use.
type Controller struct {
	state     State
	recordID  string // Drag payload
	target    domain.Status
	listeners []Listener
}

// New creates an idle controller.
func New() *Controller {
	return &Controller{}
}

// Subscribe registers a listener called after every transition.
func (c *Controller) Subscribe(l Listener) {
	c.listeners = append(c.listeners, l)
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Payload returns the ID of the dragged record, or "" when idle.
func (c *Controller) Payload() string {
	return c.recordID
}

// Target returns the drop target once dropped.
func (c *Controller) Target() domain.Status {
	return c.target
}

// Start begins dragging recordID. Whether the user may drag at all is decided
// by the caller before calling Start.
func (c *Controller) Start(recordID string) error {
	if c.state != Idle {
		return ErrBusy
	}
	if recordID == "" {
		return errors.New("empty drag payload")
	}
	c.recordID = recordID
	c.transition(Dragging)
	return nil
}

// Cancel abandons a drag that has not been dropped yet.
func (c *Controller) Cancel() error {
	if c.state != Dragging {
		return ErrNotDragging
	}
	c.transition(Idle)
	c.reset()
	return nil
}

// Drop releases the dragged record over the target column. It looks up the
// record's current status; dropping onto the same status returns to Idle with
// a nil request. Otherwise the controller moves to Reconciling and returns the
// whole-record update the caller must send.
func (c *Controller) Drop(target domain.Status, records RecordLookup) (*Request, error) {
	if c.state != Dragging {
		return nil, ErrNotDragging
	}
	if !target.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}

	c.target = target
	c.transition(Dropped)

	record, err := records.Record(c.recordID)
	if err != nil {
		c.transition(Idle)
		c.reset()
		return nil, fmt.Errorf("look up dragged record: %w", err)
	}

	if record.Status == target {
		c.transition(Idle)
		c.reset()
		return nil, nil
	}

	req := &Request{
		RecordID:  record.ID,
		ProjectID: record.ProjectID,
		From:      record.Status,
		Patch:     domain.PatchFrom(record, target),
	}
	c.transition(Reconciling)
	return req, nil
}

// Finish returns to Idle once the update has been confirmed or rejected.
func (c *Controller) Finish() error {
	if c.state != Reconciling {
		return ErrNotReconciling
	}
	c.transition(Idle)
	c.reset()
	return nil
}

func (c *Controller) transition(to State) {
	t := Transition{From: c.state, To: to, RecordID: c.recordID, Target: c.target}
	c.state = to
	for _, l := range c.listeners {
		l(t)
	}
}

func (c *Controller) reset() {
	c.recordID = ""
	c.target = ""
}
