package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/reqboard/internal/access"
	"github.com/robby/reqboard/internal/domain"
	"github.com/robby/reqboard/internal/drag"
	"github.com/robby/reqboard/internal/engine"
	"github.com/robby/reqboard/internal/filter"
	"github.com/robby/reqboard/internal/projector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageRecord(t *testing.T, e *engine.Engine, id string) domain.Record {
	t.Helper()
	for _, r := range e.TableRecords() {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("record %s not on the windowed page", id)
	return domain.Record{}
}

func TestKeyboardDrag_MovesRecord(t *testing.T) {
	client := createTestClient()
	m, e := createTestModel(t, client, projector.ModeBoard, nil)

	m, _ = press(t, m, " ")
	require.Equal(t, drag.Dragging, e.DragState())
	assert.Equal(t, "1", e.DragPayload())
	assert.Equal(t, 0, m.dropTarget, "Drop target starts on the record's own column")
	assert.Contains(t, m.View(), "MOVE REQ-1")

	m, _ = press(t, m, "l")
	assert.Equal(t, 1, m.dropTarget)

	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	assert.Equal(t, drag.Reconciling, e.DragState())
	assert.Equal(t, drag.Reconciling, m.feedback.state)

	drainEngine(e, e.Update(cmd()))

	assert.Equal(t, drag.Idle, e.DragState())
	assert.Equal(t, drag.Idle, m.feedback.state)
	assert.Equal(t, []string{"1->In progress"}, client.updates)
	assert.Equal(t, domain.StatusInProgress, pageRecord(t, e, "1").Status)
	assert.Equal(t, engine.NotifySuccess, m.toast.kind)
	assert.Equal(t, "REQ-1 moved to In progress", m.toast.message)
}

func TestKeyboardDrag_NumberPicksColumn(t *testing.T) {
	m, e := createTestModel(t, createTestClient(), projector.ModeBoard, nil)

	m, _ = press(t, m, " ")
	m, _ = press(t, m, "4")
	assert.Equal(t, 3, m.dropTarget)

	m, _ = press(t, m, "9")
	assert.Equal(t, 3, m.dropTarget, "Out of range column is ignored")

	m, _ = press(t, m, "esc")
	assert.Equal(t, drag.Idle, e.DragState())
	assert.Equal(t, drag.Idle, m.feedback.state)
}

func TestKeyboardDrag_SameColumnMakesNoCall(t *testing.T) {
	client := createTestClient()
	m, e := createTestModel(t, client, projector.ModeBoard, nil)

	m, _ = press(t, m, " ")
	_, cmd := press(t, m, "enter")

	assert.Nil(t, cmd)
	assert.Equal(t, drag.Idle, e.DragState())
	assert.Empty(t, client.updates)
	assert.Empty(t, m.toast.message)
}

func TestKeyboardDrag_FailureNotifies(t *testing.T) {
	client := createTestClient()
	client.updateErr = domain.NewGatewayError(domain.KindServer, "rejected", nil)
	m, e := createTestModel(t, client, projector.ModeBoard, nil)

	m, _ = press(t, m, " ")
	m, _ = press(t, m, "l")
	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	drainEngine(e, e.Update(cmd()))

	assert.Equal(t, domain.StatusToDo, pageRecord(t, e, "1").Status)
	assert.Equal(t, engine.NotifyError, m.toast.kind)
	assert.Contains(t, m.toast.message, "Failed to move REQ-1")
}

func TestGrab_RefusedWithoutPermission(t *testing.T) {
	m, e := createTestModel(t, createTestClient(), projector.ModeBoard, access.Deny)

	m, _ = press(t, m, " ")

	assert.Equal(t, drag.Idle, e.DragState())
	assert.Equal(t, engine.NotifyError, m.toast.kind)
}

func TestGrab_RefusedWhileSaving(t *testing.T) {
	m, e := createTestModel(t, createTestClient(), projector.ModeBoard, nil)

	m, _ = press(t, m, " ")
	m, _ = press(t, m, "l")
	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)

	// The update is still in flight
	m, _ = press(t, m, "j")
	m, _ = press(t, m, " ")
	assert.Equal(t, drag.Reconciling, e.DragState())
	assert.Equal(t, "Another move is still being saved", m.toast.message)
}

func TestTable_ActionsColumnFollowsPredicate(t *testing.T) {
	allowed, _ := createTestModel(t, createTestClient(), projector.ModeTable, nil)
	assert.Contains(t, allowed.View(), projector.ColumnActions)

	denied, _ := createTestModel(t, createTestClient(), projector.ModeTable, access.Deny)
	assert.NotContains(t, denied.View(), projector.ColumnActions)
}

func TestTable_PredicateEvaluatedEveryRender(t *testing.T) {
	allow := true
	pred := func(*domain.Project, *domain.User) bool { return allow }
	m, _ := createTestModel(t, createTestClient(), projector.ModeTable, pred)

	assert.Contains(t, m.View(), projector.ColumnActions)
	allow = false
	assert.NotContains(t, m.View(), projector.ColumnActions)
}

func TestTable_RendersWindowedPage(t *testing.T) {
	m, _ := createTestModel(t, createTestClient(), projector.ModeTable, nil)

	view := m.View()
	assert.Contains(t, view, "REQ-1")
	assert.Contains(t, view, "REQ-3")
	assert.NotContains(t, view, "REQ-4", "Table reads the windowed page only")
	assert.Contains(t, view, "page 1/1")
}

func TestViewModeCycling(t *testing.T) {
	m, e := createTestModel(t, createTestClient(), projector.ModeTable, nil)

	m, _ = press(t, m, "tab")
	assert.Equal(t, projector.ModeGrid, e.ViewMode())
	m, _ = press(t, m, "tab")
	assert.Equal(t, projector.ModeBoard, e.ViewMode())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = updated.(RequirementsModel)
	assert.Equal(t, projector.ModeGrid, e.ViewMode())
	assert.Contains(t, m.View(), "REQ-6", "Grid reads the shadow copy without filters")
}

func TestGrid_CursorMovesByRow(t *testing.T) {
	m, _ := createTestModel(t, createTestClient(), projector.ModeGrid, nil)
	perRow := gridColumns(m.contentWidth())
	require.Equal(t, 4, perRow)

	m, _ = press(t, m, "l")
	assert.Equal(t, 1, m.gridCursor)
	m, _ = press(t, m, "j")
	assert.Equal(t, 5, m.gridCursor)
	m, _ = press(t, m, "j")
	assert.Equal(t, 5, m.gridCursor, "Should clamp at the last record")

	r, ok := m.selectedRecord()
	require.True(t, ok)
	assert.Equal(t, "6", r.ID)
}

func TestSearch_UpdatesFilterAndRestoresOnEscape(t *testing.T) {
	m, e := createTestModel(t, createTestClient(), projector.ModeBoard, nil)

	m, _ = press(t, m, "/")
	require.True(t, m.searchMode)

	m, cmd := press(t, m, "x")
	assert.NotNil(t, cmd)
	assert.Equal(t, "x", e.Filter().SearchTerm)
	assert.Equal(t, projector.WindowedPage, e.Source())

	m, _ = press(t, m, "esc")
	assert.False(t, m.searchMode)
	assert.Equal(t, "", e.Filter().SearchTerm)
	assert.Equal(t, projector.ShadowCopy, e.Source())
}

func TestStatusFilterKey_OpensPicker(t *testing.T) {
	m, _ := createTestModel(t, createTestClient(), projector.ModeBoard, nil)

	_, cmd := press(t, m, "s")
	require.NotNil(t, cmd)
	msg, ok := cmd().(openStatusPickerMsg)
	require.True(t, ok)
	assert.Equal(t, filter.All, msg.current)
}

func TestMouseDrag_DropsOnColumn(t *testing.T) {
	client := createTestClient()
	m, e := createTestModel(t, client, projector.ModeBoard, nil)

	updated, _ := m.Update(tea.MouseMsg{X: 5, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	m = updated.(RequirementsModel)
	require.Equal(t, drag.Dragging, e.DragState())
	assert.Equal(t, "2", e.DragPayload())

	updated, _ = m.Update(tea.MouseMsg{X: 95, Y: 6, Action: tea.MouseActionMotion})
	m = updated.(RequirementsModel)
	assert.Equal(t, 3, m.dropTarget)

	updated, cmd := m.Update(tea.MouseMsg{X: 65, Y: 6, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	m = updated.(RequirementsModel)
	require.NotNil(t, cmd)
	assert.Equal(t, 2, m.dropTarget)

	drainEngine(e, e.Update(cmd()))
	assert.Equal(t, []string{"2->Review"}, client.updates)
}

func TestMouseRelease_OutsideBoardCancels(t *testing.T) {
	m, e := createTestModel(t, createTestClient(), projector.ModeBoard, nil)

	updated, _ := m.Update(tea.MouseMsg{X: 5, Y: 4, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	m = updated.(RequirementsModel)
	require.Equal(t, drag.Dragging, e.DragState())

	_, cmd := m.Update(tea.MouseMsg{X: 5, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	assert.Nil(t, cmd)
	assert.Equal(t, drag.Idle, e.DragState())
}

func TestToastSink_Expires(t *testing.T) {
	sink := &toastSink{}
	assert.Empty(t, sink.View())

	sink.Notify(engine.NotifyError, "boom")
	assert.Contains(t, sink.View(), "boom")

	sink.at = time.Now().Add(-2 * toastTTL)
	assert.Empty(t, sink.View())
}

func TestRecordURL(t *testing.T) {
	r := domain.Record{ID: "r 1", ProjectID: "p1"}
	assert.Equal(t, "https://reqs.example.com/projects/p1/requirements/r%201", recordURL("https://reqs.example.com", r))
	assert.Empty(t, recordURL("", r))
}

func TestFormatTimeAgo(t *testing.T) {
	assert.Equal(t, "never", formatTimeAgo(time.Time{}))
	assert.Equal(t, "just now", formatTimeAgo(time.Now()))
	assert.Equal(t, "5m ago", formatTimeAgo(time.Now().Add(-5*time.Minute-time.Second)))
	assert.Equal(t, "2d ago", formatTimeAgo(time.Now().Add(-49*time.Hour)))
}

func TestNextPageSize(t *testing.T) {
	assert.Equal(t, 25, nextPageSize(10))
	assert.Equal(t, 10, nextPageSize(100))
	assert.Equal(t, 10, nextPageSize(7))
}

func TestHelpOverlay_FollowsMode(t *testing.T) {
	m, _ := createTestModel(t, createTestClient(), projector.ModeTable, nil)

	m, _ = press(t, m, "?")
	require.True(t, m.showHelp)
	view := m.View()
	assert.Contains(t, view, "Keys: table view")
	assert.Contains(t, view, "next table page")
	assert.NotContains(t, view, "next column")

	m, _ = press(t, m, "?")
	assert.False(t, m.showHelp)
}
