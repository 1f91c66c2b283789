package projector

import (
	"fmt"
	"testing"
	"time"

	"github.com/robby/reqboard/internal/domain"
	"github.com/robby/reqboard/internal/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMode(t *testing.T) {
	m, err := ParseMode("Board")
	require.NoError(t, err)
	assert.Equal(t, ModeBoard, m)

	_, err = ParseMode("list")
	assert.Error(t, err)

	assert.Equal(t, ModeGrid, ModeTable.Next())
	assert.Equal(t, ModeTable, ModeBoard.Next())
	assert.Equal(t, "grid", ModeGrid.String())
}

func TestServerWindow(t *testing.T) {
	w := ServerWindow{Index: 0, Size: 10, Total: 25}
	assert.Equal(t, 3, w.PageCount())
	assert.False(t, w.HasPrev())
	assert.True(t, w.HasNext())

	w.Index = 2
	assert.True(t, w.HasPrev())
	assert.False(t, w.HasNext())

	assert.Equal(t, 1, ServerWindow{Size: 10}.PageCount())
}

func createTestRecords(n int) []domain.Record {
	out := make([]domain.Record, n)
	for i := range out {
		out[i] = domain.Record{ID: fmt.Sprint(i)}
	}
	return out
}

func TestClientWindow(t *testing.T) {
	records := createTestRecords(7)

	w := ClientWindow{Index: 0, Size: 3}
	assert.Equal(t, 3, w.PageCount(len(records)))
	assert.Len(t, w.Apply(records), 3)

	w.Index = 2
	got := w.Apply(records)
	require.Len(t, got, 1)
	assert.Equal(t, "6", got[0].ID)

	// Out-of-range index clamps to the last page
	w.Index = 9
	assert.Equal(t, 2, w.Clamp(len(records)).Index)
	assert.Len(t, w.Apply(records), 1)

	// Empty input
	assert.Empty(t, ClientWindow{Index: 1, Size: 3}.Apply(nil))

	// Zero size disables client paging
	assert.Len(t, ClientWindow{}.Apply(records), 7)
}

func TestSourceFor(t *testing.T) {
	assert.Equal(t, ShadowCopy, SourceFor(filter.NewState()))
	assert.Equal(t, WindowedPage, SourceFor(filter.NewState().WithSearch("a")))
	assert.Equal(t, WindowedPage, SourceFor(filter.NewState().WithStatus(domain.StatusDone)))
}

func TestShowServerPager(t *testing.T) {
	none := filter.NewState()
	active := none.WithSearch("x")

	assert.True(t, ShowServerPager(ModeTable, none))
	assert.True(t, ShowServerPager(ModeTable, active))
	assert.True(t, ShowServerPager(ModeGrid, none))
	assert.False(t, ShowServerPager(ModeGrid, active))
	assert.True(t, ShowServerPager(ModeBoard, none))
	assert.False(t, ShowServerPager(ModeBoard, active))
}

func TestTableColumns_ByRole(t *testing.T) {
	readOnly := TableColumns(false)
	mutate := TableColumns(true)

	assert.Len(t, mutate, len(readOnly)+1)
	assert.Equal(t, ColumnActions, mutate[len(mutate)-1].Title)
	for _, c := range readOnly {
		assert.NotEqual(t, ColumnActions, c.Title)
	}
}

func TestTableRow(t *testing.T) {
	r := domain.Record{
		CustomID:  "REQ-1",
		Title:     "Login",
		Status:    domain.StatusReview,
		UpdatedAt: time.Date(2026, 5, 1, 9, 30, 0, 0, time.Local),
	}

	row := TableRow(r, TableColumns(true))
	assert.Equal(t, []string{"REQ-1", "Login", "Review", "unassigned", "2026-05-01 09:30", "move"}, row)

	r.AssignedTo = &domain.User{ID: "u1", Name: "Ana"}
	row = TableRow(r, TableColumns(false))
	assert.Equal(t, "Ana", row[3])
	assert.Len(t, row, 5)
}
