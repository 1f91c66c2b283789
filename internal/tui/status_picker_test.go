package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/reqboard/internal/domain"
	"github.com/robby/reqboard/internal/filter"
	"github.com/robby/reqboard/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStats() stats.Stats {
	return stats.Compute([]domain.Record{
		{ID: "1", Status: domain.StatusToDo},
		{ID: "2", Status: domain.StatusDone},
		{ID: "3", Status: domain.StatusDone},
	})
}

func TestStatusPicker_StartsOnCurrent(t *testing.T) {
	picker := NewStatusPickerModel(domain.StatusReview, createTestStats())

	item, ok := picker.list.SelectedItem().(statusItem)
	require.True(t, ok)
	assert.Equal(t, domain.StatusReview, item.status)
}

func TestStatusPicker_ListsAllWithCounts(t *testing.T) {
	picker := NewStatusPickerModel(filter.All, createTestStats())

	items := picker.list.Items()
	require.Len(t, items, len(domain.Statuses())+1)
	assert.Equal(t, filter.All, items[0].(statusItem).status)
	assert.Equal(t, 3, items[0].(statusItem).count)
	assert.Equal(t, 2, items[4].(statusItem).count)

	view := picker.View()
	assert.Contains(t, view, "All statuses")
	assert.Contains(t, view, "Done (2)")
}

func TestStatusPicker_EnterSelects(t *testing.T) {
	picker := NewStatusPickerModel(filter.All, createTestStats())

	updated, _ := picker.Update(tea.KeyMsg{Type: tea.KeyDown})
	picker = updated.(StatusPickerModel)

	_, cmd := picker.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(StatusSelectedMsg)
	require.True(t, ok)
	assert.Equal(t, domain.StatusToDo, msg.Status)
}

func TestStatusPicker_EscapeGoesBack(t *testing.T) {
	picker := NewStatusPickerModel(filter.All, createTestStats())

	_, cmd := picker.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	_, ok := cmd().(closeStatusPickerMsg)
	assert.True(t, ok)
}
