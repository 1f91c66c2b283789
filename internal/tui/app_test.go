package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/reqboard/internal/domain"
	"github.com/robby/reqboard/internal/engine"
	"github.com/robby/reqboard/internal/projector"
	"github.com/robby/reqboard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestApp(client *fakeClient, projectID string) AppModel {
	return NewAppModel(context.Background(), client, store.New(10), AppOptions{
		ProjectID: projectID,
		WebURL:    "https://reqs.example.com",
		Engine: engine.Options{
			Mode: projector.ModeBoard,
			Tick: instantTick,
		},
	})
}

// drainApp runs cmd and feeds every resulting message back into the app.
// Spinner ticks are dropped so the loop terminates.
func drainApp(t *testing.T, m AppModel, cmd tea.Cmd) AppModel {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg:
		return m
	case tea.BatchMsg:
		for _, c := range msg {
			m = drainApp(t, m, c)
		}
		return m
	default:
		next, c := m.Update(msg)
		return drainApp(t, next.(AppModel), c)
	}
}

func TestApp_OpensConfiguredProject(t *testing.T) {
	client := createTestClient()
	app := createTestApp(client, "p1")

	app = drainApp(t, app, app.Init())

	require.NoError(t, app.err)
	assert.Equal(t, ScreenRequirements, app.Screen())
	assert.Equal(t, "p1", app.engine.Project().ID)
	require.NotNil(t, app.engine.Viewer())
	assert.Equal(t, "u1", app.engine.Viewer().ID)
	assert.Equal(t, 1, client.pageCalls)
	assert.Equal(t, 2, client.shadowCalls, "Mount and the page fetch each refresh the shadow copy")
	assert.Contains(t, app.View(), "Apollo")
}

func TestApp_UnknownProjectIsFatal(t *testing.T) {
	app := createTestApp(createTestClient(), "nope")

	app = drainApp(t, app, app.Init())

	require.Error(t, app.err)
	assert.Contains(t, app.View(), "nope")
}

func TestApp_ViewerFailureIsNotFatal(t *testing.T) {
	client := createTestClient()
	client.viewerErr = errors.New("unauthorized")
	app := createTestApp(client, "p1")

	app = drainApp(t, app, app.Init())

	assert.NoError(t, app.err)
	assert.Equal(t, ScreenRequirements, app.Screen())
	assert.Nil(t, app.engine.Viewer())
}

func TestApp_ProjectPickerFlow(t *testing.T) {
	client := createTestClient()
	app := createTestApp(client, "")

	app = drainApp(t, app, app.Init())
	require.Equal(t, ScreenProjectPicker, app.Screen())
	assert.Contains(t, app.View(), "Apollo")
	assert.Contains(t, app.View(), "Gemini")

	next, cmd := app.Update(ProjectSelectedMsg{Project: testProject})
	app = drainApp(t, next.(AppModel), cmd)

	assert.Equal(t, ScreenRequirements, app.Screen())
	assert.Equal(t, 1, client.pageCalls)
}

func TestApp_ChangeProjectCanGoBack(t *testing.T) {
	app := createTestApp(createTestClient(), "p1")
	app = drainApp(t, app, app.Init())

	next, cmd := app.Update(changeProjectMsg{})
	app = drainApp(t, next.(AppModel), cmd)
	require.Equal(t, ScreenProjectPicker, app.Screen())

	next, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	app = drainApp(t, next.(AppModel), cmd)
	assert.Equal(t, ScreenRequirements, app.Screen())
	assert.Equal(t, "p1", app.engine.Project().ID)
}

func TestApp_StatusPickerRoundTrip(t *testing.T) {
	client := createTestClient()
	app := createTestApp(client, "p1")
	app = drainApp(t, app, app.Init())

	next, cmd := app.Update(openStatusPickerMsg{current: app.engine.Filter().StatusFilter})
	app = drainApp(t, next.(AppModel), cmd)
	require.Equal(t, ScreenStatusPicker, app.Screen())

	next, cmd = app.Update(StatusSelectedMsg{Status: domain.StatusDone})
	app = drainApp(t, next.(AppModel), cmd)

	assert.Equal(t, ScreenRequirements, app.Screen())
	assert.Equal(t, domain.StatusDone, app.engine.Filter().StatusFilter)
	assert.Equal(t, 1, client.pageCalls, "Status filtering never refetches")
}

func TestApp_DetailRoundTrip(t *testing.T) {
	app := createTestApp(createTestClient(), "p1")
	app = drainApp(t, app, app.Init())

	r, err := app.engine.Record("3")
	require.NoError(t, err)

	next, cmd := app.Update(openDetailMsg{record: r})
	app = drainApp(t, next.(AppModel), cmd)
	require.Equal(t, ScreenDetail, app.Screen())
	assert.Contains(t, app.View(), "Audit log")

	next, cmd = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	app = drainApp(t, next.(AppModel), cmd)
	assert.Equal(t, ScreenRequirements, app.Screen())
}

func TestApp_QuitMsg(t *testing.T) {
	app := createTestApp(createTestClient(), "p1")

	_, cmd := app.Update(QuitMsg{})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}
