package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/reqboard/internal/access"
	"github.com/robby/reqboard/internal/domain"
	"github.com/robby/reqboard/internal/engine"
	"github.com/robby/reqboard/internal/store"
	"github.com/sirupsen/logrus"
)

// AppScreen represents the different screens in the application flow.
type AppScreen int

const (
	ScreenLoading AppScreen = iota
	ScreenProjectPicker
	ScreenStatusPicker
	ScreenRequirements
	ScreenDetail
)

// Client is the remote service the app talks to.
type Client interface {
	engine.Gateway
	Viewer(ctx context.Context) (domain.User, error)
	GetProject(ctx context.Context, projectID string) (domain.Project, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
}

// AppOptions configures the app. Zero values select defaults.
type AppOptions struct {
	ProjectID string // Open this project directly instead of showing the picker
	WebURL    string // Base URL for "open in browser"
	Engine    engine.Options
	CanMutate access.Predicate
}

// AppModel is the root Bubble Tea model that manages screen transitions.
// It orchestrates the flow from project selection -> requirements -> detail.
type AppModel struct {
	// Dependencies
	client Client
	store  *store.Store
	engine *engine.Engine
	ctx    context.Context
	log    logrus.FieldLogger
	opts   AppOptions
	toast  *toastSink

	// Current state
	currentScreen AppScreen
	currentModel  tea.Model
	err           error
	loadingMsg    string

	// Cached to preserve cursor and scroll state across screen transitions
	requirements *RequirementsModel
}

// NewAppModel creates the app and its engine. Every engine notification is
// shown as a toast on the requirements screen.
func NewAppModel(ctx context.Context, client Client, s *store.Store, opts AppOptions) AppModel {
	log := opts.Engine.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	toast := &toastSink{}
	engineOpts := opts.Engine
	engineOpts.Notifier = toast
	engineOpts.Logger = log

	loading := "Loading projects..."
	if opts.ProjectID != "" {
		loading = fmt.Sprintf("Loading project %s...", opts.ProjectID)
	}

	return AppModel{
		client:        client,
		store:         s,
		engine:        engine.New(ctx, client, s, engineOpts),
		ctx:           ctx,
		log:           log,
		opts:          opts,
		toast:         toast,
		currentScreen: ScreenLoading,
		loadingMsg:    loading,
	}
}

// Init fetches the viewer and either the configured project or the project list.
func (m AppModel) Init() tea.Cmd {
	if m.opts.ProjectID != "" {
		return tea.Batch(m.fetchViewer(), m.loadProject(m.opts.ProjectID))
	}
	return tea.Batch(m.fetchViewer(), m.listProjects())
}

// Screen reports the active screen.
func (m AppModel) Screen() AppScreen {
	return m.currentScreen
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The engine sees every message first; it ignores what isn't its own.
	engineCmd := m.engine.Update(msg)

	model, cmd := m.route(msg)
	return model, tea.Batch(engineCmd, cmd)
}

func (m AppModel) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		// Keep the cached requirements screen sized while it is hidden
		if m.requirements != nil && m.currentScreen != ScreenRequirements {
			rm, _ := m.requirements.Update(msg)
			req := rm.(RequirementsModel)
			m.requirements = &req
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case QuitMsg:
		return m, tea.Quit

	case viewerLoadedMsg:
		if msg.err != nil {
			// Mutation stays disabled without a known viewer
			m.log.WithError(msg.err).Warn("failed to load viewer")
			return m, nil
		}
		m.store.SetViewer(&msg.viewer)
		return m, nil

	case projectLoadedMsg:
		return m.openProject(msg.project)

	case projectsLoadedMsg:
		m.currentScreen = ScreenProjectPicker
		picker := NewProjectPickerModel(msg.projects, m.requirements != nil)
		m.currentModel = picker
		return m, picker.Init()

	case ProjectSelectedMsg:
		return m.openProject(msg.Project)

	case changeProjectMsg:
		m.currentScreen = ScreenLoading
		m.currentModel = nil
		m.loadingMsg = "Loading projects..."
		return m, m.listProjects()

	case closeProjectPickerMsg:
		return m.showRequirements(nil)

	case openStatusPickerMsg:
		m.currentScreen = ScreenStatusPicker
		picker := NewStatusPickerModel(msg.current, m.engine.StatusCounts())
		m.currentModel = picker
		return m, picker.Init()

	case StatusSelectedMsg:
		m.engine.SetStatusFilter(msg.Status)
		return m.showRequirements(nil)

	case closeStatusPickerMsg:
		return m.showRequirements(nil)

	case openDetailMsg:
		m.currentScreen = ScreenDetail
		detail := NewDetailModel(msg.record, m.engine, m.opts.WebURL)
		m.currentModel = detail
		return m, detail.Init()

	case closeDetailMsg:
		return m.showRequirements(nil)
	}

	// Delegate to current screen's model
	if m.currentModel != nil {
		var cmd tea.Cmd
		m.currentModel, cmd = m.currentModel.Update(msg)
		// Keep the cached requirements screen in sync
		if m.currentScreen == ScreenRequirements {
			if rm, ok := m.currentModel.(RequirementsModel); ok {
				m.requirements = &rm
			}
		}
		return m, cmd
	}

	return m, nil
}

// openProject points the engine at p and shows the requirements screen.
func (m AppModel) openProject(p domain.Project) (tea.Model, tea.Cmd) {
	m.log.WithField("project", p.ID).Info("opening project")
	mount := m.engine.SetProject(&p)
	return m.showRequirements(mount)
}

// showRequirements switches to the requirements screen, creating it once.
func (m AppModel) showRequirements(extra tea.Cmd) (tea.Model, tea.Cmd) {
	if m.requirements == nil {
		req := NewRequirementsModel(m.engine, m.opts.CanMutate, m.opts.WebURL, m.toast)
		m.requirements = &req
	}
	m.currentScreen = ScreenRequirements
	m.currentModel = *m.requirements
	return m, tea.Batch(extra, m.requirements.Init())
}

// View renders the current screen.
func (m AppModel) View() string {
	// Show error if present
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v\n\nPress Ctrl+C to quit", m.err))
	}

	// Delegate to current screen
	if m.currentModel != nil {
		return m.currentModel.View()
	}

	// Show loading state
	return m.loadingMsg + "\n\nPress Ctrl+C to quit"
}

// fetchViewer creates a command to load the authenticated user.
func (m AppModel) fetchViewer() tea.Cmd {
	return func() tea.Msg {
		viewer, err := m.client.Viewer(m.ctx)
		return viewerLoadedMsg{viewer: viewer, err: err}
	}
}

// loadProject creates a command to load a single project by ID.
func (m AppModel) loadProject(id string) tea.Cmd {
	return func() tea.Msg {
		p, err := m.client.GetProject(m.ctx, id)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to load project %s: %w", id, err)}
		}
		return projectLoadedMsg{project: p}
	}
}

// listProjects creates a command to list the projects visible to the viewer.
func (m AppModel) listProjects() tea.Cmd {
	return func() tea.Msg {
		projects, err := m.client.ListProjects(m.ctx)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to list projects: %w", err)}
		}

		if len(projects) == 0 {
			return ErrorMsg{Err: fmt.Errorf("no projects found")}
		}

		return projectsLoadedMsg{projects: projects}
	}
}

// Custom messages for app transitions.
type (
	viewerLoadedMsg struct {
		viewer domain.User
		err    error
	}

	projectLoadedMsg struct {
		project domain.Project
	}

	projectsLoadedMsg struct {
		projects []domain.Project
	}
)
