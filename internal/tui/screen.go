package tui

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"
	"github.com/robby/reqboard/internal/access"
	"github.com/robby/reqboard/internal/domain"
	"github.com/robby/reqboard/internal/drag"
	"github.com/robby/reqboard/internal/engine"
	"github.com/robby/reqboard/internal/filter"
	"github.com/robby/reqboard/internal/projector"
)

// Layout constants
const (
	headerLines  = 2 // Title/stats line + mode/filter line
	footerLines  = 1
	pageJumpSize = 10 // Number of items to jump with Ctrl+D/U
	toastTTL     = 5 * time.Second
)

// pageSizes are the server page sizes cycled by the page-size key.
var pageSizes = []int{10, 25, 50, 100}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	activeTabStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	dragBannerStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("205")).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1)
)

// toastSink receives engine notifications and shows the latest one.
type toastSink struct {
	kind    engine.NotifyKind
	message string
	at      time.Time
}

// Notify implements engine.Notifier.
func (t *toastSink) Notify(kind engine.NotifyKind, message string) {
	t.kind = kind
	t.message = message
	t.at = time.Now()
}

func (t *toastSink) View() string {
	if t.message == "" || time.Since(t.at) > toastTTL {
		return ""
	}
	if t.kind == engine.NotifyError {
		return ErrorStyle.Render("✗ " + t.message)
	}
	return SuccessStyle.Render("✓ " + t.message)
}

// dragFeedback mirrors drag transitions for rendering only.
type dragFeedback struct {
	state    drag.State
	recordID string
	target   domain.Status
}

func (f *dragFeedback) observe(t drag.Transition) {
	if t.To == drag.Idle {
		*f = dragFeedback{}
		return
	}
	f.state = t.To
	f.recordID = t.RecordID
	f.target = t.Target
}

func (f *dragFeedback) dragging(recordID string) bool {
	return f.state != drag.Idle && f.recordID == recordID
}

// RequirementsModel is the requirements screen: table, grid and board
// projections over the engine's derived views.
type RequirementsModel struct {
	// Dependencies
	engine    *engine.Engine
	canMutate access.Predicate
	webURL    string
	toast     *toastSink
	feedback  *dragFeedback

	// UI components
	keymap      KeyMap
	help        HelpModel
	spinner     spinner.Model
	searchInput textinput.Model
	table       table.Model

	// Board state
	selectedColumn int                   // Index into domain.Statuses()
	columnOffset   int                   // First visible column
	selectedCard   map[domain.Status]int // Column -> selected card index
	scrollOffset   map[domain.Status]int // Column -> scroll offset

	// Grid and table cursors
	gridCursor  int
	tableCursor int

	// Column the dragged record would land in
	dropTarget int

	// View state
	width          int
	height         int
	showHelp       bool
	searchMode     bool
	previousSearch string
}

// NewRequirementsModel creates the requirements screen. toast must be the
// notifier the engine was built with.
func NewRequirementsModel(e *engine.Engine, canMutate access.Predicate, webURL string, toast *toastSink) RequirementsModel {
	if canMutate == nil {
		canMutate = access.CanMutate
	}
	if toast == nil {
		toast = &toastSink{}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Search title, description or ID..."
	ti.Prompt = "/ "

	t := table.New(table.WithFocused(true))

	fb := &dragFeedback{}
	e.SubscribeDrag(fb.observe)

	return RequirementsModel{
		engine:       e,
		canMutate:    canMutate,
		webURL:       webURL,
		toast:        toast,
		feedback:     fb,
		keymap:       DefaultKeyMap(),
		help:         NewHelpModel(DefaultKeyMap()),
		spinner:      sp,
		searchInput:  ti,
		table:        t,
		selectedCard: make(map[domain.Status]int),
		scrollOffset: make(map[domain.Status]int),
	}
}

// Init starts the spinner. Fetches are started by the engine.
func (m RequirementsModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.WindowSize())
}

// Update handles messages
func (m RequirementsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	return m, nil
}

// mutationAllowed evaluates the capability predicate for the current project and user.
func (m RequirementsModel) mutationAllowed() bool {
	return m.canMutate(m.engine.Project(), m.engine.Viewer())
}

// handleKeyPress processes keyboard input
func (m RequirementsModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "q" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	if m.searchMode {
		return m.handleSearchKeys(msg)
	}

	if m.engine.DragState() == drag.Dragging {
		return m.handleDragKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
	case key.Matches(msg, m.keymap.Search):
		m.searchMode = true
		m.previousSearch = m.engine.Filter().SearchTerm
		m.searchInput.SetValue(m.previousSearch)
		m.searchInput.CursorEnd()
		cmd := m.searchInput.Focus()
		return m, cmd
	case key.Matches(msg, m.keymap.StatusFilter):
		current := m.engine.Filter().StatusFilter
		return m, func() tea.Msg { return openStatusPickerMsg{current: current} }
	case key.Matches(msg, m.keymap.NextView):
		m.engine.SetViewMode(m.engine.ViewMode().Next())
	case key.Matches(msg, m.keymap.PrevView):
		m.engine.SetViewMode(m.engine.ViewMode().Next().Next())
	case key.Matches(msg, m.keymap.NextPage):
		if projector.ShowServerPager(m.engine.ViewMode(), m.engine.Filter()) {
			return m, m.engine.NextPage()
		}
	case key.Matches(msg, m.keymap.PrevPage):
		if projector.ShowServerPager(m.engine.ViewMode(), m.engine.Filter()) {
			return m, m.engine.PrevPage()
		}
	case key.Matches(msg, m.keymap.NextRows):
		if m.engine.ViewMode() == projector.ModeTable {
			m.engine.NextClientPage()
			m.tableCursor = 0
		}
	case key.Matches(msg, m.keymap.PrevRows):
		if m.engine.ViewMode() == projector.ModeTable {
			m.engine.PrevClientPage()
			m.tableCursor = 0
		}
	case key.Matches(msg, m.keymap.PageSize):
		return m, m.engine.SetPageSize(nextPageSize(m.engine.ServerWindow().Size))
	case key.Matches(msg, m.keymap.Refresh):
		return m, m.engine.Refresh()
	case key.Matches(msg, m.keymap.ChangeProject):
		return m, func() tea.Msg { return changeProjectMsg{} }
	case key.Matches(msg, m.keymap.Grab):
		(&m).startDrag()
	case key.Matches(msg, m.keymap.Detail):
		if r, ok := m.selectedRecord(); ok {
			return m, func() tea.Msg { return openDetailMsg{record: r} }
		}
	case key.Matches(msg, m.keymap.Open):
		if r, ok := m.selectedRecord(); ok {
			m.openInBrowser(r)
		}
	case key.Matches(msg, m.keymap.Left):
		(&m).moveHorizontal(-1)
	case key.Matches(msg, m.keymap.Right):
		(&m).moveHorizontal(1)
	case key.Matches(msg, m.keymap.Up):
		(&m).moveVertical(-1)
	case key.Matches(msg, m.keymap.Down):
		(&m).moveVertical(1)
	case msg.String() == "ctrl+d":
		(&m).moveVertical(pageJumpSize)
	case msg.String() == "ctrl+u":
		(&m).moveVertical(-pageJumpSize)
	}

	return m, nil
}

// handleSearchKeys feeds the search input. Every edit updates the search
// term; the engine debounces the resulting fetches.
func (m RequirementsModel) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ApplySearch):
		m.searchMode = false
		m.searchInput.Blur()
		return m, nil
	case key.Matches(msg, m.keymap.ClearSearch):
		m.searchMode = false
		m.searchInput.Blur()
		m.searchInput.SetValue(m.previousSearch)
		return m, m.engine.SetSearch(m.previousSearch)
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, tea.Batch(cmd, m.engine.SetSearch(m.searchInput.Value()))
}

// handleDragKeys picks the drop target while a record is grabbed.
func (m RequirementsModel) handleDragKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	statuses := domain.Statuses()
	switch {
	case key.Matches(msg, m.keymap.CancelDrag):
		_ = m.engine.CancelDrag()
	case key.Matches(msg, m.keymap.Left):
		if m.dropTarget > 0 {
			m.dropTarget--
		}
	case key.Matches(msg, m.keymap.Right):
		if m.dropTarget < len(statuses)-1 {
			m.dropTarget++
		}
	case key.Matches(msg, m.keymap.Drop), key.Matches(msg, m.keymap.Grab):
		return m, m.engine.Drop(statuses[m.dropTarget])
	default:
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if idx := int(s[0] - '1'); idx < len(statuses) {
				m.dropTarget = idx
			}
		}
	}
	return m, nil
}

// startDrag grabs the selected record when the user may mutate.
func (m *RequirementsModel) startDrag() {
	if !m.mutationAllowed() {
		m.toast.Notify(engine.NotifyError, "You cannot move requirements in this project")
		return
	}
	r, ok := m.selectedRecord()
	if !ok {
		return
	}
	if err := m.engine.StartDrag(r.ID); err != nil {
		if errors.Is(err, drag.ErrBusy) {
			m.toast.Notify(engine.NotifyError, "Another move is still being saved")
		}
		return
	}
	m.dropTarget = r.Status.Index()
}

// handleMouse implements drag and drop on the board: press on a card to
// grab it, release over a column to drop it there.
func (m RequirementsModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.engine.ViewMode() != projector.ModeBoard || m.showHelp || m.searchMode {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		(&m).moveVertical(-1)
		return m, nil
	case tea.MouseButtonWheelDown:
		(&m).moveVertical(1)
		return m, nil
	}

	col, card := m.hitTest(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || col < 0 {
			return m, nil
		}
		m.selectedColumn = col
		if card < 0 {
			return m, nil
		}
		m.selectedCard[domain.Statuses()[col]] = card
		if m.engine.DragState() == drag.Idle {
			(&m).startDrag()
		}

	case tea.MouseActionMotion:
		if m.engine.DragState() == drag.Dragging && col >= 0 {
			m.dropTarget = col
		}

	case tea.MouseActionRelease:
		if m.engine.DragState() != drag.Dragging {
			return m, nil
		}
		if col < 0 {
			_ = m.engine.CancelDrag()
			return m, nil
		}
		m.dropTarget = col
		return m, m.engine.Drop(domain.Statuses()[col])
	}
	return m, nil
}

// selectedRecord returns the record under the cursor of the active mode.
func (m RequirementsModel) selectedRecord() (domain.Record, bool) {
	switch m.engine.ViewMode() {
	case projector.ModeTable:
		rows := m.engine.TablePage()
		if m.tableCursor >= 0 && m.tableCursor < len(rows) {
			return rows[m.tableCursor], true
		}
	case projector.ModeGrid:
		records := m.engine.FilteredRecords()
		if m.gridCursor >= 0 && m.gridCursor < len(records) {
			return records[m.gridCursor], true
		}
	case projector.ModeBoard:
		columns := m.engine.GroupedRecords()
		if m.selectedColumn < 0 || m.selectedColumn >= len(columns) {
			return domain.Record{}, false
		}
		col := columns[m.selectedColumn]
		idx := m.selectedCard[col.Status]
		if idx >= 0 && idx < len(col.Records) {
			return col.Records[idx], true
		}
	}
	return domain.Record{}, false
}

func (m *RequirementsModel) moveHorizontal(delta int) {
	switch m.engine.ViewMode() {
	case projector.ModeGrid:
		m.gridCursor = clamp(m.gridCursor+delta, 0, len(m.engine.FilteredRecords())-1)
	case projector.ModeBoard:
		m.selectedColumn = clamp(m.selectedColumn+delta, 0, len(domain.Statuses())-1)
		m.adjustColumnScroll()
	}
}

func (m *RequirementsModel) moveVertical(delta int) {
	switch m.engine.ViewMode() {
	case projector.ModeTable:
		m.tableCursor = clamp(m.tableCursor+delta, 0, len(m.engine.TablePage())-1)
	case projector.ModeGrid:
		next := m.gridCursor + delta*gridColumns(m.contentWidth())
		m.gridCursor = clamp(next, 0, len(m.engine.FilteredRecords())-1)
	case projector.ModeBoard:
		m.moveCardSelection(delta)
	}
}

func (m RequirementsModel) openInBrowser(r domain.Record) {
	if u := recordURL(m.webURL, r); u != "" {
		_ = browser.OpenURL(u)
	}
}

// recordURL builds the web URL of a requirement, or "" without a base URL.
func recordURL(base string, r domain.Record) string {
	if base == "" {
		return ""
	}
	u, err := url.JoinPath(base, "projects", r.ProjectID, "requirements", r.ID)
	if err != nil {
		return ""
	}
	return u
}

func nextPageSize(current int) int {
	for i, s := range pageSizes {
		if s == current {
			return pageSizes[(i+1)%len(pageSizes)]
		}
	}
	return pageSizes[0]
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m RequirementsModel) contentWidth() int {
	if m.width == 0 {
		return 80
	}
	return m.width
}

// aboveContent returns how many lines are rendered above the main content.
func (m RequirementsModel) aboveContent() int {
	n := headerLines
	if m.searchMode {
		n++
	}
	if m.feedback.state != drag.Idle {
		n++
	}
	return n
}

// View renders the screen - fills entire terminal exactly
func (m RequirementsModel) View() string {
	// Use sensible defaults if dimensions not yet set
	width := m.contentWidth()
	height := m.height
	if height == 0 {
		height = 24
	}

	// Evaluated on every render, never cached
	canMutate := m.mutationAllowed()

	var sections []string
	sections = append(sections, m.renderHeader(width))
	sections = append(sections, m.renderSubHeader(width))

	if m.searchMode {
		sections = append(sections, m.searchInput.View())
	}
	if m.feedback.state != drag.Idle {
		sections = append(sections, m.renderDragBanner())
	}

	contentHeight := height - m.aboveContent() - footerLines
	if contentHeight < 5 {
		contentHeight = 5
	}

	var content string
	switch {
	case m.showHelp:
		helpLines := strings.Split(m.help.View(width, m.engine.ViewMode()), "\n")
		if len(helpLines) > contentHeight {
			helpLines = helpLines[:contentHeight]
		}
		content = strings.Join(helpLines, "\n")
	case m.engine.Loading() && m.engine.PageFetchedAt().IsZero() && m.engine.ShadowFetchedAt().IsZero():
		loadingMsg := m.spinner.View() + " Loading requirements..."
		content = lipgloss.Place(width, contentHeight, lipgloss.Center, lipgloss.Center, loadingMsg)
	default:
		switch m.engine.ViewMode() {
		case projector.ModeTable:
			content = m.renderTable(width, contentHeight, canMutate)
		case projector.ModeGrid:
			content = m.renderGrid(width, contentHeight)
		default:
			content = m.renderBoard(width, contentHeight)
		}
	}
	sections = append(sections, content)
	sections = append(sections, m.renderFooter(width))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the project name and aggregate stats
func (m RequirementsModel) renderHeader(width int) string {
	title := "Requirements"
	if p := m.engine.Project(); p != nil {
		title = p.Name + " - Requirements"
	}

	st := m.engine.Stats()
	parts := []string{fmt.Sprintf("%d total", st.Total)}
	for _, s := range domain.Statuses() {
		parts = append(parts, fmt.Sprintf("%s %d", s, st.Count(s)))
	}
	status := strings.Join(parts, " · ")

	return padBetween(titleStyle.Render(title), dimStyle.Render(status), width)
}

// renderSubHeader renders the mode tabs, active filters, staleness and toasts
func (m RequirementsModel) renderSubHeader(width int) string {
	var tabs []string
	for _, mode := range []projector.Mode{projector.ModeTable, projector.ModeGrid, projector.ModeBoard} {
		if mode == m.engine.ViewMode() {
			tabs = append(tabs, activeTabStyle.Render(mode.String()))
		} else {
			tabs = append(tabs, tabStyle.Render(mode.String()))
		}
	}
	left := strings.Join(tabs, "")

	f := m.engine.Filter()
	var info []string
	if f.SearchTerm != "" {
		info = append(info, "/"+f.SearchTerm)
	}
	if f.StatusFilter != filter.All {
		info = append(info, "status:"+string(f.StatusFilter))
	}
	if m.engine.Loading() {
		info = append(info, m.spinner.View()+"loading")
	}
	info = append(info, fmt.Sprintf("page %s · all %s",
		formatTimeAgo(m.engine.PageFetchedAt()), formatTimeAgo(m.engine.ShadowFetchedAt())))
	left += " " + dimStyle.Render(strings.Join(info, " | "))

	return padBetween(left, m.toast.View(), width)
}

func (m RequirementsModel) renderDragBanner() string {
	label := m.feedback.recordID
	if r, err := m.engine.Record(m.feedback.recordID); err == nil && r.CustomID != "" {
		label = r.CustomID
	}

	if m.feedback.state == drag.Reconciling {
		return dragBannerStyle.Render("SAVING") + fmt.Sprintf(" %s → %s", label, m.feedback.target)
	}

	var targets []string
	for i, s := range domain.Statuses() {
		t := fmt.Sprintf("%d:%s", i+1, s)
		if i == m.dropTarget {
			t = SelectedItemStyle.Render("[" + t + "]")
		}
		targets = append(targets, t)
	}
	return dragBannerStyle.Render("MOVE "+label) + " " + strings.Join(targets, " ") +
		dimStyle.Render("  enter:drop esc:cancel")
}

// renderFooter renders pagination state and short help
func (m RequirementsModel) renderFooter(width int) string {
	mode := m.engine.ViewMode()
	sw := m.engine.ServerWindow()

	var pager []string
	if projector.ShowServerPager(mode, m.engine.Filter()) {
		pager = append(pager, fmt.Sprintf("page %d/%d (%d total)", sw.Index+1, sw.PageCount(), sw.Total))
	} else {
		pager = append(pager, "filtered")
	}
	if mode == projector.ModeTable {
		rows := len(m.engine.TableRecords())
		cw := m.engine.ClientWindow()
		pager = append(pager, fmt.Sprintf("rows %d/%d", cw.Index+1, cw.PageCount(rows)))
	}

	left := dimStyle.Render(strings.Join(pager, " · "))
	return padBetween(left, m.help.ShortView(width/2, mode, m.engine.DragState() == drag.Dragging), width)
}

// padBetween left-aligns left and right-aligns right on one line.
func padBetween(left, right string, width int) string {
	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if padding < 1 {
		padding = 1
	}
	return left + strings.Repeat(" ", padding) + right
}

// formatTimeAgo renders how long ago t was, or "never" for the zero time.
func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	duration := time.Since(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		return fmt.Sprintf("%dm ago", int(duration.Minutes()))
	case duration < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(duration.Hours()/24))
	}
}

// Message types
type (
	openStatusPickerMsg struct{ current domain.Status }
	openDetailMsg       struct{ record domain.Record }
	closeDetailMsg      struct{}
	changeProjectMsg    struct{}
)
