// Package engine synchronizes the requirements screen with the remote
// collection. It owns both fetch lifecycles of the store, the debounced
// windowed-page trigger, the drag reconciliation path and the derived views.
//
// All methods must be called from the Bubble Tea event loop. Gateway calls run
// inside the returned commands and report back through messages, which the
// caller feeds to Update; only Update and the setters write state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/reqboard/internal/domain"
	"github.com/robby/reqboard/internal/drag"
	"github.com/robby/reqboard/internal/filter"
	"github.com/robby/reqboard/internal/projector"
	"github.com/robby/reqboard/internal/stats"
	"github.com/robby/reqboard/internal/store"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period before a windowed-page fetch is issued.
const DefaultDebounce = 500 * time.Millisecond

// Gateway is the remote record service.
type Gateway interface {
	FetchRecordsPage(ctx context.Context, projectID string, pageIndex, pageSize int, searchTerm string) (domain.Page, error)
	FetchAllRecords(ctx context.Context, projectID string) ([]domain.Record, error)
	UpdateRecordStatus(ctx context.Context, projectID, recordID string, patch domain.RecordPatch) (domain.Record, error)
}

// NotifyKind classifies a user notification.
type NotifyKind int

// Notification kinds.
const (
	NotifySuccess NotifyKind = iota
	NotifyError
)

func (k NotifyKind) String() string {
	if k == NotifyError {
		return "error"
	}
	return "success"
}

// Notifier receives fire-and-forget user notifications.
type Notifier interface {
	Notify(kind NotifyKind, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(kind NotifyKind, message string)

// Notify calls f.
func (f NotifierFunc) Notify(kind NotifyKind, message string) { f(kind, message) }

// TickFunc schedules fn after d. tea.Tick is the default.
type TickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// Options tunes an Engine. Zero values select defaults.
type Options struct {
	Debounce               time.Duration
	TablePageSize          int // Client-side rows per table page; 0 disables
	Mode                   projector.Mode
	RefreshShadowAfterMove bool

	Notifier Notifier
	Logger   logrus.FieldLogger
	Tick     TickFunc
	Now      func() time.Time
}

// Engine coordinates the store, filter state, view mode and drag controller.
type Engine struct {
	ctx     context.Context
	gateway Gateway
	store   *store.Store
	drag    *drag.Controller

	notifier Notifier
	log      logrus.FieldLogger
	tick     TickFunc
	now      func() time.Time

	filter filter.State
	mode   projector.Mode
	client projector.ClientWindow

	debounce    time.Duration
	debounceSeq uint64
	refreshMove bool

	tableMemo filter.Memo // Filtered windowed page for the table
	viewMemo  filter.Memo // Filtered source for grid, board and stats
	statsMemo stats.Memo
}

// New creates an engine over s. The caller sets the project before Mount.
func New(ctx context.Context, gw Gateway, s *store.Store, opts Options) *Engine {
	e := &Engine{
		ctx:         ctx,
		gateway:     gw,
		store:       s,
		drag:        drag.New(),
		notifier:    opts.Notifier,
		log:         opts.Logger,
		tick:        opts.Tick,
		now:         opts.Now,
		filter:      filter.NewState(),
		mode:        opts.Mode,
		client:      projector.ClientWindow{Size: opts.TablePageSize},
		debounce:    opts.Debounce,
		refreshMove: opts.RefreshShadowAfterMove,
	}
	if e.notifier == nil {
		e.notifier = NotifierFunc(func(NotifyKind, string) {})
	}
	if e.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		e.log = l
	}
	if e.tick == nil {
		e.tick = tea.Tick
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.debounce <= 0 {
		e.debounce = DefaultDebounce
	}
	e.drag.Subscribe(func(t drag.Transition) {
		e.log.WithFields(logrus.Fields{
			"record": t.RecordID,
			"from":   t.From,
			"to":     t.To,
			"target": t.Target,
		}).Debug("drag transition")
	})
	return e
}

// Messages produced by engine commands.
type (
	debounceMsg struct{ seq uint64 }

	pageFetchedMsg struct {
		projectID string
		page      domain.Page
		err       error
	}

	shadowFetchedMsg struct {
		projectID string
		records   []domain.Record
		err       error
	}

	moveResultMsg struct {
		req    drag.Request
		record domain.Record
		err    error
	}
)

// Mount starts both fetch lifecycles for the current project: the shadow copy
// immediately and the windowed page after the debounce.
func (e *Engine) Mount() tea.Cmd {
	return tea.Batch(e.fetchShadow(), e.schedulePageFetch())
}

// SetProject switches the screen to another project. Both copies are
// refetched when the project ID changes.
func (e *Engine) SetProject(p *domain.Project) tea.Cmd {
	prev, _ := e.store.ProjectID()
	e.store.SetProject(p)
	if p == nil || p.ID == prev {
		return nil
	}
	e.client.Index = 0
	e.tableMemo.Reset()
	e.viewMemo.Reset()
	return e.Mount()
}

// Project returns the current project.
func (e *Engine) Project() *domain.Project {
	return e.store.Project()
}

// Viewer returns the authenticated user.
func (e *Engine) Viewer() *domain.User {
	return e.store.Viewer()
}

// Refresh forces both fetch lifecycles to run now, superseding any pending
// debounced fetch.
func (e *Engine) Refresh() tea.Cmd {
	e.debounceSeq++
	return tea.Batch(e.fetchPage(), e.fetchShadow())
}

// Filter returns the current filter state.
func (e *Engine) Filter() filter.State {
	return e.filter
}

// SetSearch changes the search term and schedules a windowed-page fetch.
func (e *Engine) SetSearch(term string) tea.Cmd {
	if term == e.filter.SearchTerm {
		return nil
	}
	e.filter = e.filter.WithSearch(term)
	e.client.Index = 0
	return e.schedulePageFetch()
}

// SetStatusFilter changes the categorical filter. Status filtering is local
// and never refetches.
func (e *Engine) SetStatusFilter(status domain.Status) {
	if status != filter.All && !status.Valid() {
		return
	}
	e.filter = e.filter.WithStatus(status)
	e.client.Index = 0
}

// ViewMode returns the active projection.
func (e *Engine) ViewMode() projector.Mode {
	return e.mode
}

// SetViewMode switches projection without refetching.
func (e *Engine) SetViewMode(m projector.Mode) {
	e.mode = m
}

// ServerWindow describes the current server-side window.
func (e *Engine) ServerWindow() projector.ServerWindow {
	return projector.ServerWindow{
		Index: e.store.PageIndex(),
		Size:  e.store.PageSize(),
		Total: e.store.Page().Data.Total,
	}
}

// SetPageIndex moves the server window and schedules a fetch.
func (e *Engine) SetPageIndex(index int) tea.Cmd {
	if index < 0 || index == e.store.PageIndex() {
		return nil
	}
	e.store.SetPageIndex(index)
	e.client.Index = 0
	return e.schedulePageFetch()
}

// NextPage advances the server window when another page exists.
func (e *Engine) NextPage() tea.Cmd {
	w := e.ServerWindow()
	if !w.HasNext() {
		return nil
	}
	return e.SetPageIndex(w.Index + 1)
}

// PrevPage moves the server window back when possible.
func (e *Engine) PrevPage() tea.Cmd {
	w := e.ServerWindow()
	if !w.HasPrev() {
		return nil
	}
	return e.SetPageIndex(w.Index - 1)
}

// SetPageSize changes the server window size and returns to the first page.
func (e *Engine) SetPageSize(size int) tea.Cmd {
	if size <= 0 || size == e.store.PageSize() {
		return nil
	}
	e.store.SetPageSize(size)
	e.client.Index = 0
	return e.schedulePageFetch()
}

// ClientWindow describes the table's client-side page over the filtered window.
func (e *Engine) ClientWindow() projector.ClientWindow {
	return e.client.Clamp(len(e.TableRecords()))
}

// NextClientPage advances the table page.
func (e *Engine) NextClientPage() {
	w := e.ClientWindow()
	if w.Index+1 < w.PageCount(len(e.TableRecords())) {
		e.client.Index = w.Index + 1
	}
}

// PrevClientPage moves the table page back.
func (e *Engine) PrevClientPage() {
	w := e.ClientWindow()
	if w.Index > 0 {
		e.client.Index = w.Index - 1
	}
}

// Loading reports whether either copy is being fetched.
func (e *Engine) Loading() bool {
	return e.store.Page().Loading || e.store.Shadow().Loading
}

// PageFetchedAt reports when the windowed page was last replaced.
func (e *Engine) PageFetchedAt() time.Time {
	return e.store.Page().LastFetchedAt
}

// ShadowFetchedAt reports when the shadow copy was last replaced.
func (e *Engine) ShadowFetchedAt() time.Time {
	return e.store.Shadow().LastFetchedAt
}

// Source reports which copy feeds grid, board and stats right now.
func (e *Engine) Source() projector.Copy {
	return projector.SourceFor(e.filter)
}

func (e *Engine) source() (uint64, []domain.Record) {
	if e.Source() == projector.WindowedPage {
		p := e.store.Page()
		return p.Version, p.Data.Records
	}
	s := e.store.Shadow()
	return s.Version, s.Data
}

// TableRecords returns the filtered windowed page.
func (e *Engine) TableRecords() []domain.Record {
	p := e.store.Page()
	return e.tableMemo.Filtered(p.Version, p.Data.Records, e.filter)
}

// TablePage returns the rows on the current client-side table page.
func (e *Engine) TablePage() []domain.Record {
	return e.ClientWindow().Apply(e.TableRecords())
}

// FilteredRecords returns the filtered records of the active mode's source.
func (e *Engine) FilteredRecords() []domain.Record {
	if e.mode == projector.ModeTable {
		return e.TableRecords()
	}
	version, records := e.source()
	return e.viewMemo.Filtered(version, records, e.filter)
}

// GroupedRecords returns the board columns in status order.
func (e *Engine) GroupedRecords() []filter.Column {
	version, records := e.source()
	return e.viewMemo.Grouped(version, records, e.filter)
}

// Stats summarizes the filtered source set.
func (e *Engine) Stats() stats.Stats {
	version, records := e.source()
	filtered := e.viewMemo.Filtered(version, records, e.filter)
	return e.statsMemo.Compute(e.viewMemo.Generation(), filtered)
}

// StatusCounts summarizes the source set with the search term applied but
// not the status filter. The status picker shows these counts.
func (e *Engine) StatusCounts() stats.Stats {
	_, records := e.source()
	return stats.Compute(filter.Filtered(records, e.filter.WithStatus(filter.All)))
}

// Record looks up a record in either copy.
func (e *Engine) Record(id string) (domain.Record, error) {
	return e.store.Record(id)
}

// SubscribeDrag registers a listener for drag transitions.
func (e *Engine) SubscribeDrag(l drag.Listener) {
	e.drag.Subscribe(l)
}

// DragState returns the drag controller state.
func (e *Engine) DragState() drag.State {
	return e.drag.State()
}

// DragPayload returns the dragged record ID, or "".
func (e *Engine) DragPayload() string {
	return e.drag.Payload()
}

// StartDrag picks up a record. Callers check the mutation predicate first.
func (e *Engine) StartDrag(recordID string) error {
	return e.drag.Start(recordID)
}

// CancelDrag abandons the current drag.
func (e *Engine) CancelDrag() error {
	return e.drag.Cancel()
}

// Drop releases the dragged record over target. Dropping onto the record's
// current status does nothing. Otherwise the whole record is sent back with
// the new status; the local copy changes only once the update is confirmed.
func (e *Engine) Drop(target domain.Status) tea.Cmd {
	req, err := e.drag.Drop(target, e.store)
	if err != nil {
		if errors.Is(err, drag.ErrInvalidTarget) || errors.Is(err, drag.ErrNotDragging) {
			e.log.WithError(err).Debug("ignoring drop")
			return nil
		}
		e.log.WithError(err).Warn("drop failed")
		e.notifier.Notify(NotifyError, fmt.Sprintf("Move failed: %v", err))
		return nil
	}
	if req == nil {
		return nil
	}

	projectID := req.ProjectID
	if projectID == "" {
		projectID, _ = e.store.ProjectID()
		req.ProjectID = projectID
		req.Patch.ProjectID = projectID
	}

	e.log.WithFields(logrus.Fields{
		"record": req.RecordID,
		"from":   req.From,
		"to":     req.Patch.Status,
	}).Info("moving requirement")

	gw, ctx, r := e.gateway, e.ctx, *req
	return func() tea.Msg {
		record, err := gw.UpdateRecordStatus(ctx, r.ProjectID, r.RecordID, r.Patch)
		return moveResultMsg{req: r, record: record, err: err}
	}
}

// Update applies engine messages and returns follow-up commands. Other
// messages are ignored.
func (e *Engine) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case debounceMsg:
		if msg.seq != e.debounceSeq {
			return nil
		}
		return e.fetchPage()

	case pageFetchedMsg:
		return e.applyPage(msg)

	case shadowFetchedMsg:
		e.applyShadow(msg)
		return nil

	case moveResultMsg:
		return e.applyMove(msg)
	}
	return nil
}

// schedulePageFetch restarts the debounce window. Only the last scheduled
// tick issues a fetch, using the values current when it fires.
func (e *Engine) schedulePageFetch() tea.Cmd {
	e.debounceSeq++
	seq := e.debounceSeq
	return e.tick(e.debounce, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
}

func (e *Engine) fetchPage() tea.Cmd {
	projectID, err := e.store.ProjectID()
	if err != nil {
		return nil
	}
	index, size, term := e.store.PageIndex(), e.store.PageSize(), e.filter.SearchTerm
	e.store.BeginPageFetch()

	e.log.WithFields(logrus.Fields{
		"project": projectID,
		"page":    index,
		"size":    size,
		"search":  term,
	}).Debug("fetching windowed page")

	gw, ctx := e.gateway, e.ctx
	return func() tea.Msg {
		page, err := gw.FetchRecordsPage(ctx, projectID, index, size, term)
		return pageFetchedMsg{projectID: projectID, page: page, err: err}
	}
}

func (e *Engine) fetchShadow() tea.Cmd {
	projectID, err := e.store.ProjectID()
	if err != nil {
		return nil
	}
	e.store.BeginShadowFetch()

	e.log.WithField("project", projectID).Debug("fetching shadow copy")

	gw, ctx := e.gateway, e.ctx
	return func() tea.Msg {
		records, err := gw.FetchAllRecords(ctx, projectID)
		return shadowFetchedMsg{projectID: projectID, records: records, err: err}
	}
}

// applyPage stores a windowed-page result. Results land in arrival order and
// overwrite whatever is there. A successful page refreshes the shadow copy.
func (e *Engine) applyPage(msg pageFetchedMsg) tea.Cmd {
	log := e.log.WithField("project", msg.projectID)
	if msg.err != nil {
		log.WithError(msg.err).Error("windowed page fetch failed")
		e.store.FailPage(msg.err)
		e.notifier.Notify(NotifyError, fmt.Sprintf("Failed to load requirements: %v", msg.err))
		return nil
	}
	if current, _ := e.store.ProjectID(); current != msg.projectID {
		log.WithField("current", current).Warn("applying windowed page from previous project")
	}
	e.store.ApplyPage(msg.page, e.now())
	log.WithFields(logrus.Fields{
		"records": len(msg.page.Records),
		"total":   msg.page.Total,
	}).Debug("windowed page loaded")
	return e.fetchShadow()
}

func (e *Engine) applyShadow(msg shadowFetchedMsg) {
	log := e.log.WithField("project", msg.projectID)
	if msg.err != nil {
		log.WithError(msg.err).Error("shadow copy fetch failed")
		e.store.FailShadow(msg.err)
		e.notifier.Notify(NotifyError, fmt.Sprintf("Failed to load requirements: %v", msg.err))
		return
	}
	if current, _ := e.store.ProjectID(); current != msg.projectID {
		log.WithField("current", current).Warn("applying shadow copy from previous project")
	}
	e.store.ApplyShadow(msg.records, e.now())
	log.WithField("records", len(msg.records)).Debug("shadow copy loaded")
}

// applyMove commits a confirmed move to the windowed page, or reports the
// failure. Nothing was changed before confirmation, so nothing rolls back.
func (e *Engine) applyMove(msg moveResultMsg) tea.Cmd {
	defer func() {
		if err := e.drag.Finish(); err != nil {
			e.log.WithError(err).Warn("finishing drag")
		}
	}()

	target := msg.req.Patch.Status
	label := msg.req.RecordID
	if r, err := e.store.Record(msg.req.RecordID); err == nil && r.CustomID != "" {
		label = r.CustomID
	}
	log := e.log.WithFields(logrus.Fields{"record": msg.req.RecordID, "to": target})

	if msg.err != nil {
		log.WithError(msg.err).Error("move failed")
		e.notifier.Notify(NotifyError, fmt.Sprintf("Failed to move %s: %v", label, msg.err))
		return nil
	}

	if err := e.store.PatchPageStatus(msg.req.RecordID, target); err != nil {
		// Only the shadow copy held it; it shows the change after its next fetch
		log.WithError(err).Debug("moved record is not on the windowed page")
	}
	log.WithField("updated_at", msg.record.UpdatedAt).Info("requirement moved")
	e.notifier.Notify(NotifySuccess, fmt.Sprintf("%s moved to %s", label, target))

	if e.refreshMove {
		return e.fetchShadow()
	}
	return nil
}
