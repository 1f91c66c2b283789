// Package store provides the in-memory collection state for one requirements screen.
// It holds two independently refreshed copies of the same remote collection - a
// server-windowed page and an unfiltered shadow copy - following the "deep modules"
// principle: a simple interface hiding the bookkeeping of both fetch lifecycles.
//
// The store is not safe for concurrent use. All writes are expected to happen on
// the UI event loop.
package store

import (
	"errors"
	"time"

	"github.com/robby/reqboard/internal/domain"
)

var (
	// ErrNoProject indicates no project has been set in the store.
	ErrNoProject = errors.New("no project set")
	// ErrRecordNotFound indicates the requested record does not exist in the store.
	ErrRecordNotFound = errors.New("record not found")
)

// Cache is a read-through value holder for one fetched representation.
// Version changes on every write so derived views can memoize on it.
type Cache[T any] struct {
	Data          T
	LastFetchedAt time.Time
	Loading       bool
	Err           error // Last fetch failure; cleared by the next success
	Version       uint64
}

// Fetched reports whether the cache has ever been populated.
func (c Cache[T]) Fetched() bool {
	return !c.LastFetchedAt.IsZero()
}

// Store manages the collection state of one project.
type Store struct {
	// Project metadata
	project *domain.Project

	// Current user (viewer) for the mutation predicate
	viewer *domain.User

	// The windowed page and the whole unfiltered collection
	page   Cache[domain.Page]
	shadow Cache[[]domain.Record]

	// Server pagination state
	pageIndex int
	pageSize  int

	// Source of cache versions, shared so no two writes share a version
	versions uint64
}

// New creates a new empty Store with the given server page size.
func New(pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Store{pageSize: pageSize}
}

// SetProject sets the current project. Switching to a different project
// clears both copies and resets the page index.
func (s *Store) SetProject(project *domain.Project) {
	if s.project != nil && project != nil && s.project.ID == project.ID {
		s.project = project
		return
	}
	s.project = project
	s.Clear()
}

// Project returns the current project, or nil if not set.
func (s *Store) Project() *domain.Project {
	return s.project
}

// ProjectID returns the current project ID, or ErrNoProject.
func (s *Store) ProjectID() (string, error) {
	if s.project == nil {
		return "", ErrNoProject
	}
	return s.project.ID, nil
}

// SetViewer sets the authenticated user.
func (s *Store) SetViewer(viewer *domain.User) {
	s.viewer = viewer
}

// Viewer returns the authenticated user, or nil if unknown.
func (s *Store) Viewer() *domain.User {
	return s.viewer
}

// PageIndex returns the zero-based server page index.
func (s *Store) PageIndex() int {
	return s.pageIndex
}

// SetPageIndex sets the server page index. Negative values clamp to zero.
func (s *Store) SetPageIndex(index int) {
	if index < 0 {
		index = 0
	}
	s.pageIndex = index
}

// PageSize returns the server page size.
func (s *Store) PageSize() int {
	return s.pageSize
}

// SetPageSize sets the server page size and returns to the first page.
func (s *Store) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	s.pageSize = size
	s.pageIndex = 0
}

// Page returns the windowed page cache.
func (s *Store) Page() Cache[domain.Page] {
	return s.page
}

// Shadow returns the shadow copy cache.
func (s *Store) Shadow() Cache[[]domain.Record] {
	return s.shadow
}

// BeginPageFetch marks the windowed page as loading.
func (s *Store) BeginPageFetch() {
	s.page.Loading = true
}

// ApplyPage replaces the windowed page with a successful fetch result.
func (s *Store) ApplyPage(page domain.Page, fetchedAt time.Time) {
	s.page.Data = page
	s.page.LastFetchedAt = fetchedAt
	s.page.Loading = false
	s.page.Err = nil
	s.page.Version = s.nextVersion()
}

// FailPage records a failed windowed-page fetch and keeps the prior data.
func (s *Store) FailPage(err error) {
	s.page.Loading = false
	s.page.Err = err
}

// BeginShadowFetch marks the shadow copy as loading.
func (s *Store) BeginShadowFetch() {
	s.shadow.Loading = true
}

// ApplyShadow replaces the shadow copy with a successful fetch result.
func (s *Store) ApplyShadow(records []domain.Record, fetchedAt time.Time) {
	s.shadow.Data = records
	s.shadow.LastFetchedAt = fetchedAt
	s.shadow.Loading = false
	s.shadow.Err = nil
	s.shadow.Version = s.nextVersion()
}

// FailShadow records a failed shadow-copy fetch and keeps the prior data.
func (s *Store) FailShadow(err error) {
	s.shadow.Loading = false
	s.shadow.Err = err
}

// Record looks up a record by ID, preferring the windowed page over the shadow copy.
// Returns ErrRecordNotFound if neither copy holds it.
func (s *Store) Record(id string) (domain.Record, error) {
	for _, r := range s.page.Data.Records {
		if r.ID == id {
			return r, nil
		}
	}
	for _, r := range s.shadow.Data {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Record{}, ErrRecordNotFound
}

// PatchPageStatus sets the status of the windowed-page record with the given ID
// in place. No other field changes and the shadow copy is left untouched.
// Returns ErrRecordNotFound if the windowed page does not hold the record.
func (s *Store) PatchPageStatus(id string, status domain.Status) error {
	for i := range s.page.Data.Records {
		if s.page.Data.Records[i].ID == id {
			s.page.Data.Records[i].Status = status
			s.page.Version = s.nextVersion()
			return nil
		}
	}
	return ErrRecordNotFound
}

// Clear resets both copies and the page index, preserving project, viewer and page size.
func (s *Store) Clear() {
	s.page = Cache[domain.Page]{Version: s.nextVersion()}
	s.shadow = Cache[[]domain.Record]{Version: s.nextVersion()}
	s.pageIndex = 0
}

// Reset completely resets the store to initial state.
func (s *Store) Reset() {
	s.project = nil
	s.viewer = nil
	s.Clear()
}

func (s *Store) nextVersion() uint64 {
	s.versions++
	return s.versions
}
