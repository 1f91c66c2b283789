// Package tui provides Bubble Tea models for the interactive TUI.
package tui

import "github.com/robby/reqboard/internal/domain"

// ProjectSelectedMsg is emitted when the user selects a project.
type ProjectSelectedMsg struct {
	Project domain.Project
}

// StatusSelectedMsg is emitted when the user picks a status filter.
// Status is filter.All to show every status.
type StatusSelectedMsg struct {
	Status domain.Status
}

// ErrorMsg is emitted when an error occurs.
type ErrorMsg struct {
	Err error
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}
