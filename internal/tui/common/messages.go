package common

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// This file contains custom tea.Msg types shared between components.

// ChangedMsg is delivered when a subscribed store or engine reports a change
type ChangedMsg struct{}

// SubscriptionClosedMsg is delivered when a change channel is closed
type SubscriptionClosedMsg struct{}

// RefreshTickMsg triggers a periodic redraw (relative times, clocks)
type RefreshTickMsg struct{}

// StatusMsg shows a transient line in the footer
type StatusMsg struct {
	Text  string
	Error bool
}

// ClearStatusMsg removes the footer line
type ClearStatusMsg struct{}

// WaitForChange blocks on ch and reports one change. Components re-issue it
// after handling ChangedMsg.
func WaitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return SubscriptionClosedMsg{}
		}
		return ChangedMsg{}
	}
}

// RefreshTick schedules a RefreshTickMsg after d
func RefreshTick(d time.Duration) tea.Cmd {
	if d <= 0 {
		d = time.Second
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return RefreshTickMsg{} })
}

// ShowStatus returns a command that posts a footer message
func ShowStatus(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text, Error: isError} }
}

// ClearStatusAfter clears the footer after d
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return ClearStatusMsg{} })
}
