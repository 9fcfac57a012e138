package common

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/marquee-tv/marquee/internal/tui/styles"
)

// FuzzySearch is a filter input for list views
type FuzzySearch struct {
	input  textinput.Model
	active bool
	query  string
}

// NewFuzzySearch creates an inactive filter
func NewFuzzySearch() *FuzzySearch {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Prompt = ""
	ti.CharLimit = 200
	ti.TextStyle = styles.ItemTitleStyle
	ti.PlaceholderStyle = styles.MetadataStyle

	return &FuzzySearch{input: ti}
}

// Activate enables filtering and focuses the input
func (f *FuzzySearch) Activate() tea.Cmd {
	f.active = true
	f.input.SetValue("")
	f.query = ""
	f.input.Focus()
	return textinput.Blink
}

// Deactivate clears the filter
func (f *FuzzySearch) Deactivate() {
	f.active = false
	f.input.Blur()
	f.input.SetValue("")
	f.query = ""
}

// IsActive reports whether the filter is shown
func (f *FuzzySearch) IsActive() bool {
	return f.active
}

// Query returns the current filter text
func (f *FuzzySearch) Query() string {
	return f.query
}

// Update feeds msg to the input while active
func (f *FuzzySearch) Update(msg tea.Msg) tea.Cmd {
	if !f.active {
		return nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	f.query = f.input.Value()
	return cmd
}

// View renders the filter line
func (f *FuzzySearch) View() string {
	if !f.active {
		return ""
	}
	return styles.MetadataStyle.Render("Filter: ") + f.input.View() +
		styles.HelpStyle.UnsetMarginTop().Render(" (esc to clear)")
}

// SetWidth sets the width of the input
func (f *FuzzySearch) SetWidth(width int) {
	f.input.Width = max(width-20, 10)
}

// Filter returns the indices of items matching the query, best first.
// Without a query every index is returned in order.
func (f *FuzzySearch) Filter(items []string) []int {
	if !f.active || f.query == "" {
		indices := make([]int, len(items))
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	matches := fuzzy.Find(f.query, items)
	indices := make([]int, len(matches))
	for i, match := range matches {
		indices[i] = match.Index
	}
	return indices
}
