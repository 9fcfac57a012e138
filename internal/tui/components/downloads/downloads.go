package downloads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/marquee-tv/marquee/internal/downloads"
	"github.com/marquee-tv/marquee/internal/tui/common"
	"github.com/marquee-tv/marquee/internal/tui/styles"
	"github.com/marquee-tv/marquee/internal/tui/utils"
)

// Manager is the part of the download store the view uses
type Manager interface {
	List(ctx context.Context) []downloads.Job
	Remove(ctx context.Context, id string)
	Clear(ctx context.Context)
	Pause(ctx context.Context, id string) error
	Resume(ctx context.Context, id string) error
	Subscribe() <-chan struct{}
	Unsubscribe(ch <-chan struct{})
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Pause  key.Binding
	Delete key.Binding
	Clear  key.Binding
	Filter key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Pause, k.Delete, k.Clear, k.Filter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Pause:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause/resume")),
	Delete: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Clear:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear all")),
	Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the downloads view
type Model struct {
	manager Manager
	changes <-chan struct{}
	jobs    []downloads.Job

	currentIndex int
	width        int
	height       int
	refresh      time.Duration
	now          func() time.Time

	progressBar progress.Model
	fuzzySearch *common.FuzzySearch
	help        help.Model

	// Delete confirmation dialog. An empty id with showDeleteDialog set
	// means clear everything.
	showDeleteDialog bool
	deleteID         string
	deleteTitle      string

	status    string
	statusErr bool
}

// New creates the view and subscribes to manager changes
func New(manager Manager, refresh time.Duration) Model {
	m := Model{
		manager: manager,
		changes: manager.Subscribe(),
		refresh: refresh,
		now:     time.Now,
		progressBar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(20),
			progress.WithoutPercentage(),
		),
		fuzzySearch: common.NewFuzzySearch(),
		help:        help.New(),
	}
	m.reload()
	return m
}

// Init starts the change listener and the relative-time ticker
func (m Model) Init() tea.Cmd {
	return tea.Batch(common.WaitForChange(m.changes), common.RefreshTick(m.refresh))
}

// Jobs returns the jobs currently listed, after filtering
func (m Model) Jobs() []downloads.Job {
	visible := m.visible()
	jobs := make([]downloads.Job, len(visible))
	for i, idx := range visible {
		jobs[i] = m.jobs[idx]
	}
	return jobs
}

func (m *Model) reload() {
	m.jobs = m.manager.List(context.Background())
	if n := len(m.visible()); m.currentIndex >= n {
		m.currentIndex = max(n-1, 0)
	}
}

func (m Model) visible() []int {
	titles := make([]string, len(m.jobs))
	for i, job := range m.jobs {
		titles[i] = job.Title
	}
	return m.fuzzySearch.Filter(titles)
}

func (m Model) selected() (downloads.Job, bool) {
	visible := m.visible()
	if m.currentIndex < 0 || m.currentIndex >= len(visible) {
		return downloads.Job{}, false
	}
	return m.jobs[visible[m.currentIndex]], true
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.fuzzySearch.SetWidth(msg.Width)
		m.progressBar.Width = 20
		if msg.Width > 100 {
			m.progressBar.Width = 30
		}
		return m, nil

	case common.ChangedMsg:
		m.reload()
		return m, common.WaitForChange(m.changes)

	case common.RefreshTickMsg:
		return m, common.RefreshTick(m.refresh)

	case common.StatusMsg:
		m.status, m.statusErr = msg.Text, msg.Error
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()

	if m.showDeleteDialog {
		switch msg.String() {
		case "y", "Y", "enter":
			if m.deleteID == "" {
				m.manager.Clear(ctx)
			} else {
				m.manager.Remove(ctx, m.deleteID)
			}
			m.showDeleteDialog, m.deleteID, m.deleteTitle = false, "", ""
			m.reload()
		case "n", "N", "esc":
			m.showDeleteDialog, m.deleteID, m.deleteTitle = false, "", ""
		}
		return m, nil
	}

	if m.fuzzySearch.IsActive() {
		switch msg.String() {
		case "esc":
			m.fuzzySearch.Deactivate()
			m.currentIndex = 0
			return m, nil
		case "up", "down":
			// fall through to navigation
		default:
			cmd := m.fuzzySearch.Update(msg)
			m.currentIndex = 0
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.manager.Unsubscribe(m.changes)
		return m, tea.Quit
	case key.Matches(msg, keys.Filter):
		m.currentIndex = 0
		return m, m.fuzzySearch.Activate()
	case key.Matches(msg, keys.Up):
		m.currentIndex = max(m.currentIndex-1, 0)
	case key.Matches(msg, keys.Down):
		m.currentIndex = min(m.currentIndex+1, max(len(m.visible())-1, 0))
	case key.Matches(msg, keys.Pause):
		job, ok := m.selected()
		if !ok {
			return m, nil
		}
		var err error
		switch job.Status {
		case downloads.StatusDownloading:
			err = m.manager.Pause(ctx, job.ID)
		case downloads.StatusPaused:
			err = m.manager.Resume(ctx, job.ID)
		default:
			return m, nil
		}
		if err != nil {
			if errors.Is(err, downloads.ErrInvalidTransition) {
				return m, common.ShowStatus(fmt.Sprintf("Cannot change %s", job.Title), true)
			}
			return m, common.ShowStatus(err.Error(), true)
		}
		m.reload()
	case key.Matches(msg, keys.Delete):
		job, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.showDeleteDialog, m.deleteID, m.deleteTitle = true, job.ID, job.Title
	case key.Matches(msg, keys.Clear):
		if len(m.jobs) == 0 {
			return m, nil
		}
		m.showDeleteDialog, m.deleteID = true, ""
		m.deleteTitle = fmt.Sprintf("all %d downloads", len(m.jobs))
	}
	return m, nil
}

// View renders the list
func (m Model) View() string {
	var b strings.Builder

	stats := downloads.Summarize(m.jobs)
	b.WriteString(styles.TitleStyle.Render("Downloads"))
	b.WriteString(" ")
	b.WriteString(styles.MetadataStyle.Render(fmt.Sprintf("%d total • %d active • %d paused • %d completed",
		stats.Total, stats.Active, stats.Paused, stats.Completed)))
	b.WriteString("\n\n")

	if f := m.fuzzySearch.View(); f != "" {
		b.WriteString(f)
		b.WriteString("\n\n")
	}

	visible := m.visible()
	if len(visible) == 0 {
		if len(m.jobs) == 0 {
			b.WriteString(styles.MetadataStyle.Render("No downloads yet. Press d while watching to add one."))
		} else {
			b.WriteString(styles.MetadataStyle.Render("No downloads match the filter."))
		}
		b.WriteString("\n")
	}

	start, end := m.visibleRange(len(visible))
	for i := start; i < end; i++ {
		b.WriteString(m.renderJob(m.jobs[visible[i]], i == m.currentIndex))
		b.WriteString("\n")
	}

	if m.showDeleteDialog {
		b.WriteString(styles.PopupStyle.Render(fmt.Sprintf("Delete %s?\n\ny/n", m.deleteTitle)))
		b.WriteString("\n")
	}

	if m.status != "" {
		style := styles.MetadataStyle
		if m.statusErr {
			style = styles.ErrorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(styles.HelpStyle.Render(m.help.View(keys)))
	return b.String()
}

func (m Model) renderJob(job downloads.Job, selected bool) string {
	boxStyle := styles.ItemStyle
	titleStyle := styles.ItemTitleStyle
	if selected {
		boxStyle = styles.ItemSelectedStyle
		titleStyle = titleStyle.Foreground(styles.OxocarbonPurple)
	}

	width := m.width
	if width <= 0 {
		width = 80
	}
	title := utils.TruncateWithWidth(job.Title, max(width-20, 10))
	if job.Quality != "" {
		title = fmt.Sprintf("%s [%s]", title, job.Quality)
	}

	parts := []string{styles.StatusBadge(job.Status.String())}
	if job.Status != downloads.StatusCompleted {
		parts = append(parts, m.progressBar.ViewAs(float64(job.Progress)/100))
	}
	parts = append(parts, fmt.Sprintf("%d%%", job.Progress))
	if job.Size != "" {
		parts = append(parts, job.Size)
	}
	if job.CompletedAt != nil {
		parts = append(parts, "finished "+humanize.RelTime(*job.CompletedAt, m.now(), "ago", "from now"))
	} else {
		parts = append(parts, "added "+humanize.RelTime(job.AddedAt, m.now(), "ago", "from now"))
	}

	return boxStyle.Render(titleStyle.Render(title) + "\n" + styles.MetadataStyle.Render(strings.Join(parts, " • ")))
}

// visibleRange keeps the selection in view
func (m Model) visibleRange(total int) (int, int) {
	maxVisible := 8
	if m.height > 0 {
		maxVisible = max((m.height-8)/3, 3)
	}
	if total <= maxVisible {
		return 0, total
	}

	start := max(m.currentIndex-maxVisible/2, 0)
	end := start + maxVisible
	if end > total {
		end = total
		start = max(end-maxVisible, 0)
	}
	return start, end
}
