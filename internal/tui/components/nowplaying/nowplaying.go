// Package nowplaying renders the active playback session and forwards input
// to the engine.
package nowplaying

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marquee-tv/marquee/internal/player"
	"github.com/marquee-tv/marquee/internal/tui/common"
	"github.com/marquee-tv/marquee/internal/tui/styles"
	"github.com/marquee-tv/marquee/internal/tui/utils"
)

const statusTimeout = 2 * time.Second

// Engine is the part of the playback engine the view drives
type Engine interface {
	Snapshot() player.Session
	HandleKey(ev *player.KeyEvent) bool
	SeekToFraction(f float64)
	SetPlaybackSpeed(speed float64) error
	ChangeQuality(quality string) error
	SetSubtitleTrack(name string) error
	ToggleSettings()
	ToggleSubtitles()
	PointerMove()
	PointerLeave()
	Download(ctx context.Context) bool
	Close()
	Subscribe() <-chan struct{}
	Unsubscribe(ch <-chan struct{})
}

// Model is the now-playing view
type Model struct {
	engine  Engine
	changes <-chan struct{}
	session player.Session

	keys   keyMap
	help   help.Model
	bar    progress.Model
	width  int
	cursor int // picker selection

	status    string
	statusErr bool
}

// New creates the view and subscribes to engine changes
func New(engine Engine) Model {
	bar := progress.New(
		progress.WithGradient(string(styles.OxocarbonPurple), string(styles.OxocarbonCyan)),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)
	return Model{
		engine:  engine,
		changes: engine.Subscribe(),
		session: engine.Snapshot(),
		keys:    defaultKeyMap(),
		help:    help.New(),
		bar:     bar,
	}
}

// Init starts listening for engine changes
func (m Model) Init() tea.Cmd {
	return common.WaitForChange(m.changes)
}

// Session returns the last rendered snapshot
func (m Model) Session() player.Session {
	return m.session
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.bar.Width = max(msg.Width-24, 10)
		return m, nil

	case common.ChangedMsg:
		m.session = m.engine.Snapshot()
		if m.session.State == player.StateClosed {
			return m, m.quit()
		}
		return m, common.WaitForChange(m.changes)

	case common.StatusMsg:
		m.status, m.statusErr = msg.Text, msg.Error
		return m, nil

	case common.ClearStatusMsg:
		m.status = ""
		return m, nil

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionMotion {
			m.engine.PointerMove()
		}
		return m, nil

	case tea.BlurMsg:
		m.engine.PointerLeave()
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		m.session = m.engine.Snapshot()
		if m.session.State == player.StateClosed {
			return m, m.quit()
		}
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	s := m.engine.Snapshot()

	if s.SettingsOpen || s.SubtitlesOpen {
		return m.handlePickerKey(msg, s)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.engine.Close()
		return nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case key.Matches(msg, m.keys.Settings):
		m.engine.ToggleSettings()
		m.cursor = slices.Index(settingsLabels(), qualityLabel(s.Quality))
		return nil
	case key.Matches(msg, m.keys.Subtitles):
		m.engine.ToggleSubtitles()
		m.cursor = max(slices.Index(player.SubtitleTracks, s.Subtitle), 0)
		return nil
	case key.Matches(msg, m.keys.Download):
		return m.download()
	case key.Matches(msg, m.keys.Jump):
		if !s.State.Ready() {
			return nil
		}
		digit := float64(msg.String()[0] - '0')
		m.engine.SeekToFraction(digit / 10)
		return nil
	case key.Matches(msg, m.keys.Speed):
		return m.stepSpeed(s, msg.String() == ">")
	}

	ev := player.NewKeyEvent(msg.String())
	m.engine.HandleKey(ev)
	return nil
}

func (m *Model) download() tea.Cmd {
	s := m.engine.Snapshot()
	if !s.State.Open() || s.MediaURL == "" {
		return nil
	}
	text := "Already in downloads"
	if m.engine.Download(context.Background()) {
		text = "Added to downloads"
	}
	return tea.Batch(common.ShowStatus(text, false), common.ClearStatusAfter(statusTimeout))
}

func (m *Model) stepSpeed(s player.Session, faster bool) tea.Cmd {
	i := slices.Index(player.Speeds, s.Speed)
	if i < 0 {
		return nil
	}
	if faster {
		i++
	} else {
		i--
	}
	if i < 0 || i >= len(player.Speeds) {
		return nil
	}
	if err := m.engine.SetPlaybackSpeed(player.Speeds[i]); err != nil {
		return common.ShowStatus(err.Error(), true)
	}
	return nil
}

func (m *Model) handlePickerKey(msg tea.KeyMsg, s player.Session) tea.Cmd {
	options := settingsLabels()
	if s.SubtitlesOpen {
		options = player.SubtitleTracks
	}

	switch {
	case key.Matches(msg, m.keys.PickerUp):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.PickerDown):
		m.cursor = min(m.cursor+1, len(options)-1)
	case key.Matches(msg, m.keys.PickerClose):
		if s.SubtitlesOpen {
			m.engine.ToggleSubtitles()
		} else {
			m.engine.ToggleSettings()
		}
	case key.Matches(msg, m.keys.PickerApply):
		if m.cursor < 0 || m.cursor >= len(options) {
			return nil
		}
		if s.SubtitlesOpen {
			// Choosing a track closes the picker
			if err := m.engine.SetSubtitleTrack(options[m.cursor]); err != nil {
				return common.ShowStatus(err.Error(), true)
			}
			return nil
		}
		return m.applySetting(m.cursor)
	}
	return nil
}

func (m *Model) applySetting(i int) tea.Cmd {
	var err error
	if i < len(player.Qualities) {
		err = m.engine.ChangeQuality(player.Qualities[i])
	} else {
		err = m.engine.SetPlaybackSpeed(player.Speeds[i-len(player.Qualities)])
	}
	if err != nil {
		return common.ShowStatus(err.Error(), true)
	}
	return nil
}

func (m *Model) quit() tea.Cmd {
	m.engine.Unsubscribe(m.changes)
	return tea.Quit
}

func settingsLabels() []string {
	labels := make([]string, 0, len(player.Qualities)+len(player.Speeds))
	for _, q := range player.Qualities {
		labels = append(labels, qualityLabel(q))
	}
	for _, s := range player.Speeds {
		labels = append(labels, speedLabel(s))
	}
	return labels
}

func qualityLabel(q string) string { return "Quality " + q }

func speedLabel(s float64) string { return fmt.Sprintf("Speed %gx", s) }

// View renders the session
func (m Model) View() string {
	s := m.session
	width := m.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("marquee"))
	b.WriteString(" ")
	b.WriteString(styles.ItemTitleStyle.Render(utils.TruncateWithWidth(s.Title, max(width-14, 10))))
	b.WriteString("\n\n")

	switch s.State {
	case player.StateClosed:
		return ""
	case player.StateUnavailable:
		b.WriteString(styles.FallbackStyle.Render(
			"Video unavailable\n\nThis title has no playable media.\nPress esc to go back.",
		))
		return b.String()
	case player.StateLoading:
		b.WriteString(styles.MetadataStyle.Render("Loading..."))
		return b.String()
	}

	b.WriteString(styles.StatusBadge(s.State.String()))
	if s.State == player.StateEnded {
		b.WriteString(styles.MetadataStyle.Render("  press space to replay"))
	}
	b.WriteString("\n")

	if s.OverlayVisible {
		b.WriteString(styles.OverlayStyle.Render(m.controls(s)))
		b.WriteString("\n")
	}

	if s.SettingsOpen {
		selected := []string{qualityLabel(s.Quality), speedLabel(s.Speed)}
		b.WriteString(m.picker("Settings", settingsLabels(), selected, s.QualityLocked()))
		b.WriteString("\n")
	}
	if s.SubtitlesOpen {
		b.WriteString(m.picker("Subtitles", player.SubtitleTracks, []string{s.Subtitle}, false))
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

	b.WriteString(styles.HelpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) controls(s player.Session) string {
	timeline := lipgloss.JoinHorizontal(lipgloss.Center,
		utils.FormatClock(s.CurrentTime), " ",
		m.bar.ViewAs(s.Percentage()/100), " ",
		utils.FormatClock(s.Duration),
	)

	volume := fmt.Sprintf("vol %d%%", int(s.Volume*100+0.5))
	if s.Muted {
		volume = "muted"
	}
	quality := s.Quality
	if s.PendingQuality != "" {
		quality = fmt.Sprintf("%s -> %s", s.Quality, s.PendingQuality)
	}
	parts := []string{volume, speedLabel(s.Speed), quality, "CC " + s.Subtitle}
	if s.Fullscreen {
		parts = append(parts, "fullscreen")
	}

	return timeline + "\n" + styles.MetadataStyle.Render(strings.Join(parts, " • "))
}

// picker renders options with the cursor and a check on selected entries.
// Quality rows are dimmed while a switch is in flight.
func (m Model) picker(title string, options, selected []string, qualityLocked bool) string {
	var b strings.Builder
	b.WriteString(styles.ItemTitleStyle.Render(title))
	for i, opt := range options {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		line := marker + opt
		if slices.Contains(selected, opt) {
			line += " ✓"
		}
		style := styles.MetadataStyle
		if qualityLocked && strings.HasPrefix(opt, "Quality") {
			style = style.Foreground(styles.OxocarbonBase02)
		}
		b.WriteString("\n")
		b.WriteString(style.Render(line))
	}
	return styles.PopupStyle.Render(b.String())
}
