package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marquee-tv/marquee/internal/config"
	"github.com/marquee-tv/marquee/internal/tui/components/downloads"
	"github.com/marquee-tv/marquee/internal/tui/components/nowplaying"
)

// RunPlayer shows the now-playing view until the session closes or the user quits
func RunPlayer(ctx context.Context, engine nowplaying.Engine, cfg *config.UIConfig) error {
	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx), tea.WithReportFocus()}
	if cfg.MouseMotion {
		opts = append(opts, tea.WithMouseAllMotion())
	}
	return run(tea.NewProgram(nowplaying.New(engine), opts...))
}

// RunDownloads shows the live downloads list
func RunDownloads(ctx context.Context, manager downloads.Manager, cfg *config.UIConfig) error {
	m := downloads.New(manager, cfg.RefreshInterval)
	return run(tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)))
}

func run(p *tea.Program) error {
	if _, err := p.Run(); err != nil {
		// A cancelled context is a normal way to stop
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
