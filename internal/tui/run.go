package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the dashboard and blocks until the user quits or ctx ends.
// The chat session is disconnected on exit.
func Run(ctx context.Context, session ChatSession, dashboard Dashboard, opts ...Option) error {
	if session == nil {
		return fmt.Errorf("chat session is required")
	}
	if dashboard == nil {
		return fmt.Errorf("dashboard is required")
	}

	cfg := defaultConfig()
	cfg.Chat = session
	cfg.Dashboard = dashboard
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(ctx, cfg), tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribeChat := session.Subscribe(coalesce(ctx, p.Send, chatChangedMsg{}))
	defer unsubscribeChat()
	unsubscribeDashboard := dashboard.Subscribe(coalesce(ctx, p.Send, dashboardChangedMsg{}))
	defer unsubscribeDashboard()
	defer session.Disconnect()

	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
