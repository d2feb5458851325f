package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// loadDashboard reads the current figures and cached analysis.
func (m Model) loadDashboard() tea.Cmd {
	dashboard := m.dashboard
	return func() tea.Msg {
		analysis, at, _ := dashboard.LatestAnalysis()
		return dashboardLoadedMsg{
			stats:      dashboard.Stats(),
			analysis:   analysis,
			analysisAt: at,
		}
	}
}

// connect starts or restarts the chat session. Failures are already in
// the conversation log; the error only feeds the status bar.
func (m Model) connect() tea.Cmd {
	session, ctx := m.chat, m.ctx
	return func() tea.Msg {
		return connectDoneMsg{err: session.Reconnect(ctx)}
	}
}

func (m Model) disconnect() tea.Cmd {
	session := m.chat
	return func() tea.Msg {
		session.Disconnect()
		return chatChangedMsg{}
	}
}

func (m Model) send(text string) tea.Cmd {
	session := m.chat
	return func() tea.Msg {
		return sendDoneMsg{text: text, err: session.Send(text)}
	}
}

// coalesce returns a callback that never blocks and folds bursts of
// notifications into one msg delivered through send.
func coalesce(ctx context.Context, send func(tea.Msg), msg tea.Msg) func() {
	pending := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-pending:
				send(msg)
			}
		}
	}()

	return func() {
		select {
		case pending <- struct{}{}:
		default:
		}
	}
}
