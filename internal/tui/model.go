// Package tui is the terminal dashboard: invoice figures, the latest
// generated insight and a streaming chat with the assistant.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MarcoMadridG27/Thesaurus/internal/chat"
	"github.com/MarcoMadridG27/Thesaurus/internal/common"
	"github.com/MarcoMadridG27/Thesaurus/internal/model"
	"github.com/MarcoMadridG27/Thesaurus/internal/tui/themes"
)

// Model holds the main TUI state.
type Model struct {
	ctx        context.Context
	analysisAt time.Time
	theme      themes.Theme
	chat       ChatSession
	dashboard  Dashboard
	now        func() time.Time
	lastError  error
	analysis   *model.Analysis
	keymap     KeyMap
	help       help.Model
	input      textinput.Model
	viewport   viewport.Model
	messages   []model.Message
	stats      model.Stats
	chatState  chat.State
	width      int
	height     int
	awaiting   bool
	autoConn   bool
	showHelp   bool
	quitting   bool
}

func newModel(ctx context.Context, cfg Config) Model {
	input := textinput.New()
	input.Placeholder = "Pregunta sobre tus facturas..."
	input.CharLimit = 2000
	input.Focus()

	m := Model{
		ctx:       ctx,
		theme:     cfg.Theme,
		chat:      cfg.Chat,
		dashboard: cfg.Dashboard,
		now:       cfg.Now,
		keymap:    DefaultKeyMap(),
		help:      help.New(),
		input:     input,
		viewport:  viewport.New(cfg.Width, 10),
		autoConn:  cfg.AutoConnect,
		width:     cfg.Width,
		height:    cfg.Height,
	}
	m.handleResize()
	m.refreshConversation()
	return m
}

// Init loads the dashboard and optionally connects the chat.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.loadDashboard()}
	if m.autoConn {
		cmds = append(cmds, m.connect())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		m.refreshConversation()
		return m, nil

	case chatChangedMsg:
		m.syncChat()
		return m, nil

	case dashboardChangedMsg:
		return m, m.loadDashboard()

	case dashboardLoadedMsg:
		m.stats = msg.stats
		m.analysis = msg.analysis
		m.analysisAt = msg.analysisAt
		m.handleResize()
		return m, nil

	case connectDoneMsg:
		m.lastError = msg.err
		m.syncChat()
		return m, nil

	case sendDoneMsg:
		m.lastError = nil
		if msg.err != nil {
			m.lastError = msg.err
			if errors.Is(msg.err, common.ErrNotConnected) || errors.Is(msg.err, common.ErrAwaitingReply) {
				m.input.SetValue(msg.text)
			}
		}
		m.syncChat()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey handles bindings that act on the session. It reports false for
// keys that belong to the input or the viewport.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return tea.Quit, true

	case key.Matches(msg, m.keymap.Connect):
		m.lastError = nil
		return m.connect(), true

	case key.Matches(msg, m.keymap.Disconnect):
		m.lastError = nil
		return m.disconnect(), true

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.handleResize()
		return nil, true

	case key.Matches(msg, m.keymap.Send):
		text := m.input.Value()
		if strings.TrimSpace(text) == "" {
			return nil, true
		}
		m.input.Reset()
		return m.send(text), true
	}
	return nil, false
}

// syncChat copies the session state into the model.
func (m *Model) syncChat() {
	m.messages = m.chat.Messages()
	m.chatState = m.chat.State()
	m.awaiting = m.chat.Awaiting()
	m.refreshConversation()
}

func (m *Model) refreshConversation() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderConversation())
	if atBottom || m.awaiting {
		m.viewport.GotoBottom()
	}
}

// handleResize gives the conversation whatever the fixed panels leave.
func (m *Model) handleResize() {
	m.help.Width = m.width
	m.input.Width = max(10, m.width-6)

	fixed := lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.renderInput()) +
		lipgloss.Height(m.renderStatusBar())
	m.viewport.Width = m.width
	m.viewport.Height = max(3, m.height-fixed)
}
