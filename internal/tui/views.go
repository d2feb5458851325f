package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MarcoMadridG27/Thesaurus/internal/chat"
	"github.com/MarcoMadridG27/Thesaurus/internal/model"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("Thesaurus") + "  " + m.theme.Subtitle.Render("Asistente de facturas")

	tiles := []string{
		m.renderStat("Gasto total", money(m.stats.TotalSpent)),
		m.renderStat("Este mes", money(m.stats.MonthlySpent)),
		m.renderStat("Facturas", fmt.Sprintf("%d", m.stats.InvoiceCount)),
		m.renderStat("Proveedores", fmt.Sprintf("%d", m.stats.SupplierCount)),
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, tiles...)
	if m.width > 0 && lipgloss.Width(row) > m.width {
		row = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, tiles[:2]...),
			lipgloss.JoinHorizontal(lipgloss.Top, tiles[2:]...),
		)
	}

	lines := []string{title, row}
	if insight := m.renderInsight(); insight != "" {
		lines = append(lines, insight)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderStat(label, value string) string {
	return m.theme.StatBox.Render(m.theme.Faint.Render(label) + "\n" + m.theme.StatValue.Render(value))
}

func (m Model) renderInsight() string {
	if m.analysis == nil || m.analysis.AIInsight == nil {
		return ""
	}
	insight := m.analysis.AIInsight

	badge := m.theme.Sentiment(insight.Sentiment).Render("[" + insight.Sentiment.Label() + "]")
	when := ""
	if t, ok := insight.CreatedTime(); ok {
		when = model.RelativeTime(m.now(), t)
	} else if !m.analysisAt.IsZero() {
		when = model.RelativeTime(m.now(), m.analysisAt)
	}

	text := badge + " " + m.theme.Normal.Render(insight.Text)
	if when != "" {
		text += " " + m.theme.Faint.Render(when)
	}
	if m.width > 0 {
		return lipgloss.NewStyle().Width(m.width).Render(text)
	}
	return text
}

func (m Model) renderConversation() string {
	if len(m.messages) == 0 {
		hint := "Sin mensajes. Escribe una pregunta y pulsa Enter."
		if m.chatState != chat.StateConnected {
			hint = "Pulsa Ctrl+O para conectar con el asistente."
		}
		return m.theme.Faint.Render(hint)
	}

	width := max(20, m.width-2)
	blocks := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		blocks = append(blocks, m.renderMessage(msg, width))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderMessage(msg model.Message, width int) string {
	wrap := lipgloss.NewStyle().Width(width)

	switch msg.Role {
	case model.RoleUser:
		return m.theme.UserLabel.Render(msg.Role.DisplayName()+":") + "\n" + wrap.Render(m.theme.Normal.Render(msg.Content))
	case model.RoleSystem:
		return wrap.Render(m.theme.SystemText.Render("• " + msg.Content))
	default:
		content := msg.Content
		if msg.Streaming {
			content += "▌"
		}
		return m.theme.Bold.Render(msg.Role.DisplayName()+":") + "\n" + wrap.Render(m.theme.AssistantText.Render(content))
	}
}

func (m Model) renderInput() string {
	return m.theme.Input.Width(max(10, m.width-2)).Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	var state string
	switch m.chatState {
	case chat.StateConnected:
		state = m.theme.StatusSuccess.Render("● conectado")
	case chat.StateHandshaking, chat.StateOpening:
		state = m.theme.StatusWarning.Render("● conectando")
	case chat.StateClosed:
		state = m.theme.StatusError.Render("● cerrado")
	default:
		state = m.theme.StatusPending.Render("○ desconectado")
	}

	parts := []string{state}
	if m.awaiting {
		parts = append(parts, m.theme.StatusInfo.Render("escribiendo..."))
	}
	if m.lastError != nil {
		parts = append(parts, m.theme.StatusError.Render(m.lastError.Error()))
	}

	bar := strings.Join(parts, "  ")
	return lipgloss.JoinVertical(lipgloss.Left, bar, m.help.View(m.keymap))
}

func money(d decimal.Decimal) string {
	return "S/ " + d.StringFixed(2)
}
