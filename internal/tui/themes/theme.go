package themes

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MarcoMadridG27/Thesaurus/internal/model"
)

// Palette is the set of colors a theme is built from.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Info       lipgloss.Color
	Foreground lipgloss.Color
	Subtle     lipgloss.Color
	Border     lipgloss.Color
	Muted      lipgloss.Color
	Surface    lipgloss.Color
}

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Faint         lipgloss.Style
	UserLabel     lipgloss.Style
	AssistantText lipgloss.Style
	SystemText    lipgloss.Style
	Input         lipgloss.Style
	StatBox       lipgloss.Style
	StatValue     lipgloss.Style
	RoundedBox    lipgloss.Style
	StatusBar     lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusPending lipgloss.Style
	Palette       Palette
}

// New builds a theme from a palette.
func New(p Palette) Theme {
	status := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}

	return Theme{
		Palette:  p,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(p.Foreground),
		Subtitle: lipgloss.NewStyle().Foreground(p.Subtle),
		Normal:   lipgloss.NewStyle().Foreground(p.Foreground),
		Bold:     lipgloss.NewStyle().Bold(true).Foreground(p.Foreground),
		Faint:    lipgloss.NewStyle().Foreground(p.Muted),

		UserLabel:     lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		AssistantText: lipgloss.NewStyle().Foreground(p.Foreground),
		SystemText:    lipgloss.NewStyle().Italic(true).Foreground(p.Info),

		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Primary).
			Padding(0, 1),
		StatBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
		StatValue: lipgloss.NewStyle().Bold(true).Foreground(p.Secondary),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Background(p.Surface).
			Foreground(p.Foreground).
			Padding(0, 1),

		StatusSuccess: status(p.Success),
		StatusWarning: status(p.Warning),
		StatusError:   status(p.Error),
		StatusInfo:    status(p.Info),
		StatusPending: lipgloss.NewStyle().Foreground(p.Muted).Italic(true),
	}
}

// Sentiment returns the badge style for an insight sentiment.
func (t Theme) Sentiment(s model.Sentiment) lipgloss.Style {
	switch s {
	case model.SentimentPositive:
		return t.StatusSuccess
	case model.SentimentWarning:
		return t.StatusWarning
	case model.SentimentNegative:
		return t.StatusError
	default:
		return t.StatusPending
	}
}

// Default is the default theme.
var Default = New(Palette{
	Primary:    lipgloss.Color("#7c3aed"),
	Secondary:  lipgloss.Color("#a78bfa"),
	Success:    lipgloss.Color("#10b981"),
	Warning:    lipgloss.Color("#f59e0b"),
	Error:      lipgloss.Color("#ef4444"),
	Info:       lipgloss.Color("#3b82f6"),
	Foreground: lipgloss.Color("#fafafa"),
	Subtle:     lipgloss.Color("#a3a3a3"),
	Border:     lipgloss.Color("#404040"),
	Muted:      lipgloss.Color("#737373"),
	Surface:    lipgloss.Color("#262626"),
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = New(Palette{
	Primary:    lipgloss.Color("#cba6f7"),
	Secondary:  lipgloss.Color("#f5c2e7"),
	Success:    lipgloss.Color("#a6e3a1"),
	Warning:    lipgloss.Color("#f9e2af"),
	Error:      lipgloss.Color("#f38ba8"),
	Info:       lipgloss.Color("#89dceb"),
	Foreground: lipgloss.Color("#cdd6f4"),
	Subtle:     lipgloss.Color("#a6adc8"),
	Border:     lipgloss.Color("#45475a"),
	Muted:      lipgloss.Color("#6c7086"),
	Surface:    lipgloss.Color("#313244"),
})

// ByName returns the named theme, falling back to Default.
func ByName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "catppuccin", "catppuccin-mocha", "mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}
