package tui

import (
	"context"
	"time"

	"github.com/MarcoMadridG27/Thesaurus/internal/chat"
	"github.com/MarcoMadridG27/Thesaurus/internal/model"
	"github.com/MarcoMadridG27/Thesaurus/internal/tui/themes"
)

// ChatSession is the conversation the TUI drives.
type ChatSession interface {
	Connect(ctx context.Context) error
	Reconnect(ctx context.Context) error
	Disconnect()
	Send(text string) error
	Messages() []model.Message
	State() chat.State
	Awaiting() bool
	SessionID() string
	Subscribe(fn func()) func()
}

// Dashboard supplies the aggregate figures shown above the conversation.
type Dashboard interface {
	Stats() model.Stats
	LatestAnalysis() (*model.Analysis, time.Time, bool)
	Subscribe(fn func()) func()
}

// Config holds TUI configuration.
type Config struct {
	Theme       themes.Theme
	Chat        ChatSession
	Dashboard   Dashboard
	Now         func() time.Time
	Width       int
	Height      int
	AutoConnect bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:       themes.Default,
		Now:         time.Now,
		Width:       100,
		Height:      30,
		AutoConnect: true,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithAutoConnect controls whether the chat connects on start.
func WithAutoConnect(enabled bool) Option {
	return func(c *Config) {
		c.AutoConnect = enabled
	}
}

// WithClock overrides the time source for relative timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		if now != nil {
			c.Now = now
		}
	}
}
