package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/MarcoMadridG27/Thesaurus/internal/common"
)

// EnvPrefix prefixes every environment variable viper reads.
const EnvPrefix = "THESAURUS"

// Config is the resolved application configuration.
type Config struct {
	Logging  Logging
	Database Database
	Tenant   Tenant
	Insights Insights
	Services Services
	Chat     Chat
}

// Logging controls the slog handler.
type Logging struct {
	Level  string
	Format string
}

// Database locates the client-side store.
type Database struct {
	Path string
}

// Tenant identifies the account's documents at the extraction service.
type Tenant struct {
	ID string
}

// Chat tunes the streaming chat client.
type Chat struct {
	OpenTimeout    time.Duration
	TypingInterval time.Duration
}

// Insights tunes calls to the analytics service.
type Insights struct {
	Period            string
	RequestsPerMinute int
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("services.timeout", 30*time.Second)
	v.SetDefault("services.allow_insecure", false)
	v.SetDefault("database.path", "$HOME/.local/share/thesaurus/thesaurus.db")
	v.SetDefault("tenant.id", "default-tenant")
	v.SetDefault("chat.open_timeout", 10*time.Second)
	v.SetDefault("chat.typing_interval", 15*time.Millisecond)
	v.SetDefault("insights.period", "monthly")
	v.SetDefault("insights.requests_per_minute", 30)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// BindEnv makes THESAURUS_SECTION_KEY variables override section.key.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads a .env file into the process environment. A missing
// file is not an error; existing variables are never overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load resolves the configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Services: LoadServices(v),
		Database: Database{Path: ExpandPath(v.GetString("database.path"))},
		Tenant:   Tenant{ID: v.GetString("tenant.id")},
		Chat: Chat{
			OpenTimeout:    v.GetDuration("chat.open_timeout"),
			TypingInterval: v.GetDuration("chat.typing_interval"),
		},
		Insights: Insights{
			Period:            v.GetString("insights.period"),
			RequestsPerMinute: v.GetInt("insights.requests_per_minute"),
		},
		Logging: Logging{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Database.Path == "":
		return fmt.Errorf("%w: database.path must be set", common.ErrMissingConfig)
	case c.Tenant.ID == "":
		return fmt.Errorf("%w: tenant.id must be set", common.ErrMissingConfig)
	case c.Services.Timeout <= 0:
		return fmt.Errorf("%w: services.timeout must be positive", common.ErrInvalidConfig)
	case c.Chat.OpenTimeout <= 0:
		return fmt.Errorf("%w: chat.open_timeout must be positive", common.ErrInvalidConfig)
	case c.Chat.TypingInterval <= 0:
		return fmt.Errorf("%w: chat.typing_interval must be positive", common.ErrInvalidConfig)
	case c.Insights.RequestsPerMinute <= 0:
		return fmt.Errorf("%w: insights.requests_per_minute must be positive", common.ErrInvalidConfig)
	}
	return nil
}
