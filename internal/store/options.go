package store

import (
	"time"

	"github.com/google/uuid"
)

// DefaultPeriod is the period tag sent with background analyses.
const DefaultPeriod = "monthly"

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for defaults and monthly stats.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how placeholder invoice identifiers are made.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithPeriod sets the period tag for analysis requests.
func WithPeriod(period string) Option {
	return func(s *Store) {
		if period != "" {
			s.period = period
		}
	}
}

// WithTaskHook registers fn to be called whenever a detached analysis
// finishes, successfully or not.
func WithTaskHook(fn func(TaskResult)) Option {
	return func(s *Store) {
		s.onTask = fn
	}
}

// WithLoadAnalysis controls whether loading a non-empty collection starts
// a background analysis. It is on by default.
func WithLoadAnalysis(enabled bool) Option {
	return func(s *Store) {
		s.skipLoadAnalysis = !enabled
	}
}

func placeholderID() string {
	return "INV-" + uuid.NewString()
}
