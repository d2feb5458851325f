// Package service defines the interfaces shared between application layers.
package service

import (
	"context"
	"time"
)

// Well-known storage keys. Each key holds one serialized block that is
// replaced as a whole on every write.
const (
	KeyInvoices          = "invoices"
	KeyLatestAnalysis    = "latest_analysis"
	KeyAnalysisTimestamp = "analysis_timestamp"
	KeyAuthToken         = "auth_token"
)

// KeyValueStore defines the contract for durable client-side storage.
type KeyValueStore interface {
	// Get returns the stored block and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set replaces the whole block stored under key.
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryOptions is used for idempotent reads against remote services.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}
