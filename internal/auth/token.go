package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MarcoMadridG27/Thesaurus/internal/common"
	"github.com/MarcoMadridG27/Thesaurus/internal/model"
	"github.com/MarcoMadridG27/Thesaurus/internal/service"
)

// TokenStore keeps the access token in durable client storage.
type TokenStore struct {
	kv service.KeyValueStore
}

// NewTokenStore creates a token store over kv.
func NewTokenStore(kv service.KeyValueStore) *TokenStore {
	return &TokenStore{kv: kv}
}

// Save stores token, replacing any previous one.
func (s *TokenStore) Save(ctx context.Context, token *model.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := s.kv.Set(ctx, service.KeyAuthToken, data); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Load returns the stored token or ErrNotAuthenticated.
func (s *TokenStore) Load(ctx context.Context) (*model.Token, error) {
	data, ok, err := s.kv.Get(ctx, service.KeyAuthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	if !ok || len(data) == 0 {
		return nil, common.ErrNotAuthenticated
	}

	var token model.Token
	if err := json.Unmarshal(data, &token); err != nil {
		slog.Warn("Stored token is unreadable, treating as signed out", "error", err)
		return nil, common.ErrNotAuthenticated
	}
	if token.AccessToken == "" {
		return nil, common.ErrNotAuthenticated
	}
	return &token, nil
}

// Clear signs out.
func (s *TokenStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, service.KeyAuthToken)
}

// Require returns the stored token if it has not expired at now.
func (s *TokenStore) Require(ctx context.Context, now time.Time) (*model.Token, error) {
	token, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !Valid(token, now) {
		return nil, common.ErrTokenExpired
	}
	return token, nil
}

// ExpiresAt reports when token stops being valid. The JWT exp claim is read
// without verifying the signature; tokens without one fall back to
// expires_in counted from when the token was issued.
func ExpiresAt(token *model.Token) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time, true
		}
	}
	if token.ExpiresIn > 0 && !token.IssuedAt.IsZero() {
		return token.IssuedAt.Add(time.Duration(token.ExpiresIn) * time.Second), true
	}
	return time.Time{}, false
}

// Valid reports whether token is usable at now. A token with no known
// expiry is accepted.
func Valid(token *model.Token, now time.Time) bool {
	if token == nil || token.AccessToken == "" {
		return false
	}
	exp, ok := ExpiresAt(token)
	if !ok {
		return true
	}
	return now.Before(exp)
}
