package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcoMadridG27/Thesaurus/internal/common"
	"github.com/MarcoMadridG27/Thesaurus/internal/model"
	"github.com/MarcoMadridG27/Thesaurus/internal/service"
	"github.com/MarcoMadridG27/Thesaurus/internal/storage"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "20123456789",
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("irrelevant"))
	require.NoError(t, err)
	return s
}

func TestValid(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		token *model.Token
		name  string
		want  bool
	}{
		{name: "nil", token: nil, want: false},
		{name: "empty", token: &model.Token{}, want: false},
		{name: "jwt not expired", token: &model.Token{AccessToken: signedToken(t, now.Add(time.Hour))}, want: true},
		{name: "jwt expired", token: &model.Token{AccessToken: signedToken(t, now.Add(-time.Minute))}, want: false},
		{
			name:  "jwt exp wins over expires_in",
			token: &model.Token{AccessToken: signedToken(t, now.Add(-time.Minute)), ExpiresIn: 86400, IssuedAt: now},
			want:  false,
		},
		{
			name:  "opaque token within expires_in",
			token: &model.Token{AccessToken: "opaque", ExpiresIn: 3600, IssuedAt: now.Add(-30 * time.Minute)},
			want:  true,
		},
		{
			name:  "opaque token past expires_in",
			token: &model.Token{AccessToken: "opaque", ExpiresIn: 60, IssuedAt: now.Add(-2 * time.Minute)},
			want:  false,
		},
		{name: "opaque token without expiry", token: &model.Token{AccessToken: "opaque"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.token, now))
		})
	}
}

func TestTokenStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	kv := storage.NewMemoryStorage()
	ts := NewTokenStore(kv)

	_, err := ts.Require(ctx, now)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)

	require.NoError(t, ts.Save(ctx, &model.Token{AccessToken: "opaque", ExpiresIn: 60, IssuedAt: now}))

	token, err := ts.Require(ctx, now.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "opaque", token.AccessToken)

	_, err = ts.Require(ctx, now.Add(2*time.Minute))
	assert.ErrorIs(t, err, common.ErrTokenExpired)

	require.NoError(t, ts.Clear(ctx))
	_, err = ts.Load(ctx)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestTokenStore_Corrupted(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStorage()
	require.NoError(t, kv.Set(ctx, service.KeyAuthToken, []byte("garbage")))

	_, err := NewTokenStore(kv).Load(ctx)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
}
