package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactsapi/internal/config"
)

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(config.JWTConfig{
		Secret:             "test-secret",
		AccessExpiresMin:   15,
		RefreshExpiresDays: 7,
	})
	require.NoError(t, err)
	return m
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager(config.JWTConfig{})
	assert.Error(t, err)
}

func TestTokenManager_AccessToken(t *testing.T) {
	m := newTestManager(t)

	tok, err := m.NewAccessToken("user-123")
	require.NoError(t, err)

	claims, err := m.Parse(tok, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
}

func TestTokenManager_TypeMismatch(t *testing.T) {
	m := newTestManager(t)

	tests := []struct {
		name     string
		mint     func() (string, error)
		wantType string
	}{
		{
			name:     "access token is not a refresh token",
			mint:     func() (string, error) { return m.NewAccessToken("user-123") },
			wantType: TokenTypeRefresh,
		},
		{
			name:     "refresh token is not an access token",
			mint:     func() (string, error) { return m.NewRefreshToken("user-123") },
			wantType: TokenTypeAccess,
		},
		{
			name:     "email token is not a reset token",
			mint:     func() (string, error) { return m.NewEmailToken("a@b.c") },
			wantType: TokenTypePasswordReset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := tt.mint()
			require.NoError(t, err)

			_, err = m.Parse(tok, tt.wantType)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenManager_Expired(t *testing.T) {
	m := newTestManager(t)
	m.accessTTL = -time.Minute

	tok, err := m.NewAccessToken("user-123")
	require.NoError(t, err)

	_, err = m.Parse(tok, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	m := newTestManager(t)
	other, err := NewTokenManager(config.JWTConfig{
		Secret:             "other-secret",
		AccessExpiresMin:   15,
		RefreshExpiresDays: 7,
	})
	require.NoError(t, err)

	tok, err := m.NewAccessToken("user-123")
	require.NoError(t, err)

	_, err = other.Parse(tok, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Garbage(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Parse("not-a-token", TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_EmailTokens(t *testing.T) {
	m := newTestManager(t)

	verify, err := m.NewEmailToken("user@example.com")
	require.NoError(t, err)
	claims, err := m.Parse(verify, TokenTypeEmailVerification)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Subject)

	reset, err := m.NewPasswordResetToken("user@example.com")
	require.NoError(t, err)
	claims, err = m.Parse(reset, TokenTypePasswordReset)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Subject)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, VerifyPassword("s3cret-pass", hash))
	assert.False(t, VerifyPassword("wrong-pass", hash))
	assert.False(t, VerifyPassword("s3cret-pass", "not-a-hash"))
}
