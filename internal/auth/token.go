package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"contactsapi/internal/config"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Token purposes. Every token carries exactly one and parsing always
// verifies it, so an access token can never be replayed as a refresh
// token or vice versa.
const (
	TokenTypeAccess            = "access"
	TokenTypeRefresh           = "refresh"
	TokenTypeEmailVerification = "email_verification"
	TokenTypePasswordReset     = "password_reset"
)

const (
	emailTokenTTL = 24 * time.Hour
	resetTokenTTL = time.Hour
)

// Claims is the JWT payload used for all token types.
// Subject holds the user ID for access/refresh tokens and the email
// address for email_verification/password_reset tokens.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

// TokenManager mints and validates HS256 tokens with a single shared secret.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager builds a TokenManager from JWT config.
func NewTokenManager(cfg config.JWTConfig) (*TokenManager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &TokenManager{
		secret:     []byte(cfg.Secret),
		accessTTL:  time.Duration(cfg.AccessExpiresMin) * time.Minute,
		refreshTTL: time.Duration(cfg.RefreshExpiresDays) * 24 * time.Hour,
	}, nil
}

func (m *TokenManager) mint(sub, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TokenType: tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// NewAccessToken issues a short-lived access token for the given user ID.
func (m *TokenManager) NewAccessToken(userID string) (string, error) {
	return m.mint(userID, TokenTypeAccess, m.accessTTL)
}

// NewRefreshToken issues a refresh token for the given user ID.
func (m *TokenManager) NewRefreshToken(userID string) (string, error) {
	return m.mint(userID, TokenTypeRefresh, m.refreshTTL)
}

// NewEmailToken issues an email-verification token carrying the address.
func (m *TokenManager) NewEmailToken(email string) (string, error) {
	return m.mint(email, TokenTypeEmailVerification, emailTokenTTL)
}

// NewPasswordResetToken issues a password-reset token carrying the address.
func (m *TokenManager) NewPasswordResetToken(email string) (string, error) {
	return m.mint(email, TokenTypePasswordReset, resetTokenTTL)
}

// Parse validates a token string and checks that it was minted for the
// expected purpose. It returns the claims on success.
func (m *TokenManager) Parse(tokenString, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("%w: unexpected token type %q", ErrInvalidToken, claims.TokenType)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims, nil
}
