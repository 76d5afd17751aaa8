package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"contactsapi/internal/auth"
	"contactsapi/internal/cache"
	"contactsapi/internal/mail"
	"contactsapi/internal/model"
	"contactsapi/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrEmailNotVerified   = errors.New("email is not verified")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
)

// TokenPair is the service-level DTO returned after login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// AuthService defines the account lifecycle use cases.
type AuthService interface {
	// Signup registers a new user and sends the verification email.
	// baseURL is the externally visible origin used in the mail link.
	Signup(ctx context.Context, email, password, baseURL string) (*model.User, error)

	// Login verifies credentials, persists a fresh refresh token, and
	// returns the token pair.
	Login(ctx context.Context, email, password string) (*TokenPair, error)

	// Refresh exchanges a valid refresh token for a new rotated pair.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)

	// ConfirmEmail marks the token's user as verified. It reports whether
	// the user was already verified so the handler can keep the original
	// idempotent message.
	ConfirmEmail(ctx context.Context, token string) (alreadyVerified bool, err error)

	// RequestPasswordReset sends a reset mail when the account exists.
	// A missing account is not an error, so responses never reveal
	// whether an email is registered.
	RequestPasswordReset(ctx context.Context, email, baseURL string) error

	// ConfirmPasswordReset sets a new password for the token's user and
	// revokes the stored refresh token.
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

// authService is a concrete implementation of AuthService.
type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	mailer mail.Mailer
	cache  cache.Cache
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, mailer mail.Mailer, c cache.Cache) AuthService {
	return &authService{users: users, tokens: tokens, mailer: mailer, cache: c}
}

func (s *authService) Signup(ctx context.Context, email, password, baseURL string) (*model.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	verifyToken, err := s.tokens.NewEmailToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("mint verification token: %w", err)
	}
	if err := s.mailer.SendVerificationEmail(ctx, user.Email, baseURL, verifyToken); err != nil {
		return nil, fmt.Errorf("send verification email: %w", err)
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, ErrEmailNotVerified
	}

	return s.issuePair(ctx, user.ID)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	// The presented token must be the one stored on the row; anything
	// older was rotated away and is no longer valid.
	if user.RefreshToken != refreshToken {
		return nil, ErrInvalidToken
	}

	return s.issuePair(ctx, user.ID)
}

// issuePair mints a fresh access/refresh pair and persists the refresh token.
func (s *authService) issuePair(ctx context.Context, userID string) (*TokenPair, error) {
	access, err := s.tokens.NewAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("mint access token: %w", err)
	}
	refresh, err := s.tokens.NewRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("mint refresh token: %w", err)
	}
	if err := s.users.UpdateRefreshToken(ctx, userID, refresh); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

func (s *authService) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	claims, err := s.tokens.Parse(token, auth.TokenTypeEmailVerification)
	if err != nil {
		return false, ErrInvalidToken
	}

	user, err := s.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	if user.IsVerified {
		return true, nil
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return false, err
	}
	_ = s.cache.Delete(ctx, userCacheKey(user.ID))
	return false, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, email, baseURL string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Do not reveal whether the address is registered.
			return nil
		}
		return err
	}

	resetToken, err := s.tokens.NewPasswordResetToken(user.Email)
	if err != nil {
		return fmt.Errorf("mint reset token: %w", err)
	}
	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, baseURL, resetToken); err != nil {
		// The generic response must not change when delivery fails,
		// otherwise the error tells callers which addresses exist.
		log.Printf("password reset email delivery failed: %v", err)
	}
	return nil
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.Parse(token, auth.TokenTypePasswordReset)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := s.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidToken
		}
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}
	// Revoke the session: a stolen refresh token must not survive a reset.
	if err := s.users.UpdateRefreshToken(ctx, user.ID, ""); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, userCacheKey(user.ID))
	return nil
}
