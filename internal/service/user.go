package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"contactsapi/internal/cache"
	"contactsapi/internal/model"
	"contactsapi/internal/repository"
	"contactsapi/internal/storage"
)

var (
	ErrFileRequired      = errors.New("file is required")
	ErrUnsupportedAvatar = errors.New("unsupported avatar content type")
)

// avatarContentTypes lists the image types accepted for avatar upload.
var avatarContentTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UserListResult is the service-level DTO for paginated users.
type UserListResult struct {
	Items []model.User `json:"data"`
	Total int          `json:"total"`
}

// UserService defines the use cases around the current user account.
type UserService interface {
	// Me returns the user by ID, served cache-aside from Redis.
	Me(ctx context.Context, userID string) (*model.User, error)

	// UpdateAvatar streams the image to object storage, persists the
	// public URL, and returns the updated user.
	UpdateAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string, size int64) (*model.User, error)

	// List returns users using limit/offset and a total count. Admin only;
	// the role check lives in the middleware.
	List(ctx context.Context, limit, offset int) (*UserListResult, error)
}

// userService is a concrete implementation of UserService.
type userService struct {
	users            repository.UserRepository
	store            storage.Storage
	cache            cache.Cache
	cacheTTL         time.Duration
	defaultAvatarURL string
}

// NewUserService constructs a new UserService.
func NewUserService(users repository.UserRepository, store storage.Storage, c cache.Cache, cacheTTL time.Duration, defaultAvatarURL string) UserService {
	return &userService{
		users:            users,
		store:            store,
		cache:            c,
		cacheTTL:         cacheTTL,
		defaultAvatarURL: defaultAvatarURL,
	}
}

func userCacheKey(userID string) string {
	return "user:" + userID
}

// cachedUser is the Redis payload for a user. A separate struct because
// model.User hides PasswordHash/RefreshToken from JSON, and those must
// not round-trip through the cache anyway.
type cachedUser struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	AvatarURL  string    `json:"avatar_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *userService) Me(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrUserNotFound
	}

	if raw, err := s.cache.Get(ctx, userCacheKey(userID)); err == nil {
		var cu cachedUser
		if err := json.Unmarshal([]byte(raw), &cu); err == nil {
			return s.withDefaultAvatar(&model.User{
				ID:         cu.ID,
				Email:      cu.Email,
				Role:       cu.Role,
				IsVerified: cu.IsVerified,
				AvatarURL:  cu.AvatarURL,
				CreatedAt:  cu.CreatedAt,
				UpdatedAt:  cu.UpdatedAt,
			}), nil
		}
		// Corrupt entry: fall through to the database and overwrite it.
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	payload, err := json.Marshal(cachedUser{
		ID:         user.ID,
		Email:      user.Email,
		Role:       user.Role,
		IsVerified: user.IsVerified,
		AvatarURL:  user.AvatarURL,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	})
	if err == nil {
		// Cache population is best effort; a failed Set never fails the read.
		_ = s.cache.Set(ctx, userCacheKey(userID), string(payload), s.cacheTTL)
	}

	return s.withDefaultAvatar(user), nil
}

// withDefaultAvatar substitutes the configured default when the user has
// no avatar of their own. The default is never persisted.
func (s *userService) withDefaultAvatar(user *model.User) *model.User {
	if user.AvatarURL == "" && s.defaultAvatarURL != "" {
		user.AvatarURL = s.defaultAvatarURL
	}
	return user
}

func (s *userService) UpdateAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string, size int64) (*model.User, error) {
	if r == nil {
		return nil, ErrFileRequired
	}

	ext, ok := avatarContentTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedAvatar
	}
	if e := strings.ToLower(filepath.Ext(filename)); e != "" {
		ext = e
	}
	key := "avatars/user_" + userID + ext

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	user, err := s.users.UpdateAvatarURL(ctx, userID, s.store.PublicURL(objInfo.Key))
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	_ = s.cache.Delete(ctx, userCacheKey(userID))
	return user, nil
}

// List returns paginated users without exposing repository types.
func (s *userService) List(ctx context.Context, limit, offset int) (*UserListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.users.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &UserListResult{Items: res.Items, Total: res.Total}, nil
}
