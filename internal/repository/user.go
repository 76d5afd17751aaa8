package repository

import (
	"context"

	"contactsapi/internal/model"
)

// UserRepository defines data access for user accounts using SQL queries only.
// No business logic here — strictly persistence operations.
type UserRepository interface {
	// Create inserts a new user record and returns the stored row.
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// FindByID returns a user by its ID.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns a user by email address.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// List returns a paginated list of users and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.User], error)

	// UpdateRefreshToken stores (or clears, with "") the refresh token.
	UpdateRefreshToken(ctx context.Context, id, refreshToken string) error

	// UpdateAvatarURL stores the avatar URL and returns the updated row.
	UpdateAvatarURL(ctx context.Context, id, avatarURL string) (*model.User, error)

	// UpdatePasswordHash replaces the stored password hash.
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error

	// MarkVerified flags the user's email address as confirmed.
	MarkVerified(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
