package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"contactsapi/internal/model"
	"contactsapi/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var userCols = []string{"id", "email", "password_hash", "role", "is_verified", "avatar_url", "refresh_token", "created_at", "updated_at"}

func userRow(id, email string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(userCols).
		AddRow(id, email, "hash", model.RoleUser, false, "", "", now, now)
}

func TestUserPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	user := &model.User{
		ID:           "user-uuid",
		Email:        "new@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(user.ID, user.Email, user.PasswordHash, user.Role, user.IsVerified).
		WillReturnRows(userRow(user.ID, user.Email))

	result, err := repo.Create(ctx, user)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, user.ID, result.ID)
	assert.Equal(t, user.Email, result.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ?").
			WithArgs("known@example.com").
			WillReturnRows(userRow("user-id", "known@example.com"))

		user, err := repo.FindByEmail(ctx, "known@example.com")

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "known@example.com", user.Email)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ?").
			WithArgs("missing@example.com").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.FindByEmail(ctx, "missing@example.com")

		assert.Error(t, err)
		assert.True(t, IsNoRowsError(err))
		assert.Nil(t, user)
	})
}

func TestUserPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ?").
		WithArgs("user-id").
		WillReturnRows(userRow("user-id", "known@example.com"))

	user, err := repo.FindByID(ctx, "user-id")

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "user-id", user.ID)
}

func TestUserPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	rows := userRow("id-1", "a@example.com")
	now := time.Now().UTC()
	rows.AddRow("id-2", "b@example.com", "hash", model.RoleAdmin, true, "", "", now, now)

	mock.ExpectQuery("SELECT (.+) FROM users ORDER BY").
		WithArgs(10, 0).
		WillReturnRows(rows)

	res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

	assert.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_UpdateRefreshToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("UPDATE users SET refresh_token").
			WithArgs("user-id", "new-refresh").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateRefreshToken(ctx, "user-id", "new-refresh"))
	})

	t.Run("missing user", func(t *testing.T) {
		mock.ExpectExec("UPDATE users SET refresh_token").
			WithArgs("ghost", "new-refresh").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateRefreshToken(ctx, "ghost", "new-refresh")
		assert.True(t, IsNoRowsError(err))
	})
}

func TestUserPostgres_UpdateAvatarURL(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(userCols).
		AddRow("user-id", "a@example.com", "hash", model.RoleUser, true, "https://cdn/avatars/user-id.png", "", now, now)

	mock.ExpectQuery("UPDATE users SET avatar_url").
		WithArgs("user-id", "https://cdn/avatars/user-id.png").
		WillReturnRows(rows)

	user, err := repo.UpdateAvatarURL(ctx, "user-id", "https://cdn/avatars/user-id.png")

	assert.NoError(t, err)
	assert.Equal(t, "https://cdn/avatars/user-id.png", user.AvatarURL)
}

func TestUserPostgres_MarkVerified(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE users SET is_verified").
		WithArgs("user-id").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.MarkVerified(ctx, "user-id"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_UpdatePasswordHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("user-id", "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdatePasswordHash(ctx, "user-id", "new-hash"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
