package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	cacheMocks "contactsapi/internal/cache/mocks"
	"contactsapi/internal/model"
	"contactsapi/internal/repository"
	repoMocks "contactsapi/internal/repository/mocks"
	"contactsapi/internal/storage"
	storeMocks "contactsapi/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testUserCacheTTL = 15 * time.Minute

func TestUserService_Me(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		userID     string
		setupMocks func(mRepo *repoMocks.MockUserRepository, mCache *cacheMocks.MockCache)
		wantErr    error
		checkUser  func(t *testing.T, u *model.User)
	}{
		{
			name:   "cache hit skips the database",
			userID: "user-id",
			setupMocks: func(mRepo *repoMocks.MockUserRepository, mCache *cacheMocks.MockCache) {
				payload, _ := json.Marshal(cachedUser{
					ID:        "user-id",
					Email:     "user@example.com",
					Role:      model.RoleUser,
					AvatarURL: "http://minio/avatars/user_user-id.png",
				})
				mCache.On("Get", ctx, "user:user-id").Return(string(payload), nil)
			},
			checkUser: func(t *testing.T, u *model.User) {
				assert.Equal(t, "user@example.com", u.Email)
				assert.Equal(t, "http://minio/avatars/user_user-id.png", u.AvatarURL)
			},
		},
		{
			name:   "cache miss reads the database and populates the cache",
			userID: "user-id",
			setupMocks: func(mRepo *repoMocks.MockUserRepository, mCache *cacheMocks.MockCache) {
				mCache.On("Get", ctx, "user:user-id").Return("", errors.New("cache miss"))
				mRepo.On("FindByID", ctx, "user-id").
					Return(&model.User{ID: "user-id", Email: "user@example.com"}, nil)
				mCache.On("Set", ctx, "user:user-id", mock.AnythingOfType("string"), testUserCacheTTL).
					Return(nil)
			},
			checkUser: func(t *testing.T, u *model.User) {
				assert.Equal(t, "user@example.com", u.Email)
				// No avatar of their own: the configured default fills in.
				assert.Equal(t, "http://example.com/default.png", u.AvatarURL)
			},
		},
		{
			name:   "corrupt cache entry falls through to the database",
			userID: "user-id",
			setupMocks: func(mRepo *repoMocks.MockUserRepository, mCache *cacheMocks.MockCache) {
				mCache.On("Get", ctx, "user:user-id").Return("{not json", nil)
				mRepo.On("FindByID", ctx, "user-id").
					Return(&model.User{ID: "user-id", Email: "user@example.com"}, nil)
				mCache.On("Set", ctx, "user:user-id", mock.AnythingOfType("string"), testUserCacheTTL).
					Return(nil)
			},
		},
		{
			name:   "failed cache set does not fail the read",
			userID: "user-id",
			setupMocks: func(mRepo *repoMocks.MockUserRepository, mCache *cacheMocks.MockCache) {
				mCache.On("Get", ctx, "user:user-id").Return("", errors.New("cache miss"))
				mRepo.On("FindByID", ctx, "user-id").
					Return(&model.User{ID: "user-id"}, nil)
				mCache.On("Set", ctx, "user:user-id", mock.AnythingOfType("string"), testUserCacheTTL).
					Return(errors.New("redis down"))
			},
		},
		{
			name:   "unknown user",
			userID: "ghost",
			setupMocks: func(mRepo *repoMocks.MockUserRepository, mCache *cacheMocks.MockCache) {
				mCache.On("Get", ctx, "user:ghost").Return("", errors.New("cache miss"))
				mRepo.On("FindByID", ctx, "ghost").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrUserNotFound,
		},
		{
			name:       "empty id",
			userID:     "",
			setupMocks: func(mRepo *repoMocks.MockUserRepository, mCache *cacheMocks.MockCache) {},
			wantErr:    ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockUserRepository)
			mCache := new(cacheMocks.MockCache)
			svc := NewUserService(mRepo, nil, mCache, testUserCacheTTL, "http://example.com/default.png")

			tt.setupMocks(mRepo, mCache)

			user, err := svc.Me(ctx, tt.userID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				if tt.checkUser != nil {
					tt.checkUser(t, user)
				}
			}

			mRepo.AssertExpectations(t)
			mCache.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdateAvatar(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int64
		setupMocks  func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUserRepository, mCache *cacheMocks.MockCache) io.Reader
		wantErr     error
		wantErrMsg  string
	}{
		{
			name:        "happy path",
			filename:    "me.png",
			contentType: "image/png",
			size:        4,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUserRepository, mCache *cacheMocks.MockCache) io.Reader {
				r := strings.NewReader("data")
				mStore.On("Put", ctx, "avatars/user_user-id.png", r, storage.PutObjectOptions{
					Size:        4,
					ContentType: "image/png",
					Metadata:    map[string]string{"original-filename": "me.png"},
				}).Return(storage.ObjectInfo{Key: "avatars/user_user-id.png"}, nil)
				mStore.On("PublicURL", "avatars/user_user-id.png").
					Return("http://minio/uploads/avatars/user_user-id.png")
				mRepo.On("UpdateAvatarURL", ctx, "user-id", "http://minio/uploads/avatars/user_user-id.png").
					Return(&model.User{ID: "user-id", AvatarURL: "http://minio/uploads/avatars/user_user-id.png"}, nil)
				mCache.On("Delete", ctx, "user:user-id").Return(nil)
				return r
			},
		},
		{
			name:        "nil reader",
			filename:    "me.png",
			contentType: "image/png",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUserRepository, mCache *cacheMocks.MockCache) io.Reader {
				return nil
			},
			wantErr: ErrFileRequired,
		},
		{
			name:        "unsupported content type",
			filename:    "me.pdf",
			contentType: "application/pdf",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUserRepository, mCache *cacheMocks.MockCache) io.Reader {
				return strings.NewReader("data")
			},
			wantErr: ErrUnsupportedAvatar,
		},
		{
			name:        "storage error",
			filename:    "me.png",
			contentType: "image/png",
			size:        4,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUserRepository, mCache *cacheMocks.MockCache) io.Reader {
				r := strings.NewReader("data")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
				return r
			},
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name:        "db error with successful rollback",
			filename:    "me.png",
			contentType: "image/png",
			size:        4,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUserRepository, mCache *cacheMocks.MockCache) io.Reader {
				r := strings.NewReader("data")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(storage.ObjectInfo{Key: "avatars/user_user-id.png"}, nil)
				mStore.On("PublicURL", "avatars/user_user-id.png").Return("http://minio/x")
				mRepo.On("UpdateAvatarURL", ctx, "user-id", "http://minio/x").
					Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, "avatars/user_user-id.png").Return(nil)
				return r
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name:        "db error with failed rollback",
			filename:    "me.png",
			contentType: "image/png",
			size:        4,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockUserRepository, mCache *cacheMocks.MockCache) io.Reader {
				r := strings.NewReader("data")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(storage.ObjectInfo{Key: "avatars/user_user-id.png"}, nil)
				mStore.On("PublicURL", "avatars/user_user-id.png").Return("http://minio/x")
				mRepo.On("UpdateAvatarURL", ctx, "user-id", "http://minio/x").
					Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, "avatars/user_user-id.png").
					Return(errors.New("delete fail"))
				return r
			},
			wantErrMsg: "rollback delete failed: delete fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockUserRepository)
			mCache := new(cacheMocks.MockCache)
			svc := NewUserService(mRepo, mStore, mCache, testUserCacheTTL, "")

			r := tt.setupMocks(mStore, mRepo, mCache)

			user, err := svc.UpdateAvatar(ctx, "user-id", r, tt.filename, tt.contentType, tt.size)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
			mCache.AssertExpectations(t)
		})
	}
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		limit      int
		offset     int
		setupMocks func(mRepo *repoMocks.MockUserRepository)
		wantErr    error
		checkRes   func(t *testing.T, res *UserListResult)
	}{
		{
			name:   "happy path",
			limit:  10,
			offset: 0,
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {
				mRepo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
					Return(&repository.PageResult[model.User]{
						Items: []model.User{{ID: "1"}, {ID: "2"}},
						Total: 2,
					}, nil)
			},
			checkRes: func(t *testing.T, res *UserListResult) {
				assert.Equal(t, 2, len(res.Items))
				assert.Equal(t, 2, res.Total)
			},
		},
		{
			name:   "pagination boundary - zero limit uses default",
			limit:  0,
			offset: -1,
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {
				mRepo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
					Return(&repository.PageResult[model.User]{Items: []model.User{}, Total: 0}, nil)
			},
		},
		{
			name:  "repository error",
			limit: 10,
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {
				mRepo.On("List", ctx, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockUserRepository)
			svc := NewUserService(mRepo, nil, nil, testUserCacheTTL, "")

			tt.setupMocks(mRepo)

			res, err := svc.List(ctx, tt.limit, tt.offset)

			if tt.wantErr != nil {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				if tt.checkRes != nil {
					tt.checkRes(t, res)
				}
			}

			mRepo.AssertExpectations(t)
		})
	}
}
