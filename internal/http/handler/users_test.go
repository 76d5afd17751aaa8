package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"contactsapi/internal/http/middleware"
	"contactsapi/internal/model"
	"contactsapi/internal/service"
	serviceMocks "contactsapi/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// asUser injects an authenticated user ID, standing in for the JWT middleware.
func asUser(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.UserIDLocalKey, userID)
		return c.Next()
	}
}

func TestMe(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	app := fiber.New()
	app.Get("/api/users/me", asUser("user-id"), Me(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Me", mock.Anything, "user-id").
			Return(&model.User{ID: "user-id", Email: "user@example.com"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var user model.User
		json.NewDecoder(resp.Body).Decode(&user)
		assert.Equal(t, "user@example.com", user.Email)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockSvc.On("Me", mock.Anything, "user-id").
			Return(nil, service.ErrUserNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func avatarForm(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	part.Write(data)
	w.Close()

	return buf, w.FormDataContentType()
}

func TestUpdateAvatar(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	app := fiber.New()
	app.Patch("/api/users/avatar", asUser("user-id"), UpdateAvatar(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("UpdateAvatar", mock.Anything, "user-id", mock.Anything, "me.png", "image/png", int64(4)).
			Return(&model.User{ID: "user-id", AvatarURL: "http://minio/uploads/avatars/user_user-id.png"}, nil).Once()

		body, ct := avatarForm(t, "file", "me.png", "image/png", []byte("data"))
		req := httptest.NewRequest(http.MethodPatch, "/api/users/avatar", body)
		req.Header.Set(fiber.HeaderContentType, ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var user model.User
		json.NewDecoder(resp.Body).Decode(&user)
		assert.Contains(t, user.AvatarURL, "avatars/user_user-id.png")
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/api/users/avatar", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "FILE_REQUIRED", body.Error.Code)
	})

	t.Run("unsupported content type", func(t *testing.T) {
		mockSvc.On("UpdateAvatar", mock.Anything, "user-id", mock.Anything, "doc.pdf", "application/pdf", int64(4)).
			Return(nil, service.ErrUnsupportedAvatar).Once()

		body, ct := avatarForm(t, "file", "doc.pdf", "application/pdf", []byte("data"))
		req := httptest.NewRequest(http.MethodPatch, "/api/users/avatar", body)
		req.Header.Set(fiber.HeaderContentType, ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestListUsers(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	app := fiber.New()
	app.Get("/api/users", ListUsers(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 5, 10).
			Return(&service.UserListResult{
				Items: []model.User{{ID: "1"}, {ID: "2"}},
				Total: 2,
			}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/users?limit=5&offset=10", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res service.UserListResult
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Len(t, res.Items, 2)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
