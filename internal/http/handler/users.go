package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"contactsapi/internal/http/middleware"
	"contactsapi/internal/service"
)

// Me returns the authenticated user's own profile.
func Me(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := svc.Me(c.UserContext(), middleware.UserIDFromCtx(c))
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "unknown user")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(user)
	}
}

// UpdateAvatar replaces the authenticated user's avatar image
// (multipart/form-data, field name: file).
func UpdateAvatar(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		user, err := svc.UpdateAvatar(c.UserContext(), middleware.UserIDFromCtx(c), f, fh.Filename, ct, fh.Size)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUnsupportedAvatar):
				return writeError(c, fiber.StatusUnprocessableEntity, "UNSUPPORTED_MEDIA", "avatar must be a png, jpeg, gif or webp image")
			case errors.Is(err, service.ErrFileRequired):
				return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
			case errors.Is(err, service.ErrUserNotFound):
				return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "unknown user")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(user)
	}
}

// ListUsers is the admin-only user listing with limit & offset.
func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}
