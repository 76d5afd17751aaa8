package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"contactsapi/internal/auth"
	"contactsapi/internal/model"
	"contactsapi/internal/service"
)

// UserIDLocalKey is the key under which Authenticate stores the caller's
// user ID in Fiber's context locals.
const UserIDLocalKey = "user_id"

// Authenticate validates the bearer access token and stores the caller's
// user ID in context locals. Requests without a valid token get 401.
func Authenticate(tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims, err := tokens.Parse(token, auth.TokenTypeAccess)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(UserIDLocalKey, claims.Subject)
		return c.Next()
	}
}

// UserIDFromCtx returns the authenticated user's ID set by Authenticate.
func UserIDFromCtx(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocalKey).(string)
	return id
}

// RequireAdmin allows only callers whose account carries the admin role.
// The role lives on the user row, not in the token, so a demoted admin
// is locked out as soon as the row changes.
func RequireAdmin(users service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := users.Me(c.UserContext(), UserIDFromCtx(c))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "unknown user")
		}
		if user.Role != model.RoleAdmin {
			return fiber.NewError(fiber.StatusForbidden, "admin role required")
		}
		return c.Next()
	}
}
