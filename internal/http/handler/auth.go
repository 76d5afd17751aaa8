package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"contactsapi/internal/service"
)

// signupRequest is the JSON body for account registration.
type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest accepts both the OAuth2-style form fields and their JSON
// equivalents, so CLI clients and browsers can share the endpoint.
type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordResetConfirm struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// baseURLFrom reconstructs the externally visible origin for mail links.
func baseURLFrom(c *fiber.Ctx) string {
	return c.Protocol() + "://" + c.Hostname()
}

// Signup registers a new user and sends the verification email.
func Signup(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req signupRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		req.Email = strings.TrimSpace(req.Email)
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_EMAIL", "a valid email is required")
		}
		if len(req.Password) < 6 {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_PASSWORD", "password must be at least 6 characters")
		}

		user, err := svc.Signup(c.UserContext(), req.Email, req.Password, baseURLFrom(c))
		if err != nil {
			if errors.Is(err, service.ErrEmailTaken) {
				return writeError(c, fiber.StatusConflict, "EMAIL_TAKEN", "account already exists")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

// Login verifies credentials and returns an access/refresh token pair.
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		pair, err := svc.Login(c.UserContext(), req.Username, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCredentials):
				return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "incorrect email or password")
			case errors.Is(err, service.ErrEmailNotVerified):
				return writeError(c, fiber.StatusForbidden, "EMAIL_NOT_VERIFIED", "email is not verified")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(pair)
	}
}

// RefreshToken exchanges the bearer refresh token for a fresh pair.
func RefreshToken(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		}

		pair, err := svc.Refresh(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) {
				return writeError(c, fiber.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "could not validate credentials")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(pair)
	}
}

// ConfirmedEmail marks the account behind the mailed token as verified.
func ConfirmedEmail(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Params("token")

		already, err := svc.ConfirmEmail(c.UserContext(), token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidToken):
				return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_TOKEN", "invalid token for email verification")
			case errors.Is(err, service.ErrUserNotFound):
				return writeError(c, fiber.StatusBadRequest, "VERIFICATION_ERROR", "verification error")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		if already {
			return c.JSON(fiber.Map{"message": "your email is already confirmed"})
		}
		return c.JSON(fiber.Map{"message": "email confirmed"})
	}
}

// PasswordResetRequest sends a reset mail. The response never reveals
// whether the address is registered.
func PasswordResetRequest(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req passwordResetRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		// Internal failures get the same generic response; a distinct
		// status would confirm which addresses are registered.
		_ = svc.RequestPasswordReset(c.UserContext(), req.Email, baseURLFrom(c))
		return c.JSON(fiber.Map{"message": "check your email for a reset link"})
	}
}

// PasswordResetConfirm sets a new password for the token's account.
func PasswordResetConfirm(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req passwordResetConfirm
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if len(req.NewPassword) < 6 {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_PASSWORD", "password must be at least 6 characters")
		}

		if err := svc.ConfirmPasswordReset(c.UserContext(), req.Token, req.NewPassword); err != nil {
			if errors.Is(err, service.ErrInvalidToken) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_TOKEN", "invalid token for password reset")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"message": "password updated"})
	}
}
