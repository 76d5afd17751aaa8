package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"contactsapi/internal/auth"
	"contactsapi/internal/cache"
	"contactsapi/internal/http/middleware"
	"contactsapi/internal/service"
)

// HealthCheck reports readiness: both the database and Redis must answer.
func HealthCheck(db *sql.DB, c cache.Cache) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		checkCtx, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(checkCtx); err != nil {
			return writeError(ctx, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "database unavailable")
		}
		if err := c.Ping(checkCtx); err != nil {
			return writeError(ctx, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "cache unavailable")
		}
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers as long as the process is running.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// RegisterRoutes attaches all HTTP routes to the provided Fiber app.
func RegisterRoutes(
	app *fiber.App,
	db *sql.DB,
	cch cache.Cache,
	tokens *auth.TokenManager,
	authSvc service.AuthService,
	userSvc service.UserService,
	contactSvc service.ContactService,
	rateLimitPerMin int,
) {
	// Serve the OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/", LivenessProbe())
	app.Get("/health", HealthCheck(db, cch))

	authGroup := app.Group("/api/auth")
	authGroup.Post("/signup", Signup(authSvc))
	authGroup.Post("/login", Login(authSvc))
	authGroup.Post("/refresh_token", RefreshToken(authSvc))
	authGroup.Get("/confirmed_email/:token", ConfirmedEmail(authSvc))
	authGroup.Post("/password-reset-request", PasswordResetRequest(authSvc))
	authGroup.Post("/password-reset-confirm", PasswordResetConfirm(authSvc))

	users := app.Group("/api/users", middleware.Authenticate(tokens))
	users.Get("/me", middleware.RateLimit(cch, rateLimitPerMin, time.Minute), Me(userSvc))
	users.Patch("/avatar", UpdateAvatar(userSvc))
	users.Get("/", middleware.RequireAdmin(userSvc), ListUsers(userSvc))

	contacts := app.Group("/api/contacts", middleware.Authenticate(tokens))
	contacts.Post("/", CreateContact(contactSvc))
	contacts.Get("/", ListContacts(contactSvc))
	contacts.Get("/search", SearchContacts(contactSvc))
	contacts.Get("/birthdays", UpcomingBirthdays(contactSvc))
	contacts.Get("/:id", GetContact(contactSvc))
	contacts.Put("/:id", ReplaceContact(contactSvc))
	contacts.Patch("/:id", PatchContact(contactSvc))
	contacts.Delete("/:id", DeleteContact(contactSvc))
}
