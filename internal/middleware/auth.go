package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/Team-TALIX/legalhelp-gh-api/pkg/auth"
)

// AnonymousUser is the user_id sentinel for unauthenticated requests on
// optional-auth routes.
const AnonymousUser = "anonymous"

// RequireAuth verifies the JWT on the Authorization header and rejects
// requests without a valid token.
func RequireAuth(jwtAuth *auth.JWTAuth) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if jwtAuth == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"message": "Authentication service unavailable",
			})
		}

		token, err := auth.ExtractToken(c.Get("Authorization"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Missing or invalid authorization token",
			})
		}

		user, err := jwtAuth.VerifyAccessToken(token)
		if err != nil {
			slog.Debug("Token verification failed", "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid or expired token",
			})
		}

		c.Locals("user_id", user.ID)
		c.Locals("user_email", user.Email)
		return c.Next()
	}
}

// OptionalAuth verifies the JWT when one is presented and continues as
// anonymous otherwise. An invalid token also degrades to anonymous so a
// stale session never breaks public chat.
func OptionalAuth(jwtAuth *auth.JWTAuth) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := auth.ExtractToken(c.Get("Authorization"))
		if err != nil || jwtAuth == nil {
			c.Locals("user_id", AnonymousUser)
			return c.Next()
		}

		user, err := jwtAuth.VerifyAccessToken(token)
		if err != nil {
			slog.Debug("Token validation failed, continuing as anonymous", "error", err)
			c.Locals("user_id", AnonymousUser)
			return c.Next()
		}

		c.Locals("user_id", user.ID)
		c.Locals("user_email", user.Email)
		return c.Next()
	}
}

// UserID returns the authenticated user id from the request context, or
// the empty string for anonymous callers.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	if id == AnonymousUser {
		return ""
	}
	return id
}
