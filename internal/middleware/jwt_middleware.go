package middleware

import (
	"context"
	"strings"

	"scango/internal/session"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const sessionKey = "session"

// TokenAuthenticator resolves a bearer token to a live session.
// services.AuthService.Authenticate satisfies it.
type TokenAuthenticator func(ctx context.Context, token string) (*session.Session, error)

// AuthRequired checks the bearer token and stores the resolved session in
// the request locals. Browsers cannot set headers on an EventSource, so the
// token is also accepted as the access_token query parameter.
func AuthRequired(authenticate TokenAuthenticator, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Query("access_token")
		if authHeader := c.Get("Authorization"); authHeader != "" {
			// Expected format: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if !(len(parts) == 2 && parts[0] == "Bearer") {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Authorization header format must be 'Bearer <token>'",
				})
			}
			tokenString = parts[1]
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		sess, err := authenticate(c.UserContext(), tokenString)
		if err != nil {
			logger.Debug("authentication failed", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(sessionKey, sess)
		c.Locals("user_id", sess.UserID)
		return c.Next()
	}
}

// AdminOnly lets only administrator sessions through.
func AdminOnly() fiber.Handler {
	return requireRole(session.RoleAdmin)
}

// CustomerOnly lets only customer sessions through.
func CustomerOnly() fiber.Handler {
	return requireRole(session.RoleCustomer)
}

func requireRole(role session.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := CurrentSession(c)
		if sess == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		if sess.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "This action requires the " + string(role) + " role",
			})
		}
		return c.Next()
	}
}

// CurrentSession returns the session stored by AuthRequired, or nil.
func CurrentSession(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals(sessionKey).(*session.Session)
	return sess
}
