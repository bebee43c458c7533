package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"foodgram/internal/logger"
	"foodgram/internal/models"
)

const (
	userLocalsKey  = "user"
	tokenLocalsKey = "token"
)

// Authenticator resolves the user a token was issued to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Authenticate resolves the request's user from the Authorization header
// ("Token <jwt>" or "Bearer <jwt>"). Requests without the header continue anonymously;
// a header with a bad token is rejected.
func Authenticate(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Next()
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || (parts[0] != "Token" && parts[0] != "Bearer") || parts[1] == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"detail": "Authorization header format must be 'Token <token>'.",
			})
		}

		tokenString := strings.TrimSpace(parts[1])
		user, err := auth.Authenticate(c.UserContext(), tokenString)
		if err != nil {
			logger.Log.Debugw("authentication failed", "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"detail": "Invalid token.",
			})
		}

		c.Locals(userLocalsKey, user)
		c.Locals(tokenLocalsKey, tokenString)
		return c.Next()
	}
}

// AuthRequired rejects anonymous requests. It must run after Authenticate.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"detail": "Authentication credentials were not provided.",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalsKey).(*models.User)
	return user
}

// CurrentToken returns the raw token the request was authenticated with.
func CurrentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(tokenLocalsKey).(string)
	return token
}
