package handlers

import (
	"github.com/gofiber/fiber/v2"

	"foodgram/internal/middleware"
	"foodgram/internal/services"
)

// AuthHandler handles HTTP requests for token authentication.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth/token")
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", middleware.AuthRequired(), h.HandleLogout)
}

// HandleLogin exchanges an email and password for a token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	token, err := h.authService.LoginUser(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"auth_token": token,
	})
}

// HandleLogout revokes the token the request was made with.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.CurrentToken(c)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
