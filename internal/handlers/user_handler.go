package handlers

import (
	"github.com/gofiber/fiber/v2"

	"foodgram/internal/middleware"
	"foodgram/internal/permissions"
	"foodgram/internal/services"
)

// UserHandler handles HTTP requests for accounts and subscriptions.
type UserHandler struct {
	authService *services.AuthService
	userService *services.UserService
	pageSize    int
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService, userService *services.UserService, pageSize int) *UserHandler {
	return &UserHandler{
		authService: authService,
		userService: userService,
		pageSize:    pageSize,
	}
}

// RegisterRoutes registers the user routes. Fixed paths come before /:id.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	users := router.Group("/users")
	users.Get("/", h.HandleList)
	users.Post("/", h.HandleRegister)
	users.Get("/me", h.HandleMe)
	users.Post("/set_password", h.HandleSetPassword)
	users.Get("/subscriptions", h.HandleSubscriptions)
	users.Get("/:id", h.HandleGet)
	users.Post("/:id/subscribe", h.HandleSubscribe)
	users.Delete("/:id/subscribe", h.HandleUnsubscribe)
}

// HandleList lists users, optionally filtered by ?search=.
func (h *UserHandler) HandleList(c *fiber.Ctx) error {
	p, err := newPager(c, h.pageSize)
	if err != nil {
		return writeError(c, err)
	}
	users, total, err := h.userService.List(c.UserContext(), middleware.CurrentUser(c), c.Query("search"), p.page())
	if err != nil {
		return writeError(c, err)
	}
	return p.respond(c, total, users)
}

// HandleRegister signs up a new user.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	user, err := h.authService.RegisterUser(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"email":      user.Email,
		"id":         user.ID,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	})
}

// HandleMe returns the signed-in user.
func (h *UserHandler) HandleMe(c *fiber.Ctx) error {
	view, err := h.userService.Me(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

// HandleSetPassword changes the signed-in user's password.
func (h *UserHandler) HandleSetPassword(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return writeError(c, permissions.ErrNotAuthenticated)
	}
	var req services.SetPasswordInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	if err := h.authService.SetPassword(c.UserContext(), user, req); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSubscriptions lists the authors the signed-in user follows.
func (h *UserHandler) HandleSubscriptions(c *fiber.Ctx) error {
	p, err := newPager(c, h.pageSize)
	if err != nil {
		return writeError(c, err)
	}
	subs, total, err := h.userService.ListSubscriptions(c.UserContext(), middleware.CurrentUser(c), p.page(), positiveQuery(c, "recipes_limit"))
	if err != nil {
		return writeError(c, err)
	}
	return p.respond(c, total, subs)
}

// HandleGet returns one user.
func (h *UserHandler) HandleGet(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notFound(c)
	}
	view, err := h.userService.Get(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

// HandleSubscribe follows the author.
func (h *UserHandler) HandleSubscribe(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notFound(c)
	}
	view, err := h.userService.Subscribe(c.UserContext(), middleware.CurrentUser(c), id, positiveQuery(c, "recipes_limit"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// HandleUnsubscribe stops following the author.
func (h *UserHandler) HandleUnsubscribe(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notFound(c)
	}
	if err := h.userService.Unsubscribe(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
