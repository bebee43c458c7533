package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/permissions"
	"foodgram/internal/services"
)

// RecipeHandler handles HTTP requests for recipes, favorites and the shopping cart.
type RecipeHandler struct {
	service  *services.RecipeService
	pageSize int
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(service *services.RecipeService, pageSize int) *RecipeHandler {
	return &RecipeHandler{
		service:  service,
		pageSize: pageSize,
	}
}

// RegisterRoutes registers the recipe routes. Fixed paths come before /:id.
func (h *RecipeHandler) RegisterRoutes(router fiber.Router) {
	recipes := router.Group("/recipes")
	recipes.Get("/", h.HandleList)
	recipes.Post("/", h.HandleCreate)
	recipes.Get("/download_shopping_cart", h.HandleDownloadShoppingCart)
	recipes.Get("/:id", h.HandleGet)
	recipes.Patch("/:id", h.HandleUpdate)
	recipes.Delete("/:id", h.HandleDelete)
	recipes.Post("/:id/favorite", h.HandleAddFavorite)
	recipes.Delete("/:id/favorite", h.HandleRemoveFavorite)
	recipes.Post("/:id/shopping_cart", h.HandleAddToShoppingCart)
	recipes.Delete("/:id/shopping_cart", h.HandleRemoveFromShoppingCart)
}

// HandleList lists recipes. Filters: author, tags (repeatable slug), is_favorited, is_in_shopping_cart.
func (h *RecipeHandler) HandleList(c *fiber.Ctx) error {
	p, err := newPager(c, h.pageSize)
	if err != nil {
		return writeError(c, err)
	}

	q := services.RecipeQuery{
		AuthorID:      uint(positiveQuery(c, "author")),
		OnlyFavorited: queryFlag(c, "is_favorited"),
		OnlyInCart:    queryFlag(c, "is_in_shopping_cart"),
		Page:          p.page(),
	}
	for _, slug := range c.Context().QueryArgs().PeekMulti("tags") {
		if len(slug) > 0 {
			q.TagSlugs = append(q.TagSlugs, string(slug))
		}
	}

	recipes, total, err := h.service.List(c.UserContext(), middleware.CurrentUser(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return p.respond(c, total, recipes)
}

func queryFlag(c *fiber.Ctx, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}

// HandleGet returns one recipe.
func (h *RecipeHandler) HandleGet(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notFound(c)
	}
	recipe, err := h.service.Get(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(recipe)
}

// HandleCreate publishes a recipe.
func (h *RecipeHandler) HandleCreate(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return writeError(c, permissions.ErrNotAuthenticated)
	}
	var req services.RecipeInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	recipe, err := h.service.Create(c.UserContext(), user, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}

// HandleUpdate replaces a recipe's content.
func (h *RecipeHandler) HandleUpdate(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notFound(c)
	}
	var req services.RecipeInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	recipe, err := h.service.Update(c.UserContext(), middleware.CurrentUser(c), id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(recipe)
}

// HandleDelete removes a recipe.
func (h *RecipeHandler) HandleDelete(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notFound(c)
	}
	if err := h.service.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleAddFavorite bookmarks a recipe.
func (h *RecipeHandler) HandleAddFavorite(c *fiber.Ctx) error {
	return h.addBookmark(c, h.service.AddFavorite)
}

// HandleRemoveFavorite removes a bookmark.
func (h *RecipeHandler) HandleRemoveFavorite(c *fiber.Ctx) error {
	return h.removeBookmark(c, h.service.RemoveFavorite)
}

// HandleAddToShoppingCart puts a recipe into the cart.
func (h *RecipeHandler) HandleAddToShoppingCart(c *fiber.Ctx) error {
	return h.addBookmark(c, h.service.AddToShoppingCart)
}

// HandleRemoveFromShoppingCart takes a recipe out of the cart.
func (h *RecipeHandler) HandleRemoveFromShoppingCart(c *fiber.Ctx) error {
	return h.removeBookmark(c, h.service.RemoveFromShoppingCart)
}

type addFunc func(ctx context.Context, viewer *models.User, recipeID uint) (*services.BriefRecipe, error)

type removeFunc func(ctx context.Context, viewer *models.User, recipeID uint) error

func (h *RecipeHandler) addBookmark(c *fiber.Ctx, add addFunc) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notFound(c)
	}
	brief, err := add(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(brief)
}

func (h *RecipeHandler) removeBookmark(c *fiber.Ctx, remove removeFunc) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notFound(c)
	}
	if err := remove(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleDownloadShoppingCart returns the aggregated shopping list as a text attachment.
func (h *RecipeHandler) HandleDownloadShoppingCart(c *fiber.Ctx) error {
	text, err := h.service.ShoppingList(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="shopping_list.txt"`)
	return c.SendString(text)
}
