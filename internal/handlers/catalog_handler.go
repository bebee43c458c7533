package handlers

import (
	"github.com/gofiber/fiber/v2"

	"foodgram/internal/services"
)

// CatalogHandler serves the read-only tag and ingredient catalogs.
type CatalogHandler struct {
	tagService        *services.TagService
	ingredientService *services.IngredientService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(tagService *services.TagService, ingredientService *services.IngredientService) *CatalogHandler {
	return &CatalogHandler{
		tagService:        tagService,
		ingredientService: ingredientService,
	}
}

// RegisterRoutes registers the tag and ingredient routes.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/tags", h.HandleListTags)
	router.Get("/tags/:id", h.HandleGetTag)
	router.Get("/ingredients", h.HandleListIngredients)
	router.Get("/ingredients/:id", h.HandleGetIngredient)
}

// HandleListTags lists every tag without pagination.
func (h *CatalogHandler) HandleListTags(c *fiber.Ctx) error {
	tags, err := h.tagService.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(tags)
}

// HandleGetTag returns one tag.
func (h *CatalogHandler) HandleGetTag(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notFound(c)
	}
	tag, err := h.tagService.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(tag)
}

// HandleListIngredients lists ingredients whose name starts with ?search= (or ?name=).
func (h *CatalogHandler) HandleListIngredients(c *fiber.Ctx) error {
	prefix := c.Query("search")
	if prefix == "" {
		prefix = c.Query("name")
	}
	ingredients, err := h.ingredientService.List(c.UserContext(), prefix)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ingredients)
}

// HandleGetIngredient returns one ingredient.
func (h *CatalogHandler) HandleGetIngredient(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return notFound(c)
	}
	ingredient, err := h.ingredientService.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ingredient)
}
