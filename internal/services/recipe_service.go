package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodgram/internal/logger"
	"foodgram/internal/media"
	"foodgram/internal/models"
	"foodgram/internal/permissions"
	"foodgram/internal/repositories"
)

// ImageStore persists uploaded recipe images.
type ImageStore interface {
	// Save stores a base64 encoded image and returns its public URL.
	Save(ctx context.Context, encoded string) (string, error)
	Delete(url string) error
}

// MaxAmount caps cooking times and ingredient amounts so that cart totals stay within integer range.
const MaxAmount = 32767

// IngredientAmount is one ingredient entry of a recipe write request.
// Pointers distinguish a missing field from a zero value.
type IngredientAmount struct {
	ID     *uint `json:"id"`
	Amount *int  `json:"amount"`
}

// RecipeInput is the write shape of a recipe, used for both create and update.
type RecipeInput struct {
	Name        string             `json:"name" validate:"required,max=200"`
	Text        string             `json:"text" validate:"required"`
	CookingTime *int               `json:"cooking_time" validate:"required,min=1,max=32767"`
	Image       string             `json:"image" validate:"required"`
	Tags        []uint             `json:"tags" validate:"required,min=1"`
	Ingredients []IngredientAmount `json:"ingredients" validate:"required,min=1"`
}

// RecipeQuery selects recipes for a listing. The Only* flags apply to the viewer and are
// ignored for anonymous requests.
type RecipeQuery struct {
	AuthorID      uint
	TagSlugs      []string
	OnlyFavorited bool
	OnlyInCart    bool
	Page          repositories.Page
}

// RecipeService handles business logic related to recipes, favorites and the shopping cart.
type RecipeService struct {
	recipes     repositories.RecipeRepository
	tags        repositories.TagRepository
	ingredients repositories.IngredientRepository
	favorites   repositories.BookmarkRepository
	carts       repositories.BookmarkRepository
	follows     repositories.FollowRepository
	images      ImageStore
	events      EventPublisher
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(
	recipes repositories.RecipeRepository,
	tags repositories.TagRepository,
	ingredients repositories.IngredientRepository,
	favorites repositories.BookmarkRepository,
	carts repositories.BookmarkRepository,
	follows repositories.FollowRepository,
	images ImageStore,
	events EventPublisher,
) *RecipeService {
	return &RecipeService{
		recipes:     recipes,
		tags:        tags,
		ingredients: ingredients,
		favorites:   favorites,
		carts:       carts,
		follows:     follows,
		images:      images,
		events:      events,
	}
}

// List returns recipes newest first.
func (s *RecipeService) List(ctx context.Context, viewer *models.User, q RecipeQuery) ([]RecipeView, int64, error) {
	filter := repositories.RecipeFilter{AuthorID: q.AuthorID, TagSlugs: q.TagSlugs}
	if viewer != nil {
		if q.OnlyFavorited {
			filter.FavoritedBy = viewer.ID
		}
		if q.OnlyInCart {
			filter.InCartOf = viewer.ID
		}
	}

	recipes, total, err := s.recipes.List(ctx, filter, q.Page)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.recipeViews(ctx, viewer, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// Get returns one recipe.
func (s *RecipeService) Get(ctx context.Context, viewer *models.User, id uint) (*RecipeView, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.recipeViews(ctx, viewer, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Create publishes a new recipe authored by viewer.
func (s *RecipeService) Create(ctx context.Context, viewer *models.User, in RecipeInput) (*RecipeView, error) {
	if err := permissions.AuthenticatedOnly(viewer); err != nil {
		return nil, err
	}
	tags, items, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.saveImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Name:        in.Name,
		AuthorID:    viewer.ID,
		Text:        in.Text,
		Image:       imageURL,
		CookingTime: *in.CookingTime,
	}
	if err := s.recipes.Create(ctx, recipe, tags, items); err != nil {
		s.discardImage(imageURL)
		return nil, s.writeError(err)
	}

	publishEvent(ctx, s.events, EventRecipeCreated, map[string]any{"id": recipe.ID, "author_id": viewer.ID})
	return s.Get(ctx, viewer, recipe.ID)
}

// Update replaces the recipe's content. Only its author or an admin may do so.
func (s *RecipeService) Update(ctx context.Context, viewer *models.User, id uint, in RecipeInput) (*RecipeView, error) {
	if err := permissions.AuthenticatedOnly(viewer); err != nil {
		return nil, err
	}
	current, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permissions.AuthorOrAdmin(viewer, current.AuthorID); err != nil {
		return nil, err
	}
	tags, items, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}

	imageURL := current.Image
	if in.Image != current.Image {
		if imageURL, err = s.saveImage(ctx, in.Image); err != nil {
			return nil, err
		}
	}

	recipe := &models.Recipe{
		ID:          current.ID,
		Name:        in.Name,
		AuthorID:    current.AuthorID,
		Text:        in.Text,
		Image:       imageURL,
		CookingTime: *in.CookingTime,
	}
	if err := s.recipes.Update(ctx, recipe, tags, items); err != nil {
		if imageURL != current.Image {
			s.discardImage(imageURL)
		}
		return nil, s.writeError(err)
	}
	if imageURL != current.Image {
		s.discardImage(current.Image)
	}

	publishEvent(ctx, s.events, EventRecipeUpdated, map[string]any{"id": recipe.ID, "author_id": recipe.AuthorID})
	return s.Get(ctx, viewer, recipe.ID)
}

// Delete removes the recipe. Only its author or an admin may do so.
func (s *RecipeService) Delete(ctx context.Context, viewer *models.User, id uint) error {
	if err := permissions.AuthenticatedOnly(viewer); err != nil {
		return err
	}
	current, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := permissions.AuthorOrAdmin(viewer, current.AuthorID); err != nil {
		return err
	}

	if err := s.recipes.Delete(ctx, id); err != nil {
		return err
	}
	s.discardImage(current.Image)

	publishEvent(ctx, s.events, EventRecipeDeleted, map[string]any{"id": id, "author_id": current.AuthorID})
	return nil
}

// prepare validates the request in a fixed order and resolves tag and ingredient references.
func (s *RecipeService) prepare(ctx context.Context, in RecipeInput) ([]models.Tag, []models.RecipeIngredient, error) {
	if err := ValidateStruct(in); err != nil {
		return nil, nil, err
	}

	for _, entry := range in.Ingredients {
		if entry.ID == nil || entry.Amount == nil {
			return nil, nil, newValidationError("ingredients", "Each ingredient needs an id and an amount.")
		}
	}
	ingredientIDs := make([]uint, 0, len(in.Ingredients))
	seen := make(map[uint]bool, len(in.Ingredients))
	for _, entry := range in.Ingredients {
		if seen[*entry.ID] {
			return nil, nil, newValidationError("ingredients", "Ingredients must not repeat.")
		}
		seen[*entry.ID] = true
		ingredientIDs = append(ingredientIDs, *entry.ID)
	}
	for _, entry := range in.Ingredients {
		if *entry.Amount <= 0 {
			return nil, nil, newValidationError("ingredients", "Ingredient amount must be at least 1.")
		}
		if *entry.Amount > MaxAmount {
			return nil, nil, newValidationError("ingredients", fmt.Sprintf("Ingredient amount must be at most %d.", MaxAmount))
		}
	}
	seenTags := make(map[uint]bool, len(in.Tags))
	for _, id := range in.Tags {
		if seenTags[id] {
			return nil, nil, newValidationError("tags", "Tags must not repeat.")
		}
		seenTags[id] = true
	}

	tags, err := s.tags.GetByIDs(ctx, in.Tags)
	if err != nil {
		return nil, nil, err
	}
	if len(tags) != len(in.Tags) {
		return nil, nil, newValidationError("tags", "Unknown tag id.")
	}
	found, err := s.ingredients.GetByIDs(ctx, ingredientIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(found) != len(ingredientIDs) {
		return nil, nil, newValidationError("ingredients", "Unknown ingredient id.")
	}

	items := make([]models.RecipeIngredient, len(in.Ingredients))
	for i, entry := range in.Ingredients {
		items[i] = models.RecipeIngredient{IngredientID: *entry.ID, Amount: *entry.Amount}
	}
	return tags, items, nil
}

func (s *RecipeService) saveImage(ctx context.Context, encoded string) (string, error) {
	url, err := s.images.Save(ctx, encoded)
	if err != nil {
		if errors.Is(err, media.ErrInvalidImage) {
			return "", newValidationError("image", "Upload a valid image.")
		}
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return url, nil
}

func (s *RecipeService) discardImage(url string) {
	if err := s.images.Delete(url); err != nil {
		logger.Log.Warnw("failed to delete recipe image", "image", url, "error", err)
	}
}

func (s *RecipeService) writeError(err error) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return newValidationError("name", "A recipe with this name already exists.")
	}
	return err
}

// bookmarkKind binds one bookmark table to the conflict it reports.
type bookmarkKind struct {
	repo     repositories.BookmarkRepository
	conflict *ConflictError
	label    string
}

func (s *RecipeService) favoriteKind() bookmarkKind {
	return bookmarkKind{repo: s.favorites, conflict: ErrAlreadyFavorited, label: "favorite"}
}

func (s *RecipeService) cartKind() bookmarkKind {
	return bookmarkKind{repo: s.carts, conflict: ErrAlreadyInCart, label: "shopping cart entry"}
}

// AddFavorite bookmarks the recipe for viewer.
func (s *RecipeService) AddFavorite(ctx context.Context, viewer *models.User, recipeID uint) (*BriefRecipe, error) {
	return s.addBookmark(ctx, viewer, recipeID, s.favoriteKind())
}

// RemoveFavorite removes the viewer's bookmark of the recipe.
func (s *RecipeService) RemoveFavorite(ctx context.Context, viewer *models.User, recipeID uint) error {
	return s.removeBookmark(ctx, viewer, recipeID, s.favoriteKind())
}

// AddToShoppingCart puts the recipe into the viewer's cart.
func (s *RecipeService) AddToShoppingCart(ctx context.Context, viewer *models.User, recipeID uint) (*BriefRecipe, error) {
	return s.addBookmark(ctx, viewer, recipeID, s.cartKind())
}

// RemoveFromShoppingCart takes the recipe out of the viewer's cart.
func (s *RecipeService) RemoveFromShoppingCart(ctx context.Context, viewer *models.User, recipeID uint) error {
	return s.removeBookmark(ctx, viewer, recipeID, s.cartKind())
}

func (s *RecipeService) addBookmark(ctx context.Context, viewer *models.User, recipeID uint, kind bookmarkKind) (*BriefRecipe, error) {
	if err := permissions.AuthenticatedOnly(viewer); err != nil {
		return nil, err
	}
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	if err := kind.repo.Add(ctx, viewer.ID, recipeID); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, kind.conflict
		}
		return nil, err
	}
	brief := newBriefRecipe(recipe)
	return &brief, nil
}

func (s *RecipeService) removeBookmark(ctx context.Context, viewer *models.User, recipeID uint, kind bookmarkKind) error {
	if err := permissions.AuthenticatedOnly(viewer); err != nil {
		return err
	}
	exists, err := s.recipes.Exists(ctx, recipeID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("recipe %d: %w", recipeID, ErrNotFound)
	}

	removed, err := kind.repo.Remove(ctx, viewer.ID, recipeID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%s for recipe %d: %w", kind.label, recipeID, ErrNotFound)
	}
	return nil
}

// ShoppingList renders the viewer's cart as one line per ingredient and unit,
// ordered by ingredient name then unit.
func (s *RecipeService) ShoppingList(ctx context.Context, viewer *models.User) (string, error) {
	if err := permissions.AuthenticatedOnly(viewer); err != nil {
		return "", err
	}
	items, err := s.recipes.ShoppingList(ctx, viewer.ID)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", ErrEmptyCart
	}

	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "%s (%s) — %d\n", item.Name, item.MeasurementUnit, item.Total)
	}
	return b.String(), nil
}
