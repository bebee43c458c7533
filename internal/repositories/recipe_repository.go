package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodgram/internal/models"
)

// RecipeFilter narrows a recipe listing. Zero values disable a criterion.
type RecipeFilter struct {
	AuthorID    uint
	TagSlugs    []string
	FavoritedBy uint
	InCartOf    uint
}

// ShoppingListItem is one aggregated line of a shopping list.
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	Total           int64
}

// RecipeRepository defines the interface for recipe data access.
type RecipeRepository interface {
	// Create stores the recipe, its ingredient rows and tag links in one transaction.
	Create(ctx context.Context, recipe *models.Recipe, tags []models.Tag, items []models.RecipeIngredient) error
	// Update replaces tags and ingredient rows, then the scalar fields, in one transaction.
	Update(ctx context.Context, recipe *models.Recipe, tags []models.Tag, items []models.RecipeIngredient) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Recipe, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error)
	ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error)
	CountByAuthor(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
	// ShoppingList sums ingredient amounts over every recipe in the user's cart.
	ShoppingList(ctx context.Context, userID uint) ([]ShoppingListItem, error)
}

// GORMRecipeRepository is a GORM implementation of RecipeRepository.
type GORMRecipeRepository struct {
	db *gorm.DB
}

// NewGORMRecipeRepository creates a new instance of GORMRecipeRepository.
func NewGORMRecipeRepository(db *gorm.DB) *GORMRecipeRepository {
	return &GORMRecipeRepository{db: db}
}

// Create creates a new recipe with its associations.
func (r *GORMRecipeRepository) Create(ctx context.Context, recipe *models.Recipe, tags []models.Tag, items []models.RecipeIngredient) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return translate(err)
		}
		if err := insertIngredients(tx, recipe.ID, items); err != nil {
			return err
		}
		if err := attachTags(tx, recipe, tags); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

// Update replaces the recipe's tags and ingredients, then its scalar fields.
func (r *GORMRecipeRepository) Update(ctx context.Context, recipe *models.Recipe, tags []models.Tag, items []models.RecipeIngredient) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to clear ingredients: %w", err)
		}
		if err := attachTags(tx, recipe, tags); err != nil {
			return err
		}
		if err := insertIngredients(tx, recipe.ID, items); err != nil {
			return err
		}

		res := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(map[string]any{
			"name":         recipe.Name,
			"text":         recipe.Text,
			"image":        recipe.Image,
			"cooking_time": recipe.CookingTime,
		})
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update recipe %d: %w", recipe.ID, err)
	}
	return nil
}

func attachTags(tx *gorm.DB, recipe *models.Recipe, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	if err := tx.Model(recipe).Association("Tags").Append(tags); err != nil {
		return fmt.Errorf("failed to attach tags: %w", err)
	}
	return nil
}

func insertIngredients(tx *gorm.DB, recipeID uint, items []models.RecipeIngredient) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]models.RecipeIngredient, len(items))
	for i, item := range items {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.IngredientID,
			Amount:       item.Amount,
		}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert ingredients: %w", translate(err))
	}
	return nil
}

// Delete removes a recipe together with every row that references it.
func (r *GORMRecipeRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe := &models.Recipe{ID: id}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}
		for _, dependent := range []any{&models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingCart{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Recipe{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}
	return nil
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

// GetByID retrieves a recipe with author, tags and ingredients loaded.
func (r *GORMRecipeRepository) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).Scopes(preloadRecipe).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get recipe by ID %d: %w", id, translate(err))
	}
	return &recipe, nil
}

// Exists reports whether a recipe with the given ID is stored.
func (r *GORMRecipeRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check recipe %d: %w", id, err)
	}
	return count > 0, nil
}

func (r *GORMRecipeRepository) filterScope(filter RecipeFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.AuthorID != 0 {
			db = db.Where("recipes.author_id = ?", filter.AuthorID)
		}
		if len(filter.TagSlugs) > 0 {
			db = db.Where("recipes.id IN (?)", r.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs))
		}
		if filter.FavoritedBy != 0 {
			db = db.Where("recipes.id IN (?)", r.db.Model(&models.Favorite{}).
				Select("recipe_id").Where("user_id = ?", filter.FavoritedBy))
		}
		if filter.InCartOf != 0 {
			db = db.Where("recipes.id IN (?)", r.db.Model(&models.ShoppingCart{}).
				Select("recipe_id").Where("user_id = ?", filter.InCartOf))
		}
		return db
	}
}

// List returns recipes newest first.
func (r *GORMRecipeRepository) List(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error) {
	scope := r.filterScope(filter)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Recipe{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []models.Recipe
	err := r.db.WithContext(ctx).
		Scopes(scope, paginate(page), preloadRecipe).
		Order("recipes.id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, total, nil
}

// ListByAuthor returns the author's recipes newest first. A non-positive limit returns all of them.
func (r *GORMRecipeRepository) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error) {
	q := r.db.WithContext(ctx).Where("author_id = ?", authorID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var recipes []models.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes of author %d: %w", authorID, err)
	}
	return recipes, nil
}

// CountByAuthor returns the number of recipes per author. Authors without recipes map to zero.
func (r *GORMRecipeRepository) CountByAuthor(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID uint
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	for _, id := range authorIDs {
		counts[id] = 0
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}

// ShoppingList groups the cart's ingredient rows by (name, unit), ordered by name then unit.
func (r *GORMRecipeRepository) ShoppingList(ctx context.Context, userID uint) ([]ShoppingListItem, error) {
	var items []ShoppingListItem
	err := r.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.measurement_unit ASC").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build shopping list for user %d: %w", userID, err)
	}
	return items, nil
}

// BookmarkRepository stores (user, recipe) marks such as favorites and cart entries.
type BookmarkRepository interface {
	// Add fails with ErrDuplicate when the pair already exists.
	Add(ctx context.Context, userID, recipeID uint) error
	// Remove reports whether a pair was deleted.
	Remove(ctx context.Context, userID, recipeID uint) (bool, error)
	// MarkedAmong returns which of recipeIDs the user has marked.
	MarkedAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)
}

// GORMBookmarkRepository is a GORM implementation of BookmarkRepository bound to one table.
type GORMBookmarkRepository struct {
	db     *gorm.DB
	kind   string
	model  any
	newRow func(userID, recipeID uint) any
}

// NewGORMFavoriteRepository returns a BookmarkRepository over the favorites table.
func NewGORMFavoriteRepository(db *gorm.DB) *GORMBookmarkRepository {
	return &GORMBookmarkRepository{
		db:    db,
		kind:  "favorite",
		model: &models.Favorite{},
		newRow: func(userID, recipeID uint) any {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
	}
}

// NewGORMShoppingCartRepository returns a BookmarkRepository over the shopping_carts table.
func NewGORMShoppingCartRepository(db *gorm.DB) *GORMBookmarkRepository {
	return &GORMBookmarkRepository{
		db:    db,
		kind:  "shopping cart",
		model: &models.ShoppingCart{},
		newRow: func(userID, recipeID uint) any {
			return &models.ShoppingCart{UserID: userID, RecipeID: recipeID}
		},
	}
}

// Add inserts the (user, recipe) pair.
func (r *GORMBookmarkRepository) Add(ctx context.Context, userID, recipeID uint) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(r.newRow(userID, recipeID)).Error; err != nil {
		err = translate(err)
		if errors.Is(err, ErrDuplicate) {
			return fmt.Errorf("%s for recipe %d already exists: %w", r.kind, recipeID, ErrDuplicate)
		}
		return fmt.Errorf("failed to add %s: %w", r.kind, err)
	}
	return nil
}

// Remove deletes the (user, recipe) pair.
func (r *GORMBookmarkRepository) Remove(ctx context.Context, userID, recipeID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(r.model)
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove %s: %w", r.kind, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkedAmong returns the subset of recipeIDs marked by the user.
func (r *GORMBookmarkRepository) MarkedAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	marked := make(map[uint]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return marked, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).Model(r.model).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s marks: %w", r.kind, err)
	}
	for _, id := range ids {
		marked[id] = true
	}
	return marked, nil
}
