package services

import (
	"context"

	"foodgram/internal/logger"
	"foodgram/internal/models"
	"foodgram/internal/repositories"
)

// TagService serves the tag catalog through a read-through cache.
type TagService struct {
	repo  repositories.TagRepository
	cache repositories.TagCache
}

// NewTagService creates a new TagService.
func NewTagService(repo repositories.TagRepository, cache repositories.TagCache) *TagService {
	return &TagService{
		repo:  repo,
		cache: cache,
	}
}

// List returns every tag ordered by name. Cache failures fall back to the database.
func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	if tags, ok, err := s.cache.GetTags(ctx); err != nil {
		logger.Log.Warnw("tag cache read failed", "error", err)
	} else if ok {
		return tags, nil
	}

	tags, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetTags(ctx, tags); err != nil {
		logger.Log.Warnw("tag cache write failed", "error", err)
	}
	return tags, nil
}

// Get returns one tag.
func (s *TagService) Get(ctx context.Context, id uint) (*models.Tag, error) {
	return s.repo.GetByID(ctx, id)
}

// Load stores tags that are not in the catalog yet and drops the cached list.
func (s *TagService) Load(ctx context.Context, tags []models.Tag) (int64, error) {
	n, err := s.repo.CreateMissing(ctx, tags)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Log.Warnw("tag cache invalidation failed", "error", err)
	}
	return n, nil
}

// IngredientService serves the ingredient catalog.
type IngredientService struct {
	repo repositories.IngredientRepository
}

// NewIngredientService creates a new IngredientService.
func NewIngredientService(repo repositories.IngredientRepository) *IngredientService {
	return &IngredientService{repo: repo}
}

// List returns ingredients whose name starts with prefix, ignoring case.
func (s *IngredientService) List(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	return s.repo.Search(ctx, prefix)
}

// Get returns one ingredient.
func (s *IngredientService) Get(ctx context.Context, id uint) (*models.Ingredient, error) {
	return s.repo.GetByID(ctx, id)
}

// Load stores ingredients whose (name, unit) pair is not in the catalog yet.
func (s *IngredientService) Load(ctx context.Context, ingredients []models.Ingredient) (int64, error) {
	return s.repo.CreateMissing(ctx, ingredients)
}
