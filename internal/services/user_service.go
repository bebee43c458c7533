package services

import (
	"context"
	"errors"
	"fmt"

	"foodgram/internal/models"
	"foodgram/internal/permissions"
	"foodgram/internal/repositories"
)

// UserService handles user profiles and subscriptions.
type UserService struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
	recipes repositories.RecipeRepository
	events  EventPublisher
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, follows repositories.FollowRepository, recipes repositories.RecipeRepository, events EventPublisher) *UserService {
	return &UserService{
		users:   users,
		follows: follows,
		recipes: recipes,
		events:  events,
	}
}

// List returns users matching search, newest first.
func (s *UserService) List(ctx context.Context, viewer *models.User, search string, page repositories.Page) ([]UserView, int64, error) {
	users, total, err := s.users.List(ctx, search, page)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	followed, err := s.followedAmong(ctx, viewer, ids)
	if err != nil {
		return nil, 0, err
	}

	views := make([]UserView, len(users))
	for i := range users {
		views[i] = newUserView(&users[i], followed[users[i].ID])
	}
	return views, total, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, viewer *models.User, id uint) (*UserView, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	followed, err := s.followedAmong(ctx, viewer, []uint{id})
	if err != nil {
		return nil, err
	}
	view := newUserView(user, followed[id])
	return &view, nil
}

// Me returns the signed-in user.
func (s *UserService) Me(_ context.Context, viewer *models.User) (*UserView, error) {
	if err := permissions.AuthenticatedOnly(viewer); err != nil {
		return nil, err
	}
	view := newUserView(viewer, false)
	return &view, nil
}

func (s *UserService) followedAmong(ctx context.Context, viewer *models.User, ids []uint) (map[uint]bool, error) {
	if viewer == nil {
		return map[uint]bool{}, nil
	}
	return s.follows.FollowedAmong(ctx, viewer.ID, ids)
}

// Subscribe makes viewer follow the author. recipesLimit caps the recipe preview; zero means no cap.
func (s *UserService) Subscribe(ctx context.Context, viewer *models.User, authorID uint, recipesLimit int) (*SubscriptionView, error) {
	if err := permissions.AuthenticatedOnly(viewer); err != nil {
		return nil, err
	}
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author.ID == viewer.ID {
		return nil, ErrSelfSubscribe
	}

	if err := s.follows.Create(ctx, &models.Follow{UserID: viewer.ID, AuthorID: author.ID}); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	publishEvent(ctx, s.events, EventFollowCreated, map[string]any{"user_id": viewer.ID, "author_id": author.ID})

	views, err := s.subscriptionViews(ctx, []*models.User{author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Unsubscribe removes the viewer's subscription to the author.
func (s *UserService) Unsubscribe(ctx context.Context, viewer *models.User, authorID uint) error {
	if err := permissions.AuthenticatedOnly(viewer); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		return err
	}
	following, err := s.follows.Exists(ctx, viewer.ID, authorID)
	if err != nil {
		return fmt.Errorf("failed to check subscription: %w", err)
	}
	if !following {
		return ErrNotSubscribed
	}

	// A concurrent unsubscribe may still win the delete.
	deleted, err := s.follows.Delete(ctx, viewer.ID, authorID)
	if err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	if !deleted {
		return ErrNotSubscribed
	}
	return nil
}

// ListSubscriptions returns the authors the viewer follows.
func (s *UserService) ListSubscriptions(ctx context.Context, viewer *models.User, page repositories.Page, recipesLimit int) ([]SubscriptionView, int64, error) {
	if err := permissions.AuthenticatedOnly(viewer); err != nil {
		return nil, 0, err
	}
	follows, total, err := s.follows.ListByUser(ctx, viewer.ID, page)
	if err != nil {
		return nil, 0, err
	}

	authors := make([]*models.User, 0, len(follows))
	for i := range follows {
		if follows[i].Author != nil {
			authors = append(authors, follows[i].Author)
		}
	}
	views, err := s.subscriptionViews(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// subscriptionViews renders followed authors. Every author here is followed by the viewer.
func (s *UserService) subscriptionViews(ctx context.Context, authors []*models.User, recipesLimit int) ([]SubscriptionView, error) {
	ids := make([]uint, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}
	counts, err := s.recipes.CountByAuthor(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]SubscriptionView, len(authors))
	for i, author := range authors {
		recipes, err := s.recipes.ListByAuthor(ctx, author.ID, recipesLimit)
		if err != nil {
			return nil, err
		}
		brief := make([]BriefRecipe, len(recipes))
		for j := range recipes {
			brief[j] = newBriefRecipe(&recipes[j])
		}
		views[i] = SubscriptionView{
			UserView:     newUserView(author, true),
			Recipes:      brief,
			RecipesCount: counts[author.ID],
		}
	}
	return views, nil
}
