package services

import (
	"context"

	"foodgram/internal/models"
)

// UserView is a user as seen by the requesting user.
type UserView struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

func newUserView(u *models.User, subscribed bool) UserView {
	return UserView{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// RecipeIngredientView is an ingredient together with the amount a recipe uses.
type RecipeIngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeView is the read shape of a recipe.
type RecipeView struct {
	ID               uint                   `json:"id"`
	Tags             []models.Tag           `json:"tags"`
	Author           UserView               `json:"author"`
	Ingredients      []RecipeIngredientView `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
}

// BriefRecipe is the short recipe shape used by favorites, the cart and subscriptions.
type BriefRecipe struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func newBriefRecipe(r *models.Recipe) BriefRecipe {
	return BriefRecipe{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// SubscriptionView is a followed author with a preview of their recipes.
type SubscriptionView struct {
	UserView
	Recipes      []BriefRecipe `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}

func viewerID(viewer *models.User) uint {
	if viewer == nil {
		return 0
	}
	return viewer.ID
}

// recipeViews renders recipes for viewer, loading the per-viewer flags in batches.
func (s *RecipeService) recipeViews(ctx context.Context, viewer *models.User, recipes []models.Recipe) ([]RecipeView, error) {
	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for i := range recipes {
		recipeIDs[i] = recipes[i].ID
		authorIDs = append(authorIDs, recipes[i].AuthorID)
	}

	uid := viewerID(viewer)
	favorited, err := s.favorites.MarkedAmong(ctx, uid, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.carts.MarkedAmong(ctx, uid, recipeIDs)
	if err != nil {
		return nil, err
	}
	followed := map[uint]bool{}
	if uid != 0 {
		if followed, err = s.follows.FollowedAmong(ctx, uid, authorIDs); err != nil {
			return nil, err
		}
	}

	views := make([]RecipeView, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		view := RecipeView{
			ID:               r.ID,
			Tags:             r.Tags,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
			Ingredients:      make([]RecipeIngredientView, 0, len(r.Ingredients)),
		}
		if view.Tags == nil {
			view.Tags = []models.Tag{}
		}
		if r.Author != nil {
			view.Author = newUserView(r.Author, followed[r.AuthorID])
		}
		for _, item := range r.Ingredients {
			if item.Ingredient == nil {
				continue
			}
			view.Ingredients = append(view.Ingredients, RecipeIngredientView{
				ID:              item.Ingredient.ID,
				Name:            item.Ingredient.Name,
				MeasurementUnit: item.Ingredient.MeasurementUnit,
				Amount:          item.Amount,
			})
		}
		views[i] = view
	}
	return views, nil
}
