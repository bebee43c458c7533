package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"foodgram/internal/database"
	"foodgram/internal/handlers"
	"foodgram/internal/media"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/repositories"
	"foodgram/internal/services"
)

const (
	testJWTSecret = "test_jwt_secret"
	pixelPNG      = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="
)

type testEnv struct {
	app         *fiber.App
	db          *gorm.DB
	breakfast   models.Tag
	dinner      models.Tag
	flour       models.Ingredient
	sugar       models.Ingredient
	flourInKilo models.Ingredient
}

// setupApp wires every handler against a private in-memory SQLite database.
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	db := database.OpenTestDB(t)

	userRepo := repositories.NewGORMUserRepository(db)
	followRepo := repositories.NewGORMFollowRepository(db)
	recipeRepo := repositories.NewGORMRecipeRepository(db)
	tagRepo := repositories.NewGORMTagRepository(db)
	ingredientRepo := repositories.NewGORMIngredientRepository(db)

	authService := services.NewAuthService(userRepo, repositories.NewMemoryTokenDenylist(), nil, testJWTSecret, time.Hour)
	userService := services.NewUserService(userRepo, followRepo, recipeRepo, nil)
	tagService := services.NewTagService(tagRepo, repositories.NewMemoryTagCache(time.Minute))
	ingredientService := services.NewIngredientService(ingredientRepo)
	recipeService := services.NewRecipeService(
		recipeRepo,
		tagRepo,
		ingredientRepo,
		repositories.NewGORMFavoriteRepository(db),
		repositories.NewGORMShoppingCartRepository(db),
		followRepo,
		media.NewStore(t.TempDir(), "/media/"),
		nil,
	)

	app := fiber.New()
	api := app.Group("/api", middleware.Authenticate(authService))
	handlers.NewAuthHandler(authService).RegisterRoutes(api)
	handlers.NewUserHandler(authService, userService, 6).RegisterRoutes(api)
	handlers.NewCatalogHandler(tagService, ingredientService).RegisterRoutes(api)
	handlers.NewRecipeHandler(recipeService, 6).RegisterRoutes(api)

	env := &testEnv{
		app:         app,
		db:          db,
		breakfast:   models.Tag{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
		dinner:      models.Tag{Name: "Dinner", Color: "#49B64E", Slug: "dinner"},
		flour:       models.Ingredient{Name: "flour", MeasurementUnit: "g"},
		sugar:       models.Ingredient{Name: "sugar", MeasurementUnit: "g"},
		flourInKilo: models.Ingredient{Name: "flour", MeasurementUnit: "kg"},
	}
	for _, row := range []any{&env.breakfast, &env.dinner, &env.flour, &env.sugar, &env.flourInKilo} {
		require.NoError(t, db.Create(row).Error)
	}
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

// signUp registers a user and returns its id and a fresh token.
func (e *testEnv) signUp(t *testing.T, username string) (uint, string) {
	t.Helper()
	email := username + "@example.com"
	resp, raw := e.do(t, http.MethodPost, "/api/users/", "", map[string]string{
		"email":      email,
		"username":   username,
		"first_name": "First",
		"last_name":  "Last",
		"password":   "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	user := decode[map[string]any](t, raw)

	resp, raw = e.do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	token := decode[map[string]string](t, raw)["auth_token"]
	require.NotEmpty(t, token)
	return uint(user["id"].(float64)), token
}

func (e *testEnv) recipeBody(name string, tags []uint, ingredients ...[2]int) map[string]any {
	items := make([]map[string]int, len(ingredients))
	for i, pair := range ingredients {
		items[i] = map[string]int{"id": pair[0], "amount": pair[1]}
	}
	return map[string]any{
		"name":         name,
		"text":         "Mix and bake.",
		"cooking_time": 30,
		"image":        pixelPNG,
		"tags":         tags,
		"ingredients":  items,
	}
}

func (e *testEnv) createRecipe(t *testing.T, token string, body map[string]any) services.RecipeView {
	t.Helper()
	resp, raw := e.do(t, http.MethodPost, "/api/recipes/", token, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	return decode[services.RecipeView](t, raw)
}

func TestRegisterLoginLogout(t *testing.T) {
	env := setupApp(t)

	resp, raw := env.do(t, http.MethodPost, "/api/users/", "", map[string]string{
		"email":      "me@example.com",
		"username":   "me",
		"first_name": "Reserved",
		"last_name":  "Name",
		"password":   "password123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[map[string]any](t, raw), "username")

	resp, raw = env.do(t, http.MethodPost, "/api/users/", "", map[string]string{
		"email":      "cook@example.com",
		"username":   "cook",
		"first_name": "Ann",
		"last_name":  "Cook",
		"password":   "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	created := decode[map[string]any](t, raw)
	assert.Equal(t, "cook", created["username"])
	assert.NotContains(t, created, "password")

	var stored models.User
	require.NoError(t, env.db.Where("username = ?", "cook").First(&stored).Error)
	assert.NotEqual(t, "password123", stored.Password)

	resp, raw = env.do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    "cook@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[map[string]any](t, raw), "non_field_errors")

	resp, raw = env.do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    "cook@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := decode[map[string]string](t, raw)["auth_token"]

	resp, raw = env.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[services.UserView](t, raw)
	assert.Equal(t, "cook", me.Username)
	assert.False(t, me.IsSubscribed)

	resp, _ = env.do(t, http.MethodPost, "/api/auth/token/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "a revoked token must not authenticate")

	resp, _ = env.do(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSetPassword(t *testing.T) {
	env := setupApp(t)
	_, token := env.signUp(t, "baker")

	resp, raw := env.do(t, http.MethodPost, "/api/users/set_password", token, map[string]string{
		"current_password": "not-my-password",
		"new_password":     "new-password123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[map[string]any](t, raw), "current_password")

	resp, _ = env.do(t, http.MethodPost, "/api/users/set_password", token, map[string]string{
		"current_password": "password123",
		"new_password":     "new-password123",
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    "baker@example.com",
		"password": "new-password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRecipeLifecycle(t *testing.T) {
	env := setupApp(t)
	authorID, author := env.signUp(t, "author")
	_, stranger := env.signUp(t, "stranger")

	body := env.recipeBody("Pancakes", []uint{env.breakfast.ID},
		[2]int{int(env.flour.ID), 200}, [2]int{int(env.sugar.ID), 20})
	created := env.createRecipe(t, author, body)
	assert.Equal(t, "Pancakes", created.Name)
	assert.Equal(t, authorID, created.Author.ID)
	assert.True(t, strings.HasPrefix(created.Image, "/media/recipes/"), created.Image)

	resp, raw := env.do(t, http.MethodGet, fmt.Sprintf("/api/recipes/%d", created.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	read := decode[services.RecipeView](t, raw)
	assert.Equal(t, created, read)
	require.Len(t, read.Ingredients, 2)
	assert.ElementsMatch(t, []services.RecipeIngredientView{
		{ID: env.flour.ID, Name: "flour", MeasurementUnit: "g", Amount: 200},
		{ID: env.sugar.ID, Name: "sugar", MeasurementUnit: "g", Amount: 20},
	}, read.Ingredients)
	require.Len(t, read.Tags, 1)
	assert.Equal(t, "breakfast", read.Tags[0].Slug)

	path := fmt.Sprintf("/api/recipes/%d", created.ID)
	update := env.recipeBody("Crepes", []uint{env.dinner.ID}, [2]int{int(env.flourInKilo.ID), 1})
	update["image"] = created.Image

	resp, _ = env.do(t, http.MethodPatch, path, "", update)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPatch, path, stranger, update)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, path, stranger, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw = env.do(t, http.MethodPatch, path, author, update)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	updated := decode[services.RecipeView](t, raw)
	assert.Equal(t, "Crepes", updated.Name)
	assert.Equal(t, created.Image, updated.Image, "an unchanged image is kept")
	assert.Equal(t, []services.RecipeIngredientView{
		{ID: env.flourInKilo.ID, Name: "flour", MeasurementUnit: "kg", Amount: 1},
	}, updated.Ingredients)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "dinner", updated.Tags[0].Slug)

	resp, _ = env.do(t, http.MethodDelete, path, author, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, raw = env.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, map[string]string{"detail": "Not found."}, decode[map[string]string](t, raw))
}

func TestRecipeValidation(t *testing.T) {
	env := setupApp(t)
	_, token := env.signUp(t, "author")
	overLimit := services.MaxAmount + 1

	resp, _ := env.do(t, http.MethodPost, "/api/recipes/", "", env.recipeBody("Anonymous", []uint{env.breakfast.ID}, [2]int{int(env.flour.ID), 1}))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"zero amount", env.recipeBody("Zero", []uint{env.breakfast.ID}, [2]int{int(env.flour.ID), 0}), "ingredients"},
		{"repeated ingredient", env.recipeBody("Twice", []uint{env.breakfast.ID}, [2]int{int(env.flour.ID), 1}, [2]int{int(env.flour.ID), 2}), "ingredients"},
		{"unknown ingredient", env.recipeBody("Ghost", []uint{env.breakfast.ID}, [2]int{9999, 1}), "ingredients"},
		{"repeated tag", env.recipeBody("Tags", []uint{env.breakfast.ID, env.breakfast.ID}, [2]int{int(env.flour.ID), 1}), "tags"},
		{"no tags", env.recipeBody("Bare", []uint{}, [2]int{int(env.flour.ID), 1}), "tags"},
		{"amount above limit", env.recipeBody("Huge", []uint{env.breakfast.ID}, [2]int{int(env.flour.ID), overLimit}), "ingredients"},
		{"cooking time above limit", slowRecipe(env.recipeBody("Slow", []uint{env.breakfast.ID}, [2]int{int(env.flour.ID), 1}), overLimit), "cooking_time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := env.do(t, http.MethodPost, "/api/recipes/", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(raw))
			assert.Contains(t, decode[map[string]any](t, raw), tt.field)
		})
	}

	bad := env.recipeBody("Not an image", []uint{env.breakfast.ID}, [2]int{int(env.flour.ID), 1})
	bad["image"] = "data:text/plain;base64,aGVsbG8gd29ybGQ="
	resp, raw := env.do(t, http.MethodPost, "/api/recipes/", token, bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[map[string]any](t, raw), "image")

	var count int64
	require.NoError(t, env.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func slowRecipe(body map[string]any, minutes int) map[string]any {
	body["cooking_time"] = minutes
	return body
}

func TestShoppingListAtAmountLimit(t *testing.T) {
	env := setupApp(t)
	_, token := env.signUp(t, "author")

	for _, name := range []string{"Bulk bread", "Bulk cake"} {
		recipe := env.createRecipe(t, token, slowRecipe(
			env.recipeBody(name, []uint{env.dinner.ID}, [2]int{int(env.flour.ID), services.MaxAmount}),
			services.MaxAmount,
		))
		assert.Equal(t, services.MaxAmount, recipe.CookingTime)
		resp, _ := env.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart", recipe.ID), token, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, raw := env.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	total := 2 * services.MaxAmount
	assert.Equal(t, fmt.Sprintf("flour (g) — %d\n", total), string(raw))
}

func TestFavoritesAndShoppingCart(t *testing.T) {
	env := setupApp(t)
	_, token := env.signUp(t, "author")

	bread := env.createRecipe(t, token, env.recipeBody("Bread", []uint{env.dinner.ID},
		[2]int{int(env.flour.ID), 200}, [2]int{int(env.flourInKilo.ID), 1}))
	cake := env.createRecipe(t, token, env.recipeBody("Cake", []uint{env.breakfast.ID},
		[2]int{int(env.flour.ID), 300}, [2]int{int(env.sugar.ID), 100}))

	favorite := fmt.Sprintf("/api/recipes/%d/favorite", bread.ID)
	resp, raw := env.do(t, http.MethodPost, favorite, token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, services.BriefRecipe{ID: bread.ID, Name: "Bread", Image: bread.Image, CookingTime: 30},
		decode[services.BriefRecipe](t, raw))

	resp, raw = env.do(t, http.MethodPost, favorite, token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[map[string]any](t, raw), "errors")

	resp, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/recipes/%d/favorite", cake.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "removing a missing favorite")

	resp, _ = env.do(t, http.MethodPost, "/api/recipes/9999/favorite", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw = env.do(t, http.MethodGet, "/api/recipes/?is_favorited=1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[struct {
		Count   int64                 `json:"count"`
		Results []services.RecipeView `json:"results"`
	}](t, raw)
	assert.Equal(t, int64(1), page.Count)
	require.Len(t, page.Results, 1)
	assert.True(t, page.Results[0].IsFavorited)

	resp, _ = env.do(t, http.MethodDelete, favorite, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, raw = env.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "an empty cart has nothing to download")
	assert.Contains(t, decode[map[string]any](t, raw), "errors")

	for _, id := range []uint{bread.ID, cake.ID} {
		resp, _ = env.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart", id), token, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp, _ = env.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart", cake.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = env.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "shopping_list.txt")
	assert.Equal(t, "flour (g) — 500\nflour (kg) — 1\nsugar (g) — 100\n", string(raw))

	resp, _ = env.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSubscriptions(t *testing.T) {
	env := setupApp(t)
	readerID, reader := env.signUp(t, "reader")
	chefID, chef := env.signUp(t, "chef")

	for i := 0; i < 3; i++ {
		env.createRecipe(t, chef, env.recipeBody(fmt.Sprintf("Dish %d", i), []uint{env.dinner.ID}, [2]int{int(env.flour.ID), 10}))
	}

	resp, raw := env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", readerID), reader, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "self subscription")
	assert.Contains(t, decode[map[string]any](t, raw), "errors")

	subscribe := fmt.Sprintf("/api/users/%d/subscribe?recipes_limit=2", chefID)
	resp, raw = env.do(t, http.MethodPost, subscribe, reader, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	sub := decode[services.SubscriptionView](t, raw)
	assert.True(t, sub.IsSubscribed)
	assert.Equal(t, int64(3), sub.RecipesCount)
	assert.Len(t, sub.Recipes, 2)

	resp, _ = env.do(t, http.MethodPost, subscribe, reader, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", chefID), reader, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[services.UserView](t, raw).IsSubscribed)

	resp, raw = env.do(t, http.MethodGet, "/api/users/subscriptions", reader, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[struct {
		Count   int64                       `json:"count"`
		Results []services.SubscriptionView `json:"results"`
	}](t, raw)
	assert.Equal(t, int64(1), list.Count)
	require.Len(t, list.Results, 1)
	assert.Equal(t, "chef", list.Results[0].Username)

	resp, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d/subscribe", chefID), reader, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d/subscribe", chefID), reader, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/users/9999/subscribe", reader, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecipePaginationAndFilters(t *testing.T) {
	env := setupApp(t)
	authorID, token := env.signUp(t, "author")
	for i := 0; i < 3; i++ {
		tag := env.breakfast.ID
		if i == 2 {
			tag = env.dinner.ID
		}
		env.createRecipe(t, token, env.recipeBody(fmt.Sprintf("Recipe %d", i), []uint{tag}, [2]int{int(env.flour.ID), 10}))
	}

	type listPage struct {
		Count    int64                 `json:"count"`
		Next     *string               `json:"next"`
		Previous *string               `json:"previous"`
		Results  []services.RecipeView `json:"results"`
	}

	resp, raw := env.do(t, http.MethodGet, "/api/recipes/?limit=2", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decode[listPage](t, raw)
	assert.Equal(t, int64(3), first.Count)
	require.Len(t, first.Results, 2)
	assert.Equal(t, "Recipe 2", first.Results[0].Name, "newest first")
	require.NotNil(t, first.Next)
	assert.Contains(t, *first.Next, "page=2")
	assert.Nil(t, first.Previous)

	resp, raw = env.do(t, http.MethodGet, "/api/recipes/?limit=2&page=2", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decode[listPage](t, raw)
	assert.Len(t, second.Results, 1)
	assert.Nil(t, second.Next)
	assert.NotNil(t, second.Previous)

	resp, raw = env.do(t, http.MethodGet, "/api/recipes/?limit=2&page=3", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Invalid page.", decode[map[string]string](t, raw)["detail"])

	resp, _ = env.do(t, http.MethodGet, "/api/recipes/?page=abc", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	for _, query := range []string{"page=3074457345618258603", "page=9223372036854775807&limit=100", "page=99999999999999999999"} {
		resp, raw = env.do(t, http.MethodGet, "/api/recipes/?"+query, "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, query)
		assert.Equal(t, "Invalid page.", decode[map[string]string](t, raw)["detail"], query)
	}

	resp, raw = env.do(t, http.MethodGet, "/api/recipes/?tags=dinner", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), decode[listPage](t, raw).Count)

	resp, raw = env.do(t, http.MethodGet, "/api/recipes/?tags=dinner&tags=breakfast", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(3), decode[listPage](t, raw).Count)

	resp, raw = env.do(t, http.MethodGet, fmt.Sprintf("/api/recipes/?author=%d", authorID+100), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), decode[listPage](t, raw).Count)

	resp, raw = env.do(t, http.MethodGet, "/api/recipes/?is_favorited=1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(3), decode[listPage](t, raw).Count, "anonymous viewers ignore the favorites filter")
}

func TestCatalog(t *testing.T) {
	env := setupApp(t)

	resp, raw := env.do(t, http.MethodGet, "/api/tags", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tags := decode[[]models.Tag](t, raw)
	assert.Len(t, tags, 2)

	resp, raw = env.do(t, http.MethodGet, fmt.Sprintf("/api/tags/%d", env.dinner.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, env.dinner, decode[models.Tag](t, raw))

	resp, _ = env.do(t, http.MethodGet, "/api/tags/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw = env.do(t, http.MethodGet, "/api/ingredients?search=FLO", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	found := decode[[]models.Ingredient](t, raw)
	require.Len(t, found, 2)
	for _, ingredient := range found {
		assert.Equal(t, "flour", ingredient.Name)
	}

	resp, raw = env.do(t, http.MethodGet, fmt.Sprintf("/api/ingredients/%d", env.sugar.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, env.sugar, decode[models.Ingredient](t, raw))
}

func TestInvalidTokenIsRejected(t *testing.T) {
	env := setupApp(t)

	resp, raw := env.do(t, http.MethodGet, "/api/recipes/", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid token.", decode[map[string]string](t, raw)["detail"])
}
