package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/repositories"
)

func newTestApp(t *testing.T) (*fiber.App, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		JWTSecret: "test_jwt_secret",
		JWTTTL:    time.Hour,
		MediaRoot: t.TempDir(),
		MediaURL:  "/media/",
		PageSize:  6,
	}
	db := database.OpenTestDB(t)
	require.NoError(t, db.Create(&models.Tag{Name: "Lunch", Color: "#FFAA00", Slug: "lunch"}).Error)

	app := buildApp(cfg, db, backends{
		tagCache: repositories.NewMemoryTagCache(time.Minute),
		denylist: repositories.NewMemoryTokenDenylist(),
	})
	return app, cfg
}

func get(t *testing.T, app *fiber.App, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := get(t, app, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	var health map[string]any
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, false, health["events"])
}

func TestRoutesAreMounted(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := get(t, app, "/api/tags")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tags []models.Tag
	require.NoError(t, json.Unmarshal(body, &tags))
	require.Len(t, tags, 1)
	assert.Equal(t, "lunch", tags[0].Slug)

	resp, _ = get(t, app, "/api/users/me")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = get(t, app, "/api/recipes/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"count":0,"next":null,"previous":null,"results":[]}`, string(body))
}

func TestUnknownRoute(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := get(t, app, "/api/nowhere")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"detail":"Not found."}`, string(body))
}

func TestMediaIsServed(t *testing.T) {
	app, cfg := newTestApp(t)

	dir := filepath.Join(cfg.MediaRoot, "recipes")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.txt"), []byte("cover"), 0o644))

	resp, body := get(t, app, "/media/recipes/cover.txt")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cover", string(body))
}

func TestMediaPrefix(t *testing.T) {
	assert.Equal(t, "/media", mediaPrefix("/media/"))
	assert.Equal(t, "/uploads", mediaPrefix("uploads"))
	assert.Equal(t, "/media", mediaPrefix("/"))
}
