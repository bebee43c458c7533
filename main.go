package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/fixtures"
	"foodgram/internal/handlers"
	"foodgram/internal/logger"
	"foodgram/internal/media"
	"foodgram/internal/middleware"
	"foodgram/internal/repositories"
	"foodgram/internal/services"
	"foodgram/pkg/rabbitmq"
)

// backends are the optional stores and brokers the API runs against.
type backends struct {
	tagCache repositories.TagCache
	denylist repositories.TokenDenylist
	events   services.EventPublisher
}

func main() {
	configPath := flag.String("c", "config.env", "path to an env file with configuration")
	ingredientsFile := flag.String("load-ingredients", "", "load ingredients from a .json or .csv file and exit")
	tagsFile := flag.String("load-tags", "", "load tags from a .json or .csv file and exit")
	flag.Parse()

	// --- Configuration ---
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Log.Fatalw("database unavailable", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatalw("migration failed", "error", err)
	}

	// --- Redis (optional) ---
	deps := backends{
		tagCache: repositories.NewMemoryTagCache(cfg.TagCacheTTL),
		denylist: repositories.NewMemoryTokenDenylist(),
	}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.Log.Fatalw("redis unavailable", "addr", cfg.RedisAddr, "error", err)
		}
		defer rdb.Close()
		deps.tagCache = repositories.NewRedisTagCache(rdb, cfg.TagCacheTTL)
		deps.denylist = repositories.NewRedisTokenDenylist(rdb)
		logger.Log.Infow("using redis for tag cache and token denylist", "addr", cfg.RedisAddr)
	}

	if *ingredientsFile != "" || *tagsFile != "" {
		if err := loadFixtures(db, deps.tagCache, *ingredientsFile, *tagsFile); err != nil {
			logger.Log.Fatalw("fixture load failed", "error", err)
		}
		return
	}

	// --- RabbitMQ (optional) ---
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			logger.Log.Fatalw("failed to initialize RabbitMQ client", "error", err)
		}
		defer mqClient.Close()
		deps.events = mqClient

		if err := mqClient.ConsumeEvents(rabbitmq.LogEvent); err != nil {
			logger.Log.Errorw("failed to start RabbitMQ consumer", "error", err)
		}
	}

	app := buildApp(cfg, db, deps)

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Log.Infow("starting server", "addr", cfg.AppPort)
		if err := app.Listen(cfg.AppPort); err != nil {
			logger.Log.Fatalw("server failed to start", "error", err)
		}
	}()

	<-quit
	logger.Log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Log.Errorw("error during shutdown", "error", err)
	}
	logger.Log.Info("server gracefully stopped")
}

// buildApp wires repositories, services and handlers into a Fiber app.
func buildApp(cfg *config.Config, db *gorm.DB, deps backends) *fiber.App {
	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	followRepo := repositories.NewGORMFollowRepository(db)
	recipeRepo := repositories.NewGORMRecipeRepository(db)
	tagRepo := repositories.NewGORMTagRepository(db)
	ingredientRepo := repositories.NewGORMIngredientRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, deps.denylist, deps.events, cfg.JWTSecret, cfg.JWTTTL)
	userService := services.NewUserService(userRepo, followRepo, recipeRepo, deps.events)
	tagService := services.NewTagService(tagRepo, deps.tagCache)
	ingredientService := services.NewIngredientService(ingredientRepo)
	recipeService := services.NewRecipeService(
		recipeRepo,
		tagRepo,
		ingredientRepo,
		repositories.NewGORMFavoriteRepository(db),
		repositories.NewGORMShoppingCartRepository(db),
		followRepo,
		media.NewStore(cfg.MediaRoot, cfg.MediaURL),
		deps.events,
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		BodyLimit:    20 * 1024 * 1024,
	})
	app.Use(middleware.Logging(logger.Log))

	// --- API Routes ---
	api := app.Group("/api", middleware.Authenticate(authService))
	handlers.NewAuthHandler(authService).RegisterRoutes(api)
	handlers.NewUserHandler(authService, userService, cfg.PageSize).RegisterRoutes(api)
	handlers.NewCatalogHandler(tagService, ingredientService).RegisterRoutes(api)
	handlers.NewRecipeHandler(recipeService, cfg.PageSize).RegisterRoutes(api)

	app.Static(mediaPrefix(cfg.MediaURL), cfg.MediaRoot)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		code := fiber.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
			"events": deps.events != nil,
		})
	})

	return app
}

// mediaPrefix turns MEDIA_URL into the route prefix images are served from.
func mediaPrefix(mediaURL string) string {
	prefix := "/" + strings.Trim(mediaURL, "/")
	if prefix == "/" {
		return "/media"
	}
	return prefix
}

// errorHandler renders errors no handler turned into a response, such as unknown routes.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	detail := "Internal server error."
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		detail = fiberErr.Message
	}
	if code == fiber.StatusNotFound {
		detail = "Not found."
	}
	if code >= fiber.StatusInternalServerError {
		logger.Log.Errorw("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"detail": detail})
}

func loadFixtures(db *gorm.DB, tagCache repositories.TagCache, ingredientsFile, tagsFile string) error {
	ctx := context.Background()
	if ingredientsFile != "" {
		service := services.NewIngredientService(repositories.NewGORMIngredientRepository(db))
		if _, err := fixtures.LoadIngredientsFile(ctx, ingredientsFile, service); err != nil {
			return err
		}
	}
	if tagsFile != "" {
		service := services.NewTagService(repositories.NewGORMTagRepository(db), tagCache)
		if _, err := fixtures.LoadTagsFile(ctx, tagsFile, service); err != nil {
			return err
		}
	}
	return nil
}
