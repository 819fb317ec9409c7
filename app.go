package main

import (
	"time"

	"toyshop/internal/config"
	"toyshop/internal/handlers"
	"toyshop/internal/middleware"
	"toyshop/internal/repositories"
	"toyshop/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

const (
	sessionCookieName = "toyshop_session"
	// uploads are images; keep the limit well above a phone photo.
	bodyLimit = 10 << 20
)

// Deps are the collaborators the HTTP app is built from.
type Deps struct {
	Config   *config.Config
	Products repositories.ProductRepository
	// Assets may wrap a nil store, in which case uploads answer 503.
	Assets *services.AssetService
	// Events may be nil.
	Events services.EventPublisher
	// Sessions and limiter counters live here; nil keeps them in memory.
	SessionStorage fiber.Storage
	LimiterStorage fiber.Storage
	// AccessLog disables the request logger when false.
	AccessLog bool
}

// NewApp wires repositories, services and handlers into a Fiber app.
func NewApp(deps Deps) (*fiber.App, error) {
	cfg := deps.Config

	authService, err := services.NewAuthService(services.AuthConfig{
		AdminEmail:   cfg.Admin.Email,
		PasswordHash: cfg.Admin.PasswordHash,
		Password:     cfg.Admin.Password,
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.Session.TTL,
	})
	if err != nil {
		return nil, err
	}
	productService := services.NewProductService(deps.Products, deps.Events)
	assets := deps.Assets
	if assets == nil {
		assets = services.NewAssetService(nil, services.AssetConfig{})
	}

	sessions := session.New(session.Config{
		Expiration:     cfg.Session.TTL,
		Storage:        deps.SessionStorage,
		KeyLookup:      "cookie:" + sessionCookieName,
		CookieHTTPOnly: true,
		CookieSecure:   cfg.Session.CookieSecure,
		CookieSameSite: "Lax",
		KeyGenerator:   uuid.NewString,
	})

	var loginLimiter fiber.Handler
	if cfg.LoginRateLimit > 0 {
		loginLimiter = limiter.New(limiter.Config{
			Max:        cfg.LoginRateLimit,
			Expiration: time.Minute,
			Storage:    deps.LimiterStorage,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "too many login attempts, try again later",
				})
			},
		})
	}

	app := fiber.New(fiber.Config{
		AppName:      "toyshop",
		BodyLimit:    bodyLimit,
		ErrorHandler: handlers.ErrorHandler,
		JSONEncoder:  jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:  jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
	})

	// --- Middleware ---
	app.Use(recover.New())
	if deps.AccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: cfg.AllowedOrigins != "*",
	}))

	admin := middleware.AdminRequired(sessions, authService)

	// --- API Routes ---
	api := app.Group("/api")
	handlers.NewAuthHandler(authService, sessions, loginLimiter).RegisterRoutes(api)
	handlers.NewProductHandler(productService).RegisterRoutes(api, admin)
	handlers.NewUploadHandler(assets).RegisterRoutes(api, admin)
	handlers.NewShopHandler(cfg.Shop).RegisterRoutes(api)

	app.Get("/health", handlers.HandleHealth)

	return app, nil
}
