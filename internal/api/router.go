package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	config "github.com/halknowsaguy/api/configs"
	"github.com/halknowsaguy/api/internal/api/handlers"
	"github.com/halknowsaguy/api/internal/api/middleware"
	jsoniter "github.com/json-iterator/go"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Routes struct {
	Auth   *handlers.AuthHandler
	Social *handlers.SocialHandler
	Feed   *handlers.FeedHandler
	Admin  *middleware.AuthMiddleware
	DB     Pinger
}

func NewApp(cfg config.Config) *fiber.App {
	json := jsoniter.ConfigCompatibleWithStandardLibrary

	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
				return c.Status(code).JSON(fiber.Map{"error": "Internal Server Error"})
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	return app
}

func RegisterRoutes(app *fiber.App, r Routes) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := r.DB.PingContext(ctx); err != nil {
			slog.Error("health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	api.Get("/feed", r.Feed.ListFeed)

	auth := api.Group("/auth")
	auth.Post("/login", r.Auth.Login)
	auth.Post("/logout", r.Auth.Logout)
	auth.Get("/check", r.Auth.Check)
	auth.Get("/twitter/login", r.Admin.AuthMiddleware(), r.Social.TwitterLogin)
	auth.Get("/twitter/callback", r.Social.TwitterCallback)

	social := api.Group("/social", r.Admin.AuthMiddleware())
	social.Get("/twitter/fetch", r.Social.FetchTwitter)
	social.Post("/import", r.Social.Import)
	social.Get("/status", r.Social.Status)
}
