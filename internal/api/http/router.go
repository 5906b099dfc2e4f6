package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/haras-web/internal/api/http/handlers"
	"github.com/spec-kit/haras-web/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Auth           *handlers.AuthHandler
	Status         *handlers.StatusHandler
	Pages          *handlers.PagesHandler
	AuthMiddleware *auth.AuthMiddleware
	PublicDir      string
}

// RegisterRoutes wires HTTP routes. The 404 fallback is registered last.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Status.Live)
	app.Get("/health/ready", cfg.Status.Ready)

	api := app.Group("/api")
	api.Post("/signup", cfg.Auth.Signup)
	api.Post("/login", cfg.Auth.Login)
	api.Post("/logout", cfg.Auth.Logout)
	api.Post("/auth/refresh", cfg.Auth.Refresh)
	api.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	api.Get("/status", cfg.Status.Status)

	app.Get("/", cfg.Pages.Index)
	app.Get("/pricing", cfg.Pages.Pricing)
	if cfg.PublicDir != "" {
		app.Static("/", cfg.PublicDir)
	}

	app.Use(cfg.Pages.NotFound)
}
