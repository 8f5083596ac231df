package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-portal/internal/api/http/handlers"
	"github.com/spec-kit/support-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Clients        *handlers.ClientsHandler
	Specialists    *handlers.SpecialistsHandler
	Sessions       *handlers.SessionsHandler
	Chat           *handlers.ChatHandler
	Dev            *handlers.DevHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/clients/login", cfg.Auth.ClientLogin)
	authGroup.Post("/specialists/login", cfg.Auth.SpecialistLogin)
	authGroup.Post("/admin/login", cfg.Auth.AdminLogin)
	authGroup.Post("/dev/login", cfg.Auth.DevLogin)
	authGroup.Post("/owner/login", cfg.Auth.OwnerLogin)
	authGroup.Post("/password/set", cfg.Auth.SetPassword)

	portal := app.Group("/portal", cfg.AuthMiddleware.Handle, auth.RequireClient())
	portal.Get("/me", cfg.Clients.Me)
	portal.Post("/chat", cfg.Chat.Start)
	portal.Get("/chat/:id", cfg.Chat.Get)
	portal.Post("/chat/:id/messages", cfg.Chat.Send)
	portal.Delete("/chat/:id", cfg.Chat.Leave)

	specialist := app.Group("/specialist", cfg.AuthMiddleware.Handle, auth.RequireSpecialist())
	specialist.Get("/clients", cfg.Specialists.AssignedClients)
	specialist.Post("/assignments/accept", cfg.Specialists.AcceptAssignment)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/clients", cfg.Clients.List)
	admin.Post("/clients", cfg.Clients.Create)
	admin.Get("/clients/:id", cfg.Clients.Get)
	admin.Post("/clients/:id/password/reset", cfg.Clients.ResetPassword)
	admin.Get("/specialists", cfg.Specialists.List)
	admin.Post("/specialists", cfg.Specialists.Create)
	admin.Delete("/specialists/:id", cfg.Specialists.Delete)
	admin.Post("/specialists/:id/password/reset", cfg.Specialists.ResetPassword)
	admin.Post("/assignments", cfg.Specialists.Assign)
	admin.Get("/sessions", cfg.Sessions.List)

	dev := app.Group("/dev", cfg.AuthMiddleware.Handle, auth.RequireDeveloper())
	dev.Post("/reset", cfg.Dev.Reset)
	dev.Get("/stats", cfg.Dev.Stats)
}
