// Package router wires HTTP routes to handlers. Role requirements are
// declared here, next to each route, so the whole authorization surface of
// the API can be audited in one file; ownership checks that need the actual
// row happen inside the handlers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ailuckly/SmartPropertyManagement/internal/handler"
	"github.com/ailuckly/SmartPropertyManagement/internal/middleware"
	"github.com/ailuckly/SmartPropertyManagement/internal/model"
)

// Handlers collects every handler the router needs. Built once in the
// composition root and passed in whole.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Properties    *handler.PropertyHandler
	Leases        *handler.LeaseHandler
	Payments      *handler.PaymentHandler
	Maintenance   *handler.MaintenanceHandler
	Notifications *handler.NotificationHandler
	Dashboard     *handler.DashboardHandler
}

// RegisterRoutes registers the full route table. The identity resolver runs
// on every request so any endpoint may observe the principal; the limiter
// wraps only the credential endpoints.
func RegisterRoutes(e *echo.Echo, h Handlers, identity, limiter echo.MiddlewareFunc) {
	e.Use(identity)

	e.GET("/healthz", handler.Health)

	// Authentication endpoints. Register/login/refresh stay reachable for
	// anonymous callers; the rate limiter makes credential guessing slow.
	a := e.Group("/api/auth")
	a.POST("/register", h.Auth.Register, limiter)
	a.POST("/login", h.Auth.Login, limiter)
	a.POST("/refresh-token", h.Auth.Refresh, limiter)
	a.POST("/logout", h.Auth.Logout)
	a.GET("/me", h.Auth.Me, middleware.RequireAuth())

	// Everything under /api (except auth) requires a resolved principal.
	api := e.Group("/api", middleware.RequireAuth())

	manage := middleware.RequireRole(model.RoleAdmin, model.RoleOwner)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	api.GET("/properties", h.Properties.List)
	api.GET("/properties/:id", h.Properties.Get)
	api.POST("/properties", h.Properties.Create, manage)
	api.PUT("/properties/:id", h.Properties.Update, manage)
	api.PATCH("/properties/status", h.Properties.BatchStatus, manage)
	api.DELETE("/properties/:id", h.Properties.Delete, manage)

	api.GET("/leases", h.Leases.List)
	api.GET("/leases/:id", h.Leases.Get)
	api.POST("/leases", h.Leases.Create, manage)
	api.PATCH("/leases/:id/status", h.Leases.UpdateStatus, manage)
	api.DELETE("/leases/:id", h.Leases.Delete, manage)

	api.GET("/payments", h.Payments.List)
	api.POST("/payments", h.Payments.Create)
	api.GET("/payments/export", h.Payments.Export)

	api.GET("/maintenance-requests", h.Maintenance.List)
	api.POST("/maintenance-requests", h.Maintenance.Create,
		middleware.RequireRole(model.RoleAdmin, model.RoleTenant))
	api.PATCH("/maintenance-requests/:id/status", h.Maintenance.UpdateStatus, manage)
	api.DELETE("/maintenance-requests/:id", h.Maintenance.Delete)

	api.GET("/notifications", h.Notifications.List)
	api.GET("/notifications/unread-count", h.Notifications.UnreadCount)
	api.PATCH("/notifications/:id/read", h.Notifications.MarkRead)
	api.PATCH("/notifications/read-all", h.Notifications.MarkAllRead)

	api.GET("/users", h.Users.List, adminOnly)
	api.GET("/users/:id", h.Users.Get, adminOnly)
	api.DELETE("/users/:id", h.Users.Delete, adminOnly)
	api.PUT("/users/profile", h.Users.UpdateProfile)
	api.PUT("/users/password", h.Users.ChangePassword)

	api.GET("/dashboard/stats", h.Dashboard.Get)
}
