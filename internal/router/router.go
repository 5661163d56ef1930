// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/eonhq/eon-backend/internal/handler"
	"github.com/eonhq/eon-backend/internal/middleware"
	"github.com/eonhq/eon-backend/internal/model"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Events        *handler.EventHandler
	Subscriptions *handler.SubscriptionHandler
	Invitations   *handler.InvitationHandler
	Wishlist      *handler.WishListHandler
}

// Register mounts all routes.  Unauthenticated operations live under
// /v1/auth plus the health check; everything else sits behind JWTAuth,
// with write access split by role: organizers manage events and
// invitations, subscribers purchase and wishlist.  The cache
// middleware, when non-nil, wraps the read-heavy listing routes only.
func Register(e *echo.Echo, h Handlers, jwtSecret string, cache echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	g := e.Group("/v1/auth")
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login)
	g.POST("/refresh", h.Auth.Refresh)
	g.POST("/refresh-access", h.Auth.RefreshAccess)
	g.POST("/logout", h.Auth.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", h.Auth.Me)
	auth.GET("/event-types", h.Events.Types)
	auth.GET("/events/:id", h.Events.Get)
	if cache != nil {
		auth.GET("/events", h.Events.List, cache)
	} else {
		auth.GET("/events", h.Events.List)
	}

	organizer := auth.Group("", middleware.RequireRole(model.RoleOrganizer))
	organizer.POST("/events", h.Events.Create)
	organizer.PUT("/events/:id", h.Events.Update)
	organizer.DELETE("/events/:id", h.Events.Delete)
	organizer.GET("/subscriptions", h.Subscriptions.List)
	organizer.POST("/invitations", h.Invitations.Create)
	organizer.GET("/events/:id/invitations", h.Invitations.List)
	organizer.DELETE("/invitations/:id", h.Invitations.Revoke)

	subscriber := auth.Group("", middleware.RequireRole(model.RoleSubscriber))
	subscriber.POST("/subscriptions", h.Subscriptions.Create)
	subscriber.GET("/wishlist", h.Wishlist.List)
	subscriber.POST("/wishlist", h.Wishlist.Add)
	subscriber.DELETE("/wishlist/:event_id", h.Wishlist.Remove)
}
