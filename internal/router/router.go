// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
)

// RegisterRoutes mounts the unauthenticated health check.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterReservations mounts the reservation API under /v1.  Every route
// requires a valid JWT and passes through the redis token bucket; rdb may
// be nil, in which case rate limiting fails open.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string, rl config.RateLimitConfig, rdb *redis.Client, log *zap.Logger) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.NewTokenBucket(rl, rdb, log),
	)

	anyone := middleware.RequireRole(middleware.RoleClient, middleware.RoleHotelAdmin, middleware.RoleAdmin)
	staff := middleware.RequireRole(middleware.RoleHotelAdmin, middleware.RoleAdmin)

	g.POST("/reservations", h.Create, middleware.RequireRole(middleware.RoleClient, middleware.RoleAdmin))
	g.GET("/reservations", h.List, middleware.RequireRole(middleware.RoleAdmin))
	g.GET("/reservations/:id", h.Get, anyone)
	g.PATCH("/reservations/:id/status", h.UpdateStatus, staff)
	g.POST("/reservations/:id/pay", h.Pay, staff)

	g.GET("/hotels/:hotelId/reservations", h.ListByHotel, staff)
	g.GET("/rooms/:roomId/conflicts", h.Conflicts, anyone)
}
