// Package router wires the staff API routes onto an Echo instance.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/sunqar/zhk-support-bot/internal/handler"
	"github.com/sunqar/zhk-support-bot/internal/middleware"
)

// RegisterRoutes mounts the health check, the login endpoint, and the
// JWT-protected staff read API.
func RegisterRoutes(e *echo.Echo, db *sql.DB, auth *handler.AuthHandler, tickets *handler.TicketHandler, jwtSecret string) {
	e.GET("/healthz", handler.Health(db))
	e.POST("/v1/auth/login", auth.Login)

	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("staff"))
	g.GET("/tickets", tickets.List)
	g.GET("/tickets/:id", tickets.Get)
	g.GET("/report.pdf", tickets.Report)
}
