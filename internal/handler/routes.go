package handler

import (
	"net/http"

	"github.com/expenses-tracker/reports-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, reportHandler *ReportHandler, wsHandler *WebSocketHandler) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// API version 1
	api := e.Group("/api/v1")

	// Report routes (protected, rate limited per user)
	reports := api.Group("/reports")
	reports.Use(authMiddleware.Authenticate())
	reports.Use(middleware.RateLimitMiddleware(rateLimiter))
	reports.GET("", reportHandler.GetReport)
	reports.GET("/summary", reportHandler.GetSummary)
	reports.GET("/by-category", reportHandler.GetByCategory)
	reports.GET("/dashboard", reportHandler.GetDashboard)
	reports.GET("/recent", reportHandler.GetRecent)
	reports.POST("/export", reportHandler.Export)

	// Live reports authenticate with the token query parameter
	e.GET("/ws/reports", wsHandler.HandleWS)
}
