package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/expenses-tracker/reports-backend/internal/config"
	"github.com/expenses-tracker/reports-backend/internal/handler"
	"github.com/expenses-tracker/reports-backend/internal/middleware"
	"github.com/expenses-tracker/reports-backend/internal/repository"
	"github.com/expenses-tracker/reports-backend/internal/repository/storage"
	"github.com/expenses-tracker/reports-backend/internal/service"
	"github.com/expenses-tracker/reports-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Logger = newLogger(cfg, os.Stderr)

	// Open the transaction and category source
	dataSource, closeSource, err := repository.OpenDataSource(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Str("data_source", cfg.DataSource).Msg("Failed to open data source")
	}
	defer closeSource()

	// Export storage is optional
	var objectStore service.ObjectStore
	if cfg.S3.Enabled() {
		s3Store, err := storage.NewS3Store(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize export storage")
		}
		objectStore = s3Store
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Report export enabled")
	} else {
		log.Warn().Msg("S3_BUCKET not set, report export disabled")
	}

	// Initialize services
	hub := websocket.NewHub()
	reportService := service.NewReportService(dataSource, dataSource)
	exportService := service.NewExportService(reportService, objectStore, cfg.ExportURLTTL)
	exportService.SetEventPublisher(hub)

	// Initialize auth and rate limiting
	jwtValidator, err := middleware.NewJWTValidator(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create JWT validator")
	}
	authMiddleware := middleware.NewAuthMiddleware(jwtValidator)
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	// Initialize handlers
	reportHandler := handler.NewReportHandler(reportService, exportService, cfg.Location)
	wsHandler := handler.NewWebSocketHandler(hub, jwtValidator, reportService, cfg.Location, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware, also propagated to upstream calls
	e.Use(middleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
		ExposeHeaders:    []string{echo.HeaderXRequestID, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, reportHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("data_source", cfg.DataSource).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Hijacked websocket connections are not closed by Shutdown
	hub.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// newLogger writes JSON in production and human-readable output elsewhere
func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	if cfg.IsProduction() {
		return zerolog.New(out).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
