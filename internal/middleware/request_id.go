package middleware

import (
	"github.com/expenses-tracker/reports-backend/internal/util"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// RequestID assigns every request an id (reusing the caller's X-Request-ID)
// and stores it in the request context so outgoing calls carry it along.
func RequestID() echo.MiddlewareFunc {
	return echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			c.SetRequest(c.Request().WithContext(util.WithRequestID(c.Request().Context(), id)))
		},
	})
}
