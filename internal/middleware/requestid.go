package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"ricemill-service/pkg/logger"
)

// RequestIDMiddleware assigns every request an ID under logger.RequestIDKey,
// honoring one supplied by the client, and echoes it on the response.
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(logger.RequestIDKey)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(logger.RequestIDKey, requestID)
		c.Response().Header().Set(logger.RequestIDKey, requestID)
		return next(c)
	}
}
