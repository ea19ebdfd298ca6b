package logger

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestIDKey is the header and echo-context key carrying the request ID.
// The request-ID middleware writes it; this is the single declaration the
// rest of the service reads.
const RequestIDKey = "X-Request-ID"

// FromContext returns the request-scoped logger for a handler. Handlers use
// it for every mill-operation log line so entries from one request (a login,
// a farmer registration, a receipt generation) share a request_id.
func FromContext(c echo.Context) *zap.Logger {
	if logger, ok := c.Get("logger").(*zap.Logger); ok {
		return logger
	}

	// No middleware-attached logger; fall back to the base logger tagged
	// with whatever request ID is available
	requestID, ok := c.Get(RequestIDKey).(string)
	if !ok {
		requestID = c.Request().Header.Get(RequestIDKey)
		if requestID == "" {
			requestID = "unknown"
		}
	}

	return GetLogger().With(zap.String("request_id", requestID))
}
