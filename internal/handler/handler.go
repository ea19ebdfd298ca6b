package handler

import (
	"net/http"
	"strconv"
	"time"

	"ricemill-service/internal/auth"
	"ricemill-service/internal/model"
	"ricemill-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Handler carries the request surface's dependencies. It is constructed
// once in main and passed to the router; handlers hold no global state.
type Handler struct {
	DB  *gorm.DB
	JWT *jwtutil.JWT
}

// New creates a Handler with its dependencies
func New(db *gorm.DB, jwt *jwtutil.JWT) *Handler {
	return &Handler{DB: db, JWT: jwt}
}

// callerOf builds the policy-facing view of an authenticated user
func callerOf(user *model.User) auth.Caller {
	return auth.Caller{
		Role:      auth.Role(user.Role),
		CompanyID: user.CompanyID,
	}
}

// pagination reads skip/limit query parameters with the usual defaults
func pagination(c echo.Context) (skip, limit int) {
	skip, limit = 0, 100
	if v, err := strconv.Atoi(c.QueryParam("skip")); err == nil && v >= 0 {
		skip = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	return skip, limit
}

// parseDate parses a YYYY-MM-DD wire date
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// forbidden writes the standard 403 body
func forbidden(c echo.Context, message string) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": message})
}

// unauthenticated writes the standard 401 body
func unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
}
