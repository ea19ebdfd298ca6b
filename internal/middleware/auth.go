package middleware

import (
	"net/http"
	"strings"

	"ricemill-service/internal/model"
	"ricemill-service/pkg/jwtutil"
	"ricemill-service/pkg/logger"
	"ricemill-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const userContextKey = "current_user"

// Auth returns a middleware that validates the Bearer token and resolves
// its subject to an existing, active user. A token whose subject no longer
// resolves is treated the same as an invalid token: the identity was
// revoked after issuance.
func Auth(db *gorm.DB, jwt *jwtutil.JWT) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			// Get the Authorization header
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Error("Missing Authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			// Check if it's a Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Error("Invalid Authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			// Validate the token
			claims, err := jwt.ValidateToken(parts[1])
			if err != nil {
				log.Error("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			// Resolve the subject to a user row
			var user model.User
			if result := db.Where("username = ?", claims.Username).First(&user); result.Error != nil {
				log.Error("Token subject does not resolve to a user", zap.String("username", claims.Username))
				prometheus.RecordAuthError("unknown_subject")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			if !user.Active {
				log.Error("Deactivated user presented a valid token", zap.String("username", user.Username))
				prometheus.RecordAuthError("inactive_user")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "user is deactivated"})
			}

			c.Set(userContextKey, &user)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user stored by Auth.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(userContextKey).(*model.User)
	return user, ok
}
