package middleware

import (
	"net/http"
	"strings"

	"notes-service/internal/model"
	"notes-service/pkg/jwtutil"
	"notes-service/pkg/logger"
	"notes-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const identityKey = "identity"

// TokenValidator verifies bearer tokens
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwtutil.UserClaims, error)
}

// AuthMiddleware validates the bearer token and stores the caller identity in the context
func AuthMiddleware(tokens TokenValidator, metrics *prometheus.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing Authorization header")
				metrics.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
			}

			// Check if it's a Bearer token
			scheme, tokenString, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || tokenString == "" || strings.Contains(tokenString, " ") {
				log.Warn("Invalid Authorization header format")
				metrics.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
			}

			claims, err := tokens.ValidateToken(tokenString)
			if err != nil {
				log.Warn("Invalid JWT token", zap.Error(err))
				metrics.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token"})
			}

			identity := claims.Identity()
			c.Set(identityKey, identity)
			logger.WithLogger(c, log.With(
				zap.Uint("user_id", identity.UserID),
				zap.Uint("tenant_id", identity.TenantID)))

			return next(c)
		}
	}
}

// RequireAdmin rejects callers whose role is not admin. It must run after AuthMiddleware.
func RequireAdmin(metrics *prometheus.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := GetIdentity(c)
			if !ok {
				metrics.RecordAuthError("missing_identity")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
			}
			if !identity.IsAdmin() {
				logger.FromContext(c).Warn("Admin access denied", zap.String("role", string(identity.Role)))
				metrics.RecordAuthError("admin_required")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Admin access required"})
			}
			return next(c)
		}
	}
}

// GetIdentity retrieves the caller identity set by AuthMiddleware
func GetIdentity(c echo.Context) (model.Identity, bool) {
	identity, ok := c.Get(identityKey).(model.Identity)
	return identity, ok
}
