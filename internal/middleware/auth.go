package middleware

import (
	"net/http"
	"strings"

	"account-service/pkg/jwtutil"
	"account-service/pkg/logger"
	"account-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Auth returns middleware that validates the Bearer access token and
// stores the authenticated identity in the request context.
func Auth(issuer *jwtutil.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Error("missing Authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Error("invalid Authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := issuer.ParseAccess(parts[1])
			if err != nil {
				log.Error("invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set("user_id", claims.UserID)
			c.Set("tenant_id", claims.TenantID)
			c.Set("user_role", claims.Role)

			// Propagate tenant context to downstream services.
			c.Request().Header.Set("X-Tenant-ID", claims.TenantID.String())
			if claims.Role != "" {
				c.Request().Header.Set("X-User-Role", claims.Role)
			}

			return next(c)
		}
	}
}
