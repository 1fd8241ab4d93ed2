package handler

import (
	"errors"
	"net/http"

	"account-service/internal/service"
	"account-service/pkg/logger"
	"account-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Me handles GET /api/me: the authenticated user's own summary plus
// the tenant it belongs to.
func (h *AuthHandler) Me(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAuthOperation("profile_access")

	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		log.Error("failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	user, tenant, err := h.auth.Me(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		log.Error("profile lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "profile lookup failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":   user,
		"tenant": tenant,
	})
}
