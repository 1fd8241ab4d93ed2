package handler

import (
	"net/http"

	"account-service/internal/store"
	"account-service/prometheus"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports service liveness including database
// reachability.
type HealthHandler struct {
	store store.CredentialStore
}

func NewHealthHandler(credStore store.CredentialStore) *HealthHandler {
	return &HealthHandler{store: credStore}
}

// HealthCheck handles the health check endpoint.
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status":   "degraded",
			"service":  "account-service",
			"database": "unreachable",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":   "healthy",
		"service":  "account-service",
		"database": "ok",
	})
}

// Metrics exposes the Prometheus registry.
func Metrics(c echo.Context) error {
	handler := prometheus.GetPrometheusHandler()
	handler.ServeHTTP(c.Response(), c.Request())
	return nil
}
