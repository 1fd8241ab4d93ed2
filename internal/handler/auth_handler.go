package handler

import (
	"errors"
	"net/http"

	"account-service/internal/service"
	"account-service/pkg/logger"
	"account-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler exposes the registration/authentication flow over HTTP.
type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req service.RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		log.Error("invalid registration data", zap.Error(err))
		prometheus.RecordAuthError("invalid_input")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	result, err := h.auth.Register(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			log.Warn("registration rejected, email taken", zap.String("email", req.Email))
			prometheus.RecordAuthError("email_already_exists")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "account already exists"})
		}
		log.Error("registration failed", zap.Error(err))
		prometheus.RecordAuthError("registration_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	prometheus.IncreaseActiveTokens()
	log.Info("user registered",
		zap.String("email", result.User.Email),
		zap.String("tenant_id", result.Tenant.ID.String()))

	return c.JSON(http.StatusCreated, echo.Map{
		"status":       "created",
		"user":         result.User,
		"tenant":       result.Tenant,
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	})
}

// Login handles POST /auth/login. Unknown email and wrong password
// produce identical responses.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req service.LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		prometheus.RecordAuthError("invalid_input")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	result, err := h.auth.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warn("login rejected", zap.String("email", req.Email))
			prometheus.RecordAuthError("invalid_credentials")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		log.Error("login failed", zap.Error(err))
		prometheus.RecordAuthError("login_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	prometheus.IncreaseActiveTokens()
	log.Info("login succeeded",
		zap.String("email", result.User.Email),
		zap.String("tenant_id", result.Tenant.ID.String()))

	return c.JSON(http.StatusOK, echo.Map{
		"status":       "ok",
		"user":         result.User,
		"tenant":       result.Tenant,
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RefreshCounter.Inc()

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh token is required"})
	}

	access, err := h.auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			prometheus.RecordAuthError("invalid_refresh_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}
		log.Error("token refresh failed", zap.Error(err))
		prometheus.RecordAuthError("refresh_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"accessToken": access})
}

// Logout handles POST /auth/logout. Tokens are stateless; no
// server-side invalidation is performed, the client simply discards
// its pair.
func (h *AuthHandler) Logout(c echo.Context) error {
	prometheus.DecreaseActiveTokens()
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
