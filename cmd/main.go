package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"account-service/internal/handler"
	"account-service/internal/middleware"
	"account-service/internal/service"
	"account-service/internal/store"
	"account-service/pkg/config"
	"account-service/pkg/database"
	"account-service/pkg/jwtutil"
	"account-service/pkg/logger"
	"account-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting account service...", cfg.LogConfig()...)

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Select the token-signing strategy from configuration
	signer, err := newSigner(cfg)
	if err != nil {
		log.Fatal("Failed to initialize token signer", zap.Error(err))
	}
	issuer := jwtutil.NewIssuer(signer, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)
	log.Info("Token issuer initialized", zap.String("algorithm", cfg.JWT.Algorithm))

	// Wire the credential store and services
	credStore := store.NewGormStore(db)
	authService := service.NewAuthService(credStore, issuer, cfg.Auth.BcryptCost, log)

	authHandler := handler.NewAuthHandler(authService)
	healthHandler := handler.NewHealthHandler(credStore)

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestID)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", handler.Metrics)

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	// API routes - all require a valid access token
	api := e.Group("/api")
	api.Use(middleware.Auth(issuer))
	api.GET("/me", authHandler.Me)

	// Start server with graceful shutdown
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}

// newSigner builds the configured signing strategy.
func newSigner(cfg *config.Config) (jwtutil.Signer, error) {
	switch cfg.JWT.Algorithm {
	case "RS256":
		privateKeyPEM, err := os.ReadFile(cfg.JWT.PrivateKeyPath)
		if err != nil {
			return nil, err
		}
		publicKeyPEM, err := os.ReadFile(cfg.JWT.PublicKeyPath)
		if err != nil {
			return nil, err
		}
		return jwtutil.NewRSASigner(privateKeyPEM, publicKeyPEM)
	default:
		return jwtutil.NewHMACSigner([]byte(cfg.JWT.SigningKey)), nil
	}
}
