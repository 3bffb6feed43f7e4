package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/onurcolak/whatsapp-relay/environments"
	"github.com/onurcolak/whatsapp-relay/handlers"
	"github.com/onurcolak/whatsapp-relay/internal/middlewares"
	"github.com/onurcolak/whatsapp-relay/internal/mirror"
	"github.com/onurcolak/whatsapp-relay/internal/repository"
	"github.com/onurcolak/whatsapp-relay/internal/service"
	"github.com/onurcolak/whatsapp-relay/pkg/database"
	"github.com/onurcolak/whatsapp-relay/pkg/logger"
	"github.com/onurcolak/whatsapp-relay/pkg/redis"
	"github.com/onurcolak/whatsapp-relay/pkg/storage"
	"github.com/onurcolak/whatsapp-relay/pkg/validator"
	"github.com/onurcolak/whatsapp-relay/pkg/whatsapp"
	"github.com/onurcolak/whatsapp-relay/routes"

	_ "github.com/onurcolak/whatsapp-relay/docs" // swagger docs
)

// @title WhatsApp Relay API
// @version 1.0
// @description Relays WhatsApp Cloud API webhooks into the chat log and registration records, and sends outbound templates
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email onur.colak@useinsider.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @schemes http https
func main() {
	// Load config
	cfg := environments.Load()

	logger.Init(cfg.Server.LogLevel)

	// Hard-fail if required secrets are missing
	if cfg.WhatsApp.Token == "" {
		logger.Fatalf("WHATSAPP_TOKEN is required but not set")
	}
	if cfg.WhatsApp.PhoneNumberID == "" {
		logger.Fatalf("WHATSAPP_PHONE_NUMBER_ID is required but not set")
	}
	if cfg.WhatsApp.VerifyToken == "" {
		logger.Fatalf("WHATSAPP_VERIFY_TOKEN is required but not set")
	}
	if cfg.WhatsApp.AppSecret == "" {
		logger.Warnf("WHATSAPP_APP_SECRET not set, webhook signatures will not be checked")
	}
	if cfg.Auth.AdminAPIKey == "" {
		if cfg.Auth.AllowUnauthenticated {
			logger.Warnf("ADMIN_API_KEY not set and ALLOW_UNAUTHENTICATED_ADMIN=true, /api/v1 routes are open")
		} else {
			logger.Warnf("ADMIN_API_KEY not set, /api/v1 routes will answer 500")
		}
	}

	logger.Infof("Starting WhatsApp Relay...")

	// Init DB
	db, err := database.NewMySQLDB(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed data
	if os.Getenv("SEED_DATA") == "true" {
		if err := database.SeedTestData(db); err != nil {
			logger.Warnf("Failed to seed test data: %v", err)
		}
	}

	// Init object store
	storageClient, err := storage.NewClient(cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize object store: %v", err)
	}

	// Init redis
	redisClient, err := redis.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Warnf("Redis not available, message tracking disabled: %v", err)
		redisClient = nil
	}

	whatsappClient := whatsapp.NewClient(cfg.WhatsApp)
	logger.Infof("WhatsApp client configured for phone number id %s", cfg.WhatsApp.PhoneNumberID)

	// Initialize repositories
	chatRepo := repository.NewChatRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	deliveryErrorRepo := repository.NewDeliveryErrorRepository(db)

	ring := mirror.NewRing(cfg.Mirror.Capacity)

	// Initialize services
	pipeline := service.NewMediaPipeline(whatsappClient, storageClient, registrationRepo, ring)
	dispatcher := service.NewDispatcher(pipeline, chatRepo, deliveryErrorRepo, ring)
	messageService := service.NewMessageService(whatsappClient, chatRepo, ring, cfg.WhatsApp)

	// Initialize handlers
	var healthHandler *handlers.HealthHandler
	if redisClient != nil {
		dispatcher.WithStatusTracker(redisClient)
		messageService.WithTracker(redisClient)
		healthHandler = handlers.NewHealthHandler(db, redisClient, storageClient)
	} else {
		healthHandler = handlers.NewHealthHandler(db, nil, storageClient)
	}

	webhookHandler := handlers.NewWebhookHandler(dispatcher, cfg.WhatsApp.VerifyToken)
	messageHandler := handlers.NewMessageHandler(messageService)
	chatHandler := handlers.NewChatHandler(messageService)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("10M"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			middlewares.APIKeyHeader,
		},
	}))

	// Setup routes
	routes.RegisterRoutes(e, healthHandler, webhookHandler, messageHandler, chatHandler, cfg)

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Infof("Server starting on http://localhost%s", addr)
		logger.Infof("Swagger docs available at http://localhost%s/swagger/index.html", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down gracefully...")

	// Shutdown HTTP server (with timeout)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("Shutting down HTTP server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	// Close database connection
	logger.Infof("Closing database connection...")
	if err := db.Close(); err != nil {
		logger.Errorf("Error closing database: %v", err)
	}

	// Close Redis connection
	if redisClient != nil {
		logger.Infof("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			logger.Errorf("Error closing Redis: %v", err)
		}
	}

	logger.Infof("Graceful shutdown completed")
}
