package routes

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/onurcolak/whatsapp-relay/environments"
	"github.com/onurcolak/whatsapp-relay/handlers"
	"github.com/onurcolak/whatsapp-relay/internal/middlewares"
)

// RegisterRoutes registers all API routes with middleware
func RegisterRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	webhookHandler *handlers.WebhookHandler,
	messageHandler *handlers.MessageHandler,
	chatHandler *handlers.ChatHandler,
	cfg *environments.Config,
) {
	e.GET("/health", healthHandler.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Platform webhook
	e.GET("/webhook", webhookHandler.Verify)
	e.POST("/webhook", webhookHandler.Receive, middlewares.WebhookSignature(cfg.WhatsApp.AppSecret))

	// API v1 base group
	v1 := e.Group("/api/v1")
	if cfg.Auth.AdminAPIKey != "" || !cfg.Auth.AllowUnauthenticated {
		v1.Use(middlewares.APIKeyAuth(cfg.Auth.AdminAPIKey))
	}

	v1.POST("/send-message", messageHandler.SendMessage)
	v1.POST("/verification/:status", messageHandler.SendVerificationStatus)
	v1.POST("/admin/chat/send", messageHandler.SendAdminMessage)

	v1.GET("/chats/:phoneNumber", chatHandler.GetChatHistory)
	v1.GET("/debug/messages", chatHandler.GetRecentInbound)
	v1.GET("/messages/tracked", chatHandler.GetTrackedMessages)
}
