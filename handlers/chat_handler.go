package handlers

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/whatsapp-relay/internal/domain"
	"github.com/onurcolak/whatsapp-relay/internal/service"
	"github.com/onurcolak/whatsapp-relay/pkg/response"
)

type chatService interface {
	ChatHistory(ctx context.Context, phone string) ([]domain.ChatMessage, error)
	RecentInbound() []domain.MirrorEntry
	TrackedMessages(ctx context.Context) (map[string]*domain.TrackedMessage, error)
}

type ChatHandler struct {
	service chatService
}

func NewChatHandler(service chatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// GetChatHistory godoc
// @Summary Get chat history
// @Description Returns the latest 10 messages of a contact, oldest first
// @Tags chats
// @Produce json
// @Param x-api-key header string false "Admin API key"
// @Param phoneNumber path string true "Contact phone number"
// @Success 200 {object} response.ListResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/chats/{phoneNumber} [get]
func (h *ChatHandler) GetChatHistory(c echo.Context) error {
	messages, err := h.service.ChatHistory(c.Request().Context(), c.Param("phoneNumber"))
	if err != nil {
		return response.InternalServerError(c, err)
	}

	if messages == nil {
		messages = []domain.ChatMessage{}
	}

	return response.List(c, messages, len(messages))
}

// GetRecentInbound godoc
// @Summary Recently received items
// @Description Returns the in-memory mirror of recently processed inbound messages
// @Tags debug
// @Produce json
// @Param x-api-key header string false "Admin API key"
// @Success 200 {object} response.ListResponse
// @Router /api/v1/debug/messages [get]
func (h *ChatHandler) GetRecentInbound(c echo.Context) error {
	entries := h.service.RecentInbound()
	return response.List(c, entries, len(entries))
}

// GetTrackedMessages godoc
// @Summary Tracked outbound messages
// @Description Returns outbound messages cached in Valkey with their latest delivery status
// @Tags messages
// @Produce json
// @Param x-api-key header string false "Admin API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /api/v1/messages/tracked [get]
func (h *ChatHandler) GetTrackedMessages(c echo.Context) error {
	tracked, err := h.service.TrackedMessages(c.Request().Context())
	if err != nil {
		if errors.Is(err, service.ErrTrackerNotConfigured) {
			return response.ServiceUnavailable(c, err)
		}
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, tracked)
}
