package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/whatsapp-relay/internal/domain"
	"github.com/onurcolak/whatsapp-relay/internal/service"
	"github.com/onurcolak/whatsapp-relay/pkg/logger"
	"github.com/onurcolak/whatsapp-relay/pkg/response"
)

const (
	subscribeMode = "subscribe"

	MessageEventReceived = "EVENT_RECEIVED"
	MessageNoData        = "NO_DATA"
)

type webhookDispatcher interface {
	Dispatch(ctx context.Context, payload *domain.WebhookPayload) service.DispatchResult
}

type WebhookHandler struct {
	dispatcher  webhookDispatcher
	verifyToken string
}

func NewWebhookHandler(dispatcher webhookDispatcher, verifyToken string) *WebhookHandler {
	return &WebhookHandler{
		dispatcher:  dispatcher,
		verifyToken: verifyToken,
	}
}

// Verify godoc
// @Summary Webhook verification
// @Description Answers the platform's subscription handshake by echoing hub.challenge
// @Tags webhook
// @Produce plain
// @Param hub.mode query string true "Subscription mode, must be subscribe"
// @Param hub.verify_token query string true "Configured verify token"
// @Param hub.challenge query string false "Challenge to echo back"
// @Success 200 {string} string
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /webhook [get]
func (h *WebhookHandler) Verify(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")

	if mode == "" || token == "" {
		return response.BadRequestWithMessage(c, "hub.mode and hub.verify_token are required")
	}

	if mode != subscribeMode || subtle.ConstantTimeCompare([]byte(token), []byte(h.verifyToken)) != 1 {
		logger.Warnf("Webhook verification rejected (mode=%q)", mode)
		return response.Forbidden(c, "Verification failed")
	}

	logger.Infof("Webhook verified")

	return c.String(http.StatusOK, challenge)
}

// Receive godoc
// @Summary Receive webhook events
// @Description Processes inbound messages and delivery reports sequentially
// @Tags webhook
// @Accept json
// @Produce json
// @Param X-Hub-Signature-256 header string false "sha256=<hex HMAC of the body>, required when an app secret is configured"
// @Param payload body domain.WebhookPayload true "WhatsApp webhook payload"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /webhook [post]
func (h *WebhookHandler) Receive(c echo.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Panic while processing webhook: %v", r)
			err = response.InternalServerError(c, errors.New("failed to process webhook"))
		}
	}()

	var payload domain.WebhookPayload
	if err := json.NewDecoder(c.Request().Body).Decode(&payload); err != nil {
		return response.BadRequestWithMessage(c, "Invalid JSON payload")
	}

	if !payload.HasEnvelope() {
		return response.NotFound(c, "Not a WhatsApp webhook payload")
	}

	if !payload.HasData() {
		return response.OkWithMessage(c, MessageNoData, nil)
	}

	result := h.dispatcher.Dispatch(c.Request().Context(), &payload)

	logger.Infof("Webhook processed: %d messages, %d statuses, %d failed",
		result.Messages, result.Statuses, result.Failed)

	return response.OkWithMessage(c, MessageEventReceived, result)
}
