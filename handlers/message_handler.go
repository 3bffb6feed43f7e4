package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/whatsapp-relay/internal/domain"
	"github.com/onurcolak/whatsapp-relay/internal/service"
	"github.com/onurcolak/whatsapp-relay/pkg/logger"
	"github.com/onurcolak/whatsapp-relay/pkg/response"
	"github.com/onurcolak/whatsapp-relay/pkg/validator"
	"github.com/onurcolak/whatsapp-relay/pkg/whatsapp"
)

type outboundService interface {
	SendMessage(ctx context.Context, phone, name string) (*domain.SendResponse, error)
	SendVerificationStatus(ctx context.Context, status, phone string) (string, *domain.SendResponse, error)
	SendAdminMessage(ctx context.Context, phone, text string) (*domain.SendResponse, error)
}

type MessageHandler struct {
	service outboundService
}

func NewMessageHandler(service outboundService) *MessageHandler {
	return &MessageHandler{service: service}
}

type SendMessageRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone" validate:"required,phone"`
}

type VerificationRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
}

type AdminChatRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
	Message     string `json:"message" validate:"required,max=4096"`
}

type VerificationResponse struct {
	Success  bool                 `json:"success"`
	Template string               `json:"template"`
	Result   *domain.SendResponse `json:"result"`
}

// SendMessage godoc
// @Summary Send the default template
// @Description Sends the configured template to a phone number, using name as the body parameter when given
// @Tags messages
// @Accept json
// @Produce json
// @Param x-api-key header string false "Admin API key"
// @Param message body SendMessageRequest true "Recipient"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} validator.ValidationErrorResponse
// @Failure 500 {object} response.RemoteErrorResponse
// @Router /api/v1/send-message [post]
func (h *MessageHandler) SendMessage(c echo.Context) error {
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	resp, err := h.service.SendMessage(c.Request().Context(), req.Phone, req.Name)
	if err != nil {
		return sendFailure(c, "Failed to send message", err)
	}

	return response.Ok(c, resp)
}

// SendVerificationStatus godoc
// @Summary Send a verification decision
// @Description Sends the template configured for approved, rejected or pending
// @Tags verification
// @Accept json
// @Produce json
// @Param x-api-key header string false "Admin API key"
// @Param status path string true "approved, rejected or pending"
// @Param request body VerificationRequest true "Recipient"
// @Success 200 {object} VerificationResponse
// @Failure 400 {object} validator.ValidationErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.RemoteErrorResponse
// @Router /api/v1/verification/{status} [post]
func (h *MessageHandler) SendVerificationStatus(c echo.Context) error {
	var req VerificationRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	template, resp, err := h.service.SendVerificationStatus(c.Request().Context(), c.Param("status"), req.PhoneNumber)
	if err != nil {
		if errors.Is(err, service.ErrUnknownVerificationStatus) {
			return response.NotFound(c, err.Error())
		}
		return sendFailure(c, "Failed to send "+template, err)
	}

	return c.JSON(http.StatusOK, VerificationResponse{
		Success:  true,
		Template: template,
		Result:   resp,
	})
}

// SendAdminMessage godoc
// @Summary Send a free-text admin message
// @Description Sends text to a contact and records it in the chat log
// @Tags chats
// @Accept json
// @Produce json
// @Param x-api-key header string false "Admin API key"
// @Param request body AdminChatRequest true "Recipient and text"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} validator.ValidationErrorResponse
// @Failure 500 {object} response.RemoteErrorResponse
// @Router /api/v1/admin/chat/send [post]
func (h *MessageHandler) SendAdminMessage(c echo.Context) error {
	var req AdminChatRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	resp, err := h.service.SendAdminMessage(c.Request().Context(), req.PhoneNumber, req.Message)
	if err != nil {
		return sendFailure(c, "Failed to send message", err)
	}

	return response.OkWithMessage(c, "Message sent", resp)
}

// sendFailure reports a failed platform call, passing the remote error body
// through when there is one.
func sendFailure(c echo.Context, message string, err error) error {
	logger.Errorf("%s: %v", message, err)

	var apiErr *whatsapp.APIError
	if errors.As(err, &apiErr) {
		return response.RemoteError(c, message, apiErr.Detail())
	}

	return response.RemoteError(c, message, err.Error())
}
