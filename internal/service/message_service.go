package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onurcolak/whatsapp-relay/environments"
	"github.com/onurcolak/whatsapp-relay/internal/domain"
	"github.com/onurcolak/whatsapp-relay/internal/mirror"
	"github.com/onurcolak/whatsapp-relay/pkg/logger"
	"github.com/onurcolak/whatsapp-relay/pkg/privacy"
	"github.com/onurcolak/whatsapp-relay/pkg/whatsapp"
)

const chatHistoryLimit = 10

var (
	ErrUnknownVerificationStatus = errors.New("unknown verification status")
	ErrTrackerNotConfigured      = errors.New("message tracker not configured")
)

type messenger interface {
	SendTemplate(
		ctx context.Context,
		to, name, languageCode string,
		components []domain.TemplateComponent,
	) (*domain.SendResponse, error)
	SendText(ctx context.Context, to, body string) (*domain.SendResponse, error)
}

type chatHistory interface {
	AppendMessage(ctx context.Context, shortID string, msg domain.ChatMessage) error
	RecentMessages(ctx context.Context, shortID string, limit int) ([]domain.ChatMessage, error)
}

type messageTracker interface {
	TrackSentMessage(ctx context.Context, msg domain.TrackedMessage) error
	GetAllTrackedMessages(ctx context.Context) (map[string]*domain.TrackedMessage, error)
}

// MessageService sends outbound messages and serves the chat log.
type MessageService struct {
	client  messenger
	chats   chatHistory
	tracker messageTracker
	mirror  *mirror.Ring
	config  environments.WhatsAppConfig
	now     func() time.Time
}

func NewMessageService(
	client messenger,
	chats chatHistory,
	ring *mirror.Ring,
	config environments.WhatsAppConfig,
) *MessageService {
	return &MessageService{
		client: client,
		chats:  chats,
		mirror: ring,
		config: config,
		now:    time.Now,
	}
}

func (s *MessageService) WithTracker(tracker messageTracker) *MessageService {
	s.tracker = tracker
	return s
}

// SendMessage sends the default template to phone. A non-empty name becomes
// the template's single body parameter.
func (s *MessageService) SendMessage(ctx context.Context, phone, name string) (*domain.SendResponse, error) {
	var components []domain.TemplateComponent
	if name != "" {
		components = []domain.TemplateComponent{
			{
				Type:       "body",
				Parameters: []domain.TemplateParameter{{Type: "text", Text: name}},
			},
		}
	}

	resp, err := s.client.SendTemplate(ctx, phone, s.config.DefaultTemplate, s.config.DefaultLanguage, components)
	if err != nil {
		return nil, err
	}

	s.track(ctx, resp, phone, domain.SendKindTemplate, s.config.DefaultTemplate)

	return resp, nil
}

// SendVerificationStatus notifies phone of a verification decision using the
// template configured for status.
func (s *MessageService) SendVerificationStatus(
	ctx context.Context,
	status, phone string,
) (string, *domain.SendResponse, error) {
	template, ok := s.config.StatusTemplates[status]
	if !ok || template == "" {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownVerificationStatus, status)
	}

	resp, err := s.client.SendTemplate(ctx, phone, template, s.config.DefaultLanguage, nil)
	if err != nil {
		return template, nil, err
	}

	s.track(ctx, resp, phone, domain.SendKindTemplate, template)

	return template, resp, nil
}

// SendAdminMessage sends free text to phone and records it in the chat log
// as an admin message. A chat log failure is logged only, the message has
// already been delivered to the platform by then.
func (s *MessageService) SendAdminMessage(ctx context.Context, phone, text string) (*domain.SendResponse, error) {
	resp, err := s.client.SendText(ctx, phone, text)
	if err != nil {
		return nil, err
	}

	s.track(ctx, resp, phone, domain.SendKindText, "")

	msg := domain.ChatMessage{
		From:      domain.DirectionAdmin,
		Text:      text,
		Timestamp: s.now().UTC(),
		Read:      false,
		Type:      domain.ChatMessageText,
	}

	shortID := chatID(phone)
	if err := s.chats.AppendMessage(ctx, shortID, msg); err != nil {
		logger.Errorf("Failed to record admin message to %s: %v", privacy.MaskPhoneNumber(shortID), err)
	}

	return resp, nil
}

// ChatHistory returns the latest messages of a chat, oldest first.
func (s *MessageService) ChatHistory(ctx context.Context, phone string) ([]domain.ChatMessage, error) {
	return s.chats.RecentMessages(ctx, chatID(phone), chatHistoryLimit)
}

func (s *MessageService) RecentInbound() []domain.MirrorEntry {
	return s.mirror.Snapshot()
}

func (s *MessageService) TrackedMessages(ctx context.Context) (map[string]*domain.TrackedMessage, error) {
	if s.tracker == nil {
		return nil, ErrTrackerNotConfigured
	}
	return s.tracker.GetAllTrackedMessages(ctx)
}

func (s *MessageService) track(
	ctx context.Context,
	resp *domain.SendResponse,
	phone string,
	kind domain.SendKind,
	template string,
) {
	if s.tracker == nil || resp.MessageID() == "" {
		return
	}

	msg := domain.TrackedMessage{
		MessageID: resp.MessageID(),
		Recipient: whatsapp.NormalizeRecipient(phone),
		Kind:      kind,
		Template:  template,
		SentAt:    s.now().UTC(),
	}

	if err := s.tracker.TrackSentMessage(ctx, msg); err != nil {
		logger.Warnf("Failed to track message %s: %v", msg.MessageID, err)
	}
}

// chatID maps any phone formatting to the short id chats are keyed by.
func chatID(phone string) string {
	return domain.ShortID(whatsapp.NormalizeRecipient(phone))
}
