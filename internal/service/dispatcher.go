package service

import (
	"context"
	"fmt"
	"time"

	"github.com/onurcolak/whatsapp-relay/internal/domain"
	"github.com/onurcolak/whatsapp-relay/internal/mirror"
	"github.com/onurcolak/whatsapp-relay/pkg/logger"
	"github.com/onurcolak/whatsapp-relay/pkg/privacy"
)

type chatStore interface {
	AppendMessage(ctx context.Context, shortID string, msg domain.ChatMessage) error
}

type deliveryErrorStore interface {
	Save(ctx context.Context, record *domain.DeliveryError) error
}

type statusTracker interface {
	RecordDeliveryStatus(ctx context.Context, messageID, status string, at time.Time) error
}

type imageProcessor interface {
	Process(ctx context.Context, event domain.ImageEvent) (*domain.StoredObject, error)
}

// DispatchResult summarizes one webhook delivery.
type DispatchResult struct {
	Messages int `json:"messages"`
	Statuses int `json:"statuses"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped,omitempty"`
}

// Dispatcher applies the side effects of every event in a webhook delivery,
// one event at a time. A failing event is logged and counted; it never stops
// the rest of the batch.
type Dispatcher struct {
	images         imageProcessor
	chats          chatStore
	deliveryErrors deliveryErrorStore
	tracker        statusTracker
	mirror         *mirror.Ring
	now            func() time.Time
}

func NewDispatcher(
	images imageProcessor,
	chats chatStore,
	deliveryErrors deliveryErrorStore,
	ring *mirror.Ring,
) *Dispatcher {
	return &Dispatcher{
		images:         images,
		chats:          chats,
		deliveryErrors: deliveryErrors,
		mirror:         ring,
		now:            time.Now,
	}
}

// WithStatusTracker records the latest delivery status of outbound messages.
func (d *Dispatcher) WithStatusTracker(tracker statusTracker) *Dispatcher {
	d.tracker = tracker
	return d
}

func (d *Dispatcher) Dispatch(ctx context.Context, payload *domain.WebhookPayload) DispatchResult {
	events, skipped := payload.Events(d.now().UTC())

	result := DispatchResult{Skipped: skipped}
	if skipped > 0 {
		logger.Infof("Skipped %d inbound messages of unsupported type", skipped)
	}

	for _, event := range events {
		switch ev := event.(type) {
		case domain.TextEvent:
			result.Messages++
			if err := d.handleText(ctx, ev); err != nil {
				result.Failed++
				logger.Errorf("Failed to record text message %s: %v", ev.MessageID, err)
			}
		case domain.ImageEvent:
			result.Messages++
			if _, err := d.images.Process(ctx, ev); err != nil {
				result.Failed++
				logger.Errorf("Failed to process image %s from %s: %v",
					ev.MediaID, privacy.MaskPhoneNumber(ev.ShortID), err)
			}
		case domain.StatusEvent:
			result.Statuses++
			d.handleStatus(ctx, ev)
		}
	}

	return result
}

func (d *Dispatcher) handleText(ctx context.Context, event domain.TextEvent) error {
	d.mirror.Append(domain.MirrorEntry{
		Kind:       domain.ChatMessageText,
		From:       event.SenderID,
		ShortID:    event.ShortID,
		Text:       event.Body,
		ReceivedAt: event.ReceivedAt,
	})

	msg := domain.ChatMessage{
		From:      domain.DirectionUser,
		Text:      event.Body,
		Timestamp: event.ReceivedAt,
		Read:      false,
		Type:      domain.ChatMessageText,
	}

	if err := d.chats.AppendMessage(ctx, event.ShortID, msg); err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}

	logger.Debugf("Recorded text message %s from %s", event.MessageID, privacy.MaskPhoneNumber(event.ShortID))

	return nil
}

func (d *Dispatcher) handleStatus(ctx context.Context, event domain.StatusEvent) {
	recipient := privacy.MaskPhoneNumber(event.RecipientID)

	if event.Error != nil {
		logger.Errorf("Delivery of %s to %s %s: code=%d title=%q details=%q",
			event.ReportID, recipient, event.Status, event.Error.Code, event.Error.Title, event.Error.Details)

		record := &domain.DeliveryError{
			ReportID:           event.ReportID,
			RecipientID:        event.RecipientID,
			Status:             string(event.Status),
			ErrorCode:          event.Error.Code,
			ErrorTitle:         event.Error.Title,
			ErrorDetails:       event.Error.Details,
			ConversationOrigin: event.ConversationOrigin,
			OccurredAt:         event.ReceivedAt,
		}

		if err := d.deliveryErrors.Save(ctx, record); err != nil {
			logger.Errorf("Failed to save delivery error for %s: %v", event.ReportID, err)
		}
	} else {
		logger.Infof("Message %s to %s is %s", event.ReportID, recipient, event.Status)
	}

	if !event.Status.Known() {
		logger.Warnf("Unknown delivery status %q for %s, not tracking it", event.Status, event.ReportID)
		return
	}

	if d.tracker != nil {
		err := d.tracker.RecordDeliveryStatus(ctx, event.ReportID, string(event.Status), event.ReceivedAt)
		if err != nil {
			logger.Warnf("Failed to record delivery status for %s: %v", event.ReportID, err)
		}
	}
}
