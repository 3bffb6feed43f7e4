package domain

import (
	"strconv"
	"time"
)

const shortIDLength = 10

// InboundEvent is one classified unit of a webhook delivery. The concrete
// type is one of TextEvent, ImageEvent or StatusEvent.
type InboundEvent interface {
	inboundEvent()
	Meta() EventMeta
}

// EventMeta holds the fields shared by every event kind.
type EventMeta struct {
	SenderID   string
	ShortID    string
	ReceivedAt time.Time
}

func (m EventMeta) Meta() EventMeta { return m }

type TextEvent struct {
	EventMeta
	MessageID string
	Body      string
}

type ImageEvent struct {
	EventMeta
	MessageID string
	MediaID   string
	MimeType  string
	Caption   string
}

type DeliveryStatus string

const (
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryRead      DeliveryStatus = "read"
	DeliveryFailed    DeliveryStatus = "failed"
)

// Known reports whether s is one of the statuses the platform documents.
func (s DeliveryStatus) Known() bool {
	switch s {
	case DeliverySent, DeliveryDelivered, DeliveryRead, DeliveryFailed:
		return true
	}
	return false
}

type StatusEvent struct {
	EventMeta
	ReportID           string
	Status             DeliveryStatus
	RecipientID        string
	ConversationOrigin string
	Error              *DeliveryErrorDetail
}

type DeliveryErrorDetail struct {
	Code    int    `json:"code"`
	Title   string `json:"title"`
	Details string `json:"details,omitempty"`
}

func (TextEvent) inboundEvent()   {}
func (ImageEvent) inboundEvent()  {}
func (StatusEvent) inboundEvent() {}

// ShortID returns the last ten characters of a platform sender id.
func ShortID(senderID string) string {
	if len(senderID) <= shortIDLength {
		return senderID
	}
	return senderID[len(senderID)-shortIDLength:]
}

// ClassifyMessage turns an incoming message into its event. ok is false for
// message types the relay does not handle.
func ClassifyMessage(msg IncomingMessage, receivedAt time.Time) (InboundEvent, bool) {
	meta := EventMeta{
		SenderID:   msg.From,
		ShortID:    ShortID(msg.From),
		ReceivedAt: receivedAt,
	}

	switch {
	case msg.Text != nil && msg.Text.Body != "":
		return TextEvent{EventMeta: meta, MessageID: msg.ID, Body: msg.Text.Body}, true
	case msg.Image != nil && msg.Image.ID != "":
		return ImageEvent{
			EventMeta: meta,
			MessageID: msg.ID,
			MediaID:   msg.Image.ID,
			MimeType:  msg.Image.MimeType,
			Caption:   msg.Image.Caption,
		}, true
	default:
		return nil, false
	}
}

// ClassifyStatus normalizes a delivery report. The report's own timestamp
// wins over receivedAt when it parses as unix seconds.
func ClassifyStatus(report StatusReport, receivedAt time.Time) StatusEvent {
	at := receivedAt
	if secs, err := strconv.ParseInt(report.Timestamp, 10, 64); err == nil && secs > 0 {
		at = time.Unix(secs, 0).UTC()
	}

	event := StatusEvent{
		EventMeta: EventMeta{
			SenderID:   report.RecipientID,
			ShortID:    ShortID(report.RecipientID),
			ReceivedAt: at,
		},
		ReportID:    report.ID,
		Status:      DeliveryStatus(report.Status),
		RecipientID: report.RecipientID,
	}

	if report.Conversation != nil {
		event.ConversationOrigin = report.Conversation.Origin.Type
	}

	if len(report.Errors) > 0 {
		first := report.Errors[0]
		event.Error = &DeliveryErrorDetail{
			Code:    first.Code,
			Title:   first.Title,
			Details: first.ErrorData.Details,
		}
		if event.Error.Details == "" {
			event.Error.Details = first.Message
		}
	}

	return event
}

// Events flattens the payload into classified events: every message in
// delivery order first, then every status report. Unsupported message types
// are returned as skipped.
func (p *WebhookPayload) Events(receivedAt time.Time) (events []InboundEvent, skipped int) {
	var statuses []InboundEvent

	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				event, ok := ClassifyMessage(msg, receivedAt)
				if !ok {
					skipped++
					continue
				}
				events = append(events, event)
			}
			for _, report := range change.Value.Statuses {
				statuses = append(statuses, ClassifyStatus(report, receivedAt))
			}
		}
	}

	return append(events, statuses...), skipped
}
