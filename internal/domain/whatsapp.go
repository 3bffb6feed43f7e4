package domain

import "time"

type TemplateComponent struct {
	Type       string              `json:"type"`
	Parameters []TemplateParameter `json:"parameters,omitempty"`
}

type TemplateParameter struct {
	Type  string     `json:"type"`
	Text  string     `json:"text,omitempty"`
	Image *MediaLink `json:"image,omitempty"`
}

type MediaLink struct {
	ID   string `json:"id,omitempty"`
	Link string `json:"link,omitempty"`
}

type SendResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// MessageID returns the first platform message id, if any.
func (r *SendResponse) MessageID() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}

type SendKind string

const (
	SendKindTemplate SendKind = "template"
	SendKindText     SendKind = "text"
)

// TrackedMessage is the cached view of an outbound message and its latest
// delivery report.
type TrackedMessage struct {
	MessageID      string     `json:"messageId"`
	Recipient      string     `json:"recipient"`
	Kind           SendKind   `json:"kind"`
	Template       string     `json:"template,omitempty"`
	SentAt         time.Time  `json:"sentAt"`
	Status         string     `json:"status,omitempty"`
	StatusUpdateAt *time.Time `json:"statusUpdatedAt,omitempty"`
}
