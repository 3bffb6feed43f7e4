package domain

import "time"

type Direction string

const (
	DirectionUser  Direction = "user"
	DirectionAdmin Direction = "admin"
)

const (
	ChatMessageText  = "text"
	ChatMessageImage = "image"
)

// ChatMessage is one entry of the append-only per-contact chat log.
type ChatMessage struct {
	ID        int64     `db:"id" json:"id"`
	ChatID    string    `db:"chat_id" json:"-"`
	From      Direction `db:"direction" json:"from"`
	Text      string    `db:"text" json:"text"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	Read      bool      `db:"is_read" json:"read"`
	Type      string    `db:"type" json:"type"`
}

// MirrorEntry summarizes a recently processed inbound item.
type MirrorEntry struct {
	Kind       string    `json:"kind"`
	From       string    `json:"from"`
	ShortID    string    `json:"shortId"`
	Text       string    `json:"text,omitempty"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	MediaID    string    `json:"mediaId,omitempty"`
	StorageID  string    `json:"storageId,omitempty"`
	ReceivedAt time.Time `json:"receivedAt"`
}
