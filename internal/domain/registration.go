package domain

import (
	"encoding/json"
	"time"
)

type VerificationStatus string

const VerificationImageUploaded VerificationStatus = "image_uploaded"

// Registration is owned by the registration flow; the relay only reads it
// and attaches uploaded images.
type Registration struct {
	ID                 int64              `db:"id" json:"id"`
	Name               string             `db:"name" json:"name"`
	PhoneNumber        string             `db:"phone_number" json:"phoneNumber"`
	ImageURLs          json.RawMessage    `db:"image_urls" json:"imageUrls"`
	VerificationStatus VerificationStatus `db:"verification_status" json:"verificationStatus"`
	CreatedAt          time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updatedAt"`
}

// DeliveryError records a failed delivery report.
type DeliveryError struct {
	ID                 int64     `db:"id" json:"id"`
	ReportID           string    `db:"report_id" json:"reportId"`
	RecipientID        string    `db:"recipient_id" json:"recipientId"`
	Status             string    `db:"status" json:"status"`
	ErrorCode          int       `db:"error_code" json:"errorCode"`
	ErrorTitle         string    `db:"error_title" json:"errorTitle"`
	ErrorDetails       string    `db:"error_details" json:"errorDetails"`
	ConversationOrigin string    `db:"conversation_origin" json:"conversationOrigin,omitempty"`
	OccurredAt         time.Time `db:"occurred_at" json:"occurredAt"`
}

// StoredObject is the result of an object store upload.
type StoredObject struct {
	ID        string `json:"id"`
	Key       string `json:"key"`
	PublicURL string `json:"publicUrl"`
	Size      int64  `json:"size"`
}
