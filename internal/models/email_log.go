package models

import (
	"time"

	"github.com/google/uuid"
)

// Email kinds sent by the notification worker.
const (
	EmailTypeRegistrationConfirmed = "registration_confirmed"
	EmailTypeRegistrationReceived  = "registration_received"
	EmailTypeRegistrationApproved  = "registration_approved"
)

// Delivery states.
const (
	EmailLogStatusPending = "pending"
	EmailLogStatusSent    = "sent"
	EmailLogStatusFailed  = "failed"
)

// EmailLog records the outcome of a registration notification.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	WebinarID      uuid.UUID  `json:"webinar_id"`
	RegistrationID *uuid.UUID `json:"registration_id,omitempty"`
	EmailType      string     `json:"email_type"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject,omitempty"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
