package models

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationStatus is the moderation state of a registration.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// SourceData captures submission metadata from the request context.
type SourceData struct {
	UserAgent   string    `json:"user_agent,omitempty"`
	IP          string    `json:"ip,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Registration is an attendee's submitted response to a webinar's form.
// Immutable after creation except for Status/ApprovedAt. At most one
// registration exists per (webinar_id, user_email).
type Registration struct {
	ID            uuid.UUID          `json:"id"`
	WebinarID     uuid.UUID          `json:"webinar_id"`
	FormID        uuid.UUID          `json:"form_id"`
	UserName      string             `json:"user_name"`
	UserEmail     string             `json:"user_email"`
	MobileNumber  string             `json:"mobile_number,omitempty"`
	FormResponses map[string]string  `json:"form_responses,omitempty"`
	Status        RegistrationStatus `json:"status"`
	JoinToken     string             `json:"join_token"`
	ApprovedAt    *time.Time         `json:"approved_at,omitempty"`
	Source        SourceData         `json:"source_data"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}
