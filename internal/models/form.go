package models

import (
	"time"

	"github.com/google/uuid"
)

// FieldType discriminates the kind of input a form field collects.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldRadio    FieldType = "radio"
	FieldNumber   FieldType = "number"
	FieldEmail    FieldType = "email"
	FieldPhone    FieldType = "phone"
)

// FieldValidation holds optional per-field constraints. Min/Max apply to
// number fields, MinLength/MaxLength to text/textarea, Pattern to any string.
type FieldValidation struct {
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// FormField is one typed input definition in a registration form schema.
// Options are meaningful only for select/checkbox/radio fields.
type FormField struct {
	ID          string           `json:"id"`
	Type        FieldType        `json:"type"`
	Label       string           `json:"label"`
	Placeholder string           `json:"placeholder,omitempty"`
	Required    bool             `json:"required"`
	Options     []string         `json:"options,omitempty"`
	Validation  *FieldValidation `json:"validation,omitempty"`
	Order       int              `json:"order"`
}

// RegistrationForm is the per-webinar registration schema and policy
// (one-to-one with Webinar). Version increments on every save.
type RegistrationForm struct {
	ID                  uuid.UUID   `json:"id"`
	WebinarID           uuid.UUID   `json:"webinar_id"`
	RequireRegistration bool        `json:"require_registration"`
	AutoApprove         bool        `json:"auto_approve"`
	MaxAttendees        *int        `json:"max_attendees,omitempty"`
	DeadlineHours       *int        `json:"registration_deadline,omitempty"` // hours before start
	Fields              []FormField `json:"form_schema"`
	Version             int         `json:"version"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// DefaultFormFields is the canonical default schema used at webinar creation
// and whenever a form is saved without an explicit schema. Name and email are
// structurally mandatory: a well-formed schema always contains both, required.
func DefaultFormFields() []FormField {
	return []FormField{
		{ID: "name", Type: FieldText, Label: "Full name", Required: true, Order: 0},
		{ID: "email", Type: FieldEmail, Label: "Email address", Required: true, Order: 1},
		{ID: "phone", Type: FieldPhone, Label: "Phone number", Required: false, Order: 2},
	}
}
