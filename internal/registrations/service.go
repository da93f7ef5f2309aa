package registrations

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/models"
	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/video"
	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/webinars"
	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/apperr"
	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/queue"
)

// Store is the registration persistence surface.
type Store interface {
	// Create inserts a registration. A unique-constraint violation on
	// (webinar_id, user_email) must surface as an apperr conflict: the
	// duplicate pre-check in the service is only a fast path.
	Create(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	GetByWebinarAndEmail(ctx context.Context, webinarID uuid.UUID, email string) (*models.Registration, error)
	GetByJoinToken(ctx context.Context, token string) (*models.Registration, error)
	CountApproved(ctx context.Context, webinarID uuid.UUID) (int, error)
	ListByWebinar(ctx context.Context, webinarID uuid.UUID) ([]models.Registration, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.RegistrationStatus, approvedAt *time.Time) error
}

// FormStore is the registration-form persistence surface.
type FormStore interface {
	GetByWebinar(ctx context.Context, webinarID uuid.UUID) (*models.RegistrationForm, error)
	Create(ctx context.Context, form *models.RegistrationForm) error
	// Update replaces the stored form and bumps its version.
	Update(ctx context.Context, form *models.RegistrationForm) error
}

// WebinarGetter is the slice of the webinar store this component reads.
type WebinarGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Webinar, error)
}

// Notifier enqueues registration notification jobs. Enqueue failures are
// best-effort and never fail the registration.
type Notifier interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// Service owns the registration workflow: form schema management,
// submission checks, moderation, and join validation.
type Service struct {
	store    Store
	forms    FormStore
	webinars WebinarGetter
	calls    video.Client
	notify   Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a registration service. notify may be nil.
func NewService(store Store, forms FormStore, webinars WebinarGetter, calls video.Client, notify Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, forms: forms, webinars: webinars, calls: calls, notify: notify, logger: logger, now: time.Now}
}

// SubmitInput is the payload for Submit.
type SubmitInput struct {
	WebinarID    uuid.UUID
	UserName     string
	UserEmail    string
	MobileNumber string
	Responses    map[string]string
	Source       models.SourceData
}

// Submit runs the ordered registration checks and persists the
// registration. Capacity and deadline are enforced before field
// validation so a late or full registration never leaks field details.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*models.Registration, error) {
	w, err := s.webinars.GetByID(ctx, in.WebinarID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, apperr.NotFound("webinar not found")
	}
	form, err := s.forms.GetByWebinar(ctx, in.WebinarID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, apperr.NotFound("registration form not found")
	}
	if !form.RequireRegistration {
		return nil, apperr.Validation("registration not required for this webinar")
	}

	now := s.now()
	if form.DeadlineHours != nil {
		deadline := w.StartsAt.Add(-time.Duration(*form.DeadlineHours) * time.Hour)
		if now.After(deadline) {
			return nil, apperr.DeadlineExpired("registration deadline has passed")
		}
	}
	if form.MaxAttendees != nil {
		count, err := s.store.CountApproved(ctx, in.WebinarID)
		if err != nil {
			return nil, err
		}
		if count >= *form.MaxAttendees {
			return nil, apperr.CapacityExceeded("webinar is at capacity")
		}
	}

	if fieldErrs := ValidateSubmission(form.Fields, in.UserName, in.UserEmail, in.Responses); len(fieldErrs) > 0 {
		return nil, apperr.Validation("invalid registration", fieldErrs...)
	}

	existing, err := s.store.GetByWebinarAndEmail(ctx, in.WebinarID, in.UserEmail)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("this email is already registered")
	}

	token, err := generateJoinToken()
	if err != nil {
		return nil, fmt.Errorf("generate join token: %w", err)
	}
	reg := &models.Registration{
		WebinarID:     in.WebinarID,
		FormID:        form.ID,
		UserName:      in.UserName,
		UserEmail:     in.UserEmail,
		MobileNumber:  in.MobileNumber,
		FormResponses: in.Responses,
		Status:        models.RegistrationPending,
		JoinToken:     token,
		Source:        in.Source,
	}
	if form.AutoApprove {
		reg.Status = models.RegistrationApproved
		approvedAt := now
		reg.ApprovedAt = &approvedAt
	}
	if err := s.store.Create(ctx, reg); err != nil {
		return nil, err
	}

	s.enqueueNotification(ctx, w, reg)
	return reg, nil
}

func (s *Service) enqueueNotification(ctx context.Context, w *models.Webinar, reg *models.Registration) {
	if s.notify == nil {
		return
	}
	emailType := models.EmailTypeRegistrationReceived
	if reg.Status == models.RegistrationApproved {
		emailType = models.EmailTypeRegistrationConfirmed
	}
	payload := queue.EmailPayload{
		EmailType:      emailType,
		WebinarID:      w.ID,
		RegistrationID: reg.ID,
		RecipientEmail: reg.UserEmail,
		RecipientName:  reg.UserName,
		WebinarTitle:   w.Title,
		StartsAt:       w.StartsAt,
		JoinToken:      reg.JoinToken,
	}
	if err := s.notify.EnqueueEmail(ctx, payload); err != nil {
		s.logger.Warn("enqueue registration email", zap.Error(err), zap.String("registration_id", reg.ID.String()))
	}
}

// SaveFormInput carries upsert fields for a registration form; nil means
// keep the existing value (or the default on first save).
type SaveFormInput struct {
	RequireRegistration *bool
	AutoApprove         *bool
	MaxAttendees        *int
	DeadlineHours       *int
	Fields              []models.FormField
}

// SaveForm upserts a webinar's registration form: top-level fields are
// merge-updated, the schema is wholesale-replaced, and the version bumps
// on every save.
func (s *Service) SaveForm(ctx context.Context, webinarID uuid.UUID, in SaveFormInput) (*models.RegistrationForm, error) {
	w, err := s.webinars.GetByID(ctx, webinarID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, apperr.NotFound("webinar not found")
	}

	form, err := s.forms.GetByWebinar(ctx, webinarID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		form = &models.RegistrationForm{
			WebinarID:           webinarID,
			RequireRegistration: true,
			AutoApprove:         true,
			Fields:              models.DefaultFormFields(),
			Version:             1,
		}
		applyFormInput(form, in)
		if err := s.forms.Create(ctx, form); err != nil {
			return nil, err
		}
		return form, nil
	}

	applyFormInput(form, in)
	if err := s.forms.Update(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

func applyFormInput(form *models.RegistrationForm, in SaveFormInput) {
	if in.RequireRegistration != nil {
		form.RequireRegistration = *in.RequireRegistration
	}
	if in.AutoApprove != nil {
		form.AutoApprove = *in.AutoApprove
	}
	if in.MaxAttendees != nil {
		form.MaxAttendees = in.MaxAttendees
	}
	if in.DeadlineHours != nil {
		form.DeadlineHours = in.DeadlineHours
	}
	if in.Fields != nil {
		form.Fields = NormalizeFields(in.Fields)
	}
}

// GetForm returns a webinar's registration form.
func (s *Service) GetForm(ctx context.Context, webinarID uuid.UUID) (*models.RegistrationForm, error) {
	form, err := s.forms.GetByWebinar(ctx, webinarID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, apperr.NotFound("registration form not found")
	}
	return form, nil
}

// List returns all registrations for a webinar, for moderation.
func (s *Service) List(ctx context.Context, webinarID uuid.UUID) ([]models.Registration, error) {
	w, err := s.webinars.GetByID(ctx, webinarID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, apperr.NotFound("webinar not found")
	}
	return s.store.ListByWebinar(ctx, webinarID)
}

// SetStatus transitions a registration to approved or rejected.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status models.RegistrationStatus) (*models.Registration, error) {
	reg, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, apperr.NotFound("registration not found")
	}
	var approvedAt *time.Time
	if status == models.RegistrationApproved {
		t := s.now()
		approvedAt = &t
	}
	if err := s.store.UpdateStatus(ctx, id, status, approvedAt); err != nil {
		return nil, err
	}
	reg.Status = status
	reg.ApprovedAt = approvedAt
	return reg, nil
}

// JoinInfo is the result of a successful join validation.
type JoinInfo struct {
	Registration *models.Registration `json:"registration"`
	WebinarID    uuid.UUID            `json:"webinar_id"`
	WebinarTitle string               `json:"webinar_title"`
	StartsAt     time.Time            `json:"starts_at"`
	Status       models.Status        `json:"status"`
	CallID       string               `json:"call_id"`
	CallToken    string               `json:"call_token,omitempty"`
}

// ValidateJoin resolves a join token to its registration and checks the
// live window. A forced-live webinar opens the window regardless of the
// clock, mirroring the go-live override.
func (s *Service) ValidateJoin(ctx context.Context, token string) (*JoinInfo, error) {
	reg, err := s.store.GetByJoinToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, apperr.NotFound("invalid join token")
	}
	if reg.Status != models.RegistrationApproved {
		return nil, apperr.Forbidden("registration is not approved")
	}
	w, err := s.webinars.GetByID(ctx, reg.WebinarID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, apperr.NotFound("webinar not found")
	}

	now := s.now()
	if w.StreamStatus != models.StatusLive {
		if now.Before(w.StartsAt) {
			return nil, apperr.NotStarted("webinar has not started yet")
		}
		if now.After(w.EndsAt()) {
			return nil, apperr.Ended("webinar has ended")
		}
	}

	info := &JoinInfo{
		Registration: reg,
		WebinarID:    w.ID,
		WebinarTitle: w.Title,
		StartsAt:     w.StartsAt,
		Status:       webinars.DisplayStatus(w, now),
		CallID:       w.CallID,
	}
	if s.calls != nil {
		callToken, err := s.calls.IssueUserToken(reg.ID.String())
		if err != nil {
			s.logger.Warn("issue call token", zap.Error(err), zap.String("registration_id", reg.ID.String()))
		} else {
			info.CallToken = callToken
		}
	}
	return info, nil
}

func generateJoinToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b)[:43], nil
}
