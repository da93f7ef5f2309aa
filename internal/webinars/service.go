package webinars

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/models"
	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/video"
	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/apperr"
)

// provisionCapacity is the fixed participant ceiling requested from the
// provider; attendee limits are enforced by the registration form instead.
const provisionCapacity = 10000

// defaultCapacity is used when a create request omits capacity.
const defaultCapacity = 100

// Store is the persistence surface the lifecycle service needs.
type Store interface {
	CreateWithForm(ctx context.Context, w *models.Webinar, form *models.RegistrationForm) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Webinar, error)
	List(ctx context.Context, limit, offset int) ([]models.Webinar, int, error)
	Update(ctx context.Context, w *models.Webinar) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetStreamStatus(ctx context.Context, id uuid.UUID, status, streamStatus models.Status) error
}

// Service drives webinar lifecycle: creation, updates, deletion, and the
// go-live/end coordination with the call provider.
type Service struct {
	store  Store
	calls  video.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a lifecycle service.
func NewService(store Store, calls video.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, calls: calls, logger: logger, now: time.Now}
}

// CreateInput is the payload for Create.
type CreateInput struct {
	Title           string
	Description     string
	StartsAt        time.Time
	DurationMinutes int
	Capacity        int
	CreatedBy       uuid.UUID
}

// UpdateInput carries partial update fields; nil means leave untouched.
type UpdateInput struct {
	Title           *string
	Description     *string
	StartsAt        *time.Time
	DurationMinutes *int
	Capacity        *int
}

// Create validates input, provisions the external call, and persists the
// webinar together with its default registration form in one transaction.
// A provisioning failure leaves no partial state behind.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Webinar, error) {
	now := s.now()
	var fields []apperr.FieldError
	if in.Title == "" {
		fields = append(fields, apperr.FieldError{Field: "title", Message: "title is required"})
	}
	if in.StartsAt.IsZero() {
		fields = append(fields, apperr.FieldError{Field: "starts_at", Message: "start time is required"})
	} else if !in.StartsAt.After(now) {
		fields = append(fields, apperr.FieldError{Field: "starts_at", Message: "start time must be in the future"})
	}
	if in.DurationMinutes <= 0 {
		fields = append(fields, apperr.FieldError{Field: "duration_minutes", Message: "duration must be positive"})
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("invalid webinar", fields...)
	}

	capacity := in.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	w := &models.Webinar{
		Slug:            Slugify(in.Title, now),
		Title:           in.Title,
		Description:     in.Description,
		StartsAt:        in.StartsAt,
		DurationMinutes: in.DurationMinutes,
		CallID:          "call-" + uuid.NewString(),
		Status:          CalculateStatus(in.StartsAt, in.DurationMinutes, now),
		StreamStatus:    models.StatusUpcoming,
		Capacity:        capacity,
		CreatedBy:       in.CreatedBy,
	}

	if _, err := s.calls.CreateCall(ctx, video.CreateCallParams{
		CallID:          w.CallID,
		CreatedBy:       in.CreatedBy.String(),
		Title:           in.Title,
		StartsAt:        in.StartsAt,
		MaxParticipants: provisionCapacity,
	}); err != nil {
		s.logger.Error("call provisioning failed", zap.Error(err), zap.String("call_id", w.CallID))
		return nil, apperr.Dependency("failed to provision live session", err)
	}

	form := &models.RegistrationForm{
		RequireRegistration: true,
		AutoApprove:         true,
		Fields:              models.DefaultFormFields(),
		Version:             1,
	}
	if err := s.store.CreateWithForm(ctx, w, form); err != nil {
		return nil, err
	}
	return w, nil
}

// Get returns a webinar with its display status recomputed.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Webinar, error) {
	w, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, apperr.NotFound("webinar not found")
	}
	w.Status = DisplayStatus(w, s.now())
	return w, nil
}

// List returns a page of webinars with per-item computed status and the
// total count.
func (s *Service) List(ctx context.Context, page, limit int) ([]models.Webinar, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	list, total, err := s.store.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	for i := range list {
		list[i].Status = DisplayStatus(&list[i], now)
	}
	return list, total, nil
}

// Update applies a partial update. A provided start time must be in the
// future; status is recomputed when time or duration change.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*models.Webinar, error) {
	w, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, apperr.NotFound("webinar not found")
	}
	now := s.now()
	if in.StartsAt != nil && !in.StartsAt.After(now) {
		return nil, apperr.Validation("invalid webinar",
			apperr.FieldError{Field: "starts_at", Message: "start time must be in the future"})
	}
	if in.DurationMinutes != nil && *in.DurationMinutes <= 0 {
		return nil, apperr.Validation("invalid webinar",
			apperr.FieldError{Field: "duration_minutes", Message: "duration must be positive"})
	}
	if in.Title != nil {
		w.Title = *in.Title
	}
	if in.Description != nil {
		w.Description = *in.Description
	}
	if in.StartsAt != nil {
		w.StartsAt = *in.StartsAt
	}
	if in.DurationMinutes != nil {
		w.DurationMinutes = *in.DurationMinutes
	}
	if in.Capacity != nil {
		w.Capacity = *in.Capacity
	}
	if in.StartsAt != nil || in.DurationMinutes != nil {
		w.Status = CalculateStatus(w.StartsAt, w.DurationMinutes, now)
	}
	if err := s.store.Update(ctx, w); err != nil {
		return nil, err
	}
	w.Status = DisplayStatus(w, now)
	return w, nil
}

// Delete removes a webinar; the form and registrations cascade with it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	w, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if w == nil {
		return apperr.NotFound("webinar not found")
	}
	return s.store.Delete(ctx, id)
}

// Start forces the webinar live: the provider call transitions to a
// broadcast state and the sticky live override is persisted. If the
// provider go-live fails the stored status is left untouched; call
// teardown after such a failure is best-effort and only logged.
func (s *Service) Start(ctx context.Context, id uuid.UUID) (*models.Webinar, error) {
	w, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, apperr.NotFound("webinar not found")
	}
	if w.StreamStatus == models.StatusLive {
		return nil, apperr.Conflict("webinar is already live")
	}

	if err := s.calls.StartCall(ctx, w.CallID); err != nil {
		s.logger.Error("go-live failed", zap.Error(err), zap.String("call_id", w.CallID))
		if cleanupErr := s.calls.EndCall(ctx, w.CallID); cleanupErr != nil {
			s.logger.Warn("call cleanup after failed go-live", zap.Error(cleanupErr), zap.String("call_id", w.CallID))
		}
		return nil, apperr.Dependency("failed to start live session", err)
	}

	if err := s.store.SetStreamStatus(ctx, id, models.StatusLive, models.StatusLive); err != nil {
		return nil, err
	}
	w.Status = models.StatusLive
	w.StreamStatus = models.StatusLive
	return w, nil
}

// End clears the live override and ends the provider call.
func (s *Service) End(ctx context.Context, id uuid.UUID) (*models.Webinar, error) {
	w, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, apperr.NotFound("webinar not found")
	}
	if err := s.calls.EndCall(ctx, w.CallID); err != nil {
		s.logger.Error("end call failed", zap.Error(err), zap.String("call_id", w.CallID))
		return nil, apperr.Dependency("failed to end live session", err)
	}
	if err := s.store.SetStreamStatus(ctx, id, models.StatusEnded, models.StatusEnded); err != nil {
		return nil, err
	}
	w.Status = models.StatusEnded
	w.StreamStatus = models.StatusEnded
	return w, nil
}
