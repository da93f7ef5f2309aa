package webinars

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/models"
	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/video"
	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/apperr"
)

type fakeStore struct {
	webinars map[uuid.UUID]*models.Webinar
	forms    map[uuid.UUID]*models.RegistrationForm
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		webinars: map[uuid.UUID]*models.Webinar{},
		forms:    map[uuid.UUID]*models.RegistrationForm{},
	}
}

func (s *fakeStore) CreateWithForm(_ context.Context, w *models.Webinar, form *models.RegistrationForm) error {
	w.ID = uuid.New()
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt
	form.ID = uuid.New()
	form.WebinarID = w.ID
	cw, cf := *w, *form
	s.webinars[w.ID] = &cw
	s.forms[w.ID] = &cf
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Webinar, error) {
	w, ok := s.webinars[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (s *fakeStore) List(_ context.Context, limit, offset int) ([]models.Webinar, int, error) {
	var all []models.Webinar
	for _, w := range s.webinars {
		all = append(all, *w)
	}
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (s *fakeStore) Update(_ context.Context, w *models.Webinar) error {
	if _, ok := s.webinars[w.ID]; !ok {
		return apperr.NotFound("webinar not found")
	}
	cp := *w
	s.webinars[w.ID] = &cp
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.webinars, id)
	delete(s.forms, id)
	return nil
}

func (s *fakeStore) SetStreamStatus(_ context.Context, id uuid.UUID, status, streamStatus models.Status) error {
	w, ok := s.webinars[id]
	if !ok {
		return apperr.NotFound("webinar not found")
	}
	w.Status = status
	w.StreamStatus = streamStatus
	return nil
}

type fakeCalls struct {
	createErr error
	startErr  error
	endErr    error

	created []string
	started []string
	ended   []string
}

func (c *fakeCalls) CreateCall(_ context.Context, p video.CreateCallParams) (*video.CallInfo, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	c.created = append(c.created, p.CallID)
	return &video.CallInfo{CallID: p.CallID, CreatedAt: time.Now()}, nil
}

func (c *fakeCalls) StartCall(_ context.Context, callID string) error {
	if c.startErr != nil {
		return c.startErr
	}
	c.started = append(c.started, callID)
	return nil
}

func (c *fakeCalls) EndCall(_ context.Context, callID string) error {
	c.ended = append(c.ended, callID)
	return c.endErr
}

func (c *fakeCalls) IssueUserToken(userID string) (string, error) {
	return "token-" + userID, nil
}

func newTestService(t *testing.T, now time.Time) (*Service, *fakeStore, *fakeCalls) {
	t.Helper()
	store := newFakeStore()
	calls := &fakeCalls{}
	svc := NewService(store, calls, nil)
	svc.now = func() time.Time { return now }
	return svc, store, calls
}

func TestCreate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, store, calls := newTestService(t, now)

	w, err := svc.Create(context.Background(), CreateInput{
		Title:           "Intro to Channels",
		StartsAt:        now.Add(2 * time.Hour),
		DurationMinutes: 60,
		CreatedBy:       uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if w.Status != models.StatusUpcoming {
		t.Fatalf("status = %s, want upcoming", w.Status)
	}
	if w.Slug != "intro-to-channels-1772366400" {
		t.Fatalf("unexpected slug %q", w.Slug)
	}
	if w.Capacity != defaultCapacity {
		t.Fatalf("capacity = %d, want default %d", w.Capacity, defaultCapacity)
	}
	if len(calls.created) != 1 || calls.created[0] != w.CallID {
		t.Fatalf("expected one provisioned call %q, got %v", w.CallID, calls.created)
	}

	form, ok := store.forms[w.ID]
	if !ok {
		t.Fatal("default registration form not persisted with webinar")
	}
	if !form.RequireRegistration || !form.AutoApprove || form.Version != 1 {
		t.Fatalf("unexpected default form: %+v", form)
	}
	if len(form.Fields) != len(models.DefaultFormFields()) {
		t.Fatalf("default form has %d fields", len(form.Fields))
	}
}

func TestCreateValidation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, store, _ := newTestService(t, now)

	_, err := svc.Create(context.Background(), CreateInput{
		Title:           "",
		StartsAt:        now.Add(-time.Hour),
		DurationMinutes: 0,
	})
	if apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) || len(ae.Fields) != 3 {
		t.Fatalf("expected 3 field errors, got %+v", ae)
	}
	if len(store.webinars) != 0 {
		t.Fatal("nothing should be persisted on validation failure")
	}
}

func TestCreateProvisioningFailure(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, store, calls := newTestService(t, now)
	calls.createErr = errors.New("provider down")

	_, err := svc.Create(context.Background(), CreateInput{
		Title:           "Doomed",
		StartsAt:        now.Add(time.Hour),
		DurationMinutes: 30,
		CreatedBy:       uuid.New(),
	})
	if apperr.CodeOf(err) != apperr.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(store.webinars) != 0 || len(store.forms) != 0 {
		t.Fatal("provisioning failure must leave no partial state")
	}
}

func TestUpdatePartial(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(t, now)

	w, err := svc.Create(context.Background(), CreateInput{
		Title:           "Original",
		Description:     "keep me",
		StartsAt:        now.Add(time.Hour),
		DurationMinutes: 30,
		CreatedBy:       uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	title := "Renamed"
	got, err := svc.Update(context.Background(), w.ID, UpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != "Renamed" || got.Description != "keep me" {
		t.Fatalf("partial update touched wrong fields: %+v", got)
	}
	if got.StartsAt != w.StartsAt || got.DurationMinutes != w.DurationMinutes {
		t.Fatal("partial update changed schedule")
	}

	past := now.Add(-time.Minute)
	if _, err := svc.Update(context.Background(), w.ID, UpdateInput{StartsAt: &past}); apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("past start: expected validation error, got %v", err)
	}
}

func TestUpdateRecomputesStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(t, now)

	w, err := svc.Create(context.Background(), CreateInput{
		Title:           "Soon",
		StartsAt:        now.Add(time.Hour),
		DurationMinutes: 30,
		CreatedBy:       uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	later := now.Add(48 * time.Hour)
	got, err := svc.Update(context.Background(), w.ID, UpdateInput{StartsAt: &later})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Status != models.StatusUpcoming {
		t.Fatalf("status = %s, want upcoming", got.Status)
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc, _, _ := newTestService(t, time.Now())
	if _, err := svc.Update(context.Background(), uuid.New(), UpdateInput{}); apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStart(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, store, calls := newTestService(t, now)

	w, err := svc.Create(context.Background(), CreateInput{
		Title:           "Early Bird",
		StartsAt:        now.Add(time.Hour),
		DurationMinutes: 30,
		CreatedBy:       uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Going live before the scheduled start is allowed.
	got, err := svc.Start(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got.Status != models.StatusLive || got.StreamStatus != models.StatusLive {
		t.Fatalf("start did not force live: %+v", got)
	}
	if len(calls.started) != 1 || calls.started[0] != w.CallID {
		t.Fatalf("expected provider go-live for %q, got %v", w.CallID, calls.started)
	}
	if store.webinars[w.ID].StreamStatus != models.StatusLive {
		t.Fatal("live override not persisted")
	}

	// Starting twice conflicts.
	if _, err := svc.Start(context.Background(), w.ID); apperr.CodeOf(err) != apperr.CodeConflict {
		t.Fatalf("second start: expected conflict, got %v", err)
	}
}

func TestStartProviderFailure(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, store, calls := newTestService(t, now)

	w, err := svc.Create(context.Background(), CreateInput{
		Title:           "Flaky",
		StartsAt:        now.Add(time.Hour),
		DurationMinutes: 30,
		CreatedBy:       uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	calls.startErr = errors.New("go_live rejected")
	calls.endErr = errors.New("teardown also failed")

	_, err = svc.Start(context.Background(), w.ID)
	if apperr.CodeOf(err) != apperr.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	// Cleanup was attempted; its failure is swallowed.
	if len(calls.ended) != 1 {
		t.Fatalf("expected one cleanup attempt, got %d", len(calls.ended))
	}
	if store.webinars[w.ID].StreamStatus != models.StatusUpcoming {
		t.Fatal("failed go-live must leave stored status untouched")
	}
}

func TestEnd(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, store, _ := newTestService(t, now)

	w, err := svc.Create(context.Background(), CreateInput{
		Title:           "Wrap Up",
		StartsAt:        now.Add(time.Hour),
		DurationMinutes: 30,
		CreatedBy:       uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Start(context.Background(), w.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}

	got, err := svc.End(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if got.Status != models.StatusEnded || got.StreamStatus != models.StatusEnded {
		t.Fatalf("end did not settle status: %+v", got)
	}
	if store.webinars[w.ID].StreamStatus != models.StatusEnded {
		t.Fatal("ended status not persisted")
	}
}

func TestListPaging(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(t, now)

	for i := 0; i < 5; i++ {
		if _, err := svc.Create(context.Background(), CreateInput{
			Title:           "Session",
			StartsAt:        now.Add(time.Duration(i+1) * time.Hour),
			DurationMinutes: 30,
			CreatedBy:       uuid.New(),
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	list, total, err := svc.List(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 5 || len(list) != 2 {
		t.Fatalf("got %d items, total %d", len(list), total)
	}

	// Out-of-range defaults.
	list, total, err = svc.List(context.Background(), 0, 500)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 5 || len(list) != 5 {
		t.Fatalf("defaulted page: got %d items, total %d", len(list), total)
	}
}

func TestDelete(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(t, now)

	w, err := svc.Create(context.Background(), CreateInput{
		Title:           "Gone",
		StartsAt:        now.Add(time.Hour),
		DurationMinutes: 30,
		CreatedBy:       uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(context.Background(), w.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), w.ID); apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), w.ID); apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Fatalf("double delete: expected not found, got %v", err)
	}
}
