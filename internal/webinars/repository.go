package webinars

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/models"
)

// Repository handles webinar persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a webinar repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

const webinarColumns = `id, slug, title, description, starts_at, duration_minutes, call_id, status, stream_status, capacity, created_by, created_at, updated_at`

func scanWebinar(row pgx.Row, w *models.Webinar) error {
	return row.Scan(&w.ID, &w.Slug, &w.Title, &w.Description, &w.StartsAt, &w.DurationMinutes,
		&w.CallID, &w.Status, &w.StreamStatus, &w.Capacity, &w.CreatedBy, &w.CreatedAt, &w.UpdatedAt)
}

// CreateWithForm inserts a webinar and its registration form atomically.
func (r *Repository) CreateWithForm(ctx context.Context, w *models.Webinar, form *models.RegistrationForm) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertWebinar = `INSERT INTO webinars (id, slug, title, description, starts_at, duration_minutes, call_id, status, stream_status, capacity, created_by)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertWebinar,
		w.Slug, w.Title, w.Description, w.StartsAt, w.DurationMinutes, w.CallID,
		w.Status, w.StreamStatus, w.Capacity, w.CreatedBy).
		Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return fmt.Errorf("insert webinar: %w", err)
	}

	fieldsJSON, err := json.Marshal(form.Fields)
	if err != nil {
		return fmt.Errorf("marshal form fields: %w", err)
	}
	const insertForm = `INSERT INTO registration_forms (id, webinar_id, require_registration, auto_approve, max_attendees, deadline_hours, fields, version)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	form.WebinarID = w.ID
	if err := tx.QueryRow(ctx, insertForm,
		w.ID, form.RequireRegistration, form.AutoApprove, form.MaxAttendees, form.DeadlineHours,
		fieldsJSON, form.Version).
		Scan(&form.ID, &form.CreatedAt, &form.UpdatedAt); err != nil {
		return fmt.Errorf("insert registration form: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByID returns a webinar by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Webinar, error) {
	var w models.Webinar
	err := scanWebinar(r.pool.QueryRow(ctx, `SELECT `+webinarColumns+` FROM webinars WHERE id = $1`, id), &w)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// List returns webinars ordered by start time descending, with the total count.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.Webinar, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM webinars`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+webinarColumns+` FROM webinars ORDER BY starts_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Webinar
	for rows.Next() {
		var w models.Webinar
		if err := scanWebinar(rows, &w); err != nil {
			return nil, 0, err
		}
		list = append(list, w)
	}
	return list, total, rows.Err()
}

// Update persists mutable webinar fields.
func (r *Repository) Update(ctx context.Context, w *models.Webinar) error {
	const q = `UPDATE webinars
		SET title = $1, description = $2, starts_at = $3, duration_minutes = $4, capacity = $5, status = $6, updated_at = NOW()
		WHERE id = $7`
	_, err := r.pool.Exec(ctx, q, w.Title, w.Description, w.StartsAt, w.DurationMinutes, w.Capacity, w.Status, w.ID)
	return err
}

// Delete removes a webinar; the form and registrations cascade via FKs.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM webinars WHERE id = $1`, id)
	return err
}

// SetStreamStatus persists the forced status pair set by go-live/end.
func (r *Repository) SetStreamStatus(ctx context.Context, id uuid.UUID, status, streamStatus models.Status) error {
	const q = `UPDATE webinars SET status = $1, stream_status = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.pool.Exec(ctx, q, status, streamStatus, id)
	return err
}
