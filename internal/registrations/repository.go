package registrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/models"
	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/apperr"
)

const uniqueViolation = "23505"

// Repository handles registration and form persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

const registrationColumns = `id, webinar_id, form_id, user_name, user_email, mobile_number, form_responses, status, join_token, approved_at, source_data, created_at, updated_at`

func scanRegistration(row pgx.Row) (*models.Registration, error) {
	var reg models.Registration
	var responses, source []byte
	err := row.Scan(&reg.ID, &reg.WebinarID, &reg.FormID, &reg.UserName, &reg.UserEmail,
		&reg.MobileNumber, &responses, &reg.Status, &reg.JoinToken, &reg.ApprovedAt,
		&source, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(responses) > 0 {
		if err := json.Unmarshal(responses, &reg.FormResponses); err != nil {
			return nil, fmt.Errorf("unmarshal form_responses: %w", err)
		}
	}
	if len(source) > 0 {
		if err := json.Unmarshal(source, &reg.Source); err != nil {
			return nil, fmt.Errorf("unmarshal source_data: %w", err)
		}
	}
	return &reg, nil
}

// Create inserts a registration. The unique (webinar_id, user_email)
// constraint is the authoritative duplicate guard; a violation is mapped
// to a conflict so racing submissions cannot both succeed.
func (r *Repository) Create(ctx context.Context, reg *models.Registration) error {
	responses, err := json.Marshal(reg.FormResponses)
	if err != nil {
		return fmt.Errorf("marshal form_responses: %w", err)
	}
	source, err := json.Marshal(reg.Source)
	if err != nil {
		return fmt.Errorf("marshal source_data: %w", err)
	}
	const q = `INSERT INTO registrations (id, webinar_id, form_id, user_name, user_email, mobile_number, form_responses, status, join_token, approved_at, source_data)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`
	err = r.pool.QueryRow(ctx, q, reg.WebinarID, reg.FormID, reg.UserName, reg.UserEmail,
		reg.MobileNumber, responses, reg.Status, reg.JoinToken, reg.ApprovedAt, source).
		Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Conflict("this email is already registered")
		}
		return err
	}
	return nil
}

// GetByID returns a registration by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	reg, err := scanRegistration(r.pool.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return reg, err
}

// GetByWebinarAndEmail returns the registration for a webinar+email pair.
func (r *Repository) GetByWebinarAndEmail(ctx context.Context, webinarID uuid.UUID, email string) (*models.Registration, error) {
	reg, err := scanRegistration(r.pool.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE webinar_id = $1 AND user_email = $2`, webinarID, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return reg, err
}

// GetByJoinToken returns the registration holding a join token.
func (r *Repository) GetByJoinToken(ctx context.Context, token string) (*models.Registration, error) {
	reg, err := scanRegistration(r.pool.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE join_token = $1`, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return reg, err
}

// CountApproved returns the number of approved registrations for a webinar.
func (r *Repository) CountApproved(ctx context.Context, webinarID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE webinar_id = $1 AND status = $2`,
		webinarID, models.RegistrationApproved).Scan(&count)
	return count, err
}

// ListByWebinar returns all registrations for a webinar, newest first.
func (r *Repository) ListByWebinar(ctx context.Context, webinarID uuid.UUID) ([]models.Registration, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE webinar_id = $1 ORDER BY created_at DESC`, webinarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *reg)
	}
	return list, rows.Err()
}

// UpdateStatus sets the moderation status and approval timestamp.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RegistrationStatus, approvedAt *time.Time) error {
	const q = `UPDATE registrations SET status = $1, approved_at = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.pool.Exec(ctx, q, status, approvedAt, id)
	return err
}

// FormRepository handles registration-form persistence.
type FormRepository struct {
	pool *pgxpool.Pool
}

// NewFormRepository creates a registration-form repository.
func NewFormRepository(pool *pgxpool.Pool) *FormRepository {
	return &FormRepository{pool: pool}
}

var _ FormStore = (*FormRepository)(nil)

const formColumns = `id, webinar_id, require_registration, auto_approve, max_attendees, deadline_hours, fields, version, created_at, updated_at`

func scanForm(row pgx.Row) (*models.RegistrationForm, error) {
	var form models.RegistrationForm
	var fields []byte
	err := row.Scan(&form.ID, &form.WebinarID, &form.RequireRegistration, &form.AutoApprove,
		&form.MaxAttendees, &form.DeadlineHours, &fields, &form.Version, &form.CreatedAt, &form.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &form.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal form fields: %w", err)
		}
	}
	return &form, nil
}

// GetByWebinar returns the webinar's registration form, or nil when absent.
func (r *FormRepository) GetByWebinar(ctx context.Context, webinarID uuid.UUID) (*models.RegistrationForm, error) {
	form, err := scanForm(r.pool.QueryRow(ctx,
		`SELECT `+formColumns+` FROM registration_forms WHERE webinar_id = $1`, webinarID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return form, err
}

// Create inserts a form (one per webinar).
func (r *FormRepository) Create(ctx context.Context, form *models.RegistrationForm) error {
	fields, err := json.Marshal(form.Fields)
	if err != nil {
		return fmt.Errorf("marshal form fields: %w", err)
	}
	const q = `INSERT INTO registration_forms (id, webinar_id, require_registration, auto_approve, max_attendees, deadline_hours, fields, version)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, form.WebinarID, form.RequireRegistration, form.AutoApprove,
		form.MaxAttendees, form.DeadlineHours, fields, form.Version).
		Scan(&form.ID, &form.CreatedAt, &form.UpdatedAt)
}

// Update replaces the stored form and bumps the version.
func (r *FormRepository) Update(ctx context.Context, form *models.RegistrationForm) error {
	fields, err := json.Marshal(form.Fields)
	if err != nil {
		return fmt.Errorf("marshal form fields: %w", err)
	}
	const q = `UPDATE registration_forms
		SET require_registration = $1, auto_approve = $2, max_attendees = $3, deadline_hours = $4, fields = $5, version = version + 1, updated_at = NOW()
		WHERE webinar_id = $6
		RETURNING version, updated_at`
	return r.pool.QueryRow(ctx, q, form.RequireRegistration, form.AutoApprove,
		form.MaxAttendees, form.DeadlineHours, fields, form.WebinarID).
		Scan(&form.Version, &form.UpdatedAt)
}
