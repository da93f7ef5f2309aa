package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a webinar relative to wall-clock time.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusLive     Status = "live"
	StatusEnded    Status = "ended"
)

// Webinar represents a scheduled, time-boxed live session.
// Status is recomputed from StartsAt/DurationMinutes on every read;
// StreamStatus is the sticky "host pressed go-live" flag that bypasses
// the time-based calculation until an explicit end.
type Webinar struct {
	ID              uuid.UUID `json:"id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
	CallID          string    `json:"call_id"`
	Status          Status    `json:"status"`
	StreamStatus    Status    `json:"stream_status"`
	Capacity        int       `json:"capacity"`
	CreatedBy       uuid.UUID `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EndsAt returns the scheduled end instant.
func (w *Webinar) EndsAt() time.Time {
	return w.StartsAt.Add(time.Duration(w.DurationMinutes) * time.Minute)
}
