package webinars

import (
	"strings"
	"testing"
	"time"

	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/models"
)

func TestCalculateStatusBoundaries(t *testing.T) {
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	const duration = 60

	cases := []struct {
		name string
		now  time.Time
		want models.Status
	}{
		{"well before start", start.Add(-24 * time.Hour), models.StatusUpcoming},
		{"1ms before start", start.Add(-time.Millisecond), models.StatusUpcoming},
		{"exactly at start", start, models.StatusLive},
		{"mid session", start.Add(30 * time.Minute), models.StatusLive},
		{"exactly at end", start.Add(60 * time.Minute), models.StatusLive},
		{"1ms after end", start.Add(60*time.Minute + time.Millisecond), models.StatusEnded},
		{"long after end", start.Add(48 * time.Hour), models.StatusEnded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CalculateStatus(start, duration, tc.now); got != tc.want {
				t.Fatalf("CalculateStatus(%v) = %s, want %s", tc.now, got, tc.want)
			}
		})
	}
}

func TestCalculateStatusMonotonic(t *testing.T) {
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	const duration = 45

	rank := map[models.Status]int{models.StatusUpcoming: 0, models.StatusLive: 1, models.StatusEnded: 2}
	prev := -1
	for now := start.Add(-2 * time.Hour); now.Before(start.Add(3 * time.Hour)); now = now.Add(time.Minute) {
		got := rank[CalculateStatus(start, duration, now)]
		if got < prev {
			t.Fatalf("status went backwards at %v", now)
		}
		prev = got
	}
}

func TestDisplayStatusForcedLive(t *testing.T) {
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	w := &models.Webinar{
		StartsAt:        start,
		DurationMinutes: 60,
		StreamStatus:    models.StatusLive,
	}
	// Forced live bypasses the time window in both directions.
	if got := DisplayStatus(w, start.Add(-time.Hour)); got != models.StatusLive {
		t.Fatalf("before start: got %s, want live", got)
	}
	if got := DisplayStatus(w, start.Add(3*time.Hour)); got != models.StatusLive {
		t.Fatalf("after end: got %s, want live", got)
	}

	w.StreamStatus = models.StatusUpcoming
	if got := DisplayStatus(w, start.Add(-time.Hour)); got != models.StatusUpcoming {
		t.Fatalf("not forced: got %s, want upcoming", got)
	}
}

func TestSlugify(t *testing.T) {
	now := time.Unix(1756500000, 0)

	cases := []struct {
		title string
		want  string
	}{
		{"Scaling Go Services", "scaling-go-services-1756500000"},
		{"  Q&A: Ask Me Anything!  ", "qa-ask-me-anything-1756500000"},
		{"???", "webinar-1756500000"},
		{"a  --  b", "a-b-1756500000"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.title, now); got != tc.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}

	// Distinct creation instants give distinct slugs for the same title.
	a := Slugify("Same Title", time.Unix(100, 0))
	b := Slugify("Same Title", time.Unix(101, 0))
	if a == b {
		t.Fatalf("expected unique slugs, got %q twice", a)
	}
	if !strings.HasPrefix(a, "same-title-") {
		t.Fatalf("unexpected slug %q", a)
	}
}
