package webinars

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/models"
)

// CalculateStatus derives a webinar's status from wall-clock time.
// The window is inclusive on both ends: now == start and
// now == start+duration are both live.
func CalculateStatus(startsAt time.Time, durationMinutes int, now time.Time) models.Status {
	if now.Before(startsAt) {
		return models.StatusUpcoming
	}
	endsAt := startsAt.Add(time.Duration(durationMinutes) * time.Minute)
	if now.After(endsAt) {
		return models.StatusEnded
	}
	return models.StatusLive
}

// DisplayStatus returns the status shown to clients: the sticky go-live
// override when the host has started the stream, the time-based
// calculation otherwise.
func DisplayStatus(w *models.Webinar, now time.Time) models.Status {
	if w.StreamStatus == models.StatusLive {
		return models.StatusLive
	}
	return CalculateStatus(w.StartsAt, w.DurationMinutes, now)
}

// Slugify builds a unique slug from a title: lowercased, non-alphanumerics
// stripped, spaces to hyphens, suffixed with the creation unix timestamp so
// no collision-retry loop is needed.
func Slugify(title string, now time.Time) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if slug == "" {
		slug = "webinar"
	}
	return fmt.Sprintf("%s-%d", slug, now.Unix())
}
