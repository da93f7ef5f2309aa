package registrations

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/models"
	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/apperr"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateSubmission checks responses against a form schema and returns all
// field-level errors (no short-circuit), in ascending field order with ties
// broken by insertion order. The canonical userName/userEmail always stand
// in for the "name"/"email" fields and are enforced non-empty and
// well-formed even when a malformed schema omits or un-requires them.
// Response keys not present in the schema are ignored.
func ValidateSubmission(fields []models.FormField, userName, userEmail string, responses map[string]string) []apperr.FieldError {
	ordered := make([]models.FormField, len(fields))
	copy(ordered, fields)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	var errs []apperr.FieldError
	sawName, sawEmail := false, false

	for _, f := range ordered {
		value := submittedValue(f.ID, userName, userEmail, responses)
		trimmed := strings.TrimSpace(value)

		required := f.Required
		switch f.ID {
		case "name":
			sawName = true
			required = true
		case "email":
			sawEmail = true
			required = true
		}

		if trimmed == "" {
			if required {
				errs = append(errs, apperr.FieldError{Field: f.ID, Message: f.Label + " is required"})
			}
			continue
		}
		errs = append(errs, checkFieldValue(f, trimmed)...)
	}

	// A malformed schema may omit the structurally mandatory fields;
	// the canonical values are still enforced.
	if !sawName && strings.TrimSpace(userName) == "" {
		errs = append(errs, apperr.FieldError{Field: "name", Message: "name is required"})
	}
	if !sawEmail {
		switch {
		case strings.TrimSpace(userEmail) == "":
			errs = append(errs, apperr.FieldError{Field: "email", Message: "email is required"})
		case !emailPattern.MatchString(strings.TrimSpace(userEmail)):
			errs = append(errs, apperr.FieldError{Field: "email", Message: "invalid email address"})
		}
	}
	return errs
}

func submittedValue(fieldID, userName, userEmail string, responses map[string]string) string {
	switch fieldID {
	case "name":
		return userName
	case "email":
		return userEmail
	}
	return responses[fieldID]
}

func checkFieldValue(f models.FormField, value string) []apperr.FieldError {
	var errs []apperr.FieldError
	fail := func(msg string) {
		errs = append(errs, apperr.FieldError{Field: f.ID, Message: msg})
	}

	switch f.Type {
	case models.FieldEmail:
		if !emailPattern.MatchString(value) {
			fail("invalid email address")
		}
	case models.FieldNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			fail(f.Label + " must be a number")
			break
		}
		if v := f.Validation; v != nil {
			if v.Min != nil && n < *v.Min {
				fail(fmt.Sprintf("%s must be at least %g", f.Label, *v.Min))
			}
			if v.Max != nil && n > *v.Max {
				fail(fmt.Sprintf("%s must be at most %g", f.Label, *v.Max))
			}
		}
	case models.FieldText, models.FieldTextarea:
		if v := f.Validation; v != nil {
			if v.MinLength != nil && len(value) < *v.MinLength {
				fail(fmt.Sprintf("%s must be at least %d characters", f.Label, *v.MinLength))
			}
			if v.MaxLength != nil && len(value) > *v.MaxLength {
				fail(fmt.Sprintf("%s must be at most %d characters", f.Label, *v.MaxLength))
			}
		}
	}

	if v := f.Validation; v != nil && v.Pattern != "" {
		// An uncompilable pattern disables the check rather than
		// rejecting every submission.
		if re, err := regexp.Compile(v.Pattern); err == nil && !re.MatchString(value) {
			errs = append(errs, apperr.FieldError{Field: f.ID, Message: f.Label + " has an invalid format"})
		}
	}
	return errs
}

// NormalizeFields ensures a schema about to be saved keeps the structurally
// mandatory name/email fields present and required. Missing ones are
// prepended from the default schema; un-required ones are forced back.
func NormalizeFields(fields []models.FormField) []models.FormField {
	if len(fields) == 0 {
		return models.DefaultFormFields()
	}
	out := make([]models.FormField, len(fields))
	copy(out, fields)
	hasName, hasEmail := false, false
	for i := range out {
		switch out[i].ID {
		case "name":
			hasName = true
			out[i].Required = true
		case "email":
			hasEmail = true
			out[i].Required = true
		}
	}
	defaults := models.DefaultFormFields()
	if !hasEmail {
		out = append([]models.FormField{defaults[1]}, out...)
	}
	if !hasName {
		out = append([]models.FormField{defaults[0]}, out...)
	}
	return out
}
