package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeOf(t *testing.T) {
	if got := CodeOf(NotFound("gone")); got != CodeNotFound {
		t.Fatalf("CodeOf = %q", got)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Fatalf("plain error: CodeOf = %q", got)
	}
	if got := CodeOf(nil); got != "" {
		t.Fatalf("nil: CodeOf = %q", got)
	}

	// Codes survive wrapping.
	wrapped := fmt.Errorf("while registering: %w", Conflict("duplicate"))
	if !IsCode(wrapped, CodeConflict) {
		t.Fatalf("wrapped error lost its code: %v", wrapped)
	}
}

func TestDependencyUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Dependency("provider unreachable", cause)
	if !errors.Is(err, cause) {
		t.Fatal("dependency error must unwrap to its cause")
	}
	if err.Error() != "dependency: provider unreachable: connection refused" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestValidationFields(t *testing.T) {
	err := Validation("invalid input",
		FieldError{Field: "email", Message: "invalid email address"},
		FieldError{Field: "name", Message: "name is required"},
	)
	if len(err.Fields) != 2 || err.Fields[0].Field != "email" {
		t.Fatalf("fields = %+v", err.Fields)
	}
	if err.Error() != "validation: invalid input" {
		t.Fatalf("Error() = %q", err.Error())
	}
}
