package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("store: create track: %w", Constraint("unique name %q", "Intro"))
	if !errors.Is(err, ErrConstraintViolation) {
		t.Fatalf("errors.Is(ConstraintViolation) = false for %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("constraint error should not match ErrNotFound")
	}
	if got := Constraint("unique name %q", "Intro").Error(); got != `constraint violation: unique name "Intro"` {
		t.Errorf("message = %q", got)
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("artist", 7)
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected ErrNotFound")
	}
	if err.Error() != "not found: artist 7" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestInvalid(t *testing.T) {
	err := Invalid(errors.New("name: cannot be blank."))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatal("expected ErrInvalidInput")
	}
}
