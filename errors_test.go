package lazyline

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	errs := []error{
		ErrClosed,
		ErrNotFound,
		ErrSourceMissing,
		ErrCorruptCache,
		ErrLineTooLong,
		ErrInvalidThreshold,
		ErrInvalidPattern,
	}

	seen := make(map[string]int)
	for i, err := range errs {
		if err == nil {
			t.Fatalf("error at index %d is nil", i)
		}
		msg := err.Error()
		if prev, ok := seen[msg]; ok {
			t.Errorf("error at index %d has same message as index %d: %q", i, prev, msg)
		}
		seen[msg] = i
	}
}

// TestErrorsWrapped verifies the sentinels survive the wrapping the
// store applies, and do not match each other.
func TestErrorsWrapped(t *testing.T) {
	wrapped := fmt.Errorf("build %q: %w: %w", "colors", ErrSourceMissing, errors.New("no such file"))
	if !errors.Is(wrapped, ErrSourceMissing) {
		t.Error("wrapped error lost ErrSourceMissing")
	}
	if errors.Is(wrapped, ErrNotFound) {
		t.Error("ErrSourceMissing matched ErrNotFound")
	}
}
