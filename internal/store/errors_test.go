package store

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorSentinelIdentity(t *testing.T) {
	if !errors.Is(ErrNotFound, ErrNotFound) {
		t.Error("sentinel should match itself")
	}
	if errors.Is(ErrNotFound, ErrAlreadyExists) {
		t.Error("distinct sentinels should not match")
	}
}

func TestErrorDerivedStillMatchesSentinel(t *testing.T) {
	derived := ErrStaleStatus.WithMessage("asset already done")
	if !errors.Is(derived, ErrStaleStatus) {
		t.Error("WithMessage should preserve sentinel identity")
	}

	caused := ErrInvalidInput.WithCause(fmt.Errorf("bad cursor"))
	if !errors.Is(caused, ErrInvalidInput) {
		t.Error("WithCause should preserve sentinel identity")
	}

	// Chained derivation keeps the original sentinel.
	chained := derived.WithCause(fmt.Errorf("underlying"))
	if !errors.Is(chained, ErrStaleStatus) {
		t.Error("chained derivation should preserve sentinel identity")
	}
}

func TestErrorMessageAndCause(t *testing.T) {
	cause := fmt.Errorf("disk io")
	err := ErrNotFound.WithMessage("asset missing").WithCause(cause)

	if err.HTTPCode() != http.StatusNotFound {
		t.Errorf("HTTPCode: got %d", err.HTTPCode())
	}
	if got := err.Error(); got != "asset missing: disk io" {
		t.Errorf("Error(): got %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap should expose the cause")
	}
}

func TestPaginationValidate(t *testing.T) {
	p := PaginationParams{Limit: -5}
	p.Validate()
	if p.Limit != 100 {
		t.Errorf("default limit: got %d", p.Limit)
	}

	p = PaginationParams{Limit: 5000}
	p.Validate()
	if p.Limit != 1000 {
		t.Errorf("capped limit: got %d", p.Limit)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	key := "2026-08-31T10:00:00Z|asset-abc"
	cursor := EncodeCursor(key)
	got, err := DecodeCursor(cursor)
	if err != nil {
		t.Fatalf("DecodeCursor: %v", err)
	}
	if got != key {
		t.Errorf("round trip: got %q, want %q", got, key)
	}

	if _, err := DecodeCursor("not-base64!!!"); err == nil {
		t.Error("expected error for malformed cursor")
	}

	if c := EncodeCursor(""); c != "" {
		t.Errorf("empty key should encode to empty cursor, got %q", c)
	}
}
