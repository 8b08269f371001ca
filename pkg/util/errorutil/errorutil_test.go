package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"not found", NewNotFound("user", 42), KindNotFound},
		{"wrapped conflict", fmt.Errorf("save: %w", NewConflict("duplicate", nil)), KindConflict},
		{"forbidden", NewForbidden("no access"), KindForbidden},
		{"invalid", NewInvalidInput("lineId"), KindInvalidInput},
		{"unavailable", NewUnavailable("queue full"), KindUnavailable},
		{"foreign", errors.New("disk full"), KindUnexpected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Fatalf("KindOf() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestToDomainErrorWrapsForeignErrors(t *testing.T) {
	cause := errors.New("write failed")
	de := ToDomainError(cause)
	if de.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", de.HTTPStatus)
	}
	if !errors.Is(de, cause) {
		t.Fatalf("expected cause to be preserved")
	}
}

func TestNotFoundDetails(t *testing.T) {
	de := ToDomainError(NewNotFound("line", "42"))
	if de.Details["entity"] != "line" || de.Details["id"] != "42" {
		t.Fatalf("unexpected details: %v", de.Details)
	}
	if de.Error() != "line 42 not found" {
		t.Fatalf("unexpected message: %s", de.Error())
	}
}
