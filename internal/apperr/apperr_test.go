package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("quiz", 7), KindNotFound},
		{"wrapped forbidden", fmt.Errorf("delete question: %w", Forbidden("not owner")), KindForbidden},
		{"validation", Validation("bad id"), KindValidation},
		{"conflict", Conflict("attempt is graded"), KindConflict},
		{"driver error", errors.New("connection reset"), KindStorage},
		{"deadline", context.DeadlineExceeded, KindStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSentinelsMatchByKind(t *testing.T) {
	err := fmt.Errorf("get attempt: %w", NotFound("attempt", 3))

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("errors.Is(err, ErrNotFound) = false, want true")
	}
	if errors.Is(err, ErrForbidden) {
		t.Fatalf("errors.Is(err, ErrForbidden) = true, want false")
	}
	if errors.Is(NotFound("quiz", 1), NotFound("quiz", 1)) {
		t.Fatalf("distinct non-sentinel errors must not match")
	}
}

func TestMessage(t *testing.T) {
	if got := Message(NotFound("quiz", 7)); got != "quiz 7 not found" {
		t.Fatalf("Message() = %q", got)
	}
	if got := Message(errors.New("pq: relation does not exist")); got != "storage failure" {
		t.Fatalf("Message() leaked storage detail: %q", got)
	}
}

func TestStorageKeepsClassifiedErrors(t *testing.T) {
	nf := NotFound("option", 9)
	if got := Storage("grade", nf); got != error(nf) {
		t.Fatalf("Storage() rewrapped a classified error")
	}

	wrapped := Storage("grade", errors.New("boom"))
	if KindOf(wrapped) != KindStorage || wrapped.Error() != "grade: boom" {
		t.Fatalf("Storage() = %v", wrapped)
	}
	if Storage("noop", nil) != nil {
		t.Fatalf("Storage(nil) must be nil")
	}
}
