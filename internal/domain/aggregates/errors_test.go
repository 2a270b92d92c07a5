package aggregates

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodeHelpers(t *testing.T) {
	base := NewError(CodeLimitExceeded, "Coaching.Grading.Commit", "maximum revisions reached", nil)
	wrapped := fmt.Errorf("revise: %w", base)

	if !IsCode(wrapped, CodeLimitExceeded) {
		t.Fatalf("IsCode: want=true")
	}
	if got := CodeOf(wrapped); got != CodeLimitExceeded {
		t.Fatalf("CodeOf: want=%s got=%s", CodeLimitExceeded, got)
	}
	if got := MessageOf(wrapped); got != "maximum revisions reached" {
		t.Fatalf("MessageOf: got=%q", got)
	}
	if got := MessageOf(errors.New("plain")); got != "plain" {
		t.Fatalf("MessageOf plain: got=%q", got)
	}
	if Wrap(CodeInternal, "op", nil) != nil {
		t.Fatalf("Wrap(nil) should be nil")
	}
}

func TestContractString(t *testing.T) {
	if !GradingAggregateContract.Owns("assessment") || GradingAggregateContract.Owns("session_turn") {
		t.Fatalf("grading aggregate ownership mismatch: %v", GradingAggregateContract.Tables)
	}
	want := "Coaching.ConversationAggregate writes=[lesson_session,session_turn] " +
		"guards=[session version compare-and-set,unique (session_id, seq)]"
	if got := ConversationAggregateContract.String(); got != want {
		t.Fatalf("String: want=%q got=%q", want, got)
	}
}

func TestConcurrentCodes(t *testing.T) {
	for code, want := range map[ErrorCode]bool{
		CodeConflict:           true,
		CodeRetryable:          true,
		CodePreconditionFailed: true,
		CodeLimitExceeded:      false,
		CodeInvariantViolation: false,
		CodeValidation:         false,
	} {
		if got := code.Concurrent(); got != want {
			t.Fatalf("%s: want=%v got=%v", code, want, got)
		}
	}
	if got := NewError(CodeNotFound, "Coaching.Grading.Commit", "", nil).Error(); got != "Coaching.Grading.Commit (not_found)" {
		t.Fatalf("Error(): got=%q", got)
	}
}
