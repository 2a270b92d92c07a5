package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/writecoach-backend/internal/domain/coaching"
)

var GradingAggregateContract = Contract{
	Name:   "Coaching.GradingAggregate",
	Tables: []string{"writing_submission", "assessment", "lesson_session"},
	Guards: []string{"session row lock", "unique (session_id, revision_number)", "phase compare-and-set"},
	Notes:  "Submission and assessment are written together; the revision cap is counted inside the same transaction.",
}

// GradingAggregate owns grading and revision invariants for a session.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeInvariantViolation (phase mismatch),
// CodeLimitExceeded (revision cap reached), CodeConflict, CodeRetryable, CodeInternal.
type GradingAggregate interface {
	Aggregate

	// CommitGrading persists a graded submission and its assessment together.
	// Originals move the session to feedback; revisions require feedback.
	CommitGrading(ctx context.Context, in CommitGradingInput) (CommitGradingResult, error)
}

type CommitGradingInput struct {
	ChildID   uuid.UUID
	SessionID uuid.UUID
	// Revision selects the revision path. MaxRevisions bounds it.
	Revision     bool
	MaxRevisions int

	Text         string
	WordCount    int
	Scores       map[string]float64
	OverallScore float64
	Feedback     coaching.Feedback
	EventAt      time.Time
}

type CommitGradingResult struct {
	Session    *coaching.Session
	Submission *coaching.WritingSubmission
	Assessment *coaching.Assessment
	// PreviousScores are the scores of the newest assessment before this
	// one. Nil for originals.
	PreviousScores     map[string]float64
	RevisionsRemaining int
}
