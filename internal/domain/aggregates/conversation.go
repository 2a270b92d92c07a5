package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/writecoach-backend/internal/coaching/phase"
	"github.com/yungbote/writecoach-backend/internal/domain/coaching"
)

var ConversationAggregateContract = Contract{
	Name:   "Coaching.ConversationAggregate",
	Tables: []string{"lesson_session", "session_turn"},
	Guards: []string{"session version compare-and-set", "unique (session_id, seq)"},
	Notes:  "Turns are append-only; phase and phase state move with the turns they came from.",
}

// ConversationAggregate owns the session turn log and phase state.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeInvariantViolation, CodeRetryable, CodeInternal.
type ConversationAggregate interface {
	Aggregate

	// StartSession creates a session in instruction together with its
	// opening coach turn.
	StartSession(ctx context.Context, in StartSessionInput) (StartSessionResult, error)

	// CommitCycle appends turns and persists the session phase and state,
	// guarded by the session version read before the model call.
	CommitCycle(ctx context.Context, in CommitCycleInput) (CommitCycleResult, error)
}

type TurnInput struct {
	Role        string
	Content     string
	Affordances coaching.Affordances
}

type StartSessionInput struct {
	ChildID  uuid.UUID
	LessonID string
	Greeting    string
	Affordances coaching.Affordances
	EventAt     time.Time
}

type StartSessionResult struct {
	Session *coaching.Session
	Turns   []*coaching.Turn
}

type CommitCycleInput struct {
	ChildID         uuid.UUID
	SessionID       uuid.UUID
	ExpectedVersion int
	Turns           []TurnInput
	Phase           phase.Phase
	State           phase.State
	EventAt         time.Time
}

type CommitCycleResult struct {
	Session *coaching.Session
	Turns   []*coaching.Turn
}
