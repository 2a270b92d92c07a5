package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/writecoach-backend/internal/coaching/phase"
	"github.com/yungbote/writecoach-backend/internal/data/repos"
	types "github.com/yungbote/writecoach-backend/internal/domain"
	domainagg "github.com/yungbote/writecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
)

type ConversationAggregateDeps struct {
	Base BaseDeps

	Sessions repos.SessionRepo
	Turns    repos.TurnRepo
}

type conversationAggregate struct {
	deps ConversationAggregateDeps
}

func NewConversationAggregate(deps ConversationAggregateDeps) domainagg.ConversationAggregate {
	deps.Base = deps.Base.withDefaults()
	return &conversationAggregate{deps: deps}
}

func (a *conversationAggregate) Contract() domainagg.Contract {
	return domainagg.ConversationAggregateContract
}

func (a *conversationAggregate) StartSession(ctx context.Context, in domainagg.StartSessionInput) (domainagg.StartSessionResult, error) {
	const op = "Coaching.Conversation.Start"
	var out domainagg.StartSessionResult
	if in.ChildID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing child_id", nil)
	}
	lessonID := strings.TrimSpace(in.LessonID)
	if lessonID == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing lesson_id", nil)
	}
	if strings.TrimSpace(in.Greeting) == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing greeting", nil)
	}
	if a.deps.Sessions == nil || a.deps.Turns == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "conversation aggregate repos not configured", nil)
	}
	at := a.deps.Base.eventTime(in.EventAt)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s := &types.Session{
			ID:        uuid.New(),
			ChildID:   in.ChildID,
			LessonID:  lessonID,
			Phase:     string(phase.Instruction),
			NextSeq:   1,
			CreatedAt: at,
			UpdatedAt: at,
		}
		if _, err := a.deps.Sessions.Create(dbc, []*types.Session{s}); err != nil {
			return err
		}
		greeting := &types.Turn{
			ID:          uuid.New(),
			SessionID:   s.ID,
			Seq:         0,
			Role:        types.RoleCoach,
			Content:     in.Greeting,
			Affordances: datatypes.NewJSONType(in.Affordances),
			CreatedAt:   at,
		}
		if _, err := a.deps.Turns.Create(dbc, []*types.Turn{greeting}); err != nil {
			return err
		}
		out.Session = s
		out.Turns = []*types.Turn{greeting}
		return nil
	})
	if err != nil {
		return domainagg.StartSessionResult{}, err
	}
	return out, nil
}

func (a *conversationAggregate) CommitCycle(ctx context.Context, in domainagg.CommitCycleInput) (domainagg.CommitCycleResult, error) {
	const op = "Coaching.Conversation.Cycle"
	var out domainagg.CommitCycleResult
	if in.ChildID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing child_id", nil)
	}
	if in.SessionID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing session_id", nil)
	}
	if len(in.Turns) == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "no turns to append", nil)
	}
	for _, t := range in.Turns {
		if t.Role != types.RoleCoach && t.Role != types.RoleStudent {
			return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("invalid turn role %q", t.Role), nil)
		}
	}
	if !in.Phase.Valid() {
		return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("invalid phase %q", in.Phase), nil)
	}
	if a.deps.Sessions == nil || a.deps.Turns == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "conversation aggregate repos not configured", nil)
	}
	at := a.deps.Base.eventTime(in.EventAt)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.deps.Sessions.LockByID(dbc, in.SessionID)
		if err != nil {
			return err
		}
		if s == nil || s.ChildID != in.ChildID {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("session not found: %s", in.SessionID), nil)
		}
		if err := RequireVersionMatch(s.Version, in.ExpectedVersion); err != nil {
			return err
		}
		if in.Phase.Rank() < s.CurrentPhase().Rank() {
			return InvariantError(fmt.Sprintf("phase cannot move back from %s to %s", s.Phase, in.Phase))
		}

		rows := make([]*types.Turn, 0, len(in.Turns))
		seq := s.NextSeq
		for _, t := range in.Turns {
			rows = append(rows, &types.Turn{
				ID:          uuid.New(),
				SessionID:   s.ID,
				Seq:         seq,
				Role:        t.Role,
				Content:     t.Content,
				Affordances: datatypes.NewJSONType(t.Affordances),
				CreatedAt:   at,
			})
			seq++
		}
		if _, err := a.deps.Turns.Create(dbc, rows); err != nil {
			return err
		}

		updates := types.PhaseUpdates(in.Phase, in.State)
		updates["next_seq"] = seq
		updates["updated_at"] = at
		ok, err := a.deps.Base.CASGuard.UpdateByVersion(dbc, s.TableName(), s.ID, in.ExpectedVersion, updates)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "session changed during this request"); err != nil {
			return err
		}

		applySessionState(s, in.Phase, in.State)
		s.NextSeq = seq
		s.Version = in.ExpectedVersion + 1
		s.UpdatedAt = at
		out.Session = s
		out.Turns = rows
		return nil
	})
	if err != nil {
		return domainagg.CommitCycleResult{}, err
	}
	return out, nil
}

func applySessionState(s *types.Session, p phase.Phase, st phase.State) {
	s.Phase = string(p)
	s.InstructionCompleted = st.InstructionCompleted
	s.ComprehensionCheckPassed = st.ComprehensionCheckPassed
	s.GuidedAttempts = st.GuidedAttempts
	s.HintsGiven = st.HintsGiven
	s.GuidedComplete = st.GuidedComplete
	s.WritingStartedAt = st.WritingStartedAt
}
