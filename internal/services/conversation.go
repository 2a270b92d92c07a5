package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/writecoach-backend/internal/catalog"
	"github.com/yungbote/writecoach-backend/internal/clients/llm"
	"github.com/yungbote/writecoach-backend/internal/coaching/markers"
	"github.com/yungbote/writecoach-backend/internal/coaching/phase"
	"github.com/yungbote/writecoach-backend/internal/data/repos"
	types "github.com/yungbote/writecoach-backend/internal/domain"
	domainagg "github.com/yungbote/writecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/writecoach-backend/internal/platform/apierr"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

// Affordances are the UI directives decoded from a coach reply.
type Affordances = types.Affordances

func affordancesOf(sig markers.Signals) Affordances {
	return Affordances{
		Step:         sig.Step,
		GuidedStage:  sig.GuidedStage,
		AnswerType:   sig.AnswerType,
		Options:      sig.Options,
		Passage:      sig.Passage,
		AnswerPrompt: sig.AnswerPrompt,
	}
}

type SessionView struct {
	ID               uuid.UUID         `json:"id"`
	LessonID         string            `json:"lessonId"`
	Phase            string            `json:"phase"`
	PhaseState       phase.State       `json:"phaseState"`
	Version          int               `json:"version"`
	History          []*types.Turn     `json:"history"`
	Affordances      Affordances       `json:"affordances"`
	LatestAssessment *types.Assessment `json:"latestAssessment,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
}

type ChatReply struct {
	SessionID    uuid.UUID   `json:"sessionId"`
	Reply        string      `json:"reply"`
	Phase        string      `json:"phase"`
	PhaseState   phase.State `json:"phaseState"`
	Transitioned bool        `json:"transitioned"`
	Version      int         `json:"version"`
	Affordances  Affordances `json:"affordances"`
}

type ConversationService interface {
	StartSession(ctx context.Context, lessonID string) (*SessionView, error)
	Chat(ctx context.Context, sessionID uuid.UUID, message string) (*ChatReply, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionView, error)
}

type ConversationDeps struct {
	Log         *logger.Logger
	Catalog     *catalog.Catalog
	Model       llm.Model
	Sessions    repos.SessionRepo
	Turns       repos.TurnRepo
	Assessments repos.AssessmentRepo
	Aggregate   domainagg.ConversationAggregate
	Clock       func() time.Time
}

type conversationService struct {
	deps ConversationDeps
	log  *logger.Logger
}

func NewConversationService(deps ConversationDeps) ConversationService {
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return time.Now().UTC() }
	}
	return &conversationService{deps: deps, log: deps.Log.With("service", "ConversationService")}
}

func (cs *conversationService) StartSession(ctx context.Context, lessonID string) (*SessionView, error) {
	childID, err := childFrom(ctx)
	if err != nil {
		return nil, err
	}
	lessonID = strings.TrimSpace(lessonID)
	lesson, ok := cs.deps.Catalog.Lesson(lessonID)
	if !ok {
		return nil, apierr.NotFound("lesson_not_found", "lesson not found")
	}

	raw, err := cs.deps.Model.Complete(ctx, greetingPrompt(lesson), nil)
	if err != nil {
		cs.log.Warn("Greeting generation failed", "lesson_id", lesson.ID, "error", err)
		return nil, apierr.Upstream("model_error", err)
	}
	greeting := markers.StripPhaseMarkers(raw)
	if strings.TrimSpace(greeting) == "" {
		greeting = "Hi! Today's lesson is " + lesson.Title + ". Are you ready?"
	}

	affordances := affordancesOf(markers.Decode(raw))
	res, err := cs.deps.Aggregate.StartSession(ctx, domainagg.StartSessionInput{
		ChildID:     childID,
		LessonID:    lesson.ID,
		Greeting:    greeting,
		Affordances: affordances,
		EventAt:     cs.deps.Clock(),
	})
	if err != nil {
		return nil, mapAggregateError(err)
	}
	s := res.Session
	return &SessionView{
		ID:          s.ID,
		LessonID:    s.LessonID,
		Phase:       s.Phase,
		PhaseState:  s.PhaseState(),
		Version:     s.Version,
		History:     res.Turns,
		Affordances: affordances,
		CreatedAt:   s.CreatedAt,
	}, nil
}

func (cs *conversationService) Chat(ctx context.Context, sessionID uuid.UUID, message string) (*ChatReply, error) {
	childID, err := childFrom(ctx)
	if err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apierr.Validation("empty_message", "message is required")
	}
	s, err := cs.ownedSession(ctx, childID, sessionID)
	if err != nil {
		return nil, err
	}
	lesson, ok := cs.deps.Catalog.Lesson(s.LessonID)
	if !ok {
		return nil, apierr.Internal("lesson_missing", errLessonMissing(s.LessonID))
	}
	turns, err := cs.deps.Turns.ListBySession(dbctx.Of(ctx), s.ID)
	if err != nil {
		return nil, apierr.Internal("load_turns", err)
	}

	current := s.CurrentPhase()
	state := phase.OnStudentMessage(current, s.PhaseState())
	history := make([]llm.Turn, 0, len(turns)+1)
	for _, t := range turns {
		history = append(history, llm.Turn{Role: t.Role, Content: t.Content})
	}
	history = append(history, llm.Turn{Role: llm.RoleStudent, Content: message})

	raw, err := cs.deps.Model.Complete(ctx, coachSystemPrompt(lesson, current, state), history)
	if err != nil {
		return nil, apierr.Upstream("model_error", err)
	}
	now := cs.deps.Clock()
	sig := markers.Decode(raw)
	next, state, outcome := phase.ApplyReply(current, state, sig, now)
	if outcome.Suppressed {
		cs.log.Debug("Phase transition suppressed", "session_id", s.ID, "phase", current, "directive", sig.Transition)
	}
	reply := markers.StripPhaseMarkers(raw)
	affordances := affordancesOf(sig)

	res, err := cs.deps.Aggregate.CommitCycle(ctx, domainagg.CommitCycleInput{
		ChildID:         childID,
		SessionID:       s.ID,
		ExpectedVersion: s.Version,
		Turns: []domainagg.TurnInput{
			{Role: types.RoleStudent, Content: message},
			{Role: types.RoleCoach, Content: reply, Affordances: affordances},
		},
		Phase:   next,
		State:   state,
		EventAt: now,
	})
	if err != nil {
		return nil, mapAggregateError(err)
	}
	if outcome.Transitioned {
		cs.log.Info("Session phase advanced", "session_id", s.ID, "from", outcome.From, "to", outcome.To)
	}
	return &ChatReply{
		SessionID:    s.ID,
		Reply:        reply,
		Phase:        res.Session.Phase,
		PhaseState:   res.Session.PhaseState(),
		Transitioned: outcome.Transitioned,
		Version:      res.Session.Version,
		Affordances:  affordances,
	}, nil
}

func (cs *conversationService) GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionView, error) {
	childID, err := childFrom(ctx)
	if err != nil {
		return nil, err
	}
	s, err := cs.ownedSession(ctx, childID, sessionID)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Of(ctx)
	turns, err := cs.deps.Turns.ListBySession(dbc, s.ID)
	if err != nil {
		return nil, apierr.Internal("load_turns", err)
	}
	latest, err := cs.deps.Assessments.LatestBySession(dbc, s.ID)
	if err != nil {
		return nil, apierr.Internal("load_assessment", err)
	}
	view := &SessionView{
		ID:               s.ID,
		LessonID:         s.LessonID,
		Phase:            s.Phase,
		PhaseState:       s.PhaseState(),
		Version:          s.Version,
		History:          turns,
		LatestAssessment: latest,
		CreatedAt:        s.CreatedAt,
	}
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == types.RoleCoach {
			view.Affordances = turns[i].Affordances.Data()
			break
		}
	}
	return view, nil
}

func (cs *conversationService) ownedSession(ctx context.Context, childID, sessionID uuid.UUID) (*types.Session, error) {
	if sessionID == uuid.Nil {
		return nil, apierr.Validation("invalid_session_id", "sessionId is required")
	}
	s, err := cs.deps.Sessions.GetByID(dbctx.Of(ctx), sessionID)
	if err != nil {
		return nil, apierr.Internal("load_session", err)
	}
	if s == nil || s.ChildID != childID {
		return nil, apierr.Ownership("session_not_found")
	}
	return s, nil
}
