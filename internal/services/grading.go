package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/writecoach-backend/internal/catalog"
	"github.com/yungbote/writecoach-backend/internal/clients/redis"
	"github.com/yungbote/writecoach-backend/internal/coaching/phase"
	"github.com/yungbote/writecoach-backend/internal/coaching/quality"
	"github.com/yungbote/writecoach-backend/internal/data/repos"
	types "github.com/yungbote/writecoach-backend/internal/domain"
	domainagg "github.com/yungbote/writecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/writecoach-backend/internal/observability"
	"github.com/yungbote/writecoach-backend/internal/platform/apierr"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
	"github.com/yungbote/writecoach-backend/internal/progress"
)

const (
	DefaultMaxRevisions   = 2
	defaultGradingLockTTL = 90 * time.Second
)

type GradeResult struct {
	Scores       map[string]float64 `json:"scores"`
	OverallScore float64            `json:"overallScore"`
	Feedback     types.Feedback     `json:"feedback"`
	NewBadges    []string           `json:"newBadges"`
}

type RevisionResult struct {
	Scores             map[string]float64 `json:"scores"`
	OverallScore       float64            `json:"overallScore"`
	Feedback           types.Feedback     `json:"feedback"`
	PreviousScores     map[string]float64 `json:"previousScores"`
	RevisionsRemaining int                `json:"revisionsRemaining"`
}

type GradingService interface {
	Grade(ctx context.Context, sessionID uuid.UUID, text string) (*GradeResult, error)
	Revise(ctx context.Context, sessionID uuid.UUID, text string) (*RevisionResult, error)
}

type GradingDeps struct {
	Log          *logger.Logger
	Metrics      *observability.Metrics
	Catalog      *catalog.Catalog
	Grader       Grader
	Locker       redis.Locker
	LockTTL      time.Duration
	Sessions     repos.SessionRepo
	Submissions  repos.SubmissionRepo
	Assessments  repos.AssessmentRepo
	Aggregate    domainagg.GradingAggregate
	Cascade      *progress.Cascade
	MaxRevisions int
	Clock        func() time.Time
}

type gradingService struct {
	deps GradingDeps
	log  *logger.Logger
}

func NewGradingService(deps GradingDeps) GradingService {
	if deps.Locker == nil {
		deps.Locker = redis.NewNoopLocker()
	}
	if deps.LockTTL <= 0 {
		deps.LockTTL = defaultGradingLockTTL
	}
	if deps.MaxRevisions <= 0 {
		deps.MaxRevisions = DefaultMaxRevisions
	}
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return time.Now().UTC() }
	}
	return &gradingService{deps: deps, log: deps.Log.With("service", "GradingService")}
}

type gradingOutcome struct {
	grade     *Grade
	committed domainagg.CommitGradingResult
	badges    []string
}

func (gs *gradingService) Grade(ctx context.Context, sessionID uuid.UUID, text string) (*GradeResult, error) {
	out, err := gs.run(ctx, sessionID, text, false)
	if err != nil {
		return nil, err
	}
	return &GradeResult{
		Scores:       out.grade.Scores,
		OverallScore: out.grade.OverallScore,
		Feedback:     out.grade.Feedback,
		NewBadges:    out.badges,
	}, nil
}

func (gs *gradingService) Revise(ctx context.Context, sessionID uuid.UUID, text string) (*RevisionResult, error) {
	out, err := gs.run(ctx, sessionID, text, true)
	if err != nil {
		return nil, err
	}
	prev := out.committed.PreviousScores
	if prev == nil {
		prev = map[string]float64{}
	}
	return &RevisionResult{
		Scores:             out.grade.Scores,
		OverallScore:       out.grade.OverallScore,
		Feedback:           out.grade.Feedback,
		PreviousScores:     prev,
		RevisionsRemaining: out.committed.RevisionsRemaining,
	}, nil
}

func (gs *gradingService) run(ctx context.Context, sessionID uuid.UUID, text string, revision bool) (*gradingOutcome, error) {
	childID, err := childFrom(ctx)
	if err != nil {
		return nil, err
	}
	if sessionID == uuid.Nil {
		return nil, apierr.Validation("invalid_session_id", "sessionId is required")
	}
	dbc := dbctx.Of(ctx)
	s, err := gs.deps.Sessions.GetByID(dbc, sessionID)
	if err != nil {
		return nil, apierr.Internal("load_session", err)
	}
	if s == nil || s.ChildID != childID {
		return nil, apierr.Ownership("session_not_found")
	}
	lesson, rubric, ok := gs.deps.Catalog.RubricFor(s.LessonID)
	if !ok {
		return nil, apierr.Internal("lesson_missing", errLessonMissing(s.LessonID))
	}

	if err := gs.precheck(dbc, s, revision); err != nil {
		return nil, err
	}
	if rej := quality.Check(text, lesson.MinWords); rej != nil {
		gs.deps.Metrics.IncQualityRejection(rej.Code)
		return nil, apierr.Unprocessable(rej.Code, rej)
	}

	release, err := gs.deps.Locker.Acquire(ctx, "grading:"+s.ID.String(), gs.deps.LockTTL)
	if err != nil {
		if errors.Is(err, redis.ErrLockHeld) {
			return nil, apierr.Conflict("grading_in_progress", "this session is already being graded")
		}
		return nil, apierr.Internal("lock", err)
	}
	defer release()

	var previous map[string]float64
	if revision {
		latest, err := gs.deps.Assessments.LatestBySession(dbc, s.ID)
		if err != nil {
			return nil, apierr.Internal("load_assessment", err)
		}
		if latest != nil {
			previous = latest.Scores.Data()
		}
	}

	grade, err := gs.deps.Grader.Grade(ctx, lesson, rubric, text, previous)
	if err != nil {
		return nil, apierr.Upstream("model_error", err)
	}

	now := gs.deps.Clock()
	committed, err := gs.deps.Aggregate.CommitGrading(ctx, domainagg.CommitGradingInput{
		ChildID:      childID,
		SessionID:    s.ID,
		Revision:     revision,
		MaxRevisions: gs.deps.MaxRevisions,
		Text:         text,
		WordCount:    quality.CountWords(text),
		Scores:       grade.Scores,
		OverallScore: grade.OverallScore,
		Feedback:     grade.Feedback,
		EventAt:      now,
	})
	if err != nil {
		return nil, mapAggregateError(err)
	}

	res := gs.deps.Cascade.Run(ctx, progress.Event{
		ChildID:      childID,
		SessionID:    s.ID,
		LessonID:     s.LessonID,
		AssessmentID: committed.Assessment.ID,
		OverallScore: grade.OverallScore,
		WordCount:    committed.Submission.WordCount,
		Revision:     revision,
		At:           committed.Assessment.CreatedAt,
	})
	gs.log.Info("Submission graded",
		"session_id", s.ID,
		"revision", committed.Submission.RevisionNumber,
		"overall", grade.OverallScore,
		"new_badges", len(res.NewBadges),
	)
	return &gradingOutcome{grade: grade, committed: committed, badges: res.NewBadges}, nil
}

// precheck rejects requests the aggregate would refuse before spending a
// model call on them. The aggregate repeats every check under its lock.
func (gs *gradingService) precheck(dbc dbctx.Context, s *types.Session, revision bool) error {
	if !revision {
		if s.CurrentPhase() != phase.Assessment {
			return apierr.Validation("phase_mismatch", fmt.Sprintf("session is in phase %s, expected assessment", s.Phase))
		}
		return nil
	}
	if s.CurrentPhase() != phase.Feedback {
		return apierr.Validation("phase_mismatch", fmt.Sprintf("session is in phase %s, expected feedback", s.Phase))
	}
	used, err := gs.deps.Submissions.CountBySession(dbc, s.ID)
	if err != nil {
		return apierr.Internal("count_submissions", err)
	}
	if int(used) > gs.deps.MaxRevisions {
		return apierr.RevisionLimit("Maximum revisions reached")
	}
	return nil
}
