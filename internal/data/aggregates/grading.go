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

const DefaultMaxRevisions = 2

type GradingAggregateDeps struct {
	Base BaseDeps

	Sessions    repos.SessionRepo
	Submissions repos.SubmissionRepo
	Assessments repos.AssessmentRepo
}

type gradingAggregate struct {
	deps GradingAggregateDeps
}

func NewGradingAggregate(deps GradingAggregateDeps) domainagg.GradingAggregate {
	deps.Base = deps.Base.withDefaults()
	return &gradingAggregate{deps: deps}
}

func (a *gradingAggregate) Contract() domainagg.Contract {
	return domainagg.GradingAggregateContract
}

func (a *gradingAggregate) CommitGrading(ctx context.Context, in domainagg.CommitGradingInput) (domainagg.CommitGradingResult, error) {
	op := "Coaching.Grading.Commit"
	if in.Revision {
		op = "Coaching.Grading.CommitRevision"
	}
	var out domainagg.CommitGradingResult
	if in.ChildID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing child_id", nil)
	}
	if in.SessionID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing session_id", nil)
	}
	if strings.TrimSpace(in.Text) == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing submission text", nil)
	}
	if len(in.Scores) == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing scores", nil)
	}
	if a.deps.Sessions == nil || a.deps.Submissions == nil || a.deps.Assessments == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "grading aggregate repos not configured", nil)
	}
	maxRevisions := in.MaxRevisions
	if maxRevisions <= 0 {
		maxRevisions = DefaultMaxRevisions
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

		used, err := a.deps.Submissions.CountBySession(dbc, s.ID)
		if err != nil {
			return err
		}

		sub := &types.WritingSubmission{
			ID:        uuid.New(),
			SessionID: s.ID,
			ChildID:   s.ChildID,
			LessonID:  s.LessonID,
			Text:      in.Text,
			WordCount: in.WordCount,
			CreatedAt: at,
		}

		if in.Revision {
			if err := RequirePhase(s.Phase, string(phase.Feedback)); err != nil {
				return err
			}
			if used == 0 {
				return InvariantError("no graded submission to revise")
			}
			revisionNumber := int(used)
			if revisionNumber > maxRevisions {
				return domainagg.NewError(domainagg.CodeLimitExceeded, op, "Maximum revisions reached", nil)
			}
			prev, err := a.deps.Submissions.LatestBySession(dbc, s.ID)
			if err != nil {
				return err
			}
			if prev != nil {
				sub.RevisionOf = &prev.ID
			}
			prevAssessment, err := a.deps.Assessments.LatestBySession(dbc, s.ID)
			if err != nil {
				return err
			}
			if prevAssessment != nil {
				out.PreviousScores = prevAssessment.Scores.Data()
			}
			sub.RevisionNumber = revisionNumber
		} else {
			if err := RequirePhase(s.Phase, string(phase.Assessment)); err != nil {
				return err
			}
			if used > 0 {
				return ConflictError("session already has a graded submission")
			}
		}

		if _, err := a.deps.Submissions.Create(dbc, []*types.WritingSubmission{sub}); err != nil {
			return err
		}
		asmt := &types.Assessment{
			ID:           uuid.New(),
			SessionID:    s.ID,
			SubmissionID: sub.ID,
			ChildID:      s.ChildID,
			LessonID:     s.LessonID,
			Scores:       datatypes.NewJSONType(in.Scores),
			OverallScore: in.OverallScore,
			Feedback:     datatypes.NewJSONType(in.Feedback),
			CreatedAt:    at,
		}
		if _, err := a.deps.Assessments.Create(dbc, []*types.Assessment{asmt}); err != nil {
			return err
		}

		if in.Revision {
			if err := a.deps.Sessions.UpdateFields(dbc, s.ID, map[string]interface{}{"updated_at": at}); err != nil {
				return err
			}
		} else {
			next, err := phase.CompleteGrading(s.CurrentPhase())
			if err != nil {
				return InvariantError(err.Error())
			}
			ok, err := a.deps.Base.CASGuard.UpdateByPhase(dbc, s.TableName(), s.ID, []string{string(phase.Assessment)}, map[string]any{
				"phase":      string(next),
				"updated_at": at,
			})
			if err != nil {
				return err
			}
			if err := RequireCASSuccess(ok, "session left assessment while grading"); err != nil {
				return err
			}
			s.Phase = string(next)
		}
		s.UpdatedAt = at

		out.Session = s
		out.Submission = sub
		out.Assessment = asmt
		out.RevisionsRemaining = maxRevisions - sub.RevisionNumber
		return nil
	})
	if err != nil {
		return domainagg.CommitGradingResult{}, err
	}
	return out, nil
}
