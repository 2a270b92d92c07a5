package aggregates_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/writecoach-backend/internal/coaching/phase"
	"github.com/yungbote/writecoach-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/writecoach-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/writecoach-backend/internal/data/repos"
	repotest "github.com/yungbote/writecoach-backend/internal/data/repos/testutil"
	types "github.com/yungbote/writecoach-backend/internal/domain"
	domainagg "github.com/yungbote/writecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
)

type gradingFixture struct {
	tx    *gorm.DB
	set   repos.Set
	hooks *aggtest.HooksRecorder
	agg   domainagg.GradingAggregate
}

func newGradingFixture(t *testing.T, runner aggregates.TxRunner) gradingFixture {
	t.Helper()
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	set := repos.NewSet(tx, repotest.Logger(t))
	hooks := &aggtest.HooksRecorder{}
	if runner == nil {
		runner = aggregates.NewGormTxRunner(tx)
	}
	agg := aggregates.NewGradingAggregate(aggregates.GradingAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:       tx,
			Runner:   runner,
			Hooks:    hooks,
			CASGuard: aggregates.NewCASGuard(tx),
		},
		Sessions:    set.Sessions,
		Submissions: set.Submissions,
		Assessments: set.Assessments,
	})
	return gradingFixture{tx: tx, set: set, hooks: hooks, agg: agg}
}

func gradingInput(s *types.Session, revision bool, overall float64) domainagg.CommitGradingInput {
	return domainagg.CommitGradingInput{
		ChildID:      s.ChildID,
		SessionID:    s.ID,
		Revision:     revision,
		MaxRevisions: aggregates.DefaultMaxRevisions,
		Text:         "The lighthouse keeper climbed the stairs every night to light the lamp.",
		WordCount:    13,
		Scores:       map[string]float64{"ideas": overall, "organization": overall},
		OverallScore: overall,
		Feedback:     types.Feedback{Strength: "Vivid setting.", Growth: "Add dialogue.", Encouragement: "Keep going!"},
		EventAt:      time.Now().UTC(),
	}
}

func TestGradingAggregateOriginalMovesToFeedback(t *testing.T) {
	f := newGradingFixture(t, nil)
	ctx := context.Background()
	s := repotest.SeedSession(t, ctx, f.tx, uuid.New(), "narrative-1", phase.Assessment)

	res, err := f.agg.CommitGrading(ctx, gradingInput(s, false, 3))
	if err != nil {
		t.Fatalf("CommitGrading: %v", err)
	}
	if res.Session.Phase != string(phase.Feedback) {
		t.Fatalf("phase: want=feedback got=%s", res.Session.Phase)
	}
	if res.Submission.RevisionNumber != 0 || res.Submission.RevisionOf != nil {
		t.Fatalf("original submission: %+v", res.Submission)
	}
	if res.RevisionsRemaining != 2 || res.PreviousScores != nil {
		t.Fatalf("result: remaining=%d previous=%v", res.RevisionsRemaining, res.PreviousScores)
	}

	stored, err := f.set.Sessions.GetByID(dbctx.Of(ctx), s.ID)
	if err != nil || stored == nil || stored.Phase != string(phase.Feedback) {
		t.Fatalf("stored session: err=%v got=%+v", err, stored)
	}
	latest, err := f.set.Assessments.LatestBySession(dbctx.Of(ctx), s.ID)
	if err != nil || latest == nil || latest.SubmissionID != res.Submission.ID {
		t.Fatalf("stored assessment: err=%v got=%+v", err, latest)
	}
	if got := f.hooks.Statuses("Coaching.Grading.Commit"); len(got) != 1 || got[0] != "success" {
		t.Fatalf("hook statuses: %v", got)
	}
}

func TestGradingAggregateRejectsWrongPhaseAndOwner(t *testing.T) {
	f := newGradingFixture(t, nil)
	ctx := context.Background()
	guided := repotest.SeedSession(t, ctx, f.tx, uuid.New(), "narrative-1", phase.Guided)

	_, err := f.agg.CommitGrading(ctx, gradingInput(guided, false, 3))
	if !domainagg.IsCode(err, domainagg.CodeInvariantViolation) {
		t.Fatalf("grading in guided: want invariant violation, got %v", err)
	}
	_, err = f.agg.CommitGrading(ctx, gradingInput(guided, true, 3))
	if !domainagg.IsCode(err, domainagg.CodeInvariantViolation) {
		t.Fatalf("revising in guided: want invariant violation, got %v", err)
	}

	assessing := repotest.SeedSession(t, ctx, f.tx, uuid.New(), "narrative-1", phase.Assessment)
	in := gradingInput(assessing, false, 3)
	in.ChildID = uuid.New()
	_, err = f.agg.CommitGrading(ctx, in)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("foreign child: want not_found, got %v", err)
	}

	n, err := f.set.Submissions.CountBySession(dbctx.Of(ctx), assessing.ID)
	if err != nil || n != 0 {
		t.Fatalf("no submission should persist: n=%d err=%v", n, err)
	}
}

func TestGradingAggregateRevisionCap(t *testing.T) {
	f := newGradingFixture(t, nil)
	ctx := context.Background()
	s := repotest.SeedSession(t, ctx, f.tx, uuid.New(), "narrative-1", phase.Assessment)

	if _, err := f.agg.CommitGrading(ctx, gradingInput(s, false, 2)); err != nil {
		t.Fatalf("original: %v", err)
	}
	first, err := f.agg.CommitGrading(ctx, gradingInput(s, true, 2.5))
	if err != nil {
		t.Fatalf("revision 1: %v", err)
	}
	if first.Submission.RevisionNumber != 1 || first.RevisionsRemaining != 1 {
		t.Fatalf("revision 1 result: number=%d remaining=%d", first.Submission.RevisionNumber, first.RevisionsRemaining)
	}
	if first.PreviousScores["ideas"] != 2 {
		t.Fatalf("previous scores: %v", first.PreviousScores)
	}
	if first.Submission.RevisionOf == nil {
		t.Fatalf("revision should point at the prior submission")
	}
	second, err := f.agg.CommitGrading(ctx, gradingInput(s, true, 3))
	if err != nil {
		t.Fatalf("revision 2: %v", err)
	}
	if second.RevisionsRemaining != 0 || second.PreviousScores["ideas"] != 2.5 {
		t.Fatalf("revision 2 result: remaining=%d previous=%v", second.RevisionsRemaining, second.PreviousScores)
	}

	_, err = f.agg.CommitGrading(ctx, gradingInput(s, true, 3.5))
	if !domainagg.IsCode(err, domainagg.CodeLimitExceeded) {
		t.Fatalf("revision 3: want limit_exceeded, got %v", err)
	}
	if got := domainagg.MessageOf(err); got != "Maximum revisions reached" {
		t.Fatalf("limit message: %q", got)
	}
	all, err := f.set.Assessments.ListBySession(dbctx.Of(ctx), s.ID)
	if err != nil || len(all) != 3 {
		t.Fatalf("assessments: want=3 got=%d err=%v", len(all), err)
	}
}

func TestGradingAggregateRollsBackOnCommitFailure(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	commitErr := errors.New("connection reset during commit")
	runner := &aggtest.InjectedTxRunner{Inner: aggregates.NewGormTxRunner(tx), FailCommit: commitErr}
	set := repos.NewSet(tx, repotest.Logger(t))
	agg := aggregates.NewGradingAggregate(aggregates.GradingAggregateDeps{
		Base:        aggregates.BaseDeps{DB: tx, Runner: runner, CASGuard: aggregates.NewCASGuard(tx)},
		Sessions:    set.Sessions,
		Submissions: set.Submissions,
		Assessments: set.Assessments,
	})
	ctx := context.Background()
	s := repotest.SeedSession(t, ctx, tx, uuid.New(), "narrative-1", phase.Assessment)

	if _, err := agg.CommitGrading(ctx, gradingInput(s, false, 3)); !errors.Is(err, commitErr) {
		t.Fatalf("want commit error, got %v", err)
	}
	if runner.RollbackCalls != 1 {
		t.Fatalf("rollback calls: %d", runner.RollbackCalls)
	}
	dbc := dbctx.Of(ctx)
	if n, err := set.Submissions.CountBySession(dbc, s.ID); err != nil || n != 0 {
		t.Fatalf("submission persisted after rollback: n=%d err=%v", n, err)
	}
	if a, err := set.Assessments.LatestBySession(dbc, s.ID); err != nil || a != nil {
		t.Fatalf("assessment persisted after rollback: %+v err=%v", a, err)
	}
	if stored, _ := set.Sessions.GetByID(dbc, s.ID); stored.Phase != string(phase.Assessment) {
		t.Fatalf("phase moved despite rollback: %s", stored.Phase)
	}
}
