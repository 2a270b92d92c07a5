package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/writecoach-backend/internal/catalog"
	"github.com/yungbote/writecoach-backend/internal/data/repos"
	types "github.com/yungbote/writecoach-backend/internal/domain"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

const (
	adaptationWindow = 10
	minAssessments   = 3

	strugglingRun       = 3
	strugglingThreshold = 2.0
	excellingRun        = 5
	excellingThreshold  = 3.5
)

// Decision is the outcome of looking at a child's recent scores.
type Decision struct {
	Reason string
	// Window is the run of assessments (newest first) that triggered it.
	Window []*types.Assessment
}

// Decide inspects assessments ordered newest first. It returns a zero
// Decision when no adaptation applies.
func Decide(recent []*types.Assessment) Decision {
	if len(recent) < minAssessments {
		return Decision{}
	}
	if run := leadingRun(recent, strugglingRun, func(s float64) bool { return s < strugglingThreshold }); run != nil {
		return Decision{Reason: types.RevisionReasonStruggling, Window: run}
	}
	if run := leadingRun(recent, excellingRun, func(s float64) bool { return s > excellingThreshold }); run != nil {
		return Decision{Reason: types.RevisionReasonExcelling, Window: run}
	}
	return Decision{}
}

func leadingRun(recent []*types.Assessment, n int, match func(float64) bool) []*types.Assessment {
	if len(recent) < n {
		return nil
	}
	for _, a := range recent[:n] {
		if a == nil || !match(a.OverallScore) {
			return nil
		}
	}
	return recent[:n]
}

// Rewrite returns the plan after applying reason to its pending weeks.
// Weeks that are in progress or completed are copied unchanged.
func Rewrite(cat *catalog.Catalog, plan types.Plan, reason string) types.Plan {
	out := make(types.Plan, 0, len(plan))
	for _, w := range plan {
		next := types.PlanWeek{WeekNumber: w.WeekNumber, Status: w.Status, LessonIDs: append([]string(nil), w.LessonIDs...)}
		if w.Status == types.WeekPending && len(w.LessonIDs) > 0 {
			switch reason {
			case types.RevisionReasonStruggling:
				next.LessonIDs = withRemedial(cat, w.LessonIDs)
			case types.RevisionReasonExcelling:
				next.LessonIDs = advanced(cat, w.LessonIDs)
			}
		}
		out = append(out, next)
	}
	return out
}

func withRemedial(cat *catalog.Catalog, ids []string) []string {
	easier, ok := cat.Remedial(ids[0])
	if !ok || contains(ids, easier.ID) {
		return append([]string(nil), ids...)
	}
	return append([]string{easier.ID}, ids...)
}

func advanced(cat *catalog.Catalog, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if harder, ok := cat.Advanced(id); ok {
			id = harder.ID
		}
		if !contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func samePlan(a, b types.Plan) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].WeekNumber != b[i].WeekNumber || len(a[i].LessonIDs) != len(b[i].LessonIDs) {
			return false
		}
		for j := range a[i].LessonIDs {
			if a[i].LessonIDs[j] != b[i].LessonIDs[j] {
				return false
			}
		}
	}
	return true
}

type CurriculumDeps struct {
	Log         *logger.Logger
	DB          *gorm.DB
	Catalog     *catalog.Catalog
	Sessions    repos.SessionRepo
	Assessments repos.AssessmentRepo
	Curricula   repos.CurriculumRepo
	Weeks       repos.CurriculumWeekRepo
	Revisions   repos.CurriculumRevisionRepo
}

type CurriculumAdapter struct {
	deps CurriculumDeps
}

func NewCurriculumAdapter(deps CurriculumDeps) *CurriculumAdapter {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("hook", "curriculum")
	return &CurriculumAdapter{deps: deps}
}

// Apply closes finished weeks and then adapts the pending ones to the
// child's recent scores. A child without an active curriculum is a no-op.
func (a *CurriculumAdapter) Apply(ctx context.Context, ev Event) error {
	dbc := dbctx.Of(ctx)
	cur, err := a.deps.Curricula.GetActiveByChild(dbc, ev.ChildID)
	if err != nil {
		return fmt.Errorf("load curriculum: %w", err)
	}
	if cur == nil {
		return nil
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	if err := a.advanceWeeks(ctx, cur, ev.ChildID, at); err != nil {
		return err
	}
	_, err = a.adapt(ctx, cur)
	return err
}

func (a *CurriculumAdapter) advanceWeeks(ctx context.Context, cur *types.Curriculum, childID uuid.UUID, at time.Time) error {
	dbc := dbctx.Of(ctx)
	weeks, err := a.deps.Weeks.ListByCurriculum(dbc, cur.ID)
	if err != nil {
		return fmt.Errorf("load weeks: %w", err)
	}
	done, err := a.deps.Sessions.ListCompletedLessonIDs(dbc, childID)
	if err != nil {
		return fmt.Errorf("load completed lessons: %w", err)
	}
	completed := make(map[string]bool, len(done))
	for _, id := range done {
		completed[id] = true
	}
	return a.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tdbc := dbctx.Context{Ctx: ctx, Tx: tx}
		for i, w := range weeks {
			if w.Status != types.WeekInProgress || !allIn(w.LessonIDs.Data(), completed) {
				continue
			}
			if err := a.deps.Weeks.UpdateStatus(tdbc, w.ID, types.WeekCompleted, at); err != nil {
				return err
			}
			w.Status = types.WeekCompleted
			if i+1 < len(weeks) && weeks[i+1].Status == types.WeekPending {
				if err := a.deps.Weeks.UpdateStatus(tdbc, weeks[i+1].ID, types.WeekInProgress, at); err != nil {
					return err
				}
				weeks[i+1].Status = types.WeekInProgress
			}
		}
		return nil
	})
}

func allIn(ids []string, set map[string]bool) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !set[id] {
			return false
		}
	}
	return true
}

// adapt writes at most one revision. A reason fires again only once every
// assessment in its triggering run is newer than the last revision with
// that reason.
func (a *CurriculumAdapter) adapt(ctx context.Context, cur *types.Curriculum) (*types.CurriculumRevision, error) {
	dbc := dbctx.Of(ctx)
	recent, err := a.deps.Assessments.ListRecentByChild(dbc, cur.ChildID, adaptationWindow)
	if err != nil {
		return nil, fmt.Errorf("load recent assessments: %w", err)
	}
	decision := Decide(recent)
	if decision.Reason == "" {
		return nil, nil
	}
	last, err := a.deps.Revisions.LatestByReason(dbc, cur.ID, decision.Reason)
	if err != nil {
		return nil, fmt.Errorf("load last revision: %w", err)
	}
	if last != nil {
		for _, asmt := range decision.Window {
			if !asmt.CreatedAt.After(last.CreatedAt) {
				return nil, nil
			}
		}
	}
	revisedAt := decision.Window[0].CreatedAt

	var rev *types.CurriculumRevision
	err = a.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tdbc := dbctx.Context{Ctx: ctx, Tx: tx}
		weeks, err := a.deps.Weeks.ListByCurriculum(tdbc, cur.ID)
		if err != nil {
			return err
		}
		before := types.SnapshotPlan(weeks)
		after := Rewrite(a.deps.Catalog, before, decision.Reason)
		if samePlan(before, after) {
			return nil
		}
		rewritten := 0
		for i, w := range weeks {
			if w.Status != types.WeekPending || samePlan(types.Plan{before[i]}, types.Plan{after[i]}) {
				continue
			}
			ok, err := a.deps.Weeks.UpdatePendingLessons(tdbc, w.ID, after[i].LessonIDs, revisedAt)
			if err != nil {
				return err
			}
			if !ok {
				// The week started between the read and the write.
				after[i].LessonIDs = before[i].LessonIDs
				after[i].Status = types.WeekInProgress
				continue
			}
			rewritten++
		}
		if rewritten == 0 {
			return nil
		}
		rev = &types.CurriculumRevision{
			ID:           uuid.New(),
			CurriculumID: cur.ID,
			PreviousPlan: datatypes.NewJSONType(before),
			NewPlan:      datatypes.NewJSONType(after),
			Reason:       decision.Reason,
			CreatedAt:    revisedAt,
		}
		if err := a.deps.Revisions.Create(tdbc, rev); err != nil {
			return err
		}
		return a.deps.Curricula.Touch(tdbc, cur.ID, revisedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("rewrite curriculum: %w", err)
	}
	if rev != nil {
		a.deps.Log.Info("Curriculum adapted", "curriculum_id", cur.ID, "reason", rev.Reason)
	}
	return rev, nil
}

// Plan seeds a curriculum for a child that has none: one week per tier,
// each holding that tier's lessons across categories. The first week
// starts in progress.
func (a *CurriculumAdapter) Plan(ctx context.Context, childID uuid.UUID, at time.Time) (*types.Curriculum, []*types.CurriculumWeek, error) {
	if childID == uuid.Nil {
		return nil, nil, fmt.Errorf("missing child_id")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	var (
		cur   *types.Curriculum
		weeks []*types.CurriculumWeek
	)
	err := a.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tdbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := a.deps.Curricula.GetActiveByChild(tdbc, childID)
		if err != nil {
			return err
		}
		if existing != nil {
			cur = existing
			weeks, err = a.deps.Weeks.ListByCurriculum(tdbc, existing.ID)
			return err
		}
		cur = &types.Curriculum{
			ID:        uuid.New(),
			ChildID:   childID,
			Status:    types.CurriculumActive,
			CreatedAt: at,
			UpdatedAt: at,
		}
		if err := a.deps.Curricula.Create(tdbc, cur); err != nil {
			return err
		}
		weeks, err = a.deps.Weeks.Create(tdbc, DefaultWeeks(a.deps.Catalog, cur.ID, at))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return cur, weeks, nil
}

// DefaultWeeks lays out one week per catalog tier.
func DefaultWeeks(cat *catalog.Catalog, curriculumID uuid.UUID, at time.Time) []*types.CurriculumWeek {
	byTier := map[int][]string{}
	maxTier := 0
	for _, l := range cat.Lessons() {
		byTier[l.Tier] = append(byTier[l.Tier], l.ID)
		if l.Tier > maxTier {
			maxTier = l.Tier
		}
	}
	var out []*types.CurriculumWeek
	for tier := 1; tier <= maxTier; tier++ {
		ids := byTier[tier]
		if len(ids) == 0 {
			continue
		}
		status := types.WeekPending
		if len(out) == 0 {
			status = types.WeekInProgress
		}
		out = append(out, &types.CurriculumWeek{
			ID:           uuid.New(),
			CurriculumID: curriculumID,
			WeekNumber:   len(out) + 1,
			Theme:        weekTheme(tier),
			Status:       status,
			LessonIDs:    datatypes.NewJSONType(ids),
			UpdatedAt:    at,
		})
	}
	return out
}

func weekTheme(tier int) string {
	switch tier {
	case 1:
		return "Building blocks"
	case 2:
		return "Finding your voice"
	case 3:
		return "Polished pieces"
	default:
		return fmt.Sprintf("Level %d", tier)
	}
}
