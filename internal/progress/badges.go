package progress

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/writecoach-backend/internal/data/repos"
	types "github.com/yungbote/writecoach-backend/internal/domain"
	"github.com/yungbote/writecoach-backend/internal/observability"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

const recentScoreWindow = 10

// Facts is everything the badge predicates look at.
type Facts struct {
	CompletedLessons int
	Submissions      int64
	Revisions        int64
	TotalWords       int64
	MaxWords         int64
	SkillLevels      []string
	LongestStreak    int
	CurrentStreak    int
	RecentScores     []float64
}

func (f Facts) hasLevel(levels ...string) bool {
	for _, have := range f.SkillLevels {
		for _, want := range levels {
			if have == want {
				return true
			}
		}
	}
	return false
}

func (f Facts) bestScore() float64 {
	best := 0.0
	for _, s := range f.RecentScores {
		if s > best {
			best = s
		}
	}
	return best
}

type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	earned      func(Facts) bool
}

var badgeCatalog = []Badge{
	{ID: "first_lesson", Name: "First Steps", Description: "Finish your first lesson", earned: func(f Facts) bool { return f.CompletedLessons >= 1 }},
	{ID: "lessons_5", Name: "Getting Going", Description: "Finish 5 lessons", earned: func(f Facts) bool { return f.CompletedLessons >= 5 }},
	{ID: "lessons_10", Name: "Dedicated Writer", Description: "Finish 10 lessons", earned: func(f Facts) bool { return f.CompletedLessons >= 10 }},
	{ID: "lessons_25", Name: "Writing Champion", Description: "Finish 25 lessons", earned: func(f Facts) bool { return f.CompletedLessons >= 25 }},
	{ID: "words_100", Name: "Hundred Words", Description: "Write 100 words in total", earned: func(f Facts) bool { return f.TotalWords >= 100 }},
	{ID: "words_500", Name: "Word Builder", Description: "Write 500 words in total", earned: func(f Facts) bool { return f.TotalWords >= 500 }},
	{ID: "words_1000", Name: "Word Wizard", Description: "Write 1000 words in total", earned: func(f Facts) bool { return f.TotalWords >= 1000 }},
	{ID: "long_story", Name: "Storyteller", Description: "Write 200 words in one piece", earned: func(f Facts) bool { return f.MaxWords >= 200 }},
	{ID: "first_revision", Name: "Second Draft", Description: "Revise a piece of writing", earned: func(f Facts) bool { return f.Revisions >= 1 }},
	{ID: "skill_proficient", Name: "Skill Up", Description: "Reach Proficient in a skill", earned: func(f Facts) bool { return f.hasLevel(types.LevelProficient, types.LevelAdvanced) }},
	{ID: "skill_advanced", Name: "Skill Master", Description: "Reach Advanced in a skill", earned: func(f Facts) bool { return f.hasLevel(types.LevelAdvanced) }},
	{ID: "streak_3", Name: "On a Roll", Description: "Write 3 days in a row", earned: func(f Facts) bool { return f.LongestStreak >= 3 }},
	{ID: "streak_7", Name: "Week Warrior", Description: "Write 7 days in a row", earned: func(f Facts) bool { return f.LongestStreak >= 7 }},
	{ID: "streak_30", Name: "Unstoppable", Description: "Write 30 days in a row", earned: func(f Facts) bool { return f.LongestStreak >= 30 }},
	{ID: "high_score", Name: "High Flyer", Description: "Score 3.5 or higher", earned: func(f Facts) bool { return f.bestScore() >= 3.5 }},
	{ID: "perfect_score", Name: "Perfect Piece", Description: "Score a perfect 4", earned: func(f Facts) bool { return f.bestScore() >= MaxScore }},
}

// Badges returns the badge catalog in display order.
func Badges() []Badge {
	return append([]Badge(nil), badgeCatalog...)
}

// BadgeByID looks up a catalog entry.
func BadgeByID(id string) (Badge, bool) {
	for _, b := range badgeCatalog {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// Evaluate returns the catalog badges f earns that are not in held, in
// catalog order.
func Evaluate(f Facts, held map[string]bool) []string {
	out := []string{}
	for _, b := range badgeCatalog {
		if held[b.ID] {
			continue
		}
		if b.earned(f) {
			out = append(out, b.ID)
		}
	}
	return out
}

type BadgeDeps struct {
	Log          *logger.Logger
	Metrics      *observability.Metrics
	Sessions     repos.SessionRepo
	Submissions  repos.SubmissionRepo
	Assessments  repos.AssessmentRepo
	Skills       repos.SkillProgressRepo
	Streaks      repos.StreakRepo
	Achievements repos.AchievementRepo
}

type BadgeEvaluator struct {
	deps BadgeDeps
}

func NewBadgeEvaluator(deps BadgeDeps) *BadgeEvaluator {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("hook", "badges")
	return &BadgeEvaluator{deps: deps}
}

// Apply loads the child's facts, inserts every newly earned badge in one
// write and returns the ids that were actually inserted.
func (e *BadgeEvaluator) Apply(ctx context.Context, ev Event) ([]string, error) {
	held, facts, err := e.load(ctx, ev.ChildID)
	if err != nil {
		return nil, err
	}
	earned := Evaluate(facts, held)
	if len(earned) == 0 {
		return []string{}, nil
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	rows := make([]*types.Achievement, 0, len(earned))
	for _, id := range earned {
		rows = append(rows, &types.Achievement{
			ID:         uuid.New(),
			ChildID:    ev.ChildID,
			BadgeID:    id,
			UnlockedAt: at,
		})
	}
	n, err := e.deps.Achievements.CreateIgnoreDuplicates(dbctx.Of(ctx), rows)
	if err != nil {
		return nil, fmt.Errorf("insert achievements: %w", err)
	}
	if n < int64(len(rows)) {
		// A concurrent evaluation won some rows; report only ours.
		return e.insertedSince(ctx, ev.ChildID, held, earned, rows)
	}
	for _, id := range earned {
		e.deps.Metrics.IncBadgeUnlocked(id)
	}
	return earned, nil
}

func (e *BadgeEvaluator) insertedSince(ctx context.Context, childID uuid.UUID, held map[string]bool, earned []string, rows []*types.Achievement) ([]string, error) {
	ours := make(map[uuid.UUID]bool, len(rows))
	for _, r := range rows {
		ours[r.ID] = true
	}
	current, err := e.deps.Achievements.ListByChild(dbctx.Of(ctx), childID)
	if err != nil {
		return nil, fmt.Errorf("reload achievements: %w", err)
	}
	won := map[string]bool{}
	for _, a := range current {
		if ours[a.ID] && !held[a.BadgeID] {
			won[a.BadgeID] = true
		}
	}
	out := []string{}
	for _, id := range earned {
		if won[id] {
			out = append(out, id)
			e.deps.Metrics.IncBadgeUnlocked(id)
		}
	}
	return out, nil
}

func (e *BadgeEvaluator) load(ctx context.Context, childID uuid.UUID) (map[string]bool, Facts, error) {
	var (
		achievements []*types.Achievement
		lessons      []string
		stats        repos.SubmissionStats
		skills       []*types.SkillProgress
		streak       *types.Streak
		recent       []*types.Assessment
	)
	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.Of(gctx)
	g.Go(func() (err error) {
		achievements, err = e.deps.Achievements.ListByChild(dbc, childID)
		return err
	})
	g.Go(func() (err error) {
		lessons, err = e.deps.Sessions.ListCompletedLessonIDs(dbc, childID)
		return err
	})
	g.Go(func() (err error) {
		stats, err = e.deps.Submissions.StatsByChild(dbc, childID)
		return err
	})
	g.Go(func() (err error) {
		skills, err = e.deps.Skills.ListByChild(dbc, childID)
		return err
	})
	g.Go(func() (err error) {
		streak, err = e.deps.Streaks.GetByChild(dbc, childID)
		return err
	})
	g.Go(func() (err error) {
		recent, err = e.deps.Assessments.ListRecentByChild(dbc, childID, recentScoreWindow)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, Facts{}, fmt.Errorf("load badge facts: %w", err)
	}

	held := make(map[string]bool, len(achievements))
	for _, a := range achievements {
		held[a.BadgeID] = true
	}
	facts := Facts{
		CompletedLessons: len(lessons),
		Submissions:      stats.Count,
		Revisions:        stats.Revisions,
		TotalWords:       stats.TotalWords,
		MaxWords:         stats.MaxWords,
	}
	for _, s := range skills {
		facts.SkillLevels = append(facts.SkillLevels, s.Level)
	}
	sort.Strings(facts.SkillLevels)
	if streak != nil {
		facts.CurrentStreak = streak.CurrentStreak
		facts.LongestStreak = streak.LongestStreak
	}
	for _, a := range recent {
		facts.RecentScores = append(facts.RecentScores, a.OverallScore)
	}
	return held, facts, nil
}
