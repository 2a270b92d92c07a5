package progress

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/yungbote/writecoach-backend/internal/catalog"
	"github.com/yungbote/writecoach-backend/internal/data/repos"
	types "github.com/yungbote/writecoach-backend/internal/domain"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

const (
	MinScore = 1.0
	MaxScore = 4.0

	// Weight of the newest grading in the rolling skill score.
	recentWeight = 0.7
)

// Quantize maps a skill score onto its level band. Bands are lower-inclusive.
func Quantize(score float64) string {
	switch {
	case score < 1.8:
		return types.LevelEmerging
	case score < 2.8:
		return types.LevelDeveloping
	case score < 3.7:
		return types.LevelProficient
	default:
		return types.LevelAdvanced
	}
}

// RollingScore blends a new overall score into the previous skill score,
// clamped to [1,4] and rounded to two decimals.
func RollingScore(previous, overall float64) float64 {
	return clampScore(recentWeight*overall + (1-recentWeight)*previous)
}

func clampScore(v float64) float64 {
	v = math.Max(MinScore, math.Min(MaxScore, v))
	return math.Round(v*100) / 100
}

type SkillDeps struct {
	Log     *logger.Logger
	Catalog *catalog.Catalog
	Skills  repos.SkillProgressRepo
}

type SkillUpdater struct {
	deps SkillDeps
}

func NewSkillUpdater(deps SkillDeps) *SkillUpdater {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("hook", "skills")
	return &SkillUpdater{deps: deps}
}

// Apply folds ev.OverallScore into every skill the lesson trains.
func (u *SkillUpdater) Apply(ctx context.Context, ev Event) error {
	lesson, ok := u.deps.Catalog.Lesson(ev.LessonID)
	if !ok {
		return fmt.Errorf("unknown lesson %q", ev.LessonID)
	}
	dbc := dbctx.Of(ctx)
	at := ev.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	for _, skill := range lesson.Skills {
		prev, err := u.deps.Skills.GetByChildAndSkill(dbc, ev.ChildID, skill)
		if err != nil {
			return fmt.Errorf("load skill %s: %w", skill, err)
		}
		row := &types.SkillProgress{
			ChildID:       ev.ChildID,
			SkillCategory: lesson.Category,
			SkillName:     skill,
			Score:         clampScore(ev.OverallScore),
			TotalAttempts: 1,
			UpdatedAt:     at,
		}
		if prev != nil {
			row.ID = prev.ID
			row.CreatedAt = prev.CreatedAt
			row.Score = RollingScore(prev.Score, ev.OverallScore)
			row.TotalAttempts = prev.TotalAttempts + 1
		}
		row.Level = Quantize(row.Score)
		if err := u.deps.Skills.Upsert(dbc, row); err != nil {
			return fmt.Errorf("upsert skill %s: %w", skill, err)
		}
	}
	return nil
}
