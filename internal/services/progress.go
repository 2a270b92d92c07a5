package services

import (
	"context"
	"time"

	"github.com/yungbote/writecoach-backend/internal/data/repos"
	types "github.com/yungbote/writecoach-backend/internal/domain"
	"github.com/yungbote/writecoach-backend/internal/platform/apierr"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
	"github.com/yungbote/writecoach-backend/internal/progress"
)

type AchievementView struct {
	BadgeID     string    `json:"badgeId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UnlockedAt  time.Time `json:"unlockedAt"`
	Seen        bool      `json:"seen"`
}

type ProgressService interface {
	Skills(ctx context.Context) ([]*types.SkillProgress, error)
	// Streak returns a zeroed streak for a child with no activity yet.
	Streak(ctx context.Context) (*types.Streak, error)
	Achievements(ctx context.Context) ([]AchievementView, error)
	MarkAchievementsSeen(ctx context.Context) (int64, error)
}

type progressService struct {
	log          *logger.Logger
	skills       repos.SkillProgressRepo
	streaks      repos.StreakRepo
	achievements repos.AchievementRepo
	weeklyGoal   int
}

func NewProgressService(log *logger.Logger, skills repos.SkillProgressRepo, streaks repos.StreakRepo, achievements repos.AchievementRepo, weeklyGoal int) ProgressService {
	if weeklyGoal <= 0 {
		weeklyGoal = progress.DefaultWeeklyGoal
	}
	return &progressService{
		log:          log.With("service", "ProgressService"),
		skills:       skills,
		streaks:      streaks,
		achievements: achievements,
		weeklyGoal:   weeklyGoal,
	}
}

func (ps *progressService) Skills(ctx context.Context) ([]*types.SkillProgress, error) {
	childID, err := childFrom(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := ps.skills.ListByChild(dbctx.Of(ctx), childID)
	if err != nil {
		return nil, apierr.Internal("load_skills", err)
	}
	if rows == nil {
		rows = []*types.SkillProgress{}
	}
	return rows, nil
}

func (ps *progressService) Streak(ctx context.Context) (*types.Streak, error) {
	childID, err := childFrom(ctx)
	if err != nil {
		return nil, err
	}
	row, err := ps.streaks.GetByChild(dbctx.Of(ctx), childID)
	if err != nil {
		return nil, apierr.Internal("load_streak", err)
	}
	if row == nil {
		return &types.Streak{ChildID: childID, WeeklyGoal: ps.weeklyGoal}, nil
	}
	return row, nil
}

func (ps *progressService) Achievements(ctx context.Context) ([]AchievementView, error) {
	childID, err := childFrom(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := ps.achievements.ListByChild(dbctx.Of(ctx), childID)
	if err != nil {
		return nil, apierr.Internal("load_achievements", err)
	}
	out := make([]AchievementView, 0, len(rows))
	for _, a := range rows {
		v := AchievementView{BadgeID: a.BadgeID, UnlockedAt: a.UnlockedAt, Seen: a.Seen}
		if b, ok := progress.BadgeByID(a.BadgeID); ok {
			v.Name, v.Description = b.Name, b.Description
		}
		out = append(out, v)
	}
	return out, nil
}

func (ps *progressService) MarkAchievementsSeen(ctx context.Context) (int64, error) {
	childID, err := childFrom(ctx)
	if err != nil {
		return 0, err
	}
	n, err := ps.achievements.MarkAllSeen(dbctx.Of(ctx), childID)
	if err != nil {
		return 0, apierr.Internal("mark_seen", err)
	}
	return n, nil
}
