package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/writecoach-backend/internal/data/repos"
	types "github.com/yungbote/writecoach-backend/internal/domain"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

const DefaultWeeklyGoal = 3

// StreakState is the mutable part of a streak record.
type StreakState struct {
	CurrentStreak   int
	LongestStreak   int
	LastActiveDate  string
	WeekStartDate   string
	WeeklyCompleted int
}

// NextStreak advances prev for activity on day today (week starting
// weekStart). changed is false for a second activity on the same day.
// A nil prev starts a new streak.
func NextStreak(cal Calendar, prev *StreakState, today, weekStart string) (StreakState, bool, error) {
	if prev == nil {
		return StreakState{
			CurrentStreak:   1,
			LongestStreak:   1,
			LastActiveDate:  today,
			WeekStartDate:   weekStart,
			WeeklyCompleted: 1,
		}, true, nil
	}
	next := *prev
	gap, err := cal.DaysBetween(prev.LastActiveDate, today)
	if err != nil {
		return next, false, fmt.Errorf("parse last active date: %w", err)
	}
	switch {
	case gap <= 0:
		return next, false, nil
	case gap == 1:
		next.CurrentStreak++
	default:
		next.CurrentStreak = 1
	}
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	next.LastActiveDate = today
	if prev.WeekStartDate != weekStart {
		next.WeekStartDate = weekStart
		next.WeeklyCompleted = 1
	} else {
		next.WeeklyCompleted++
	}
	return next, true, nil
}

type StreakDeps struct {
	Log        *logger.Logger
	Calendar   Calendar
	Streaks    repos.StreakRepo
	WeeklyGoal int
}

type StreakUpdater struct {
	deps StreakDeps
}

func NewStreakUpdater(deps StreakDeps) *StreakUpdater {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.WeeklyGoal <= 0 {
		deps.WeeklyGoal = DefaultWeeklyGoal
	}
	deps.Log = deps.Log.With("hook", "streak")
	return &StreakUpdater{deps: deps}
}

func (u *StreakUpdater) Apply(ctx context.Context, ev Event) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	today := u.deps.Calendar.Day(at)
	weekStart := u.deps.Calendar.WeekStart(at)
	dbc := dbctx.Of(ctx)

	row, err := u.deps.Streaks.GetByChild(dbc, ev.ChildID)
	if err != nil {
		return fmt.Errorf("load streak: %w", err)
	}
	if row == nil {
		next, _, _ := NextStreak(u.deps.Calendar, nil, today, weekStart)
		return u.deps.Streaks.Create(dbc, &types.Streak{
			ChildID:         ev.ChildID,
			CurrentStreak:   next.CurrentStreak,
			LongestStreak:   next.LongestStreak,
			LastActiveDate:  next.LastActiveDate,
			WeekStartDate:   next.WeekStartDate,
			WeeklyCompleted: next.WeeklyCompleted,
			WeeklyGoal:      u.deps.WeeklyGoal,
			CreatedAt:       at,
			UpdatedAt:       at,
		})
	}

	next, changed, err := NextStreak(u.deps.Calendar, &StreakState{
		CurrentStreak:   row.CurrentStreak,
		LongestStreak:   row.LongestStreak,
		LastActiveDate:  row.LastActiveDate,
		WeekStartDate:   row.WeekStartDate,
		WeeklyCompleted: row.WeeklyCompleted,
	}, today, weekStart)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return u.deps.Streaks.UpdateFields(dbc, row.ID, map[string]interface{}{
		"current_streak":   next.CurrentStreak,
		"longest_streak":   next.LongestStreak,
		"last_active_date": next.LastActiveDate,
		"week_start_date":  next.WeekStartDate,
		"weekly_completed": next.WeeklyCompleted,
		"updated_at":       at,
	})
}
