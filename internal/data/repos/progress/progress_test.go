package progress

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/writecoach-backend/internal/data/repos/testutil"
	types "github.com/yungbote/writecoach-backend/internal/domain"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
)

func TestSkillProgressRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewSkillProgressRepo(db, testutil.Logger(t))

	child := uuid.New()
	row := &types.SkillProgress{ChildID: child, SkillCategory: "narrative", SkillName: "ideas", Score: 2.5, Level: types.LevelDeveloping, TotalAttempts: 1}
	if err := repo.Upsert(dbc, row); err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	if err := repo.Upsert(dbc, &types.SkillProgress{ChildID: child, SkillCategory: "narrative", SkillName: "ideas", Score: 3.1, Level: types.LevelProficient, TotalAttempts: 2}); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	got, err := repo.GetByChildAndSkill(dbc, child, "ideas")
	if err != nil || got == nil {
		t.Fatalf("GetByChildAndSkill: err=%v", err)
	}
	if got.Score != 3.1 || got.TotalAttempts != 2 || got.Level != types.LevelProficient {
		t.Fatalf("upserted row: got=%+v", got)
	}
	all, err := repo.ListByChild(dbc, child)
	if err != nil || len(all) != 1 {
		t.Fatalf("ListByChild: err=%v len=%d", err, len(all))
	}
}

func TestStreakRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewStreakRepo(db, testutil.Logger(t))

	child := uuid.New()
	if got, err := repo.GetByChild(dbc, child); err != nil || got != nil {
		t.Fatalf("GetByChild empty: err=%v got=%+v", err, got)
	}
	row := &types.Streak{ChildID: child, CurrentStreak: 1, LongestStreak: 1, LastActiveDate: "2026-03-02", WeekStartDate: "2026-03-02", WeeklyCompleted: 1, WeeklyGoal: 3}
	if err := repo.Create(dbc, row); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.UpdateFields(dbc, row.ID, map[string]interface{}{"current_streak": 2, "longest_streak": 2}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err := repo.GetByChild(dbc, child)
	if err != nil || got == nil || got.CurrentStreak != 2 || got.LongestStreak != 2 {
		t.Fatalf("GetByChild: err=%v got=%+v", err, got)
	}
}

func TestAchievementRepoIgnoresDuplicates(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewAchievementRepo(db, testutil.Logger(t))

	child := uuid.New()
	now := time.Now().UTC()
	n, err := repo.CreateIgnoreDuplicates(dbc, []*types.Achievement{
		{ChildID: child, BadgeID: "first_lesson", UnlockedAt: now},
		{ChildID: child, BadgeID: "words_100", UnlockedAt: now},
	})
	if err != nil || n != 2 {
		t.Fatalf("CreateIgnoreDuplicates: want=2 got=%d err=%v", n, err)
	}
	n, err = repo.CreateIgnoreDuplicates(dbc, []*types.Achievement{
		{ChildID: child, BadgeID: "first_lesson", UnlockedAt: now},
		{ChildID: child, BadgeID: "streak_3", UnlockedAt: now},
	})
	if err != nil || n != 1 {
		t.Fatalf("CreateIgnoreDuplicates second: want=1 got=%d err=%v", n, err)
	}
	rows, err := repo.ListByChild(dbc, child)
	if err != nil || len(rows) != 3 {
		t.Fatalf("ListByChild: want=3 got=%d err=%v", len(rows), err)
	}
	seen, err := repo.MarkAllSeen(dbc, child)
	if err != nil || seen != 3 {
		t.Fatalf("MarkAllSeen: want=3 got=%d err=%v", seen, err)
	}
}
