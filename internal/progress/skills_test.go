package progress

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/writecoach-backend/internal/catalog"
	"github.com/yungbote/writecoach-backend/internal/data/repos"
	repotest "github.com/yungbote/writecoach-backend/internal/data/repos/testutil"
	types "github.com/yungbote/writecoach-backend/internal/domain"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
)

func TestQuantizeBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0, types.LevelEmerging},
		{1.79, types.LevelEmerging},
		{1.8, types.LevelDeveloping},
		{2.79, types.LevelDeveloping},
		{2.8, types.LevelProficient},
		{3.69, types.LevelProficient},
		{3.7, types.LevelAdvanced},
		{4, types.LevelAdvanced},
	}
	for _, tc := range cases {
		if got := Quantize(tc.score); got != tc.want {
			t.Fatalf("Quantize(%v): want=%s got=%s", tc.score, tc.want, got)
		}
	}
}

func TestRollingScore(t *testing.T) {
	if got := RollingScore(1.0, 5.0); got != 3.8 {
		t.Fatalf("RollingScore(1,5): want=3.8 got=%v", got)
	}
	if got := RollingScore(4.0, 4.0); got != 4.0 {
		t.Fatalf("RollingScore(4,4): want=4 got=%v", got)
	}
	if got := RollingScore(1.0, 0.0); got != MinScore {
		t.Fatalf("RollingScore clamps low: got=%v", got)
	}
	if got := RollingScore(2.0, 3.0); got != 2.7 {
		t.Fatalf("RollingScore(2,3): want=2.7 got=%v", got)
	}
}

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

func TestSkillUpdaterCreatesThenBlends(t *testing.T) {
	db := repotest.DB(t)
	set := repos.NewSet(db, repotest.Logger(t))
	u := NewSkillUpdater(SkillDeps{Catalog: defaultCatalog(t), Skills: set.Skills})
	ctx := context.Background()
	child := uuid.New()

	if err := u.Apply(ctx, Event{ChildID: child, LessonID: "narrative-1", OverallScore: 2, At: time.Now().UTC()}); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	if err := u.Apply(ctx, Event{ChildID: child, LessonID: "narrative-1", OverallScore: 4, At: time.Now().UTC()}); err != nil {
		t.Fatalf("second Apply: %v", err)
	}

	rows, err := set.Skills.ListByChild(dbctx.Of(ctx), child)
	if err != nil {
		t.Fatalf("ListByChild: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want one row per lesson skill, got %d", len(rows))
	}
	for _, r := range rows {
		if r.Score != 3.4 || r.TotalAttempts != 2 || r.Level != types.LevelProficient || r.SkillCategory != "narrative" {
			t.Fatalf("skill row: %+v", r)
		}
	}
}

func TestSkillUpdaterUnknownLesson(t *testing.T) {
	u := NewSkillUpdater(SkillDeps{Catalog: defaultCatalog(t)})
	if err := u.Apply(context.Background(), Event{ChildID: uuid.New(), LessonID: "nope"}); err == nil {
		t.Fatalf("expected error for unknown lesson")
	}
}
