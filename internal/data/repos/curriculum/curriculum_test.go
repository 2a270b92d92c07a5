package curriculum

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/writecoach-backend/internal/data/repos/testutil"
	types "github.com/yungbote/writecoach-backend/internal/domain"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
)

func TestCurriculumRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)
	curricula := NewCurriculumRepo(db, log)
	weeks := NewCurriculumWeekRepo(db, log)
	revisions := NewCurriculumRevisionRepo(db, log)

	child := uuid.New()
	c, seeded := testutil.SeedCurriculum(t, ctx, tx, child,
		[]string{types.WeekCompleted, types.WeekPending},
		[][]string{{"narrative-1"}, {"narrative-2"}})

	active, err := curricula.GetActiveByChild(dbc, child)
	if err != nil || active == nil || active.ID != c.ID {
		t.Fatalf("GetActiveByChild: err=%v got=%+v", err, active)
	}

	now := time.Now().UTC()
	ok, err := weeks.UpdatePendingLessons(dbc, seeded[0].ID, []string{"x"}, now)
	if err != nil || ok {
		t.Fatalf("UpdatePendingLessons completed week: want=false got=%v err=%v", ok, err)
	}
	ok, err = weeks.UpdatePendingLessons(dbc, seeded[1].ID, []string{"narrative-1", "narrative-2"}, now)
	if err != nil || !ok {
		t.Fatalf("UpdatePendingLessons pending week: want=true got=%v err=%v", ok, err)
	}
	list, err := weeks.ListByCurriculum(dbc, c.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByCurriculum: err=%v len=%d", err, len(list))
	}
	if got := list[0].LessonIDs.Data(); len(got) != 1 || got[0] != "narrative-1" {
		t.Fatalf("completed week changed: %v", got)
	}
	if got := list[1].LessonIDs.Data(); len(got) != 2 {
		t.Fatalf("pending week not updated: %v", got)
	}

	plan := types.Plan{{WeekNumber: 1, Status: types.WeekCompleted, LessonIDs: []string{"narrative-1"}}}
	older := &types.CurriculumRevision{CurriculumID: c.ID, PreviousPlan: datatypes.NewJSONType(plan), NewPlan: datatypes.NewJSONType(plan), Reason: types.RevisionReasonStruggling, CreatedAt: now.Add(-time.Hour)}
	newer := &types.CurriculumRevision{CurriculumID: c.ID, PreviousPlan: datatypes.NewJSONType(plan), NewPlan: datatypes.NewJSONType(plan), Reason: types.RevisionReasonStruggling, CreatedAt: now}
	for _, r := range []*types.CurriculumRevision{older, newer} {
		if err := revisions.Create(dbc, r); err != nil {
			t.Fatalf("Create revision: %v", err)
		}
	}
	latest, err := revisions.LatestByReason(dbc, c.ID, types.RevisionReasonStruggling)
	if err != nil || latest == nil || latest.ID != newer.ID {
		t.Fatalf("LatestByReason: err=%v got=%+v", err, latest)
	}
	if none, err := revisions.LatestByReason(dbc, c.ID, types.RevisionReasonExcelling); err != nil || none != nil {
		t.Fatalf("LatestByReason other reason: err=%v got=%+v", err, none)
	}
	all, err := revisions.ListByCurriculum(dbc, c.ID, 0)
	if err != nil || len(all) != 2 || all[0].ID != newer.ID {
		t.Fatalf("ListByCurriculum: err=%v len=%d", err, len(all))
	}
}
