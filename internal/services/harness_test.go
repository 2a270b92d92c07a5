package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/writecoach-backend/internal/catalog"
	"github.com/yungbote/writecoach-backend/internal/clients/llm"
	"github.com/yungbote/writecoach-backend/internal/data/aggregates"
	"github.com/yungbote/writecoach-backend/internal/data/repos"
	repotest "github.com/yungbote/writecoach-backend/internal/data/repos/testutil"
	"github.com/yungbote/writecoach-backend/internal/observability"
	"github.com/yungbote/writecoach-backend/internal/platform/ctxutil"
	"github.com/yungbote/writecoach-backend/internal/progress"
)

// scriptedModel answers coach turns from a queue and grading requests
// with a fixed score.
type scriptedModel struct {
	mu      sync.Mutex
	replies []string
	score   float64
	calls   int
}

func (m *scriptedModel) queue(replies ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, replies...)
}

func (m *scriptedModel) setScore(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.score = v
}

func (m *scriptedModel) Complete(_ context.Context, system string, _ []llm.Turn) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if strings.Contains(system, "Grade a child's writing") {
		s := m.score
		return fmt.Sprintf(`{"scores":{"ideas":%[1]v,"organization":%[1]v,"voice":%[1]v,"conventions":%[1]v},`+
			`"feedback":{"strength":"Clear events.","growth":"Add feelings.","encouragement":"Well done!"}}`, s), nil
	}
	if len(m.replies) == 0 {
		return "Let's keep going! [STEP:1]", nil
	}
	next := m.replies[0]
	m.replies = m.replies[1:]
	return next, nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

// Now advances one minute per call so rows written in sequence never
// share a timestamp.
func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

type testApp struct {
	db           *gorm.DB
	set          repos.Set
	model        *scriptedModel
	metrics      *observability.Metrics
	conversation ConversationService
	grading      GradingService
	progress     ProgressService
	curriculum   CurriculumService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	set := repos.NewSet(db, log)
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	model := &scriptedModel{score: 3}
	metrics := observability.NewMetrics()
	clock := &testClock{now: time.Date(2026, 3, 9, 15, 0, 0, 0, time.UTC)}
	base := aggregates.BaseDeps{DB: db, Log: log, Hooks: aggregates.NewObservabilityHooks(metrics), Clock: clock.Now}

	planner := progress.NewCurriculumAdapter(progress.CurriculumDeps{
		Log:         log,
		DB:          db,
		Catalog:     cat,
		Sessions:    set.Sessions,
		Assessments: set.Assessments,
		Curricula:   set.Curricula,
		Weeks:       set.CurriculumWeeks,
		Revisions:   set.CurriculumRevisions,
	})
	cascade := progress.Standard(log, metrics,
		progress.NewSkillUpdater(progress.SkillDeps{Log: log, Catalog: cat, Skills: set.Skills}),
		progress.NewStreakUpdater(progress.StreakDeps{Log: log, Streaks: set.Streaks}),
		progress.NewBadgeEvaluator(progress.BadgeDeps{
			Log:          log,
			Metrics:      metrics,
			Sessions:     set.Sessions,
			Submissions:  set.Submissions,
			Assessments:  set.Assessments,
			Skills:       set.Skills,
			Streaks:      set.Streaks,
			Achievements: set.Achievements,
		}),
		planner,
	)

	return &testApp{
		db:      db,
		set:     set,
		model:   model,
		metrics: metrics,
		conversation: NewConversationService(ConversationDeps{
			Log:         log,
			Catalog:     cat,
			Model:       model,
			Sessions:    set.Sessions,
			Turns:       set.Turns,
			Assessments: set.Assessments,
			Aggregate:   aggregates.NewConversationAggregate(aggregates.ConversationAggregateDeps{Base: base, Sessions: set.Sessions, Turns: set.Turns}),
			Clock:       clock.Now,
		}),
		grading: NewGradingService(GradingDeps{
			Log:         log,
			Metrics:     metrics,
			Catalog:     cat,
			Grader:      NewGrader(log, model),
			Sessions:    set.Sessions,
			Submissions: set.Submissions,
			Assessments: set.Assessments,
			Aggregate: aggregates.NewGradingAggregate(aggregates.GradingAggregateDeps{
				Base:        base,
				Sessions:    set.Sessions,
				Submissions: set.Submissions,
				Assessments: set.Assessments,
			}),
			Cascade: cascade,
			Clock:   clock.Now,
		}),
		progress:   NewProgressService(log, set.Skills, set.Streaks, set.Achievements, 0),
		curriculum: NewCurriculumService(log, set.Curricula, set.CurriculumWeeks, set.CurriculumRevisions, planner),
	}
}

func childContext(child uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{ChildID: child})
}

const goodStory = "Yesterday my little brother and I found a tiny kitten hiding under the porch. " +
	"First we gave it some milk in a blue bowl. Then it purred and climbed into my lap. " +
	"In the end our mom said we could keep it, and we named it Pepper."
