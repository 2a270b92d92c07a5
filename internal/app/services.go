package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/writecoach-backend/internal/catalog"
	"github.com/yungbote/writecoach-backend/internal/data/aggregates"
	"github.com/yungbote/writecoach-backend/internal/data/repos"
	domainagg "github.com/yungbote/writecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/writecoach-backend/internal/observability"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
	"github.com/yungbote/writecoach-backend/internal/progress"
	"github.com/yungbote/writecoach-backend/internal/services"
)

type Services struct {
	Conversation services.ConversationService
	Grading      services.GradingService
	Progress     services.ProgressService
	Curriculum   services.CurriculumService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, cat *catalog.Catalog, set repos.Set, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	cal, err := progress.NewCalendar(cfg.Timezone)
	if err != nil {
		return Services{}, fmt.Errorf("init calendar: %w", err)
	}
	base := aggregates.BaseDeps{DB: db, Log: log, Hooks: aggregates.NewObservabilityHooks(metrics)}
	conversationAgg := aggregates.NewConversationAggregate(aggregates.ConversationAggregateDeps{
		Base:     base,
		Sessions: set.Sessions,
		Turns:    set.Turns,
	})
	gradingAgg := aggregates.NewGradingAggregate(aggregates.GradingAggregateDeps{
		Base:        base,
		Sessions:    set.Sessions,
		Submissions: set.Submissions,
		Assessments: set.Assessments,
	})
	for _, agg := range []domainagg.Aggregate{conversationAgg, gradingAgg} {
		log.Info("Aggregate wired", "contract", agg.Contract().String())
	}

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
		progress.NewStreakUpdater(progress.StreakDeps{Log: log, Calendar: cal, Streaks: set.Streaks, WeeklyGoal: cfg.WeeklyGoal}),
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

	return Services{
		Conversation: services.NewConversationService(services.ConversationDeps{
			Log:         log,
			Catalog:     cat,
			Model:       clients.Coach,
			Sessions:    set.Sessions,
			Turns:       set.Turns,
			Assessments: set.Assessments,
			Aggregate:   conversationAgg,
		}),
		Grading: services.NewGradingService(services.GradingDeps{
			Log:          log,
			Metrics:      metrics,
			Catalog:      cat,
			Grader:       services.NewGrader(log, clients.Grader),
			Locker:       clients.Locker,
			Sessions:     set.Sessions,
			Submissions:  set.Submissions,
			Assessments:  set.Assessments,
			Aggregate:    gradingAgg,
			Cascade:      cascade,
			MaxRevisions: cfg.MaxRevisions,
		}),
		Progress:   services.NewProgressService(log, set.Skills, set.Streaks, set.Achievements, cfg.WeeklyGoal),
		Curriculum: services.NewCurriculumService(log, set.Curricula, set.CurriculumWeeks, set.CurriculumRevisions, planner),
	}, nil
}
