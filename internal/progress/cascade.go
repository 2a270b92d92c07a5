package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/writecoach-backend/internal/observability"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

// Event describes one committed grading.
type Event struct {
	ChildID      uuid.UUID
	SessionID    uuid.UUID
	LessonID     string
	AssessmentID uuid.UUID
	OverallScore float64
	WordCount    int
	Revision     bool
	At           time.Time
}

type Result struct {
	NewBadges []string
}

// Hook is one post-commit updater. Hooks share nothing but the Result.
type Hook struct {
	Name string
	Run  func(ctx context.Context, ev Event, res *Result) error
}

type Cascade struct {
	log     *logger.Logger
	metrics *observability.Metrics
	hooks   []Hook
}

func NewCascade(log *logger.Logger, metrics *observability.Metrics, hooks ...Hook) *Cascade {
	if log == nil {
		log = logger.Nop()
	}
	return &Cascade{log: log.With("service", "ProgressCascade"), metrics: metrics, hooks: hooks}
}

// Standard wires the four updaters in their fixed order.
func Standard(log *logger.Logger, metrics *observability.Metrics, skills *SkillUpdater, streak *StreakUpdater, badges *BadgeEvaluator, curriculum *CurriculumAdapter) *Cascade {
	return NewCascade(log, metrics,
		Hook{Name: "skills", Run: func(ctx context.Context, ev Event, _ *Result) error { return skills.Apply(ctx, ev) }},
		Hook{Name: "streak", Run: func(ctx context.Context, ev Event, _ *Result) error { return streak.Apply(ctx, ev) }},
		Hook{Name: "badges", Run: func(ctx context.Context, ev Event, res *Result) error {
			ids, err := badges.Apply(ctx, ev)
			if err != nil {
				return err
			}
			res.NewBadges = ids
			return nil
		}},
		Hook{Name: "curriculum", Run: func(ctx context.Context, ev Event, _ *Result) error { return curriculum.Apply(ctx, ev) }},
	)
}

// Run executes every hook in order. A failing or panicking hook is logged
// and skipped; Run itself never fails. NewBadges is never nil.
func (c *Cascade) Run(ctx context.Context, ev Event) Result {
	res := Result{NewBadges: []string{}}
	if c == nil {
		return res
	}
	for _, h := range c.hooks {
		c.runHook(ctx, h, ev, &res)
	}
	if res.NewBadges == nil {
		res.NewBadges = []string{}
	}
	return res
}

func (c *Cascade) runHook(ctx context.Context, h Hook, ev Event, res *Result) {
	ctx, span := observability.Tracer().Start(ctx, "progress."+h.Name)
	span.SetAttributes(
		attribute.String("session_id", ev.SessionID.String()),
		attribute.String("lesson_id", ev.LessonID),
		attribute.Bool("revision", ev.Revision),
	)
	defer span.End()

	start := time.Now()
	err := safeRun(ctx, h, ev, res)
	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Error("Progress hook failed", "hook", h.Name, "child_id", ev.ChildID, "session_id", ev.SessionID, "error", err)
	}
	c.metrics.ObserveCascadeHook(h.Name, status, time.Since(start))
}

func safeRun(ctx context.Context, h Hook, ev Event, res *Result) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s hook: %v", h.Name, r)
		}
	}()
	return h.Run(ctx, ev, res)
}
