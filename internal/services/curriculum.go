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

const defaultRevisionListLimit = 20

type CurriculumView struct {
	Curriculum *types.Curriculum       `json:"curriculum"`
	Weeks      []*types.CurriculumWeek `json:"weeks"`
}

type CurriculumService interface {
	Active(ctx context.Context) (*CurriculumView, error)
	// Create seeds the default plan, or returns the active one.
	Create(ctx context.Context) (*CurriculumView, error)
	Revisions(ctx context.Context, limit int) ([]*types.CurriculumRevision, error)
}

type curriculumService struct {
	log       *logger.Logger
	curricula repos.CurriculumRepo
	weeks     repos.CurriculumWeekRepo
	revisions repos.CurriculumRevisionRepo
	planner   *progress.CurriculumAdapter
}

func NewCurriculumService(log *logger.Logger, curricula repos.CurriculumRepo, weeks repos.CurriculumWeekRepo, revisions repos.CurriculumRevisionRepo, planner *progress.CurriculumAdapter) CurriculumService {
	return &curriculumService{
		log:       log.With("service", "CurriculumService"),
		curricula: curricula,
		weeks:     weeks,
		revisions: revisions,
		planner:   planner,
	}
}

func (cs *curriculumService) Active(ctx context.Context) (*CurriculumView, error) {
	childID, err := childFrom(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Of(ctx)
	cur, err := cs.curricula.GetActiveByChild(dbc, childID)
	if err != nil {
		return nil, apierr.Internal("load_curriculum", err)
	}
	if cur == nil {
		return nil, apierr.NotFound("curriculum_not_found", "no active curriculum")
	}
	weeks, err := cs.weeks.ListByCurriculum(dbc, cur.ID)
	if err != nil {
		return nil, apierr.Internal("load_weeks", err)
	}
	return &CurriculumView{Curriculum: cur, Weeks: weeks}, nil
}

func (cs *curriculumService) Create(ctx context.Context) (*CurriculumView, error) {
	childID, err := childFrom(ctx)
	if err != nil {
		return nil, err
	}
	cur, weeks, err := cs.planner.Plan(ctx, childID, time.Now().UTC())
	if err != nil {
		return nil, apierr.Internal("create_curriculum", err)
	}
	cs.log.Info("Curriculum ready", "curriculum_id", cur.ID, "weeks", len(weeks))
	return &CurriculumView{Curriculum: cur, Weeks: weeks}, nil
}

func (cs *curriculumService) Revisions(ctx context.Context, limit int) ([]*types.CurriculumRevision, error) {
	childID, err := childFrom(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRevisionListLimit
	}
	dbc := dbctx.Of(ctx)
	cur, err := cs.curricula.GetActiveByChild(dbc, childID)
	if err != nil {
		return nil, apierr.Internal("load_curriculum", err)
	}
	if cur == nil {
		return []*types.CurriculumRevision{}, nil
	}
	out, err := cs.revisions.ListByCurriculum(dbc, cur.ID, limit)
	if err != nil {
		return nil, apierr.Internal("load_revisions", err)
	}
	return out, nil
}
