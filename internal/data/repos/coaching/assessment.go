package coaching

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/writecoach-backend/internal/domain"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

// AssessmentRepo is append-only. Lists are newest first.
type AssessmentRepo interface {
	Create(dbc dbctx.Context, rows []*types.Assessment) ([]*types.Assessment, error)
	LatestBySession(dbc dbctx.Context, sessionID uuid.UUID) (*types.Assessment, error)
	ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.Assessment, error)
	ListRecentByChild(dbc dbctx.Context, childID uuid.UUID, limit int) ([]*types.Assessment, error)
}

type assessmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	return &assessmentRepo{db: db, log: baseLog.With("repo", "AssessmentRepo")}
}

func (r *assessmentRepo) Create(dbc dbctx.Context, rows []*types.Assessment) ([]*types.Assessment, error) {
	if len(rows) == 0 {
		return []*types.Assessment{}, nil
	}
	txx := dbc.Conn(r.db)
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
	}
	if err := txx.Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assessmentRepo) LatestBySession(dbc dbctx.Context, sessionID uuid.UUID) (*types.Assessment, error) {
	rows, err := r.listBySession(dbc, sessionID, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *assessmentRepo) ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.Assessment, error) {
	return r.listBySession(dbc, sessionID, 0)
}

func (r *assessmentRepo) listBySession(dbc dbctx.Context, sessionID uuid.UUID, limit int) ([]*types.Assessment, error) {
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("missing session_id")
	}
	txx := dbc.Conn(r.db)
	q := txx.
		Model(&types.Assessment{}).
		Where("session_id = ?", sessionID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.Assessment
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assessmentRepo) ListRecentByChild(dbc dbctx.Context, childID uuid.UUID, limit int) ([]*types.Assessment, error) {
	if childID == uuid.Nil {
		return nil, fmt.Errorf("missing child_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 10
	}
	txx := dbc.Conn(r.db)
	var out []*types.Assessment
	if err := txx.
		Model(&types.Assessment{}).
		Where("child_id = ?", childID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
