package progress

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/writecoach-backend/internal/domain"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

type StreakRepo interface {
	GetByChild(dbc dbctx.Context, childID uuid.UUID) (*types.Streak, error)
	Create(dbc dbctx.Context, row *types.Streak) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type streakRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStreakRepo(db *gorm.DB, baseLog *logger.Logger) StreakRepo {
	return &streakRepo{db: db, log: baseLog.With("repo", "StreakRepo")}
}

func (r *streakRepo) GetByChild(dbc dbctx.Context, childID uuid.UUID) (*types.Streak, error) {
	if childID == uuid.Nil {
		return nil, fmt.Errorf("missing child_id")
	}
	txx := dbc.Conn(r.db)
	var out []*types.Streak
	if err := txx.
		Model(&types.Streak{}).
		Where("child_id = ?", childID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *streakRepo) Create(dbc dbctx.Context, row *types.Streak) error {
	if row == nil || row.ChildID == uuid.Nil {
		return fmt.Errorf("missing child_id")
	}
	txx := dbc.Conn(r.db)
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = now
	}
	return txx.Create(row).Error
}

func (r *streakRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	txx := dbc.Conn(r.db)
	return txx.
		Model(&types.Streak{}).
		Where("id = ?", id).
		Updates(updates).Error
}
