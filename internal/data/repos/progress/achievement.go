package progress

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/writecoach-backend/internal/domain"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

type AchievementRepo interface {
	ListByChild(dbc dbctx.Context, childID uuid.UUID) ([]*types.Achievement, error)
	// CreateIgnoreDuplicates inserts rows in one statement, skipping badges
	// the child already holds. Returns the number of rows inserted.
	CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.Achievement) (int64, error)
	MarkAllSeen(dbc dbctx.Context, childID uuid.UUID) (int64, error)
}

type achievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return &achievementRepo{db: db, log: baseLog.With("repo", "AchievementRepo")}
}

func (r *achievementRepo) ListByChild(dbc dbctx.Context, childID uuid.UUID) ([]*types.Achievement, error) {
	if childID == uuid.Nil {
		return nil, fmt.Errorf("missing child_id")
	}
	txx := dbc.Conn(r.db)
	var out []*types.Achievement
	if err := txx.
		Model(&types.Achievement{}).
		Where("child_id = ?", childID).
		Order("unlocked_at ASC, badge_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *achievementRepo) CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.Achievement) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	txx := dbc.Conn(r.db)
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.UnlockedAt.IsZero() {
			row.UnlockedAt = now
		}
	}
	res := txx.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "child_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *achievementRepo) MarkAllSeen(dbc dbctx.Context, childID uuid.UUID) (int64, error) {
	if childID == uuid.Nil {
		return 0, fmt.Errorf("missing child_id")
	}
	txx := dbc.Conn(r.db)
	res := txx.
		Model(&types.Achievement{}).
		Where("child_id = ? AND seen = ?", childID, false).
		Update("seen", true)
	return res.RowsAffected, res.Error
}
