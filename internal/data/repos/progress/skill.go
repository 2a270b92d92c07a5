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

type SkillProgressRepo interface {
	GetByChildAndSkill(dbc dbctx.Context, childID uuid.UUID, skillName string) (*types.SkillProgress, error)
	ListByChild(dbc dbctx.Context, childID uuid.UUID) ([]*types.SkillProgress, error)
	// Upsert writes row keyed by (child_id, skill_name).
	Upsert(dbc dbctx.Context, row *types.SkillProgress) error
}

type skillProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillProgressRepo(db *gorm.DB, baseLog *logger.Logger) SkillProgressRepo {
	return &skillProgressRepo{db: db, log: baseLog.With("repo", "SkillProgressRepo")}
}

func (r *skillProgressRepo) GetByChildAndSkill(dbc dbctx.Context, childID uuid.UUID, skillName string) (*types.SkillProgress, error) {
	if childID == uuid.Nil || skillName == "" {
		return nil, fmt.Errorf("missing child_id or skill_name")
	}
	txx := dbc.Conn(r.db)
	var out []*types.SkillProgress
	if err := txx.
		Model(&types.SkillProgress{}).
		Where("child_id = ? AND skill_name = ?", childID, skillName).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *skillProgressRepo) ListByChild(dbc dbctx.Context, childID uuid.UUID) ([]*types.SkillProgress, error) {
	if childID == uuid.Nil {
		return nil, fmt.Errorf("missing child_id")
	}
	txx := dbc.Conn(r.db)
	var out []*types.SkillProgress
	if err := txx.
		Model(&types.SkillProgress{}).
		Where("child_id = ?", childID).
		Order("skill_category ASC, skill_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *skillProgressRepo) Upsert(dbc dbctx.Context, row *types.SkillProgress) error {
	if row == nil || row.ChildID == uuid.Nil || row.SkillName == "" {
		return nil
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
	return txx.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "child_id"}, {Name: "skill_name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"skill_category",
				"score",
				"level",
				"total_attempts",
				"updated_at",
			}),
		}).
		Create(row).Error
}
