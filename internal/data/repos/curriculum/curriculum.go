package curriculum

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/writecoach-backend/internal/domain"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

type CurriculumRepo interface {
	Create(dbc dbctx.Context, row *types.Curriculum) error
	// GetActiveByChild returns the newest active curriculum, or nil.
	GetActiveByChild(dbc dbctx.Context, childID uuid.UUID) (*types.Curriculum, error)
	Touch(dbc dbctx.Context, id uuid.UUID, at time.Time) error
}

type curriculumRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCurriculumRepo(db *gorm.DB, baseLog *logger.Logger) CurriculumRepo {
	return &curriculumRepo{db: db, log: baseLog.With("repo", "CurriculumRepo")}
}

func (r *curriculumRepo) Create(dbc dbctx.Context, row *types.Curriculum) error {
	if row == nil || row.ChildID == uuid.Nil {
		return fmt.Errorf("missing child_id")
	}
	txx := dbc.Conn(r.db)
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.Status == "" {
		row.Status = types.CurriculumActive
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return txx.Create(row).Error
}

func (r *curriculumRepo) GetActiveByChild(dbc dbctx.Context, childID uuid.UUID) (*types.Curriculum, error) {
	if childID == uuid.Nil {
		return nil, fmt.Errorf("missing child_id")
	}
	txx := dbc.Conn(r.db)
	var out []*types.Curriculum
	if err := txx.
		Model(&types.Curriculum{}).
		Where("child_id = ? AND status = ?", childID, types.CurriculumActive).
		Order("created_at DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *curriculumRepo) Touch(dbc dbctx.Context, id uuid.UUID, at time.Time) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	txx := dbc.Conn(r.db)
	return txx.
		Model(&types.Curriculum{}).
		Where("id = ?", id).
		Update("updated_at", at.UTC()).Error
}

type CurriculumWeekRepo interface {
	Create(dbc dbctx.Context, rows []*types.CurriculumWeek) ([]*types.CurriculumWeek, error)
	ListByCurriculum(dbc dbctx.Context, curriculumID uuid.UUID) ([]*types.CurriculumWeek, error)
	// UpdatePendingLessons rewrites a week's lessons only while it is still
	// pending. Returns false when the week has moved on.
	UpdatePendingLessons(dbc dbctx.Context, id uuid.UUID, lessonIDs []string, at time.Time) (bool, error)
	UpdateStatus(dbc dbctx.Context, id uuid.UUID, status string, at time.Time) error
}

type curriculumWeekRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCurriculumWeekRepo(db *gorm.DB, baseLog *logger.Logger) CurriculumWeekRepo {
	return &curriculumWeekRepo{db: db, log: baseLog.With("repo", "CurriculumWeekRepo")}
}

func (r *curriculumWeekRepo) Create(dbc dbctx.Context, rows []*types.CurriculumWeek) ([]*types.CurriculumWeek, error) {
	if len(rows) == 0 {
		return []*types.CurriculumWeek{}, nil
	}
	txx := dbc.Conn(r.db)
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.Status == "" {
			row.Status = types.WeekPending
		}
		if row.UpdatedAt.IsZero() {
			row.UpdatedAt = now
		}
	}
	if err := txx.Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *curriculumWeekRepo) ListByCurriculum(dbc dbctx.Context, curriculumID uuid.UUID) ([]*types.CurriculumWeek, error) {
	if curriculumID == uuid.Nil {
		return nil, fmt.Errorf("missing curriculum_id")
	}
	txx := dbc.Conn(r.db)
	var out []*types.CurriculumWeek
	if err := txx.
		Model(&types.CurriculumWeek{}).
		Where("curriculum_id = ?", curriculumID).
		Order("week_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *curriculumWeekRepo) UpdatePendingLessons(dbc dbctx.Context, id uuid.UUID, lessonIDs []string, at time.Time) (bool, error) {
	if id == uuid.Nil {
		return false, fmt.Errorf("missing id")
	}
	txx := dbc.Conn(r.db)
	res := txx.
		Model(&types.CurriculumWeek{}).
		Where("id = ? AND status = ?", id, types.WeekPending).
		Updates(map[string]interface{}{
			"lesson_ids": datatypes.NewJSONType(lessonIDs),
			"updated_at": at.UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *curriculumWeekRepo) UpdateStatus(dbc dbctx.Context, id uuid.UUID, status string, at time.Time) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	txx := dbc.Conn(r.db)
	return txx.
		Model(&types.CurriculumWeek{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": at.UTC()}).Error
}

// CurriculumRevisionRepo is append-only. Lists are newest first.
type CurriculumRevisionRepo interface {
	Create(dbc dbctx.Context, row *types.CurriculumRevision) error
	ListByCurriculum(dbc dbctx.Context, curriculumID uuid.UUID, limit int) ([]*types.CurriculumRevision, error)
	LatestByReason(dbc dbctx.Context, curriculumID uuid.UUID, reason string) (*types.CurriculumRevision, error)
}

type curriculumRevisionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCurriculumRevisionRepo(db *gorm.DB, baseLog *logger.Logger) CurriculumRevisionRepo {
	return &curriculumRevisionRepo{db: db, log: baseLog.With("repo", "CurriculumRevisionRepo")}
}

func (r *curriculumRevisionRepo) Create(dbc dbctx.Context, row *types.CurriculumRevision) error {
	if row == nil || row.CurriculumID == uuid.Nil {
		return fmt.Errorf("missing curriculum_id")
	}
	txx := dbc.Conn(r.db)
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return txx.Create(row).Error
}

func (r *curriculumRevisionRepo) ListByCurriculum(dbc dbctx.Context, curriculumID uuid.UUID, limit int) ([]*types.CurriculumRevision, error) {
	if curriculumID == uuid.Nil {
		return nil, fmt.Errorf("missing curriculum_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Conn(r.db)
	var out []*types.CurriculumRevision
	if err := txx.
		Model(&types.CurriculumRevision{}).
		Where("curriculum_id = ?", curriculumID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *curriculumRevisionRepo) LatestByReason(dbc dbctx.Context, curriculumID uuid.UUID, reason string) (*types.CurriculumRevision, error) {
	if curriculumID == uuid.Nil {
		return nil, fmt.Errorf("missing curriculum_id")
	}
	txx := dbc.Conn(r.db)
	var out []*types.CurriculumRevision
	if err := txx.
		Model(&types.CurriculumRevision{}).
		Where("curriculum_id = ? AND reason = ?", curriculumID, reason).
		Order("created_at DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
