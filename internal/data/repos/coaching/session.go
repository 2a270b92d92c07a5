package coaching

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/writecoach-backend/internal/coaching/phase"
	types "github.com/yungbote/writecoach-backend/internal/domain"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

type SessionRepo interface {
	Create(dbc dbctx.Context, rows []*types.Session) ([]*types.Session, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Session, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Session, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// ListCompletedLessonIDs returns the distinct lessons a child has taken
	// through grading.
	ListCompletedLessonIDs(dbc dbctx.Context, childID uuid.UUID) ([]string, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) Create(dbc dbctx.Context, rows []*types.Session) ([]*types.Session, error) {
	if len(rows) == 0 {
		return []*types.Session{}, nil
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
		if row.UpdatedAt.IsZero() {
			row.UpdatedAt = row.CreatedAt
		}
	}
	if err := txx.Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *sessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Session, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Conn(r.db)
	var out []*types.Session
	if err := txx.
		Model(&types.Session{}).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *sessionRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Session, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	if !dbc.InTx() {
		return nil, fmt.Errorf("LockByID requires an open transaction")
	}
	var out types.Session
	if err := dbc.Conn(nil).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *sessionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	txx := dbc.Conn(r.db)
	return txx.
		Model(&types.Session{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *sessionRepo) ListCompletedLessonIDs(dbc dbctx.Context, childID uuid.UUID) ([]string, error) {
	if childID == uuid.Nil {
		return nil, fmt.Errorf("missing child_id")
	}
	txx := dbc.Conn(r.db)
	var out []string
	if err := txx.
		Model(&types.Session{}).
		Where("child_id = ? AND phase = ?", childID, string(phase.Feedback)).
		Distinct("lesson_id").
		Order("lesson_id").
		Pluck("lesson_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
