package coaching

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/writecoach-backend/internal/domain"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

// TurnRepo is append-only: there is no update or delete.
type TurnRepo interface {
	Create(dbc dbctx.Context, rows []*types.Turn) ([]*types.Turn, error)
	ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.Turn, error)
}

type turnRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTurnRepo(db *gorm.DB, baseLog *logger.Logger) TurnRepo {
	return &turnRepo{db: db, log: baseLog.With("repo", "TurnRepo")}
}

func (r *turnRepo) Create(dbc dbctx.Context, rows []*types.Turn) ([]*types.Turn, error) {
	if len(rows) == 0 {
		return []*types.Turn{}, nil
	}
	txx := dbc.Conn(r.db)
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.SessionID == uuid.Nil {
			return nil, fmt.Errorf("turn missing session_id")
		}
	}
	if err := txx.Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *turnRepo) ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.Turn, error) {
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("missing session_id")
	}
	txx := dbc.Conn(r.db)
	var out []*types.Turn
	if err := txx.
		Model(&types.Turn{}).
		Where("session_id = ?", sessionID).
		Order("seq ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
