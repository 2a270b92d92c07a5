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

// SubmissionStats summarizes a child's writing for badge evaluation.
type SubmissionStats struct {
	Count      int64
	Revisions  int64
	TotalWords int64
	MaxWords   int64
}

type SubmissionRepo interface {
	Create(dbc dbctx.Context, rows []*types.WritingSubmission) ([]*types.WritingSubmission, error)
	ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.WritingSubmission, error)
	// LatestBySession returns the submission with the highest revision
	// number, or nil.
	LatestBySession(dbc dbctx.Context, sessionID uuid.UUID) (*types.WritingSubmission, error)
	CountBySession(dbc dbctx.Context, sessionID uuid.UUID) (int64, error)
	StatsByChild(dbc dbctx.Context, childID uuid.UUID) (SubmissionStats, error)
}

type submissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	return &submissionRepo{db: db, log: baseLog.With("repo", "SubmissionRepo")}
}

func (r *submissionRepo) Create(dbc dbctx.Context, rows []*types.WritingSubmission) ([]*types.WritingSubmission, error) {
	if len(rows) == 0 {
		return []*types.WritingSubmission{}, nil
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

func (r *submissionRepo) ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.WritingSubmission, error) {
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("missing session_id")
	}
	txx := dbc.Conn(r.db)
	var out []*types.WritingSubmission
	if err := txx.
		Model(&types.WritingSubmission{}).
		Where("session_id = ?", sessionID).
		Order("revision_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *submissionRepo) LatestBySession(dbc dbctx.Context, sessionID uuid.UUID) (*types.WritingSubmission, error) {
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("missing session_id")
	}
	txx := dbc.Conn(r.db)
	var out []*types.WritingSubmission
	if err := txx.
		Model(&types.WritingSubmission{}).
		Where("session_id = ?", sessionID).
		Order("revision_number DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *submissionRepo) CountBySession(dbc dbctx.Context, sessionID uuid.UUID) (int64, error) {
	if sessionID == uuid.Nil {
		return 0, fmt.Errorf("missing session_id")
	}
	txx := dbc.Conn(r.db)
	var n int64
	if err := txx.
		Model(&types.WritingSubmission{}).
		Where("session_id = ?", sessionID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *submissionRepo) StatsByChild(dbc dbctx.Context, childID uuid.UUID) (SubmissionStats, error) {
	var out SubmissionStats
	if childID == uuid.Nil {
		return out, fmt.Errorf("missing child_id")
	}
	txx := dbc.Conn(r.db)
	row := struct {
		Count      int64
		Revisions  int64
		TotalWords int64
		MaxWords   int64
	}{}
	if err := txx.
		Model(&types.WritingSubmission{}).
		Select(`COUNT(*) AS count,
			COALESCE(SUM(CASE WHEN revision_number > 0 THEN 1 ELSE 0 END), 0) AS revisions,
			COALESCE(SUM(word_count), 0) AS total_words,
			COALESCE(MAX(word_count), 0) AS max_words`).
		Where("child_id = ?", childID).
		Scan(&row).Error; err != nil {
		return out, err
	}
	out = SubmissionStats(row)
	return out, nil
}
