package aggregates

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
)

// CASGuard runs compare-and-set updates for aggregate writes.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

func (g CASGuard) baseDB(dbc dbctx.Context) (*gorm.DB, error) {
	if db := dbc.Conn(g.db); db != nil {
		return db, nil
	}
	return nil, ValidationError("missing db transaction context")
}

// UpdateByVersion applies updates only when id and version still match,
// and bumps version in the same statement.
func (g CASGuard) UpdateByVersion(dbc dbctx.Context, table string, id uuid.UUID, expectedVersion int, updates map[string]any) (bool, error) {
	db, err := g.baseDB(dbc)
	if err != nil {
		return false, err
	}
	table = strings.TrimSpace(table)
	if table == "" || id == uuid.Nil {
		return false, ValidationError("table and id are required for UpdateByVersion")
	}
	if expectedVersion < 0 {
		return false, ValidationError("expectedVersion must be >= 0")
	}
	next := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		next[k] = v
	}
	next["version"] = expectedVersion + 1
	res := db.Table(table).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(next)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateByPhase applies updates only while the row is in one of the
// allowed phases.
func (g CASGuard) UpdateByPhase(dbc dbctx.Context, table string, id uuid.UUID, allowedPhases []string, updates map[string]any) (bool, error) {
	db, err := g.baseDB(dbc)
	if err != nil {
		return false, err
	}
	table = strings.TrimSpace(table)
	if table == "" || id == uuid.Nil {
		return false, ValidationError("table and id are required for UpdateByPhase")
	}
	if len(allowedPhases) == 0 {
		return false, ValidationError("allowedPhases must not be empty")
	}
	res := db.Table(table).
		Where("id = ? AND phase IN ?", id, allowedPhases).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func RequireCASSuccess(ok bool, message string) error {
	if ok {
		return nil
	}
	return ConflictError(strings.TrimSpace(message))
}

// RequirePhase fails with an invariant error unless current is one of allowed.
func RequirePhase(current string, allowed ...string) error {
	current = strings.TrimSpace(current)
	if len(allowed) == 0 {
		return ValidationError("allowed phases cannot be empty")
	}
	for _, p := range allowed {
		if current == strings.TrimSpace(p) {
			return nil
		}
	}
	return InvariantError("session is in phase " + current + ", expected " + strings.Join(allowed, " or "))
}

func RequireVersionMatch(current, expected int) error {
	if expected < 0 {
		return ValidationError("expected version must be >= 0")
	}
	if current != expected {
		return ConflictError("session changed during this request")
	}
	return nil
}
