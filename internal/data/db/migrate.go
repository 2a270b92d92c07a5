package db

import (
	"fmt"

	types "github.com/yungbote/writecoach-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}

// EnsureIndexes creates the query indexes AutoMigrate cannot express from
// struct tags. Uniqueness constraints live on the models themselves.
func EnsureIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		// Latest-first assessment reads per session.
		{"idx_assessment_session_created", `CREATE INDEX IF NOT EXISTS idx_assessment_session_created ON assessment (session_id, created_at DESC)`},
		// Sessions per child and phase for completed-lesson counts.
		{"idx_lesson_session_child_phase", `CREATE INDEX IF NOT EXISTS idx_lesson_session_child_phase ON lesson_session (child_id, phase)`},
		// Unseen badge lookups.
		{"idx_achievement_child_seen", `CREATE INDEX IF NOT EXISTS idx_achievement_child_seen ON achievement (child_id, seen)`},
	}
	for _, st := range stmts {
		if err := db.Exec(st.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", st.name, err)
		}
	}
	return nil
}
