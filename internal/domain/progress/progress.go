package progress

import (
	"time"

	"github.com/google/uuid"
)

const (
	LevelEmerging   = "EMERGING"
	LevelDeveloping = "DEVELOPING"
	LevelProficient = "PROFICIENT"
	LevelAdvanced   = "ADVANCED"
)

// SkillProgress is a child's rolling mastery of one named skill.
type SkillProgress struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChildID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_skill_progress_child_skill,priority:1" json:"childId"`
	SkillCategory string    `gorm:"type:text;not null;index" json:"skillCategory"`
	SkillName     string    `gorm:"type:text;not null;uniqueIndex:idx_skill_progress_child_skill,priority:2" json:"skillName"`
	Score         float64   `gorm:"not null" json:"score"`
	Level         string    `gorm:"type:text;not null" json:"level"`
	TotalAttempts int       `gorm:"not null;default:0" json:"totalAttempts"`
	CreatedAt     time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"not null" json:"updatedAt"`
}

func (SkillProgress) TableName() string { return "skill_progress" }

// Streak tracks daily activity. Dates are calendar days ("2006-01-02") in
// the service timezone.
type Streak struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChildID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"childId"`
	CurrentStreak   int       `gorm:"not null;default:0" json:"currentStreak"`
	LongestStreak   int       `gorm:"not null;default:0" json:"longestStreak"`
	LastActiveDate  string    `gorm:"type:text;not null" json:"lastActiveDate"`
	WeekStartDate   string    `gorm:"type:text;not null" json:"weekStartDate"`
	WeeklyCompleted int       `gorm:"not null;default:0" json:"weeklyCompleted"`
	WeeklyGoal      int       `gorm:"not null;default:3" json:"weeklyGoal"`
	CreatedAt       time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"not null" json:"updatedAt"`
}

func (Streak) TableName() string { return "streak" }

// Achievement rows are never re-inserted for the same badge.
type Achievement struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChildID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_achievement_child_badge,priority:1" json:"childId"`
	BadgeID    string    `gorm:"type:text;not null;uniqueIndex:idx_achievement_child_badge,priority:2" json:"badgeId"`
	UnlockedAt time.Time `gorm:"not null" json:"unlockedAt"`
	Seen       bool      `gorm:"not null;default:false" json:"seen"`
}

func (Achievement) TableName() string { return "achievement" }
