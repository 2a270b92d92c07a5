package curriculum

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	StatusActive   = "active"
	StatusArchived = "archived"

	WeekPending    = "pending"
	WeekInProgress = "in_progress"
	WeekCompleted  = "completed"

	ReasonStruggling = "auto_struggling"
	ReasonExcelling  = "auto_excelling"
)

type Curriculum struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChildID   uuid.UUID `gorm:"type:uuid;not null;index" json:"childId"`
	Status    string    `gorm:"type:text;not null;index" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Curriculum) TableName() string { return "curriculum" }

type CurriculumWeek struct {
	ID           uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"id"`
	CurriculumID uuid.UUID                    `gorm:"type:uuid;not null;uniqueIndex:idx_curriculum_week_number,priority:1" json:"curriculumId"`
	WeekNumber   int                          `gorm:"not null;uniqueIndex:idx_curriculum_week_number,priority:2" json:"weekNumber"`
	Theme        string                       `gorm:"type:text" json:"theme"`
	Status       string                       `gorm:"type:text;not null" json:"status"`
	LessonIDs    datatypes.JSONType[[]string] `json:"lessonIds"`
	UpdatedAt    time.Time                    `gorm:"not null" json:"updatedAt"`
}

func (CurriculumWeek) TableName() string { return "curriculum_week" }

// PlanWeek is the snapshot of one week recorded in a revision.
type PlanWeek struct {
	WeekNumber int      `json:"weekNumber"`
	Status     string   `json:"status"`
	LessonIDs  []string `json:"lessonIds"`
}

type Plan []PlanWeek

// CurriculumRevision is an append-only audit record of an automatic change.
type CurriculumRevision struct {
	ID           uuid.UUID                `gorm:"type:uuid;primaryKey" json:"id"`
	CurriculumID uuid.UUID                `gorm:"type:uuid;not null;index:idx_curriculum_revision_created,priority:1" json:"curriculumId"`
	PreviousPlan datatypes.JSONType[Plan] `json:"previousPlan"`
	NewPlan      datatypes.JSONType[Plan] `json:"newPlan"`
	Reason       string                   `gorm:"type:text;not null" json:"reason"`
	CreatedAt    time.Time                `gorm:"not null;index:idx_curriculum_revision_created,priority:2" json:"createdAt"`
}

func (CurriculumRevision) TableName() string { return "curriculum_revision" }

// SnapshotPlan captures weeks in week order.
func SnapshotPlan(weeks []*CurriculumWeek) Plan {
	out := make(Plan, 0, len(weeks))
	for _, w := range weeks {
		if w == nil {
			continue
		}
		ids := append([]string(nil), w.LessonIDs.Data()...)
		out = append(out, PlanWeek{WeekNumber: w.WeekNumber, Status: w.Status, LessonIDs: ids})
	}
	return out
}
