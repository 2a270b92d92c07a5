package coaching

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type WritingSubmission struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_submission_session_revision,priority:1" json:"sessionId"`
	ChildID   uuid.UUID `gorm:"type:uuid;not null;index" json:"childId"`
	LessonID  string    `gorm:"type:text;not null" json:"lessonId"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	WordCount int       `gorm:"not null" json:"wordCount"`

	RevisionOf *uuid.UUID `gorm:"type:uuid" json:"revisionOf,omitempty"`
	// 0 for the original, 1..N for revisions.
	RevisionNumber int `gorm:"not null;default:0;uniqueIndex:idx_submission_session_revision,priority:2" json:"revisionNumber"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

func (WritingSubmission) TableName() string { return "writing_submission" }

type Feedback struct {
	Strength      string `json:"strength"`
	Growth        string `json:"growth"`
	Encouragement string `json:"encouragement"`
}

// Assessment is an append-only grading result for one submission.
type Assessment struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID    uuid.UUID `gorm:"type:uuid;not null;index" json:"sessionId"`
	SubmissionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"submissionId"`
	ChildID      uuid.UUID `gorm:"type:uuid;not null;index:idx_assessment_child_created,priority:1" json:"childId"`
	LessonID     string    `gorm:"type:text;not null" json:"lessonId"`

	Scores       datatypes.JSONType[map[string]float64] `json:"scores"`
	OverallScore float64                                `gorm:"not null" json:"overallScore"`
	Feedback     datatypes.JSONType[Feedback]           `json:"feedback"`

	CreatedAt time.Time `gorm:"not null;index:idx_assessment_child_created,priority:2" json:"createdAt"`
}

func (Assessment) TableName() string { return "assessment" }
