package coaching

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RoleCoach   = "coach"
	RoleStudent = "student"
)

// Turn is one immutable entry in a session's conversation log.
type Turn struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_session_turn_seq,priority:1" json:"sessionId"`
	Seq       int64     `gorm:"not null;uniqueIndex:idx_session_turn_seq,priority:2" json:"seq"`
	Role      string    `gorm:"type:text;not null" json:"role"`
	// Coach content is stored with control directives already stripped;
	// the UI directives it carried are kept decoded in Affordances.
	Content     string                         `gorm:"type:text;not null" json:"content"`
	Affordances datatypes.JSONType[Affordances] `json:"affordances"`
	CreatedAt   time.Time                      `gorm:"not null" json:"timestamp"`
}

// Affordances are the UI directives decoded from a coach reply.
type Affordances struct {
	Step         *int     `json:"step,omitempty"`
	GuidedStage  *int     `json:"guidedStage,omitempty"`
	AnswerType   string   `json:"answerType,omitempty"`
	Options      []string `json:"options,omitempty"`
	Passage      string   `json:"passage,omitempty"`
	AnswerPrompt string   `json:"answerPrompt,omitempty"`
}

func (Turn) TableName() string { return "session_turn" }
