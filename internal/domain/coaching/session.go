package coaching

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/writecoach-backend/internal/coaching/phase"
)

// Session is one child's run through one lesson. Phase only moves forward
// along the edges in internal/coaching/phase.
type Session struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChildID  uuid.UUID `gorm:"type:uuid;not null;index" json:"childId"`
	LessonID string    `gorm:"type:text;not null;index" json:"lessonId"`
	Phase    string    `gorm:"type:text;not null;index" json:"phase"`

	InstructionCompleted     bool       `gorm:"not null;default:false" json:"instructionCompleted"`
	ComprehensionCheckPassed bool       `gorm:"not null;default:false" json:"comprehensionCheckPassed"`
	GuidedAttempts           int        `gorm:"not null;default:0" json:"guidedAttempts"`
	HintsGiven               int        `gorm:"not null;default:0" json:"hintsGiven"`
	GuidedComplete           bool       `gorm:"not null;default:false" json:"guidedComplete"`
	WritingStartedAt         *time.Time `json:"writingStartedAt,omitempty"`

	// Next turn sequence number; advanced in the same write as the turns.
	NextSeq int64 `gorm:"column:next_seq;not null;default:0" json:"-"`
	// Optimistic concurrency token for chat cycles.
	Version int `gorm:"not null;default:0" json:"version"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Session) TableName() string { return "lesson_session" }

func (s *Session) CurrentPhase() phase.Phase { return phase.Phase(s.Phase) }

func (s *Session) PhaseState() phase.State {
	return phase.State{
		InstructionCompleted:     s.InstructionCompleted,
		ComprehensionCheckPassed: s.ComprehensionCheckPassed,
		GuidedAttempts:           s.GuidedAttempts,
		HintsGiven:               s.HintsGiven,
		GuidedComplete:           s.GuidedComplete,
		WritingStartedAt:         s.WritingStartedAt,
	}
}

// PhaseUpdates returns the column updates that persist p and st.
func PhaseUpdates(p phase.Phase, st phase.State) map[string]interface{} {
	return map[string]interface{}{
		"phase":                      string(p),
		"instruction_completed":      st.InstructionCompleted,
		"comprehension_check_passed": st.ComprehensionCheckPassed,
		"guided_attempts":            st.GuidedAttempts,
		"hints_given":                st.HintsGiven,
		"guided_complete":            st.GuidedComplete,
		"writing_started_at":         st.WritingStartedAt,
	}
}
