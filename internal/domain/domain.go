package domain

import (
	"github.com/yungbote/writecoach-backend/internal/domain/coaching"
	"github.com/yungbote/writecoach-backend/internal/domain/curriculum"
	"github.com/yungbote/writecoach-backend/internal/domain/progress"
)

const (
	RoleCoach   = coaching.RoleCoach
	RoleStudent = coaching.RoleStudent

	LevelEmerging   = progress.LevelEmerging
	LevelDeveloping = progress.LevelDeveloping
	LevelProficient = progress.LevelProficient
	LevelAdvanced   = progress.LevelAdvanced

	CurriculumActive = curriculum.StatusActive
	WeekPending      = curriculum.WeekPending
	WeekInProgress   = curriculum.WeekInProgress
	WeekCompleted    = curriculum.WeekCompleted

	RevisionReasonStruggling = curriculum.ReasonStruggling
	RevisionReasonExcelling  = curriculum.ReasonExcelling
)

type Session = coaching.Session
type Turn = coaching.Turn
type Affordances = coaching.Affordances
type WritingSubmission = coaching.WritingSubmission
type Assessment = coaching.Assessment
type Feedback = coaching.Feedback

type SkillProgress = progress.SkillProgress
type Streak = progress.Streak
type Achievement = progress.Achievement

type Curriculum = curriculum.Curriculum
type CurriculumWeek = curriculum.CurriculumWeek
type CurriculumRevision = curriculum.CurriculumRevision
type Plan = curriculum.Plan
type PlanWeek = curriculum.PlanWeek

// PhaseUpdates maps a phase and its state onto lesson_session columns.
var PhaseUpdates = coaching.PhaseUpdates

// SnapshotPlan captures curriculum weeks as a Plan in week order.
var SnapshotPlan = curriculum.SnapshotPlan

// Models lists every persisted type in migration order.
func Models() []interface{} {
	return []interface{}{
		&Session{},
		&Turn{},
		&WritingSubmission{},
		&Assessment{},
		&SkillProgress{},
		&Streak{},
		&Achievement{},
		&Curriculum{},
		&CurriculumWeek{},
		&CurriculumRevision{},
	}
}
