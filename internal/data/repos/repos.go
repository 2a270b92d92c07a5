package repos

import (
	"github.com/yungbote/writecoach-backend/internal/data/repos/coaching"
	"github.com/yungbote/writecoach-backend/internal/data/repos/curriculum"
	"github.com/yungbote/writecoach-backend/internal/data/repos/progress"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type SessionRepo = coaching.SessionRepo
type TurnRepo = coaching.TurnRepo
type SubmissionRepo = coaching.SubmissionRepo
type SubmissionStats = coaching.SubmissionStats
type AssessmentRepo = coaching.AssessmentRepo

type SkillProgressRepo = progress.SkillProgressRepo
type StreakRepo = progress.StreakRepo
type AchievementRepo = progress.AchievementRepo

type CurriculumRepo = curriculum.CurriculumRepo
type CurriculumWeekRepo = curriculum.CurriculumWeekRepo
type CurriculumRevisionRepo = curriculum.CurriculumRevisionRepo

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return coaching.NewSessionRepo(db, baseLog)
}
func NewTurnRepo(db *gorm.DB, baseLog *logger.Logger) TurnRepo {
	return coaching.NewTurnRepo(db, baseLog)
}
func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	return coaching.NewSubmissionRepo(db, baseLog)
}
func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	return coaching.NewAssessmentRepo(db, baseLog)
}

func NewSkillProgressRepo(db *gorm.DB, baseLog *logger.Logger) SkillProgressRepo {
	return progress.NewSkillProgressRepo(db, baseLog)
}
func NewStreakRepo(db *gorm.DB, baseLog *logger.Logger) StreakRepo {
	return progress.NewStreakRepo(db, baseLog)
}
func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return progress.NewAchievementRepo(db, baseLog)
}

func NewCurriculumRepo(db *gorm.DB, baseLog *logger.Logger) CurriculumRepo {
	return curriculum.NewCurriculumRepo(db, baseLog)
}
func NewCurriculumWeekRepo(db *gorm.DB, baseLog *logger.Logger) CurriculumWeekRepo {
	return curriculum.NewCurriculumWeekRepo(db, baseLog)
}
func NewCurriculumRevisionRepo(db *gorm.DB, baseLog *logger.Logger) CurriculumRevisionRepo {
	return curriculum.NewCurriculumRevisionRepo(db, baseLog)
}

// Set is every table repo over one database handle.
type Set struct {
	Sessions    SessionRepo
	Turns       TurnRepo
	Submissions SubmissionRepo
	Assessments AssessmentRepo

	Skills       SkillProgressRepo
	Streaks      StreakRepo
	Achievements AchievementRepo

	Curricula           CurriculumRepo
	CurriculumWeeks     CurriculumWeekRepo
	CurriculumRevisions CurriculumRevisionRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Sessions:            NewSessionRepo(db, baseLog),
		Turns:               NewTurnRepo(db, baseLog),
		Submissions:         NewSubmissionRepo(db, baseLog),
		Assessments:         NewAssessmentRepo(db, baseLog),
		Skills:              NewSkillProgressRepo(db, baseLog),
		Streaks:             NewStreakRepo(db, baseLog),
		Achievements:        NewAchievementRepo(db, baseLog),
		Curricula:           NewCurriculumRepo(db, baseLog),
		CurriculumWeeks:     NewCurriculumWeekRepo(db, baseLog),
		CurriculumRevisions: NewCurriculumRevisionRepo(db, baseLog),
	}
}
