package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/writecoach-backend/internal/coaching/phase"
	types "github.com/yungbote/writecoach-backend/internal/domain"
)

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, childID uuid.UUID, lessonID string, p phase.Phase) *types.Session {
	tb.Helper()
	now := time.Now().UTC()
	s := &types.Session{
		ID:        uuid.New(),
		ChildID:   childID,
		LessonID:  lessonID,
		Phase:     string(p),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.Rank() >= phase.Guided.Rank() {
		s.InstructionCompleted = true
		s.ComprehensionCheckPassed = true
	}
	if p.Rank() >= phase.Assessment.Rank() {
		s.GuidedComplete = true
		s.WritingStartedAt = &now
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

func SeedSubmission(tb testing.TB, ctx context.Context, tx *gorm.DB, s *types.Session, revision int, words int, at time.Time) *types.WritingSubmission {
	tb.Helper()
	sub := &types.WritingSubmission{
		ID:             uuid.New(),
		SessionID:      s.ID,
		ChildID:        s.ChildID,
		LessonID:       s.LessonID,
		Text:           "seeded submission",
		WordCount:      words,
		RevisionNumber: revision,
		CreatedAt:      at.UTC(),
	}
	if err := tx.WithContext(ctx).Create(sub).Error; err != nil {
		tb.Fatalf("seed submission: %v", err)
	}
	return sub
}

func SeedAssessment(tb testing.TB, ctx context.Context, tx *gorm.DB, sub *types.WritingSubmission, overall float64, at time.Time) *types.Assessment {
	tb.Helper()
	a := &types.Assessment{
		ID:           uuid.New(),
		SessionID:    sub.SessionID,
		SubmissionID: sub.ID,
		ChildID:      sub.ChildID,
		LessonID:     sub.LessonID,
		Scores:       datatypes.NewJSONType(map[string]float64{"ideas": overall}),
		OverallScore: overall,
		Feedback:     datatypes.NewJSONType(types.Feedback{Strength: "s", Growth: "g", Encouragement: "e"}),
		CreatedAt:    at.UTC(),
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed assessment: %v", err)
	}
	return a
}

// SeedCurriculum creates an active curriculum with one week per entry of
// statuses, each holding lessons.
func SeedCurriculum(tb testing.TB, ctx context.Context, tx *gorm.DB, childID uuid.UUID, statuses []string, lessons [][]string) (*types.Curriculum, []*types.CurriculumWeek) {
	tb.Helper()
	now := time.Now().UTC()
	c := &types.Curriculum{
		ID:        uuid.New(),
		ChildID:   childID,
		Status:    types.CurriculumActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed curriculum: %v", err)
	}
	weeks := make([]*types.CurriculumWeek, 0, len(statuses))
	for i, st := range statuses {
		var ids []string
		if i < len(lessons) {
			ids = lessons[i]
		}
		w := &types.CurriculumWeek{
			ID:           uuid.New(),
			CurriculumID: c.ID,
			WeekNumber:   i + 1,
			Status:       st,
			LessonIDs:    datatypes.NewJSONType(ids),
			UpdatedAt:    now,
		}
		if err := tx.WithContext(ctx).Create(w).Error; err != nil {
			tb.Fatalf("seed curriculum week: %v", err)
		}
		weeks = append(weeks, w)
	}
	return c, weeks
}
