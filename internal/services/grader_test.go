package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/writecoach-backend/internal/catalog"
	"github.com/yungbote/writecoach-backend/internal/clients/llm"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

func narrativeRubric(t *testing.T) (*catalog.Catalog, *catalog.Lesson, *catalog.Rubric) {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	lesson, rubric, ok := cat.RubricFor("narrative-1")
	if !ok {
		t.Fatalf("narrative-1 missing from catalog")
	}
	return cat, lesson, rubric
}

func TestSnapScore(t *testing.T) {
	cases := map[float64]float64{0: 1, 1.2: 1, 1.3: 1.5, 2.74: 2.5, 2.75: 3, 3.9: 4, 7: 4}
	for in, want := range cases {
		if got := SnapScore(in); got != want {
			t.Fatalf("SnapScore(%v): want=%v got=%v", in, want, got)
		}
	}
}

func TestParseGradeJSON(t *testing.T) {
	_, _, rubric := narrativeRubric(t)
	reply := "Here you go:\n```json\n" +
		`{"scores":{"ideas":3,"organization":2.2,"voice":4,"conventions":3,"spelling":1},` +
		`"feedback":{"strength":"Great hook.","growth":"Use paragraphs.","encouragement":"Keep writing!"}}` +
		"\n```"
	got, err := ParseGrade(reply, rubric)
	if err != nil {
		t.Fatalf("ParseGrade: %v", err)
	}
	want := map[string]float64{"ideas": 3, "organization": 2, "voice": 4, "conventions": 3}
	if diff := cmp.Diff(want, got.Scores); diff != "" {
		t.Fatalf("scores (-want +got):\n%s", diff)
	}
	if got.OverallScore != 2.9 {
		t.Fatalf("overall: %v", got.OverallScore)
	}
	if got.Feedback.Growth != "Use paragraphs." {
		t.Fatalf("feedback: %+v", got.Feedback)
	}
}

func TestParseGradeFallsBackToScoresMarker(t *testing.T) {
	_, _, rubric := narrativeRubric(t)
	reply := "[SCORES]ideas:2,organization:2,voice:abc,conventions:2[/SCORES] Nice start on your story!"
	got, err := ParseGrade(reply, rubric)
	if err != nil {
		t.Fatalf("ParseGrade: %v", err)
	}
	if len(got.Scores) != 3 || got.OverallScore != 2 {
		t.Fatalf("fallback grade: %+v", got)
	}
	if got.Feedback.Strength != "Nice start on your story!" {
		t.Fatalf("fallback feedback: %q", got.Feedback.Strength)
	}
	if _, err := ParseGrade("I liked it!", rubric); !errors.Is(err, errNoScores) {
		t.Fatalf("want errNoScores, got %v", err)
	}
}

func TestGraderSendsRubricAndPreviousScores(t *testing.T) {
	_, lesson, rubric := narrativeRubric(t)
	var system, user string
	model := llm.Func(func(_ context.Context, sys string, history []llm.Turn) (string, error) {
		system, user = sys, history[0].Content
		return `{"scores":{"ideas":4,"organization":4,"voice":4,"conventions":4},"feedback":{}}`, nil
	})
	g := NewGrader(logger.Nop(), model)
	got, err := g.Grade(context.Background(), lesson, rubric, "My story.", map[string]float64{"ideas": 2})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if got.OverallScore != 4 {
		t.Fatalf("overall: %v", got.OverallScore)
	}
	for _, c := range rubric.CriterionNames() {
		if !strings.Contains(system, c) {
			t.Fatalf("system prompt missing criterion %s", c)
		}
	}
	if !strings.Contains(user, "ideas 2.0") || !strings.HasSuffix(user, "My story.") {
		t.Fatalf("submission turn: %q", user)
	}
}
