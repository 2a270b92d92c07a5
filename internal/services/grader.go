package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/yungbote/writecoach-backend/internal/catalog"
	"github.com/yungbote/writecoach-backend/internal/clients/llm"
	"github.com/yungbote/writecoach-backend/internal/coaching/markers"
	types "github.com/yungbote/writecoach-backend/internal/domain"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

var errNoScores = errors.New("grader reply carried no rubric scores")

type Grade struct {
	Scores       map[string]float64
	OverallScore float64
	Feedback     types.Feedback
}

type Grader interface {
	Grade(ctx context.Context, lesson *catalog.Lesson, rubric *catalog.Rubric, text string, previous map[string]float64) (*Grade, error)
}

type modelGrader struct {
	log   *logger.Logger
	model llm.Model
}

func NewGrader(log *logger.Logger, model llm.Model) Grader {
	return &modelGrader{log: log.With("service", "Grader"), model: model}
}

func (g *modelGrader) Grade(ctx context.Context, lesson *catalog.Lesson, rubric *catalog.Rubric, text string, previous map[string]float64) (*Grade, error) {
	reply, err := g.model.Complete(ctx, graderSystemPrompt(lesson, rubric), []llm.Turn{
		{Role: llm.RoleStudent, Content: graderSubmission(text, previous)},
	})
	if err != nil {
		return nil, err
	}
	out, err := ParseGrade(reply, rubric)
	if err != nil {
		g.log.Warn("Unusable grader reply", "lesson_id", lesson.ID, "error", err)
		return nil, err
	}
	return out, nil
}

type gradeJSON struct {
	Scores   map[string]float64 `json:"scores"`
	Feedback types.Feedback     `json:"feedback"`
}

// ParseGrade reads a grader reply. The JSON object form is preferred; a
// [SCORES] block is accepted as a fallback, with the rest of the reply as
// feedback. Only rubric criteria are kept.
func ParseGrade(reply string, rubric *catalog.Rubric) (*Grade, error) {
	var parsed gradeJSON
	if raw := jsonObject(reply); raw != "" {
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			parsed = gradeJSON{}
		}
	}
	if len(parsed.Scores) == 0 {
		parsed.Scores = markers.ExtractScores(reply)
		parsed.Feedback = types.Feedback{Strength: strings.TrimSpace(markers.StripPhaseMarkers(reply))}
	}

	scores := map[string]float64{}
	for _, name := range rubric.CriterionNames() {
		if v, ok := parsed.Scores[name]; ok {
			scores[name] = SnapScore(v)
		}
	}
	if len(scores) == 0 {
		return nil, errNoScores
	}
	return &Grade{
		Scores:       scores,
		OverallScore: OverallScore(scores, rubric),
		Feedback:     parsed.Feedback,
	}, nil
}

func jsonObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// SnapScore rounds v to the nearest half point within [1,4].
func SnapScore(v float64) float64 {
	v = math.Round(v*2) / 2
	return math.Max(1, math.Min(4, v))
}

// OverallScore is the rubric-weighted mean of the scored criteria, rounded
// to one decimal. Unscored criteria drop out of the weighting.
func OverallScore(scores map[string]float64, rubric *catalog.Rubric) float64 {
	var sum, weights float64
	for name, v := range scores {
		w := rubric.Weight(name)
		sum += w * v
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return math.Round(sum/weights*10) / 10
}
