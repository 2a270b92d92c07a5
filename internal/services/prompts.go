package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/writecoach-backend/internal/catalog"
	"github.com/yungbote/writecoach-backend/internal/coaching/phase"
	"github.com/yungbote/writecoach-backend/internal/platform/promptstyle"
)

const greetingKickoff = "Begin."

func lessonBrief(lesson *catalog.Lesson) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lesson: %s (%s, level %d)\n", lesson.Title, lesson.Category, lesson.Tier)
	if len(lesson.LearningObjectives) > 0 {
		b.WriteString("Learning objectives:\n")
		for _, o := range lesson.LearningObjectives {
			b.WriteString("- " + o + "\n")
		}
	}
	if lesson.WritingPrompt != "" {
		fmt.Fprintf(&b, "Writing task for the assessment phase: %s\n", lesson.WritingPrompt)
	}
	fmt.Fprintf(&b, "The final piece needs at least %d words.\n", lesson.MinWords)
	return b.String()
}

// coachSystemPrompt builds the instructions for one chat cycle in phase p.
func coachSystemPrompt(lesson *catalog.Lesson, p phase.Phase, st phase.State) string {
	var b strings.Builder
	b.WriteString(lessonBrief(lesson))
	b.WriteString("\n")
	switch p {
	case phase.Instruction:
		b.WriteString("Phase: instruction. Teach the objectives one small step at a time and tag each step with [STEP:n].\n")
		b.WriteString("Check understanding with a short question. When the student answers correctly add [COMPREHENSION_CHECK:passed], otherwise [COMPREHENSION_CHECK:failed].\n")
		if st.ComprehensionCheckPassed {
			b.WriteString("The student has passed the check. When ready, move on with [PHASE_TRANSITION:guided].\n")
		} else {
			b.WriteString("Do not move on until the check is passed.\n")
		}
		b.WriteString("For quick questions you may add [ANSWER_TYPE:choice] with [OPTIONS: a | b | c].\n")
	case phase.Guided:
		b.WriteString("Phase: guided practice. Work through short exercises and tag them with [GUIDED_STAGE:n].\n")
		b.WriteString("If you give a hint, add [HINT_GIVEN]. Use [PASSAGE:\"...\"] to show a passage and [ANSWER_PROMPT:\"...\"] for what to do with it.\n")
		fmt.Fprintf(&b, "The student has made %d attempts and received %d hints.\n", st.GuidedAttempts, st.HintsGiven)
		b.WriteString("When the student is ready to write on their own, add [PHASE_TRANSITION:assessment] and present the writing task.\n")
	case phase.Assessment:
		b.WriteString("Phase: independent writing. Encourage the student and answer questions about the task, but do not write any of it for them.\n")
		b.WriteString("Remind them to submit their piece when it is finished.\n")
	case phase.Feedback:
		b.WriteString("Phase: feedback. Talk about the graded piece and suggest one concrete change for a revision.\n")
	}
	return promptstyle.ApplySystem(b.String(), promptstyle.ModeCoach)
}

func greetingPrompt(lesson *catalog.Lesson) string {
	var b strings.Builder
	b.WriteString(lessonBrief(lesson))
	b.WriteString("\nGreet the student by introducing today's lesson in two or three sentences and ask if they are ready. Start with [STEP:1].\n")
	return promptstyle.ApplySystem(b.String(), promptstyle.ModeCoach)
}

// graderSystemPrompt asks for a JSON object scored against rubric.
func graderSystemPrompt(lesson *catalog.Lesson, rubric *catalog.Rubric) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Grade a child's writing for the lesson %q using the %s rubric.\n", lesson.Title, rubric.Name)
	b.WriteString("Score every criterion from 1 to 4 in steps of 0.5.\n")
	for _, c := range rubric.Criteria {
		fmt.Fprintf(&b, "\nCriterion %s (%s):\n", c.Name, c.Label)
		for _, l := range c.Levels {
			fmt.Fprintf(&b, "  %.0f: %s\n", l.Score, l.Description)
		}
	}
	b.WriteString("\nReturn JSON of the form ")
	b.WriteString(`{"scores":{"<criterion>":<score>},"feedback":{"strength":"...","growth":"...","encouragement":"..."}}`)
	b.WriteString(".\nFeedback is addressed to the child: one thing done well, one thing to grow, one sentence of encouragement.\n")
	return promptstyle.ApplySystem(b.String(), promptstyle.ModeJSON)
}

func graderSubmission(text string, previous map[string]float64) string {
	var b strings.Builder
	if len(previous) > 0 {
		b.WriteString("This is a revision. Scores of the previous draft: ")
		names := make([]string, 0, len(previous))
		for k := range previous {
			names = append(names, k)
		}
		sort.Strings(names)
		for i, k := range names {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s %.1f", k, previous[k])
		}
		b.WriteString(". Mention what improved.\n\n")
	}
	b.WriteString("Student writing:\n")
	b.WriteString(text)
	return b.String()
}
