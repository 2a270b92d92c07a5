package phase

import (
	"testing"
	"time"

	"github.com/yungbote/writecoach-backend/internal/coaching/markers"
)

var now = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

func TestInstructionToGuidedRequiresComprehension(t *testing.T) {
	sig := markers.Decode("Let's practice! [PHASE_TRANSITION:guided]")
	p, s, out := ApplyReply(Instruction, State{}, sig, now)
	if p != Instruction || out.Transitioned {
		t.Fatalf("transition without comprehension: want=instruction got=%s", p)
	}
	if !out.Suppressed {
		t.Fatalf("expected suppressed outcome")
	}
	if s.InstructionCompleted {
		t.Fatalf("instructionCompleted must stay false")
	}
}

func TestInstructionToGuidedSameReply(t *testing.T) {
	sig := markers.Decode("[COMPREHENSION_CHECK:passed] Great! [PHASE_TRANSITION:guided]")
	p, s, out := ApplyReply(Instruction, State{}, sig, now)
	if p != Guided || !out.Transitioned {
		t.Fatalf("want=guided got=%s", p)
	}
	if !s.InstructionCompleted || !s.ComprehensionCheckPassed {
		t.Fatalf("flags not set: %+v", s)
	}
}

func TestInstructionToGuidedAcrossReplies(t *testing.T) {
	p, s, _ := ApplyReply(Instruction, State{}, markers.Decode("[COMPREHENSION_CHECK_PASSED] Well done."), now)
	if p != Instruction {
		t.Fatalf("no transition expected yet, got=%s", p)
	}
	p, s, _ = ApplyReply(p, s, markers.Decode("[COMPREHENSION_CHECK:failed]"), now)
	if !s.ComprehensionCheckPassed {
		t.Fatalf("a later failure must not clear the pass")
	}
	p, _, _ = ApplyReply(p, s, markers.Decode("[PHASE_TRANSITION:guided]"), now)
	if p != Guided {
		t.Fatalf("want=guided got=%s", p)
	}
}

func TestGuidedToAssessment(t *testing.T) {
	p, s, out := ApplyReply(Guided, State{InstructionCompleted: true, ComprehensionCheckPassed: true},
		markers.Decode("Time to write! [PHASE_TRANSITION:assessment]"), now)
	if p != Assessment || !out.Transitioned {
		t.Fatalf("want=assessment got=%s", p)
	}
	if !s.GuidedComplete || s.WritingStartedAt == nil || !s.WritingStartedAt.Equal(now) {
		t.Fatalf("guided completion not recorded: %+v", s)
	}
}

func TestNonAdjacentTransitionIgnored(t *testing.T) {
	tests := []struct {
		name string
		from Phase
		text string
	}{
		{"instruction skips to assessment", Instruction, "[COMPREHENSION_CHECK:passed][PHASE_TRANSITION:assessment]"},
		{"guided back to guided", Guided, "[PHASE_TRANSITION:guided]"},
		{"feedback is terminal", Feedback, "[PHASE_TRANSITION:assessment]"},
		{"assessment needs grading", Assessment, "[PHASE_TRANSITION:assessment]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, out := ApplyReply(tt.from, State{}, markers.Decode(tt.text), now)
			if p != tt.from || out.Transitioned {
				t.Fatalf("want=%s got=%s", tt.from, p)
			}
			if !out.Suppressed {
				t.Fatalf("expected suppressed")
			}
		})
	}
}

func TestCounters(t *testing.T) {
	s := OnStudentMessage(Instruction, State{})
	if s.GuidedAttempts != 0 {
		t.Fatalf("guidedAttempts outside guided: want=0 got=%d", s.GuidedAttempts)
	}
	s = OnStudentMessage(Guided, s)
	s = OnStudentMessage(Guided, s)
	if s.GuidedAttempts != 2 {
		t.Fatalf("guidedAttempts: want=2 got=%d", s.GuidedAttempts)
	}
	_, s, _ = ApplyReply(Guided, s, markers.Decode("Try this. [HINT_GIVEN]"), now)
	if s.HintsGiven != 1 {
		t.Fatalf("hintsGiven: want=1 got=%d", s.HintsGiven)
	}
}

func TestCompleteGrading(t *testing.T) {
	if p, err := CompleteGrading(Assessment); err != nil || p != Feedback {
		t.Fatalf("assessment: want=feedback got=%s err=%v", p, err)
	}
	for _, from := range []Phase{Instruction, Guided, Feedback} {
		if _, err := CompleteGrading(from); err == nil {
			t.Fatalf("%s: expected error", from)
		}
	}
}

func TestPhaseRank(t *testing.T) {
	if Instruction.Rank() >= Guided.Rank() || Guided.Rank() >= Assessment.Rank() || Assessment.Rank() >= Feedback.Rank() {
		t.Fatalf("phase order broken")
	}
	if Phase("bogus").Valid() || Phase("bogus").Rank() != -1 {
		t.Fatalf("unknown phase should be invalid")
	}
}
