// Package phase implements the lesson phase state machine:
//
//	instruction -> guided -> assessment -> feedback
//
// Transitions are only taken along validated edges. The first two are
// driven by directives in the coach reply; assessment -> feedback only by a
// successful grading.
package phase

import (
	"fmt"
	"time"

	"github.com/yungbote/writecoach-backend/internal/coaching/markers"
)

type Phase string

const (
	Instruction Phase = "instruction"
	Guided      Phase = "guided"
	Assessment  Phase = "assessment"
	Feedback    Phase = "feedback"
)

var order = map[Phase]int{
	Instruction: 0,
	Guided:      1,
	Assessment:  2,
	Feedback:    3,
}

func (p Phase) Valid() bool {
	_, ok := order[p]
	return ok
}

// Rank is the position of p in the phase order, or -1.
func (p Phase) Rank() int {
	if r, ok := order[p]; ok {
		return r
	}
	return -1
}

// State holds the phase-scoped counters and flags persisted with a session.
type State struct {
	InstructionCompleted     bool       `json:"instructionCompleted"`
	ComprehensionCheckPassed bool       `json:"comprehensionCheckPassed"`
	GuidedAttempts           int        `json:"guidedAttempts"`
	HintsGiven               int        `json:"hintsGiven"`
	GuidedComplete           bool       `json:"guidedComplete"`
	WritingStartedAt         *time.Time `json:"writingStartedAt,omitempty"`
}

// Outcome describes what ApplyReply did.
type Outcome struct {
	From         Phase
	To           Phase
	Transitioned bool
	// Suppressed is set when the reply asked for a transition whose guard
	// did not hold.
	Suppressed bool
}

// OnStudentMessage updates counters for an incoming student message.
func OnStudentMessage(p Phase, s State) State {
	if p == Guided {
		s.GuidedAttempts++
	}
	return s
}

// ApplyReply folds the signals decoded from one coach reply into the
// session state and takes at most one transition.
func ApplyReply(p Phase, s State, sig markers.Signals, now time.Time) (Phase, State, Outcome) {
	out := Outcome{From: p, To: p}

	// A failed check never revokes an earlier pass.
	if sig.ComprehensionCheck == markers.ComprehensionPassed {
		s.ComprehensionCheckPassed = true
	}
	if sig.HintGiven {
		s.HintsGiven++
	}

	switch {
	case p == Instruction && sig.Transition == markers.TransitionGuided:
		if !s.ComprehensionCheckPassed {
			out.Suppressed = true
			return p, s, out
		}
		s.InstructionCompleted = true
		out.To, out.Transitioned = Guided, true
		return Guided, s, out

	case p == Guided && sig.Transition == markers.TransitionAssessment:
		s.GuidedComplete = true
		started := now.UTC()
		s.WritingStartedAt = &started
		out.To, out.Transitioned = Assessment, true
		return Assessment, s, out

	case sig.Transition != "":
		// Directive for a non-adjacent phase.
		out.Suppressed = true
	}
	return p, s, out
}

// CompleteGrading moves a session from assessment to feedback.
func CompleteGrading(p Phase) (Phase, error) {
	if p != Assessment {
		return p, fmt.Errorf("cannot complete grading from phase %q", p)
	}
	return Feedback, nil
}
