package markers

import (
	"reflect"
	"strings"
	"testing"
)

func TestPreservedDirectives(t *testing.T) {
	want := []string{"STEP", "GUIDED_STAGE", "WRITING_PROMPT", "EXPECTS_RESPONSE"}
	got := PreservedDirectives[:]
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("PreservedDirectives: want=%v got=%v", want, got)
	}
	if IsPreserved("PHASE_TRANSITION") {
		t.Fatalf("PHASE_TRANSITION must not be preserved")
	}
	if !IsPreserved(" step ") {
		t.Fatalf("IsPreserved should normalize case and spaces")
	}
}

func TestExtractors(t *testing.T) {
	text := `Great job! [STEP:3] [GUIDED_STAGE: 2]
[PHASE_TRANSITION:guided] [COMPREHENSION_CHECK:passed] [HINT_GIVEN]
[ANSWER_TYPE:choice] [OPTIONS: "a dog" | b |  c ]
[PASSAGE:"The cat sat on the mat."]
[ANSWER_PROMPT:"Which word is the noun?"]
[PREFERENCE: topic | dinosaurs]`

	sig := Decode(text)
	if sig.Step == nil || *sig.Step != 3 {
		t.Fatalf("step: want=3 got=%v", sig.Step)
	}
	if sig.GuidedStage == nil || *sig.GuidedStage != 2 {
		t.Fatalf("guided stage: want=2 got=%v", sig.GuidedStage)
	}
	if sig.Transition != TransitionGuided {
		t.Fatalf("transition: want=%q got=%q", TransitionGuided, sig.Transition)
	}
	if sig.ComprehensionCheck != ComprehensionPassed {
		t.Fatalf("comprehension: want=passed got=%q", sig.ComprehensionCheck)
	}
	if !sig.HintGiven {
		t.Fatalf("hint: want=true")
	}
	if sig.AnswerType != "choice" {
		t.Fatalf("answer type: want=choice got=%q", sig.AnswerType)
	}
	if want := []string{"a dog", "b", "c"}; !reflect.DeepEqual(sig.Options, want) {
		t.Fatalf("options: want=%v got=%v", want, sig.Options)
	}
	if sig.Passage != "The cat sat on the mat." {
		t.Fatalf("passage: got=%q", sig.Passage)
	}
	if sig.AnswerPrompt != "Which word is the noun?" {
		t.Fatalf("answer prompt: got=%q", sig.AnswerPrompt)
	}
	if want := []Preference{{Category: "topic", Value: "dinosaurs"}}; !reflect.DeepEqual(sig.Preferences, want) {
		t.Fatalf("preferences: want=%v got=%v", want, sig.Preferences)
	}
}

func TestExtractorsAbsentOrMalformed(t *testing.T) {
	cases := []string{
		"",
		"plain coach text with no markers",
		"[STEP:abc] [PHASE_TRANSITION:feedback] [ANSWER_TYPE:essay] [COMPREHENSION_CHECK:maybe]",
		"[SCORES]broken",
	}
	for _, text := range cases {
		sig := Decode(text)
		if sig.Step != nil || sig.GuidedStage != nil {
			t.Fatalf("%q: expected no step signals", text)
		}
		if sig.Transition != "" || sig.ComprehensionCheck != "" || sig.AnswerType != "" {
			t.Fatalf("%q: expected empty enums got=%+v", text, sig)
		}
		if sig.Scores != nil || sig.Samples != nil || sig.Options != nil {
			t.Fatalf("%q: expected nil collections got=%+v", text, sig)
		}
	}
}

func TestComprehensionPassedFlag(t *testing.T) {
	if got := ExtractComprehensionCheck("ok [COMPREHENSION_CHECK_PASSED]"); got != ComprehensionPassed {
		t.Fatalf("flag form: want=passed got=%q", got)
	}
	if got := ExtractComprehensionCheck("[COMPREHENSION_CHECK:failed]"); got != ComprehensionFailed {
		t.Fatalf("failed: want=failed got=%q", got)
	}
}

func TestExtractScores(t *testing.T) {
	got := ExtractScores("[SCORES]ideas:3.5, organization: 2\nvoice:high, :4, conventions:1.5[/SCORES]")
	want := map[string]float64{"ideas": 3.5, "organization": 2, "conventions": 1.5}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("scores: want=%v got=%v", want, got)
	}
	if got := ExtractScores("[SCORES][/SCORES]"); got == nil || len(got) != 0 {
		t.Fatalf("empty block: want empty map got=%v", got)
	}
}

func TestExtractSamples(t *testing.T) {
	text := "[SAMPLE: strength | ideas]The dragon roared.[/SAMPLE] and [SAMPLE:growth|voice] It was fun. [/SAMPLE]"
	want := []Sample{
		{Type: "strength", Criterion: "ideas", Excerpt: "The dragon roared."},
		{Type: "growth", Criterion: "voice", Excerpt: "It was fun."},
	}
	if got := ExtractSamples(text); !reflect.DeepEqual(got, want) {
		t.Fatalf("samples: want=%v got=%v", want, got)
	}
}

func TestStripPhaseMarkers(t *testing.T) {
	in := "[STEP:2] Nice work! [PHASE_TRANSITION:guided] [HINT_GIVEN]\n[PASSAGE:\"Read this [carefully].\"]\n[SCORES]ideas:3[/SCORES]\n[WRITING_PROMPT] Now write. [EXPECTS_RESPONSE]"
	got := StripPhaseMarkers(in)

	for _, keep := range []string{"[STEP:2]", "[WRITING_PROMPT]", "[EXPECTS_RESPONSE]", "Nice work!", "Now write."} {
		if !strings.Contains(got, keep) {
			t.Fatalf("strip removed %q: %q", keep, got)
		}
	}
	for _, gone := range []string{"PHASE_TRANSITION", "HINT_GIVEN", "PASSAGE", "carefully", "SCORES", "ideas:3"} {
		if strings.Contains(got, gone) {
			t.Fatalf("strip kept %q: %q", gone, got)
		}
	}
}

func TestStripPhaseMarkersIdempotent(t *testing.T) {
	inputs := []string{
		"[STEP:1] hello [COMPREHENSION_CHECK:passed]   there\n\n\n\nfriend [ANSWER_TYPE:poll]",
		"[GUIDED_STAGE:3] [OPTIONS: a | b] Pick one. [SAMPLE:strength|ideas]x[/SAMPLE]",
		"[PHASE_[HINT_GIVEN]TRANSITION:assessment] spliced",
		"[PREFERENCE: topic | space] ok",
	}
	for _, in := range inputs {
		once := StripPhaseMarkers(in)
		twice := StripPhaseMarkers(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestStripPhaseMarkersDeeplySpliced(t *testing.T) {
	nested := "[HINT_GIVEN]"
	for i := 0; i < 12; i++ {
		nested = "[PHASE_" + nested + "TRANSITION:guided]"
	}
	once := StripPhaseMarkers("hi " + nested)
	if once != "hi" {
		t.Fatalf("spliced directive survived: %q", once)
	}
	if twice := StripPhaseMarkers(once); twice != once {
		t.Fatalf("not idempotent: once=%q twice=%q", once, twice)
	}
}

func TestStripPhaseMarkersNoopOnPlainText(t *testing.T) {
	inputs := []string{
		"",
		"Just a friendly note.  With  odd   spacing.\n\n\n\nAnd blank lines.",
		"Use [brackets] in lowercase freely.",
		"[STEP:4] Only preserved markers here. [EXPECTS_RESPONSE]",
	}
	for _, in := range inputs {
		if got := StripPhaseMarkers(in); got != in {
			t.Fatalf("expected no-op: in=%q got=%q", in, got)
		}
	}
}
