// Package markers decodes the bracketed control directives the coach model
// embeds in its replies and strips the ones the UI must never see.
//
// Every extractor is independent: a missing or malformed directive yields
// its zero value and never an error.
package markers

import (
	"regexp"
	"strconv"
	"strings"
)

// Directive names as they appear inside the brackets.
const (
	DirectiveStep                    = "STEP"
	DirectiveGuidedStage             = "GUIDED_STAGE"
	DirectivePhaseTransition         = "PHASE_TRANSITION"
	DirectiveComprehensionCheck      = "COMPREHENSION_CHECK"
	DirectiveComprehensionPassedFlag = "COMPREHENSION_CHECK_PASSED"
	DirectiveHintGiven               = "HINT_GIVEN"
	DirectiveAnswerType              = "ANSWER_TYPE"
	DirectiveOptions                 = "OPTIONS"
	DirectivePassage                 = "PASSAGE"
	DirectiveAnswerPrompt            = "ANSWER_PROMPT"
	DirectiveScores                  = "SCORES"
	DirectiveSample                  = "SAMPLE"
	DirectivePreference              = "PREFERENCE"
	DirectiveWritingPrompt           = "WRITING_PROMPT"
	DirectiveExpectsResponse         = "EXPECTS_RESPONSE"
)

// PreservedDirectives survive StripPhaseMarkers. The presentation layer
// parses these from the same text to render interactive affordances, so
// this list must match what the client reads.
var PreservedDirectives = [...]string{
	DirectiveStep,
	DirectiveGuidedStage,
	DirectiveWritingPrompt,
	DirectiveExpectsResponse,
}

// IsPreserved reports whether a directive name is kept by StripPhaseMarkers.
func IsPreserved(name string) bool {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, p := range PreservedDirectives {
		if p == name {
			return true
		}
	}
	return false
}

const (
	TransitionGuided     = "guided"
	TransitionAssessment = "assessment"

	ComprehensionPassed = "passed"
	ComprehensionFailed = "failed"
)

var answerTypes = map[string]bool{
	"choice":      true,
	"multiselect": true,
	"poll":        true,
	"order":       true,
	"highlight":   true,
}

type Sample struct {
	Type      string `json:"type"`
	Criterion string `json:"criterion"`
	Excerpt   string `json:"excerpt"`
}

type Preference struct {
	Category string `json:"category"`
	Value    string `json:"value"`
}

// Signals is everything decoded from one model reply.
type Signals struct {
	Step               *int
	GuidedStage        *int
	Transition         string
	ComprehensionCheck string
	HintGiven          bool
	AnswerType         string
	Options            []string
	Passage            string
	AnswerPrompt       string
	Scores             map[string]float64
	Samples            []Sample
	Preferences        []Preference
}

var (
	reStep          = regexp.MustCompile(`\[STEP:\s*(\d+)\s*\]`)
	reGuidedStage   = regexp.MustCompile(`\[GUIDED_STAGE:\s*(\d+)\s*\]`)
	reTransition    = regexp.MustCompile(`(?i)\[PHASE_TRANSITION:\s*([a-z_]+)\s*\]`)
	reComprehension = regexp.MustCompile(`(?i)\[COMPREHENSION_CHECK:\s*([a-z_]+)\s*\]`)
	reCompPassed    = regexp.MustCompile(`\[COMPREHENSION_CHECK_PASSED\]`)
	reHint          = regexp.MustCompile(`\[HINT_GIVEN\]`)
	reAnswerType    = regexp.MustCompile(`(?i)\[ANSWER_TYPE:\s*([a-z]+)\s*\]`)
	reOptions       = regexp.MustCompile(`\[OPTIONS:([^\]]*)\]`)
	rePassage       = regexp.MustCompile(`(?s)\[PASSAGE:\s*"(.*?)"\s*\]`)
	reAnswerPrompt  = regexp.MustCompile(`(?s)\[ANSWER_PROMPT:\s*"(.*?)"\s*\]`)
	reScores        = regexp.MustCompile(`(?s)\[SCORES\](.*?)\[/SCORES\]`)
	reSample        = regexp.MustCompile(`(?s)\[SAMPLE:\s*([^|\]]*?)\s*\|\s*([^\]]*?)\s*\](.*?)\[/SAMPLE\]`)
	rePreference    = regexp.MustCompile(`\[PREFERENCE:\s*([^|\]]*?)\s*\|\s*([^\]]*?)\s*\]`)

	// Removal order matters: paired blocks and quoted payloads first so
	// their contents go with them, then any remaining bracketed token.
	reStripScores  = regexp.MustCompile(`(?s)\[SCORES\].*?\[/SCORES\]`)
	reStripSample  = regexp.MustCompile(`(?s)\[SAMPLE:[^\]]*\].*?\[/SAMPLE\]`)
	reStripQuoted  = regexp.MustCompile(`(?s)\[(PASSAGE|ANSWER_PROMPT):\s*".*?"\s*\]`)
	reStripToken   = regexp.MustCompile(`\[/?([A-Z][A-Z_]*[A-Z])(?:\s*:[^\]\n]*)?\]`)
	reSpaceRuns    = regexp.MustCompile(`[ \t]{2,}`)
	reTrailingWS   = regexp.MustCompile(`[ \t]+\n`)
	reBlankLineRun = regexp.MustCompile(`\n{3,}`)
)

// Decode runs every extractor over text.
func Decode(text string) Signals {
	return Signals{
		Step:               ExtractStep(text),
		GuidedStage:        ExtractGuidedStage(text),
		Transition:         ExtractTransition(text),
		ComprehensionCheck: ExtractComprehensionCheck(text),
		HintGiven:          ExtractHintGiven(text),
		AnswerType:         ExtractAnswerType(text),
		Options:            ExtractOptions(text),
		Passage:            ExtractPassage(text),
		AnswerPrompt:       ExtractAnswerPrompt(text),
		Scores:             ExtractScores(text),
		Samples:            ExtractSamples(text),
		Preferences:        ExtractPreferences(text),
	}
}

func ExtractStep(text string) *int {
	return firstInt(reStep, text)
}

func ExtractGuidedStage(text string) *int {
	return firstInt(reGuidedStage, text)
}

// ExtractTransition returns "guided", "assessment" or "".
func ExtractTransition(text string) string {
	m := reTransition.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	switch v := strings.ToLower(m[1]); v {
	case TransitionGuided, TransitionAssessment:
		return v
	default:
		return ""
	}
}

// ExtractComprehensionCheck returns "passed", "failed" or "".
func ExtractComprehensionCheck(text string) string {
	if reCompPassed.MatchString(text) {
		return ComprehensionPassed
	}
	m := reComprehension.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	switch v := strings.ToLower(m[1]); v {
	case ComprehensionPassed, ComprehensionFailed:
		return v
	default:
		return ""
	}
}

func ExtractHintGiven(text string) bool {
	return reHint.MatchString(text)
}

func ExtractAnswerType(text string) string {
	m := reAnswerType.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	v := strings.ToLower(m[1])
	if !answerTypes[v] {
		return ""
	}
	return v
}

func ExtractOptions(text string) []string {
	m := reOptions.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var out []string
	for _, part := range strings.Split(m[1], "|") {
		opt := trimQuotes(strings.TrimSpace(part))
		if opt != "" {
			out = append(out, opt)
		}
	}
	return out
}

func ExtractPassage(text string) string {
	return firstString(rePassage, text)
}

func ExtractAnswerPrompt(text string) string {
	return firstString(reAnswerPrompt, text)
}

// ExtractScores parses "criterion:value" pairs separated by commas or
// newlines. Pairs with an empty name or a non-numeric value are dropped.
// Returns nil when no [SCORES] block is present.
func ExtractScores(text string) map[string]float64 {
	m := reScores.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	out := map[string]float64{}
	body := strings.ReplaceAll(m[1], "\n", ",")
	for _, pair := range strings.Split(body, ",") {
		idx := strings.LastIndex(pair, ":")
		if idx < 0 {
			continue
		}
		name := trimQuotes(strings.TrimSpace(pair[:idx]))
		if name == "" {
			continue
		}
		val, err := strconv.ParseFloat(strings.TrimSpace(pair[idx+1:]), 64)
		if err != nil {
			continue
		}
		out[name] = val
	}
	return out
}

func ExtractSamples(text string) []Sample {
	var out []Sample
	for _, m := range reSample.FindAllStringSubmatch(text, -1) {
		out = append(out, Sample{
			Type:      strings.TrimSpace(m[1]),
			Criterion: strings.TrimSpace(m[2]),
			Excerpt:   strings.TrimSpace(m[3]),
		})
	}
	return out
}

func ExtractPreferences(text string) []Preference {
	var out []Preference
	for _, m := range rePreference.FindAllStringSubmatch(text, -1) {
		cat := strings.TrimSpace(m[1])
		val := trimQuotes(strings.TrimSpace(m[2]))
		if cat == "" || val == "" {
			continue
		}
		out = append(out, Preference{Category: cat, Value: val})
	}
	return out
}

// StripPhaseMarkers removes every directive except PreservedDirectives.
// Text without removable directives is returned unchanged.
func StripPhaseMarkers(text string) string {
	out := text
	// Removing a token can splice a new one together. Every pass that
	// changes the text shortens it, so this reaches a fixpoint.
	for {
		next := stripOnce(out)
		if next == out {
			break
		}
		out = next
	}
	if out == text {
		return text
	}
	out = reSpaceRuns.ReplaceAllString(out, " ")
	out = reTrailingWS.ReplaceAllString(out, "\n")
	out = reBlankLineRun.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func stripOnce(text string) string {
	out := reStripScores.ReplaceAllString(text, "")
	out = reStripSample.ReplaceAllString(out, "")
	out = reStripQuoted.ReplaceAllString(out, "")
	return reStripToken.ReplaceAllStringFunc(out, func(tok string) string {
		m := reStripToken.FindStringSubmatch(tok)
		if m != nil && IsPreserved(m[1]) {
			return tok
		}
		return ""
	})
}

func firstInt(re *regexp.Regexp, text string) *int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

func firstString(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
