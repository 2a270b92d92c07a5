// Package quality decides whether a writing submission is worth grading.
package quality

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	CodeTooShort  = "too_short"
	CodeGibberish = "gibberish"

	// DefaultMinWords is the lesson minimum used when none is given.
	DefaultMinWords = 10

	// A submission is gibberish when fewer than half of its alphabetic
	// words carry a vowel, or vowels make up under a fifth of its letters.
	minVowelWordRatio   = 0.5
	minVowelLetterRatio = 0.2
)

// Rejection is returned for submissions that fail the gate. WordCount is
// only meaningful for too_short.
type Rejection struct {
	Code      string
	Message   string
	WordCount int
}

func (r *Rejection) Error() string {
	if r == nil {
		return ""
	}
	return r.Code + ": " + r.Message
}

// CountWords counts runs of letters and digits. Apostrophes and hyphens
// split words, so "wasn't" counts as two.
func CountWords(text string) int {
	return len(splitWords(text))
}

func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Check runs the gate. It returns nil when text may be graded. A
// negative minWords means DefaultMinWords; zero disables the length check.
func Check(text string, minWords int) *Rejection {
	if minWords < 0 {
		minWords = DefaultMinWords
	}
	words := splitWords(text)
	if len(words) < minWords {
		return &Rejection{
			Code:      CodeTooShort,
			Message:   fmt.Sprintf("Your writing needs at least %d words. You have %d so far. Keep going!", minWords, len(words)),
			WordCount: len(words),
		}
	}
	if isGibberish(words) {
		return &Rejection{
			Code:      CodeGibberish,
			Message:   "This doesn't look like real words yet. Try writing full sentences about your topic.",
			WordCount: len(words),
		}
	}
	return nil
}

func isGibberish(words []string) bool {
	alphaWords, vowelWords := 0, 0
	letters, vowels := 0, 0
	for _, w := range words {
		hasLetter, hasVowel := false, false
		for _, r := range w {
			if !unicode.IsLetter(r) {
				continue
			}
			hasLetter = true
			letters++
			if isVowel(r) {
				hasVowel = true
				vowels++
			}
		}
		if hasLetter {
			alphaWords++
			if hasVowel {
				vowelWords++
			}
		}
	}
	if alphaWords == 0 || letters == 0 {
		return true
	}
	if float64(vowelWords)/float64(alphaWords) < minVowelWordRatio {
		return true
	}
	return float64(vowels)/float64(letters) < minVowelLetterRatio
}

func isVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	default:
		return false
	}
}
