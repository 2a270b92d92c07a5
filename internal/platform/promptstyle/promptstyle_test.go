package promptstyle

import (
	"strings"
	"testing"
)

func TestApplySystem(t *testing.T) {
	if got := ApplySystem("  ", ModeCoach); got != "" {
		t.Fatalf("empty prompt should stay empty, got %q", got)
	}
	once := ApplySystem("Teach commas.", ModeCoach)
	if !strings.HasPrefix(once, marker) || !strings.HasSuffix(once, "Teach commas.") {
		t.Fatalf("unexpected prompt: %q", once)
	}
	if twice := ApplySystem(once, ModeCoach); twice != once {
		t.Fatalf("ApplySystem should be idempotent")
	}
	if js := ApplySystem("Grade this.", ModeJSON); !strings.Contains(js, "single JSON object") {
		t.Fatalf("json mode guidance missing: %q", js)
	}
}
