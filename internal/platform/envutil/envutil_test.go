package envutil

import (
	"testing"
	"time"
)

func TestParsersFallBackOnBadInput(t *testing.T) {
	t.Setenv("WC_INT", "12")
	t.Setenv("WC_BAD_INT", "twelve")
	t.Setenv("WC_FLOAT", "0.25")
	t.Setenv("WC_BOOL", "Yes")
	t.Setenv("WC_BAD_BOOL", "maybe")
	t.Setenv("WC_DUR", "90s")
	t.Setenv("WC_SECS", "45")
	t.Setenv("WC_STR", "  narrative  ")

	if got := Int("WC_INT", 1); got != 12 {
		t.Fatalf("Int: %d", got)
	}
	if got := Int("WC_BAD_INT", 3); got != 3 {
		t.Fatalf("Int fallback: %d", got)
	}
	if got := Float("WC_FLOAT", 1); got != 0.25 {
		t.Fatalf("Float: %v", got)
	}
	if !Bool("WC_BOOL", false) || Bool("WC_BAD_BOOL", false) {
		t.Fatalf("Bool parsing mismatch")
	}
	if got := Duration("WC_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("Duration: %v", got)
	}
	if got := Duration("WC_SECS", time.Second); got != 45*time.Second {
		t.Fatalf("Duration seconds: %v", got)
	}
	if got := String("WC_STR", "x"); got != "narrative" {
		t.Fatalf("String: %q", got)
	}
	if got := String("WC_UNSET", "x"); got != "x" {
		t.Fatalf("String default: %q", got)
	}
}
