package gemini

import (
	"testing"

	"google.golang.org/genai"

	"github.com/yungbote/writecoach-backend/internal/clients/llm"
)

func TestToContentsMapsRoles(t *testing.T) {
	got := toContents([]llm.Turn{
		{Role: llm.RoleCoach, Content: "Hi!"},
		{Role: llm.RoleStudent, Content: "Hello"},
	})
	if len(got) != 2 {
		t.Fatalf("len: %d", len(got))
	}
	if got[0].Role != string(genai.RoleModel) || got[1].Role != string(genai.RoleUser) {
		t.Fatalf("roles: %q %q", got[0].Role, got[1].Role)
	}
	if got[1].Parts[0].Text != "Hello" {
		t.Fatalf("text: %q", got[1].Parts[0].Text)
	}
}

func TestToContentsOpensEmptyHistory(t *testing.T) {
	got := toContents(nil)
	if len(got) != 1 || got[0].Role != string(genai.RoleUser) {
		t.Fatalf("empty history should send one user turn: %+v", got)
	}
}
