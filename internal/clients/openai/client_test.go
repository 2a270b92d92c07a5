package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yungbote/writecoach-backend/internal/clients/llm"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

func TestCompleteMapsRolesAndExtractsText(t *testing.T) {
	var got responsesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" || r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected request %s auth=%q", r.URL.Path, r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"Nice work! [STEP:2]"}]}]}`))
	}))
	defer srv.Close()

	m, err := NewClient(logger.Nop(), Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "test-model"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := m.Complete(context.Background(), "You are a coach.", []llm.Turn{
		{Role: llm.RoleCoach, Content: "Hi!"},
		{Role: llm.RoleStudent, Content: "Hello"},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "Nice work! [STEP:2]" {
		t.Fatalf("reply: %q", out)
	}
	if got.Instructions != "You are a coach." || len(got.Input) != 2 {
		t.Fatalf("request: %+v", got)
	}
	if got.Input[0].Role != "assistant" || got.Input[1].Role != "user" {
		t.Fatalf("roles: %+v", got.Input)
	}
}

func TestCompleteSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	m, err := NewClient(logger.Nop(), Config{APIKey: "sk-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = m.Complete(context.Background(), "sys", nil)
	httpErr, ok := err.(*openAIHTTPError)
	if !ok || httpErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("want http error 429, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(logger.Nop(), Config{}); err == nil {
		t.Fatalf("expected missing key error")
	}
}
