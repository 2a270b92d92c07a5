package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/writecoach-backend/internal/clients/llm"
	"github.com/yungbote/writecoach-backend/internal/platform/envutil"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// ConfigFromEnv reads OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_MODEL and
// OPENAI_TIMEOUT.
func ConfigFromEnv() Config {
	return Config{
		APIKey:      envutil.String("OPENAI_API_KEY", ""),
		BaseURL:     envutil.String("OPENAI_BASE_URL", "https://api.openai.com"),
		Model:       envutil.String("OPENAI_MODEL", "gpt-4o-mini"),
		Temperature: envutil.Float("OPENAI_TEMPERATURE", 0.4),
		Timeout:     envutil.Duration("OPENAI_TIMEOUT", 60*time.Second),
	}
}

type client struct {
	log         *logger.Logger
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
}

func NewClient(log *logger.Logger, cfg Config) (llm.Model, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &client{
		log:         log.With("service", "OpenAIClient"),
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model        string         `json:"model"`
	Instructions string         `json:"instructions,omitempty"`
	Input        []inputMessage `json:"input"`
	Temperature  float64        `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, c := range item.Content {
				if c.Type == "output_text" && c.Text != "" {
					out.WriteString(c.Text)
				}
			}
		}
	}
	return out.String()
}

// Complete sends the history as user/assistant messages with system as
// instructions. An empty history sends a single "Begin." user turn so the
// opening greeting can be generated.
func (c *client) Complete(ctx context.Context, system string, history []llm.Turn) (string, error) {
	req := responsesRequest{
		Model:        c.model,
		Instructions: system,
		Input:        toInput(history),
		Temperature:  c.temperature,
	}
	var resp responsesResponse
	if err := c.do(ctx, http.MethodPost, "/v1/responses", req, &resp); err != nil {
		return "", err
	}
	if resp.Refusal != "" {
		return "", fmt.Errorf("model refused: %s", resp.Refusal)
	}
	text := extractOutputText(resp)
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyReply
	}
	return text, nil
}

func toInput(history []llm.Turn) []inputMessage {
	if len(history) == 0 {
		return []inputMessage{{Role: "user", Content: "Begin."}}
	}
	out := make([]inputMessage, 0, len(history))
	for _, t := range history {
		role := "user"
		if t.Role == llm.RoleCoach {
			role = "assistant"
		}
		out = append(out, inputMessage{Role: role, Content: t.Content})
	}
	return out
}

func (c *client) do(ctx context.Context, method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("OpenAI request failed", "path", path, "status", resp.StatusCode)
		return &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("openai decode error: %w", err)
	}
	return nil
}
