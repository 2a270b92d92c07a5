package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/yungbote/writecoach-backend/internal/clients/llm"
	"github.com/yungbote/writecoach-backend/internal/platform/envutil"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

type Config struct {
	APIKey      string
	Model       string
	Temperature float64
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:      envutil.String("GEMINI_API_KEY", ""),
		Model:       envutil.String("GEMINI_MODEL", "gemini-2.5-flash"),
		Temperature: envutil.Float("GEMINI_TEMPERATURE", 0.4),
	}
}

type client struct {
	log         *logger.Logger
	genai       *genai.Client
	model       string
	temperature float32
}

func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (llm.Model, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &client{
		log:         log.With("service", "GeminiClient"),
		genai:       gc,
		model:       model,
		temperature: float32(cfg.Temperature),
	}, nil
}

func (c *client) Complete(ctx context.Context, system string, history []llm.Turn) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if strings.TrimSpace(system) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, toContents(history), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyReply
	}
	return text, nil
}

func toContents(history []llm.Turn) []*genai.Content {
	if len(history) == 0 {
		return []*genai.Content{genai.NewContentFromText("Begin.", genai.RoleUser)}
	}
	out := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		role := genai.Role(genai.RoleUser)
		if t.Role == llm.RoleCoach {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(t.Content, role))
	}
	return out
}
