// Package llm is the provider-neutral model contract used by the coaching
// services.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/writecoach-backend/internal/observability"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

const (
	RoleCoach   = "coach"
	RoleStudent = "student"
)

type Turn struct {
	Role    string
	Content string
}

// Model produces the next coach reply for a system prompt and a history of
// turns, oldest first.
type Model interface {
	Complete(ctx context.Context, system string, history []Turn) (string, error)
}

// ErrEmptyReply is returned when a provider answers with no text.
var ErrEmptyReply = errors.New("model returned an empty reply")

type instrumented struct {
	next     Model
	provider string
	purpose  string
	timeout  time.Duration
	metrics  *observability.Metrics
	log      *logger.Logger
}

// Instrument bounds every call with timeout and reports latency and status.
// Calls are never retried.
func Instrument(next Model, provider, purpose string, timeout time.Duration, metrics *observability.Metrics, log *logger.Logger) Model {
	if log == nil {
		log = logger.Nop()
	}
	return &instrumented{
		next:     next,
		provider: provider,
		purpose:  purpose,
		timeout:  timeout,
		metrics:  metrics,
		log:      log.With("service", "Model", "provider", provider, "purpose", purpose),
	}
}

func (m *instrumented) Complete(ctx context.Context, system string, history []Turn) (string, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	ctx, span := observability.Tracer().Start(ctx, "llm.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", m.provider),
		attribute.String("llm.purpose", m.purpose),
		attribute.Int("llm.history_turns", len(history)),
	)

	start := time.Now()
	out, err := m.next.Complete(ctx, system, history)
	status := "ok"
	if err == nil && out == "" {
		err = ErrEmptyReply
	}
	if err != nil {
		status = "error"
		if errors.Is(err, context.DeadlineExceeded) {
			status = "timeout"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		m.log.Warn("model call failed", "status", status, "error", err)
		err = fmt.Errorf("%s %s: %w", m.provider, m.purpose, err)
	}
	m.metrics.ObserveLLMRequest(m.provider, m.purpose, status, time.Since(start))
	return out, err
}

// Func adapts a function to Model.
type Func func(ctx context.Context, system string, history []Turn) (string, error)

func (f Func) Complete(ctx context.Context, system string, history []Turn) (string, error) {
	return f(ctx, system, history)
}
