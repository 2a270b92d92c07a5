package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/writecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

// BaseDeps are shared by every aggregate implementation.
type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	CASGuard CASGuard
	Clock    func() time.Time
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Clock == nil {
		d.Clock = func() time.Time { return time.Now().UTC() }
	}
	return d
}

func (d BaseDeps) eventTime(at time.Time) time.Time {
	if at.IsZero() {
		return d.Clock()
	}
	return at.UTC()
}

// executeWrite runs fn in one transaction and reports the outcome to hooks.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	err := deps.Runner.InTx(ctx, fn)
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		switch domainagg.CodeOf(mapped) {
		case domainagg.CodeConflict:
			deps.Hooks.IncConflict(op)
		case domainagg.CodeRetryable:
			deps.Hooks.IncRetry(op)
		case domainagg.CodeInternal:
			deps.Log.Error("aggregate write failed", "op", op, "error", mapped)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
