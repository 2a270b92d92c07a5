package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/writecoach-backend/internal/clients/gemini"
	"github.com/yungbote/writecoach-backend/internal/clients/llm"
	"github.com/yungbote/writecoach-backend/internal/clients/openai"
	"github.com/yungbote/writecoach-backend/internal/clients/redis"
	"github.com/yungbote/writecoach-backend/internal/observability"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

type Clients struct {
	Coach  llm.Model
	Grader llm.Model
	Redis  *goredis.Client
	Locker redis.Locker
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	var (
		base llm.Model
		err  error
	)
	switch cfg.ModelProvider {
	case "gemini":
		base, err = gemini.NewClient(ctx, log, gemini.ConfigFromEnv())
	case "", "openai":
		base, err = openai.NewClient(log, openai.ConfigFromEnv())
	default:
		err = fmt.Errorf("unsupported MODEL_PROVIDER %q", cfg.ModelProvider)
	}
	if err != nil {
		return Clients{}, fmt.Errorf("init model client: %w", err)
	}

	out := Clients{
		Coach:  llm.Instrument(base, cfg.ModelProvider, "coach", cfg.ModelTimeout, metrics, log),
		Grader: llm.Instrument(base, cfg.ModelProvider, "grade", cfg.ModelTimeout, metrics, log),
		Locker: redis.NewNoopLocker(),
	}

	// Redis
	if cfg.RedisAddr != "" {
		rdb, err := redis.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		locker, err := redis.NewLocker(log, rdb, "writecoach")
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init redis locker: %w", err)
		}
		out.Redis = rdb
		out.Locker = locker
	} else {
		log.Warn("REDIS_ADDR unset; grading relies on database guards only")
	}
	return out, nil
}
