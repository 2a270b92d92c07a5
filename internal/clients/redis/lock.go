package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/writecoach-backend/internal/platform/envutil"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

// ErrLockHeld is returned when another request holds the key.
var ErrLockHeld = errors.New("lock held by another request")

// Locker guards short critical sections across API replicas.
type Locker interface {
	// Acquire takes key for ttl. The returned release func is always
	// non-nil and safe to call more than once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

type noopLocker struct{}

func (noopLocker) Acquire(context.Context, string, time.Duration) (func(), error) {
	return func() {}, nil
}

// NewNoopLocker is used when REDIS_ADDR is not configured. The database
// guards still apply.
func NewNoopLocker() Locker { return noopLocker{} }

var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

// NewClient dials REDIS_ADDR and verifies it with a ping.
func NewClient(ctx context.Context, addr string) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    envutil.String("REDIS_PASSWORD", ""),
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func NewLocker(log *logger.Logger, rdb *goredis.Client, prefix string) (Locker, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "writecoach:lock:"
	}
	return &redisLocker{log: log.With("service", "RedisLocker"), rdb: rdb, prefix: prefix}, nil
}

func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	full := l.prefix + key
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return func() {}, fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return func() {}, ErrLockHeld
	}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		// Released on a fresh context so a cancelled request still frees the key.
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(relCtx, l.rdb, []string{full}, token).Err(); err != nil {
			l.log.Warn("lock release failed", "key", full, "error", err)
		}
	}, nil
}
