package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

func TestNoopLockerAlwaysAcquires(t *testing.T) {
	l := NewNoopLocker()
	for i := 0; i < 2; i++ {
		release, err := l.Acquire(context.Background(), "session:1", time.Second)
		if err != nil || release == nil {
			t.Fatalf("Acquire: err=%v", err)
		}
		release()
	}
}

func TestRedisLockerExcludesConcurrentHolder(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := NewClient(ctx, addr)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	l, err := NewLocker(logger.Nop(), rdb, "writecoach:test:")
	if err != nil {
		t.Fatalf("NewLocker: %v", err)
	}
	key := "session:" + uuid.NewString()

	release, err := l.Acquire(ctx, key, 5*time.Second)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if _, err := l.Acquire(ctx, key, 5*time.Second); !errors.Is(err, ErrLockHeld) {
		t.Fatalf("second Acquire: want ErrLockHeld, got %v", err)
	}
	release()
	release()
	again, err := l.Acquire(ctx, key, 5*time.Second)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	again()
}
