package idempotency

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	key := "user:" + uuid.NewString()

	result, err := store.Reserve(ctx, key)
	if err != nil || result != "" {
		t.Fatalf("first reserve: %q %v", result, err)
	}

	if _, err := store.Reserve(ctx, key); !errors.Is(err, ErrInProgress) {
		t.Fatalf("expected in progress, got %v", err)
	}

	if err := store.Complete(ctx, key, "appointment-1"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	result, err = store.Reserve(ctx, key)
	if err != nil || result != "appointment-1" {
		t.Fatalf("replay: %q %v", result, err)
	}

	other := "user:" + uuid.NewString()
	if _, err := store.Reserve(ctx, other); err != nil {
		t.Fatalf("reserve other: %v", err)
	}
	if err := store.Release(ctx, other); err != nil {
		t.Fatalf("release: %v", err)
	}
	result, err = store.Reserve(ctx, other)
	if err != nil || result != "" {
		t.Fatalf("released key must be reservable again: %q %v", result, err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	current := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	ctx := context.Background()
	if _, err := store.Reserve(ctx, "k"); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	current = current.Add(2 * time.Minute)
	result, err := store.Reserve(ctx, "k")
	if err != nil || result != "" {
		t.Fatalf("expired key must be free: %q %v", result, err)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	rdb, err := Connect(context.Background(), addr)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer rdb.Close()

	exerciseStore(t, NewRedisStore(rdb, time.Minute))
}
