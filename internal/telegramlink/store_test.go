package telegramlink

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/idempotency"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	code, err := store.Issue(ctx, 987654)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(code) != 8 {
		t.Fatalf("unexpected code %q", code)
	}

	other, err := store.Issue(ctx, 987654)
	if err != nil || other == code {
		t.Fatalf("each issue must produce a new code: %q %q %v", code, other, err)
	}

	chatID, ok, err := store.Redeem(ctx, " "+strings.ToLower(code)+" ")
	if err != nil || !ok || chatID != 987654 {
		t.Fatalf("redeem: %d %v %v", chatID, ok, err)
	}

	if _, ok, err := store.Redeem(ctx, code); err != nil || ok {
		t.Fatalf("code must be single use: %v %v", ok, err)
	}

	if _, ok, err := store.Redeem(ctx, "DEADBEEF"); err != nil || ok {
		t.Fatalf("unknown code accepted: %v %v", ok, err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Minute))
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	current := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	ctx := context.Background()
	code, err := store.Issue(ctx, 42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, ok, err := store.Redeem(ctx, code); err != nil || ok {
		t.Fatalf("expired code accepted: %v %v", ok, err)
	}

	// Истёкшие коды вычищаются при выдаче новых
	if _, err := store.Issue(ctx, 42); err != nil {
		t.Fatalf("issue: %v", err)
	}
	stale, _ := store.Issue(ctx, 43)
	current = current.Add(2 * time.Minute)
	if _, err := store.Issue(ctx, 44); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, ok := store.entries[stale]; ok {
		t.Fatal("expired code must be swept")
	}
	if len(store.entries) != 1 {
		t.Fatalf("expected only the fresh code, got %d", len(store.entries))
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	rdb, err := idempotency.Connect(context.Background(), addr)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer rdb.Close()

	exerciseStore(t, NewRedisStore(rdb, time.Minute))
}
