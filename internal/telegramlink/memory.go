package telegramlink

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	chatID    int64
	expiresAt time.Time
}

// MemoryStore хранит коды в памяти процесса. Используется когда Redis не настроен
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

func (s *MemoryStore) Issue(_ context.Context, chatID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	// Истёкшие коды больше не нужны
	for code, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, code)
		}
	}

	code := newCode()
	s.entries[code] = entry{chatID: chatID, expiresAt: now.Add(s.ttl)}
	return code, nil
}

func (s *MemoryStore) Redeem(_ context.Context, code string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code = Normalize(code)
	e, ok := s.entries[code]
	if !ok {
		return 0, false, nil
	}
	delete(s.entries, code)

	if !s.now().Before(e.expiresAt) {
		return 0, false, nil
	}
	return e.chatID, true, nil
}
