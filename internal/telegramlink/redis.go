package telegramlink

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "telegram_link:"

// RedisStore хранит коды в Redis, общий для всех реплик сервиса
type RedisStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *goredis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Issue(ctx context.Context, chatID int64) (string, error) {
	code := newCode()
	if err := s.rdb.Set(ctx, keyPrefix+code, chatID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store link code: %w", err)
	}
	return code, nil
}

// Redeem читает и удаляет код одной командой GETDEL, поэтому код гасится ровно один раз
func (s *RedisStore) Redeem(ctx context.Context, code string) (int64, bool, error) {
	chatID, err := s.rdb.GetDel(ctx, keyPrefix+Normalize(code)).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redeem link code: %w", err)
	}
	return chatID, true, nil
}
