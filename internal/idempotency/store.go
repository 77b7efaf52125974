// Package idempotency хранит ключи Idempotency-Key повторяемых запросов
package idempotency

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL сколько хранится результат по ключу
const DefaultTTL = 24 * time.Hour

// ErrInProgress запрос с тем же ключом ещё выполняется
var ErrInProgress = errors.New("request in progress")

// Store резервирует ключ на время выполнения запроса и запоминает его результат.
//
// Reserve возвращает ("", nil) если ключ свободен и теперь занят вызывающим,
// (result, nil) если запрос уже завершён, ErrInProgress если он ещё выполняется.
type Store interface {
	Reserve(ctx context.Context, key string) (string, error)
	Complete(ctx context.Context, key, result string) error
	Release(ctx context.Context, key string) error
}

const pendingMarker = "\x00pending"
