package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/calendar_booking/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

// calendarLockKey ключ advisory lock общего календаря
const calendarLockKey int64 = 0x63616c656e646172 // "calendar"

// Calendar сериализует запись в общий календарь
type Calendar struct {
	pool *pgxpool.Pool
	key  int64
}

func NewCalendar(pool *pgxpool.Pool) *Calendar {
	return &Calendar{pool: pool, key: calendarLockKey}
}

// WithCalendarLock выполняет fn в READ COMMITTED транзакции под pg_advisory_xact_lock.
// Каждый запрос внутри fn видит всё, что закоммитил предыдущий держатель блокировки,
// поэтому проверка пересечений и запись атомарны относительно других писателей.
// Репозитории получают транзакцию через контекст.
func (c *Calendar) WithCalendarLock(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, c.key); err != nil {
		return fmt.Errorf("acquire calendar lock: %w", err)
	}

	if err := fn(base.WithTx(ctx, tx)); err != nil {
		return mapCalendarError("", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return mapCalendarError("commit transaction", err)
	}

	return nil
}
