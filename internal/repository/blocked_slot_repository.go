package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/Freeeeeet/calendar_booking/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BlockedSlotRepository struct {
	*base.Repository
}

func NewBlockedSlotRepository(pool *pgxpool.Pool) *BlockedSlotRepository {
	return &BlockedSlotRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт блокировку
func (r *BlockedSlotRepository) Create(ctx context.Context, b *model.BlockedSlot) error {
	query := `
		INSERT INTO blocked_slots (id, start_time, end_time, reason, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	err := r.QueryRow(ctx, query, b.ID, b.StartTime, b.EndTime, b.Reason, b.CreatedBy).Scan(&b.CreatedAt)
	if err != nil {
		return fmt.Errorf("create blocked slot: %w", err)
	}

	return nil
}

// Delete удаляет блокировку. Возвращает false, если её не было
func (r *BlockedSlotRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM blocked_slots WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete blocked slot: %w", err)
	}
	return affected > 0, nil
}

// List получает блокировки, целиком лежащие в [from, to]. Нулевые границы не ограничивают выборку
func (r *BlockedSlotRepository) List(ctx context.Context, from, to time.Time) ([]*model.BlockedSlot, error) {
	query := `
		SELECT id, start_time, end_time, reason, created_by, created_at
		FROM blocked_slots
		WHERE ($1::timestamptz IS NULL OR start_time >= $1)
		  AND ($2::timestamptz IS NULL OR end_time <= $2)
		ORDER BY start_time
	`

	rows, err := r.Query(ctx, query, nullableTime(from), nullableTime(to))
	if err != nil {
		return nil, fmt.Errorf("list blocked slots: %w", err)
	}

	return r.collect(rows)
}

// ListOverlapping получает блокировки, пересекающие [from, to)
func (r *BlockedSlotRepository) ListOverlapping(ctx context.Context, from, to time.Time) ([]*model.BlockedSlot, error) {
	query := `
		SELECT id, start_time, end_time, reason, created_by, created_at
		FROM blocked_slots
		WHERE start_time < $2 AND end_time > $1
		ORDER BY start_time
	`

	rows, err := r.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list overlapping blocked slots: %w", err)
	}

	return r.collect(rows)
}

func (r *BlockedSlotRepository) collect(rows pgx.Rows) ([]*model.BlockedSlot, error) {
	defer rows.Close()

	var blocks []*model.BlockedSlot
	for rows.Next() {
		var b model.BlockedSlot
		if err := rows.Scan(&b.ID, &b.StartTime, &b.EndTime, &b.Reason, &b.CreatedBy, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan blocked slot: %w", err)
		}
		blocks = append(blocks, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocked slots: %w", err)
	}

	return blocks, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
