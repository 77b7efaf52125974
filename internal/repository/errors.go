package repository

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/calendar_booking/internal/schedule"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgExclusionViolation = "23P01"

// isCalendarConflict проверяет, что запись отклонена ограничением appointments_no_overlap.
// Ошибки сериализации и дедлоки сюда не относятся: это сбой хранилища, а не занятый слот.
func isCalendarConflict(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgExclusionViolation {
		return "", false
	}
	return pgErr.ConstraintName, true
}

// mapCalendarError переводит отказ хранилища в schedule.ErrSlotConflict:
// проигравший из двух конкурентных писателей получает ту же ошибку, что и при синхронной проверке
func mapCalendarError(op string, err error) error {
	if err == nil {
		return nil
	}

	if detail, ok := isCalendarConflict(err); ok {
		return fmt.Errorf("%w (%s)", schedule.ErrSlotConflict, detail)
	}
	if op == "" {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
