package service

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/calendar_booking/internal/lifecycle"
	"github.com/Freeeeeet/calendar_booking/internal/schedule"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")

	// Ошибки доменных пакетов, чтобы errors.Is работал поверх слоёв
	ErrForbidden         = lifecycle.ErrForbidden
	ErrInvalidTransition = lifecycle.ErrInvalidTransition
	ErrSlotConflict      = schedule.ErrSlotConflict
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}
