package schedule

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrSlotConflict = errors.New("this time slot is already booked or pending")

// Occupied интервал, занятый активной записью календаря
type Occupied struct {
	ID       uuid.UUID
	Interval Interval
}

// CheckNoOverlap проверяет что candidate не пересекается ни с одной активной записью.
// Запись с идентификатором exclude не учитывается (перенос самой себя).
func CheckNoOverlap(candidate Interval, active []Occupied, exclude uuid.UUID) error {
	for _, o := range active {
		if exclude != uuid.Nil && o.ID == exclude {
			continue
		}
		if Overlaps(candidate, o.Interval) {
			return fmt.Errorf("%w: %s overlaps appointment %s", ErrSlotConflict, candidate, o.ID)
		}
	}
	return nil
}

// CheckNotBlocked проверяет что candidate не попадает в заблокированный промежуток
func CheckNotBlocked(candidate Interval, blocked []Interval) error {
	for _, b := range blocked {
		if Overlaps(candidate, b) {
			return fmt.Errorf("%w: %s overlaps blocked range %s", ErrSlotConflict, candidate, b)
		}
	}
	return nil
}
