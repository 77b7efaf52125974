package model

import (
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/schedule"
	"github.com/google/uuid"
)

// BlockedSlot промежуток, закрытый администратором для записи
type BlockedSlot struct {
	ID        uuid.UUID `json:"id"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Reason    string    `json:"reason,omitempty"`
	CreatedBy *uuid.UUID `json:"createdBy,omitempty"` // nil если автор удалён
	CreatedAt time.Time `json:"createdAt"`
}

func (b *BlockedSlot) Interval() schedule.Interval {
	return schedule.Interval{Start: b.StartTime, End: b.EndTime}
}

// BlockedIntervals возвращает промежутки блокировок
func BlockedIntervals(blocks []*BlockedSlot) []schedule.Interval {
	out := make([]schedule.Interval, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.Interval())
	}
	return out
}
