package schedule

import (
	"fmt"
	"time"
)

// Slot кандидат для записи, вычисляется на каждый запрос и нигде не хранится
type Slot struct {
	Start     time.Time `json:"startTime"`
	End       time.Time `json:"endTime"`
	Available bool      `json:"available"`
	IsPast    bool      `json:"isPast"`
	IsBlocked bool      `json:"isBlocked"`
	IsBooked  bool      `json:"isBooked"`
}

func (s Slot) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

// Calculator строит сетку слотов по рабочему времени
type Calculator struct {
	hours WorkingHours
}

// NewCalculator создаёт калькулятор доступности
func NewCalculator(hours WorkingHours) (*Calculator, error) {
	if err := hours.Validate(); err != nil {
		return nil, fmt.Errorf("invalid working hours: %w", err)
	}
	return &Calculator{hours: hours}, nil
}

func (c *Calculator) WorkingHours() WorkingHours {
	return c.hours
}

// GenerateSlots проходит рабочее окно дня шагами по durationMinutes.
// booked должен уже содержать только активные записи (pending, approved).
// Неполный последний слот отбрасывается. Для нерабочего дня возвращается пустой срез.
func (c *Calculator) GenerateSlots(date time.Time, durationMinutes int, booked, blocked []Interval, now time.Time) ([]Slot, error) {
	if !IsAllowedDuration(durationMinutes) {
		return nil, fmt.Errorf("%w: %d minutes", ErrInvalidDuration, durationMinutes)
	}

	day := c.hours.Day(date)
	if !c.hours.IsWorkingDay(day.Weekday()) {
		return []Slot{}, nil
	}

	window := c.hours.Window(day)
	step := time.Duration(durationMinutes) * time.Minute

	slots := make([]Slot, 0, int(window.Duration()/step))
	for start := window.Start; !start.Add(step).After(window.End); start = start.Add(step) {
		candidate := Interval{Start: start, End: start.Add(step)}

		isBooked := AnyOverlap(candidate, booked)
		isBlocked := AnyOverlap(candidate, blocked)
		isPast := candidate.Start.Before(now)

		slots = append(slots, Slot{
			Start:     candidate.Start,
			End:       candidate.End,
			Available: !isBooked && !isBlocked && !isPast,
			IsPast:    isPast,
			IsBlocked: isBlocked,
			IsBooked:  isBooked,
		})
	}

	return slots, nil
}
