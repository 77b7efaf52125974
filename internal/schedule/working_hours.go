package schedule

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidDuration = errors.New("duration is not allowed")

// AllowedDurations допустимые длительности записи в минутах
var AllowedDurations = []int{15, 30, 60, 90, 120}

// IsAllowedDuration проверяет что длительность входит в AllowedDurations
func IsAllowedDuration(minutes int) bool {
	for _, d := range AllowedDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

// WorkingHours описывает рабочее время календаря
type WorkingHours struct {
	StartHour   int            `json:"start"`
	EndHour     int            `json:"end"`
	SlotMinutes int            `json:"slotDuration"`
	WorkingDays []time.Weekday `json:"workDays"`
	Location    *time.Location `json:"-"`
}

// DefaultWorkingHours 09:00-17:00, слоты по 30 минут, понедельник-пятница
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{
		StartHour:   9,
		EndHour:     17,
		SlotMinutes: 30,
		WorkingDays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		Location: time.UTC,
	}
}

// Validate проверяет корректность конфигурации
func (w WorkingHours) Validate() error {
	if w.StartHour < 0 || w.StartHour > 23 {
		return fmt.Errorf("start hour %d out of range", w.StartHour)
	}
	if w.EndHour < 1 || w.EndHour > 24 {
		return fmt.Errorf("end hour %d out of range", w.EndHour)
	}
	if w.StartHour >= w.EndHour {
		return fmt.Errorf("start hour %d must be before end hour %d", w.StartHour, w.EndHour)
	}
	if !IsAllowedDuration(w.SlotMinutes) {
		return fmt.Errorf("%w: slot minutes %d", ErrInvalidDuration, w.SlotMinutes)
	}
	for _, d := range w.WorkingDays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("invalid working day %d", d)
		}
	}
	return nil
}

func (w WorkingHours) location() *time.Location {
	if w.Location == nil {
		return time.UTC
	}
	return w.Location
}

// IsWorkingDay проверяет является ли день недели рабочим
func (w WorkingHours) IsWorkingDay(day time.Weekday) bool {
	for _, d := range w.WorkingDays {
		if d == day {
			return true
		}
	}
	return false
}

// Day нормализует дату к началу календарного дня в часовом поясе сервиса
func (w WorkingHours) Day(date time.Time) time.Time {
	local := date.In(w.location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, w.location())
}

// Window возвращает рабочее окно [StartHour, EndHour) для указанной даты.
// Часы отсчитываются по местным часам, а не от полуночи, поэтому в дни перевода
// часов окно остаётся 09:00-17:00 по стене, а не сдвигается на час.
func (w WorkingHours) Window(date time.Time) Interval {
	local := date.In(w.location())
	y, m, d := local.Date()
	return Interval{
		Start: time.Date(y, m, d, w.StartHour, 0, 0, 0, w.location()),
		End:   time.Date(y, m, d, w.EndHour, 0, 0, 0, w.location()),
	}
}

// DayBounds возвращает полный календарный день [00:00, 00:00 следующего дня)
func (w WorkingHours) DayBounds(date time.Time) Interval {
	day := w.Day(date)
	return Interval{Start: day, End: day.AddDate(0, 0, 1)}
}
