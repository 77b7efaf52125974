package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/Freeeeeet/calendar_booking/internal/render"
	"github.com/Freeeeeet/calendar_booking/internal/schedule"
)

const dateLayout = "2006-01-02"

// Availability сетка слотов на один день
type Availability struct {
	Date         string                `json:"date"`
	Slots        []schedule.Slot       `json:"slots"`
	WorkingHours schedule.WorkingHours `json:"workingHours"`
	Message      string                `json:"message,omitempty"`
}

type AvailabilityService struct {
	calculator   *schedule.Calculator
	appointments AppointmentRepository
	blocks       BlockedSlotRepository
	now          func() time.Time
}

func NewAvailabilityService(
	calculator *schedule.Calculator,
	appointments AppointmentRepository,
	blocks BlockedSlotRepository,
) *AvailabilityService {
	return &AvailabilityService{
		calculator:   calculator,
		appointments: appointments,
		blocks:       blocks,
		now:          time.Now,
	}
}

// SetClock подменяет источник текущего времени
func (s *AvailabilityService) SetClock(now func() time.Time) {
	s.now = now
}

// ParseDate разбирает YYYY-MM-DD в часовом поясе календаря
func (s *AvailabilityService) ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, validationError("date parameter is required")
	}
	date, err := time.ParseInLocation(dateLayout, value, s.location())
	if err != nil {
		return time.Time{}, validationError("date must be in YYYY-MM-DD format")
	}
	return date, nil
}

// DefaultDuration длительность слота, если клиент её не указал
func (s *AvailabilityService) DefaultDuration() int {
	return s.calculator.WorkingHours().SlotMinutes
}

func (s *AvailabilityService) location() *time.Location {
	if loc := s.calculator.WorkingHours().Location; loc != nil {
		return loc
	}
	return time.UTC
}

// Slots строит сетку доступности дня по активным записям и блокировкам
func (s *AvailabilityService) Slots(ctx context.Context, date time.Time, durationMinutes int) (*Availability, error) {
	hours := s.calculator.WorkingHours()
	day := hours.Day(date)
	bounds := hours.DayBounds(day)

	active, err := s.appointments.ListActiveBetween(ctx, bounds.Start, bounds.End)
	if err != nil {
		return nil, fmt.Errorf("list active appointments: %w", err)
	}

	blocks, err := s.blocks.ListOverlapping(ctx, bounds.Start, bounds.End)
	if err != nil {
		return nil, fmt.Errorf("list blocked slots: %w", err)
	}

	slots, err := s.calculator.GenerateSlots(day, durationMinutes, model.Intervals(active), model.BlockedIntervals(blocks), s.now())
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidDuration) {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return nil, fmt.Errorf("generate slots: %w", err)
	}

	availability := &Availability{
		Date:         day.Format(dateLayout),
		Slots:        slots,
		WorkingHours: hours,
	}
	if len(slots) == 0 {
		availability.Message = "Not a working day"
	}

	return availability, nil
}

// DayImage рисует доступность дня в PNG
func (s *AvailabilityService) DayImage(ctx context.Context, date time.Time, durationMinutes int) ([]byte, error) {
	availability, err := s.Slots(ctx, date, durationMinutes)
	if err != nil {
		return nil, err
	}

	data, err := render.DayImage(s.calculator.WorkingHours().Day(date), availability.Slots)
	if err != nil {
		return nil, fmt.Errorf("render day image: %w", err)
	}
	return data, nil
}
