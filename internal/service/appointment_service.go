package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/lifecycle"
	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/Freeeeeet/calendar_booking/internal/notification"
	"github.com/Freeeeeet/calendar_booking/internal/schedule"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 1000
	maxNameLength        = 100
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// CreateAppointmentInput данные новой записи
type CreateAppointmentInput struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Kind        model.AppointmentKind `json:"type"`
	StartTime   time.Time             `json:"startTime"`
	EndTime     time.Time             `json:"endTime"`
	Duration    int                   `json:"duration"`
	Name        string                `json:"name"`
	Email       string                `json:"email"`
	Phone       string                `json:"phone"`
}

// TransitionInput событие жизненного цикла и его данные
type TransitionInput struct {
	Event          lifecycle.Event `json:"event"`
	MeetingLink    string          `json:"meetingLink"`
	Reason         string          `json:"reason"`
	RequestedStart *time.Time      `json:"requestedStart"`
}

type AppointmentService struct {
	appointments AppointmentRepository
	blocks       BlockedSlotRepository
	calendar     Calendar
	dispatcher   notification.Dispatcher
	now          func() time.Time
	logger       *zap.Logger
}

func NewAppointmentService(
	appointments AppointmentRepository,
	blocks BlockedSlotRepository,
	calendar Calendar,
	dispatcher notification.Dispatcher,
	logger *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		blocks:       blocks,
		calendar:     calendar,
		dispatcher:   dispatcher,
		now:          time.Now,
		logger:       logger,
	}
}

// SetClock подменяет источник текущего времени
func (s *AppointmentService) SetClock(now func() time.Time) {
	s.now = now
}

// Create проверяет данные, занимает интервал в календаре и сохраняет запись в статусе pending
func (s *AppointmentService) Create(ctx context.Context, actor lifecycle.Actor, in CreateAppointmentInput) (*model.Appointment, error) {
	a, err := s.buildAppointment(actor, in)
	if err != nil {
		return nil, err
	}

	err = s.calendar.WithCalendarLock(ctx, func(ctx context.Context) error {
		if err := s.ensureFree(ctx, a.Interval(), uuid.Nil); err != nil {
			return err
		}
		return s.appointments.Create(ctx, a)
	})
	if err != nil {
		if errors.Is(err, ErrSlotConflict) {
			s.logger.Info("Appointment rejected by conflict guard",
				zap.String("user_id", actor.ID.String()),
				zap.Time("start", a.StartTime),
				zap.Error(err),
			)
			return nil, err
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.logger.Info("Appointment created",
		zap.String("appointment_id", a.ID.String()),
		zap.String("user_id", a.UserID.String()),
		zap.Time("start", a.StartTime),
		zap.Int("duration", a.Duration),
	)

	notification.DispatchAll(context.WithoutCancel(ctx), s.dispatcher, lifecycle.SubmissionNotices(a), s.logger)

	return a, nil
}

func (s *AppointmentService) buildAppointment(actor lifecycle.Actor, in CreateAppointmentInput) (*model.Appointment, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validationError("title is required")
	}
	if len([]rune(title)) > maxTitleLength {
		return nil, validationError("title cannot exceed %d characters", maxTitleLength)
	}

	description := strings.TrimSpace(in.Description)
	if len([]rune(description)) > maxDescriptionLength {
		return nil, validationError("description cannot exceed %d characters", maxDescriptionLength)
	}

	if !in.Kind.Valid() {
		return nil, validationError("type must be online or offline")
	}

	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return nil, validationError("start and end time are required")
	}

	if !schedule.IsAllowedDuration(in.Duration) {
		return nil, validationError("duration must be one of %v minutes", schedule.AllowedDurations)
	}

	interval, err := schedule.NewInterval(in.StartTime, in.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if interval.Duration() != time.Duration(in.Duration)*time.Minute {
		return nil, validationError("end time must be start time plus %d minutes", in.Duration)
	}

	if interval.Start.Before(s.now()) {
		return nil, validationError("cannot book a time in the past")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	if len([]rune(name)) > maxNameLength {
		return nil, validationError("name cannot exceed %d characters", maxNameLength)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, validationError("email is required")
	}
	if !emailPattern.MatchString(email) {
		return nil, validationError("please enter a valid email")
	}

	return &model.Appointment{
		UserID:      actor.ID,
		Title:       title,
		Description: description,
		Kind:        in.Kind,
		StartTime:   interval.Start,
		EndTime:     interval.End,
		Duration:    in.Duration,
		Status:      model.AppointmentStatusPending,
		Name:        name,
		Email:       email,
		Phone:       strings.TrimSpace(in.Phone),
	}, nil
}

// ensureFree проверяет что интервал не пересекает активные записи и блокировки.
// Вызывается только под календарной блокировкой.
func (s *AppointmentService) ensureFree(ctx context.Context, candidate schedule.Interval, exclude uuid.UUID) error {
	active, err := s.appointments.ListActiveBetween(ctx, candidate.Start, candidate.End)
	if err != nil {
		return fmt.Errorf("list active appointments: %w", err)
	}
	if err := schedule.CheckNoOverlap(candidate, model.Occupied(active), exclude); err != nil {
		return err
	}

	blocks, err := s.blocks.ListOverlapping(ctx, candidate.Start, candidate.End)
	if err != nil {
		return fmt.Errorf("list blocked slots: %w", err)
	}
	return schedule.CheckNotBlocked(candidate, model.BlockedIntervals(blocks))
}

// Transition применяет событие жизненного цикла к записи.
// Подтверждение переноса выполняется под календарной блокировкой, остальные события её не берут.
func (s *AppointmentService) Transition(ctx context.Context, actor lifecycle.Actor, id uuid.UUID, in TransitionInput) (*model.Appointment, error) {
	// Время в payload читает только запрос переноса, остальные события его игнорируют
	if in.Event == lifecycle.EventRequestReschedule && in.RequestedStart != nil && in.RequestedStart.Before(s.now()) {
		return nil, validationError("requested time cannot be in the past")
	}

	payload := lifecycle.Payload{
		MeetingLink:    strings.TrimSpace(in.MeetingLink),
		Reason:         strings.TrimSpace(in.Reason),
		RequestedStart: in.RequestedStart,
	}

	var result *lifecycle.Result
	apply := func(ctx context.Context, check lifecycle.ConflictChecker) error {
		current, err := s.appointments.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get appointment: %w", err)
		}
		if current == nil {
			return notFound("appointment")
		}

		result, err = lifecycle.Apply(current, in.Event, actor, payload, check)
		if err != nil {
			return err
		}

		updated, err := s.appointments.Update(ctx, result.Appointment, result.From)
		if err != nil {
			return fmt.Errorf("save transition: %w", err)
		}
		if !updated {
			return &lifecycle.TransitionError{From: result.From, Event: in.Event, Reason: "appointment was changed by another request"}
		}
		return nil
	}

	var err error
	if in.Event == lifecycle.EventConfirmReschedule {
		err = s.calendar.WithCalendarLock(ctx, func(ctx context.Context) error {
			return apply(ctx, func(candidate schedule.Interval, self uuid.UUID) error {
				// Запрошенное время могло пройти, пока запрос ждал администратора
				if candidate.Start.Before(s.now()) {
					return validationError("requested time has already passed")
				}
				return s.ensureFree(ctx, candidate, self)
			})
		})
	} else {
		err = apply(ctx, nil)
	}
	if err != nil {
		if isDomainError(err) {
			s.logger.Info("Transition refused",
				zap.String("appointment_id", id.String()),
				zap.String("event", string(in.Event)),
				zap.String("actor_id", actor.ID.String()),
				zap.Error(err),
			)
			return nil, err
		}
		return nil, fmt.Errorf("transition appointment: %w", err)
	}

	s.logger.Info("Appointment transitioned",
		zap.String("appointment_id", id.String()),
		zap.String("event", string(result.Event)),
		zap.String("from", string(result.From)),
		zap.String("to", string(result.Appointment.Status)),
		zap.String("actor_id", actor.ID.String()),
	)

	notification.DispatchAll(context.WithoutCancel(ctx), s.dispatcher, result.Notices, s.logger)

	return result.Appointment, nil
}

// Get возвращает запись владельцу или администратору
func (s *AppointmentService) Get(ctx context.Context, actor lifecycle.Actor, id uuid.UUID) (*model.Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if a == nil {
		return nil, notFound("appointment")
	}

	if !actor.Role.IsAdmin() && a.UserID != actor.ID {
		return nil, fmt.Errorf("%w: appointment belongs to another user", ErrForbidden)
	}

	return a, nil
}

// List возвращает все записи администратору и только собственные обычному пользователю
func (s *AppointmentService) List(ctx context.Context, actor lifecycle.Actor) ([]*model.Appointment, error) {
	var (
		appointments []*model.Appointment
		err          error
	)
	if actor.Role.IsAdmin() {
		appointments, err = s.appointments.List(ctx)
	} else {
		appointments, err = s.appointments.ListByUser(ctx, actor.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	if appointments == nil {
		appointments = []*model.Appointment{}
	}
	return appointments, nil
}

func isDomainError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrSlotConflict)
}
