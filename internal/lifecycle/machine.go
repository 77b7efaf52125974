package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/Freeeeeet/calendar_booking/internal/notification"
	"github.com/Freeeeeet/calendar_booking/internal/schedule"
	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrForbidden         = errors.New("forbidden")
)

type Event string

const (
	EventApprove           Event = "approve"
	EventReject            Event = "reject"
	EventRequestCancel     Event = "request_cancel"
	EventRequestReschedule Event = "request_reschedule"
	EventConfirmCancel     Event = "confirm_cancel"
	EventRejectCancel      Event = "reject_cancel"
	EventConfirmReschedule Event = "confirm_reschedule"
	EventRejectReschedule  Event = "reject_reschedule"
)

// Events все события в порядке таблицы переходов
var Events = []Event{
	EventApprove,
	EventReject,
	EventRequestCancel,
	EventRequestReschedule,
	EventConfirmCancel,
	EventRejectCancel,
	EventConfirmReschedule,
	EventRejectReschedule,
}

// TransitionError событие недопустимо в текущем статусе или не хватает данных
type TransitionError struct {
	From   model.AppointmentStatus
	Event  Event
	Reason string
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("cannot %s appointment in status %s", e.Event, e.From)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Actor проверенный внешним слоем инициатор действия
type Actor struct {
	ID   uuid.UUID
	Role model.Role
}

// Payload дополнительные данные события
type Payload struct {
	MeetingLink    string
	Reason         string
	RequestedStart *time.Time
}

// ConflictChecker проверяет что новый интервал записи self не занят.
// Возвращает ошибку, оборачивающую schedule.ErrSlotConflict.
type ConflictChecker func(candidate schedule.Interval, self uuid.UUID) error

// Result итог применённого перехода
type Result struct {
	Appointment *model.Appointment
	From        model.AppointmentStatus
	Event       Event
	Notices     []notification.Notice
}

type guard int

const (
	adminOnly guard = iota
	ownerOnly
)

type transition struct {
	guard guard
	to    model.AppointmentStatus
	apply func(a *model.Appointment, p Payload, check ConflictChecker) error
	emit  func(a *model.Appointment, p Payload) []notification.Notice
}

type key struct {
	from  model.AppointmentStatus
	event Event
}

var table = map[key]transition{
	{model.AppointmentStatusPending, EventApprove}: {
		guard: adminOnly,
		to:    model.AppointmentStatusApproved,
		apply: func(a *model.Appointment, p Payload, _ ConflictChecker) error {
			if p.MeetingLink != "" {
				a.MeetingLink = p.MeetingLink
			}
			return nil
		},
		emit: approvedNotices,
	},
	{model.AppointmentStatusPending, EventReject}: {
		guard: adminOnly,
		to:    model.AppointmentStatusRejected,
		apply: func(a *model.Appointment, p Payload, _ ConflictChecker) error {
			a.RejectionReason = p.Reason
			return nil
		},
		emit: rejectedNotices,
	},
	{model.AppointmentStatusPending, EventRequestCancel}:      requestCancel,
	{model.AppointmentStatusApproved, EventRequestCancel}:     requestCancel,
	{model.AppointmentStatusPending, EventRequestReschedule}:  requestReschedule,
	{model.AppointmentStatusApproved, EventRequestReschedule}: requestReschedule,
	{model.AppointmentStatusCancellationRequested, EventConfirmCancel}: {
		guard: adminOnly,
		to:    model.AppointmentStatusCancelled,
		emit:  cancelConfirmedNotices,
	},
	{model.AppointmentStatusCancellationRequested, EventRejectCancel}: {
		guard: adminOnly,
		to:    model.AppointmentStatusApproved,
		emit:  cancelRejectedNotices,
	},
	{model.AppointmentStatusRescheduleRequested, EventConfirmReschedule}: {
		guard: adminOnly,
		to:    model.AppointmentStatusApproved,
		apply: confirmReschedule,
		emit:  rescheduleConfirmedNotices,
	},
	{model.AppointmentStatusRescheduleRequested, EventRejectReschedule}: {
		guard: adminOnly,
		to:    model.AppointmentStatusApproved,
		apply: func(a *model.Appointment, _ Payload, _ ConflictChecker) error {
			clearRescheduleRequest(a)
			return nil
		},
		emit: rescheduleRejectedNotices,
	},
}

var requestCancel = transition{
	guard: ownerOnly,
	to:    model.AppointmentStatusCancellationRequested,
	apply: func(a *model.Appointment, p Payload, _ ConflictChecker) error {
		a.CancellationReason = p.Reason
		return nil
	},
	emit: cancellationRequestedNotices,
}

var requestReschedule = transition{
	guard: ownerOnly,
	to:    model.AppointmentStatusRescheduleRequested,
	apply: func(a *model.Appointment, p Payload, _ ConflictChecker) error {
		if p.RequestedStart == nil || p.RequestedStart.IsZero() {
			return &TransitionError{From: a.Status, Event: EventRequestReschedule, Reason: "new start time is required"}
		}
		requested := *p.RequestedStart
		a.RescheduleRequestedTime = &requested
		a.RescheduleReason = p.Reason
		return nil
	},
	emit: rescheduleRequestedNotices,
}

// confirmReschedule переносит запись на запрошенное время с прежней длительностью
func confirmReschedule(a *model.Appointment, _ Payload, check ConflictChecker) error {
	if a.RescheduleRequestedTime == nil {
		return &TransitionError{From: a.Status, Event: EventConfirmReschedule, Reason: "no requested time found"}
	}

	next, err := schedule.FromDuration(*a.RescheduleRequestedTime, a.Duration)
	if err != nil {
		return &TransitionError{From: a.Status, Event: EventConfirmReschedule, Reason: err.Error()}
	}

	if check != nil {
		if err := check(next, a.ID); err != nil {
			return err
		}
	}

	a.StartTime = next.Start
	a.EndTime = next.End
	clearRescheduleRequest(a)
	return nil
}

func clearRescheduleRequest(a *model.Appointment) {
	a.RescheduleRequestedTime = nil
	a.RescheduleReason = ""
}

// Allowed возвращает события, допустимые в статусе
func Allowed(status model.AppointmentStatus) []Event {
	var out []Event
	for _, ev := range Events {
		if _, ok := table[key{status, ev}]; ok {
			out = append(out, ev)
		}
	}
	return out
}

// Target возвращает статус, в который приводит событие, если переход определён
func Target(status model.AppointmentStatus, event Event) (model.AppointmentStatus, bool) {
	t, ok := table[key{status, event}]
	return t.to, ok
}

// Apply проверяет и применяет событие к копии записи.
// Исходная запись не изменяется, поэтому при ошибке состояние остаётся прежним.
func Apply(current *model.Appointment, event Event, actor Actor, p Payload, check ConflictChecker) (*Result, error) {
	t, ok := table[key{current.Status, event}]
	if !ok {
		return nil, &TransitionError{From: current.Status, Event: event}
	}

	switch t.guard {
	case adminOnly:
		if !actor.Role.IsAdmin() {
			return nil, fmt.Errorf("%w: %s requires an administrator", ErrForbidden, event)
		}
	case ownerOnly:
		if actor.ID != current.UserID {
			return nil, fmt.Errorf("%w: only the owner can %s", ErrForbidden, event)
		}
	}

	next := current.Clone()
	if t.apply != nil {
		if err := t.apply(next, p, check); err != nil {
			return nil, err
		}
	}
	next.Status = t.to

	return &Result{
		Appointment: next,
		From:        current.Status,
		Event:       event,
		Notices:     t.emit(next, p),
	}, nil
}
