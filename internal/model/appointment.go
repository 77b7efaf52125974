package model

import (
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/schedule"
	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending               AppointmentStatus = "pending"                // Ожидает одобрения администратора
	AppointmentStatusApproved              AppointmentStatus = "approved"               // Одобрено
	AppointmentStatusRejected              AppointmentStatus = "rejected"               // Отклонено администратором
	AppointmentStatusCancelled             AppointmentStatus = "cancelled"              // Отменено
	AppointmentStatusCompleted             AppointmentStatus = "completed"              // Завершено
	AppointmentStatusCancellationRequested AppointmentStatus = "cancellation_requested" // Пользователь запросил отмену
	AppointmentStatusRescheduleRequested   AppointmentStatus = "reschedule_requested"   // Пользователь запросил перенос
)

// AppointmentStatuses все статусы в порядке объявления
var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusApproved,
	AppointmentStatusRejected,
	AppointmentStatusCancelled,
	AppointmentStatusCompleted,
	AppointmentStatusCancellationRequested,
	AppointmentStatusRescheduleRequested,
}

// ActiveStatuses статусы, которые занимают время в календаре
var ActiveStatuses = []AppointmentStatus{AppointmentStatusPending, AppointmentStatusApproved}

// IsActive возвращает true для pending и approved
func (s AppointmentStatus) IsActive() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusApproved
}

// IsTerminal возвращает true для статусов без исходящих переходов
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case AppointmentStatusRejected, AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

type AppointmentKind string

const (
	AppointmentKindOnline  AppointmentKind = "online"
	AppointmentKindOffline AppointmentKind = "offline"
)

func (k AppointmentKind) Valid() bool {
	return k == AppointmentKindOnline || k == AppointmentKindOffline
}

type Appointment struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"userId"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Kind        AppointmentKind   `json:"type"`
	StartTime   time.Time         `json:"startTime"`
	EndTime     time.Time         `json:"endTime"`
	Duration    int               `json:"duration"` // в минутах
	Status      AppointmentStatus `json:"status"`
	MeetingLink string            `json:"meetingLink,omitempty"`

	// Контактные данные
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`

	CancellationReason      string     `json:"cancellationReason,omitempty"`
	RejectionReason         string     `json:"rejectionReason,omitempty"`
	RescheduleRequestedTime *time.Time `json:"rescheduleRequestedTime,omitempty"`
	RescheduleReason        string     `json:"rescheduleReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Interval возвращает занимаемый записью промежуток
func (a *Appointment) Interval() schedule.Interval {
	return schedule.Interval{Start: a.StartTime, End: a.EndTime}
}

// Clone возвращает независимую копию записи
func (a *Appointment) Clone() *Appointment {
	c := *a
	if a.RescheduleRequestedTime != nil {
		t := *a.RescheduleRequestedTime
		c.RescheduleRequestedTime = &t
	}
	return &c
}

// Occupied преобразует записи в занятые интервалы для проверки пересечений
func Occupied(appointments []*Appointment) []schedule.Occupied {
	out := make([]schedule.Occupied, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, schedule.Occupied{ID: a.ID, Interval: a.Interval()})
	}
	return out
}

// Intervals возвращает только промежутки записей
func Intervals(appointments []*Appointment) []schedule.Interval {
	out := make([]schedule.Interval, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, a.Interval())
	}
	return out
}
