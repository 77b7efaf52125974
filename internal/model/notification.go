package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationBookingSubmitted    NotificationType = "booking_submitted"
	NotificationBookingApproved     NotificationType = "booking_approved"
	NotificationBookingRejected     NotificationType = "booking_rejected"
	NotificationBookingCancelled    NotificationType = "booking_cancelled"
	NotificationReminder            NotificationType = "reminder"
	NotificationCancellationRequest NotificationType = "cancellation_request"
	NotificationRescheduleRequest   NotificationType = "reschedule_request"
)

type Notification struct {
	ID                   uuid.UUID        `json:"id"`
	UserID               uuid.UUID        `json:"userId"`
	Type                 NotificationType `json:"type"`
	Title                string           `json:"title"`
	Message              string           `json:"message"`
	Read                 bool             `json:"read"`
	RelatedAppointmentID *uuid.UUID       `json:"relatedAppointment,omitempty"`
	CreatedAt            time.Time        `json:"createdAt"`
}
