package lifecycle

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/Freeeeeet/calendar_booking/internal/notification"
)

const timeLayout = "Mon, 02 Jan 2006 15:04 MST"

func toOwner(a *model.Appointment, t model.NotificationType, title, message string) notification.Notice {
	return notification.Notice{
		To: notification.ToUser(a.UserID),
		Event: notification.Event{
			Type:          t,
			Title:         title,
			Message:       message,
			AppointmentID: a.ID,
		},
	}
}

func toAdmins(a *model.Appointment, t model.NotificationType, title, message string) notification.Notice {
	return notification.Notice{
		To: notification.ToAdmins(),
		Event: notification.Event{
			Type:          t,
			Title:         title,
			Message:       message,
			AppointmentID: a.ID,
		},
	}
}

// SubmissionNotices уведомления о новой записи: владельцу и администраторам
func SubmissionNotices(a *model.Appointment) []notification.Notice {
	return []notification.Notice{
		toOwner(a, model.NotificationBookingSubmitted, "Appointment Submitted",
			fmt.Sprintf("Your appointment %q has been submitted and is pending approval.", a.Title)),
		toAdmins(a, model.NotificationBookingSubmitted, "New Appointment Request",
			fmt.Sprintf("New appointment request from %s: %q at %s", a.Name, a.Title, a.StartTime.Format(timeLayout))),
	}
}

func approvedNotices(a *model.Appointment, p Payload) []notification.Notice {
	msg := fmt.Sprintf("Your appointment %q has been approved!", a.Title)
	if p.MeetingLink != "" {
		msg += " Meeting link has been added."
	}
	return []notification.Notice{toOwner(a, model.NotificationBookingApproved, "Appointment Approved", msg)}
}

func rejectedNotices(a *model.Appointment, p Payload) []notification.Notice {
	msg := fmt.Sprintf("Your appointment %q has been rejected.", a.Title)
	if p.Reason != "" {
		msg += " Reason: " + p.Reason
	}
	return []notification.Notice{toOwner(a, model.NotificationBookingRejected, "Appointment Rejected", msg)}
}

func cancellationRequestedNotices(a *model.Appointment, p Payload) []notification.Notice {
	return []notification.Notice{
		toOwner(a, model.NotificationCancellationRequest, "Cancellation Request Submitted",
			fmt.Sprintf("Your request to cancel %q has been submitted.", a.Title)),
		toAdmins(a, model.NotificationCancellationRequest, "Cancellation Requested",
			fmt.Sprintf("Cancellation requested for %q. Reason: %s", a.Title, reasonOrDash(p.Reason))),
	}
}

func rescheduleRequestedNotices(a *model.Appointment, p Payload) []notification.Notice {
	requested := formatRequested(a.RescheduleRequestedTime)
	return []notification.Notice{
		toOwner(a, model.NotificationRescheduleRequest, "Reschedule Request Submitted",
			fmt.Sprintf("Your request to reschedule %q to %s has been submitted.", a.Title, requested)),
		toAdmins(a, model.NotificationRescheduleRequest, "Reschedule Requested",
			fmt.Sprintf("Reschedule requested for %q to %s. Reason: %s", a.Title, requested, reasonOrDash(p.Reason))),
	}
}

func cancelConfirmedNotices(a *model.Appointment, _ Payload) []notification.Notice {
	return []notification.Notice{toOwner(a, model.NotificationBookingCancelled, "Cancellation Approved",
		fmt.Sprintf("Your request to cancel %q has been approved.", a.Title))}
}

func cancelRejectedNotices(a *model.Appointment, _ Payload) []notification.Notice {
	return []notification.Notice{toOwner(a, model.NotificationReminder, "Cancellation Rejected",
		fmt.Sprintf("Your request to cancel %q has been rejected. The appointment is still scheduled.", a.Title))}
}

func rescheduleConfirmedNotices(a *model.Appointment, _ Payload) []notification.Notice {
	return []notification.Notice{toOwner(a, model.NotificationBookingApproved, "Reschedule Approved",
		fmt.Sprintf("Your request to reschedule %q has been approved. New time: %s", a.Title, a.StartTime.Format(timeLayout)))}
}

func rescheduleRejectedNotices(a *model.Appointment, _ Payload) []notification.Notice {
	return []notification.Notice{toOwner(a, model.NotificationReminder, "Reschedule Rejected",
		fmt.Sprintf("Your request to reschedule %q has been rejected. The appointment remains at the original time.", a.Title))}
}

func reasonOrDash(reason string) string {
	if reason == "" {
		return "-"
	}
	return reason
}

func formatRequested(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(timeLayout)
}
