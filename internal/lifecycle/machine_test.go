package lifecycle

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/Freeeeeet/calendar_booking/internal/notification"
	"github.com/Freeeeeet/calendar_booking/internal/schedule"
	"github.com/google/uuid"
)

var (
	ownerID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	adminID = uuid.MustParse("22222222-2222-2222-2222-222222222222")

	owner = Actor{ID: ownerID, Role: model.RoleUser}
	admin = Actor{ID: adminID, Role: model.RoleSubAdmin}
)

func day(hour int) time.Time {
	return time.Date(2026, 10, 19, hour, 0, 0, 0, time.UTC)
}

func newAppointment(status model.AppointmentStatus) *model.Appointment {
	return &model.Appointment{
		ID:        uuid.New(),
		UserID:    ownerID,
		Title:     "Consultation",
		Kind:      model.AppointmentKindOnline,
		StartTime: day(10),
		EndTime:   day(11),
		Duration:  60,
		Status:    status,
		Name:      "Alex",
		Email:     "alex@example.com",
	}
}

// expected повторяет таблицу переходов
var expected = map[model.AppointmentStatus]map[Event]model.AppointmentStatus{
	model.AppointmentStatusPending: {
		EventApprove:           model.AppointmentStatusApproved,
		EventReject:            model.AppointmentStatusRejected,
		EventRequestCancel:     model.AppointmentStatusCancellationRequested,
		EventRequestReschedule: model.AppointmentStatusRescheduleRequested,
	},
	model.AppointmentStatusApproved: {
		EventRequestCancel:     model.AppointmentStatusCancellationRequested,
		EventRequestReschedule: model.AppointmentStatusRescheduleRequested,
	},
	model.AppointmentStatusCancellationRequested: {
		EventConfirmCancel: model.AppointmentStatusCancelled,
		EventRejectCancel:  model.AppointmentStatusApproved,
	},
	model.AppointmentStatusRescheduleRequested: {
		EventConfirmReschedule: model.AppointmentStatusApproved,
		EventRejectReschedule:  model.AppointmentStatusApproved,
	},
}

func actorFor(event Event) Actor {
	switch event {
	case EventRequestCancel, EventRequestReschedule:
		return owner
	default:
		return admin
	}
}

func TestTransitionCompleteness(t *testing.T) {
	requested := day(14)

	for _, status := range model.AppointmentStatuses {
		for _, event := range Events {
			t.Run(fmt.Sprintf("%s/%s", status, event), func(t *testing.T) {
				a := newAppointment(status)
				if status == model.AppointmentStatusRescheduleRequested {
					a.RescheduleRequestedTime = &requested
				}

				res, err := Apply(a, event, actorFor(event), Payload{RequestedStart: &requested}, nil)

				want, legal := expected[status][event]
				if !legal {
					var te *TransitionError
					if !errors.As(err, &te) || !errors.Is(err, ErrInvalidTransition) {
						t.Fatalf("expected InvalidTransition, got %v", err)
					}
					if te.From != status || te.Event != event {
						t.Fatalf("error must name state and event, got %+v", te)
					}
					return
				}

				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.Appointment.Status != want {
					t.Fatalf("expected %s, got %s", want, res.Appointment.Status)
				}
				if a.Status != status {
					t.Fatalf("input appointment must not be mutated")
				}
				if got, ok := Target(status, event); !ok || got != want {
					t.Fatalf("Target(%s, %s) = %s, %v", status, event, got, ok)
				}
			})
		}
	}
}

func TestNoTransitionReentersPending(t *testing.T) {
	for _, status := range model.AppointmentStatuses {
		for _, ev := range Allowed(status) {
			if to, _ := Target(status, ev); to == model.AppointmentStatusPending {
				t.Fatalf("%s -> %s re-enters pending", status, ev)
			}
		}
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	for _, status := range model.AppointmentStatuses {
		if status.IsTerminal() && len(Allowed(status)) != 0 {
			t.Fatalf("terminal status %s allows %v", status, Allowed(status))
		}
	}
}

func TestRejectTwiceFails(t *testing.T) {
	a := newAppointment(model.AppointmentStatusPending)

	res, err := Apply(a, EventReject, admin, Payload{Reason: "double booked"}, nil)
	if err != nil {
		t.Fatalf("first reject: %v", err)
	}
	if res.Appointment.RejectionReason != "double booked" {
		t.Fatalf("reason not recorded: %q", res.Appointment.RejectionReason)
	}

	if _, err := Apply(res.Appointment, EventReject, admin, Payload{}, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second reject must fail with InvalidTransition, got %v", err)
	}
}

func TestNonAdminApproveIsForbidden(t *testing.T) {
	a := newAppointment(model.AppointmentStatusPending)

	_, err := Apply(a, EventApprove, owner, Payload{}, nil)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if a.Status != model.AppointmentStatusPending {
		t.Fatalf("state changed on forbidden transition: %s", a.Status)
	}
}

func TestOwnerEventsRejectOtherUsers(t *testing.T) {
	a := newAppointment(model.AppointmentStatusApproved)
	stranger := Actor{ID: uuid.New(), Role: model.RoleUser}

	if _, err := Apply(a, EventRequestCancel, stranger, Payload{}, nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
	if _, err := Apply(a, EventRequestCancel, admin, Payload{}, nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for admin acting as owner, got %v", err)
	}
}

func TestApproveSetsMeetingLink(t *testing.T) {
	a := newAppointment(model.AppointmentStatusPending)

	res, err := Apply(a, EventApprove, admin, Payload{MeetingLink: "https://meet.example.com/abc"}, nil)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.Appointment.MeetingLink != "https://meet.example.com/abc" {
		t.Fatalf("meeting link not set")
	}
	if len(res.Notices) != 1 || res.Notices[0].To != notification.ToUser(ownerID) {
		t.Fatalf("approve must notify only the owner, got %+v", res.Notices)
	}
}

func TestRequestRescheduleRequiresTime(t *testing.T) {
	a := newAppointment(model.AppointmentStatusApproved)

	if _, err := Apply(a, EventRequestReschedule, owner, Payload{}, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected InvalidTransition without requested time, got %v", err)
	}
}

func TestOwnerRequestNotifiesOwnerAndAdmins(t *testing.T) {
	a := newAppointment(model.AppointmentStatusApproved)
	requested := day(15)

	res, err := Apply(a, EventRequestReschedule, owner, Payload{RequestedStart: &requested, Reason: "conflict"}, nil)
	if err != nil {
		t.Fatalf("request reschedule: %v", err)
	}
	if !res.Appointment.RescheduleRequestedTime.Equal(requested) || res.Appointment.RescheduleReason != "conflict" {
		t.Fatalf("request fields not stored: %+v", res.Appointment)
	}

	if len(res.Notices) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(res.Notices))
	}
	if res.Notices[0].To != notification.ToUser(ownerID) || !res.Notices[1].To.AllAdmins {
		t.Fatalf("unexpected recipients: %+v", res.Notices)
	}
	for _, n := range res.Notices {
		if n.Event.Type != model.NotificationRescheduleRequest || n.Event.AppointmentID != a.ID {
			t.Fatalf("unexpected event: %+v", n.Event)
		}
	}
}

func TestConfirmRescheduleScenarioC(t *testing.T) {
	a := newAppointment(model.AppointmentStatusRescheduleRequested)
	requested := day(14)
	a.RescheduleRequestedTime = &requested
	a.RescheduleReason = "moving"

	var checked schedule.Interval
	check := func(candidate schedule.Interval, self uuid.UUID) error {
		checked = candidate
		if self != a.ID {
			t.Fatalf("checker must receive the appointment id")
		}
		return nil
	}

	res, err := Apply(a, EventConfirmReschedule, admin, Payload{}, check)
	if err != nil {
		t.Fatalf("confirm reschedule: %v", err)
	}

	got := res.Appointment
	if !got.StartTime.Equal(day(14)) || !got.EndTime.Equal(day(15)) {
		t.Fatalf("expected [14:00, 15:00), got %s", got.Interval())
	}
	if !checked.Start.Equal(day(14)) || !checked.End.Equal(day(15)) {
		t.Fatalf("conflict guard ran against %s", checked)
	}
	if got.Status != model.AppointmentStatusApproved {
		t.Fatalf("expected approved, got %s", got.Status)
	}
	if got.RescheduleRequestedTime != nil || got.RescheduleReason != "" {
		t.Fatalf("request fields must be cleared")
	}
	if len(res.Notices) != 1 || res.Notices[0].Event.Type != model.NotificationBookingApproved {
		t.Fatalf("unexpected notices: %+v", res.Notices)
	}
}

func TestConfirmRescheduleConflictKeepsState(t *testing.T) {
	a := newAppointment(model.AppointmentStatusRescheduleRequested)
	requested := day(14)
	a.RescheduleRequestedTime = &requested

	conflict := func(candidate schedule.Interval, _ uuid.UUID) error {
		return fmt.Errorf("%w: taken", schedule.ErrSlotConflict)
	}

	_, err := Apply(a, EventConfirmReschedule, admin, Payload{}, conflict)
	if !errors.Is(err, schedule.ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}
	if a.Status != model.AppointmentStatusRescheduleRequested || a.RescheduleRequestedTime == nil {
		t.Fatalf("appointment must remain reschedule_requested: %+v", a)
	}
	if !a.StartTime.Equal(day(10)) {
		t.Fatalf("interval changed on failed confirmation")
	}
}

func TestConfirmRescheduleWithoutRequestedTime(t *testing.T) {
	a := newAppointment(model.AppointmentStatusRescheduleRequested)

	if _, err := Apply(a, EventConfirmReschedule, admin, Payload{}, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected InvalidTransition, got %v", err)
	}
}

func TestRejectRescheduleKeepsInterval(t *testing.T) {
	a := newAppointment(model.AppointmentStatusRescheduleRequested)
	requested := day(16)
	a.RescheduleRequestedTime = &requested
	a.RescheduleReason = "moving"

	res, err := Apply(a, EventRejectReschedule, admin, Payload{}, nil)
	if err != nil {
		t.Fatalf("reject reschedule: %v", err)
	}
	got := res.Appointment
	if !got.StartTime.Equal(day(10)) || !got.EndTime.Equal(day(11)) {
		t.Fatalf("interval must stay unchanged, got %s", got.Interval())
	}
	if got.RescheduleRequestedTime != nil || got.RescheduleReason != "" {
		t.Fatalf("request fields must be cleared")
	}
	if res.Notices[0].Event.Type != model.NotificationReminder {
		t.Fatalf("expected reminder notice, got %s", res.Notices[0].Event.Type)
	}
}

func TestUnknownEvent(t *testing.T) {
	a := newAppointment(model.AppointmentStatusPending)

	if _, err := Apply(a, Event("archive"), admin, Payload{}, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected InvalidTransition, got %v", err)
	}
}

func TestSubmissionNotices(t *testing.T) {
	a := newAppointment(model.AppointmentStatusPending)

	notices := SubmissionNotices(a)
	if len(notices) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(notices))
	}
	if notices[0].To != notification.ToUser(ownerID) || !notices[1].To.AllAdmins {
		t.Fatalf("unexpected recipients: %+v", notices)
	}
}
