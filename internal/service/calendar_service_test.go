package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/lifecycle"
	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/Freeeeeet/calendar_booking/internal/notification"
	"github.com/Freeeeeet/calendar_booking/internal/service"
	"go.uber.org/zap"
)

func TestBlockedSlotLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.seed(e.owner, model.AppointmentStatusPending, at(10, 0), 30)

	in := service.CreateBlockedSlotInput{StartTime: at(12, 0), EndTime: at(13, 0), Reason: "maintenance"}

	if _, err := e.blocks.Create(ctx, actor(e.owner), in); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	overlapping := service.CreateBlockedSlotInput{StartTime: at(9, 30), EndTime: at(10, 15)}
	if _, err := e.blocks.Create(ctx, actor(e.admin), overlapping); !errors.Is(err, service.ErrSlotConflict) {
		t.Fatalf("expected slot conflict, got %v", err)
	}

	inverted := service.CreateBlockedSlotInput{StartTime: at(13, 0), EndTime: at(12, 0)}
	if _, err := e.blocks.Create(ctx, actor(e.admin), inverted); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	longReason := in
	longReason.Reason = strings.Repeat("r", 501)
	if _, err := e.blocks.Create(ctx, actor(e.admin), longReason); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	block, err := e.blocks.Create(ctx, actor(e.admin), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if block.CreatedBy == nil || *block.CreatedBy != e.admin.ID || block.Reason != "maintenance" {
		t.Fatalf("unexpected block: %+v", block)
	}

	list, err := e.blocks.List(ctx, time.Time{}, time.Time{})
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v (%d)", err, len(list))
	}

	outside, err := e.blocks.List(ctx, at(14, 0), at(17, 0))
	if err != nil || len(outside) != 0 {
		t.Fatalf("filtered list: %v (%d)", err, len(outside))
	}

	if _, err := e.blocks.List(ctx, at(14, 0), at(13, 0)); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error for inverted range, got %v", err)
	}

	if err := e.blocks.Delete(ctx, actor(e.owner), block.ID); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := e.blocks.Delete(ctx, actor(e.admin), block.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := e.blocks.Delete(ctx, actor(e.admin), block.ID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	// После удаления блокировки время снова доступно
	if _, err := e.appointments.Create(ctx, actor(e.owner), input(at(12, 0), 60)); err != nil {
		t.Fatalf("create after unblock: %v", err)
	}
}

func TestAvailabilityScenarioA(t *testing.T) {
	e := newEnv(t)
	e.seed(e.stranger, model.AppointmentStatusApproved, at(10, 0), 30)
	e.seed(e.stranger, model.AppointmentStatusCancelled, at(11, 0), 30)

	availability, err := e.availability.Slots(context.Background(), monday, 30)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}

	if availability.Date != "2026-10-19" {
		t.Fatalf("date: got=%s", availability.Date)
	}
	if len(availability.Slots) != 16 {
		t.Fatalf("expected 16 slots, got %d", len(availability.Slots))
	}

	for _, slot := range availability.Slots {
		booked := slot.Start.Equal(at(10, 0))
		if slot.IsBooked != booked || slot.Available == booked {
			t.Fatalf("slot %s: booked=%v available=%v", slot.Start.Format("15:04"), slot.IsBooked, slot.Available)
		}
	}
}

func TestAvailabilityMarksBlocks(t *testing.T) {
	e := newEnv(t)
	if _, err := e.blocks.Create(context.Background(), actor(e.admin), service.CreateBlockedSlotInput{
		StartTime: at(9, 15),
		EndTime:   at(9, 45),
	}); err != nil {
		t.Fatalf("create block: %v", err)
	}

	availability, err := e.availability.Slots(context.Background(), monday, 30)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}

	if !availability.Slots[0].IsBlocked || !availability.Slots[1].IsBlocked || availability.Slots[2].IsBlocked {
		t.Fatalf("half-open overlap must block 09:00 and 09:30 only")
	}
}

func TestAvailabilityClosedDayAndErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	saturday := monday.AddDate(0, 0, 5)
	availability, err := e.availability.Slots(ctx, saturday, 30)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	if availability.Slots == nil || len(availability.Slots) != 0 || availability.Message == "" {
		t.Fatalf("closed day must return empty slots with a message: %+v", availability)
	}

	if _, err := e.availability.Slots(ctx, monday, 45); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := e.availability.ParseDate(""); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error for empty date, got %v", err)
	}
	if _, err := e.availability.ParseDate("19.10.2026"); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error for bad format, got %v", err)
	}

	date, err := e.availability.ParseDate("2026-10-19")
	if err != nil || !date.Equal(monday) {
		t.Fatalf("ParseDate: %v %v", date, err)
	}

	image, err := e.availability.DayImage(ctx, monday, 60)
	if err != nil || len(image) == 0 {
		t.Fatalf("DayImage: %v (%d bytes)", err, len(image))
	}
}

func TestNotificationInbox(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	logger := zap.NewNop()

	dispatcher := notification.NewService(e.store.Notifications(), e.store.Users(), nil, logger)
	appointments := service.NewAppointmentService(e.store.Appointments(), e.store.Blocks(), e.store, dispatcher, logger)
	appointments.SetClock(clock)
	inbox := service.NewNotificationService(e.store.Notifications(), logger)

	created, err := appointments.Create(ctx, actor(e.owner), input(at(10, 0), 30))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := appointments.Transition(ctx, actor(e.admin), created.ID, service.TransitionInput{Event: lifecycle.EventApprove}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	box, err := inbox.Inbox(ctx, actor(e.owner))
	if err != nil {
		t.Fatalf("inbox: %v", err)
	}
	if len(box.Notifications) != 2 || box.UnreadCount != 2 {
		t.Fatalf("owner inbox: %d notifications, %d unread", len(box.Notifications), box.UnreadCount)
	}
	if box.Notifications[0].Type != model.NotificationBookingApproved {
		t.Fatalf("inbox must be newest first, got %s", box.Notifications[0].Type)
	}

	adminBox, err := inbox.Inbox(ctx, actor(e.admin))
	if err != nil {
		t.Fatalf("admin inbox: %v", err)
	}
	if len(adminBox.Notifications) != 1 || adminBox.Notifications[0].Type != model.NotificationBookingSubmitted {
		t.Fatalf("admin must receive the submission notice: %+v", adminBox.Notifications)
	}

	first := box.Notifications[0]
	if _, err := inbox.MarkRead(ctx, actor(e.stranger), first.ID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("foreign notification must be not found, got %v", err)
	}

	read, err := inbox.MarkRead(ctx, actor(e.owner), first.ID)
	if err != nil || !read.Read {
		t.Fatalf("mark read: %v", err)
	}

	box, _ = inbox.Inbox(ctx, actor(e.owner))
	if box.UnreadCount != 1 {
		t.Fatalf("unread after mark one: %d", box.UnreadCount)
	}

	if err := inbox.MarkAllRead(ctx, actor(e.owner)); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	box, _ = inbox.Inbox(ctx, actor(e.owner))
	if box.UnreadCount != 0 {
		t.Fatalf("unread after mark all: %d", box.UnreadCount)
	}

	empty, err := inbox.Inbox(ctx, actor(e.stranger))
	if err != nil || empty.Notifications == nil || len(empty.Notifications) != 0 {
		t.Fatalf("empty inbox: %+v %v", empty, err)
	}
}
