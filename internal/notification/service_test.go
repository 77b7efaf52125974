package notification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memoryStore struct {
	saved []*model.Notification
	err   error
}

func (m *memoryStore) CreateMany(_ context.Context, notifications []*model.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, notifications...)
	return nil
}

type directory struct {
	users []*model.User
}

func (d *directory) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range d.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (d *directory) ListAdmins(_ context.Context) ([]*model.User, error) {
	var out []*model.User
	for _, u := range d.users {
		if u.Role.IsAdmin() {
			out = append(out, u)
		}
	}
	return out, nil
}

type sent struct {
	chatID int64
	event  Event
}

type recordingSender struct {
	sent []sent
	err  error
}

func (r *recordingSender) Send(_ context.Context, chatID int64, event Event) error {
	r.sent = append(r.sent, sent{chatID: chatID, event: event})
	return r.err
}

func chat(id int64) *int64 { return &id }

func newDirectory() (*directory, *model.User, *model.User, *model.User) {
	owner := &model.User{ID: uuid.New(), Role: model.RoleUser, TelegramChatID: chat(100)}
	sub := &model.User{ID: uuid.New(), Role: model.RoleSubAdmin}
	super := &model.User{ID: uuid.New(), Role: model.RoleSuperAdmin, TelegramChatID: chat(300)}
	return &directory{users: []*model.User{owner, sub, super}}, owner, sub, super
}

func TestNotifyUserStoresAndPushes(t *testing.T) {
	dir, owner, _, _ := newDirectory()
	store := &memoryStore{}
	sender := &recordingSender{}
	svc := NewService(store, dir, sender, zap.NewNop())

	appointmentID := uuid.New()
	event := Event{Type: model.NotificationBookingApproved, Title: "Appointment Approved", Message: "ok", AppointmentID: appointmentID}

	if err := svc.Notify(context.Background(), ToUser(owner.ID), event); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if len(store.saved) != 1 {
		t.Fatalf("expected one stored notification, got %d", len(store.saved))
	}
	n := store.saved[0]
	if n.UserID != owner.ID || n.Type != model.NotificationBookingApproved {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if n.RelatedAppointmentID == nil || *n.RelatedAppointmentID != appointmentID {
		t.Fatalf("related appointment not set: %+v", n.RelatedAppointmentID)
	}

	if len(sender.sent) != 1 || sender.sent[0].chatID != 100 {
		t.Fatalf("expected push to chat 100, got %+v", sender.sent)
	}
}

func TestNotifyAdminsFansOut(t *testing.T) {
	dir, _, sub, super := newDirectory()
	store := &memoryStore{}
	sender := &recordingSender{}
	svc := NewService(store, dir, sender, zap.NewNop())

	event := Event{Type: model.NotificationCancellationRequest, Title: "Cancellation Requested", Message: "m"}
	if err := svc.Notify(context.Background(), ToAdmins(), event); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if len(store.saved) != 2 {
		t.Fatalf("expected one notification per admin, got %d", len(store.saved))
	}
	got := map[uuid.UUID]bool{}
	for _, n := range store.saved {
		got[n.UserID] = true
		if n.RelatedAppointmentID != nil {
			t.Fatalf("related appointment must be nil for empty id")
		}
	}
	if !got[sub.ID] || !got[super.ID] {
		t.Fatalf("admins not notified: %v", got)
	}

	// Только super-admin привязал чат
	if len(sender.sent) != 1 || sender.sent[0].chatID != 300 {
		t.Fatalf("unexpected pushes: %+v", sender.sent)
	}
}

func TestNotifyPushFailureIsNotFatal(t *testing.T) {
	dir, owner, _, _ := newDirectory()
	store := &memoryStore{}
	sender := &recordingSender{err: errors.New("telegram down")}
	svc := NewService(store, dir, sender, zap.NewNop())

	if err := svc.Notify(context.Background(), ToUser(owner.ID), Event{Type: model.NotificationReminder}); err != nil {
		t.Fatalf("push failure must not fail Notify: %v", err)
	}
	if len(store.saved) != 1 {
		t.Fatalf("notification must still be stored")
	}
}

func TestNotifyStoreFailure(t *testing.T) {
	dir, owner, _, _ := newDirectory()
	store := &memoryStore{err: errors.New("db down")}
	sender := &recordingSender{}
	svc := NewService(store, dir, sender, zap.NewNop())

	if err := svc.Notify(context.Background(), ToUser(owner.ID), Event{Type: model.NotificationReminder}); err == nil {
		t.Fatal("expected store error")
	}
	if len(sender.sent) != 0 {
		t.Fatalf("nothing must be pushed when storing fails")
	}
}

func TestNotifyUnknownRecipient(t *testing.T) {
	dir, _, _, _ := newDirectory()
	svc := NewService(&memoryStore{}, dir, nil, zap.NewNop())

	if err := svc.Notify(context.Background(), ToUser(uuid.New()), Event{}); err == nil {
		t.Fatal("expected error for unknown recipient")
	}
}

type failingDispatcher struct {
	calls int
}

func (f *failingDispatcher) Notify(context.Context, Recipient, Event) error {
	f.calls++
	return errors.New("boom")
}

func TestDispatchAllContinuesAfterFailure(t *testing.T) {
	d := &failingDispatcher{}
	notices := []Notice{
		{To: ToUser(uuid.New()), Event: Event{Type: model.NotificationBookingSubmitted}},
		{To: ToAdmins(), Event: Event{Type: model.NotificationBookingSubmitted}},
	}

	DispatchAll(context.Background(), d, notices, zap.NewNop())

	if d.calls != 2 {
		t.Fatalf("expected every notice to be attempted, got %d", d.calls)
	}

	// nil диспетчер допустим
	DispatchAll(context.Background(), nil, notices, zap.NewNop())
}

func TestFormatTelegramEscapesHTML(t *testing.T) {
	text := FormatTelegram(Event{Title: "<Approved>", Message: "a & b"})
	if !strings.Contains(text, "<b>&lt;Approved&gt;</b>") || !strings.Contains(text, "a &amp; b") {
		t.Fatalf("unexpected text: %q", text)
	}
}
