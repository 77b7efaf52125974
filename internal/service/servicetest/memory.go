// Package servicetest содержит хранилища в памяти для тестов сервисов
package servicetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/Freeeeeet/calendar_booking/internal/notification"
	"github.com/Freeeeeet/calendar_booking/internal/schedule"
	"github.com/google/uuid"
)

// Store держит все таблицы в памяти и реализует интерфейсы репозиториев
type Store struct {
	mu            sync.Mutex
	calendar      sync.Mutex
	clock         time.Time
	users         map[uuid.UUID]*model.User
	appointments  map[uuid.UUID]*model.Appointment
	blocks        map[uuid.UUID]*model.BlockedSlot
	notifications []*model.Notification
}

func NewStore() *Store {
	return &Store{
		clock:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		users:        make(map[uuid.UUID]*model.User),
		appointments: make(map[uuid.UUID]*model.Appointment),
		blocks:       make(map[uuid.UUID]*model.BlockedSlot),
	}
}

// tick выдаёт строго возрастающие метки времени для created_at
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// AddUser регистрирует пользователя
func (s *Store) AddUser(name string, role model.Role) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := &model.User{ID: uuid.New(), Name: name, Email: name + "@example.com", Role: role, CreatedAt: s.tick()}
	s.users[u.ID] = u
	return u
}

// Seed кладёт запись напрямую, минуя проверки
func (s *Store) Seed(a *model.Appointment) *model.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = s.tick()
	a.UpdatedAt = a.CreatedAt
	s.appointments[a.ID] = a.Clone()
	return a
}

// WithCalendarLock сериализует писателей календаря мьютексом
func (s *Store) WithCalendarLock(ctx context.Context, fn func(ctx context.Context) error) error {
	s.calendar.Lock()
	defer s.calendar.Unlock()
	return fn(ctx)
}

// Appointments репозиторий записей
func (s *Store) Appointments() *Appointments { return &Appointments{s} }

// Blocks репозиторий блокировок
func (s *Store) Blocks() *Blocks { return &Blocks{s} }

// Notifications репозиторий уведомлений
func (s *Store) Notifications() *Notifications { return &Notifications{s} }

// Users репозиторий пользователей
func (s *Store) Users() *Users { return &Users{s} }

type Appointments struct{ s *Store }

func (r *Appointments) Create(_ context.Context, a *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// Аналог внешнего ключа appointments.user_id
	if _, ok := r.s.users[a.UserID]; !ok {
		return fmt.Errorf("insert appointment: user %s does not exist", a.UserID)
	}

	// Аналог exclusion constraint
	if a.Status.IsActive() {
		for _, other := range r.s.appointments {
			if other.Status.IsActive() && schedule.Overlaps(a.Interval(), other.Interval()) {
				return schedule.ErrSlotConflict
			}
		}
	}

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = r.s.tick()
	a.UpdatedAt = a.CreatedAt
	r.s.appointments[a.ID] = a.Clone()
	return nil
}

func (r *Appointments) GetByID(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.appointments[id]
	if !ok {
		return nil, nil
	}
	return a.Clone(), nil
}

func (r *Appointments) collect(keep func(*model.Appointment) bool) []*model.Appointment {
	var out []*model.Appointment
	for _, a := range r.s.appointments {
		if keep(a) {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *Appointments) List(_ context.Context) ([]*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.collect(func(*model.Appointment) bool { return true }), nil
}

func (r *Appointments) ListByUser(_ context.Context, userID uuid.UUID) ([]*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.collect(func(a *model.Appointment) bool { return a.UserID == userID }), nil
}

func (r *Appointments) ListActiveBetween(_ context.Context, from, to time.Time) ([]*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	window := schedule.Interval{Start: from, End: to}
	return r.collect(func(a *model.Appointment) bool {
		return a.Status.IsActive() && schedule.Overlaps(a.Interval(), window)
	}), nil
}

func (r *Appointments) Update(_ context.Context, a *model.Appointment, from model.AppointmentStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.appointments[a.ID]
	if !ok || current.Status != from {
		return false, nil
	}

	if a.Status.IsActive() {
		for _, other := range r.s.appointments {
			if other.ID != a.ID && other.Status.IsActive() && schedule.Overlaps(a.Interval(), other.Interval()) {
				return false, schedule.ErrSlotConflict
			}
		}
	}

	a.UpdatedAt = r.s.tick()
	r.s.appointments[a.ID] = a.Clone()
	return true, nil
}

type Blocks struct{ s *Store }

func (r *Blocks) Create(_ context.Context, b *model.BlockedSlot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = r.s.tick()
	stored := *b
	r.s.blocks[b.ID] = &stored
	return nil
}

func (r *Blocks) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.blocks[id]; !ok {
		return false, nil
	}
	delete(r.s.blocks, id)
	return true, nil
}

func (r *Blocks) collect(keep func(*model.BlockedSlot) bool) []*model.BlockedSlot {
	var out []*model.BlockedSlot
	for _, b := range r.s.blocks {
		if keep(b) {
			c := *b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (r *Blocks) List(_ context.Context, from, to time.Time) ([]*model.BlockedSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.collect(func(b *model.BlockedSlot) bool {
		if !from.IsZero() && b.StartTime.Before(from) {
			return false
		}
		if !to.IsZero() && b.EndTime.After(to) {
			return false
		}
		return true
	}), nil
}

func (r *Blocks) ListOverlapping(_ context.Context, from, to time.Time) ([]*model.BlockedSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	window := schedule.Interval{Start: from, End: to}
	return r.collect(func(b *model.BlockedSlot) bool {
		return schedule.Overlaps(b.Interval(), window)
	}), nil
}

type Notifications struct{ s *Store }

func (r *Notifications) CreateMany(_ context.Context, notifications []*model.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, n := range notifications {
		if n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
		n.CreatedAt = r.s.tick()
		c := *n
		r.s.notifications = append(r.s.notifications, &c)
	}
	return nil
}

func (r *Notifications) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*model.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*model.Notification
	for i := len(r.s.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if n := r.s.notifications[i]; n.UserID == userID {
			c := *n
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *Notifications) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *Notifications) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, n := range r.s.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *Notifications) MarkRead(_ context.Context, id, userID uuid.UUID) (*model.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, n := range r.s.notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			c := *n
			return &c, nil
		}
	}
	return nil, nil
}

// Of возвращает все сохранённые уведомления пользователя в порядке создания
func (r *Notifications) Of(userID uuid.UUID) []*model.Notification {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*model.Notification
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			c := *n
			out = append(out, &c)
		}
	}
	return out
}

type Users struct{ s *Store }

func (r *Users) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *Users) ListAdmins(_ context.Context) ([]*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*model.User
	for _, u := range r.s.users {
		if u.Role.IsAdmin() {
			c := *u
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Create добавляет пользователя, существующий id оставляет без изменений
func (r *Users) Create(_ context.Context, u *model.User) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[u.ID]; ok {
		return false, nil
	}
	u.CreatedAt = r.s.tick()
	c := *u
	r.s.users[u.ID] = &c
	return true, nil
}

func (r *Users) UpdateProfile(_ context.Context, id uuid.UUID, name, email string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u, ok := r.s.users[id]; ok {
		u.Name = name
		u.Email = email
	}
	return nil
}

func (r *Users) List(_ context.Context) ([]*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Users) UpdateRole(_ context.Context, id uuid.UUID, role model.Role) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return false, nil
	}
	u.Role = role
	return true, nil
}

// Delete удаляет пользователя вместе с его записями и уведомлениями, как ON DELETE в схеме
func (r *Users) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return false, nil
	}
	delete(r.s.users, id)

	for appointmentID, a := range r.s.appointments {
		if a.UserID == id {
			delete(r.s.appointments, appointmentID)
		}
	}
	for _, b := range r.s.blocks {
		if b.CreatedBy != nil && *b.CreatedBy == id {
			b.CreatedBy = nil
		}
	}
	kept := r.s.notifications[:0]
	for _, n := range r.s.notifications {
		if n.UserID != id {
			kept = append(kept, n)
		}
	}
	r.s.notifications = kept
	return true, nil
}

func (r *Users) SetTelegramChatID(_ context.Context, userID uuid.UUID, chatID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return nil
	}
	u.TelegramChatID = &chatID
	return nil
}

// Recorder запоминает отправленные уведомления
type Recorder struct {
	mu      sync.Mutex
	Notices []notification.Notice
}

func (r *Recorder) Notify(_ context.Context, to notification.Recipient, event notification.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notices = append(r.Notices, notification.Notice{To: to, Event: event})
	return nil
}

// Reset очищает записанные уведомления
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notices = nil
}

// Snapshot возвращает копию записанных уведомлений
func (r *Recorder) Snapshot() []notification.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification.Notice(nil), r.Notices...)
}
