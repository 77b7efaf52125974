package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/google/uuid"
)

// AppointmentRepository хранилище записей
type AppointmentRepository interface {
	Create(ctx context.Context, a *model.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context) ([]*model.Appointment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error)
	ListActiveBetween(ctx context.Context, from, to time.Time) ([]*model.Appointment, error)
	Update(ctx context.Context, a *model.Appointment, from model.AppointmentStatus) (bool, error)
}

// BlockedSlotRepository хранилище административных блокировок
type BlockedSlotRepository interface {
	Create(ctx context.Context, b *model.BlockedSlot) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, from, to time.Time) ([]*model.BlockedSlot, error)
	ListOverlapping(ctx context.Context, from, to time.Time) ([]*model.BlockedSlot, error)
}

// NotificationRepository хранилище входящих уведомлений
type NotificationRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*model.Notification, error)
}

// UserRepository хранилище пользователей
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// Create вставляет пользователя, false если строка с таким id уже есть
	Create(ctx context.Context, u *model.User) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) error
	List(ctx context.Context) ([]*model.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	SetTelegramChatID(ctx context.Context, userID uuid.UUID, chatID int64) error
}

// Calendar выполняет fn атомарно относительно других записей в календарь.
// Проверка пересечений и запись внутри fn не могут чередоваться с чужими.
type Calendar interface {
	WithCalendarLock(ctx context.Context, fn func(ctx context.Context) error) error
}
