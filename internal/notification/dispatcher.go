package notification

import (
	"context"

	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recipient адресат уведомления: конкретный пользователь или все администраторы
type Recipient struct {
	UserID    uuid.UUID
	AllAdmins bool
}

func ToUser(id uuid.UUID) Recipient {
	return Recipient{UserID: id}
}

func ToAdmins() Recipient {
	return Recipient{AllAdmins: true}
}

func (r Recipient) String() string {
	if r.AllAdmins {
		return "admins"
	}
	return r.UserID.String()
}

// Event описание события жизненного цикла записи
type Event struct {
	Type          model.NotificationType
	Title         string
	Message       string
	AppointmentID uuid.UUID
}

// Notice событие вместе с адресатом
type Notice struct {
	To    Recipient
	Event Event
}

// Dispatcher принимает события и рассылает их адресатам.
// Как хранятся и доставляются уведомления, ядру неизвестно.
type Dispatcher interface {
	Notify(ctx context.Context, to Recipient, event Event) error
}

// DispatchAll отправляет все уведомления. Ошибки доставки только логируются:
// переход уже зафиксирован и не должен откатываться из-за уведомлений.
func DispatchAll(ctx context.Context, d Dispatcher, notices []Notice, logger *zap.Logger) {
	if d == nil {
		return
	}
	for _, n := range notices {
		if err := d.Notify(ctx, n.To, n.Event); err != nil {
			logger.Error("Failed to dispatch notification",
				zap.String("recipient", n.To.String()),
				zap.String("type", string(n.Event.Type)),
				zap.String("appointment_id", n.Event.AppointmentID.String()),
				zap.Error(err))
		}
	}
}
