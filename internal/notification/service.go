package notification

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store сохраняет уведомления во входящие пользователей
type Store interface {
	CreateMany(ctx context.Context, notifications []*model.Notification) error
}

// Directory разрешает адресатов в пользователей
type Directory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListAdmins(ctx context.Context) ([]*model.User, error)
}

// Sender канал мгновенной доставки, например Telegram
type Sender interface {
	Send(ctx context.Context, chatID int64, event Event) error
}

// Service сохраняет уведомления во входящие и дублирует их в привязанный чат
type Service struct {
	store  Store
	users  Directory
	sender Sender
	logger *zap.Logger
}

// NewService создаёт диспетчер. sender может быть nil
func NewService(store Store, users Directory, sender Sender, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		users:  users,
		sender: sender,
		logger: logger,
	}
}

// Notify реализует Dispatcher
func (s *Service) Notify(ctx context.Context, to Recipient, event Event) error {
	recipients, err := s.resolve(ctx, to)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return nil
	}

	var related *uuid.UUID
	if event.AppointmentID != uuid.Nil {
		id := event.AppointmentID
		related = &id
	}

	notifications := make([]*model.Notification, 0, len(recipients))
	for _, user := range recipients {
		notifications = append(notifications, &model.Notification{
			UserID:               user.ID,
			Type:                 event.Type,
			Title:                event.Title,
			Message:              event.Message,
			RelatedAppointmentID: related,
		})
	}

	if err := s.store.CreateMany(ctx, notifications); err != nil {
		return fmt.Errorf("store notifications: %w", err)
	}

	if s.sender == nil {
		return nil
	}

	for _, user := range recipients {
		if user.TelegramChatID == nil {
			continue
		}
		if err := s.sender.Send(ctx, *user.TelegramChatID, event); err != nil {
			// Уведомление уже во входящих, ошибка канала не фатальна
			s.logger.Warn("Failed to push notification",
				zap.String("user_id", user.ID.String()),
				zap.Int64("chat_id", *user.TelegramChatID),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (s *Service) resolve(ctx context.Context, to Recipient) ([]*model.User, error) {
	if to.AllAdmins {
		admins, err := s.users.ListAdmins(ctx)
		if err != nil {
			return nil, fmt.Errorf("list admins: %w", err)
		}
		return admins, nil
	}

	user, err := s.users.GetByID(ctx, to.UserID)
	if err != nil {
		return nil, fmt.Errorf("get recipient: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("recipient %s not found", to.UserID)
	}
	return []*model.User{user}, nil
}
