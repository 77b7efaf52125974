package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/calendar_booking/internal/lifecycle"
	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// inboxLimit сколько последних уведомлений отдаётся пользователю
const inboxLimit = 20

// Inbox последние уведомления пользователя и число непрочитанных
type Inbox struct {
	Notifications []*model.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
}

type NotificationService struct {
	notifications NotificationRepository
	logger        *zap.Logger
}

func NewNotificationService(notifications NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		logger:        logger,
	}
}

// Inbox возвращает последние уведомления пользователя
func (s *NotificationService) Inbox(ctx context.Context, actor lifecycle.Actor) (*Inbox, error) {
	notifications, err := s.notifications.ListByUser(ctx, actor.ID, inboxLimit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	unread, err := s.notifications.CountUnread(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}

	if notifications == nil {
		notifications = []*model.Notification{}
	}

	return &Inbox{Notifications: notifications, UnreadCount: unread}, nil
}

// MarkAllRead отмечает все уведомления пользователя прочитанными
func (s *NotificationService) MarkAllRead(ctx context.Context, actor lifecycle.Actor) error {
	if err := s.notifications.MarkAllRead(ctx, actor.ID); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}

	s.logger.Debug("Notifications marked read", zap.String("user_id", actor.ID.String()))
	return nil
}

// MarkRead отмечает одно уведомление. Чужое уведомление считается ненайденным
func (s *NotificationService) MarkRead(ctx context.Context, actor lifecycle.Actor, id uuid.UUID) (*model.Notification, error) {
	n, err := s.notifications.MarkRead(ctx, id, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	if n == nil {
		return nil, notFound("notification")
	}
	return n, nil
}
