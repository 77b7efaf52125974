package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/calendar_booking/internal/lifecycle"
	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/Freeeeeet/calendar_booking/internal/telegramlink"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxProfileNameLength  = 100
	maxProfileEmailLength = 255
)

// TelegramLinkCodes погашает коды, выданные ботом по /start
type TelegramLinkCodes interface {
	Redeem(ctx context.Context, code string) (int64, bool, error)
}

// Profile данные пользователя из claims токена
type Profile struct {
	ID    uuid.UUID
	Role  model.Role
	Name  string
	Email string
}

type UserService struct {
	userRepo  UserRepository
	linkCodes TelegramLinkCodes
	logger    *zap.Logger
}

func NewUserService(userRepo UserRepository, linkCodes TelegramLinkCodes, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo:  userRepo,
		linkCodes: linkCodes,
		logger:    logger,
	}
}

// EnsureUser получает пользователя или создаёт его при первом запросе.
// Роль из токена используется только для новой строки, дальше источник роли база.
func (s *UserService) EnsureUser(ctx context.Context, p Profile) (*model.User, error) {
	name := truncate(strings.TrimSpace(p.Name), maxProfileNameLength)
	email := truncate(strings.TrimSpace(p.Email), maxProfileEmailLength)

	user, err := s.userRepo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if user != nil {
		// Обновляем профиль, если в токене появились новые данные
		if (name != "" && name != user.Name) || (email != "" && email != user.Email) {
			if name != "" {
				user.Name = name
			}
			if email != "" {
				user.Email = email
			}
			if err := s.userRepo.UpdateProfile(ctx, user.ID, user.Name, user.Email); err != nil {
				return nil, fmt.Errorf("update profile: %w", err)
			}
			s.logger.Info("User updated", zap.String("user_id", user.ID.String()))
		}
		return user, nil
	}

	role := p.Role
	if !role.Valid() {
		role = model.RoleUser
	}
	user = &model.User{
		ID:    p.ID,
		Name:  name,
		Email: email,
		Role:  role,
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if !created {
		// Параллельный первый запрос того же пользователя успел вставить строку
		existing, err := s.userRepo.GetByID(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("get user: %w", err)
		}
		if existing == nil {
			return nil, notFound("user")
		}
		return existing, nil
	}

	s.logger.Info("New user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)

	return user, nil
}

// Me получает профиль текущего пользователя
func (s *UserService) Me(ctx context.Context, actor lifecycle.Actor) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, notFound("user")
	}
	return user, nil
}

// LinkTelegram привязывает Telegram чат по коду, который бот выдал в этом чате
func (s *UserService) LinkTelegram(ctx context.Context, actor lifecycle.Actor, code string) (*model.User, error) {
	code = telegramlink.Normalize(code)
	if code == "" {
		return nil, validationError("code is required")
	}

	// Проверяем существует ли пользователь до того, как гасить код
	user, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}

	chatID, ok, err := s.linkCodes.Redeem(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("redeem link code: %w", err)
	}
	if !ok {
		return nil, validationError("link code is invalid or expired")
	}

	if err := s.userRepo.SetTelegramChatID(ctx, user.ID, chatID); err != nil {
		return nil, fmt.Errorf("link telegram: %w", err)
	}
	user.TelegramChatID = &chatID

	s.logger.Info("Telegram linked",
		zap.String("user_id", user.ID.String()),
		zap.Int64("chat_id", chatID),
	)

	return user, nil
}

// List возвращает всех пользователей, новые первыми
func (s *UserService) List(ctx context.Context, actor lifecycle.Actor) ([]*model.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

// UpdateRole меняет роль пользователя.
// Менять роль super-admin и выдавать её может только super-admin.
func (s *UserService) UpdateRole(ctx context.Context, actor lifecycle.Actor, id uuid.UUID, role model.Role) (*model.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, validationError("invalid role")
	}

	target, err := s.adminTarget(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if role == model.RoleSuperAdmin && actor.Role != model.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: only a super-admin can grant super-admin", ErrForbidden)
	}

	updated, err := s.userRepo.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	if !updated {
		return nil, notFound("user")
	}

	s.logger.Info("User role changed",
		zap.String("user_id", id.String()),
		zap.String("from", string(target.Role)),
		zap.String("to", string(role)),
		zap.String("by", actor.ID.String()),
	)

	target.Role = role
	return target, nil
}

// Delete удаляет пользователя вместе с его записями и уведомлениями
func (s *UserService) Delete(ctx context.Context, actor lifecycle.Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if id == actor.ID {
		return validationError("cannot delete yourself")
	}

	if _, err := s.adminTarget(ctx, actor, id); err != nil {
		return err
	}

	deleted, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !deleted {
		return notFound("user")
	}

	s.logger.Info("User deleted",
		zap.String("user_id", id.String()),
		zap.String("by", actor.ID.String()),
	)
	return nil
}

// adminTarget загружает пользователя, которым управляет администратор
func (s *UserService) adminTarget(ctx context.Context, actor lifecycle.Actor, id uuid.UUID) (*model.User, error) {
	target, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if target == nil {
		return nil, notFound("user")
	}
	if target.Role == model.RoleSuperAdmin && actor.Role != model.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: cannot modify a super-admin", ErrForbidden)
	}
	return target, nil
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
