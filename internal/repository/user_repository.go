package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/Freeeeeet/calendar_booking/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.Role,
		&user.TelegramChatID,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, name, email, phone, role, telegram_chat_id, created_at
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// Create вставляет пользователя. Конкурентная вставка того же id не ошибка: возвращается false
func (r *UserRepository) Create(ctx context.Context, u *model.User) (bool, error) {
	query := `
		INSERT INTO users (id, name, email, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at
	`

	err := r.QueryRow(ctx, query, u.ID, u.Name, u.Email, u.Role).Scan(&u.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("create user: %w", err)
	}

	return true, nil
}

// UpdateProfile обновляет имя и email
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) error {
	if _, err := r.ExecAffected(ctx, `UPDATE users SET name = $1, email = $2 WHERE id = $3`, name, email, id); err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	return nil
}

// List получает всех пользователей, новые первыми
func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT id, name, email, phone, role, telegram_chat_id, created_at
		FROM users
		ORDER BY created_at DESC
	`
	return r.queryUsers(ctx, "list users", query)
}

// UpdateRole меняет роль, false если пользователя нет
func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (bool, error) {
	affected, err := r.ExecAffected(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return false, fmt.Errorf("update user role: %w", err)
	}
	return affected > 0, nil
}

// Delete удаляет пользователя. Записи и уведомления удаляются каскадно,
// у блокировок автор обнуляется
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return affected > 0, nil
}

// ListAdmins получает всех администраторов (sub-admin и super-admin)
func (r *UserRepository) ListAdmins(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT id, name, email, phone, role, telegram_chat_id, created_at
		FROM users
		WHERE role IN ('sub-admin', 'super-admin')
		ORDER BY created_at
	`
	return r.queryUsers(ctx, "list admins", query)
}

func (r *UserRepository) queryUsers(ctx context.Context, op, query string, args ...any) ([]*model.User, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// SetTelegramChatID привязывает Telegram чат к пользователю
func (r *UserRepository) SetTelegramChatID(ctx context.Context, userID uuid.UUID, chatID int64) error {
	affected, err := r.ExecAffected(ctx, `UPDATE users SET telegram_chat_id = $1 WHERE id = $2`, chatID, userID)
	if err != nil {
		return fmt.Errorf("set telegram chat id: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}
