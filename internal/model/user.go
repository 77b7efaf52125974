package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleSubAdmin   Role = "sub-admin"
	RoleSuperAdmin Role = "super-admin"
)

// IsAdmin возвращает true для sub-admin и super-admin
func (r Role) IsAdmin() bool {
	return r == RoleSubAdmin || r == RoleSuperAdmin
}

func (r Role) Valid() bool {
	return r == RoleUser || r.IsAdmin()
}

type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Role           Role      `json:"role"`
	TelegramChatID *int64    `json:"telegramChatId,omitempty"` // указатель - может быть не привязан
	CreatedAt      time.Time `json:"createdAt"`
}
