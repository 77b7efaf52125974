// Package telegramlink выдаёт одноразовые коды привязки Telegram чата к аккаунту
package telegramlink

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL сколько действует выданный ботом код
const DefaultTTL = 10 * time.Minute

// Store хранит коды, выданные в ответ на /start.
//
// Issue возвращает новый код для чата. Redeem погашает код: (chatID, true, nil)
// при первом предъявлении действующего кода, (0, false, nil) если код неизвестен,
// истёк или уже использован.
type Store interface {
	Issue(ctx context.Context, chatID int64) (string, error)
	Redeem(ctx context.Context, code string) (int64, bool, error)
}

// newCode восемь случайных hex символов из UUIDv4
func newCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Normalize приводит введённый пользователем код к виду, в котором он хранится
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
