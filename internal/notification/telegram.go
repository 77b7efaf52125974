package notification

import (
	"context"
	"fmt"
	"html"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// TelegramSender доставляет уведомления в Telegram чат
type TelegramSender struct {
	bot *bot.Bot
}

func NewTelegramSender(b *bot.Bot) *TelegramSender {
	return &TelegramSender{bot: b}
}

func (t *TelegramSender) Send(ctx context.Context, chatID int64, event Event) error {
	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      FormatTelegram(event),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// FormatTelegram собирает HTML текст сообщения
func FormatTelegram(event Event) string {
	return fmt.Sprintf("🔔 <b>%s</b>\n\n%s", html.EscapeString(event.Title), html.EscapeString(event.Message))
}
