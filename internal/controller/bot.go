package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/service"
	"github.com/Freeeeeet/calendar_booking/internal/telegramlink"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Availability источник сетки слотов для команды /slots
type Availability interface {
	ParseDate(value string) (time.Time, error)
	DefaultDuration() int
	Slots(ctx context.Context, date time.Time, durationMinutes int) (*service.Availability, error)
	DayImage(ctx context.Context, date time.Time, durationMinutes int) ([]byte, error)
}

// LinkCodes выдаёт одноразовые коды привязки чата
type LinkCodes interface {
	Issue(ctx context.Context, chatID int64) (string, error)
}

type BotController struct {
	bot          *bot.Bot
	availability Availability
	linkCodes    LinkCodes
	now          func() time.Time
	logger       *zap.Logger
}

func NewBotController(botInstance *bot.Bot, availability Availability, linkCodes LinkCodes, logger *zap.Logger) *BotController {
	return &BotController{
		bot:          botInstance,
		availability: availability,
		linkCodes:    linkCodes,
		now:          time.Now,
		logger:       logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/slots", bot.MatchTypePrefix, c.HandleSlots)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Получить код для уведомлений"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "slots", Description: "🗓 Свободное время на день"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота, блокируется до отмены контекста
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}

func (c *BotController) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	code, err := c.linkCodes.Issue(ctx, chatID)
	if err != nil {
		c.logger.Error("Failed to issue link code", zap.Int64("chat_id", chatID), zap.Error(err))
		c.reply(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}

	c.logger.Info("Link code issued", zap.Int64("chat_id", chatID))
	c.reply(ctx, b, chatID, startText(code))
}

func (c *BotController) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	c.reply(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleSlots отправляет картинку дня: /slots [YYYY-MM-DD] [минуты]
func (c *BotController) HandleSlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	date, duration, err := c.parseSlotsArgs(update.Message.Text)
	if err != nil {
		c.reply(ctx, b, chatID, "❌ "+err.Error()+"\n\nФормат: /slots 2026-10-19 30")
		return
	}

	availability, err := c.availability.Slots(ctx, date, duration)
	if err != nil {
		c.replyError(ctx, b, chatID, err)
		return
	}

	image, err := c.availability.DayImage(ctx, date, duration)
	if err != nil {
		c.replyError(ctx, b, chatID, err)
		return
	}

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:    chatID,
		Photo:     &models.InputFileUpload{Filename: "day.png", Data: bytes.NewReader(image)},
		Caption:   slotsCaption(availability),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		c.logger.Error("Failed to send day image", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// parseSlotsArgs разбирает аргументы /slots, без даты берётся сегодняшний день
func (c *BotController) parseSlotsArgs(text string) (time.Time, int, error) {
	fields := strings.Fields(text)
	if len(fields) > 0 {
		fields = fields[1:]
	}

	date := c.now()
	duration := c.availability.DefaultDuration()

	if len(fields) > 0 {
		parsed, err := c.availability.ParseDate(fields[0])
		if err != nil {
			return time.Time{}, 0, errors.New("дата должна быть в формате ГГГГ-ММ-ДД")
		}
		date = parsed
	}
	if len(fields) > 1 {
		if _, err := fmt.Sscanf(fields[1], "%d", &duration); err != nil {
			return time.Time{}, 0, errors.New("длительность указывается в минутах")
		}
	}
	if len(fields) > 2 {
		return time.Time{}, 0, errors.New("слишком много аргументов")
	}

	return date, duration, nil
}

func (c *BotController) reply(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		c.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (c *BotController) replyError(ctx context.Context, b *bot.Bot, chatID int64, err error) {
	if errors.Is(err, service.ErrValidation) {
		c.reply(ctx, b, chatID, "❌ Некорректный запрос: выберите длительность 15, 30, 60, 90 или 120 минут.")
		return
	}

	c.logger.Error("Failed to build availability", zap.Int64("chat_id", chatID), zap.Error(err))
	c.reply(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
}

const helpText = "📖 <b>Справка</b>\n\n" +
	"/start - получить код для привязки уведомлений\n" +
	"/slots - свободное время на сегодня\n" +
	"/slots 2026-10-19 60 - свободное время на дату для встречи на 60 минут"

func startText(code string) string {
	return fmt.Sprintf(
		"👋 Привет!\n\n"+
			"Код привязки: <code>%s</code>\n\n"+
			"Введите его в профиле в течение %d минут, чтобы получать уведомления о записях в этот чат. "+
			"Код одноразовый, новый можно получить командой /start.\n"+
			"/help - список команд",
		code, int(telegramlink.DefaultTTL/time.Minute),
	)
}

func slotsCaption(a *service.Availability) string {
	if a.Message != "" {
		return fmt.Sprintf("🗓 <b>%s</b>\n%s", a.Date, a.Message)
	}

	free := 0
	for _, slot := range a.Slots {
		if slot.Available {
			free++
		}
	}
	return fmt.Sprintf("🗓 <b>%s</b>\nСвободно слотов: %d из %d", a.Date, free, len(a.Slots))
}
