package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/config"
	"github.com/Freeeeeet/calendar_booking/internal/controller"
	"github.com/Freeeeeet/calendar_booking/internal/controller/api"
	"github.com/Freeeeeet/calendar_booking/internal/idempotency"
	"github.com/Freeeeeet/calendar_booking/internal/notification"
	"github.com/Freeeeeet/calendar_booking/internal/repository"
	"github.com/Freeeeeet/calendar_booking/internal/schedule"
	"github.com/Freeeeeet/calendar_booking/internal/service"
	"github.com/Freeeeeet/calendar_booking/internal/telegramlink"
	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// App собранное приложение: HTTP API и опциональный Telegram бот
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	pool   *pgxpool.Pool
	redis  *goredis.Client
	server *http.Server
	bot    *controller.BotController
}

// New подключается к хранилищам, применяет миграции и собирает все слои
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("✅ Connected to database")

	a := &App{cfg: cfg, logger: logger, pool: pool}

	if err := a.migrate(ctx); err != nil {
		a.Close()
		return nil, err
	}

	if err := a.build(ctx); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) migrate(ctx context.Context) error {
	migrator, err := NewMigrator(a.pool, a.logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return migrator.Run(ctx)
}

func (a *App) build(ctx context.Context) error {
	// Repositories
	appointmentRepo := repository.NewAppointmentRepository(a.pool)
	blockedSlotRepo := repository.NewBlockedSlotRepository(a.pool)
	notificationRepo := repository.NewNotificationRepository(a.pool)
	userRepo := repository.NewUserRepository(a.pool)
	calendar := repository.NewCalendar(a.pool)

	// Idempotency и коды привязки Telegram
	var (
		idem      idempotency.Store
		linkCodes telegramlink.Store
	)
	if a.cfg.RedisAddr != "" {
		rdb, err := idempotency.Connect(ctx, a.cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		a.redis = rdb
		idem = idempotency.NewRedisStore(rdb, idempotency.DefaultTTL)
		linkCodes = telegramlink.NewRedisStore(rdb, telegramlink.DefaultTTL)
		a.logger.Info("✅ Idempotency keys and link codes stored in Redis", zap.String("addr", a.cfg.RedisAddr))
	} else {
		idem = idempotency.NewMemoryStore(idempotency.DefaultTTL)
		linkCodes = telegramlink.NewMemoryStore(telegramlink.DefaultTTL)
		a.logger.Warn("REDIS_ADDR not set, idempotency keys and link codes kept in memory")
	}

	// Telegram
	var (
		botInstance *bot.Bot
		sender      notification.Sender
	)
	if a.cfg.TelegramToken != "" {
		b, err := bot.New(a.cfg.TelegramToken, bot.WithDefaultHandler(a.ignoreUpdate))
		if err != nil {
			return fmt.Errorf("create bot: %w", err)
		}
		botInstance = b
		sender = notification.NewTelegramSender(b)
	} else {
		a.logger.Warn("TELEGRAM_TOKEN not set, Telegram delivery disabled")
	}

	// Services
	calculator, err := schedule.NewCalculator(a.cfg.WorkingHours)
	if err != nil {
		return fmt.Errorf("create slot calculator: %w", err)
	}

	dispatcher := notification.NewService(notificationRepo, userRepo, sender, a.logger)

	appointmentService := service.NewAppointmentService(appointmentRepo, blockedSlotRepo, calendar, dispatcher, a.logger)
	blockedSlotService := service.NewBlockedSlotService(blockedSlotRepo, appointmentRepo, calendar, a.logger)
	availabilityService := service.NewAvailabilityService(calculator, appointmentRepo, blockedSlotRepo)
	notificationService := service.NewNotificationService(notificationRepo, a.logger)
	userService := service.NewUserService(userRepo, linkCodes, a.logger)

	// Controllers
	if botInstance != nil {
		a.bot = controller.NewBotController(botInstance, availabilityService, linkCodes, a.logger)
		if err := a.bot.RegisterHandlers(ctx); err != nil {
			// Меню команд не критично для работы бота
			a.logger.Warn("Bot commands menu not set", zap.Error(err))
		}
	}

	if a.cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := api.NewHandler(
		appointmentService,
		blockedSlotService,
		availabilityService,
		notificationService,
		userService,
		idem,
		a.pool,
		a.logger,
	)

	router := api.NewRouter(api.RouterConfig{
		Handler:         handler,
		JWTSecret:       []byte(a.cfg.JWTSecret),
		CORSOrigins:     a.cfg.CORSOrigins,
		RateLimitPerMin: a.cfg.RateLimitPerMin,
		Logger:          a.logger,
	})

	a.server = &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return nil
}

func (a *App) ignoreUpdate(context.Context, *bot.Bot, *models.Update) {}

// Run обслуживает HTTP и бота до отмены ctx, затем корректно останавливает сервер
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	if a.bot != nil {
		g.Go(func() error {
			return a.bot.Start(ctx)
		})
	}

	return g.Wait()
}

// Close освобождает соединения с хранилищами
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("Failed to close redis", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
