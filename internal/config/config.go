package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/schedule"
	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN           string `mapstructure:"DB_DSN"`
	Environment     string `mapstructure:"ENV"`
	HTTPAddr        string `mapstructure:"HTTP_ADDR"`
	JWTSecret       string `mapstructure:"JWT_SECRET"`
	TelegramToken   string `mapstructure:"TELEGRAM_TOKEN"`
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RateLimitPerMin int    `mapstructure:"RATE_LIMIT_PER_MIN"`
	CORSOrigins     []string
	WorkingHours    schedule.WorkingHours
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv(os.Getenv)
}

// FromEnv собирает конфигурацию из функции чтения переменных окружения
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DBDSN:         getenv("DB_DSN"),
		Environment:   getenv("ENV"),
		HTTPAddr:      getenv("HTTP_ADDR"),
		JWTSecret:     getenv("JWT_SECRET"),
		TelegramToken: getenv("TELEGRAM_TOKEN"),
		RedisAddr:     getenv("REDIS_ADDR"),
		CORSOrigins:   splitList(getenv("CORS_ORIGINS")),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	var err error
	if cfg.RateLimitPerMin, err = intOr(getenv, "RATE_LIMIT_PER_MIN", 120); err != nil {
		return nil, err
	}

	if cfg.WorkingHours, err = workingHours(getenv); err != nil {
		return nil, err
	}

	return cfg, nil
}

func workingHours(getenv func(string) string) (schedule.WorkingHours, error) {
	hours := schedule.DefaultWorkingHours()

	if tz := getenv("TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return hours, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
		}
		hours.Location = loc
	}

	var err error
	if hours.StartHour, err = intOr(getenv, "WORK_START_HOUR", hours.StartHour); err != nil {
		return hours, err
	}
	if hours.EndHour, err = intOr(getenv, "WORK_END_HOUR", hours.EndHour); err != nil {
		return hours, err
	}
	if hours.SlotMinutes, err = intOr(getenv, "SLOT_MINUTES", hours.SlotMinutes); err != nil {
		return hours, err
	}

	if raw := getenv("WORK_DAYS"); raw != "" {
		var days []time.Weekday
		for _, part := range splitList(raw) {
			d, err := strconv.Atoi(part)
			if err != nil || d < 0 || d > 6 {
				return hours, fmt.Errorf("invalid WORK_DAYS entry %q: expected 0 (Sunday) to 6 (Saturday)", part)
			}
			days = append(days, time.Weekday(d))
		}
		hours.WorkingDays = days
	}

	if err := hours.Validate(); err != nil {
		return hours, fmt.Errorf("invalid working hours: %w", err)
	}

	return hours, nil
}

func intOr(getenv func(string) string, key string, def int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}
