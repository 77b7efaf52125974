package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/render"
	"github.com/Freeeeeet/calendar_booking/internal/schedule"
	"github.com/alecthomas/kong"
)

var CLI struct {
	Output   string `short:"o" default:"day.png" help:"Output PNG file."`
	Duration int    `short:"d" default:"30" help:"Slot duration in minutes (15, 30, 60, 90, 120)."`
}

// Рисует день с тестовыми записями и блокировками, чтобы проверить вёрстку картинки
func main() {
	kong.Parse(&CLI,
		kong.Name("day_image"),
		kong.Description("Render a sample day availability image"),
		kong.UsageOnError(),
	)

	calculator, err := schedule.NewCalculator(schedule.DefaultWorkingHours())
	if err != nil {
		fmt.Printf("Ошибка настройки календаря: %v\n", err)
		os.Exit(1)
	}

	// Ближайший понедельник
	day := time.Now().UTC().Truncate(24 * time.Hour)
	for day.Weekday() != time.Monday {
		day = day.AddDate(0, 0, 1)
	}

	booked := []schedule.Interval{
		{Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour)},
		{Start: day.Add(15 * time.Hour), End: day.Add(15*time.Hour + 30*time.Minute)},
	}
	blocked := []schedule.Interval{
		{Start: day.Add(13 * time.Hour), End: day.Add(14 * time.Hour)}, // обед
	}

	// "Сейчас" в середине первого часа, чтобы были прошедшие слоты
	now := day.Add(9*time.Hour + 45*time.Minute)

	slots, err := calculator.GenerateSlots(day, CLI.Duration, booked, blocked, now)
	if err != nil {
		fmt.Printf("Ошибка расчёта слотов: %v\n", err)
		os.Exit(1)
	}

	imageData, err := render.DayImage(day, slots)
	if err != nil {
		fmt.Printf("Ошибка генерации изображения: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(CLI.Output, imageData, 0644); err != nil {
		fmt.Printf("Ошибка сохранения файла: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Изображение успешно сохранено в %s\n", CLI.Output)
	fmt.Printf("📅 День: %s\n", day.Format("02.01.2006"))
	fmt.Printf("📊 Слотов: %d\n", len(slots))
}
