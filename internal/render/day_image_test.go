package render

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/schedule"
)

func TestDayImageProducesPNG(t *testing.T) {
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	slots := []schedule.Slot{
		{Start: day.Add(9 * time.Hour), End: day.Add(9*time.Hour + 30*time.Minute), IsPast: true},
		{Start: day.Add(9*time.Hour + 30*time.Minute), End: day.Add(10 * time.Hour), IsBooked: true},
		{Start: day.Add(10 * time.Hour), End: day.Add(10*time.Hour + 30*time.Minute), IsBlocked: true},
		{Start: day.Add(10*time.Hour + 30*time.Minute), End: day.Add(11 * time.Hour), Available: true},
	}

	data, err := DayImage(day, slots)
	if err != nil {
		t.Fatalf("DayImage: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}

	wantHeight := headerHeight + len(slots)*(rowHeight+rowGap) + footerHeight
	if b := img.Bounds(); b.Dx() != imageWidth || b.Dy() != wantHeight {
		t.Fatalf("unexpected size: got=%dx%d want=%dx%d", b.Dx(), b.Dy(), imageWidth, wantHeight)
	}
}

func TestDayImageClosedDay(t *testing.T) {
	day := time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC)

	data, err := DayImage(day, []schedule.Slot{})
	if err != nil {
		t.Fatalf("DayImage: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("decode png: %v", err)
	}
}

func TestSlotColorPriority(t *testing.T) {
	tests := []struct {
		name string
		slot schedule.Slot
		want string
	}{
		{"free", schedule.Slot{Available: true}, "free"},
		{"past", schedule.Slot{IsPast: true}, "past"},
		{"blocked beats past", schedule.Slot{IsPast: true, IsBlocked: true}, "blocked"},
		{"booked beats blocked", schedule.Slot{IsBlocked: true, IsBooked: true}, "booked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := slotState(tt.slot); got != tt.want {
				t.Fatalf("slotState: got=%q want=%q", got, tt.want)
			}
		})
	}
}
