package render

import (
	"bytes"
	"fmt"
	"image/color"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/schedule"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Константы размеров и отступов
const (
	imageWidth       = 640
	headerHeight     = 70
	footerHeight     = 50
	rowHeight        = 34
	rowGap           = 6
	paddingX         = 24
	slotBorderRadius = 6.0
	shadowOffset     = 2.0
	minRows          = 1
)

// Цветовая схема
var (
	bgColor         = color.RGBA{245, 246, 248, 255}
	textColor       = color.RGBA{80, 85, 90, 220}
	slotShadowColor = color.RGBA{0, 0, 0, 20}

	slotFreeColor    = color.RGBA{133, 193, 85, 220}
	slotBookedColor  = color.RGBA{255, 182, 193, 255}
	slotBlockedColor = color.RGBA{158, 158, 158, 200}
	slotPastColor    = color.RGBA{220, 220, 220, 200}

	slotTextColor       = color.RGBA{20, 24, 28, 230}
	slotBookedTextColor = color.RGBA{120, 40, 50, 255}
)

// DayImage рисует сетку слотов одного дня в PNG.
// Для нерабочего дня рисуется только заголовок с пометкой closed.
func DayImage(day time.Time, slots []schedule.Slot) ([]byte, error) {
	rows := len(slots)
	if rows < minRows {
		rows = minRows
	}
	height := headerHeight + rows*(rowHeight+rowGap) + footerHeight

	dc := gg.NewContext(imageWidth, height)
	dc.SetColor(bgColor)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	drawHeader(dc, day)

	if len(slots) == 0 {
		dc.SetColor(textColor)
		dc.DrawStringAnchored("Closed: not a working day", float64(imageWidth)/2, headerHeight+rowHeight/2, 0.5, 0.5)
	}

	for i, slot := range slots {
		y := float64(headerHeight + i*(rowHeight+rowGap))
		drawSlot(dc, slot, y)
	}

	drawLegend(dc, float64(height-footerHeight+16))

	return encodeImage(dc)
}

// drawHeader рисует дату над сеткой
func drawHeader(dc *gg.Context, day time.Time) {
	dc.SetColor(textColor)
	dc.DrawStringAnchored(day.Format("Monday, 02 January 2006"), float64(imageWidth)/2, headerHeight/2-8, 0.5, 0.5)
	dc.DrawStringAnchored(day.Format("MST"), float64(imageWidth)/2, headerHeight/2+10, 0.5, 0.5)
}

// drawSlot рисует одну строку слота
func drawSlot(dc *gg.Context, slot schedule.Slot, y float64) {
	fillColor := slotColor(slot)
	width := float64(imageWidth - paddingX*2)

	// Тень
	dc.SetColor(slotShadowColor)
	dc.DrawRoundedRectangle(paddingX+shadowOffset, y+shadowOffset, width, rowHeight, slotBorderRadius)
	dc.Fill()

	dc.SetColor(fillColor)
	dc.DrawRoundedRectangle(paddingX, y, width, rowHeight, slotBorderRadius)
	dc.Fill()

	dc.SetColor(darkenColor(fillColor, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(paddingX, y, width, rowHeight, slotBorderRadius)
	dc.Stroke()

	txtColor := slotTextColor
	if slot.IsBooked {
		txtColor = slotBookedTextColor
	}
	dc.SetColor(txtColor)

	label := fmt.Sprintf("%s - %s", slot.Start.Format("15:04"), slot.End.Format("15:04"))
	dc.DrawStringAnchored(label, paddingX+12, y+rowHeight/2, 0, 0.35)
	dc.DrawStringAnchored(slotState(slot), float64(imageWidth-paddingX-12), y+rowHeight/2, 1, 0.35)
}

// slotColor возвращает цвет по флагам слота. Занятость важнее блокировки, блокировка важнее прошедшего времени
func slotColor(slot schedule.Slot) color.RGBA {
	switch {
	case slot.IsBooked:
		return slotBookedColor
	case slot.IsBlocked:
		return slotBlockedColor
	case slot.IsPast:
		return slotPastColor
	default:
		return slotFreeColor
	}
}

func slotState(slot schedule.Slot) string {
	switch {
	case slot.IsBooked:
		return "booked"
	case slot.IsBlocked:
		return "blocked"
	case slot.IsPast:
		return "past"
	default:
		return "free"
	}
}

// darkenColor затемняет цвет на указанный множитель
func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// drawLegend рисует легенду внизу
func drawLegend(dc *gg.Context, y float64) {
	items := []struct {
		Label string
		Clr   color.Color
	}{
		{"free", slotFreeColor},
		{"booked", slotBookedColor},
		{"blocked", slotBlockedColor},
		{"past", slotPastColor},
	}

	boxW := 20.0
	boxH := 14.0
	x := float64(paddingX)

	for _, item := range items {
		dc.SetColor(item.Clr)
		dc.DrawRoundedRectangle(x, y, boxW, boxH, 3)
		dc.Fill()

		dc.SetColor(textColor)
		dc.DrawStringAnchored(item.Label, x+boxW+8, y+boxH/2, 0, 0.35)
		x += boxW + 8 + float64(len(item.Label)*7) + 24
	}
}

// encodeImage кодирует изображение в PNG
func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
