package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// slotQuery разбирает date и duration из query string
func (h *Handler) slotQuery(c *gin.Context) (time.Time, int, bool) {
	date, err := h.availability.ParseDate(c.Query("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return time.Time{}, 0, false
	}

	duration := h.availability.DefaultDuration()
	if raw := c.Query("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "duration must be a number of minutes")
			return time.Time{}, 0, false
		}
	}

	return date, duration, true
}

func (h *Handler) GetSlots(c *gin.Context) {
	date, duration, ok := h.slotQuery(c)
	if !ok {
		return
	}

	availability, err := h.availability.Slots(c.Request.Context(), date, duration)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, availability)
}

func (h *Handler) GetSlotsImage(c *gin.Context) {
	date, duration, ok := h.slotQuery(c)
	if !ok {
		return
	}

	image, err := h.availability.DayImage(c.Request.Context(), date, duration)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Data(http.StatusOK, "image/png", image)
}
