package api

import (
	"net/http"
	"time"

	"github.com/Freeeeeet/calendar_booking/internal/service"
	"github.com/gin-gonic/gin"
)

// optionalTime разбирает RFC3339 параметр, пустое значение даёт нулевое время
func optionalTime(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		badRequest(c, name+" must be an RFC3339 timestamp")
		return time.Time{}, false
	}
	return t, true
}

func (h *Handler) ListBlockedSlots(c *gin.Context) {
	from, ok := optionalTime(c, "from")
	if !ok {
		return
	}
	to, ok := optionalTime(c, "to")
	if !ok {
		return
	}

	blocks, err := h.blocks.List(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blockedSlots": blocks})
}

func (h *Handler) CreateBlockedSlot(c *gin.Context) {
	var in service.CreateBlockedSlotInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	block, err := h.blocks.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, block)
}

func (h *Handler) DeleteBlockedSlot(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.blocks.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
