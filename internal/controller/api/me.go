package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// linkTelegramRequest code выдаёт бот в ответ на /start
type linkTelegramRequest struct {
	Code string `json:"code"`
}

func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.users.Me(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) LinkTelegram(c *gin.Context) {
	var req linkTelegramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, err := h.users.LinkTelegram(c.Request.Context(), actorFrom(c), req.Code)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
