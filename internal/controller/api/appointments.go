package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Freeeeeet/calendar_booking/internal/lifecycle"
	"github.com/Freeeeeet/calendar_booking/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const idempotencyHeader = "Idempotency-Key"

func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.appointments.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	appointment, err := h.appointments.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, appointment)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var in service.CreateAppointmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	actor := actorFrom(c)

	key := c.GetHeader(idempotencyHeader)
	if key == "" || h.idempotency == nil {
		h.createAppointment(c, actor, in)
		return
	}

	// Ключ уникален в пределах пользователя
	scoped := actor.ID.String() + ":" + key
	previous, err := h.idempotency.Reserve(ctx, scoped)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if previous != "" {
		h.replayAppointment(c, actor, previous)
		return
	}

	id, ok := h.createAppointment(c, actor, in)
	if !ok {
		if err := h.idempotency.Release(context.WithoutCancel(ctx), scoped); err != nil {
			h.logger.Warn("Failed to release idempotency key", zap.String("key", scoped), zap.Error(err))
		}
		return
	}

	if err := h.idempotency.Complete(context.WithoutCancel(ctx), scoped, id.String()); err != nil {
		h.logger.Warn("Failed to store idempotency result", zap.String("key", scoped), zap.Error(err))
	}
}

func (h *Handler) createAppointment(c *gin.Context, actor lifecycle.Actor, in service.CreateAppointmentInput) (uuid.UUID, bool) {
	appointment, err := h.appointments.Create(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, h.logger, err)
		return uuid.Nil, false
	}

	c.JSON(http.StatusCreated, appointment)
	return appointment.ID, true
}

func (h *Handler) replayAppointment(c *gin.Context, actor lifecycle.Actor, previous string) {
	id, err := uuid.Parse(previous)
	if err != nil {
		respondError(c, h.logger, errors.New("corrupted idempotency record"))
		return
	}

	appointment, err := h.appointments.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Idempotent-Replayed", "true")
	c.JSON(http.StatusCreated, appointment)
}

func (h *Handler) TransitionAppointment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var in service.TransitionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if in.Event == "" {
		badRequest(c, "event is required")
		return
	}

	appointment, err := h.appointments.Transition(c.Request.Context(), actorFrom(c), id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, appointment)
}
