package api

import (
	"context"

	"github.com/Freeeeeet/calendar_booking/internal/idempotency"
	"github.com/Freeeeeet/calendar_booking/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pinger проверка доступности хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	appointments  *service.AppointmentService
	blocks        *service.BlockedSlotService
	availability  *service.AvailabilityService
	notifications *service.NotificationService
	users         *service.UserService
	idempotency   idempotency.Store
	db            Pinger
	logger        *zap.Logger
}

func NewHandler(
	appointments *service.AppointmentService,
	blocks *service.BlockedSlotService,
	availability *service.AvailabilityService,
	notifications *service.NotificationService,
	users *service.UserService,
	idem idempotency.Store,
	db Pinger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		appointments:  appointments,
		blocks:        blocks,
		availability:  availability,
		notifications: notifications,
		users:         users,
		idempotency:   idem,
		db:            db,
		logger:        logger,
	}
}

// pathID разбирает :id из пути, при ошибке отвечает 400
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
