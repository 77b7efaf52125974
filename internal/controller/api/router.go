package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Handler         *Handler
	JWTSecret       []byte
	CORSOrigins     []string
	RateLimitPerMin int
	Logger          *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(cfg.Logger))
	router.Use(CORS(cfg.CORSOrigins))
	router.Use(RateLimit(cfg.RateLimitPerMin, cfg.Logger))

	h := cfg.Handler

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", h.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(RequireAuth(cfg.JWTSecret), h.ProvisionUser)
	{
		api.GET("/slots", h.GetSlots)
		api.GET("/slots/image", h.GetSlotsImage)

		api.GET("/appointments", h.ListAppointments)
		api.POST("/appointments", h.CreateAppointment)
		api.GET("/appointments/:id", h.GetAppointment)
		api.PATCH("/appointments/:id/transition", h.TransitionAppointment)

		api.GET("/blocked-slots", h.ListBlockedSlots)
		api.POST("/blocked-slots", h.CreateBlockedSlot)
		api.DELETE("/blocked-slots/:id", h.DeleteBlockedSlot)

		api.GET("/notifications", h.GetNotifications)
		api.PATCH("/notifications", h.MarkAllNotificationsRead)
		api.PATCH("/notifications/:id", h.MarkNotificationRead)

		api.GET("/me", h.GetMe)
		api.PUT("/me/telegram", h.LinkTelegram)

		api.GET("/users", h.ListUsers)
		api.PATCH("/users/:id", h.UpdateUserRole)
		api.DELETE("/users/:id", h.DeleteUser)
	}

	return router
}
