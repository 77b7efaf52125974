package api

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/calendar_booking/internal/idempotency"
	"github.com/Freeeeeet/calendar_booking/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

const (
	codeValidation        = "validation_error"
	codeUnauthorized      = "unauthorized"
	codeForbidden         = "forbidden"
	codeNotFound          = "not_found"
	codeInvalidTransition = "invalid_transition"
	codeSlotConflict      = "slot_conflict"
	codeInProgress        = "request_in_progress"
	codeRateLimited       = "rate_limited"
	codeInternal          = "internal"
)

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: message, Code: code}})
}

// respondError переводит ошибку сервиса в HTTP ответ
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		abortWithError(c, http.StatusUnauthorized, codeUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		abortWithError(c, http.StatusForbidden, codeForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, service.ErrSlotConflict):
		// Детали пересечения содержат чужие идентификаторы
		abortWithError(c, http.StatusConflict, codeSlotConflict, service.ErrSlotConflict.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		abortWithError(c, http.StatusConflict, codeInvalidTransition, err.Error())
	case errors.Is(err, idempotency.ErrInProgress):
		abortWithError(c, http.StatusConflict, codeInProgress, err.Error())
	default:
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		abortWithError(c, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

func badRequest(c *gin.Context, message string) {
	abortWithError(c, http.StatusBadRequest, codeValidation, message)
}
