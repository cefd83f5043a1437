package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"nicole-studio/internal/models"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrMissingCredentials):
		return http.StatusInternalServerError
	case errors.Is(err, models.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes msg with the status mapped from err. The raw error is
// logged only; it may carry provider response bodies.
func respondError(c *gin.Context, err error, msg string) {
	status := statusFor(err)
	event := log.Ctx(c.Request.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = log.Ctx(c.Request.Context()).Error()
	}
	event.Err(err).Int("status", status).Msg(msg)
	c.JSON(status, models.ErrorResponse{Error: msg})
}
