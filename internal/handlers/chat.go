package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"nicole-studio/internal/chat"
	"nicole-studio/internal/models"
)

const (
	msgMissingMessage = "Missing message"
	msgInternal       = "Internal server error"
)

type ChatHandler struct {
	service *chat.Service
	costs   chat.CostRecorder
}

func NewChatHandler(service *chat.Service, costs chat.CostRecorder) *ChatHandler {
	return &ChatHandler{service: service, costs: costs}
}

// Chat godoc
// @Summary     Send a chat message
// @Description Sends one message to the selected model and returns the reply with token counts.
// @Description Provider failures never surface here: the reply is a fixed apology with zero tokens.
// @Tags        chat
// @Accept      json
// @Produce     json
// @Param       request body models.ChatRequest true "Message and optional model id"
// @Success     200 {object} models.ChatResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgMissingMessage})
		return
	}

	ctx := c.Request.Context()
	reply, err := h.service.Send(ctx, req.Message, req.Model)
	if err != nil {
		if errors.Is(err, models.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgMissingMessage})
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("chat exchange failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msgInternal})
		return
	}

	if cost := reply.CostUSD(); cost > 0 && h.costs != nil {
		h.costs.Add(ctx, cost)
	}

	c.JSON(http.StatusOK, models.ChatResponse{
		Content:      reply.Content,
		TokensInput:  reply.TokensInput,
		TokensOutput: reply.TokensOutput,
	})
}
