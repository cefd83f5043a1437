package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"nicole-studio/internal/attachments"
	"nicole-studio/internal/chat"
	"nicole-studio/internal/models"
)

type ConversationsHandler struct {
	conversations *chat.Conversations
	attachments   *attachments.Service
	now           func() time.Time
}

func NewConversationsHandler(conversations *chat.Conversations, attachments *attachments.Service) *ConversationsHandler {
	return &ConversationsHandler{conversations: conversations, attachments: attachments, now: time.Now}
}

// CreateConversation godoc
// @Summary     Start a conversation
// @Tags        conversations
// @Produce     json
// @Success     201 {object} models.ConversationResponse
// @Router      /conversations [post]
func (h *ConversationsHandler) CreateConversation(c *gin.Context) {
	conv := h.conversations.Create()
	c.JSON(http.StatusCreated, conv.Snapshot())
}

// GetConversation godoc
// @Summary     Get a conversation transcript
// @Tags        conversations
// @Produce     json
// @Param       id path string true "Conversation ID"
// @Success     200 {object} models.ConversationResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /conversations/{id} [get]
func (h *ConversationsHandler) GetConversation(c *gin.Context) {
	conv, err := h.conversations.Get(c.Param("id"))
	if err != nil {
		respondError(c, err, "conversation not found")
		return
	}
	c.JSON(http.StatusOK, conv.Snapshot())
}

// PostMessage godoc
// @Summary     Send a message in a conversation
// @Description Appends the user message with its attachments and, when it has text, the assistant reply.
// @Description The reply cost is added to the running total.
// @Tags        conversations
// @Accept      json
// @Produce     json
// @Param       id      path string                      true "Conversation ID"
// @Param       request body models.CreateMessageRequest true "Message content, model and attachment ids"
// @Success     200 {object} models.ExchangeResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /conversations/{id}/messages [post]
func (h *ConversationsHandler) PostMessage(c *gin.Context) {
	var req models.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	var files []models.AttachmentResponse
	if len(req.FileIDs) > 0 {
		found, err := h.attachments.Resolve(req.FileIDs)
		if err != nil {
			respondError(c, err, "file not found")
			return
		}
		now := h.now()
		for _, a := range found {
			files = append(files, a.Response(now))
		}
	}

	user, assistant, err := h.conversations.Exchange(c.Request.Context(), c.Param("id"), req.Content, req.Model, files)
	if err != nil {
		switch statusFor(err) {
		case http.StatusNotFound:
			respondError(c, err, "conversation not found")
		case http.StatusBadRequest:
			respondError(c, err, msgMissingMessage)
		default:
			respondError(c, err, msgInternal)
		}
		return
	}

	c.JSON(http.StatusOK, models.ExchangeResponse{User: *user, Assistant: assistant})
}
