package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tieubaoca/manualbot/service"
	"github.com/tieubaoca/manualbot/types"
)

type ChatHandler struct {
	answer *service.AnswerService
	chat   *service.WebSocketService
}

func NewChatHandler(answer *service.AnswerService, chat *service.WebSocketService) *ChatHandler {
	return &ChatHandler{
		answer: answer,
		chat:   chat,
	}
}

// HandleAsk answers one question over plain HTTP; the caller carries history.
func (h *ChatHandler) HandleAsk(c *gin.Context) {
	var req types.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}
	res, err := h.answer.Answer(c.Request.Context(), req.Manual, req.Role, req.Content, req.History)
	if err != nil {
		respondError(c, err, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ChatHandler) HandleWebSocket(c *gin.Context) {
	h.chat.HandleChat(c.Writer, c.Request)
}
