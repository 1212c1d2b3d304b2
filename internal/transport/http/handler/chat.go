package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"iga-community/internal/app"
	"iga-community/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
	logger      *slog.Logger
}

type ChatRequest struct {
	Messages []app.IncomingMessage `json:"messages"`
}

func NewChatHandler(chatService *app.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, logger: logger}
}

func (h *ChatHandler) Reply(c *gin.Context) {
	var req ChatRequest
	if !response.BindJSON(c, &req) {
		return
	}

	reply, err := h.chatService.Reply(c.Request.Context(), req.Messages)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMissingUserMessage):
			response.Error(c, http.StatusBadRequest, "Missing user message")
		default:
			internalError(c, h.logger, err, "Failed to generate response")
		}
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"message": reply})
}
