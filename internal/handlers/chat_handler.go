package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/sparkmatch/backend/internal/models"
	"github.com/anonto42/sparkmatch/backend/internal/services"
)

// ChatHandler serves the direct-message history between the caller and one other user.
type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) RegisterChatRoutes(g *echo.Group) {
	g.GET("/chat/:otherUserId/messages", h.GetMessages)
	g.POST("/chat/:otherUserId/messages", h.SendMessage)
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}
	otherUserID, err := parseIDParam(c, "otherUserId")
	if err != nil {
		return err
	}

	messages, err := h.chatService.Conversation(c.Request().Context(), currentUserID, otherUserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, messages)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}
	otherUserID, err := parseIDParam(c, "otherUserId")
	if err != nil {
		return err
	}

	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	message, err := h.chatService.Send(c.Request().Context(), currentUserID, otherUserID, req.Content)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, message)
}
