package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/lecture-live/internal/errs"
	"github.com/thereayou/lecture-live/internal/handlers/dto"
	"github.com/thereayou/lecture-live/internal/middleware"
	"github.com/thereayou/lecture-live/internal/services"
)

type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Send отправляет сообщение через HTTP (альтернатива WebSocket)
func (h *MessageHandler) Send(c *gin.Context) {
	p := middleware.Principal(c)

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errs.Validation(err.Error()))
		return
	}

	message, err := h.messages.Send(p, req.SessionID, req.Text, req.Type)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"message":     "message sent successfully",
		"messageData": dto.NewMessageResponse(message),
	})
}

// List возвращает страницу истории сессии: limit и курсор before
// для подгрузки старых сообщений
func (h *MessageHandler) List(c *gin.Context) {
	p := middleware.Principal(c)

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, errs.Validation("invalid session id"))
		return
	}

	limit := 0
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	var beforeID *uint64
	if before := c.Query("before"); before != "" {
		if id, err := strconv.ParseUint(before, 10, 64); err == nil {
			beforeID = &id
		}
	}

	messages, hasMore, err := h.messages.List(p, sessionID, limit, beforeID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"messages": dto.NewMessageResponses(messages),
		"hasMore":  hasMore,
	})
}

// Edit правит собственное сообщение в пределах окна редактирования
func (h *MessageHandler) Edit(c *gin.Context) {
	p := middleware.Principal(c)

	messageID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, errs.Validation("invalid message id"))
		return
	}

	var req dto.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errs.Validation(err.Error()))
		return
	}

	message, err := h.messages.Edit(p, messageID, req.Text)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "message updated successfully",
		"messageData": dto.NewMessageResponse(message),
	})
}

// Delete мягко удаляет сообщение (автор или лектор)
func (h *MessageHandler) Delete(c *gin.Context) {
	p := middleware.Principal(c)

	messageID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, errs.Validation("invalid message id"))
		return
	}

	if _, err := h.messages.Delete(p, messageID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "message deleted successfully"})
}

// TogglePin закрепляет/открепляет сообщение (только лектор)
func (h *MessageHandler) TogglePin(c *gin.Context) {
	p := middleware.Principal(c)

	messageID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, errs.Validation("invalid message id"))
		return
	}

	message, pinned, err := h.messages.TogglePin(p, messageID)
	if err != nil {
		fail(c, err)
		return
	}

	text := "message unpinned"
	if pinned {
		text = "message pinned"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": text,
		"messageData": gin.H{
			"id":       message.ID,
			"isPinned": pinned,
		},
	})
}

// Pinned — закрепленные сообщения сессии, новые первыми
func (h *MessageHandler) Pinned(c *gin.Context) {
	p := middleware.Principal(c)

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, errs.Validation("invalid session id"))
		return
	}

	messages, err := h.messages.Pinned(p, sessionID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"messages": dto.NewMessageResponses(messages),
	})
}
