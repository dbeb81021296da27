package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/thereayou/lecture-live/internal/database"
	"github.com/thereayou/lecture-live/internal/middleware"
	"github.com/thereayou/lecture-live/internal/realtime"
)

// WebSocketHandler управляет WebSocket соединениями
type WebSocketHandler struct {
	hub      *realtime.Hub
	router   *EventRouter
	db       *database.Database
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler создает новый WebSocket handler
func NewWebSocketHandler(hub *realtime.Hub, router *EventRouter, db *database.Database, log *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		router: router,
		db:     db,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: Проверить origin в prod
				return true
			},
		},
	}
}

// HandleWebSocket обрабатывает WebSocket соединения
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	principal := middleware.Principal(c)

	// Имя для presence-событий берем из профиля
	user, err := h.db.GetUser(principal.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "user not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := realtime.NewClient(h.hub, conn, user.ID, user.DisplayName, user.Role)

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.router)
}
