package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Время ожидания записи
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Интервал отправки ping
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего события
	maxMessageSize = 8 * 1024
)

// EventHandler обрабатывает события протокола поверх соединения
type EventHandler interface {
	HandleEvent(client *Client, evt *Event) error
}

// Client — одно аутентифицированное WebSocket соединение.
// Идентичность (userID, роль) разрешается до создания клиента;
// неаутентифицированные соединения сюда не доходят.
type Client struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	DisplayName string
	Role        string
	Conn        *websocket.Conn
	Send        chan []byte

	hub     *Hub
	session *uuid.UUID
	mu      sync.RWMutex
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, displayName, role string) *Client {
	return &Client{
		ID:          uuid.New(),
		UserID:      userID,
		DisplayName: displayName,
		Role:        role,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		hub:         hub,
	}
}

// CurrentSession возвращает комнату, в которой состоит соединение
func (c *Client) CurrentSession() (uuid.UUID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return uuid.Nil, false
	}
	return *c.session, true
}

func (c *Client) setSession(id *uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = id
}

// InRoom сообщает, подписано ли соединение на комнату сессии
func (c *Client) InRoom(sessionID uuid.UUID) bool {
	current, ok := c.CurrentSession()
	return ok && current == sessionID
}

// ReadPump читает события от клиента. Однопоточный цикл: события одного
// соединения обрабатываются строго последовательно.
func (c *Client) ReadPump(handler EventHandler) {
	defer func() {
		c.hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var evt Event
		if err := c.Conn.ReadJSON(&evt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read error",
					zap.String("client_id", c.ID.String()), zap.Error(err))
			}
			break
		}

		if evt.Event == "" {
			c.SendError(ErrInvalidEvent.Error())
			continue
		}

		if err := handler.HandleEvent(c, &evt); err != nil {
			// Ошибки realtime пути уходят только инициатору
			c.SendError(err.Error())
		}
	}
}

// WritePump отправляет события клиенту и пингует соединение
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub закрыл канал
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.Conn.WriteMessage(websocket.TextMessage, message)

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendEvent шлет событие только этому соединению
func (c *Client) SendEvent(event string, data interface{}) error {
	raw, err := json.Marshal(OutEvent{Event: event, Data: data, Timestamp: time.Now()})
	if err != nil {
		return err
	}

	select {
	case c.Send <- raw:
		return nil
	default:
		return ErrClientQueueFull
	}
}

func (c *Client) SendError(message string) {
	c.SendEvent(EventError, map[string]string{"message": message})
}
