package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub — реестр живых соединений и комнат сессий. Единица рассылки —
// комната: событие видят только соединения, подписанные на эту сессию.
// Создается при старте процесса и передается явно (не синглтон), чтобы
// позже его можно было заменить распределенным бэкендом.
type Hub struct {
	// Все открытые соединения
	clients map[uuid.UUID]*Client

	// Соединения по комнатам сессий
	rooms map[uuid.UUID]map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client

	mu  sync.RWMutex
	log *zap.Logger

	// Контекст для graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		rooms:      make(map[uuid.UUID]map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run запускает цикл регистрации соединений
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// Stop останавливает hub и закрывает все соединения
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
	h.clients = make(map[uuid.UUID]*Client)
	h.rooms = make(map[uuid.UUID]map[uuid.UUID]*Client)
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	activeConnections.Inc()

	h.log.Info("client connected",
		zap.String("client_id", client.ID.String()),
		zap.String("user_id", client.UserID.String()))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	// Уходим из текущей комнаты с уведомлением остальных
	if sessionID, ok := client.CurrentSession(); ok {
		h.removeFromRoomUnsafe(client, sessionID, true)
	}

	delete(h.clients, client.ID)
	close(client.Send)
	activeConnections.Dec()

	h.log.Info("client disconnected",
		zap.String("client_id", client.ID.String()),
		zap.String("user_id", client.UserID.String()))
}

// JoinRoom подписывает соединение на комнату сессии: присутствие
// регистрируется, остальные участники комнаты получают user-joined.
// Соединение состоит не более чем в одной комнате.
func (h *Hub) JoinRoom(client *Client, sessionID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := client.CurrentSession(); ok {
		if prev == sessionID {
			return
		}
		h.removeFromRoomUnsafe(client, prev, true)
	}

	if _, ok := h.rooms[sessionID]; !ok {
		h.rooms[sessionID] = make(map[uuid.UUID]*Client)
	}
	h.rooms[sessionID][client.ID] = client
	client.setSession(&sessionID)
	roomJoins.Inc()

	h.broadcastUnsafe(sessionID, client.ID, EventUserJoined, map[string]interface{}{
		"userId":      client.UserID,
		"displayName": client.DisplayName,
		"role":        client.Role,
	})

	h.log.Info("client joined room",
		zap.String("client_id", client.ID.String()),
		zap.String("session_id", sessionID.String()))
}

// LeaveRoom выводит соединение из комнаты сессии
func (h *Hub) LeaveRoom(client *Client, sessionID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoomUnsafe(client, sessionID, true)
}

func (h *Hub) removeFromRoomUnsafe(client *Client, sessionID uuid.UUID, notify bool) {
	room, ok := h.rooms[sessionID]
	if !ok {
		return
	}
	if _, ok := room[client.ID]; !ok {
		return
	}

	delete(room, client.ID)
	client.setSession(nil)
	if len(room) == 0 {
		delete(h.rooms, sessionID)
		return
	}

	if notify {
		h.broadcastUnsafe(sessionID, uuid.Nil, EventUserLeft, map[string]interface{}{
			"userId":      client.UserID,
			"displayName": client.DisplayName,
		})
	}
}

// BroadcastToRoom шлет событие всем соединениям комнаты, включая инициатора
func (h *Hub) BroadcastToRoom(sessionID uuid.UUID, event string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.broadcastUnsafe(sessionID, uuid.Nil, event, data)
}

// BroadcastToRoomExcept шлет событие всем в комнате, кроме указанного соединения
func (h *Hub) BroadcastToRoomExcept(sessionID uuid.UUID, excludeID uuid.UUID, event string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.broadcastUnsafe(sessionID, excludeID, event, data)
}

func (h *Hub) broadcastUnsafe(sessionID uuid.UUID, excludeID uuid.UUID, event string, data interface{}) {
	room, ok := h.rooms[sessionID]
	if !ok {
		return
	}

	raw, err := json.Marshal(OutEvent{Event: event, Data: data, Timestamp: time.Now()})
	if err != nil {
		h.log.Error("failed to marshal event", zap.String("event", event), zap.Error(err))
		return
	}

	for _, client := range room {
		if client.ID == excludeID {
			continue
		}
		select {
		case client.Send <- raw:
			eventsBroadcast.Inc()
		default:
			// Доставка best-effort: переполненный клиент пропускает событие
			droppedSends.Inc()
			h.log.Warn("client send buffer full, event dropped",
				zap.String("client_id", client.ID.String()),
				zap.String("event", event))
		}
	}
}

// PresentUsers — множество пользователей, подключенных к комнате сейчас
func (h *Hub) PresentUsers(sessionID uuid.UUID) []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[uuid.UUID]bool)
	if room, ok := h.rooms[sessionID]; ok {
		for _, client := range room {
			seen[client.UserID] = true
		}
	}

	users := make([]uuid.UUID, 0, len(seen))
	for id := range seen {
		users = append(users, id)
	}
	return users
}

// PresentCount — число пользователей, присутствующих в комнате.
// Эфемерное значение: обнуляется при рестарте процесса и на каждом
// дисконнекте, признаком членства не является.
func (h *Hub) PresentCount(sessionID uuid.UUID) int {
	return len(h.PresentUsers(sessionID))
}
