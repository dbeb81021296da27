package handlers

import (
	"encoding/json"

	"github.com/thereayou/lecture-live/internal/handlers/dto"
	"github.com/thereayou/lecture-live/internal/policy"
	"github.com/thereayou/lecture-live/internal/realtime"
	"github.com/thereayou/lecture-live/internal/services"
	"go.uber.org/zap"
)

// EventRouter обрабатывает события realtime протокола. Вся доменная логика
// живет в сервисах — точно тех же, что обслуживают HTTP путь.
type EventRouter struct {
	sessions *services.SessionService
	messages *services.MessageService
	hub      *realtime.Hub
	log      *zap.Logger
}

func NewEventRouter(sessions *services.SessionService, messages *services.MessageService, hub *realtime.Hub, log *zap.Logger) *EventRouter {
	return &EventRouter{sessions: sessions, messages: messages, hub: hub, log: log}
}

func principalOf(client *realtime.Client) policy.Principal {
	return policy.Principal{UserID: client.UserID, Role: client.Role}
}

func (r *EventRouter) HandleEvent(client *realtime.Client, evt *realtime.Event) error {
	switch evt.Event {
	case realtime.EventJoinSession:
		return r.handleJoinSession(client, evt)
	case realtime.EventSendMessage:
		return r.handleSendMessage(client, evt)
	case realtime.EventEditMessage:
		return r.handleEditMessage(client, evt)
	case realtime.EventDeleteMessage:
		return r.handleDeleteMessage(client, evt)
	case realtime.EventTogglePin:
		return r.handleTogglePin(client, evt)
	case realtime.EventTyping:
		return r.handleTyping(client, evt)
	default:
		r.log.Warn("unknown event", zap.String("event", evt.Event))
		return nil
	}
}

func (r *EventRouter) handleJoinSession(client *realtime.Client, evt *realtime.Event) error {
	var payload realtime.JoinSessionPayload
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		return realtime.ErrInvalidEvent
	}

	session, err := r.sessions.AuthorizeRoomJoin(principalOf(client), payload.SessionID)
	if err != nil {
		return err
	}

	// Присутствие и user-joined остальным — внутри JoinRoom
	r.hub.JoinRoom(client, session.ID)

	return client.SendEvent(realtime.EventJoinedSession, map[string]interface{}{
		"sessionId": session.ID,
		"message":   "successfully joined session",
	})
}

func (r *EventRouter) handleSendMessage(client *realtime.Client, evt *realtime.Event) error {
	var payload realtime.SendMessagePayload
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		return realtime.ErrInvalidEvent
	}

	if !client.InRoom(payload.SessionID) {
		return realtime.ErrNotInRoom
	}

	message, err := r.messages.Send(principalOf(client), payload.SessionID, payload.Text, payload.Type)
	if err != nil {
		return err
	}

	// Лог уже закоммичен; отправитель тоже получает broadcast и сверяет
	// свое UI по нему, а не по локальному эху
	r.hub.BroadcastToRoom(payload.SessionID, realtime.EventNewMessage, dto.NewMessageResponse(message))
	return nil
}

func (r *EventRouter) handleEditMessage(client *realtime.Client, evt *realtime.Event) error {
	var payload realtime.EditMessagePayload
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		return realtime.ErrInvalidEvent
	}

	message, err := r.messages.Edit(principalOf(client), payload.MessageID, payload.Text)
	if err != nil {
		return err
	}

	r.hub.BroadcastToRoom(message.SessionID, realtime.EventMessageEdited, map[string]interface{}{
		"id":       message.ID,
		"text":     message.Text,
		"isEdited": message.IsEdited,
		"editedAt": message.EditedAt,
	})
	return nil
}

func (r *EventRouter) handleDeleteMessage(client *realtime.Client, evt *realtime.Event) error {
	var payload realtime.DeleteMessagePayload
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		return realtime.ErrInvalidEvent
	}

	message, err := r.messages.Delete(principalOf(client), payload.MessageID)
	if err != nil {
		return err
	}

	r.hub.BroadcastToRoom(message.SessionID, realtime.EventMessageDeleted, map[string]interface{}{
		"id": message.ID,
	})
	return nil
}

func (r *EventRouter) handleTogglePin(client *realtime.Client, evt *realtime.Event) error {
	var payload realtime.TogglePinPayload
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		return realtime.ErrInvalidEvent
	}

	message, pinned, err := r.messages.TogglePin(principalOf(client), payload.MessageID)
	if err != nil {
		return err
	}

	r.hub.BroadcastToRoom(message.SessionID, realtime.EventMessagePinned, map[string]interface{}{
		"id":       message.ID,
		"isPinned": pinned,
	})
	return nil
}

func (r *EventRouter) handleTyping(client *realtime.Client, evt *realtime.Event) error {
	var payload realtime.TypingPayload
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		return realtime.ErrInvalidEvent
	}

	if !client.InRoom(payload.SessionID) {
		return realtime.ErrNotInRoom
	}

	// Не персистится и не проверяется сверх членства в комнате
	r.hub.BroadcastToRoomExcept(payload.SessionID, client.ID, realtime.EventUserTyping, map[string]interface{}{
		"userId":      client.UserID,
		"displayName": client.DisplayName,
		"isTyping":    payload.IsTyping,
	})
	return nil
}
