package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Входящие события
const (
	EventJoinSession   = "join-session"
	EventSendMessage   = "send-message"
	EventEditMessage   = "edit-message"
	EventDeleteMessage = "delete-message"
	EventTogglePin     = "toggle-pin"
	EventTyping        = "typing"
)

// Исходящие события
const (
	EventJoinedSession  = "joined-session"
	EventNewMessage     = "new-message"
	EventMessageEdited  = "message-edited"
	EventMessageDeleted = "message-deleted"
	EventMessagePinned  = "message-pinned"
	EventUserJoined     = "user-joined"
	EventUserLeft       = "user-left"
	EventUserTyping     = "user-typing"
	EventError          = "error"
)

// Event — конверт входящего события
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// OutEvent — конверт исходящего события
type OutEvent struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type JoinSessionPayload struct {
	SessionID uuid.UUID `json:"sessionId"`
}

type SendMessagePayload struct {
	SessionID uuid.UUID `json:"sessionId"`
	Text      string    `json:"text"`
	Type      string    `json:"type"`
}

type EditMessagePayload struct {
	MessageID uint64 `json:"messageId"`
	Text      string `json:"text"`
}

type DeleteMessagePayload struct {
	MessageID uint64 `json:"messageId"`
}

type TogglePinPayload struct {
	MessageID uint64 `json:"messageId"`
}

type TypingPayload struct {
	SessionID uuid.UUID `json:"sessionId"`
	IsTyping  bool      `json:"isTyping"`
}
