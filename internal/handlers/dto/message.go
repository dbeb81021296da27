package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/lecture-live/internal/models"
)

type SendMessageRequest struct {
	SessionID uuid.UUID `json:"sessionId" binding:"required"`
	Text      string    `json:"text" binding:"required"`
	Type      string    `json:"type" binding:"required"`
}

type EditMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

type UserInfo struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"displayName"`
	Role        string    `json:"role"`
}

// MessageResponse — представление сообщения, общее для HTTP ответов
// и realtime рассылки: клиент сверяет своё UI по одному и тому же виду.
type MessageResponse struct {
	ID        uint64     `json:"id"`
	SessionID uuid.UUID  `json:"sessionId"`
	Text      string     `json:"text"`
	Type      string     `json:"type"`
	Timestamp time.Time  `json:"timestamp"`
	IsEdited  bool       `json:"isEdited"`
	EditedAt  *time.Time `json:"editedAt,omitempty"`
	IsPinned  bool       `json:"isPinned"`
	User      UserInfo   `json:"user"`
}

func NewMessageResponse(m *models.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		SessionID: m.SessionID,
		Text:      m.Text,
		Type:      m.Type,
		Timestamp: m.CreatedAt,
		IsEdited:  m.IsEdited,
		EditedAt:  m.EditedAt,
		IsPinned:  m.IsPinned,
		User: UserInfo{
			ID:          m.Author.ID,
			DisplayName: m.Author.DisplayName,
			Role:        m.Author.Role,
		},
	}
}

func NewMessageResponses(messages []models.Message) []MessageResponse {
	out := make([]MessageResponse, len(messages))
	for i := range messages {
		out[i] = NewMessageResponse(&messages[i])
	}
	return out
}
