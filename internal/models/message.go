package models

import (
	"github.com/google/uuid"
	"time"
)

const (
	TypeQuestion  = "QUESTION"
	TypeComment   = "COMMENT"
	TypeConfusion = "CONFUSION"
)

// MaxMessageLength ограничивает длину текста сообщения
const MaxMessageLength = 2000

// ValidMessageType проверяет, что тип — один из трёх разрешённых
func ValidMessageType(t string) bool {
	return t == TypeQuestion || t == TypeComment || t == TypeConfusion
}

// Message — запись лога сообщений сессии. ID автоинкрементный: порядок
// вставки разрешает ничьи по created_at и служит курсором пагинации.
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index:idx_message_session_created"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Text      string    `gorm:"not null;size:2000"`
	Type      string    `gorm:"not null;check:type IN ('QUESTION','COMMENT','CONFUSION')"`
	IsDeleted bool      `gorm:"default:false"`
	IsPinned  bool      `gorm:"default:false"`
	IsEdited  bool      `gorm:"default:false"`
	EditedAt  *time.Time
	CreatedAt time.Time `gorm:"index:idx_message_session_created"`

	// Связи
	Author User `gorm:"foreignKey:AuthorID"`
}
