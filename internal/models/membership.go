package models

import (
	"github.com/google/uuid"
	"time"
)

// Membership — долговременная запись о том, что пользователь вступил в сессию.
// Пара (user, session) уникальна; повторное вступление идемпотентно.
type Membership struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_membership_user_session"`
	SessionID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_membership_user_session;index"`
	JoinedAt     time.Time
	MessageCount int `gorm:"default:0"`

	// Связи
	User    User    `gorm:"foreignKey:UserID"`
	Session Session `gorm:"foreignKey:SessionID"`
}
