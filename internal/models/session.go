package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SessionScheduled = "scheduled"
	SessionActive    = "active"
	SessionEnded     = "ended"
)

type Session struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"not null"`
	JoinCode    string    `gorm:"uniqueIndex;not null"`
	LecturerID  uuid.UUID `gorm:"not null;index"`
	ModuleCode  string
	Description string
	Status      string `gorm:"not null;default:'active';check:status IN ('scheduled','active','ended')"`
	StartTime   time.Time
	EndTime     *time.Time

	// Настройки сессии
	AllowAnonymous      bool `gorm:"default:true"`
	MessageHistoryLimit int  `gorm:"default:50"`

	CreatedAt time.Time

	// Связи
	Lecturer User `gorm:"foreignKey:LecturerID"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsActive сообщает, принимает ли сессия новые сообщения
func (s *Session) IsActive() bool {
	return s.Status == SessionActive
}
