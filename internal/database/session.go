package database

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/lecture-live/internal/models"
	"gorm.io/gorm"
)

func (d *Database) CreateSession(session *models.Session) error {
	return d.db.Create(session).Error
}

func (d *Database) GetSession(id uuid.UUID) (*models.Session, error) {
	var session models.Session
	if err := d.db.Preload("Lecturer").First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// FindActiveSessionByCode ищет активную сессию по коду (код хранится в верхнем регистре)
func (d *Database) FindActiveSessionByCode(joinCode string) (*models.Session, error) {
	var session models.Session
	err := d.db.Preload("Lecturer").
		Where("join_code = ? AND status = ?", joinCode, models.SessionActive).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// JoinCodeExists проверяет занятость кода среди всех сессий, включая завершённые
func (d *Database) JoinCodeExists(joinCode string) (bool, error) {
	var count int64
	err := d.db.Model(&models.Session{}).Where("join_code = ?", joinCode).Count(&count).Error
	return count > 0, err
}

func (d *Database) GetLecturerSessions(lecturerID uuid.UUID) ([]models.Session, error) {
	var sessions []models.Session
	err := d.db.Where("lecturer_id = ?", lecturerID).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// GetMemberSessions возвращает сессии, в которые пользователь вступал
func (d *Database) GetMemberSessions(userID uuid.UUID) ([]models.Session, error) {
	var sessions []models.Session
	err := d.db.
		Joins("JOIN memberships ON memberships.session_id = sessions.id").
		Where("memberships.user_id = ?", userID).
		Preload("Lecturer").
		Order("sessions.created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// EndSession переводит active -> ended ровно один раз.
// Возвращает ErrRecordNotFound, если сессия не активна.
func (d *Database) EndSession(id uuid.UUID, endTime time.Time) error {
	res := d.db.Model(&models.Session{}).
		Where("id = ? AND status = ?", id, models.SessionActive).
		Updates(map[string]interface{}{
			"status":   models.SessionEnded,
			"end_time": endTime,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound сообщает, что запись не нашлась
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
