package database

import (
	"github.com/google/uuid"
	"github.com/thereayou/lecture-live/internal/models"
	"gorm.io/gorm"
)

func (d *Database) CreateMembership(m *models.Membership) error {
	return d.db.Create(m).Error
}

func (d *Database) GetMembership(userID, sessionID uuid.UUID) (*models.Membership, error) {
	var m models.Membership
	err := d.db.Where("user_id = ? AND session_id = ?", userID, sessionID).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (d *Database) IsMember(userID, sessionID uuid.UUID) (bool, error) {
	var count int64
	err := d.db.Model(&models.Membership{}).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Count(&count).Error
	return count > 0, err
}

func (d *Database) CountMembers(sessionID uuid.UUID) (int64, error) {
	var count int64
	err := d.db.Model(&models.Membership{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

func (d *Database) ListMembers(sessionID uuid.UUID) ([]models.Membership, error) {
	var members []models.Membership
	err := d.db.Where("session_id = ?", sessionID).
		Preload("User").
		Order("joined_at DESC").
		Find(&members).Error
	return members, err
}

// IncrementMessageCount атомарно увеличивает счетчик принятых сообщений участника
func (d *Database) IncrementMessageCount(userID, sessionID uuid.UUID) error {
	return d.db.Model(&models.Membership{}).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		UpdateColumn("message_count", gorm.Expr("message_count + 1")).Error
}
