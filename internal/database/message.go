package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/lecture-live/internal/models"
	"gorm.io/gorm"
)

func (d *Database) SaveMessage(message *models.Message) error {
	return d.db.Create(message).Error
}

func (d *Database) GetMessage(id uint64) (*models.Message, error) {
	var message models.Message
	if err := d.db.Preload("Author").First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// GetSessionMessages получает неудалённые сообщения сессии с курсорной
// пагинацией: страница берётся с конца лога, отдаётся от старых к новым.
func (d *Database) GetSessionMessages(sessionID uuid.UUID, limit int, beforeID *uint64) ([]models.Message, error) {
	var messages []models.Message

	query := d.db.Where("session_id = ? AND is_deleted = ?", sessionID, false)
	if beforeID != nil {
		query = query.Where("id < ?", *beforeID)
	}

	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Preload("Author").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Разворачиваем: старые сообщения первыми
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (d *Database) GetPinnedMessages(sessionID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := d.db.
		Where("session_id = ? AND is_pinned = ? AND is_deleted = ?", sessionID, true, false).
		Order("created_at DESC").
		Order("id DESC").
		Preload("Author").
		Find(&messages).Error
	return messages, err
}

// UpdateMessageText правит текст только пока сообщение не удалено:
// параллельный delete всегда побеждает гонку с edit.
// Возвращает ErrRecordNotFound, если сообщение уже удалено или исчезло.
func (d *Database) UpdateMessageText(id uint64, text string, editedAt time.Time) error {
	res := d.db.Model(&models.Message{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"text":      text,
			"is_edited": true,
			"edited_at": editedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDeleteMessage помечает сообщение удалённым; повторный вызов — no-op
func (d *Database) SoftDeleteMessage(id uint64) error {
	return d.db.Model(&models.Message{}).
		Where("id = ?", id).
		UpdateColumn("is_deleted", true).Error
}

// ToggleMessagePin атомарно инвертирует флаг закрепления и возвращает
// новое состояние. Удалённые сообщения закреплять нельзя.
func (d *Database) ToggleMessagePin(id uint64) (bool, error) {
	res := d.db.Model(&models.Message{}).
		Where("id = ? AND is_deleted = ?", id, false).
		UpdateColumn("is_pinned", gorm.Expr("NOT is_pinned"))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, gorm.ErrRecordNotFound
	}

	var message models.Message
	if err := d.db.Select("is_pinned").First(&message, "id = ?", id).Error; err != nil {
		return false, err
	}
	return message.IsPinned, nil
}
