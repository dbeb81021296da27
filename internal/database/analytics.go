package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/lecture-live/internal/models"
)

// AuthorCount — число сообщений одного автора в сессии
type AuthorCount struct {
	AuthorID uuid.UUID
	Count    int64
}

// TimedType — момент и тип одного сообщения; раскладка по минутным
// корзинам делается уже в коде аггрегатора, чтобы SQL оставался
// переносимым между Postgres и sqlite в тестах.
type TimedType struct {
	CreatedAt time.Time
	Type      string
}

func (d *Database) CountSessionMessages(sessionID uuid.UUID) (int64, error) {
	var count int64
	err := d.db.Model(&models.Message{}).
		Where("session_id = ? AND is_deleted = ?", sessionID, false).
		Count(&count).Error
	return count, err
}

func (d *Database) CountMessagesByType(sessionID uuid.UUID) (map[string]int64, error) {
	var rows []struct {
		Type  string
		Count int64
	}
	err := d.db.Model(&models.Message{}).
		Select("type, COUNT(*) AS count").
		Where("session_id = ? AND is_deleted = ?", sessionID, false).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Type] = r.Count
	}
	return counts, nil
}

func (d *Database) CountDistinctAuthors(sessionID uuid.UUID) (int64, error) {
	var count int64
	err := d.db.Model(&models.Message{}).
		Where("session_id = ? AND is_deleted = ?", sessionID, false).
		Distinct("author_id").
		Count(&count).Error
	return count, err
}

// AuthorMessageCounts — авторы сессии по убыванию числа сообщений
func (d *Database) AuthorMessageCounts(sessionID uuid.UUID) ([]AuthorCount, error) {
	var rows []AuthorCount
	err := d.db.Model(&models.Message{}).
		Select("author_id, COUNT(*) AS count").
		Where("session_id = ? AND is_deleted = ?", sessionID, false).
		Group("author_id").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// MessageTimeline — (момент, тип) каждого неудалённого сообщения по порядку
func (d *Database) MessageTimeline(sessionID uuid.UUID) ([]TimedType, error) {
	var rows []TimedType
	err := d.db.Model(&models.Message{}).
		Select("created_at, type").
		Where("session_id = ? AND is_deleted = ?", sessionID, false).
		Order("created_at ASC").
		Scan(&rows).Error
	return rows, err
}

func (d *Database) CountUserMessages(sessionID, userID uuid.UUID) (int64, error) {
	var count int64
	err := d.db.Model(&models.Message{}).
		Where("session_id = ? AND author_id = ? AND is_deleted = ?", sessionID, userID, false).
		Count(&count).Error
	return count, err
}

func (d *Database) CountUserMessagesByType(sessionID, userID uuid.UUID) (map[string]int64, error) {
	var rows []struct {
		Type  string
		Count int64
	}
	err := d.db.Model(&models.Message{}).
		Select("type, COUNT(*) AS count").
		Where("session_id = ? AND author_id = ? AND is_deleted = ?", sessionID, userID, false).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Type] = r.Count
	}
	return counts, nil
}

// CountRecentDistinctAuthors считает авторов за окно недавней активности.
// Удалённые сообщения тоже учитываются: интересует активность, а не контент.
func (d *Database) CountRecentDistinctAuthors(sessionID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := d.db.Model(&models.Message{}).
		Where("session_id = ? AND created_at >= ?", sessionID, since).
		Distinct("author_id").
		Count(&count).Error
	return count, err
}
