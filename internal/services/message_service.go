package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/lecture-live/internal/database"
	"github.com/thereayou/lecture-live/internal/errs"
	"github.com/thereayou/lecture-live/internal/models"
	"github.com/thereayou/lecture-live/internal/policy"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// MessageService — мутации и чтение лога сообщений. Все проверки доступа
// идут через policy; HTTP и realtime пути вызывают одни и те же методы.
type MessageService struct {
	db       *database.Database
	sessions *SessionService
	log      *zap.Logger
}

func NewMessageService(db *database.Database, sessions *SessionService, log *zap.Logger) *MessageService {
	return &MessageService{db: db, sessions: sessions, log: log}
}

// Send валидирует, дописывает сообщение в лог и увеличивает счетчик
// участника. Лектор без членства счетчика не имеет — инкремент пропускается.
func (s *MessageService) Send(p policy.Principal, sessionID uuid.UUID, text, msgType string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errs.Validation("message text is required")
	}
	if len(text) > models.MaxMessageLength {
		return nil, errs.Validation("message text exceeds 2000 characters")
	}
	if !models.ValidMessageType(msgType) {
		return nil, errs.Validation("invalid message type, must be QUESTION, COMMENT or CONFUSION")
	}

	session, err := s.db.GetSession(sessionID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errs.NotFound("session not found")
		}
		return nil, errs.Internal("failed to send message")
	}

	isMember, err := s.db.IsMember(p.UserID, sessionID)
	if err != nil {
		return nil, errs.Internal("failed to send message")
	}

	if err := policy.CanSend(p, session, isMember).Err(); err != nil {
		return nil, err
	}

	message := &models.Message{
		SessionID: sessionID,
		AuthorID:  p.UserID,
		Text:      text,
		Type:      msgType,
		CreatedAt: time.Now(),
	}
	if err := s.db.SaveMessage(message); err != nil {
		s.log.Error("failed to save message",
			zap.String("session_id", sessionID.String()), zap.Error(err))
		return nil, errs.Internal("failed to send message")
	}

	if isMember {
		if err := s.db.IncrementMessageCount(p.UserID, sessionID); err != nil {
			s.log.Error("failed to increment message count",
				zap.String("user_id", p.UserID.String()), zap.Error(err))
		}
	}

	// Перечитываем с автором, чтобы и HTTP ответ, и broadcast несли
	// полную идентичность отправителя
	full, err := s.db.GetMessage(message.ID)
	if err != nil {
		return nil, errs.Internal("failed to send message")
	}
	return full, nil
}

// List возвращает страницу неудалённых сообщений от старых к новым.
// hasMore = true ровно тогда, когда страница заполнена целиком.
func (s *MessageService) List(p policy.Principal, sessionID uuid.UUID, limit int, beforeID *uint64) ([]models.Message, bool, error) {
	if _, _, err := s.sessions.RequireAccess(p, sessionID); err != nil {
		return nil, false, err
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	messages, err := s.db.GetSessionMessages(sessionID, limit, beforeID)
	if err != nil {
		return nil, false, errs.Internal("failed to fetch messages")
	}
	return messages, len(messages) == limit, nil
}

// Edit правит текст собственного сообщения внутри окна редактирования
func (s *MessageService) Edit(p policy.Principal, messageID uint64, newText string) (*models.Message, error) {
	newText = strings.TrimSpace(newText)
	if newText == "" {
		return nil, errs.Validation("message text is required")
	}
	if len(newText) > models.MaxMessageLength {
		return nil, errs.Validation("message text exceeds 2000 characters")
	}

	message, err := s.db.GetMessage(messageID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errs.NotFound("message not found")
		}
		return nil, errs.Internal("failed to edit message")
	}

	if err := policy.CanEdit(p, message, time.Now()).Err(); err != nil {
		return nil, err
	}

	if err := s.db.UpdateMessageText(messageID, newText, time.Now()); err != nil {
		if database.IsNotFound(err) {
			// Удаление обогнало редактирование: is_deleted доминирует
			return nil, errs.State("cannot edit a deleted message")
		}
		return nil, errs.Internal("failed to edit message")
	}

	full, err := s.db.GetMessage(messageID)
	if err != nil {
		return nil, errs.Internal("failed to edit message")
	}
	return full, nil
}

// Delete мягко удаляет сообщение; повторное удаление — успешный no-op
func (s *MessageService) Delete(p policy.Principal, messageID uint64) (*models.Message, error) {
	message, err := s.db.GetMessage(messageID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errs.NotFound("message not found")
		}
		return nil, errs.Internal("failed to delete message")
	}

	session, err := s.db.GetSession(message.SessionID)
	if err != nil {
		return nil, errs.Internal("failed to delete message")
	}

	if err := policy.CanDelete(p, message, session).Err(); err != nil {
		return nil, err
	}

	if err := s.db.SoftDeleteMessage(messageID); err != nil {
		return nil, errs.Internal("failed to delete message")
	}
	message.IsDeleted = true
	return message, nil
}

// TogglePin инвертирует закрепление, возвращает сообщение и новое состояние
func (s *MessageService) TogglePin(p policy.Principal, messageID uint64) (*models.Message, bool, error) {
	message, err := s.db.GetMessage(messageID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, false, errs.NotFound("message not found")
		}
		return nil, false, errs.Internal("failed to toggle pin")
	}

	session, err := s.db.GetSession(message.SessionID)
	if err != nil {
		return nil, false, errs.Internal("failed to toggle pin")
	}

	if err := policy.CanPin(p, session).Err(); err != nil {
		return nil, false, err
	}

	pinned, err := s.db.ToggleMessagePin(messageID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, false, errs.State("cannot pin a deleted message")
		}
		return nil, false, errs.Internal("failed to toggle pin")
	}
	message.IsPinned = pinned
	return message, pinned, nil
}

// Pinned — закреплённые сообщения сессии, новые первыми
func (s *MessageService) Pinned(p policy.Principal, sessionID uuid.UUID) ([]models.Message, error) {
	if _, _, err := s.sessions.RequireAccess(p, sessionID); err != nil {
		return nil, err
	}

	messages, err := s.db.GetPinnedMessages(sessionID)
	if err != nil {
		return nil, errs.Internal("failed to fetch pinned messages")
	}
	return messages, nil
}
