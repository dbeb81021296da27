// Package policy — чистые предикаты доступа. Единственное место, где
// решается «можно ли»: и HTTP handlers, и realtime путь ходят сюда
// через сервисный слой, проверки нигде не дублируются.
package policy

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/lecture-live/internal/errs"
	"github.com/thereayou/lecture-live/internal/models"
)

// EditWindow — окно, в течение которого автор может править сообщение
const EditWindow = 5 * time.Minute

// Principal — кто выполняет действие
type Principal struct {
	UserID uuid.UUID
	Role   string
}

// Decision — результат проверки: разрешение либо отказ со стабильной
// причиной и видом ошибки.
type Decision struct {
	Allowed bool
	Reason  string
	Kind    errs.Kind
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(kind errs.Kind, reason string) Decision {
	return Decision{Allowed: false, Reason: reason, Kind: kind}
}

// Err превращает отказ в доменную ошибку; для разрешений возвращает nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return errs.New(d.Kind, d.Reason)
}

// CanJoinRoom: лектор сессии, существующий участник, либо любой
// аутентифицированный пользователь активной сессии (membership создастся).
func CanJoinRoom(p Principal, session *models.Session, isMember bool) Decision {
	if p.UserID == session.LecturerID || isMember {
		return allow()
	}
	if !session.IsActive() {
		return deny(errs.KindState, "session is not active")
	}
	return allow()
}

// CanSend: сессия активна и отправитель — лектор либо участник.
func CanSend(p Principal, session *models.Session, isMember bool) Decision {
	if !session.IsActive() {
		return deny(errs.KindState, "cannot send messages to a session that is not active")
	}
	if p.UserID != session.LecturerID && !isMember {
		return deny(errs.KindForbidden, "you must join the session first")
	}
	return allow()
}

// CanEdit: только автор, сообщение не удалено, окно редактирования не истекло.
func CanEdit(p Principal, message *models.Message, now time.Time) Decision {
	if p.UserID != message.AuthorID {
		return deny(errs.KindForbidden, "you can only edit your own messages")
	}
	if message.IsDeleted {
		return deny(errs.KindState, "cannot edit a deleted message")
	}
	if now.Sub(message.CreatedAt) > EditWindow {
		return deny(errs.KindState, "messages can only be edited within 5 minutes of posting")
	}
	return allow()
}

// CanDelete: автор сообщения либо лектор сессии.
func CanDelete(p Principal, message *models.Message, session *models.Session) Decision {
	if p.UserID == message.AuthorID || p.UserID == session.LecturerID {
		return allow()
	}
	return deny(errs.KindForbidden, "you can only delete your own messages")
}

// CanPin: только лектор сессии; окно редактирования не применяется.
func CanPin(p Principal, session *models.Session) Decision {
	if p.UserID != session.LecturerID {
		return deny(errs.KindForbidden, "only the lecturer can pin messages")
	}
	return allow()
}
