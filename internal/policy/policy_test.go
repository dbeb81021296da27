package policy

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/lecture-live/internal/errs"
	"github.com/thereayou/lecture-live/internal/models"
)

func activeSession(lecturerID uuid.UUID) *models.Session {
	return &models.Session{ID: uuid.New(), LecturerID: lecturerID, Status: models.SessionActive}
}

func TestCanJoinRoom(t *testing.T) {
	lecturer := Principal{UserID: uuid.New(), Role: models.RoleLecturer}
	member := Principal{UserID: uuid.New(), Role: models.RoleStudent}
	stranger := Principal{UserID: uuid.New(), Role: models.RoleStudent}

	session := activeSession(lecturer.UserID)

	if !CanJoinRoom(lecturer, session, false).Allowed {
		t.Fatalf("lecturer must enter own session room")
	}
	if !CanJoinRoom(stranger, session, false).Allowed {
		t.Fatalf("any authenticated user may enter an active session room")
	}

	session.Status = models.SessionEnded
	if !CanJoinRoom(member, session, true).Allowed {
		t.Fatalf("member must re-enter an ended session room")
	}
	d := CanJoinRoom(stranger, session, false)
	if d.Allowed || d.Kind != errs.KindState {
		t.Fatalf("stranger on ended session: %+v", d)
	}
}

func TestCanSend(t *testing.T) {
	lecturer := Principal{UserID: uuid.New(), Role: models.RoleLecturer}
	member := Principal{UserID: uuid.New(), Role: models.RoleStudent}
	stranger := Principal{UserID: uuid.New(), Role: models.RoleStudent}

	session := activeSession(lecturer.UserID)

	if !CanSend(lecturer, session, false).Allowed {
		t.Fatalf("lecturer sends without membership")
	}
	if !CanSend(member, session, true).Allowed {
		t.Fatalf("member sends to active session")
	}
	if d := CanSend(stranger, session, false); d.Allowed || d.Kind != errs.KindForbidden {
		t.Fatalf("stranger: %+v", d)
	}

	session.Status = models.SessionEnded
	if d := CanSend(member, session, true); d.Allowed || d.Kind != errs.KindState {
		t.Fatalf("ended session: %+v", d)
	}
}

func TestCanEdit(t *testing.T) {
	author := Principal{UserID: uuid.New(), Role: models.RoleStudent}
	other := Principal{UserID: uuid.New(), Role: models.RoleLecturer}
	now := time.Now()

	fresh := &models.Message{AuthorID: author.UserID, CreatedAt: now.Add(-time.Minute)}
	if !CanEdit(author, fresh, now).Allowed {
		t.Fatalf("author edits within window")
	}
	if d := CanEdit(other, fresh, now); d.Allowed || d.Kind != errs.KindForbidden {
		t.Fatalf("non-author: %+v", d)
	}

	// Ровно на границе окна — ещё можно
	border := &models.Message{AuthorID: author.UserID, CreatedAt: now.Add(-EditWindow)}
	if !CanEdit(author, border, now).Allowed {
		t.Fatalf("edit at exactly the window boundary must be allowed")
	}

	stale := &models.Message{AuthorID: author.UserID, CreatedAt: now.Add(-EditWindow - time.Second)}
	if d := CanEdit(author, stale, now); d.Allowed || d.Kind != errs.KindState {
		t.Fatalf("stale message: %+v", d)
	}

	deleted := &models.Message{AuthorID: author.UserID, CreatedAt: now, IsDeleted: true}
	if d := CanEdit(author, deleted, now); d.Allowed || d.Kind != errs.KindState {
		t.Fatalf("deleted message: %+v", d)
	}
}

func TestCanDelete(t *testing.T) {
	lecturer := Principal{UserID: uuid.New(), Role: models.RoleLecturer}
	author := Principal{UserID: uuid.New(), Role: models.RoleStudent}
	other := Principal{UserID: uuid.New(), Role: models.RoleStudent}

	session := activeSession(lecturer.UserID)
	msg := &models.Message{AuthorID: author.UserID, SessionID: session.ID}

	if !CanDelete(author, msg, session).Allowed {
		t.Fatalf("author deletes own message")
	}
	if !CanDelete(lecturer, msg, session).Allowed {
		t.Fatalf("lecturer deletes any message in own session")
	}
	if d := CanDelete(other, msg, session); d.Allowed || d.Kind != errs.KindForbidden {
		t.Fatalf("other student: %+v", d)
	}
}

func TestCanPin(t *testing.T) {
	lecturer := Principal{UserID: uuid.New(), Role: models.RoleLecturer}
	student := Principal{UserID: uuid.New(), Role: models.RoleStudent}

	session := activeSession(lecturer.UserID)

	if !CanPin(lecturer, session).Allowed {
		t.Fatalf("lecturer pins")
	}
	if d := CanPin(student, session); d.Allowed || d.Kind != errs.KindForbidden {
		t.Fatalf("student: %+v", d)
	}

	// Статус сессии для закрепления не важен
	session.Status = models.SessionEnded
	if !CanPin(lecturer, session).Allowed {
		t.Fatalf("lecturer pins after session ended")
	}
}
