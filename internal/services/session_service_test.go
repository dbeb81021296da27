package services

import (
	"testing"

	"github.com/thereayou/lecture-live/internal/errs"
	"github.com/thereayou/lecture-live/internal/models"
)

func TestGenerateJoinCode_Format(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateJoinCode()
		if len(code) != 6 {
			t.Fatalf("expected 6 characters, got %q", code)
		}
		for _, c := range code {
			if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
				t.Fatalf("unexpected character %q in code %q", c, code)
			}
		}
		seen[code] = true
	}
	// 100 кодов из 36^6 — коллапс в одно значение означает сломанный генератор
	if len(seen) < 2 {
		t.Fatalf("generator produced a single code %d times", len(seen))
	}
}

func TestCreateSession_LecturerOnly(t *testing.T) {
	db := openTestDB(t)
	svc := NewSessionService(db, testLogger())

	student := seedUser(t, db, models.RoleStudent)

	_, err := svc.Create(asPrincipal(student), CreateSessionInput{Title: "Algorithms"})
	if !errs.IsKind(err, errs.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateSession_StartsActiveWithCode(t *testing.T) {
	db := openTestDB(t)
	svc := NewSessionService(db, testLogger())

	lecturer := seedUser(t, db, models.RoleLecturer)

	session, err := svc.Create(asPrincipal(lecturer), CreateSessionInput{
		Title:      "  Algorithms  ",
		ModuleCode: "CS201",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if session.Title != "Algorithms" {
		t.Fatalf("title not trimmed: %q", session.Title)
	}
	if session.Status != models.SessionActive {
		t.Fatalf("expected active session, got %q", session.Status)
	}
	if len(session.JoinCode) != 6 {
		t.Fatalf("bad join code %q", session.JoinCode)
	}
}

func TestCreateSession_EmptyTitle(t *testing.T) {
	db := openTestDB(t)
	svc := NewSessionService(db, testLogger())

	lecturer := seedUser(t, db, models.RoleLecturer)

	_, err := svc.Create(asPrincipal(lecturer), CreateSessionInput{Title: "   "})
	if !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestJoinByCode_Idempotent(t *testing.T) {
	db := openTestDB(t)
	svc := NewSessionService(db, testLogger())

	lecturer := seedUser(t, db, models.RoleLecturer)
	student := seedUser(t, db, models.RoleStudent)
	session := seedSession(t, db, lecturer.ID, models.SessionActive)

	_, first, err := svc.JoinByCode(asPrincipal(student), session.JoinCode)
	if err != nil {
		t.Fatalf("first join: %v", err)
	}
	_, second, err := svc.JoinByCode(asPrincipal(student), "  "+session.JoinCode+"  ")
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("repeat join created a new membership: %d != %d", first.ID, second.ID)
	}

	count, err := db.CountMembers(session.ID)
	if err != nil {
		t.Fatalf("count members: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 membership, got %d", count)
	}
}

func TestJoinByCode_EndedSession(t *testing.T) {
	db := openTestDB(t)
	svc := NewSessionService(db, testLogger())

	lecturer := seedUser(t, db, models.RoleLecturer)
	student := seedUser(t, db, models.RoleStudent)
	session := seedSession(t, db, lecturer.ID, models.SessionEnded)

	_, _, err := svc.JoinByCode(asPrincipal(student), session.JoinCode)
	if !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("expected not found for ended session, got %v", err)
	}
}

func TestEndSession_OnlyOnce(t *testing.T) {
	db := openTestDB(t)
	svc := NewSessionService(db, testLogger())

	lecturer := seedUser(t, db, models.RoleLecturer)
	session := seedSession(t, db, lecturer.ID, models.SessionActive)

	ended, err := svc.End(asPrincipal(lecturer), session.ID)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if ended.Status != models.SessionEnded || ended.EndTime == nil {
		t.Fatalf("session not marked ended: %+v", ended)
	}

	_, err = svc.End(asPrincipal(lecturer), session.ID)
	if !errs.IsKind(err, errs.KindState) {
		t.Fatalf("expected state error on double end, got %v", err)
	}
}

func TestEndSession_NotOwner(t *testing.T) {
	db := openTestDB(t)
	svc := NewSessionService(db, testLogger())

	lecturer := seedUser(t, db, models.RoleLecturer)
	other := seedUser(t, db, models.RoleLecturer)
	session := seedSession(t, db, lecturer.ID, models.SessionActive)

	_, err := svc.End(asPrincipal(other), session.ID)
	if !errs.IsKind(err, errs.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestMySessions_ByRole(t *testing.T) {
	db := openTestDB(t)
	svc := NewSessionService(db, testLogger())

	lecturer := seedUser(t, db, models.RoleLecturer)
	student := seedUser(t, db, models.RoleStudent)
	session := seedSession(t, db, lecturer.ID, models.SessionActive)
	seedSession(t, db, lecturer.ID, models.SessionEnded)

	if _, err := svc.Join(student.ID, session.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	mine, err := svc.MySessions(asPrincipal(lecturer))
	if err != nil {
		t.Fatalf("lecturer sessions: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 lecturer sessions, got %d", len(mine))
	}

	joined, err := svc.MySessions(asPrincipal(student))
	if err != nil {
		t.Fatalf("student sessions: %v", err)
	}
	if len(joined) != 1 || joined[0].ID != session.ID {
		t.Fatalf("expected the joined session only, got %d", len(joined))
	}
}

func TestRequireAccess_Stranger(t *testing.T) {
	db := openTestDB(t)
	svc := NewSessionService(db, testLogger())

	lecturer := seedUser(t, db, models.RoleLecturer)
	stranger := seedUser(t, db, models.RoleStudent)
	session := seedSession(t, db, lecturer.ID, models.SessionActive)

	_, _, err := svc.RequireAccess(asPrincipal(stranger), session.ID)
	if !errs.IsKind(err, errs.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAuthorizeRoomJoin_CreatesMembership(t *testing.T) {
	db := openTestDB(t)
	svc := NewSessionService(db, testLogger())

	lecturer := seedUser(t, db, models.RoleLecturer)
	student := seedUser(t, db, models.RoleStudent)
	session := seedSession(t, db, lecturer.ID, models.SessionActive)

	if _, err := svc.AuthorizeRoomJoin(asPrincipal(student), session.ID); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	isMember, err := db.IsMember(student.ID, session.ID)
	if err != nil || !isMember {
		t.Fatalf("membership not created: member=%v err=%v", isMember, err)
	}

	// Лектор своей сессии членства не получает
	if _, err := svc.AuthorizeRoomJoin(asPrincipal(lecturer), session.ID); err != nil {
		t.Fatalf("lecturer authorize: %v", err)
	}
	isMember, err = db.IsMember(lecturer.ID, session.ID)
	if err != nil || isMember {
		t.Fatalf("lecturer should not become a member: member=%v err=%v", isMember, err)
	}
}

func TestAuthorizeRoomJoin_EndedSessionMemberAllowed(t *testing.T) {
	db := openTestDB(t)
	svc := NewSessionService(db, testLogger())

	lecturer := seedUser(t, db, models.RoleLecturer)
	member := seedUser(t, db, models.RoleStudent)
	stranger := seedUser(t, db, models.RoleStudent)
	session := seedSession(t, db, lecturer.ID, models.SessionActive)

	if _, err := svc.Join(member.ID, session.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := svc.End(asPrincipal(lecturer), session.ID); err != nil {
		t.Fatalf("end: %v", err)
	}

	if _, err := svc.AuthorizeRoomJoin(asPrincipal(member), session.ID); err != nil {
		t.Fatalf("member should re-enter an ended session room: %v", err)
	}
	_, err := svc.AuthorizeRoomJoin(asPrincipal(stranger), session.ID)
	if !errs.IsKind(err, errs.KindState) {
		t.Fatalf("expected state error for stranger on ended session, got %v", err)
	}
}
