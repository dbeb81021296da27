package services

import (
	"math/rand"
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
	joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	joinCodeLength   = 6

	// Сколько раз перегенерируем код при коллизии, прежде чем сдаться
	joinCodeMaxAttempts = 10
)

type SessionService struct {
	db  *database.Database
	log *zap.Logger
}

func NewSessionService(db *database.Database, log *zap.Logger) *SessionService {
	return &SessionService{db: db, log: log}
}

// GenerateJoinCode возвращает случайный 6-символьный код [A-Z0-9]
func GenerateJoinCode() string {
	code := make([]byte, joinCodeLength)
	for i := range code {
		code[i] = joinCodeAlphabet[rand.Intn(len(joinCodeAlphabet))]
	}
	return string(code)
}

type CreateSessionInput struct {
	Title       string
	ModuleCode  string
	Description string
}

// Create создает сессию с уникальным кодом. Коллизии кода перегенерируются
// внутри и до вызывающего не доходят.
func (s *SessionService) Create(p policy.Principal, in CreateSessionInput) (*models.Session, error) {
	if p.Role != models.RoleLecturer {
		return nil, errs.Forbidden("only lecturers can create sessions")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, errs.Validation("session title is required")
	}

	for attempt := 0; attempt < joinCodeMaxAttempts; attempt++ {
		code := GenerateJoinCode()
		exists, err := s.db.JoinCodeExists(code)
		if err != nil {
			return nil, errs.Internal("failed to create session")
		}
		if exists {
			continue
		}

		session := &models.Session{
			Title:       strings.TrimSpace(in.Title),
			JoinCode:    code,
			LecturerID:  p.UserID,
			ModuleCode:  in.ModuleCode,
			Description: in.Description,
			Status:      models.SessionActive,
			StartTime:   time.Now(),
		}
		if err := s.db.CreateSession(session); err != nil {
			// Код мог занять конкурентный Create между проверкой и вставкой
			s.log.Warn("session insert failed, retrying with fresh code",
				zap.String("join_code", code), zap.Error(err))
			continue
		}

		s.log.Info("session created",
			zap.String("session_id", session.ID.String()),
			zap.String("join_code", session.JoinCode),
			zap.String("lecturer_id", p.UserID.String()))
		return session, nil
	}

	return nil, errs.Internal("could not allocate a unique join code")
}

// JoinByCode вступает в активную сессию по коду. Повторное вступление
// идемпотентно: возвращается существующее членство.
func (s *SessionService) JoinByCode(p policy.Principal, joinCode string) (*models.Session, *models.Membership, error) {
	joinCode = strings.ToUpper(strings.TrimSpace(joinCode))
	if joinCode == "" {
		return nil, nil, errs.Validation("join code is required")
	}

	session, err := s.db.FindActiveSessionByCode(joinCode)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil, errs.NotFound("session not found or has ended")
		}
		return nil, nil, errs.Internal("failed to join session")
	}

	membership, err := s.Join(p.UserID, session.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, membership, nil
}

// Join создает членство (userID, sessionID), если его еще нет
func (s *SessionService) Join(userID, sessionID uuid.UUID) (*models.Membership, error) {
	existing, err := s.db.GetMembership(userID, sessionID)
	if err == nil {
		return existing, nil
	}
	if !database.IsNotFound(err) {
		return nil, errs.Internal("failed to join session")
	}

	m := &models.Membership{
		UserID:    userID,
		SessionID: sessionID,
		JoinedAt:  time.Now(),
	}
	if err := s.db.CreateMembership(m); err != nil {
		// Гонка двух одновременных join: уникальный индекс пропустил одного,
		// второй перечитывает созданную запись — оба вызова успешны
		existing, ferr := s.db.GetMembership(userID, sessionID)
		if ferr != nil {
			return nil, errs.Internal("failed to join session")
		}
		return existing, nil
	}

	s.log.Info("membership created",
		zap.String("user_id", userID.String()),
		zap.String("session_id", sessionID.String()))
	return m, nil
}

// MySessions: лекторы видят созданные ими сессии, студенты — те, куда вступали
func (s *SessionService) MySessions(p policy.Principal) ([]models.Session, error) {
	var (
		sessions []models.Session
		err      error
	)
	if p.Role == models.RoleLecturer {
		sessions, err = s.db.GetLecturerSessions(p.UserID)
	} else {
		sessions, err = s.db.GetMemberSessions(p.UserID)
	}
	if err != nil {
		return nil, errs.Internal("failed to fetch sessions")
	}
	return sessions, nil
}

// SessionDetail — сессия с числом участников и признаком владения
type SessionDetail struct {
	Session     *models.Session
	MemberCount int64
	IsOwner     bool
}

// Get возвращает сессию участнику или владельцу
func (s *SessionService) Get(p policy.Principal, sessionID uuid.UUID) (*SessionDetail, error) {
	session, _, err := s.RequireAccess(p, sessionID)
	if err != nil {
		return nil, err
	}

	count, err := s.db.CountMembers(sessionID)
	if err != nil {
		return nil, errs.Internal("failed to fetch session")
	}

	return &SessionDetail{
		Session:     session,
		MemberCount: count,
		IsOwner:     session.LecturerID == p.UserID,
	}, nil
}

// End завершает сессию; переход active -> ended происходит ровно один раз
func (s *SessionService) End(p policy.Principal, sessionID uuid.UUID) (*models.Session, error) {
	session, err := s.db.GetSession(sessionID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errs.NotFound("session not found")
		}
		return nil, errs.Internal("failed to end session")
	}

	if session.LecturerID != p.UserID {
		return nil, errs.Forbidden("you are not the owner of this session")
	}

	now := time.Now()
	if err := s.db.EndSession(sessionID, now); err != nil {
		if database.IsNotFound(err) {
			return nil, errs.State("session is not active")
		}
		return nil, errs.Internal("failed to end session")
	}

	session.Status = models.SessionEnded
	session.EndTime = &now
	s.log.Info("session ended", zap.String("session_id", sessionID.String()))
	return session, nil
}

// Members — список участников сессии, доступен только её лектору
func (s *SessionService) Members(p policy.Principal, sessionID uuid.UUID) ([]models.Membership, error) {
	session, err := s.db.GetSession(sessionID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errs.NotFound("session not found")
		}
		return nil, errs.Internal("failed to fetch members")
	}
	if session.LecturerID != p.UserID {
		return nil, errs.Forbidden("access denied")
	}

	members, err := s.db.ListMembers(sessionID)
	if err != nil {
		return nil, errs.Internal("failed to fetch members")
	}
	return members, nil
}

// RequireAccess проверяет, что principal — участник или лектор сессии.
// Общая проверка чтения для сообщений и аналитики.
func (s *SessionService) RequireAccess(p policy.Principal, sessionID uuid.UUID) (*models.Session, bool, error) {
	session, err := s.db.GetSession(sessionID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, false, errs.NotFound("session not found")
		}
		return nil, false, errs.Internal("failed to fetch session")
	}

	isMember, err := s.db.IsMember(p.UserID, sessionID)
	if err != nil {
		return nil, false, errs.Internal("failed to fetch session")
	}

	if !isMember && session.LecturerID != p.UserID {
		return nil, false, errs.Forbidden("you are not a member of this session")
	}
	return session, isMember, nil
}

// AuthorizeRoomJoin — единая проверка входа в комнату для realtime пути.
// При успехе гарантирует членство (кроме лектора собственной сессии).
func (s *SessionService) AuthorizeRoomJoin(p policy.Principal, sessionID uuid.UUID) (*models.Session, error) {
	session, err := s.db.GetSession(sessionID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errs.NotFound("session not found")
		}
		return nil, errs.Internal("failed to join session")
	}

	isMember, err := s.db.IsMember(p.UserID, sessionID)
	if err != nil {
		return nil, errs.Internal("failed to join session")
	}

	if err := policy.CanJoinRoom(p, session, isMember).Err(); err != nil {
		return nil, err
	}

	// Лектор своей сессии входит без членства
	if !isMember && session.LecturerID != p.UserID {
		if _, err := s.Join(p.UserID, sessionID); err != nil {
			return nil, err
		}
	}
	return session, nil
}
