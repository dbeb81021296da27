package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/lecture-live/internal/errs"
	"github.com/thereayou/lecture-live/internal/middleware"
	"github.com/thereayou/lecture-live/internal/models"
	"github.com/thereayou/lecture-live/internal/realtime"
	"github.com/thereayou/lecture-live/internal/services"
)

type SessionHandler struct {
	sessions *services.SessionService
	hub      *realtime.Hub
}

func NewSessionHandler(sessions *services.SessionService, hub *realtime.Hub) *SessionHandler {
	return &SessionHandler{sessions: sessions, hub: hub}
}

// Create создает сессию (только лектор)
func (h *SessionHandler) Create(c *gin.Context) {
	p := middleware.Principal(c)

	var req struct {
		Title       string `json:"title" binding:"required"`
		ModuleCode  string `json:"moduleCode"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errs.Validation(err.Error()))
		return
	}

	session, err := h.sessions.Create(p, services.CreateSessionInput{
		Title:       req.Title,
		ModuleCode:  req.ModuleCode,
		Description: req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "session created successfully",
		"session": formatSessionResponse(session),
	})
}

// Join вступает в активную сессию по коду; повторный join идемпотентен
func (h *SessionHandler) Join(c *gin.Context) {
	p := middleware.Principal(c)

	var req struct {
		JoinCode string `json:"joinCode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errs.Validation(err.Error()))
		return
	}

	session, _, err := h.sessions.JoinByCode(p, req.JoinCode)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "successfully joined session",
		"session": formatSessionResponse(session),
	})
}

// MySessions — список сессий текущего пользователя
func (h *SessionHandler) MySessions(c *gin.Context) {
	p := middleware.Principal(c)

	sessions, err := h.sessions.MySessions(p)
	if err != nil {
		fail(c, err)
		return
	}

	result := make([]gin.H, len(sessions))
	for i := range sessions {
		result[i] = formatSessionResponse(&sessions[i])
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sessions": result})
}

// Get — детали сессии для участника или владельца
func (h *SessionHandler) Get(c *gin.Context) {
	p := middleware.Principal(c)

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, errs.Validation("invalid session id"))
		return
	}

	detail, err := h.sessions.Get(p, sessionID)
	if err != nil {
		fail(c, err)
		return
	}

	response := formatSessionResponse(detail.Session)
	response["memberCount"] = detail.MemberCount
	response["isOwner"] = detail.IsOwner
	response["presentCount"] = h.hub.PresentCount(sessionID)

	c.JSON(http.StatusOK, gin.H{"success": true, "session": response})
}

// End завершает сессию (только владелец)
func (h *SessionHandler) End(c *gin.Context) {
	p := middleware.Principal(c)

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, errs.Validation("invalid session id"))
		return
	}

	session, err := h.sessions.End(p, sessionID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "session ended successfully",
		"session": gin.H{
			"id":      session.ID,
			"status":  session.Status,
			"endTime": session.EndTime,
		},
	})
}

// Members — список участников с их счетчиками (только лектор)
func (h *SessionHandler) Members(c *gin.Context) {
	p := middleware.Principal(c)

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, errs.Validation("invalid session id"))
		return
	}

	members, err := h.sessions.Members(p, sessionID)
	if err != nil {
		fail(c, err)
		return
	}

	result := make([]gin.H, len(members))
	for i, m := range members {
		result[i] = gin.H{
			"id":           m.UserID,
			"displayName":  m.User.DisplayName,
			"email":        m.User.Email,
			"joinedAt":     m.JoinedAt,
			"messageCount": m.MessageCount,
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "members": result})
}

func formatSessionResponse(s *models.Session) gin.H {
	response := gin.H{
		"id":          s.ID,
		"title":       s.Title,
		"joinCode":    s.JoinCode,
		"moduleCode":  s.ModuleCode,
		"description": s.Description,
		"status":      s.Status,
		"startTime":   s.StartTime,
		"endTime":     s.EndTime,
	}
	if s.Lecturer.ID != uuid.Nil {
		response["lecturer"] = s.Lecturer.DisplayName
	}
	return response
}
