package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/lecture-live/internal/errs"
	"github.com/thereayou/lecture-live/internal/middleware"
	"github.com/thereayou/lecture-live/internal/services"
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Lecturer — сводка по сессии для её владельца
func (h *AnalyticsHandler) Lecturer(c *gin.Context) {
	p := middleware.Principal(c)

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, errs.Validation("invalid session id"))
		return
	}

	analytics, err := h.analytics.Lecturer(p, sessionID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "analytics": analytics})
}

// Student — персональная статистика участника
func (h *AnalyticsHandler) Student(c *gin.Context) {
	p := middleware.Principal(c)

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, errs.Validation("invalid session id"))
		return
	}

	analytics, err := h.analytics.Student(p, sessionID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "analytics": analytics})
}

// Live — снимок живой статистики для обеих ролей
func (h *AnalyticsHandler) Live(c *gin.Context) {
	p := middleware.Principal(c)

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, errs.Validation("invalid session id"))
		return
	}

	stats, err := h.analytics.Live(p, sessionID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "liveStats": stats})
}
