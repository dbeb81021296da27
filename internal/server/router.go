package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thereayou/lecture-live/internal/handlers"
	"github.com/thereayou/lecture-live/internal/middleware"
	authpkg "github.com/thereayou/lecture-live/pkg/auth"
)

func APIEndpoints(
	r *gin.Engine,
	jwtMgr *authpkg.JWTManager,
	rdb *redis.Client,
	authH *handlers.AuthHandler,
	sessionH *handlers.SessionHandler,
	messageH *handlers.MessageHandler,
	analyticsH *handlers.AnalyticsHandler,
	wsH *handlers.WebSocketHandler,
) {
	authMW := middleware.AuthMiddleware(jwtMgr, rdb)

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth endpoints
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.POST("/logout", authMW, authH.Logout)
		auth.GET("/me", authMW, authH.Me)
	}

	sessions := r.Group("/api/sessions", authMW)
	{
		sessions.POST("", sessionH.Create)
		sessions.POST("/join", sessionH.Join)
		sessions.GET("/my-sessions", sessionH.MySessions)
		sessions.GET("/:id", sessionH.Get)
		sessions.POST("/:id/end", sessionH.End)
		sessions.GET("/:id/members", sessionH.Members)
	}

	// :id — для send/list это sessionID, для остальных — messageID
	messages := r.Group("/api/messages", authMW)
	{
		messages.POST("", messageH.Send)
		messages.GET("/session/:id", messageH.List)
		messages.GET("/session/:id/pinned", messageH.Pinned)
		messages.PUT("/:id", messageH.Edit)
		messages.DELETE("/:id", messageH.Delete)
		messages.POST("/:id/pin", messageH.TogglePin)
	}

	analytics := r.Group("/api/analytics", authMW)
	{
		analytics.GET("/lecturer/:id", analyticsH.Lecturer)
		analytics.GET("/student/:id", analyticsH.Student)
		analytics.GET("/live/:id", analyticsH.Live)
	}

	r.GET("/ws", middleware.WSAuthMiddleware(jwtMgr, rdb), wsH.HandleWebSocket)
}
