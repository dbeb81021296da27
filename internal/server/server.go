package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/thereayou/lecture-live/internal/config"
	"github.com/thereayou/lecture-live/internal/database"
	"github.com/thereayou/lecture-live/internal/handlers"
	"github.com/thereayou/lecture-live/internal/realtime"
	"github.com/thereayou/lecture-live/internal/services"
	"github.com/thereayou/lecture-live/pkg/auth"
)

type Server struct {
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
	Hub        *realtime.Hub

	cfg *config.Config
	log *zap.Logger
}

func NewServer(cfg *config.Config, log *zap.Logger) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	dbConn, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(redisOpts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	hub := realtime.NewHub(log)
	go hub.Run()

	sessionSvc := services.NewSessionService(dbConn, log)
	messageSvc := services.NewMessageService(dbConn, sessionSvc, log)
	analyticsSvc := services.NewAnalyticsService(dbConn, rdb, log)

	eventRouter := handlers.NewEventRouter(sessionSvc, messageSvc, hub, log)

	authH := handlers.NewAuthHandler(dbConn, jwtMgr, rdb)
	sessionH := handlers.NewSessionHandler(sessionSvc, hub)
	messageH := handlers.NewMessageHandler(messageSvc)
	analyticsH := handlers.NewAnalyticsHandler(analyticsSvc)
	wsH := handlers.NewWebSocketHandler(hub, eventRouter, dbConn, log)

	router := gin.Default()
	APIEndpoints(router, jwtMgr, rdb, authH, sessionH, messageH, analyticsH, wsH)

	return &Server{
		Router:     router,
		DB:         dbConn,
		Redis:      rdb,
		JWTManager: jwtMgr,
		Hub:        hub,
		cfg:        cfg,
		log:        log,
	}, nil
}

func (s *Server) Run() error {
	s.log.Info("server starting", zap.String("port", s.cfg.Port))
	defer s.Hub.Stop()
	return s.Router.Run(":" + s.cfg.Port)
}
