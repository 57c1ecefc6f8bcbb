package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"leadmonitor/internal/handler"
	"leadmonitor/internal/middleware"
	"leadmonitor/internal/repository"
	"leadmonitor/internal/scheduler"
	"leadmonitor/internal/service"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	logger *zap.Logger
}

// NewServer wires the dashboard/collector API. baseCtx is the process
// context handed to operator-started jobs.
func NewServer(
	db *sqlx.DB,
	sched *scheduler.Scheduler,
	authService service.AuthService,
	baseCtx context.Context,
	logger *zap.Logger,
) *Server {
	router := gin.Default()

	// CORS: the dashboard frontend is served from another origin.
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s := &Server{
		router: router,
		db:     db,
		logger: logger,
	}

	s.setupRoutes(sched, authService, baseCtx)

	return s
}

func (s *Server) setupRoutes(sched *scheduler.Scheduler, authService service.AuthService, baseCtx context.Context) {
	leadRepo := repository.NewLeadRepository(s.db, s.logger)
	convoRepo := repository.NewConversationRepository(s.db, s.logger)
	settingsRepo := repository.NewSettingsRepository(s.db, s.logger)
	seenStore := repository.NewSeenStore(s.db, s.logger)

	leadHandler := handler.NewLeadHandler(leadRepo, s.logger)
	convoHandler := handler.NewConversationHandler(convoRepo, seenStore, s.logger)
	collectorHandler := handler.NewCollectorHandler(leadRepo, convoRepo, s.logger)
	settingsHandler := handler.NewSettingsHandler(settingsRepo, s.logger)
	controlHandler := handler.NewControlHandler(sched, baseCtx, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.logger)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	s.router.POST("/api/auth/login", authHandler.Login)

	// Open read/ingest surface: the remote engine syncs here and the
	// dashboard lists from here.
	api := s.router.Group("/api")
	{
		api.GET("/leads", leadHandler.GetAllLeads)
		api.GET("/conversations", convoHandler.GetAllConversations)
		api.GET("/conversations/:username", convoHandler.GetConversation)
		api.GET("/settings/monitored_subreddits", settingsHandler.GetMonitoredSubreddits)
		api.GET("/monitor/status", controlHandler.Status)
		api.POST("/collector/lead", collectorHandler.CollectLead)
		api.POST("/collector/conversation", collectorHandler.CollectConversation)
	}

	// Operator mutations require a JWT.
	authRequired := s.router.Group("/api")
	authRequired.Use(middleware.AuthMiddleware(authService.JWTSecret(), s.logger))
	{
		authRequired.PATCH("/leads/:id/status", leadHandler.UpdateLeadStatus)
		authRequired.POST("/conversations/:username/takeover", convoHandler.ToggleTakeover)
		authRequired.PUT("/settings/monitored_subreddits", settingsHandler.UpdateMonitoredSubreddits)
		authRequired.POST("/monitor/start", controlHandler.StartMonitor)
		authRequired.POST("/monitor/stop", controlHandler.StopMonitor)
		authRequired.POST("/monitor/scan", controlHandler.ScanNow)
	}
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Run(addr string) error {
	s.logger.Info("Server starting", zap.String("addr", addr))
	return s.router.Run(addr)
}
