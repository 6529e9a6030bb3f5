// Package server
//
// @title Podium API
// @version 1.0
// @description Scheduled debate/presentation/extempore event platform API
// @BasePath /
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	mrand "math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/podiumhq/podium/internal/audit"
	"github.com/podiumhq/podium/internal/auth"
	"github.com/podiumhq/podium/internal/config"
	"github.com/podiumhq/podium/internal/models"
	"github.com/podiumhq/podium/internal/selector"
)

// Server represents the HTTP server
type Server struct {
	router      *gin.Engine
	db          *gorm.DB
	config      *config.Config
	logger      zerolog.Logger
	asynqClient *asynq.Client
	audit       audit.Recorder
	rng         *mrand.Rand
	rngMu       sync.Mutex
	version     string
}

// sampleStudents draws a random sample under the rng lock. rand.Rand is
// not safe for concurrent use across handlers.
func (s *Server) sampleStudents(available []models.Student, count int) []models.Student {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return selector.SelectRandom(available, count, s.rng)
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}

	// The JWT secret lives in the singleton AppConfig row and is generated
	// once, on first boot.
	if err := ensureJWTSecret(db, zlog); err != nil {
		return nil, err
	}

	if err := ensureDefaultEvents(db); err != nil {
		return nil, err
	}

	registerValidators()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.Redis.Address,
	})

	server := &Server{
		db:          db,
		config:      cfg,
		logger:      zlog,
		asynqClient: asynqClient,
		audit:       audit.NewQueueRecorder(asynqClient, zlog),
		rng:         mrand.New(mrand.NewSource(time.Now().UnixNano())),
		version:     version,
	}

	server.setupRouter()

	return server, nil
}

// ensureJWTSecret loads the persisted JWT secret, generating and storing one
// on first boot.
func ensureJWTSecret(db *gorm.DB, zlog zerolog.Logger) error {
	var appConfig models.AppConfig
	err := db.First(&appConfig).Error
	if err == nil {
		auth.InitializeJWT(appConfig.JWTSecret)
		zlog.Debug().Msg("Loaded JWT secret from database")
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("failed to load app config: %w", err)
	}

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	secret := hex.EncodeToString(secretBytes)

	appConfig = models.AppConfig{JWTSecret: secret}
	if err := db.Create(&appConfig).Error; err != nil {
		return fmt.Errorf("failed to persist app config: %w", err)
	}

	auth.InitializeJWT(secret)
	zlog.Info().Msg("Generated new JWT secret")
	return nil
}

// registerValidators adds custom validation tags used by request bindings.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// school grade 1-12
	v.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
		g := fl.Field().Int()
		return g >= 1 && g <= 12
	})

	// one of the four judge score categories
	v.RegisterValidation("judgetype", func(fl validator.FieldLevel) bool {
		return models.ValidJudgeType(fl.Field().String())
	})
}

// initDatabase initializes the database connection with production settings
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	const (
		maxOpenConns      = 8
		maxIdleConns      = 4
		connMaxLifetime   = 300       // seconds
		busyTimeout       = 5000      // ms
		cacheSize         = 10000     // 10MB
		mmapSize          = 134217728 // 128MB
		walAutocheckpoint = 1000      // WAL auto-checkpoint pages
	)

	db, err := gorm.Open(sqlite.Open(cfg.Database.URL), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL mode must be set first for optimal concurrency
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA wal_autocheckpoint=%d", walAutocheckpoint),
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		fmt.Sprintf("PRAGMA cache_size=-%d", cacheSize),
		"PRAGMA foreign_keys=1",
		"PRAGMA temp_store=2",
		fmt.Sprintf("PRAGMA mmap_size=%d", mmapSize),
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	// cors.New panics when every origin source is disabled.
	origins := s.config.HTTP.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// First-run setup and public auth endpoints
	s.router.POST("/api/setup", s.setupFirstAdmin)
	s.router.POST("/auth/signup", s.signup)
	s.router.POST("/auth/login", s.login)

	// Auth endpoints that require a bearer token
	authed := s.router.Group("/auth")
	authed.Use(JWTAuthMiddleware(s.db, s.logger))
	{
		authed.POST("/logout", s.logout)
		authed.GET("/verify", s.verify)
	}

	// Public read-only API (no auth): events, winners, rankings
	public := s.router.Group("/api")
	{
		public.GET("/events", s.listEvents)
		public.GET("/winners", s.listWinners)
		public.GET("/week-rankings/:id", s.getWeekRankings)
	}

	// Authenticated read API
	api := s.router.Group("/api")
	api.Use(JWTAuthMiddleware(s.db, s.logger))
	{
		api.GET("/sessions/:eventId", s.listSessionsByEvent)
		api.GET("/weeks/:sessionId", s.listWeeksBySession)
		api.GET("/weeks-by-event/:eventId", s.listWeeksByEvent)
		api.GET("/week-detail/:id", s.getWeekDetail)
	}

	// Judge scoring API (authenticated; per-week permission checked inside)
	judge := s.router.Group("/judge/api")
	judge.Use(JWTAuthMiddleware(s.db, s.logger))
	{
		judge.GET("/my-assignments", s.listMyAssignments)
		judge.GET("/week/:id/participants", s.listWeekParticipantsForJudge)
		judge.GET("/criteria", s.listCriteriaForJudge)
		judge.POST("/submit-score", s.submitScore)
		judge.GET("/my-scores", s.listMyScores)
	}

	// Admin API (admin only)
	admin := s.router.Group("/admin/api")
	admin.Use(JWTAuthMiddleware(s.db, s.logger))
	admin.Use(AdminOnlyMiddleware(s.logger))
	{
		admin.GET("/students", s.listStudents)
		admin.POST("/students", s.createStudent)
		admin.PUT("/students/:id", s.updateStudent)
		admin.DELETE("/students/:id", s.deleteStudent)
		admin.POST("/import-csv", s.importStudentsCSV)

		admin.GET("/sessions", s.listSessions)
		admin.POST("/sessions", s.createSession)
		admin.PUT("/sessions/:id", s.updateSession)
		admin.DELETE("/sessions/:id", s.deleteSession)
		admin.POST("/sessions/:id/reset-speakers", s.resetSessionSpeakers)

		admin.GET("/weeks", s.listWeeks)
		admin.POST("/weeks", s.createWeek)
		admin.GET("/weeks/:id", s.getWeek)
		admin.PUT("/weeks/:id", s.updateWeek)
		admin.DELETE("/weeks/:id", s.deleteWeek)
		admin.POST("/weeks/:id/add-random-participants", s.addRandomParticipants)
		admin.POST("/weeks/:id/judges", s.assignJudgeToWeek)
		admin.POST("/weeks/:id/criteria", s.assignCriteriaToWeek)

		admin.POST("/participants", s.addParticipant)
		admin.PUT("/participants/:id", s.updateParticipant)
		admin.DELETE("/participants/:id", s.removeParticipant)

		admin.GET("/judges", s.listJudges)
		admin.POST("/judges", s.createJudge)
		admin.PUT("/judges/:id", s.updateJudge)
		admin.DELETE("/judges/:id", s.deleteJudge)
		admin.GET("/judging-criteria", s.listCriteria)

		admin.GET("/judge-permissions", s.listJudgePermissions)
		admin.POST("/judge-permissions", s.grantJudgePermission)
		admin.POST("/judge-permissions/:id/revoke", s.revokeJudgePermission)
		admin.POST("/judge-permissions/:id/reactivate", s.reactivateJudgePermission)

		admin.GET("/results/:weekId", s.getWeekResults)
		admin.GET("/participant/:id/scores", s.getParticipantScores)
		admin.POST("/publish-winners/:weekId", s.publishWinners)
		admin.POST("/unpublish-winners/:weekId", s.unpublishWinners)
		admin.GET("/week/:weekId/publish-status", s.getPublishStatus)

		admin.GET("/audit-logs", s.listAuditLogs)
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "podium-api",
		"version":   s.version,
	})
}

// GetDB returns the database connection for use by workers
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Router returns the configured gin engine, used by handler tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := ":" + s.config.HTTP.Port

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       300 * time.Second,
	}

	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	if err := s.asynqClient.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Error closing Asynq client")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")

	// Close database connection to flush WAL writes
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}

	return nil
}
