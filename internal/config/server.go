package config

import (
	"PostureIQ/database/postgres"
	authHandler "PostureIQ/internal/api/auth/handler"
	authRepository "PostureIQ/internal/api/auth/repository"
	authService "PostureIQ/internal/api/auth/service"
	postureHandler "PostureIQ/internal/api/posture/handler"
	postureRepository "PostureIQ/internal/api/posture/repository"
	postureService "PostureIQ/internal/api/posture/service"
	"PostureIQ/internal/middleware"
	"PostureIQ/pkg/analyzer"
	"PostureIQ/pkg/bcrypt"
	"PostureIQ/pkg/ratelimit"
	"PostureIQ/pkg/redis"
	"PostureIQ/pkg/s3"
	"PostureIQ/pkg/utils"
	websocketPkg "PostureIQ/pkg/websocket"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine        *fiber.App
	db            *sqlx.DB
	log           *logrus.Logger
	middleware    middleware.Middleware
	validator     *validator.Validate
	utils         utils.IUtils
	bcryptUtils   bcrypt.IBcrypt
	handlers      []handler
	redisServer   redis.IRedis
	poseClient    websocketPkg.IWebsocket
	s3Client      s3.ItfS3
	limiter       ratelimit.Limiter
	snapshots     bool
	shutdownGrace time.Duration
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{shutdownGrace: 10 * time.Second}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.poseClient == nil {
		return nil, fmt.Errorf("pose client is required")
	}
	if server.limiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithPoseClient(client websocketPkg.IWebsocket) ServerOption {
	return func(s *Server) error {
		s.poseClient = client
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

// WithS3Client is a no-op unless SNAPSHOT_ENABLED=true.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		if os.Getenv("SNAPSHOT_ENABLED") != "true" {
			return nil
		}

		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		s.snapshots = true
		return nil
	}
}

// WithRateLimiter builds the per-user detection limiter. RATE_LIMIT_BACKEND
// selects "memory" (default) or "redis", which needs WithRedisServer first.
func WithRateLimiter() ServerOption {
	return func(s *Server) error {
		limit := envInt("DETECT_RATE_LIMIT", 10)
		window := time.Duration(envInt("DETECT_RATE_WINDOW_SECONDS", 60)) * time.Second

		switch backend := os.Getenv("RATE_LIMIT_BACKEND"); backend {
		case "", "memory":
			s.limiter = ratelimit.NewMemory(limit, window, time.Now)
		case "redis":
			if s.redisServer == nil {
				return fmt.Errorf("redis rate limit backend requires a redis server")
			}
			s.limiter = ratelimit.NewShared(s.redisServer, "postureiq:detect:", limit, window)
		default:
			return fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", backend)
		}
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func WithBcryptUtils() ServerOption {
	return func(s *Server) error {
		s.bcryptUtils = bcrypt.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Auth Domain
	authRepo := authRepository.New(s.db, s.log)
	authServices := authService.New(s.log, authRepo, s.s3Client, s.bcryptUtils, s.utils)
	authHandlers := authHandler.New(s.log, authServices, s.validator, s.middleware)

	// Posture Domain
	var opts []postureService.Option
	if s.snapshots {
		opts = append(opts, postureService.WithSnapshots(s.s3Client))
	}
	postureAnalyzer := analyzer.New(s.utils, s.poseClient)
	postureRepo := postureRepository.New(s.db, s.log)
	postureServices := postureService.NewPostureService(s.log, postureRepo, postureAnalyzer, s.limiter, s.utils, opts...)
	postureHandlers := postureHandler.New(s.log, s.validator, s.middleware, postureServices, s.utils)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, authHandlers, postureHandlers)
}

func (s *Server) Run() error {
	s.mount()

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) mount() {
	s.engine.Use(recover.New())
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	s.engine.Use(s.middleware.NewRateLimiter)

	router := s.engine.Group("/api/v1", s.middleware.NewCSRFMiddleware())

	for _, h := range s.handlers {
		h.Start(router)
	}
}

// Shutdown drains in-flight requests, then releases the pose connection,
// redis and the database.
func (s *Server) Shutdown() error {
	err := s.engine.ShutdownWithTimeout(s.shutdownGrace)

	if s.poseClient != nil {
		s.poseClient.CloseConnections()
	}
	if s.redisServer != nil {
		if cerr := s.redisServer.Close(); cerr != nil {
			s.log.Warnf("Error closing redis: %v", cerr)
		}
	}
	if s.db != nil {
		if cerr := s.db.Close(); cerr != nil {
			s.log.Warnf("Error closing database: %v", cerr)
		}
	}

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
