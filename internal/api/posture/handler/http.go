package postureHandler

import (
	postureService "PostureIQ/internal/api/posture/service"
	"PostureIQ/internal/middleware"
	"PostureIQ/pkg/utils"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type PostureHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	postureService postureService.PostureService
	utils          utils.IUtils
	timeout        time.Duration
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ps postureService.PostureService,
	utils utils.IUtils,
) *PostureHandler {
	return &PostureHandler{
		log:            log,
		validator:      validator,
		middleware:     middleware,
		postureService: ps,
		utils:          utils,
		timeout:        15 * time.Second,
	}
}

func (h *PostureHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	srv.Post("/detect_posture", h.middleware.NewTokenMiddleware, h.HandleDetectPosture)
	srv.Post("/mock_session", h.middleware.NewTokenMiddleware, h.HandleMockSession)
	srv.Get("/dashboard", h.middleware.NewTokenMiddleware, h.HandleDashboard)
	srv.Get("/report/:id", h.middleware.NewTokenMiddleware, h.HandleReport)
	srv.Get("/records/:id/snapshot", h.middleware.NewTokenMiddleware, h.HandleSnapshot)

	stream := srv.Group("/posture")
	stream.Use("/ws", h.middleware.NewTokenMiddleware, wsMiddleware)
	stream.Get("/ws", websocket.New(h.handleStream))
}
