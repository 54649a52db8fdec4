package status

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/curesight/client-go/internal/intake"
	"github.com/curesight/client-go/internal/metrics"
	"github.com/curesight/client-go/pkg/logger"
)

// Server is the kiosk's local surface: liveness, metrics, and a websocket
// feed of intake state transitions for an attached display.
type Server struct {
	app  *fiber.App
	orch *intake.Orchestrator
}

func NewServer(orch *intake.Orchestrator) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	s := &Server{app: app, orch: orch}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.handleConnection))

	return s
}

func (s *Server) Start(addr string) {
	go func() {
		logger.Info("Status server listening", zap.String("address", addr))
		if err := s.app.Listen(addr); err != nil {
			logger.Error("Status server stopped", zap.Error(err))
		}
	}()
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handleConnection streams the current state and every later transition until
// the display disconnects.
func (s *Server) handleConnection(c *websocket.Conn) {
	logger.Info("Display connected")

	states := s.orch.Subscribe()
	defer func() {
		s.orch.Unsubscribe(states)
		c.Close()
		logger.Info("Display disconnected")
	}()

	if err := c.WriteJSON(s.orch.State()); err != nil {
		return
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case state := <-states:
			if err := c.WriteJSON(state); err != nil {
				logger.Debug("Failed to push state to display", zap.Error(err))
				return
			}
		case <-closed:
			return
		}
	}
}
