// Package web is the control surface: a fiber app exposing pipeline
// lifecycle, gesture mappings, settings, and live WebSocket feeds for
// the camera and status.
package web

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/wavespeak/go-wavespeak/internal/config"
	"github.com/wavespeak/go-wavespeak/internal/log"
	"github.com/wavespeak/go-wavespeak/pkg/actions"
	"github.com/wavespeak/go-wavespeak/pkg/dispatch"
	"github.com/wavespeak/go-wavespeak/pkg/display"
	"github.com/wavespeak/go-wavespeak/pkg/hub"
	"github.com/wavespeak/go-wavespeak/pkg/pipeline"
	"github.com/wavespeak/go-wavespeak/pkg/translate"
)

// Deps are the collaborators the control surface drives.
type Deps struct {
	Pipeline   *pipeline.Controller
	Dispatcher *dispatch.Dispatcher
	Registry   *actions.Registry
	Runner     *actions.Runner
	Display    *display.Channel
	Languages  *translate.LanguagePair

	// ApplySettings propagates saved settings into the wired
	// components (stream URL, display target, cooldown). Set by the
	// composition root.
	ApplySettings func(config.Settings)
}

// Server is the control-surface HTTP/WebSocket server.
type Server struct {
	app    *fiber.App
	port   string
	deps   Deps
	logger *slog.Logger

	settingsMu   sync.Mutex
	settings     config.Settings
	settingsPath string

	// Hubs for websocket broadcast
	statusHub *hub.Hub
	cameraHub *hub.Hub

	statusTicker *time.Ticker
	statusDone   chan struct{}
}

// NewServer creates the control surface. Settings are the currently
// active configuration; settingsPath is where PUT /api/settings
// persists them.
func NewServer(port string, deps Deps, settings config.Settings, settingsPath string) *Server {
	s := &Server{
		port:         port,
		deps:         deps,
		settings:     settings,
		settingsPath: settingsPath,
		statusHub:    hub.New("status"),
		cameraHub:    hub.New("camera"),
		statusDone:   make(chan struct{}),
		logger:       log.Component("web"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "wavespeak",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/pipeline/start", s.handlePipelineStart)
	api.Post("/pipeline/stop", s.handlePipelineStop)
	api.Get("/gestures", s.handleGetGestures)
	api.Put("/gestures", s.handlePutGesture)
	api.Post("/gestures/reset", s.handleResetGestures)
	api.Get("/languages", s.handleGetLanguages)
	api.Put("/languages", s.handlePutLanguages)
	api.Get("/settings", s.handleGetSettings)
	api.Put("/settings", s.handlePutSettings)
	api.Post("/display/send", s.handleDisplaySend)
	api.Post("/display/reset", s.handleDisplayReset)
	api.Post("/actions/:name", s.handleRunAction)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// CameraHub exposes the live-frame hub so the pipeline can publish into
// it.
func (s *Server) CameraHub() *hub.Hub {
	return s.cameraHub
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// SetPipeline attaches the pipeline controller. The composition root
// builds the server first so the pipeline can publish into CameraHub,
// then wires the controller back in before Start.
func (s *Server) SetPipeline(p *pipeline.Controller) {
	s.deps.Pipeline = p
}

// Start runs the hubs, the periodic status broadcast, and the listener.
// It blocks until Shutdown.
func (s *Server) Start() error {
	go s.statusHub.Run()
	go s.cameraHub.Run()

	s.statusTicker = time.NewTicker(time.Second)
	go func() {
		for {
			select {
			case <-s.statusTicker.C:
				s.statusHub.BroadcastJSON(s.snapshot())
			case <-s.statusDone:
				return
			}
		}
	}()

	s.logger.Info("control surface listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// Shutdown stops the listener, hubs, and broadcast loop.
func (s *Server) Shutdown() error {
	if s.statusTicker != nil {
		s.statusTicker.Stop()
	}
	close(s.statusDone)
	s.statusHub.Stop()
	s.cameraHub.Stop()
	return s.app.Shutdown()
}

// handleCameraWS attaches a viewer to the live frame feed.
func (s *Server) handleCameraWS(c *websocket.Conn) {
	hub.Serve(s.cameraHub, c)
}

// handleStatusWS attaches a viewer to the status feed, seeding it with
// the current snapshot.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	c.WriteJSON(s.snapshot())
	hub.Serve(s.statusHub, c)
}
