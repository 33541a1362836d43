package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wavespeak/go-wavespeak/internal/config"
	"github.com/wavespeak/go-wavespeak/pkg/actions"
	"github.com/wavespeak/go-wavespeak/pkg/display"
	"github.com/wavespeak/go-wavespeak/pkg/gesture"
	"github.com/wavespeak/go-wavespeak/pkg/pipeline"
	"github.com/wavespeak/go-wavespeak/pkg/stream"
	"github.com/wavespeak/go-wavespeak/pkg/translate"
)

// statusResponse is the full system snapshot served on /api/status and
// pushed over /ws/status.
type statusResponse struct {
	Pipeline         pipeline.Status `json:"pipeline"`
	Dispatcher       string          `json:"dispatcher"`
	CooldownMs       int64           `json:"cooldown_ms"`
	GesturesFired    uint64          `json:"gestures_fired"`
	GesturesDropped  uint64          `json:"gestures_dropped"`
	DisplayAvailable bool            `json:"display_available"`
	SourceLang       string          `json:"source_lang"`
	TargetLang       string          `json:"target_lang"`
	LastTranslation  string          `json:"last_translation,omitempty"`
}

func (s *Server) snapshot() statusResponse {
	fired, dropped := s.deps.Dispatcher.Stats()
	source, target := s.deps.Languages.Get()
	return statusResponse{
		Pipeline:         s.deps.Pipeline.Status(),
		Dispatcher:       string(s.deps.Dispatcher.State()),
		CooldownMs:       s.deps.Dispatcher.Cooldown().Milliseconds(),
		GesturesFired:    fired,
		GesturesDropped:  dropped,
		DisplayAvailable: s.deps.Display.Available(),
		SourceLang:       source,
		TargetLang:       target,
		LastTranslation:  s.deps.Runner.LastTranslation(),
	}
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.snapshot())
}

func (s *Server) handlePipelineStart(c *fiber.Ctx) error {
	err := s.deps.Pipeline.Start(c.Context())
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"state": string(s.deps.Pipeline.State())})
	case errors.Is(err, pipeline.ErrAlreadyRunning):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case stream.IsConnError(err):
		// The camera is unreachable; the client can fix the address
		// and retry.
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func (s *Server) handlePipelineStop(c *fiber.Ctx) error {
	if err := s.deps.Pipeline.Stop(); err != nil {
		if errors.Is(err, pipeline.ErrNotRunning) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"state": string(pipeline.StateStopped)})
}

// gesturesResponse pairs the live mapping with the fixed vocabularies
// so the client can render pickers without hardcoding them.
type gesturesResponse struct {
	Mappings map[string]string `json:"mappings"`
	Gestures []string          `json:"gestures"`
	Actions  []string          `json:"actions"`
}

func (s *Server) handleGetGestures(c *fiber.Ctx) error {
	snap := s.deps.Registry.Snapshot()
	mappings := make(map[string]string, len(snap))
	for g, a := range snap {
		mappings[string(g)] = string(a)
	}

	resp := gesturesResponse{Mappings: mappings}
	for _, g := range gesture.Known() {
		resp.Gestures = append(resp.Gestures, string(g))
	}
	for _, a := range actions.Available() {
		resp.Actions = append(resp.Actions, string(a))
	}
	return c.JSON(resp)
}

type putGestureRequest struct {
	Gesture string `json:"gesture"`
	Action  string `json:"action"`
}

func (s *Server) handlePutGesture(c *fiber.Ctx) error {
	var req putGestureRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	err := s.deps.Registry.Set(gesture.Gesture(req.Gesture), actions.ActionName(req.Action))
	if err != nil {
		if errors.Is(err, actions.ErrInvalidMapping) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return s.handleGetGestures(c)
}

func (s *Server) handleResetGestures(c *fiber.Ctx) error {
	s.deps.Registry.ResetToDefaults()
	return s.handleGetGestures(c)
}

type languagesResponse struct {
	Source    string               `json:"source"`
	Target    string               `json:"target"`
	Available []translate.Language `json:"available"`
}

func (s *Server) handleGetLanguages(c *fiber.Ctx) error {
	source, target := s.deps.Languages.Get()
	return c.JSON(languagesResponse{
		Source:    source,
		Target:    target,
		Available: translate.Languages(),
	})
}

type putLanguagesRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

func (s *Server) handlePutLanguages(c *fiber.Ctx) error {
	var req putLanguagesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.Source != "" {
		if err := s.deps.Languages.SetSource(req.Source); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}
	if req.Target != "" {
		if err := s.deps.Languages.SetTarget(req.Target); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return s.handleGetLanguages(c)
}

func (s *Server) handleGetSettings(c *fiber.Ctx) error {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	return c.JSON(s.settings)
}

// handlePutSettings validates, persists, and applies new settings. A
// settings update is the one path that re-arms a tripped display.
func (s *Server) handlePutSettings(c *fiber.Ctx) error {
	s.settingsMu.Lock()
	updated := s.settings
	s.settingsMu.Unlock()

	if err := c.BodyParser(&updated); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if _, err := display.ParseTransport(updated.DisplayMethod); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if updated.SourceLang != "" && !translate.ValidCode(updated.SourceLang) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown source language"})
	}
	if updated.TargetLang != "" && !translate.ValidCode(updated.TargetLang) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown target language"})
	}

	s.settingsMu.Lock()
	s.settings = updated
	s.settingsMu.Unlock()

	if err := config.Save(s.settingsPath, updated); err != nil {
		s.logger.Warn("failed to persist settings", "error", err)
	}
	if s.deps.ApplySettings != nil {
		s.deps.ApplySettings(updated)
	}

	s.logger.Info("settings updated",
		"camera", updated.CameraIP,
		"display_method", updated.DisplayMethod,
		"cooldown_ms", updated.CooldownMs,
	)
	return c.JSON(updated)
}

type displaySendRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleDisplaySend(c *fiber.Ctx) error {
	var req displaySendRequest
	if err := c.BodyParser(&req); err != nil || req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "text required"})
	}
	if runes := []rune(req.Text); len(runes) > display.MaxTextLen {
		req.Text = string(runes[:display.MaxTextLen])
	}

	if err := s.deps.Display.Send(req.Text); err != nil {
		if errors.Is(err, display.ErrUnavailable) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"sent": true})
}

func (s *Server) handleDisplayReset(c *fiber.Ctx) error {
	s.deps.Display.ResetAvailability()
	return c.JSON(fiber.Map{"available": true})
}

// handleRunAction triggers one action manually, bypassing gesture
// recognition and the cooldown. Useful for testing a mapping before
// standing in front of the camera.
func (s *Server) handleRunAction(c *fiber.Ctx) error {
	name := actions.ActionName(c.Params("name"))
	if !name.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown action"})
	}

	if err := s.deps.Runner.Run(c.Context(), name); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"action": string(name), "ok": true})
}
