// Package config provides configuration helpers for wavespeak commands.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default camera and display configuration.
const (
	DefaultCameraIP      = "192.168.1.42"
	DefaultStreamPort    = "80"
	DefaultDisplayPort   = "81"
	DefaultWebPort       = "8090"
	DefaultCooldown      = 1 * time.Second
	DefaultSourceLang    = "en"
	DefaultTargetLang    = "es"
	DefaultDisplayMethod = "websocket"
)

// Settings holds the user-editable runtime configuration.
// It is persisted as JSON and mutated through the control surface.
type Settings struct {
	CameraIP      string `json:"camera_ip"`
	StreamPort    string `json:"stream_port"`
	DisplayPort   string `json:"display_port"`
	DisplayMethod string `json:"display_method"` // "websocket" or "http"
	CooldownMs    int    `json:"cooldown_ms"`
	SourceLang    string `json:"source_lang"`
	TargetLang    string `json:"target_lang"`
}

// DefaultSettings returns settings seeded from environment variables,
// falling back to compiled-in defaults.
func DefaultSettings() Settings {
	return Settings{
		CameraIP:      envOr("CAMERA_IP", DefaultCameraIP),
		StreamPort:    envOr("CAMERA_STREAM_PORT", DefaultStreamPort),
		DisplayPort:   envOr("CAMERA_DISPLAY_PORT", DefaultDisplayPort),
		DisplayMethod: envOr("DISPLAY_METHOD", DefaultDisplayMethod),
		CooldownMs:    int(DefaultCooldown / time.Millisecond),
		SourceLang:    DefaultSourceLang,
		TargetLang:    DefaultTargetLang,
	}
}

// StreamURL returns the MJPEG stream endpoint for these settings.
func (s Settings) StreamURL() string {
	return fmt.Sprintf("http://%s:%s/stream", s.CameraIP, s.StreamPort)
}

// DisplayHTTPURL returns the HTTP display endpoint for these settings.
func (s Settings) DisplayHTTPURL() string {
	return fmt.Sprintf("http://%s:%s/display", s.CameraIP, s.StreamPort)
}

// DisplayWSURL returns the websocket display endpoint for these settings.
func (s Settings) DisplayWSURL() string {
	return fmt.Sprintf("ws://%s:%s", s.CameraIP, s.DisplayPort)
}

// Cooldown returns the gesture cooldown as a duration.
func (s Settings) Cooldown() time.Duration {
	if s.CooldownMs <= 0 {
		return DefaultCooldown
	}
	return time.Duration(s.CooldownMs) * time.Millisecond
}

// Load reads settings from a JSON file. A missing file is not an error;
// defaults are returned so first runs work without any setup.
func Load(path string) (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("config: read settings: %w", err)
	}

	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("config: parse settings: %w", err)
	}
	return s, nil
}

// Save writes settings to a JSON file atomically (temp file + rename).
func Save(path string, s Settings) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("config: create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal settings: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("config: write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("config: rename temp file: %w", err)
	}
	return nil
}

// WebPort returns the control-surface port from WEB_PORT or the default.
func WebPort() string {
	return envOr("WEB_PORT", DefaultWebPort)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
