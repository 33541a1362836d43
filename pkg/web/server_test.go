package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wavespeak/go-wavespeak/internal/config"
	"github.com/wavespeak/go-wavespeak/pkg/actions"
	"github.com/wavespeak/go-wavespeak/pkg/dispatch"
	"github.com/wavespeak/go-wavespeak/pkg/display"
	"github.com/wavespeak/go-wavespeak/pkg/gesture"
	"github.com/wavespeak/go-wavespeak/pkg/pipeline"
	"github.com/wavespeak/go-wavespeak/pkg/pose"
	"github.com/wavespeak/go-wavespeak/pkg/stream"
	"github.com/wavespeak/go-wavespeak/pkg/translate"
)

// idleSource is a FrameSource whose probe fails, standing in for an
// unreachable camera.
type idleSource struct{ probeErr error }

func (s *idleSource) Probe(ctx context.Context) error { return s.probeErr }
func (s *idleSource) Run(ctx context.Context, emit func(stream.Frame) bool) error {
	<-ctx.Done()
	return nil
}

type testEnv struct {
	server   *Server
	registry *actions.Registry
	display  *display.Channel
	applied  *config.Settings
}

func newTestEnv(t *testing.T, source pipeline.FrameSource) *testEnv {
	t.Helper()

	registry := actions.NewRegistry(nil)
	langs := translate.NewLanguagePair("en", "es")
	disp := display.NewChannel(display.TransportHTTP, "http://127.0.0.1:1/display")
	runner := actions.NewRunner(actions.Deps{
		Display:    disp,
		Translator: &translate.Mock{},
		Languages:  langs,
	})
	dispatcher := dispatch.New(registry, runner)
	ctrl := pipeline.NewController(source, &pose.Mock{}, gesture.NewRuleClassifier(gesture.DefaultConfig()), dispatcher)

	env := &testEnv{registry: registry, display: disp}
	deps := Deps{
		Pipeline:   ctrl,
		Dispatcher: dispatcher,
		Registry:   registry,
		Runner:     runner,
		Display:    disp,
		Languages:  langs,
		ApplySettings: func(s config.Settings) {
			env.applied = &s
		},
	}

	settingsPath := filepath.Join(t.TempDir(), "settings.json")
	env.server = NewServer("0", deps, config.DefaultSettings(), settingsPath)
	return env
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	resp.Body.Close()
	return resp, data
}

func TestServer_Status(t *testing.T) {
	env := newTestEnv(t, &idleSource{})

	resp, body := doJSON(t, env.server, http.MethodGet, "/api/status", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var st statusResponse
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if st.Pipeline.State != pipeline.StateStopped {
		t.Errorf("expected stopped pipeline, got %s", st.Pipeline.State)
	}
	if st.SourceLang != "en" || st.TargetLang != "es" {
		t.Errorf("unexpected languages %s/%s", st.SourceLang, st.TargetLang)
	}
	if !st.DisplayAvailable {
		t.Error("fresh display channel should be available")
	}
}

func TestServer_PipelineStartUnreachableCamera(t *testing.T) {
	env := newTestEnv(t, &idleSource{
		probeErr: &stream.ConnError{URL: "http://cam/stream", Cause: io.EOF},
	})

	resp, _ := doJSON(t, env.server, http.MethodPost, "/api/pipeline/start", nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502 for unreachable camera, got %d", resp.StatusCode)
	}
}

func TestServer_PipelineStartStop(t *testing.T) {
	env := newTestEnv(t, &idleSource{})

	resp, _ := doJSON(t, env.server, http.MethodPost, "/api/pipeline/start", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on start, got %d", resp.StatusCode)
	}

	// Second start conflicts.
	resp, _ = doJSON(t, env.server, http.MethodPost, "/api/pipeline/start", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 on double start, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, env.server, http.MethodPost, "/api/pipeline/stop", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 on stop, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, env.server, http.MethodPost, "/api/pipeline/stop", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 on double stop, got %d", resp.StatusCode)
	}
}

func TestServer_GetGestures(t *testing.T) {
	env := newTestEnv(t, &idleSource{})

	resp, body := doJSON(t, env.server, http.MethodGet, "/api/gestures", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var gr gesturesResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		t.Fatalf("unmarshal gestures: %v", err)
	}
	if gr.Mappings["thumbs_up"] != "translate" {
		t.Errorf("expected default mapping, got %v", gr.Mappings)
	}
	if len(gr.Gestures) != len(gesture.Known()) {
		t.Errorf("expected %d gestures, got %d", len(gesture.Known()), len(gr.Gestures))
	}
	if len(gr.Actions) != len(actions.Available()) {
		t.Errorf("expected %d actions, got %d", len(actions.Available()), len(gr.Actions))
	}
}

func TestServer_PutGesture(t *testing.T) {
	env := newTestEnv(t, &idleSource{})

	resp, _ := doJSON(t, env.server, http.MethodPut, "/api/gestures",
		putGestureRequest{Gesture: "fist", Action: "repeat"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := env.registry.Get(gesture.Fist); got != actions.ActionRepeat {
		t.Errorf("mapping not applied, got %s", got)
	}
}

func TestServer_PutGestureInvalid(t *testing.T) {
	env := newTestEnv(t, &idleSource{})

	tests := []putGestureRequest{
		{Gesture: "vulcan_salute", Action: "repeat"},
		{Gesture: "fist", Action: "summon_dragons"},
	}
	for _, req := range tests {
		resp, _ := doJSON(t, env.server, http.MethodPut, "/api/gestures", req)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400 for %+v, got %d", req, resp.StatusCode)
		}
	}
	if got := env.registry.Get(gesture.Fist); got != actions.ActionStop {
		t.Errorf("rejected mapping must not apply, got %s", got)
	}
}

func TestServer_ResetGestures(t *testing.T) {
	env := newTestEnv(t, &idleSource{})
	env.registry.Set(gesture.ThumbsUp, actions.ActionStop)

	resp, _ := doJSON(t, env.server, http.MethodPost, "/api/gestures/reset", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := env.registry.Get(gesture.ThumbsUp); got != actions.ActionTranslate {
		t.Errorf("expected default after reset, got %s", got)
	}
}

func TestServer_PutLanguages(t *testing.T) {
	env := newTestEnv(t, &idleSource{})

	resp, _ := doJSON(t, env.server, http.MethodPut, "/api/languages",
		putLanguagesRequest{Source: "fr", Target: "ja"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, env.server, http.MethodPut, "/api/languages",
		putLanguagesRequest{Target: "klingon"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown language, got %d", resp.StatusCode)
	}
}

func TestServer_PutSettings(t *testing.T) {
	env := newTestEnv(t, &idleSource{})

	updated := config.DefaultSettings()
	updated.CameraIP = "10.0.0.9"
	updated.DisplayMethod = "http"
	updated.CooldownMs = 1500

	resp, _ := doJSON(t, env.server, http.MethodPut, "/api/settings", updated)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if env.applied == nil || env.applied.CameraIP != "10.0.0.9" {
		t.Errorf("expected ApplySettings callback with new settings, got %+v", env.applied)
	}

	// Settings survive the round trip through the API.
	resp, body := doJSON(t, env.server, http.MethodGet, "/api/settings", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got config.Settings
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal settings: %v", err)
	}
	if got.CameraIP != "10.0.0.9" || got.CooldownMs != 1500 {
		t.Errorf("unexpected settings %+v", got)
	}
}

func TestServer_PutSettingsRejectsBadTransport(t *testing.T) {
	env := newTestEnv(t, &idleSource{})

	updated := config.DefaultSettings()
	updated.DisplayMethod = "smoke-signals"
	resp, _ := doJSON(t, env.server, http.MethodPut, "/api/settings", updated)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	if env.applied != nil {
		t.Error("rejected settings must not be applied")
	}
}

func TestServer_DisplaySend(t *testing.T) {
	received := make(chan string, 1)
	displaySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		received <- body["text"]
	}))
	defer displaySrv.Close()

	env := newTestEnv(t, &idleSource{})
	env.display.Configure(display.TransportHTTP, displaySrv.URL)

	resp, _ := doJSON(t, env.server, http.MethodPost, "/api/display/send",
		displaySendRequest{Text: "hola"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := <-received; got != "hola" {
		t.Errorf("expected hola at the display, got %q", got)
	}
}

func TestServer_DisplaySendTruncates(t *testing.T) {
	received := make(chan string, 1)
	displaySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		received <- body["text"]
	}))
	defer displaySrv.Close()

	env := newTestEnv(t, &idleSource{})
	env.display.Configure(display.TransportHTTP, displaySrv.URL)

	resp, _ := doJSON(t, env.server, http.MethodPost, "/api/display/send",
		displaySendRequest{Text: strings.Repeat("z", 300)})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := len([]rune(<-received)); got != display.MaxTextLen {
		t.Errorf("expected %d runes at the display, got %d", display.MaxTextLen, got)
	}
}

func TestServer_DisplaySendTripsThenResets(t *testing.T) {
	env := newTestEnv(t, &idleSource{})
	// Default display target is unreachable.

	resp, _ := doJSON(t, env.server, http.MethodPost, "/api/display/send",
		displaySendRequest{Text: "boom"})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 on transport failure, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, env.server, http.MethodPost, "/api/display/send",
		displaySendRequest{Text: "held"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 while tripped, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, env.server, http.MethodPost, "/api/display/reset", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 on reset, got %d", resp.StatusCode)
	}
	if !env.display.Available() {
		t.Error("display should be available after reset")
	}
}

func TestServer_RunAction(t *testing.T) {
	env := newTestEnv(t, &idleSource{})

	resp, _ := doJSON(t, env.server, http.MethodPost, "/api/actions/cycle_language", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, env.server, http.MethodPost, "/api/actions/dance", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown action, got %d", resp.StatusCode)
	}
}
