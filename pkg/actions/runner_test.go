package actions

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/wavespeak/go-wavespeak/pkg/display"
	"github.com/wavespeak/go-wavespeak/pkg/speech"
	"github.com/wavespeak/go-wavespeak/pkg/translate"
)

// displayLog records everything sent to the display.
type displayLog struct {
	mu    sync.Mutex
	sent  []string
	fail  bool
	count int
}

func (d *displayLog) Send(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.count++
	if d.fail {
		return errors.New("display offline")
	}
	d.sent = append(d.sent, text)
	return nil
}

func (d *displayLog) messages() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.sent))
	copy(out, d.sent)
	return out
}

func newTestRunner(t *testing.T) (*Runner, *displayLog, *speech.MockSynthesizer, *speech.MockPlayer) {
	t.Helper()
	disp := &displayLog{}
	synth := &speech.MockSynthesizer{}
	player := &speech.MockPlayer{}
	r := NewRunner(Deps{
		Display:    disp,
		Translator: &translate.Mock{},
		Languages:  translate.NewLanguagePair("en", "es"),
		Recognizer: &speech.MockRecognizer{},
		Synth:      synth,
		Player:     player,
	})
	return r, disp, synth, player
}

func TestRunner_Translate(t *testing.T) {
	r, disp, synth, player := newTestRunner(t)

	if err := r.Run(context.Background(), ActionTranslate); err != nil {
		t.Fatalf("translate failed: %v", err)
	}

	msgs := disp.messages()
	if len(msgs) != 2 || msgs[0] != "Listening..." {
		t.Fatalf("expected Listening... then result, got %v", msgs)
	}
	// The mock translator echoes with a target prefix.
	if msgs[1] != "[es] hello world" {
		t.Errorf("unexpected translation on display: %q", msgs[1])
	}
	if got := r.LastTranslation(); got != "[es] hello world" {
		t.Errorf("last translation not recorded: %q", got)
	}
	if calls := synth.Calls(); len(calls) != 1 || calls[0].Lang != "es" {
		t.Errorf("expected one synthesis in es, got %v", calls)
	}
	if len(player.Played()) != 1 {
		t.Error("expected audio to be played")
	}
}

func TestRunner_TranslateListenTimeout(t *testing.T) {
	r, disp, _, _ := newTestRunner(t)
	r.deps.Recognizer = &speech.MockRecognizer{
		ListenFunc: func(ctx context.Context, lang string) (string, error) {
			return "", speech.ErrTimeout
		},
	}

	err := r.Run(context.Background(), ActionTranslate)
	if !errors.Is(err, speech.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	msgs := disp.messages()
	if len(msgs) != 2 || msgs[1] != "No speech detected" {
		t.Errorf("expected timeout notice on display, got %v", msgs)
	}
	if r.LastTranslation() != "" {
		t.Error("failed translate must not record a translation")
	}
}

func TestRunner_TranslateProviderFailure(t *testing.T) {
	r, disp, _, _ := newTestRunner(t)
	boom := errors.New("quota exceeded")
	r.deps.Translator = &translate.Mock{
		TranslateFunc: func(ctx context.Context, text, source, target string) (string, error) {
			return "", boom
		},
	}

	if err := r.Run(context.Background(), ActionTranslate); !errors.Is(err, boom) {
		t.Fatalf("expected provider error, got %v", err)
	}
	msgs := disp.messages()
	if msgs[len(msgs)-1] != "Translation failed" {
		t.Errorf("expected failure notice, got %v", msgs)
	}
}

func TestRunner_RepeatWithoutHistory(t *testing.T) {
	r, disp, _, player := newTestRunner(t)

	if err := r.Run(context.Background(), ActionRepeat); err != nil {
		t.Fatalf("repeat failed: %v", err)
	}
	if msgs := disp.messages(); len(msgs) != 1 || msgs[0] != "Nothing to repeat" {
		t.Errorf("expected placeholder, got %v", msgs)
	}
	if len(player.Played()) != 0 {
		t.Error("nothing should play without history")
	}
}

func TestRunner_RepeatReplaysLastTranslation(t *testing.T) {
	r, disp, _, player := newTestRunner(t)
	if err := r.Run(context.Background(), ActionTranslate); err != nil {
		t.Fatalf("translate failed: %v", err)
	}

	if err := r.Run(context.Background(), ActionRepeat); err != nil {
		t.Fatalf("repeat failed: %v", err)
	}
	msgs := disp.messages()
	if msgs[len(msgs)-1] != "[es] hello world" {
		t.Errorf("expected replayed translation, got %v", msgs)
	}
	if len(player.Played()) != 2 {
		t.Errorf("expected 2 playbacks, got %d", len(player.Played()))
	}
}

func TestRunner_CycleLanguage(t *testing.T) {
	r, disp, _, _ := newTestRunner(t)

	if err := r.Run(context.Background(), ActionCycleLanguage); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}
	if _, target := r.deps.Languages.Get(); target != "fr" {
		t.Errorf("expected target fr after cycle, got %q", target)
	}
	if msgs := disp.messages(); msgs[0] != "Language: French" {
		t.Errorf("expected language banner, got %v", msgs)
	}
}

func TestRunner_ChangeSourceLanguage(t *testing.T) {
	r, _, _, _ := newTestRunner(t)

	if err := r.Run(context.Background(), ActionChangeSourceLang); err != nil {
		t.Fatalf("change source failed: %v", err)
	}
	if source, _ := r.deps.Languages.Get(); source != "es" {
		t.Errorf("expected source es after cycle, got %q", source)
	}
}

func TestRunner_SendMessage(t *testing.T) {
	r, disp, _, _ := newTestRunner(t)
	r.SetCustomMessage("Back in 5 minutes")

	if err := r.Run(context.Background(), ActionSendMessage); err != nil {
		t.Fatalf("send_message failed: %v", err)
	}
	if msgs := disp.messages(); msgs[0] != "Back in 5 minutes" {
		t.Errorf("expected custom message, got %v", msgs)
	}
}

func TestRunner_StopInvokesCallback(t *testing.T) {
	r, disp, _, _ := newTestRunner(t)
	var stopped bool
	r.OnStop(func() { stopped = true })

	if err := r.Run(context.Background(), ActionStop); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if !stopped {
		t.Error("expected stop callback")
	}
	if msgs := disp.messages(); msgs[0] != "Stopped" {
		t.Errorf("expected Stopped banner, got %v", msgs)
	}
}

func TestRunner_ResetClearsState(t *testing.T) {
	r, _, _, _ := newTestRunner(t)
	r.SetCustomMessage("custom")
	r.Run(context.Background(), ActionTranslate)

	var reset bool
	r.OnReset(func() { reset = true })
	if err := r.Run(context.Background(), ActionReset); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if !reset {
		t.Error("expected reset callback")
	}
	if r.LastTranslation() != "" || r.CustomMessage() != DefaultCustomMessage {
		t.Error("reset should clear runner state")
	}
}

func TestRunner_NoneIsNoOp(t *testing.T) {
	r, disp, _, _ := newTestRunner(t)
	if err := r.Run(context.Background(), ActionNone); err != nil {
		t.Fatalf("none failed: %v", err)
	}
	if disp.count != 0 {
		t.Error("none must not touch the display")
	}
}

func TestRunner_UnknownAction(t *testing.T) {
	r, _, _, _ := newTestRunner(t)
	if err := r.Run(context.Background(), ActionName("dance")); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("expected ErrUnknownAction, got %v", err)
	}
}

func TestRunner_TruncatesDisplayText(t *testing.T) {
	r, disp, _, _ := newTestRunner(t)
	r.SetCustomMessage(strings.Repeat("y", 200))

	if err := r.Run(context.Background(), ActionSendMessage); err != nil {
		t.Fatalf("send_message failed: %v", err)
	}
	msgs := disp.messages()
	if got := len([]rune(msgs[0])); got != display.MaxTextLen {
		t.Errorf("expected %d runes on the display, got %d", display.MaxTextLen, got)
	}
}

func TestRunner_DisplayFailureDoesNotFailAction(t *testing.T) {
	r, disp, _, _ := newTestRunner(t)
	disp.fail = true

	if err := r.Run(context.Background(), ActionSendMessage); err != nil {
		t.Errorf("display loss must not fail the action, got %v", err)
	}
}
