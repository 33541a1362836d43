package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wavespeak/go-wavespeak/internal/log"
	"github.com/wavespeak/go-wavespeak/pkg/display"
	"github.com/wavespeak/go-wavespeak/pkg/speech"
	"github.com/wavespeak/go-wavespeak/pkg/translate"
)

// Display is the slice of the display channel the runner needs.
type Display interface {
	Send(text string) error
}

// Deps are the collaborators behind the action bodies. Display and
// Translator are required; the speech fields may be nil, in which case
// voice-dependent actions degrade to display-only behavior.
type Deps struct {
	Display    Display
	Translator translate.Provider
	Languages  *translate.LanguagePair
	Recognizer speech.Recognizer
	Synth      speech.Synthesizer
	Player     speech.Player
}

// Runner executes actions by name. One runner instance is shared by the
// dispatcher and the control surface, so its mutable state (last
// translation, custom message) is lock-protected.
type Runner struct {
	deps   Deps
	logger *slog.Logger

	mu              sync.Mutex
	lastTranslation string
	customMessage   string
	onStop          func()
	onReset         func()
}

// DefaultCustomMessage is shown by the send_message action until the
// user sets their own.
const DefaultCustomMessage = "Hello!"

// NewRunner creates a runner over the given collaborators.
func NewRunner(deps Deps) *Runner {
	return &Runner{
		deps:          deps,
		customMessage: DefaultCustomMessage,
		logger:        log.Component("actions.runner"),
	}
}

// OnStop registers a callback invoked by the stop action, typically to
// halt in-flight playback.
func (r *Runner) OnStop(f func()) {
	r.mu.Lock()
	r.onStop = f
	r.mu.Unlock()
}

// OnReset registers a callback invoked by the reset action.
func (r *Runner) OnReset(f func()) {
	r.mu.Lock()
	r.onReset = f
	r.mu.Unlock()
}

// SetCustomMessage replaces the text sent by send_message and spoken by
// speak_custom.
func (r *Runner) SetCustomMessage(msg string) {
	r.mu.Lock()
	r.customMessage = msg
	r.mu.Unlock()
}

// CustomMessage returns the current custom message.
func (r *Runner) CustomMessage() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.customMessage
}

// LastTranslation returns the most recent translation result, empty if
// none yet.
func (r *Runner) LastTranslation() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastTranslation
}

// Run executes one action. ActionNone is a successful no-op; names
// outside the fixed set return ErrUnknownAction.
func (r *Runner) Run(ctx context.Context, name ActionName) error {
	switch name {
	case ActionNone:
		return nil
	case ActionTranslate:
		return r.runTranslate(ctx)
	case ActionRepeat:
		return r.runRepeat(ctx)
	case ActionStop:
		return r.runStop()
	case ActionCycleLanguage:
		return r.runCycleLanguage()
	case ActionChangeSourceLang:
		return r.runChangeSourceLanguage()
	case ActionSendMessage:
		return r.runSendMessage()
	case ActionShowText:
		return r.runShowText()
	case ActionSpeakCustom:
		return r.runSpeakCustom(ctx)
	case ActionReset:
		return r.runReset()
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

// runTranslate is the core flow: listen, translate, display, speak.
func (r *Runner) runTranslate(ctx context.Context) error {
	source, target := r.deps.Languages.Get()

	if r.deps.Recognizer == nil {
		r.display("Voice input not configured")
		return speech.ErrTimeout
	}

	r.display("Listening...")

	text, err := r.deps.Recognizer.Listen(ctx, source)
	if err != nil {
		switch {
		case errors.Is(err, speech.ErrTimeout):
			r.display("No speech detected")
		case errors.Is(err, speech.ErrNotUnderstood):
			r.display("Could not understand")
		default:
			r.display("Speech service error")
		}
		return err
	}

	translated, err := r.deps.Translator.Translate(ctx, text, source, target)
	if err != nil {
		r.display("Translation failed")
		return err
	}

	r.mu.Lock()
	r.lastTranslation = translated
	r.mu.Unlock()

	r.display(translated)
	r.speak(ctx, translated, target)

	r.logger.Info("translated utterance",
		"source", source,
		"target", target,
		"chars", len(translated),
	)
	return nil
}

// runRepeat re-displays and re-speaks the last translation.
func (r *Runner) runRepeat(ctx context.Context) error {
	r.mu.Lock()
	last := r.lastTranslation
	r.mu.Unlock()

	if last == "" {
		r.display("Nothing to repeat")
		return nil
	}

	_, target := r.deps.Languages.Get()
	r.display(last)
	r.speak(ctx, last, target)
	return nil
}

func (r *Runner) runStop() error {
	r.mu.Lock()
	stop := r.onStop
	r.mu.Unlock()

	if stop != nil {
		stop()
	}
	r.display("Stopped")
	return nil
}

func (r *Runner) runCycleLanguage() error {
	code := r.deps.Languages.CycleTarget()
	r.display("Language: " + translate.LanguageName(code))
	r.logger.Info("target language cycled", "target", code)
	return nil
}

func (r *Runner) runChangeSourceLanguage() error {
	code := r.deps.Languages.CycleSource()
	r.display("Speaking: " + translate.LanguageName(code))
	r.logger.Info("source language cycled", "source", code)
	return nil
}

func (r *Runner) runSendMessage() error {
	r.mu.Lock()
	msg := r.customMessage
	r.mu.Unlock()
	r.display(msg)
	return nil
}

// runShowText mirrors send_message for now; the control surface writes
// the same custom message slot.
func (r *Runner) runShowText() error {
	return r.runSendMessage()
}

func (r *Runner) runSpeakCustom(ctx context.Context) error {
	r.mu.Lock()
	msg := r.customMessage
	r.mu.Unlock()

	_, target := r.deps.Languages.Get()
	r.display(msg)
	r.speak(ctx, msg, target)
	return nil
}

func (r *Runner) runReset() error {
	r.mu.Lock()
	r.lastTranslation = ""
	r.customMessage = DefaultCustomMessage
	reset := r.onReset
	r.mu.Unlock()

	if reset != nil {
		reset()
	}
	r.display("Ready")
	return nil
}

// display pushes text to the channel, truncated to the display's line
// capacity, logging failures. Display loss never fails the action that
// produced the text.
func (r *Runner) display(text string) {
	if r.deps.Display == nil {
		return
	}
	if runes := []rune(text); len(runes) > display.MaxTextLen {
		text = string(runes[:display.MaxTextLen])
	}
	if err := r.deps.Display.Send(text); err != nil {
		r.logger.Warn("display send failed", "error", err)
	}
}

// speak synthesizes and plays text. Best effort: audio failures are
// logged and the action still succeeds, the text already reached the
// display.
func (r *Runner) speak(ctx context.Context, text, lang string) {
	if r.deps.Synth == nil || r.deps.Player == nil {
		return
	}
	audio, err := r.deps.Synth.Synthesize(ctx, text, lang)
	if err != nil {
		r.logger.Warn("speech synthesis failed", "error", err)
		return
	}
	if err := r.deps.Player.Play(ctx, audio); err != nil {
		r.logger.Warn("audio playback failed", "error", err)
	}
}
