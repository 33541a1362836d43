package speech

import (
	"context"
	"sync"
)

// MockRecognizer is a test double for Recognizer.
type MockRecognizer struct {
	ListenFunc func(ctx context.Context, lang string) (string, error)
	CloseFunc  func() error

	mu    sync.Mutex
	calls []string
}

// Listen records the language and delegates to ListenFunc.
func (m *MockRecognizer) Listen(ctx context.Context, lang string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, lang)
	m.mu.Unlock()

	if m.ListenFunc != nil {
		return m.ListenFunc(ctx, lang)
	}
	return "hello world", nil
}

// Close delegates to CloseFunc when set.
func (m *MockRecognizer) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns the languages passed to Listen so far.
func (m *MockRecognizer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockSynthesizer is a test double for Synthesizer.
type MockSynthesizer struct {
	SynthesizeFunc func(ctx context.Context, text, lang string) (*Audio, error)
	CloseFunc      func() error

	mu    sync.Mutex
	calls []MockSynthCall
}

// MockSynthCall records one Synthesize invocation.
type MockSynthCall struct {
	Text string
	Lang string
}

// Synthesize records the call and delegates to SynthesizeFunc.
func (m *MockSynthesizer) Synthesize(ctx context.Context, text, lang string) (*Audio, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockSynthCall{Text: text, Lang: lang})
	m.mu.Unlock()

	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text, lang)
	}
	return &Audio{Data: []byte("audio"), Format: "mp3", Lang: lang}, nil
}

// Close delegates to CloseFunc when set.
func (m *MockSynthesizer) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns a copy of the recorded invocations.
func (m *MockSynthesizer) Calls() []MockSynthCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockSynthCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockPlayer is a test double for Player.
type MockPlayer struct {
	PlayFunc func(ctx context.Context, a *Audio) error

	mu     sync.Mutex
	played []*Audio
}

// Play records the audio and delegates to PlayFunc.
func (m *MockPlayer) Play(ctx context.Context, a *Audio) error {
	m.mu.Lock()
	m.played = append(m.played, a)
	m.mu.Unlock()

	if m.PlayFunc != nil {
		return m.PlayFunc(ctx, a)
	}
	return nil
}

// Played returns the audio passed to Play so far.
func (m *MockPlayer) Played() []*Audio {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Audio, len(m.played))
	copy(out, m.played)
	return out
}

// Compile-time interface checks.
var (
	_ Recognizer  = (*MockRecognizer)(nil)
	_ Synthesizer = (*MockSynthesizer)(nil)
	_ Player      = (*MockPlayer)(nil)
)
