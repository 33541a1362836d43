package translate

import (
	"context"
	"sync"
)

// Mock is a test double for Provider. Behavior is injected through
// function fields; calls are recorded for assertions.
type Mock struct {
	TranslateFunc func(ctx context.Context, text, source, target string) (string, error)
	CloseFunc     func() error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records one Translate invocation.
type MockCall struct {
	Text   string
	Source string
	Target string
}

// Translate records the call and delegates to TranslateFunc. Without a
// func it echoes the input prefixed by the target code.
func (m *Mock) Translate(ctx context.Context, text, source, target string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Text: text, Source: source, Target: target})
	m.mu.Unlock()

	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, text, source, target)
	}
	return "[" + target + "] " + text, nil
}

// Close delegates to CloseFunc when set.
func (m *Mock) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns a copy of the recorded invocations.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Verify Mock implements Provider at compile time.
var _ Provider = (*Mock)(nil)
