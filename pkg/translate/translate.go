// Package translate provides a unified interface for machine-translation
// providers.
//
// All providers implement the Provider interface, enabling seamless
// switching without changing caller code. Chain composes providers with
// fallback; Mock supports tests.
package translate

import (
	"context"
	"sync"
)

// Provider defines the machine-translation interface.
type Provider interface {
	// Translate converts text from the source language to the target
	// language. Language codes are ISO 639-1 (plus region variants
	// such as zh-CN).
	Translate(ctx context.Context, text, source, target string) (string, error)

	// Close releases any resources held by the provider.
	Close() error
}

// Language is one selectable language.
type Language struct {
	Name string
	Code string
}

// Languages returns the supported language table in stable order.
func Languages() []Language {
	return []Language{
		{"English", "en"},
		{"Spanish", "es"},
		{"French", "fr"},
		{"German", "de"},
		{"Italian", "it"},
		{"Portuguese", "pt"},
		{"Russian", "ru"},
		{"Japanese", "ja"},
		{"Korean", "ko"},
		{"Chinese (Simplified)", "zh-CN"},
		{"Arabic", "ar"},
		{"Hindi", "hi"},
		{"Dutch", "nl"},
		{"Turkish", "tr"},
		{"Polish", "pl"},
		{"Swedish", "sv"},
	}
}

// LanguageName returns the display name for a code, or the code itself
// when unknown.
func LanguageName(code string) string {
	for _, l := range Languages() {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}

// ValidCode reports whether code is in the supported table.
func ValidCode(code string) bool {
	for _, l := range Languages() {
		if l.Code == code {
			return true
		}
	}
	return false
}

// LanguagePair holds the active source/target selection. It is mutated
// from both the dispatcher (cycle actions) and the control surface, so
// access is serialized.
type LanguagePair struct {
	mu     sync.Mutex
	source string
	target string
}

// NewLanguagePair creates a pair with the given initial selection.
// Unknown codes fall back to en→es.
func NewLanguagePair(source, target string) *LanguagePair {
	if !ValidCode(source) {
		source = "en"
	}
	if !ValidCode(target) {
		target = "es"
	}
	return &LanguagePair{source: source, target: target}
}

// Get returns the current source and target codes.
func (p *LanguagePair) Get() (source, target string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source, p.target
}

// SetSource selects a new source language.
func (p *LanguagePair) SetSource(code string) error {
	if !ValidCode(code) {
		return ErrUnknownLanguage
	}
	p.mu.Lock()
	p.source = code
	p.mu.Unlock()
	return nil
}

// SetTarget selects a new target language.
func (p *LanguagePair) SetTarget(code string) error {
	if !ValidCode(code) {
		return ErrUnknownLanguage
	}
	p.mu.Lock()
	p.target = code
	p.mu.Unlock()
	return nil
}

// CycleTarget advances the target to the next language in the table and
// returns the new code.
func (p *LanguagePair) CycleTarget() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.target = nextCode(p.target)
	return p.target
}

// CycleSource advances the source to the next language in the table and
// returns the new code.
func (p *LanguagePair) CycleSource() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.source = nextCode(p.source)
	return p.source
}

func nextCode(code string) string {
	langs := Languages()
	for i, l := range langs {
		if l.Code == code {
			return langs[(i+1)%len(langs)].Code
		}
	}
	return langs[0].Code
}
