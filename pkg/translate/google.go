package translate

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	translatev2 "google.golang.org/api/translate/v2"

	"github.com/wavespeak/go-wavespeak/internal/log"
)

// GoogleCloud implements Provider using the Google Cloud Translation API
// (v2, API-key auth).
type GoogleCloud struct {
	svc    *translatev2.Service
	logger *slog.Logger
}

// NewGoogleCloud creates a Google Cloud translation provider.
func NewGoogleCloud(ctx context.Context, apiKey string) (*GoogleCloud, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	svc, err := translatev2.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("translate: create google service: %w", err)
	}

	return &GoogleCloud{
		svc:    svc,
		logger: log.Component("translate.google"),
	}, nil
}

// Translate converts text via the Cloud Translation API.
func (g *GoogleCloud) Translate(ctx context.Context, text, source, target string) (string, error) {
	if text == "" {
		return "", ErrEmptyText
	}

	call := g.svc.Translations.List([]string{text}, target).Format("text").Context(ctx)
	if source != "" {
		call = call.Source(source)
	}

	resp, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("translate: google API call: %w", err)
	}
	if len(resp.Translations) == 0 {
		return "", fmt.Errorf("translate: google returned no translations for %q", text)
	}

	out := resp.Translations[0].TranslatedText
	g.logger.Debug("translated text", "source", source, "target", target, "chars", len(text))
	return out, nil
}

// Close releases provider resources. The underlying HTTP client needs no
// explicit teardown.
func (g *GoogleCloud) Close() error {
	return nil
}

// Verify GoogleCloud implements Provider at compile time.
var _ Provider = (*GoogleCloud)(nil)
