package speech

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/wavespeak/go-wavespeak/internal/httpc"
	"github.com/wavespeak/go-wavespeak/internal/log"
)

// DefaultGoogleTTSBaseURL is the public translate_tts endpoint.
const DefaultGoogleTTSBaseURL = "https://translate.google.com/translate_tts"

// googleTTSMaxChars is the endpoint's per-request text limit.
const googleTTSMaxChars = 200

// GoogleTTS implements Synthesizer against the unofficial Google
// Translate TTS endpoint. It needs no API key and returns MP3 audio.
type GoogleTTS struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// GoogleTTSOption configures a GoogleTTS synthesizer.
type GoogleTTSOption func(*GoogleTTS)

// WithBaseURL overrides the endpoint, mainly for tests.
func WithBaseURL(u string) GoogleTTSOption {
	return func(g *GoogleTTS) { g.baseURL = u }
}

// WithTTSHTTPClient overrides the HTTP client.
func WithTTSHTTPClient(c *http.Client) GoogleTTSOption {
	return func(g *GoogleTTS) { g.client = c }
}

// NewGoogleTTS creates a Google Translate TTS synthesizer.
func NewGoogleTTS(opts ...GoogleTTSOption) *GoogleTTS {
	g := &GoogleTTS{
		baseURL: DefaultGoogleTTSBaseURL,
		client:  httpc.Client,
		logger:  log.Component("speech.gtts"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Synthesize fetches MP3 audio for the text. Text longer than the
// endpoint's limit is truncated to its first 200 runes.
func (g *GoogleTTS) Synthesize(ctx context.Context, text, lang string) (*Audio, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if runes := []rune(text); len(runes) > googleTTSMaxChars {
		text = string(runes[:googleTTSMaxChars])
	}

	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("q", text)
	q.Set("tl", lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("speech: build tts request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &ServiceError{Service: "gtts", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &ServiceError{Service: "gtts", StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("speech: read tts audio: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoAudio
	}

	g.logger.Debug("synthesized audio", "lang", lang, "bytes", len(data))
	return &Audio{Data: data, Format: "mp3", Lang: lang}, nil
}

// Close releases synthesizer resources.
func (g *GoogleTTS) Close() error {
	return nil
}

// Verify GoogleTTS implements Synthesizer at compile time.
var _ Synthesizer = (*GoogleTTS)(nil)
