package speech

import (
	"context"
	"log/slog"

	"github.com/wavespeak/go-wavespeak/internal/log"
)

// NullPlayer implements Player without an output device. It logs what
// would have played, for headless deployments where the display channel
// is the only output.
type NullPlayer struct {
	logger *slog.Logger
}

// NewNullPlayer creates a player that discards audio.
func NewNullPlayer() *NullPlayer {
	return &NullPlayer{logger: log.Component("speech.player")}
}

// Play logs and discards the audio.
func (p *NullPlayer) Play(ctx context.Context, a *Audio) error {
	if a == nil || len(a.Data) == 0 {
		return ErrNoAudio
	}
	p.logger.Debug("discarding audio, no output device", "format", a.Format, "lang", a.Lang, "bytes", len(a.Data))
	return nil
}

// Verify NullPlayer implements Player at compile time.
var _ Player = (*NullPlayer)(nil)
