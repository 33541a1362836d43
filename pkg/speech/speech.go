// Package speech provides speech-to-text and text-to-speech interfaces
// for the translation flow.
//
// Recognition runs against a companion gateway that owns the microphone;
// synthesis produces encoded audio that a Player renders. Both sides have
// mocks so the action runner can be tested without hardware or network.
package speech

import "context"

// Audio is one synthesized utterance.
type Audio struct {
	// Data is the encoded audio payload.
	Data []byte

	// Format is the container/codec, e.g. "mp3".
	Format string

	// Lang is the language the audio was synthesized in.
	Lang string
}

// Recognizer converts a spoken utterance to text.
type Recognizer interface {
	// Listen captures and transcribes one utterance in the given
	// language. It blocks until the utterance completes, the service
	// times out, or ctx is cancelled.
	Listen(ctx context.Context, lang string) (string, error)

	// Close releases recognizer resources.
	Close() error
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Synthesize renders text as audio in the given language.
	Synthesize(ctx context.Context, text, lang string) (*Audio, error)

	// Close releases synthesizer resources.
	Close() error
}

// Player renders synthesized audio on an output device.
type Player interface {
	// Play renders the audio, blocking until playback finishes.
	Play(ctx context.Context, a *Audio) error
}
