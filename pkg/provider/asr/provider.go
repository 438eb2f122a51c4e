// Package asr defines the Provider interface for batch speech-to-text
// backends used by the Accentis evaluation pipeline.
//
// Unlike a realtime voice system, pronunciation evaluation works on complete
// recorded utterances, so the interface is a single blocking Transcribe call
// over a full audio buffer rather than a streaming session. Implementations
// must be safe for concurrent use: independent utterances may be transcribed
// in parallel during batch evaluation.
package asr

import (
	"context"
	"time"
)

// Request describes one complete utterance to transcribe.
type Request struct {
	// PCM is the raw 16-bit signed little-endian PCM audio.
	PCM []byte

	// SampleRate is the audio sample rate in Hz. Common value: 16000.
	SampleRate int

	// Channels is the number of audio channels. 1 = mono. Implementations
	// may downmix multi-channel audio internally.
	Channels int

	// Language is the BCP-47 language tag for recognition (e.g., "en").
	// An empty string uses the provider's configured default.
	Language string
}

// WordDetail holds per-word timing from providers that report it.
type WordDetail struct {
	Word  string
	Start time.Duration
	End   time.Duration
}

// Transcript is the result of transcribing one utterance.
type Transcript struct {
	// Text is the transcribed speech content.
	Text string

	// Words contains per-word timing detail when the backend supports it.
	// May be nil.
	Words []WordDetail

	// Duration is the length of the transcribed audio.
	Duration time.Duration
}

// Provider is the abstraction over any batch STT backend.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Transcribe converts one complete utterance to text. It blocks until
	// transcription finishes or ctx is cancelled.
	Transcribe(ctx context.Context, req Request) (*Transcript, error)
}
