// Package forcedalign defines the provider interface for forced aligners.
//
// A forced aligner takes a recorded utterance plus its orthographic
// transcript and produces time-aligned word and phone tiers, delivered as a
// Praat TextGrid file. The Montreal Forced Aligner adapter lives in the mfa
// subpackage.
package forcedalign

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the aligner binary or service cannot be reached.
var ErrUnavailable = errors.New("forcedalign: aligner unavailable")

// Job describes one alignment run over a prepared corpus directory.
type Job struct {
	// CorpusDir holds the audio file and its matching .lab/.txt transcript,
	// laid out the way the aligner expects.
	CorpusDir string
	// DictionaryPath is the pronunciation dictionary (name or path).
	DictionaryPath string
	// AcousticModel is the acoustic model identifier (name or path).
	AcousticModel string
	// OutputDir receives the generated TextGrid files.
	OutputDir string
}

// Aligner runs forced alignment and returns the path of the produced
// TextGrid file.
type Aligner interface {
	Align(ctx context.Context, job Job) (string, error)
}
