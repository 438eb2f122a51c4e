// Package mock provides a canned asr.Provider for tests and offline runs.
package mock

import (
	"context"
	"sync"

	"github.com/accentis/accentis/pkg/provider/asr"
)

// Compile-time assertion that Provider implements asr.Provider.
var _ asr.Provider = (*Provider)(nil)

// Provider returns a fixed transcript for every request and records the
// requests it receives. Safe for concurrent use.
type Provider struct {
	// Transcript is returned by every Transcribe call.
	Transcript asr.Transcript
	// Err, when non-nil, is returned instead of the transcript.
	Err error

	mu       sync.Mutex
	requests []asr.Request
}

// New creates a mock provider that always yields text.
func New(text string) *Provider {
	return &Provider{Transcript: asr.Transcript{Text: text}}
}

// Transcribe records the request and returns the canned transcript or error.
func (p *Provider) Transcribe(_ context.Context, req asr.Request) (*asr.Transcript, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	tr := p.Transcript
	return &tr, nil
}

// Requests returns a copy of every request seen so far.
func (p *Provider) Requests() []asr.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]asr.Request, len(p.requests))
	copy(out, p.requests)
	return out
}
