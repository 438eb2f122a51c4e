// Package mock provides a canned forcedalign.Aligner for tests.
package mock

import (
	"context"
	"sync"

	"github.com/accentis/accentis/pkg/provider/forcedalign"
)

// Compile-time assertion that Aligner implements forcedalign.Aligner.
var _ forcedalign.Aligner = (*Aligner)(nil)

// Aligner returns a fixed TextGrid path for every job and records the jobs
// it receives. Safe for concurrent use.
type Aligner struct {
	// Path is returned by every Align call.
	Path string
	// Err, when non-nil, is returned instead of the path.
	Err error

	mu   sync.Mutex
	jobs []forcedalign.Job
}

// New creates a mock aligner that always yields path.
func New(path string) *Aligner {
	return &Aligner{Path: path}
}

// Align records the job and returns the canned path or error.
func (a *Aligner) Align(_ context.Context, job forcedalign.Job) (string, error) {
	a.mu.Lock()
	a.jobs = append(a.jobs, job)
	a.mu.Unlock()

	if a.Err != nil {
		return "", a.Err
	}
	return a.Path, nil
}

// Jobs returns a copy of every job seen so far.
func (a *Aligner) Jobs() []forcedalign.Job {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]forcedalign.Job, len(a.jobs))
	copy(out, a.jobs)
	return out
}
