// Package mfa adapts the Montreal Forced Aligner command-line tool to the
// forcedalign.Aligner interface. MFA itself is typically installed into a
// conda environment; the binary must be reachable on PATH.
package mfa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/accentis/accentis/pkg/provider/forcedalign"
)

// Compile-time assertion that Aligner implements forcedalign.Aligner.
var _ forcedalign.Aligner = (*Aligner)(nil)

// Option is a functional option for configuring an Aligner.
type Option func(*Aligner)

// WithBinary overrides the aligner executable name or path. Defaults to
// "mfa".
func WithBinary(bin string) Option {
	return func(a *Aligner) { a.binary = bin }
}

// WithExtraArgs appends additional flags to every align invocation
// (e.g., "--num_jobs", "4").
func WithExtraArgs(args ...string) Option {
	return func(a *Aligner) { a.extraArgs = args }
}

// Aligner shells out to the mfa CLI. Safe for concurrent use as long as the
// jobs write to distinct output directories.
type Aligner struct {
	binary    string
	extraArgs []string
}

// New creates an Aligner and verifies the mfa binary is on PATH, returning
// an error wrapping forcedalign.ErrUnavailable when it is not.
func New(opts ...Option) (*Aligner, error) {
	a := &Aligner{binary: "mfa"}
	for _, o := range opts {
		o(a)
	}
	if _, err := exec.LookPath(a.binary); err != nil {
		return nil, fmt.Errorf("mfa: %q not found on PATH (activate the conda environment with MFA installed): %w", a.binary, forcedalign.ErrUnavailable)
	}
	return a, nil
}

// Align runs `mfa align <corpus> <dict> <model> <out> --clean` and returns
// the path of the first TextGrid found in the output directory.
func (a *Aligner) Align(ctx context.Context, job forcedalign.Job) (string, error) {
	if job.CorpusDir == "" || job.DictionaryPath == "" || job.AcousticModel == "" || job.OutputDir == "" {
		return "", errors.New("mfa: corpus, dictionary, model and output directories must all be set")
	}

	args := []string{"align", job.CorpusDir, job.DictionaryPath, job.AcousticModel, job.OutputDir, "--clean"}
	args = append(args, a.extraArgs...)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, a.binary, args...)
	cmd.Stderr = &stderr

	start := time.Now()
	slog.Debug("running forced alignment", "binary", a.binary, "corpus", job.CorpusDir)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("mfa: align cancelled: %w", ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("mfa: align failed: %s", msg)
	}
	slog.Debug("forced alignment finished", "duration", time.Since(start))

	return findTextGrid(job.OutputDir)
}

// findTextGrid returns the first .TextGrid file in dir, in lexical order so
// the choice is deterministic.
func findTextGrid(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("mfa: read output dir: %w", err)
	}

	var grids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".textgrid") {
			grids = append(grids, e.Name())
		}
	}
	if len(grids) == 0 {
		return "", fmt.Errorf("mfa: no TextGrid file found in %q", dir)
	}
	sort.Strings(grids)
	return filepath.Join(dir, grids[0]), nil
}
