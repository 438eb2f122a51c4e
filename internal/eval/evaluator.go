// Package eval composes normalization, alignment and scoring into the
// end-to-end pronunciation evaluation pipeline.
package eval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/accentis/accentis/internal/align"
	"github.com/accentis/accentis/internal/cmudict"
	"github.com/accentis/accentis/internal/observe"
	"github.com/accentis/accentis/internal/phoneme"
	"github.com/accentis/accentis/internal/score"
)

// ErrNoReference indicates a request carried neither reference phonemes nor
// a transcript to derive them from.
var ErrNoReference = errors.New("eval: no reference phonemes or transcript")

// defaultBatchConcurrency bounds parallel utterance evaluations in a batch.
const defaultBatchConcurrency = 4

// Request describes one utterance to evaluate.
type Request struct {
	// Observed holds the phoneme labels actually produced by the speaker,
	// as extracted from a TextGrid tier or an ASR pipeline. Labels may be
	// raw IPA; they are normalized before alignment.
	Observed phoneme.Sequence

	// Reference holds the expected phonemes. When empty, Transcript is
	// decomposed through the pronunciation dictionary instead.
	Reference phoneme.Sequence

	// Transcript is the orthographic text of the expected utterance.
	Transcript string
}

// Evaluation is the serialisable outcome of one utterance evaluation.
type Evaluation struct {
	Observed  []string       `json:"pred_phonemes"`
	Reference []string       `json:"reference"`
	Strategy  string         `json:"strategy"`
	Score     float64        `json:"score"`
	Matches   []score.Record `json:"phoneme_matches"`
}

// Option is a functional option for configuring an Evaluator.
type Option func(*Evaluator)

// WithNormalizer overrides the symbol normalizer.
func WithNormalizer(n *phoneme.Normalizer) Option {
	return func(e *Evaluator) { e.normalizer = n }
}

// WithModel overrides the similarity model used for alignment and scoring.
func WithModel(m *phoneme.Model) Option {
	return func(e *Evaluator) { e.model = m }
}

// WithStrategy overrides the scoring strategy. Defaults to score.GapAware.
func WithStrategy(s score.Strategy) Option {
	return func(e *Evaluator) { e.strategy = s }
}

// WithDict sets the pronunciation dictionary used to decompose transcripts.
// Requests that rely on Transcript fail without one.
func WithDict(d *cmudict.Dict) Option {
	return func(e *Evaluator) { e.dict = d }
}

// WithScale sets the output scale of Evaluation.Score. Defaults to
// score.ScaleFraction.
func WithScale(s score.Scale) Option {
	return func(e *Evaluator) { e.scale = s }
}

// WithMetrics overrides the metrics sink. Defaults to
// observe.DefaultMetrics.
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Evaluator) { e.metrics = m }
}

// WithBatchConcurrency bounds how many utterances EvaluateBatch processes
// in parallel. Values below 1 fall back to the default of 4.
func WithBatchConcurrency(n int) Option {
	return func(e *Evaluator) {
		if n >= 1 {
			e.concurrency = n
		}
	}
}

// Evaluator runs the normalize-align-score pipeline. Safe for concurrent
// use; all fields are set at construction time.
type Evaluator struct {
	normalizer  *phoneme.Normalizer
	model       *phoneme.Model
	aligner     *align.Aligner
	strategy    score.Strategy
	dict        *cmudict.Dict
	metrics     *observe.Metrics
	scale       score.Scale
	concurrency int
}

// New creates an Evaluator with gap-aware scoring, the default IPA table and
// the default confusable classes unless overridden by options.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		normalizer:  phoneme.NewNormalizer(),
		model:       phoneme.NewModel(),
		strategy:    score.GapAware{},
		scale:       score.ScaleFraction,
		concurrency: defaultBatchConcurrency,
	}
	for _, o := range opts {
		o(e)
	}
	e.aligner = align.New(e.model)
	if e.metrics == nil {
		e.metrics = observe.DefaultMetrics()
	}
	return e
}

// Evaluate normalizes the observed labels, resolves the reference phonemes,
// aligns the two sequences and scores the alignment.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (*Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	observed := e.normalizer.NormalizeSequence(req.Observed)

	reference, err := e.resolveReference(req)
	if err != nil {
		return nil, err
	}

	res := e.aligner.Align(observed, reference)
	summary := e.strategy.Score(res)

	e.metrics.EvalDuration.Record(ctx, time.Since(start).Seconds())
	e.metrics.RecordEvaluation(ctx, summary.Strategy, summary.Overall)

	slog.Debug("utterance evaluated",
		"strategy", summary.Strategy,
		"score", summary.Overall,
		"observed", len(observed),
		"reference", len(reference))

	return &Evaluation{
		Observed:  observed.Strings(),
		Reference: reference.Strings(),
		Strategy:  summary.Strategy,
		Score:     summary.Scaled(e.scale),
		Matches:   summary.Report,
	}, nil
}

// EvaluateBatch evaluates every request concurrently, preserving input
// order in the result slice. The first error cancels the remaining work.
func (e *Evaluator) EvaluateBatch(ctx context.Context, reqs []Request) ([]*Evaluation, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	e.metrics.ActiveBatches.Add(ctx, 1)
	defer e.metrics.ActiveBatches.Add(ctx, -1)

	results := make([]*Evaluation, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			ev, err := e.Evaluate(gctx, req)
			if err != nil {
				return fmt.Errorf("utterance %d: %w", i, err)
			}
			results[i] = ev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// resolveReference returns the normalized reference sequence, preferring
// explicit phonemes over transcript decomposition.
func (e *Evaluator) resolveReference(req Request) (phoneme.Sequence, error) {
	if len(req.Reference) > 0 {
		return e.normalizer.NormalizeSequence(req.Reference), nil
	}
	if req.Transcript != "" {
		if e.dict == nil {
			return nil, errors.New("eval: transcript given but no dictionary configured")
		}
		return e.dict.TranscriptToPhonemes(req.Transcript), nil
	}
	return nil, ErrNoReference
}
