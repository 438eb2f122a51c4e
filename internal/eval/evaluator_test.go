package eval_test

import (
	"context"
	"errors"
	"testing"

	"github.com/accentis/accentis/internal/cmudict"
	"github.com/accentis/accentis/internal/eval"
	"github.com/accentis/accentis/internal/phoneme"
	"github.com/accentis/accentis/internal/score"
)

func testDict() *cmudict.Dict {
	return cmudict.New(map[string][]string{
		"heed": {"HH", "IY1", "D"},
		"he":   {"HH", "IY1"},
	})
}

func TestEvaluatePerfectUtterance(t *testing.T) {
	t.Parallel()

	e := eval.New(eval.WithDict(testDict()))
	got, err := e.Evaluate(context.Background(), eval.Request{
		Observed:   phoneme.SequenceOf("h", "i", "d"),
		Transcript: "heed",
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", got.Score)
	}
	if got.Strategy != "gap_aware" {
		t.Errorf("strategy = %q, want %q", got.Strategy, "gap_aware")
	}
	if len(got.Observed) != 3 || got.Observed[0] != "HH" {
		t.Errorf("observed = %v, want normalized CMU symbols", got.Observed)
	}
	if len(got.Matches) != 3 {
		t.Errorf("len(matches) = %d, want 3", len(got.Matches))
	}
	for _, m := range got.Matches {
		if !m.Match {
			t.Errorf("pair %s/%s reported as mismatch", m.Observed, m.Reference)
		}
	}
}

func TestEvaluateExplicitReferenceWins(t *testing.T) {
	t.Parallel()

	e := eval.New(eval.WithDict(testDict()))
	got, err := e.Evaluate(context.Background(), eval.Request{
		Observed:   phoneme.SequenceOf("h", "i"),
		Reference:  phoneme.SequenceOf("HH", "IY"),
		Transcript: "heed", // would add a D the speaker never produced
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.Score != 1.0 {
		t.Errorf("score = %v, want 1.0 against the explicit reference", got.Score)
	}
}

func TestEvaluateNoReference(t *testing.T) {
	t.Parallel()

	e := eval.New()
	_, err := e.Evaluate(context.Background(), eval.Request{
		Observed: phoneme.SequenceOf("h", "i"),
	})
	if !errors.Is(err, eval.ErrNoReference) {
		t.Errorf("error = %v, want ErrNoReference", err)
	}
}

func TestEvaluateTranscriptWithoutDict(t *testing.T) {
	t.Parallel()

	e := eval.New()
	if _, err := e.Evaluate(context.Background(), eval.Request{
		Observed:   phoneme.SequenceOf("h", "i"),
		Transcript: "he",
	}); err == nil {
		t.Fatal("Evaluate without a dictionary succeeded, want error")
	}
}

func TestEvaluateUnknownWordDefaultsToMatch(t *testing.T) {
	t.Parallel()

	// The spoken-noise token and an out-of-dictionary word both map to the
	// UNK sentinel, which compares equal to itself by default.
	e := eval.New(eval.WithDict(testDict()))
	got, err := e.Evaluate(context.Background(), eval.Request{
		Observed:   phoneme.SequenceOf("spn"),
		Transcript: "xyzzy",
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.Score != 1.0 {
		t.Errorf("score = %v, want 1.0 for UNK vs UNK", got.Score)
	}
}

func TestEvaluateUnknownWordStrictMode(t *testing.T) {
	t.Parallel()

	e := eval.New(
		eval.WithDict(testDict()),
		eval.WithModel(phoneme.NewModel(phoneme.WithUNKMismatch(true))),
	)
	got, err := e.Evaluate(context.Background(), eval.Request{
		Observed:   phoneme.SequenceOf("spn"),
		Transcript: "xyzzy",
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.Score != 0.0 {
		t.Errorf("score = %v, want 0.0 when UNK never matches", got.Score)
	}
}

func TestEvaluatePercentScale(t *testing.T) {
	t.Parallel()

	e := eval.New(eval.WithDict(testDict()), eval.WithScale(score.ScalePercent))
	got, err := e.Evaluate(context.Background(), eval.Request{
		Observed:   phoneme.SequenceOf("h", "i", "d"),
		Transcript: "heed",
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.Score != 100.0 {
		t.Errorf("score = %v, want 100.0", got.Score)
	}
}

func TestEvaluateBatchPreservesOrder(t *testing.T) {
	t.Parallel()

	e := eval.New(eval.WithDict(testDict()), eval.WithBatchConcurrency(2))
	reqs := []eval.Request{
		{Observed: phoneme.SequenceOf("h", "i", "d"), Transcript: "heed"},
		{Observed: phoneme.SequenceOf("h", "i"), Transcript: "he"},
		{Observed: phoneme.SequenceOf("d", "i"), Transcript: "he"},
	}
	got, err := e.EvaluateBatch(context.Background(), reqs)
	if err != nil {
		t.Fatalf("EvaluateBatch: %v", err)
	}
	if len(got) != len(reqs) {
		t.Fatalf("len(results) = %d, want %d", len(got), len(reqs))
	}
	if got[0].Score != 1.0 || got[1].Score != 1.0 {
		t.Errorf("scores = %v, %v; want 1.0, 1.0", got[0].Score, got[1].Score)
	}
	if got[2].Score >= 1.0 {
		t.Errorf("mispronounced utterance scored %v, want < 1.0", got[2].Score)
	}
}

func TestEvaluateBatchPropagatesError(t *testing.T) {
	t.Parallel()

	e := eval.New(eval.WithDict(testDict()))
	_, err := e.EvaluateBatch(context.Background(), []eval.Request{
		{Observed: phoneme.SequenceOf("h", "i"), Transcript: "he"},
		{Observed: phoneme.SequenceOf("h", "i")}, // no reference at all
	})
	if !errors.Is(err, eval.ErrNoReference) {
		t.Errorf("error = %v, want ErrNoReference", err)
	}
}

func TestEvaluateBatchEmpty(t *testing.T) {
	t.Parallel()

	e := eval.New()
	got, err := e.EvaluateBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EvaluateBatch: %v", err)
	}
	if got != nil {
		t.Errorf("results = %v, want nil", got)
	}
}
