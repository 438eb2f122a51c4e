// Package score reduces phoneme alignments to an overall pronunciation
// accuracy score and a per-position diagnostic report.
//
// Three scoring strategies coexist, each with different semantics, selected
// explicitly by the caller and never substituted for one another:
//
//   - [GapAware] (default): averages the similarity of aligned
//     match/substitution pairs, excluding gaps from both numerator and
//     denominator. Rewards correct phoneme identity and order; insertions
//     and deletions are structural errors penalised by the alignment cost
//     but not by the reported percentage.
//   - [Positional]: the gap-free zip comparison of the two raw sequences.
//     Coarse and fast; any insertion or deletion shifts every subsequent
//     position out of register.
//   - [EditDistance]: whole-sequence Levenshtein accuracy over the joined
//     canonical strings. A single scalar with no per-phoneme diagnostics.
//
// All strategies are stateless and safe for concurrent use.
package score

import (
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/accentis/accentis/internal/align"
	"github.com/accentis/accentis/internal/phoneme"
)

// GapPlaceholder is the symbol shown on the gapped side of an insertion or
// deletion in per-position records.
const GapPlaceholder = "-"

// Scale selects the numeric range of reported overall scores.
type Scale string

const (
	// ScaleFraction reports scores in [0, 1]. The default.
	ScaleFraction Scale = "fraction"

	// ScalePercent reports scores in [0, 100].
	ScalePercent Scale = "percent"
)

// IsValid reports whether s is a recognised scale.
func (s Scale) IsValid() bool {
	return s == ScaleFraction || s == ScalePercent
}

// Record is one per-position entry of a diagnostic report.
type Record struct {
	// Observed is the produced symbol, or [GapPlaceholder] for deletions.
	Observed string `json:"actual"`

	// Reference is the expected symbol, or [GapPlaceholder] for insertions.
	Reference string `json:"reference"`

	// Match is true when both sides are present and the similarity score
	// exceeds the match threshold.
	Match bool `json:"match"`

	// Score is the similarity of the two symbols; 0 for gaps.
	Score float64 `json:"score"`
}

// Summary is the output of a scoring strategy: the overall accuracy as a
// fraction in [0, 1] plus the per-position report (empty for strategies
// that produce no positional detail).
type Summary struct {
	// Strategy names the strategy that produced this summary.
	Strategy string

	// Overall is the accuracy fraction in [0, 1].
	Overall float64

	// Report holds the per-position records, in temporal order.
	Report []Record
}

// Scaled returns Overall converted to the given scale.
func (s Summary) Scaled(scale Scale) float64 {
	if scale == ScalePercent {
		return s.Overall * 100
	}
	return s.Overall
}

// Strategy reduces an alignment to a [Summary]. Implementations must be
// stateless or read-only and safe for concurrent use.
type Strategy interface {
	// Name returns the stable identifier used in configuration and in
	// serialised results.
	Name() string

	// Score reduces res to an overall accuracy and diagnostic report.
	Score(res *align.Result) Summary
}

// ByName returns the strategy registered under name, wiring model into the
// strategies that need one. Recognised names: "gap_aware", "positional",
// "edit_distance". An empty name selects the default [GapAware] strategy.
func ByName(name string, model *phoneme.Model) (Strategy, error) {
	switch name {
	case "", GapAware{}.Name():
		return GapAware{}, nil
	case (Positional{}).Name():
		return Positional{Model: model}, nil
	case EditDistance{}.Name():
		return EditDistance{}, nil
	default:
		return nil, fmt.Errorf("score: unknown strategy %q; valid values: gap_aware, positional, edit_distance", name)
	}
}

// GapAware is the default, alignment-faithful strategy. The overall score is
// the mean similarity of match/substitution pairs; gaps appear in the report
// with placeholder symbols but contribute to neither numerator nor
// denominator. Zero diagonal pairs (disjoint or empty inputs) score 0.
type GapAware struct{}

// Name implements [Strategy].
func (GapAware) Name() string { return "gap_aware" }

// Score implements [Strategy].
func (GapAware) Score(res *align.Result) Summary {
	report := make([]Record, 0, len(res.Pairs))
	var sum float64
	var pairs int

	for _, p := range res.Pairs {
		rec := Record{
			Observed:  GapPlaceholder,
			Reference: GapPlaceholder,
			Score:     p.Score,
		}
		switch p.Op {
		case align.OpMatch, align.OpSubstitute:
			rec.Observed = string(p.Observed)
			rec.Reference = string(p.Reference)
			rec.Match = p.Op == align.OpMatch
			sum += p.Score
			pairs++
		case align.OpInsert:
			rec.Observed = string(p.Observed)
		case align.OpDelete:
			rec.Reference = string(p.Reference)
		}
		report = append(report, rec)
	}

	var overall float64
	if pairs > 0 {
		overall = sum / float64(pairs)
	}
	return Summary{Strategy: GapAware{}.Name(), Overall: overall, Report: report}
}

// Positional is the coarse gap-free strategy: the two raw sequences are
// zipped position by position and compared for canonical equality, exactly
// as the simplest pronunciation checkers do. Length differences truncate to
// the shorter sequence.
type Positional struct {
	// Model scores each zipped pair. A nil Model falls back to the default
	// similarity model.
	Model *phoneme.Model
}

// Name implements [Strategy].
func (Positional) Name() string { return "positional" }

// Score implements [Strategy]. The alignment's pair list is ignored; only
// the retained input sequences are read.
func (p Positional) Score(res *align.Result) Summary {
	model := p.Model
	if model == nil {
		model = phoneme.NewModel()
	}

	n := min(len(res.Observed), len(res.Reference))
	report := make([]Record, 0, n)
	matched := 0
	for i := range n {
		obs, ref := res.Observed[i], res.Reference[i]
		s := model.Score(obs, ref)
		rec := Record{
			Observed:  string(obs),
			Reference: string(ref),
			Match:     s > phoneme.MatchThreshold,
			Score:     s,
		}
		if rec.Match {
			matched++
		}
		report = append(report, rec)
	}

	var overall float64
	if n > 0 {
		overall = float64(matched) / float64(n)
	}
	return Summary{Strategy: Positional{}.Name(), Overall: overall, Report: report}
}

// EditDistance scores the whole utterance as Levenshtein accuracy over the
// space-joined canonical symbol strings: 1 − distance / max(len). It emits
// no per-position report.
type EditDistance struct{}

// Name implements [Strategy].
func (EditDistance) Name() string { return "edit_distance" }

// Score implements [Strategy].
func (EditDistance) Score(res *align.Result) Summary {
	obs := joinCanonical(res.Observed)
	ref := joinCanonical(res.Reference)

	if len(obs) == 0 && len(ref) == 0 {
		return Summary{Strategy: EditDistance{}.Name(), Overall: 0}
	}

	dist := matchr.Levenshtein(obs, ref)
	longest := max(len([]rune(obs)), len([]rune(ref)))
	overall := 1 - float64(dist)/float64(longest)
	if overall < 0 {
		overall = 0
	}
	return Summary{Strategy: EditDistance{}.Name(), Overall: overall}
}

func joinCanonical(seq phoneme.Sequence) string {
	parts := make([]string, len(seq))
	for i, sym := range seq {
		parts[i] = strings.ToUpper(string(phoneme.StripMarkers(sym)))
	}
	return strings.Join(parts, " ")
}
