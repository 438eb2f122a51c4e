// Package align computes minimum-cost global alignments between two phoneme
// sequences, in the style of edit-distance dynamic programming with affixed
// gap penalties. The observed sequence (what the speaker produced) is aligned
// against the reference sequence (what the transcript dictates), allowing
// insertions and deletions as gaps on either side.
//
// Complexity is O(n·m) time and space over the two sequence lengths, which is
// fine for per-utterance phoneme counts (tens to low hundreds). The full cost
// matrix is kept so the optimal path can be recovered by backtracking.
//
// An Aligner is read-only after construction and safe for concurrent use;
// each Align call allocates its own working state.
package align

import "github.com/accentis/accentis/internal/phoneme"

// GapPenalty is the fixed cost of leaving one symbol unmatched (an insertion
// on the observed side or a deletion against the reference).
const GapPenalty = 0.8

// mismatchCost is the cost of pairing two symbols whose similarity does not
// exceed the match threshold.
const mismatchCost = 1.0

// Op identifies the kind of an alignment pair.
type Op int

const (
	// OpMatch pairs an observed symbol with a reference symbol whose
	// similarity exceeds the match threshold.
	OpMatch Op = iota

	// OpSubstitute pairs an observed symbol with a dissimilar reference
	// symbol (the speaker produced the wrong phoneme at this position).
	OpSubstitute

	// OpInsert is a gap on the reference side: the observed symbol has no
	// reference counterpart (an extra sound was produced).
	OpInsert

	// OpDelete is a gap on the observed side: the reference symbol has no
	// observed counterpart (an expected sound was skipped).
	OpDelete
)

// String returns the lower-case name of the operation.
func (o Op) String() string {
	switch o {
	case OpMatch:
		return "match"
	case OpSubstitute:
		return "substitute"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Pair is one position of an alignment. Exactly one of the gap operations
// leaves the corresponding side's symbol empty:
//
//	OpMatch/OpSubstitute — Observed and Reference both set, Score populated.
//	OpInsert             — Observed set, Reference empty, Score 0.
//	OpDelete             — Reference set, Observed empty, Score 0.
type Pair struct {
	Op        Op
	Observed  phoneme.Symbol
	Reference phoneme.Symbol

	// Score is the similarity of the two symbols for diagonal pairs.
	Score float64
}

// Result is a complete, order-preserving covering of both input sequences.
// It is immutable once returned by [Aligner.Align].
type Result struct {
	// Pairs lists the alignment positions in left-to-right temporal order.
	Pairs []Pair

	// Cost is the total alignment cost under the gap/mismatch cost model.
	Cost float64

	// Observed and Reference are the input sequences, retained for
	// traceability.
	Observed  phoneme.Sequence
	Reference phoneme.Sequence
}

// ObservedSide returns the observed symbols of all non-gap positions, in
// order. For any valid Result this reproduces the observed input sequence.
func (r *Result) ObservedSide() phoneme.Sequence {
	var seq phoneme.Sequence
	for _, p := range r.Pairs {
		if p.Op != OpDelete {
			seq = append(seq, p.Observed)
		}
	}
	return seq
}

// ReferenceSide returns the reference symbols of all non-gap positions, in
// order. For any valid Result this reproduces the reference input sequence.
func (r *Result) ReferenceSide() phoneme.Sequence {
	var seq phoneme.Sequence
	for _, p := range r.Pairs {
		if p.Op != OpInsert {
			seq = append(seq, p.Reference)
		}
	}
	return seq
}

// Aligner computes global alignments using a phoneme similarity model to
// decide which diagonal steps count as matches.
type Aligner struct {
	model *phoneme.Model
}

// New returns an Aligner backed by the given similarity model.
func New(model *phoneme.Model) *Aligner {
	return &Aligner{model: model}
}

// step records which predecessor cell the optimum at a grid cell came from.
type step uint8

const (
	stepDiag step = iota // consume one observed and one reference symbol
	stepUp               // consume one observed symbol (insertion)
	stepLeft             // consume one reference symbol (deletion)
)

// Align computes the minimum-cost global alignment of observed against
// reference. Either or both sequences may be empty; the degenerate
// alignments are all-gaps and the empty alignment respectively.
//
// Ties between equal-cost predecessors are broken in the fixed priority
// order diagonal, then up (gap on reference side), then left (gap on
// observed side), so repeated calls with identical inputs produce identical
// Results.
func (a *Aligner) Align(observed, reference phoneme.Sequence) *Result {
	n, m := len(observed), len(reference)

	// cost and from are (n+1) × (m+1) grids indexed [i][j] where i symbols
	// of observed and j symbols of reference have been consumed.
	cost := make([][]float64, n+1)
	from := make([][]step, n+1)
	for i := range cost {
		cost[i] = make([]float64, m+1)
		from[i] = make([]step, m+1)
	}
	for i := 1; i <= n; i++ {
		cost[i][0] = float64(i) * GapPenalty
		from[i][0] = stepUp
	}
	for j := 1; j <= m; j++ {
		cost[0][j] = float64(j) * GapPenalty
		from[0][j] = stepLeft
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			diagStep := mismatchCost
			if a.model.Matches(observed[i-1], reference[j-1]) {
				diagStep = 0
			}
			diag := cost[i-1][j-1] + diagStep
			up := cost[i-1][j] + GapPenalty
			left := cost[i][j-1] + GapPenalty

			// Fixed tie-break priority: diagonal, up, left.
			best, via := diag, stepDiag
			if up < best {
				best, via = up, stepUp
			}
			if left < best {
				best, via = left, stepLeft
			}
			cost[i][j] = best
			from[i][j] = via
		}
	}

	// Backtrack from (n, m) to (0, 0), then reverse into temporal order.
	pairs := make([]Pair, 0, max(n, m))
	i, j := n, m
	for i > 0 || j > 0 {
		switch from[i][j] {
		case stepDiag:
			score := a.model.Score(observed[i-1], reference[j-1])
			op := OpSubstitute
			if score > phoneme.MatchThreshold {
				op = OpMatch
			}
			pairs = append(pairs, Pair{
				Op:        op,
				Observed:  observed[i-1],
				Reference: reference[j-1],
				Score:     score,
			})
			i, j = i-1, j-1
		case stepUp:
			pairs = append(pairs, Pair{Op: OpInsert, Observed: observed[i-1]})
			i--
		case stepLeft:
			pairs = append(pairs, Pair{Op: OpDelete, Reference: reference[j-1]})
			j--
		}
	}
	for l, r := 0, len(pairs)-1; l < r; l, r = l+1, r-1 {
		pairs[l], pairs[r] = pairs[r], pairs[l]
	}

	return &Result{
		Pairs:     pairs,
		Cost:      cost[n][m],
		Observed:  observed,
		Reference: reference,
	}
}
