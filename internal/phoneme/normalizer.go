package phoneme

import "strings"

// DefaultIPATable maps IPA phoneme tokens (as produced by the MFA english
// acoustic models) to their CMU-notation equivalents. The table is the
// default for [NewNormalizer]; tests and alternative alphabets can inject
// their own via [WithTable].
var DefaultIPATable = map[Symbol]Symbol{
	"f":  "F",
	"ð":  "DH",
	"æ":  "AE",
	"ʈ":  "T",
	"ɛ":  "EH",
	"ɲ":  "N",
	"ŋ":  "NG",
	"ɡ":  "G",
	"ʃ":  "SH",
	"ʊ":  "UH",
	"ʉː": "UW",
	"aj": "AY",
	// Spoken-noise token emitted by forced aligners for unrecognised sounds.
	"spn": UNK,
	"a":   "AA",
	"i":   "IY",
	"h":   "HH",
	"n":   "N",
	"d":   "D",
	"z":   "Z",
	"t":   "T",
	"m":   "M",
	"v":   "V",
}

// NormalizerOption is a functional option for configuring a [Normalizer].
type NormalizerOption func(*Normalizer)

// WithTable replaces the symbol-mapping table. The map is used as-is and
// must not be mutated after the Normalizer is constructed.
func WithTable(table map[Symbol]Symbol) NormalizerOption {
	return func(n *Normalizer) {
		n.table = table
	}
}

// Normalizer maps phoneme symbols from a source notation into the canonical
// CMU-style comparison alphabet.
//
// Symbols absent from the table are passed through uppercased rather than
// rejected. This keeps exotic or misconfigured alphabets flowing through
// alignment (where they are visibly penalised as mismatches) instead of
// being silently dropped, at the cost of some score distortion for inputs
// the table does not cover.
//
// A Normalizer is read-only after construction and safe for concurrent use.
type Normalizer struct {
	table map[Symbol]Symbol
}

// NewNormalizer returns a Normalizer using [DefaultIPATable] unless
// overridden with [WithTable].
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{table: DefaultIPATable}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Normalize returns the canonical form of sym: the table mapping when one
// exists, otherwise the symbol uppercased verbatim.
func (n *Normalizer) Normalize(sym Symbol) Symbol {
	if mapped, ok := n.table[sym]; ok {
		return mapped
	}
	return Symbol(strings.ToUpper(string(sym)))
}

// NormalizeSequence returns a new Sequence with every symbol normalized.
// The input is not modified.
func (n *Normalizer) NormalizeSequence(seq Sequence) Sequence {
	out := make(Sequence, len(seq))
	for i, sym := range seq {
		out[i] = n.Normalize(sym)
	}
	return out
}
