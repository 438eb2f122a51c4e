// Package phoneme provides the canonical phoneme alphabet used throughout
// Accentis: symbol and sequence types, notation normalization (IPA → CMU),
// and an acoustic-similarity model for comparing two canonical symbols.
//
// All types in this package are pure values or read-only after construction
// and are safe for concurrent use.
package phoneme

import (
	"strings"
	"unicode"
)

// UNK is the sentinel symbol emitted for sounds or words that cannot be
// resolved to a known phoneme (e.g., out-of-dictionary words, or the "spn"
// token produced by forced aligners for spoken noise).
const UNK Symbol = "UNK"

// Symbol is a single phoneme label in some phonetic notation, e.g. "AE",
// "T", or "ð". Symbols are opaque text; two symbols are only comparable
// after normalization into the canonical CMU-style alphabet.
type Symbol string

// Sequence is an ordered list of phoneme symbols. Order is temporally
// significant: it is the order the sounds were (or should be) produced in.
// A Sequence may be empty.
type Sequence []Symbol

// Strings returns the sequence as a plain []string, for serialisation.
func (s Sequence) Strings() []string {
	out := make([]string, len(s))
	for i, sym := range s {
		out[i] = string(sym)
	}
	return out
}

// SequenceOf builds a Sequence from plain strings.
func SequenceOf(symbols ...string) Sequence {
	seq := make(Sequence, len(symbols))
	for i, s := range symbols {
		seq[i] = Symbol(s)
	}
	return seq
}

// StripMarkers returns s with all digit runes removed. CMU-style notation
// appends stress digits to vowels ("AH0", "EH1"); those markers are
// informational and are excluded from comparisons. The stored symbol is
// never mutated — stripping happens only at comparison time.
func StripMarkers(s Symbol) Symbol {
	if !strings.ContainsFunc(string(s), unicode.IsDigit) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return Symbol(b.String())
}

// canonical returns the canonical comparison form of s: uppercased with
// stress markers removed.
func canonical(s Symbol) Symbol {
	return StripMarkers(Symbol(strings.ToUpper(string(s))))
}
