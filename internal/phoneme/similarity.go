package phoneme

// MatchThreshold is the similarity score a symbol pairing must exceed to be
// accepted as a match downstream (both in alignment costing and in the
// per-position diagnostic report).
const MatchThreshold = 0.7

// defaultClassScore is the partial credit awarded when two distinct symbols
// belong to the same confusable class.
const defaultClassScore = 0.8

// DefaultConfusableClasses groups canonical symbols that are acoustically
// close enough to earn partial credit when substituted for each other.
// Modelled on the confusable-phone folding used in phone-recognition
// evaluation (e.g., the TIMIT 39-phone reduction). Extend by data, not code.
var DefaultConfusableClasses = [][]Symbol{
	// Central/back open vowels.
	{"AA", "AO", "AH"},
	// High back vowels.
	{"UW", "UH"},
	// Front vowels.
	{"IY", "IH"},
	{"EH", "AE"},
	// Nasals.
	{"N", "NG", "M"},
	// Voiced/voiceless dental fricatives.
	{"DH", "TH"},
	// Sibilants.
	{"S", "Z"},
	{"SH", "ZH"},
}

// ModelOption is a functional option for configuring a similarity [Model].
type ModelOption func(*Model)

// WithClasses replaces the confusable-class table. Each inner slice is one
// class; membership is tested on the canonical comparison form of a symbol.
func WithClasses(classes [][]Symbol) ModelOption {
	return func(m *Model) {
		m.classes = classes
	}
}

// WithClassScore sets the partial credit awarded for same-class pairings.
// Default: 0.8. Values at or below [MatchThreshold] make class pairings
// stop counting as matches.
func WithClassScore(score float64) ModelOption {
	return func(m *Model) {
		m.classScore = score
	}
}

// WithUNKMismatch controls how two [UNK] sentinels compare. By default UNK
// equals UNK literally and scores 1.0, meaning two unknown words "match".
// Passing true forces UNK-vs-UNK to score 0 so that unresolved symbols can
// never be counted as correct pronunciation.
func WithUNKMismatch(force bool) ModelOption {
	return func(m *Model) {
		m.unkMismatch = force
	}
}

// Model scores the acoustic similarity of two phoneme symbols.
//
// Scoring rules, applied to the canonical comparison form (uppercased,
// stress markers stripped):
//
//	equal symbols              → 1.0
//	same confusable class      → class score (default 0.8)
//	anything else              → 0.0
//
// A Model is read-only after construction and safe for concurrent use.
type Model struct {
	classScore  float64
	unkMismatch bool
	classes     [][]Symbol

	// classOf is the flattened membership index built at construction.
	classOf map[Symbol]int
}

// NewModel returns a similarity Model using [DefaultConfusableClasses]
// unless overridden.
func NewModel(opts ...ModelOption) *Model {
	m := &Model{
		classScore: defaultClassScore,
		classes:    DefaultConfusableClasses,
	}
	for _, o := range opts {
		o(m)
	}
	m.classOf = make(map[Symbol]int)
	for i, class := range m.classes {
		for _, sym := range class {
			// First class wins for symbols listed in more than one class.
			if _, ok := m.classOf[sym]; !ok {
				m.classOf[sym] = i
			}
		}
	}
	return m
}

// Score returns the similarity of a and b in [0.0, 1.0].
func (m *Model) Score(a, b Symbol) float64 {
	ca, cb := canonical(a), canonical(b)
	if m.unkMismatch && ca == UNK && cb == UNK {
		return 0.0
	}
	if ca == cb {
		return 1.0
	}
	ia, ok := m.classOf[ca]
	if !ok {
		return 0.0
	}
	ib, ok := m.classOf[cb]
	if !ok {
		return 0.0
	}
	if ia == ib {
		return m.classScore
	}
	return 0.0
}

// Matches reports whether a and b are similar enough to count as an
// accepted match, i.e. Score(a, b) > [MatchThreshold].
func (m *Model) Matches(a, b Symbol) bool {
	return m.Score(a, b) > MatchThreshold
}
