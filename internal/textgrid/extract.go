package textgrid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/accentis/accentis/internal/phoneme"
)

// ErrTierNotFound is wrapped by [ExtractPhonemes] when the annotation
// contains no tier with the requested name.
var ErrTierNotFound = errors.New("textgrid: tier not found")

// DefaultSilenceLabels lists interval labels that mark silence or pauses
// rather than phonemes. Intervals carrying these labels are discarded during
// extraction. "spn" is deliberately absent: spoken noise is a produced sound
// and flows through as the UNK sentinel after normalization.
var DefaultSilenceLabels = []string{"sil", "sp", ""}

// ExtractOption is a functional option for configuring extraction.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	silenceLabels map[string]struct{}
}

// WithSilenceLabels replaces the set of labels treated as non-phoneme
// silence markers. Labels are compared after whitespace trimming.
func WithSilenceLabels(labels []string) ExtractOption {
	return func(c *extractConfig) {
		c.silenceLabels = make(map[string]struct{}, len(labels))
		for _, l := range labels {
			c.silenceLabels[l] = struct{}{}
		}
	}
}

// ExtractPhonemes returns the ordered phoneme sequence of the tier named
// tierName. Intervals are visited in time order; intervals whose label is
// blank after trimming, or matches a configured silence label, are skipped.
// Labels are emitted trimmed but otherwise raw: notation normalization is
// the caller's job.
//
// When several tiers share tierName the first in file order wins — a
// degenerate input the producing aligner should not emit, tolerated rather
// than rejected. Zero matching tiers is an error wrapping [ErrTierNotFound].
func ExtractPhonemes(tg *TextGrid, tierName string, opts ...ExtractOption) (phoneme.Sequence, error) {
	cfg := &extractConfig{}
	WithSilenceLabels(DefaultSilenceLabels)(cfg)
	for _, o := range opts {
		o(cfg)
	}

	tier, err := findTier(tg, tierName)
	if err != nil {
		return nil, err
	}

	var seq phoneme.Sequence
	for _, iv := range tier.Intervals {
		label := strings.TrimSpace(iv.Label)
		if _, silent := cfg.silenceLabels[label]; silent {
			continue
		}
		if label == "" {
			continue
		}
		seq = append(seq, phoneme.Symbol(label))
	}
	return seq, nil
}

func findTier(tg *TextGrid, name string) (*Tier, error) {
	for i := range tg.Tiers {
		if tg.Tiers[i].Name == name {
			return &tg.Tiers[i], nil
		}
	}
	return nil, fmt.Errorf("no tier named %q among %d tiers: %w", name, len(tg.Tiers), ErrTierNotFound)
}
