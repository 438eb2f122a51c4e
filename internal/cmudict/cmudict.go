// Package cmudict loads CMU Pronouncing Dictionary files and decomposes
// transcripts into reference phoneme sequences.
//
// The dictionary format is plain text, one entry per line:
//
//	HELLO  HH AH0 L OW1
//	HELLO(1)  HH EH0 L OW1
//	;;; comment
//
// Alternate pronunciations carry a "(n)" suffix; only the first variant of
// each word is retained, matching the behaviour of dictionary-based
// grapheme-to-phoneme lookup in speech evaluation pipelines. Words missing
// from the dictionary map to the single UNK sentinel.
package cmudict

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/accentis/accentis/internal/phoneme"
)

// Dict is an in-memory pronunciation dictionary. Read-only after
// construction and safe for concurrent use.
type Dict struct {
	entries map[string]phoneme.Sequence
}

// Load reads a dictionary file from path.
func Load(path string) (*Dict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cmudict: open %q: %w", path, err)
	}
	defer f.Close()

	d, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("cmudict: read %q: %w", path, err)
	}
	return d, nil
}

// Read parses dictionary entries from r. Lines that are blank, comments
// (";;;" prefix), or alternate-pronunciation variants are skipped.
func Read(r io.Reader) (*Dict, error) {
	d := &Dict{entries: make(map[string]phoneme.Sequence)}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";;;") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		word := fields[0]
		// "WORD(1)" marks an alternate pronunciation; only the first
		// variant is kept.
		if strings.Contains(word, "(") {
			continue
		}
		word = strings.ToLower(word)
		if _, dup := d.entries[word]; dup {
			continue
		}
		d.entries[word] = phoneme.SequenceOf(fields[1:]...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return d, nil
}

// New builds a Dict directly from a word → pronunciation map. Intended for
// tests and embedded vocabularies; keys are lowercased.
func New(entries map[string][]string) *Dict {
	d := &Dict{entries: make(map[string]phoneme.Sequence, len(entries))}
	for word, prons := range entries {
		d.entries[strings.ToLower(word)] = phoneme.SequenceOf(prons...)
	}
	return d
}

// Len returns the number of distinct words in the dictionary.
func (d *Dict) Len() int { return len(d.entries) }

// Lookup returns the first-listed pronunciation of word (case-insensitive).
func (d *Dict) Lookup(word string) (phoneme.Sequence, bool) {
	seq, ok := d.entries[strings.ToLower(word)]
	return seq, ok
}

// TranscriptToPhonemes decomposes a transcript into the reference phoneme
// sequence: each word is lowercased, stripped to letters only, and looked
// up; unknown words contribute a single [phoneme.UNK] sentinel so the
// aligner can still pair (and penalise) whatever was produced in their
// place. Words that are empty after punctuation stripping are dropped.
func (d *Dict) TranscriptToPhonemes(transcript string) phoneme.Sequence {
	var seq phoneme.Sequence
	for _, word := range strings.Fields(strings.ToLower(transcript)) {
		word = lettersOnly(word)
		if word == "" {
			continue
		}
		if pron, ok := d.entries[word]; ok {
			seq = append(seq, pron...)
		} else {
			seq = append(seq, phoneme.UNK)
		}
	}
	return seq
}

func lettersOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, s)
}
