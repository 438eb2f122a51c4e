package cmudict_test

import (
	"strings"
	"testing"

	"github.com/accentis/accentis/internal/cmudict"
	"github.com/accentis/accentis/internal/phoneme"
)

const sampleDict = `;;; sample of the CMU pronouncing dictionary
HELLO  HH AH0 L OW1
HELLO(1)  HH EH0 L OW1
WORLD  W ER1 L D
CAT  K AE1 T
`

func TestRead_FirstVariantWins(t *testing.T) {
	t.Parallel()

	d, err := cmudict.Read(strings.NewReader(sampleDict))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if d.Len() != 3 {
		t.Errorf("Len() = %d, want 3", d.Len())
	}

	pron, ok := d.Lookup("hello")
	if !ok {
		t.Fatal("Lookup(hello) not found")
	}
	want := []string{"HH", "AH0", "L", "OW1"}
	got := pron.Strings()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pronunciation[%d] = %q, want %q (first variant)", i, got[i], want[i])
		}
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	t.Parallel()

	d, err := cmudict.Read(strings.NewReader(sampleDict))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if _, ok := d.Lookup("HeLLo"); !ok {
		t.Error("Lookup(HeLLo) not found, want case-insensitive hit")
	}
}

func TestTranscriptToPhonemes(t *testing.T) {
	t.Parallel()

	d, err := cmudict.Read(strings.NewReader(sampleDict))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}

	seq := d.TranscriptToPhonemes("Hello, world!")
	want := []string{"HH", "AH0", "L", "OW1", "W", "ER1", "L", "D"}
	got := seq.Strings()
	if len(got) != len(want) {
		t.Fatalf("sequence = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sequence[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTranscriptToPhonemes_UnknownWordIsUNK(t *testing.T) {
	t.Parallel()

	d, err := cmudict.Read(strings.NewReader(sampleDict))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}

	seq := d.TranscriptToPhonemes("hello zyzzyva")
	if seq[len(seq)-1] != phoneme.UNK {
		t.Errorf("last symbol = %q, want UNK sentinel", seq[len(seq)-1])
	}
}

func TestTranscriptToPhonemes_PunctuationOnlyWordsDropped(t *testing.T) {
	t.Parallel()

	d := cmudict.New(map[string][]string{"cat": {"K", "AE1", "T"}})

	seq := d.TranscriptToPhonemes("cat -- !!")
	if len(seq) != 3 {
		t.Errorf("sequence = %v, want only the phonemes of cat", seq.Strings())
	}
}
