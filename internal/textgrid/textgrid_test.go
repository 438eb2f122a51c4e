package textgrid_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/accentis/accentis/internal/textgrid"
)

// sampleGrid is a minimal MFA-style TextGrid with a words tier and a phones
// tier, including a leading silence interval and an unlabelled pause.
const sampleGrid = `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 1.5
tiers? <exists>
size = 2
item []:
	item [1]:
		class = "IntervalTier"
		name = "words"
		xmin = 0
		xmax = 1.5
		intervals: size = 2
		intervals [1]:
			xmin = 0
			xmax = 0.25
			text = ""
		intervals [2]:
			xmin = 0.25
			xmax = 1.5
			text = "hello"
	item [2]:
		class = "IntervalTier"
		name = "phones"
		xmin = 0
		xmax = 1.5
		intervals: size = 6
		intervals [1]:
			xmin = 0
			xmax = 0.25
			text = "sil"
		intervals [2]:
			xmin = 0.25
			xmax = 0.5
			text = "h"
		intervals [3]:
			xmin = 0.5
			xmax = 0.75
			text = "ɛ"
		intervals [4]:
			xmin = 0.75
			xmax = 1.0
			text = "l"
		intervals [5]:
			xmin = 1.0
			xmax = 1.2
			text = ""
		intervals [6]:
			xmin = 1.2
			xmax = 1.5
			text = "ow"
`

func TestParse_SampleGrid(t *testing.T) {
	t.Parallel()

	tg, err := textgrid.Parse(strings.NewReader(sampleGrid))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if tg.XMin != 0 || tg.XMax != 1.5 {
		t.Errorf("bounds = [%f, %f], want [0, 1.5]", tg.XMin, tg.XMax)
	}
	if len(tg.Tiers) != 2 {
		t.Fatalf("len(Tiers) = %d, want 2", len(tg.Tiers))
	}
	if tg.Tiers[0].Name != "words" || tg.Tiers[1].Name != "phones" {
		t.Errorf("tier names = %q, %q; want words, phones", tg.Tiers[0].Name, tg.Tiers[1].Name)
	}
	phones := tg.Tiers[1]
	if len(phones.Intervals) != 6 {
		t.Fatalf("len(phones.Intervals) = %d, want 6", len(phones.Intervals))
	}
	second := phones.Intervals[1]
	if second.Label != "h" || second.Start != 0.25 || second.End != 0.5 {
		t.Errorf("interval[1] = %+v, want {h 0.25 0.5}", second)
	}
}

func TestParse_RejectsNonTextGrid(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"just some text\nwith no header\n",
		"File type = \"binary\"\n",
		"File type = \"ooTextFile\"\nObject class = \"Collection\"\n",
	}
	for _, in := range cases {
		_, err := textgrid.Parse(strings.NewReader(in))
		if !errors.Is(err, textgrid.ErrParse) {
			t.Errorf("Parse(%.20q): err = %v, want ErrParse", in, err)
		}
	}
}

func TestParse_RejectsBadNumbers(t *testing.T) {
	t.Parallel()

	in := "File type = \"ooTextFile\"\nObject class = \"TextGrid\"\nxmin = banana\n"
	_, err := textgrid.Parse(strings.NewReader(in))
	if !errors.Is(err, textgrid.ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestExtractPhonemes_SkipsSilenceAndBlanks(t *testing.T) {
	t.Parallel()

	tg, err := textgrid.Parse(strings.NewReader(sampleGrid))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	seq, err := textgrid.ExtractPhonemes(tg, "phones")
	if err != nil {
		t.Fatalf("ExtractPhonemes returned error: %v", err)
	}

	want := []string{"h", "ɛ", "l", "ow"}
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

func TestExtractPhonemes_TierNotFound(t *testing.T) {
	t.Parallel()

	tg, err := textgrid.Parse(strings.NewReader(sampleGrid))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	_, err = textgrid.ExtractPhonemes(tg, "syllables")
	if !errors.Is(err, textgrid.ErrTierNotFound) {
		t.Errorf("err = %v, want ErrTierNotFound", err)
	}
}

func TestExtractPhonemes_CustomSilenceLabels(t *testing.T) {
	t.Parallel()

	tg, err := textgrid.Parse(strings.NewReader(sampleGrid))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	// With an empty silence set, "sil" flows through as a symbol. Blank
	// labels are still skipped: they are never phonemes.
	seq, err := textgrid.ExtractPhonemes(tg, "phones",
		textgrid.WithSilenceLabels(nil),
	)
	if err != nil {
		t.Fatalf("ExtractPhonemes returned error: %v", err)
	}
	if len(seq) != 5 || seq[0] != "sil" {
		t.Errorf("sequence = %v, want leading sil and length 5", seq.Strings())
	}
}

func TestExtractPhonemes_DuplicateTierFirstWins(t *testing.T) {
	t.Parallel()

	dup := `File type = "ooTextFile"
Object class = "TextGrid"
xmin = 0
xmax = 1
item []:
	item [1]:
		class = "IntervalTier"
		name = "phones"
		intervals [1]:
			xmin = 0
			xmax = 1
			text = "t"
	item [2]:
		class = "IntervalTier"
		name = "phones"
		intervals [1]:
			xmin = 0
			xmax = 1
			text = "k"
`
	tg, err := textgrid.Parse(strings.NewReader(dup))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	seq, err := textgrid.ExtractPhonemes(tg, "phones")
	if err != nil {
		t.Fatalf("ExtractPhonemes returned error: %v", err)
	}
	if len(seq) != 1 || seq[0] != "t" {
		t.Errorf("sequence = %v, want [t] from the first tier", seq.Strings())
	}
}

func TestParse_SkipsPointTiers(t *testing.T) {
	t.Parallel()

	in := `File type = "ooTextFile"
Object class = "TextGrid"
xmin = 0
xmax = 1
item []:
	item [1]:
		class = "TextTier"
		name = "clicks"
		points: size = 1
		points [1]:
			number = 0.5
			mark = "x"
	item [2]:
		class = "IntervalTier"
		name = "phones"
		intervals [1]:
			xmin = 0
			xmax = 1
			text = "t"
`
	tg, err := textgrid.Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(tg.Tiers) != 1 || tg.Tiers[0].Name != "phones" {
		t.Errorf("Tiers = %+v, want only the phones interval tier", tg.Tiers)
	}
}
