// Package textgrid reads Praat TextGrid annotation files — the tiered
// time-interval format produced by forced-alignment tools such as the
// Montreal Forced Aligner — and extracts phoneme sequences from a named
// interval tier.
//
// Only the long ("ooTextFile") interval-tier format is supported, which is
// what MFA emits. Point tiers are skipped. Parsing is intentionally
// line-oriented and minimal rather than a full Praat grammar; it handles the
// files this pipeline actually consumes.
package textgrid

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrParse is wrapped by all errors reporting a malformed TextGrid file.
var ErrParse = errors.New("textgrid: malformed input")

// Interval is a single labelled time span within a tier.
type Interval struct {
	// Label is the annotation text, unmodified (may be empty for silence).
	Label string

	// Start and End are the interval boundaries in seconds.
	Start float64
	End   float64
}

// Duration returns the interval length in seconds.
func (iv Interval) Duration() float64 { return iv.End - iv.Start }

// Tier is a named, time-ordered track of intervals.
type Tier struct {
	Name      string
	Intervals []Interval
}

// TextGrid is a parsed annotation file: an ordered list of interval tiers.
type TextGrid struct {
	// XMin and XMax are the overall time bounds in seconds.
	XMin float64
	XMax float64

	Tiers []Tier
}

// ParseFile opens and parses the TextGrid file at path.
func ParseFile(path string) (*TextGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("textgrid: open %q: %w", path, err)
	}
	defer f.Close()

	tg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("textgrid: parse %q: %w", path, err)
	}
	return tg, nil
}

// Parse reads a long-format TextGrid from r.
//
// The parser tracks three nesting levels: file header, tier (`item [n]:`),
// and interval (`intervals [n]:`). Key/value lines (`xmin = 0.48`) are
// assigned to the innermost open level. Tiers whose class is not
// "IntervalTier" are ignored.
func Parse(r io.Reader) (*TextGrid, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	tg := &TextGrid{}
	var (
		sawHeader   bool
		curTier     *Tier
		curInterval *Interval
		tierIsPoint bool
		lineNo      int
	)

	flushInterval := func() {
		if curTier != nil && curInterval != nil && !tierIsPoint {
			curTier.Intervals = append(curTier.Intervals, *curInterval)
		}
		curInterval = nil
	}
	flushTier := func() {
		flushInterval()
		if curTier != nil && !tierIsPoint {
			tg.Tiers = append(tg.Tiers, *curTier)
		}
		curTier = nil
		tierIsPoint = false
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "File type"):
			if !strings.Contains(line, "ooTextFile") {
				return nil, fmt.Errorf("line %d: unsupported file type %q: %w", lineNo, line, ErrParse)
			}
			sawHeader = true
			continue
		case strings.HasPrefix(line, "Object class"):
			if !strings.Contains(line, "TextGrid") {
				return nil, fmt.Errorf("line %d: unsupported object class %q: %w", lineNo, line, ErrParse)
			}
			continue
		case line == "item []:" || strings.HasPrefix(line, "tiers?") || strings.HasPrefix(line, "size"):
			continue
		case strings.HasPrefix(line, "item ["):
			flushTier()
			curTier = &Tier{}
			continue
		case strings.HasPrefix(line, "intervals:"):
			// "intervals: size = N" — the declared count; we trust the
			// actual interval blocks instead.
			continue
		case strings.HasPrefix(line, "intervals ["):
			flushInterval()
			curInterval = &Interval{}
			continue
		case strings.HasPrefix(line, "points"):
			// Point-tier content; the whole tier is skipped at flush time.
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected key = value, got %q: %w", lineNo, line, ErrParse)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "class":
			tierIsPoint = !strings.Contains(value, "IntervalTier")
		case "name":
			if curTier != nil {
				curTier.Name = unquote(value)
			}
		case "text", "mark":
			if curInterval != nil {
				curInterval.Label = unquote(value)
			}
		case "xmin", "number", "time":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad numeric value %q: %w", lineNo, value, ErrParse)
			}
			switch {
			case curInterval != nil:
				curInterval.Start = f
			case curTier != nil:
				// Tier-level bound; not retained.
			default:
				tg.XMin = f
			}
		case "xmax":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad numeric value %q: %w", lineNo, value, ErrParse)
			}
			switch {
			case curInterval != nil:
				curInterval.End = f
			case curTier != nil:
				// Tier-level bound; not retained.
			default:
				tg.XMax = f
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if !sawHeader {
		return nil, fmt.Errorf("missing ooTextFile header: %w", ErrParse)
	}
	flushTier()

	return tg, nil
}

// unquote strips the surrounding double quotes Praat puts around string
// values. Interior escaped quotes ("") are collapsed.
func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.ReplaceAll(s, `""`, `"`)
}
