package resultstore_test

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/accentis/accentis/internal/eval"
	"github.com/accentis/accentis/internal/resultstore"
)

func sampleResult(speaker string) resultstore.Result {
	return resultstore.Result{
		Speaker:    speaker,
		Transcript: "heed",
		Evaluation: &eval.Evaluation{
			Observed:  []string{"HH", "IY", "D"},
			Reference: []string{"HH", "IY", "D"},
			Strategy:  "gap_aware",
			Score:     1.0,
		},
	}
}

func TestFileStoreAppendsJSONLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.jsonl")
	fs := resultstore.NewFileStore(path)

	for _, speaker := range []string{"alice", "bob"} {
		if err := fs.Save(context.Background(), sampleResult(speaker)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var lines []resultstore.Result
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r resultstore.Result
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		lines = append(lines, r)
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}

	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Speaker != "alice" || lines[1].Speaker != "bob" {
		t.Errorf("speakers = %q, %q; want alice, bob", lines[0].Speaker, lines[1].Speaker)
	}
	if lines[0].Timestamp.IsZero() {
		t.Error("timestamp was not filled in")
	}
	if lines[0].Evaluation == nil || lines[0].Evaluation.Score != 1.0 {
		t.Errorf("evaluation payload did not round-trip: %+v", lines[0].Evaluation)
	}
}

func TestFileStoreKeepsExplicitTimestamp(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.jsonl")
	fs := resultstore.NewFileStore(path)

	want := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	r := sampleResult("carol")
	r.Timestamp = want
	if err := fs.Save(context.Background(), r); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got resultstore.Result
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if !got.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, want)
	}
}

func TestFileStoreConcurrentSaves(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.jsonl")
	fs := resultstore.NewFileStore(path)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fs.Save(context.Background(), sampleResult("dave")); err != nil {
				t.Errorf("Save: %v", err)
			}
		}()
	}
	wg.Wait()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	count := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r resultstore.Result
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("interleaved write produced invalid JSON: %v", err)
		}
		count++
	}
	if count != n {
		t.Errorf("got %d lines, want %d", count, n)
	}
}
