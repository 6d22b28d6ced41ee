package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestScanIncrementalFirstRunFallsBackToFull(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"lib.rs": "fn alpha() {}\n"})

	s := newTestScanner(t)
	res, err := s.ScanIncremental(context.Background(), root, nil, IncrementalOptions{})
	if err != nil {
		t.Fatalf("ScanIncremental() error = %v", err)
	}
	if !res.Full {
		t.Error("first run should fall back to a full scan")
	}
	if len(res.Matches) != 1 || res.Matches[0].Name != "alpha" {
		t.Errorf("Matches = %+v", res.Matches)
	}
}

func TestScanIncrementalUnchanged(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"lib.rs": "fn alpha() {}\n"})

	s := newTestScanner(t)
	if _, err := s.Scan(context.Background(), root, nil); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	res, err := s.ScanIncremental(context.Background(), root, nil, IncrementalOptions{SkipWhenUnchanged: true})
	if err != nil {
		t.Fatalf("ScanIncremental() error = %v", err)
	}
	if !res.Unchanged {
		t.Errorf("result = %+v, want Unchanged", res)
	}
}

func TestScanIncrementalMatchesOrdered(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"seed.rs": "fn seed() {}\n"})

	s := newTestScanner(t)
	if _, err := s.Scan(context.Background(), root, nil); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	files := map[string]string{}
	for i := 0; i < 8; i++ {
		files[fmt.Sprintf("n%02d.rs", i)] = fmt.Sprintf("fn a_%02d() {}\nfn b_%02d() {}\n", i, i)
	}
	writeFiles(t, root, files)

	res, err := s.ScanIncremental(context.Background(), root, nil, IncrementalOptions{})
	if err != nil {
		t.Fatalf("ScanIncremental() error = %v", err)
	}
	if len(res.Matches) != 16 {
		t.Fatalf("got %d matches, want 16", len(res.Matches))
	}
	for i := 1; i < len(res.Matches); i++ {
		prev, cur := res.Matches[i-1], res.Matches[i]
		if prev.File > cur.File || (prev.File == cur.File && prev.Line > cur.Line) {
			t.Fatalf("matches out of order at %d: %s:%d after %s:%d",
				i, cur.File, cur.Line, prev.File, prev.Line)
		}
	}
	for i := 1; i < len(res.NewFiles); i++ {
		if res.NewFiles[i-1] > res.NewFiles[i] {
			t.Fatalf("NewFiles out of order: %v", res.NewFiles)
		}
	}
}

func TestScanIncrementalDetectsDeltas(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"lib.rs":  "fn alpha() {}\n",
		"gone.rs": "fn doomed() {}\n",
	})

	s := newTestScanner(t)
	if _, err := s.Scan(context.Background(), root, nil); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	// Change size so the delta is visible regardless of modtime
	// granularity.
	writeFiles(t, root, map[string]string{
		"lib.rs": "fn alpha() {}\nfn beta() {}\n",
		"new.rs": "fn fresh() {}\n",
	})
	if err := os.Remove(filepath.Join(root, "gone.rs")); err != nil {
		t.Fatalf("failed to remove file: %v", err)
	}

	res, err := s.ScanIncremental(context.Background(), root, nil, IncrementalOptions{SkipWhenUnchanged: true})
	if err != nil {
		t.Fatalf("ScanIncremental() error = %v", err)
	}
	if res.Full || res.Unchanged {
		t.Fatalf("result = %+v, want delta scan", res)
	}

	if len(res.ChangedFiles) != 1 || filepath.Base(res.ChangedFiles[0]) != "lib.rs" {
		t.Errorf("ChangedFiles = %v, want [lib.rs]", res.ChangedFiles)
	}
	if len(res.NewFiles) != 1 || filepath.Base(res.NewFiles[0]) != "new.rs" {
		t.Errorf("NewFiles = %v, want [new.rs]", res.NewFiles)
	}
	if len(res.DeletedFiles) != 1 || filepath.Base(res.DeletedFiles[0]) != "gone.rs" {
		t.Errorf("DeletedFiles = %v, want [gone.rs]", res.DeletedFiles)
	}

	names := map[string]bool{}
	for _, m := range res.Matches {
		names[m.Name] = true
	}
	for _, want := range []string{"alpha", "beta", "fresh"} {
		if !names[want] {
			t.Errorf("missing re-extracted match %q in %v", want, names)
		}
	}
	if names["doomed"] {
		t.Error("deleted file still produced matches")
	}

	// The deletion is pruned from the cache, so the next incremental
	// pass is quiet.
	again, err := s.ScanIncremental(context.Background(), root, nil, IncrementalOptions{SkipWhenUnchanged: true})
	if err != nil {
		t.Fatalf("second ScanIncremental() error = %v", err)
	}
	if !again.Unchanged {
		t.Errorf("second pass = %+v, want Unchanged", again)
	}
}
