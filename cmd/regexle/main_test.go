package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func TestConfigRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.rs")
	if err := os.WriteFile(file, []byte("fn a() {}\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	plain := &cobra.Command{}

	if got := configRoot(plain, []string{dir}); got != dir {
		t.Errorf("directory arg: configRoot() = %q, want %q", got, dir)
	}
	// A file argument (e.g. a verify fixture) is not a workspace.
	if got := configRoot(plain, []string{file}); got != "." {
		t.Errorf("file arg: configRoot() = %q, want .", got)
	}
	if got := configRoot(plain, nil); got != "." {
		t.Errorf("no args: configRoot() = %q, want .", got)
	}

	flagged := &cobra.Command{}
	flagged.Flags().String("root", dir, "")
	if got := configRoot(flagged, nil); got != dir {
		t.Errorf("--root flag: configRoot() = %q, want %q", got, dir)
	}
}
