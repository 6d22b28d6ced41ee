package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func statFile(t *testing.T, path string) os.FileInfo {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return info
}

func TestFileCacheRoundTrip(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "lib.rs")
	if err := os.WriteFile(path, []byte("fn a() {}\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	info := statFile(t, path)

	cache := NewFileCache(root)
	if _, hit := cache.Get(path, info); hit {
		t.Error("empty cache reported a hit")
	}

	cache.Update(path, info, "deadbeef")
	hash, hit := cache.Get(path, info)
	if !hit || hash != "deadbeef" {
		t.Errorf("Get() = %q, %v; want deadbeef, true", hash, hit)
	}

	if err := cache.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// A fresh cache loads the persisted entries.
	reloaded := NewFileCache(root)
	hash, hit = reloaded.Get(path, info)
	if !hit || hash != "deadbeef" {
		t.Errorf("reloaded Get() = %q, %v; want deadbeef, true", hash, hit)
	}
}

func TestFileCacheMissOnChange(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "lib.rs")
	if err := os.WriteFile(path, []byte("fn a() {}\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	info := statFile(t, path)

	cache := NewFileCache(root)
	cache.Update(path, info, "deadbeef")

	// Grow the file; size mismatch invalidates regardless of modtime
	// granularity.
	if err := os.WriteFile(path, []byte("fn a() {}\nfn b() {}\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite file: %v", err)
	}
	if _, hit := cache.Get(path, statFile(t, path)); hit {
		t.Error("cache hit after the file changed size")
	}
}

func TestFileCacheForget(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "lib.rs")
	if err := os.WriteFile(path, []byte("fn a() {}\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	info := statFile(t, path)

	cache := NewFileCache(root)
	cache.Update(path, info, "deadbeef")
	cache.Forget(path)

	if _, hit := cache.Get(path, info); hit {
		t.Error("cache hit after Forget")
	}
	if len(cache.Snapshot()) != 0 {
		t.Errorf("Snapshot() = %v, want empty", cache.Snapshot())
	}
}

func TestFileCacheCorruptManifest(t *testing.T) {
	root := t.TempDir()
	manifest := filepath.Join(root, ".regexle", "cache", "manifest.json")
	if err := os.MkdirAll(filepath.Dir(manifest), 0755); err != nil {
		t.Fatalf("failed to create cache dir: %v", err)
	}
	if err := os.WriteFile(manifest, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	cache := NewFileCache(root)
	if len(cache.Snapshot()) != 0 {
		t.Errorf("corrupt manifest loaded entries: %v", cache.Snapshot())
	}
}

func TestFileCacheSaveNotDirty(t *testing.T) {
	root := t.TempDir()
	cache := NewFileCache(root)
	if err := cache.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, ".regexle", "cache", "manifest.json")); !os.IsNotExist(err) {
		t.Error("clean cache wrote a manifest")
	}
}
