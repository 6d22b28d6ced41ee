package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/regexle/regexle/internal/extract"
	"github.com/regexle/regexle/internal/store"
)

// IncrementalOptions controls incremental scan behavior.
type IncrementalOptions struct {
	// SkipWhenUnchanged returns Unchanged=true when no deltas detected.
	SkipWhenUnchanged bool
}

// IncrementalResult describes an incremental scan. If Full=true the
// cache was empty and a complete scan ran instead.
type IncrementalResult struct {
	Full         bool
	Unchanged    bool
	ChangedFiles []string
	NewFiles     []string
	DeletedFiles []string
	Matches      []extract.Match
	FileCount    int
	Duration     time.Duration
}

// ScanIncremental diffs the file cache against the live tree and
// re-extracts only changed or new files. Deletions are pruned from the
// cache and the index.
func (s *Scanner) ScanIncremental(ctx context.Context, root string, idx *store.Store, opts IncrementalOptions) (*IncrementalResult, error) {
	start := time.Now()

	cache := NewFileCache(root)
	defer func() {
		if err := cache.Save(); err != nil {
			s.log.Warn("failed to save file cache", zap.Error(err))
		}
	}()

	prevEntries := cache.Snapshot()

	// Lightweight walk: build the current file set.
	currentFiles := make(map[string]os.FileInfo)
	var fileCount int
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if skipDir(root, path, name, s.config.IgnorePatterns) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err == nil && isIgnoredRel(rel, name, s.config.IgnorePatterns) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		currentFiles[path] = info
		fileCount++
		return nil
	})

	// No prior cache: fall back to a full scan (first run).
	if len(prevEntries) == 0 {
		full, err := s.Scan(ctx, root, idx)
		if err != nil {
			return nil, err
		}
		return &IncrementalResult{
			Full:      true,
			Matches:   full.Matches,
			FileCount: full.FileCount,
			Duration:  time.Since(start),
		}, nil
	}

	changed := make([]string, 0)
	newFiles := make([]string, 0)
	for path, info := range currentFiles {
		if prev, ok := prevEntries[path]; ok {
			if prev.ModTime == info.ModTime().Unix() && prev.Size == info.Size() {
				continue
			}
			changed = append(changed, path)
		} else {
			newFiles = append(newFiles, path)
		}
	}

	deleted := make([]string, 0)
	for path := range prevEntries {
		if _, ok := currentFiles[path]; !ok {
			deleted = append(deleted, path)
		}
	}
	// Map iteration order leaks into the result otherwise.
	sort.Strings(changed)
	sort.Strings(newFiles)
	sort.Strings(deleted)

	if len(changed) == 0 && len(newFiles) == 0 && len(deleted) == 0 && opts.SkipWhenUnchanged {
		return &IncrementalResult{
			Unchanged: true,
			FileCount: fileCount,
			Duration:  time.Since(start),
		}, nil
	}

	pathsToParse := append([]string{}, changed...)
	pathsToParse = append(pathsToParse, newFiles...)

	var mu sync.Mutex
	matches := make([]extract.Match, 0, len(pathsToParse))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	for _, p := range pathsToParse {
		path := p
		info := currentFiles[path]
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			rec, fileMatches, err := s.processFile(path, info, cache)
			if err != nil {
				s.log.Debug("skipping file", zap.String("path", path), zap.Error(err))
				return nil
			}

			if idx != nil {
				if err := idx.UpsertFile(rec); err != nil {
					return err
				}
				if err := idx.ReplaceFileMatches(path, fileMatches); err != nil {
					return err
				}
			}

			mu.Lock()
			matches = append(matches, fileMatches...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("incremental scan of %s failed: %w", root, err)
	}
	sortMatches(matches)

	// Handle deletions: drop from index and cache.
	for _, p := range deleted {
		if idx != nil {
			if err := idx.DeleteFile(p); err != nil {
				s.log.Warn("failed to prune deleted file from index",
					zap.String("path", p), zap.Error(err))
			}
		}
		cache.Forget(p)
	}

	s.log.Info("incremental scan complete",
		zap.Int("changed", len(changed)),
		zap.Int("new", len(newFiles)),
		zap.Int("deleted", len(deleted)),
		zap.Duration("took", time.Since(start)))

	return &IncrementalResult{
		ChangedFiles: changed,
		NewFiles:     newFiles,
		DeletedFiles: deleted,
		Matches:      matches,
		FileCount:    fileCount,
		Duration:     time.Since(start),
	}, nil
}
