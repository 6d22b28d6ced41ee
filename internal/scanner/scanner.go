// Package scanner walks a workspace, hashes files, and runs the
// pattern extractor over every source file it recognizes.
package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/regexle/regexle/internal/catalog"
	"github.com/regexle/regexle/internal/extract"
	"github.com/regexle/regexle/internal/logging"
	"github.com/regexle/regexle/internal/store"
)

// Scanner handles workspace indexing and extraction.
type Scanner struct {
	config    Config
	extractor *extract.Extractor
	compiled  map[string][]catalog.Compiled
	log       *zap.Logger
}

// Result describes one full scan.
type Result struct {
	ScanID         string
	Root           string
	FileCount      int
	DirectoryCount int
	TestFileCount  int
	MatchCount     int
	Languages      map[string]int
	Matches        []extract.Match
	// Files lists every path that went through extraction.
	Files    []string
	Duration time.Duration
}

// New builds a Scanner. Every catalog pattern is compiled up front so
// a bad expression fails here rather than mid-walk.
func New(cfg Config, cat *catalog.Catalog) (*Scanner, error) {
	compiled := make(map[string][]catalog.Compiled)
	for _, lang := range cat.Languages() {
		cps, err := cat.CompileFor(lang)
		if err != nil {
			return nil, err
		}
		compiled[lang] = cps
	}
	return &Scanner{
		config:    cfg,
		extractor: extract.New(),
		compiled:  compiled,
		log:       logging.L("scanner"),
	}, nil
}

// hidden directories that still get scanned; everything else dotted is
// skipped.
var allowedHidden = map[string]bool{
	".github":   true,
	".vscode":   true,
	".circleci": true,
	".config":   true,
	".regexle":  false,
	".git":      false,
}

func skipDir(root, path, name string, patterns []string) bool {
	if path == root {
		return false
	}
	if strings.HasPrefix(name, ".") && name != "." {
		allow, exists := allowedHidden[name]
		return !exists || !allow
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return isIgnoredRel(rel, name, patterns)
}

// Scan walks root, extracts matches from every recognized source
// file, and (when idx is non-nil) refreshes the index as it goes.
func (s *Scanner) Scan(ctx context.Context, root string, idx *store.Store) (*Result, error) {
	start := time.Now()
	result := &Result{
		ScanID:    uuid.NewString(),
		Root:      root,
		Languages: make(map[string]int),
	}
	var mu sync.Mutex // protects result

	cache := NewFileCache(root)
	defer func() {
		if err := cache.Save(); err != nil {
			s.log.Warn("failed to save file cache", zap.Error(err))
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if walkErr != nil {
			return walkErr
		}

		name := d.Name()
		if d.IsDir() {
			if skipDir(root, path, name, s.config.IgnorePatterns) {
				return filepath.SkipDir
			}
			mu.Lock()
			result.DirectoryCount++
			mu.Unlock()
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr == nil && isIgnoredRel(rel, name, s.config.IgnorePatterns) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		g.Go(func() error {
			rec, matches, err := s.processFile(path, info, cache)
			if err != nil {
				// Unreadable files are skipped, not fatal.
				s.log.Debug("skipping file", zap.String("path", path), zap.Error(err))
				return nil
			}

			if idx != nil {
				if err := idx.UpsertFile(rec); err != nil {
					return err
				}
				if err := idx.ReplaceFileMatches(path, matches); err != nil {
					return err
				}
			}

			mu.Lock()
			result.FileCount++
			result.Languages[rec.Lang]++
			if rec.IsTest {
				result.TestFileCount++
			}
			if len(s.compiled[rec.Lang]) > 0 && s.config.wantsLanguage(rec.Lang) {
				result.Files = append(result.Files, path)
			}
			result.Matches = append(result.Matches, matches...)
			result.MatchCount += len(matches)
			mu.Unlock()
			return nil
		})
		return nil
	})

	if werr := g.Wait(); werr != nil && err == nil {
		err = werr
	}
	if err != nil {
		return nil, fmt.Errorf("scan of %s failed: %w", root, err)
	}

	// Workers finish in arbitrary order; restore a stable ordering so
	// repeated scans of the same tree print identically.
	sortMatches(result.Matches)
	sort.Strings(result.Files)

	result.Duration = time.Since(start)

	if idx != nil {
		rec := store.ScanRecord{
			ID:         result.ScanID,
			Root:       root,
			StartedAt:  start,
			Duration:   result.Duration,
			FileCount:  result.FileCount,
			MatchCount: result.MatchCount,
		}
		if err := idx.RecordScan(rec); err != nil {
			s.log.Warn("failed to record scan", zap.Error(err))
		}
	}

	s.log.Info("scan complete",
		zap.String("scan_id", result.ScanID),
		zap.Int("files", result.FileCount),
		zap.Int("matches", result.MatchCount),
		zap.Duration("took", result.Duration))
	return result, nil
}

// processFile hashes one file and runs extraction if its language has
// catalog patterns.
func (s *Scanner) processFile(path string, info os.FileInfo, cache *FileCache) (store.FileMeta, []extract.Match, error) {
	var hash string
	cachedHash, hit := cache.Get(path, info)
	if hit {
		hash = cachedHash
	} else {
		h, err := hashFile(path)
		if err != nil {
			return store.FileMeta{}, nil, err
		}
		hash = h
		cache.Update(path, info, hash)
	}

	lang := DetectLanguage(path)
	isTest := IsTestFile(path)
	rec := store.FileMeta{
		Path:    path,
		Lang:    lang,
		Size:    info.Size(),
		ModTime: info.ModTime().Unix(),
		Hash:    hash,
		IsTest:  isTest,
	}

	patterns := s.compiled[lang]
	if len(patterns) == 0 || !s.config.wantsLanguage(lang) {
		return rec, nil, nil
	}
	if isTest && s.config.SkipTests {
		return rec, nil, nil
	}
	if s.config.MaxFileBytes > 0 && info.Size() > s.config.MaxFileBytes {
		s.log.Debug("file exceeds extraction size limit",
			zap.String("path", path), zap.Int64("size", info.Size()))
		return rec, nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return rec, nil, err
	}

	return rec, s.extractor.ExtractFile(path, content, patterns), nil
}

func (s *Scanner) concurrency() int {
	if s.config.MaxConcurrency > 0 {
		return s.config.MaxConcurrency
	}
	return DefaultConfig().MaxConcurrency
}

// ExtractPath runs extraction on a single file without touching cache
// or index. Used by verify and one-off invocations.
func (s *Scanner) ExtractPath(path string) ([]extract.Match, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	lang := DetectLanguage(path)
	return s.extractor.ExtractFile(path, content, s.compiled[lang]), nil
}

// sortMatches orders matches by file, line, col, then pattern name.
func sortMatches(matches []extract.Match) {
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Col != b.Col {
			return a.Col < b.Col
		}
		return a.Pattern < b.Pattern
	})
}

// IgnoresDir reports whether the scanner would skip this directory
// during a walk. The watcher uses it to avoid registering ignored
// trees with fsnotify.
func (s *Scanner) IgnoresDir(root, path string) bool {
	return skipDir(root, path, filepath.Base(path), s.config.IgnorePatterns)
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
