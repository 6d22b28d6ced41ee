// Package store persists scan results in a SQLite index so queries and
// incremental scans don't re-read the workspace.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/regexle/regexle/internal/extract"
	"github.com/regexle/regexle/internal/logging"
)

// Store wraps the SQLite match index.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
	log  *zap.Logger
}

// FileMeta is the per-file record kept alongside matches.
type FileMeta struct {
	Path    string
	Lang    string
	Size    int64
	ModTime int64
	Hash    string
	IsTest  bool
}

// ScanRecord summarizes one completed scan.
type ScanRecord struct {
	ID         string
	Root       string
	StartedAt  time.Time
	Duration   time.Duration
	FileCount  int
	MatchCount int
}

// Open initializes the SQLite database at the given path.
func Open(path string) (*Store, error) {
	log := logging.L("store")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		log.Debug("failed to set sqlite busy_timeout", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		log.Debug("failed to set sqlite journal_mode=WAL", zap.Error(err))
	}
	// synchronous=NORMAL is safe under WAL and much faster than FULL.
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		log.Debug("failed to set sqlite synchronous=NORMAL", zap.Error(err))
	}

	s := &Store{db: db, path: path, log: log}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize index schema: %w", err)
	}

	log.Debug("index opened", zap.String("path", path))
	return s, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		path TEXT PRIMARY KEY,
		lang TEXT,
		size INTEGER,
		modtime INTEGER,
		hash TEXT,
		is_test INTEGER DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_files_lang ON files(lang);
	CREATE INDEX IF NOT EXISTS idx_files_hash ON files(hash);

	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file TEXT NOT NULL,
		pattern TEXT NOT NULL,
		kind TEXT NOT NULL,
		language TEXT NOT NULL,
		name TEXT NOT NULL,
		line INTEGER NOT NULL,
		col INTEGER NOT NULL,
		text TEXT,
		FOREIGN KEY(file) REFERENCES files(path) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_matches_file ON matches(file);
	CREATE INDEX IF NOT EXISTS idx_matches_kind ON matches(kind);
	CREATE INDEX IF NOT EXISTS idx_matches_name ON matches(name);

	CREATE TABLE IF NOT EXISTS scans (
		id TEXT PRIMARY KEY,
		root TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		file_count INTEGER NOT NULL,
		match_count INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the index location.
func (s *Store) Path() string {
	return s.path
}

// UpsertFile inserts or refreshes a file record.
func (s *Store) UpsertFile(meta FileMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	isTest := 0
	if meta.IsTest {
		isTest = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO files (path, lang, size, modtime, hash, is_test, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET
			lang = excluded.lang,
			size = excluded.size,
			modtime = excluded.modtime,
			hash = excluded.hash,
			is_test = excluded.is_test,
			updated_at = CURRENT_TIMESTAMP`,
		meta.Path, meta.Lang, meta.Size, meta.ModTime, meta.Hash, isTest)
	if err != nil {
		return fmt.Errorf("failed to upsert file %s: %w", meta.Path, err)
	}
	return nil
}

// ReplaceFileMatches swaps the matches for a file in one transaction.
func (s *Store) ReplaceFileMatches(path string, matches []extract.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM matches WHERE file = ?`, path); err != nil {
		return fmt.Errorf("failed to clear matches for %s: %w", path, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO matches (file, pattern, kind, language, name, line, col, text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare match insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range matches {
		if _, err := stmt.Exec(path, m.Pattern, m.Kind, m.Language, m.Name, m.Line, m.Col, m.Text); err != nil {
			return fmt.Errorf("failed to insert match %s in %s: %w", m.Name, path, err)
		}
	}

	return tx.Commit()
}

// DeleteFile removes a file and its matches from the index.
func (s *Store) DeleteFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM matches WHERE file = ?`, path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM files WHERE path = ?`, path); err != nil {
		return err
	}
	return tx.Commit()
}

// RecordScan persists a scan summary.
func (s *Store) RecordScan(rec ScanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO scans (id, root, started_at, duration_ms, file_count, match_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Root, rec.StartedAt.UTC(), rec.Duration.Milliseconds(), rec.FileCount, rec.MatchCount)
	if err != nil {
		return fmt.Errorf("failed to record scan %s: %w", rec.ID, err)
	}
	return nil
}
