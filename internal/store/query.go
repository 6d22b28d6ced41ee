package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/regexle/regexle/internal/extract"
)

// Stats summarizes the index contents.
type Stats struct {
	FileCount  int
	MatchCount int
	Languages  map[string]int
	Kinds      map[string]int
	LastScan   *ScanRecord
}

const matchColumns = `file, pattern, kind, language, name, line, col, text`

func scanMatches(rows *sql.Rows) ([]extract.Match, error) {
	defer rows.Close()

	var out []extract.Match
	for rows.Next() {
		var m extract.Match
		if err := rows.Scan(&m.File, &m.Pattern, &m.Kind, &m.Language, &m.Name, &m.Line, &m.Col, &m.Text); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MatchesByKind returns all indexed matches of a declaration kind.
func (s *Store) MatchesByKind(kind string) ([]extract.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT `+matchColumns+` FROM matches WHERE kind = ? ORDER BY file, line, col`, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches by kind: %w", err)
	}
	return scanMatches(rows)
}

// MatchesByName returns indexed matches whose name matches the given
// SQL LIKE expression (e.g. "get_%").
func (s *Store) MatchesByName(like string) ([]extract.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT `+matchColumns+` FROM matches WHERE name LIKE ? ORDER BY file, line, col`, like)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches by name: %w", err)
	}
	return scanMatches(rows)
}

// MatchesForFile returns the indexed matches of a single file.
func (s *Store) MatchesForFile(path string) ([]extract.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT `+matchColumns+` FROM matches WHERE file = ? ORDER BY line, col`, path)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for file: %w", err)
	}
	return scanMatches(rows)
}

// FileHash returns the stored content hash for path, if indexed.
func (s *Store) FileHash(path string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hash string
	err := s.db.QueryRow(`SELECT hash FROM files WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return hash, true, nil
}

// IndexedFiles returns every path currently in the index.
func (s *Store) IndexedFiles() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT path FROM files ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Stats aggregates index counts.
func (s *Store) Stats() (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &Stats{
		Languages: make(map[string]int),
		Kinds:     make(map[string]int),
	}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&st.FileCount); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM matches`).Scan(&st.MatchCount); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT lang, COUNT(*) FROM files GROUP BY lang`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var lang string
		var n int
		if err := rows.Scan(&lang, &n); err != nil {
			rows.Close()
			return nil, err
		}
		st.Languages[lang] = n
	}
	rows.Close()

	rows, err = s.db.Query(`SELECT kind, COUNT(*) FROM matches GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			rows.Close()
			return nil, err
		}
		st.Kinds[kind] = n
	}
	rows.Close()

	recs, err := s.recentScansLocked(1)
	if err != nil {
		return nil, err
	}
	if len(recs) > 0 {
		st.LastScan = &recs[0]
	}

	return st, nil
}

// RecentScans returns the most recent scan records, newest first.
func (s *Store) RecentScans(limit int) ([]ScanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recentScansLocked(limit)
}

func (s *Store) recentScansLocked(limit int) ([]ScanRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, root, started_at, duration_ms, file_count, match_count
		FROM scans ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScanRecord
	for rows.Next() {
		var rec ScanRecord
		var durMS int64
		if err := rows.Scan(&rec.ID, &rec.Root, &rec.StartedAt, &durMS, &rec.FileCount, &rec.MatchCount); err != nil {
			return nil, err
		}
		rec.Duration = time.Duration(durMS) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}
