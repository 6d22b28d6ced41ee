// Package extract applies catalog patterns to source content and
// produces declaration matches with file positions.
package extract

import (
	"sort"

	"github.com/regexle/regexle/internal/catalog"
)

// Match is one extracted declaration.
type Match struct {
	Pattern  string `json:"pattern" yaml:"pattern"`
	Kind     string `json:"kind" yaml:"kind"`
	Language string `json:"language" yaml:"language"`
	// Name is the text of the first capture group.
	Name string `json:"name" yaml:"name"`
	File string `json:"file" yaml:"file"`
	// Line and Col are 1-based and refer to the start of the full match.
	Line int    `json:"line" yaml:"line"`
	Col  int    `json:"col" yaml:"col"`
	Text string `json:"text" yaml:"text"`
}

// Extractor runs compiled patterns over file content.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// ExtractFile finds every non-overlapping occurrence of each pattern
// in content. Matches are returned sorted by position, then pattern
// name, so output is stable across runs.
func (e *Extractor) ExtractFile(path string, content []byte, patterns []catalog.Compiled) []Match {
	if len(content) == 0 || len(patterns) == 0 {
		return nil
	}

	lineIndex := buildLineIndex(content)

	var matches []Match
	for _, p := range patterns {
		for _, loc := range p.RE.FindAllSubmatchIndex(content, -1) {
			// loc[2], loc[3] bound capture group 1 (the symbol name).
			if len(loc) < 4 || loc[2] < 0 {
				continue
			}
			line, col := lineIndex.position(loc[0])
			matches = append(matches, Match{
				Pattern:  p.Name,
				Kind:     p.Kind,
				Language: p.Language,
				Name:     string(content[loc[2]:loc[3]]),
				File:     path,
				Line:     line,
				Col:      col,
				Text:     string(content[loc[0]:loc[1]]),
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Line != matches[j].Line {
			return matches[i].Line < matches[j].Line
		}
		if matches[i].Col != matches[j].Col {
			return matches[i].Col < matches[j].Col
		}
		return matches[i].Pattern < matches[j].Pattern
	})
	return matches
}

// Names returns the captured names for matches of a single pattern,
// in match order.
func Names(matches []Match, pattern string) []string {
	var names []string
	for _, m := range matches {
		if m.Pattern == pattern {
			names = append(names, m.Name)
		}
	}
	return names
}

// CountByKind aggregates matches per declaration kind.
func CountByKind(matches []Match) map[string]int {
	counts := make(map[string]int)
	for _, m := range matches {
		counts[m.Kind]++
	}
	return counts
}

// lineIndex maps byte offsets to 1-based line/column positions.
type lineIndex struct {
	// starts[i] is the byte offset of the first byte of line i+1.
	starts []int
}

func buildLineIndex(content []byte) *lineIndex {
	starts := []int{0}
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts}
}

func (ix *lineIndex) position(offset int) (line, col int) {
	// Binary search for the last line start <= offset.
	lo, hi := 0, len(ix.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if ix.starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1, offset - ix.starts[lo] + 1
}
