package ast

import (
	"sort"

	"github.com/regexle/regexle/internal/extract"
)

// Discrepancy is a declaration one backend found and the other missed.
type Discrepancy struct {
	Kind string `json:"kind" yaml:"kind"`
	Name string `json:"name" yaml:"name"`
	File string `json:"file" yaml:"file"`
	Line int    `json:"line" yaml:"line"`
	// Source is "regex-only" or "ast-only".
	Source string `json:"source" yaml:"source"`
}

type declKey struct {
	kind string
	name string
}

// CrossCheck diffs regex matches against AST matches for one file.
// A regex-only entry is a likely false positive (a keyword inside a
// comment or string); an ast-only entry is a catalog gap.
func CrossCheck(regexMatches, astMatches []extract.Match) []Discrepancy {
	regexSet := index(regexMatches)
	astSet := index(astMatches)

	var out []Discrepancy
	for key, m := range regexSet {
		if _, ok := astSet[key]; !ok {
			out = append(out, Discrepancy{
				Kind: key.kind, Name: key.name,
				File: m.File, Line: m.Line,
				Source: "regex-only",
			})
		}
	}
	for key, m := range astSet {
		if _, ok := regexSet[key]; !ok {
			out = append(out, Discrepancy{
				Kind: key.kind, Name: key.name,
				File: m.File, Line: m.Line,
				Source: "ast-only",
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func index(matches []extract.Match) map[declKey]extract.Match {
	set := make(map[declKey]extract.Match, len(matches))
	for _, m := range matches {
		key := declKey{kind: m.Kind, name: m.Name}
		if existing, ok := set[key]; !ok || m.Line < existing.Line {
			set[key] = m
		}
	}
	return set
}
