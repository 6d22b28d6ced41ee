// Package catalog holds the named regex patterns regexle matches
// against source files. Each pattern extracts one declaration kind for
// one language via a single capture group (the symbol name).
package catalog

import (
	"fmt"
	"regexp"
	"sort"
)

// Pattern is one named extraction rule.
type Pattern struct {
	// Name uniquely identifies the pattern within its language
	// (e.g. "rust-fn").
	Name string `yaml:"name"`
	// Kind is the declaration kind the pattern extracts
	// (function, struct, enum, class, ...).
	Kind string `yaml:"kind"`
	// Language the pattern applies to (rust, go, python, ...).
	Language string `yaml:"language"`
	// Expr is the regular expression. It must contain at least one
	// capture group; group 1 is the symbol name.
	Expr string `yaml:"expr"`
}

// Compiled pairs a Pattern with its compiled expression.
type Compiled struct {
	Pattern
	RE *regexp.Regexp
}

// Compile validates and compiles a single pattern.
func (p Pattern) Compile() (Compiled, error) {
	if p.Name == "" {
		return Compiled{}, fmt.Errorf("pattern for language %q has no name", p.Language)
	}
	re, err := regexp.Compile(p.Expr)
	if err != nil {
		return Compiled{}, fmt.Errorf("pattern %q: invalid expression: %w", p.Name, err)
	}
	if re.NumSubexp() < 1 {
		return Compiled{}, fmt.Errorf("pattern %q: expression %q has no capture group for the symbol name", p.Name, p.Expr)
	}
	return Compiled{Pattern: p, RE: re}, nil
}

// Catalog is an ordered set of patterns, keyed by language.
type Catalog struct {
	byLanguage map[string][]Pattern
}

// New builds a catalog from the given patterns, preserving order
// within each language. Duplicate names within a language are an error.
func New(patterns []Pattern) (*Catalog, error) {
	c := &Catalog{byLanguage: make(map[string][]Pattern)}
	seen := make(map[string]bool)
	for _, p := range patterns {
		key := p.Language + "/" + p.Name
		if seen[key] {
			return nil, fmt.Errorf("duplicate pattern %q for language %q", p.Name, p.Language)
		}
		seen[key] = true
		c.byLanguage[p.Language] = append(c.byLanguage[p.Language], p)
	}
	return c, nil
}

// Languages returns the languages the catalog covers, sorted.
func (c *Catalog) Languages() []string {
	langs := make([]string, 0, len(c.byLanguage))
	for lang := range c.byLanguage {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// ForLanguage returns the patterns for a language, in catalog order.
func (c *Catalog) ForLanguage(lang string) []Pattern {
	return c.byLanguage[lang]
}

// All returns every pattern, grouped by language in sorted language order.
func (c *Catalog) All() []Pattern {
	var out []Pattern
	for _, lang := range c.Languages() {
		out = append(out, c.byLanguage[lang]...)
	}
	return out
}

// CompileFor compiles all patterns for a language.
func (c *Catalog) CompileFor(lang string) ([]Compiled, error) {
	patterns := c.byLanguage[lang]
	compiled := make([]Compiled, 0, len(patterns))
	for _, p := range patterns {
		cp, err := p.Compile()
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, cp)
	}
	return compiled, nil
}

// Merge overlays other on top of c: patterns with the same
// language+name replace the builtin, new ones are appended.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	merged := &Catalog{byLanguage: make(map[string][]Pattern)}
	for lang, patterns := range c.byLanguage {
		merged.byLanguage[lang] = append([]Pattern(nil), patterns...)
	}
	for lang, patterns := range other.byLanguage {
		for _, p := range patterns {
			replaced := false
			for i, existing := range merged.byLanguage[lang] {
				if existing.Name == p.Name {
					merged.byLanguage[lang][i] = p
					replaced = true
					break
				}
			}
			if !replaced {
				merged.byLanguage[lang] = append(merged.byLanguage[lang], p)
			}
		}
	}
	return merged
}
