// Package verify runs fixture files against the patterns their own
// header comments declare, and compares the result with recorded
// expectations. This is the contract the whole tool is tested by: a
// fixture header like
//
//	// Test patterns: /fn\s+(\w+)/g, /struct\s+(\w+)/g, /enum\s+(\w+)/g
//
// promises that applying those patterns yields exactly the
// declarations present in the file.
package verify

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/regexle/regexle/internal/catalog"
	"github.com/regexle/regexle/internal/extract"
	"github.com/regexle/regexle/internal/scanner"
)

// headerRE finds the "Test patterns:" declaration in a fixture header
// comment (// or # style).
var headerRE = regexp.MustCompile(`Test patterns:\s*(.+)$`)

// patternRE pulls /…/g literals out of the header line. Escaped
// slashes inside the expression are honored.
var patternRE = regexp.MustCompile(`/((?:\\.|[^/\\])+)/g`)

// headerScanLines bounds how far into a fixture we look for the header.
const headerScanLines = 10

// PatternResult is the outcome for one declared pattern.
type PatternResult struct {
	Expr     string   `json:"expr" yaml:"expr"`
	Kind     string   `json:"kind" yaml:"kind"`
	Expected []string `json:"expected,omitempty" yaml:"expected,omitempty"`
	Got      []string `json:"got" yaml:"got"`
	// Checked is false when no expectation was recorded for the pattern.
	Checked bool `json:"checked" yaml:"checked"`
	OK      bool `json:"ok" yaml:"ok"`
}

// Report is the outcome of verifying one fixture.
type Report struct {
	Fixture  string          `json:"fixture" yaml:"fixture"`
	Language string          `json:"language" yaml:"language"`
	Results  []PatternResult `json:"results" yaml:"results"`
}

// Passed reports whether every checked pattern matched expectations.
func (r *Report) Passed() bool {
	for _, res := range r.Results {
		if res.Checked && !res.OK {
			return false
		}
	}
	return true
}

// Expectations is the YAML sidecar shape (<fixture>.expect.yaml).
type Expectations struct {
	Patterns []struct {
		Expr  string   `yaml:"expr"`
		Names []string `yaml:"names"`
	} `yaml:"patterns"`
}

// HeaderPatterns parses the declared test patterns out of fixture
// content. Returns an error when no header declaration is found.
func HeaderPatterns(content []byte) ([]string, error) {
	lines := strings.Split(string(content), "\n")
	if len(lines) > headerScanLines {
		lines = lines[:headerScanLines]
	}
	for _, line := range lines {
		m := headerRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		exprs := patternRE.FindAllStringSubmatch(m[1], -1)
		if len(exprs) == 0 {
			return nil, fmt.Errorf("header declares test patterns but none parse: %q", line)
		}
		out := make([]string, 0, len(exprs))
		for _, e := range exprs {
			out = append(out, e[1])
		}
		return out, nil
	}
	return nil, fmt.Errorf("no \"Test patterns:\" header found in first %d lines", headerScanLines)
}

// guessKind maps the leading keyword of an expression to a
// declaration kind, for reporting only.
func guessKind(expr string) string {
	keyword := expr
	if i := strings.IndexAny(expr, `\[(.`); i > 0 {
		keyword = expr[:i]
	}
	keyword = strings.TrimSpace(keyword)
	switch keyword {
	case "fn", "func", "def", "function":
		return catalog.KindFunction
	case "struct":
		return catalog.KindStruct
	case "enum":
		return catalog.KindEnum
	case "class":
		return catalog.KindClass
	case "type":
		return catalog.KindType
	case "package":
		return catalog.KindPackage
	case "trait":
		return catalog.KindTrait
	default:
		return "match"
	}
}

// Fixture verifies one fixture file. Expectations are read from
// <fixture>.expect.yaml when present; otherwise the report carries
// observed names with Checked=false.
func Fixture(path string) (*Report, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	exprs, err := HeaderPatterns(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	lang := scanner.DetectLanguage(path)
	report := &Report{Fixture: path, Language: lang}

	expected := loadExpectations(path)

	extractor := extract.New()
	for i, expr := range exprs {
		p := catalog.Pattern{
			Name:     fmt.Sprintf("header-%d", i+1),
			Kind:     guessKind(expr),
			Language: lang,
			Expr:     expr,
		}
		cp, err := p.Compile()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		matches := extractor.ExtractFile(path, content, []catalog.Compiled{cp})
		got := extract.Names(matches, p.Name)

		res := PatternResult{Expr: expr, Kind: p.Kind, Got: got}
		if names, ok := expected[expr]; ok {
			res.Checked = true
			res.Expected = names
			res.OK = equalNames(names, got)
		}
		report.Results = append(report.Results, res)
	}

	return report, nil
}

// loadExpectations reads the sidecar, keyed by expression. A missing
// or unreadable sidecar just means nothing is checked.
func loadExpectations(fixture string) map[string][]string {
	data, err := os.ReadFile(fixture + ".expect.yaml")
	if err != nil {
		return nil
	}
	var exp Expectations
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return nil
	}
	out := make(map[string][]string, len(exp.Patterns))
	for _, p := range exp.Patterns {
		out[p.Expr] = p.Names
	}
	return out
}

func equalNames(want, got []string) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}
