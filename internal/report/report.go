// Package report renders scan and verify results for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/regexle/regexle/internal/ast"
	"github.com/regexle/regexle/internal/extract"
	"github.com/regexle/regexle/internal/scanner"
	"github.com/regexle/regexle/internal/verify"
)

// Format selects the output encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatYAML, FormatMarkdown:
		return Format(s), nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (text, json, yaml, markdown)", s)
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e53935"))
	passStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	kindStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3"))
)

// ScanReport is the serializable view of a scan result.
type ScanReport struct {
	ScanID        string            `json:"scan_id" yaml:"scan_id"`
	Root          string            `json:"root" yaml:"root"`
	FileCount     int               `json:"file_count" yaml:"file_count"`
	MatchCount    int               `json:"match_count" yaml:"match_count"`
	Languages     map[string]int    `json:"languages" yaml:"languages"`
	DurationMS    int64             `json:"duration_ms" yaml:"duration_ms"`
	Matches       []extract.Match   `json:"matches" yaml:"matches"`
	Discrepancies []ast.Discrepancy `json:"discrepancies,omitempty" yaml:"discrepancies,omitempty"`
}

// FromScan converts a scanner result.
func FromScan(res *scanner.Result, discrepancies []ast.Discrepancy) *ScanReport {
	return &ScanReport{
		ScanID:        res.ScanID,
		Root:          res.Root,
		FileCount:     res.FileCount,
		MatchCount:    res.MatchCount,
		Languages:     res.Languages,
		DurationMS:    res.Duration.Milliseconds(),
		Matches:       res.Matches,
		Discrepancies: discrepancies,
	}
}

// Render encodes the scan report in the requested format.
func (r *ScanReport) Render(format Format) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(r)
	case FormatYAML:
		return renderYAML(r)
	case FormatMarkdown:
		return renderGlamour(r.markdown())
	default:
		return r.text(), nil
	}
}

func (r *ScanReport) text() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Scan %s", r.ScanID)) + "\n")
	b.WriteString(fmt.Sprintf("  root:    %s\n", r.Root))
	b.WriteString(fmt.Sprintf("  files:   %d\n", r.FileCount))
	b.WriteString(fmt.Sprintf("  matches: %d\n", r.MatchCount))
	b.WriteString(fmt.Sprintf("  took:    %dms\n", r.DurationMS))

	if len(r.Matches) > 0 {
		b.WriteString("\n")
		for _, m := range r.Matches {
			b.WriteString(fmt.Sprintf("  %s %s  %s\n",
				kindStyle.Render(fmt.Sprintf("%-10s", m.Kind)),
				m.Name,
				dimStyle.Render(fmt.Sprintf("%s:%d:%d", m.File, m.Line, m.Col))))
		}
	}

	if len(r.Discrepancies) > 0 {
		b.WriteString("\n" + failStyle.Render("cross-check discrepancies") + "\n")
		for _, d := range r.Discrepancies {
			b.WriteString(fmt.Sprintf("  %-10s %-20s %s  %s\n",
				d.Kind, d.Name, d.Source,
				dimStyle.Render(fmt.Sprintf("%s:%d", d.File, d.Line))))
		}
	}
	return b.String()
}

func (r *ScanReport) markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Scan report\n\n")
	fmt.Fprintf(&b, "- **Root:** `%s`\n- **Files:** %d\n- **Matches:** %d\n- **Duration:** %dms\n\n", r.Root, r.FileCount, r.MatchCount, r.DurationMS)

	if len(r.Languages) > 0 {
		fmt.Fprintf(&b, "## Languages\n\n| Language | Files |\n|---|---|\n")
		for _, lang := range sortedKeys(r.Languages) {
			fmt.Fprintf(&b, "| %s | %d |\n", lang, r.Languages[lang])
		}
		b.WriteString("\n")
	}

	if len(r.Matches) > 0 {
		fmt.Fprintf(&b, "## Matches\n\n| Kind | Name | Location |\n|---|---|---|\n")
		for _, m := range r.Matches {
			fmt.Fprintf(&b, "| %s | `%s` | %s:%d |\n", m.Kind, m.Name, m.File, m.Line)
		}
		b.WriteString("\n")
	}

	if len(r.Discrepancies) > 0 {
		fmt.Fprintf(&b, "## Cross-check discrepancies\n\n| Kind | Name | Source | Location |\n|---|---|---|---|\n")
		for _, d := range r.Discrepancies {
			fmt.Fprintf(&b, "| %s | `%s` | %s | %s:%d |\n", d.Kind, d.Name, d.Source, d.File, d.Line)
		}
	}
	return b.String()
}

// RenderVerify encodes a verify report.
func RenderVerify(rep *verify.Report, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(rep)
	case FormatYAML:
		return renderYAML(rep)
	case FormatMarkdown:
		return renderGlamour(verifyMarkdown(rep))
	default:
		return verifyText(rep), nil
	}
}

func verifyText(rep *verify.Report) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(rep.Fixture) + dimStyle.Render(fmt.Sprintf("  (%s)", rep.Language)) + "\n")
	for _, res := range rep.Results {
		status := dimStyle.Render("unchecked")
		if res.Checked {
			if res.OK {
				status = passStyle.Render("pass")
			} else {
				status = failStyle.Render("FAIL")
			}
		}
		b.WriteString(fmt.Sprintf("  /%s/g  %s\n", res.Expr, status))
		b.WriteString(fmt.Sprintf("    got: %s\n", strings.Join(res.Got, ", ")))
		if res.Checked && !res.OK {
			b.WriteString(failStyle.Render(fmt.Sprintf("    want: %s", strings.Join(res.Expected, ", "))) + "\n")
		}
	}
	return b.String()
}

func verifyMarkdown(rep *verify.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Fixture verification: `%s`\n\n", rep.Fixture)
	fmt.Fprintf(&b, "| Pattern | Status | Got | Expected |\n|---|---|---|---|\n")
	for _, res := range rep.Results {
		status := "unchecked"
		if res.Checked {
			status = "pass"
			if !res.OK {
				status = "**FAIL**"
			}
		}
		fmt.Fprintf(&b, "| `/%s/g` | %s | %s | %s |\n",
			res.Expr, status, strings.Join(res.Got, ", "), strings.Join(res.Expected, ", "))
	}
	return b.String()
}

func renderJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	return string(data) + "\n", nil
}

func renderYAML(v interface{}) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	return string(data), nil
}

func renderGlamour(md string) (string, error) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		// Glamour failures degrade to raw markdown rather than erroring
		// out a completed scan.
		return md, nil
	}
	return out, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
