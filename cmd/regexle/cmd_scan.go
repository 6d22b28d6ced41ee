package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/regexle/regexle/internal/ast"
	"github.com/regexle/regexle/internal/extract"
	"github.com/regexle/regexle/internal/report"
	"github.com/regexle/regexle/internal/scanner"
	"github.com/regexle/regexle/internal/store"
)

var (
	scanFormat     string
	scanLangs      []string
	scanKinds      []string
	scanCrossCheck bool
	scanNoIndex    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a source tree and extract declaration matches",
	Long: `Walks the given directory (default: .), applies the pattern catalog
to every recognized source file, prints the matches, and refreshes the
SQLite index unless indexing is disabled.

With --cross-check, files in languages with a wired tree-sitter
grammar (rust, go, python) are re-parsed and the two backends diffed:
regex-only hits are likely false positives, ast-only hits are catalog
gaps.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFormat, "format", "", "output format: text, json, yaml, markdown")
	scanCmd.Flags().StringSliceVar(&scanLangs, "lang", nil, "restrict extraction to these languages")
	scanCmd.Flags().StringSliceVar(&scanKinds, "kind", nil, "only report these declaration kinds")
	scanCmd.Flags().BoolVar(&scanCrossCheck, "cross-check", false, "diff regex matches against tree-sitter")
	scanCmd.Flags().BoolVar(&scanNoIndex, "no-index", false, "skip updating the SQLite index")
}

func runScan(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	format, err := report.ParseFormat(pickFormat(scanFormat, cfg.Output.Format))
	if err != nil {
		return err
	}

	sc, err := buildScanner(cfg, scanLangs)
	if err != nil {
		return err
	}

	var idx *store.Store
	if !scanNoIndex && !cfg.Index.Disabled {
		idx, err = store.Open(cfg.IndexPath(root))
		if err != nil {
			return err
		}
		defer idx.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := sc.Scan(ctx, root, idx)
	if err != nil {
		return err
	}

	if len(scanKinds) > 0 {
		result.Matches = filterKinds(result.Matches, scanKinds)
		result.MatchCount = len(result.Matches)
	}

	var discrepancies []ast.Discrepancy
	if scanCrossCheck {
		discrepancies, err = crossCheck(ctx, result)
		if err != nil {
			return err
		}
	}

	out, err := report.FromScan(result, discrepancies).Render(format)
	if err != nil {
		return err
	}
	fmt.Print(out)

	if len(discrepancies) > 0 {
		return fmt.Errorf("cross-check found %d discrepancies", len(discrepancies))
	}
	return nil
}

// crossCheck re-parses every scanned file that has a wired grammar and
// diffs the regex matches against the AST declarations.
func crossCheck(ctx context.Context, result *scanner.Result) ([]ast.Discrepancy, error) {
	byFile := make(map[string][]extract.Match)
	for _, m := range result.Matches {
		byFile[m.File] = append(byFile[m.File], m)
	}

	var all []ast.Discrepancy
	for _, path := range result.Files {
		matches := byFile[path]
		lang := scanner.DetectLanguage(path)
		parser, ok := ast.ForLanguage(lang)
		if !ok {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		astMatches, err := parser.Declarations(ctx, path, content)
		if err != nil {
			return nil, err
		}
		all = append(all, ast.CrossCheck(matches, astMatches)...)
	}
	return all, nil
}

func filterKinds(matches []extract.Match, kinds []string) []extract.Match {
	want := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var out []extract.Match
	for _, m := range matches {
		if want[m.Kind] {
			out = append(out, m)
		}
	}
	return out
}

func pickFormat(flag, configured string) string {
	if flag != "" {
		return flag
	}
	return configured
}
