package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/regexle/regexle/internal/extract"
	"github.com/regexle/regexle/internal/report"
	"github.com/regexle/regexle/internal/store"
)

var (
	queryKind   string
	queryRoot   string
	queryFormat string
)

var queryCmd = &cobra.Command{
	Use:   "query [name-pattern]",
	Short: "Query the match index",
	Long: `Queries matches from the SQLite index built by scan. The argument is
a SQL LIKE expression against symbol names (e.g. "get_%"). With
--kind and no argument, all matches of that kind are listed.

Example:
  regexle query 'process_%'
  regexle query --kind enum`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryKind, "kind", "", "filter by declaration kind")
	queryCmd.Flags().StringVar(&queryRoot, "root", ".", "workspace whose index to query")
	queryCmd.Flags().StringVar(&queryFormat, "format", "text", "output format: text, json, yaml")
}

func runQuery(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(queryFormat)
	if err != nil {
		return err
	}

	root, err := resolveRoot([]string{queryRoot})
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	idx, err := store.Open(cfg.IndexPath(root))
	if err != nil {
		return err
	}
	defer idx.Close()

	var matches []extract.Match
	switch {
	case len(args) == 1:
		matches, err = idx.MatchesByName(args[0])
	case queryKind != "":
		matches, err = idx.MatchesByKind(queryKind)
	default:
		return fmt.Errorf("provide a name pattern or --kind")
	}
	if err != nil {
		return err
	}

	if queryKind != "" && len(args) == 1 {
		matches = filterKinds(matches, []string{queryKind})
	}

	switch format {
	case report.FormatJSON:
		data, err := json.MarshalIndent(matches, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	case report.FormatYAML:
		data, err := yaml.Marshal(matches)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	}

	if len(matches) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, m := range matches {
		fmt.Printf("%-10s %-24s %s:%d:%d\n", m.Kind, m.Name, m.File, m.Line, m.Col)
	}
	return nil
}
