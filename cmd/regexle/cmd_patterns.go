package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/regexle/regexle/internal/catalog"
)

var patternsLang string

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the active pattern catalog",
	Long: `Prints every pattern in the active catalog: the builtins plus any
user catalog configured via catalog.file. Use --lang to filter.`,
	RunE: runPatterns,
}

func init() {
	patternsCmd.Flags().StringVar(&patternsLang, "lang", "", "only show patterns for this language")
}

func runPatterns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(".")
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	var patterns []catalog.Pattern
	if patternsLang != "" {
		patterns = cat.ForLanguage(patternsLang)
		if len(patterns) == 0 {
			return fmt.Errorf("no patterns for language %q", patternsLang)
		}
	} else {
		patterns = cat.All()
	}

	lang := ""
	for _, p := range patterns {
		if p.Language != lang {
			lang = p.Language
			fmt.Printf("%s:\n", lang)
		}
		fmt.Printf("  %-16s %-10s /%s/g\n", p.Name, p.Kind, p.Expr)
	}
	return nil
}
