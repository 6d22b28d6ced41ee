package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/regexle/regexle/internal/catalog"
	"github.com/regexle/regexle/internal/config"
	"github.com/regexle/regexle/internal/logging"
	"github.com/regexle/regexle/internal/scanner"
)

var (
	// Global flags
	verbose    bool
	configPath string
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "regexle",
	Short: "Regex-LE - regex-based code-pattern extractor",
	Long: `Regex-LE scans source trees and extracts declarations (functions,
structs, enums, classes, ...) using a per-language catalog of named
regular expressions. Each pattern captures the symbol name in its
first group, e.g. /fn\s+(\w+)/g for Rust functions.

Results can be printed, indexed into SQLite for later queries, kept
live via watch mode, and cross-checked against a tree-sitter grammar.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configRoot(cmd, args))
		if err != nil {
			return err
		}
		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		_, err = logging.Initialize(logging.Options{
			Level:  level,
			Format: cfg.Logging.Format,
			File:   cfg.Logging.File,
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// loadConfig resolves configuration: --config wins, then
// <root>/.regexle.yaml, then defaults.
func loadConfig(root string) (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadFromRoot(root)
}

// configRoot guesses the workspace a subcommand will operate on so the
// logger can be built from that workspace's config. A --root flag wins,
// then a positional directory argument, then the working directory.
func configRoot(cmd *cobra.Command, args []string) string {
	if f := cmd.Flags().Lookup("root"); f != nil {
		if abs, err := filepath.Abs(f.Value.String()); err == nil {
			return abs
		}
	}
	if len(args) > 0 {
		if abs, err := filepath.Abs(args[0]); err == nil {
			if info, err := os.Stat(abs); err == nil && info.IsDir() {
				return abs
			}
		}
	}
	return "."
}

// loadCatalog layers the user catalog (if configured) over builtins.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	cat := catalog.Builtin()
	if cfg.Catalog.File == "" {
		return cat, nil
	}
	user, err := catalog.Load(cfg.Catalog.File)
	if err != nil {
		return nil, err
	}
	return cat.Merge(user), nil
}

// buildScanner wires config into a scanner for the given root.
func buildScanner(cfg *config.Config, langs []string) (*scanner.Scanner, error) {
	sc := scanner.DefaultConfig()
	if cfg.Scanner.Workers > 0 {
		sc.MaxConcurrency = cfg.Scanner.Workers
	}
	if len(cfg.Scanner.IgnorePatterns) > 0 {
		sc.IgnorePatterns = append(sc.IgnorePatterns, cfg.Scanner.IgnorePatterns...)
	}
	if cfg.Scanner.MaxFileBytes > 0 {
		sc.MaxFileBytes = cfg.Scanner.MaxFileBytes
	}
	sc.SkipTests = cfg.Scanner.SkipTests
	sc.Languages = cfg.Scanner.Languages
	if len(langs) > 0 {
		sc.Languages = langs
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	return scanner.New(sc, cat)
}

func resolveRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot scan %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <root>/.regexle.yaml)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
