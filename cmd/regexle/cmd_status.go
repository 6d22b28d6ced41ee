package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/regexle/regexle/internal/store"
)

var statusRoot string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index statistics",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusRoot, "root", ".", "workspace whose index to inspect")
}

func runStatus(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot([]string{statusRoot})
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

	stats, err := idx.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("index:   %s\n", idx.Path())
	fmt.Printf("files:   %d\n", stats.FileCount)
	fmt.Printf("matches: %d\n", stats.MatchCount)

	if len(stats.Kinds) > 0 {
		fmt.Println("kinds:")
		kinds := make([]string, 0, len(stats.Kinds))
		for k := range stats.Kinds {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Printf("  %-10s %d\n", k, stats.Kinds[k])
		}
	}

	if stats.LastScan != nil {
		fmt.Printf("last scan: %s (%s, %d files, %d matches)\n",
			stats.LastScan.ID,
			stats.LastScan.StartedAt.Local().Format("2006-01-02 15:04:05"),
			stats.LastScan.FileCount, stats.LastScan.MatchCount)
	}
	return nil
}
