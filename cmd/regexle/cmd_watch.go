package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/regexle/regexle/internal/scanner"
	"github.com/regexle/regexle/internal/store"
	"github.com/regexle/regexle/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a source tree and keep the index live",
	Long: `Runs an initial scan, then watches the tree for changes. Settled
changes trigger incremental re-extraction and index updates. Stop with
Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	sc, err := buildScanner(cfg, nil)
	if err != nil {
		return err
	}

	idx, err := store.Open(cfg.IndexPath(root))
	if err != nil {
		return err
	}
	defer idx.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initial scan so the index starts warm.
	result, err := sc.Scan(ctx, root, idx)
	if err != nil {
		return err
	}
	fmt.Printf("indexed %d files, %d matches; watching %s\n", result.FileCount, result.MatchCount, root)

	w, err := watch.New(root, sc, idx)
	if err != nil {
		return err
	}
	if cfg.Watch.DebounceMS > 0 {
		w.SetDebounce(time.Duration(cfg.Watch.DebounceMS) * time.Millisecond)
	}
	w.OnRescan = func(res *scanner.IncrementalResult) {
		if res.Unchanged {
			return
		}
		fmt.Printf("rescan: %d changed, %d new, %d deleted, %d matches\n",
			len(res.ChangedFiles), len(res.NewFiles), len(res.DeletedFiles), len(res.Matches))
	}

	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	<-ctx.Done()
	fmt.Println("\nstopping")
	return nil
}
