// ABOUTME: CLI command watching transcript directories for changes
// ABOUTME: Debounced fsnotify events trigger gated pipeline runs
package commands

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch transcript directories and run the pipeline on changes",
		Long: `Watch transcript directories and run the pipeline on changes.

Watches the configured source roots with fsnotify. Bursts of file events
are debounced into one gated pipeline run, so an active coding session
does not trigger a run per write. Runs until interrupted.

Examples:
  lifelong watch
  lifelong watch --debounce 2m`,
		RunE: runWatch,
	}

	cmd.Flags().DurationVar(&watchDebounce, "debounce", 30*time.Second, "Quiet period before a change triggers a run")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	watched := 0
	for tag, root := range a.cfg.SourcePaths() {
		if err := watchTree(watcher, root); err != nil {
			if !quiet {
				log.Printf("not watching %s (%s): %v", root, tag, err)
			}
			continue
		}
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("no watchable source directories configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Printf("watching %d source root(s), debounce %s", watched, watchDebounce)
	}

	// The timer is armed on the first event and re-armed on each subsequent
	// one, so a run only fires after the directory has gone quiet
	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			if !quiet {
				log.Println("shutting down")
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			// New session directories need their own watch
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchTree(watcher, event.Name)
				}
			}
			timer.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)

		case <-timer.C:
			report, decision, err := a.pipeline.Run(ctx, false, 0, a.backendOverride(""))
			if err != nil {
				log.Printf("pipeline run failed: %v", err)
				continue
			}
			if !quiet {
				log.Printf("run complete (%s): %d new, %d updated, %d summarized",
					decision.Reason, report.Ingest.Inserted, report.Ingest.Updated, report.Enrich.Succeeded)
			}
		}
	}
}

// watchTree adds root and its immediate subdirectories to the watcher.
// Transcript layouts nest sessions one level under the source root.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	if err := watcher.Add(root); err != nil {
		return err
	}
	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	for _, entry := range dirEntries {
		if entry.IsDir() {
			_ = watcher.Add(filepath.Join(root, entry.Name()))
		}
	}
	return nil
}
