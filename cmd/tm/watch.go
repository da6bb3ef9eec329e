package main

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the workspace database for changes and print a line on each one",
	Long: `Watch the workspace database for changes and print a line on each one.

Intended for an agent harness that wants to react to plan/task mutations
made by other processes without polling the store. Debounces bursts of
writes (SQLite's own journal/WAL churn) into a single notification.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		if err := watcher.Add(ws.Root); err != nil {
			return fmt.Errorf("watch %s: %w", ws.Root, err)
		}

		fmt.Printf("Watching %s (Ctrl-C to stop)...\n", ws.Root)

		var debounce *time.Timer
		changed := make(chan struct{}, 1)

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(300*time.Millisecond, func() {
					select {
					case changed <- struct{}{}:
					default:
					}
				})
			case <-changed:
				fmt.Printf("[%s] workspace changed\n", time.Now().UTC().Format(time.RFC3339))
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Println("watch error:", err)
			case <-cmd.Context().Done():
				return nil
			}
		}
	},
}
