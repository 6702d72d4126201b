package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/cbroompearson/cdk/internal/provision"
)

// newWatchCmd creates the "watch" subcommand for re-synthesizing on config changes.
func newWatchCmd(opts *rootOptions) *cobra.Command {
	wo := watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-synthesize when the context file changes",
		Long: `Watch monitors the context file and re-synthesizes the stack into the
output directory after every change. Rapid successive writes are debounced.
Synthesis errors are printed and watching continues.

Examples:
    stackctl watch
    stackctl watch --stage prod --debounce 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, opts, wo, cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVar(&wo.debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&wo.outDir, "output", "o", provision.DefaultOutDir, "Output directory")

	return cmd
}

type watchOptions struct {
	debounce time.Duration
	outDir   string
}

// runWatch synthesizes once, then again after each change to the config
// file, until ctx is done.
func runWatch(ctx context.Context, opts *rootOptions, wo watchOptions, out io.Writer) error {
	path, err := filepath.Abs(opts.configPath)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	// Editors often replace the file, so the directory is watched.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	fmt.Fprintf(out, "Watching: %s\n", path)

	backend := &provision.FileBackend{Dir: wo.outDir, Logger: opts.log()}
	rebuild(ctx, opts, backend, out)

	var debounceTimer *time.Timer
	rebuildChan := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isConfigEvent(event, path) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(wo.debounce, func() {
				select {
				case rebuildChan <- struct{}{}:
				default:
				}
			})

		case <-rebuildChan:
			fmt.Fprintf(out, "\n[%s] Change detected, re-synthesizing...\n", time.Now().Format("15:04:05"))
			rebuild(ctx, opts, backend, out)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			opts.log().Warn("watch error", "error", err)

		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			fmt.Fprintln(out, "Stopping watch...")
			return nil
		}
	}
}

func isConfigEvent(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func rebuild(ctx context.Context, opts *rootOptions, backend provision.Backend, out io.Writer) {
	stacks, err := opts.synthesize(ctx)
	if err != nil {
		fmt.Fprintf(out, "Synthesis failed: %v\n", err)
		return
	}
	for _, s := range stacks {
		outcome, err := backend.Apply(ctx, provision.Target{
			StackName: s.stack.Name,
			Template:  s.template,
			Tags:      s.stack.Tags.Map(),
		})
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", s.stack.Name, err)
			continue
		}
		fmt.Fprintf(out, "%s: %d resources written to %s\n", s.stack.Name, len(s.template.Resources), outcome.Location)
	}
}
