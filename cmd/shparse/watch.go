package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sandboxshell/shparse/pkg/parser"
)

func newWatchCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "watch <script-file>",
		Short: "Re-parse a script file and print its syntax tree on every save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			return runWatch(ctx, cmd, args[0], format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, yaml, cbor-schema")
	return cmd
}

// runWatch re-parses path once immediately, then again on every write or
// create event fsnotify reports, until ctx is cancelled (Ctrl-C) or the watch
// itself fails. This is the one place in this repository a blocking,
// cancellable operation exists; the core library has none.
func runWatch(ctx context.Context, cmd *cobra.Command, path string, format string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create file watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return errors.Wrapf(err, "watch %s", path)
	}

	if err := reparseAndPrint(cmd, path, format); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "shparse: %s\n", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := reparseAndPrint(cmd, path, format); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "shparse: %s\n", err)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return errors.Wrap(watchErr, "watch")
		}
	}
}

func reparseAndPrint(cmd *cobra.Command, path string, format string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}

	result, parseErr := parser.Parse(string(data))
	if parseErr != nil {
		return reportParseError(parseErr)
	}
	return printParseResult(cmd, result, format)
}
