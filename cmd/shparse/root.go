package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "shparse",
		Short: "Parse and expand POSIX-flavoured shell command lines",
	}

	root.AddCommand(newParseCommand())
	root.AddCommand(newExpandCommand())
	root.AddCommand(newWatchCommand())

	return root
}
