// shparse is a command-line front end over pkg/parser and pkg/expander: it
// parses a shell command line, optionally expands its words against the
// process environment plus a config file, and can re-run on every save of
// a script file.
//
// Usage:
//
//	shparse parse "echo $HOME"
//	shparse expand "echo ${NAME:-world}"
//	shparse watch script.sh
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "shparse: %s\n", err)
		os.Exit(1)
	}
}
