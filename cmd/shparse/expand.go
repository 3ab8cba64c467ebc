package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sandboxshell/shparse/pkg/ast"
	"github.com/sandboxshell/shparse/pkg/expander"
	"github.com/sandboxshell/shparse/pkg/parser"
)

func newExpandCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand <command-line>",
		Short: "Parse a command line and print each command with its words expanded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return errors.Wrap(err, "load config")
			}

			result, parseErr := parser.Parse(args[0])
			if parseErr != nil {
				return reportParseError(parseErr)
			}

			env := buildEnv(cfg)
			for _, el := range result.Elements {
				for _, c := range el.Pipeline.Commands {
					fmt.Fprintln(cmd.OutOrStdout(), expandCommand(c, env))
				}
			}
			return nil
		},
	}
	return cmd
}

// buildEnv layers the config file's defaults under the live process
// environment, so an explicit shell-exported value always wins.
func buildEnv(cfg config) []expander.EnvVar {
	env := make([]expander.EnvVar, 0, len(cfg.Env)+len(os.Environ()))
	for name, value := range cfg.Env {
		env = append(env, expander.EnvVar{Name: name, Value: value})
	}
	for _, kv := range os.Environ() {
		name, value, found := strings.Cut(kv, "=")
		if !found {
			continue
		}
		env = append(env, expander.EnvVar{Name: name, Value: value})
	}
	return env
}

func expandCommand(c ast.SimpleCommand, env []expander.EnvVar) string {
	words := make([]string, len(c.Args))
	for i, a := range c.Args {
		words[i] = expander.Expand(a, env)
	}
	return strings.Join(words, " ")
}
