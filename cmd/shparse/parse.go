package main

import (
	"encoding/json"
	"fmt"

	yaml "github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sandboxshell/shparse/pkg/ast"
	"github.com/sandboxshell/shparse/pkg/parser"
	"github.com/sandboxshell/shparse/pkg/wire"
)

func newParseCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse <command-line>",
		Short: "Parse a shell command line and print its syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, parseErr := parser.Parse(args[0])
			if parseErr != nil {
				return reportParseError(parseErr)
			}
			return printParseResult(cmd, result, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, yaml, cbor-schema")
	return cmd
}

// reportParseError surfaces the parser's own message and position
// verbatim, per spec.md §7 ("callers are expected to surface message
// verbatim") — it is never wrapped with github.com/pkg/errors, unlike I/O
// and config failures.
func reportParseError(err *ast.ParseError) error {
	return fmt.Errorf("%s", err.Error())
}

func printParseResult(cmd *cobra.Command, result *ast.ParseResult, format string) error {
	switch format {
	case "text":
		for _, el := range result.Elements {
			fmt.Fprintln(cmd.OutOrStdout(), describeElement(el))
		}
		for _, sub := range result.Substitutions {
			fmt.Fprintf(cmd.OutOrStdout(), "$(%d): %s\n", sub.ID, sub.Input)
		}
		return nil
	case "json":
		data, err := json.MarshalIndent(wire.FromAST(result), "", "  ")
		if err != nil {
			return errors.Wrap(err, "marshal json")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(wire.FromAST(result))
		if err != nil {
			return errors.Wrap(err, "marshal yaml")
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	case "cbor-schema":
		fmt.Fprintln(cmd.OutOrStdout(), wire.Schema())
		return nil
	default:
		return errors.Errorf("unknown --format %q", format)
	}
}

func describeElement(el ast.ConditionalElement) string {
	out := ""
	switch el.Connector {
	case ast.ConnectorAnd:
		out += "&& "
	case ast.ConnectorOr:
		out += "|| "
	}
	for i, c := range el.Pipeline.Commands {
		if i > 0 {
			out += " | "
		}
		out += describeCommand(c)
	}
	return out
}

func describeCommand(c ast.SimpleCommand) string {
	out := ""
	for i, a := range c.Args {
		if i > 0 {
			out += " "
		}
		out += a.String()
	}
	for _, r := range c.Redirect {
		out += " " + redirectSymbol(r.Kind) + " " + r.Target.String()
	}
	return out
}

func redirectSymbol(k ast.RedirectKind) string {
	switch k {
	case ast.RedirectStdin:
		return "<"
	case ast.RedirectStdoutAppend:
		return ">>"
	default:
		return ">"
	}
}
