// Package expander resolves a ParsedWord's variable segments against an
// environment mapping at evaluation time. It performs no splitting on
// whitespace, no globbing, and no secondary rescan — segment order alone
// defines byte order in the output.
package expander

import "github.com/sandboxshell/shparse/pkg/ast"

// EnvVar is one entry of the environment list passed across the
// expander's external interface (spec §6: "env: list<(string,string)>").
type EnvVar struct {
	Name  string
	Value string
}

// Expand concatenates a ParsedWord's segments into a concrete string:
// Literal segments copy through verbatim, EnvVar segments resolve against
// env (falling back to Default, then to the empty string), and
// CommandSubst segments contribute nothing — the orchestrator is
// expected to splice in execution output separately.
func Expand(word ast.ParsedWord, env []EnvVar) string {
	lookup := envListToMap(env)

	var out []byte
	for _, seg := range word.Segments {
		switch s := seg.(type) {
		case ast.Literal:
			out = append(out, s.Text...)
		case ast.EnvVar:
			if v, ok := lookup[s.Name]; ok {
				out = append(out, v...)
			} else if s.Default != nil {
				out = append(out, *s.Default...)
			}
		case ast.CommandSubst:
			// Resolved by the orchestrator, out of scope here.
		}
	}
	return string(out)
}

// envListToMap converts the env list to a keyed mapping; on duplicate
// keys, the last writer wins.
func envListToMap(env []EnvVar) map[string]string {
	m := make(map[string]string, len(env))
	for _, e := range env {
		m[e.Name] = e.Value
	}
	return m
}
