package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandboxshell/shparse/pkg/ast"
)

func mustParse(t *testing.T, input string) *ast.ParseResult {
	t.Helper()
	result, err := Parse(input)
	require.Nil(t, err, "unexpected parse error: %v", err)
	return result
}

func TestSimpleCommand(t *testing.T) {
	result := mustParse(t, "echo hello")
	require.Len(t, result.Elements, 1)
	assert.Equal(t, ast.ConnectorNone, result.Elements[0].Connector)
	cmd := result.Elements[0].Pipeline.Commands
	require.Len(t, cmd, 1)
	require.Len(t, cmd[0].Args, 2)
	assert.Equal(t, ast.NewLiteralWord("echo"), cmd[0].Args[0])
	assert.Equal(t, ast.NewLiteralWord("hello"), cmd[0].Args[1])
	assert.Empty(t, cmd[0].Redirect)
	assert.Empty(t, result.Substitutions)
}

func TestEnvVarNoDefault(t *testing.T) {
	result := mustParse(t, "echo $HOME")
	cmd := result.Elements[0].Pipeline.Commands[0]
	require.Len(t, cmd.Args, 2)
	want := ast.ParsedWord{Segments: []ast.WordSegment{ast.EnvVar{Name: "HOME"}}}
	if diff := cmp.Diff(want, cmd.Args[1]); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvVarWithDefault(t *testing.T) {
	result := mustParse(t, "echo ${FOO:-default}")
	cmd := result.Elements[0].Pipeline.Commands[0]
	def := "default"
	want := ast.ParsedWord{Segments: []ast.WordSegment{ast.EnvVar{Name: "FOO", Default: &def}}}
	if diff := cmp.Diff(want, cmd.Args[1]); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestBracedNoDefault(t *testing.T) {
	result := mustParse(t, "echo ${FOO}")
	cmd := result.Elements[0].Pipeline.Commands[0]
	want := ast.ParsedWord{Segments: []ast.WordSegment{ast.EnvVar{Name: "FOO"}}}
	if diff := cmp.Diff(want, cmd.Args[1]); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestUnterminatedBraceDegradesToLiteral(t *testing.T) {
	result := mustParse(t, "echo ${FOO")
	cmd := result.Elements[0].Pipeline.Commands[0]
	want := ast.NewLiteralWord("${FOO")
	assert.Equal(t, want, cmd.Args[1])
}

func TestPipeline(t *testing.T) {
	result := mustParse(t, "ls | cat")
	require.Len(t, result.Elements, 1)
	assert.Len(t, result.Elements[0].Pipeline.Commands, 2)
}

func TestTrailingPipeIsError(t *testing.T) {
	_, err := Parse("echo hello |")
	require.NotNil(t, err)
}

func TestAndOrChain(t *testing.T) {
	result := mustParse(t, "cmd1 && cmd2 || cmd3")
	require.Len(t, result.Elements, 3)
	assert.Equal(t, ast.ConnectorNone, result.Elements[0].Connector)
	assert.Equal(t, ast.ConnectorAnd, result.Elements[1].Connector)
	assert.Equal(t, ast.ConnectorOr, result.Elements[2].Connector)
}

func TestRedirectOut(t *testing.T) {
	result := mustParse(t, "echo hello > file")
	cmd := result.Elements[0].Pipeline.Commands[0]
	require.Len(t, cmd.Args, 2)
	require.Len(t, cmd.Redirect, 1)
	assert.Equal(t, ast.RedirectStdout, cmd.Redirect[0].Kind)
	assert.Equal(t, ast.NewLiteralWord("file"), cmd.Redirect[0].Target)
}

func TestRedirectAppendAndIn(t *testing.T) {
	result := mustParse(t, "sort < input.txt >> output.txt")
	cmd := result.Elements[0].Pipeline.Commands[0]
	require.Len(t, cmd.Redirect, 2)
	assert.Equal(t, ast.RedirectStdin, cmd.Redirect[0].Kind)
	assert.Equal(t, ast.RedirectStdoutAppend, cmd.Redirect[1].Kind)
}

func TestMissingRedirectTarget(t *testing.T) {
	_, err := Parse("echo hello >")
	require.NotNil(t, err)
}

func TestCommandSubstitutionStandalone(t *testing.T) {
	result := mustParse(t, "echo $(ls)")
	require.Len(t, result.Substitutions, 1)
	assert.Equal(t, uint32(0), result.Substitutions[0].ID)
	assert.Equal(t, "ls", result.Substitutions[0].Input)

	cmd := result.Elements[0].Pipeline.Commands[0]
	want := ast.ParsedWord{Segments: []ast.WordSegment{ast.CommandSubst{ID: 0}}}
	assert.Equal(t, want, cmd.Args[1])
}

func TestCommandSubstitutionMidWordInDoubleQuotes(t *testing.T) {
	result := mustParse(t, `echo "a$(echo b)c"`)
	require.Len(t, result.Substitutions, 1)
	assert.Equal(t, "echo b", result.Substitutions[0].Input)

	cmd := result.Elements[0].Pipeline.Commands[0]
	want := ast.ParsedWord{Segments: []ast.WordSegment{
		ast.Literal{Text: "a"},
		ast.CommandSubst{ID: 0},
		ast.Literal{Text: "c"},
	}}
	if diff := cmp.Diff(want, cmd.Args[1]); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestNestedCommandSubstitution(t *testing.T) {
	result := mustParse(t, "echo $(echo $(echo inner))")
	require.Len(t, result.Substitutions, 1)
	// The token-based re-stringifier (entry path 1) always trails a space
	// after each re-emitted token, including before a nested ")" that
	// doesn't close the outermost substitution yet.
	assert.Equal(t, "echo $(echo inner )", result.Substitutions[0].Input)
}

func TestCommandSubstitutionWithPipeInside(t *testing.T) {
	result := mustParse(t, "echo $(ls | wc)")
	require.Len(t, result.Substitutions, 1)
	assert.Equal(t, "ls | wc", result.Substitutions[0].Input)
}

func TestUnterminatedCommandSubstitution(t *testing.T) {
	_, err := Parse("echo $(ls")
	require.NotNil(t, err)
}

func TestSingleQuotedNoExpansion(t *testing.T) {
	result := mustParse(t, "echo 'a$HOME'")
	cmd := result.Elements[0].Pipeline.Commands[0]
	assert.Equal(t, ast.NewLiteralWord("a$HOME"), cmd.Args[1])
}

func TestMultiline(t *testing.T) {
	result := mustParse(t, "\n\necho hello\n\necho world\n")
	require.Len(t, result.Elements, 2)
	assert.Equal(t, ast.ConnectorNone, result.Elements[0].Connector)
	assert.Equal(t, ast.ConnectorNone, result.Elements[1].Connector)
}

func TestEmptyInput(t *testing.T) {
	result := mustParse(t, "")
	assert.Empty(t, result.Elements)
	assert.Empty(t, result.Substitutions)
}

func TestWhitespaceOnlyInput(t *testing.T) {
	result := mustParse(t, "\n\n   \n")
	assert.Empty(t, result.Elements)
}

func TestCommandSubstitutionIDOrdering(t *testing.T) {
	result := mustParse(t, "echo $(first) $(second)")
	require.Len(t, result.Substitutions, 2)
	assert.Equal(t, uint32(0), result.Substitutions[0].ID)
	assert.Equal(t, "first", result.Substitutions[0].Input)
	assert.Equal(t, uint32(1), result.Substitutions[1].ID)
	assert.Equal(t, "second", result.Substitutions[1].Input)
}

// TestCommandSubstCountMatchesTable checks the round-trip invariant from
// spec §8.6: the count of CommandSubst segments across all words equals
// len(Substitutions).
func TestCommandSubstCountMatchesTable(t *testing.T) {
	result := mustParse(t, `echo $(a) "$(b)c$(d)" $(e)`)
	count := 0
	for _, el := range result.Elements {
		for _, cmd := range el.Pipeline.Commands {
			for _, arg := range cmd.Args {
				for _, seg := range arg.Segments {
					if _, ok := seg.(ast.CommandSubst); ok {
						count++
					}
				}
			}
		}
	}
	assert.Equal(t, len(result.Substitutions), count)
}

func TestFirstElementConnectorAlwaysNone(t *testing.T) {
	result := mustParse(t, "cmd1 && cmd2")
	require.NotEmpty(t, result.Elements)
	assert.Equal(t, ast.ConnectorNone, result.Elements[0].Connector)
}

func TestNoEmptySimpleCommandsSurvive(t *testing.T) {
	result := mustParse(t, "echo hi | cat")
	for _, el := range result.Elements {
		for _, cmd := range el.Pipeline.Commands {
			assert.False(t, cmd.IsEmpty())
		}
	}
}

func TestLeadingPipeIsError(t *testing.T) {
	_, err := Parse("| cat")
	require.NotNil(t, err)
}

func TestLexErrorPropagatesAsParseError(t *testing.T) {
	_, err := Parse("echo 'unterminated")
	require.NotNil(t, err)
	assert.NotEmpty(t, err.Message)
}
