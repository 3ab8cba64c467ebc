package expander

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandboxshell/shparse/pkg/ast"
)

func TestExpandLiteralOnly(t *testing.T) {
	got := Expand(ast.NewLiteralWord("hello"), nil)
	assert.Equal(t, "hello", got)
}

func TestExpandEnvVarPresent(t *testing.T) {
	word := ast.ParsedWord{Segments: []ast.WordSegment{ast.EnvVar{Name: "HOME"}}}
	got := Expand(word, []EnvVar{{Name: "HOME", Value: "/home/user"}})
	assert.Equal(t, "/home/user", got)
}

func TestExpandEnvVarMissingNoDefault(t *testing.T) {
	word := ast.ParsedWord{Segments: []ast.WordSegment{ast.EnvVar{Name: "MISSING"}}}
	got := Expand(word, nil)
	assert.Equal(t, "", got)
}

func TestExpandEnvVarMissingWithDefault(t *testing.T) {
	def := "fallback"
	word := ast.ParsedWord{Segments: []ast.WordSegment{ast.EnvVar{Name: "MISSING", Default: &def}}}
	got := Expand(word, nil)
	assert.Equal(t, "fallback", got)
}

func TestExpandEnvVarPresentIgnoresDefault(t *testing.T) {
	def := "fallback"
	word := ast.ParsedWord{Segments: []ast.WordSegment{ast.EnvVar{Name: "FOO", Default: &def}}}
	got := Expand(word, []EnvVar{{Name: "FOO", Value: "actual"}})
	assert.Equal(t, "actual", got)
}

func TestExpandCommandSubstContributesNothing(t *testing.T) {
	word := ast.ParsedWord{Segments: []ast.WordSegment{
		ast.Literal{Text: "before-"},
		ast.CommandSubst{ID: 0},
		ast.Literal{Text: "-after"},
	}}
	got := Expand(word, nil)
	assert.Equal(t, "before--after", got)
}

func TestExpandMixedSegments(t *testing.T) {
	word := ast.ParsedWord{Segments: []ast.WordSegment{
		ast.Literal{Text: "a"},
		ast.EnvVar{Name: "FOO"},
		ast.Literal{Text: "b"},
	}}
	got := Expand(word, []EnvVar{{Name: "FOO", Value: "X"}})
	assert.Equal(t, "aXb", got)
}

func TestExpandEmptyWord(t *testing.T) {
	got := Expand(ast.ParsedWord{}, nil)
	assert.Equal(t, "", got)
}

func TestEnvListLastWriterWins(t *testing.T) {
	word := ast.ParsedWord{Segments: []ast.WordSegment{ast.EnvVar{Name: "FOO"}}}
	got := Expand(word, []EnvVar{
		{Name: "FOO", Value: "first"},
		{Name: "FOO", Value: "second"},
	})
	assert.Equal(t, "second", got)
}
