package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseCommandText(t *testing.T) {
	out, err := runCommand(t, "parse", "echo hello")
	require.NoError(t, err)
	assert.Contains(t, out, "echo hello")
}

func TestParseCommandJSON(t *testing.T) {
	out, err := runCommand(t, "parse", "echo $HOME", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "env-var"`)
	assert.Contains(t, out, `"name": "HOME"`)
}

func TestParseCommandInvalidFormat(t *testing.T) {
	_, err := runCommand(t, "parse", "echo hi", "--format", "xml")
	assert.Error(t, err)
}

func TestParseCommandSyntaxError(t *testing.T) {
	_, err := runCommand(t, "parse", "echo hello |")
	assert.Error(t, err)
}

func TestParseCommandPipeline(t *testing.T) {
	out, err := runCommand(t, "parse", "ls | cat")
	require.NoError(t, err)
	assert.Contains(t, out, "|")
}

func TestParseCommandSchema(t *testing.T) {
	out, err := runCommand(t, "parse", "echo hi", "--format", "cbor-schema")
	require.NoError(t, err)
	assert.Contains(t, out, "ParseResult")
}
