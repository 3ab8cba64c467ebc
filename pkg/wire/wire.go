// Package wire projects pkg/ast's sealed WordSegment variants onto a flat,
// tagged-union shape suitable for crossing a process or language boundary:
// a discriminant string plus the named fields that discriminant implies
// (spec.md §6). It encodes that projection as CBOR and publishes a JSON
// Schema describing the same shape for cross-language consumers that
// prefer to validate the JSON projection instead of decoding CBOR.
package wire

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/sandboxshell/shparse/pkg/ast"
)

// Segment kind discriminants used on the wire. These are stable strings,
// not Go iota values, so they survive a schema or language change on the
// other side of the boundary.
const (
	KindLiteral       = "literal"
	KindEnvVar        = "env-var"
	KindCommandSubst  = "command-subst"
	ConnectorNone     = "none"
	ConnectorAnd      = "and"
	ConnectorOr       = "or"
	RedirectStdin     = "stdin"
	RedirectStdout    = "stdout"
	RedirectAppendOut = "stdout-append"
)

// Segment is the flattened projection of ast.WordSegment: exactly one of
// Text, Name/Default, or SubstID is populated, selected by Kind.
type Segment struct {
	Kind     string  `cbor:"kind" json:"kind"`
	Text     string  `cbor:"text,omitempty" json:"text,omitempty"`
	Name     string  `cbor:"name,omitempty" json:"name,omitempty"`
	Default  *string `cbor:"default,omitempty" json:"default,omitempty"`
	SubstID  *uint32 `cbor:"subst_id,omitempty" json:"subst_id,omitempty"`
}

// Word is a ParsedWord projected to wire form.
type Word struct {
	Segments []Segment `cbor:"segments" json:"segments"`
}

// Redirect is an ast.Redirect projected to wire form.
type Redirect struct {
	Kind   string `cbor:"kind" json:"kind"`
	Target Word   `cbor:"target" json:"target"`
}

// Command is an ast.SimpleCommand projected to wire form.
type Command struct {
	Args     []Word     `cbor:"args" json:"args"`
	Redirect []Redirect `cbor:"redirect,omitempty" json:"redirect,omitempty"`
}

// Pipeline is an ast.Pipeline projected to wire form.
type Pipeline struct {
	Commands []Command `cbor:"commands" json:"commands"`
}

// Element is an ast.ConditionalElement projected to wire form.
type Element struct {
	Connector string   `cbor:"connector" json:"connector"`
	Pipeline  Pipeline `cbor:"pipeline" json:"pipeline"`
}

// Substitution is an ast.CommandSubstitution projected to wire form.
type Substitution struct {
	ID    uint32 `cbor:"id" json:"id"`
	Input string `cbor:"input" json:"input"`
}

// ParseResult is the top-level projection of ast.ParseResult exchanged
// across the wire.
type ParseResult struct {
	Elements      []Element      `cbor:"elements" json:"elements"`
	Substitutions []Substitution `cbor:"substitutions" json:"substitutions"`
}

// FromAST flattens an *ast.ParseResult into its wire projection.
func FromAST(result *ast.ParseResult) ParseResult {
	out := ParseResult{Elements: []Element{}, Substitutions: []Substitution{}}
	for _, el := range result.Elements {
		out.Elements = append(out.Elements, elementFromAST(el))
	}
	for _, sub := range result.Substitutions {
		out.Substitutions = append(out.Substitutions, Substitution{ID: sub.ID, Input: sub.Input})
	}
	return out
}

func elementFromAST(el ast.ConditionalElement) Element {
	return Element{
		Connector: connectorToWire(el.Connector),
		Pipeline:  pipelineFromAST(el.Pipeline),
	}
}

func pipelineFromAST(p ast.Pipeline) Pipeline {
	cmds := make([]Command, len(p.Commands))
	for i, c := range p.Commands {
		cmds[i] = commandFromAST(c)
	}
	return Pipeline{Commands: cmds}
}

func commandFromAST(c ast.SimpleCommand) Command {
	args := make([]Word, len(c.Args))
	for i, a := range c.Args {
		args[i] = wordFromAST(a)
	}
	var redirects []Redirect
	for _, r := range c.Redirect {
		redirects = append(redirects, Redirect{
			Kind:   redirectKindToWire(r.Kind),
			Target: wordFromAST(r.Target),
		})
	}
	return Command{Args: args, Redirect: redirects}
}

func wordFromAST(w ast.ParsedWord) Word {
	segs := make([]Segment, len(w.Segments))
	for i, seg := range w.Segments {
		segs[i] = segmentFromAST(seg)
	}
	return Word{Segments: segs}
}

func segmentFromAST(seg ast.WordSegment) Segment {
	switch s := seg.(type) {
	case ast.Literal:
		return Segment{Kind: KindLiteral, Text: s.Text}
	case ast.EnvVar:
		return Segment{Kind: KindEnvVar, Name: s.Name, Default: s.Default}
	case ast.CommandSubst:
		id := s.ID
		return Segment{Kind: KindCommandSubst, SubstID: &id}
	default:
		return Segment{Kind: KindLiteral}
	}
}

func connectorToWire(c ast.Connector) string {
	switch c {
	case ast.ConnectorAnd:
		return ConnectorAnd
	case ast.ConnectorOr:
		return ConnectorOr
	default:
		return ConnectorNone
	}
}

func redirectKindToWire(k ast.RedirectKind) string {
	switch k {
	case ast.RedirectStdin:
		return RedirectStdin
	case ast.RedirectStdoutAppend:
		return RedirectAppendOut
	default:
		return RedirectStdout
	}
}

// ToAST reconstructs an *ast.ParseResult from its wire projection. It is
// the inverse of FromAST; round-tripping through Encode/Decode then ToAST
// reproduces the original tree exactly.
func ToAST(w ParseResult) (*ast.ParseResult, error) {
	out := &ast.ParseResult{}
	for i, el := range w.Elements {
		converted, err := elementToAST(el)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		out.Elements = append(out.Elements, converted)
	}
	for _, sub := range w.Substitutions {
		out.Substitutions = append(out.Substitutions, ast.CommandSubstitution{ID: sub.ID, Input: sub.Input})
	}
	return out, nil
}

func elementToAST(el Element) (ast.ConditionalElement, error) {
	pipeline, err := pipelineToAST(el.Pipeline)
	if err != nil {
		return ast.ConditionalElement{}, err
	}
	connector, err := connectorFromWire(el.Connector)
	if err != nil {
		return ast.ConditionalElement{}, err
	}
	return ast.ConditionalElement{Connector: connector, Pipeline: pipeline}, nil
}

func pipelineToAST(p Pipeline) (ast.Pipeline, error) {
	cmds := make([]ast.SimpleCommand, len(p.Commands))
	for i, c := range p.Commands {
		converted, err := commandToAST(c)
		if err != nil {
			return ast.Pipeline{}, errors.Wrapf(err, "command %d", i)
		}
		cmds[i] = converted
	}
	return ast.Pipeline{Commands: cmds}, nil
}

func commandToAST(c Command) (ast.SimpleCommand, error) {
	args := make([]ast.ParsedWord, len(c.Args))
	for i, a := range c.Args {
		converted, err := wordToAST(a)
		if err != nil {
			return ast.SimpleCommand{}, err
		}
		args[i] = converted
	}
	var redirects []ast.Redirect
	for _, r := range c.Redirect {
		kind, err := redirectKindFromWire(r.Kind)
		if err != nil {
			return ast.SimpleCommand{}, err
		}
		target, err := wordToAST(r.Target)
		if err != nil {
			return ast.SimpleCommand{}, err
		}
		redirects = append(redirects, ast.Redirect{Kind: kind, Target: target})
	}
	return ast.SimpleCommand{Args: args, Redirect: redirects}, nil
}

func wordToAST(w Word) (ast.ParsedWord, error) {
	segs := make([]ast.WordSegment, len(w.Segments))
	for i, seg := range w.Segments {
		converted, err := segmentToAST(seg)
		if err != nil {
			return ast.ParsedWord{}, errors.Wrapf(err, "segment %d", i)
		}
		segs[i] = converted
	}
	return ast.ParsedWord{Segments: segs}, nil
}

func segmentToAST(seg Segment) (ast.WordSegment, error) {
	switch seg.Kind {
	case KindLiteral:
		return ast.Literal{Text: seg.Text}, nil
	case KindEnvVar:
		return ast.EnvVar{Name: seg.Name, Default: seg.Default}, nil
	case KindCommandSubst:
		if seg.SubstID == nil {
			return nil, errors.New("command-subst segment missing subst_id")
		}
		return ast.CommandSubst{ID: *seg.SubstID}, nil
	default:
		return nil, errors.Errorf("unknown segment kind %q", seg.Kind)
	}
}

func connectorFromWire(s string) (ast.Connector, error) {
	switch s {
	case ConnectorNone:
		return ast.ConnectorNone, nil
	case ConnectorAnd:
		return ast.ConnectorAnd, nil
	case ConnectorOr:
		return ast.ConnectorOr, nil
	default:
		return ast.ConnectorNone, errors.Errorf("unknown connector %q", s)
	}
}

func redirectKindFromWire(s string) (ast.RedirectKind, error) {
	switch s {
	case RedirectStdin:
		return ast.RedirectStdin, nil
	case RedirectStdout:
		return ast.RedirectStdout, nil
	case RedirectAppendOut:
		return ast.RedirectStdoutAppend, nil
	default:
		return ast.RedirectStdout, errors.Errorf("unknown redirect kind %q", s)
	}
}

// Encode produces the CBOR-encoded wire form of a parse result.
func Encode(result *ast.ParseResult) ([]byte, error) {
	data, err := cbor.Marshal(FromAST(result))
	if err != nil {
		return nil, errors.Wrap(err, "cbor encode")
	}
	return data, nil
}

// Decode reconstructs an *ast.ParseResult from CBOR bytes produced by Encode.
func Decode(data []byte) (*ast.ParseResult, error) {
	var w ParseResult
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(err, "cbor decode")
	}
	return ToAST(w)
}
