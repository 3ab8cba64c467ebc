// Package parser consumes the token stream produced by pkg/lexer and
// yields an ast.ParseResult: conditional elements, each a pipeline of
// simple commands with arguments, redirections, and a table of extracted
// command substitutions identified by numeric id.
package parser

import (
	"strings"

	"github.com/sandboxshell/shparse/pkg/ast"
	"github.com/sandboxshell/shparse/pkg/lexer"
)

// Parser holds the cursor, substitution table, and id counter for a
// single parse call. None of this is retained once Parse returns.
type Parser struct {
	tokens        []lexer.Token
	pos           int
	substitutions []ast.CommandSubstitution
	nextID        uint32
}

// New creates a Parser over an already-tokenized input.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse tokenizes input and parses it into an ast.ParseResult.
func Parse(input string) (*ast.ParseResult, *ast.ParseError) {
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		return nil, err
	}
	return New(tokens).parse()
}

func (p *Parser) parse() (*ast.ParseResult, *ast.ParseError) {
	result := &ast.ParseResult{}
	connector := ast.ConnectorNone

	for {
		p.skipNewlines()
		if p.atEnd() {
			break
		}

		posBefore := p.pos
		pipeline, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}

		if isEmptyPipeline(pipeline) {
			if p.pos == posBefore {
				// No progress was made and no element was produced: the
				// current token cannot begin a pipeline, so looping
				// again can never consume it. Bounded termination
				// (spec §5) requires treating this as a parse error
				// rather than spinning forever.
				return nil, unexpectedTokenError(p.peek())
			}
			continue
		}

		result.Elements = append(result.Elements, ast.ConditionalElement{
			Connector: connector,
			Pipeline:  pipeline,
		})

		switch p.peek().Kind {
		case lexer.TokenAnd:
			p.advance()
			connector = ast.ConnectorAnd
		case lexer.TokenOr:
			p.advance()
			connector = ast.ConnectorOr
		case lexer.TokenNewline:
			connector = ast.ConnectorNone
		case lexer.TokenEOF:
			// loop exits on the next iteration's atEnd check
		default:
			return nil, unexpectedTokenError(p.peek())
		}
	}

	result.Substitutions = p.substitutions
	return result, nil
}

func isEmptyPipeline(pl ast.Pipeline) bool {
	if len(pl.Commands) != 1 {
		return false
	}
	return pl.Commands[0].IsEmpty()
}

func unexpectedTokenError(tok lexer.Token) *ast.ParseError {
	return ast.NewParseError("unexpected token "+tok.Kind.String()+" after operator", uint32(tok.Pos))
}

func (p *Parser) skipNewlines() {
	for p.peek().Kind == lexer.TokenNewline {
		p.advance()
	}
}

func (p *Parser) parsePipeline() (ast.Pipeline, *ast.ParseError) {
	var commands []ast.SimpleCommand

	cmd, err := p.parseSimpleCommand()
	if err != nil {
		return ast.Pipeline{}, err
	}
	if cmd.IsEmpty() && p.peek().Kind == lexer.TokenPipe {
		// A leading "|" with nothing before it: unlike the empty-pipeline
		// case handled by the caller (no command at all, no "|" either),
		// this one token-progresses into a pipe, so it must not silently
		// become a multi-command pipeline whose first command is empty
		// (spec §3: "emitted pipelines contain no empty commands").
		return ast.Pipeline{}, ast.NewParseError("expected a command before '|'", uint32(p.peek().Pos))
	}
	commands = append(commands, cmd)

	for p.peek().Kind == lexer.TokenPipe {
		p.advance()
		cmd, err := p.parseSimpleCommand()
		if err != nil {
			return ast.Pipeline{}, err
		}
		if cmd.IsEmpty() {
			return ast.Pipeline{}, ast.NewParseError("expected a command after '|'", uint32(p.peek().Pos))
		}
		commands = append(commands, cmd)
	}

	return ast.Pipeline{Commands: commands}, nil
}

func (p *Parser) parseSimpleCommand() (ast.SimpleCommand, *ast.ParseError) {
	cmd := ast.SimpleCommand{}

	for {
		tok := p.peek()
		switch tok.Kind {
		case lexer.TokenWord, lexer.TokenDoubleQuoted:
			word, err := p.parseWordSegments(tok.Text)
			if err != nil {
				return ast.SimpleCommand{}, err
			}
			cmd.Args = append(cmd.Args, word)
			p.advance()

		case lexer.TokenSingleQuoted:
			cmd.Args = append(cmd.Args, ast.NewLiteralWord(tok.Text))
			p.advance()

		case lexer.TokenRedirectOut, lexer.TokenRedirectAppend, lexer.TokenRedirectIn:
			p.advance()
			target, err := p.parseRedirectTarget()
			if err != nil {
				return ast.SimpleCommand{}, err
			}
			cmd.Redirect = append(cmd.Redirect, ast.Redirect{
				Kind:   redirectKindFor(tok.Kind),
				Target: target,
			})

		case lexer.TokenSubstStart:
			p.advance()
			id, err := p.parseCommandSubstitutionFromTokens()
			if err != nil {
				return ast.SimpleCommand{}, err
			}
			cmd.Args = append(cmd.Args, ast.ParsedWord{
				Segments: []ast.WordSegment{ast.CommandSubst{ID: id}},
			})

		default:
			return cmd, nil
		}
	}
}

func redirectKindFor(k lexer.TokenKind) ast.RedirectKind {
	switch k {
	case lexer.TokenRedirectOut:
		return ast.RedirectStdout
	case lexer.TokenRedirectAppend:
		return ast.RedirectStdoutAppend
	case lexer.TokenRedirectIn:
		return ast.RedirectStdin
	default:
		return ast.RedirectStdout
	}
}

func (p *Parser) parseRedirectTarget() (ast.ParsedWord, *ast.ParseError) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokenWord, lexer.TokenDoubleQuoted:
		word, err := p.parseWordSegments(tok.Text)
		if err != nil {
			return ast.ParsedWord{}, err
		}
		if word.IsEmpty() {
			return ast.ParsedWord{}, ast.NewParseError("empty redirect target", uint32(tok.Pos))
		}
		p.advance()
		return word, nil
	case lexer.TokenSingleQuoted:
		if tok.Text == "" {
			return ast.ParsedWord{}, ast.NewParseError("empty redirect target", uint32(tok.Pos))
		}
		p.advance()
		return ast.NewLiteralWord(tok.Text), nil
	default:
		return ast.ParsedWord{}, ast.NewParseError("missing redirect target", uint32(tok.Pos))
	}
}

// parseCommandSubstitutionFromTokens handles entry path 1: a SubstStart
// token that the lexer produced at a word boundary. The already-consumed
// tokens are re-stringified back to source-equivalent text, single-space
// separated, tracking nested SubstStart/ParenClose pairs until the
// matching ParenClose returns depth to zero.
func (p *Parser) parseCommandSubstitutionFromTokens() (uint32, *ast.ParseError) {
	var content strings.Builder
	depth := 1

	for {
		tok := p.peek()
		switch tok.Kind {
		case lexer.TokenEOF:
			return 0, ast.NewParseError("unterminated command substitution", uint32(tok.Pos))
		case lexer.TokenSubstStart:
			depth++
			content.WriteString("$(")
			p.advance()
		case lexer.TokenParenClose:
			depth--
			p.advance()
			if depth == 0 {
				return p.recordSubstitution(strings.TrimSpace(content.String())), nil
			}
			content.WriteString(")")
		default:
			content.WriteString(tokenToSource(tok))
			content.WriteString(" ")
			p.advance()
		}
	}
}

func tokenToSource(tok lexer.Token) string {
	switch tok.Kind {
	case lexer.TokenWord:
		return tok.Text
	case lexer.TokenSingleQuoted:
		return "'" + tok.Text + "'"
	case lexer.TokenDoubleQuoted:
		return "\"" + tok.Text + "\""
	case lexer.TokenPipe:
		return "|"
	case lexer.TokenAnd:
		return "&&"
	case lexer.TokenOr:
		return "||"
	case lexer.TokenRedirectOut:
		return ">"
	case lexer.TokenRedirectAppend:
		return ">>"
	case lexer.TokenRedirectIn:
		return "<"
	case lexer.TokenNewline:
		return "\n"
	default:
		return tok.Text
	}
}

func (p *Parser) recordSubstitution(input string) uint32 {
	id := p.nextID
	p.nextID++
	p.substitutions = append(p.substitutions, ast.CommandSubstitution{ID: id, Input: input})
	return id
}

// parseWordSegments splits a Word or DoubleQuoted payload into
// WordSegments: "$(", "${NAME}", "${NAME:-DEFAULT}", and "$NAME" are
// recognised; everything else accumulates into the current literal run.
// This is also where entry path 2 lives (a "$(" appearing mid-word,
// which can only actually arise inside DoubleQuoted text — the lexer
// always breaks a bare Word the moment "$(" appears): nested command
// substitutions are extracted by walking characters with an explicit
// paren-depth counter, never by recursing over the stream.
func (p *Parser) parseWordSegments(s string) (ast.ParsedWord, *ast.ParseError) {
	var segments []ast.WordSegment
	var literal strings.Builder
	runes := []rune(s)
	i := 0

	flush := func() {
		if literal.Len() > 0 {
			segments = append(segments, ast.Literal{Text: literal.String()})
			literal.Reset()
		}
	}

	for i < len(runes) {
		c := runes[i]
		if c != '$' {
			literal.WriteRune(c)
			i++
			continue
		}

		if i+1 >= len(runes) {
			// Lone trailing "$": literal.
			literal.WriteRune('$')
			i++
			continue
		}

		next := runes[i+1]
		switch {
		case next == '(':
			flush()
			i += 2 // consume "$("
			depth := 1
			var body strings.Builder
			for i < len(runes) && depth > 0 {
				switch runes[i] {
				case '(':
					depth++
					body.WriteRune('(')
				case ')':
					depth--
					if depth == 0 {
						i++
						continue
					}
					body.WriteRune(')')
				default:
					body.WriteRune(runes[i])
				}
				i++
			}
			if depth > 0 {
				return ast.ParsedWord{}, ast.NewParseError("unterminated command substitution", uint32(p.peek().Pos))
			}
			id := p.recordSubstitution(body.String())
			segments = append(segments, ast.CommandSubst{ID: id})

		case next == '{':
			flush()
			i += 2 // consume "${"
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				i++
			}
			name := string(runes[start:i])
			validName := name != "" && isIdentStart(runes[start])

			var def *string
			if i < len(runes) && runes[i] == ':' && i+1 < len(runes) && runes[i+1] == '-' {
				i += 2 // consume ":-"
				defStart := i
				for i < len(runes) && runes[i] != '}' {
					i++
				}
				d := string(runes[defStart:i])
				def = &d
			}

			if validName && i < len(runes) && runes[i] == '}' {
				i++
				segments = append(segments, ast.EnvVar{Name: name, Default: def})
			} else {
				// No closing "}" or no valid name: malformed expansions
				// degrade to literal text rather than erroring (spec §7).
				literal.WriteString("${")
				literal.WriteString(name)
				if def != nil {
					literal.WriteString(":-")
					literal.WriteString(*def)
				}
			}

		case isIdentStart(next):
			flush()
			i++ // consume "$"
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				i++
			}
			segments = append(segments, ast.EnvVar{Name: string(runes[start:i])})

		default:
			// "$" not followed by an identifier start, "(", or "{": the
			// "$" itself is literal (covers "$0"-"$9", "$?", "$$", and
			// bare punctuation — left unspecified by design, see
			// SPEC_FULL §13).
			literal.WriteRune('$')
			i++
		}
	}

	flush()

	if len(segments) == 0 {
		segments = append(segments, ast.Literal{Text: ""})
	}

	return ast.ParsedWord{Segments: segments}, nil
}

// isIdentStart matches the leading character of a bare $NAME reference.
// ast.EnvVar.Name is documented to match [A-Za-z_][A-Za-z0-9_]*, so a
// digit immediately after "$" does not start an identifier here — it
// falls through to the literal-"$" case instead (this is what keeps
// "$9", "$$", "$?" as literal rather than being read as EnvVar).
func isIdentStart(c rune) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (p *Parser) peek() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.TokenEOF, Pos: p.endPos()}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) atEnd() bool {
	return p.peek().Kind == lexer.TokenEOF
}

func (p *Parser) endPos() int {
	if len(p.tokens) == 0 {
		return 0
	}
	return p.tokens[len(p.tokens)-1].Pos
}
