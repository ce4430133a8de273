// Package parser implements the Pratt-style expression parser and
// recursive-descent statement parser described in spec.md C2: tokens to a
// typed ast.Program.
package parser

import (
	"fmt"

	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/lexer"
	"github.com/jsrt/jsrt/token"
)

// SyntaxError is the parser's failure mode: always positionful, never
// locally recoverable (spec.md §7).
type SyntaxError struct {
	Pos      token.Position
	Expected string
	Found    string
	Message  string
}

func (e *SyntaxError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("unexpected %s, expected %s", e.Found, e.Expected)
}

// Parser turns a token stream into an ast.Program.
type Parser struct {
	lex    *lexer.Lexer
	tok    token.Token
	peeked *token.Token
	isModule bool
}

// Parse parses source text as a script (isModule=false) or module
// (isModule=true) and returns its Program node.
func Parse(src string, isModule bool) (prog *ast.Program, err error) {
	p := &Parser{lex: lexer.New(src), isModule: isModule}
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(*SyntaxError); ok {
				err = se
				return
			}
			panic(r)
		}
	}()
	if err := p.next(); err != nil {
		return nil, err
	}
	prog = p.parseProgram()
	return prog, nil
}

func (p *Parser) next() error {
	if p.peeked != nil {
		p.tok = *p.peeked
		p.peeked = nil
		return nil
	}
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *Parser) peek() token.Token {
	if p.peeked == nil {
		t, err := p.lex.Next()
		if err != nil {
			p.fail(err.Error())
		}
		p.peeked = &t
	}
	return *p.peeked
}

func (p *Parser) fail(msg string) {
	panic(&SyntaxError{Pos: p.tok.Pos, Message: msg})
}

func (p *Parser) failExpected(what string) {
	panic(&SyntaxError{Pos: p.tok.Pos, Expected: what, Found: p.tok.Type.String()})
}

func (p *Parser) at(t token.Type) bool { return p.tok.Type == t }

func (p *Parser) expect(t token.Type) token.Token {
	if p.tok.Type != t {
		p.failExpected(t.String())
	}
	cur := p.tok
	if err := p.next(); err != nil {
		p.fail(err.Error())
	}
	return cur
}

func (p *Parser) advance() token.Token {
	cur := p.tok
	if err := p.next(); err != nil {
		p.fail(err.Error())
	}
	return cur
}

// mark/reset implement the backtracking the cover grammar needs to
// disambiguate `ident => ...` and `async ident => ...` arrow forms from a
// plain identifier or call expression: the lexer's scanning position and
// the parser's current/peeked tokens are both part of the mark.
type mark struct {
	lexState lexer.State
	tok      token.Token
	peeked   *token.Token
}

func (p *Parser) markPos() mark {
	m := mark{lexState: p.lex.Save(), tok: p.tok}
	if p.peeked != nil {
		t := *p.peeked
		m.peeked = &t
	}
	return m
}

func (p *Parser) resetTo(m mark) {
	p.lex.Restore(m.lexState)
	p.tok = m.tok
	p.peeked = m.peeked
}

// consumeSemi implements automatic semicolon insertion (spec.md C2 "ASI
// rules"): an explicit `;`, a `}`/EOF, or a preceding line terminator all
// satisfy a statement boundary.
func (p *Parser) consumeSemi() {
	if p.at(token.SEMI) {
		p.advance()
		return
	}
	if p.at(token.RBRACE) || p.at(token.EOF) || p.tok.NewlineBefore {
		return
	}
	p.failExpected("';'")
}

// ---- Program ----

func (p *Parser) parseProgram() *ast.Program {
	start := p.tok.Pos
	prog := &ast.Program{IsModule: p.isModule}
	for !p.at(token.EOF) {
		prog.Body = append(prog.Body, p.parseStatement())
	}
	prog.SetSpan(start, p.tok.Pos)
	return prog
}

// identFromToken builds an *ast.Identifier from an IDENT (or contextual
// keyword used as identifier) token already consumed into `tok`.
func identFromToken(tok token.Token) *ast.Identifier {
	id := &ast.Identifier{Name: tok.Literal}
	id.SetSpan(tok.Pos, tok.End)
	return id
}

// isIdentLike reports whether the current token can be treated as a
// binding/reference identifier, including contextual keywords that are
// only reserved in specific grammar positions.
func (p *Parser) isIdentLike() bool {
	switch p.tok.Type {
	case token.IDENT, token.ASYNC, token.AWAIT, token.YIELD, token.OF, token.FROM,
		token.AS, token.GET, token.SET, token.STATIC:
		return true
	default:
		return false
	}
}

func (p *Parser) parseIdent() *ast.Identifier {
	if !p.isIdentLike() {
		p.failExpected("identifier")
	}
	tok := p.advance()
	return identFromToken(tok)
}
