package parser

import (
	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/token"
)

func (p *Parser) parseClassDecl() ast.Stmt {
	start := p.tok.Pos
	cls := p.parseClassAfterKeyword()
	ds := &ast.ClassDeclStmt{Class: cls}
	ds.SetSpan(start, p.tok.Pos)
	return ds
}

func (p *Parser) parseClassExpr() ast.Expr {
	return p.parseClassAfterKeyword()
}

func (p *Parser) parseClassAfterKeyword() *ast.ClassLiteral {
	start := p.expect(token.CLASS).Pos
	name := ""
	if p.isIdentLike() && !p.at(token.EXTENDS) {
		name = p.advance().Literal
	}
	cls := &ast.ClassLiteral{Name: name}
	if p.at(token.EXTENDS) {
		p.advance()
		cls.Super = p.parseCallOrMember(p.parsePrimary(), true)
	}
	p.expect(token.LBRACE)
	for !p.at(token.RBRACE) {
		if p.at(token.SEMI) {
			p.advance()
			continue
		}
		cls.Members = append(cls.Members, p.parseClassMember())
	}
	end := p.expect(token.RBRACE).Pos
	cls.SetSpan(start, end)
	return cls
}

func (p *Parser) parseClassMember() *ast.ClassMember {
	start := p.tok.Pos
	isStatic := false
	if p.at(token.STATIC) && !p.isClassMemberTerminator(p.peek().Type) {
		p.advance()
		isStatic = true
		if p.at(token.LBRACE) {
			// static initialization block: modeled as a static field whose
			// "key" is absent and whose value is an IIFE-less block; the
			// evaluator special-cases a nil Key with Kind==MemberField to
			// run Value's owning FunctionLiteral body as a class static
			// initializer.
			body := p.parseBlockStatements()
			fn := &ast.FunctionLiteral{Body: body}
			fn.SetSpan(start, p.tok.Pos)
			m := &ast.ClassMember{Kind: ast.MemberField, IsStatic: true, Value: fn}
			m.SetSpan(start, p.tok.Pos)
			return m
		}
	}
	isAsync, isGen := false, false
	if p.at(token.ASYNC) && !p.isClassMemberTerminator(p.peek().Type) && !p.peek().NewlineBefore {
		p.advance()
		isAsync = true
	}
	if p.at(token.STAR) {
		p.advance()
		isGen = true
	}
	kind := ast.MemberMethod
	if (p.at(token.GET) || p.at(token.SET)) && !p.isClassMemberTerminator(p.peek().Type) {
		if p.at(token.GET) {
			kind = ast.MemberGet
		} else {
			kind = ast.MemberSet
		}
		p.advance()
	}
	isPrivate := false
	var key ast.Expr
	computed := false
	switch {
	case p.at(token.PRIVATE_IDENT):
		tok := p.advance()
		pi := &ast.PrivateIdentifier{Name: tok.Literal}
		pi.SetSpan(tok.Pos, tok.End)
		key = pi
		isPrivate = true
	case p.at(token.LBRACKET):
		p.advance()
		key = p.parseAssignExpr()
		p.expect(token.RBRACKET)
		computed = true
	case p.at(token.STRING):
		tok := p.advance()
		sl := &ast.StringLiteral{Value: tok.Literal}
		sl.SetSpan(tok.Pos, tok.End)
		key = sl
	case p.at(token.NUMBER):
		tok := p.advance()
		nl := &ast.NumberLiteral{Value: parseNumberLiteral(tok.Literal), Raw: tok.Literal}
		nl.SetSpan(tok.Pos, tok.End)
		key = nl
	default:
		key = p.parseIdentAsPropertyName()
	}

	if kind == ast.MemberGet || kind == ast.MemberSet {
		fn := p.parseFunctionRest("", false, false)
		m := &ast.ClassMember{Kind: kind, Key: key, Computed: computed, IsStatic: isStatic, IsPrivate: isPrivate, Value: fn}
		m.SetSpan(start, p.tok.Pos)
		return m
	}
	if p.at(token.LPAREN) {
		fn := p.parseFunctionRest("", isAsync, isGen)
		m := &ast.ClassMember{Kind: ast.MemberMethod, Key: key, Computed: computed, IsStatic: isStatic, IsPrivate: isPrivate, Value: fn}
		m.SetSpan(start, p.tok.Pos)
		return m
	}
	// field, with optional initializer
	var value ast.Expr
	if p.at(token.ASSIGN) {
		p.advance()
		value = p.parseAssignExpr()
	}
	p.consumeSemi()
	m := &ast.ClassMember{Kind: ast.MemberField, Key: key, Computed: computed, IsStatic: isStatic, IsPrivate: isPrivate, Value: value}
	m.SetSpan(start, p.tok.Pos)
	return m
}

// isClassMemberTerminator reports whether a token following a modifier
// keyword (static/async/get/set) means the modifier was actually being used
// as the member name itself (e.g. `static() {}` declares a method named
// "static").
func (p *Parser) isClassMemberTerminator(t token.Type) bool {
	switch t {
	case token.LPAREN, token.ASSIGN, token.SEMI, token.RBRACE:
		return true
	default:
		return false
	}
}
