package parser

import (
	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/token"
)

func (p *Parser) parseFunctionDecl(isAsync bool) ast.Stmt {
	start := p.tok.Pos
	fn := p.parseFunctionAfterKeyword(isAsync)
	ds := &ast.FunctionDeclStmt{Function: fn}
	ds.SetSpan(start, p.tok.Pos)
	return ds
}

func (p *Parser) parseFunctionExpr(isAsync bool) ast.Expr {
	return p.parseFunctionAfterKeyword(isAsync)
}

// parseFunctionAfterKeyword parses `function` [`*`] [name] `(` params `)` `{`
// body `}`, with the leading `function` keyword (and any `async` already
// consumed by the caller) still pending.
func (p *Parser) parseFunctionAfterKeyword(isAsync bool) *ast.FunctionLiteral {
	start := p.expect(token.FUNCTION).Pos
	isGen := false
	if p.at(token.STAR) {
		p.advance()
		isGen = true
	}
	name := ""
	if p.isIdentLike() {
		name = p.advance().Literal
	}
	fn := p.parseFunctionRest(name, isAsync, isGen)
	fn.SetSpan(start, fn.End())
	return fn
}

// parseFunctionRest parses the parameter list and body, with name/async/
// generator already determined by the caller (used for declarations,
// expressions, object-literal methods, and class methods alike).
func (p *Parser) parseFunctionRest(name string, isAsync, isGen bool) *ast.FunctionLiteral {
	start := p.tok.Pos
	params := p.parseParamList()
	body := p.parseBlockStatements()
	fn := &ast.FunctionLiteral{Name: name, Params: params, Body: body, IsAsync: isAsync, IsGenerator: isGen}
	fn.SetSpan(start, p.tok.Pos)
	return fn
}

func (p *Parser) parseParamList() []ast.Pattern {
	p.expect(token.LPAREN)
	var params []ast.Pattern
	for !p.at(token.RPAREN) {
		if p.at(token.ELLIPSIS) {
			start := p.advance().Pos
			target := p.parseBindingTarget()
			rest := &ast.RestElement{Target: target}
			rest.SetSpan(start, p.tok.Pos)
			params = append(params, rest)
			break // rest parameter must be last
		}
		params = append(params, p.parseBindingWithDefault())
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	return params
}
