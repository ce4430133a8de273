package parser

import (
	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/token"
)

// parseBindingTarget parses an identifier, array, or object binding pattern
// as used in var/let/const declarators, function parameters, and catch
// clauses.
func (p *Parser) parseBindingTarget() ast.Pattern {
	switch p.tok.Type {
	case token.LBRACKET:
		return p.parseArrayPattern()
	case token.LBRACE:
		return p.parseObjectPattern()
	default:
		return p.parseIdent()
	}
}

// parseBindingWithDefault wraps parseBindingTarget with an optional `= expr`
// default, producing an *ast.AssignPattern when present.
func (p *Parser) parseBindingWithDefault() ast.Pattern {
	start := p.tok.Pos
	target := p.parseBindingTarget()
	if p.at(token.ASSIGN) {
		p.advance()
		def := p.parseAssignExpr()
		ap := &ast.AssignPattern{Target: target, Default: def}
		ap.SetSpan(start, p.tok.Pos)
		return ap
	}
	return target
}

func (p *Parser) parseArrayPattern() *ast.ArrayPattern {
	start := p.expect(token.LBRACKET).Pos
	pat := &ast.ArrayPattern{}
	for !p.at(token.RBRACKET) {
		if p.at(token.COMMA) {
			pat.Elements = append(pat.Elements, nil) // hole
			p.advance()
			continue
		}
		if p.at(token.ELLIPSIS) {
			restStart := p.advance().Pos
			target := p.parseBindingTarget()
			rest := &ast.RestElement{Target: target}
			rest.SetSpan(restStart, p.tok.Pos)
			pat.Elements = append(pat.Elements, rest)
			break // rest must be last
		}
		pat.Elements = append(pat.Elements, p.parseBindingWithDefault())
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	end := p.expect(token.RBRACKET).Pos
	pat.SetSpan(start, end)
	return pat
}

func (p *Parser) parseObjectPattern() *ast.ObjectPattern {
	start := p.expect(token.LBRACE).Pos
	pat := &ast.ObjectPattern{}
	for !p.at(token.RBRACE) {
		if p.at(token.ELLIPSIS) {
			p.advance()
			pat.Rest = p.parseBindingTarget()
			break
		}
		propStart := p.tok.Pos
		var key ast.Expr
		computed := false
		if p.at(token.LBRACKET) {
			p.advance()
			key = p.parseAssignExpr()
			p.expect(token.RBRACKET)
			computed = true
		} else if p.at(token.STRING) {
			tok := p.advance()
			sl := &ast.StringLiteral{Value: tok.Literal}
			sl.SetSpan(tok.Pos, tok.End)
			key = sl
		} else if p.at(token.NUMBER) {
			tok := p.advance()
			nl := &ast.NumberLiteral{Raw: tok.Literal}
			nl.SetSpan(tok.Pos, tok.End)
			key = nl
		} else {
			key = p.parseIdent()
		}
		var value ast.Pattern
		if p.at(token.COLON) {
			p.advance()
			value = p.parseBindingTarget()
		} else {
			// shorthand { x } or { x = default }
			id, ok := key.(*ast.Identifier)
			if !ok {
				p.fail("invalid shorthand property in destructuring pattern")
			}
			value = id
		}
		if p.at(token.ASSIGN) {
			p.advance()
			def := p.parseAssignExpr()
			ap := &ast.AssignPattern{Target: value, Default: def}
			ap.SetSpan(propStart, p.tok.Pos)
			value = ap
		}
		pp := &ast.PatternProperty{Key: key, Computed: computed, Value: value}
		pp.SetSpan(propStart, p.tok.Pos)
		pat.Properties = append(pat.Properties, pp)
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	end := p.expect(token.RBRACE).Pos
	pat.SetSpan(start, end)
	return pat
}

// toParam converts an already-parsed expression (from the cover grammar used
// to disambiguate parenthesized expressions from arrow parameter lists) into
// a binding Pattern.
func toParam(e ast.Expr) ast.Pattern {
	switch v := e.(type) {
	case *ast.Identifier:
		return v
	case *ast.ArrayPattern:
		return v
	case *ast.ObjectPattern:
		return v
	case *ast.AssignPattern:
		return v
	case *ast.RestElement:
		return v
	case *ast.ArrayLiteral:
		pat := &ast.ArrayPattern{}
		for _, el := range v.Elements {
			if el == nil {
				pat.Elements = append(pat.Elements, nil)
				continue
			}
			if sp, ok := el.(*ast.SpreadElement); ok {
				rest := &ast.RestElement{Target: toParam(sp.Arg)}
				rest.SetSpan(sp.Pos(), sp.End())
				pat.Elements = append(pat.Elements, rest)
				continue
			}
			pat.Elements = append(pat.Elements, toParam(el))
		}
		pat.SetSpan(v.Pos(), v.End())
		return pat
	case *ast.ObjectLiteral:
		pat := &ast.ObjectPattern{}
		for _, prop := range v.Properties {
			if prop.Kind == ast.PropSpread {
				pat.Rest = toParam(prop.Value)
				continue
			}
			pp := &ast.PatternProperty{Key: prop.Key, Computed: prop.Computed, Value: toParam(prop.Value)}
			pp.SetSpan(prop.Pos(), prop.End())
			pat.Properties = append(pat.Properties, pp)
		}
		pat.SetSpan(v.Pos(), v.End())
		return pat
	case *ast.AssignExpr:
		if v.Op != token.ASSIGN {
			panic(&SyntaxError{Pos: v.Pos(), Message: "invalid destructuring default"})
		}
		ap := &ast.AssignPattern{Target: toParam(v.Target), Default: v.Value}
		ap.SetSpan(v.Pos(), v.End())
		return ap
	case *ast.SpreadElement:
		rest := &ast.RestElement{Target: toParam(v.Arg)}
		rest.SetSpan(v.Pos(), v.End())
		return rest
	default:
		panic(&SyntaxError{Pos: e.Pos(), Message: "invalid parameter or destructuring target"})
	}
}

// toAssignTarget converts an expression into a valid left-hand side for
// destructuring assignment (as opposed to a binding declaration): unlike
// toParam, plain Identifier and MemberExpr targets pass straight through
// since `[a, obj.x] = arr` is legal.
func toAssignTarget(e ast.Expr) ast.Expr {
	switch v := e.(type) {
	case *ast.Identifier, *ast.MemberExpr:
		return v
	case *ast.ArrayLiteral, *ast.ObjectLiteral, *ast.AssignExpr, *ast.SpreadElement:
		return toParam(v).(ast.Expr)
	default:
		return e
	}
}
