package parser

import (
	"strings"

	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/token"
)

// binding power table for binary/logical infix operators, highest binds
// tightest. Mirrors the standard ES operator-precedence table (spec.md C2
// "Pratt-style operator-precedence parsing").
var infixPower = map[token.Type]int{
	token.NULLISH: 1,
	token.LOGOR:   2,
	token.LOGAND:  3,
	token.OR:      4,
	token.XOR:     5,
	token.AND:     6,
	token.EQ:      7, token.NEQ: 7, token.EQSTRICT: 7, token.NEQSTRICT: 7,
	token.LT: 8, token.GT: 8, token.LE: 8, token.GE: 8, token.INSTANCEOF: 8, token.IN: 8,
	token.SHL: 9, token.SHR: 9, token.USHR: 9,
	token.PLUS: 10, token.MINUS: 10,
	token.STAR: 11, token.SLASH: 11, token.PERCENT: 11,
	token.POW: 12,
}

var assignOps = map[token.Type]bool{
	token.ASSIGN: true, token.PLUS_ASSIGN: true, token.MINUS_ASSIGN: true,
	token.STAR_ASSIGN: true, token.SLASH_ASSIGN: true, token.PERCENT_ASSIGN: true,
	token.POW_ASSIGN: true, token.SHL_ASSIGN: true, token.SHR_ASSIGN: true,
	token.USHR_ASSIGN: true, token.AND_ASSIGN: true, token.OR_ASSIGN: true,
	token.XOR_ASSIGN: true, token.LOGAND_ASSIGN: true, token.LOGOR_ASSIGN: true,
	token.NULLISH_ASSIGN: true,
}

// noIn suppresses treating `in` as an infix operator while parsing the Init
// clause of a classic for(;;) header, per the grammar's [NoIn] parameter.
func (p *Parser) parseExpr(noIn bool) ast.Expr {
	first := p.parseAssignExprNoIn(noIn)
	if !p.at(token.COMMA) {
		return first
	}
	seq := &ast.SequenceExpr{Exprs: []ast.Expr{first}}
	for p.at(token.COMMA) {
		p.advance()
		seq.Exprs = append(seq.Exprs, p.parseAssignExprNoIn(noIn))
	}
	seq.SetSpan(first.Pos(), p.tok.Pos)
	return seq
}

func (p *Parser) parseAssignExpr() ast.Expr { return p.parseAssignExprNoIn(false) }

func (p *Parser) parseAssignExprNoIn(noIn bool) ast.Expr {
	if p.at(token.YIELD) {
		return p.parseYield()
	}
	if arrow, ok := p.tryParseArrow(); ok {
		return arrow
	}
	start := p.tok.Pos
	left := p.parseConditional(noIn)
	if assignOps[p.tok.Type] {
		op := p.advance().Type
		var target ast.Expr
		if op == token.ASSIGN {
			target = toAssignTarget(left)
		} else {
			target = left
		}
		value := p.parseAssignExprNoIn(noIn)
		ae := &ast.AssignExpr{Op: op, Target: target, Value: value}
		ae.SetSpan(start, p.tok.Pos)
		return ae
	}
	return left
}

func (p *Parser) parseYield() ast.Expr {
	start := p.advance().Pos // consume 'yield'
	y := &ast.YieldExpr{}
	if p.at(token.STAR) {
		p.advance()
		y.Delegate = true
		y.Arg = p.parseAssignExpr()
	} else if p.canStartExprAfterYield() {
		y.Arg = p.parseAssignExpr()
	}
	y.SetSpan(start, p.tok.Pos)
	return y
}

// canStartExprAfterYield applies the same "no line terminator, and not a
// statement terminator" rule ASI uses elsewhere: a bare `yield` at the end
// of a statement must not swallow the next line's tokens.
func (p *Parser) canStartExprAfterYield() bool {
	if p.tok.NewlineBefore {
		return false
	}
	switch p.tok.Type {
	case token.SEMI, token.RPAREN, token.RBRACKET, token.RBRACE, token.COMMA, token.COLON, token.EOF:
		return false
	default:
		return true
	}
}

func (p *Parser) parseConditional(noIn bool) ast.Expr {
	start := p.tok.Pos
	test := p.parseBinary(0, noIn)
	if !p.at(token.QUESTION) {
		return test
	}
	p.advance()
	cons := p.parseAssignExpr()
	p.expect(token.COLON)
	alt := p.parseAssignExprNoIn(noIn)
	ce := &ast.ConditionalExpr{Test: test, Cons: cons, Alt: alt}
	ce.SetSpan(start, p.tok.Pos)
	return ce
}

func (p *Parser) parseBinary(minPower int, noIn bool) ast.Expr {
	start := p.tok.Pos
	left := p.parseUnary()
	for {
		op := p.tok.Type
		if op == token.IN && noIn {
			break
		}
		power, ok := infixPower[op]
		if !ok || power < minPower {
			break
		}
		p.advance()
		nextMin := power + 1
		if op == token.POW {
			nextMin = power // ** is right-associative
		}
		right := p.parseBinary(nextMin, noIn)
		if op == token.LOGAND || op == token.LOGOR || op == token.NULLISH {
			le := &ast.LogicalExpr{Op: op, Left: left, Right: right}
			le.SetSpan(start, p.tok.Pos)
			left = le
		} else {
			be := &ast.BinaryExpr{Op: op, Left: left, Right: right}
			be.SetSpan(start, p.tok.Pos)
			left = be
		}
	}
	return left
}

var prefixUnaryOps = map[token.Type]bool{
	token.PLUS: true, token.MINUS: true, token.NOT: true, token.TILDE: true,
	token.TYPEOF: true, token.VOID: true, token.DELETE: true,
	token.INC: true, token.DEC: true,
}

func (p *Parser) parseUnary() ast.Expr {
	if p.at(token.AWAIT) {
		start := p.advance().Pos
		arg := p.parseUnary()
		ae := &ast.AwaitExpr{Arg: arg}
		ae.SetSpan(start, p.tok.Pos)
		return ae
	}
	if prefixUnaryOps[p.tok.Type] {
		start := p.tok.Pos
		op := p.advance().Type
		arg := p.parseUnary()
		ue := &ast.UnaryExpr{Op: op, Arg: arg, Prefix: true}
		ue.SetSpan(start, p.tok.Pos)
		return ue
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	start := p.tok.Pos
	expr := p.parseCallOrMember(p.parsePrimary(), true)
	if (p.at(token.INC) || p.at(token.DEC)) && !p.tok.NewlineBefore {
		op := p.advance().Type
		ue := &ast.UnaryExpr{Op: op, Arg: expr, Prefix: false}
		ue.SetSpan(start, p.tok.Pos)
		return ue
	}
	return expr
}

// parseCallOrMember parses the member/call chain following a primary
// expression: `.prop`, `[expr]`, `(...)`, optional-chaining variants, and
// tagged templates.
func (p *Parser) parseCallOrMember(base ast.Expr, allowCall bool) ast.Expr {
	start := base.Pos()
	for {
		switch {
		case p.at(token.DOT):
			p.advance()
			var prop ast.Expr
			if p.at(token.PRIVATE_IDENT) {
				tok := p.advance()
				pi := &ast.PrivateIdentifier{Name: tok.Literal}
				pi.SetSpan(tok.Pos, tok.End)
				prop = pi
			} else {
				prop = p.parseIdentAsPropertyName()
			}
			me := &ast.MemberExpr{Object: base, Property: prop, Computed: false}
			me.SetSpan(start, p.tok.Pos)
			base = me
		case p.at(token.OPTCHAIN):
			p.advance()
			if p.at(token.LPAREN) {
				base = p.finishCall(base, true)
				continue
			}
			if p.at(token.LBRACKET) {
				p.advance()
				idx := p.parseExpr(false)
				p.expect(token.RBRACKET)
				me := &ast.MemberExpr{Object: base, Property: idx, Computed: true, Optional: true}
				me.SetSpan(start, p.tok.Pos)
				base = me
				continue
			}
			var prop ast.Expr
			if p.at(token.PRIVATE_IDENT) {
				tok := p.advance()
				pi := &ast.PrivateIdentifier{Name: tok.Literal}
				pi.SetSpan(tok.Pos, tok.End)
				prop = pi
			} else {
				prop = p.parseIdentAsPropertyName()
			}
			me := &ast.MemberExpr{Object: base, Property: prop, Computed: false, Optional: true}
			me.SetSpan(start, p.tok.Pos)
			base = me
		case p.at(token.LBRACKET):
			p.advance()
			idx := p.parseExpr(false)
			p.expect(token.RBRACKET)
			me := &ast.MemberExpr{Object: base, Property: idx, Computed: true}
			me.SetSpan(start, p.tok.Pos)
			base = me
		case allowCall && p.at(token.LPAREN):
			base = p.finishCall(base, false)
		case p.at(token.TEMPLATE_FULL), p.at(token.TEMPLATE_HEAD):
			tmpl := p.parseTemplateLiteral()
			tt := &ast.TaggedTemplate{Tag: base, Template: tmpl}
			tt.SetSpan(start, p.tok.Pos)
			base = tt
		default:
			return base
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr, optional bool) ast.Expr {
	start := callee.Pos()
	p.expect(token.LPAREN)
	var args []ast.Expr
	for !p.at(token.RPAREN) {
		if p.at(token.ELLIPSIS) {
			sStart := p.advance().Pos
			arg := p.parseAssignExpr()
			se := &ast.SpreadElement{Arg: arg}
			se.SetSpan(sStart, p.tok.Pos)
			args = append(args, se)
		} else {
			args = append(args, p.parseAssignExpr())
		}
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	ce := &ast.CallExpr{Callee: callee, Args: args, Optional: optional}
	ce.SetSpan(start, p.tok.Pos)
	return ce
}

// parseIdentAsPropertyName allows any keyword to appear after `.`, since
// property names are not restricted to the identifier grammar (`x.class`
// or `x.for` is legal member access even though `class`/`for` are reserved
// words).
func (p *Parser) parseIdentAsPropertyName() *ast.Identifier {
	tok := p.advance()
	name := tok.Literal
	if name == "" {
		// keyword tokens carry no literal; recover the spelling from the
		// token type itself (e.g. `obj.class`, `obj.for`).
		name = tok.Type.String()
	}
	id := &ast.Identifier{Name: name}
	id.SetSpan(tok.Pos, tok.End)
	return id
}

func (p *Parser) parsePrimary() ast.Expr {
	switch p.tok.Type {
	case token.NUMBER:
		tok := p.advance()
		nl := &ast.NumberLiteral{Value: parseNumberLiteral(tok.Literal), Raw: tok.Literal}
		nl.SetSpan(tok.Pos, tok.End)
		return nl
	case token.BIGINT:
		tok := p.advance()
		bl := &ast.BigIntLiteral{Raw: tok.Literal}
		bl.SetSpan(tok.Pos, tok.End)
		return bl
	case token.STRING:
		tok := p.advance()
		sl := &ast.StringLiteral{Value: tok.Literal}
		sl.SetSpan(tok.Pos, tok.End)
		return sl
	case token.TRUE, token.FALSE:
		tok := p.advance()
		bl := &ast.BoolLiteral{Value: tok.Type == token.TRUE}
		bl.SetSpan(tok.Pos, tok.End)
		return bl
	case token.NULL:
		tok := p.advance()
		nl := &ast.NullLiteral{}
		nl.SetSpan(tok.Pos, tok.End)
		return nl
	case token.THIS:
		tok := p.advance()
		te := &ast.ThisExpr{}
		te.SetSpan(tok.Pos, tok.End)
		return te
	case token.SUPER:
		tok := p.advance()
		se := &ast.SuperExpr{}
		se.SetSpan(tok.Pos, tok.End)
		return se
	case token.REGEXP:
		tok := p.advance()
		pattern, flags, _ := strings.Cut(tok.Literal, "\x00")
		rl := &ast.RegexpLiteral{Pattern: pattern, Flags: flags}
		rl.SetSpan(tok.Pos, tok.End)
		return rl
	case token.TEMPLATE_FULL, token.TEMPLATE_HEAD:
		return p.parseTemplateLiteral()
	case token.LPAREN:
		return p.parseParenExpr()
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LBRACE:
		return p.parseObjectLiteral()
	case token.FUNCTION:
		return p.parseFunctionExpr(false)
	case token.ASYNC:
		if p.peek().Type == token.FUNCTION && !p.peek().NewlineBefore {
			p.advance()
			return p.parseFunctionExpr(true)
		}
		return p.parseIdentOrAsyncArrow()
	case token.CLASS:
		return p.parseClassExpr()
	case token.NEW:
		return p.parseNewExpr()
	case token.IMPORT:
		return p.parseImportCallOrMeta()
	default:
		if p.isIdentLike() {
			return p.parseIdent()
		}
		p.failExpected("expression")
		return nil
	}
}

func (p *Parser) parseIdentOrAsyncArrow() ast.Expr {
	return p.parseIdent()
}

func (p *Parser) parseNewExpr() ast.Expr {
	start := p.advance().Pos // 'new'
	if p.at(token.DOT) {
		// new.target
		p.advance()
		p.parseIdent() // "target"
		id := &ast.Identifier{Name: "new.target"}
		id.SetSpan(start, p.tok.Pos)
		return id
	}
	callee := p.parseCallOrMember(p.parsePrimary(), false)
	var args []ast.Expr
	if p.at(token.LPAREN) {
		call := p.finishCall(callee, false).(*ast.CallExpr)
		args = call.Args
	}
	ne := &ast.NewExpr{Callee: callee, Args: args}
	ne.SetSpan(start, p.tok.Pos)
	return p.parseCallOrMember(ne, true)
}

func (p *Parser) parseImportCallOrMeta() ast.Expr {
	start := p.advance().Pos // 'import'
	if p.at(token.DOT) {
		p.advance()
		p.parseIdent() // "meta"
		id := &ast.Identifier{Name: "import.meta"}
		id.SetSpan(start, p.tok.Pos)
		return id
	}
	p.expect(token.LPAREN)
	src := p.parseAssignExpr()
	if p.at(token.COMMA) {
		p.advance()
		if !p.at(token.RPAREN) {
			p.parseAssignExpr() // options argument, not modeled further
		}
	}
	p.expect(token.RPAREN)
	ic := &ast.ImportCallExpr{Source: src}
	ic.SetSpan(start, p.tok.Pos)
	return p.parseCallOrMember(ic, true)
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	start := p.expect(token.LBRACKET).Pos
	al := &ast.ArrayLiteral{}
	for !p.at(token.RBRACKET) {
		if p.at(token.COMMA) {
			al.Elements = append(al.Elements, nil)
			p.advance()
			continue
		}
		if p.at(token.ELLIPSIS) {
			sStart := p.advance().Pos
			arg := p.parseAssignExpr()
			se := &ast.SpreadElement{Arg: arg}
			se.SetSpan(sStart, p.tok.Pos)
			al.Elements = append(al.Elements, se)
		} else {
			al.Elements = append(al.Elements, p.parseAssignExpr())
		}
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	end := p.expect(token.RBRACKET).Pos
	al.SetSpan(start, end)
	return al
}

func (p *Parser) parseObjectLiteral() ast.Expr {
	start := p.expect(token.LBRACE).Pos
	ol := &ast.ObjectLiteral{}
	for !p.at(token.RBRACE) {
		ol.Properties = append(ol.Properties, p.parseObjectProperty())
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	end := p.expect(token.RBRACE).Pos
	ol.SetSpan(start, end)
	return ol
}

func (p *Parser) parseObjectProperty() *ast.Property {
	start := p.tok.Pos
	if p.at(token.ELLIPSIS) {
		p.advance()
		arg := p.parseAssignExpr()
		prop := &ast.Property{Kind: ast.PropSpread, Value: arg}
		prop.SetSpan(start, p.tok.Pos)
		return prop
	}
	isAsync, isGen := false, false
	if p.at(token.ASYNC) && p.peek().Type != token.COLON && p.peek().Type != token.COMMA && p.peek().Type != token.RPAREN && p.peek().Type != token.LPAREN && !p.peek().NewlineBefore {
		p.advance()
		isAsync = true
	}
	if p.at(token.STAR) {
		p.advance()
		isGen = true
	}
	kind := ast.PropInit
	if (p.at(token.GET) || p.at(token.SET)) && p.peek().Type != token.COLON && p.peek().Type != token.COMMA && p.peek().Type != token.RPAREN {
		if p.at(token.GET) {
			kind = ast.PropGet
		} else {
			kind = ast.PropSet
		}
		p.advance()
	}
	computed := false
	var key ast.Expr
	switch {
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
	if kind == ast.PropGet || kind == ast.PropSet {
		fn := p.parseFunctionRest("", false, false)
		prop := &ast.Property{Kind: kind, Key: key, Computed: computed, Value: fn}
		prop.SetSpan(start, p.tok.Pos)
		return prop
	}
	if p.at(token.LPAREN) {
		fn := p.parseFunctionRest("", isAsync, isGen)
		prop := &ast.Property{Kind: ast.PropMethod, Key: key, Computed: computed, Value: fn}
		prop.SetSpan(start, p.tok.Pos)
		return prop
	}
	if p.at(token.COLON) {
		p.advance()
		val := p.parseAssignExpr()
		prop := &ast.Property{Kind: ast.PropInit, Key: key, Computed: computed, Value: val}
		prop.SetSpan(start, p.tok.Pos)
		return prop
	}
	// shorthand, possibly with default (only valid inside a destructuring
	// cover grammar; toParam will catch misuse elsewhere)
	id, ok := key.(*ast.Identifier)
	if !ok {
		p.fail("invalid shorthand property")
	}
	var val ast.Expr = id
	if p.at(token.ASSIGN) {
		p.advance()
		def := p.parseAssignExpr()
		ae := &ast.AssignExpr{Op: token.ASSIGN, Target: id, Value: def}
		ae.SetSpan(start, p.tok.Pos)
		val = ae
	}
	prop := &ast.Property{Kind: ast.PropInit, Key: key, Shorthand: true, Value: val}
	prop.SetSpan(start, p.tok.Pos)
	return prop
}

// parseTemplateLiteral consumes a full template, including nested `${...}`
// substitutions, driven by the lexer's TEMPLATE_HEAD/MIDDLE/TAIL stream.
func (p *Parser) parseTemplateLiteral() *ast.TemplateLiteral {
	start := p.tok.Pos
	tl := &ast.TemplateLiteral{}
	if p.at(token.TEMPLATE_FULL) {
		tok := p.advance()
		cooked, raw, _ := strings.Cut(tok.Literal, "\x00")
		tl.Quasis = []string{cooked}
		tl.Raws = []string{raw}
		tl.SetSpan(start, tok.End)
		return tl
	}
	headTok := p.expect(token.TEMPLATE_HEAD)
	cooked, raw, _ := strings.Cut(headTok.Literal, "\x00")
	tl.Quasis = append(tl.Quasis, cooked)
	tl.Raws = append(tl.Raws, raw)
	for {
		tl.Exprs = append(tl.Exprs, p.parseExpr(false))
		if p.at(token.TEMPLATE_MIDDLE) {
			tok := p.advance()
			c, r, _ := strings.Cut(tok.Literal, "\x00")
			tl.Quasis = append(tl.Quasis, c)
			tl.Raws = append(tl.Raws, r)
			continue
		}
		tailTok := p.expect(token.TEMPLATE_TAIL)
		c, r, _ := strings.Cut(tailTok.Literal, "\x00")
		tl.Quasis = append(tl.Quasis, c)
		tl.Raws = append(tl.Raws, r)
		tl.SetSpan(start, tailTok.End)
		break
	}
	return tl
}

// parseParenExpr implements the cover grammar: the contents of `(...)` are
// parsed generically, then reinterpreted as either a parenthesized
// expression or an arrow function parameter list depending on what follows.
func (p *Parser) parseParenExpr() ast.Expr {
	start := p.tok.Pos
	elems, end := p.parseParenCoverElems()
	if p.at(token.ARROW) && !p.tok.NewlineBefore {
		return p.finishArrow(start, elems, false)
	}
	if len(elems) == 0 {
		p.fail("empty parenthesized expression")
	}
	if _, ok := elems[len(elems)-1].(*ast.RestElement); ok {
		p.fail("rest element only valid in arrow parameters")
	}
	if len(elems) == 1 {
		return elems[0]
	}
	seq := &ast.SequenceExpr{Exprs: elems}
	seq.SetSpan(start, end)
	return seq
}

// parseParenCoverElems parses the comma-separated contents of a `(...)`
// group generically enough to serve either as a parenthesized expression
// (possibly a comma/sequence expression) or as an arrow function's
// parameter list, deferred to the caller once it knows which one follows.
func (p *Parser) parseParenCoverElems() ([]ast.Expr, token.Position) {
	p.expect(token.LPAREN)
	var elems []ast.Expr
	for !p.at(token.RPAREN) {
		if p.at(token.ELLIPSIS) {
			sStart := p.advance().Pos
			target := p.parseBindingWithDefault()
			rest := &ast.RestElement{Target: target}
			rest.SetSpan(sStart, p.tok.Pos)
			elems = append(elems, rest)
			break
		}
		elems = append(elems, p.parseAssignExpr())
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	end := p.expect(token.RPAREN).Pos
	return elems, end
}

// tryParseArrow handles the no-parens forms: `x => ...` and
// `async x => ...`, and delegates the parenthesized forms to
// parseParenExpr's cover grammar once it sees `(`.
func (p *Parser) tryParseArrow() (ast.Expr, bool) {
	start := p.tok.Pos
	if p.at(token.ASYNC) {
		save := p.markPos()
		p.advance()
		if p.at(token.LPAREN) && !p.tok.NewlineBefore {
			elems, _ := p.parseParenCoverElems()
			if p.at(token.ARROW) && !p.tok.NewlineBefore {
				return p.finishArrow(start, elems, true), true
			}
			p.resetTo(save)
			return nil, false
		}
		if !p.isIdentLike() || p.tok.NewlineBefore {
			p.resetTo(save)
			return nil, false
		}
		id := p.parseIdent()
		if !p.at(token.ARROW) || p.tok.NewlineBefore {
			p.resetTo(save)
			return nil, false
		}
		p.advance() // =>
		fn := p.finishArrowBody(start, []ast.Pattern{id}, true)
		return fn, true
	}
	if p.isIdentLike() {
		save := p.markPos()
		id := p.parseIdent()
		if p.at(token.ARROW) && !p.tok.NewlineBefore {
			p.advance()
			fn := p.finishArrowBody(start, []ast.Pattern{id}, false)
			return fn, true
		}
		p.resetTo(save)
	}
	return nil, false
}

func (p *Parser) finishArrow(start token.Position, elems []ast.Expr, isAsync bool) ast.Expr {
	p.expect(token.ARROW)
	params := make([]ast.Pattern, len(elems))
	for i, e := range elems {
		params[i] = toParam(e)
	}
	return p.finishArrowBody(start, params, isAsync)
}

func (p *Parser) finishArrowBody(start token.Position, params []ast.Pattern, isAsync bool) ast.Expr {
	fn := &ast.FunctionLiteral{Params: params, IsArrow: true, IsAsync: isAsync}
	if p.at(token.LBRACE) {
		fn.Body = p.parseBlockStatements()
	} else {
		fn.ExprBody = p.parseAssignExpr()
	}
	fn.SetSpan(start, p.tok.Pos)
	return fn
}

// parseNumberLiteral converts a lexed numeric literal (decimal, hex, octal,
// binary, with optional separators already stripped by the lexer) to its
// float64 value. Full precision/edge-case conversion lives in value/convert.go;
// this is the AST-facing conversion used only to populate NumberLiteral.Value
// for the constant folder.
func parseNumberLiteral(raw string) float64 {
	return parseNumberFast(raw)
}
