package parser

import (
	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/token"
)

func (p *Parser) parseStatement() ast.Stmt {
	switch p.tok.Type {
	case token.LBRACE:
		return p.parseBlock()
	case token.VAR, token.LET, token.CONST:
		return p.parseVarDeclStmt()
	case token.FUNCTION:
		return p.parseFunctionDecl(false)
	case token.ASYNC:
		if p.peek().Type == token.FUNCTION && !p.peek().NewlineBefore {
			p.advance()
			return p.parseFunctionDecl(true)
		}
	case token.CLASS:
		return p.parseClassDecl()
	case token.IF:
		return p.parseIf()
	case token.FOR:
		return p.parseFor("")
	case token.WHILE:
		return p.parseWhile("")
	case token.DO:
		return p.parseDoWhile("")
	case token.BREAK:
		return p.parseBreak()
	case token.CONTINUE:
		return p.parseContinue()
	case token.RETURN:
		return p.parseReturn()
	case token.THROW:
		return p.parseThrow()
	case token.TRY:
		return p.parseTry()
	case token.SWITCH:
		return p.parseSwitch("")
	case token.SEMI:
		tok := p.advance()
		es := &ast.EmptyStmt{}
		es.SetSpan(tok.Pos, tok.End)
		return es
	case token.IMPORT:
		if p.peek().Type != token.LPAREN && p.peek().Type != token.DOT {
			return p.parseImportDecl()
		}
	case token.EXPORT:
		return p.parseExportDecl()
	}
	// labeled statement: IDENT ':'
	if p.isIdentLike() {
		save := p.markPos()
		start := p.tok.Pos
		id := p.parseIdent()
		if p.at(token.COLON) {
			p.advance()
			return p.parseLabeledBody(start, id.Name)
		}
		p.resetTo(save)
	}
	return p.parseExpressionStmt()
}

func (p *Parser) parseLabeledBody(start token.Position, label string) ast.Stmt {
	var body ast.Stmt
	switch p.tok.Type {
	case token.FOR:
		body = p.parseFor(label)
	case token.WHILE:
		body = p.parseWhile(label)
	case token.DO:
		body = p.parseDoWhile(label)
	case token.SWITCH:
		body = p.parseSwitch(label)
	default:
		body = p.parseStatement()
	}
	ls := &ast.LabeledStmt{Label: label, Body: body}
	ls.SetSpan(start, p.tok.Pos)
	return ls
}

func (p *Parser) parseExpressionStmt() ast.Stmt {
	start := p.tok.Pos
	expr := p.parseExpr(false)
	p.consumeSemi()
	es := &ast.ExpressionStmt{Expr: expr}
	es.SetSpan(start, p.tok.Pos)
	return es
}

func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.expect(token.LBRACE).Pos
	var body []ast.Stmt
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		body = append(body, p.parseStatement())
	}
	end := p.expect(token.RBRACE).Pos
	b := &ast.BlockStmt{Body: body}
	b.SetSpan(start, end)
	return b
}

// parseBlockStatements is used for function bodies, which the AST models as
// a bare []Stmt rather than a nested BlockStmt.
func (p *Parser) parseBlockStatements() []ast.Stmt {
	p.expect(token.LBRACE)
	var body []ast.Stmt
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		body = append(body, p.parseStatement())
	}
	p.expect(token.RBRACE)
	return body
}

func (p *Parser) parseVarDeclStmt() *ast.VarDeclStmt {
	start := p.tok.Pos
	decl := p.parseVarDeclNoSemi(false)
	p.consumeSemi()
	decl.SetSpan(start, p.tok.Pos)
	return decl
}

func (p *Parser) parseVarDeclNoSemi(noIn bool) *ast.VarDeclStmt {
	start := p.tok.Pos
	var kind ast.VarKind
	switch p.advance().Type {
	case token.VAR:
		kind = ast.Var
	case token.LET:
		kind = ast.Let
	case token.CONST:
		kind = ast.Const
	}
	decl := &ast.VarDeclStmt{Kind: kind}
	for {
		dStart := p.tok.Pos
		target := p.parseBindingTarget()
		var init ast.Expr
		if p.at(token.ASSIGN) {
			p.advance()
			init = p.parseAssignExprNoIn(noIn)
		}
		d := &ast.VarDeclarator{Target: target, Init: init}
		d.SetSpan(dStart, p.tok.Pos)
		decl.Decls = append(decl.Decls, d)
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	decl.SetSpan(start, p.tok.Pos)
	return decl
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.advance().Pos
	p.expect(token.LPAREN)
	test := p.parseExpr(false)
	p.expect(token.RPAREN)
	cons := p.parseStatement()
	var alt ast.Stmt
	if p.at(token.ELSE) {
		p.advance()
		alt = p.parseStatement()
	}
	st := &ast.IfStmt{Test: test, Cons: cons, Alt: alt}
	st.SetSpan(start, p.tok.Pos)
	return st
}

func (p *Parser) parseWhile(label string) ast.Stmt {
	start := p.advance().Pos
	p.expect(token.LPAREN)
	test := p.parseExpr(false)
	p.expect(token.RPAREN)
	body := p.parseStatement()
	st := &ast.WhileStmt{Test: test, Body: body, Label: label}
	st.SetSpan(start, p.tok.Pos)
	return st
}

func (p *Parser) parseDoWhile(label string) ast.Stmt {
	start := p.advance().Pos
	body := p.parseStatement()
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	test := p.parseExpr(false)
	p.expect(token.RPAREN)
	if p.at(token.SEMI) {
		p.advance()
	}
	st := &ast.DoWhileStmt{Body: body, Test: test, Label: label}
	st.SetSpan(start, p.tok.Pos)
	return st
}

// parseFor handles the classic for(;;), for-in, and for-of/for-await-of
// forms, disambiguated by scanning the header contents.
func (p *Parser) parseFor(label string) ast.Stmt {
	start := p.advance().Pos // 'for'
	isAwait := false
	if p.at(token.AWAIT) {
		p.advance()
		isAwait = true
	}
	p.expect(token.LPAREN)

	if p.at(token.SEMI) {
		return p.finishClassicFor(start, label, nil)
	}

	if p.at(token.VAR) || p.at(token.LET) || p.at(token.CONST) {
		decl := p.parseVarDeclNoIn1()
		if p.at(token.IN) || p.at(token.OF) {
			if len(decl.Decls) != 1 || decl.Decls[0].Init != nil {
				p.fail("invalid for-in/for-of left-hand side")
			}
			return p.finishForInOf(start, label, decl.Kind, true, decl.Decls[0].Target, isAwait)
		}
		p.expect(token.SEMI)
		return p.finishClassicFor(start, label, decl)
	}

	// Either a plain expression init or a for-in/for-of with a non-declared
	// (assignment-target) left-hand side.
	exprStart := p.tok.Pos
	lhs := p.parseExprNoInCover()
	if p.at(token.IN) || p.at(token.OF) {
		target := toParamOrAssignTarget(lhs)
		return p.finishForInOf(start, label, ast.Var, false, target, isAwait)
	}
	es := &ast.ExpressionStmt{Expr: lhs}
	es.SetSpan(exprStart, p.tok.Pos)
	p.expect(token.SEMI)
	return p.finishClassicFor(start, label, es)
}

// toParamOrAssignTarget adapts a for-in/for-of LHS expression (parsed
// without a declaration keyword) into a Pattern. Plain Identifier/Member
// targets already satisfy Pattern's sibling requirements via toParam when
// possible; MemberExpr is wrapped minimally since ast.ForInStmt requires a
// Pattern target but plain assignment to a member is legal in for-of/for-in.
func toParamOrAssignTarget(e ast.Expr) ast.Pattern {
	if me, ok := e.(*ast.MemberExpr); ok {
		return memberPattern{me}
	}
	return toParam(e)
}

// memberPattern adapts a MemberExpr so it satisfies ast.Pattern for use as a
// for-in/for-of loop target (`for (obj.x of arr)`), which is valid JS but
// not expressible as any of the parser's dedicated pattern node types.
type memberPattern struct{ *ast.MemberExpr }

func (memberPattern) patternNode() {}

func (p *Parser) parseExprNoInCover() ast.Expr {
	first := p.parseAssignExprNoIn(true)
	if !p.at(token.COMMA) {
		return first
	}
	seq := &ast.SequenceExpr{Exprs: []ast.Expr{first}}
	for p.at(token.COMMA) {
		p.advance()
		seq.Exprs = append(seq.Exprs, p.parseAssignExprNoIn(true))
	}
	return seq
}

// parseVarDeclNoIn1 parses a single-declarator var/let/const head (no `in`
// consumed as binary operator, no trailing semicolon) for use in for-loop
// headers where the declarator count and shape still need validating by
// the caller.
func (p *Parser) parseVarDeclNoIn1() *ast.VarDeclStmt {
	start := p.tok.Pos
	var kind ast.VarKind
	switch p.advance().Type {
	case token.VAR:
		kind = ast.Var
	case token.LET:
		kind = ast.Let
	case token.CONST:
		kind = ast.Const
	}
	decl := &ast.VarDeclStmt{Kind: kind}
	for {
		dStart := p.tok.Pos
		target := p.parseBindingTarget()
		var init ast.Expr
		if p.at(token.ASSIGN) {
			p.advance()
			init = p.parseAssignExprNoIn(true)
		}
		d := &ast.VarDeclarator{Target: target, Init: init}
		d.SetSpan(dStart, p.tok.Pos)
		decl.Decls = append(decl.Decls, d)
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	decl.SetSpan(start, p.tok.Pos)
	return decl
}

func (p *Parser) finishForInOf(start token.Position, label string, kind ast.VarKind, hasDecl bool, target ast.Pattern, isAwait bool) ast.Stmt {
	isOf := p.at(token.OF)
	p.advance() // 'in' or 'of'
	var object ast.Expr
	if isOf {
		object = p.parseAssignExpr()
	} else {
		object = p.parseExpr(false)
	}
	p.expect(token.RPAREN)
	body := p.parseStatement()
	st := &ast.ForInStmt{Kind: kind, HasDecl: hasDecl, Target: target, Object: object, Body: body, IsOf: isOf, IsAwait: isAwait, Label: label}
	st.SetSpan(start, p.tok.Pos)
	return st
}

func (p *Parser) finishClassicFor(start token.Position, label string, init ast.Node) ast.Stmt {
	var test, update ast.Expr
	if !p.at(token.SEMI) {
		test = p.parseExpr(false)
	}
	p.expect(token.SEMI)
	if !p.at(token.RPAREN) {
		update = p.parseExpr(false)
	}
	p.expect(token.RPAREN)
	body := p.parseStatement()
	st := &ast.ForStmt{Init: init, Test: test, Update: update, Body: body, Label: label}
	st.SetSpan(start, p.tok.Pos)
	return st
}

func (p *Parser) parseBreak() ast.Stmt {
	start := p.advance().Pos
	label := ""
	if p.isIdentLike() && !p.tok.NewlineBefore {
		label = p.advance().Literal
	}
	p.consumeSemi()
	st := &ast.BreakStmt{Label: label}
	st.SetSpan(start, p.tok.Pos)
	return st
}

func (p *Parser) parseContinue() ast.Stmt {
	start := p.advance().Pos
	label := ""
	if p.isIdentLike() && !p.tok.NewlineBefore {
		label = p.advance().Literal
	}
	p.consumeSemi()
	st := &ast.ContinueStmt{Label: label}
	st.SetSpan(start, p.tok.Pos)
	return st
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.advance().Pos
	var arg ast.Expr
	if !p.at(token.SEMI) && !p.at(token.RBRACE) && !p.at(token.EOF) && !p.tok.NewlineBefore {
		arg = p.parseExpr(false)
	}
	p.consumeSemi()
	st := &ast.ReturnStmt{Arg: arg}
	st.SetSpan(start, p.tok.Pos)
	return st
}

func (p *Parser) parseThrow() ast.Stmt {
	start := p.advance().Pos
	if p.tok.NewlineBefore {
		p.fail("illegal newline after throw")
	}
	arg := p.parseExpr(false)
	p.consumeSemi()
	st := &ast.ThrowStmt{Arg: arg}
	st.SetSpan(start, p.tok.Pos)
	return st
}

func (p *Parser) parseTry() ast.Stmt {
	start := p.advance().Pos
	block := p.parseBlock()
	st := &ast.TryStmt{Block: block}
	if p.at(token.CATCH) {
		p.advance()
		st.HasCatch = true
		if p.at(token.LPAREN) {
			p.advance()
			st.CatchParam = p.parseBindingTarget()
			p.expect(token.RPAREN)
		}
		st.CatchBlock = p.parseBlock()
	}
	if p.at(token.FINALLY) {
		p.advance()
		st.FinallyBlock = p.parseBlock()
	}
	if !st.HasCatch && st.FinallyBlock == nil {
		p.fail("missing catch or finally after try")
	}
	st.SetSpan(start, p.tok.Pos)
	return st
}

func (p *Parser) parseSwitch(label string) ast.Stmt {
	start := p.advance().Pos
	p.expect(token.LPAREN)
	disc := p.parseExpr(false)
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)
	st := &ast.SwitchStmt{Disc: disc}
	for !p.at(token.RBRACE) {
		caseStart := p.tok.Pos
		var test ast.Expr
		if p.at(token.CASE) {
			p.advance()
			test = p.parseExpr(false)
		} else {
			p.expect(token.DEFAULT)
		}
		p.expect(token.COLON)
		var body []ast.Stmt
		for !p.at(token.CASE) && !p.at(token.DEFAULT) && !p.at(token.RBRACE) {
			body = append(body, p.parseStatement())
		}
		c := &ast.SwitchCase{Test: test, Body: body}
		c.SetSpan(caseStart, p.tok.Pos)
		st.Cases = append(st.Cases, c)
	}
	end := p.expect(token.RBRACE).Pos
	st.SetSpan(start, end)
	return st
}
