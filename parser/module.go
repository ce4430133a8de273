package parser

import (
	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/token"
)

func (p *Parser) parseImportDecl() ast.Stmt {
	start := p.advance().Pos // 'import'
	decl := &ast.ImportDeclStmt{}
	if p.at(token.STRING) {
		decl.Source = p.advance().Literal
		p.consumeSemi()
		decl.SetSpan(start, p.tok.Pos)
		return decl
	}
	if p.isIdentLike() {
		local := p.advance().Literal
		decl.Specifiers = append(decl.Specifiers, &ast.ImportSpecifier{Imported: "default", Local: local})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	if p.at(token.STAR) {
		p.advance()
		p.expect(token.AS)
		local := p.advance().Literal
		decl.Specifiers = append(decl.Specifiers, &ast.ImportSpecifier{Imported: "*", Local: local})
	} else if p.at(token.LBRACE) {
		p.advance()
		for !p.at(token.RBRACE) {
			imported := p.advance().Literal
			local := imported
			if p.at(token.AS) {
				p.advance()
				local = p.advance().Literal
			}
			decl.Specifiers = append(decl.Specifiers, &ast.ImportSpecifier{Imported: imported, Local: local})
			if p.at(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RBRACE)
	}
	p.expect(token.FROM)
	decl.Source = p.advance().Literal
	p.consumeSemi()
	decl.SetSpan(start, p.tok.Pos)
	return decl
}

func (p *Parser) parseExportDecl() ast.Stmt {
	start := p.advance().Pos // 'export'
	if p.at(token.DEFAULT) {
		p.advance()
		var decl ast.Node
		switch p.tok.Type {
		case token.FUNCTION:
			decl = p.parseFunctionDecl(false)
		case token.CLASS:
			decl = p.parseClassDecl()
		case token.ASYNC:
			if p.peek().Type == token.FUNCTION {
				p.advance()
				decl = p.parseFunctionDecl(true)
			} else {
				decl = p.parseAssignExpr()
				p.consumeSemi()
			}
		default:
			decl = p.parseAssignExpr()
			p.consumeSemi()
		}
		st := &ast.ExportDefaultStmt{Decl: decl}
		st.SetSpan(start, p.tok.Pos)
		return st
	}
	if p.at(token.STAR) {
		p.advance()
		as := ""
		if p.at(token.AS) {
			p.advance()
			as = p.advance().Literal
		}
		p.expect(token.FROM)
		source := p.advance().Literal
		p.consumeSemi()
		st := &ast.ExportAllStmt{Source: source, As: as}
		st.SetSpan(start, p.tok.Pos)
		return st
	}
	if p.at(token.LBRACE) {
		p.advance()
		st := &ast.ExportNamedStmt{}
		for !p.at(token.RBRACE) {
			local := p.advance().Literal
			exported := local
			if p.at(token.AS) {
				p.advance()
				exported = p.advance().Literal
			}
			st.Specifiers = append(st.Specifiers, &ast.ExportSpecifier{Local: local, Exported: exported})
			if p.at(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RBRACE)
		if p.at(token.FROM) {
			p.advance()
			st.Source = p.advance().Literal
		}
		p.consumeSemi()
		st.SetSpan(start, p.tok.Pos)
		return st
	}
	// export <declaration>
	var decl ast.Stmt
	switch p.tok.Type {
	case token.VAR, token.LET, token.CONST:
		decl = p.parseVarDeclStmt()
	case token.FUNCTION:
		decl = p.parseFunctionDecl(false)
	case token.CLASS:
		decl = p.parseClassDecl()
	case token.ASYNC:
		p.advance()
		decl = p.parseFunctionDecl(true)
	default:
		p.failExpected("declaration after export")
	}
	st := &ast.ExportNamedStmt{Decl: decl}
	st.SetSpan(start, p.tok.Pos)
	return st
}
