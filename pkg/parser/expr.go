package parser

import (
	"fmt"

	"github.com/xqlint/sqleibniz/pkg/ast"
	"github.com/xqlint/sqleibniz/pkg/diagnostic"
	"github.com/xqlint/sqleibniz/pkg/token"
)

const docLiteralValue = "https://www.sqlite.org/syntax/literal-value.html"
const docExpr = "https://www.sqlite.org/syntax/expr.html"

func isLiteralStart(cur *token.Token) bool {
	if cur == nil {
		return false
	}
	if cur.Kind.IsLiteral() {
		return true
	}
	if cur.Kind.Tag == token.TKeyword {
		switch cur.Kind.Keyword {
		case token.NULL, token.CURRENT_TIME, token.CURRENT_DATE, token.CURRENT_TIMESTAMP:
			return true
		}
	}
	return false
}

// literalValue: https://www.sqlite.org/syntax/literal-value.html
func (p *Parser) literalValue() *ast.Literal {
	cur := p.cur()
	if !isLiteralStart(cur) {
		if cur != nil {
			d := p.err("Unexpected Token",
				fmt.Sprintf("Wanted a literal (any of number,string,blob,null,true,false,CURRENT_TIME,CURRENT_DATE,CURRENT_TIMESTAMP), got %s", cur.Kind.String()),
				cur, diagnostic.Syntax).WithDocURL(docLiteralValue)
			p.Diagnostics = append(p.Diagnostics, d)
			p.advance()
		}
		return nil
	}
	l := &ast.Literal{Tok: *cur}
	p.advance()
	return l
}

// expr parses the minimal expression form this parser supports: a literal,
// a bind parameter, or a [schema.][table.]column reference. See:
// https://www.sqlite.org/syntax/expr.html
func (p *Parser) expr() *ast.Expr {
	cur := p.cur()
	if cur == nil {
		return nil
	}
	e := &ast.Expr{Tok: *cur}

	switch {
	case isLiteralStart(cur):
		lit := p.literalValue()
		if lit != nil {
			e.Literal = &lit.Tok
		}
		return e

	case cur.Kind.Tag == token.TQuestion:
		bind := &ast.BindParameter{Tok: *cur}
		p.advance()
		// question mark can have a number after it, but it's optional; SQLite's
		// docs discourage this form since the marks are easy to miscount.
		if p.is(token.TNumber) {
			if lit := p.literalValue(); lit != nil {
				n := uint64(lit.Tok.Kind.Num)
				bind.Counter = &n
			}
		}
		e.Bind = bind
		return e

	case cur.Kind.Tag == token.TColon || cur.Kind.Tag == token.TAt || cur.Kind.Tag == token.TDollar:
		bind := &ast.BindParameter{Tok: *cur}
		p.advance()
		next := p.cur()
		if next != nil && next.Kind.Tag == token.TIdent {
			name := next.Kind.Str
			bind.Name = &name
			p.advance()
		} else {
			d := p.err("Invalid bind parameter",
				fmt.Sprintf("Bind parameter with %s requires an identifier as a postfix", cur.Kind.String()),
				cur, diagnostic.Syntax)
			p.Diagnostics = append(p.Diagnostics, d)
			p.advance()
			return nil
		}
		e.Bind = bind
		return e

	case cur.Kind.Tag == token.TIdent:
		// start of a function call: read the identifier as a forward-compatible
		// column reference, the arguments themselves are not evaluated since
		// expression evaluation is out of scope.
		if p.nextIs(token.TBraceLeft) {
			name := cur.Kind.Str
			e.Column = &name
			p.advance()
			p.advance()
			depth := 1
			for !p.isEOF() && depth > 0 {
				if p.is(token.TBraceLeft) {
					depth++
				} else if p.is(token.TBraceRight) {
					depth--
					if depth == 0 {
						p.advance()
						break
					}
				}
				p.advance()
			}
			return e
		}

		first := cur.Kind.Str
		p.advance()
		if p.is(token.TDot) {
			p.advance()
			second := p.cur()
			if second == nil || second.Kind.Tag != token.TIdent {
				d := p.err("Unexpected Token",
					"Wanted Ident(<table_name_or_column_name>) after Dot", cur, diagnostic.Syntax)
				p.Diagnostics = append(p.Diagnostics, d)
				return nil
			}
			secondName := second.Kind.Str
			p.advance()
			if p.is(token.TDot) {
				p.advance()
				third := p.cur()
				if third == nil || third.Kind.Tag != token.TIdent {
					d := p.err("Unexpected Token",
						"Wanted Ident(<column_name>) after Dot", cur, diagnostic.Syntax)
					p.Diagnostics = append(p.Diagnostics, d)
					return nil
				}
				thirdName := third.Kind.Str
				p.advance()
				e.Schema = &first
				e.Table = &secondName
				e.Column = &thirdName
			} else {
				e.Table = &first
				e.Column = &secondName
			}
		} else {
			e.Column = &first
		}
		return e

	default:
		d := p.err("Invalid construct",
			fmt.Sprintf("At this point in an expression, %s is not a valid construct", cur.Kind.String()),
			cur, diagnostic.Syntax).WithDocURL(docExpr)
		p.Diagnostics = append(p.Diagnostics, d)
		p.advance()
		return nil
	}
}

// schemaTable parses schema_name.table_name or a bare table_name, emitting
// only syntax diagnostics — callers that require a result should use
// schemaTableOk instead.
func (p *Parser) schemaTable() *ast.SchemaTable {
	cur := p.cur()
	if cur == nil || (cur.Kind.Tag != token.TIdent && cur.Kind.Tag != token.TString) {
		return nil
	}
	if p.nextIs(token.TDot) {
		schema := cur.Kind.Str
		p.advance()
		p.advance()
		tableTok := p.cur()
		if tableTok == nil || (tableTok.Kind.Tag != token.TIdent && tableTok.Kind.Tag != token.TString) {
			d := p.err("Missing table_name",
				fmt.Sprintf("expected a Ident(<table_name>) after getting Ident(<schema_name>) and '.', got %v", p.tokenDesc()),
				cur, diagnostic.Syntax)
			p.Diagnostics = append(p.Diagnostics, d)
			p.advance()
			return nil
		}
		table := ast.SchemaAndTable(schema, tableTok.Kind.Str)
		p.advance()
		return &table
	}
	table := ast.Table(cur.Kind.Str)
	p.advance()
	return &table
}

func (p *Parser) tokenDesc() string {
	if c := p.cur(); c != nil {
		return c.Kind.String()
	}
	return "EOF"
}

// schemaTableOk wraps schemaTable, appending a Diagnostic when it fails.
func (p *Parser) schemaTableOk(doc string) *ast.SchemaTable {
	st := p.schemaTable()
	if st != nil {
		return st
	}
	cur := p.cur()
	if cur == nil {
		return nil
	}
	note := fmt.Sprintf("expected either Ident(<schema_name.table_name>) or Ident(<table_name>) at this point, got %s", cur.Kind.String())
	if cur.Kind.Tag == token.TKeyword {
		note += fmt.Sprintf("; to use the keyword as a name, quote it: '%s'", cur.Kind.Keyword)
	}
	d := p.err("Missing schema_name or table_name", note, cur, diagnostic.Syntax).WithDocURL(doc)
	p.Diagnostics = append(p.Diagnostics, d)
	return nil
}
