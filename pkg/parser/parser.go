// Package parser implements an error-resistant recursive-descent parser
// over the token stream produced by pkg/lexer. Function naming follows the
// SQLite grammar documentation directly.
//
// See:
//   - https://www.sqlite.org/lang.html
//   - https://www.sqlite.org/lang_expr.html
package parser

import (
	"fmt"

	"github.com/xqlint/sqleibniz/pkg/ast"
	"github.com/xqlint/sqleibniz/pkg/diagnostic"
	"github.com/xqlint/sqleibniz/pkg/token"
)

const docSqlStmt = "https://www.sqlite.org/syntax/sql-stmt.html"

// Parser walks a fixed token slice, never failing fatally: every error path
// appends a Diagnostic and advances or recovers to the next statement.
type Parser struct {
	pos    int
	tokens []token.Token
	name   string

	Diagnostics []diagnostic.Diagnostic
}

func New(tokens []token.Token, name string) *Parser {
	return &Parser{tokens: tokens, name: name}
}

func (p *Parser) cur() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) isEOF() bool { return p.pos >= len(p.tokens) }

func (p *Parser) advance() {
	if !p.isEOF() {
		p.pos++
	}
}

func (p *Parser) is(tag token.Tag) bool {
	c := p.cur()
	return c != nil && c.Kind.Tag == tag
}

func (p *Parser) isKeyword(kw token.Keyword) bool {
	c := p.cur()
	return c != nil && c.Kind.Tag == token.TKeyword && c.Kind.Keyword == kw
}

func (p *Parser) nextIs(tag token.Tag) bool {
	if p.pos+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.pos+1].Kind.Tag == tag
}

func (p *Parser) err(msg, note string, start *token.Token, rule diagnostic.Rule) diagnostic.Diagnostic {
	span := start.Span
	if c := p.cur(); c != nil {
		span.End = c.Span.End
	}
	return diagnostic.New(p.name, span, rule, msg, note)
}

func (p *Parser) skipUntilSemicolonOrEOF() {
	for !p.isEOF() && !p.is(token.TSemicolon) {
		p.advance()
	}
}

// consume checks the current token's tag is tag, emitting a Diagnostic
// otherwise; it always advances, keeping the parser error resistant. A
// missing Semicolon is special-cased into the Semicolon rule, anchored at
// the previous token's end with a suggested fix inserting ';' there.
func (p *Parser) consume(tag token.Tag) {
	if !p.is(tag) {
		cur := p.cur()
		var gotDesc string
		var errSpan token.Span
		if cur == nil {
			last := p.tokens[len(p.tokens)-1]
			gotDesc = token.TEof.String()
			errSpan = token.Span{Line: last.Span.Line, Start: last.Span.End, End: last.Span.End}
		} else {
			gotDesc = cur.Kind.String()
			errSpan = cur.Span
		}

		msg := "Unexpected Token"
		if cur == nil {
			msg = "Unexpected End of input"
		}
		d := diagnostic.New(p.name, errSpan, diagnostic.Syntax, msg,
			fmt.Sprintf("Wanted %s, got %s", tag, gotDesc))

		if tag == token.TSemicolon {
			if cur != nil && p.pos > 0 {
				prev := p.tokens[p.pos-1]
				d.Span = token.Span{Line: prev.Span.Line, Start: prev.Span.End, End: prev.Span.End}
			}
			d.Rule = diagnostic.Semicolon
			d.Msg = "Missing semicolon"
			d.Note += ", terminate statements with ';'"
			d = d.WithImprovedLine(";", d.Span.End)
		}
		d = d.WithDocURL(docSqlStmt)
		p.Diagnostics = append(p.Diagnostics, d)
	}
	p.advance()
}

// consumeKeywordExact checks both the tag and the keyword value, unlike
// consume, which only checks the token's tag.
func (p *Parser) consumeKeywordExact(kw token.Keyword) {
	if !p.isKeyword(kw) {
		cur := p.cur()
		got := "EOF"
		span := token.Span{}
		if cur != nil {
			got = cur.Kind.String()
			span = cur.Span
		} else if len(p.tokens) > 0 {
			last := p.tokens[len(p.tokens)-1]
			span = token.Span{Line: last.Span.Line, Start: last.Span.End, End: last.Span.End}
		}
		d := diagnostic.New(p.name, span, diagnostic.Syntax, "Unexpected Token",
			fmt.Sprintf("Wanted Keyword(%s), got %s", kw, got)).WithDocURL(docSqlStmt)
		p.Diagnostics = append(p.Diagnostics, d)
	}
	p.advance()
}

// expectEnd checks the current token is a Semicolon without consuming it,
// used at the end of a statement so sqlStmtList's own consume(Semicolon)
// does the actual advance.
func (p *Parser) expectEnd(doc string) {
	if p.is(token.TSemicolon) || p.isEOF() {
		return
	}
	cur := p.cur()
	d := p.err("Unexpected Statement Continuation",
		fmt.Sprintf("End of statement via Semicolon expected, got %s", cur.Kind.String()),
		cur, diagnostic.Syntax)
	if doc != "" {
		d = d.WithDocURL(doc)
	}
	p.Diagnostics = append(p.Diagnostics, d)
	p.advance()
}

// consumeIdent requires the current token to be an identifier, returning
// its name. On mismatch it emits a Diagnostic and skips to the next
// statement boundary, since nothing useful can be recovered mid-grammar.
func (p *Parser) consumeIdent(doc, expectedName string) (string, bool) {
	cur := p.cur()
	if cur == nil {
		return "", false
	}
	if cur.Kind.Tag == token.TIdent {
		p.advance()
		return cur.Kind.Str, true
	}
	d := p.err("Unexpected Token",
		fmt.Sprintf("Expected Ident(<%s>), got %s", expectedName, cur.Kind.String()),
		cur, diagnostic.Syntax).WithDocURL(doc)
	p.Diagnostics = append(p.Diagnostics, d)
	p.skipUntilSemicolonOrEOF()
	return "", false
}

// ParseAll parses every statement in the token stream, returning one Node
// per recognized statement; statements that failed to parse are left out
// of the slice, so it holds no nil entries.
func ParseAll(tokens []token.Token, name string) ([]ast.Node, []diagnostic.Diagnostic) {
	p := New(tokens, name)
	nodes := p.sqlStmtList()
	return nodes, p.Diagnostics
}

// sqlStmtList: https://www.sqlite.org/syntax/sql-stmt-list.html
func (p *Parser) sqlStmtList() []ast.Node {
	var out []ast.Node
	for !p.isEOF() {
		if p.is(token.TInstructionExpect) {
			p.skipUntilSemicolonOrEOF()
			if !p.isEOF() {
				p.consume(token.TSemicolon)
				continue
			}
		}
		if n := p.sqlStmtPrefix(); n != nil {
			out = append(out, n)
		}
		p.consume(token.TSemicolon)
	}
	return out
}

func (p *Parser) sqlStmtPrefix() ast.Node {
	cur := p.cur()
	if cur == nil {
		return nil
	}
	if cur.Kind.Tag == token.TKeyword && cur.Kind.Keyword == token.EXPLAIN {
		t := *cur
		p.advance()
		if p.isKeyword(token.QUERY) {
			p.advance()
			p.consumeKeywordExact(token.PLAN)
		}
		child := p.sqlStmt()
		return &ast.Explain{Tok: t, Child: child}
	}
	return p.sqlStmt()
}

// sqlStmt: https://www.sqlite.org/syntax/sql-stmt.html
func (p *Parser) sqlStmt() ast.Node {
	cur := p.cur()
	if cur == nil {
		return nil
	}

	if cur.Kind.Tag == token.TKeyword {
		switch cur.Kind.Keyword {
		case token.ALTER:
			return p.alterStmt()
		case token.ATTACH:
			return p.attachStmt()
		case token.REINDEX:
			return p.reindexStmt()
		case token.RELEASE:
			return p.releaseStmt()
		case token.SAVEPOINT:
			return p.savepointStmt()
		case token.DROP:
			return p.dropStmt()
		case token.ANALYZE:
			return p.analyzeStmt()
		case token.DETACH:
			return p.detachStmt()
		case token.ROLLBACK:
			return p.rollbackStmt()
		case token.COMMIT, token.END:
			return p.commitStmt()
		case token.BEGIN:
			return p.beginStmt()
		case token.VACUUM:
			return p.vacuumStmt()
		case token.PRAGMA:
			return p.pragmaStmt()
		case token.NULL, token.CURRENT_TIME, token.CURRENT_DATE, token.CURRENT_TIMESTAMP:
			d := p.err("Unexpected Literal",
				fmt.Sprintf("Literal %s disallowed at this point.", cur.Kind.String()),
				cur, diagnostic.Syntax).WithDocURL(docSqlStmt)
			p.Diagnostics = append(p.Diagnostics, d)
			p.advance()
			return nil
		default:
			d := p.err("Unimplemented",
				fmt.Sprintf("sqleibniz can not yet analyse the token %s, skipping ahead to next statement", cur.Kind.String()),
				cur, diagnostic.Unimplemented)
			p.Diagnostics = append(p.Diagnostics, d)
			p.skipUntilSemicolonOrEOF()
			return nil
		}
	}

	switch cur.Kind.Tag {
	case token.TSemicolon:
		d := p.err("Unexpected Token", "Semicolon makes no sense at this point", cur, diagnostic.Syntax)
		p.Diagnostics = append(p.Diagnostics, d)
		p.advance()
		return nil
	case token.TString, token.TNumber, token.TBlob, token.TBoolean:
		d := p.err("Unexpected Literal",
			fmt.Sprintf("Literal %s disallowed at this point.", cur.Kind.String()),
			cur, diagnostic.Syntax).WithDocURL(docSqlStmt)
		p.Diagnostics = append(p.Diagnostics, d)
		p.advance()
		return nil
	case token.TIdent:
		name := cur.Kind.Str
		suggestion := token.SuggestKeyword(name)
		note := fmt.Sprintf("'%s' is not a known keyword", name)
		if suggestion != "" {
			note = fmt.Sprintf("'%s' is not a known keyword, did you mean: \n\t- %s", name, suggestion)
		}
		d := p.err("Unknown Keyword", note, cur, diagnostic.UnknownKeyword)
		p.Diagnostics = append(p.Diagnostics, d)
		p.skipUntilSemicolonOrEOF()
		return nil
	default:
		d := p.err("Unknown Token",
			fmt.Sprintf("sqleibniz does not understand the token %s, skipping ahead to next statement", cur.Kind.String()),
			cur, diagnostic.Unimplemented)
		p.Diagnostics = append(p.Diagnostics, d)
		p.skipUntilSemicolonOrEOF()
		return nil
	}
}
