package parser

import (
	"fmt"

	"github.com/xqlint/sqleibniz/pkg/ast"
	"github.com/xqlint/sqleibniz/pkg/diagnostic"
	"github.com/xqlint/sqleibniz/pkg/token"
)

const docAlterTable = "https://www.sqlite.org/lang_altertable.html"

// alterStmt: https://www.sqlite.org/lang_altertable.html
func (p *Parser) alterStmt() ast.Node {
	t := *p.cur()
	p.advance()
	p.consumeKeywordExact(token.TABLE)

	target := p.schemaTableOk(docAlterTable)
	a := &ast.Alter{Tok: t}
	if target != nil {
		a.Target = *target
	}

	cur := p.cur()
	if cur == nil {
		return a
	}

	if cur.Kind.Tag == token.TKeyword {
		switch cur.Kind.Keyword {
		case token.RENAME:
			p.advance()
			if p.isKeyword(token.TO) {
				p.advance()
				if name, ok := p.consumeIdent(docAlterTable, "new_table_name"); ok {
					a.RenameTo = &name
				}
			} else {
				if p.isKeyword(token.COLUMN) {
					p.advance()
				}
				if name, ok := p.consumeIdent(docAlterTable, "column_name"); ok {
					a.RenameColumnTarget = &name
				}
				p.consumeKeywordExact(token.TO)
				if name, ok := p.consumeIdent(docAlterTable, "column_name"); ok {
					a.NewColumnName = &name
				}
			}
		case token.ADD:
			p.advance()
			if p.isKeyword(token.COLUMN) {
				p.advance()
			}
			a.AddColumn = p.columnDef()
		case token.DROP:
			p.advance()
			if p.isKeyword(token.COLUMN) {
				p.advance()
			}
			if name, ok := p.consumeIdent(docAlterTable, "column_name"); ok {
				a.DropColumn = &name
			}
		default:
			d := p.err("Unexpected Token",
				fmt.Sprintf("ALTER requires either RENAME, ADD or DROP at this point, got %s", cur.Kind.String()),
				cur, diagnostic.Syntax).WithDocURL(docAlterTable)
			p.Diagnostics = append(p.Diagnostics, d)
			p.advance()
			return nil
		}
	}

	p.expectEnd(docAlterTable)
	return a
}

// reindexStmt: https://www.sqlite.org/syntax/reindex-stmt.html
func (p *Parser) reindexStmt() ast.Node {
	const doc = "https://www.sqlite.org/syntax/reindex-stmt.html"
	t := *p.cur()
	p.advance()

	r := &ast.Reindex{Tok: t}
	if p.is(token.TSemicolon) {
		return r
	}
	r.Target = p.schemaTable()
	p.expectEnd(doc)
	return r
}

// attachStmt: https://www.sqlite.org/syntax/attach-stmt.html
func (p *Parser) attachStmt() ast.Node {
	const doc = "https://www.sqlite.org/lang_attach.html"
	t := *p.cur()
	p.advance()
	if p.isKeyword(token.DATABASE) {
		p.advance()
	}

	a := &ast.Attach{Tok: t}
	if e := p.expr(); e != nil {
		a.Expr = *e
	}

	p.consumeKeywordExact(token.AS)
	if name, ok := p.consumeIdent(doc, "schema_name"); ok {
		a.SchemaName = name
	}

	p.expectEnd(doc)
	return a
}

// releaseStmt: https://www.sqlite.org/syntax/release-stmt.html
func (p *Parser) releaseStmt() ast.Node {
	const doc = "https://www.sqlite.org/syntax/release-stmt.html"
	t := *p.cur()
	p.advance()
	if p.isKeyword(token.SAVEPOINT) {
		p.advance()
	}
	name, ok := p.consumeIdent(doc, "savepoint_name")
	if !ok {
		return nil
	}
	r := &ast.Release{Tok: t, SavepointName: name}
	p.expectEnd(doc)
	return r
}

// savepointStmt: https://www.sqlite.org/syntax/savepoint-stmt.html
func (p *Parser) savepointStmt() ast.Node {
	const doc = "https://www.sqlite.org/syntax/savepoint-stmt.html"
	t := *p.cur()
	p.advance()
	name, ok := p.consumeIdent(doc, "savepoint_name")
	if !ok {
		return nil
	}
	s := &ast.Savepoint{Tok: t, SavepointName: name}
	p.expectEnd(doc)
	return s
}

// dropStmt: https://www.sqlite.org/lang_dropindex.html,
// https://www.sqlite.org/lang_droptable.html,
// https://www.sqlite.org/lang_droptrigger.html,
// https://www.sqlite.org/lang_dropview.html
func (p *Parser) dropStmt() ast.Node {
	const doc = "https://www.sqlite.org/lang_dropindex.html https://www.sqlite.org/lang_droptable.html https://www.sqlite.org/lang_droptrigger.html https://www.sqlite.org/lang_dropview.html"
	t := *p.cur()
	p.advance()

	cur := p.cur()
	if cur == nil {
		return nil
	}
	switch {
	case cur.Kind.Tag == token.TKeyword && (cur.Kind.Keyword == token.INDEX || cur.Kind.Keyword == token.TABLE ||
		cur.Kind.Keyword == token.TRIGGER || cur.Kind.Keyword == token.VIEW):
	default:
		d := p.err("Unexpected Token",
			fmt.Sprintf("DROP requires either INDEX, TABLE, TRIGGER or VIEW at this point, got %s", cur.Kind.String()),
			cur, diagnostic.Syntax).WithDocURL("https://www.sqlite.org/lang.html")
		p.Diagnostics = append(p.Diagnostics, d)
		p.advance()
		return nil
	}
	objectKind := cur.Kind.Keyword
	p.advance()

	drop := &ast.Drop{Tok: t, ObjectKind: objectKind}
	if p.isKeyword(token.IF) {
		p.advance()
		p.consumeKeywordExact(token.EXISTS)
		drop.IfExists = true
	}

	target := p.schemaTableOk(doc)
	if target == nil {
		return nil
	}
	drop.Argument = *target

	p.expectEnd(doc)
	return drop
}

// analyzeStmt: https://www.sqlite.org/syntax/analyze-stmt.html
func (p *Parser) analyzeStmt() ast.Node {
	const doc = "https://www.sqlite.org/lang_analyze.html"
	t := *p.cur()
	p.advance()
	a := &ast.Analyze{Tok: t, Target: p.schemaTable()}
	p.expectEnd(doc)
	return a
}

// detachStmt: https://www.sqlite.org/syntax/detach-stmt.html
func (p *Parser) detachStmt() ast.Node {
	const doc = "https://www.sqlite.org/lang_detach.html"
	t := *p.cur()
	p.advance()
	if p.isKeyword(token.DATABASE) {
		p.advance()
	}
	name, ok := p.consumeIdent(doc, "schema_name")
	if !ok {
		return nil
	}
	d := &ast.Detach{Tok: t, SchemaName: name}
	p.expectEnd(doc)
	return d
}

// rollbackStmt: https://www.sqlite.org/syntax/rollback-stmt.html
func (p *Parser) rollbackStmt() ast.Node {
	const doc = "https://www.sqlite.org/lang_transaction.html"
	t := *p.cur()
	p.advance()
	r := &ast.Rollback{Tok: t}

	cur := p.cur()
	if cur == nil {
		return r
	}
	valid := cur.Kind.Tag == token.TSemicolon ||
		(cur.Kind.Tag == token.TKeyword && (cur.Kind.Keyword == token.TRANSACTION || cur.Kind.Keyword == token.TO))
	if !valid {
		d := p.err("Unexpected Token",
			fmt.Sprintf("ROLLBACK requires TRANSACTION, TO or to end at this point, got %s", cur.Kind.String()),
			cur, diagnostic.Syntax).WithDocURL(doc)
		p.Diagnostics = append(p.Diagnostics, d)
	}

	if p.isKeyword(token.TRANSACTION) {
		p.advance()
	}

	if p.isKeyword(token.TO) {
		p.advance()
		if p.isKeyword(token.SAVEPOINT) {
			p.advance()
		}

		cur = p.cur()
		validSave := cur != nil && (cur.Kind.Tag == token.TIdent || cur.Kind.Tag == token.TSemicolon ||
			(cur.Kind.Tag == token.TKeyword && cur.Kind.Keyword == token.SAVEPOINT))
		if !validSave {
			if cur != nil {
				d := p.err("Unexpected Token",
					fmt.Sprintf("ROLLBACK requires SAVEPOINT, Ident or to end at this point, got %s", cur.Kind.String()),
					cur, diagnostic.Syntax).WithDocURL(doc)
				p.Diagnostics = append(p.Diagnostics, d)
				p.advance()
			}
		}

		cur = p.cur()
		if cur != nil && cur.Kind.Tag == token.TIdent {
			name := cur.Kind.Str
			r.SavePoint = &name
		} else if cur != nil {
			d := p.err("Unexpected Token",
				fmt.Sprintf("ROLLBACK wants Ident as <savepoint-name>, got %s", cur.Kind.String()),
				cur, diagnostic.Syntax).WithDocURL(doc)
			p.Diagnostics = append(p.Diagnostics, d)
		}
		p.advance()
	}

	p.expectEnd(doc)
	return r
}

// commitStmt: https://www.sqlite.org/syntax/commit-stmt.html (also accepts END)
func (p *Parser) commitStmt() ast.Node {
	const doc = "https://www.sqlite.org/lang_transaction.html"
	c := &ast.Commit{Tok: *p.cur()}
	p.advance()

	cur := p.cur()
	switch {
	case cur == nil || cur.Kind.Tag == token.TSemicolon:
	case cur.Kind.Tag == token.TKeyword && cur.Kind.Keyword == token.TRANSACTION:
		p.advance()
	default:
		d := p.err("Unexpected Token",
			fmt.Sprintf("Wanted Keyword(TRANSACTION) or Semicolon, got %s", cur.Kind.String()),
			cur, diagnostic.Syntax).WithDocURL(doc)
		p.Diagnostics = append(p.Diagnostics, d)
		p.advance()
	}

	p.expectEnd(doc)
	return c
}

// beginStmt: https://www.sqlite.org/syntax/begin-stmt.html
func (p *Parser) beginStmt() ast.Node {
	const doc = "https://www.sqlite.org/lang_transaction.html"
	t := *p.cur()
	p.advance()
	b := &ast.Begin{Tok: t}

	cur := p.cur()
	if cur == nil {
		return b
	}
	if cur.Kind.Tag == token.TSemicolon {
		return b
	}
	if cur.Kind.Tag == token.TKeyword {
		switch cur.Kind.Keyword {
		case token.DEFERRED, token.IMMEDIATE, token.EXCLUSIVE:
			kw := cur.Kind.Keyword
			b.TransactionKind = &kw
			p.advance()
		}
	}

	cur = p.cur()
	if cur == nil {
		return b
	}
	switch {
	case cur.Kind.Tag == token.TSemicolon:
		return b
	case cur.Kind.Tag == token.TKeyword && cur.Kind.Keyword == token.TRANSACTION:
		p.advance()
	case cur.Kind.Tag == token.TKeyword && (cur.Kind.Keyword == token.DEFERRED ||
		cur.Kind.Keyword == token.IMMEDIATE || cur.Kind.Keyword == token.EXCLUSIVE):
		d := p.err("Unexpected Token", "BEGIN does not allow multiple transaction behaviour modifiers",
			cur, diagnostic.Syntax).WithDocURL(doc)
		p.Diagnostics = append(p.Diagnostics, d)
		p.skipUntilSemicolonOrEOF()
	default:
		d := p.err("Unexpected Token",
			fmt.Sprintf("Wanted any of TRANSACTION, DEFERRED, IMMEDIATE or EXCLUSIVE before this point, got %s", cur.Kind.String()),
			cur, diagnostic.Syntax).WithDocURL(doc)
		p.Diagnostics = append(p.Diagnostics, d)
	}

	p.expectEnd(doc)
	return b
}

// vacuumStmt: https://www.sqlite.org/lang_vacuum.html
func (p *Parser) vacuumStmt() ast.Node {
	const doc = "https://www.sqlite.org/lang_vacuum.html"
	t := *p.cur()
	p.consumeKeywordExact(token.VACUUM)
	v := &ast.Vacuum{Tok: t}

	cur := p.cur()
	if cur == nil {
		return v
	}
	valid := cur.Kind.Tag == token.TSemicolon || cur.Kind.Tag == token.TIdent ||
		(cur.Kind.Tag == token.TKeyword && cur.Kind.Keyword == token.INTO)
	if !valid {
		d := p.err("Unexpected Token",
			fmt.Sprintf("Wanted INTO with a filename or schema_name for VACUUM stmt, got %s", cur.Kind.String()),
			cur, diagnostic.Syntax).WithDocURL(doc)
		p.Diagnostics = append(p.Diagnostics, d)
		p.advance()
	}

	if p.is(token.TSemicolon) {
		return v
	}

	if p.is(token.TIdent) {
		tok := *p.cur()
		v.SchemaName = &tok
		p.advance()
	}

	if p.isKeyword(token.INTO) {
		p.advance()
		if p.is(token.TString) {
			tok := *p.cur()
			v.Filename = &tok
		} else if cur := p.cur(); cur != nil {
			d := p.err("Unexpected Token",
				fmt.Sprintf("Wanted a filename string for VACUUM stmt with INTO, got %s", cur.Kind.String()),
				cur, diagnostic.Syntax).WithDocURL(doc)
			p.Diagnostics = append(p.Diagnostics, d)
		}
		p.advance()
	}

	p.expectEnd(doc)
	return v
}

// pragmaStmt: https://www.sqlite.org/pragma.html — not present in the
// original reference parser; designed fresh for the three invocation
// shapes SQLite's grammar allows.
func (p *Parser) pragmaStmt() ast.Node {
	const doc = "https://www.sqlite.org/pragma.html"
	t := *p.cur()
	p.advance()

	name := p.schemaTableOk(doc)
	if name == nil {
		return nil
	}
	pragma := &ast.Pragma{Tok: t, PragmaName: *name, Invocation: ast.PragmaQuery}

	cur := p.cur()
	if cur == nil {
		return pragma
	}
	switch cur.Kind.Tag {
	case token.TEqual:
		p.advance()
		pragma.Invocation = ast.PragmaAssign
		p.pragmaValue(pragma, doc)
	case token.TBraceLeft:
		p.advance()
		pragma.Invocation = ast.PragmaCall
		p.pragmaValue(pragma, doc)
		p.consume(token.TBraceRight)
	}

	p.expectEnd(doc)
	return pragma
}

// pragmaValue consumes the value token following `=` or `(` in a pragma
// invocation. The grammar only allows a literal-like token here (String,
// Number, Ident or Keyword, the last covering bare words like ON/OFF). At
// EOF it returns without a diagnostic; any other token, `;` included, is
// reported as Syntax and left unconsumed for expectEnd/error recovery.
func (p *Parser) pragmaValue(pragma *ast.Pragma, doc string) {
	v := p.cur()
	if v == nil {
		return
	}
	switch v.Kind.Tag {
	case token.TString, token.TNumber, token.TIdent, token.TKeyword:
		tok := *v
		pragma.Value = &tok
		p.advance()
	default:
		d := p.err("Unexpected Token",
			fmt.Sprintf("Wanted a literal pragma value, got %s", v.Kind.String()),
			v, diagnostic.Syntax).WithDocURL(doc)
		p.Diagnostics = append(p.Diagnostics, d)
	}
}
