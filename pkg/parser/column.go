package parser

import (
	"fmt"

	"github.com/xqlint/sqleibniz/pkg/ast"
	"github.com/xqlint/sqleibniz/pkg/diagnostic"
	"github.com/xqlint/sqleibniz/pkg/token"
)

const docConflictClause = "https://www.sqlite.org/syntax/conflict-clause.html"
const docForeignKeyClause = "https://www.sqlite.org/syntax/foreign-key-clause.html"
const docColumnConstraint = "https://www.sqlite.org/syntax/column-constraint.html"
const docTypeName = "https://www.sqlite.org/syntax/type-name.html"
const docColumnDef = "https://www.sqlite.org/syntax/column-def.html"

// conflictClause: https://www.sqlite.org/syntax/conflict-clause.html
func (p *Parser) conflictClause() *token.Keyword {
	if !p.isKeyword(token.ON) {
		return nil
	}
	p.advance()
	p.consumeKeywordExact(token.CONFLICT)

	cur := p.cur()
	if cur == nil || cur.Kind.Tag != token.TKeyword {
		if cur != nil {
			d := p.err("Unexpected Token", fmt.Sprintf("Wanted a Keyword at this point, got %s.", cur.Kind.String()),
				cur, diagnostic.Syntax).WithDocURL(docConflictClause)
			p.Diagnostics = append(p.Diagnostics, d)
		}
		return nil
	}

	kw := cur.Kind.Keyword
	switch kw {
	case token.ROLLBACK, token.ABORT, token.FAIL, token.IGNORE, token.REPLACE:
	default:
		d := p.err("Unexpected Keyword",
			fmt.Sprintf("Wanted either ROLLBACK, ABORT, FAIL, IGNORE or REPLACE after ON CONFLICT, got %s.", cur.Kind.String()),
			cur, diagnostic.Syntax).WithDocURL(docConflictClause)
		p.Diagnostics = append(p.Diagnostics, d)
	}
	p.advance()
	return &kw
}

func fkActionFromDeleteUpdate(p *Parser) *ast.ForeignKeyAction {
	cur := p.cur()
	if cur == nil || cur.Kind.Tag != token.TKeyword {
		if cur != nil {
			d := p.err("Unexpected Token", fmt.Sprintf("Wanted SET, CASCADE, RESTRICT or NO after ON DELETE/UPDATE, got %s.", cur.Kind.String()),
				cur, diagnostic.Syntax).WithDocURL(docForeignKeyClause)
			p.Diagnostics = append(p.Diagnostics, d)
		}
		return nil
	}

	switch cur.Kind.Keyword {
	case token.SET:
		p.advance()
		cur2 := p.cur()
		action := ast.FKSetNull
		if cur2 == nil || !(cur2.Kind.Tag == token.TKeyword && (cur2.Kind.Keyword == token.NULL || cur2.Kind.Keyword == token.DEFAULT)) {
			if cur2 != nil {
				d := p.err("Unexpected Token", fmt.Sprintf("Wanted NULL or DEFAULT after SET, got %s.", cur2.Kind.String()),
					cur2, diagnostic.Syntax).WithDocURL(docForeignKeyClause)
				p.Diagnostics = append(p.Diagnostics, d)
			}
		} else if cur2.Kind.Keyword == token.DEFAULT {
			action = ast.FKSetDefault
		}
		p.advance()
		return &action
	case token.CASCADE:
		p.advance()
		a := ast.FKCascade
		return &a
	case token.RESTRICT:
		p.advance()
		a := ast.FKRestrict
		return &a
	case token.NO:
		p.advance()
		p.consumeKeywordExact(token.ACTION)
		a := ast.FKNoAction
		return &a
	default:
		d := p.err("Unexpected Token", fmt.Sprintf("Wanted SET, CASCADE, RESTRICT or NO after ON DELETE/UPDATE, got %s.", cur.Kind.String()),
			cur, diagnostic.Syntax).WithDocURL(docForeignKeyClause)
		p.Diagnostics = append(p.Diagnostics, d)
		p.advance()
		return nil
	}
}

// foreignKeyClauseOnAndMatch parses the repeatable ON {DELETE|UPDATE}
// <action> and MATCH <name> blocks of a foreign-key clause:
// https://www.sqlite.org/syntax/foreign-key-clause.html
func (p *Parser) foreignKeyClauseOnAndMatch(fk *ast.ForeignKeyClause) {
	if p.isKeyword(token.ON) {
		p.advance()
		cur := p.cur()
		isDelete := cur != nil && cur.Kind.Tag == token.TKeyword && cur.Kind.Keyword == token.DELETE
		isUpdate := cur != nil && cur.Kind.Tag == token.TKeyword && cur.Kind.Keyword == token.UPDATE
		if !isDelete && !isUpdate {
			if cur != nil {
				d := p.err("Unexpected Token", fmt.Sprintf("Wanted DELETE or UPDATE, got %s.", cur.Kind.String()),
					cur, diagnostic.Syntax).WithDocURL(docForeignKeyClause)
				p.Diagnostics = append(p.Diagnostics, d)
			}
		}
		p.advance()
		action := fkActionFromDeleteUpdate(p)
		if isDelete {
			fk.OnDelete = action
		} else if isUpdate {
			fk.OnUpdate = action
		}
		p.foreignKeyClauseOnAndMatch(fk)
		return
	}

	if p.isKeyword(token.MATCH) {
		p.advance()
		cur := p.cur()
		if cur != nil && cur.Kind.Tag == token.TKeyword {
			var m ast.ForeignKeyMatch
			switch cur.Kind.Keyword {
			case token.SIMPLE:
				m = ast.FKMatchSimple
			case token.FULL:
				m = ast.FKMatchFull
			case token.PARTIAL:
				m = ast.FKMatchPartial
			default:
				d := p.err("Unexpected Keyword", fmt.Sprintf("Wanted SIMPLE, FULL or PARTIAL after MATCH, got %s.", cur.Kind.String()),
					cur, diagnostic.Syntax).WithDocURL(docForeignKeyClause)
				p.Diagnostics = append(p.Diagnostics, d)
				p.advance()
				p.foreignKeyClauseOnAndMatch(fk)
				return
			}
			fk.MatchType = &m
			p.advance()
		} else if cur != nil {
			d := p.err("Unexpected Token", fmt.Sprintf("Wanted SIMPLE, FULL or PARTIAL after MATCH, got %s.", cur.Kind.String()),
				cur, diagnostic.Syntax).WithDocURL(docForeignKeyClause)
			p.Diagnostics = append(p.Diagnostics, d)
			p.advance()
		}
		p.foreignKeyClauseOnAndMatch(fk)
	}
}

// foreignKeyClause: https://www.sqlite.org/syntax/foreign-key-clause.html
func (p *Parser) foreignKeyClause() *ast.ForeignKeyClause {
	p.consumeKeywordExact(token.REFERENCES)
	fk := &ast.ForeignKeyClause{}
	if name, ok := p.consumeIdent(docForeignKeyClause, "foreign_table"); ok {
		fk.ForeignTable = name
	}

	if p.is(token.TBraceLeft) {
		p.advance()
		for {
			if name, ok := p.consumeIdent(docForeignKeyClause, "column_name"); ok {
				fk.ReferencesColumns = append(fk.ReferencesColumns, name)
			}
			if p.is(token.TComma) {
				p.advance()
				continue
			}
			break
		}
		p.consume(token.TBraceRight)
	}

	p.foreignKeyClauseOnAndMatch(fk)

	notFirst := p.isKeyword(token.NOT)
	if notFirst || p.isKeyword(token.DEFERRABLE) {
		if notFirst {
			p.advance()
			fk.Deferrable = false
		} else {
			fk.Deferrable = true
		}
		p.consumeKeywordExact(token.DEFERRABLE)
		if p.isKeyword(token.INITIALLY) {
			p.advance()
			cur := p.cur()
			valid := cur != nil && cur.Kind.Tag == token.TKeyword && (cur.Kind.Keyword == token.DEFERRED || cur.Kind.Keyword == token.IMMEDIATE)
			if !valid && cur != nil {
				d := p.err("Unexpected Keyword", fmt.Sprintf("Wanted DEFERRED or IMMEDIATE after DEFERRABLE INITIALLY, got %s.", cur.Kind.String()),
					cur, diagnostic.Syntax).WithDocURL(docForeignKeyClause)
				p.Diagnostics = append(p.Diagnostics, d)
			}
			if valid && cur.Kind.Keyword == token.DEFERRED && fk.Deferrable {
				fk.InitiallyDeferred = true
			}
			p.advance()
		}
		if !fk.Deferrable {
			fk.InitiallyDeferred = false
		}
	}

	return fk
}

// columnDef: https://www.sqlite.org/syntax/column-def.html
func (p *Parser) columnDef() *ast.ColumnDef {
	cur := p.cur()
	if cur == nil {
		return nil
	}
	def := &ast.ColumnDef{Tok: *cur}

	name, ok := p.consumeIdent(docColumnDef, "name")
	if !ok {
		return nil
	}
	def.ColumnName = name

	// type-name: https://www.sqlite.org/syntax/type-name.html — a type name
	// is one or more identifiers (e.g. "VARYING CHARACTER") with an optional
	// (N) or (N,M) size suffix; affinity is inferred from the joined name.
	var typeNameParts []string
	for p.is(token.TIdent) {
		typeNameParts = append(typeNameParts, p.cur().Kind.Str)
		p.advance()

		if p.is(token.TBraceLeft) {
			p.advance()
			if p.is(token.TNumber) {
				p.advance()
			} else if cur := p.cur(); cur != nil {
				d := p.err("Unexpected Token", fmt.Sprintf("Wanted a Number after '(', got %s.", cur.Kind.String()),
					cur, diagnostic.Syntax).WithDocURL(docTypeName)
				p.Diagnostics = append(p.Diagnostics, d)
				p.advance()
			}
			if p.is(token.TComma) {
				p.advance()
				if p.is(token.TNumber) {
					p.advance()
				} else if cur := p.cur(); cur != nil {
					d := p.err("Unexpected Token", fmt.Sprintf("Wanted a Number after '(', Number and ',', got %s.", cur.Kind.String()),
						cur, diagnostic.Syntax).WithDocURL(docTypeName)
					p.Diagnostics = append(p.Diagnostics, d)
					p.advance()
				}
			}
			p.consume(token.TBraceRight)
		}
	}
	if len(typeNameParts) > 0 {
		joined := ""
		for i, part := range typeNameParts {
			if i > 0 {
				joined += " "
			}
			joined += part
		}
		sc := ast.StorageClassFromStr(joined)
		def.TypeName = &sc

		if _, exact := ast.StorageClassFromStrStrict(joined); !exact {
			d := p.err("Inferred Column Affinity",
				fmt.Sprintf("'%s' is not one of sqlite's affinity type names; affinity %s was inferred by substring matching.", joined, sc),
				&def.Tok, diagnostic.Quirk).
				WithDocURL("https://www.sqlite.org/datatype3.html#determination_of_column_affinity")
			p.Diagnostics = append(p.Diagnostics, d)
		}
	} else {
		d := p.err("Flexible Typing",
			fmt.Sprintf("column '%s' has no declared type; sqlite allows this and gives it BLOB affinity.", def.ColumnName),
			&def.Tok, diagnostic.Quirk).
			WithDocURL("https://www.sqlite.org/datatype3.html#determination_of_column_affinity")
		p.Diagnostics = append(p.Diagnostics, d)
	}

	// column-constraint: https://www.sqlite.org/syntax/column-constraint.html
	for !p.isEOF() && p.isConstraintStart() {
		if p.isKeyword(token.CONSTRAINT) {
			p.advance()
			p.consumeIdent(docColumnConstraint, "name")
		}

		switch {
		case p.isKeyword(token.PRIMARY):
			p.advance()
			p.consumeKeywordExact(token.KEY)
			var ascDesc *token.Keyword
			if p.isKeyword(token.ASC) || p.isKeyword(token.DESC) {
				kw := p.cur().Kind.Keyword
				ascDesc = &kw
				p.advance()
			}
			onConflict := p.conflictClause()
			autoincrement := false
			if p.isKeyword(token.AUTOINCREMENT) {
				autoincrement = true
				p.advance()
			}
			def.Constraints = append(def.Constraints, ast.ColumnConstraint{
				Tag: ast.CPrimaryKey, AscDesc: ascDesc, OnConflict: onConflict, Autoincrement: autoincrement,
			})

		case p.isKeyword(token.NOT):
			p.advance()
			p.consumeKeywordExact(token.NULL)
			onConflict := p.conflictClause()
			def.Constraints = append(def.Constraints, ast.ColumnConstraint{Tag: ast.CNotNull, OnConflict: onConflict})

		case p.isKeyword(token.UNIQUE):
			p.advance()
			onConflict := p.conflictClause()
			def.Constraints = append(def.Constraints, ast.ColumnConstraint{Tag: ast.CUnique, OnConflict: onConflict})

		case p.isKeyword(token.CHECK):
			p.advance()
			p.consume(token.TBraceLeft)
			e := p.expr()
			p.consume(token.TBraceRight)
			def.Constraints = append(def.Constraints, ast.ColumnConstraint{Tag: ast.CCheck, Expr: e})

		case p.isKeyword(token.DEFAULT):
			p.advance()
			cc := ast.ColumnConstraint{Tag: ast.CDefault}
			if p.is(token.TBraceLeft) {
				p.advance()
				cc.Expr = p.expr()
				p.consume(token.TBraceRight)
			} else {
				cc.Literal = p.literalValue()
			}
			def.Constraints = append(def.Constraints, cc)

		case p.isKeyword(token.COLLATE):
			p.advance()
			name, _ := p.consumeIdent(docColumnConstraint, "collation_name")
			def.Constraints = append(def.Constraints, ast.ColumnConstraint{Tag: ast.CCollate, CollationName: name})

		case p.isKeyword(token.REFERENCES):
			fk := p.foreignKeyClause()
			def.Constraints = append(def.Constraints, ast.ColumnConstraint{Tag: ast.CForeignKey, ForeignKey: fk})

		case p.isKeyword(token.GENERATED) || p.isKeyword(token.AS):
			isGenerated := p.isKeyword(token.GENERATED)
			if isGenerated {
				p.advance()
				p.consumeKeywordExact(token.ALWAYS)
			}
			p.consumeKeywordExact(token.AS)
			p.consume(token.TBraceLeft)
			e := p.expr()
			p.consume(token.TBraceRight)
			var storedVirtual *token.Keyword
			if p.isKeyword(token.STORED) || p.isKeyword(token.VIRTUAL) {
				kw := p.cur().Kind.Keyword
				storedVirtual = &kw
				p.advance()
			}
			tag := ast.CAs
			if isGenerated {
				tag = ast.CGenerated
			}
			def.Constraints = append(def.Constraints, ast.ColumnConstraint{Tag: tag, Expr: e, StoredVirtual: storedVirtual})
		}
	}

	return def
}

func (p *Parser) isConstraintStart() bool {
	cur := p.cur()
	if cur == nil || cur.Kind.Tag != token.TKeyword {
		return false
	}
	switch cur.Kind.Keyword {
	case token.CONSTRAINT, token.PRIMARY, token.NOT, token.UNIQUE, token.CHECK,
		token.DEFAULT, token.COLLATE, token.REFERENCES, token.GENERATED, token.AS:
		return true
	default:
		return false
	}
}
