package parser

import (
	"strings"
	"testing"

	"github.com/xqlint/sqleibniz/pkg/ast"
	"github.com/xqlint/sqleibniz/pkg/diagnostic"
	"github.com/xqlint/sqleibniz/pkg/lexer"
)

func parse(t *testing.T, src string) ([]ast.Node, []diagnostic.Diagnostic) {
	t.Helper()
	l := lexer.New([]byte(src), "parser_test")
	toks := l.Run()
	if len(l.Diagnostics) != 0 {
		t.Fatalf("unexpected lexer diagnostics for %q: %+v", src, l.Diagnostics)
	}
	return ParseAll(toks, "parser_test")
}

func TestParseSimpleStatements(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		wantType string
	}{
		{"begin", "BEGIN;", "Begin"},
		{"begin_deferred", "BEGIN DEFERRED TRANSACTION;", "Begin"},
		{"commit", "COMMIT;", "Commit"},
		{"end", "END;", "Commit"},
		{"rollback", "ROLLBACK;", "Rollback"},
		{"rollback_to", "ROLLBACK TO SAVEPOINT foo;", "Rollback"},
		{"savepoint", "SAVEPOINT foo;", "Savepoint"},
		{"release", "RELEASE foo;", "Release"},
		{"release_savepoint", "RELEASE SAVEPOINT foo;", "Release"},
		{"detach", "DETACH bar;", "Detach"},
		{"detach_database", "DETACH DATABASE bar;", "Detach"},
		{"analyze_bare", "ANALYZE;", "Analyze"},
		{"analyze_table", "ANALYZE main.tbl;", "Analyze"},
		{"reindex_bare", "REINDEX;", "Reindex"},
		{"vacuum_bare", "VACUUM;", "Vacuum"},
		{"vacuum_into", "VACUUM INTO 'out.db';", "Vacuum"},
		{"drop_table", "DROP TABLE foo;", "Drop"},
		{"drop_table_if_exists", "DROP TABLE IF EXISTS foo;", "Drop"},
		{"explain", "EXPLAIN VACUUM;", "Explain"},
		{"explain_query_plan", "EXPLAIN QUERY PLAN VACUUM;", "Explain"},
		{"pragma_query", "PRAGMA foreign_keys;", "Pragma"},
		{"pragma_assign", "PRAGMA foreign_keys = ON;", "Pragma"},
		{"pragma_call", "PRAGMA foreign_keys(ON);", "Pragma"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, diags := parse(t, tt.sql)
			if len(diags) != 0 {
				t.Fatalf("unexpected diagnostics: %+v", diags)
			}
			if len(nodes) != 1 {
				t.Fatalf("expected 1 node, got %d", len(nodes))
			}
			if nodes[0].Name() != tt.wantType {
				t.Fatalf("got %s, want %s", nodes[0].Name(), tt.wantType)
			}
		})
	}
}

func TestParseAttach(t *testing.T) {
	nodes, diags := parse(t, "ATTACH 'file.db' AS other;")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}
	a, ok := nodes[0].(*ast.Attach)
	if !ok {
		t.Fatalf("expected *ast.Attach, got %T", nodes[0])
	}
	if a.SchemaName != "other" {
		t.Fatalf("got schema name %q", a.SchemaName)
	}
}

func TestParseAlterRenameTable(t *testing.T) {
	nodes, diags := parse(t, "ALTER TABLE foo RENAME TO bar;")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	a := nodes[0].(*ast.Alter)
	if a.RenameTo == nil || *a.RenameTo != "bar" {
		t.Fatalf("got %+v", a)
	}
}

func TestParseAlterAddColumn(t *testing.T) {
	nodes, diags := parse(t, "ALTER TABLE foo ADD COLUMN age INT NOT NULL;")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	a := nodes[0].(*ast.Alter)
	if a.AddColumn == nil || a.AddColumn.ColumnName != "age" {
		t.Fatalf("got %+v", a.AddColumn)
	}
	if a.AddColumn.TypeName == nil || *a.AddColumn.TypeName != ast.Integer {
		t.Fatalf("got type name %+v", a.AddColumn.TypeName)
	}
	if len(a.AddColumn.Constraints) != 1 || a.AddColumn.Constraints[0].Tag != ast.CNotNull {
		t.Fatalf("got constraints %+v", a.AddColumn.Constraints)
	}
}

func TestParseAlterDropColumn(t *testing.T) {
	nodes, diags := parse(t, "ALTER TABLE foo DROP COLUMN age;")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	a := nodes[0].(*ast.Alter)
	if a.DropColumn == nil || *a.DropColumn != "age" {
		t.Fatalf("got %+v", a.DropColumn)
	}
}

// Grounded on the original's ON DELETE SET NULL foreign-key scenario.
func TestParseForeignKeyOnDeleteSetNull(t *testing.T) {
	nodes, diags := parse(t, "ALTER TABLE foo ADD COLUMN owner_id INT REFERENCES users(id) ON DELETE SET NULL;")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	a := nodes[0].(*ast.Alter)
	if len(a.AddColumn.Constraints) != 1 || a.AddColumn.Constraints[0].Tag != ast.CForeignKey {
		t.Fatalf("got constraints %+v", a.AddColumn.Constraints)
	}
	fk := a.AddColumn.Constraints[0].ForeignKey
	if fk.ForeignTable != "users" || len(fk.ReferencesColumns) != 1 || fk.ReferencesColumns[0] != "id" {
		t.Fatalf("got %+v", fk)
	}
	if fk.OnDelete == nil || *fk.OnDelete != ast.FKSetNull {
		t.Fatalf("got on_delete %+v", fk.OnDelete)
	}
}

func TestParseColumnAffinityQuirk(t *testing.T) {
	nodes, diags := parse(t, "ALTER TABLE foo ADD COLUMN bal WEIRDTYPE;")
	if len(diags) != 1 || diags[0].Rule != diagnostic.Quirk {
		t.Fatalf("expected one Quirk diagnostic, got %+v", diags)
	}
	a := nodes[0].(*ast.Alter)
	if a.AddColumn.TypeName == nil || *a.AddColumn.TypeName != ast.Integer {
		t.Fatalf("got type name %+v", a.AddColumn.TypeName)
	}
}

func TestParseColumnAffinityExactNoQuirk(t *testing.T) {
	_, diags := parse(t, "ALTER TABLE foo ADD COLUMN bal INTEGER;")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
}

func TestParseColumnNoTypeQuirk(t *testing.T) {
	nodes, diags := parse(t, "ALTER TABLE foo ADD COLUMN bal;")
	if len(diags) != 1 || diags[0].Rule != diagnostic.Quirk {
		t.Fatalf("expected one Quirk diagnostic, got %+v", diags)
	}
	a := nodes[0].(*ast.Alter)
	if a.AddColumn.TypeName != nil {
		t.Fatalf("expected no type name, got %+v", a.AddColumn.TypeName)
	}
}

func TestParsePragmaMalformedValueRecovers(t *testing.T) {
	nodes, diags := parse(t, "PRAGMA foo = ; VACUUM;")
	if len(diags) != 1 || diags[0].Rule != diagnostic.Syntax {
		t.Fatalf("expected one Syntax diagnostic, got %+v", diags)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected both statements to parse, got %d: %+v", len(nodes), nodes)
	}
	pragma := nodes[0].(*ast.Pragma)
	if pragma.Value != nil {
		t.Fatalf("expected no pragma value, got %+v", pragma.Value)
	}
	if nodes[1].Name() != "Vacuum" {
		t.Fatalf("expected second statement to be Vacuum, got %s", nodes[1].Name())
	}
}

func TestParseSchemaTableAcceptsStringLiterals(t *testing.T) {
	nodes, diags := parse(t, "DROP TABLE 'main'.'foo';")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	d := nodes[0].(*ast.Drop)
	if !d.Argument.HasSchema || d.Argument.Schema != "main" || d.Argument.Table != "foo" {
		t.Fatalf("got %+v", d.Argument)
	}
}

func TestParseForeignKeyMatchClosedSet(t *testing.T) {
	nodes, diags := parse(t, "ALTER TABLE foo ADD COLUMN owner_id INT REFERENCES users(id) MATCH PARTIAL;")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	fk := nodes[0].(*ast.Alter).AddColumn.Constraints[0].ForeignKey
	if fk.MatchType == nil || *fk.MatchType != ast.FKMatchPartial {
		t.Fatalf("got %+v", fk.MatchType)
	}
}

func TestParseMissingSemicolonIsRecoverable(t *testing.T) {
	nodes, diags := parse(t, "VACUUM")
	if len(diags) != 1 || diags[0].Rule != diagnostic.Semicolon {
		t.Fatalf("expected one Semicolon diagnostic, got %+v", diags)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node despite missing semicolon, got %d", len(nodes))
	}
}

func TestParseBeginDoubledModifierRecovers(t *testing.T) {
	nodes, diags := parse(t, "BEGIN DEFERRED IMMEDIATE;")
	if len(diags) == 0 {
		t.Fatalf("expected a diagnostic for doubled transaction modifier")
	}
	if len(nodes) != 1 || nodes[0].Name() != "Begin" {
		t.Fatalf("expected the Begin statement to be recovered, got %+v", nodes)
	}
}

func TestParseUnknownKeywordSuggestsClosestMatch(t *testing.T) {
	nodes, diags := parse(t, "SELCT 1;")
	if len(nodes) != 0 {
		t.Fatalf("expected no nodes, got %+v", nodes)
	}
	if len(diags) != 1 || diags[0].Rule != diagnostic.UnknownKeyword {
		t.Fatalf("expected one UnknownKeyword diagnostic, got %+v", diags)
	}
	if !strings.Contains(diags[0].Note, "SELECT") {
		t.Fatalf("expected the note to suggest SELECT, got %q", diags[0].Note)
	}
}

func TestParseBindParameterForms(t *testing.T) {
	nodes, diags := parse(t, "ATTACH ?1 AS other;")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	a := nodes[0].(*ast.Attach)
	if a.Expr.Bind == nil || a.Expr.Bind.Counter == nil || *a.Expr.Bind.Counter != 1 {
		t.Fatalf("got %+v", a.Expr.Bind)
	}
}

func TestParseBindParameterRequiresIdent(t *testing.T) {
	_, diags := parse(t, "ATTACH :foo AS other;")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}

	_, diags2 := parse(t, "ATTACH : AS other;")
	if len(diags2) == 0 {
		t.Fatalf("expected a diagnostic for bind parameter missing identifier")
	}
}

// Total parsing: malformed input must never panic.
func TestTotalParsingNeverPanics(t *testing.T) {
	inputs := []string{
		"", ";", ";;;", "ALTER", "ALTER TABLE", "DROP", "DROP BOGUS foo;",
		"BEGIN BEGIN BEGIN;", "PRAGMA;", "EXPLAIN;", "ATTACH;",
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("input %q panicked: %v", in, r)
				}
			}()
			l := lexer.New([]byte(in), "fuzz")
			toks := l.Run()
			ParseAll(toks, "fuzz")
		}()
	}
}
