// Package ast defines the statement and expression node set recognized by
// pkg/parser: a closed set of concrete Go structs, each implementing Node,
// rather than a heap-allocated polymorphic tree — the node set is fixed
// and known at compile time (see the doc comment on token.Kind for the
// same rationale applied to tokens).
package ast

import "github.com/xqlint/sqleibniz/pkg/token"

// Node is implemented by every statement and expression node. Span is
// carried by the node's primary token; Name is a stable hover-friendly
// identifier; Doc is the SQLite documentation rationale; Project returns a
// JSON-serializable tree with a "type" discriminator inserted.
type Node interface {
	Span() token.Span
	Name() string
	Doc() string
	Project() any
}

// SchemaTable is schema.table or a bare table name.
type SchemaTable struct {
	HasSchema bool
	Schema    string
	Table     string
}

func Table(name string) SchemaTable { return SchemaTable{Table: name} }

func SchemaAndTable(schema, table string) SchemaTable {
	return SchemaTable{HasSchema: true, Schema: schema, Table: table}
}

func (s SchemaTable) Project() any {
	if s.HasSchema {
		return map[string]any{"schema_and_table": map[string]any{"schema": s.Schema, "table": s.Table}}
	}
	return map[string]any{"table": s.Table}
}

func projectSchemaTable(s *SchemaTable) any {
	if s == nil {
		return nil
	}
	return s.Project()
}

func projectNode(n Node) any {
	if n == nil {
		return nil
	}
	return n.Project()
}

func projectStr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func projectKeyword(k *token.Keyword) any {
	if k == nil {
		return nil
	}
	return k.String()
}

// --- Literal / expression nodes -------------------------------------------------

// Literal wraps a single literal token (String, Number, Blob, Boolean).
type Literal struct {
	Tok token.Token
}

func (l *Literal) Span() token.Span { return l.Tok.Span }
func (l *Literal) Name() string     { return "Literal" }
func (l *Literal) Doc() string {
	return "holds all literal types, such as strings, numbers, etc."
}
func (l *Literal) Project() any {
	return map[string]any{"type": "Literal", "value": l.Tok.Kind.String()}
}

// BindParameter is a placeholder filled in by the API caller at execution
// time: "?", "?N", ":name", "@name", "$name".
type BindParameter struct {
	Tok     token.Token
	Counter *uint64
	Name    *string
}

func (b *BindParameter) Span() token.Span { return b.Tok.Span }
func (b *BindParameter) Name() string     { return "BindParameter" }
func (b *BindParameter) Doc() string {
	return "Bind parameter: https://www.sqlite.org/lang_expr.html#parameters"
}
func (b *BindParameter) Project() any {
	var counter any
	if b.Counter != nil {
		counter = *b.Counter
	}
	return map[string]any{
		"type":    "BindParameter",
		"counter": counter,
		"name":    projectStr(b.Name),
	}
}

// Expr is the parser's minimal expression form: a literal, a bind
// parameter, or a [schema.][table.]column reference. At most one of the
// three payload groups is populated.
type Expr struct {
	Tok     token.Token
	Literal *token.Token
	Bind    *BindParameter
	Schema  *string
	Table   *string
	Column  *string
}

func (e *Expr) Span() token.Span { return e.Tok.Span }
func (e *Expr) Name() string     { return "Expr" }
func (e *Expr) Doc() string {
	return "Expr expression, see: https://www.sqlite.org/lang_expr.html#varparam"
}
func (e *Expr) Project() any {
	var lit any
	if e.Literal != nil {
		lit = e.Literal.Kind.String()
	}
	var bind any
	if e.Bind != nil {
		bind = e.Bind.Project()
	}
	return map[string]any{
		"type":    "Expr",
		"literal": lit,
		"bind":    bind,
		"schema":  projectStr(e.Schema),
		"table":   projectStr(e.Table),
		"column":  projectStr(e.Column),
	}
}

// --- Statement nodes -------------------------------------------------------

// Explain wraps a child statement, optionally as EXPLAIN QUERY PLAN.
type Explain struct {
	Tok   token.Token
	Child Node
}

func (e *Explain) Span() token.Span { return e.Tok.Span }
func (e *Explain) Name() string     { return "Explain" }
func (e *Explain) Doc() string      { return "Explain stmt, see: https://www.sqlite.org/lang_explain.html" }
func (e *Explain) Project() any {
	return map[string]any{"type": "Explain", "child": projectNode(e.Child)}
}

// Vacuum is VACUUM [schema] [INTO filename].
type Vacuum struct {
	Tok        token.Token
	SchemaName *token.Token
	Filename   *token.Token
}

func (v *Vacuum) Span() token.Span { return v.Tok.Span }
func (v *Vacuum) Name() string     { return "Vacuum" }
func (v *Vacuum) Doc() string      { return "Vacuum stmt, see: https://www.sqlite.org/lang_vacuum.html" }
func (v *Vacuum) Project() any {
	var schema, filename any
	if v.SchemaName != nil {
		schema = v.SchemaName.Kind.Str
	}
	if v.Filename != nil {
		filename = v.Filename.Kind.Str
	}
	return map[string]any{"type": "Vacuum", "schema_name": schema, "filename": filename}
}

// Begin is BEGIN [DEFERRED|IMMEDIATE|EXCLUSIVE] [TRANSACTION].
type Begin struct {
	Tok             token.Token
	TransactionKind *token.Keyword
}

func (b *Begin) Span() token.Span { return b.Tok.Span }
func (b *Begin) Name() string     { return "Begin" }
func (b *Begin) Doc() string {
	return "Begin stmt, see: https://www.sqlite.org/syntax/begin-stmt.html"
}
func (b *Begin) Project() any {
	return map[string]any{"type": "Begin", "transaction_kind": projectKeyword(b.TransactionKind)}
}

// Commit is COMMIT [TRANSACTION] / END.
type Commit struct{ Tok token.Token }

func (c *Commit) Span() token.Span { return c.Tok.Span }
func (c *Commit) Name() string     { return "Commit" }
func (c *Commit) Doc() string {
	return "Commit stmt, see: https://www.sqlite.org/syntax/commit-stmt.html"
}
func (c *Commit) Project() any { return map[string]any{"type": "Commit"} }

// Rollback is ROLLBACK [TRANSACTION] [TO [SAVEPOINT] name].
type Rollback struct {
	Tok       token.Token
	SavePoint *string
}

func (r *Rollback) Span() token.Span { return r.Tok.Span }
func (r *Rollback) Name() string     { return "Rollback" }
func (r *Rollback) Doc() string {
	return "Rollback stmt, see: https://www.sqlite.org/syntax/rollback-stmt.html"
}
func (r *Rollback) Project() any {
	return map[string]any{"type": "Rollback", "save_point": projectStr(r.SavePoint)}
}

// Savepoint is SAVEPOINT name.
type Savepoint struct {
	Tok           token.Token
	SavepointName string
}

func (s *Savepoint) Span() token.Span { return s.Tok.Span }
func (s *Savepoint) Name() string     { return "Savepoint" }
func (s *Savepoint) Doc() string {
	return "Savepoint stmt, see: https://www.sqlite.org/lang_savepoint.html"
}
func (s *Savepoint) Project() any {
	return map[string]any{"type": "Savepoint", "savepoint_name": s.SavepointName}
}

// Release is RELEASE [SAVEPOINT] name.
type Release struct {
	Tok           token.Token
	SavepointName string
}

func (r *Release) Span() token.Span { return r.Tok.Span }
func (r *Release) Name() string     { return "Release" }
func (r *Release) Doc() string {
	return "Release stmt, see: https://www.sqlite.org/lang_savepoint.html"
}
func (r *Release) Project() any {
	return map[string]any{"type": "Release", "savepoint_name": r.SavepointName}
}

// Detach is DETACH [DATABASE] schema_name.
type Detach struct {
	Tok        token.Token
	SchemaName string
}

func (d *Detach) Span() token.Span { return d.Tok.Span }
func (d *Detach) Name() string     { return "Detach" }
func (d *Detach) Doc() string {
	return "Detach stmt, see: https://www.sqlite.org/lang_detach.html"
}
func (d *Detach) Project() any {
	return map[string]any{"type": "Detach", "schema_name": d.SchemaName}
}

// Attach is ATTACH [DATABASE] expr AS schema_name.
type Attach struct {
	Tok        token.Token
	SchemaName string
	Expr       Expr
}

func (a *Attach) Span() token.Span { return a.Tok.Span }
func (a *Attach) Name() string     { return "Attach" }
func (a *Attach) Doc() string      { return "Attach stmt, see: https://www.sqlite.org/lang_attach.html" }
func (a *Attach) Project() any {
	return map[string]any{"type": "Attach", "schema_name": a.SchemaName, "expr": a.Expr.Project()}
}

// Analyze is ANALYZE [schema_table].
type Analyze struct {
	Tok    token.Token
	Target *SchemaTable
}

func (a *Analyze) Span() token.Span { return a.Tok.Span }
func (a *Analyze) Name() string     { return "Analyze" }
func (a *Analyze) Doc() string {
	return "Analyze stmt, see: https://www.sqlite.org/lang_analyze.html"
}
func (a *Analyze) Project() any {
	return map[string]any{"type": "Analyze", "target": projectSchemaTable(a.Target)}
}

// Reindex is REINDEX [schema_table].
type Reindex struct {
	Tok    token.Token
	Target *SchemaTable
}

func (r *Reindex) Span() token.Span { return r.Tok.Span }
func (r *Reindex) Name() string     { return "Reindex" }
func (r *Reindex) Doc() string {
	return "Reindex stmt, see: https://www.sqlite.org/lang_reindex.html"
}
func (r *Reindex) Project() any {
	return map[string]any{"type": "Reindex", "target": projectSchemaTable(r.Target)}
}

// Drop is DROP {INDEX|TABLE|TRIGGER|VIEW} [IF EXISTS] schema_table.
type Drop struct {
	Tok        token.Token
	IfExists   bool
	ObjectKind token.Keyword
	Argument   SchemaTable
}

func (d *Drop) Span() token.Span { return d.Tok.Span }
func (d *Drop) Name() string     { return "Drop" }
func (d *Drop) Doc() string {
	return "Drop stmt, see: https://www.sqlite.org/lang_dropindex.html, https://www.sqlite.org/lang_droptable.html, https://www.sqlite.org/lang_droptrigger.html and https://www.sqlite.org/lang_dropview.html"
}
func (d *Drop) Project() any {
	return map[string]any{
		"type":      "Drop",
		"if_exists": d.IfExists,
		"ttype":     d.ObjectKind.String(),
		"argument":  d.Argument.Project(),
	}
}

// Alter is ALTER TABLE schema_table (RENAME [TO]|ADD [COLUMN]|DROP [COLUMN]).
// On a successful parse exactly one of RenameTo, the RenameColumnTarget and
// NewColumnName pair, AddColumn or DropColumn is populated.
type Alter struct {
	Tok                token.Token
	Target             SchemaTable
	RenameTo           *string
	RenameColumnTarget *string
	NewColumnName      *string
	AddColumn          *ColumnDef
	DropColumn         *string
}

func (a *Alter) Span() token.Span { return a.Tok.Span }
func (a *Alter) Name() string     { return "Alter" }
func (a *Alter) Doc() string {
	return "Alter stmt, see: https://www.sqlite.org/lang_altertable.html. " +
		"SQLite supports a limited subset of ALTER TABLE: a table can be renamed; a column can be " +
		"renamed; a column can be added to it; or a column can be dropped from it."
}
func (a *Alter) Project() any {
	var addColumn any
	if a.AddColumn != nil {
		addColumn = a.AddColumn.Project()
	}
	return map[string]any{
		"type":                 "Alter",
		"target":               a.Target.Project(),
		"rename_to":            projectStr(a.RenameTo),
		"rename_column_target": projectStr(a.RenameColumnTarget),
		"new_column_name":      projectStr(a.NewColumnName),
		"add_column":           addColumn,
		"drop_column":          projectStr(a.DropColumn),
	}
}

// PragmaInvocation tags the three possible pragma forms.
type PragmaInvocation int

const (
	PragmaQuery PragmaInvocation = iota
	PragmaAssign
	PragmaCall
)

func (p PragmaInvocation) String() string {
	switch p {
	case PragmaAssign:
		return "assign"
	case PragmaCall:
		return "call"
	default:
		return "query"
	}
}

// Pragma is PRAGMA schema_table [= value | (value)].
type Pragma struct {
	Tok        token.Token
	PragmaName SchemaTable
	Invocation PragmaInvocation
	Value      *token.Token
}

func (p *Pragma) Span() token.Span { return p.Tok.Span }
func (p *Pragma) Name() string     { return "Pragma" }
func (p *Pragma) Doc() string {
	return "Pragma stmt, see: https://www.sqlite.org/pragma.html"
}
func (p *Pragma) Project() any {
	var value any
	if p.Value != nil {
		value = p.Value.Kind.String()
	}
	return map[string]any{
		"type":       "Pragma",
		"name":       p.PragmaName.Project(),
		"invocation": map[string]any{p.Invocation.String(): value},
	}
}
