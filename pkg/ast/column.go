package ast

import (
	"strings"

	"github.com/xqlint/sqleibniz/pkg/token"
)

// StorageClass is SQLite's column type affinity, see
// https://sqlite.org/datatype3.html#storage_classes_and_datatypes.
type StorageClass int

const (
	Null StorageClass = iota
	Integer
	Real
	Text
	Blob
)

func (s StorageClass) String() string {
	switch s {
	case Null:
		return "Null"
	case Integer:
		return "Integer"
	case Real:
		return "Real"
	case Text:
		return "Text"
	case Blob:
		return "Blob"
	default:
		return "Unknown"
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// StorageClassFromStr infers the column affinity leniently by substring
// matching, loosely following
// https://sqlite.org/datatype3.html#determination_of_column_affinity.
// Unlike SQLite it checks VARCHAR/CLOB/TEXT before INT, and it never fails:
// an unrecognized type name falls back to Integer.
func StorageClassFromStr(s string) StorageClass {
	switch {
	case containsAny(s, "VARCHAR", "CLOB", "TEXT"):
		return Text
	case s == "" || strings.Contains(s, "BLOB"):
		return Blob
	case containsAny(s, "REAL", "FLOA", "DOUB"):
		return Real
	case strings.Contains(s, "INT"):
		return Integer
	default:
		return Integer
	}
}

// StorageClassFromStrStrict recognizes the exact spellings TEXT, BLOB, REAL,
// INT and INTEGER, plus any name containing VARCHAR (as Text); a mismatch
// against the lenient
// StorageClassFromStr result is what the parser flags as a Quirk diagnostic.
func StorageClassFromStrStrict(s string) (StorageClass, bool) {
	switch s {
	case "TEXT":
		return Text, true
	case "BLOB":
		return Blob, true
	case "REAL":
		return Real, true
	case "INT", "INTEGER":
		return Integer, true
	default:
		if strings.Contains(s, "VARCHAR") {
			return Text, true
		}
		return Null, false
	}
}

// ForeignKeyAction is the action clause of ON {DELETE|UPDATE}, see
// https://www.sqlite.org/syntax/foreign-key-clause.html.
type ForeignKeyAction int

const (
	FKCascade ForeignKeyAction = iota
	FKRestrict
	FKNoAction
	FKSetNull
	FKSetDefault
)

func (a ForeignKeyAction) String() string {
	switch a {
	case FKCascade:
		return "Cascade"
	case FKRestrict:
		return "Restrict"
	case FKNoAction:
		return "NoAction"
	case FKSetNull:
		return "SetNull"
	case FKSetDefault:
		return "SetDefault"
	default:
		return "Unknown"
	}
}

// ForeignKeyMatch is the MATCH clause. SQLite parses it but enforces
// everything as if MATCH SIMPLE were given, see
// https://sqlite.org/foreignkeys.html#fk_unsupported — the set is closed to
// the three spellings SQLite's grammar recognizes; anything else is a
// Syntax diagnostic rather than an arbitrary accepted identifier.
type ForeignKeyMatch int

const (
	FKMatchSimple ForeignKeyMatch = iota
	FKMatchFull
	FKMatchPartial
)

func (m ForeignKeyMatch) String() string {
	switch m {
	case FKMatchSimple:
		return "Simple"
	case FKMatchFull:
		return "Full"
	case FKMatchPartial:
		return "Partial"
	default:
		return "Unknown"
	}
}

// ForeignKeyClause is https://www.sqlite.org/syntax/foreign-key-clause.html.
type ForeignKeyClause struct {
	ForeignTable      string
	ReferencesColumns []string
	OnDelete          *ForeignKeyAction
	OnUpdate          *ForeignKeyAction
	MatchType         *ForeignKeyMatch
	Deferrable        bool
	InitiallyDeferred bool
}

func projectFKAction(a *ForeignKeyAction) any {
	if a == nil {
		return nil
	}
	return a.String()
}

func projectFKMatch(m *ForeignKeyMatch) any {
	if m == nil {
		return nil
	}
	return m.String()
}

func (f ForeignKeyClause) Project() any {
	return map[string]any{
		"foreign_table":      f.ForeignTable,
		"references_columns": f.ReferencesColumns,
		"on_delete":          projectFKAction(f.OnDelete),
		"on_update":          projectFKAction(f.OnUpdate),
		"match_type":         projectFKMatch(f.MatchType),
		"deferrable":         f.Deferrable,
		"initially_deferred": f.InitiallyDeferred,
	}
}

// ConstraintTag is the discriminant of a ColumnConstraint, see
// https://www.sqlite.org/syntax/column-constraint.html.
type ConstraintTag int

const (
	CPrimaryKey ConstraintTag = iota
	CNotNull
	CUnique
	CCheck
	CDefault
	CCollate
	CGenerated
	CAs
	CForeignKey
)

func (c ConstraintTag) String() string {
	switch c {
	case CPrimaryKey:
		return "primary_key"
	case CNotNull:
		return "not_null"
	case CUnique:
		return "unique"
	case CCheck:
		return "check"
	case CDefault:
		return "default"
	case CCollate:
		return "collate"
	case CGenerated:
		return "generated"
	case CAs:
		return "as"
	case CForeignKey:
		return "foreign_key"
	default:
		return "unknown"
	}
}

// ColumnConstraint is a tagged union over the nine shapes
// https://www.sqlite.org/syntax/column-constraint.html allows; a single
// struct carrying every variant's payload fields is preferred here for the
// same reason as token.Kind — the variant set is closed and small.
type ColumnConstraint struct {
	Tag ConstraintTag

	// CPrimaryKey
	AscDesc       *token.Keyword
	OnConflict    *token.Keyword
	Autoincrement bool

	// CCheck, CDefault (expr form), CGenerated, CAs
	Expr *Expr

	// CDefault (literal form)
	Literal *Literal

	// CCollate
	CollationName string

	// CGenerated, CAs
	StoredVirtual *token.Keyword

	// CForeignKey
	ForeignKey *ForeignKeyClause
}

func (c ColumnConstraint) Project() any {
	switch c.Tag {
	case CPrimaryKey:
		return map[string]any{"primary_key": map[string]any{
			"asc_desc":      projectKeyword(c.AscDesc),
			"on_conflict":   projectKeyword(c.OnConflict),
			"autoincrement": c.Autoincrement,
		}}
	case CNotNull:
		return map[string]any{"not_null": map[string]any{"on_conflict": projectKeyword(c.OnConflict)}}
	case CUnique:
		return map[string]any{"unique": map[string]any{"on_conflict": projectKeyword(c.OnConflict)}}
	case CCheck:
		return map[string]any{"check": projectNode(c.Expr)}
	case CDefault:
		var lit any
		if c.Literal != nil {
			lit = c.Literal.Project()
		}
		return map[string]any{"default": map[string]any{"expr": projectNode(c.Expr), "literal": lit}}
	case CCollate:
		return map[string]any{"collate": c.CollationName}
	case CGenerated:
		return map[string]any{"generated": map[string]any{
			"expr": projectNode(c.Expr), "stored_virtual": projectKeyword(c.StoredVirtual),
		}}
	case CAs:
		return map[string]any{"as": map[string]any{
			"expr": projectNode(c.Expr), "stored_virtual": projectKeyword(c.StoredVirtual),
		}}
	case CForeignKey:
		if c.ForeignKey == nil {
			return map[string]any{"foreign_key": nil}
		}
		return map[string]any{"foreign_key": c.ForeignKey.Project()}
	default:
		return nil
	}
}

// ColumnDef is https://www.sqlite.org/syntax/column-def.html.
type ColumnDef struct {
	Tok         token.Token
	ColumnName  string
	TypeName    *StorageClass
	Constraints []ColumnConstraint
}

func (c *ColumnDef) Span() token.Span { return c.Tok.Span }
func (c *ColumnDef) Name() string     { return "ColumnDef" }
func (c *ColumnDef) Doc() string {
	return "Column definition, see: https://www.sqlite.org/syntax/column-def.html"
}
func (c *ColumnDef) Project() any {
	var typeName any
	if c.TypeName != nil {
		typeName = c.TypeName.String()
	}
	constraints := make([]any, len(c.Constraints))
	for i, cc := range c.Constraints {
		constraints[i] = cc.Project()
	}
	return map[string]any{
		"type":        "ColumnDef",
		"name":        c.ColumnName,
		"type_name":   typeName,
		"constraints": constraints,
	}
}
