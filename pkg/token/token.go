// Package token defines the closed token-kind model produced by pkg/lexer
// and consumed by pkg/parser: a fixed tag set plus span carried by every
// token, and the SQLite keyword table with fuzzy lookup.
package token

import "fmt"

// Span locates a token within the source: a zero-based line and the
// half-open byte range [Start, End) within that line; single-character
// punctuation tokens use Start == End by convention. Tokens never span
// multiple lines (string literals terminate at newline by policy).
type Span struct {
	Line  int
	Start int
	End   int
}

// Tag is the discriminant of a Kind.
type Tag int

const (
	TString Tag = iota
	TNumber
	TBlob
	TBoolean
	TIdent
	TKeyword
	TDot
	TAsterisk
	TSemicolon
	TPercent
	TComma
	TEqual
	TQuestion
	TColon
	TAt
	TDollar
	TBraceLeft
	TBraceRight
	TBracketLeft
	TBracketRight
	TParamName
	TParam
	TInstructionExpect
	TEof
)

var tagNames = map[Tag]string{
	TString: "String", TNumber: "Number", TBlob: "Blob", TBoolean: "Boolean",
	TIdent: "Ident", TKeyword: "Keyword", TDot: "Dot", TAsterisk: "Asterisk",
	TSemicolon: "Semicolon", TPercent: "Percent", TComma: "Comma", TEqual: "Equal",
	TQuestion: "Question", TColon: "Colon", TAt: "At", TDollar: "Dollar",
	TBraceLeft: "BraceLeft", TBraceRight: "BraceRight", TBracketLeft: "BracketLeft",
	TBracketRight: "BracketRight", TParamName: "ParamName", TParam: "Param",
	TInstructionExpect: "InstructionExpect", TEof: "Eof",
}

func (t Tag) String() string {
	if n, ok := tagNames[t]; ok {
		return n
	}
	return "Unknown"
}

// Kind is a closed tagged union over the token payload. A struct with a
// discriminant plus the union of possible payload fields is preferred here
// over one concrete type per kind wrapped in an interface: the kind set is
// fixed (~20 variants), the lexer allocates one per input byte run, and
// there is no need for dynamic dispatch over behaviour.
type Kind struct {
	Tag     Tag
	Str     string  // String, Ident, ParamName
	Num     float64 // Number
	Blob    []byte  // Blob
	Bool    bool    // Boolean
	Keyword Keyword // Keyword
	Param   uint64  // Param (bind parameter counter, e.g. ?3)
}

func String(s string) Kind     { return Kind{Tag: TString, Str: s} }
func Number(n float64) Kind    { return Kind{Tag: TNumber, Num: n} }
func Blob(b []byte) Kind       { return Kind{Tag: TBlob, Blob: b} }
func Boolean(b bool) Kind      { return Kind{Tag: TBoolean, Bool: b} }
func Ident(s string) Kind      { return Kind{Tag: TIdent, Str: s} }
func KeywordKind(k Keyword) Kind { return Kind{Tag: TKeyword, Keyword: k} }
func ParamName(s string) Kind  { return Kind{Tag: TParamName, Str: s} }
func Param(n uint64) Kind      { return Kind{Tag: TParam, Param: n} }

func Simple(t Tag) Kind { return Kind{Tag: t} }

func (k Kind) String() string {
	switch k.Tag {
	case TString:
		return fmt.Sprintf("String(%q)", k.Str)
	case TNumber:
		return fmt.Sprintf("Number(%v)", k.Num)
	case TBlob:
		return fmt.Sprintf("Blob(%x)", k.Blob)
	case TBoolean:
		return fmt.Sprintf("Boolean(%v)", k.Bool)
	case TIdent:
		return fmt.Sprintf("Ident(%s)", k.Str)
	case TKeyword:
		return fmt.Sprintf("Keyword(%s)", k.Keyword)
	case TParamName:
		return fmt.Sprintf("ParamName(%s)", k.Str)
	case TParam:
		return fmt.Sprintf("Param(%d)", k.Param)
	default:
		return k.Tag.String()
	}
}

// Is reports whether the kind carries the given tag.
func (k Kind) Is(t Tag) bool { return k.Tag == t }

// IsLiteral reports whether the kind is one of the literal-bearing tags.
func (k Kind) IsLiteral() bool {
	switch k.Tag {
	case TString, TNumber, TBlob, TBoolean:
		return true
	default:
		return false
	}
}

// Token pairs a Kind with the Span it was lexed from.
type Token struct {
	Kind Kind
	Span Span
}

func New(kind Kind, span Span) Token { return Token{Kind: kind, Span: span} }

// Eof builds the synthetic end-of-input token returned once the cursor has
// moved past the token list.
func Eof(line, col int) Token {
	return Token{Kind: Simple(TEof), Span: Span{Line: line, Start: col, End: col}}
}

func (t Token) String() string {
	return fmt.Sprintf("%s@%d:%d-%d", t.Kind, t.Span.Line, t.Span.Start, t.Span.End)
}
