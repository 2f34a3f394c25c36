package lexer

import (
	"testing"

	"github.com/xqlint/sqleibniz/pkg/diagnostic"
	"github.com/xqlint/sqleibniz/pkg/token"
)

func kinds(t []token.Token) []token.Tag {
	out := make([]token.Tag, len(t))
	for i, tok := range t {
		out[i] = tok.Kind.Tag
	}
	return out
}

func tagsEqual(a, b []token.Tag) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLexPass(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Tag
	}{
		{"true", "true", []token.Tag{token.TBoolean}},
		{"true_upper", "TRUE", []token.Tag{token.TBoolean}},
		{"false", "false", []token.Tag{token.TBoolean}},
		{"string", "'text'", []token.Tag{token.TString}},
		{"empty_string", "''", []token.Tag{token.TString}},
		{"string_with_ending", "'str';", []token.Tag{token.TString, token.TSemicolon}},
		{"dot_then_ident", ".d", []token.Tag{token.TDot, token.TIdent}},
		{"star", "*", []token.Tag{token.TAsterisk}},
		{"semicolon", ";", []token.Tag{token.TSemicolon}},
		{"zero", "0", []token.Tag{token.TNumber}},
		{"zero_float", ".0", []token.Tag{token.TNumber}},
		{"zero_hex", "0x0", []token.Tag{token.TNumber}},
		{"hex", "0xABCDEF", []token.Tag{token.TNumber}},
		{"hex_large_x", "0XABCDEF", []token.Tag{token.TNumber}},
		{"blob_empty", "X''", []token.Tag{token.TBlob}},
		{"blob_empty_small", "x''", []token.Tag{token.TBlob}},
		{"blob_filled", "X'12345'", []token.Tag{token.TBlob}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New([]byte(tt.input), "lexer_test")
			toks := l.Run()
			if len(l.Diagnostics) != 0 {
				t.Fatalf("unexpected diagnostics: %+v", l.Diagnostics)
			}
			if !tagsEqual(kinds(toks), tt.want) {
				t.Fatalf("got %v, want %v", kinds(toks), tt.want)
			}
		})
	}
}

func TestLexPassValues(t *testing.T) {
	l := New([]byte("1_000.12_000e+3_5"), "lexer_test")
	toks := l.Run()
	if len(toks) != 1 || toks[0].Kind.Num != 1.00012e38 {
		t.Fatalf("got %+v", toks)
	}

	l2 := New([]byte("0xABCDEF"), "lexer_test")
	toks2 := l2.Run()
	if len(toks2) != 1 || toks2[0].Kind.Num != float64(0xABCDEF) {
		t.Fatalf("got %+v", toks2)
	}

	l3 := New([]byte("X'1234567'"), "lexer_test")
	toks3 := l3.Run()
	if len(toks3) != 1 || string(toks3[0].Kind.Blob) != "1234567" {
		t.Fatalf("got %+v", toks3)
	}
}

func TestLexFail(t *testing.T) {
	tests := []struct {
		name string
		in   string
		rule diagnostic.Rule
	}{
		{"unterminated_string_eof", "'", diagnostic.UnterminatedString},
		{"bad_hex", "0x", diagnostic.InvalidNumericLiteral},
		{"bad_hex2", "0X", diagnostic.InvalidNumericLiteral},
		{"bad_float_with_e", ".e", diagnostic.InvalidNumericLiteral},
		{"blob_no_quotes", "X", diagnostic.InvalidBlob},
		{"blob_unterminated", "X'", diagnostic.InvalidBlob},
		{"blob_bad_hex", "X'1281928FFFY'", diagnostic.InvalidBlob},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New([]byte(tt.in), "lexer_test")
			toks := l.Run()
			if len(toks) != 0 {
				t.Fatalf("expected no tokens, got %+v", toks)
			}
			if len(l.Diagnostics) == 0 {
				t.Fatalf("expected diagnostics, got none")
			}
			if l.Diagnostics[0].Rule != tt.rule {
				t.Fatalf("got rule %v, want %v", l.Diagnostics[0].Rule, tt.rule)
			}
		})
	}
}

func TestLexEmptyInput(t *testing.T) {
	l := New([]byte(""), "lexer_test")
	toks := l.Run()
	if toks != nil {
		t.Fatalf("expected nil tokens, got %+v", toks)
	}
	if len(l.Diagnostics) != 1 || l.Diagnostics[0].Rule != diagnostic.NoContent {
		t.Fatalf("expected NoContent, got %+v", l.Diagnostics)
	}
}

func TestLexWhitespaceOnlyIsNoStatements(t *testing.T) {
	l := New([]byte(" \t\n\r"), "lexer_test")
	toks := l.Run()
	if toks != nil {
		t.Fatalf("expected nil tokens, got %+v", toks)
	}
	if len(l.Diagnostics) != 1 || l.Diagnostics[0].Rule != diagnostic.NoStatements {
		t.Fatalf("expected NoStatements, got %+v", l.Diagnostics)
	}
}

func TestDirectiveSuppression(t *testing.T) {
	l := New([]byte("-- @sqleibniz::expect\nVACUUM 25;\n"), "lexer_test")
	toks := l.Run()
	if len(l.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", l.Diagnostics)
	}
	if len(toks) == 0 || toks[0].Kind.Tag != token.TInstructionExpect {
		t.Fatalf("expected leading InstructionExpect token, got %+v", toks)
	}
}

func TestBadSqleibnizInstruction(t *testing.T) {
	l := New([]byte("-- @sqleibniz::bogus\n"), "lexer_test")
	l.Run()
	if len(l.Diagnostics) != 1 || l.Diagnostics[0].Rule != diagnostic.BadSqleibnizInstruction {
		t.Fatalf("expected BadSqleibnizInstruction, got %+v", l.Diagnostics)
	}
}

// Checks the total-lexing property on a fixed set of malformed inputs:
// each must terminate and never panic.
func TestTotalLexingNeverPanics(t *testing.T) {
	inputs := []string{
		"", " ", "\n\n\n", "????", "'''''", "X'''", "0x0x0x", "/*",
		"--", "-@", string([]byte{0x00, 0x01, 0xff}), "SELECT",
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("input %q panicked: %v", in, r)
				}
			}()
			l := New([]byte(in), "fuzz")
			l.Run()
		}()
	}
}
