// Package lexer converts SQLite source bytes into a token.Token list and a
// diagnostic.Diagnostic list in a single pass with one-byte lookahead.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xqlint/sqleibniz/pkg/diagnostic"
	"github.com/xqlint/sqleibniz/pkg/token"
)

const (
	docURLLiteral = "https://www.sqlite.org/lang_expr.html#literal_values_constants_"
	docURLNumeric = "https://www.sqlite.org/syntax/numeric-literal.html"
	docURLExpr    = "https://www.sqlite.org/syntax/expr.html"
)

// Lexer is a byte-level state machine over a single source buffer.
type Lexer struct {
	pos     int
	line    int
	linePos int
	name    string
	source  []byte

	Diagnostics []diagnostic.Diagnostic
}

// New constructs a Lexer over source, a UTF-8 buffer named name (used in
// diagnostic File fields).
func New(source []byte, name string) *Lexer {
	return &Lexer{name: name, source: source}
}

// Run lexes the whole buffer and returns the produced tokens. Diagnostics
// accumulate on l.Diagnostics. Total: Run always returns, never panics.
func (l *Lexer) Run() []token.Token {
	var tokens []token.Token

	if len(l.source) == 0 {
		l.Diagnostics = append(l.Diagnostics, l.errAt(
			"No content found in source file",
			fmt.Sprintf("consider adding statements to '%s'", l.name),
			0, diagnostic.NoContent))
		return nil
	}

mainLoop:
	for !l.isEOF() {
		switch l.cur() {
		case '\t', '\r', ' ', '\n':
			// skip
		case '/':
			if l.nextIs('*') {
				for !l.isEOF() {
					l.advance()
					if l.is('*') && l.nextIs('/') {
						break
					}
				}
			}
		case '-':
			l.advance()
			if !l.is('-') {
				l.Diagnostics = append(l.Diagnostics, l.errAt(
					"'-' is not a valid symbol at this point",
					"If you meant a comment, those are prefixed with '--'",
					l.linePos, diagnostic.Syntax))
				break mainLoop
			}
			l.advance()
			l.scanLineComment(&tokens)
		case '\'':
			tok, d, ok := l.stringLiteral()
			if ok {
				tokens = append(tokens, tok)
			} else {
				l.Diagnostics = append(l.Diagnostics, d)
			}
		case '*':
			tokens = append(tokens, l.single(token.TAsterisk))
		case ';':
			tokens = append(tokens, l.single(token.TSemicolon))
		case ',':
			tokens = append(tokens, l.single(token.TComma))
		case '%':
			tokens = append(tokens, l.single(token.TPercent))
		case '=':
			tokens = append(tokens, l.single(token.TEqual))
		case '@':
			tokens = append(tokens, l.single(token.TAt))
		case ':':
			tokens = append(tokens, l.single(token.TColon))
		case '$':
			tokens = append(tokens, l.single(token.TDollar))
		case '?':
			tokens = append(tokens, l.single(token.TQuestion))
		case '(':
			tokens = append(tokens, l.single(token.TBraceLeft))
		case ')':
			tokens = append(tokens, l.single(token.TBraceRight))
		case '[':
			tokens = append(tokens, l.single(token.TBracketLeft))
		case ']':
			tokens = append(tokens, l.single(token.TBracketRight))
		default:
			c := l.cur()
			switch {
			case c >= '0' && c <= '9' || c == '.':
				l.handleNumber(&tokens)
				continue mainLoop
			case (c == 'X' || c == 'x') && !(l.pos+1 < len(l.source) && isIdentByte(l.source[l.pos+1])):
				if l.handleBlob(&tokens) {
					break mainLoop
				}
			case isIdentStart(c):
				l.handleIdent(&tokens)
				continue mainLoop
			default:
				d := l.errAt(
					fmt.Sprintf("Unknown character '%c'", c),
					fmt.Sprintf("character (ascii: %q, decimal: %d, hex: %#x)", string(c), c, c),
					l.linePos, diagnostic.UnknownCharacter)
				d.DocURL = docURLExpr
				l.Diagnostics = append(l.Diagnostics, d)
			}
		}
		l.advance()
	}

	if len(tokens) == 0 && len(l.Diagnostics) == 0 {
		l.Diagnostics = append(l.Diagnostics, l.errAt(
			"No statements found in source file",
			fmt.Sprintf("consider adding statements to '%s'", l.name),
			0, diagnostic.NoStatements))
		return nil
	}
	return tokens
}

// scanLineComment consumes a "--" comment body, recognizing an embedded
// "@sqleibniz::..." lint directive.
func (l *Lexer) scanLineComment(tokens *[]token.Token) {
	for !l.isEOF() {
		if l.is('\n') {
			break
		} else if l.is('@') {
			l.advance() // skip '@'
			start := l.pos
			for !l.isEOF() && !isSpaceByte(l.cur()) {
				l.advance()
			}
			instruction := string(l.source[start:l.pos])
			d := l.errAt("Unknown sqleibniz instruction", "placeholder", l.linePos, diagnostic.BadSqleibnizInstruction)

			function, isDirective := strings.CutPrefix(instruction, "sqleibniz::")
			switch {
			case isDirective && strings.TrimSpace(function) == "expect":
				*tokens = append(*tokens, l.single(token.TInstructionExpect))
			case isDirective:
				d.Note = fmt.Sprintf("`%s` is not a valid sqleibniz instruction", strings.TrimSpace(function))
				d.Span.Start = start - 1
				d.Span.End = l.pos
				l.Diagnostics = append(l.Diagnostics, d)
			default:
				d.Note = fmt.Sprintf("`%s` is not a valid sqleibniz instruction", instruction)
				d.Span.Start = start - 1
				d.Span.End = l.pos
				l.Diagnostics = append(l.Diagnostics, d)
			}

			for !l.isEOF() && !l.is('\n') {
				l.advance()
			}
			break
		}
		l.advance()
	}
}

// handleNumber lexes a numeric literal or a lone '.' (Dot punctuation),
// fully managing its own advances.
func (l *Lexer) handleNumber(tokens *[]token.Token) {
	if l.is('.') {
		nb, hasNext := l.next()
		isContinuation := hasNext && (nb == '_' || (nb >= '0' && nb <= '9'))
		if !(l.nextIs('e') || l.nextIs('E')) && !isContinuation {
			*tokens = append(*tokens, token.Token{
				Kind: token.Simple(token.TDot),
				Span: token.Span{Line: l.line, Start: l.linePos, End: l.linePos},
			})
			l.advance()
			return
		}
	}

	lineStart := l.linePos
	isHex := false
	if l.is('0') && (l.nextIs('x') || l.nextIs('X')) {
		l.advance()
		l.advance()
		isHex = true
	}

	start := l.pos
	for !l.isEOF() && isSqliteNumByte(l.cur()) {
		l.advance()
	}

	var sb strings.Builder
	for _, c := range l.source[start:l.pos] {
		if c != '_' {
			sb.WriteByte(c)
		}
	}
	str := sb.String()

	if isHex {
		n, err := strconv.ParseInt(str, 16, 64)
		if err != nil {
			d := l.errAt(fmt.Sprintf("Bad hexadecimal numeric literal: '0x%s'", str), err.Error(), lineStart, diagnostic.InvalidNumericLiteral)
			d.DocURL = docURLNumeric
			l.Diagnostics = append(l.Diagnostics, d)
			return
		}
		*tokens = append(*tokens, token.Token{Kind: token.Number(float64(n)), Span: token.Span{Line: l.line, Start: lineStart, End: l.linePos}})
		return
	}

	n, err := strconv.ParseFloat(str, 64)
	if err != nil {
		d := l.errAt(fmt.Sprintf("Bad numeric literal: '%s'", str), err.Error(), lineStart, diagnostic.InvalidNumericLiteral)
		d.DocURL = docURLNumeric
		l.Diagnostics = append(l.Diagnostics, d)
		return
	}
	*tokens = append(*tokens, token.Token{Kind: token.Number(n), Span: token.Span{Line: l.line, Start: lineStart, End: l.linePos}})
}

// handleBlob lexes an X'...'/x'...' blob literal. It reports stop=true when
// lexing must abandon the remainder of the buffer, matching the reference
// behaviour of halting on the first invalid hex digit inside a blob.
func (l *Lexer) handleBlob(tokens *[]token.Token) (stop bool) {
	lineStart := l.linePos
	line := l.line

	if !l.nextIs('\'') {
		d := l.errAt("Malformed blob", "a Blob is hexadecimal data prefixed with X' and postfixed with '", l.linePos, diagnostic.InvalidBlob)
		d.DocURL = docURLLiteral
		l.Diagnostics = append(l.Diagnostics, d)
		return false
	}

	l.advance() // skip X/x
	tok, _, ok := l.stringLiteral()
	if !ok {
		d := l.errAt("Unterminated blob string", "a Blob is hexadecimal data prefixed with X' and postfixed with ', you forgot the closing '", lineStart, diagnostic.InvalidBlob)
		d.Span.Line = line
		d.DocURL = docURLLiteral
		l.Diagnostics = append(l.Diagnostics, d)
		return false
	}

	str := tok.Kind.Str
	for idx := 0; idx < len(str); idx++ {
		if !isHexDigit(str[idx]) {
			d := l.errAt("Bad blob data",
				fmt.Sprintf("a Blob is hexadecimal data, '%c' is not valid hex (a..=f, A..=F, 0..=9)", str[idx]),
				lineStart+2+idx, diagnostic.InvalidBlob)
			d.Span.End = lineStart + 2 + idx
			d.DocURL = docURLLiteral
			l.Diagnostics = append(l.Diagnostics, d)
			return true
		}
	}

	*tokens = append(*tokens, token.Token{Kind: token.Blob([]byte(str)), Span: tok.Span})
	return false
}

// handleIdent lexes an identifier, resolving it to a keyword or boolean
// literal where applicable.
func (l *Lexer) handleIdent(tokens *[]token.Token) {
	start := l.pos
	lineStart := l.linePos
	for !l.isEOF() && isIdentByte(l.cur()) {
		l.advance()
	}
	ident := string(l.source[start:l.pos])

	var kind token.Kind
	if kw, ok := token.LookupKeyword(ident); ok {
		kind = token.KeywordKind(kw)
	} else if strings.EqualFold(ident, "true") || strings.EqualFold(ident, "false") {
		kind = token.Boolean(strings.EqualFold(ident, "true"))
	} else {
		kind = token.Ident(ident)
	}

	*tokens = append(*tokens, token.Token{Kind: kind, Span: token.Span{Line: l.line, Start: lineStart, End: l.linePos}})
}

// stringLiteral scans a single-quoted string starting at the current
// quote. On success it returns the decoded String token; on failure (a
// newline or EOF before the closing quote) it returns the
// UnterminatedString diagnostic instead.
func (l *Lexer) stringLiteral() (token.Token, diagnostic.Diagnostic, bool) {
	start := l.pos
	lineStart := l.linePos
	for !l.isEOF() {
		end := l.linePos
		line := l.line
		l.advance()
		if l.isEOF() || l.is('\n') {
			d := l.errAt("Unterminated String", `Consider adding a "'" at the end of this string`, lineStart, diagnostic.UnterminatedString)
			d.Span.End = end + 1
			d.Span.Line = line
			d.DocURL = docURLLiteral
			d.ImprovedLine = &diagnostic.ImprovedLine{Snippet: "'", Start: d.Span.End}
			return token.Token{}, d, false
		} else if l.is('\'') {
			str := string(l.source[start+1 : l.pos])
			return token.Token{
				Kind: token.String(str),
				Span: token.Span{Line: l.line, Start: lineStart, End: end + 2},
			}, diagnostic.Diagnostic{}, true
		}
	}
	return token.Token{}, diagnostic.Diagnostic{}, false
}

func (l *Lexer) advance() {
	if l.is('\n') {
		l.line++
		l.linePos = 0
	} else {
		l.linePos++
	}
	l.pos++
}

func (l *Lexer) is(c byte) bool     { return l.pos < len(l.source) && l.source[l.pos] == c }
func (l *Lexer) nextIs(c byte) bool { return l.pos+1 < len(l.source) && l.source[l.pos+1] == c }
func (l *Lexer) isEOF() bool        { return l.pos >= len(l.source) }
func (l *Lexer) cur() byte          { return l.source[l.pos] }

func (l *Lexer) next() (byte, bool) {
	if l.pos+1 < len(l.source) {
		return l.source[l.pos+1], true
	}
	return 0, false
}

func (l *Lexer) errAt(msg, note string, start int, rule diagnostic.Rule) diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		File: l.name,
		Span: token.Span{Line: l.line, Start: start, End: l.linePos},
		Rule: rule,
		Msg:  msg,
		Note: note,
	}
}

func (l *Lexer) single(tag token.Tag) token.Token {
	return token.Token{
		Kind: token.Simple(tag),
		Span: token.Span{Line: l.line, Start: l.linePos, End: l.linePos},
	}
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isSqliteNumByte(c byte) bool {
	switch {
	case c == '+' || c == '-' || c == '_' || c == '.':
		return true
	case c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		return true
	case c >= '0' && c <= '9':
		return true
	}
	return false
}

func isSpaceByte(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
