// Package highlight renders a single source line with ANSI colour codes
// according to the token kinds found on that line, for use in terminal
// diagnostic output.
package highlight

import (
	"io"

	"github.com/fatih/color"

	"github.com/xqlint/sqleibniz/pkg/token"
)

var (
	colorKeyword = color.New(color.FgMagenta)
	colorAtom    = color.New(color.FgYellow)
	colorSpecial = color.New(color.FgRed)
	colorSymbol  = color.New(color.FgWhite)
	colorDim     = color.New(color.FgHiBlack)
)

func lookup(k token.Kind) *color.Color {
	switch k.Tag {
	case token.TKeyword:
		return colorKeyword
	case token.TString, token.TNumber, token.TBlob, token.TBoolean:
		return colorAtom
	case token.TDollar, token.TColon, token.TAsterisk, token.TQuestion,
		token.TParam, token.TPercent, token.TParamName:
		return colorSpecial
	case token.TDot, token.TIdent, token.TSemicolon, token.TComma, token.TEqual,
		token.TAt, token.TBraceLeft, token.TBraceRight, token.TBracketLeft, token.TBracketRight:
		return colorSymbol
	default:
		return colorDim
	}
}

// Line writes line to w, colouring each byte range covered by a token in
// tokensOnLine, using its kind's colour class. Gaps (whitespace, comments)
// are rendered dim.
func Line(w io.Writer, tokensOnLine []token.Token, line string) {
	if len(tokensOnLine) == 0 {
		colorDim.Fprint(w, line)
		return
	}

	pos := 0
	for _, tok := range tokensOnLine {
		if tok.Span.Start > len(line) || tok.Span.End > len(line) {
			continue
		}
		if tok.Span.Start > pos {
			colorDim.Fprint(w, line[pos:tok.Span.Start])
		}
		end := tok.Span.End
		if end <= tok.Span.Start {
			end = tok.Span.Start + 1
		}
		if end > len(line) {
			end = len(line)
		}
		lookup(tok.Kind).Fprint(w, line[tok.Span.Start:end])
		pos = end
	}
	if pos < len(line) {
		colorDim.Fprint(w, line[pos:])
	}
}
