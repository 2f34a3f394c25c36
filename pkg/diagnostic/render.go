package diagnostic

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/xqlint/sqleibniz/pkg/highlight"
	"github.com/xqlint/sqleibniz/pkg/token"
)

var (
	colorError = color.New(color.FgRed)
	colorInfo  = color.New(color.FgBlue)
	colorFile  = color.New(color.FgCyan)
	colorPos   = color.New(color.FgYellow)
)

const noteWrapWidth = 55

// Render writes a framed, syntax-highlighted representation of d to w: a
// context window of source lines around d.Span, a caret/tilde underline on
// the offending line, a word-wrapped note, an optional doc URL, and the
// rule's one-line catalog description.
func Render(w io.Writer, d Diagnostic, source []byte, tokens []token.Token) {
	colorError.Fprint(w, "error")
	fmt.Fprint(w, "[")
	colorError.Fprint(w, d.Rule.Name())
	fmt.Fprint(w, "]: ")
	fmt.Fprintln(w, d.Msg)

	if len(source) == 0 {
		return
	}

	colorInfo.Fprint(w, " -> ")
	path := d.File
	if abs, err := filepath.Abs(d.File); err == nil {
		path = abs
	}
	colorFile.Fprint(w, path)
	colorPos.Fprintf(w, ":%d:%d\n", d.Span.Line+1, d.Span.Start+1)

	lines := bytes.Split(source, []byte("\n"))

	line := d.Span.Line
	end := d.Span.End
	if d.Rule == NoStatements {
		line = len(lines) - 1
		end = 0
	}

	startLine := line - 2
	if startLine < 0 {
		startLine = 0
	}
	endLine := line + 2
	if endLine > len(lines)-1 {
		endLine = len(lines) - 1
	}

	for i := startLine; i <= endLine; i++ {
		colorInfo.Fprintf(w, " %02d | ", i+1)
		var onLine []token.Token
		for _, t := range tokens {
			if t.Span.Line == i {
				onLine = append(onLine, t)
			}
		}
		highlight.Line(w, onLine, string(lines[i]))
		fmt.Fprintln(w)

		if i == line {
			repeat := end - d.Span.Start
			if repeat <= 0 {
				repeat = 1
			}
			colorInfo.Fprint(w, "    | ")
			colorError.Fprintf(w, "%s%s error occurs here.\n", strings.Repeat(" ", d.Span.Start), strings.Repeat("~", repeat))
		}
	}

	colorInfo.Fprint(w, "    |\n")
	colorInfo.Fprint(w, "    ~ note: ")
	fmt.Fprintln(w, wrapNote(d.Note))

	if d.DocURL != "" {
		colorInfo.Fprint(w, "    ~ docs: ")
		fmt.Fprintln(w, d.DocURL)
	}

	colorInfo.Fprint(w, " * ")
	colorInfo.Fprint(w, d.Rule.Name())
	fmt.Fprintf(w, ": %s\n", d.Rule.Description())
}

// wrapNote greedily wraps words onto lines no wider than noteWrapWidth,
// indenting continuation lines to align under "note: ".
func wrapNote(note string) string {
	var b strings.Builder
	lineLen := 0
	for _, word := range strings.Fields(note) {
		sep := 0
		if lineLen > 0 {
			sep = 1
		}
		if lineLen+len(word)+sep > noteWrapWidth {
			b.WriteString("\n            ")
			b.WriteString(word)
			lineLen = len(word)
			continue
		}
		if lineLen > 0 {
			b.WriteByte(' ')
			lineLen++
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	return b.String()
}
