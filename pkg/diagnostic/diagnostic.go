// Package diagnostic defines the rule-tagged error type emitted by the
// lexer and parser, and the rendering pipelines (terminal and LSP) that
// turn a sealed diagnostic list into user-facing output.
package diagnostic

import "github.com/xqlint/sqleibniz/pkg/token"

// ImprovedLine is an optional suggested-fix hint: inserting Snippet at
// byte offset Start of the offending line would resolve the diagnostic.
type ImprovedLine struct {
	Snippet string
	Start   int
}

// Diagnostic is one rule-tagged finding with a source span. It is never
// fatal: the lexer and parser always continue after appending one.
type Diagnostic struct {
	File         string
	Span         token.Span
	Rule         Rule
	Msg          string
	Note         string
	DocURL       string
	ImprovedLine *ImprovedLine
}

// New builds a Diagnostic with the given span, rule, message and note;
// DocURL and ImprovedLine are left empty.
func New(file string, span token.Span, rule Rule, msg, note string) Diagnostic {
	return Diagnostic{File: file, Span: span, Rule: rule, Msg: msg, Note: note}
}

func (d Diagnostic) WithDocURL(url string) Diagnostic {
	d.DocURL = url
	return d
}

func (d Diagnostic) WithImprovedLine(snippet string, start int) Diagnostic {
	d.ImprovedLine = &ImprovedLine{Snippet: snippet, Start: start}
	return d
}

// Filter removes diagnostics whose rule appears in disabled, preserving
// encounter order.
func Filter(diags []Diagnostic, disabled map[Rule]bool) []Diagnostic {
	if len(disabled) == 0 {
		return diags
	}
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		if disabled[d.Rule] {
			continue
		}
		out = append(out, d)
	}
	return out
}
