package diagnostic

import "go.lsp.dev/protocol"

// severityFor maps a Rule to an LSP diagnostic severity. Only SqliteUnsupported
// and Quirk are advisory; everything else blocks a clean analysis.
func severityFor(r Rule) protocol.DiagnosticSeverity {
	switch r {
	case Quirk, SqliteUnsupported:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityError
	}
}

// ToLSP converts a Diagnostic into the wire shape expected by
// textDocument/publishDiagnostics and textDocument/diagnostic.
func ToLSP(d Diagnostic) protocol.Diagnostic {
	end := d.Span.End
	if end <= d.Span.Start {
		end = d.Span.Start + 1
	}
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(d.Span.Line), Character: uint32(d.Span.Start)},
			End:   protocol.Position{Line: uint32(d.Span.Line), Character: uint32(end)},
		},
		Severity: severityFor(d.Rule),
		Code:     d.Rule.Name(),
		Source:   "sqleibniz",
		Message:  d.Msg,
	}
}

// ToLSPAll converts a batch, preserving order.
func ToLSPAll(diags []Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, len(diags))
	for i, d := range diags {
		out[i] = ToLSP(d)
	}
	return out
}
