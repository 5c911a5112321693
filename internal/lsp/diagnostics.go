package lsp

import (
	"intcode/internal/diag"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Diagnose checks a document and converts the findings for the client.
func Diagnose(text string) []protocol.Diagnostic {
	return ToLspDiagnostics(text, diag.Check(text))
}

func ToLspDiagnostics(text string, ds []diag.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(ds))
	for _, d := range ds {
		start := PositionAt(text, d.Range.Line, d.Range.Col)
		end := start
		end.Character = start.Character + uint32(max(1, d.Range.Length))

		severity := protocol.DiagnosticSeverityError
		switch d.Severity {
		case diag.SeverityWarning:
			severity = protocol.DiagnosticSeverityWarning
		case diag.SeverityInfo:
			severity = protocol.DiagnosticSeverityInformation
		}

		pd := protocol.Diagnostic{
			Range:    protocol.Range{Start: start, End: end},
			Severity: &severity,
			Source:   ptrString("intcode"),
			Message:  d.Message,
		}
		if d.Code != "" {
			code := protocol.IntegerOrString{Value: d.Code}
			pd.Code = &code
		}
		out = append(out, pd)
	}
	return out
}

func ptrString(s string) *string { return &s }
