package lsp

import (
	"intcode/internal/code"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// FormatEdits rewrites a parsable document into canonical form: a single
// line of comma-separated integers with a trailing newline.
func FormatEdits(text string) []protocol.TextEdit {
	prog, err := code.Parse(text)
	if err != nil || len(prog) == 0 {
		return []protocol.TextEdit{}
	}
	formatted := prog.String() + "\n"
	if formatted == text {
		return []protocol.TextEdit{}
	}
	return []protocol.TextEdit{{
		Range:   FullDocumentRange(text),
		NewText: formatted,
	}}
}
