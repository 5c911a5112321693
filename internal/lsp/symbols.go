package lsp

import (
	"fmt"

	"intcode/internal/code"
	"intcode/internal/diag"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DocumentSymbols lists the sweep lines of a parsable document, one symbol
// per instruction or data word, each spanning its words.
func DocumentSymbols(text string) []protocol.DocumentSymbol {
	toks := code.Tokenize(text)
	prog, err := code.Parse(text)
	if err != nil {
		return []protocol.DocumentSymbol{}
	}
	lines := code.Walk(prog)
	out := make([]protocol.DocumentSymbol, 0, len(lines))
	for _, l := range lines {
		first := toks[l.Addr]
		last := toks[min(l.Addr+l.Width(), len(toks))-1]

		fr := diag.RangeAt(text, first.Offset, len(first.Text))
		lr := diag.RangeAt(text, last.Offset, len(last.Text))
		sel := protocol.Range{
			Start: PositionAt(text, fr.Line, fr.Col),
			End:   PositionAt(text, fr.Line, fr.Col+fr.Length),
		}
		full := protocol.Range{
			Start: sel.Start,
			End:   PositionAt(text, lr.Line, lr.Col+lr.Length),
		}

		name := fmt.Sprintf("%04d DATA", l.Addr)
		kind := protocol.SymbolKindConstant
		if l.Err == nil {
			name = fmt.Sprintf("%04d %s", l.Addr, l.Ins.Def.Name)
			kind = protocol.SymbolKindFunction
		}
		detail := l.String()
		out = append(out, protocol.DocumentSymbol{
			Name:           name,
			Detail:         &detail,
			Kind:           kind,
			Range:          full,
			SelectionRange: sel,
		})
	}
	return out
}
