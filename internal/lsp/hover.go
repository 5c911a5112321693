package lsp

import (
	"fmt"
	"strings"

	"intcode/internal/code"
	"intcode/internal/diag"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// tokenAt finds the index of the token under a byte offset. A cursor just
// past the last character of a token still counts as on it.
func tokenAt(toks []code.Token, offset int) (int, bool) {
	for i, tok := range toks {
		if offset >= tok.Offset && offset <= tok.Offset+len(tok.Text) && tok.Text != "" {
			return i, true
		}
	}
	return 0, false
}

// HoverAt describes the word under the cursor: its address and the
// instruction it belongs to in a linear sweep of the program.
func HoverAt(text string, pos protocol.Position) (*protocol.Hover, error) {
	offset, ok := OffsetAt(text, pos)
	if !ok {
		return nil, nil
	}
	toks := code.Tokenize(text)
	idx, ok := tokenAt(toks, offset)
	if !ok {
		return nil, nil
	}
	prog, err := code.Parse(text)
	if err != nil {
		return nil, nil
	}
	line, ok := code.LineAt(code.Walk(prog), idx)
	if !ok {
		return nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "```\n%s\n```\n", line)
	fmt.Fprintf(&b, "address %d, word %d", idx, prog[idx])
	if line.Err == nil {
		if k := idx - line.Addr - 1; k >= 0 {
			role := "read"
			if k == line.Ins.Def.Write {
				role = "write"
			}
			fmt.Fprintf(&b, ", operand %d of %s (%s, %s)", k+1, line.Ins.Def.Name, line.Ins.Modes[k], role)
		}
	} else {
		fmt.Fprintf(&b, "\n\n%v", line.Err)
	}

	r := diag.RangeAt(text, toks[idx].Offset, len(toks[idx].Text))
	rng := protocol.Range{
		Start: PositionAt(text, r.Line, r.Col),
		End:   PositionAt(text, r.Line, r.Col+r.Length),
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: b.String()},
		Range:    &rng,
	}, nil
}
