package lsp

import (
	"intcode/internal/code"
	"intcode/internal/diag"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Token type indices into TokenTypes.
const (
	SemOpcode = iota
	SemImmediate
	SemAddress
	SemRelative
	SemData
)

const SemModWrite = 1 << 0

var TokenTypes = []string{
	string(protocol.SemanticTokenTypeKeyword),
	string(protocol.SemanticTokenTypeNumber),
	string(protocol.SemanticTokenTypeVariable),
	string(protocol.SemanticTokenTypeParameter),
	string(protocol.SemanticTokenTypeComment),
}

var TokenModifiers = []string{
	string(protocol.SemanticTokenModifierModification),
}

// SemTok is a classified word with a 0-based, UTF-16 position.
type SemTok struct {
	Line   uint32
	Col    uint32
	Length uint32
	Type   int
	Mods   int
}

// SemanticTokensForText classifies every word of a parsable document
// using the same linear sweep as the disassembler. Unparsable documents
// yield nothing.
func SemanticTokensForText(text string) []SemTok {
	toks := code.Tokenize(text)
	prog, err := code.Parse(text)
	if err != nil {
		return nil
	}
	out := make([]SemTok, 0, len(toks))
	add := func(addr, typ, mods int) {
		tok := toks[addr]
		r := diag.RangeAt(text, tok.Offset, len(tok.Text))
		start := PositionAt(text, r.Line, r.Col)
		end := PositionAt(text, r.Line, r.Col+r.Length)
		out = append(out, SemTok{
			Line:   start.Line,
			Col:    start.Character,
			Length: end.Character - start.Character,
			Type:   typ,
			Mods:   mods,
		})
	}
	for _, l := range code.Walk(prog) {
		if l.Err != nil {
			add(l.Addr, SemData, 0)
			continue
		}
		add(l.Addr, SemOpcode, 0)
		for k := range l.Operands {
			typ := SemAddress
			switch l.Ins.Modes[k] {
			case code.ModeImmediate:
				typ = SemImmediate
			case code.ModeRelative:
				typ = SemRelative
			}
			mods := 0
			if k == l.Ins.Def.Write {
				mods = SemModWrite
			}
			add(l.Addr+1+k, typ, mods)
		}
	}
	return out
}

// EncodeSemanticTokens produces the relative encoding of the LSP wire
// format. Tokens must already be in document order.
func EncodeSemanticTokens(toks []SemTok) []uint32 {
	data := make([]uint32, 0, len(toks)*5)
	var prevLine, prevCol uint32
	for _, t := range toks {
		if t.Length == 0 {
			continue
		}
		deltaLine := t.Line - prevLine
		deltaStart := t.Col
		if deltaLine == 0 {
			deltaStart = t.Col - prevCol
		}
		data = append(data, deltaLine, deltaStart, t.Length, uint32(t.Type), uint32(t.Mods))
		prevLine = t.Line
		prevCol = t.Col
	}
	return data
}
