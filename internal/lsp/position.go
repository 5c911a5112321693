package lsp

import (
	"strings"
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

func runeUnits(r rune) int {
	n := utf16.RuneLen(r)
	if n < 0 {
		return 1
	}
	return n
}

// OffsetAt converts an LSP position (0-based line, UTF-16 column) into a
// byte offset into text.
func OffsetAt(text string, pos protocol.Position) (int, bool) {
	lineStart := 0
	for i := uint32(0); i < pos.Line; i++ {
		nl := strings.IndexByte(text[lineStart:], '\n')
		if nl < 0 {
			return 0, false
		}
		lineStart += nl + 1
	}
	lineText := text[lineStart:]
	if nl := strings.IndexByte(lineText, '\n'); nl >= 0 {
		lineText = lineText[:nl]
	}
	units := 0
	for idx, r := range lineText {
		n := runeUnits(r)
		if units+n > int(pos.Character) {
			return lineStart + idx, true
		}
		units += n
	}
	return lineStart + len(lineText), true
}

// PositionAt converts a 1-based line/byte column into an LSP position.
func PositionAt(text string, line, col int) protocol.Position {
	lines := strings.Split(text, "\n")
	if line <= 0 || line > len(lines) {
		return protocol.Position{}
	}
	lineText := lines[line-1]
	limit := col - 1
	if limit < 0 {
		limit = 0
	}
	if limit > len(lineText) {
		limit = len(lineText)
	}
	units := 0
	for _, r := range lineText[:limit] {
		units += runeUnits(r)
	}
	return protocol.Position{Line: uint32(line - 1), Character: uint32(units)}
}

// EndPosition is the LSP position just past the last character of text.
func EndPosition(text string) protocol.Position {
	var pos protocol.Position
	for _, r := range text {
		if r == '\n' {
			pos.Line++
			pos.Character = 0
			continue
		}
		pos.Character += uint32(runeUnits(r))
	}
	return pos
}

// FullDocumentRange covers all of text.
func FullDocumentRange(text string) protocol.Range {
	return protocol.Range{End: EndPosition(text)}
}
