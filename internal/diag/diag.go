package diag

import (
	"errors"
	"fmt"
	"strings"

	"intcode/internal/code"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

const (
	CodeParse         = "IC0001"
	CodeUnknownOpcode = "IC0002"
	CodeInvalidMode   = "IC0003"
	CodeTruncated     = "IC0004"
)

type Range struct {
	Line   int // 1-based
	Col    int // 1-based
	Length int
}

type Diagnostic struct {
	Code     string
	Message  string
	Severity Severity
	Range    Range
	Addr     int // word index the diagnostic points at
}

func (d Diagnostic) Format(path string) string {
	return fmt.Sprintf("%s:%d:%d: %s %s: %s", path, d.Range.Line, d.Range.Col, d.Severity, d.Code, d.Message)
}

// RangeAt converts a byte offset into a 1-based line/column range.
func RangeAt(src string, offset, length int) Range {
	if offset > len(src) {
		offset = len(src)
	}
	before := src[:offset]
	line := strings.Count(before, "\n") + 1
	col := offset - strings.LastIndexByte(before, '\n')
	if length < 1 {
		length = 1
	}
	return Range{Line: line, Col: col, Length: length}
}

// Check reports every malformed token. When the text parses it also sweeps
// the program up to the first halt and warns about words that would fault
// if executed in place.
func Check(src string) []Diagnostic {
	toks := code.Tokenize(src)
	var out []Diagnostic
	prog := make(code.Program, 0, len(toks))
	for i, tok := range toks {
		v, err := code.ParseToken(tok, i)
		if err != nil {
			out = append(out, Diagnostic{
				Code:     CodeParse,
				Message:  err.Error(),
				Severity: SeverityError,
				Range:    RangeAt(src, tok.Offset, len(tok.Text)),
				Addr:     i,
			})
			continue
		}
		prog = append(prog, v)
	}
	if len(out) > 0 {
		return out
	}

	for _, l := range code.Walk(prog) {
		tok := toks[l.Addr]
		rng := RangeAt(src, tok.Offset, len(tok.Text))
		if l.Err != nil {
			c := CodeUnknownOpcode
			if errors.Is(l.Err, code.ErrInvalidMode) {
				c = CodeInvalidMode
			}
			out = append(out, Diagnostic{
				Code:     c,
				Message:  fmt.Sprintf("word %d at address %d does not decode: %v", prog[l.Addr], l.Addr, l.Err),
				Severity: SeverityWarning,
				Range:    rng,
				Addr:     l.Addr,
			})
			// The rest of the sweep is probably data.
			break
		}
		if l.Ins.Op == code.OpHalt {
			break
		}
		if len(l.Operands) < l.Ins.Def.Operands {
			out = append(out, Diagnostic{
				Code:     CodeTruncated,
				Message:  fmt.Sprintf("%s at address %d is missing operands", l.Ins.Def.Name, l.Addr),
				Severity: SeverityWarning,
				Range:    rng,
				Addr:     l.Addr,
			})
		}
	}
	return out
}
