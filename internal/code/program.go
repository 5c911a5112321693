package code

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Program is a parsed Intcode program. Treat it as immutable; the VM
// copies it into its own memory.
type Program []int64

var ErrParse = errors.New("parse error")

// ParseError reports a token that is not a base-10 integer.
type ParseError struct {
	Index  int // token index, i.e. the address the value would load at
	Offset int // byte offset of the token in the source
	Token  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("parse error: empty value at index %d (offset %d)", e.Index, e.Offset)
	}
	return fmt.Sprintf("parse error: invalid integer %q at index %d (offset %d)", e.Token, e.Index, e.Offset)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Err}
}

// Token is one comma-separated field of program text, whitespace trimmed.
type Token struct {
	Text   string
	Offset int
}

// Tokenize splits program text on commas. Blank input yields no tokens.
func Tokenize(src string) []Token {
	if strings.TrimSpace(src) == "" {
		return nil
	}
	var toks []Token
	start := 0
	for i := 0; i <= len(src); i++ {
		if i < len(src) && src[i] != ',' {
			continue
		}
		field := src[start:i]
		lead := len(field) - len(strings.TrimLeft(field, " \t\r\n"))
		toks = append(toks, Token{
			Text:   strings.TrimSpace(field),
			Offset: start + lead,
		})
		start = i + 1
	}
	return toks
}

// Parse reads comma-separated integers, failing on the first bad token.
func Parse(src string) (Program, error) {
	toks := Tokenize(src)
	prog := make(Program, 0, len(toks))
	for i, tok := range toks {
		v, err := ParseToken(tok, i)
		if err != nil {
			return nil, err
		}
		prog = append(prog, v)
	}
	return prog, nil
}

// ParseToken converts a single token, reporting failures as *ParseError.
func ParseToken(tok Token, index int) (int64, error) {
	if tok.Text == "" {
		return 0, &ParseError{Index: index, Offset: tok.Offset}
	}
	v, err := strconv.ParseInt(tok.Text, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, &ParseError{Index: index, Offset: tok.Offset, Token: tok.Text, Err: err}
	}
	return v, nil
}

func (p Program) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

// Clone returns an independent copy.
func (p Program) Clone() Program {
	return append(Program(nil), p...)
}
