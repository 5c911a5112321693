package runtimeio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

var ErrInputUnavailable = errors.New("input is not available in non-interactive mode")

func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ParseValues reads a line of input. In ASCII mode the line is sent as
// character codes followed by a newline; otherwise it is a comma or space
// separated list of integers.
func ParseValues(line string, ascii bool) ([]int64, error) {
	if ascii {
		out := make([]int64, 0, len(line)+1)
		for _, r := range line {
			out = append(out, int64(r))
		}
		return append(out, '\n'), nil
	}
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]int64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid input value %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}

// LineSource feeds a VM from line-oriented text, prompting before each
// read. It satisfies vm.Source.
type LineSource struct {
	r       *bufio.Reader
	prompt  io.Writer
	text    string
	ascii   bool
	pending []int64
}

// NewLineSource reads from r. If prompt is non-nil, text is written to it
// before every line is read.
func NewLineSource(r io.Reader, prompt io.Writer, text string, ascii bool) *LineSource {
	return &LineSource{r: bufio.NewReader(r), prompt: prompt, text: text, ascii: ascii}
}

func (s *LineSource) Next() (int64, error) {
	for len(s.pending) == 0 {
		if s.prompt != nil && s.text != "" {
			_, _ = fmt.Fprint(s.prompt, s.text)
		}
		line, err := s.r.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return 0, err
		}
		vals, perr := ParseValues(strings.TrimRight(line, "\r\n"), s.ascii)
		if perr != nil {
			if s.prompt == nil {
				return 0, perr
			}
			_, _ = fmt.Fprintln(s.prompt, perr)
			continue
		}
		s.pending = vals
	}
	v := s.pending[0]
	s.pending = s.pending[1:]
	return v, nil
}

// FormatValue renders an output value, as a character when ascii is set and
// the value is printable ASCII or a newline.
func FormatValue(v int64, ascii bool) string {
	if ascii && (v == '\n' || (v >= 32 && v < 127)) {
		return string(rune(v))
	}
	return strconv.FormatInt(v, 10) + "\n"
}
