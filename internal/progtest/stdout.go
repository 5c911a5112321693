package progtest

import (
	"fmt"
	"strings"
)

type StdoutMode int

const (
	StdoutNone StdoutMode = iota
	StdoutExact
	StdoutContains
)

type StdoutExpectation struct {
	Mode  StdoutMode
	Value string
}

func NormalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func MatchStdout(got string, exp StdoutExpectation) (bool, string) {
	normalizedGot := NormalizeNewlines(got)
	switch exp.Mode {
	case StdoutNone:
		return true, ""
	case StdoutExact:
		want := NormalizeNewlines(exp.Value)
		if normalizedGot != want {
			return false, fmt.Sprintf("stdout mismatch: expected %q, got %q", want, normalizedGot)
		}
		return true, ""
	case StdoutContains:
		want := NormalizeNewlines(exp.Value)
		if !strings.Contains(normalizedGot, want) {
			return false, fmt.Sprintf("stdout mismatch: expected to contain %q, got %q", want, normalizedGot)
		}
		return true, ""
	default:
		return false, "unknown stdout expectation"
	}
}
