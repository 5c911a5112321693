package vm

import (
	"errors"
	"io"
	"testing"

	"intcode/internal/code"
)

func mustParse(t *testing.T, src string) code.Program {
	t.Helper()
	prog, err := code.Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return prog
}

func runProgram(t *testing.T, src string, input ...int64) []int64 {
	t.Helper()
	out, err := New(mustParse(t, src)).ReadVec(input...).Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func equalWords(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestVMPositionModeArithmetic(t *testing.T) {
	m := New(mustParse(t, "1,9,10,3,2,3,11,0,99,30,40,50"))
	if err := m.RunWith(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.At(0) != 3500 {
		t.Fatalf("expected memory[0]=3500, got %d", m.At(0))
	}
	if m.At(3) != 70 {
		t.Fatalf("expected memory[3]=70, got %d", m.At(3))
	}
	if m.State() != Halted {
		t.Fatalf("expected halted, got %s", m.State())
	}
}

func TestVMSmallPrograms(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1,0,0,0,99", "2,0,0,0,99"},
		{"2,3,0,3,99", "2,3,0,6,99"},
		{"2,4,4,5,99,0", "2,4,4,5,99,9801"},
		{"1,1,1,4,99,5,6,0,99", "30,1,1,4,2,5,6,0,99"},
		{"1101,100,-1,4,0", "1101,100,-1,4,99"},
		{"1002,4,3,4,33", "1002,4,3,4,99"},
	}
	for _, tt := range tests {
		m := New(mustParse(t, tt.src))
		if _, err := m.Run(); err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.src, err)
		}
		got := code.Program(m.Memory().Snapshot()).String()
		if got != tt.want {
			t.Fatalf("%s: expected %s, got %s", tt.src, tt.want, got)
		}
	}
}

func TestVMImmediateAddHalts(t *testing.T) {
	m := New(mustParse(t, "1101,100,-1,4,0"))
	if _, err := m.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.At(4) != 99 {
		t.Fatalf("expected memory[4]=99, got %d", m.At(4))
	}
}

func TestVMEqualsEight(t *testing.T) {
	programs := []string{
		"3,9,8,9,10,9,4,9,99,-1,8",
		"3,3,1108,-1,8,3,4,3,99",
	}
	for _, src := range programs {
		for _, in := range []int64{7, 8, 9, -8} {
			want := int64(0)
			if in == 8 {
				want = 1
			}
			out := runProgram(t, src, in)
			if !equalWords(out, []int64{want}) {
				t.Fatalf("%s with %d: expected [%d], got %v", src, in, want, out)
			}
		}
	}
}

func TestVMLessThanEight(t *testing.T) {
	programs := []string{
		"3,9,7,9,10,9,4,9,99,-1,8",
		"3,3,1107,-1,8,3,4,3,99",
	}
	for _, src := range programs {
		for _, in := range []int64{7, 8, 9} {
			want := int64(0)
			if in < 8 {
				want = 1
			}
			out := runProgram(t, src, in)
			if !equalWords(out, []int64{want}) {
				t.Fatalf("%s with %d: expected [%d], got %v", src, in, want, out)
			}
		}
	}
}

func TestVMJumps(t *testing.T) {
	programs := []string{
		"3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9",
		"3,3,1105,-1,9,1101,0,0,12,4,12,99,1",
	}
	for _, src := range programs {
		for _, in := range []int64{0, 5, -3} {
			want := int64(1)
			if in == 0 {
				want = 0
			}
			out := runProgram(t, src, in)
			if !equalWords(out, []int64{want}) {
				t.Fatalf("%s with %d: expected [%d], got %v", src, in, want, out)
			}
		}
	}
}

func TestVMCompareWithEight(t *testing.T) {
	src := "3,21,1008,21,8,20,1005,20,22,107,8,21,20,1006,20,31," +
		"1106,0,36,98,0,0,1002,21,125,20,4,20,1105,1,46,104," +
		"999,1105,1,46,1101,1000,1,20,4,20,1105,1,46,98,99"
	tests := map[int64]int64{5: 999, 8: 1000, 11: 1001}
	for in, want := range tests {
		out := runProgram(t, src, in)
		if !equalWords(out, []int64{want}) {
			t.Fatalf("input %d: expected [%d], got %v", in, want, out)
		}
	}
}

func TestVMQuine(t *testing.T) {
	src := "109,1,204,-1,1001,100,1,100,1008,100,16,101,1006,101,0,99"
	out := runProgram(t, src)
	if code.Program(out).String() != src {
		t.Fatalf("expected quine output %s, got %v", src, out)
	}
}

func TestVMLargeNumbers(t *testing.T) {
	out := runProgram(t, "104,1125899906842624,99")
	if !equalWords(out, []int64{1125899906842624}) {
		t.Fatalf("expected 1125899906842624, got %v", out)
	}

	out = runProgram(t, "1102,34915192,34915192,7,4,7,99,0")
	if len(out) != 1 || out[0] != 1219070632396864 {
		t.Fatalf("expected 1219070632396864, got %v", out)
	}
}

func TestVMRelativeBase(t *testing.T) {
	// arb 10; in [rb+5]; out [rb+5]; arb -3; out [rb+8]; halt
	src := "109,10,203,5,204,5,109,-3,204,8,99"
	out := runProgram(t, src, 42)
	if !equalWords(out, []int64{42, 42}) {
		t.Fatalf("expected [42 42], got %v", out)
	}

	m := New(mustParse(t, src)).ReadVec(42)
	if _, err := m.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.RelativeBase() != 7 {
		t.Fatalf("expected relative base 7, got %d", m.RelativeBase())
	}
}

func TestVMPendingInput(t *testing.T) {
	m := New(mustParse(t, "3,0,99")).ReadVec(1, 2, 3)
	if _, err := m.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	left := m.PendingInput()
	if !equalWords(left, []int64{2, 3}) {
		t.Fatalf("expected [2 3] unread, got %v", left)
	}
	left[0] = 99
	if again := m.PendingInput(); again[0] != 2 {
		t.Fatalf("expected a copy of the queue, got %v", again)
	}
}

func TestVMSelfModifying(t *testing.T) {
	// add 90+9 -> [9]; out 7; jnz 1 -> 9, which now holds 99
	m := New(mustParse(t, "1101,90,9,9,104,7,1105,1,9,0"))
	out, err := m.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalWords(out, []int64{7}) {
		t.Fatalf("expected [7], got %v", out)
	}
	if m.State() != Halted || m.IP() != 9 {
		t.Fatalf("expected halt at the patched word, got %s at %d", m.State(), m.IP())
	}
}

func TestVMRunToOutMatchesRun(t *testing.T) {
	src := "109,1,204,-1,1001,100,1,100,1008,100,16,101,1006,101,0,99"
	want := runProgram(t, src)

	m := New(mustParse(t, src))
	var got []int64
	nones := 0
	for {
		v, ok, err := m.RunToOut()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			nones++
			break
		}
		got = append(got, v)
	}
	if !equalWords(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if nones != 1 {
		t.Fatalf("expected exactly one end-of-output, got %d", nones)
	}
	if _, _, err := m.RunToOut(); !errors.Is(err, ErrAlreadyHalted) {
		t.Fatalf("expected ErrAlreadyHalted, got %v", err)
	}
	if !equalWords(m.Output(), want) {
		t.Fatalf("expected accumulated output %v, got %v", want, m.Output())
	}
}

func TestVMRunToOutThenRun(t *testing.T) {
	m := New(mustParse(t, "104,1,104,2,104,3,99"))
	v, ok, err := m.RunToOut()
	if err != nil || !ok || v != 1 {
		t.Fatalf("expected first output 1, got %d %v %v", v, ok, err)
	}
	if m.IP() != 2 {
		t.Fatalf("expected ip 2 after suspension, got %d", m.IP())
	}
	out, err := m.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalWords(out, []int64{1, 2, 3}) {
		t.Fatalf("expected full buffer [1 2 3], got %v", out)
	}
}

func TestVMAmplifierChain(t *testing.T) {
	src := "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0"
	prog := mustParse(t, src)
	signal := int64(0)
	for _, phase := range []int64{4, 3, 2, 1, 0} {
		out, err := New(prog).ReadVec(phase, signal).Run()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		signal = out[0]
	}
	if signal != 43210 {
		t.Fatalf("expected 43210, got %d", signal)
	}
}

func TestVMFeedbackLoop(t *testing.T) {
	src := "3,26,1001,26,-4,26,3,27,1002,27,2,27,1,27,26," +
		"27,4,27,1001,28,-1,28,1005,28,6,99,0,0,5"
	prog := mustParse(t, src)

	phases := []int64{9, 8, 7, 6, 5}
	amps := make([]*VM, len(phases))
	for i, p := range phases {
		amps[i] = New(prog).ReadVec(p)
	}

	signal := int64(0)
	last := int64(0)
	for running := true; running; {
		for i, amp := range amps {
			amp.ReadVec(signal)
			v, ok, err := amp.RunToOut()
			if err != nil {
				t.Fatalf("amp %d: unexpected error: %v", i, err)
			}
			if !ok {
				running = false
				break
			}
			signal = v
			if i == len(amps)-1 {
				last = v
			}
		}
	}
	if last != 139629729 {
		t.Fatalf("expected 139629729, got %d", last)
	}
}

func TestVMRunWithPatches(t *testing.T) {
	prog := mustParse(t, "1,0,0,3,99")
	m := New(prog)
	if err := m.RunWith(Patch{Addr: 1, Value: 4}, Patch{Addr: 2, Value: 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.At(3) != 198 {
		t.Fatalf("expected memory[3]=198, got %d", m.At(3))
	}

	// the program itself is untouched, so a fresh VM sees the original words
	fresh := New(prog)
	if err := fresh.RunWith(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fresh.At(3) != 2 {
		t.Fatalf("expected memory[3]=2 without patches, got %d", fresh.At(3))
	}

	err := New(prog).RunWith(Patch{Addr: -1, Value: 0})
	if !errors.Is(err, ErrNegativeAddress) {
		t.Fatalf("expected ErrNegativeAddress, got %v", err)
	}
}

func TestVMFaults(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"unknown opcode", "42,0,0,0", code.ErrUnknownOpcode},
		{"immediate write", "11101,1,1,0,99", code.ErrInvalidMode},
		{"negative read", "4,-1,99", ErrNegativeAddress},
		{"negative write", "1101,1,1,-5,99", ErrNegativeAddress},
		{"negative relative", "109,-10,204,0,99", ErrNegativeAddress},
		{"negative jump", "1105,1,-4", ErrNegativeAddress},
		{"out of input", "3,0,99", ErrReadOutOfInput},
		{"runs off the end", "1101,0,0,10", code.ErrUnknownOpcode},
	}
	for _, tt := range tests {
		m := New(mustParse(t, tt.src))
		_, err := m.Run()
		if !errors.Is(err, tt.want) {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
		var f *Fault
		if !errors.As(err, &f) {
			t.Fatalf("%s: expected *Fault, got %T", tt.name, err)
		}
		if m.State() != Faulted {
			t.Fatalf("%s: expected faulted state, got %s", tt.name, m.State())
		}
		if _, err2 := m.Run(); err2 != err {
			t.Fatalf("%s: expected the same fault again, got %v", tt.name, err2)
		}
	}
}

func TestVMFaultLocation(t *testing.T) {
	_, err := New(mustParse(t, "104,1,77")).Run()
	var f *Fault
	if !errors.As(err, &f) {
		t.Fatalf("expected *Fault, got %v", err)
	}
	if f.IP != 2 || f.Word != 77 {
		t.Fatalf("unexpected fault location: %+v", f)
	}
}

func TestVMAlreadyHalted(t *testing.T) {
	m := New(mustParse(t, "99"))
	if _, err := m.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Run(); !errors.Is(err, ErrAlreadyHalted) {
		t.Fatalf("expected ErrAlreadyHalted from Run, got %v", err)
	}
	if err := m.RunWith(); !errors.Is(err, ErrAlreadyHalted) {
		t.Fatalf("expected ErrAlreadyHalted from RunWith, got %v", err)
	}
	if _, _, err := m.RunToOut(); !errors.Is(err, ErrAlreadyHalted) {
		t.Fatalf("expected ErrAlreadyHalted from RunToOut, got %v", err)
	}
}

func TestVMSourceAndSink(t *testing.T) {
	feed := []int64{3, 4}
	src := SourceFunc(func() (int64, error) {
		if len(feed) == 0 {
			return 0, io.EOF
		}
		v := feed[0]
		feed = feed[1:]
		return v, nil
	})
	var seen []int64
	sink := SinkFunc(func(v int64) error {
		seen = append(seen, v)
		return nil
	})

	// in a; in b; mul a b -> out; halt
	m := New(mustParse(t, "3,11,3,12,2,11,12,13,4,13,99,0,0,0")).ReadVec(2).ReadFrom(src).WriteTo(sink)
	out, err := m.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalWords(out, []int64{6}) || !equalWords(seen, out) {
		t.Fatalf("expected [6] in buffer and sink, got %v / %v", out, seen)
	}
	if len(feed) != 1 {
		t.Fatalf("expected queued input to be used before the source, %d left", len(feed))
	}

	_, err = New(mustParse(t, "3,0,3,0,99")).ReadFrom(SourceFunc(func() (int64, error) {
		return 0, io.EOF
	})).Run()
	if !errors.Is(err, ErrReadOutOfInput) {
		t.Fatalf("expected ErrReadOutOfInput, got %v", err)
	}
}

func TestVMSinkError(t *testing.T) {
	boom := errors.New("boom")
	m := New(mustParse(t, "104,1,99")).WriteTo(SinkFunc(func(int64) error { return boom }))
	if _, err := m.Run(); !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

func TestVMAtNegative(t *testing.T) {
	m := New(mustParse(t, "99"))
	if m.At(-3) != 0 || m.At(1000) != 0 {
		t.Fatal("expected zero for out-of-range reads")
	}
}
