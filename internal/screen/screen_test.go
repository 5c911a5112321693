package screen

import (
	"testing"

	"intcode/internal/code"
	"intcode/internal/vm"
)

func TestGridApply(t *testing.T) {
	g := NewGrid()
	g.Apply(1, 2, 3)
	g.Apply(6, 5, 4)
	g.Apply(-1, 0, 12345)

	if g.At(1, 2) != 3 || g.At(6, 5) != 4 || g.At(0, 0) != 0 {
		t.Fatalf("unexpected cells: %v", g.cells)
	}
	if g.Status != 12345 {
		t.Fatalf("expected status 12345, got %d", g.Status)
	}
	lo, hi, ok := g.Bounds()
	if !ok || lo != (Point{1, 2}) || hi != (Point{6, 5}) {
		t.Fatalf("unexpected bounds %v %v", lo, hi)
	}
}

func TestGridString(t *testing.T) {
	g := NewGrid()
	g.Apply(0, 0, 1)
	g.Apply(2, 0, 1)
	g.Apply(1, 1, 4)
	g.Apply(2, 1, 7)
	want := "# #\n o?\n"
	if g.String() != want {
		t.Fatalf("expected %q, got %q", want, g.String())
	}
	if NewGrid().String() != "" {
		t.Fatal("empty grid should render as empty string")
	}
}

func TestCollect(t *testing.T) {
	// draws (1,2)=3 and (6,5)=4, then sets the status to 99
	prog, err := code.Parse("104,1,104,2,104,3,104,6,104,5,104,4,104,-1,104,0,104,99,99")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, err := Collect(vm.New(prog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Count(3) != 1 || g.Count(4) != 1 || g.Status != 99 {
		t.Fatalf("unexpected grid %v status %d", g.cells, g.Status)
	}
}

func TestDevicePumpIsIncremental(t *testing.T) {
	prog, _ := code.Parse("104,0,104,0,104,1,104,1,104,0,104,2,104,5,99")
	d := NewDevice(vm.New(prog))

	n, err := d.Pump(1)
	if err != nil || n != 1 || d.Halted() {
		t.Fatalf("expected one triple, got %d halted=%v err=%v", n, d.Halted(), err)
	}
	if d.Grid().At(0, 0) != 1 || d.Grid().At(1, 0) != 0 {
		t.Fatal("second triple applied too early")
	}

	n, err = d.Pump(5)
	if err != nil || n != 1 || !d.Halted() {
		t.Fatalf("expected one more triple then halt, got %d halted=%v err=%v", n, d.Halted(), err)
	}
	if d.Grid().At(1, 0) != 2 {
		t.Fatal("expected second triple")
	}
	// the trailing lone 5 never completes a triple
	if len(d.buf) != 1 {
		t.Fatalf("expected a buffered partial triple, got %v", d.buf)
	}
}

func TestDevicePumpYieldsAfterInput(t *testing.T) {
	// twice: in [100]; draw (n,0) with the value read
	prog, _ := code.Parse("3,100,104,0,104,0,4,100,3,100,104,1,104,0,4,100,99")
	d := NewDevice(vm.New(prog))
	key := int64(1)
	polls := 0
	d.ReadFrom(vm.SourceFunc(func() (int64, error) {
		polls++
		return key, nil
	}))

	n, err := d.Pump(10)
	if err != nil || n != 1 || polls != 1 || d.Halted() {
		t.Fatalf("expected one triple after one read, got %d polls=%d halted=%v err=%v", n, polls, d.Halted(), err)
	}
	if d.Grid().At(0, 0) != 1 {
		t.Fatalf("expected first read drawn, got %d", d.Grid().At(0, 0))
	}

	key = -1
	n, err = d.Pump(10)
	if err != nil || n != 1 || polls != 2 {
		t.Fatalf("expected one triple after the second read, got %d polls=%d err=%v", n, polls, err)
	}
	if d.Grid().At(1, 0) != -1 {
		t.Fatalf("expected the changed input to be seen, got %d", d.Grid().At(1, 0))
	}

	n, err = d.Pump(10)
	if err != nil || n != 0 || !d.Halted() {
		t.Fatalf("expected halt, got %d halted=%v err=%v", n, d.Halted(), err)
	}
}
