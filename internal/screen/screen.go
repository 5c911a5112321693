package screen

import (
	"strings"

	"intcode/internal/vm"
)

type Point struct {
	X, Y int64
}

// statusCell is the (x, y) pair that updates Grid.Status instead of a tile.
var statusCell = Point{X: -1, Y: 0}

// Grid is the tile screen written by (x, y, tile) output triples.
type Grid struct {
	cells  map[Point]int64
	Status int64

	min, max Point
}

func NewGrid() *Grid {
	return &Grid{cells: map[Point]int64{}}
}

func (g *Grid) Apply(x, y, v int64) {
	p := Point{X: x, Y: y}
	if p == statusCell {
		g.Status = v
		return
	}
	if len(g.cells) == 0 {
		g.min, g.max = p, p
	}
	g.min.X = min(g.min.X, x)
	g.min.Y = min(g.min.Y, y)
	g.max.X = max(g.max.X, x)
	g.max.Y = max(g.max.Y, y)
	g.cells[p] = v
}

func (g *Grid) At(x, y int64) int64 { return g.cells[Point{X: x, Y: y}] }

// Bounds returns the inclusive corners of every tile written so far.
func (g *Grid) Bounds() (Point, Point, bool) {
	return g.min, g.max, len(g.cells) > 0
}

// Each calls fn for every written tile in no particular order.
func (g *Grid) Each(fn func(Point, int64)) {
	for p, v := range g.cells {
		fn(p, v)
	}
}

// Count reports how many cells currently hold tile v.
func (g *Grid) Count(v int64) int {
	n := 0
	for _, c := range g.cells {
		if c == v {
			n++
		}
	}
	return n
}

var glyphs = map[int64]byte{0: ' ', 1: '#', 2: '+', 3: '=', 4: 'o'}

func (g *Grid) String() string {
	lo, hi, ok := g.Bounds()
	if !ok {
		return ""
	}
	var b strings.Builder
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			ch, ok := glyphs[g.At(x, y)]
			if !ok {
				ch = '?'
			}
			b.WriteByte(ch)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Device feeds a VM's output triples into a Grid. It is the host side of
// the tile screen; internal/gfx renders it.
type Device struct {
	m      *vm.VM
	grid   *Grid
	buf    []int64
	halted bool
	reads  int
}

func NewDevice(m *vm.VM) *Device {
	return &Device{m: m, grid: NewGrid()}
}

func (d *Device) Grid() *Grid  { return d.grid }
func (d *Device) Halted() bool { return d.halted }

// ReadFrom installs src as the VM's input source. Reads through it are
// counted so Pump can hand control back once the program has polled input.
func (d *Device) ReadFrom(src vm.Source) {
	d.m.ReadFrom(vm.SourceFunc(func() (int64, error) {
		d.reads++
		return src.Next()
	}))
}

// Pump runs the VM until it has applied limit triples (or without bound if
// limit <= 0) or the program halts. When a source was installed with
// ReadFrom, Pump also returns at the first complete triple after an input
// read, so the next read sees fresh input. A trailing partial triple is kept
// for the next call.
func (d *Device) Pump(limit int) (int, error) {
	applied := 0
	reads := d.reads
	for !d.halted && (limit <= 0 || applied < limit) {
		v, ok, err := d.m.RunToOut()
		if err != nil {
			return applied, err
		}
		if !ok {
			d.halted = true
			break
		}
		d.buf = append(d.buf, v)
		if len(d.buf) == 3 {
			d.grid.Apply(d.buf[0], d.buf[1], d.buf[2])
			d.buf = d.buf[:0]
			applied++
			if d.reads != reads {
				break
			}
		}
	}
	return applied, nil
}

// Collect runs m to completion and returns the resulting screen.
func Collect(m *vm.VM) (*Grid, error) {
	d := NewDevice(m)
	if _, err := d.Pump(0); err != nil {
		return nil, err
	}
	return d.grid, nil
}
