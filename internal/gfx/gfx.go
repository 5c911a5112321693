package gfx

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"intcode/internal/logging"
	"intcode/internal/screen"
	"intcode/internal/vm"
)

type Options struct {
	Title string
	// Scale is the size of one tile in pixels.
	Scale int
	// TriplesPerFrame caps how many tiles the VM may draw per frame. A frame
	// also ends at the first tile drawn after the program reads the joystick.
	TriplesPerFrame int
}

const defaultTriplesPerFrame = 512

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "Intcode"
	}
	if o.Scale <= 0 {
		o.Scale = 12
	}
	if o.TriplesPerFrame <= 0 {
		o.TriplesPerFrame = defaultTriplesPerFrame
	}
	return o
}

var palette = map[int64]color.RGBA{
	0: {A: 255},
	1: {R: 160, G: 160, B: 170, A: 255},
	2: {R: 200, G: 90, B: 60, A: 255},
	3: {R: 80, G: 200, B: 90, A: 255},
	4: {R: 240, G: 220, B: 80, A: 255},
}

var unknownTile = color.RGBA{R: 255, B: 255, A: 255}

// Joystick is an input source reading the arrow keys: left is -1, right is
// 1, neither is 0.
func Joystick() vm.Source {
	return vm.SourceFunc(func() (int64, error) {
		switch {
		case ebiten.IsKeyPressed(ebiten.KeyArrowLeft):
			return -1, nil
		case ebiten.IsKeyPressed(ebiten.KeyArrowRight):
			return 1, nil
		default:
			return 0, nil
		}
	})
}

// Run opens a window and drives m until the window is closed or Escape is
// pressed. Input not already queued on m is read from Joystick.
func Run(m *vm.VM, opts Options) error {
	opts = opts.withDefaults()
	dev := screen.NewDevice(m)
	dev.ReadFrom(Joystick())
	g := &game{dev: dev, opts: opts}

	ebiten.SetWindowSize(640, 480)
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}

type game struct {
	dev    *screen.Device
	opts   Options
	logged bool
}

func (g *game) Update() error {
	if !g.dev.Halted() {
		if _, err := g.dev.Pump(g.opts.TriplesPerFrame); err != nil {
			return err
		}
	} else if !g.logged {
		g.logged = true
		logging.Get("gfx").Infof("program halted, status %d", g.dev.Grid().Status)
	}
	if ebiten.IsWindowBeingClosed() || ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(dst *ebiten.Image) {
	dst.Fill(palette[0])
	grid := g.dev.Grid()
	lo, _, ok := grid.Bounds()
	if !ok {
		return
	}
	s := float32(g.opts.Scale)
	grid.Each(func(p screen.Point, v int64) {
		c, ok := palette[v]
		if !ok {
			c = unknownTile
		}
		x := float32(p.X-lo.X) * s
		y := float32(p.Y-lo.Y) * s
		vector.DrawFilledRect(dst, x, y, s, s, c, false)
	})
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	lo, hi, ok := g.dev.Grid().Bounds()
	if !ok {
		return outsideWidth, outsideHeight
	}
	w := int(hi.X-lo.X+1) * g.opts.Scale
	h := int(hi.Y-lo.Y+1) * g.opts.Scale
	return w, h
}
