package render

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// dotRadius is the radius in pixels of the pre-rendered particle sprite.
const dotRadius = 16

// minDotPixels keeps distant particles visible.
const minDotPixels = 1.5

// WindowConfig sizes the window.
type WindowConfig struct {
	Width  int
	Height int
	Title  string
}

// Window is the ebiten renderer. It ticks the scene once per ebiten update.
type Window struct {
	scene    Scene
	controls *Controls
	config   WindowConfig

	ctx  context.Context
	proj Projector
	dot  *ebiten.Image
	dots []Dot
}

// NewWindow creates a window renderer for scene.
func NewWindow(scene Scene, config WindowConfig) *Window {
	return &Window{
		scene:    scene,
		controls: NewControls(scene),
		config:   config,
		ctx:      context.Background(),
		proj:     NewProjector(config.Width, config.Height),
	}
}

var shapeKeys = []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5}

// Update implements ebiten.Game.
func (w *Window) Update() error {
	if w.ctx.Err() != nil || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	for i, k := range shapeKeys {
		if inpututil.IsKeyJustPressed(k) {
			w.controls.SelectShape(i)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		w.controls.NextColor()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		w.controls.ToggleRecording()
	}

	w.scene.Tick(1 / float64(ebiten.TPS()))
	return nil
}

// Draw implements ebiten.Game.
func (w *Window) Draw(screen *ebiten.Image) {
	screen.Fill(Background)
	if w.dot == nil {
		w.dot = softDot(dotRadius)
	}

	snap := w.scene.Snapshot()
	w.dots = w.proj.Dots(snap, w.dots)
	for _, d := range w.dots {
		w.drawDot(screen, d, Opacity)
	}
	if o, ok := w.proj.Ornament(snap); ok {
		w.drawDot(screen, o, 1)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s\n%.0f FPS", Status(snap.State), ebiten.ActualFPS()))
}

func (w *Window) drawDot(screen *ebiten.Image, d Dot, alpha float32) {
	size := math.Max(d.Size, minDotPixels)
	k := size / (2 * dotRadius)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-dotRadius, -dotRadius)
	op.GeoM.Scale(k, k)
	op.GeoM.Translate(d.X, d.Y)

	c := d.Color.Clamped()
	r, g, b := float32(c.R), float32(c.G), float32(c.B)
	op.ColorScale.Scale(r*alpha, g*alpha, b*alpha, alpha)
	op.Blend = ebiten.BlendLighter
	screen.DrawImage(w.dot, op)
}

// Layout implements ebiten.Game. The projector follows the window size.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		w.proj.Width = float64(outsideWidth)
		w.proj.Height = float64(outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it is closed or ctx is done.
func (w *Window) Run(ctx context.Context) error {
	w.ctx = ctx
	ebiten.SetWindowSize(w.config.Width, w.config.Height)
	ebiten.SetWindowTitle(w.config.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(w); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}

// softDot renders a white disc with a smoothstep falloff, premultiplied.
func softDot(radius int) *ebiten.Image {
	size := radius * 2
	img := ebiten.NewImage(size, size)
	img.WritePixels(softDotPixels(radius))
	return img
}

func softDotPixels(radius int) []byte {
	size := radius * 2
	pix := make([]byte, size*size*4)
	r := float64(radius)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - r
			dy := float64(y) + 0.5 - r
			dist := math.Sqrt(dx*dx+dy*dy) / r

			var alpha float64
			if dist < 1 {
				t := 1 - dist
				alpha = t * t * (3 - 2*t)
			}

			a := uint8(alpha * 255)
			off := (y*size + x) * 4
			pix[off+0] = a
			pix[off+1] = a
			pix[off+2] = a
			pix[off+3] = a
		}
	}
	return pix
}
